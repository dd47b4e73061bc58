package web

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/mogaika/stingray_extractor/archive"
	"github.com/mogaika/stingray_extractor/extract"
	"github.com/mogaika/stingray_extractor/hashdb"
	"github.com/mogaika/stingray_extractor/pack"
)

var log = logrus.WithField("module", "web")

// Server exposes a read-only archive set over HTTP.
type Server struct {
	Set      *archive.Set
	Registry *pack.Registry
	Names    *hashdb.Translator
	// Extract holds the defaults of extractions started over HTTP.
	Extract extract.Options

	ctx      context.Context
	upgrader websocket.Upgrader

	mu      sync.Mutex
	running bool
}

func NewServer(ctx context.Context, set *archive.Set, registry *pack.Registry, names *hashdb.Translator, opts extract.Options) *Server {
	return &Server{
		Set:      set,
		Registry: registry,
		Names:    names,
		Extract:  opts,
		ctx:      ctx,
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/json/archives", s.HandlerAjaxArchives).Methods("GET")
	r.HandleFunc("/json/assets", s.HandlerAjaxAssets).Methods("GET")
	r.HandleFunc("/json/assets/{type}/{id}", s.HandlerAjaxAsset).Methods("GET")
	r.HandleFunc("/dump/{type}/{id}/{section}", s.HandlerDumpSection).Methods("GET")
	r.HandleFunc("/action/extract", s.HandlerActionExtract).Methods("POST")
	r.HandleFunc("/ws/status", s.HandlerStatus)
	return r
}

func (s *Server) Handler() http.Handler {
	h := handlers.RecoveryHandler(handlers.RecoveryLogger(log), handlers.PrintRecoveryStack(true))(s.Router())
	return handlers.LoggingHandler(log.WriterLevel(logrus.DebugLevel), h)
}

// Start serves until ctx is done.
func (s *Server) Start(addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-s.ctx.Done()
		srv.Close()
	}()

	log.Infof("Starting server %v", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
