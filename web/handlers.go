package web

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mogaika/stingray_extractor/archive"
	"github.com/mogaika/stingray_extractor/extract"
	"github.com/mogaika/stingray_extractor/pack"
	"github.com/mogaika/stingray_extractor/status"
	"github.com/mogaika/stingray_extractor/stingray"
	"github.com/mogaika/stingray_extractor/webutils"
)

type archiveJson struct {
	Name      string `json:"name"`
	Types     int    `json:"types"`
	Files     int    `json:"files"`
	HasStream bool   `json:"has_stream"`
	HasGPU    bool   `json:"has_gpu"`
}

type assetJson struct {
	Id       stingray.Hash `json:"id"`
	Type     stingray.Hash `json:"type"`
	Name     string        `json:"name"`
	TypeName string        `json:"type_name"`
	Archive  string        `json:"archive"`
	Size     int64         `json:"size"`
}

type assetDetailsJson struct {
	assetJson
	Outputs map[string]pack.Output `json:"outputs"`
	Info    interface{}            `json:"info,omitempty"`
}

// parseHashParam accepts a hex hash or a name to hash.
func parseHashParam(s string) stingray.Hash {
	if h, err := stingray.ParseHash(s); err == nil && len(s) >= 16 {
		return h
	}
	return stingray.HashString(s)
}

func (s *Server) assetJson(a *archive.Asset) assetJson {
	return assetJson{
		Id:       a.Id(),
		Type:     a.Type(),
		Name:     s.Names.Name(a.Id()),
		TypeName: s.Names.TypeName(a.Type()),
		Archive:  a.Archive.Name,
		Size:     a.Size(),
	}
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*archive.Asset, bool) {
	vars := mux.Vars(r)
	key := archive.Key{Id: parseHashParam(vars["id"]), Type: parseHashParam(vars["type"])}
	a, err := s.Set.Lookup(key)
	if err != nil {
		code := http.StatusInternalServerError
		if stingray.Classify(err) == stingray.KindNotFound {
			code = http.StatusNotFound
		}
		webutils.WriteError(w, code, err)
		return nil, false
	}
	return a, true
}

func (s *Server) HandlerAjaxArchives(w http.ResponseWriter, r *http.Request) {
	list := make([]archiveJson, 0, len(s.Set.Archives()))
	for _, a := range s.Set.Archives() {
		list = append(list, archiveJson{
			Name:      a.Name,
			Types:     a.TypeCount(),
			Files:     a.FileCount(),
			HasStream: a.HasStream(),
			HasGPU:    a.HasGPU(),
		})
	}
	webutils.WriteJson(w, list)
}

// HandlerAjaxAssets lists assets, optionally only those of ?type=.
func (s *Server) HandlerAjaxAssets(w http.ResponseWriter, r *http.Request) {
	var typeFilter *stingray.Hash
	if t := r.URL.Query().Get("type"); t != "" {
		h := parseHashParam(t)
		typeFilter = &h
	}

	list := make([]assetJson, 0)
	for _, key := range s.Set.SortedKeys() {
		if typeFilter != nil && key.Type != *typeFilter {
			continue
		}
		a, err := s.Set.Lookup(key)
		if err != nil {
			log.WithError(err).WithField("asset", key).Warn("Asset does not resolve")
			continue
		}
		list = append(list, s.assetJson(a))
	}
	webutils.WriteJson(w, list)
}

func (s *Server) HandlerAjaxAsset(w http.ResponseWriter, r *http.Request) {
	a, ok := s.lookup(w, r)
	if !ok {
		return
	}
	conv := s.Registry.Find(a)
	details := assetDetailsJson{
		assetJson: s.assetJson(a),
		Outputs:   conv.Outputs(),
	}
	if m, ok := conv.(pack.Marshaler); ok {
		info, err := m.Marshal()
		if err != nil {
			webutils.WriteError(w, http.StatusInternalServerError, err)
			return
		}
		details.Info = info
	}
	webutils.WriteJson(w, details)
}

func (s *Server) HandlerDumpSection(w http.ResponseWriter, r *http.Request) {
	a, ok := s.lookup(w, r)
	if !ok {
		return
	}
	section := mux.Vars(r)["section"]
	conv := s.Registry.Find(a)
	out, ok := conv.Outputs()[section]
	if !ok {
		webutils.WriteError(w, http.StatusNotFound, stingray.NotFoundf("section %q", section))
		return
	}

	ext := out.Suffix
	if ext == "" {
		ext = s.Names.TypeName(a.Type())
	}
	name := filepath.Base(filepath.FromSlash(s.Names.Name(a.Id()))) + "." + ext
	w.Header().Set("Content-Length", strconv.FormatInt(out.Size, 10))
	webutils.WriteFile(w, name, func(wr io.Writer) error {
		return conv.WriteSection(section, wr)
	})
}

// HandlerActionExtract starts one background extraction. Form values
// filter, force and dry_run override the server defaults.
func (s *Server) HandlerActionExtract(w http.ResponseWriter, r *http.Request) {
	opts := s.Extract
	if f := r.FormValue("filter"); f != "" {
		re, err := regexp.Compile(f)
		if err != nil {
			webutils.WriteError(w, http.StatusBadRequest, err)
			return
		}
		opts.Filter = re
	}
	for name, flag := range map[string]*bool{"force": &opts.Force, "dry_run": &opts.DryRun} {
		if v := r.FormValue(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				webutils.WriteError(w, http.StatusBadRequest, fmt.Errorf("invalid %s: %v", name, err))
				return
			}
			*flag = b
		}
	}
	opts.Progress = func(done, total int) {
		status.Progress(float32(done)/float32(total), "Extracted %d of %d assets", done, total)
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		webutils.WriteError(w, http.StatusConflict, fmt.Errorf("extraction already running"))
		return
	}
	s.running = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}()
		stats, err := extract.New(s.Set, s.Registry, s.Names, opts).Run(s.ctx)
		if err != nil {
			status.Error("Extraction stopped: %v", err)
			return
		}
		status.Info("Extraction done: %v", stats)
	}()

	webutils.WriteJson(w, map[string]bool{"started": true})
}

func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Server) HandlerStatus(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	status.NewClient(conn)
}
