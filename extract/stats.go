package extract

import (
	"fmt"
	"sync/atomic"

	"github.com/mogaika/stingray_extractor/stingray"
)

type counters struct {
	assets   atomic.Int64
	exported atomic.Int64
	upToDate atomic.Int64
	renamed  atomic.Int64
	filtered atomic.Int64
	failed   [stingray.KindIO + 1]atomic.Int64
}

// Stats counts section outputs, except Assets which counts assets and
// Failed which counts failed assets or sections.
type Stats struct {
	Assets   int64
	Exported int64
	UpToDate int64
	Renamed  int64
	Filtered int64
	Failed   map[stingray.ErrorKind]int64
}

func (c *counters) fail(err error) {
	c.failed[stingray.Classify(err)].Add(1)
}

func (c *counters) snapshot() Stats {
	s := Stats{
		Assets:   c.assets.Load(),
		Exported: c.exported.Load(),
		UpToDate: c.upToDate.Load(),
		Renamed:  c.renamed.Load(),
		Filtered: c.filtered.Load(),
		Failed:   make(map[stingray.ErrorKind]int64),
	}
	for kind := range c.failed {
		if n := c.failed[kind].Load(); n != 0 {
			s.Failed[stingray.ErrorKind(kind)] = n
		}
	}
	return s
}

func (s Stats) TotalFailed() int64 {
	var n int64
	for _, v := range s.Failed {
		n += v
	}
	return n
}

func (s Stats) String() string {
	return fmt.Sprintf("%d assets: %d exported, %d up to date, %d renamed, %d filtered, %d failed",
		s.Assets, s.Exported, s.UpToDate, s.Renamed, s.Filtered, s.TotalFailed())
}
