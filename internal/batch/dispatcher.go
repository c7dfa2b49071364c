package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/structable/structable/internal/geometry"
	"github.com/structable/structable/internal/structure"
	"github.com/structable/structable/internal/table"
)

// Method selects the structure-detection strategy for a batch.
type Method string

const (
	MethodLattice Method = "lattice"
	MethodStream  Method = "stream"
)

// Page status values reported per page in a batch response.
const (
	StatusOK                    = "ok"
	StatusInsufficientStructure = "insufficient_structure"
	StatusError                 = "error"
)

// Request describes one extraction batch.
type Request struct {
	Pages    PageSelector `json:"pages"`
	Method   Method       `json:"method"`
	Parallel bool         `json:"parallel"`
	Fallback bool         `json:"fallback"`

	// Workers bounds parallel execution; 0 means one worker per CPU.
	Workers int `json:"workers,omitempty"`
}

// PageStatus records the outcome of a single page.
type PageStatus struct {
	Page   int    `json:"page"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Response is an ordered table collection plus the per-page status list.
// Tables are ordered page-ascending, then by within-page extraction order,
// regardless of execution concurrency.
type Response struct {
	Tables   table.List   `json:"tables"`
	Statuses []PageStatus `json:"statuses"`
}

// Config tunes the structurers and scorer used for every page of a batch.
type Config struct {
	Lattice structure.LatticeConfig
	Stream  structure.StreamConfig
	Scorer  structure.ScorerConfig
}

// DefaultConfig returns the default extraction thresholds.
func DefaultConfig() Config {
	return Config{
		Lattice: structure.DefaultLatticeConfig(),
		Stream:  structure.DefaultStreamConfig(),
		Scorer:  structure.DefaultScorerConfig(),
	}
}

// Dispatcher runs extraction batches against a geometry feed. Pages have no
// cross-page dependency, so each page task owns its working set exclusively
// and no locks are needed inside the structuring pipeline.
type Dispatcher struct {
	feed    geometry.Feed
	lattice structure.Structurer
	stream  structure.Structurer
	scorer  *structure.Scorer
	log     *slog.Logger
}

// NewDispatcher creates a dispatcher over the given feed.
func NewDispatcher(feed geometry.Feed, cfg Config, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		feed:    feed,
		lattice: structure.NewLatticeStructurerWithConfig(cfg.Lattice),
		stream:  structure.NewStreamStructurerWithConfig(cfg.Stream),
		scorer:  structure.NewScorerWithConfig(cfg.Scorer),
		log:     log,
	}
}

// pageResult is the private working set of one page task.
type pageResult struct {
	tables []*table.Table
	status PageStatus
}

// Run executes the batch. Selector errors fail the whole batch; any other
// per-page failure is isolated into that page's status while the remaining
// pages still return tables.
func (d *Dispatcher) Run(ctx context.Context, req Request) (*Response, error) {
	switch req.Method {
	case MethodLattice, MethodStream:
	default:
		return nil, fmt.Errorf("unknown extraction method %q", req.Method)
	}

	pages, err := req.Pages.Resolve(d.feed.PageCount())
	if err != nil {
		return nil, err
	}

	results := make([]pageResult, len(pages))

	if req.Parallel && len(pages) > 1 {
		workers := req.Workers
		if workers <= 0 {
			workers = runtime.NumCPU()
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i, page := range pages {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = d.processPage(page, req)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, page := range pages {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = d.processPage(page, req)
		}
	}

	// Results were filled per requested-page index, so concatenating in
	// that order yields page-ascending, order-ascending tables no matter
	// which worker finished first.
	resp := &Response{Statuses: make([]PageStatus, 0, len(pages))}
	for _, r := range results {
		resp.Tables = append(resp.Tables, r.tables...)
		resp.Statuses = append(resp.Statuses, r.status)
	}
	resp.Tables.Sort()
	return resp, nil
}

// processPage runs the full feed→structurer→scorer pipeline for one page.
// It never returns an error: failures become the page's status.
func (d *Dispatcher) processPage(page int, req Request) pageResult {
	geom, err := d.feed.Page(page)
	if err != nil {
		d.log.Warn("geometry feed failed", "page", page, "error", err)
		return pageResult{status: PageStatus{Page: page, Status: StatusError, Detail: err.Error()}}
	}
	if err := geom.Validate(); err != nil {
		d.log.Warn("malformed page geometry", "page", page, "error", err)
		return pageResult{status: PageStatus{Page: page, Status: StatusError, Detail: err.Error()}}
	}

	structurer := d.stream
	if req.Method == MethodLattice {
		structurer = d.lattice
	}

	tables, err := structurer.Structure(geom)
	if err != nil {
		if errors.Is(err, structure.ErrInsufficientStructure) {
			if req.Fallback {
				d.log.Debug("falling back to stream extraction", "page", page)
				tables, err = d.stream.Structure(geom)
			} else {
				return pageResult{status: PageStatus{
					Page:   page,
					Status: StatusInsufficientStructure,
					Detail: err.Error(),
				}}
			}
		}
		if err != nil {
			return pageResult{status: PageStatus{Page: page, Status: StatusError, Detail: err.Error()}}
		}
	}

	for _, t := range tables {
		t.Report = d.scorer.Score(t)
	}
	d.log.Debug("page extracted", "page", page, "tables", len(tables))

	return pageResult{
		tables: tables,
		status: PageStatus{Page: page, Status: StatusOK},
	}
}
