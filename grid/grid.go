package grid

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"
)

// ErrSuperseded is returned by Reload when a newer reload was issued before
// this one completed. Its response was discarded.
var ErrSuperseded = errors.New("grid: response superseded by a newer reload")

// Row is a record shown by a grid. Field returns the display value of a
// plain column.
type Row interface {
	Field(key string) string
}

// Fetcher reads a collection endpoint. *client.Client satisfies it.
type Fetcher interface {
	GetJSON(ctx context.Context, endpoint string, query url.Values, out interface{}) error
}

// Column describes one grid column. Render is required when the value
// depends on more than one field of the row, such as action columns.
type Column[R Row] struct {
	Key    string
	Title  string
	Render func(row R) string
}

func (c Column[R]) cell(row R) string {
	if c.Render != nil {
		return c.Render(row)
	}
	return row.Field(c.Key)
}

// Config binds a grid to an endpoint.
type Config[R Row] struct {
	Name     string
	Endpoint string
	// Static filters are sent on every read.
	Static url.Values
	// Dynamic is called each time a read is dispatched; its values are
	// merged over Static.
	Dynamic  func() url.Values
	Columns  []Column[R]
	PageSize int
}

const DefaultPageSize = 10

// Handle owns the displayed rows of one grid. It is safe for concurrent
// use; only the latest issued read may replace the rows.
type Handle[R Row] struct {
	cfg     Config[R]
	fetcher Fetcher
	log     zerolog.Logger

	mu         sync.Mutex
	issued     uint64
	generation uint64
	rows       []R
	cells      [][]string
}

// New binds a grid without loading it.
func New[R Row](f Fetcher, cfg Config[R], log zerolog.Logger) *Handle[R] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Handle[R]{
		cfg:     cfg,
		fetcher: f,
		log:     log.With().Str("grid", cfg.Name).Str("endpoint", cfg.Endpoint).Logger(),
	}
}

// Configure binds a grid and issues its first read.
func Configure[R Row](ctx context.Context, f Fetcher, cfg Config[R], log zerolog.Logger) (*Handle[R], error) {
	h := New(f, cfg, log)
	if err := h.Reload(ctx); err != nil {
		return h, err
	}
	return h, nil
}

// Query builds the filters a read would be sent with right now.
func (h *Handle[R]) Query() url.Values {
	q := url.Values{}
	for k, vs := range h.cfg.Static {
		q[k] = append([]string(nil), vs...)
	}
	if h.cfg.Dynamic != nil {
		for k, vs := range h.cfg.Dynamic() {
			q[k] = append([]string(nil), vs...)
		}
	}
	return q
}

// Reload reads the endpoint again and replaces every displayed row. On
// failure the previous rows stay and the error is returned.
func (h *Handle[R]) Reload(ctx context.Context) error {
	q := h.Query()

	h.mu.Lock()
	h.issued++
	seq := h.issued
	h.mu.Unlock()

	log := h.log.With().Uint64("seq", seq).Str("filters", describe(q)).Logger()
	log.Debug().Msg("reloading grid")

	var rows []R
	err := h.fetcher.GetJSON(ctx, h.cfg.Endpoint, q, &rows)

	h.mu.Lock()
	defer h.mu.Unlock()

	if seq != h.issued {
		log.Debug().Uint64("latest", h.issued).Msg("discarding superseded response")
		return ErrSuperseded
	}
	if err != nil {
		log.Error().Err(err).Msg("grid reload failed, keeping previous rows")
		return err
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		line := make([]string, len(h.cfg.Columns))
		for j, col := range h.cfg.Columns {
			line[j] = col.cell(row)
		}
		cells[i] = line
	}
	h.rows = rows
	h.cells = cells
	h.generation = seq
	log.Debug().Int("rows", len(rows)).Msg("grid reloaded")
	return nil
}

func (h *Handle[R]) Name() string { return h.cfg.Name }

// Generation is the sequence number of the read currently displayed; zero
// before the first successful read.
func (h *Handle[R]) Generation() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.generation
}

func (h *Handle[R]) Titles() []string {
	titles := make([]string, len(h.cfg.Columns))
	for i, c := range h.cfg.Columns {
		titles[i] = c.Title
		if titles[i] == "" {
			titles[i] = c.Key
		}
	}
	return titles
}

func (h *Handle[R]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rows)
}

func (h *Handle[R]) Rows() []R {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.rows)
}

// Cells returns the rendered cells of every displayed row.
func (h *Handle[R]) Cells() [][]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([][]string, len(h.cells))
	for i, line := range h.cells {
		out[i] = slices.Clone(line)
	}
	return out
}

// Pages is the number of pages of the displayed rows.
func (h *Handle[R]) Pages() int {
	n := h.Len()
	if n == 0 {
		return 1
	}
	return (n + h.cfg.PageSize - 1) / h.cfg.PageSize
}

// Page returns the rendered cells of page p, counting from 1. Pages past
// the end are empty.
func (h *Handle[R]) Page(p int) [][]string {
	cells := h.Cells()
	if p < 1 {
		p = 1
	}
	start := (p - 1) * h.cfg.PageSize
	if start >= len(cells) {
		return nil
	}
	end := start + h.cfg.PageSize
	if end > len(cells) {
		end = len(cells)
	}
	return cells[start:end]
}

// Find returns the first displayed row matching match.
func (h *Handle[R]) Find(match func(R) bool) (R, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, row := range h.rows {
		if match(row) {
			return row, true
		}
	}
	var zero R
	return zero, false
}

func describe(q url.Values) string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strings.Join(q[k], ","))
	}
	return strings.Join(parts, "&")
}
