package controllers

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"inventario-app/audit"
	"inventario-app/config"
	"inventario-app/confirm"
	"inventario-app/grid"
)

// ErrActionNotOffered is returned when an action is requested for a row
// whose resolved actions do not include it.
var ErrActionNotOffered = errors.New("controllers: action not offered for this row")

// ErrRowNotFound is returned when the id is not among the displayed rows.
var ErrRowNotFound = errors.New("controllers: row not displayed")

// API is the slice of *client.Client the screens use.
type API interface {
	grid.Fetcher
	PostForm(ctx context.Context, endpoint string, form url.Values, out interface{}) error
	PostJSON(ctx context.Context, endpoint string, payload, out interface{}) error
}

// Deps is what every screen is built from.
type Deps struct {
	API       API
	Endpoints config.Endpoints
	Runner    *confirm.Runner
	History   *audit.Log
	Log       zerolog.Logger
}

func (d Deps) alert(ctx context.Context, msg string) {
	d.Runner.Prompter.Alert(ctx, msg)
}

// withHistory gives screens that show a history a log of their own when
// none is shared.
func (d Deps) withHistory() Deps {
	if d.History == nil {
		d.History = audit.NewLog()
	}
	return d
}

func (d Deps) appender() *audit.Appender {
	return audit.NewAppender(d.API, d.History, d.Runner, d.Log)
}

// post is a form write whose outcome only matters as success or failure.
func (d Deps) post(endpoint string, form url.Values) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return d.API.PostForm(ctx, endpoint, form, nil)
	}
}

// reload refreshes a grid. A superseded read is not a failure: a newer one
// owns the rows.
func reload[R grid.Row](ctx context.Context, h *grid.Handle[R]) error {
	if err := h.Reload(ctx); err != nil && !errors.Is(err, grid.ErrSuperseded) {
		return err
	}
	return nil
}

func reloader[R grid.Row](h *grid.Handle[R]) func(ctx context.Context) error {
	return func(ctx context.Context) error { return reload(ctx, h) }
}

// join builds "<base><parts...>/" keeping the trailing slash the API routes
// expect.
func join(base string, parts ...string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, p := range parts {
		if !strings.HasSuffix(b.String(), "/") {
			b.WriteByte('/')
		}
		b.WriteString(strings.Trim(p, "/"))
	}
	if !strings.HasSuffix(b.String(), "/") {
		b.WriteByte('/')
	}
	return b.String()
}

func clone(v url.Values) url.Values {
	out := url.Values{}
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// formState holds the values of a filter form. Grids read it at dispatch.
type formState struct {
	mu     sync.Mutex
	values url.Values
}

func (f *formState) set(v url.Values) {
	f.mu.Lock()
	f.values = clone(v)
	f.mu.Unlock()
}

func (f *formState) get() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return clone(f.values)
}
