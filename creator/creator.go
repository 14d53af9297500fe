package creator

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"inventario-app/confirm"
	"inventario-app/grid"
	"inventario-app/models"
)

// ErrInFlight is returned when a creation for the same line item and
// resource is still unsettled.
var ErrInFlight = errors.New("creator: creation already in flight")

type Poster interface {
	PostForm(ctx context.Context, endpoint string, form url.Values, out interface{}) error
}

// Reloader refreshes the grid that owns the line item.
type Reloader interface {
	Reload(ctx context.Context) error
}

type key struct {
	id       int
	resource models.Resource
}

// Creator spawns devices or parts from a line item of an Entrada.
type Creator struct {
	poster   Poster
	runner   *confirm.Runner
	detalles string
	reload   Reloader
	log      zerolog.Logger

	mu       sync.Mutex
	inflight map[key]struct{}
}

// New binds a Creator to the line item endpoint. reload may be nil.
func New(p Poster, runner *confirm.Runner, detalles string, reload Reloader, log zerolog.Logger) *Creator {
	return &Creator{
		poster:   p,
		runner:   runner,
		detalles: detalles,
		reload:   reload,
		log:      log,
		inflight: make(map[key]struct{}),
	}
}

type texts struct {
	prompt, path, ok, fail string
}

var resourceTexts = map[models.Resource]texts{
	models.Dispositivos: {
		prompt: "Esta seguro que desea crear estos dispositivos",
		path:   "crear_dispositivos/",
		ok:     "dispositivos creados exitosamente!",
		fail:   "Error al crear los dispositivo:",
	},
	models.Repuestos: {
		prompt: "Esta seguro que desea crear estos repuestos",
		path:   "crear_repuestos/",
		ok:     "repuestos creados exitosamente!",
		fail:   "Error al crear los Repuestos:",
	},
}

// URL is the creation endpoint for a line item.
func (c *Creator) URL(detalleID int, r models.Resource) string {
	base := c.detalles
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + strconv.Itoa(detalleID) + "/" + resourceTexts[r].path
}

// CreateFor asks for confirmation and requests the creation of r for the
// line item. The owning grid is reloaded once the server accepted it.
func (c *Creator) CreateFor(ctx context.Context, detalleID int, r models.Resource) (confirm.Outcome, error) {
	t, ok := resourceTexts[r]
	if !ok {
		return confirm.Declined, errors.Errorf("creator: unknown resource %q", r)
	}

	k := key{id: detalleID, resource: r}
	if !c.acquire(k) {
		c.log.Warn().Int("detalle", detalleID).Str("resource", string(r)).Msg("creation already in flight")
		return confirm.Declined, ErrInFlight
	}
	defer c.release(k)

	endpoint := c.URL(detalleID, r)
	return c.runner.Run(ctx, confirm.Action{
		Name:   "crear " + string(r),
		Prompt: t.prompt,
		Do: func(ctx context.Context) error {
			return c.poster.PostForm(ctx, endpoint, url.Values{}, nil)
		},
		OnSuccess: func(ctx context.Context) error {
			c.log.Info().Int("detalle", detalleID).Str("resource", string(r)).Msg("resources created")
			c.runner.Prompter.Alert(ctx, t.ok)
			if c.reload == nil {
				return nil
			}
			if err := c.reload.Reload(ctx); err != nil && !errors.Is(err, grid.ErrSuperseded) {
				return err
			}
			return nil
		},
		FailurePrefix: t.fail,
	})
}

func (c *Creator) acquire(k key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[k]; busy {
		return false
	}
	c.inflight[k] = struct{}{}
	return true
}

func (c *Creator) release(k key) {
	c.mu.Lock()
	delete(c.inflight, k)
	c.mu.Unlock()
}
