package controllers

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"inventario-app/confirm"
	"inventario-app/grid"
	"inventario-app/models"
)

// RepuestoList shows the available parts of the selected type. A part is
// assigned to a unit by typing the unit's triage.
type RepuestoList struct {
	d    Deps
	grid *grid.Handle[models.Repuesto]

	mu   sync.Mutex
	tipo string
}

func NewRepuestoList(d Deps) *RepuestoList {
	p := &RepuestoList{d: d}
	p.grid = grid.New(d.API, grid.Config[models.Repuesto]{
		Name:     "repuestos",
		Endpoint: d.Endpoints.Repuestos,
		Dynamic: func() url.Values {
			return url.Values{
				"tipo":   {p.Tipo()},
				"estado": {"1"},
			}
		},
		Columns: []grid.Column[models.Repuesto]{
			{Key: "No", Title: "No"},
			{Key: "tipo", Title: "Tipo"},
			{Key: "descripcion", Title: "Descripcion"},
			{Key: "tarima", Title: "Tarima"},
			{Key: "asignar", Render: func(models.Repuesto) string { return "[Asignar]" }},
		},
	}, d.Log)
	return p
}

// Grid stays empty until a type is selected.
func (p *RepuestoList) Grid() *grid.Handle[models.Repuesto] {
	return p.grid
}

func (p *RepuestoList) Tipo() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tipo
}

// SelectTipo reloads the grid for a part type. When the read fails the
// parts of the previous type stay on screen.
func (p *RepuestoList) SelectTipo(ctx context.Context, tipo string) error {
	p.mu.Lock()
	p.tipo = tipo
	p.mu.Unlock()
	if tipo == "" {
		return nil
	}
	return reload(ctx, p.grid)
}

// Assign asks for the triage of the receiving unit. A dismissed or blank
// answer sends nothing.
func (p *RepuestoList) Assign(ctx context.Context, repuestoID int) (confirm.Outcome, error) {
	if p.Tipo() == "" {
		return confirm.Declined, ErrRowNotFound
	}
	if _, ok := p.grid.Find(func(r models.Repuesto) bool { return r.ID == repuestoID }); !ok {
		return confirm.Declined, ErrRowNotFound
	}

	triage, ok, err := p.d.Runner.Prompter.Prompt(ctx, "Ingrese el Triage del Dispositivo")
	if err != nil || !ok || strings.TrimSpace(triage) == "" {
		return confirm.Declined, err
	}
	form := url.Values{
		"repuesto": {strconv.Itoa(repuestoID)},
		"triage":   {strings.TrimSpace(triage)},
	}
	return p.d.Runner.Run(ctx, confirm.Action{
		Name:      "asignar repuesto",
		Do:        p.d.post(join(p.d.Endpoints.Repuestos, "asignar_repuesto"), form),
		OnSuccess: reloader(p.grid),
	})
}
