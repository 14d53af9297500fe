package controllers

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"inventario-app/grid"
	"inventario-app/models"
)

// DispositivoList is the unit search screen.
type DispositivoList struct {
	d    Deps
	form formState
	Grid *grid.Handle[models.Dispositivo]
}

func NewDispositivoList(d Deps) *DispositivoList {
	p := &DispositivoList{d: d}
	p.Grid = grid.New(d.API, grid.Config[models.Dispositivo]{
		Name:     "dispositivos",
		Endpoint: d.Endpoints.Dispositivos,
		Dynamic:  p.form.get,
		Columns: []grid.Column[models.Dispositivo]{
			{Key: "triage", Title: "Triage"},
			{Key: "tipo", Title: "Tipo"},
			{Key: "marca", Title: "Marca"},
			{Key: "modelo", Title: "Modelo"},
			{Key: "serie", Title: "Serie"},
			{Key: "tarima", Title: "Tarima"},
			{Key: "estado", Title: "Estado"},
			{Key: "etapa", Title: "Etapa"},
		},
	}, d.Log)
	return p
}

// Search submits the search form.
func (p *DispositivoList) Search(ctx context.Context, filters url.Values) error {
	p.form.set(filters)
	return reload(ctx, p.Grid)
}

// URL is the detail page of a displayed unit.
func (p *DispositivoList) URL(triage string) (string, error) {
	d, ok := p.Grid.Find(func(d models.Dispositivo) bool { return d.Triage == triage })
	if !ok {
		return "", ErrRowNotFound
	}
	return d.URL, nil
}

func (p *DispositivoList) Export(w io.Writer) error { return p.Grid.WriteXLSX(w) }

// DispositivoPicker searches units by triage for a movement request. The
// search is scoped to a stage and a type.
type DispositivoPicker struct {
	d     Deps
	Etapa string
	Tipo  string
	Slug  string
}

func NewDispositivoPicker(d Deps, etapa, tipo, slug string) *DispositivoPicker {
	return &DispositivoPicker{d: d, Etapa: etapa, Tipo: tipo, Slug: slug}
}

func (p *DispositivoPicker) Search(ctx context.Context, term string) ([]models.Opcion, error) {
	q := url.Values{
		"search":   {term},
		"etapa":    {p.Etapa},
		"tipo":     {p.Tipo},
		"buscador": {p.Slug + "-" + term},
	}
	var devices []models.Dispositivo
	if err := p.d.API.GetJSON(ctx, p.d.Endpoints.Dispositivos, q, &devices); err != nil {
		return nil, err
	}
	out := make([]models.Opcion, 0, len(devices))
	for _, d := range devices {
		out = append(out, models.Opcion{ID: strconv.Itoa(d.ID), Text: d.Triage})
	}
	return out, nil
}
