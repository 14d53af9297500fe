package controllers

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"inventario-app/actions"
	"inventario-app/confirm"
	"inventario-app/creator"
	"inventario-app/grid"
	"inventario-app/models"
)

// EntradaList is the intake list with its filter form.
type EntradaList struct {
	d    Deps
	form formState
	Grid *grid.Handle[models.Entrada]
}

func NewEntradaList(ctx context.Context, d Deps, filters url.Values) (*EntradaList, error) {
	p := &EntradaList{d: d}
	p.form.set(filters)
	h, err := grid.Configure(ctx, d.API, grid.Config[models.Entrada]{
		Name:     "entradas",
		Endpoint: d.Endpoints.Entradas,
		Dynamic:  p.form.get,
		Columns: []grid.Column[models.Entrada]{
			{Key: "id", Title: "ID"},
			{Key: "tipo", Title: "Tipo"},
			{Key: "fecha", Title: "Fecha"},
			{Key: "en_creacion", Title: "En creacion"},
			{Key: "creada_por", Title: "Creada por"},
			{Key: "recibida_por", Title: "Recibida por"},
			{Key: "proveedor", Title: "Proveedor"},
			{Key: "abrir", Title: "", Render: func(e models.Entrada) string { return actions.ForEntrada(e).Render() }},
		},
	}, d.Log)
	p.Grid = h
	return p, err
}

// Search submits the filter form.
func (p *EntradaList) Search(ctx context.Context, filters url.Values) error {
	p.form.set(filters)
	return reload(ctx, p.Grid)
}

// Open returns the URL the row opens: editable while in creation,
// read-only afterwards.
func (p *EntradaList) Open(id int) (actions.Action, error) {
	e, ok := p.Grid.Find(func(e models.Entrada) bool { return e.ID == id })
	if !ok {
		return actions.Action{}, ErrRowNotFound
	}
	return actions.ForEntrada(e), nil
}

func (p *EntradaList) Export(w io.Writer) error { return p.Grid.WriteXLSX(w) }

func detalleColumns() []grid.Column[models.Detalle] {
	return []grid.Column[models.Detalle]{
		{Key: "tdispositivo", Title: "Tipo"},
		{Key: "util", Title: "Util"},
		{Key: "repuesto", Title: "Repuesto"},
		{Key: "desecho", Title: "Desecho"},
		{Key: "total", Title: "Total"},
		{Key: "precio_unitario", Title: "P. unitario"},
		{Key: "precio_subtotal", Title: "Subtotal"},
		{Key: "precio_descontado", Title: "Descontado"},
		{Key: "precio_total", Title: "P. total"},
		{Key: "descripcion", Title: "Descripcion"},
		{Key: "creado_por", Title: "Creado por"},
	}
}

func entradaFilter(pk int) url.Values {
	return url.Values{"entrada": {strconv.Itoa(pk)}}
}

// EntradaDetail is the read-only view of a finished intake.
type EntradaDetail struct {
	d    Deps
	PK   int
	Grid *grid.Handle[models.Detalle]
}

func NewEntradaDetail(ctx context.Context, d Deps, pk int) (*EntradaDetail, error) {
	cols := append(detalleColumns(),
		grid.Column[models.Detalle]{Key: "dispositivo_list", Render: func(models.Detalle) string { return "[Listado Dispositivo]" }},
		grid.Column[models.Detalle]{Key: "repuesto_list", Render: func(models.Detalle) string { return "[Listado Repuestos]" }},
	)
	h, err := grid.Configure(ctx, d.API, grid.Config[models.Detalle]{
		Name:     "entrada-detalle",
		Endpoint: d.Endpoints.Detalles,
		Static:   entradaFilter(pk),
		Columns:  cols,
	}, d.Log)
	return &EntradaDetail{d: d, PK: pk, Grid: h}, err
}

// Links returns the device and part list URLs of a line.
func (p *EntradaDetail) Links(detalleID int) (dispositivos, repuestos string, err error) {
	row, ok := p.Grid.Find(func(r models.Detalle) bool { return r.ID == detalleID })
	if !ok {
		return "", "", ErrRowNotFound
	}
	return row.DispositivoList, row.RepuestoList, nil
}

// EntradaUpdate is the intake being built: line items, their devices and
// parts, label printing and the finish action.
type EntradaUpdate struct {
	d       Deps
	PK      int
	Grid    *grid.Handle[models.Detalle]
	creator *creator.Creator
}

func NewEntradaUpdate(ctx context.Context, d Deps, pk int) (*EntradaUpdate, error) {
	cols := append(detalleColumns(),
		grid.Column[models.Detalle]{Key: "editar", Render: func(r models.Detalle) string { return actions.ForEdit(r).Render() }},
		grid.Column[models.Detalle]{Key: "dispositivos", Render: func(r models.Detalle) string {
			return actions.ForResource(r, models.Dispositivos).Render()
		}},
		grid.Column[models.Detalle]{Key: "repuestos", Render: func(r models.Detalle) string {
			return actions.ForResource(r, models.Repuestos).Render()
		}},
	)
	h, err := grid.Configure(ctx, d.API, grid.Config[models.Detalle]{
		Name:     "entrada-update",
		Endpoint: d.Endpoints.Detalles,
		Static:   entradaFilter(pk),
		Columns:  cols,
	}, d.Log)
	p := &EntradaUpdate{d: d, PK: pk, Grid: h}
	p.creator = creator.New(d.API, d.Runner, d.Endpoints.Detalles, h, d.Log)
	return p, err
}

func (p *EntradaUpdate) row(id int) (models.Detalle, error) {
	row, ok := p.Grid.Find(func(r models.Detalle) bool { return r.ID == id })
	if !ok {
		return models.Detalle{}, ErrRowNotFound
	}
	return row, nil
}

// Actions resolves the action columns of a displayed line.
func (p *EntradaUpdate) Actions(detalleID int) (actions.LineItemActions, error) {
	row, err := p.row(detalleID)
	if err != nil {
		return actions.LineItemActions{}, err
	}
	return actions.ForLineItem(row), nil
}

// Create spawns the devices or parts of a line when the line offers it.
func (p *EntradaUpdate) Create(ctx context.Context, detalleID int, r models.Resource) (confirm.Outcome, error) {
	row, err := p.row(detalleID)
	if err != nil {
		return confirm.Declined, err
	}
	if actions.ForResource(row, r).Kind != actions.Create {
		return confirm.Declined, ErrActionNotOffered
	}
	return p.creator.CreateFor(ctx, detalleID, r)
}

// PrintLabels flags the labels of a line for printing. There is no
// confirmation; the grid is reloaded so the column shows the list link.
func (p *EntradaUpdate) PrintLabels(ctx context.Context, detalleID int, r models.Resource) error {
	row, err := p.row(detalleID)
	if err != nil {
		return err
	}
	if actions.ForResource(row, r).Kind != actions.Print {
		return ErrActionNotOffered
	}
	form := url.Values{
		"detalles_id": {strconv.Itoa(detalleID)},
		"tipo":        {string(r)},
	}
	_, err = p.d.Runner.Run(ctx, confirm.Action{
		Name:      "imprimir qr",
		Do:        p.d.post(p.d.Endpoints.ImpresionQR, form),
		OnSuccess: reloader(p.Grid),
	})
	return err
}

// EditURL is where the edit column navigates.
func (p *EntradaUpdate) EditURL(detalleID int) (string, error) {
	row, err := p.row(detalleID)
	if err != nil {
		return "", err
	}
	a := actions.ForEdit(row)
	if !a.Available() {
		return "", ErrActionNotOffered
	}
	return a.URL, nil
}

// AddLine submits the new line item form.
func (p *EntradaUpdate) AddLine(ctx context.Context, form url.Values) error {
	form = clone(form)
	form.Set("entrada", strconv.Itoa(p.PK))
	_, err := p.d.Runner.Run(ctx, confirm.Action{
		Name:      "agregar detalle",
		Do:        p.d.post(p.d.Endpoints.Detalles, form),
		OnSuccess: reloader(p.Grid),
	})
	return err
}

// Finish closes the intake. It cannot be undone.
func (p *EntradaUpdate) Finish(ctx context.Context) (confirm.Outcome, error) {
	form := url.Values{"primary_key": {strconv.Itoa(p.PK)}}
	return p.d.Runner.Run(ctx, confirm.Action{
		Name:   "terminar entrada",
		Prompt: "Esta Seguro que quiere Terminar la Creacion de la Entrada",
		Do:     p.d.post(p.d.Endpoints.EntradaCuadrar, form),
		OnSuccess: func(ctx context.Context) error {
			p.d.alert(ctx, "Entrada Cuadrada")
			return reload(ctx, p.Grid)
		},
	})
}

// DetalleForm is the edit form of one line item. Quantities of resources
// already created can no longer change.
type DetalleForm struct {
	d       Deps
	Detalle models.Detalle
}

func NewDetalleForm(ctx context.Context, d Deps, id int) (*DetalleForm, error) {
	f := &DetalleForm{d: d}
	if err := d.API.GetJSON(ctx, join(d.Endpoints.Detalles, strconv.Itoa(id)), nil, &f.Detalle); err != nil {
		return nil, err
	}
	return f, nil
}

// Locked lists the fields that cannot be edited.
func (f *DetalleForm) Locked() []string {
	var locked []string
	if f.Detalle.DispositivosCreados.Bool() {
		locked = append(locked, "util")
	}
	if f.Detalle.RepuestosCreados.Bool() {
		locked = append(locked, "repuesto")
	}
	return locked
}

// Submit posts the form without its locked fields.
func (f *DetalleForm) Submit(ctx context.Context, form url.Values) error {
	if f.Detalle.UpdateURL == "" {
		return errors.Errorf("detalle %d has no update url", f.Detalle.ID)
	}
	form = clone(form)
	for _, k := range f.Locked() {
		form.Del(k)
	}
	_, err := f.d.Runner.Run(ctx, confirm.Action{
		Name: "editar detalle",
		Do:   f.d.post(f.Detalle.UpdateURL, form),
	})
	return err
}
