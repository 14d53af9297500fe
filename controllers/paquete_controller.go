package controllers

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"inventario-app/actions"
	"inventario-app/confirm"
	"inventario-app/grid"
	"inventario-app/models"
)

// OpcionVacia heads every device option list.
const OpcionVacia = "---------"

// PaqueteAsignacion is the package screen of a Salida. Choosing a device
// type shows the packages panel, reloads the pending packages of that type
// and refreshes the device options.
type PaqueteAsignacion struct {
	d        Deps
	SalidaPK int
	Grid     *grid.Handle[models.Paquete]

	mu      sync.Mutex
	tipo    string
	visible bool
	options []models.Opcion
}

func NewPaqueteAsignacion(ctx context.Context, d Deps, salidaPK int) (*PaqueteAsignacion, error) {
	p := &PaqueteAsignacion{d: d, SalidaPK: salidaPK}
	h, err := grid.Configure(ctx, d.API, grid.Config[models.Paquete]{
		Name:     "paquetes",
		Endpoint: d.Endpoints.Paquetes,
		Dynamic: func() url.Values {
			return url.Values{
				"salida":           {strconv.Itoa(salidaPK)},
				"tipo_dispositivo": {p.Tipo()},
				"aprobado":         {"false"},
			}
		},
		Columns: []grid.Column[models.Paquete]{
			{Key: "id", Title: "ID"},
			{Key: "tipo_paquete", Title: "Tipo"},
			{Key: "asignacion", Title: "Dispositivos", Render: func(r models.Paquete) string { return r.UltimoTriage() }},
			{Key: "aprobado", Title: "Estado", Render: func(r models.Paquete) string { return r.Estado() }},
			{Key: "aprobar", Render: func(r models.Paquete) string { return actions.ForPaquete(r).Render() }},
		},
	}, d.Log)
	p.Grid = h
	return p, err
}

func (p *PaqueteAsignacion) Tipo() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tipo
}

// PanelVisible reports whether a device type is selected.
func (p *PaqueteAsignacion) PanelVisible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// Options are the devices that can still be assigned, headed by the empty
// choice.
func (p *PaqueteAsignacion) Options() []models.Opcion {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Opcion(nil), p.options...)
}

// SelectTipo reacts to a change of the device type filter. An empty type
// only hides the panel.
func (p *PaqueteAsignacion) SelectTipo(ctx context.Context, tipo string) error {
	p.mu.Lock()
	p.tipo = tipo
	p.visible = tipo != ""
	p.mu.Unlock()
	if tipo == "" {
		return nil
	}

	gridErr := reload(ctx, p.Grid)

	q := url.Values{
		"buscador":     {""},
		"tipo":         {tipo},
		"estado":       {"2"},
		"etapa":        {"2"},
		"asignaciones": {"0"},
		"format":       {"json"},
	}
	var devices []models.Dispositivo
	if err := p.d.API.GetJSON(ctx, p.d.Endpoints.Dispositivos, q, &devices); err != nil {
		p.d.Log.Error().Err(err).Str("tipo", tipo).Msg("device options failed")
		if gridErr == nil {
			gridErr = err
		}
		return gridErr
	}
	options := make([]models.Opcion, 0, len(devices)+1)
	options = append(options, models.Opcion{ID: "", Text: OpcionVacia})
	for _, dev := range devices {
		options = append(options, models.Opcion{ID: dev.Triage, Text: dev.Triage})
	}

	p.mu.Lock()
	if p.tipo == tipo {
		p.options = options
	}
	p.mu.Unlock()
	return gridErr
}

// Approve approves a pending package together with its devices.
func (p *PaqueteAsignacion) Approve(ctx context.Context, paqueteID int) (confirm.Outcome, error) {
	row, ok := p.Grid.Find(func(r models.Paquete) bool { return r.ID == paqueteID })
	if !ok {
		return confirm.Declined, ErrRowNotFound
	}
	if !actions.ForPaquete(row).Available() {
		return confirm.Declined, ErrActionNotOffered
	}
	return p.d.Runner.Run(ctx, confirm.Action{
		Name:   "aprobar paquete",
		Prompt: "Esta Seguro de aprovar este paquete",
		Do:     p.d.post(p.d.Endpoints.PaqueteAprobar, url.Values{"paquete": {strconv.Itoa(row.ID)}}),
		OnSuccess: func(ctx context.Context) error {
			p.d.alert(ctx, "Paquete y Dispositivos aprovados")
			return reload(ctx, p.Grid)
		},
	})
}

// Assign puts a device in a package.
func (p *PaqueteAsignacion) Assign(ctx context.Context, paqueteID int, triage string) error {
	form := url.Values{
		"paquete":     {strconv.Itoa(paqueteID)},
		"dispositivo": {triage},
	}
	_, err := p.d.Runner.Run(ctx, confirm.Action{
		Name: "asignar dispositivo",
		Do:   p.d.post(p.d.Endpoints.PaqueteAsignar, form),
		OnSuccess: func(ctx context.Context) error {
			p.d.alert(ctx, "Asignacion correctamente")
			return reload(ctx, p.Grid)
		},
	})
	return err
}
