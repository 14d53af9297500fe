package controllers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"inventario-app/confirm"
	"inventario-app/grid"
	"inventario-app/models"
)

// SalidaDetalle is the outbound batch being built.
type SalidaDetalle struct {
	d    Deps
	PK   int
	Grid *grid.Handle[models.SalidaDetalle]
}

func NewSalidaDetalle(ctx context.Context, d Deps, pk int) (*SalidaDetalle, error) {
	h, err := grid.Configure(ctx, d.API, grid.Config[models.SalidaDetalle]{
		Name:     "salida-detalle",
		Endpoint: d.Endpoints.SalidaDetalles,
		Static:   url.Values{"salida": {strconv.Itoa(pk)}},
		Columns: []grid.Column[models.SalidaDetalle]{
			{Key: "tdispositivo", Title: "Tipo"},
			{Key: "cantidad", Title: "Cantidad"},
			{Key: "desecho", Title: "Desecho"},
			{Key: "entrada_detalle", Title: "Detalle de entrada"},
		},
	}, d.Log)
	return &SalidaDetalle{d: d, PK: pk, Grid: h}, err
}

func (p *SalidaDetalle) AddLine(ctx context.Context, form url.Values) error {
	form = clone(form)
	form.Set("salida", strconv.Itoa(p.PK))
	_, err := p.d.Runner.Run(ctx, confirm.Action{
		Name:      "agregar detalle salida",
		Do:        p.d.post(p.d.Endpoints.SalidaDetalles, form),
		OnSuccess: reloader(p.Grid),
	})
	return err
}

// Finish submits the batch form with its in-creation box cleared.
func (p *SalidaDetalle) Finish(ctx context.Context, form url.Values) (confirm.Outcome, error) {
	form = clone(form)
	form.Del("en_creacion")
	return p.d.Runner.Run(ctx, confirm.Action{
		Name:   "terminar salida",
		Prompt: "¿Esta Seguro que quiere Terminara la Creacion de la Entrada?",
		Do:     p.d.post(join(p.d.Endpoints.SalidaEditar, strconv.Itoa(p.PK)), form),
	})
}

// SalidasRevision lists outbound batches waiting for review.
type SalidasRevision struct {
	d    Deps
	Grid *grid.Handle[models.RevisionSalida]
}

func NewSalidasRevision(ctx context.Context, d Deps) (*SalidasRevision, error) {
	h, err := grid.Configure(ctx, d.API, grid.Config[models.RevisionSalida]{
		Name:     "salidas-revision",
		Endpoint: d.Endpoints.RevisionSalidas,
		Static:   url.Values{"aprobada": {"false"}},
		Columns: []grid.Column[models.RevisionSalida]{
			{Key: "id", Title: "ID"},
			{Key: "fecha_revision", Title: "Fecha de revision"},
			{Key: "salida", Title: "Salida"},
			{Key: "revisado_por", Title: "Revisado por"},
		},
	}, d.Log)
	return &SalidasRevision{d: d, Grid: h}, err
}

func (p *SalidasRevision) Open(id int) (string, error) {
	r, ok := p.Grid.Find(func(r models.RevisionSalida) bool { return r.ID == id })
	if !ok {
		return "", ErrRowNotFound
	}
	return r.URLSalida, nil
}

// PaquetesRevision reviews the approved packages of a Salida and decides
// on the whole batch.
type PaquetesRevision struct {
	d        Deps
	SalidaID int
	Grid     *grid.Handle[models.Paquete]
}

func NewPaquetesRevision(ctx context.Context, d Deps, salidaID int) (*PaquetesRevision, error) {
	d = d.withHistory()
	h, err := grid.Configure(ctx, d.API, grid.Config[models.Paquete]{
		Name:     "paquetes-revision",
		Endpoint: d.Endpoints.Paquetes,
		Static: url.Values{
			"salida":   {strconv.Itoa(salidaID)},
			"aprobado": {"true"},
		},
		Columns: []grid.Column[models.Paquete]{
			{Key: "id", Title: "ID"},
			{Key: "fecha_creacion", Title: "Fecha de creacion"},
			{Key: "tipo_paquete", Title: "Tipo"},
		},
	}, d.Log)
	return &PaquetesRevision{d: d, SalidaID: salidaID, Grid: h}, err
}

func (p *PaquetesRevision) decide(ctx context.Context, name, prompt, path, done string) (confirm.Outcome, error) {
	id := strconv.Itoa(p.SalidaID)
	return p.d.Runner.Run(ctx, confirm.Action{
		Name:   name,
		Prompt: prompt,
		Do:     p.d.post(join(p.d.Endpoints.Salidas, id, path), url.Values{"salida": {id}}),
		OnSuccess: func(ctx context.Context) error {
			p.d.alert(ctx, done)
			return nil
		},
	})
}

func (p *PaquetesRevision) Approve(ctx context.Context) (confirm.Outcome, error) {
	return p.decide(ctx, "aprobar salida", "Esta  seguro que desea aprobar esta salida?", "aprobado", "Dispositivos aprovados")
}

func (p *PaquetesRevision) Reject(ctx context.Context) (confirm.Outcome, error) {
	return p.decide(ctx, "rechazar salida", "Esta salida sera rechazada", "rechazado", "Salida rechazada")
}

// LoadHistory reads the comments already stored for the Salida.
func (p *PaquetesRevision) LoadHistory(ctx context.Context) error {
	return loadHistory(ctx, p.d, p.SalidaID)
}

// Comment asks for a free comment and appends it to the Salida history.
func (p *PaquetesRevision) Comment(ctx context.Context) (bool, error) {
	return p.d.appender().PromptAndAppend(ctx, "Historial de Ofertas", p.d.Endpoints.HistorialSalida, p.SalidaID, nil)
}

func (p *PaquetesRevision) History() [][]string {
	return p.d.History.Rows(p.SalidaID)
}

func loadHistory(ctx context.Context, d Deps, salidaID int) error {
	var entries []models.HistoryEntry
	q := url.Values{"id_comentario": {strconv.Itoa(salidaID)}}
	if err := d.API.GetJSON(ctx, d.Endpoints.HistorialSalida, q, &entries); err != nil {
		return err
	}
	for i := range entries {
		entries[i].EntityID = salidaID
	}
	d.History.Seed(salidaID, entries)
	return nil
}

// PaqueteDetail shows one package of a Salida under review. Units can be
// rejected from it; every rejection is explained in the Salida history.
type PaqueteDetail struct {
	d         Deps
	SalidaID  int
	PaqueteID int

	mu      sync.Mutex
	paquete models.Paquete
}

func NewPaqueteDetail(ctx context.Context, d Deps, salidaID, paqueteID int) (*PaqueteDetail, error) {
	d = d.withHistory()
	p := &PaqueteDetail{d: d, SalidaID: salidaID, PaqueteID: paqueteID}
	if err := p.Refresh(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Refresh reads the package again. On failure the last copy stays.
func (p *PaqueteDetail) Refresh(ctx context.Context) error {
	var paquete models.Paquete
	if err := p.d.API.GetJSON(ctx, join(p.d.Endpoints.Paquetes, strconv.Itoa(p.PaqueteID)), nil, &paquete); err != nil {
		return err
	}
	p.mu.Lock()
	p.paquete = paquete
	p.mu.Unlock()
	return nil
}

func (p *PaqueteDetail) Paquete() models.Paquete {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paquete
}

// Triages are the units assigned to the package.
func (p *PaqueteDetail) Triages() []string {
	paquete := p.Paquete()
	out := make([]string, 0, len(paquete.Asignacion))
	for _, a := range paquete.Asignacion {
		out = append(out, a.Dispositivo.Triage)
	}
	return out
}

func (p *PaqueteDetail) assigned(triage string) bool {
	for _, t := range p.Triages() {
		if t == triage {
			return true
		}
	}
	return false
}

// RejectionComment is the history text stored for a rejected unit.
func RejectionComment(triage string, paquete int, reason string) string {
	return fmt.Sprintf("El Dispositivo con Triage: %s del paquete no: %d %s", triage, paquete, reason)
}

// Reject takes a unit out of the package and then asks why. The reason is
// appended to the history of the Salida, not of the package. The package
// is read again afterwards, whether or not a reason was given.
func (p *PaqueteDetail) Reject(ctx context.Context, triage string) (confirm.Outcome, error) {
	if !p.assigned(triage) {
		return confirm.Declined, ErrActionNotOffered
	}
	paquete := p.Paquete()
	numero := paquete.IDPaquete
	if numero == 0 {
		numero = paquete.ID
	}
	form := url.Values{
		"triage":  {triage},
		"paquete": {strconv.Itoa(paquete.ID)},
	}
	return p.d.Runner.Run(ctx, confirm.Action{
		Name:   "rechazar dispositivo",
		Prompt: "Esta seguro de rechazar el dispositivo",
		Do:     p.d.post(p.d.Endpoints.RechazarDispositivo, form),
		OnSuccess: func(ctx context.Context) error {
			_, err := p.d.appender().PromptAndAppend(ctx, "Por que rechazo este dispositivo?",
				p.d.Endpoints.HistorialSalida, p.SalidaID, func(reason string) string {
					return RejectionComment(triage, numero, reason)
				})
			if rerr := p.Refresh(ctx); err == nil {
				err = rerr
			}
			return err
		},
	})
}

func (p *PaqueteDetail) LoadHistory(ctx context.Context) error {
	return loadHistory(ctx, p.d, p.SalidaID)
}

func (p *PaqueteDetail) History() [][]string {
	return p.d.History.Rows(p.SalidaID)
}
