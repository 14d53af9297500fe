package controllers

import (
	"context"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventario-app/confirm"
	"inventario-app/confirm/confirmtest"
	"inventario-app/models"
)

func paqueteConTriage(id int, triages ...string) models.Paquete {
	p := models.Paquete{ID: id, IDPaquete: id, Salida: 8, TipoPaquete: "Laptop"}
	for _, t := range triages {
		var a models.Asignacion
		a.Dispositivo.Triage = t
		p.Asignacion = append(p.Asignacion, a)
	}
	return p
}

func echoHistory(_ string, payload interface{}) (interface{}, error) {
	req := payload.(models.HistoryRequest)
	return models.HistoryEntry{Fecha: "2024-05-02T10:00:00Z", Usuario: "revisor", Comentario: req.Comentario}, nil
}

func TestRejectUnitAppendsReasonToSalidaHistory(t *testing.T) {
	api := &fakeAPI{
		get: func(endpoint string, _ url.Values) (interface{}, error) {
			assert.Equal(t, "/inventario/api/paquetes/5/", endpoint)
			return paqueteConTriage(5, "LAP-001", "LAP-002"), nil
		},
		json: echoHistory,
	}
	p := &confirmtest.Prompter{Default: true, Replies: []string{"cracked screen"}}
	d := newDeps(t, api, p)
	d.History.Seed(8, []models.HistoryEntry{{Comentario: "revision inicial"}})
	ctx := context.Background()

	page, err := NewPaqueteDetail(ctx, d, 8, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"LAP-001", "LAP-002"}, page.Triages())

	out, err := page.Reject(ctx, "LAP-002")
	require.NoError(t, err)
	assert.Equal(t, confirm.Done, out)

	w := api.writes()
	require.Len(t, w, 2)
	assert.Equal(t, "/inventario/api/dispositivospaquetes/rechazar/", w[0].Endpoint)
	assert.Equal(t, url.Values{"triage": {"LAP-002"}, "paquete": {"5"}}, w[0].Values)
	assert.Equal(t, "/inventario/api/historial/salida/", w[1].Endpoint)
	assert.Equal(t, []string{"Por que rechazo este dispositivo?"}, p.Prompts)

	entries := d.History.Entries(8)
	require.Len(t, entries, 2)
	assert.Equal(t, "revision inicial", entries[0].Comentario)
	assert.Contains(t, entries[1].Comentario, "cracked screen")
	assert.Equal(t, "El Dispositivo con Triage: LAP-002 del paquete no: 5 cracked screen", entries[1].Comentario)
	assert.Empty(t, d.History.Entries(5))
	assert.Len(t, page.History(), 2)
}

func TestRejectUnitWithoutReasonStoresNothing(t *testing.T) {
	api := &fakeAPI{
		get:  func(string, url.Values) (interface{}, error) { return paqueteConTriage(5, "LAP-001"), nil },
		json: echoHistory,
	}
	p := &confirmtest.Prompter{Default: true}
	d := newDeps(t, api, p)
	page, err := NewPaqueteDetail(context.Background(), d, 8, 5)
	require.NoError(t, err)

	_, err = page.Reject(context.Background(), "LAP-001")
	require.NoError(t, err)
	assert.Len(t, api.writes(), 1)
	assert.Empty(t, d.History.Entries(8))
}

func TestRejectUnitRefreshesPackage(t *testing.T) {
	var mu sync.Mutex
	rejected := false
	api := &fakeAPI{
		get: func(string, url.Values) (interface{}, error) {
			mu.Lock()
			defer mu.Unlock()
			if rejected {
				return paqueteConTriage(5, "LAP-001"), nil
			}
			return paqueteConTriage(5, "LAP-001", "LAP-002"), nil
		},
		post: func(string, url.Values) error {
			mu.Lock()
			rejected = true
			mu.Unlock()
			return nil
		},
		json: echoHistory,
	}
	d := newDeps(t, api, &confirmtest.Prompter{Default: true, Replies: []string{"no enciende"}})
	ctx := context.Background()
	page, err := NewPaqueteDetail(ctx, d, 8, 5)
	require.NoError(t, err)

	out, err := page.Reject(ctx, "LAP-002")
	require.NoError(t, err)
	assert.Equal(t, confirm.Done, out)
	assert.Equal(t, []string{"LAP-001"}, page.Triages())
	assert.Len(t, api.gets("/inventario/api/paquetes/5/"), 2)

	// The rejected unit is no longer offered.
	_, err = page.Reject(ctx, "LAP-002")
	assert.ErrorIs(t, err, ErrActionNotOffered)
	assert.Len(t, api.writes(), 2)
}

func TestRejectUnitWithoutReasonStillRefreshes(t *testing.T) {
	calls := 0
	api := &fakeAPI{
		get: func(string, url.Values) (interface{}, error) {
			calls++
			if calls > 1 {
				return paqueteConTriage(5), nil
			}
			return paqueteConTriage(5, "LAP-001"), nil
		},
	}
	page, err := NewPaqueteDetail(context.Background(), newDeps(t, api, &confirmtest.Prompter{Default: true}), 8, 5)
	require.NoError(t, err)

	out, err := page.Reject(context.Background(), "LAP-001")
	require.NoError(t, err)
	assert.Equal(t, confirm.Done, out)
	assert.Empty(t, page.Triages())
}

func TestRejectUnitNotInPackage(t *testing.T) {
	api := &fakeAPI{get: func(string, url.Values) (interface{}, error) { return paqueteConTriage(5, "LAP-001"), nil }}
	page, err := NewPaqueteDetail(context.Background(), newDeps(t, api, &confirmtest.Prompter{Default: true}), 8, 5)
	require.NoError(t, err)

	_, err = page.Reject(context.Background(), "LAP-999")
	assert.ErrorIs(t, err, ErrActionNotOffered)
	assert.Empty(t, api.writes())
}

func TestBatchApproveAndReject(t *testing.T) {
	api := &fakeAPI{get: func(string, url.Values) (interface{}, error) {
		return []models.Paquete{{ID: 5, Aprobado: true, FechaCreacion: "2019-01-24T14:14:00"}}, nil
	}}
	p := &confirmtest.Prompter{Default: true}
	ctx := context.Background()
	page, err := NewPaquetesRevision(ctx, newDeps(t, api, p), 8)
	require.NoError(t, err)
	assert.Equal(t, url.Values{"salida": {"8"}, "aprobado": {"true"}}, api.gets("/inventario/api/paquetes/")[0])
	assert.Equal(t, "24 de enero de 2019, 14:14", page.Grid.Cells()[0][1])

	_, err = page.Approve(ctx)
	require.NoError(t, err)
	_, err = page.Reject(ctx)
	require.NoError(t, err)

	w := api.writes()
	require.Len(t, w, 2)
	assert.Equal(t, "/inventario/api/salidas/8/aprobado/", w[0].Endpoint)
	assert.Equal(t, url.Values{"salida": {"8"}}, w[0].Values)
	assert.Equal(t, "/inventario/api/salidas/8/rechazado/", w[1].Endpoint)
	assert.Equal(t, []string{"Dispositivos aprovados", "Salida rechazada"}, p.Alerts)
}

func TestBatchApproveDeclined(t *testing.T) {
	api := &fakeAPI{get: func(string, url.Values) (interface{}, error) { return []models.Paquete{}, nil }}
	page, err := NewPaquetesRevision(context.Background(), newDeps(t, api, &confirmtest.Prompter{}), 8)
	require.NoError(t, err)

	out, err := page.Approve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, confirm.Declined, out)
	assert.Empty(t, api.writes())
}

func TestSalidaHistoryLoadAndComment(t *testing.T) {
	api := &fakeAPI{
		get: func(endpoint string, q url.Values) (interface{}, error) {
			if endpoint == "/inventario/api/historial/salida/" {
				assert.Equal(t, "8", q.Get("id_comentario"))
				return []models.HistoryEntry{{Fecha: "2024-05-01T09:00:00Z", Usuario: "ana", Comentario: "primero"}}, nil
			}
			return []models.Paquete{}, nil
		},
		json: echoHistory,
	}
	p := &confirmtest.Prompter{Replies: []string{"segundo"}}
	ctx := context.Background()
	page, err := NewPaquetesRevision(ctx, newDeps(t, api, p), 8)
	require.NoError(t, err)

	require.NoError(t, page.LoadHistory(ctx))
	stored, err := page.Comment(ctx)
	require.NoError(t, err)
	assert.True(t, stored)

	assert.Equal(t, [][]string{
		{"primero", "1/5/2024,ana"},
		{"segundo", "2/5/2024,revisor"},
	}, page.History())
}

func TestSalidaDetalleFinishClearsInCreation(t *testing.T) {
	api := &fakeAPI{get: func(string, url.Values) (interface{}, error) {
		return []models.SalidaDetalle{{ID: 1, TipoDispositivo: "Laptop", Cantidad: 3}}, nil
	}}
	p := &confirmtest.Prompter{Default: true}
	ctx := context.Background()
	page, err := NewSalidaDetalle(ctx, newDeps(t, api, p), 4)
	require.NoError(t, err)
	assert.Equal(t, url.Values{"salida": {"4"}}, api.gets("/inventario/api/salidadetalle/")[0])

	require.NoError(t, page.AddLine(ctx, url.Values{"cantidad": {"1"}}))
	_, err = page.Finish(ctx, url.Values{"en_creacion": {"on"}, "desecho": {"0"}})
	require.NoError(t, err)

	w := api.writes()
	require.Len(t, w, 2)
	assert.Equal(t, "4", w[0].Values.Get("salida"))
	assert.Equal(t, "/inventario/salida/4/", w[1].Endpoint)
	assert.Equal(t, url.Values{"desecho": {"0"}}, w[1].Values)
	assert.Len(t, api.gets("/inventario/api/salidadetalle/"), 2)
}

func TestSalidasRevisionOpen(t *testing.T) {
	api := &fakeAPI{get: func(_ string, q url.Values) (interface{}, error) {
		assert.Equal(t, "false", q.Get("aprobada"))
		return []models.RevisionSalida{{ID: 2, Salida: "S-2", URLSalida: "/inventario/salida/2/revisar/"}}, nil
	}}
	page, err := NewSalidasRevision(context.Background(), newDeps(t, api, &confirmtest.Prompter{}))
	require.NoError(t, err)

	u, err := page.Open(2)
	require.NoError(t, err)
	assert.Equal(t, "/inventario/salida/2/revisar/", u)
	_, err = page.Open(3)
	assert.ErrorIs(t, err, ErrRowNotFound)
}

// paqueteServer keeps the packages of a Salida.
type paqueteServer struct {
	mu       sync.Mutex
	paquetes []models.Paquete
	devices  []models.Dispositivo
}

func (s *paqueteServer) api() *fakeAPI {
	return &fakeAPI{
		get: func(endpoint string, q url.Values) (interface{}, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if endpoint == "/inventario/api/dispositivos/" {
				return s.devices, nil
			}
			return append([]models.Paquete(nil), s.paquetes...), nil
		},
		post: func(endpoint string, form url.Values) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			if endpoint == "/inventario/api/paquetes/aprobar/" {
				for i := range s.paquetes {
					if form.Get("paquete") == "5" && s.paquetes[i].ID == 5 {
						s.paquetes[i].Aprobado = true
					}
				}
			}
			return nil
		},
	}
}

func TestApprovePackage(t *testing.T) {
	srv := &paqueteServer{paquetes: []models.Paquete{paqueteConTriage(5, "LAP-001")}}
	api := srv.api()
	p := &confirmtest.Prompter{Default: true}
	ctx := context.Background()
	page, err := NewPaqueteAsignacion(ctx, newDeps(t, api, p), 8)
	require.NoError(t, err)
	assert.Equal(t, []string{"5", "Laptop", "LAP-001", "Pendiente", "[Aprobar]"}, page.Grid.Cells()[0])

	out, err := page.Approve(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, confirm.Done, out)

	w := api.writes()
	require.Len(t, w, 1)
	assert.Equal(t, url.Values{"paquete": {"5"}}, w[0].Values)
	assert.Equal(t, []string{"Esta Seguro de aprovar este paquete"}, p.Confirms)
	assert.Equal(t, []string{"Paquete y Dispositivos aprovados"}, p.Alerts)
	assert.Equal(t, "Aprobado", page.Grid.Cells()[0][3])

	_, err = page.Approve(ctx, 5)
	assert.ErrorIs(t, err, ErrActionNotOffered)
	assert.Len(t, api.writes(), 1)
}

func TestSelectTipoCascade(t *testing.T) {
	srv := &paqueteServer{devices: []models.Dispositivo{{ID: 1, Triage: "LAP-010"}, {ID: 2, Triage: "LAP-011"}}}
	api := srv.api()
	ctx := context.Background()
	page, err := NewPaqueteAsignacion(ctx, newDeps(t, api, &confirmtest.Prompter{}), 8)
	require.NoError(t, err)
	initial := len(api.calls)

	require.NoError(t, page.SelectTipo(ctx, ""))
	assert.False(t, page.PanelVisible())
	assert.Len(t, api.calls, initial)

	require.NoError(t, page.SelectTipo(ctx, "Laptop"))
	assert.True(t, page.PanelVisible())

	paquetes := api.gets("/inventario/api/paquetes/")
	assert.Equal(t, url.Values{
		"salida":           {"8"},
		"tipo_dispositivo": {"Laptop"},
		"aprobado":         {"false"},
	}, paquetes[len(paquetes)-1])

	opts := api.gets("/inventario/api/dispositivos/")
	require.Len(t, opts, 1)
	assert.Equal(t, "Laptop", opts[0].Get("tipo"))
	assert.Equal(t, "2", opts[0].Get("estado"))
	assert.Equal(t, "2", opts[0].Get("etapa"))
	assert.Equal(t, "0", opts[0].Get("asignaciones"))
	assert.Contains(t, opts[0], "buscador")

	assert.Equal(t, []models.Opcion{
		{ID: "", Text: OpcionVacia},
		{ID: "LAP-010", Text: "LAP-010"},
		{ID: "LAP-011", Text: "LAP-011"},
	}, page.Options())
}

func TestAssignDeviceToPackage(t *testing.T) {
	srv := &paqueteServer{paquetes: []models.Paquete{paqueteConTriage(5)}}
	api := srv.api()
	p := &confirmtest.Prompter{}
	ctx := context.Background()
	page, err := NewPaqueteAsignacion(ctx, newDeps(t, api, p), 8)
	require.NoError(t, err)

	require.NoError(t, page.Assign(ctx, 5, "LAP-010"))

	w := api.writes()
	require.Len(t, w, 1)
	assert.Equal(t, "/inventario/api/dispositivospaquete/", w[0].Endpoint)
	assert.Equal(t, url.Values{"paquete": {"5"}, "dispositivo": {"LAP-010"}}, w[0].Values)
	assert.Equal(t, []string{"Asignacion correctamente"}, p.Alerts)
}
