package controllers

import (
	"bytes"
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventario-app/client"
	"inventario-app/confirm"
	"inventario-app/confirm/confirmtest"
	"inventario-app/models"
)

func repuestosAPI() *fakeAPI {
	return &fakeAPI{get: func(string, url.Values) (interface{}, error) {
		return []models.Repuesto{{ID: 31, Numero: "R-31", Tipo: "Bateria", Descripcion: "6 celdas", Tarima: "T4"}}, nil
	}}
}

func TestAssignPartByTriage(t *testing.T) {
	api := repuestosAPI()
	p := &confirmtest.Prompter{Replies: []string{" LAP-001 "}}
	ctx := context.Background()
	page := NewRepuestoList(newDeps(t, api, p))
	assert.Zero(t, page.Grid().Len())
	require.NoError(t, page.SelectTipo(ctx, ""))
	assert.Empty(t, api.gets("/inventario/api/repuestos/"))

	require.NoError(t, page.SelectTipo(ctx, "Bateria"))
	assert.Equal(t, url.Values{"tipo": {"Bateria"}, "estado": {"1"}}, api.gets("/inventario/api/repuestos/")[0])
	assert.Equal(t, []string{"R-31", "Bateria", "6 celdas", "T4", "[Asignar]"}, page.Grid().Cells()[0])

	out, err := page.Assign(ctx, 31)
	require.NoError(t, err)
	assert.Equal(t, confirm.Done, out)
	assert.Equal(t, []string{"Ingrese el Triage del Dispositivo"}, p.Prompts)

	w := api.writes()
	require.Len(t, w, 1)
	assert.Equal(t, "/inventario/api/repuestos/asignar_repuesto/", w[0].Endpoint)
	assert.Equal(t, url.Values{"repuesto": {"31"}, "triage": {"LAP-001"}}, w[0].Values)
	assert.Len(t, api.gets("/inventario/api/repuestos/"), 2)
}

func TestAssignPartDismissed(t *testing.T) {
	api := repuestosAPI()
	page := NewRepuestoList(newDeps(t, api, &confirmtest.Prompter{}))
	ctx := context.Background()

	_, err := page.Assign(ctx, 31)
	assert.ErrorIs(t, err, ErrRowNotFound)

	require.NoError(t, page.SelectTipo(ctx, "Bateria"))
	out, err := page.Assign(ctx, 31)
	require.NoError(t, err)
	assert.Equal(t, confirm.Declined, out)
	assert.Empty(t, api.writes())
}

func TestRepuestoTipoChangeFailureKeepsRows(t *testing.T) {
	api := &fakeAPI{get: func(_ string, q url.Values) (interface{}, error) {
		if q.Get("tipo") == "Cargador" {
			return nil, &client.Error{Kind: client.KindServer, Status: 502}
		}
		return []models.Repuesto{{ID: 31, Numero: "R-31", Tipo: "Bateria"}}, nil
	}}
	p := &confirmtest.Prompter{Replies: []string{"LAP-001"}}
	ctx := context.Background()
	page := NewRepuestoList(newDeps(t, api, p))
	h := page.Grid()

	require.NoError(t, page.SelectTipo(ctx, "Bateria"))
	require.Equal(t, 1, h.Len())

	err := page.SelectTipo(ctx, "Cargador")
	assert.True(t, client.IsKind(err, client.KindServer))
	assert.Same(t, h, page.Grid())
	assert.Equal(t, 1, page.Grid().Len())
	assert.Equal(t, "Bateria", page.Grid().Rows()[0].Tipo)
	assert.Equal(t, url.Values{"tipo": {"Cargador"}, "estado": {"1"}}, page.Grid().Query())
}

func TestAssignPartEndpointWithoutTrailingSlash(t *testing.T) {
	api := repuestosAPI()
	d := newDeps(t, api, &confirmtest.Prompter{Replies: []string{"LAP-001"}})
	d.Endpoints.Repuestos = "/inventario/api/repuestos"
	ctx := context.Background()
	page := NewRepuestoList(d)

	require.NoError(t, page.SelectTipo(ctx, "Bateria"))
	out, err := page.Assign(ctx, 31)
	require.NoError(t, err)
	assert.Equal(t, confirm.Done, out)

	w := api.writes()
	require.Len(t, w, 1)
	assert.Equal(t, "/inventario/api/repuestos/asignar_repuesto/", w[0].Endpoint)
}

func TestDispositivoListSearchAndExport(t *testing.T) {
	api := &fakeAPI{get: func(string, url.Values) (interface{}, error) {
		return []models.Dispositivo{{ID: 1, Triage: "LAP-001", Tipo: "Laptop", URL: "/inventario/dispositivo/LAP-001/"}}, nil
	}}
	ctx := context.Background()
	page := NewDispositivoList(newDeps(t, api, &confirmtest.Prompter{}))

	require.NoError(t, page.Search(ctx, url.Values{"tipo": {"Laptop"}, "estado": {"2"}}))
	assert.Equal(t, url.Values{"tipo": {"Laptop"}, "estado": {"2"}}, api.gets("/inventario/api/dispositivos/")[0])

	u, err := page.URL("LAP-001")
	require.NoError(t, err)
	assert.Equal(t, "/inventario/dispositivo/LAP-001/", u)

	var buf bytes.Buffer
	require.NoError(t, page.Export(&buf))
	assert.NotZero(t, buf.Len())
}

func TestPickerSearch(t *testing.T) {
	api := &fakeAPI{get: func(string, url.Values) (interface{}, error) {
		return []models.Dispositivo{{ID: 7, Triage: "LAP-007"}}, nil
	}}
	picker := NewDispositivoPicker(newDeps(t, api, &confirmtest.Prompter{}), "1", "Laptop", "mov-3")

	opts, err := picker.Search(context.Background(), "LAP")
	require.NoError(t, err)
	assert.Equal(t, []models.Opcion{{ID: "7", Text: "LAP-007"}}, opts)
	assert.Equal(t, url.Values{
		"search":   {"LAP"},
		"etapa":    {"1"},
		"tipo":     {"Laptop"},
		"buscador": {"mov-3-LAP"},
	}, api.gets("/inventario/api/dispositivos/")[0])
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "/api/salidas/8/aprobado/", join("/api/salidas/", "8", "aprobado"))
	assert.Equal(t, "/api/salidas/8/", join("/api/salidas", "8"))
	assert.Equal(t, "/api/x/", join("/api/x"))
}
