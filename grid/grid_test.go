package grid

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type testRow struct {
	ID   int
	Tipo string
}

func (r testRow) Field(key string) string {
	switch key {
	case "id":
		return strconv.Itoa(r.ID)
	case "tipo":
		return r.Tipo
	}
	return ""
}

type fakeFetcher struct {
	mu      sync.Mutex
	queries []url.Values
	respond func(call int, q url.Values) ([]testRow, error)
}

func (f *fakeFetcher) GetJSON(_ context.Context, _ string, q url.Values, out interface{}) error {
	f.mu.Lock()
	call := len(f.queries)
	f.queries = append(f.queries, q)
	f.mu.Unlock()

	rows, err := f.respond(call, q)
	if err != nil {
		return err
	}
	*out.(*[]testRow) = rows
	return nil
}

func (f *fakeFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func columns() []Column[testRow] {
	return []Column[testRow]{
		{Key: "id", Title: "ID"},
		{Key: "tipo", Title: "Tipo"},
		{Key: "accion", Title: "Accion", Render: func(r testRow) string {
			if r.ID%2 == 0 {
				return "Crear"
			}
			return ""
		}},
	}
}

func TestConfigureLoadsAndRenders(t *testing.T) {
	f := &fakeFetcher{respond: func(int, url.Values) ([]testRow, error) {
		return []testRow{{1, "Laptop"}, {2, "Monitor"}}, nil
	}}

	h, err := Configure(context.Background(), f, Config[testRow]{
		Name:     "detalles",
		Endpoint: "/api/entradadetalle/",
		Static:   url.Values{"entrada": {"4"}},
		Columns:  columns(),
	}, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 1, f.calls())
	assert.Equal(t, "4", f.queries[0].Get("entrada"))
	assert.Equal(t, [][]string{{"1", "Laptop", ""}, {"2", "Monitor", "Crear"}}, h.Cells())
	assert.Equal(t, []string{"ID", "Tipo", "Accion"}, h.Titles())
	assert.Equal(t, uint64(1), h.Generation())
}

func TestDynamicFiltersAreCollectedAtDispatch(t *testing.T) {
	f := &fakeFetcher{respond: func(int, url.Values) ([]testRow, error) { return nil, nil }}
	tipo := "1"
	h := New(f, Config[testRow]{
		Static:  url.Values{"salida": {"8"}, "aprobado": {"false"}},
		Dynamic: func() url.Values { return url.Values{"tipo_dispositivo": {tipo}} },
		Columns: columns(),
	}, zerolog.Nop())

	require.NoError(t, h.Reload(context.Background()))
	tipo = "3"
	require.NoError(t, h.Reload(context.Background()))

	require.Equal(t, 2, f.calls())
	assert.Equal(t, "1", f.queries[0].Get("tipo_dispositivo"))
	assert.Equal(t, "3", f.queries[1].Get("tipo_dispositivo"))
	assert.Equal(t, "8", f.queries[1].Get("salida"))
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	startedA := make(chan struct{})
	releaseA := make(chan struct{})
	f := &fakeFetcher{respond: func(call int, _ url.Values) ([]testRow, error) {
		if call == 0 {
			close(startedA)
			<-releaseA
			return []testRow{{1, "A"}}, nil
		}
		return []testRow{{2, "B"}}, nil
	}}
	h := New(f, Config[testRow]{Columns: columns()}, zerolog.Nop())

	resultA := make(chan error, 1)
	go func() { resultA <- h.Reload(context.Background()) }()
	<-startedA

	require.NoError(t, h.Reload(context.Background()))
	close(releaseA)

	assert.ErrorIs(t, <-resultA, ErrSuperseded)
	assert.Equal(t, []testRow{{2, "B"}}, h.Rows())
	assert.Equal(t, uint64(2), h.Generation())
}

func TestFailedReloadKeepsPreviousRows(t *testing.T) {
	boom := errors.New("boom")
	f := &fakeFetcher{respond: func(call int, _ url.Values) ([]testRow, error) {
		if call == 0 {
			return []testRow{{1, "Laptop"}}, nil
		}
		return nil, boom
	}}
	h, err := Configure(context.Background(), f, Config[testRow]{Columns: columns()}, zerolog.Nop())
	require.NoError(t, err)

	err = h.Reload(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []testRow{{1, "Laptop"}}, h.Rows())
	assert.Equal(t, uint64(1), h.Generation())
}

func TestReloadReplacesRowsEntirely(t *testing.T) {
	f := &fakeFetcher{respond: func(call int, _ url.Values) ([]testRow, error) {
		if call == 0 {
			return []testRow{{1, "a"}, {2, "b"}, {3, "c"}}, nil
		}
		return []testRow{{9, "z"}}, nil
	}}
	h, err := Configure(context.Background(), f, Config[testRow]{Columns: columns()}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, h.Reload(context.Background()))

	assert.Equal(t, 1, h.Len())
	_, found := h.Find(func(r testRow) bool { return r.ID == 1 })
	assert.False(t, found)
	row, found := h.Find(func(r testRow) bool { return r.ID == 9 })
	assert.True(t, found)
	assert.Equal(t, "z", row.Tipo)
}

func TestPaging(t *testing.T) {
	f := &fakeFetcher{respond: func(int, url.Values) ([]testRow, error) {
		rows := make([]testRow, 25)
		for i := range rows {
			rows[i] = testRow{ID: i + 1}
		}
		return rows, nil
	}}
	h, err := Configure(context.Background(), f, Config[testRow]{Columns: columns()}, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 3, h.Pages())
	assert.Len(t, h.Page(1), 10)
	assert.Len(t, h.Page(3), 5)
	assert.Equal(t, "21", h.Page(3)[0][0])
	assert.Nil(t, h.Page(4))
}

func TestWriteXLSX(t *testing.T) {
	f := &fakeFetcher{respond: func(int, url.Values) ([]testRow, error) {
		return []testRow{{1, "Laptop"}, {2, "Monitor"}}, nil
	}}
	h, err := Configure(context.Background(), f, Config[testRow]{Name: "dispositivos", Columns: columns()}, zerolog.Nop())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, h.WriteXLSX(&buf))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	header, err := book.GetCellValue(exportSheet, "C1")
	require.NoError(t, err)
	assert.Equal(t, "Accion", header)
	value, err := book.GetCellValue(exportSheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Monitor", value)
}
