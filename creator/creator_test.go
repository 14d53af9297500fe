package creator

import (
	"context"
	"net/url"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventario-app/client"
	"inventario-app/confirm"
	"inventario-app/confirm/confirmtest"
	"inventario-app/models"
)

type fakePoster struct {
	mu    sync.Mutex
	urls  []string
	err   error
	block chan struct{}
	began chan struct{}
}

func (f *fakePoster) PostForm(_ context.Context, endpoint string, _ url.Values, _ interface{}) error {
	f.mu.Lock()
	f.urls = append(f.urls, endpoint)
	f.mu.Unlock()
	if f.began != nil {
		close(f.began)
	}
	if f.block != nil {
		<-f.block
	}
	return f.err
}

type countingReloader struct {
	mu    sync.Mutex
	count int
}

func (r *countingReloader) Reload(context.Context) error {
	r.mu.Lock()
	r.count++
	r.mu.Unlock()
	return nil
}

func newCreator(p *confirmtest.Prompter, poster *fakePoster, reload Reloader) *Creator {
	runner := confirm.NewRunner(p, confirm.NewLogReporter(zerolog.Nop()))
	return New(poster, runner, "/inventario/api/entradadetalle/", reload, zerolog.Nop())
}

func TestCreateDevicesPostsAndReloads(t *testing.T) {
	p := &confirmtest.Prompter{Answers: []bool{true}}
	poster := &fakePoster{}
	reload := &countingReloader{}

	out, err := newCreator(p, poster, reload).CreateFor(context.Background(), 42, models.Dispositivos)

	require.NoError(t, err)
	assert.Equal(t, confirm.Done, out)
	assert.Equal(t, []string{"/inventario/api/entradadetalle/42/crear_dispositivos/"}, poster.urls)
	assert.Equal(t, []string{"Esta seguro que desea crear estos dispositivos"}, p.Confirms)
	assert.Equal(t, []string{"dispositivos creados exitosamente!"}, p.Alerts)
	assert.Equal(t, 1, reload.count)
}

func TestCreatePartsUsesPartsEndpoint(t *testing.T) {
	p := &confirmtest.Prompter{Answers: []bool{true}}
	poster := &fakePoster{}

	_, err := newCreator(p, poster, nil).CreateFor(context.Background(), 9, models.Repuestos)

	require.NoError(t, err)
	assert.Equal(t, []string{"/inventario/api/entradadetalle/9/crear_repuestos/"}, poster.urls)
	assert.Equal(t, []string{"Esta seguro que desea crear estos repuestos"}, p.Confirms)
}

func TestDeclinedCreationSendsNothing(t *testing.T) {
	p := &confirmtest.Prompter{Answers: []bool{false}}
	poster := &fakePoster{}
	reload := &countingReloader{}

	out, err := newCreator(p, poster, reload).CreateFor(context.Background(), 42, models.Dispositivos)

	require.NoError(t, err)
	assert.Equal(t, confirm.Declined, out)
	assert.Empty(t, poster.urls)
	assert.Zero(t, reload.count)
}

func TestFailedCreationAlertsServerMessage(t *testing.T) {
	p := &confirmtest.Prompter{Answers: []bool{true}}
	poster := &fakePoster{err: &client.Error{Kind: client.KindServer, Status: 400, Mensaje: "ya fueron creados"}}
	reload := &countingReloader{}

	out, err := newCreator(p, poster, reload).CreateFor(context.Background(), 42, models.Dispositivos)

	require.Error(t, err)
	assert.Equal(t, confirm.Failed, out)
	assert.Equal(t, []string{"Error al crear los dispositivo:ya fueron creados"}, p.Alerts)
	assert.Zero(t, reload.count)
}

func TestSecondCreationWhileInFlightIsRejected(t *testing.T) {
	p := &confirmtest.Prompter{Default: true}
	poster := &fakePoster{block: make(chan struct{}), began: make(chan struct{})}
	c := newCreator(p, poster, nil)

	done := make(chan error, 1)
	go func() {
		_, err := c.CreateFor(context.Background(), 42, models.Dispositivos)
		done <- err
	}()
	<-poster.began

	_, err := c.CreateFor(context.Background(), 42, models.Dispositivos)
	assert.ErrorIs(t, err, ErrInFlight)

	close(poster.block)
	require.NoError(t, <-done)
	assert.Len(t, poster.urls, 1)

	// Settled: another attempt dispatches again.
	poster.block, poster.began = nil, nil
	_, err = c.CreateFor(context.Background(), 42, models.Dispositivos)
	require.NoError(t, err)
	assert.Len(t, poster.urls, 2)
}

func TestGuardIsPerItemAndResource(t *testing.T) {
	p := &confirmtest.Prompter{Default: true}
	poster := &fakePoster{block: make(chan struct{}), began: make(chan struct{})}
	c := newCreator(p, poster, nil)

	done := make(chan error, 1)
	go func() {
		_, err := c.CreateFor(context.Background(), 42, models.Dispositivos)
		done <- err
	}()
	<-poster.began

	assert.True(t, c.acquire(key{id: 42, resource: models.Repuestos}))
	assert.True(t, c.acquire(key{id: 43, resource: models.Dispositivos}))
	assert.False(t, c.acquire(key{id: 42, resource: models.Dispositivos}))

	close(poster.block)
	require.NoError(t, <-done)
}
