package controllers

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"inventario-app/audit"
	"inventario-app/config"
	"inventario-app/confirm"
	"inventario-app/confirm/confirmtest"
)

type call struct {
	Method   string
	Endpoint string
	Values   url.Values
	Payload  interface{}
}

// fakeAPI answers reads and writes from handlers and records every call.
type fakeAPI struct {
	mu    sync.Mutex
	calls []call

	get  func(endpoint string, q url.Values) (interface{}, error)
	post func(endpoint string, form url.Values) error
	json func(endpoint string, payload interface{}) (interface{}, error)
}

func (f *fakeAPI) record(c call) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func (f *fakeAPI) GetJSON(_ context.Context, endpoint string, q url.Values, out interface{}) error {
	f.record(call{Method: "GET", Endpoint: endpoint, Values: q})
	v, err := f.get(endpoint, q)
	if err != nil {
		return err
	}
	return decode(v, out)
}

func (f *fakeAPI) PostForm(_ context.Context, endpoint string, form url.Values, _ interface{}) error {
	f.record(call{Method: "POST", Endpoint: endpoint, Values: form})
	if f.post == nil {
		return nil
	}
	return f.post(endpoint, form)
}

func (f *fakeAPI) PostJSON(_ context.Context, endpoint string, payload, out interface{}) error {
	f.record(call{Method: "JSON", Endpoint: endpoint, Payload: payload})
	v, err := f.json(endpoint, payload)
	if err != nil {
		return err
	}
	return decode(v, out)
}

// writes returns the form and JSON writes, in order.
func (f *fakeAPI) writes() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.Method != "GET" {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) gets(endpoint string) []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []url.Values
	for _, c := range f.calls {
		if c.Method == "GET" && c.Endpoint == endpoint {
			out = append(out, c.Values)
		}
	}
	return out
}

func decode(v, out interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func newDeps(t *testing.T, api *fakeAPI, p *confirmtest.Prompter) Deps {
	t.Helper()
	return Deps{
		API:       api,
		Endpoints: config.DefaultEndpoints(),
		Runner:    confirm.NewRunner(p, confirm.NewLogReporter(zerolog.Nop())),
		History:   audit.NewLog(),
		Log:       zerolog.Nop(),
	}
}
