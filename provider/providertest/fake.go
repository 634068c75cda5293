// Package providertest provides a scripted in-memory wallet for tests.
package providertest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/tranvictor/ajer/provider"
)

type Call struct {
	Method string
	Params []interface{}
}

// Handler answers one request. The returned result is json encoded before
// it reaches the caller.
type Handler func(params []interface{}) (interface{}, error)

// Fake is a provider.Provider whose answers are scripted per method.
// Methods without a script fail with the unsupported method code.
type Fake struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
	hub      *provider.Hub
}

func New() *Fake {
	return &Fake{
		handlers: map[string]Handler{},
		hub:      provider.NewHub(nil),
	}
}

func (f *Fake) Handle(method string, h Handler) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method] = h
	return f
}

func (f *Fake) Respond(method string, result interface{}) *Fake {
	return f.Handle(method, func([]interface{}) (interface{}, error) {
		return result, nil
	})
}

func (f *Fake) Fail(method string, err error) *Fake {
	return f.Handle(method, func([]interface{}) (interface{}, error) {
		return nil, err
	})
}

func (f *Fake) Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Method: method, Params: params})
	h, ok := f.handlers[method]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ok {
		return nil, provider.NewError(provider.CodeUnsupportedMethod, "%s is not scripted", method)
	}
	result, err := h(params)
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

func (f *Fake) On(event string, handler func(json.RawMessage)) func() {
	return f.hub.On(event, handler)
}

// Emit delivers an event to every subscriber, asynchronously.
func (f *Fake) Emit(event string, payload interface{}) {
	f.hub.Emit(event, payload)
}

func (f *Fake) Subscribers(event string) int {
	return f.hub.Subscribers(event)
}

// Calls returns the recorded requests, only those of the given methods
// when any are named.
func (f *Fake) Calls(methods ...string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(methods) == 0 {
		return append([]Call{}, f.calls...)
	}
	wanted := map[string]bool{}
	for _, m := range methods {
		wanted[m] = true
	}
	result := []Call{}
	for _, c := range f.calls {
		if wanted[c.Method] {
			result = append(result, c)
		}
	}
	return result
}

func (f *Fake) Count(method string) int {
	return len(f.Calls(method))
}

func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}
