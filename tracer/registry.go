// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package tracer

import "sync"

// tracerKey identifies a tracer attachment by engine and name.
type tracerKey struct {
	engine Engine
	name   string
}

// Registry tracks named tracer attachments per engine. Each session
// owns its own registry; there is no process-wide instance.
type Registry struct {
	mu      sync.Mutex
	tracers map[tracerKey]*Tracer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tracers: map[tracerKey]*Tracer{},
	}
}

// Attach creates and starts a tracer under a name unique to the
// engine. A failed start leaves nothing registered.
func (reg *Registry) Attach(name string, cfg Config) (tracer *Tracer, err error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	key := tracerKey{engine: cfg.Engine, name: name}
	_, ok := reg.tracers[key]
	if ok {
		err = ErrTracerExists(name)
		return
	}

	tracer, err = New(cfg)
	if err != nil {
		return
	}

	err = tracer.Start()
	if err != nil {
		tracer.Stop()
		tracer = nil
		return
	}

	reg.tracers[key] = tracer
	return
}

// Detach stops and removes one named tracer from an engine. The queue
// is drained before Detach returns.
func (reg *Registry) Detach(engine Engine, name string) (err error) {
	reg.mu.Lock()
	key := tracerKey{engine: engine, name: name}
	tracer, ok := reg.tracers[key]
	if ok {
		delete(reg.tracers, key)
	}
	reg.mu.Unlock()

	if !ok {
		err = ErrTracerUnknown(name)
		return
	}

	tracer.Stop()
	return
}

// DetachAll stops and removes every tracer attached to an engine, and
// returns how many were detached.
func (reg *Registry) DetachAll(engine Engine) (count int) {
	reg.mu.Lock()
	var stopping []*Tracer
	for key, tracer := range reg.tracers {
		if key.engine == engine {
			stopping = append(stopping, tracer)
			delete(reg.tracers, key)
		}
	}
	reg.mu.Unlock()

	for _, tracer := range stopping {
		tracer.Stop()
	}

	count = len(stopping)
	return
}

// Close stops and removes every registered tracer.
func (reg *Registry) Close() {
	reg.mu.Lock()
	var stopping []*Tracer
	for key, tracer := range reg.tracers {
		stopping = append(stopping, tracer)
		delete(reg.tracers, key)
	}
	reg.mu.Unlock()

	for _, tracer := range stopping {
		tracer.Stop()
	}
}
