package tracer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/uctrace/bus"
)

func registryConfig(t *testing.T, engine Engine, name string) Config {
	return Config{
		Engine:       engine,
		Memory:       bus.NewMemory(0x1000),
		Disassembler: scriptDisasm{},
		OutputPath:   filepath.Join(t.TempDir(), name+".txt"),
	}
}

func TestRegistryAttachDetach(t *testing.T) {
	assert := assert.New(t)

	reg := NewRegistry()
	engine := &stubEngine{}

	tracer, err := reg.Attach("first", registryConfig(t, engine, "first"))
	assert.NoError(err)
	assert.Equal(TRACER_RUNNING, tracer.State())
	assert.Equal(1, engine.hookCount())

	// Names are unique per engine.
	_, err = reg.Attach("first", registryConfig(t, engine, "dup"))
	assert.ErrorIs(err, ErrTracerExists("first"))

	// The same name on another engine is fine.
	other := &stubEngine{}
	_, err = reg.Attach("first", registryConfig(t, other, "other"))
	assert.NoError(err)

	assert.NoError(reg.Detach(engine, "first"))
	assert.Equal(TRACER_STOPPED, tracer.State())
	assert.Equal(0, engine.hookCount())

	assert.ErrorIs(reg.Detach(engine, "first"), ErrTracerUnknown("first"))

	reg.Close()
}

func TestRegistryDetachAll(t *testing.T) {
	assert := assert.New(t)

	reg := NewRegistry()
	engine := &stubEngine{}
	other := &stubEngine{}

	_, err := reg.Attach("a", registryConfig(t, engine, "a"))
	assert.NoError(err)
	_, err = reg.Attach("b", registryConfig(t, engine, "b"))
	assert.NoError(err)
	_, err = reg.Attach("c", registryConfig(t, other, "c"))
	assert.NoError(err)

	assert.Equal(2, reg.DetachAll(engine))
	assert.Equal(0, engine.hookCount())
	assert.Equal(1, other.hookCount())

	assert.Equal(0, reg.DetachAll(engine))

	reg.Close()
	assert.Equal(0, other.hookCount())
}

func TestRegistryAttachFailure(t *testing.T) {
	assert := assert.New(t)

	reg := NewRegistry()
	engine := &stubEngine{}

	cfg := registryConfig(t, engine, "bad")
	cfg.OutputPath = filepath.Join(t.TempDir(), "no", "such", "trace.txt")

	_, err := reg.Attach("bad", cfg)
	var sink *ErrSink
	assert.ErrorAs(err, &sink)
	assert.Equal(0, engine.hookCount())

	// A failed attach leaves the name free.
	_, err = reg.Attach("bad", registryConfig(t, engine, "retry"))
	assert.NoError(err)

	reg.Close()
}
