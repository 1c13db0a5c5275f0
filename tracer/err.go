package tracer

import (
	"errors"

	"github.com/ezrec/uctrace/translate"
)

var f = translate.From

var (
	ErrTracerStarted = errors.New(f("tracer already started"))
	ErrTracerConfig  = errors.New(f("tracer configuration incomplete"))
)

// ErrSink indicates the trace output file could not be created.
// The tracer is not attached when this is returned; the caller may
// retry with a different path.
type ErrSink struct {
	Path string
	Err  error
}

func (err *ErrSink) Error() string {
	return f("trace sink '%v': %v", err.Path, err.Err)
}

func (err *ErrSink) Unwrap() error {
	return err.Err
}

// ErrTracerExists indicates a tracer name already in use on an engine.
type ErrTracerExists string

func (err ErrTracerExists) Error() string {
	return f("tracer '%v' already attached", string(err))
}

// ErrTracerUnknown indicates a tracer name with no attached tracer.
type ErrTracerUnknown string

func (err ErrTracerUnknown) Error() string {
	return f("tracer '%v' not attached", string(err))
}

// ErrFormatUnknown indicates an unrecognized trace format name.
type ErrFormatUnknown string

func (err ErrFormatUnknown) Error() string {
	return f("'%v' is not a trace format", string(err))
}

// ErrPolicyUnknown indicates an unrecognized queue policy name.
type ErrPolicyUnknown string

func (err ErrPolicyUnknown) Error() string {
	return f("'%v' is not a queue policy", string(err))
}
