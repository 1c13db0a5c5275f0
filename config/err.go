package config

import (
	"github.com/ezrec/uctrace/translate"
)

var f = translate.From

// ErrTracerName indicates a tracer stanza without a name.
type ErrTracerName string

func (err ErrTracerName) Error() string {
	return f("tracer with output '%v' has no name", string(err))
}

// ErrTracerDuplicate indicates two tracer stanzas sharing a name.
type ErrTracerDuplicate string

func (err ErrTracerDuplicate) Error() string {
	return f("tracer '%v' defined twice", string(err))
}

// ErrTracerOutput indicates a tracer stanza without an output path.
type ErrTracerOutput string

func (err ErrTracerOutput) Error() string {
	return f("tracer '%v' has no output", string(err))
}
