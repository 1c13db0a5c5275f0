package bus

import (
	"github.com/ezrec/uctrace/translate"
)

var f = translate.From

// ErrUnmapped indicates an access to an address with no mapped device.
type ErrUnmapped uint64

func (err ErrUnmapped) Error() string {
	return f("no device mapped at 0x%x", uint64(err))
}

func (err ErrUnmapped) Is(other error) (ok bool) {
	_, ok = other.(ErrUnmapped)
	return
}

// ErrOverlap indicates a mapping that collides with an existing region.
type ErrOverlap uint64

func (err ErrOverlap) Error() string {
	return f("mapping at 0x%x overlaps an existing region", uint64(err))
}

func (err ErrOverlap) Is(other error) (ok bool) {
	_, ok = other.(ErrOverlap)
	return
}
