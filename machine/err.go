package machine

import (
	"github.com/ezrec/uctrace/translate"
)

var f = translate.From

// ErrSnapshotSize indicates a snapshot RAM image larger than the
// machine's RAM.
type ErrSnapshotSize int

func (err ErrSnapshotSize) Error() string {
	return f("snapshot ram of %v bytes does not fit", int(err))
}

// ErrSnapshotRegisters indicates a snapshot with the wrong register
// bank size.
type ErrSnapshotRegisters int

func (err ErrSnapshotRegisters) Error() string {
	return f("snapshot has %v registers", int(err))
}
