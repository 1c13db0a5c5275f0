// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package bus provides the byte-addressed system bus for the uctrace machine.
// A Bus exposes bounded reads and writes against a 64-bit address space;
// the System bus dispatches accesses to mapped devices, and Memory is the
// flat RAM backing used for both guest memory and device models.
package bus

import (
	"sort"
)

// Bus is the memory-access interface shared by the CPU and the tracer.
// Reads and writes may be short when the access runs off the end of the
// addressable range; a short read is not an error.
type Bus interface {
	// ReadBytes reads up to len(p) bytes starting at address.
	ReadBytes(address uint64, p []byte) (n int, err error)
	// WriteBytes writes up to len(p) bytes starting at address.
	WriteBytes(address uint64, p []byte) (n int, err error)
}

// Memory is a flat RAM region.
type Memory struct {
	Data []byte
}

var _ Bus = (*Memory)(nil)

// NewMemory creates a zeroed RAM region of the given size in bytes.
func NewMemory(size int) (mem *Memory) {
	mem = &Memory{
		Data: make([]byte, size),
	}

	return
}

// Size returns the region size in bytes.
func (mem *Memory) Size() uint64 {
	return uint64(len(mem.Data))
}

// ReadBytes copies up to len(p) bytes starting at address.
// Reads past the end of the region are truncated.
func (mem *Memory) ReadBytes(address uint64, p []byte) (n int, err error) {
	if address >= uint64(len(mem.Data)) {
		err = ErrUnmapped(address)
		return
	}

	n = copy(p, mem.Data[address:])
	return
}

// WriteBytes copies up to len(p) bytes starting at address.
// Writes past the end of the region are truncated.
func (mem *Memory) WriteBytes(address uint64, p []byte) (n int, err error) {
	if address >= uint64(len(mem.Data)) {
		err = ErrUnmapped(address)
		return
	}

	n = copy(mem.Data[address:], p)
	return
}

// Region is a device mapping on the system bus.
type Region struct {
	Base   uint64
	Size   uint64
	Device Bus
}

// System is a bus dispatching accesses to mapped device regions.
// Accesses never cross a region boundary; they are truncated at the
// end of the containing region.
type System struct {
	regions []Region
}

var _ Bus = (*System)(nil)

// Map attaches a device to the address range [base, base+size).
func (sb *System) Map(base uint64, size uint64, device Bus) (err error) {
	for _, region := range sb.regions {
		if base < region.Base+region.Size && region.Base < base+size {
			err = ErrOverlap(base)
			return
		}
	}

	sb.regions = append(sb.regions, Region{Base: base, Size: size, Device: device})
	sort.Slice(sb.regions, func(i, j int) bool {
		return sb.regions[i].Base < sb.regions[j].Base
	})

	return
}

// region finds the mapping containing address.
func (sb *System) region(address uint64) (region *Region) {
	for n := range sb.regions {
		r := &sb.regions[n]
		if address >= r.Base && address < r.Base+r.Size {
			region = r
			break
		}
	}

	return
}

// ReadBytes reads up to len(p) bytes starting at address from the
// containing region, truncating at the region's end.
func (sb *System) ReadBytes(address uint64, p []byte) (n int, err error) {
	region := sb.region(address)
	if region == nil {
		err = ErrUnmapped(address)
		return
	}

	offset := address - region.Base
	limit := region.Size - offset
	if uint64(len(p)) > limit {
		p = p[:limit]
	}

	n, err = region.Device.ReadBytes(offset, p)
	return
}

// WriteBytes writes up to len(p) bytes starting at address to the
// containing region, truncating at the region's end.
func (sb *System) WriteBytes(address uint64, p []byte) (n int, err error) {
	region := sb.region(address)
	if region == nil {
		err = ErrUnmapped(address)
		return
	}

	offset := address - region.Base
	limit := region.Size - offset
	if uint64(len(p)) > limit {
		p = p[:limit]
	}

	n, err = region.Device.WriteBytes(offset, p)
	return
}
