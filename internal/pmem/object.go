package pmem

import (
	"encoding/binary"
	"fmt"
	"iter"
)

// Slot header layout: type number, payload size, reserved.
const (
	slotOffType = 0
	slotOffSize = 2
)

// Constructor initializes the payload of a new object before it becomes
// visible to iteration. The payload is zeroed when the constructor runs.
type Constructor func(b []byte) error

// Root returns the root object, sizing it on first use. The root lives in the
// pool header and starts out zeroed. Asking for a larger size later grows it
// and zeroes the new tail. Asking for a smaller size returns the first size
// bytes of the existing root.
func (p *Pool) Root(size int) ([]byte, error) {
	if p.data == nil {
		return nil, ErrClosed
	}
	if size <= 0 || size > MaxRootSize {
		return nil, fmt.Errorf("pmem: root of %d bytes: %w", size, ErrRootSize)
	}

	cur := int(binary.LittleEndian.Uint32(p.data[offRootSize:]))
	if size > cur {
		clear(p.data[rootOffset+cur : rootOffset+size])
		if err := p.persistRange(rootOffset+cur, size-cur); err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint32(p.data[offRootSize:], uint32(size))
		if err := p.persistRange(offRootSize, 4); err != nil {
			return nil, err
		}
	}
	return p.data[rootOffset : rootOffset+size : rootOffset+size], nil
}

// CurrentRoot returns the root as it is, without sizing it. A pool whose root
// was never requested returns an empty slice.
func (p *Pool) CurrentRoot() []byte {
	if p.data == nil {
		return nil
	}
	cur := int(binary.LittleEndian.Uint32(p.data[offRootSize:]))
	return p.data[rootOffset : rootOffset+cur : rootOffset+cur]
}

func (p *Pool) slotOffset(i uint64) int {
	return headerSize + int(i)*p.slotSize
}

func (p *Pool) slotType(i uint64) TypeNum {
	return TypeNum(binary.LittleEndian.Uint16(p.data[p.slotOffset(i)+slotOffType:]))
}

func (p *Pool) slotPayloadSize(i uint64) int {
	return int(binary.LittleEndian.Uint16(p.data[p.slotOffset(i)+slotOffSize:]))
}

func (p *Pool) setHWM(hwm uint64) error {
	p.hwm = hwm
	binary.LittleEndian.PutUint64(p.data[offHWM:], hwm)
	return p.persistRange(offHWM, 8)
}

// Alloc allocates an object of size bytes tagged with typ and runs ctor on its
// payload. The payload is persisted before the type tag is published, so a
// crash never exposes a half-built object to iteration.
func (p *Pool) Alloc(typ TypeNum, size int, ctor Constructor) (OID, error) {
	if p.data == nil {
		return 0, ErrClosed
	}
	if typ == 0 {
		return 0, fmt.Errorf("pmem: alloc: %w", ErrInvalidType)
	}
	if size <= 0 || size > p.MaxObjectSize() {
		return 0, fmt.Errorf("pmem: alloc %d bytes (max %d): %w", size, p.MaxObjectSize(), ErrObjectSize)
	}

	var idx uint64
	if len(p.free) > 0 {
		idx = p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]
	} else {
		if p.hwm >= p.nslots {
			return 0, fmt.Errorf("pmem: alloc type %d: %w", typ, ErrOutOfSpace)
		}
		idx = p.hwm
		// The mark moves first. A slot below it with a zero tag is simply free.
		if err := p.setHWM(p.hwm + 1); err != nil {
			p.pushFree(idx)
			return 0, err
		}
	}

	off := p.slotOffset(idx)
	slot := p.data[off : off+p.slotSize]
	payload := slot[slotHeaderSize : slotHeaderSize+size : slotHeaderSize+size]
	clear(slot[slotHeaderSize:])

	release := func() {
		p.pushFree(idx)
	}

	if ctor != nil {
		if err := ctor(payload); err != nil {
			release()
			return 0, fmt.Errorf("pmem: constructor for type %d: %w", typ, err)
		}
	}
	if err := p.persistRange(off+slotHeaderSize, p.slotSize-slotHeaderSize); err != nil {
		release()
		return 0, err
	}

	binary.LittleEndian.PutUint16(slot[slotOffSize:], uint16(size))
	binary.LittleEndian.PutUint16(slot[slotOffType:], uint16(typ))
	if err := p.persistRange(off, slotHeaderSize); err != nil {
		return 0, err
	}
	return OID(idx + 1), nil
}

func (p *Pool) checkOID(oid OID) error {
	if p.data == nil {
		return ErrClosed
	}
	if oid.IsNull() || oid.slot() >= p.hwm || p.slotType(oid.slot()) == 0 {
		return fmt.Errorf("pmem: oid %d: %w", oid, ErrInvalidOID)
	}
	return nil
}

// Free releases the object. Its slot may be handed out again by Alloc.
func (p *Pool) Free(oid OID) error {
	if err := p.checkOID(oid); err != nil {
		return err
	}
	off := p.slotOffset(oid.slot())
	binary.LittleEndian.PutUint16(p.data[off+slotOffType:], 0)
	if err := p.persistRange(off, slotHeaderSize); err != nil {
		return err
	}
	p.pushFree(oid.slot())
	return nil
}

// pushFree keeps the free list ordered so the lowest index is handed out next.
func (p *Pool) pushFree(idx uint64) {
	i := len(p.free)
	for i > 0 && p.free[i-1] < idx {
		i--
	}
	p.free = append(p.free, 0)
	copy(p.free[i+1:], p.free[i:])
	p.free[i] = idx
}

// Bytes returns the payload of a live object as a view into the mapping, or
// nil when the slot's recorded size does not fit the slot.
// Writes through the view must be followed by Persist to be durable.
func (p *Pool) Bytes(oid OID) []byte {
	if p.checkOID(oid) != nil {
		return nil
	}
	size := p.slotPayloadSize(oid.slot())
	if size == 0 || size > p.MaxObjectSize() {
		return nil
	}
	start := p.slotOffset(oid.slot()) + slotHeaderSize
	return p.data[start : start+size : start+size]
}

// Each yields every live object of typ in ascending slot order. The loop body
// may free the current object or any other one without disturbing the walk.
func (p *Pool) Each(typ TypeNum) iter.Seq[OID] {
	return func(yield func(OID) bool) {
		for i := uint64(0); p.data != nil && i < p.hwm; i++ {
			if p.slotType(i) != typ {
				continue
			}
			if !yield(OID(i + 1)) {
				return
			}
		}
	}
}

// First returns the live object of typ with the lowest slot index.
func (p *Pool) First(typ TypeNum) (OID, bool) {
	for oid := range p.Each(typ) {
		return oid, true
	}
	return 0, false
}

// Count returns the number of live objects of typ.
func (p *Pool) Count(typ TypeNum) int {
	n := 0
	for range p.Each(typ) {
		n++
	}
	return n
}
