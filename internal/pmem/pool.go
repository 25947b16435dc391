// Package pmem provides a small durable object pool backed by a memory-mapped file.
//
// A pool file starts with a header page holding the pool metadata and the root
// object, followed by an array of fixed-size slots. Each slot carries one typed
// object. Objects are mutated in place through the mapping and made durable by
// an explicit Persist call on the bytes that changed. The pool gives no
// multi-object transactions: each Persist stands on its own.
package pmem

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Pool file format constants.
const (
	headerSize = 4096
	rootOffset = 256
	// MaxRootSize is the largest root object a pool can hold.
	MaxRootSize = headerSize - rootOffset

	// DefaultSlotSize fits an 8 byte slot header and up to 24 bytes of payload.
	DefaultSlotSize = 32
	slotHeaderSize  = 8

	// MaxLayoutLen is the longest layout name a pool header can record.
	MaxLayoutLen = 31

	version = 1
)

var magic = [8]byte{'P', 'M', 'E', 'M', 'P', 'O', 'O', 'L'}

// Header field offsets.
const (
	offMagic    = 0
	offVersion  = 8
	offSlotSize = 12
	offSize     = 16
	offSlots    = 24
	offHWM      = 32
	offRootSize = 40
	offLayout   = 48
	layoutField = MaxLayoutLen + 1
)

// Sentinel errors returned (wrapped) by pool operations.
var (
	ErrPoolExists     = errors.New("pool file already exists")
	ErrLayoutMismatch = errors.New("layout mismatch")
	ErrCorrupt        = errors.New("pool file is corrupt")
	ErrLocked         = errors.New("pool is in use by another process")
	ErrPoolSize       = errors.New("pool size too small")
	ErrOutOfSpace     = errors.New("out of pool space")
	ErrObjectSize     = errors.New("object does not fit in a slot")
	ErrRootSize       = errors.New("invalid root size")
	ErrInvalidOID     = errors.New("invalid object id")
	ErrInvalidType    = errors.New("invalid type number")
	ErrOutOfRange     = errors.New("range is outside the pool mapping")
	ErrClosed         = errors.New("pool is closed")
)

// TypeNum tags every allocated object. Zero marks a free slot.
type TypeNum uint16

// OID is a stable handle to an allocated object. The zero OID is null.
type OID uint64

// IsNull reports whether the handle refers to no object.
func (o OID) IsNull() bool {
	return o == 0
}

func (o OID) slot() uint64 {
	return uint64(o) - 1
}

// Pool is an open pool file. It is not safe for concurrent use.
type Pool struct {
	file     *os.File
	data     []byte
	path     string
	slotSize int
	nslots   uint64
	hwm      uint64
	free     []uint64 // free slots below hwm, lowest index on top
	noSync   bool
	pageSize int
}

// Option configures a pool at create or open time.
type Option func(*Pool)

// WithSlotSize sets the slot size for a newly created pool. It is ignored when
// opening an existing pool, which keeps the slot size it was created with.
func WithSlotSize(n int) Option {
	return func(p *Pool) {
		p.slotSize = n
	}
}

// WithoutSync makes Persist skip msync. Writes still reach the file through the
// shared mapping, but they are not flushed to media when Persist returns.
func WithoutSync() Option {
	return func(p *Pool) {
		p.noSync = true
	}
}

// Create creates a new pool file at path with the given layout name and total
// size in bytes. It fails with ErrPoolExists if the file is already there.
func Create(path, layout string, size int64, opts ...Option) (*Pool, error) {
	p := &Pool{path: path, slotSize: DefaultSlotSize}
	for _, opt := range opts {
		opt(p)
	}

	if len(layout) > MaxLayoutLen {
		return nil, fmt.Errorf("pmem: layout %q longer than %d bytes: %w", layout, MaxLayoutLen, ErrLayoutMismatch)
	}
	if p.slotSize <= slotHeaderSize || p.slotSize%8 != 0 {
		return nil, fmt.Errorf("pmem: slot size %d: %w", p.slotSize, ErrObjectSize)
	}
	if size < int64(headerSize+p.slotSize) {
		return nil, fmt.Errorf("pmem: size %d: %w", size, ErrPoolSize)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("pmem: create %s: %w", path, ErrPoolExists)
		}
		return nil, fmt.Errorf("pmem: create %s: %w", path, err)
	}

	fail := func(err error) (*Pool, error) {
		if p.data != nil {
			unix.Munmap(p.data) //nolint:errcheck // already failing
		}
		f.Close()
		os.Remove(path)
		return nil, err
	}

	if err := lockFile(f); err != nil {
		return fail(err)
	}
	if err := f.Truncate(size); err != nil {
		return fail(fmt.Errorf("pmem: cannot size %s: %w", path, err))
	}
	if err := p.mapFile(f, int(size)); err != nil {
		return fail(err)
	}

	p.nslots = uint64((int(size) - headerSize) / p.slotSize)

	h := p.data[:rootOffset]
	copy(h[offMagic:], magic[:])
	binary.LittleEndian.PutUint32(h[offVersion:], version)
	binary.LittleEndian.PutUint32(h[offSlotSize:], uint32(p.slotSize))
	binary.LittleEndian.PutUint64(h[offSize:], uint64(size))
	binary.LittleEndian.PutUint64(h[offSlots:], p.nslots)
	binary.LittleEndian.PutUint64(h[offHWM:], 0)
	binary.LittleEndian.PutUint32(h[offRootSize:], 0)
	copy(h[offLayout:offLayout+layoutField], layout)

	if err := p.persistRange(0, rootOffset); err != nil {
		return fail(err)
	}
	return p, nil
}

// Open opens an existing pool file and checks it was created with layout.
func Open(path, layout string, opts ...Option) (*Pool, error) {
	p := &Pool{path: path}
	for _, opt := range opts {
		opt(p)
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("pmem: open %s: %w", path, err)
	}

	fail := func(err error) (*Pool, error) {
		if p.data != nil {
			unix.Munmap(p.data) //nolint:errcheck // already failing
		}
		f.Close()
		return nil, err
	}

	if err := lockFile(f); err != nil {
		return fail(err)
	}

	info, err := f.Stat()
	if err != nil {
		return fail(fmt.Errorf("pmem: stat %s: %w", path, err))
	}
	if info.Size() < headerSize {
		return fail(fmt.Errorf("pmem: %s is %d bytes: %w", path, info.Size(), ErrCorrupt))
	}
	if err := p.mapFile(f, int(info.Size())); err != nil {
		return fail(err)
	}

	h := p.data[:rootOffset]
	if !bytes.Equal(h[offMagic:offMagic+len(magic)], magic[:]) {
		return fail(fmt.Errorf("pmem: %s: bad magic: %w", path, ErrCorrupt))
	}
	if v := binary.LittleEndian.Uint32(h[offVersion:]); v != version {
		return fail(fmt.Errorf("pmem: %s: unsupported version %d: %w", path, v, ErrCorrupt))
	}
	if got := headerLayout(h); got != layout {
		return fail(fmt.Errorf("pmem: %s has layout %q, want %q: %w", path, got, layout, ErrLayoutMismatch))
	}

	p.slotSize = int(binary.LittleEndian.Uint32(h[offSlotSize:]))
	p.nslots = binary.LittleEndian.Uint64(h[offSlots:])
	p.hwm = binary.LittleEndian.Uint64(h[offHWM:])
	size := binary.LittleEndian.Uint64(h[offSize:])

	switch {
	case size != uint64(info.Size()):
		return fail(fmt.Errorf("pmem: %s: header size %d, file size %d: %w", path, size, info.Size(), ErrCorrupt))
	case p.slotSize <= slotHeaderSize:
		return fail(fmt.Errorf("pmem: %s: slot size %d: %w", path, p.slotSize, ErrCorrupt))
	case uint64(headerSize)+p.nslots*uint64(p.slotSize) > size:
		return fail(fmt.Errorf("pmem: %s: %d slots overflow the file: %w", path, p.nslots, ErrCorrupt))
	case p.hwm > p.nslots:
		return fail(fmt.Errorf("pmem: %s: high-water mark %d beyond %d slots: %w", path, p.hwm, p.nslots, ErrCorrupt))
	case binary.LittleEndian.Uint32(h[offRootSize:]) > MaxRootSize:
		return fail(fmt.Errorf("pmem: %s: root size: %w", path, ErrCorrupt))
	}

	if err := p.rebuildFreeList(); err != nil {
		return fail(fmt.Errorf("pmem: %s: %w", path, err))
	}
	return p, nil
}

// CreateOrOpen opens the pool at path, creating it first when the file does
// not exist. created reports which of the two happened.
func CreateOrOpen(path, layout string, size int64, opts ...Option) (p *Pool, created bool, err error) {
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		p, err = Create(path, layout, size, opts...)
		return p, true, err
	}
	p, err = Open(path, layout, opts...)
	return p, false, err
}

func (p *Pool) mapFile(f *os.File, size int) error {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("pmem: mmap %s: %w", p.path, err)
	}
	p.file = f
	p.data = data
	p.pageSize = unix.Getpagesize()
	return nil
}

func lockFile(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		if errors.Is(err, unix.EWOULDBLOCK) {
			return fmt.Errorf("pmem: lock %s: %w", f.Name(), ErrLocked)
		}
		return fmt.Errorf("pmem: lock %s: %w", f.Name(), err)
	}
	return nil
}

func headerLayout(h []byte) string {
	field := h[offLayout : offLayout+layoutField]
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return string(field)
}

// rebuildFreeList collects the free slots below the high-water mark. They are
// pushed highest first so that allocation reuses the lowest index. A live slot
// whose size does not fit the slot fails with ErrCorrupt.
func (p *Pool) rebuildFreeList() error {
	p.free = p.free[:0]
	for i := p.hwm; i > 0; i-- {
		if p.slotType(i-1) == 0 {
			p.free = append(p.free, i-1)
			continue
		}
		if size := p.slotPayloadSize(i - 1); size == 0 || size > p.MaxObjectSize() {
			return fmt.Errorf("slot %d holds %d bytes: %w", i-1, size, ErrCorrupt)
		}
	}
	return nil
}

// Path returns the file the pool was opened from.
func (p *Pool) Path() string {
	return p.path
}

// Layout returns the layout name recorded in the pool header.
func (p *Pool) Layout() string {
	return headerLayout(p.data)
}

// Size returns the total pool size in bytes.
func (p *Pool) Size() int64 {
	return int64(len(p.data))
}

// Capacity returns the number of objects the pool can hold at once.
func (p *Pool) Capacity() int {
	return int(p.nslots)
}

// MaxObjectSize returns the largest payload a single object may have.
func (p *Pool) MaxObjectSize() int {
	return p.slotSize - slotHeaderSize
}

// Close flushes the whole mapping, unmaps it, and closes the file.
func (p *Pool) Close() error {
	if p.data == nil {
		return ErrClosed
	}

	var errs []error
	if !p.noSync {
		if err := unix.Msync(p.data, unix.MS_SYNC); err != nil {
			errs = append(errs, fmt.Errorf("pmem: msync: %w", err))
		}
	}
	if err := unix.Munmap(p.data); err != nil {
		errs = append(errs, fmt.Errorf("pmem: munmap: %w", err))
	}
	p.data = nil
	if err := p.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("pmem: close: %w", err))
	}
	return errors.Join(errs...)
}

// Persist flushes the pages covering b to durable media. b must be a
// sub-slice of memory returned by Root or Bytes.
func (p *Pool) Persist(b []byte) error {
	if p.data == nil {
		return ErrClosed
	}
	if len(b) == 0 {
		return nil
	}

	base := uintptr(unsafe.Pointer(unsafe.SliceData(p.data)))
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	if addr < base || addr+uintptr(len(b)) > base+uintptr(len(p.data)) {
		return fmt.Errorf("pmem: persist %d bytes: %w", len(b), ErrOutOfRange)
	}
	return p.persistRange(int(addr-base), len(b))
}

// persistRange flushes [off, off+n) rounded out to whole pages, which is the
// granularity msync accepts.
func (p *Pool) persistRange(off, n int) error {
	if p.noSync {
		return nil
	}
	start := off &^ (p.pageSize - 1)
	end := off + n
	if rem := end % p.pageSize; rem != 0 {
		end += p.pageSize - rem
	}
	if end > len(p.data) {
		end = len(p.data)
	}
	if err := unix.Msync(p.data[start:end], unix.MS_SYNC); err != nil {
		return fmt.Errorf("pmem: msync [%d,%d): %w", start, end, err)
	}
	return nil
}
