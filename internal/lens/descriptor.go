package lens

import "context"

// Capability tags which register operations an address supports.
type Capability int

const (
	// Inert addresses read a default value and ignore writes.
	Inert Capability = iota
	// ReadOnly addresses dispatch reads to a backend getter.
	ReadOnly
	// WriteOnly addresses dispatch writes to a backend action.
	WriteOnly
	// ReadWrite addresses support both.
	ReadWrite
)

// String returns the lowercase capability name.
func (c Capability) String() string {
	switch c {
	case Inert:
		return "inert"
	case ReadOnly:
		return "read-only"
	case WriteOnly:
		return "write-only"
	case ReadWrite:
		return "read-write"
	default:
		return "unknown"
	}
}

// CanRead reports whether reads reach the backend.
func (c Capability) CanRead() bool {
	return c == ReadOnly || c == ReadWrite
}

// CanWrite reports whether writes reach the backend.
func (c Capability) CanWrite() bool {
	return c == WriteOnly || c == ReadWrite
}

// Reader fetches a register value from the backend.
type Reader func(ctx context.Context) (int, error)

// Writer pushes a register value to the backend.
type Writer func(ctx context.Context, value int) error

// Descriptor describes the command bound to one address. Build it with
// InertCommand, ReadCommand, WriteCommand or ReadWriteCommand so the
// capability always matches the operations present.
type Descriptor struct {
	Name       string
	Capability Capability

	read  Reader
	write Writer
}

// InertCommand returns a descriptor with no backend operations.
func InertCommand(name string) Descriptor {
	return Descriptor{Name: name, Capability: Inert}
}

// ReadCommand returns a read-only descriptor.
func ReadCommand(name string, r Reader) Descriptor {
	if r == nil {
		return InertCommand(name)
	}
	return Descriptor{Name: name, Capability: ReadOnly, read: r}
}

// WriteCommand returns a write-only descriptor.
func WriteCommand(name string, w Writer) Descriptor {
	if w == nil {
		return InertCommand(name)
	}
	return Descriptor{Name: name, Capability: WriteOnly, write: w}
}

// ReadWriteCommand returns a descriptor supporting both directions. A nil
// side degrades the capability accordingly.
func ReadWriteCommand(name string, r Reader, w Writer) Descriptor {
	switch {
	case r == nil:
		return WriteCommand(name, w)
	case w == nil:
		return ReadCommand(name, r)
	}
	return Descriptor{Name: name, Capability: ReadWrite, read: r, write: w}
}

// Reader returns the read operation if the descriptor has one.
func (d Descriptor) Reader() (Reader, bool) {
	return d.read, d.Capability.CanRead()
}

// Writer returns the write operation if the descriptor has one.
func (d Descriptor) Writer() (Writer, bool) {
	return d.write, d.Capability.CanWrite()
}
