package lens

import (
	"context"
	"fmt"
	"strings"
)

// Reference address range served by the gateway.
const (
	AddressMin = 0
	AddressMax = 23
)

// Caller issues a named command against the lens backend.
type Caller interface {
	Call(ctx context.Context, method string, args ...int) (int, error)
}

// Binding is one row of the reference address map.
type Binding struct {
	Address    int
	Name       string
	Method     string
	Capability Capability
}

type axis struct {
	label  string
	prefix string
	base   int
}

var axes = []axis{
	{label: "Focus", prefix: "focus", base: 0},
	{label: "Zoom", prefix: "zoom", base: 10},
	{label: "Iris", prefix: "iris", base: 20},
}

// ReferenceBindings returns the lens address map: per axis a home action,
// absolute and relative moves, and a location getter.
func ReferenceBindings() []Binding {
	bindings := make([]Binding, 0, len(axes)*4)
	for _, a := range axes {
		bindings = append(bindings,
			Binding{Address: a.base, Name: a.label + " Home", Method: a.prefix + "_home", Capability: WriteOnly},
			Binding{Address: a.base + 1, Name: a.label + " Absolute", Method: a.prefix + "_absolute", Capability: WriteOnly},
			Binding{Address: a.base + 2, Name: a.label + " Relative", Method: a.prefix + "_relative", Capability: WriteOnly},
			Binding{Address: a.base + 3, Name: a.label + " Location", Method: a.prefix + "_get_location", Capability: ReadOnly},
		)
	}
	return bindings
}

// NewReferenceTable binds the reference address map to caller.
func NewReferenceTable(caller Caller) (*Table, error) {
	if caller == nil {
		return nil, fmt.Errorf("lens backend caller is required")
	}

	entries := make(map[int]Descriptor)
	for _, b := range ReferenceBindings() {
		entries[b.Address] = bind(caller, b)
	}
	return NewTable(AddressMin, AddressMax, entries)
}

func bind(caller Caller, b Binding) Descriptor {
	method := b.Method
	switch {
	case b.Capability == ReadOnly:
		return ReadCommand(b.Name, func(ctx context.Context) (int, error) {
			return caller.Call(ctx, method)
		})
	case b.Capability == WriteOnly && strings.HasSuffix(method, "_home"):
		// Home takes no argument; any written value triggers it.
		return WriteCommand(b.Name, func(ctx context.Context, _ int) error {
			_, err := caller.Call(ctx, method)
			return err
		})
	case b.Capability == WriteOnly:
		return WriteCommand(b.Name, func(ctx context.Context, value int) error {
			_, err := caller.Call(ctx, method, value)
			return err
		})
	default:
		return InertCommand(b.Name)
	}
}

