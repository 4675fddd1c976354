package registers

import "fmt"

// AccessError wraps a failed reader or writer call for one address. It
// matches ErrRemoteUnavailable and unwraps to the backend error.
type AccessError struct {
	Op      string
	Address int
	Name    string
	Err     error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%v: %s %d (%s): %v", ErrRemoteUnavailable, e.Op, e.Address, e.Name, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// Is reports ErrRemoteUnavailable as a match so callers need not know the
// backend failure code.
func (e *AccessError) Is(target error) bool {
	return target == ErrRemoteUnavailable
}
