package resolver

import (
	"errors"
	"fmt"

	"github.com/towalink/hostname2set/lib/types"
)

var ErrEmptyHostname = errors.New("hostname is empty")

// EmptyResultError reports a hostname without any address of the requested
// family.
type EmptyResultError struct {
	Hostname string
	Family   types.AddressFamily
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no %s record found for %s", e.Family, e.Hostname)
}

// AddressSyntaxError reports a record that is neither an alias nor an
// address of the requested family.
type AddressSyntaxError struct {
	Hostname string
	Family   types.AddressFamily
	Record   string
}

func (e *AddressSyntaxError) Error() string {
	return fmt.Sprintf("unexpected %s address syntax for %s: %q", e.Family, e.Hostname, e.Record)
}
