//go:build !linux

package ipset

import (
	"context"
	"errors"

	"github.com/towalink/hostname2set/adapter"
	"github.com/towalink/hostname2set/log"
)

var ErrOSNotSupported = errors.New("ipset: OS not supported")

var _ adapter.Backend = (*IPSet)(nil)

type IPSet struct{}

func New(_ log.Logger) (*IPSet, error) {
	return nil, ErrOSNotSupported
}

func (i *IPSet) Name() string {
	return BackendName
}

func (i *IPSet) Close() error {
	return nil
}

func (i *IPSet) Apply(_ context.Context, _ []adapter.Statement) error {
	return ErrOSNotSupported
}
