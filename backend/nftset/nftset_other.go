//go:build !linux

package nftset

import (
	"context"
	"errors"

	"github.com/towalink/hostname2set/adapter"
	"github.com/towalink/hostname2set/log"
)

var ErrOSNotSupported = errors.New("nftset: OS not supported")

var _ adapter.Backend = (*NftSet)(nil)

type NftSet struct{}

func New(_ log.Logger) (*NftSet, error) {
	return nil, ErrOSNotSupported
}

func (n *NftSet) Name() string {
	return BackendName
}

func (n *NftSet) Close() error {
	return nil
}

func (n *NftSet) Apply(_ context.Context, _ []adapter.Statement) error {
	return ErrOSNotSupported
}
