package core

import (
	"fmt"
	"net/netip"
)

type Stage string

const (
	StageResolve Stage = "resolve"
	StageApply   Stage = "apply"
)

// Error is the error that aborted a run, with the step it happened in.
type Error struct {
	Stage    Stage
	Hostname string
	Addr     netip.Addr
	Err      error
}

func (e *Error) Error() string {
	if e.Addr.IsValid() {
		return fmt.Sprintf("%s %s (%s) fail: %s", e.Stage, e.Hostname, e.Addr, e.Err)
	}
	return fmt.Sprintf("%s %s fail: %s", e.Stage, e.Hostname, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
