// Package printer is the dry-run backend. It writes each statement in nft
// syntax instead of applying it.
package printer

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/towalink/hostname2set/adapter"
	"github.com/towalink/hostname2set/constant"
)

const BackendName = constant.BackendPrinter

var _ adapter.Backend = (*Printer)(nil)

type Printer struct {
	lock   sync.Mutex
	writer io.Writer
}

func New(writer io.Writer) *Printer {
	return &Printer{
		writer: writer,
	}
}

func (p *Printer) Name() string {
	return BackendName
}

func (p *Printer) Close() error {
	return nil
}

func (p *Printer) Apply(ctx context.Context, statements []adapter.Statement) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	err := ctx.Err()
	if err != nil {
		return err
	}
	for _, st := range statements {
		_, err = fmt.Fprintln(p.writer, st.String())
		if err != nil {
			return fmt.Errorf("write statement fail: %s", err)
		}
	}
	return nil
}
