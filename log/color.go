package log

import (
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var m sync.Map

func GetColor(c color.Attribute) *color.Color {
	ccAny, _ := m.LoadOrStore(c, color.New(c))
	cc := ccAny.(*color.Color)
	cc.EnableColor()
	return cc
}

func RandomColor() color.Attribute {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return color.Attribute(31 + r.Intn(6))
}

// IsTerminal reports whether f is attached to a terminal, which is when
// colored output makes sense.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
