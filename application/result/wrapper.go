// Package result turns host result handles into Go-owned nodes.
package result

import (
	"github.com/reglet-dev/xsd-bridge/domain/entities"
	"github.com/reglet-dev/xsd-bridge/processor"
	"github.com/reglet-dev/xsd-bridge/xdm"
)

// Wrapper attaches result handles to the processor that produced them.
type Wrapper struct {
	proc *processor.Processor
}

// NewWrapper creates a Wrapper for p.
func NewWrapper(p *processor.Processor) *Wrapper {
	return &Wrapper{proc: p}
}

// Wrap returns a fresh node for h, or nil for the null handle.
// A null handle is an absent result, not an error.
func (w *Wrapper) Wrap(h entities.Handle) *xdm.Node {
	if h.IsNull() {
		return nil
	}
	return xdm.NewNode(h, w.proc)
}
