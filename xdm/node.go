package xdm

import (
	"context"
	"weak"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
	"github.com/reglet-dev/xsd-bridge/domain/ports"
	"github.com/reglet-dev/xsd-bridge/processor"
)

var toStringSignature = entities.Sig(entities.KindString)

// Node wraps a host-resident document or report node.
// It keeps a weak back-reference to the processor that produced it.
type Node struct {
	refCount
	rt     ports.HostRuntime
	proc   weak.Pointer[processor.Processor]
	handle entities.Handle
}

// NewNode wraps h. The node takes ownership of the handle.
func NewNode(h entities.Handle, p *processor.Processor) *Node {
	n := &Node{handle: h}
	if p != nil {
		n.rt = p.Runtime()
		n.proc = weak.Make(p)
	}
	return n
}

// Handle returns the wrapped host handle.
func (n *Node) Handle() entities.Handle {
	return n.handle
}

// Processor returns the owning processor, or nil once it has been collected.
func (n *Node) Processor() *processor.Processor {
	return n.proc.Value()
}

// ToHost returns the wrapped handle itself.
func (n *Node) ToHost(_ context.Context, _ *processor.Processor) entities.Handle {
	if n.Destroyed() {
		return entities.NullHandle
	}
	return n.handle
}

// Serialize asks the host for the node's string form.
// It reports false when the node is destroyed, its processor is gone or the
// host has no serializer for it. A host exception raised by the serializer is
// left pending for the caller's fault check.
func (n *Node) Serialize(ctx context.Context) (string, bool) {
	if n.Destroyed() || n.handle.IsNull() || n.Processor() == nil {
		return "", false
	}
	class, err := n.rt.FindClass(ctx, entities.NodeClassName)
	if err != nil {
		return "", false
	}
	m, ok := n.rt.LookupMethod(ctx, class, "toString", toStringSignature)
	if !ok {
		return "", false
	}
	h := n.rt.Call(ctx, n.handle, m)
	if h.IsNull() {
		return "", false
	}
	defer n.rt.DeleteRef(ctx, h)
	return n.rt.GetString(ctx, h)
}

// Destroy releases the host node.
func (n *Node) Destroy(ctx context.Context) {
	if !n.markDestroyed() {
		return
	}
	if n.rt != nil && !n.handle.IsNull() {
		n.rt.DeleteRef(ctx, n.handle)
	}
	n.handle = entities.NullHandle
}
