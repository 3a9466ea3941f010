package entities

import (
	"fmt"
	"strings"
)

// Kind is the host-side type of a single argument or result slot.
type Kind string

const (
	KindVoid        Kind = "void"
	KindBool        Kind = "bool"
	KindString      Kind = "string"
	KindObject      Kind = "object"
	KindNode        Kind = "node"
	KindProcessor   Kind = "processor"
	KindStringArray Kind = "[]string"
	KindObjectArray Kind = "[]object"
)

var validKinds = map[Kind]struct{}{
	KindVoid: {}, KindBool: {}, KindString: {}, KindObject: {}, KindNode: {},
	KindProcessor: {}, KindStringArray: {}, KindObjectArray: {},
}

// IsArray reports whether k denotes an array kind.
func (k Kind) IsArray() bool {
	return strings.HasPrefix(string(k), "[]")
}

// Signature is the ordered parameter list and result kind of a host entry point.
// Its canonical text form is "(p1,p2,...)result", e.g. "(string,[]string)void".
type Signature struct {
	Params []Kind
	Result Kind
}

// Sig builds a Signature from a result kind and parameter kinds.
func Sig(result Kind, params ...Kind) Signature {
	return Signature{Params: params, Result: result}
}

// String renders the canonical text form.
func (s Signature) String() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = string(p)
	}
	result := s.Result
	if result == "" {
		result = KindVoid
	}
	return "(" + strings.Join(parts, ",") + ")" + string(result)
}

// Equal reports whether two signatures describe the same call shape.
func (s Signature) Equal(other Signature) bool {
	return s.String() == other.String()
}

// ParseSignature parses the canonical text form produced by Signature.String.
func ParseSignature(text string) (Signature, error) {
	if !strings.HasPrefix(text, "(") {
		return Signature{}, fmt.Errorf("signature %q: missing '('", text)
	}
	closeIdx := strings.Index(text, ")")
	if closeIdx < 0 {
		return Signature{}, fmt.Errorf("signature %q: missing ')'", text)
	}

	var sig Signature
	if inner := text[1:closeIdx]; inner != "" {
		for _, p := range strings.Split(inner, ",") {
			k := Kind(strings.TrimSpace(p))
			if _, ok := validKinds[k]; !ok || k == KindVoid {
				return Signature{}, fmt.Errorf("signature %q: invalid parameter kind %q", text, k)
			}
			sig.Params = append(sig.Params, k)
		}
	}

	sig.Result = Kind(text[closeIdx+1:])
	if _, ok := validKinds[sig.Result]; !ok {
		return Signature{}, fmt.Errorf("signature %q: invalid result kind %q", text, sig.Result)
	}
	return sig, nil
}
