package host

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/tetratelabs/wazero/api"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
	"github.com/reglet-dev/xsd-bridge/infrastructure/inproc"
	"github.com/reglet-dev/xsd-bridge/internal/abi"
	"github.com/reglet-dev/xsd-bridge/internal/testutil"
	"github.com/reglet-dev/xsd-bridge/wireformat"
)

// fakeGuest speaks the xsdb export convention over test guest memory and
// serves it from an in-process runtime, the way a real engine would serve it
// from its own object table.
type fakeGuest struct {
	mem     *testutil.GuestMemory
	rt      *inproc.Runtime
	classes map[uint64]entities.ClassRef
	methods map[uint64]entities.MethodRef
	// trap makes the named export fail as if the guest had trapped.
	trap map[string]error
	// garbage makes the named export answer with bytes that are not JSON.
	garbage map[string]bool
}

func newFakeGuest(t *testing.T, engine inproc.Engine) *fakeGuest {
	t.Helper()
	return &fakeGuest{
		mem:     testutil.NewGuestMemory(1 << 20),
		rt:      testutil.NewRuntime(t, engine),
		classes: make(map[uint64]entities.ClassRef),
		methods: make(map[uint64]entities.MethodRef),
		trap:    make(map[string]error),
		garbage: make(map[string]bool),
	}
}

// runtime returns a host Runtime attached to the fake guest.
func (g *fakeGuest) runtime(t *testing.T) *Runtime {
	t.Helper()
	guest, err := abi.NewGuest(g.mem, g.mem.Allocate(), g.mem.Deallocate())
	if err != nil {
		t.Fatal(err)
	}
	return newRuntime(testutil.DiscardLogger(), "fake", guest, g.exports())
}

func (g *fakeGuest) reply(name string, v any) uint64 {
	if g.garbage[name] {
		return g.mem.Put([]byte("{not json"))
	}
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return g.mem.Put(data)
}

func decode[T any](g *fakeGuest, packed uint64) T {
	var v T
	if err := json.Unmarshal(g.mem.Get(packed), &v); err != nil {
		panic(err)
	}
	return v
}

func handles(ids []uint64) []entities.Handle {
	out := make([]entities.Handle, len(ids))
	for i, id := range ids {
		out[i] = entities.Handle(id)
	}
	return out
}

func (g *fakeGuest) exports() map[string]abi.Function {
	fns := map[string]func(ctx context.Context, p []uint64) []uint64{
		exportFindClass: func(ctx context.Context, p []uint64) []uint64 {
			req := decode[wireformat.FindClassWire](g, p[0])
			ref, err := g.rt.FindClass(ctx, req.Name)
			if err != nil {
				return []uint64{g.reply(exportFindClass, wireformat.ClassWire{
					Name:  req.Name,
					Error: &wireformat.ErrorDetail{Type: "not_found", Message: err.Error(), IsNotFound: true},
				})}
			}
			g.classes[ref.ID] = ref
			return []uint64{g.reply(exportFindClass, wireformat.ClassWire{Name: ref.Name, ID: ref.ID})}
		},
		exportLookupMethod: func(ctx context.Context, p []uint64) []uint64 {
			req := decode[wireformat.MethodLookupWire](g, p[0])
			sig, err := entities.ParseSignature(req.Signature)
			if err != nil {
				return []uint64{g.reply(exportLookupMethod, wireformat.MethodWire{})}
			}
			m, ok := g.rt.LookupMethod(ctx, entities.ClassRef{Name: req.Class, ID: req.ClassID}, req.Name, sig)
			if !ok {
				return []uint64{g.reply(exportLookupMethod, wireformat.MethodWire{})}
			}
			g.methods[m.ID] = m
			return []uint64{g.reply(exportLookupMethod, wireformat.MethodWire{ID: m.ID})}
		},
		exportNewObject: func(ctx context.Context, p []uint64) []uint64 {
			req := decode[wireformat.NewObjectWire](g, p[0])
			sig, _ := entities.ParseSignature(req.Signature)
			h := g.rt.NewObject(ctx, g.classes[req.ClassID], sig, handles(req.Args)...)
			return []uint64{uint64(h)}
		},
		exportNewString: func(ctx context.Context, p []uint64) []uint64 {
			var s string
			if p[0] != 0 {
				s = string(g.mem.Get(p[0]))
			}
			return []uint64{uint64(g.rt.NewString(ctx, s))}
		},
		exportGetString: func(ctx context.Context, p []uint64) []uint64 {
			s, ok := g.rt.GetString(ctx, entities.Handle(p[0]))
			return []uint64{g.reply(exportGetString, wireformat.StringWire{Value: s, OK: ok})}
		},
		exportNewAtomic: func(ctx context.Context, p []uint64) []uint64 {
			req := decode[wireformat.AtomicWire](g, p[0])
			return []uint64{uint64(g.rt.NewAtomic(ctx, req.Type, req.Lexical))}
		},
		exportNewArray: func(ctx context.Context, p []uint64) []uint64 {
			kind, _ := wireformat.ArrayKind(api.DecodeI32(p[0]))
			return []uint64{uint64(g.rt.NewArray(ctx, kind, int(api.DecodeI32(p[1]))))}
		},
		exportArraySet: func(ctx context.Context, p []uint64) []uint64 {
			g.rt.SetArrayElement(ctx, entities.Handle(p[0]), int(api.DecodeI32(p[1])), entities.Handle(p[2]))
			return nil
		},
		exportCall: func(ctx context.Context, p []uint64) []uint64 {
			req := decode[wireformat.CallWire](g, p[0])
			m, ok := g.methods[req.MethodID]
			if !ok {
				m = entities.MethodRef{ID: req.MethodID}
			}
			return []uint64{uint64(g.rt.Call(ctx, entities.Handle(req.Receiver), m, handles(req.Args)...))}
		},
		exportRelease: func(ctx context.Context, p []uint64) []uint64 {
			g.rt.DeleteRef(ctx, entities.Handle(p[0]))
			return nil
		},
		exportExcCheck: func(ctx context.Context, _ []uint64) []uint64 {
			if g.rt.ExceptionCheck(ctx) {
				return []uint64{api.EncodeI32(1)}
			}
			return []uint64{api.EncodeI32(0)}
		},
		exportExcDescribe: func(ctx context.Context, _ []uint64) []uint64 {
			entries := g.rt.DescribeException(ctx)
			if len(entries) == 0 {
				return []uint64{0}
			}
			return []uint64{g.reply(exportExcDescribe, wireformat.ExceptionWire{Entries: entries})}
		},
		exportExcClear: func(ctx context.Context, _ []uint64) []uint64 {
			g.rt.ExceptionClear(ctx)
			return nil
		},
	}

	out := make(map[string]abi.Function, len(fns))
	for name, fn := range fns {
		out[name] = testutil.Func(func(ctx context.Context, params ...uint64) ([]uint64, error) {
			if err, ok := g.trap[name]; ok {
				return nil, err
			}
			return fn(ctx, params), nil
		})
	}
	return out
}

var errUnreachable = errors.New("wasm error: unreachable")
