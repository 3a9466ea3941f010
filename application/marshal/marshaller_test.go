package marshal_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/xsd-bridge/application/marshal"
	"github.com/reglet-dev/xsd-bridge/application/params"
	"github.com/reglet-dev/xsd-bridge/domain/entities"
	"github.com/reglet-dev/xsd-bridge/infrastructure/inproc"
	"github.com/reglet-dev/xsd-bridge/internal/testutil"
	"github.com/reglet-dev/xsd-bridge/xdm"
)

type countingChecker struct {
	calls int
}

func (c *countingChecker) CheckFault(context.Context) bool {
	c.calls++
	return false
}

func TestPack_EmptyStoreAllocatesNothing(t *testing.T) {
	ctx := context.Background()
	rt, p := testutil.NewProcessor(t, testutil.NewRecordingEngine(nil, nil))
	base := rt.Live()

	pk := marshal.New(p, nil).Pack(ctx, params.NewStore())
	assert.Equal(t, 0, pk.Size)
	assert.True(t, pk.Names.IsNull())
	assert.True(t, pk.Values.IsNull())
	assert.Equal(t, base, rt.Live())
}

func TestPack_ParametersThenProperties(t *testing.T) {
	ctx := context.Background()
	rt, p := testutil.NewProcessor(t, testutil.NewRecordingEngine(nil, nil))

	store := params.NewStore()
	store.SetParameter(ctx, "a", xdm.NewString("1"))
	store.SetParameter(ctx, "b", xdm.NewInteger(2))
	store.SetProperty("p", "v")

	pk := marshal.New(p, nil).Pack(ctx, store)
	require.Equal(t, 3, pk.Size)

	names, ok := rt.Resolve(pk.Names).(*inproc.Array)
	require.True(t, ok)
	values, ok := rt.Resolve(pk.Values).(*inproc.Array)
	require.True(t, ok)
	require.Len(t, names.Elems, 3)
	require.Len(t, values.Elems, 3)

	got := make([]string, 3)
	for i, h := range names.Elems {
		got[i], _ = rt.Resolve(h).(string)
	}
	assert.ElementsMatch(t, []string{"param:a", "param:b"}, got[:2])
	assert.Equal(t, "p", got[2])
	assert.Equal(t, "v", rt.Resolve(values.Elems[2]))

	before := rt.Live()
	pk.Release(ctx, p)
	pk.Release(ctx, p)
	// 2 arrays + 3 names + 1 property value; parameter atomics stay cached
	assert.Equal(t, before-6, rt.Live())
}

func TestInvoke_ReleasesTransients(t *testing.T) {
	ctx := context.Background()
	engine := testutil.NewRecordingEngine(nil, nil)
	rt, p := testutil.NewProcessor(t, engine)

	vClass, err := rt.FindClass(ctx, entities.ValidatorClassName)
	require.NoError(t, err)
	v := rt.NewObject(ctx, vClass, entities.Sig(entities.KindVoid, entities.KindProcessor), p.Handle())
	require.False(t, v.IsNull())
	m, ok := rt.LookupMethod(ctx, vClass, marshal.Validate.Name, marshal.Validate.Signature)
	require.True(t, ok)

	store := params.NewStore()
	param := xdm.NewString("x")
	store.SetParameter(ctx, "a", param)
	store.SetProperty("k", "v")

	checker := &countingChecker{}
	mar := marshal.New(p, checker)

	// warm the parameter's cached handle
	param.ToHost(ctx, p)
	before := rt.Live()

	res := mar.Invoke(ctx, v, m, store, marshal.String("/cwd"), marshal.OrNull(""), marshal.Null())
	assert.True(t, res.IsNull())
	assert.Equal(t, before, rt.Live())
	assert.Equal(t, 1, checker.calls)

	call := engine.Last()
	assert.Equal(t, "/cwd", call.Cwd)
	assert.Equal(t, "", call.Source)
	assert.Equal(t, map[string]any{"a": inproc.Atomic{Type: xdm.TypeString, Lexical: "x"}}, call.Params)
	assert.Equal(t, map[string]any{"k": "v"}, call.Properties)
}

func TestLiteral(t *testing.T) {
	assert.True(t, marshal.Null().IsNull())
	assert.True(t, marshal.OrNull("").IsNull())
	assert.False(t, marshal.OrNull("x").IsNull())
	assert.False(t, marshal.String("").IsNull())
}

func TestEntryPoints(t *testing.T) {
	eps := marshal.ValidatorEntryPoints()
	require.Len(t, eps, 5)

	assert.False(t, marshal.Validate.Returns())
	assert.True(t, marshal.ValidateToNode.Returns())
	assert.Equal(t, "getValidationReport()node", marshal.GetValidationReport.String())
	assert.Equal(t, "validate(string,string,string,[]string,[]object)void", marshal.Validate.String())
}
