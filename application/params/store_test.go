package params_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/xsd-bridge/application/params"
	"github.com/reglet-dev/xsd-bridge/xdm"
)

func TestStore_SetParameter(t *testing.T) {
	ctx := context.Background()
	s := params.NewStore()
	v := xdm.NewString("x")

	s.SetParameter(ctx, "a", v)
	assert.Equal(t, int32(1), v.RefCount())

	got, ok := s.Parameter("a")
	require.True(t, ok)
	assert.Same(t, v, got)
	assert.Contains(t, s.Parameters(), "param:a")
}

func TestStore_SetParameter_NilIgnored(t *testing.T) {
	s := params.NewStore()
	s.SetParameter(context.Background(), "a", nil)
	assert.Equal(t, 0, s.Len())
}

func TestStore_SetParameter_SameValueTwice(t *testing.T) {
	ctx := context.Background()
	s := params.NewStore()
	v := xdm.NewString("x")

	s.SetParameter(ctx, "a", v)
	s.SetParameter(ctx, "a", v)
	assert.Equal(t, int32(1), v.RefCount())
	assert.False(t, v.Destroyed())
}

func TestStore_SetParameter_ReplaceReleasesOld(t *testing.T) {
	ctx := context.Background()
	s := params.NewStore()
	old := xdm.NewString("old")
	s.SetParameter(ctx, "a", old)

	s.SetParameter(ctx, "a", xdm.NewString("new"))
	assert.True(t, old.Destroyed())
	assert.Equal(t, 1, s.Len())
}

func TestStore_ClearParameters_WithDelete(t *testing.T) {
	ctx := context.Background()
	s := params.NewStore()

	solo := xdm.NewString("solo")
	shared := xdm.NewString("shared")
	shared.IncRef() // held elsewhere too

	s.SetParameter(ctx, "solo", solo)
	s.SetParameter(ctx, "shared", shared)
	require.Equal(t, int32(2), shared.RefCount())

	s.ClearParameters(ctx, true)

	assert.True(t, solo.Destroyed(), "count 1 -> destroyed")
	assert.False(t, shared.Destroyed(), "count 2 -> only decremented")
	assert.Equal(t, int32(1), shared.RefCount())
	assert.Empty(t, s.Parameters())
}

func TestStore_ClearParameters_WithoutDelete(t *testing.T) {
	ctx := context.Background()
	s := params.NewStore()
	v := xdm.NewString("x")
	s.SetParameter(ctx, "a", v)

	s.ClearParameters(ctx, false)
	assert.Empty(t, s.Parameters())
	assert.Equal(t, int32(1), v.RefCount())
	assert.False(t, v.Destroyed())
}

func TestStore_RemoveParameter(t *testing.T) {
	ctx := context.Background()
	s := params.NewStore()
	v := xdm.NewString("x")
	s.SetParameter(ctx, "a", v)

	assert.True(t, s.RemoveParameter("a"))
	assert.False(t, s.RemoveParameter("a"))
	// ownership moved to the caller
	assert.Equal(t, int32(1), v.RefCount())
	assert.True(t, xdm.Release(ctx, v))
}

func TestStore_SourceNodeIsNotAUserParameter(t *testing.T) {
	ctx := context.Background()
	s := params.NewStore()
	n := xdm.NewNode(0, nil)

	s.SetSourceNode(ctx, n)
	s.SetSourceNode(ctx, nil)
	assert.Contains(t, s.Parameters(), params.SourceNodeKey)
	assert.False(t, s.RemoveParameter(params.SourceNodeKey))
}

func TestStore_Properties(t *testing.T) {
	s := params.NewStore()
	s.SetProperty("k", "v1")
	s.SetProperty("k", "v2")

	got, ok := s.Property("k")
	require.True(t, ok)
	assert.Equal(t, "v2", got)
	assert.Equal(t, 1, s.Len())

	s.ClearProperties()
	_, ok = s.Property("k")
	assert.False(t, ok)
}
