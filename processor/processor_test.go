package processor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
	"github.com/reglet-dev/xsd-bridge/infrastructure/inproc"
	"github.com/reglet-dev/xsd-bridge/internal/testutil"
	"github.com/reglet-dev/xsd-bridge/processor"
)

func TestNew_Options(t *testing.T) {
	t.Setenv(processor.ResourcesEnv, "/env/resources")

	rt, p := testutil.NewProcessor(t, testutil.NewRecordingEngine(nil, nil),
		processor.WithCwd("/work"))
	assert.Equal(t, "/work", p.Cwd())
	assert.Equal(t, "/env/resources", p.ResourcesDirectory())
	assert.Same(t, rt, p.Runtime())
	assert.False(t, p.Handle().IsNull())

	p.SetResourcesDirectory("/other")
	assert.Equal(t, "/other", p.ResourcesDirectory())
}

func TestNew_ExplicitResourcesOverrideEnv(t *testing.T) {
	t.Setenv(processor.ResourcesEnv, "/env/resources")
	_, p := testutil.NewProcessor(t, testutil.NewRecordingEngine(nil, nil),
		processor.WithResourcesDirectory("/explicit"))
	assert.Equal(t, "/explicit", p.ResourcesDirectory())
}

func TestNew_OnlyProcessorHandleSurvives(t *testing.T) {
	rt := testutil.NewRuntime(t, testutil.NewRecordingEngine(nil, nil))
	p, err := processor.New(context.Background(), rt, processor.WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)
	assert.Equal(t, 1, rt.Live())

	p.Close(context.Background())
	p.Close(context.Background())
	assert.Equal(t, 0, rt.Live())
	assert.True(t, p.Handle().IsNull())
}

func TestNew_MissingClass(t *testing.T) {
	rt, err := inproc.NewRuntime()
	require.NoError(t, err)
	_, err = processor.New(context.Background(), rt)
	assert.ErrorContains(t, err, "failed to find processor class")
}

func TestNew_ConstructorFault(t *testing.T) {
	failing := inproc.NewClass(entities.ProcessorClassName).
		Constructor(entities.Sig(entities.KindVoid, entities.KindBool), func(context.Context, *inproc.Call) (any, error) {
			return nil, inproc.Throw("LIC001", "no license")
		})
	rt, err := inproc.NewRuntime(inproc.WithClass(failing), inproc.WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)

	_, err = processor.New(context.Background(), rt, processor.WithLogger(testutil.DiscardLogger()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LIC001: no license")
	assert.False(t, rt.ExceptionCheck(context.Background()))
	assert.Equal(t, 0, rt.Live())
}

func TestNew_LicensedFlag(t *testing.T) {
	var got []string
	recording := inproc.NewClass(entities.ProcessorClassName).
		Constructor(entities.Sig(entities.KindVoid, entities.KindBool), func(_ context.Context, c *inproc.Call) (any, error) {
			a, _ := c.Object(0).(inproc.Atomic)
			got = append(got, a.Type+"="+a.Lexical)
			return struct{}{}, nil
		})
	rt, err := inproc.NewRuntime(inproc.WithClass(recording))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = processor.New(ctx, rt, processor.WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)
	_, err = processor.New(ctx, rt, processor.WithLicensed(false))
	require.NoError(t, err)

	assert.Equal(t, []string{"xs:boolean=true", "xs:boolean=false"}, got)
}
