package mock

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func TestVector(t *testing.T) {
	v := Vector("deep learning vision")
	require.Len(t, v, Dimensions)
	assert.InDelta(t, 1.0, math.Sqrt(dot(v, v)), 1e-5, "vectors are unit length")

	assert.Equal(t, v, Vector("Deep Learning, vision"), "tokenization makes case and punctuation irrelevant")
	assert.Equal(t, make([]float32, Dimensions), Vector("   "), "blank text embeds to zero")
}

func TestVector_SharedTokensAreCloser(t *testing.T) {
	base := Vector("robot control autonomous driving")
	near := Vector("robot control systems")
	far := Vector("power grid market economics")

	assert.Greater(t, dot(base, near), dot(base, far))
}

func TestMockEmbedder(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()

	v, err := m.EmbedText(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, Vector("a"), v)

	vs, err := m.EmbedTexts(ctx, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vs, 2)
	assert.Equal(t, Vector("b"), vs[1])

	assert.Equal(t, 2, m.CallCount())
	assert.Equal(t, 3, m.TextCount())

	boom := errors.New("boom")
	m.EmbedTextFunc = func(context.Context, string) ([]float32, error) { return nil, boom }
	_, err = m.EmbedText(ctx, "a")
	assert.ErrorIs(t, err, boom)

	m.Reset()
	assert.Zero(t, m.CallCount())
	assert.Nil(t, m.EmbedTextFunc)
}
