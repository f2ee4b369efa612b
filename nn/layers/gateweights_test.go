package layers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGateWeightsTensorsRoundTrip(t *testing.T) {
	w := fixedWeights(2, 4)
	ts := w.Tensors()
	require.Len(t, ts, 9)
	require.Equal(t, []int{4, 2}, ts["Wz"].Shape)
	require.Equal(t, []int{4, 4}, ts["Uh"].Shape)
	require.Equal(t, []int{4}, ts["Br"].Shape)

	got, err := GateWeightsFromTensors(ts)
	require.NoError(t, err)
	require.NoError(t, got.check(2, 4))

	for i := 0; i < 4; i++ {
		for j := 0; j < 2; j++ {
			require.Equal(t, w.Wh.At(i, j), got.Wh.At(i, j))
		}
		require.Equal(t, w.Bz.AtVec(i), got.Bz.AtVec(i))
	}
}

func TestGateWeightsFromTensorsMissing(t *testing.T) {
	ts := fixedWeights(2, 4).Tensors()
	delete(ts, "Ur")
	_, err := GateWeightsFromTensors(ts)
	require.Error(t, err)
}

func TestNewGateWeightsShapes(t *testing.T) {
	w := NewGateWeights(3, 6)
	require.NoError(t, w.check(3, 6))
	r, c := w.Wr.Dims()
	require.Equal(t, 6, r)
	require.Equal(t, 3, c)
	// biases start at zero
	for i := 0; i < 6; i++ {
		require.Zero(t, w.Bh.AtVec(i))
	}
	// random projections stay inside the init bound
	for i := 0; i < 6; i++ {
		for j := 0; j < 3; j++ {
			require.LessOrEqual(t, w.Wz.At(i, j), 1.0)
			require.GreaterOrEqual(t, w.Wz.At(i, j), -1.0)
		}
	}
}
