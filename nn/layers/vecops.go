package layers

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

func mulVec(w *mat.Dense, x mat.Vector) *mat.VecDense {
	r, _ := w.Dims()
	o := mat.NewVecDense(r, nil)
	o.MulVec(w, x)
	return o
}

func addVecs(vs ...*mat.VecDense) *mat.VecDense {
	o := mat.NewVecDense(vs[0].Len(), nil)
	for _, v := range vs {
		o.AddVec(o, v)
	}
	return o
}

func mulElem(a, b *mat.VecDense) *mat.VecDense {
	o := mat.NewVecDense(a.Len(), nil)
	o.MulElemVec(a, b)
	return o
}

func applyVec(fn Activation, v *mat.VecDense) *mat.VecDense {
	o := mat.NewVecDense(v.Len(), nil)
	for i := 0; i < v.Len(); i++ {
		o.SetVec(i, fn.Activate(v.AtVec(i)))
	}
	return o
}

func randomArray(size int, v float64) []float64 {
	dist := distuv.Uniform{
		Min: -1 / math.Sqrt(v),
		Max: 1 / math.Sqrt(v),
	}

	data := make([]float64, size)
	for i := 0; i < size; i++ {
		data[i] = dist.Rand()
	}
	return data
}
