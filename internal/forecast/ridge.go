package forecast

import (
	"errors"
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/mat"
)

// RidgeAlpha is the L2 penalty strength.
const RidgeAlpha = 1.0

// RidgeModel is a fitted linear model with an unpenalized intercept.
type RidgeModel struct {
	Coef      []float64
	Intercept float64
}

// Predict evaluates the model on one standardized row.
func (m *RidgeModel) Predict(x []float64) float64 {
	y := m.Intercept
	for j, c := range m.Coef {
		y += c * x[j]
	}
	return y
}

// FitRidge solves centered ridge regression. When there are more features than
// samples it solves the n×n kernel system instead of the p×p normal equations;
// both yield the same coefficients.
func FitRidge(x [][]float64, y []float64, alpha float64) (*RidgeModel, error) {
	n := len(x)
	if n == 0 || n != len(y) {
		return nil, fmt.Errorf("ridge: %d rows for %d targets", n, len(y))
	}
	return fitRidge(x, y, alpha, len(x[0]) > n)
}

func fitRidge(x [][]float64, y []float64, alpha float64, dual bool) (*RidgeModel, error) {
	n, p := len(x), len(x[0])

	xOffset := make([]float64, p)
	for _, r := range x {
		if len(r) != p {
			return nil, fmt.Errorf("ridge: ragged row of width %d, want %d", len(r), p)
		}
		for j, v := range r {
			xOffset[j] += v
		}
	}
	for j := range xOffset {
		xOffset[j] /= float64(n)
	}
	yOffset := 0.0
	for _, v := range y {
		yOffset += v
	}
	yOffset /= float64(n)

	xc := mat.NewDense(n, p, nil)
	yc := mat.NewVecDense(n, nil)
	for i, r := range x {
		for j, v := range r {
			xc.Set(i, j, v-xOffset[j])
		}
		yc.SetVec(i, y[i]-yOffset)
	}

	var coef mat.VecDense
	if dual {
		// w = Xcᵀ (Xc Xcᵀ + αI)⁻¹ yc
		var k mat.SymDense
		k.SymOuterK(1, xc)
		addDiagonal(&k, alpha)
		var dualCoef mat.VecDense
		if err := solveSPD(&k, yc, &dualCoef); err != nil {
			return nil, err
		}
		coef.MulVec(xc.T(), &dualCoef)
	} else {
		// w = (XcᵀXc + αI)⁻¹ Xcᵀ yc
		var a mat.SymDense
		a.SymOuterK(1, xc.T())
		addDiagonal(&a, alpha)
		var b mat.VecDense
		b.MulVec(xc.T(), yc)
		if err := solveSPD(&a, &b, &coef); err != nil {
			return nil, err
		}
	}

	m := &RidgeModel{Coef: make([]float64, p), Intercept: yOffset}
	for j := 0; j < p; j++ {
		c := coef.AtVec(j)
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("ridge: non-finite coefficient at column %d", j)
		}
		m.Coef[j] = c
		m.Intercept -= xOffset[j] * c
	}
	return m, nil
}

func addDiagonal(s *mat.SymDense, alpha float64) {
	n := s.SymmetricDim()
	for i := 0; i < n; i++ {
		s.SetSym(i, i, s.At(i, i)+alpha)
	}
}

func solveSPD(a *mat.SymDense, b mat.Vector, dst *mat.VecDense) error {
	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return errors.New("ridge: system is not positive definite")
	}
	if err := chol.SolveVecTo(dst, b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return fmt.Errorf("ridge: solve: %w", err)
		}
		log.Printf("[WARN] ridge system is ill-conditioned: %v", err)
	}
	return nil
}
