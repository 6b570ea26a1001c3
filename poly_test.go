package polyroot_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/polyroot"
)

func TestNewPoly_CopiesInput(t *testing.T) {
	in := []float64{1, -6, 11, -6}
	p, err := polyroot.NewPoly(in...)
	require.NoError(t, err)
	in[0] = 42
	assert.Equal(t, []float64{1, -6, 11, -6}, p.Coeffs())

	out := p.Coeffs()
	out[1] = 0
	assert.Equal(t, -6.0, p.Coeffs()[1])
	assert.Equal(t, 3, p.Degree())
}

func TestNewPoly_Rejects(t *testing.T) {
	_, err := polyroot.NewPoly()
	assert.ErrorIs(t, err, polyroot.ErrInvalidArgument)
	_, err = polyroot.NewPoly(3)
	assert.ErrorIs(t, err, polyroot.ErrInvalidArgument)
	_, err = polyroot.NewPoly(0, 1)
	assert.ErrorIs(t, err, polyroot.ErrInvalidArgument)
}

func TestMustPoly_Panics(t *testing.T) {
	assert.Panics(t, func() { polyroot.MustPoly(0, 1) })
}

func TestPoly_String(t *testing.T) {
	tests := []struct {
		coeffs []float64
		want   string
		latex  string
	}{
		{[]float64{1, -6, 11, -6}, "x^3 - 6*x^2 + 11*x - 6", "x^{3} - 6x^{2} + 11x - 6"},
		{[]float64{2, 3}, "2*x + 3", "2x + 3"},
		{[]float64{1, 0, 1}, "x^2 + 1", "x^{2} + 1"},
		{[]float64{-1, 0, 4}, "-x^2 + 4", "-x^{2} + 4"},
		{[]float64{0.5, -1, 0}, "0.5*x^2 - x", "0.5x^{2} - x"},
	}
	for _, tt := range tests {
		p := polyroot.MustPoly(tt.coeffs...)
		assert.Equal(t, tt.want, p.String())
		assert.Equal(t, tt.latex, p.LaTeX())
	}
}

func TestPoly_EvalAndRoots(t *testing.T) {
	p := polyroot.MustPoly(1, 0, -4)
	assert.Equal(t, 0.0, p.Eval(2))
	assert.Equal(t, 4.0, p.Derivative(2))

	roots, err := p.Roots()
	require.NoError(t, err)
	assertRoots(t, []float64{-2, 2}, roots)

	q, rem := p.Deflate(2)
	assert.Equal(t, []float64{1, 2}, q)
	assert.Equal(t, 0.0, rem)
}

func TestPoly_JSON(t *testing.T) {
	b, err := json.Marshal(polyroot.MustPoly(1, -3, 2))
	require.NoError(t, err)
	assert.JSONEq(t, `{"coefficients":[1,-3,2],"degree":2}`, string(b))

	var p polyroot.Poly
	require.NoError(t, json.Unmarshal([]byte(`{"coefficients":[2,4]}`), &p))
	assert.Equal(t, 1, p.Degree())

	err = json.Unmarshal([]byte(`{"coefficients":[0,4]}`), &p)
	assert.ErrorIs(t, err, polyroot.ErrInvalidArgument)
}
