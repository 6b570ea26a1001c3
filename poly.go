package polyroot

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ============================================================
// Poly: immutable polynomial value
// ============================================================

// Poly is a validated polynomial: at least two coefficients and a non-zero
// leading term. It is never modified after construction.
type Poly struct{ coeffs []float64 }

// NewPoly copies coeffs (highest degree first) into a Poly.
func NewPoly(coeffs ...float64) (*Poly, error) {
	if err := validateCoeffs(coeffs); err != nil {
		return nil, err
	}
	return &Poly{coeffs: append([]float64(nil), coeffs...)}, nil
}

// MustPoly is NewPoly for literals known to be valid; it panics otherwise.
func MustPoly(coeffs ...float64) *Poly {
	p, err := NewPoly(coeffs...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Poly) Coeffs() []float64                       { return append([]float64(nil), p.coeffs...) }
func (p *Poly) Degree() int                             { return len(p.coeffs) - 1 }
func (p *Poly) Eval(x float64) float64                  { return Eval(p.coeffs, x) }
func (p *Poly) Derivative(x float64) float64            { return Derivative(p.coeffs, x) }
func (p *Poly) Roots(opts ...Option) ([]float64, error) { return FindAllRoots(p.coeffs, opts...) }

// Deflate divides by (x - root). The quotient is returned as raw
// coefficients because deflating a linear polynomial leaves a constant.
func (p *Poly) Deflate(root float64) ([]float64, float64) {
	return DeflateRemainder(p.coeffs, root)
}

func (p *Poly) String() string {
	return p.render(func(power int) string {
		switch power {
		case 0:
			return ""
		case 1:
			return "x"
		}
		return "x^" + strconv.Itoa(power)
	}, "*")
}

func (p *Poly) LaTeX() string {
	return p.render(func(power int) string {
		switch power {
		case 0:
			return ""
		case 1:
			return "x"
		}
		return fmt.Sprintf("x^{%d}", power)
	}, "")
}

func (p *Poly) render(variable func(power int) string, mulSep string) string {
	var sb strings.Builder
	n := len(p.coeffs) - 1
	for i, c := range p.coeffs {
		if c == 0 {
			continue
		}
		power := n - i
		neg := c < 0
		abs := math.Abs(c)
		switch {
		case sb.Len() == 0 && neg:
			sb.WriteString("-")
		case sb.Len() > 0 && neg:
			sb.WriteString(" - ")
		case sb.Len() > 0:
			sb.WriteString(" + ")
		}
		v := variable(power)
		switch {
		case v == "":
			sb.WriteString(formatCoeff(abs))
		case abs == 1:
			sb.WriteString(v)
		default:
			sb.WriteString(formatCoeff(abs))
			sb.WriteString(mulSep)
			sb.WriteString(v)
		}
	}
	return sb.String()
}

func formatCoeff(c float64) string { return strconv.FormatFloat(c, 'g', -1, 64) }

type polyJSON struct {
	Coefficients []float64 `json:"coefficients"`
	Degree       int       `json:"degree"`
}

func (p *Poly) MarshalJSON() ([]byte, error) {
	return json.Marshal(polyJSON{Coefficients: p.coeffs, Degree: p.Degree()})
}

// UnmarshalJSON reads {"coefficients": [...]}; degree is derived and ignored
// on input.
func (p *Poly) UnmarshalJSON(data []byte) error {
	var raw polyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := validateCoeffs(raw.Coefficients); err != nil {
		return err
	}
	p.coeffs = raw.Coefficients
	return nil
}
