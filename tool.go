package polyroot

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ============================================================
// MCP Tool Interface
// ============================================================

// Upper bounds on request-supplied iteration counts.
const (
	MaxToolIterations  = 100000
	MaxToolPolishSteps = 100
)

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// DeflateResult is the result payload of the deflate tool.
type DeflateResult struct {
	Quotient  []float64 `json:"quotient"`
	Remainder float64   `json:"remainder"`
}

// NewtonToolResult is the result payload of the newton tool.
type NewtonToolResult struct {
	Root       float64 `json:"root"`
	Iterations int     `json:"iterations"`
	Status     string  `json:"status"`
}

// HandleToolCall runs one tool. opts are the caller's solver defaults;
// find_roots params are applied after them and win.
func HandleToolCall(req ToolRequest, opts ...Option) ToolResponse {
	getFloat := func(key string) (float64, error) {
		v, ok := req.Params[key]
		if !ok {
			return 0, fmt.Errorf("missing param: %s", key)
		}
		f, ok := toFloat(v)
		if !ok {
			return 0, fmt.Errorf("param %s must be a number", key)
		}
		return f, nil
	}
	optFloat := func(key string) (float64, bool, error) {
		if _, ok := req.Params[key]; !ok {
			return 0, false, nil
		}
		f, err := getFloat(key)
		return f, err == nil, err
	}
	// optCount reads an optional whole number in [0, limit].
	optCount := func(key string, limit int) (int, bool, error) {
		f, ok, err := optFloat(key)
		if err != nil || !ok {
			return 0, ok, err
		}
		if f != math.Trunc(f) || f < 0 || f > float64(limit) {
			return 0, false, fmt.Errorf("param %s must be a whole number between 0 and %d", key, limit)
		}
		return int(f), true, nil
	}
	getFloats := func(key string) ([]float64, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		switch raw := v.(type) {
		case []float64:
			return append([]float64(nil), raw...), nil
		case []interface{}:
			result := make([]float64, len(raw))
			for i, r := range raw {
				f, ok := toFloat(r)
				if !ok {
					return nil, fmt.Errorf("param %s[%d] must be a number", key, i)
				}
				result[i] = f
			}
			return result, nil
		}
		return nil, fmt.Errorf("param %s must be array", key)
	}
	getPoly := func() (*Poly, error) {
		coeffs, err := getFloats("coefficients")
		if err != nil {
			return nil, err
		}
		return NewPoly(coeffs...)
	}

	switch req.Tool {
	case "find_roots":
		p, err := getPoly()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		callOpts := append([]Option(nil), opts...)
		if eps, ok, err := optFloat("epsilon"); err != nil {
			return ToolResponse{Error: err.Error()}
		} else if ok {
			callOpts = append(callOpts, WithEpsilon(eps))
		}
		if _, ok := req.Params["seeds"]; ok {
			seeds, err := getFloats("seeds")
			if err != nil {
				return ToolResponse{Error: err.Error()}
			}
			callOpts = append(callOpts, WithSeeds(seeds...))
		}
		if d, ok, err := optFloat("dedup_threshold"); err != nil {
			return ToolResponse{Error: err.Error()}
		} else if ok {
			callOpts = append(callOpts, WithDedupThreshold(d))
		}
		if n, ok, err := optCount("polish", MaxToolPolishSteps); err != nil {
			return ToolResponse{Error: err.Error()}
		} else if ok {
			callOpts = append(callOpts, WithPolish(n))
		}
		roots, err := p.Roots(callOpts...)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		strs := make([]string, len(roots))
		for i, r := range roots {
			strs[i] = formatCoeff(r)
		}
		for _, r := range roots {
			if !isFinite(r) {
				return ToolResponse{LaTeX: p.LaTeX(), String: strings.Join(strs, ", "), Error: "find_roots produced a non-finite root"}
			}
		}
		return ToolResponse{Result: roots, LaTeX: p.LaTeX(), String: strings.Join(strs, ", ")}

	case "evaluate", "derivative":
		p, err := getPoly()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		x, err := getFloat("x")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		v := p.Eval(x)
		if req.Tool == "derivative" {
			v = p.Derivative(x)
		}
		if !isFinite(v) {
			return ToolResponse{LaTeX: p.LaTeX(), String: formatCoeff(v), Error: fmt.Sprintf("%s overflows at x=%s", req.Tool, formatCoeff(x))}
		}
		return ToolResponse{Result: v, LaTeX: p.LaTeX(), String: formatCoeff(v)}

	case "deflate":
		p, err := getPoly()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		root, err := getFloat("root")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		q, rem := p.Deflate(root)
		for _, c := range append(q, rem) {
			if !isFinite(c) {
				return ToolResponse{Error: fmt.Sprintf("deflate overflows at root=%s", formatCoeff(root))}
			}
		}
		res := DeflateResult{Quotient: q, Remainder: rem}
		s := formatCoeff(q[0])
		if len(q) > 1 {
			s = MustPoly(q...).String()
		}
		return ToolResponse{Result: res, String: fmt.Sprintf("%s, remainder %s", s, formatCoeff(rem))}

	case "newton":
		p, err := getPoly()
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		x0, err := getFloat("x0")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		eps, _, err := optFloat("epsilon")
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		maxIter, _, err := optCount("max_iter", MaxToolIterations)
		if err != nil {
			return ToolResponse{Error: err.Error()}
		}
		nr := Newton(p.coeffs, x0, eps, maxIter)
		resp := ToolResponse{String: formatCoeff(nr.Root)}
		// json cannot carry a diverged iterate
		if isFinite(nr.Root) {
			resp.Result = NewtonToolResult{Root: nr.Root, Iterations: nr.Iterations, Status: nr.Status.String()}
		}
		if err := nr.Err(); err != nil {
			resp.Error = fmt.Sprintf("%v from x0=%s after %d iterations", err, formatCoeff(x0), nr.Iterations)
		}
		return resp

	case "mcp_spec":
		var m map[string]interface{}
		_ = json.Unmarshal([]byte(MCPToolSpec()), &m)
		return ToolResponse{Result: m}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// ============================================================
// MCP spec
// ============================================================

func MCPToolSpec() string {
	tools := []map[string]interface{}{
		ts("find_roots", "All real roots by Newton iteration and deflation. Optional: epsilon, seeds, dedup_threshold, polish",
			[]string{"coefficients"},
			map[string]string{"coefficients": "array", "epsilon": "number", "seeds": "array", "dedup_threshold": "number", "polish": "integer"}),
		ts("evaluate", "P(x) by Horner's scheme", []string{"coefficients", "x"}, map[string]string{"coefficients": "array", "x": "number"}),
		ts("derivative", "P'(x) by Horner's scheme", []string{"coefficients", "x"}, map[string]string{"coefficients": "array", "x": "number"}),
		ts("deflate", "Synthetic division by (x - root); returns quotient and remainder", []string{"coefficients", "root"}, map[string]string{"coefficients": "array", "root": "number"}),
		ts("newton", "Single Newton attempt from x0. Optional: epsilon, max_iter", []string{"coefficients", "x0"},
			map[string]string{"coefficients": "array", "x0": "number", "epsilon": "number", "max_iter": "integer"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		prop := map[string]interface{}{"type": typ}
		if typ == "array" {
			prop["items"] = map[string]interface{}{"type": "number"}
		}
		properties[k] = prop
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
