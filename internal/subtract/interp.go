package subtract

import (
	"fmt"
	"sort"
)

// interpLinear evaluates a piecewise-linear function defined by knots
// (xp, fp) at the points x. Samples outside [xp[0], xp[len-1]] clamp to the
// nearest boundary value. Behavior is undefined for non-monotonic xp, as
// with standard interpolation semantics.
func interpLinear(x, xp, fp []float64) ([]float64, error) {
	if len(xp) != len(fp) {
		return nil, fmt.Errorf("interpolation knots mismatch: %d x values, %d y values", len(xp), len(fp))
	}
	if len(xp) == 0 {
		return nil, fmt.Errorf("interpolation requires at least one knot")
	}

	out := make([]float64, len(x))
	for i, xv := range x {
		switch {
		case xv <= xp[0]:
			out[i] = fp[0]
		case xv >= xp[len(xp)-1]:
			out[i] = fp[len(fp)-1]
		default:
			hi := sort.SearchFloat64s(xp, xv)
			lo := hi - 1
			x0, x1 := xp[lo], xp[hi]
			if x1 == x0 {
				out[i] = fp[lo]
				continue
			}
			frac := (xv - x0) / (x1 - x0)
			out[i] = fp[lo] + frac*(fp[hi]-fp[lo])
		}
	}
	return out, nil
}
