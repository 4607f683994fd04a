package weaver

import "math"

// Curve selects the shape of a ramp transition.
type Curve int

// Transition curves. The zero value is Linear.
const (
	Linear Curve = iota
	ThetaGateway
	GammaEmergence
	DeltaDescent
	BreathSync
	HeartSync
	Sinusoidal
	Exponential
)

var curveNames = [...]string{
	Linear:         "linear",
	ThetaGateway:   "theta_gateway",
	GammaEmergence: "gamma_emergence",
	DeltaDescent:   "delta_descent",
	BreathSync:     "breath_sync",
	HeartSync:      "heart_sync",
	Sinusoidal:     "sinusoidal",
	Exponential:    "exponential",
}

var curveAliases = map[string]Curve{
	"sin": Sinusoidal,
	"exp": Exponential,
}

func (c Curve) String() string {
	if c < 0 || int(c) >= len(curveNames) {
		return curveNames[Linear]
	}
	return curveNames[c]
}

// ParseCurve returns the curve named s. "sin" and "exp" are accepted as
// aliases. An empty name selects Linear; unknown names return Linear and
// false.
func ParseCurve(s string) (Curve, bool) {
	s = normalizeName(s)
	if s == "" {
		return Linear, true
	}
	for i, name := range curveNames {
		if name == s {
			return Curve(i), true
		}
	}
	if c, ok := curveAliases[s]; ok {
		return c, true
	}
	return Linear, false
}

// Curves returns every curve in declaration order.
func Curves() []Curve {
	out := make([]Curve, len(curveNames))
	for i := range out {
		out[i] = Curve(i)
	}
	return out
}

// Rhythm rates in Hz used by the physiological curves.
const (
	breathRate = 0.25
	hrvRate    = 0.1
)

// Transition returns a frequency trajectory over the time samples t
// (seconds) moving from start to end along curve c. Curves are softened
// for sensitive listeners and gentle intentions, time-warped by the
// listener's processing speed, renormalised to [0, 1], and the first and
// last samples are pinned to start and end exactly.
func (w *Weaver) Transition(t []float64, start, end float64, c Curve) []float64 {
	n := len(t)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	u := make([]float64, n)
	elapsed := make([]float64, n)
	span := t[n-1] - t[0]
	for i := range t {
		elapsed[i] = t[i] - t[0]
		switch {
		case n == 1:
			u[i] = 0
		case span > 0 && !math.IsInf(span, 0):
			u[i] = elapsed[i] / span
		default:
			u[i] = float64(i) / float64(n-1)
		}
	}

	curve := shape(c, u, elapsed, start, end)

	smoothing := math.Max(w.profile.SensitivityFactor(), w.ip.TransitionGentleness)
	if smoothing > 1 {
		inv := 1 / smoothing
		for i, v := range curve {
			curve[i] = math.Pow(math.Max(v, 0), inv)
		}
	}

	if speed := w.profile.ProcessingSpeed(); speed > 0 && speed != 1 && n > 1 {
		warped := make([]float64, n)
		for i, v := range u {
			warped[i] = math.Pow(v, 1/speed)
		}
		curve = interp(u, warped, curve)
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	finite := true
	for _, v := range curve {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			finite = false
			break
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if !finite || hi-lo <= 1e-10 {
		curve = u
	} else {
		for i, v := range curve {
			curve[i] = (v - lo) / (hi - lo)
		}
	}

	for i, v := range curve {
		out[i] = start + (end-start)*v
	}
	out[0] = start
	if n > 1 {
		out[n-1] = end
	}
	return out
}

// shape evaluates the raw curve. u is normalised time in [0, 1];
// elapsed is real time in seconds since the first sample.
func shape(c Curve, u, elapsed []float64, start, end float64) []float64 {
	curve := make([]float64, len(u))
	switch c {
	case ThetaGateway:
		for i, x := range u {
			sigmoid := 1 / (1 + math.Exp(-5*(x-0.5)))
			curve[i] = sigmoid * (1 + 0.08*math.Sin(2*math.Pi*6*x))
		}
	case GammaEmergence:
		for i, x := range u {
			curve[i] = math.Pow(x, 0.3) * (1 + 0.03*math.Sin(2*math.Pi*40*x))
		}
	case DeltaDescent:
		for i, x := range u {
			curve[i] = (1 - math.Exp(-3*x)) * (1 + 0.05*math.Sin(2*math.Pi*2*x))
		}
	case BreathSync:
		for i, x := range u {
			breath := 0.5 * (1 + math.Sin(2*math.Pi*breathRate*elapsed[i]))
			curve[i] = x + 0.1*breath*(1-x)*x
		}
	case HeartSync:
		for i, x := range u {
			hrv := 0.05 * math.Sin(2*math.Pi*hrvRate*elapsed[i])
			curve[i] = x + hrv*(1-x)*x
		}
	case Sinusoidal:
		for i, x := range u {
			breath := 1 + 0.03*math.Sin(2*math.Pi*breathRate*elapsed[i])
			curve[i] = 0.5 * (1 + math.Sin(math.Pi*(x-0.5))) * breath
		}
	case Exponential:
		ratio := end / start
		if start == 0 || end == 0 || !(ratio > 0) || ratio == 1 || math.IsInf(ratio, 0) {
			copy(curve, u)
			break
		}
		lr := math.Log(ratio)
		den := ratio - 1
		for i, x := range u {
			curve[i] = (math.Exp(lr*x) - 1) / den
		}
	default:
		copy(curve, u)
	}
	return curve
}

// interp evaluates the piecewise-linear function through (xp, fp) at each
// x. xp must be non-decreasing and x sorted ascending; values outside
// xp's span take the nearest end value.
func interp(x, xp, fp []float64) []float64 {
	out := make([]float64, len(x))
	last := len(xp) - 1
	j := 0
	for i, v := range x {
		switch {
		case v <= xp[0]:
			out[i] = fp[0]
			continue
		case v >= xp[last]:
			out[i] = fp[last]
			continue
		}
		for j < last-1 && xp[j+1] < v {
			j++
		}
		x0, x1 := xp[j], xp[j+1]
		if x1 == x0 {
			out[i] = fp[j+1]
			continue
		}
		out[i] = fp[j] + (fp[j+1]-fp[j])*(v-x0)/(x1-x0)
	}
	return out
}
