package integrators

import (
	"math"

	"github.com/san-kum/fmukit/internal/dynamo"
)

// Dormand-Prince tableau.
var (
	a2, a3, a4, a5 = 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0

	b21                     = 1.0 / 5.0
	b31, b32                = 3.0 / 40.0, 9.0 / 40.0
	b41, b42, b43           = 44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0
	b51, b52, b53, b54      = 19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0
	b61, b62, b63, b64, b65 = 9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0

	c1, c3, c4, c5, c6 = 35.0 / 384.0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0

	// Difference between the fifth- and fourth-order weights.
	e1 = c1 - 5179.0/57600.0
	e3 = c3 - 7571.0/16695.0
	e4 = c4 - 393.0/640.0
	e5 = c5 + 92097.0/339200.0
	e6 = c6 - 187.0/2100.0
	e7 = -1.0 / 40.0
)

// DefaultTolerance is used by Step, which has no tolerance argument.
const DefaultTolerance = 1e-6

type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64

	k          [7]dynamo.State
	stage, out dynamo.State
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Name() string { return "rk45" }

// Step takes one step of size h regardless of the error estimate.
func (r *RK45) Step(sys dynamo.System, t, h float64, x dynamo.State) {
	r.attempt(sys, t, h, x)
	copy(x, r.out)
}

func (r *RK45) StepAdaptive(sys dynamo.System, t, h, tol float64, x dynamo.State) (bool, float64) {
	errMax := r.attempt(sys, t, h, x)
	ratio := errMax / tol

	switch {
	case ratio > 1:
		return false, h * math.Max(r.minScale, r.safety*math.Pow(ratio, -0.25))
	case ratio > 0:
		copy(x, r.out)
		return true, h * math.Min(r.maxScale, r.safety*math.Pow(ratio, -0.2))
	default:
		copy(x, r.out)
		return true, h * r.maxScale
	}
}

// attempt computes the fifth-order solution into r.out and returns the
// scaled error estimate.
func (r *RK45) attempt(sys dynamo.System, t, h float64, x dynamo.State) float64 {
	n := len(x)
	if len(r.out) != n {
		for i := range r.k {
			r.k[i] = make(dynamo.State, n)
		}
		r.stage = make(dynamo.State, n)
		r.out = make(dynamo.State, n)
	}
	k := &r.k

	sys.Derive(t, x, k[0])
	r.combine(x, h, []float64{b21}, k[:1])
	sys.Derive(t+a2*h, r.stage, k[1])
	r.combine(x, h, []float64{b31, b32}, k[:2])
	sys.Derive(t+a3*h, r.stage, k[2])
	r.combine(x, h, []float64{b41, b42, b43}, k[:3])
	sys.Derive(t+a4*h, r.stage, k[3])
	r.combine(x, h, []float64{b51, b52, b53, b54}, k[:4])
	sys.Derive(t+a5*h, r.stage, k[4])
	r.combine(x, h, []float64{b61, b62, b63, b64, b65}, k[:5])
	sys.Derive(t+h, r.stage, k[5])

	for i := 0; i < n; i++ {
		r.out[i] = x[i] + h*(c1*k[0][i]+c3*k[2][i]+c4*k[3][i]+c5*k[4][i]+c6*k[5][i])
	}
	sys.Derive(t+h, r.out, k[6])

	errMax := 0.0
	for i := 0; i < n; i++ {
		est := h * (e1*k[0][i] + e3*k[2][i] + e4*k[3][i] + e5*k[4][i] + e6*k[5][i] + e7*k[6][i])
		scale := math.Abs(x[i]) + math.Abs(h*k[0][i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(est)/scale)
	}
	return errMax
}

func (r *RK45) combine(x dynamo.State, h float64, w []float64, ks []dynamo.State) {
	for i := range x {
		sum := 0.0
		for j, kj := range ks {
			sum += w[j] * kj[i]
		}
		r.stage[i] = x[i] + h*sum
	}
}
