// Package spectrum wraps gonum's FFT plans for the real-signal transforms
// used by noise shaping and coherence analysis.
package spectrum

import (
	"math/bits"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

// FFT plans carry scratch space, so each size keeps a pool of them.
var (
	realPlans   = map[int]*sync.Pool{}
	cmplxPlans  = map[int]*sync.Pool{}
	planCacheMu sync.Mutex
)

func realPool(n int) *sync.Pool {
	planCacheMu.Lock()
	defer planCacheMu.Unlock()
	if p, ok := realPlans[n]; ok {
		return p
	}
	p := &sync.Pool{New: func() any { return fourier.NewFFT(n) }}
	realPlans[n] = p
	return p
}

func cmplxPool(n int) *sync.Pool {
	planCacheMu.Lock()
	defer planCacheMu.Unlock()
	if p, ok := cmplxPlans[n]; ok {
		return p
	}
	p := &sync.Pool{New: func() any { return fourier.NewCmplxFFT(n) }}
	cmplxPlans[n] = p
	return p
}

// NextPow2 returns the smallest power of two >= n. NextPow2(0) is 1.
func NextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// Forward returns the n/2+1 non-negative frequency coefficients of x,
// zero-padded or truncated to length n.
func Forward(x []float64, n int) []complex128 {
	seq := x
	if len(x) != n {
		seq = make([]float64, n)
		copy(seq, x)
	}
	pool := realPool(n)
	plan := pool.Get().(*fourier.FFT)
	defer pool.Put(plan)
	return plan.Coefficients(nil, seq)
}

// Inverse returns the length-n real sequence whose spectrum is coeff.
// The result is scaled so that Inverse(Forward(x, n), n) == x.
func Inverse(coeff []complex128, n int) []float64 {
	pool := realPool(n)
	plan := pool.Get().(*fourier.FFT)
	defer pool.Put(plan)
	out := plan.Sequence(nil, coeff)
	scale := 1 / float64(n)
	for i := range out {
		out[i] *= scale
	}
	return out
}

// BinFrequency returns the frequency in Hz of bin i of a length-n transform.
func BinFrequency(i, n int, sampleRate float64) float64 {
	return float64(i) * sampleRate / float64(n)
}

// Analytic returns the analytic signal of x (x + j·Hilbert(x)), computed
// on a power-of-two padded transform and truncated back to len(x).
func Analytic(x []float64) []complex128 {
	if len(x) == 0 {
		return nil
	}
	m := NextPow2(len(x))
	seq := make([]complex128, m)
	for i, v := range x {
		seq[i] = complex(v, 0)
	}

	pool := cmplxPool(m)
	plan := pool.Get().(*fourier.CmplxFFT)
	defer pool.Put(plan)

	coeff := plan.Coefficients(nil, seq)
	half := m / 2
	for k := 1; k < m; k++ {
		switch {
		case k < half:
			coeff[k] *= 2
		case k > half:
			coeff[k] = 0
		}
	}
	out := plan.Sequence(seq, coeff)
	scale := complex(1/float64(m), 0)
	for i := range out {
		out[i] *= scale
	}
	return out[:len(x)]
}

// Lag returns the shift L in [-maxLag, maxLag] that maximises
// sum ref[n+L]·sig[n]. Rolling sig forward by L aligns it with ref.
func Lag(ref, sig []float64, maxLag int) int {
	n := min(len(ref), len(sig))
	if n == 0 || maxLag <= 0 {
		return 0
	}
	maxLag = min(maxLag, n-1)
	m := NextPow2(2 * n)
	r := Forward(ref[:n], m)
	s := Forward(sig[:n], m)
	for i := range r {
		r[i] *= complex(real(s[i]), -imag(s[i]))
	}
	corr := Inverse(r, m)

	best, bestLag := corr[0], 0
	for l := 1; l <= maxLag; l++ {
		if v := corr[l]; v > best {
			best, bestLag = v, l
		}
		if v := corr[m-l]; v > best {
			best, bestLag = v, -l
		}
	}
	return bestLag
}

// Roll returns x circularly shifted forward by k samples.
func Roll(x []float64, k int) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	k %= n
	if k < 0 {
		k += n
	}
	copy(out[k:], x[:n-k])
	copy(out[:k], x[n-k:])
	return out
}
