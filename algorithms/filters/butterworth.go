package filters

import (
	"cmp"
	"math"
	"math/cmplx"
	"slices"

	"github.com/RyanBlaney/sonido-eeg/algorithms/common"
)

// DesignButterworthBandpass designs a digital Butterworth band-pass filter.
//
// The analog low-pass prototype of the given order is transformed into a
// band-pass around the pre-warped edges and mapped to the z-plane with the
// bilinear transform. The 2*order poles are kept as order second-order
// stages; B and A expand to 2*order+1 coefficients.
func DesignButterworthBandpass(order int, lowFreq, highFreq, fs float64) (FilterSpec, error) {
	if fs <= 0 {
		return FilterSpec{}, common.InvalidParameter("bandpass_design", "sampling rate must be positive, got %g", fs)
	}
	if order < 1 {
		return FilterSpec{}, common.InvalidParameter("bandpass_design", "filter order must be at least 1, got %d", order)
	}

	nyquist := fs / 2.0
	if lowFreq <= 0 || highFreq <= lowFreq || highFreq >= nyquist {
		return FilterSpec{}, common.InvalidParameter("bandpass_design",
			"passband [%g, %g] Hz must satisfy 0 < low < high < Nyquist (%g Hz)", lowFreq, highFreq, nyquist)
	}

	// Pre-warp the normalized edges; the bilinear transform runs at fs=2
	const bilinearFs = 2.0
	warp := func(f float64) float64 {
		wn := f / nyquist
		return 2.0 * bilinearFs * math.Tan(math.Pi*wn/bilinearFs)
	}
	wl := warp(lowFreq)
	wh := warp(highFreq)

	zeros, poles, gain := butterworthPrototype(order)
	zeros, poles, gain = lowpassToBandpass(zeros, poles, gain, math.Sqrt(wl*wh), wh-wl)
	zeros, poles, gain = bilinear(zeros, poles, gain, bilinearFs)

	return NewCascade("bandpass", zpkToStages(zeros, poles, gain))
}

// butterworthPrototype returns the analog low-pass prototype with unit cutoff:
// no zeros, poles evenly spaced on the left half of the unit circle.
func butterworthPrototype(order int) ([]complex128, []complex128, float64) {
	poles := make([]complex128, 0, order)
	for m := -order + 1; m < order; m += 2 {
		theta := math.Pi * float64(m) / float64(2*order)
		poles = append(poles, -cmplx.Exp(complex(0, theta)))
	}
	return nil, poles, 1.0
}

// lowpassToBandpass maps s -> (s^2 + w0^2)/(s*bw), doubling the pole count
// and adding zeros at the origin to balance the degree.
func lowpassToBandpass(zeros, poles []complex128, gain, w0, bw float64) ([]complex128, []complex128, float64) {
	degree := len(poles) - len(zeros)
	half := complex(bw/2.0, 0)
	w0sq := complex(w0*w0, 0)

	bpZeros := make([]complex128, 0, 2*len(zeros)+degree)
	for _, z := range zeros {
		zl := z * half
		root := cmplx.Sqrt(zl*zl - w0sq)
		bpZeros = append(bpZeros, zl+root)
	}
	for _, z := range zeros {
		zl := z * half
		root := cmplx.Sqrt(zl*zl - w0sq)
		bpZeros = append(bpZeros, zl-root)
	}
	for range degree {
		bpZeros = append(bpZeros, 0)
	}

	bpPoles := make([]complex128, 0, 2*len(poles))
	for _, p := range poles {
		pl := p * half
		bpPoles = append(bpPoles, pl+cmplx.Sqrt(pl*pl-w0sq))
	}
	for _, p := range poles {
		pl := p * half
		bpPoles = append(bpPoles, pl-cmplx.Sqrt(pl*pl-w0sq))
	}

	return bpZeros, bpPoles, gain * math.Pow(bw, float64(degree))
}

// bilinear maps analog zeros/poles to the z-plane with z = (2fs+s)/(2fs-s).
// Zeros at infinity land on z = -1.
func bilinear(zeros, poles []complex128, gain, fs float64) ([]complex128, []complex128, float64) {
	fs2 := complex(2.0*fs, 0)
	degree := len(poles) - len(zeros)

	num := complex(1, 0)
	den := complex(1, 0)

	dZeros := make([]complex128, 0, len(zeros)+degree)
	for _, z := range zeros {
		dZeros = append(dZeros, (fs2+z)/(fs2-z))
		num *= fs2 - z
	}
	for range degree {
		dZeros = append(dZeros, -1)
	}

	dPoles := make([]complex128, 0, len(poles))
	for _, p := range poles {
		dPoles = append(dPoles, (fs2+p)/(fs2-p))
		den *= fs2 - p
	}

	return dZeros, dPoles, gain * real(num/den)
}

// zpkToStages groups zeros and poles into second-order stages. Pole pairs
// are ordered by radius so the stage closest to the unit circle runs last;
// the overall gain goes on the first stage.
func zpkToStages(zeros, poles []complex128, gain float64) []Stage {
	polePairs := pairRoots(poles)
	slices.SortStableFunc(polePairs, func(x, y []complex128) int {
		return cmp.Compare(maxAbs(x), maxAbs(y))
	})
	zeroPairs := pairRoots(zeros)

	n := max(len(polePairs), len(zeroPairs))
	stages := make([]Stage, n)
	for i := range n {
		var zs, ps []complex128
		if i < len(zeroPairs) {
			zs = zeroPairs[i]
		}
		if i < len(polePairs) {
			ps = polePairs[i]
		}
		stages[i] = Stage{B: quadratic(zs), A: quadratic(ps)}
	}

	for i := range stages[0].B {
		stages[0].B[i] *= gain
	}
	return stages
}

// pairRoots groups roots into conjugate pairs. Real roots are paired
// smallest with largest, so a band-pass gets one zero at z=-1 and one at
// z=+1 per stage. An odd real root is left on its own.
func pairRoots(roots []complex128) [][]complex128 {
	const tol = 1e-10

	var pairs [][]complex128
	var reals []float64
	for _, r := range roots {
		switch {
		case imag(r) > tol:
			pairs = append(pairs, []complex128{r, cmplx.Conj(r)})
		case imag(r) < -tol:
			// partner of a positive-imaginary root
		default:
			reals = append(reals, real(r))
		}
	}

	slices.Sort(reals)
	for i, j := 0, len(reals)-1; i <= j; i, j = i+1, j-1 {
		if i == j {
			pairs = append(pairs, []complex128{complex(reals[i], 0)})
			break
		}
		pairs = append(pairs, []complex128{complex(reals[i], 0), complex(reals[j], 0)})
	}
	return pairs
}

// quadratic expands up to two roots into three coefficients
func quadratic(roots []complex128) []float64 {
	c := polyFromRoots(roots)
	out := make([]float64, 3)
	copy(out, c)
	return out
}

func maxAbs(roots []complex128) float64 {
	m := 0.0
	for _, r := range roots {
		m = max(m, cmplx.Abs(r))
	}
	return m
}

// polyFromRoots expands prod(x - r) into real coefficients, highest power first.
// Complex roots are expected in conjugate pairs, so imaginary parts cancel.
func polyFromRoots(roots []complex128) []float64 {
	coeffs := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(coeffs)+1)
		for i, c := range coeffs {
			next[i] += c
			next[i+1] -= c * r
		}
		coeffs = next
	}

	out := make([]float64, len(coeffs))
	for i, c := range coeffs {
		out[i] = real(c)
	}
	return out
}
