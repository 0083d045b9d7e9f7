package features

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/banshee-data/sleep.report/internal/preprocess"
)

// Spectrum is the one-sided power spectrum |rfft(x)|^2 with bin frequencies
// in Hz.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// PowerSpectrum computes the real FFT power of x sampled at rate Hz.
func PowerSpectrum(x []float64, rate float64) Spectrum {
	n := len(x)
	if n == 0 {
		return Spectrum{}
	}
	coeff := fourier.NewFFT(n).Coefficients(nil, x)
	s := Spectrum{Freqs: make([]float64, len(coeff)), Power: make([]float64, len(coeff))}
	for i, c := range coeff {
		s.Freqs[i] = float64(i) * rate / float64(n)
		a := cmplx.Abs(c)
		s.Power[i] = a * a
	}
	return s
}

// BandPower sums power over bins whose frequency lies in b.
func (s Spectrum) BandPower(b Band) float64 {
	var p float64
	for i, f := range s.Freqs {
		if b.Contains(f) {
			p += s.Power[i]
		}
	}
	return p
}

// DominantFreq returns the frequency of the strongest non-DC bin. Ties keep
// the lowest frequency.
func (s Spectrum) DominantFreq() float64 {
	best := 1
	for i := 2; i < len(s.Power); i++ {
		if s.Power[i] > s.Power[best] {
			best = i
		}
	}
	return s.Freqs[best]
}

func spectralGroup(prefix string, values []float64, rate float64, bands Bands) GroupResult {
	group := prefix + suffixSpectral
	x := preprocess.DropNaN(values)
	if len(x) < 2 {
		return absent(group, ReasonNoValidSamples)
	}
	s := PowerSpectrum(x, rate)
	var total float64
	for _, p := range s.Power {
		total += p
	}
	lf, hf := s.BandPower(bands.LF), s.BandPower(bands.HF)
	ratio := 0.0
	if hf > 0 {
		ratio = lf / hf
	}
	vals := []float64{total, s.DominantFreq(), s.BandPower(bands.VLF), lf, hf, ratio}
	out := make([]Feature, len(vals))
	for i, v := range vals {
		out[i] = Feature{Name: prefix + "_" + spectralSuffix[i], Value: v}
	}
	return present(group, out)
}
