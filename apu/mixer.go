package apu

import "math"

// sampleRate is the host audio rate the filter cutoffs are derived
// against; TicksInFrame samples per 1/60s frame implies this rate.
const sampleRate = TicksInFrame * 60

// mix applies the standard NES nonlinear DAC mixing formula, treating
// DMC as permanently silent (never implemented).
func mix(pulse1, pulse2, triangle, noise byte) float64 {
	var pulseOut float64
	if pulseSum := pulse1 + pulse2; pulseSum != 0 {
		pulseOut = 95.88 / (8128.0/float64(pulseSum) + 100.0)
	}

	var tndOut float64
	tnd := float64(triangle)/8227.0 + float64(noise)/12241.0
	if tnd != 0 {
		tndOut = 159.79 / (1.0/tnd + 100.0)
	}

	return pulseOut + tndOut
}

// biquadState holds one single-pole IIR filter's previous input and
// output, persisted across frames so the filter chain has continuous
// history rather than resetting every call.
type biquadState struct {
	previousIn  float64
	previousOut float64
}

// highPass and lowPass implement a first-order RC filter at the given
// cutoff frequency, matching the reference NES audio filter chain
// (two high-pass stages at 90 Hz and 442 Hz, one low-pass at 14 kHz).
func highPass(s *biquadState, in float64, cutoff float64) float64 {
	rc := 1.0 / (2 * math.Pi * cutoff)
	alpha := rc / (rc + 1.0/sampleRate)
	out := alpha * (s.previousOut + in - s.previousIn)
	s.previousIn = in
	s.previousOut = out
	return out
}

func lowPass(s *biquadState, in float64, cutoff float64) float64 {
	rc := 1.0 / (2 * math.Pi * cutoff)
	dt := 1.0 / sampleRate
	alpha := dt / (rc + dt)
	out := s.previousOut + alpha*(in-s.previousOut)
	s.previousIn = in
	s.previousOut = out
	return out
}

// applyFilters runs the three-stage chain: high-pass 90 Hz, high-pass
// 442 Hz, low-pass 14000 Hz, in that order.
func (a *APU) applyFilters(in float64) float64 {
	v := highPass(&a.filters[0], in, 90.0)
	v = highPass(&a.filters[1], v, 442.0)
	v = lowPass(&a.filters[2], v, 14000.0)
	return v
}

func floatToInt16(v float64) int16 {
	scaled := v * math.MaxInt16
	if scaled > math.MaxInt16 {
		return math.MaxInt16
	}
	if scaled < math.MinInt16 {
		return math.MinInt16
	}
	return int16(scaled)
}
