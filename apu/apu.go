// Package apu implements the NES audio processing unit: two pulse
// channels, a triangle channel, a noise channel, and the nonlinear mixer
// that combines them into a signed 16-bit stream. DMC is not synthesized:
// its enable bit is recorded, and writes to its config, sample-address
// and sample-length registers fail with UnimplementedFeature.
//
// Channel timers and the length/envelope/sweep units are not stepped on
// every CPU cycle. Instead, Generate synthesizes an entire frame's worth
// of samples (TicksInFrame) in one pass per channel, clocking the
// length/envelope/sweep units once per call rather than on the real
// quarter/half-frame schedule — consistent with the PPU's per-frame
// batched rendering rather than a cycle-stepped simulation.
package apu

import "nesgo/errs"

// TicksInFrame is the number of channel samples synthesized per video
// frame, distinct from the console's CPU/PPU tick budget.
const TicksInFrame = 14890

// lengthTable maps a 5-bit length-counter load index to its counter
// value, per the 2A03's fixed lookup table.
var lengthTable = [32]byte{
	10, 254, 20, 2, 40, 4, 80, 6,
	160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 18, 48, 20, 96, 22,
	192, 24, 72, 26, 16, 28, 32, 30,
}

const (
	regPulse1Config = 0x4000
	regPulse1Sweep  = 0x4001
	regPulse1Timer  = 0x4002
	regPulse1Length = 0x4003
	regPulse2Config = 0x4004
	regPulse2Sweep  = 0x4005
	regPulse2Timer  = 0x4006
	regPulse2Length = 0x4007

	regTriangleConfig = 0x4008
	regTriangleUnused = 0x4009
	regTriangleTimer  = 0x400A
	regTriangleLength = 0x400B

	regNoiseConfig = 0x400C
	regNoiseUnused = 0x400D
	regNoisePeriod = 0x400E
	regNoiseLength = 0x400F

	regDMCConfig        = 0x4010
	regDMCLoadCounter   = 0x4011
	regDMCSampleAddress = 0x4012
	regDMCSampleLength  = 0x4013

	regStatus       = 0x4015
	regFrameCounter = 0x4017
)

// APU owns the four synthesized channels, the DMC enable flag, and the
// mixer's persistent filter state.
type APU struct {
	pulse1   Pulse
	pulse2   Pulse
	triangle Triangle
	noise    Noise

	dmcEnabled      bool
	frameCounterMode byte

	filters [3]biquadState
}

// New builds an APU with its channels silenced, as they are coming out
// of reset.
func New() *APU {
	a := &APU{
		pulse1: Pulse{id: 1},
		pulse2: Pulse{id: 2},
	}
	a.noise.shiftRegister = 1
	return a
}

// WriteRegister dispatches a CPU write at a full APU address (0x4000 to
// 0x4013, 0x4015, or 0x4017) to the owning channel or control register.
func (a *APU) WriteRegister(addr uint16, v byte) error {
	switch addr {
	case regPulse1Config, regPulse1Sweep, regPulse1Timer, regPulse1Length:
		a.pulse1.writeRegister(addr, v)
		return nil
	case regPulse2Config, regPulse2Sweep, regPulse2Timer, regPulse2Length:
		a.pulse2.writeRegister(addr&^0x04, v)
		return nil
	case regTriangleConfig, regTriangleUnused, regTriangleTimer, regTriangleLength:
		a.triangle.writeRegister(addr, v)
		return nil
	case regNoiseConfig, regNoisePeriod, regNoiseLength:
		a.noise.writeRegister(addr, v)
		return nil
	case regNoiseUnused:
		return errs.New(errs.UnimplementedFeature, "write to unused noise register 0x%04X", addr)
	case regDMCLoadCounter:
		return nil
	case regDMCConfig, regDMCSampleAddress, regDMCSampleLength:
		return errs.New(errs.UnimplementedFeature, "DMC sample playback is not supported")
	case regStatus:
		a.dmcEnabled = v&0x10 != 0
		a.noise.setEnabled(v&0x08 != 0)
		a.triangle.setEnabled(v&0x04 != 0)
		a.pulse2.setEnabled(v&0x02 != 0)
		a.pulse1.setEnabled(v&0x01 != 0)
		return nil
	case regFrameCounter:
		a.frameCounterMode = v >> 7
		return nil
	default:
		return errs.NewAccess(addr, 0, "invalid APU register")
	}
}

// ReadStatus answers a CPU read of 0x4015. Only channel length-counter
// activity is reported; the frame and DMC interrupt flags are not
// modeled since no IRQ is raised anywhere in this console.
func (a *APU) ReadStatus() byte {
	var v byte
	if a.pulse1.lengthCounter > 0 {
		v |= 0x01
	}
	if a.pulse2.lengthCounter > 0 {
		v |= 0x02
	}
	if a.triangle.lengthCounter > 0 {
		v |= 0x04
	}
	if a.noise.lengthCounter > 0 {
		v |= 0x08
	}
	return v
}

// Generate synthesizes one frame of audio into audio, which must have
// length TicksInFrame.
func (a *APU) Generate(audio []int16) {
	pulse1 := a.pulse1.generate()
	pulse2 := a.pulse2.generate()
	triangle := a.triangle.generate()
	noise := a.noise.generate()

	for i := 0; i < TicksInFrame; i++ {
		sample := mix(pulse1[i], pulse2[i], triangle[i], noise[i])
		sample = a.applyFilters(sample)
		audio[i] = floatToInt16(sample)
	}
}
