package apu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAllZeroWhenEverythingDisabled(t *testing.T) {
	a := New()
	require.NoError(t, a.WriteRegister(regStatus, 0x00))

	audio := make([]int16, TicksInFrame)
	a.Generate(audio)

	for i, sample := range audio {
		require.Zerof(t, sample, "sample %d must be silent when no channel is enabled", i)
	}
}

func TestReadStatusReflectsLengthCounters(t *testing.T) {
	a := New()
	require.NoError(t, a.WriteRegister(regStatus, 0x01))
	require.NoError(t, a.WriteRegister(regPulse1Length, 0x08))

	assert.Equal(t, byte(0x01), a.ReadStatus())
}

func TestReadStatusZeroAfterDisable(t *testing.T) {
	a := New()
	require.NoError(t, a.WriteRegister(regStatus, 0x01))
	require.NoError(t, a.WriteRegister(regPulse1Length, 0x08))
	require.NoError(t, a.WriteRegister(regStatus, 0x00))

	assert.Equal(t, byte(0x00), a.ReadStatus())
}

func TestPulseGeneratesNonZeroWhenEnabled(t *testing.T) {
	a := New()
	require.NoError(t, a.WriteRegister(regStatus, 0x01))
	require.NoError(t, a.WriteRegister(regPulse1Config, 0x3F)) // duty 0, constant volume 15
	require.NoError(t, a.WriteRegister(regPulse1Timer, 0x80))  // timer period 0x80, above the mute threshold
	require.NoError(t, a.WriteRegister(regPulse1Length, 0x08)) // timer high bits 0, length index 1

	out := a.pulse1.generate()
	var sawNonZero bool
	for _, v := range out {
		if v != 0 {
			sawNonZero = true
			break
		}
	}
	assert.True(t, sawNonZero, "an enabled pulse channel with nonzero volume must produce sound")
}

func TestPulseSilentWhenTimerTooLow(t *testing.T) {
	a := New()
	require.NoError(t, a.WriteRegister(regStatus, 0x01))
	require.NoError(t, a.WriteRegister(regPulse1Config, 0x3F))
	require.NoError(t, a.WriteRegister(regPulse1Timer, 0x01)) // timer period 1, below the mute threshold
	require.NoError(t, a.WriteRegister(regPulse1Length, 0x08))

	out := a.pulse1.generate()
	for i, v := range out {
		require.Zerof(t, v, "sample %d: a timer period below 8 must mute the pulse channel", i)
	}
}

func TestDMCRegisterWritesAreUnimplemented(t *testing.T) {
	a := New()
	err := a.WriteRegister(regDMCConfig, 0x00)
	assert.Error(t, err)
}

func TestMixIsZeroWhenAllChannelsSilent(t *testing.T) {
	assert.Equal(t, 0.0, mix(0, 0, 0, 0))
}

func TestMixIsPositiveWhenAnyChannelSounds(t *testing.T) {
	assert.Greater(t, mix(15, 0, 0, 0), 0.0)
	assert.Greater(t, mix(0, 0, 15, 0), 0.0)
	assert.Greater(t, mix(0, 0, 0, 15), 0.0)
}
