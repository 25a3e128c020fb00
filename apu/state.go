package apu

// PulseState is the serializable subset of a Pulse channel.
type PulseState struct {
	ID int

	Enabled           bool
	Duty              byte
	LengthCounterHalt bool
	ConstantVolume    bool
	Volume            byte
	SweepEnabled      bool
	SweepPeriod       byte
	SweepNegate       bool
	SweepShiftCount   byte
	LoadTimer         uint16
	LoadLengthCounter byte

	SequencerPos      byte
	TimerPeriod       uint16
	LengthCounter     byte
	DecayLevelCounter byte
}

func (p *Pulse) exportState() PulseState {
	return PulseState{
		ID:                p.id,
		Enabled:           p.enabled,
		Duty:              p.duty,
		LengthCounterHalt: p.lengthCounterHalt,
		ConstantVolume:    p.constantVolume,
		Volume:            p.volume,
		SweepEnabled:      p.sweepEnabled,
		SweepPeriod:       p.sweepPeriod,
		SweepNegate:       p.sweepNegate,
		SweepShiftCount:   p.sweepShiftCount,
		LoadTimer:         p.loadTimer,
		LoadLengthCounter: p.loadLengthCounter,
		SequencerPos:      p.sequencerPos,
		TimerPeriod:       p.timerPeriod,
		LengthCounter:     p.lengthCounter,
		DecayLevelCounter: p.decayLevelCounter,
	}
}

func (p *Pulse) importState(s PulseState) {
	p.id = s.ID
	p.enabled = s.Enabled
	p.duty = s.Duty
	p.lengthCounterHalt = s.LengthCounterHalt
	p.constantVolume = s.ConstantVolume
	p.volume = s.Volume
	p.sweepEnabled = s.SweepEnabled
	p.sweepPeriod = s.SweepPeriod
	p.sweepNegate = s.SweepNegate
	p.sweepShiftCount = s.SweepShiftCount
	p.loadTimer = s.LoadTimer
	p.loadLengthCounter = s.LoadLengthCounter
	p.sequencerPos = s.SequencerPos
	p.timerPeriod = s.TimerPeriod
	p.lengthCounter = s.LengthCounter
	p.decayLevelCounter = s.DecayLevelCounter
}

// TriangleState is the serializable subset of the Triangle channel.
type TriangleState struct {
	Enabled           bool
	LengthCounterHalt bool
	LoadTimer         uint16
	LoadCounter       byte
	LoadLengthCounter byte

	SequencerPos  byte
	TimerPeriod   uint16
	LengthCounter byte
	LinearCounter byte
}

func (t *Triangle) exportState() TriangleState {
	return TriangleState{
		Enabled:           t.enabled,
		LengthCounterHalt: t.lengthCounterHalt,
		LoadTimer:         t.loadTimer,
		LoadCounter:       t.loadCounter,
		LoadLengthCounter: t.loadLengthCounter,
		SequencerPos:      t.sequencerPos,
		TimerPeriod:       t.timerPeriod,
		LengthCounter:     t.lengthCounter,
		LinearCounter:     t.linearCounter,
	}
}

func (t *Triangle) importState(s TriangleState) {
	t.enabled = s.Enabled
	t.lengthCounterHalt = s.LengthCounterHalt
	t.loadTimer = s.LoadTimer
	t.loadCounter = s.LoadCounter
	t.loadLengthCounter = s.LoadLengthCounter
	t.sequencerPos = s.SequencerPos
	t.timerPeriod = s.TimerPeriod
	t.lengthCounter = s.LengthCounter
	t.linearCounter = s.LinearCounter
}

// NoiseState is the serializable subset of the Noise channel.
type NoiseState struct {
	Enabled bool

	LengthCounterHalt bool
	ConstantVolume    bool
	Volume            byte
	ShortMode         bool
	Period            uint16
	LoadLengthCounter byte

	LengthCounter     byte
	ShiftRegister     uint16
	DecayLevelCounter byte
}

func (n *Noise) exportState() NoiseState {
	return NoiseState{
		Enabled:           n.enabled,
		LengthCounterHalt: n.lengthCounterHalt,
		ConstantVolume:    n.constantVolume,
		Volume:            n.volume,
		ShortMode:         n.shortMode,
		Period:            n.period,
		LoadLengthCounter: n.loadLengthCounter,
		LengthCounter:     n.lengthCounter,
		ShiftRegister:     n.shiftRegister,
		DecayLevelCounter: n.decayLevelCounter,
	}
}

func (n *Noise) importState(s NoiseState) {
	n.enabled = s.Enabled
	n.lengthCounterHalt = s.LengthCounterHalt
	n.constantVolume = s.ConstantVolume
	n.volume = s.Volume
	n.shortMode = s.ShortMode
	n.period = s.Period
	n.loadLengthCounter = s.LoadLengthCounter
	n.lengthCounter = s.LengthCounter
	n.shiftRegister = s.ShiftRegister
	n.decayLevelCounter = s.DecayLevelCounter
}

// FilterState is one biquadState's serializable mirror.
type FilterState struct {
	PreviousIn  float64
	PreviousOut float64
}

// State is the serializable subset of APU state: channel configuration
// plus the mixer's persistent filter history, which snapshots must
// preserve to avoid an audible click across a load.
type State struct {
	Pulse1   PulseState
	Pulse2   PulseState
	Triangle TriangleState
	Noise    NoiseState

	DMCEnabled       bool
	FrameCounterMode byte

	Filters [3]FilterState
}

// ExportState captures everything State needs from a.
func (a *APU) ExportState() State {
	var filters [3]FilterState
	for i, f := range a.filters {
		filters[i] = FilterState{PreviousIn: f.previousIn, PreviousOut: f.previousOut}
	}
	return State{
		Pulse1:           a.pulse1.exportState(),
		Pulse2:           a.pulse2.exportState(),
		Triangle:         a.triangle.exportState(),
		Noise:            a.noise.exportState(),
		DMCEnabled:       a.dmcEnabled,
		FrameCounterMode: a.frameCounterMode,
		Filters:          filters,
	}
}

// ImportState replaces a's channel and filter state with s.
func (a *APU) ImportState(s State) {
	a.pulse1.importState(s.Pulse1)
	a.pulse2.importState(s.Pulse2)
	a.triangle.importState(s.Triangle)
	a.noise.importState(s.Noise)
	a.dmcEnabled = s.DMCEnabled
	a.frameCounterMode = s.FrameCounterMode
	for i, f := range s.Filters {
		a.filters[i] = biquadState{previousIn: f.PreviousIn, previousOut: f.PreviousOut}
	}
}
