package smf

import "fmt"

// Format is the SMF file format declared in the header.
type Format uint16

const (
	FormatSingleTrack   Format = 0 // one track
	FormatMultiTrack    Format = 1 // simultaneous tracks, tempo in track 0
	FormatMultiSequence Format = 2 // independent sequences
)

func (f Format) String() string {
	switch f {
	case FormatSingleTrack:
		return "single-track"
	case FormatMultiTrack:
		return "multi-track"
	case FormatMultiSequence:
		return "multi-sequence"
	default:
		return fmt.Sprintf("Format(%d)", uint16(f))
	}
}

// Division is the header time division: either MetricTicks or SMPTETiming.
type Division interface {
	isDivision()
	String() string
}

// MetricTicks is the tempo-relative resolution in ticks per quarter note.
type MetricTicks uint16

func (MetricTicks) isDivision() {}

func (m MetricTicks) String() string {
	return fmt.Sprintf("%d ticks/quarter", uint16(m))
}

// SMPTETiming is the fixed-rate timecode resolution.
type SMPTETiming struct {
	FPS           uint8 // 24, 25, 29 (29.97 drop-frame) or 30
	TicksPerFrame uint8
}

func (SMPTETiming) isDivision() {}

func (s SMPTETiming) String() string {
	return fmt.Sprintf("SMPTE %d fps, %d ticks/frame", s.FPS, s.TicksPerFrame)
}

// Header is the decoded MThd chunk.
type Header struct {
	Format     Format
	TrackCount uint16
	Division   Division
}

// Document is a fully decoded Standard MIDI File.
// Documents are never modified after Parse returns them.
type Document struct {
	Format Format
	Tracks []Track
	Timing Division
}

// TicksPerQuarter returns the PPQ resolution if the document uses metric timing.
func (d *Document) TicksPerQuarter() (int, bool) {
	if m, ok := d.Timing.(MetricTicks); ok {
		return int(m), true
	}
	return 0, false
}

// SMPTE returns the timecode resolution if the document uses SMPTE timing.
func (d *Document) SMPTE() (SMPTETiming, bool) {
	s, ok := d.Timing.(SMPTETiming)
	return s, ok
}

// Track is an ordered list of events from one MTrk chunk.
type Track struct {
	Events []Event
}

// AbsoluteTicks returns the running sum of deltas for each event.
func (t Track) AbsoluteTicks() []uint64 {
	ticks := make([]uint64, len(t.Events))
	var tick uint64
	for i, ev := range t.Events {
		tick += uint64(ev.DeltaTicks())
		ticks[i] = tick
	}
	return ticks
}

// EndTick returns the absolute tick of the last event.
func (t Track) EndTick() uint64 {
	var tick uint64
	for _, ev := range t.Events {
		tick += uint64(ev.DeltaTicks())
	}
	return tick
}

// HasEndOfTrack reports whether the last event is an End-of-Track meta event.
func (t Track) HasEndOfTrack() bool {
	if len(t.Events) == 0 {
		return false
	}
	m, ok := t.Events[len(t.Events)-1].(MetaEvent)
	return ok && m.IsEndOfTrack()
}

// Name returns the text of the first Sequence/Track Name meta event.
func (t Track) Name() (string, bool) {
	for _, ev := range t.Events {
		if m, ok := ev.(MetaEvent); ok && m.Type == MetaTrackName {
			return m.Text()
		}
	}
	return "", false
}

// Event is one of ChannelEvent, MetaEvent or SysExEvent.
type Event interface {
	DeltaTicks() uint32
	isEvent()
}

// ChannelKind identifies a channel voice message by its status high nibble.
type ChannelKind uint8

const (
	NoteOff         ChannelKind = 0x8
	NoteOn          ChannelKind = 0x9
	PolyAftertouch  ChannelKind = 0xA
	ControlChange   ChannelKind = 0xB
	ProgramChange   ChannelKind = 0xC
	ChannelPressure ChannelKind = 0xD
	PitchBend       ChannelKind = 0xE
)

func (k ChannelKind) String() string {
	switch k {
	case NoteOff:
		return "NoteOff"
	case NoteOn:
		return "NoteOn"
	case PolyAftertouch:
		return "PolyAftertouch"
	case ControlChange:
		return "ControlChange"
	case ProgramChange:
		return "ProgramChange"
	case ChannelPressure:
		return "ChannelPressure"
	case PitchBend:
		return "PitchBend"
	default:
		return fmt.Sprintf("ChannelKind(0x%X)", uint8(k))
	}
}

// ChannelEvent is a channel voice message. Only the fields of its Kind are set:
//
//	NoteOff, NoteOn:  Note, Velocity
//	PolyAftertouch:   Note, Pressure
//	ControlChange:    Controller, Value
//	ProgramChange:    Program
//	ChannelPressure:  Pressure
//	PitchBend:        Bend (-8192..8191)
type ChannelEvent struct {
	Delta      uint32
	Kind       ChannelKind
	Channel    uint8
	Note       uint8
	Velocity   uint8
	Controller uint8
	Value      uint8
	Program    uint8
	Pressure   uint8
	Bend       int16
}

func (e ChannelEvent) DeltaTicks() uint32 { return e.Delta }
func (ChannelEvent) isEvent()             {}

// Status returns the status byte that produced the event.
func (e ChannelEvent) Status() uint8 {
	return uint8(e.Kind)<<4 | e.Channel&0x0F
}

// SysExKind is the status byte that introduced a SysEx event.
type SysExKind uint8

const (
	SysExStart  SysExKind = 0xF0
	SysExEscape SysExKind = 0xF7 // continuation packet or escaped raw bytes
)

// SysExEvent is a system exclusive packet.
// Data holds every byte from the start of the current SysEx message through
// this packet; Fragment holds only this packet's bytes.
type SysExEvent struct {
	Delta    uint32
	Kind     SysExKind
	Data     []byte
	Fragment []byte
}

func (e SysExEvent) DeltaTicks() uint32 { return e.Delta }
func (SysExEvent) isEvent()             {}
