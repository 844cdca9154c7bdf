package smf

import "fmt"

// MetaType is the second byte of an 0xFF meta event.
type MetaType uint8

const (
	MetaSequenceNumber    MetaType = 0x00
	MetaText              MetaType = 0x01
	MetaCopyright         MetaType = 0x02
	MetaTrackName         MetaType = 0x03
	MetaInstrumentName    MetaType = 0x04
	MetaLyric             MetaType = 0x05
	MetaMarker            MetaType = 0x06
	MetaCuePoint          MetaType = 0x07
	MetaChannelPrefix     MetaType = 0x20
	MetaPort              MetaType = 0x21
	MetaEndOfTrack        MetaType = 0x2F
	MetaTempo             MetaType = 0x51
	MetaSMPTEOffset       MetaType = 0x54
	MetaTimeSignature     MetaType = 0x58
	MetaKeySignature      MetaType = 0x59
	MetaSequencerSpecific MetaType = 0x7F
)

var metaTypeNames = map[MetaType]string{
	MetaSequenceNumber:    "SequenceNumber",
	MetaText:              "Text",
	MetaCopyright:         "Copyright",
	MetaTrackName:         "TrackName",
	MetaInstrumentName:    "InstrumentName",
	MetaLyric:             "Lyric",
	MetaMarker:            "Marker",
	MetaCuePoint:          "CuePoint",
	MetaChannelPrefix:     "ChannelPrefix",
	MetaPort:              "Port",
	MetaEndOfTrack:        "EndOfTrack",
	MetaTempo:             "Tempo",
	MetaSMPTEOffset:       "SMPTEOffset",
	MetaTimeSignature:     "TimeSignature",
	MetaKeySignature:      "KeySignature",
	MetaSequencerSpecific: "SequencerSpecific",
}

func (t MetaType) String() string {
	if name, ok := metaTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Meta(0x%02X)", uint8(t))
}

// IsText reports whether the type carries a text string (0x01-0x07).
func (t MetaType) IsText() bool {
	return t >= MetaText && t <= MetaCuePoint
}

// MetaEvent is an 0xFF meta event. Data always holds the raw payload.
// Payload is the decoded form for known types whose payload has the exact
// expected layout, and nil otherwise.
type MetaEvent struct {
	Delta   uint32
	Type    MetaType
	Data    []byte
	Payload MetaPayload
}

func (e MetaEvent) DeltaTicks() uint32 { return e.Delta }
func (MetaEvent) isEvent()             {}

// MetaPayload is implemented by the decoded meta payload types below.
type MetaPayload interface {
	isMetaPayload()
}

// Text is the payload of meta types 0x01-0x07.
type Text struct {
	Text string
}

// Tempo is the payload of a Set Tempo event.
type Tempo struct {
	MicrosecondsPerQuarter uint32
}

// BPM converts the tempo to quarter notes per minute.
func (t Tempo) BPM() float64 {
	if t.MicrosecondsPerQuarter == 0 {
		return 0
	}
	return 60000000.0 / float64(t.MicrosecondsPerQuarter)
}

// TimeSignature is the payload of a Time Signature event.
// Denominator is the actual note value (4 for quarter), not the exponent.
type TimeSignature struct {
	Numerator               uint8
	Denominator             uint32
	MetronomeClicksPerBeat  uint8
	ThirtySecondsPerQuarter uint8
}

// KeySignature is the payload of a Key Signature event.
type KeySignature struct {
	SharpsFlats int8 // negative for flats
	Minor       bool
}

// EndOfTrack marks the end of a track.
type EndOfTrack struct{}

// SequenceNumber is the payload of meta type 0x00 when two bytes are present.
type SequenceNumber struct {
	Number uint16
}

// ChannelPrefix associates following meta events with a channel.
type ChannelPrefix struct {
	Channel uint8
}

// Port selects the output port for the track.
type Port struct {
	Port uint8
}

// SMPTEOffset is the start time of the track in SMPTE time.
type SMPTEOffset struct {
	Hours, Minutes, Seconds, Frames, FractionalFrames uint8
}

func (Text) isMetaPayload()           {}
func (Tempo) isMetaPayload()          {}
func (TimeSignature) isMetaPayload()  {}
func (KeySignature) isMetaPayload()   {}
func (EndOfTrack) isMetaPayload()     {}
func (SequenceNumber) isMetaPayload() {}
func (ChannelPrefix) isMetaPayload()  {}
func (Port) isMetaPayload()           {}
func (SMPTEOffset) isMetaPayload()    {}

// Text returns the decoded text of a text-type meta event.
func (e MetaEvent) Text() (string, bool) {
	p, ok := e.Payload.(Text)
	return p.Text, ok
}

// Tempo returns microseconds per quarter note of a well-formed Set Tempo event.
func (e MetaEvent) Tempo() (uint32, bool) {
	p, ok := e.Payload.(Tempo)
	return p.MicrosecondsPerQuarter, ok
}

// TimeSignature returns the decoded time signature.
func (e MetaEvent) TimeSignature() (TimeSignature, bool) {
	p, ok := e.Payload.(TimeSignature)
	return p, ok
}

// KeySignature returns the decoded key signature.
func (e MetaEvent) KeySignature() (KeySignature, bool) {
	p, ok := e.Payload.(KeySignature)
	return p, ok
}

// IsEndOfTrack reports whether this is an End-of-Track event.
func (e MetaEvent) IsEndOfTrack() bool {
	return e.Type == MetaEndOfTrack
}

// decodeMetaPayload derives the typed payload. A length that does not match
// the type's layout yields nil rather than an error.
func decodeMetaPayload(t MetaType, data []byte, texts []TextDecoder) MetaPayload {
	switch {
	case t.IsText():
		return Text{Text: decodeText(data, texts)}
	case t == MetaEndOfTrack:
		return EndOfTrack{}
	}

	switch t {
	case MetaTempo:
		if len(data) == 3 {
			return Tempo{MicrosecondsPerQuarter: uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2])}
		}
	case MetaTimeSignature:
		if len(data) == 4 && data[1] < 32 {
			return TimeSignature{
				Numerator:               data[0],
				Denominator:             1 << data[1],
				MetronomeClicksPerBeat:  data[2],
				ThirtySecondsPerQuarter: data[3],
			}
		}
	case MetaKeySignature:
		if len(data) == 2 {
			return KeySignature{SharpsFlats: int8(data[0]), Minor: data[1] == 1}
		}
	case MetaSequenceNumber:
		if len(data) == 2 {
			return SequenceNumber{Number: uint16(data[0])<<8 | uint16(data[1])}
		}
	case MetaChannelPrefix:
		if len(data) == 1 {
			return ChannelPrefix{Channel: data[0]}
		}
	case MetaPort:
		if len(data) == 1 {
			return Port{Port: data[0]}
		}
	case MetaSMPTEOffset:
		if len(data) == 5 {
			return SMPTEOffset{
				Hours:            data[0],
				Minutes:          data[1],
				Seconds:          data[2],
				Frames:           data[3],
				FractionalFrames: data[4],
			}
		}
	}
	return nil
}

// malformedMeta reports whether a known fixed-layout type could not be decoded.
func malformedMeta(t MetaType, payload MetaPayload) bool {
	if payload != nil {
		return false
	}
	switch t {
	case MetaTempo, MetaTimeSignature, MetaKeySignature, MetaSequenceNumber,
		MetaChannelPrefix, MetaPort, MetaSMPTEOffset:
		return true
	}
	return false
}
