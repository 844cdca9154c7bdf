package smf

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildHeader writes an MThd chunk.
func buildHeader(format, tracks, division uint16) []byte {
	var buf bytes.Buffer
	buf.WriteString("MThd")
	binary.Write(&buf, binary.BigEndian, uint32(6))
	binary.Write(&buf, binary.BigEndian, format)
	binary.Write(&buf, binary.BigEndian, tracks)
	binary.Write(&buf, binary.BigEndian, division)
	return buf.Bytes()
}

// buildTrack wraps body in an MTrk chunk with the body's real length.
func buildTrack(body ...[]byte) []byte {
	joined := bytes.Join(body, nil)
	return buildTrackWithLength(uint32(len(joined)), joined)
}

// buildTrackWithLength writes an MTrk chunk declaring an arbitrary length.
func buildTrackWithLength(length uint32, body []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("MTrk")
	binary.Write(&buf, binary.BigEndian, length)
	buf.Write(body)
	return buf.Bytes()
}

// buildFile assembles a PPQ 480 file with one chunk per track body.
func buildFile(format uint16, tracks ...[]byte) []byte {
	out := buildHeader(format, uint16(len(tracks)), 480)
	for _, tr := range tracks {
		out = append(out, tr...)
	}
	return out
}

var endOfTrack = []byte{0x00, 0xFF, 0x2F, 0x00}

// tempoEvent encodes a Set Tempo meta event with the given delta.
func tempoEvent(delta uint32, us uint32) []byte {
	ev := AppendVLQ(nil, delta)
	return append(ev, 0xFF, 0x51, 0x03, byte(us>>16), byte(us>>8), byte(us))
}

// metaEvent encodes a meta event with a zero delta.
func metaEvent(t byte, data []byte) []byte {
	ev := []byte{0x00, 0xFF, t}
	ev = AppendVLQ(ev, uint32(len(data)))
	return append(ev, data...)
}

func mustParse(t testing.TB, data []byte, opts ...Option) *Document {
	t.Helper()
	doc, err := Parse(data, opts...)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}
