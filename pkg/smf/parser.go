package smf

import "log/slog"

const (
	headerTag    = "MThd"
	trackTag     = "MTrk"
	headerLength = 6
)

// Parse decodes a complete Standard MIDI File held in data.
// On any error no document is returned.
func Parse(data []byte, opts ...Option) (*Document, error) {
	cfg := newConfig(opts)
	c := NewCursor(data)

	h, err := ParseHeader(c)
	if err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, h.TrackCount)
	for i := 0; i < int(h.TrackCount); i++ {
		tr, err := parseTrack(c, cfg, i)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, tr)
	}

	if c.Remaining() > 0 {
		cfg.log.Debug("ignoring bytes after last declared track",
			"offset", c.Offset(), "bytes", c.Remaining())
	}

	return &Document{
		Format: h.Format,
		Tracks: tracks,
		Timing: h.Division,
	}, nil
}

// ParseHeader decodes the MThd chunk at the cursor.
func ParseHeader(c *Cursor) (Header, error) {
	start := c.Offset()
	tag, err := c.ReadTag(4)
	if err != nil {
		return Header{}, err
	}
	if tag != headerTag {
		return Header{}, magicError(start, headerTag, tag)
	}

	lenOffset := c.Offset()
	length, err := c.ReadU32()
	if err != nil {
		return Header{}, err
	}
	if length != headerLength {
		return Header{}, structuralError(ErrBadHeaderLength, lenOffset, int(length))
	}

	fmtOffset := c.Offset()
	format, err := c.ReadU16()
	if err != nil {
		return Header{}, err
	}
	if format > uint16(FormatMultiSequence) {
		return Header{}, structuralError(ErrUnsupportedFormat, fmtOffset, int(format))
	}

	trackCount, err := c.ReadU16()
	if err != nil {
		return Header{}, err
	}

	divOffset := c.Offset()
	raw, err := c.ReadU16()
	if err != nil {
		return Header{}, err
	}
	division, err := decodeDivision(raw, divOffset)
	if err != nil {
		return Header{}, err
	}

	return Header{
		Format:     Format(format),
		TrackCount: trackCount,
		Division:   division,
	}, nil
}

func decodeDivision(raw uint16, offset int) (Division, error) {
	if raw&0x8000 == 0 {
		if raw == 0 {
			return nil, structuralError(ErrInvalidDivision, offset, int(raw))
		}
		return MetricTicks(raw), nil
	}

	// The high byte is the frame rate stored as a negative two's complement value.
	rate := int(int8(raw >> 8))
	if rate < 0 {
		rate = -rate
	}
	s := SMPTETiming{FPS: uint8(rate), TicksPerFrame: uint8(raw)}
	switch s.FPS {
	case 24, 25, 29, 30:
	default:
		return nil, structuralError(ErrInvalidDivision, offset, int(raw))
	}
	if s.TicksPerFrame == 0 {
		return nil, structuralError(ErrInvalidDivision, offset, int(raw))
	}
	return s, nil
}

// trackState is the running-status and SysEx context of one track.
// It is created fresh for every track and never outlives parseTrack.
type trackState struct {
	runningStatus uint8 // 0 when no channel status has been seen
	pendingSysEx  []byte
	inSysEx       bool
}

func parseTrack(c *Cursor, cfg *config, index int) (Track, error) {
	start := c.Offset()
	tag, err := c.ReadTag(4)
	if err != nil {
		return Track{}, err
	}
	if tag != trackTag {
		return Track{}, magicError(start, trackTag, tag)
	}
	length, err := c.ReadU32()
	if err != nil {
		return Track{}, err
	}
	end := c.Offset() + int(length)

	log := cfg.log.With(slog.Int("track", index))
	var st trackState
	events := []Event{}

	for c.Offset() < end {
		ev, err := parseEvent(c, cfg, &st, log)
		if err != nil {
			return Track{}, err
		}
		events = append(events, ev)

		if m, ok := ev.(MetaEvent); ok && m.IsEndOfTrack() {
			break
		}
	}

	switch {
	case c.Offset() < end && end <= c.Len():
		log.Debug("skipping bytes after end of track", "offset", c.Offset(), "bytes", end-c.Offset())
		if err := c.Skip(end - c.Offset()); err != nil {
			return Track{}, err
		}
	case c.Offset() < end:
		log.Debug("declared track length exceeds input", "declared_end", end, "input_len", c.Len())
	case c.Offset() > end:
		log.Debug("last event overran declared track length", "declared_end", end, "offset", c.Offset())
	}

	return Track{Events: events}, nil
}

func parseEvent(c *Cursor, cfg *config, st *trackState, log *slog.Logger) (Event, error) {
	delta, err := ReadVLQ(c)
	if err != nil {
		return nil, err
	}

	statusOffset := c.Offset()
	b, err := c.PeekU8()
	if err != nil {
		return nil, err
	}

	status := b
	if b < 0x80 {
		if st.runningStatus == 0 {
			return nil, structuralError(ErrRunningStatusWithoutContext, statusOffset, int(b))
		}
		status = st.runningStatus
	} else {
		c.offset++
		if b < 0xF0 {
			st.runningStatus = b
		}
	}

	switch {
	case status < 0xF0:
		st.clearSysEx()
		return parseChannelEvent(c, cfg, delta, status)
	case status == 0xFF:
		st.clearSysEx()
		return parseMetaEvent(c, cfg, delta, log)
	case status == 0xF0 || status == 0xF7:
		return parseSysExEvent(c, st, delta, SysExKind(status))
	default:
		return nil, structuralError(ErrUnsupportedEventStatus, statusOffset, int(status))
	}
}

func (st *trackState) clearSysEx() {
	st.pendingSysEx = nil
	st.inSysEx = false
}

func parseChannelEvent(c *Cursor, cfg *config, delta uint32, status uint8) (Event, error) {
	ev := ChannelEvent{
		Delta:   delta,
		Kind:    ChannelKind(status >> 4),
		Channel: status & 0x0F,
	}

	d1, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	if ev.Kind == ProgramChange || ev.Kind == ChannelPressure {
		if ev.Kind == ProgramChange {
			ev.Program = d1
		} else {
			ev.Pressure = d1
		}
		return ev, nil
	}

	d2, err := c.ReadU8()
	if err != nil {
		return nil, err
	}

	switch ev.Kind {
	case NoteOff:
		ev.Note, ev.Velocity = d1, d2
	case NoteOn:
		ev.Note, ev.Velocity = d1, d2
		if d2 == 0 && cfg.normalizeNoteOff {
			ev.Kind = NoteOff
			ev.Velocity = cfg.noteOffVelocity
		}
	case PolyAftertouch:
		ev.Note, ev.Pressure = d1, d2
	case ControlChange:
		ev.Controller, ev.Value = d1, d2
	case PitchBend:
		ev.Bend = int16((int(d2)<<7)|int(d1)) - 8192
	}
	return ev, nil
}

func parseMetaEvent(c *Cursor, cfg *config, delta uint32, log *slog.Logger) (Event, error) {
	t, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	length, err := ReadVLQ(c)
	if err != nil {
		return nil, err
	}
	dataOffset := c.Offset()
	data, err := c.ReadBytes(int(length))
	if err != nil {
		return nil, err
	}

	mt := MetaType(t)
	payload := decodeMetaPayload(mt, data, cfg.textDecoders)
	if malformedMeta(mt, payload) {
		log.Debug("meta payload does not match its type", "type", mt.String(), "length", len(data), "offset", dataOffset)
	}

	return MetaEvent{
		Delta:   delta,
		Type:    mt,
		Data:    data,
		Payload: payload,
	}, nil
}

func parseSysExEvent(c *Cursor, st *trackState, delta uint32, kind SysExKind) (Event, error) {
	length, err := ReadVLQ(c)
	if err != nil {
		return nil, err
	}
	fragment, err := c.ReadBytes(int(length))
	if err != nil {
		return nil, err
	}

	var data []byte
	switch {
	case kind == SysExStart:
		data = fragment
		st.inSysEx = true
	case st.inSysEx:
		data = make([]byte, 0, len(st.pendingSysEx)+len(fragment))
		data = append(data, st.pendingSysEx...)
		data = append(data, fragment...)
	default:
		// An F7 packet with no open message is an escape: its bytes stand alone.
		data = fragment
	}

	if st.inSysEx {
		st.pendingSysEx = data
	}

	return SysExEvent{
		Delta:    delta,
		Kind:     kind,
		Data:     data,
		Fragment: fragment,
	}, nil
}
