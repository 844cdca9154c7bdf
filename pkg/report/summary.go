// Package report renders a decoded Standard MIDI File as text.
package report

import (
	"errors"
	"time"

	"github.com/zurustar/smfparse/pkg/smf"
	"github.com/zurustar/smfparse/pkg/timing"
)

// TrackSummary describes one track of a document.
type TrackSummary struct {
	Index         int
	Name          string
	Events        int
	Notes         int // NoteOn events with a non-zero velocity
	EndTick       uint64
	EndMs         float64
	HasEndOfTrack bool
}

// TempoChange is a tempo map point with its elapsed time.
type TempoChange struct {
	timing.TempoPoint
	Ms float64
}

// Summary is the document overview shared by the text report and the app.
type Summary struct {
	Format        smf.Format
	Division      smf.Division
	Tracks        []TrackSummary
	Tempos        []TempoChange // empty for SMPTE timing
	TimeSignature *smf.TimeSignature
	KeySignature  *smf.KeySignature
	EndTick       uint64
	Duration      time.Duration
}

// Converter maps an absolute tick to milliseconds.
type Converter func(tick uint64) float64

// NewConverter returns the tick converter for doc. Metric documents use tm;
// SMPTE documents ignore it.
func NewConverter(doc *smf.Document, tm timing.TempoMap) (Converter, error) {
	if ppq, ok := doc.TicksPerQuarter(); ok {
		clock, err := timing.NewClock(tm, ppq)
		if err != nil {
			return nil, err
		}
		return clock.Ms, nil
	}
	if s, ok := doc.SMPTE(); ok {
		return func(tick uint64) float64 { return timing.SMPTETicksToMs(tick, s) }, nil
	}
	return nil, timing.ErrNoTiming
}

// Summarize collects the per-track and timing overview of doc.
func Summarize(doc *smf.Document, tm timing.TempoMap) (*Summary, error) {
	if doc == nil {
		return nil, errors.New("nil document")
	}
	toMs, err := NewConverter(doc, tm)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Format:   doc.Format,
		Division: doc.Timing,
		EndTick:  timing.EndTick(doc),
	}
	s.Duration = timing.MsToDuration(toMs(s.EndTick))

	for i, tr := range doc.Tracks {
		ts := TrackSummary{
			Index:         i,
			Events:        len(tr.Events),
			EndTick:       tr.EndTick(),
			HasEndOfTrack: tr.HasEndOfTrack(),
		}
		ts.EndMs = toMs(ts.EndTick)
		ts.Name, _ = tr.Name()

		for _, ev := range tr.Events {
			switch e := ev.(type) {
			case smf.ChannelEvent:
				if e.Kind == smf.NoteOn && e.Velocity > 0 {
					ts.Notes++
				}
			case smf.MetaEvent:
				if sig, ok := e.TimeSignature(); ok && s.TimeSignature == nil {
					s.TimeSignature = &sig
				}
				if key, ok := e.KeySignature(); ok && s.KeySignature == nil {
					s.KeySignature = &key
				}
			}
		}
		s.Tracks = append(s.Tracks, ts)
	}

	if _, ok := doc.TicksPerQuarter(); ok {
		for _, p := range tm {
			s.Tempos = append(s.Tempos, TempoChange{TempoPoint: p, Ms: toMs(p.Tick)})
		}
	}

	return s, nil
}
