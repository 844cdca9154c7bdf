// Package timing derives wall-clock time from the tick stream of a decoded SMF document.
// This file builds the tempo map; clock.go integrates it.
package timing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zurustar/smfparse/pkg/smf"
)

// DefaultTempo is the MIDI default of 500000 microseconds per quarter note (120 BPM).
const DefaultTempo = 500000

// TempoPoint is a tempo change at an absolute tick.
type TempoPoint struct {
	Tick                   uint64
	MicrosecondsPerQuarter uint32
}

// BPM returns the tempo in quarter notes per minute.
func (p TempoPoint) BPM() float64 {
	if p.MicrosecondsPerQuarter == 0 {
		return 0
	}
	return 60000000.0 / float64(p.MicrosecondsPerQuarter)
}

// TempoMap is a list of tempo points sorted by tick with at most one point per tick.
type TempoMap []TempoPoint

// Source selects which tracks contribute tempo events.
type Source int

const (
	// SourceAuto follows the document format: format 0 scans every track,
	// formats 1 and 2 scan track 0 only.
	SourceAuto Source = iota
	// SourceTrack0 scans the first track (the conductor track of format 1 files).
	SourceTrack0
	// SourceAll scans every track.
	SourceAll
	// SourceMerge is an alias of SourceAll.
	SourceMerge
)

func (s Source) String() string {
	switch s {
	case SourceAuto:
		return "auto"
	case SourceTrack0:
		return "track0"
	case SourceAll:
		return "all"
	case SourceMerge:
		return "merge"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// ParseSource parses a configured tempo source name.
func ParseSource(name string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return SourceAuto, nil
	case "track0":
		return SourceTrack0, nil
	case "all":
		return SourceAll, nil
	case "merge":
		return SourceMerge, nil
	default:
		return SourceAuto, fmt.Errorf("invalid tempo source: %s (must be auto, track0, all, or merge)", name)
	}
}

// resolve turns SourceAuto into a concrete source for the document's format.
func (s Source) resolve(format smf.Format) Source {
	if s != SourceAuto {
		return s
	}
	if format == smf.FormatSingleTrack {
		return SourceAll
	}
	return SourceTrack0
}

// BuildTempoMap collects the well-formed Set Tempo events of the selected tracks.
// Points are ordered by tick; when several share a tick the last one scanned wins.
// The result always starts with a point at tick 0, DefaultTempo if none was given.
func BuildTempoMap(doc *smf.Document, source Source) TempoMap {
	var tracks []smf.Track
	switch source.resolve(doc.Format) {
	case SourceTrack0:
		if len(doc.Tracks) > 0 {
			tracks = doc.Tracks[:1]
		}
	default:
		tracks = doc.Tracks
	}

	var points []TempoPoint
	for _, tr := range tracks {
		var tick uint64
		for _, ev := range tr.Events {
			tick += uint64(ev.DeltaTicks())
			m, ok := ev.(smf.MetaEvent)
			if !ok {
				continue
			}
			if us, ok := m.Tempo(); ok {
				points = append(points, TempoPoint{Tick: tick, MicrosecondsPerQuarter: us})
			}
		}
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Tick < points[j].Tick
	})

	merged := make(TempoMap, 0, len(points)+1)
	for _, p := range points {
		if n := len(merged); n > 0 && merged[n-1].Tick == p.Tick {
			merged[n-1] = p
			continue
		}
		merged = append(merged, p)
	}

	if len(merged) == 0 || merged[0].Tick != 0 {
		merged = append(TempoMap{{Tick: 0, MicrosecondsPerQuarter: DefaultTempo}}, merged...)
	}
	return merged
}

// At returns the tempo in effect at tick.
// Ticks before the first point report the first point's tempo.
func (m TempoMap) At(tick uint64) (TempoPoint, bool) {
	if len(m) == 0 {
		return TempoPoint{}, false
	}
	i := sort.Search(len(m), func(i int) bool { return m[i].Tick > tick })
	if i == 0 {
		return m[0], true
	}
	return m[i-1], true
}
