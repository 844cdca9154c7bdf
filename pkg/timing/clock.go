package timing

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/zurustar/smfparse/pkg/smf"
)

// ErrEmptyTempoMap is returned when a conversion is asked for with no tempo points.
var ErrEmptyTempoMap = errors.New("empty tempo map")

// ErrInvalidPPQ is returned when the ticks-per-quarter resolution is not positive.
var ErrInvalidPPQ = errors.New("invalid ticks per quarter note")

// ErrNoTiming is returned for a document without a time division.
var ErrNoTiming = errors.New("document has no time division")

// TicksToMs converts an absolute tick to milliseconds by integrating the
// piecewise-constant tempo segments of m.
//
// The stretch before the first point contributes no time, so a map that does
// not start at tick 0 measures time from its first point.
func TicksToMs(tick uint64, m TempoMap, ppq int) (float64, error) {
	if len(m) == 0 {
		return 0, ErrEmptyTempoMap
	}
	if ppq <= 0 {
		return 0, ErrInvalidPPQ
	}

	var cursor uint64
	var total float64
	for i, p := range m {
		if cursor >= tick {
			break
		}
		start := max(cursor, p.Tick)
		end := tick
		if i+1 < len(m) && m[i+1].Tick < tick {
			end = m[i+1].Tick
		}
		if end > start && start < tick {
			total += segmentMs(end-start, p.MicrosecondsPerQuarter, ppq)
			cursor = end
		}
	}
	return total, nil
}

// SMPTETicksToMs converts an absolute tick at a fixed SMPTE rate.
// No tempo map is involved.
func SMPTETicksToMs(tick uint64, s smf.SMPTETiming) float64 {
	ticksPerSecond := float64(s.FPS) * float64(s.TicksPerFrame)
	if ticksPerSecond == 0 {
		return 0
	}
	return float64(tick) / ticksPerSecond * 1000
}

func segmentMs(ticks uint64, usPerQuarter uint32, ppq int) float64 {
	return float64(ticks) * float64(usPerQuarter) / (float64(ppq) * 1000)
}

// DocumentTicksToMs converts a tick using the document's own time division.
func DocumentTicksToMs(doc *smf.Document, tick uint64, source Source) (float64, error) {
	if ppq, ok := doc.TicksPerQuarter(); ok {
		return TicksToMs(tick, BuildTempoMap(doc, source), ppq)
	}
	if s, ok := doc.SMPTE(); ok {
		return SMPTETicksToMs(tick, s), nil
	}
	return 0, ErrNoTiming
}

// EndTick returns the largest track end tick of the document.
func EndTick(doc *smf.Document) uint64 {
	var end uint64
	for _, tr := range doc.Tracks {
		end = max(end, tr.EndTick())
	}
	return end
}

// DocumentDuration returns the time of the last event of the longest track.
func DocumentDuration(doc *smf.Document, source Source) (time.Duration, error) {
	ms, err := DocumentTicksToMs(doc, EndTick(doc), source)
	if err != nil {
		return 0, err
	}
	return MsToDuration(ms), nil
}

// MsToDuration rounds milliseconds to the nearest nanosecond.
func MsToDuration(ms float64) time.Duration {
	return time.Duration(math.Round(ms * float64(time.Millisecond)))
}

// Clock converts between ticks and milliseconds for one tempo map.
// The elapsed time at every tempo change is computed once, so each
// conversion is a binary search plus one segment.
type Clock struct {
	ppq      int
	tempoMap TempoMap
	msAt     []float64 // elapsed milliseconds at each tempo point
}

// NewClock creates a Clock for m at the given resolution.
func NewClock(m TempoMap, ppq int) (*Clock, error) {
	if len(m) == 0 {
		return nil, ErrEmptyTempoMap
	}
	if ppq <= 0 {
		return nil, ErrInvalidPPQ
	}
	c := &Clock{
		ppq:      ppq,
		tempoMap: m,
	}
	c.precalculate()
	return c, nil
}

func (c *Clock) precalculate() {
	c.msAt = make([]float64, len(c.tempoMap))
	for i := 1; i < len(c.tempoMap); i++ {
		prev := c.tempoMap[i-1]
		ticksInSegment := c.tempoMap[i].Tick - prev.Tick
		c.msAt[i] = c.msAt[i-1] + segmentMs(ticksInSegment, prev.MicrosecondsPerQuarter, c.ppq)
	}
}

// Ms returns the elapsed milliseconds at tick. It agrees with TicksToMs.
func (c *Clock) Ms(tick uint64) float64 {
	i := sort.Search(len(c.tempoMap), func(i int) bool { return c.tempoMap[i].Tick > tick }) - 1
	if i < 0 {
		return 0
	}
	p := c.tempoMap[i]
	return c.msAt[i] + segmentMs(tick-p.Tick, p.MicrosecondsPerQuarter, c.ppq)
}

// Duration returns the elapsed time at tick.
func (c *Clock) Duration(tick uint64) time.Duration {
	return MsToDuration(c.Ms(tick))
}

// TickAt returns the last tick whose time does not exceed ms.
func (c *Clock) TickAt(ms float64) uint64 {
	if ms <= 0 {
		return c.tempoMap[0].Tick
	}
	i := sort.Search(len(c.msAt), func(i int) bool { return c.msAt[i] > ms }) - 1
	if i < 0 {
		i = 0
	}
	p := c.tempoMap[i]
	if p.MicrosecondsPerQuarter == 0 {
		return p.Tick
	}
	ticks := (ms - c.msAt[i]) * float64(c.ppq) * 1000 / float64(p.MicrosecondsPerQuarter)
	// absorb rounding from the accumulated segment times
	if n := math.Round(ticks); math.Abs(ticks-n) < 1e-6 {
		ticks = n
	}
	return p.Tick + uint64(math.Max(0, math.Floor(ticks)))
}

// PPQ returns the clock's resolution.
func (c *Clock) PPQ() int {
	return c.ppq
}

// TempoMap returns the map the clock was built from.
func (c *Clock) TempoMap() TempoMap {
	return c.tempoMap
}
