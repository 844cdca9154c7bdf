package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/zurustar/smfparse/pkg/smf"
	"github.com/zurustar/smfparse/pkg/timing"
)

// Options controls the text report.
type Options struct {
	Name   string        // file label printed in the heading, optional
	Source timing.Source // tempo collection policy
	Events bool          // list every event with its absolute tick and time
}

// Write prints the header, track and tempo summary of doc to w.
func Write(w io.Writer, doc *smf.Document, opts Options) error {
	tm := timing.BuildTempoMap(doc, opts.Source)
	s, err := Summarize(doc, tm)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	writeSummary(tw, s, opts)

	if opts.Events {
		toMs, err := NewConverter(doc, tm)
		if err != nil {
			return err
		}
		writeEvents(tw, doc, toMs)
	}

	return tw.Flush()
}

func writeSummary(w io.Writer, s *Summary, opts Options) {
	if opts.Name != "" {
		fmt.Fprintf(w, "File:\t%s\n", opts.Name)
	}
	fmt.Fprintf(w, "Format:\t%d (%s)\n", uint16(s.Format), s.Format)
	fmt.Fprintf(w, "Tracks:\t%d\n", len(s.Tracks))
	fmt.Fprintf(w, "Division:\t%s\n", s.Division)
	if s.TimeSignature != nil {
		fmt.Fprintf(w, "Meter:\t%d/%d\n", s.TimeSignature.Numerator, s.TimeSignature.Denominator)
	}
	if s.KeySignature != nil {
		fmt.Fprintf(w, "Key:\t%s\n", KeyName(*s.KeySignature))
	}
	fmt.Fprintf(w, "Length:\t%d ticks, %s\n", s.EndTick, s.Duration)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "#\tName\tEvents\tNotes\tEnd tick\tEnd ms\tEOT")
	for _, t := range s.Tracks {
		eot := "yes"
		if !t.HasEndOfTrack {
			eot = "no"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%.3f\t%s\n", t.Index, quoteName(t.Name), t.Events, t.Notes, t.EndTick, t.EndMs, eot)
	}

	if len(s.Tempos) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tick\tus/quarter\tBPM\tms")
		for _, p := range s.Tempos {
			fmt.Fprintf(w, "%d\t%d\t%.2f\t%.3f\n", p.Tick, p.MicrosecondsPerQuarter, p.BPM(), p.Ms)
		}
	}
}

func writeEvents(w io.Writer, doc *smf.Document, toMs Converter) {
	for i, tr := range doc.Tracks {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Track %d\n", i)
		fmt.Fprintln(w, "Tick\tms\tEvent")
		ticks := tr.AbsoluteTicks()
		for j, ev := range tr.Events {
			fmt.Fprintf(w, "%d\t%.3f\t%s\n", ticks[j], toMs(ticks[j]), Describe(ev))
		}
	}
}

func quoteName(name string) string {
	if name == "" {
		return "-"
	}
	return fmt.Sprintf("%q", name)
}

// Describe formats a single event on one line.
func Describe(ev smf.Event) string {
	switch e := ev.(type) {
	case smf.ChannelEvent:
		return describeChannel(e)
	case smf.MetaEvent:
		return describeMeta(e)
	case smf.SysExEvent:
		return fmt.Sprintf("SysEx 0x%02X % X (message % X)", uint8(e.Kind), e.Fragment, e.Data)
	default:
		return fmt.Sprintf("%T", ev)
	}
}

func describeChannel(e smf.ChannelEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s ch=%d", e.Kind, e.Channel)
	switch e.Kind {
	case smf.NoteOff, smf.NoteOn:
		fmt.Fprintf(&b, " note=%d vel=%d", e.Note, e.Velocity)
	case smf.PolyAftertouch:
		fmt.Fprintf(&b, " note=%d pressure=%d", e.Note, e.Pressure)
	case smf.ControlChange:
		fmt.Fprintf(&b, " ctrl=%d value=%d", e.Controller, e.Value)
	case smf.ProgramChange:
		fmt.Fprintf(&b, " program=%d", e.Program)
	case smf.ChannelPressure:
		fmt.Fprintf(&b, " pressure=%d", e.Pressure)
	case smf.PitchBend:
		fmt.Fprintf(&b, " bend=%d", e.Bend)
	}
	return b.String()
}

func describeMeta(e smf.MetaEvent) string {
	label := "Meta " + e.Type.String()
	switch p := e.Payload.(type) {
	case smf.Text:
		return fmt.Sprintf("%s %q", label, p.Text)
	case smf.Tempo:
		return fmt.Sprintf("%s %d us/quarter (%.2f BPM)", label, p.MicrosecondsPerQuarter, p.BPM())
	case smf.TimeSignature:
		return fmt.Sprintf("%s %d/%d clocks=%d 32nds=%d", label, p.Numerator, p.Denominator, p.MetronomeClicksPerBeat, p.ThirtySecondsPerQuarter)
	case smf.KeySignature:
		return fmt.Sprintf("%s %s", label, KeyName(p))
	case smf.EndOfTrack:
		return label
	case smf.SequenceNumber:
		return fmt.Sprintf("%s %d", label, p.Number)
	case smf.ChannelPrefix:
		return fmt.Sprintf("%s ch=%d", label, p.Channel)
	case smf.Port:
		return fmt.Sprintf("%s %d", label, p.Port)
	case smf.SMPTEOffset:
		return fmt.Sprintf("%s %02d:%02d:%02d:%02d.%02d", label, p.Hours, p.Minutes, p.Seconds, p.Frames, p.FractionalFrames)
	default:
		if e.Payload == nil && len(e.Data) > 0 {
			return fmt.Sprintf("%s [% X]", label, e.Data)
		}
		return label
	}
}

var majorKeys = [15]string{"Cb", "Gb", "Db", "Ab", "Eb", "Bb", "F", "C", "G", "D", "A", "E", "B", "F#", "C#"}
var minorKeys = [15]string{"Ab", "Eb", "Bb", "F", "C", "G", "D", "A", "E", "B", "F#", "C#", "G#", "D#", "A#"}

// KeyName names a key signature, for example "Eb major" or "F# minor".
// Out-of-range accidental counts are printed as numbers.
func KeyName(k smf.KeySignature) string {
	idx := int(k.SharpsFlats) + 7
	if idx < 0 || idx >= len(majorKeys) {
		mode := "major"
		if k.Minor {
			mode = "minor"
		}
		return fmt.Sprintf("%d accidentals %s", k.SharpsFlats, mode)
	}
	if k.Minor {
		return minorKeys[idx] + " minor"
	}
	return majorKeys[idx] + " major"
}
