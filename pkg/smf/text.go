package smf

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

// ErrUndecodableText is returned by a TextDecoder that rejects its input.
var ErrUndecodableText = errors.New("text cannot be decoded")

// ErrUnknownEncoding is returned by DecoderByName.
var ErrUnknownEncoding = errors.New("unknown text encoding")

// TextDecoder converts the raw bytes of a text meta event into a string.
// Decoders are tried in order and the first one that succeeds wins.
type TextDecoder interface {
	Name() string
	Decode(b []byte) (string, error)
}

type utf8Decoder struct{}

func (utf8Decoder) Name() string { return "utf-8" }

func (utf8Decoder) Decode(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", ErrUndecodableText
	}
	return string(b), nil
}

// strictDecoder wraps an x/text encoding and rejects output that needed
// replacement characters the input did not already contain.
type strictDecoder struct {
	name string
	enc  encoding.Encoding
}

func (d strictDecoder) Name() string { return d.name }

func (d strictDecoder) Decode(b []byte) (string, error) {
	out, err := d.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUndecodableText, err)
	}
	s := string(out)
	if strings.ContainsRune(s, utf8.RuneError) && !strings.ContainsRune(string(b), utf8.RuneError) {
		return "", ErrUndecodableText
	}
	return s, nil
}

// latin1Decoder maps every byte to the code point of the same value and never fails.
type latin1Decoder struct{}

func (latin1Decoder) Name() string { return "latin1" }

func (latin1Decoder) Decode(b []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		// ISO 8859-1 covers all 256 byte values; this is unreachable in practice.
		runes := make([]rune, len(b))
		for i, c := range b {
			runes[i] = rune(c)
		}
		return string(runes), nil
	}
	return string(out), nil
}

var (
	// UTF8 accepts only well-formed UTF-8.
	UTF8 TextDecoder = utf8Decoder{}
	// ShiftJIS decodes Japanese text as written by many older sequencers.
	ShiftJIS TextDecoder = strictDecoder{name: "shift_jis", enc: japanese.ShiftJIS}
	// Windows1252 decodes the Western Windows code page.
	Windows1252 TextDecoder = strictDecoder{name: "windows-1252", enc: charmap.Windows1252}
	// Latin1 is the fallback decoder; it succeeds on any input.
	Latin1 TextDecoder = latin1Decoder{}
)

// DefaultTextDecoders is the chain used when no decoders are configured.
var DefaultTextDecoders = []TextDecoder{UTF8, Latin1}

// DecoderByName resolves a configured encoding name.
func DecoderByName(name string) (TextDecoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8", "utf8":
		return UTF8, nil
	case "shift_jis", "shift-jis", "sjis", "cp932":
		return ShiftJIS, nil
	case "windows-1252", "cp1252":
		return Windows1252, nil
	case "latin1", "latin-1", "iso-8859-1":
		return Latin1, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, name)
	}
}

// DecodersByName resolves a list of encoding names, for example from a
// comma-separated configuration value.
func DecodersByName(names []string) ([]TextDecoder, error) {
	decoders := make([]TextDecoder, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		d, err := DecoderByName(name)
		if err != nil {
			return nil, err
		}
		decoders = append(decoders, d)
	}
	return decoders, nil
}

func decodeText(b []byte, decoders []TextDecoder) string {
	for _, d := range decoders {
		if s, err := d.Decode(b); err == nil {
			return s
		}
	}
	s, _ := Latin1.Decode(b)
	return s
}
