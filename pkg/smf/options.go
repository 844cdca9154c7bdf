package smf

import "log/slog"

// DefaultNormalizedVelocity is the release velocity given to a NoteOn with
// velocity 0 when note-off normalization is enabled.
const DefaultNormalizedVelocity = 64

type config struct {
	normalizeNoteOff bool
	noteOffVelocity  uint8
	textDecoders     []TextDecoder
	log              *slog.Logger
}

// Option configures Parse.
type Option func(*config)

// WithNoteOffNormalization rewrites NoteOn events with velocity 0 into NoteOff
// events carrying the given release velocity. Disabled by default.
func WithNoteOffNormalization(velocity uint8) Option {
	return func(c *config) {
		c.normalizeNoteOff = true
		c.noteOffVelocity = velocity & 0x7F
	}
}

// WithTextDecoders sets the decoders tried, in order, on text meta events.
// Latin-1 is always tried last, so decoding never fails.
func WithTextDecoders(decoders ...TextDecoder) Option {
	return func(c *config) {
		c.textDecoders = decoders
	}
}

// WithLogger enables debug logging of tolerated irregularities.
func WithLogger(log *slog.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

func newConfig(opts []Option) *config {
	c := &config{
		textDecoders: DefaultTextDecoders,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	return c
}
