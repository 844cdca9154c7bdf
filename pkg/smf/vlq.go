package smf

// MaxVLQ is the largest value a 4-byte variable-length quantity can carry.
const MaxVLQ = 0x0FFFFFFF

const maxVLQBytes = 4

// ReadVLQ decodes a MIDI variable-length quantity.
// Redundant leading 0x80 bytes are accepted; there is no canonical-form check.
func ReadVLQ(c *Cursor) (uint32, error) {
	start := c.Offset()
	var value uint32
	for i := 0; i < maxVLQBytes; i++ {
		b, err := c.ReadU8()
		if err != nil {
			return 0, err
		}
		value = (value << 7) | uint32(b&0x7F)
		if b&0x80 == 0 {
			return value, nil
		}
	}
	return 0, structuralError(ErrVLQTooLong, start, 0)
}

// AppendVLQ appends the canonical encoding of v to dst.
// Values above MaxVLQ are truncated to their low 28 bits.
func AppendVLQ(dst []byte, v uint32) []byte {
	v &= MaxVLQ
	var tmp [maxVLQBytes]byte
	n := 0
	tmp[n] = byte(v & 0x7F)
	n++
	for v >>= 7; v > 0; v >>= 7 {
		tmp[n] = byte(v&0x7F) | 0x80
		n++
	}
	for i := n - 1; i >= 0; i-- {
		dst = append(dst, tmp[i])
	}
	return dst
}
