package utils

// LEB128 variable-length integer codecs (DWARF v4 §7.6). The unsigned form
// accumulates 7-bit groups little-endian first; the signed form additionally
// sign-extends from bit 6 of the final group.

// ReadULEB128 decodes an unsigned LEB128 value. A buffer that ends before a
// byte with the continuation bit clear is malformed.
func (c *Cursor) ReadULEB128() (uint64, error) {
	var v uint64
	var shift uint
	for {
		b, err := c.ReadU8()
		if err != nil {
			return 0, err
		}
		if shift < 64 {
			v |= uint64(b&0x7f) << shift
		}
		if b&0x80 == 0 {
			return v, nil
		}
		shift += 7
	}
}

// ReadSLEB128 decodes a signed LEB128 value.
func (c *Cursor) ReadSLEB128() (int64, error) {
	var v int64
	var shift uint
	for {
		b, err := c.ReadU8()
		if err != nil {
			return 0, err
		}
		if shift < 64 {
			v |= int64(b&0x7f) << shift
		}
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				v |= -1 << shift
			}
			return v, nil
		}
	}
}

// AppendULEB128 appends the minimal unsigned LEB128 encoding of v to dst.
func AppendULEB128(dst []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		dst = append(dst, b)
		if v == 0 {
			return dst
		}
	}
}

// AppendSLEB128 appends the minimal signed LEB128 encoding of v to dst.
func AppendSLEB128(dst []byte, v int64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(dst, b)
		}
		dst = append(dst, b|0x80)
	}
}
