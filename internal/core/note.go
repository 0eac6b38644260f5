package core

import (
	"fmt"

	"github.com/scigolib/elf32/internal/utils"
)

// Note is one record from a PT_NOTE segment.
//
// Format:
//
//	namesz (4 bytes)
//	descsz (4 bytes)
//	type   (4 bytes)
//	name   (namesz bytes, NUL-terminated, padded to 4 bytes)
//	desc   (descsz bytes, padded to 4 bytes)
type Note struct {
	Name string
	Type uint32
	Desc []byte
}

// noteErr converts a short-read cursor error into the note taxonomy kind.
func noteErr(err error) error {
	return fmt.Errorf("%w: %v", utils.ErrMalformedNote, err)
}

// ParseNote reads one note record at the cursor position. The name and
// descriptor fields are aligned to 4-byte boundaries per the ELF
// specification; trailing padding missing at the very end of the segment
// is tolerated.
func ParseNote(c *utils.Cursor) (Note, error) {
	nameSz, err := c.ReadU32()
	if err != nil {
		return Note{}, noteErr(err)
	}
	descSz, err := c.ReadU32()
	if err != nil {
		return Note{}, noteErr(err)
	}
	typ, err := c.ReadU32()
	if err != nil {
		return Note{}, noteErr(err)
	}

	name, err := c.ReadBytes(int(nameSz))
	if err != nil {
		return Note{}, noteErr(err)
	}
	skipPadding(c, int(nameSz))

	desc, err := c.ReadBytes(int(descSz))
	if err != nil {
		return Note{}, noteErr(err)
	}
	skipPadding(c, int(descSz))

	return Note{Name: cstring(name), Type: typ, Desc: desc}, nil
}

// skipPadding advances past the alignment gap following a field of n bytes.
func skipPadding(c *utils.Cursor, n int) {
	if pad := (4 - n%4) % 4; pad > 0 && c.Avail(pad) {
		_ = c.Skip(pad)
	}
}

// cstring truncates b at its first NUL.
func cstring(b []byte) string {
	for i, ch := range b {
		if ch == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
