package elf32

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scigolib/elf32/internal/core"
)

// buildNote assembles one aligned note record in the given byte order.
func buildNote(order binary.ByteOrder, name string, typ uint32, desc []byte) []byte {
	nameBytes := append([]byte(name), 0)
	buf := make([]byte, 12)
	order.PutUint32(buf[0:], uint32(len(nameBytes)))
	order.PutUint32(buf[4:], uint32(len(desc)))
	order.PutUint32(buf[8:], typ)
	buf = append(buf, nameBytes...)
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	buf = append(buf, desc...)
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

func TestNotesSingleEntry(t *testing.T) {
	order := binary.LittleEndian
	seg := buildNote(order, "GNU", 1, []byte{0, 1, 2, 3})

	img := newELFBuilder(order).
		addPhdr(core.PTNote, 0, uint32(len(seg)), core.PFR, seg).
		build()
	f := newTestFile(t, img)

	phdrs, err := f.ProgramHeaders()
	require.NoError(t, err)
	require.Len(t, phdrs, 1)

	it, err := phdrs[0].Notes()
	require.NoError(t, err)

	require.True(t, it.Next())
	assert.Equal(t, "GNU", it.Name())
	assert.Equal(t, uint32(1), it.NoteType())
	assert.Equal(t, []byte{0, 1, 2, 3}, it.Desc())

	assert.False(t, it.Next())
	assert.NoError(t, it.Err())
}

func TestNotesMultipleEntries(t *testing.T) {
	order := binary.BigEndian
	seg := append(
		buildNote(order, "GNU", 3, []byte{0xCA, 0xFE}),
		buildNote(order, "CORE", 1, []byte{1})...,
	)

	img := newELFBuilder(order).
		addPhdr(core.PTNote, 0, uint32(len(seg)), core.PFR, seg).
		build()
	f := newTestFile(t, img)

	phdrs, err := f.ProgramHeaders()
	require.NoError(t, err)
	it, err := phdrs[0].Notes()
	require.NoError(t, err)

	var names []string
	for it.Next() {
		names = append(names, it.Name())
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"GNU", "CORE"}, names)
}

func TestNotesOverrunningEntry(t *testing.T) {
	// The last entry declares namesz + descsz beyond the segment end.
	order := binary.LittleEndian
	seg := make([]byte, 12)
	order.PutUint32(seg[0:], 4)
	order.PutUint32(seg[4:], 0x40)
	order.PutUint32(seg[8:], 1)
	seg = append(seg, 'G', 'N', 'U', 0)

	img := newELFBuilder(order).
		addPhdr(core.PTNote, 0, uint32(len(seg)), core.PFR, seg).
		build()
	f := newTestFile(t, img)

	phdrs, err := f.ProgramHeaders()
	require.NoError(t, err)
	it, err := phdrs[0].Notes()
	require.NoError(t, err)

	assert.False(t, it.Next())
	require.Error(t, it.Err())
	assert.True(t, errors.Is(it.Err(), ErrMalformedNote))
}

func TestNotesOnNonNoteSegment(t *testing.T) {
	img := newELFBuilder(binary.LittleEndian).
		addPhdr(core.PTLoad, 0x1000, 4, core.PFR, []byte{1, 2, 3, 4}).
		build()
	f := newTestFile(t, img)

	phdrs, err := f.ProgramHeaders()
	require.NoError(t, err)
	_, err = phdrs[0].Notes()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedNote))
}
