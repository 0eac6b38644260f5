package elf32

import (
	"fmt"

	"github.com/scigolib/elf32/internal/core"
	"github.com/scigolib/elf32/internal/utils"
)

// NoteIter iterates over the note records of a PT_NOTE segment.
//
//	it, err := ph.Notes()
//	for it.Next() {
//	    fmt.Println(it.Name(), it.NoteType(), it.Desc())
//	}
//	if it.Err() != nil { ... }
type NoteIter struct {
	c    *utils.Cursor
	note core.Note
	err  error
}

// Notes returns an iterator over the segment's note records. The segment
// must have type PT_NOTE.
func (p *ProgramHeader) Notes() (*NoteIter, error) {
	if p.hdr.Type != core.PTNote {
		return nil, fmt.Errorf("%w: segment type %d is not PT_NOTE",
			utils.ErrMalformedNote, p.hdr.Type)
	}
	content, err := p.Content()
	if err != nil {
		return nil, err
	}
	return &NoteIter{c: utils.NewCursor(content, p.f.hdr.ByteOrder)}, nil
}

// Next advances to the next note record. It returns false when the
// segment is exhausted or a record is malformed; Err tells the two apart.
func (it *NoteIter) Next() bool {
	if it.err != nil || it.c.Ended() {
		return false
	}
	note, err := core.ParseNote(it.c)
	if err != nil {
		it.err = err
		return false
	}
	it.note = note
	return true
}

// Err returns the error that stopped iteration, if any.
func (it *NoteIter) Err() error {
	return it.err
}

// Name returns the current note's name with the trailing NUL removed.
func (it *NoteIter) Name() string {
	return it.note.Name
}

// NoteType returns the current note's type word.
func (it *NoteIter) NoteType() uint32 {
	return it.note.Type
}

// Desc returns the current note's descriptor bytes. The slice borrows
// from the segment content cache.
func (it *NoteIter) Desc() []byte {
	return it.note.Desc
}
