package elf32

import (
	"github.com/scigolib/elf32/internal/core"
	"github.com/scigolib/elf32/internal/utils"
)

// ProgramHeader describes how part of the file is mapped into memory at
// load time. Program headers borrow from their owning File and must not
// outlive it.
type ProgramHeader struct {
	f       *File
	hdr     core.ProgHeader
	content []byte
}

// Header returns the decoded program header record.
func (p *ProgramHeader) Header() core.ProgHeader {
	return p.hdr
}

// Type returns the p_type field.
func (p *ProgramHeader) Type() uint32 {
	return p.hdr.Type
}

// VAddr returns the virtual address of the segment.
func (p *ProgramHeader) VAddr() uint32 {
	return p.hdr.VAddr
}

// FileSz returns the number of bytes the segment occupies in the file.
func (p *ProgramHeader) FileSz() uint32 {
	return p.hdr.FileSz
}

// MemSz returns the number of bytes the segment occupies in memory.
func (p *ProgramHeader) MemSz() uint32 {
	return p.hdr.MemSz
}

// Flags returns the p_flags permission bits.
func (p *ProgramHeader) Flags() uint32 {
	return p.hdr.Flags
}

// Contains reports whether addr falls inside the segment's memory image.
func (p *ProgramHeader) Contains(addr uint32) bool {
	return addr >= p.hdr.VAddr && addr-p.hdr.VAddr < p.hdr.MemSz
}

// Content returns the p_memsz-byte in-memory image of the segment: the
// first p_filesz bytes come from the file, the remainder is zero-filled.
// The buffer is read on the first call and cached.
func (p *ProgramHeader) Content() ([]byte, error) {
	if p.content != nil {
		return p.content, nil
	}

	buf := make([]byte, p.hdr.MemSz)
	fileSz := p.hdr.FileSz
	if fileSz > p.hdr.MemSz {
		fileSz = p.hdr.MemSz
	}
	if fileSz > 0 {
		if err := p.f.readAt(int64(p.hdr.Offset), buf[:fileSz]); err != nil {
			return nil, utils.WrapError("program header content read failed", err)
		}
	}
	p.content = buf
	return p.content, nil
}
