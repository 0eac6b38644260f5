// Package elf32 provides a pure Go reader for 32-bit ELF executable and
// object files. It exposes lazy, endian-aware views over the ELF container
// (sections, program headers, PT_NOTE records) and decodes the DWARF
// .debug_line section into a queryable source-line table.
package elf32

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/scigolib/elf32/internal/core"
	"github.com/scigolib/elf32/internal/utils"
)

// FileType classifies an ELF file by its e_type field.
type FileType int

// File classification values.
const (
	NoType FileType = iota
	Program
	Library
)

// String implements fmt.Stringer.
func (t FileType) String() string {
	switch t {
	case Program:
		return "program"
	case Library:
		return "library"
	}
	return "no type"
}

// File represents an open ELF32 file. It owns its byte source and the
// lazily materialized section and program header caches. A File is not
// safe for concurrent mutation; once fully parsed it may be shared
// read-only.
type File struct {
	path   string
	r      utils.ReaderAt
	size   int64
	closer io.Closer

	hdr      *core.Header
	sections []*Section
	phdrs    []*ProgramHeader
	strtab   *Section
}

// Open opens the ELF32 file at path.
func Open(path string) (*File, error) {
	//nolint:gosec // G304: user-provided filename is intentional for an ELF reader library
	f, err := os.Open(path)
	if err != nil {
		return nil, utils.WrapError("file open failed", fmt.Errorf("%w: %v", utils.ErrIO, err))
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, utils.WrapError("file stat failed", fmt.Errorf("%w: %v", utils.ErrIO, err))
	}

	ef, err := NewFile(f, fi.Size())
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	ef.path = path
	ef.closer = f
	return ef, nil
}

// NewFile reads an ELF32 file from an arbitrary byte source. size is the
// total length of the source and bounds the header table extents.
func NewFile(r utils.ReaderAt, size int64) (*File, error) {
	hdr, err := core.ReadHeader(r, size)
	if err != nil {
		return nil, err
	}
	return &File{r: r, size: size, hdr: hdr}, nil
}

// Close closes the byte source if Open created it. It is safe to call
// Close multiple times.
func (f *File) Close() error {
	if f.closer == nil {
		return nil // Already closed or externally owned.
	}
	err := f.closer.Close()
	f.closer = nil // Prevent double close.
	return err
}

// Path returns the path the file was opened from, or "" for NewFile.
func (f *File) Path() string {
	return f.path
}

// Header returns the decoded ELF file header.
func (f *File) Header() *core.Header {
	return f.hdr
}

// ByteOrder returns the byte order declared by e_ident[EI_DATA].
func (f *File) ByteOrder() binary.ByteOrder {
	return f.hdr.ByteOrder
}

// BigEndian reports whether the file declares big-endian data encoding.
func (f *File) BigEndian() bool {
	return f.hdr.Ident[core.EIData] == core.ELFData2MSB
}

// Entry returns the program entry point address.
func (f *File) Entry() uint32 {
	return f.hdr.Entry
}

// Machine returns the e_machine architecture tag.
func (f *File) Machine() uint16 {
	return f.hdr.Machine
}

// Type classifies the file: executables and core files are Program,
// shared objects are Library, everything else is NoType.
func (f *File) Type() FileType {
	switch f.hdr.Type {
	case core.ETExec, core.ETCore:
		return Program
	case core.ETDyn:
		return Library
	}
	return NoType
}

// Sections returns the section table. The headers are read and decoded
// on the first call and cached for the lifetime of the file.
func (f *File) Sections() ([]*Section, error) {
	if f.sections != nil {
		return f.sections, nil
	}

	n := int(f.hdr.ShNum)
	entSize := int(f.hdr.ShEntSize)
	buf := make([]byte, entSize*n)
	if n > 0 {
		if err := f.readAt(int64(f.hdr.ShOff), buf); err != nil {
			return nil, utils.WrapError("section table read failed", err)
		}
	}

	sections := make([]*Section, n)
	for i := range sections {
		sections[i] = &Section{
			f:   f,
			hdr: core.ParseSectionHeader(buf[i*entSize:], f.hdr.ByteOrder),
		}
	}
	f.sections = sections
	return f.sections, nil
}

// SectionByName returns the first section with the given name, or nil if
// no section carries it.
func (f *File) SectionByName(name string) (*Section, error) {
	sections, err := f.Sections()
	if err != nil {
		return nil, err
	}
	for _, s := range sections {
		n, err := s.Name()
		if err != nil {
			return nil, err
		}
		if n == name {
			return s, nil
		}
	}
	return nil, nil
}

// ProgramHeaders returns the program header table, read and decoded on
// the first call and cached thereafter.
func (f *File) ProgramHeaders() ([]*ProgramHeader, error) {
	if f.phdrs != nil {
		return f.phdrs, nil
	}

	n := int(f.hdr.PhNum)
	entSize := int(f.hdr.PhEntSize)
	buf := make([]byte, entSize*n)
	if n > 0 {
		if err := f.readAt(int64(f.hdr.PhOff), buf); err != nil {
			return nil, utils.WrapError("program header table read failed", err)
		}
	}

	phdrs := make([]*ProgramHeader, n)
	for i := range phdrs {
		phdrs[i] = &ProgramHeader{
			f:   f,
			hdr: core.ParseProgHeader(buf[i*entSize:], f.hdr.ByteOrder),
		}
	}
	f.phdrs = phdrs
	return f.phdrs, nil
}

// StringAt returns the NUL-terminated string at offset inside the section
// name string table (sections[e_shstrndx]).
func (f *File) StringAt(offset uint32) (string, error) {
	if f.strtab == nil {
		sections, err := f.Sections()
		if err != nil {
			return "", err
		}
		if int(f.hdr.ShStrNdx) >= len(sections) {
			return "", fmt.Errorf("%w: string table index %d out of bound",
				utils.ErrMalformedELF, f.hdr.ShStrNdx)
		}
		f.strtab = sections[f.hdr.ShStrNdx]
	}

	content, err := f.strtab.Content()
	if err != nil {
		return "", err
	}
	if int64(offset) >= int64(len(content)) {
		return "", fmt.Errorf("%w: string offset %d outside string table of %d bytes",
			utils.ErrMalformedELF, offset, len(content))
	}
	c := utils.NewCursor(content, f.hdr.ByteOrder)
	if err := c.SetPos(int(offset)); err != nil {
		return "", fmt.Errorf("%w: %v", utils.ErrMalformedELF, err)
	}
	s, err := c.ReadCString()
	if err != nil {
		return "", fmt.Errorf("%w: %v", utils.ErrMalformedELF, err)
	}
	return s, nil
}

// readAt fills buf from absolute offset off; short reads fail with ErrIO.
func (f *File) readAt(off int64, buf []byte) error {
	return utils.ReadAtFull(f.r, off, buf)
}
