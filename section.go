package elf32

import (
	"github.com/scigolib/elf32/internal/core"
	"github.com/scigolib/elf32/internal/utils"
)

// Section is a named contiguous region of an ELF file described by a
// section header. Sections borrow from their owning File and must not
// outlive it.
type Section struct {
	f       *File
	hdr     core.SectionHeader
	content []byte
}

// Header returns the decoded section header record.
func (s *Section) Header() core.SectionHeader {
	return s.hdr
}

// Name resolves the section name through the section name string table.
func (s *Section) Name() (string, error) {
	return s.f.StringAt(s.hdr.Name)
}

// Type returns the sh_type field.
func (s *Section) Type() uint32 {
	return s.hdr.Type
}

// Flags returns the sh_flags field.
func (s *Section) Flags() uint32 {
	return s.hdr.Flags
}

// Addr returns the virtual address the section is mapped at.
func (s *Section) Addr() uint32 {
	return s.hdr.Addr
}

// Size returns the section size in bytes.
func (s *Section) Size() uint32 {
	return s.hdr.Size
}

// Content returns the sh_size bytes of the section, read from the file on
// the first call and cached. SHT_NOBITS sections occupy no file space and
// yield zeroes.
func (s *Section) Content() ([]byte, error) {
	if s.content != nil {
		return s.content, nil
	}

	buf := make([]byte, s.hdr.Size)
	if s.hdr.Type != core.SHTNobits && s.hdr.Size > 0 {
		if err := s.f.readAt(int64(s.hdr.Offset), buf); err != nil {
			return nil, utils.WrapError("section content read failed", err)
		}
	}
	s.content = buf
	return s.content, nil
}
