package elf32

import "github.com/scigolib/elf32/internal/utils"

// The flat error taxonomy of the library. Every error returned by the
// public API matches exactly one of these sentinels under errors.Is;
// wrapped messages add human-readable context.
var (
	// ErrIO reports that the underlying byte source refused a read.
	ErrIO = utils.ErrIO

	// ErrNotELF reports a magic number mismatch.
	ErrNotELF = utils.ErrNotELF

	// ErrUnsupportedClass reports a file that is not 32-bit ELF.
	ErrUnsupportedClass = utils.ErrUnsupportedClass

	// ErrMalformedELF reports a header or table bounds violation, or a
	// string table lookup out of range.
	ErrMalformedELF = utils.ErrMalformedELF

	// ErrMalformedNote reports a short or inconsistent PT_NOTE entry.
	ErrMalformedNote = utils.ErrMalformedNote

	// ErrDebugLine reports an inconsistency in DWARF .debug_line decoding.
	ErrDebugLine = utils.ErrDebugLine
)
