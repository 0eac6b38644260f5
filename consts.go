package elf32

import "github.com/scigolib/elf32/internal/core"

// Section header types (sh_type).
const (
	SHTNull     = core.SHTNull
	SHTProgbits = core.SHTProgbits
	SHTSymtab   = core.SHTSymtab
	SHTStrtab   = core.SHTStrtab
	SHTRela     = core.SHTRela
	SHTHash     = core.SHTHash
	SHTDynamic  = core.SHTDynamic
	SHTNote     = core.SHTNote
	SHTNobits   = core.SHTNobits
	SHTRel      = core.SHTRel
)

// Section header flags (sh_flags).
const (
	SHFWrite     = core.SHFWrite
	SHFAlloc     = core.SHFAlloc
	SHFExecinstr = core.SHFExecinstr
)

// Program header types (p_type).
const (
	PTNull    = core.PTNull
	PTLoad    = core.PTLoad
	PTDynamic = core.PTDynamic
	PTInterp  = core.PTInterp
	PTNote    = core.PTNote
	PTShlib   = core.PTShlib
	PTPhdr    = core.PTPhdr
)

// Program header flags (p_flags).
const (
	PFX = core.PFX
	PFW = core.PFW
	PFR = core.PFR
)
