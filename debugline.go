package elf32

import (
	"encoding/binary"
	"errors"
	"fmt"
	"path"

	"github.com/scigolib/elf32/internal/utils"
)

// SectionDebugLine is the name of the DWARF line-number section.
const SectionDebugLine = ".debug_line"

// Line flag bits.
const (
	LineIsStmt uint32 = 1 << iota
	LineBasicBlock
	LinePrologueEnd
	LineEpilogueBegin
)

// AddressRange is a half-open [Low, High) virtual address interval.
type AddressRange struct {
	Low  uint32
	High uint32
}

// SourceFile is a source file referenced by one or more line programs.
// Identity is the full resolved path: file entries from different
// compilation units that resolve to the same path share one SourceFile.
type SourceFile struct {
	path  string
	mtime uint64
	size  uint64
	units []*CompilationUnit
}

// Path returns the resolved path (include directory joined with the
// declared name).
func (sf *SourceFile) Path() string {
	return sf.path
}

// Mtime returns the modification timestamp declared in the file table,
// or 0 if unknown.
func (sf *SourceFile) Mtime() uint64 {
	return sf.mtime
}

// Size returns the file size declared in the file table, or 0 if unknown.
func (sf *SourceFile) Size() uint64 {
	return sf.size
}

// Units returns the compilation units whose line programs reference this
// file.
func (sf *SourceFile) Units() []*CompilationUnit {
	return sf.units
}

// Line is one row of a line table: the source position and flags
// attributed to the machine code starting at Addr.
type Line struct {
	addr    uint32
	file    *SourceFile
	line    int
	col     int
	flags   uint32
	isa     uint32
	disc    uint32
	opIndex uint32
	endSeq  bool
}

// Addr returns the first address the row applies to.
func (l Line) Addr() uint32 { return l.addr }

// File returns the source file of the row.
func (l Line) File() *SourceFile { return l.file }

// Line returns the 1-based source line, or 0 if none applies.
func (l Line) Line() int { return l.line }

// Col returns the 1-based source column, or 0 for the left edge.
func (l Line) Col() int { return l.col }

// Flags returns the LineIsStmt/LineBasicBlock/LinePrologueEnd/
// LineEpilogueBegin bitset.
func (l Line) Flags() uint32 { return l.flags }

// IsStmt reports whether the row is a recommended breakpoint location.
func (l Line) IsStmt() bool { return l.flags&LineIsStmt != 0 }

// ISA returns the instruction set architecture tag of the row.
func (l Line) ISA() uint32 { return l.isa }

// Discriminator returns the block discriminator of the row.
func (l Line) Discriminator() uint32 { return l.disc }

// OpIndex returns the VLIW operation index of the row.
func (l Line) OpIndex() uint32 { return l.opIndex }

// EndSequence reports whether the row terminates a sequence; such a row
// carries only a meaningful address, the first past the sequence.
func (l Line) EndSequence() bool { return l.endSeq }

// CompilationUnit owns the file table and the line rows of one line
// program, in emission order. Within a sequence, addresses are
// monotonically non-decreasing.
type CompilationUnit struct {
	files []*SourceFile
	lines []Line
}

// Files returns the unit's file table in declaration order (index 0 is
// file number 1 of the line program).
func (cu *CompilationUnit) Files() []*SourceFile {
	return cu.files
}

// Lines returns the unit's rows in emission order, end-of-sequence
// markers included.
func (cu *CompilationUnit) Lines() []Line {
	return cu.lines
}

// DebugLine decodes every line program of an ELF file's .debug_line
// section. It exclusively owns the SourceFile and CompilationUnit records
// it produces and must outlive any Line it exposed.
type DebugLine struct {
	files    map[string]*SourceFile
	units    []*CompilationUnit
	addrSize int
	order    binary.ByteOrder
}

// NewDebugLine decodes the .debug_line section of f.
func NewDebugLine(f *File) (*DebugLine, error) {
	sec, err := f.SectionByName(SectionDebugLine)
	if err != nil {
		return nil, err
	}
	if sec == nil {
		return nil, fmt.Errorf("%w: no %s section", utils.ErrDebugLine, SectionDebugLine)
	}
	content, err := sec.Content()
	if err != nil {
		return nil, err
	}

	d := &DebugLine{
		files:    make(map[string]*SourceFile),
		addrSize: 4, // ELF32
		order:    f.ByteOrder(),
	}
	c := utils.NewCursor(content, d.order)
	for !c.Ended() {
		if err := d.readUnit(c); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Files returns the path-indexed map of every source file mentioned by
// any unit.
func (d *DebugLine) Files() map[string]*SourceFile {
	return d.files
}

// FileByPath returns the source file with the given resolved path, or nil.
func (d *DebugLine) FileByPath(p string) *SourceFile {
	return d.files[p]
}

// Units returns every decoded compilation unit in section order.
func (d *DebugLine) Units() []*CompilationUnit {
	return d.units
}

// Find appends to the returned slice one address range per run of code
// attributed to the given source line of sf: for each matching row the
// range extends to the next row of the same sequence.
func (sf *SourceFile) Find(line int) []AddressRange {
	var ranges []AddressRange
	for _, cu := range sf.units {
		lines := cu.lines
		for i := range lines {
			cur := &lines[i]
			if cur.endSeq || cur.file != sf || cur.line != line {
				continue
			}
			// The row following cur belongs to the same sequence: a
			// sequence only ends at an end_sequence row, which is itself
			// part of the table.
			if i+1 < len(lines) {
				ranges = append(ranges, AddressRange{Low: cur.addr, High: lines[i+1].addr})
			}
		}
	}
	return ranges
}

// dlErr converts short reads and other low-level failures into the
// debug-line taxonomy kind, leaving already-tagged errors untouched.
func dlErr(err error) error {
	if err == nil || errors.Is(err, utils.ErrDebugLine) {
		return err
	}
	return fmt.Errorf("%w: %v", utils.ErrDebugLine, err)
}

// lineHeader carries the constants of one line-program unit.
type lineHeader struct {
	version       uint16
	minInstLen    uint32
	maxOps        uint32
	defaultIsStmt bool
	lineBase      int32
	lineRange     uint32
	opcodeBase    uint32
	stdLengths    []byte
	dirs          []string
}

// readUnit decodes one complete line-program unit: framing, header, file
// tables and the state-machine program.
func (d *DebugLine) readUnit(c *utils.Cursor) error {
	// Unit length, with the 64-bit DWARF escape.
	unitLen, err := c.ReadU32()
	if err != nil {
		return dlErr(err)
	}
	offsetSize := 4
	length := uint64(unitLen)
	if unitLen == 0xFFFFFFFF {
		length, err = c.ReadU64()
		if err != nil {
			return dlErr(err)
		}
		offsetSize = 8
	}
	if length == 0 {
		return fmt.Errorf("%w: empty unit", utils.ErrDebugLine)
	}
	if length > uint64(c.Len()-c.Pos()) {
		return fmt.Errorf("%w: unit length %d exceeds remaining section of %d bytes",
			utils.ErrDebugLine, length, c.Len()-c.Pos())
	}
	end := c.Pos() + int(length)

	h, cu, err := d.readHeader(c, offsetSize, end)
	if err != nil {
		return err
	}

	if err := d.runProgram(c, h, cu, end); err != nil {
		return err
	}

	d.units = append(d.units, cu)
	for i := range cu.lines {
		units := cu.lines[i].file.units
		if len(units) == 0 || units[len(units)-1] != cu {
			cu.lines[i].file.units = append(units, cu)
		}
	}

	// Re-sync in case the operands of the last opcode ran past the
	// declared unit end: the cursor is moved back to that end.
	return dlErr(c.SetPos(end))
}

// readHeader decodes the unit header: version, header length, state
// machine constants, include directories and the file table.
func (d *DebugLine) readHeader(c *utils.Cursor, offsetSize, end int) (*lineHeader, *CompilationUnit, error) {
	version, err := c.ReadU16()
	if err != nil {
		return nil, nil, dlErr(err)
	}
	if version < 2 || version > 4 {
		return nil, nil, fmt.Errorf("%w: unsupported line table version %d",
			utils.ErrDebugLine, version)
	}

	var headerLen uint64
	if offsetSize == 8 {
		headerLen, err = c.ReadU64()
	} else {
		var v uint32
		v, err = c.ReadU32()
		headerLen = uint64(v)
	}
	if err != nil {
		return nil, nil, dlErr(err)
	}
	if headerLen > uint64(end-c.Pos()) {
		return nil, nil, fmt.Errorf("%w: header length %d beyond unit end",
			utils.ErrDebugLine, headerLen)
	}
	program := c.Pos() + int(headerLen)

	h := &lineHeader{version: version, maxOps: 1, dirs: []string{"."}}

	minInstLen, err := c.ReadU8()
	if err != nil {
		return nil, nil, dlErr(err)
	}
	h.minInstLen = uint32(minInstLen)

	if version >= 4 {
		maxOps, err := c.ReadU8()
		if err != nil {
			return nil, nil, dlErr(err)
		}
		if maxOps == 0 {
			return nil, nil, fmt.Errorf("%w: maximum operations per instruction is zero",
				utils.ErrDebugLine)
		}
		h.maxOps = uint32(maxOps)
	}

	defaultIsStmt, err := c.ReadU8()
	if err != nil {
		return nil, nil, dlErr(err)
	}
	h.defaultIsStmt = defaultIsStmt != 0

	lineBase, err := c.ReadU8()
	if err != nil {
		return nil, nil, dlErr(err)
	}
	h.lineBase = int32(int8(lineBase))

	lineRange, err := c.ReadU8()
	if err != nil {
		return nil, nil, dlErr(err)
	}
	h.lineRange = uint32(lineRange)

	opcodeBase, err := c.ReadU8()
	if err != nil {
		return nil, nil, dlErr(err)
	}
	if opcodeBase == 0 {
		return nil, nil, fmt.Errorf("%w: opcode base is zero", utils.ErrDebugLine)
	}
	h.opcodeBase = uint32(opcodeBase)

	h.stdLengths, err = c.ReadBytes(int(opcodeBase) - 1)
	if err != nil {
		return nil, nil, dlErr(err)
	}

	// Include directories, terminated by an empty string. Index 0 is the
	// compilation directory, defaulting to ".".
	for {
		dir, err := c.ReadCString()
		if err != nil {
			return nil, nil, dlErr(err)
		}
		if dir == "" {
			break
		}
		h.dirs = append(h.dirs, dir)
	}

	// File table, terminated by an empty name.
	cu := &CompilationUnit{}
	for {
		done, err := d.readFileEntry(c, h, cu)
		if err != nil {
			return nil, nil, err
		}
		if done {
			break
		}
	}

	if c.Pos() > program {
		return nil, nil, fmt.Errorf("%w: header overruns its declared length",
			utils.ErrDebugLine)
	}
	if err := c.SetPos(program); err != nil {
		return nil, nil, dlErr(err)
	}
	return h, cu, nil
}

// readFileEntry reads one file table entry and appends the resolved,
// deduplicated SourceFile to the unit's file table. It reports true at
// the empty-name terminator.
func (d *DebugLine) readFileEntry(c *utils.Cursor, h *lineHeader, cu *CompilationUnit) (bool, error) {
	name, err := c.ReadCString()
	if err != nil {
		return false, dlErr(err)
	}
	if name == "" {
		return true, nil
	}
	dirIndex, err := c.ReadULEB128()
	if err != nil {
		return false, dlErr(err)
	}
	mtime, err := c.ReadULEB128()
	if err != nil {
		return false, dlErr(err)
	}
	size, err := c.ReadULEB128()
	if err != nil {
		return false, dlErr(err)
	}

	if dirIndex >= uint64(len(h.dirs)) {
		return false, fmt.Errorf("%w: directory index %d outside table of %d entries",
			utils.ErrDebugLine, dirIndex, len(h.dirs))
	}
	full := name
	if !path.IsAbs(name) {
		full = path.Join(h.dirs[dirIndex], name)
	}

	sf := d.files[full]
	if sf == nil {
		sf = &SourceFile{path: full, mtime: mtime, size: size}
		d.files[full] = sf
	}
	cu.files = append(cu.files, sf)
	return false, nil
}
