package elf32

import (
	"fmt"

	"github.com/scigolib/elf32/internal/utils"
)

// Standard opcodes (DWARF v4 §6.2.5.2).
const (
	lnsCopy             = 1
	lnsAdvancePC        = 2
	lnsAdvanceLine      = 3
	lnsSetFile          = 4
	lnsSetColumn        = 5
	lnsNegateStmt       = 6
	lnsSetBasicBlock    = 7
	lnsConstAddPC       = 8
	lnsFixedAdvancePC   = 9
	lnsSetPrologueEnd   = 10
	lnsSetEpilogueBegin = 11
	lnsSetISA           = 12
)

// Extended opcodes (DWARF v4 §6.2.5.3).
const (
	lneEndSequence      = 1
	lneSetAddress       = 2
	lneDefineFile       = 3
	lneSetDiscriminator = 4
)

// lineState is the transient state machine of one line-program unit.
type lineState struct {
	address uint32
	opIndex uint32
	file    uint32
	line    int32
	column  uint32
	isa     uint32
	disc    uint32
	flags   uint32
	endSeq  bool
}

// initialState returns the registers at the start of every sequence:
// address 0, file 1, line 1, is_stmt from the header default.
func (h *lineHeader) initialState() lineState {
	st := lineState{file: 1, line: 1}
	if h.defaultIsStmt {
		st.flags = LineIsStmt
	}
	return st
}

// advancePC applies the operation advance rule to (address, op_index).
// With one operation per instruction this reduces to
// address += minimum_instruction_length * adv.
func (h *lineHeader) advancePC(st *lineState, adv uint32) {
	total := st.opIndex + adv
	st.address += h.minInstLen * (total / h.maxOps)
	st.opIndex = total % h.maxOps
}

// runProgram executes the line-program bytecode of one unit, appending
// emitted rows to cu until the unit body ends at section position end.
func (d *DebugLine) runProgram(c *utils.Cursor, h *lineHeader, cu *CompilationUnit, end int) error {
	st := h.initialState()
	for c.Pos() < end {
		op, err := c.ReadU8()
		if err != nil {
			return dlErr(err)
		}
		switch {
		case op == 0:
			if err := d.extendedOpcode(c, h, cu, &st, end); err != nil {
				return err
			}
		case uint32(op) < h.opcodeBase:
			if err := d.standardOpcode(c, h, cu, &st, op); err != nil {
				return err
			}
		default:
			// Special opcode: one byte advances address, op_index and
			// line at once, then emits a row.
			if h.lineRange == 0 {
				return fmt.Errorf("%w: line range is zero", utils.ErrDebugLine)
			}
			adj := uint32(op) - h.opcodeBase
			h.advancePC(&st, adj/h.lineRange)
			st.line += h.lineBase + int32(adj%h.lineRange)
			if err := emitRow(cu, &st); err != nil {
				return err
			}
			st.flags &^= LineBasicBlock | LinePrologueEnd | LineEpilogueBegin
			st.disc = 0
		}
	}
	return nil
}

func (d *DebugLine) standardOpcode(c *utils.Cursor, h *lineHeader, cu *CompilationUnit, st *lineState, op uint8) error {
	switch op {
	case lnsCopy:
		if err := emitRow(cu, st); err != nil {
			return err
		}
		st.flags &^= LineBasicBlock | LinePrologueEnd | LineEpilogueBegin
		st.disc = 0
	case lnsAdvancePC:
		adv, err := c.ReadULEB128()
		if err != nil {
			return dlErr(err)
		}
		h.advancePC(st, uint32(adv))
	case lnsAdvanceLine:
		adv, err := c.ReadSLEB128()
		if err != nil {
			return dlErr(err)
		}
		st.line += int32(adv)
	case lnsSetFile:
		file, err := c.ReadULEB128()
		if err != nil {
			return dlErr(err)
		}
		st.file = uint32(file)
	case lnsSetColumn:
		col, err := c.ReadULEB128()
		if err != nil {
			return dlErr(err)
		}
		st.column = uint32(col)
	case lnsNegateStmt:
		st.flags ^= LineIsStmt
	case lnsSetBasicBlock:
		st.flags |= LineBasicBlock
	case lnsConstAddPC:
		// Advance by the address increment of special opcode 255.
		if h.lineRange == 0 {
			return fmt.Errorf("%w: line range is zero", utils.ErrDebugLine)
		}
		h.advancePC(st, (255-h.opcodeBase)/h.lineRange)
	case lnsFixedAdvancePC:
		adv, err := c.ReadU16()
		if err != nil {
			return dlErr(err)
		}
		st.address += uint32(adv)
		st.opIndex = 0
	case lnsSetPrologueEnd:
		st.flags |= LinePrologueEnd
	case lnsSetEpilogueBegin:
		st.flags |= LineEpilogueBegin
	case lnsSetISA:
		isa, err := c.ReadULEB128()
		if err != nil {
			return dlErr(err)
		}
		st.isa = uint32(isa)
	default:
		// Unknown standard opcode: skip its operands as declared by the
		// header's operand count table.
		for i := 0; i < int(h.stdLengths[op-1]); i++ {
			if _, err := c.ReadULEB128(); err != nil {
				return dlErr(err)
			}
		}
	}
	return nil
}

func (d *DebugLine) extendedOpcode(c *utils.Cursor, h *lineHeader, cu *CompilationUnit, st *lineState, end int) error {
	instLen, err := c.ReadULEB128()
	if err != nil {
		return dlErr(err)
	}
	if instLen == 0 || instLen > uint64(end-c.Pos()) {
		return fmt.Errorf("%w: extended opcode length %d outside unit",
			utils.ErrDebugLine, instLen)
	}
	instEnd := c.Pos() + int(instLen)

	sub, err := c.ReadU8()
	if err != nil {
		return dlErr(err)
	}
	switch sub {
	case lneEndSequence:
		st.endSeq = true
		if err := emitRow(cu, st); err != nil {
			return err
		}
		*st = h.initialState()
	case lneSetAddress:
		buf, err := c.ReadBytes(d.addrSize)
		if err != nil {
			return dlErr(err)
		}
		if d.addrSize == 8 {
			st.address = uint32(d.order.Uint64(buf))
		} else {
			st.address = d.order.Uint32(buf)
		}
		st.opIndex = 0
	case lneDefineFile:
		if _, err := d.readFileEntry(c, h, cu); err != nil {
			return err
		}
	case lneSetDiscriminator:
		disc, err := c.ReadULEB128()
		if err != nil {
			return dlErr(err)
		}
		st.disc = uint32(disc)
	}
	// Unknown sub-opcodes are skipped; known ones are re-synced to the
	// declared instruction length.
	return dlErr(c.SetPos(instEnd))
}

// emitRow copies the machine state into an immutable Line appended to the
// unit's table, resolving the 1-based file register against the file table.
func emitRow(cu *CompilationUnit, st *lineState) error {
	if st.file == 0 || int(st.file) > len(cu.files) {
		return fmt.Errorf("%w: file number %d outside table of %d entries",
			utils.ErrDebugLine, st.file, len(cu.files))
	}
	cu.lines = append(cu.lines, Line{
		addr:    st.address,
		file:    cu.files[st.file-1],
		line:    int(st.line),
		col:     int(st.column),
		flags:   st.flags,
		isa:     st.isa,
		disc:    st.disc,
		opIndex: st.opIndex,
		endSeq:  st.endSeq,
	})
	return nil
}
