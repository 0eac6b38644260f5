package core

import (
	"encoding/binary"
	"fmt"

	"github.com/scigolib/elf32/internal/utils"
)

// Header represents the ELF32 file header (Elf32_Ehdr) with every
// multi-byte field already converted to host order.
//
// Format (52 bytes):
//
//	e_ident     (16 bytes: magic, class, data encoding, version, padding)
//	e_type      (2 bytes)
//	e_machine   (2 bytes)
//	e_version   (4 bytes)
//	e_entry     (4 bytes)
//	e_phoff     (4 bytes)
//	e_shoff     (4 bytes)
//	e_flags     (4 bytes)
//	e_ehsize    (2 bytes)
//	e_phentsize (2 bytes)
//	e_phnum     (2 bytes)
//	e_shentsize (2 bytes)
//	e_shnum     (2 bytes)
//	e_shstrndx  (2 bytes)
type Header struct {
	Ident     [EINIdent]byte
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint32
	PhOff     uint32
	ShOff     uint32
	Flags     uint32
	EhSize    uint16
	PhEntSize uint16
	PhNum     uint16
	ShEntSize uint16
	ShNum     uint16
	ShStrNdx  uint16

	// ByteOrder is fixed by e_ident[EI_DATA] for the lifetime of the file.
	ByteOrder binary.ByteOrder
}

// ReadHeader reads and validates the ELF32 header at offset 0. fileSize
// bounds the section and program header table extents.
func ReadHeader(r utils.ReaderAt, fileSize int64) (*Header, error) {
	buf := utils.GetBuffer(EhdrSize)
	defer utils.ReleaseBuffer(buf)

	if err := utils.ReadAtFull(r, 0, buf); err != nil {
		return nil, utils.WrapError("ELF header read failed", err)
	}

	if buf[0] != Magic[0] || buf[1] != Magic[1] || buf[2] != Magic[2] || buf[3] != Magic[3] {
		return nil, utils.ErrNotELF
	}
	if buf[EIClass] != ELFClass32 {
		return nil, fmt.Errorf("%w: class %d", utils.ErrUnsupportedClass, buf[EIClass])
	}
	order, ok := ByteOrderOf(buf[EIData])
	if !ok {
		return nil, fmt.Errorf("%w: unknown data encoding %d", utils.ErrMalformedELF, buf[EIData])
	}

	h := &Header{ByteOrder: order}
	copy(h.Ident[:], buf[:EINIdent])
	h.Type = order.Uint16(buf[16:18])
	h.Machine = order.Uint16(buf[18:20])
	h.Version = order.Uint32(buf[20:24])
	h.Entry = order.Uint32(buf[24:28])
	h.PhOff = order.Uint32(buf[28:32])
	h.ShOff = order.Uint32(buf[32:36])
	h.Flags = order.Uint32(buf[36:40])
	h.EhSize = order.Uint16(buf[40:42])
	h.PhEntSize = order.Uint16(buf[42:44])
	h.PhNum = order.Uint16(buf[44:46])
	h.ShEntSize = order.Uint16(buf[46:48])
	h.ShNum = order.Uint16(buf[48:50])
	h.ShStrNdx = order.Uint16(buf[50:52])

	if err := h.validate(fileSize); err != nil {
		return nil, err
	}
	return h, nil
}

// validate enforces the header invariants: the string table index lies
// inside the section table and both tables lie inside the file.
func (h *Header) validate(fileSize int64) error {
	if h.ShStrNdx >= h.ShNum {
		return fmt.Errorf("%w: string table index %d outside section table of %d entries",
			utils.ErrMalformedELF, h.ShStrNdx, h.ShNum)
	}
	if h.ShNum > 0 && h.ShEntSize < ShdrSize {
		return fmt.Errorf("%w: section entry size %d below %d",
			utils.ErrMalformedELF, h.ShEntSize, ShdrSize)
	}
	if h.PhNum > 0 && h.PhEntSize < PhdrSize {
		return fmt.Errorf("%w: program header entry size %d below %d",
			utils.ErrMalformedELF, h.PhEntSize, PhdrSize)
	}
	if err := checkTableExtent("section table", h.ShOff, h.ShEntSize, h.ShNum, fileSize); err != nil {
		return err
	}
	return checkTableExtent("program header table", h.PhOff, h.PhEntSize, h.PhNum, fileSize)
}

func checkTableExtent(what string, off uint32, entSize, num uint16, fileSize int64) error {
	if num == 0 {
		return nil
	}
	size, err := utils.SafeMultiply(uint64(entSize), uint64(num))
	if err != nil {
		return fmt.Errorf("%w: %s size overflow", utils.ErrMalformedELF, what)
	}
	if uint64(off)+size > uint64(fileSize) {
		return fmt.Errorf("%w: %s [%d, %d) outside file of %d bytes",
			utils.ErrMalformedELF, what, off, uint64(off)+size, fileSize)
	}
	return nil
}
