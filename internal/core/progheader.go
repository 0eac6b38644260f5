package core

import "encoding/binary"

// ProgHeader mirrors Elf32_Phdr.
//
// Format (32 bytes):
//
//	p_type   (4 bytes)
//	p_offset (4 bytes)
//	p_vaddr  (4 bytes)
//	p_paddr  (4 bytes)
//	p_filesz (4 bytes)
//	p_memsz  (4 bytes)
//	p_flags  (4 bytes)
//	p_align  (4 bytes)
type ProgHeader struct {
	Type   uint32
	Offset uint32
	VAddr  uint32
	PAddr  uint32
	FileSz uint32
	MemSz  uint32
	Flags  uint32
	Align  uint32
}

// ParseProgHeader decodes one program header record. buf must hold at
// least PhdrSize bytes.
func ParseProgHeader(buf []byte, order binary.ByteOrder) ProgHeader {
	return ProgHeader{
		Type:   order.Uint32(buf[0:4]),
		Offset: order.Uint32(buf[4:8]),
		VAddr:  order.Uint32(buf[8:12]),
		PAddr:  order.Uint32(buf[12:16]),
		FileSz: order.Uint32(buf[16:20]),
		MemSz:  order.Uint32(buf[20:24]),
		Flags:  order.Uint32(buf[24:28]),
		Align:  order.Uint32(buf[28:32]),
	}
}
