package core

import "encoding/binary"

// SectionHeader mirrors Elf32_Shdr.
//
// Format (40 bytes):
//
//	sh_name      (4 bytes, offset into the section name string table)
//	sh_type      (4 bytes)
//	sh_flags     (4 bytes)
//	sh_addr      (4 bytes)
//	sh_offset    (4 bytes)
//	sh_size      (4 bytes)
//	sh_link      (4 bytes)
//	sh_info      (4 bytes)
//	sh_addralign (4 bytes)
//	sh_entsize   (4 bytes)
type SectionHeader struct {
	Name      uint32
	Type      uint32
	Flags     uint32
	Addr      uint32
	Offset    uint32
	Size      uint32
	Link      uint32
	Info      uint32
	AddrAlign uint32
	EntSize   uint32
}

// ParseSectionHeader decodes one section header record. buf must hold at
// least ShdrSize bytes.
func ParseSectionHeader(buf []byte, order binary.ByteOrder) SectionHeader {
	return SectionHeader{
		Name:      order.Uint32(buf[0:4]),
		Type:      order.Uint32(buf[4:8]),
		Flags:     order.Uint32(buf[8:12]),
		Addr:      order.Uint32(buf[12:16]),
		Offset:    order.Uint32(buf[16:20]),
		Size:      order.Uint32(buf[20:24]),
		Link:      order.Uint32(buf[24:28]),
		Info:      order.Uint32(buf[28:32]),
		AddrAlign: order.Uint32(buf[32:36]),
		EntSize:   order.Uint32(buf[36:40]),
	}
}
