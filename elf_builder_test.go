package elf32

import (
	"encoding/binary"

	"github.com/scigolib/elf32/internal/core"
)

// elfBuilder assembles minimal synthetic ELF32 images for tests. The
// produced image carries a NULL section at index 0 and a trailing
// .shstrtab, like real linker output.
type elfBuilder struct {
	order    binary.ByteOrder
	dataByte byte
	etype    uint16
	entry    uint32
	sections []testSection
	phdrs    []testPhdr
}

type testSection struct {
	name    string
	typ     uint32
	flags   uint32
	addr    uint32
	content []byte
}

type testPhdr struct {
	typ     uint32
	vaddr   uint32
	memsz   uint32
	flags   uint32
	content []byte // the p_filesz bytes
}

func newELFBuilder(order binary.ByteOrder) *elfBuilder {
	dataByte := byte(core.ELFData2LSB)
	if order == binary.BigEndian {
		dataByte = core.ELFData2MSB
	}
	return &elfBuilder{order: order, dataByte: dataByte, etype: core.ETExec}
}

func (b *elfBuilder) addSection(name string, typ, flags, addr uint32, content []byte) *elfBuilder {
	b.sections = append(b.sections, testSection{name: name, typ: typ, flags: flags, addr: addr, content: content})
	return b
}

func (b *elfBuilder) addPhdr(typ, vaddr, memsz, flags uint32, content []byte) *elfBuilder {
	b.phdrs = append(b.phdrs, testPhdr{typ: typ, vaddr: vaddr, memsz: memsz, flags: flags, content: content})
	return b
}

func (b *elfBuilder) build() []byte {
	o := b.order

	secs := make([]testSection, 0, len(b.sections)+2)
	secs = append(secs, testSection{typ: core.SHTNull})
	secs = append(secs, b.sections...)
	secs = append(secs, testSection{name: ".shstrtab", typ: core.SHTStrtab})
	shstrndx := len(secs) - 1

	// Section name string table: a leading NUL, then each name.
	strtab := []byte{0}
	nameOff := make([]uint32, len(secs))
	for i, s := range secs {
		if s.name == "" {
			continue
		}
		nameOff[i] = uint32(len(strtab))
		strtab = append(strtab, s.name...)
		strtab = append(strtab, 0)
	}
	secs[shstrndx].content = strtab

	// Layout: ehdr, segment bytes, section bytes, section table, phdr table.
	cur := uint32(core.EhdrSize)
	phOff := make([]uint32, len(b.phdrs))
	for i, p := range b.phdrs {
		phOff[i] = cur
		cur += uint32(len(p.content))
	}
	secOff := make([]uint32, len(secs))
	for i, s := range secs {
		if s.typ == core.SHTNobits || len(s.content) == 0 {
			continue
		}
		secOff[i] = cur
		cur += uint32(len(s.content))
	}
	shoff := cur
	cur += uint32(core.ShdrSize * len(secs))
	phoff := uint32(0)
	if len(b.phdrs) > 0 {
		phoff = cur
	}

	img := make([]byte, core.EhdrSize)
	copy(img, core.Magic[:])
	img[core.EIClass] = core.ELFClass32
	img[core.EIData] = b.dataByte
	img[core.EIVersion] = 1
	o.PutUint16(img[16:], b.etype)
	o.PutUint16(img[18:], 0x28) // ARM
	o.PutUint32(img[20:], 1)
	o.PutUint32(img[24:], b.entry)
	o.PutUint32(img[28:], phoff)
	o.PutUint32(img[32:], shoff)
	o.PutUint16(img[40:], core.EhdrSize)
	o.PutUint16(img[42:], core.PhdrSize)
	o.PutUint16(img[44:], uint16(len(b.phdrs)))
	o.PutUint16(img[46:], core.ShdrSize)
	o.PutUint16(img[48:], uint16(len(secs)))
	o.PutUint16(img[50:], uint16(shstrndx))

	for _, p := range b.phdrs {
		img = append(img, p.content...)
	}
	for _, s := range secs {
		if s.typ == core.SHTNobits || len(s.content) == 0 {
			continue
		}
		img = append(img, s.content...)
	}

	for i, s := range secs {
		rec := make([]byte, core.ShdrSize)
		o.PutUint32(rec[0:], nameOff[i])
		o.PutUint32(rec[4:], s.typ)
		o.PutUint32(rec[8:], s.flags)
		o.PutUint32(rec[12:], s.addr)
		o.PutUint32(rec[16:], secOff[i])
		o.PutUint32(rec[20:], uint32(len(s.content)))
		img = append(img, rec...)
	}
	for i, p := range b.phdrs {
		rec := make([]byte, core.PhdrSize)
		o.PutUint32(rec[0:], p.typ)
		o.PutUint32(rec[4:], phOff[i])
		o.PutUint32(rec[8:], p.vaddr)
		o.PutUint32(rec[12:], p.vaddr)
		o.PutUint32(rec[16:], uint32(len(p.content)))
		o.PutUint32(rec[20:], p.memsz)
		o.PutUint32(rec[24:], p.flags)
		o.PutUint32(rec[28:], 4)
		img = append(img, rec...)
	}
	return img
}
