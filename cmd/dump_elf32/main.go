// Package main provides a command-line utility to dump ELF32 file
// contents: header fields, sections, program headers, note records and
// the DWARF line table.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/scigolib/elf32"
)

func main() {
	notes := flag.Bool("notes", false, "Dump PT_NOTE records")
	lines := flag.Bool("lines", false, "Dump the DWARF line table")
	find := flag.String("find", "", "Resolve path:line to address ranges (implies a .debug_line section)")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: dump_elf32 [flags] <file>")
		fmt.Println("Flags:")
		flag.PrintDefaults()
		return
	}

	f, err := elf32.Open(args[0])
	if err != nil {
		log.Fatalf("Failed to open file: %v", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close file: %v", err)
		}
	}()

	fmt.Printf("%s: %s, machine 0x%x, entry 0x%08x, big-endian %v\n",
		args[0], f.Type(), f.Machine(), f.Entry(), f.BigEndian())

	sections, err := f.Sections()
	if err != nil {
		log.Fatalf("Failed to read sections: %v", err)
	}
	fmt.Printf("\nSections (%d):\n", len(sections))
	for i, s := range sections {
		name, err := s.Name()
		if err != nil {
			log.Fatalf("Failed to resolve name of section %d: %v", i, err)
		}
		fmt.Printf("  [%2d] %-20s type %-2d addr 0x%08x size 0x%x\n",
			i, name, s.Type(), s.Addr(), s.Size())
	}

	phdrs, err := f.ProgramHeaders()
	if err != nil {
		log.Fatalf("Failed to read program headers: %v", err)
	}
	fmt.Printf("\nProgram headers (%d):\n", len(phdrs))
	for i, p := range phdrs {
		fmt.Printf("  [%2d] type %-10d vaddr 0x%08x filesz 0x%x memsz 0x%x flags %d\n",
			i, p.Type(), p.VAddr(), p.FileSz(), p.MemSz(), p.Flags())
	}
	if *notes {
		dumpNotes(phdrs)
	}
	if *lines || *find != "" {
		dumpLines(f, *find)
	}
}

func dumpNotes(phdrs []*elf32.ProgramHeader) {
	fmt.Println("\nNotes:")
	for i, p := range phdrs {
		if p.Type() != elf32.PTNote {
			continue
		}
		it, err := p.Notes()
		if err != nil {
			log.Fatalf("Failed to iterate notes of segment %d: %v", i, err)
		}
		for it.Next() {
			fmt.Printf("  segment %d: name=%q type=%d desc=% x\n",
				i, it.Name(), it.NoteType(), it.Desc())
		}
		if it.Err() != nil {
			log.Fatalf("Note iteration failed in segment %d: %v", i, it.Err())
		}
	}
}

func dumpLines(f *elf32.File, find string) {
	d, err := elf32.NewDebugLine(f)
	if err != nil {
		log.Fatalf("Failed to decode line table: %v", err)
	}

	if find != "" {
		path, line := splitFind(find)
		sf := d.FileByPath(path)
		if sf == nil {
			log.Fatalf("No such source file: %s", path)
		}
		for _, r := range sf.Find(line) {
			fmt.Printf("%s:%d -> [0x%08x, 0x%08x)\n", path, line, r.Low, r.High)
		}
		return
	}

	fmt.Printf("\nLine table (%d units):\n", len(d.Units()))
	for i, cu := range d.Units() {
		fmt.Printf("  unit %d:\n", i)
		for _, l := range cu.Lines() {
			if l.EndSequence() {
				fmt.Printf("    0x%08x  <end of sequence>\n", l.Addr())
				continue
			}
			fmt.Printf("    0x%08x  %s:%d:%d stmt=%v\n",
				l.Addr(), l.File().Path(), l.Line(), l.Col(), l.IsStmt())
		}
	}
}

func splitFind(s string) (string, int) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			var line int
			if _, err := fmt.Sscanf(s[i+1:], "%d", &line); err != nil {
				log.Fatalf("Invalid -find argument %q: %v", s, err)
			}
			return s[:i], line
		}
	}
	log.Fatalf("Invalid -find argument %q: want path:line", s)
	return "", 0
}
