package fontgen

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

const (
	eotVersion = 0x00020001
	eotMagic   = 0x504C
)

// EncodeEOT wraps a TrueType font in an Embedded OpenType 2.1 header. Header
// fields are taken from the font's OS/2, head and name tables.
func EncodeEOT(ttf []byte) ([]byte, error) {
	tables, err := readTables(ttf)
	if err != nil {
		return nil, err
	}
	byTag := make(map[string][]byte, len(tables))
	for _, t := range tables {
		byTag[t.tag] = t.data
	}
	os2, head := byTag["OS/2"], byTag["head"]
	if len(os2) < 96 || len(head) < 54 {
		return nil, fmt.Errorf("eot: font lacks OS/2 or head table")
	}
	names := readNames(byTag["name"])

	le := binary.LittleEndian
	b := make([]byte, 0, 82+len(ttf)+256)
	b = le.AppendUint32(b, 0) // EOTSize, patched below
	b = le.AppendUint32(b, uint32(len(ttf)))
	b = le.AppendUint32(b, eotVersion)
	b = le.AppendUint32(b, 0)    // Flags
	b = append(b, os2[32:42]...) // FontPANOSE
	b = append(b, 1, 0)          // Charset, Italic

	// Weight, fsType and the magic number.
	b = le.AppendUint32(b, uint32(be.Uint16(os2[4:])))
	b = le.AppendUint16(b, be.Uint16(os2[8:]))
	b = le.AppendUint16(b, eotMagic)

	// UnicodeRange1-4.
	for off := 42; off < 58; off += 4 {
		b = le.AppendUint32(b, be.Uint32(os2[off:]))
	}
	b = le.AppendUint32(b, be.Uint32(os2[78:])) // CodePageRange1
	b = le.AppendUint32(b, be.Uint32(os2[82:])) // CodePageRange2
	b = le.AppendUint32(b, be.Uint32(head[8:])) // CheckSumAdjustment
	b = append(b, make([]byte, 16)...)          // Reserved1-4
	b = le.AppendUint16(b, 0)                   // Padding1

	for i, id := range []uint16{1, 2, 5, 4} {
		if i > 0 {
			b = le.AppendUint16(b, 0) // Padding
		}
		s := utf16LE(names[id])
		b = le.AppendUint16(b, uint16(len(s)))
		b = append(b, s...)
	}
	b = le.AppendUint16(b, 0) // Padding5
	b = le.AppendUint16(b, 0) // RootStringSize

	b = append(b, ttf...)
	le.PutUint32(b, uint32(len(b)))
	return b, nil
}

// readNames returns the Windows Unicode strings of a name table by id.
func readNames(name []byte) map[uint16]string {
	out := make(map[uint16]string)
	if len(name) < 6 {
		return out
	}
	count, strOff := int(be.Uint16(name[2:])), int(be.Uint16(name[4:]))
	for i := 0; i < count; i++ {
		rec := name[6+12*i:]
		if len(rec) < 12 {
			break
		}
		platform, id := be.Uint16(rec), be.Uint16(rec[6:])
		length, off := int(be.Uint16(rec[8:])), int(be.Uint16(rec[10:]))
		if platform != 3 || strOff+off+length > len(name) {
			continue
		}
		raw := name[strOff+off : strOff+off+length]
		u := make([]uint16, len(raw)/2)
		for j := range u {
			u[j] = be.Uint16(raw[2*j:])
		}
		out[id] = string(utf16.Decode(u))
	}
	return out
}

func utf16LE(s string) []byte {
	u := utf16.Encode([]rune(s))
	b := make([]byte, 0, 2*len(u))
	for _, c := range u {
		b = binary.LittleEndian.AppendUint16(b, c)
	}
	return b
}
