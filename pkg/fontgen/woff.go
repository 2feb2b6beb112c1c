package fontgen

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zlib"
)

// readTables splits an sfnt into its tables, keeping directory checksums.
func readTables(ttf []byte) ([]sfntTable, error) {
	if len(ttf) < 12 {
		return nil, fmt.Errorf("sfnt too short: %d bytes", len(ttf))
	}
	n := int(be.Uint16(ttf[4:]))
	if len(ttf) < 12+16*n {
		return nil, fmt.Errorf("sfnt directory truncated")
	}
	tables := make([]sfntTable, n)
	for i := 0; i < n; i++ {
		rec := ttf[12+16*i:]
		off, length := int(be.Uint32(rec[8:])), int(be.Uint32(rec[12:]))
		if off < 0 || length < 0 || off+length > len(ttf) {
			return nil, fmt.Errorf("table %q out of bounds", rec[:4])
		}
		tables[i] = sfntTable{
			tag:      string(rec[:4]),
			checksum: be.Uint32(rec[4:]),
			data:     ttf[off : off+length],
		}
	}
	return tables, nil
}

func sfntSize(tables []sfntTable) int {
	size := 12 + 16*len(tables)
	for _, t := range tables {
		size += pad4(len(t.data))
	}
	return size
}

// EncodeWOFF wraps a TrueType font in a WOFF 1.0 container. Each table is
// zlib-compressed when that makes it smaller.
func EncodeWOFF(ttf []byte) ([]byte, error) {
	tables, err := readTables(ttf)
	if err != nil {
		return nil, err
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].tag < tables[j].tag })

	type stored struct {
		sfntTable
		comp []byte
	}
	entries := make([]stored, len(tables))
	for i, t := range tables {
		var buf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(t.data); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		comp := t.data
		if buf.Len() < len(t.data) {
			comp = buf.Bytes()
		}
		entries[i] = stored{t, comp}
	}

	const headerLen = 44
	offset := headerLen + 20*len(entries)
	dir := make([]byte, 0, 20*len(entries))
	for _, e := range entries {
		dir = append(dir, e.tag...)
		dir = be.AppendUint32(dir, uint32(offset))
		dir = be.AppendUint32(dir, uint32(len(e.comp)))
		dir = be.AppendUint32(dir, uint32(len(e.data)))
		dir = be.AppendUint32(dir, e.checksum)
		offset += pad4(len(e.comp))
	}
	total := offset

	out := make([]byte, 0, total)
	out = append(out, "wOFF"...)
	out = be.AppendUint32(out, 0x00010000) // flavor
	out = be.AppendUint32(out, uint32(total))
	out = be.AppendUint16(out, uint16(len(entries)))
	out = be.AppendUint16(out, 0) // reserved
	out = be.AppendUint32(out, uint32(sfntSize(tables)))
	out = be.AppendUint16(out, 1) // majorVersion
	out = be.AppendUint16(out, 0) // minorVersion
	out = append(out, make([]byte, 20)...)
	out = append(out, dir...)
	for _, e := range entries {
		out = append(out, e.comp...)
		out = append(out, make([]byte, pad4(len(e.comp))-len(e.comp))...)
	}
	return out, nil
}

// woff2TagIndex are the known-table indices of the WOFF2 directory.
var woff2TagIndex = map[string]byte{
	"cmap": 0, "head": 1, "hhea": 2, "hmtx": 3, "maxp": 4, "name": 5,
	"OS/2": 6, "post": 7, "cvt ": 8, "fpgm": 9, "glyf": 10, "loca": 11,
	"prep": 12, "CFF ": 13, "VORG": 14, "EBDT": 15, "EBLC": 16, "gasp": 17,
	"hdmx": 18, "kern": 19, "LTSH": 20, "PCLT": 21, "VDMX": 22, "vhea": 23,
	"vmtx": 24, "BASE": 25, "GDEF": 26, "GPOS": 27, "GSUB": 28,
}

// woff2NullTransform marks glyf and loca as stored untransformed.
const woff2NullTransform = 3 << 6

// EncodeWOFF2 wraps a TrueType font in a WOFF 2.0 container. Tables are
// stored untransformed and compressed together as one brotli stream; loca
// follows glyf in the directory. head.flags bit 11 is set as WOFF2 requires.
func EncodeWOFF2(ttf []byte) ([]byte, error) {
	tables, err := readTables(ttf)
	if err != nil {
		return nil, err
	}
	if tables, err = withLosslessFlag(tables); err != nil {
		return nil, err
	}
	sort.Slice(tables, func(i, j int) bool { return woff2Order(tables[i].tag) < woff2Order(tables[j].tag) })

	var dir []byte
	var stream bytes.Buffer
	bw := brotli.NewWriterLevel(&stream, brotli.BestCompression)
	for _, t := range tables {
		flags, known := woff2TagIndex[t.tag]
		if !known {
			flags = 63
		}
		if t.tag == "glyf" || t.tag == "loca" {
			flags |= woff2NullTransform
		}
		dir = append(dir, flags)
		if !known {
			dir = append(dir, t.tag...)
		}
		dir = appendUintBase128(dir, uint32(len(t.data)))
		if _, err := bw.Write(t.data); err != nil {
			return nil, err
		}
	}
	if err := bw.Close(); err != nil {
		return nil, err
	}

	const headerLen = 48
	total := pad4(headerLen + len(dir) + stream.Len())

	out := make([]byte, 0, total)
	out = append(out, "wOF2"...)
	out = be.AppendUint32(out, 0x00010000) // flavor
	out = be.AppendUint32(out, uint32(total))
	out = be.AppendUint16(out, uint16(len(tables)))
	out = be.AppendUint16(out, 0) // reserved
	out = be.AppendUint32(out, uint32(sfntSize(tables)))
	out = be.AppendUint32(out, uint32(stream.Len()))
	out = be.AppendUint16(out, 1) // majorVersion
	out = be.AppendUint16(out, 0) // minorVersion
	out = append(out, make([]byte, 20)...)
	out = append(out, dir...)
	out = append(out, stream.Bytes()...)
	out = append(out, make([]byte, total-len(out))...)
	return out, nil
}

// headFlagLossless is head.flags bit 11: font data was put through a
// lossless transform or compression.
const headFlagLossless = 1 << 11

// withLosslessFlag returns copies of tables with headFlagLossless set and
// the table checksums and head.checkSumAdjustment recomputed.
func withLosslessFlag(tables []sfntTable) ([]sfntTable, error) {
	out := make([]sfntTable, len(tables))
	found := false
	for i, t := range tables {
		data := bytes.Clone(t.data)
		if t.tag == "head" {
			if len(data) < 18 {
				return nil, fmt.Errorf("head table too short: %d bytes", len(data))
			}
			be.PutUint16(data[16:], be.Uint16(data[16:])|headFlagLossless)
			found = true
		}
		out[i] = sfntTable{tag: t.tag, data: data}
	}
	if !found {
		return nil, fmt.Errorf("missing head table")
	}
	return readTables(assembleSFNT(out))
}

// woff2Order sorts tables by tag but places loca directly after glyf.
func woff2Order(tag string) string {
	if tag == "loca" {
		return "glyf\x00"
	}
	return tag
}

// appendUintBase128 appends v in the WOFF2 variable-length encoding.
func appendUintBase128(b []byte, v uint32) []byte {
	var tmp [5]byte
	i := len(tmp) - 1
	tmp[i] = byte(v & 0x7F)
	v >>= 7
	for v > 0 {
		i--
		tmp[i] = byte(v&0x7F) | 0x80
		v >>= 7
	}
	return append(b, tmp[i:]...)
}
