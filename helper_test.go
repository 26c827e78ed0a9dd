package nitf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

///////////////////////////
//                       //
// Byte builder          //
//                       //
///////////////////////////

type builder struct {
	bytes.Buffer
	marks map[string]int
}

func newBuilder() *builder {
	return &builder{marks: map[string]int{}}
}

// mark records the current length under name.
func (b *builder) mark(name string) *builder {
	b.marks[name] = b.Len()
	return b
}

// str writes s left-justified and space-padded to n bytes.
func (b *builder) str(s string, n int) *builder {
	if len(s) > n {
		s = s[:n]
	}
	b.WriteString(s + strings.Repeat(" ", n-len(s)))
	return b
}

// blank writes n spaces.
func (b *builder) blank(n int) *builder {
	return b.str("", n)
}

// num writes v zero-padded to n digits.
func (b *builder) num(v int64, n int) *builder {
	b.WriteString(fmt.Sprintf("%0*d", n, v))
	return b
}

func (b *builder) u8(v uint8) *builder {
	b.WriteByte(v)
	return b
}

func (b *builder) u16(v uint16) *builder {
	var p [2]byte
	binary.BigEndian.PutUint16(p[:], v)
	b.Write(p[:])
	return b
}

func (b *builder) u32(v uint32) *builder {
	var p [4]byte
	binary.BigEndian.PutUint32(p[:], v)
	b.Write(p[:])
	return b
}

func (b *builder) raw(p []byte) *builder {
	b.Write(p)
	return b
}

// tag returns a complete tag: name, length and payload.
func tag(name string, payload []byte) []byte {
	b := newBuilder().str(name, tagNameLen).num(int64(len(payload)), tagLengthLen).raw(payload)
	return b.Bytes()
}

// window returns a tag window body: the overflow index followed by tags.
func window(overflow int, tags ...[]byte) []byte {
	b := newBuilder().num(int64(overflow), overflowLen)
	for _, t := range tags {
		b.raw(t)
	}
	return b.Bytes()
}

// writeWindow writes a 5-byte length then the window body, if any.
func (b *builder) writeWindow(body []byte) *builder {
	b.num(int64(len(body)), 5)
	return b.raw(body)
}

///////////////////////////
//                       //
// Image subheader       //
//                       //
///////////////////////////

type bandFixture struct {
	irep  string
	luts  int
	nelut int
}

type imageFixture struct {
	version  Version
	iid      string
	idatim   string
	dwng     string
	encryp   string
	rows     string
	cols     string
	icords   string
	igeolo   string
	comments int
	ic       string
	comrat   string
	bands    []bandFixture
	imode    byte
	nbpr     int
	nbpc     int
	nppbh    int
	nppbv    int
	iloc     string
	udid     []byte // Window body, nil for UDIDL=0.
	ixsh     []byte // Window body, nil for IXSHDL=0.
	tail     []byte // Bytes following the subheader.
}

func defaultImage() imageFixture {
	return imageFixture{
		version: V20,
		iid:     "IMAGE1",
		idatim:  "01120000ZJAN99",
		dwng:    "",
		encryp:  "0",
		rows:    "00000512",
		cols:    "00000256",
		icords:  "N",
		ic:      "NC",
		bands:   []bandFixture{{irep: "M"}},
		imode:   'B',
		nbpr:    1,
		nbpc:    1,
		nppbh:   256,
		nppbv:   512,
		iloc:    "0001000020",
	}
}

func (f imageFixture) build() *builder {
	b := newBuilder()
	b.str("IM", 2).
		str(f.iid, 10).
		str(f.idatim, 14).
		blank(17).
		str("TEST IMAGE", 80)
	if f.version == V21 {
		b.str("U", 1).blank(166)
	} else {
		b.str("U", 1).blank(40).blank(40).blank(40).blank(20).blank(20).mark("ISDWNG").str(f.dwng, 6)
		if f.dwng == downgradeSentinel {
			b.str("ON EVENT", downgradeEventLen)
		}
	}
	b.mark("ENCRYP").
		str(f.encryp, 1).
		str("SENSOR", 42).
		str(f.rows, 8).
		str(f.cols, 8).
		str("INT", 3).
		str("MONO", 8).
		str("VIS", 8).
		num(8, 2).
		str("R", 1).
		str(f.icords, 1)
	if (f.version == V21 && f.icords != " ") || (f.version != V21 && f.icords != "N") {
		b.str(f.igeolo, 60)
	}
	b.num(int64(f.comments), 1)
	for i := 0; i < f.comments; i++ {
		b.str(fmt.Sprintf("comment %d", i), commentLen)
	}
	b.mark("IC").str(f.ic, 2)
	if f.ic != cNone && f.ic != cNoneMasked {
		b.str(f.comrat, 4)
	}
	if len(f.bands) > 9 {
		b.num(0, 1).num(int64(len(f.bands)), 5)
	} else {
		b.num(int64(len(f.bands)), 1)
	}
	for _, band := range f.bands {
		b.str(band.irep, 2).blank(6).str("N", 1).blank(3).num(int64(band.luts), 1)
		if band.luts > 0 {
			b.num(int64(band.nelut), 5)
			for i := 0; i < band.luts; i++ {
				b.raw(bytes.Repeat([]byte{byte(i + 1)}, band.nelut))
			}
		}
	}
	b.num(0, 1).
		u8(f.imode).
		num(int64(f.nbpr), 4).
		num(int64(f.nbpc), 4).
		num(int64(f.nppbh), 4).
		num(int64(f.nppbv), 4).
		num(8, 2).
		num(1, 3).
		num(0, 3).
		str(f.iloc, 10).
		str("1.0", 4).
		mark("UDIDL").
		writeWindow(f.udid).
		mark("IXSHDL").
		writeWindow(f.ixsh).
		mark("end")
	return b.raw(f.tail)
}

func (f imageFixture) bytes() []byte {
	return f.build().Bytes()
}

///////////////////////////
//                       //
// File header           //
//                       //
///////////////////////////

type segFixture struct {
	subheader int64
	data      int64
}

type fileFixture struct {
	version Version
	dwng    string
	fl      string // Empty means the derived length.
	images  []segFixture
	symbols []segFixture
	texts   []segFixture
	des     []segFixture
	udhd    []byte
	xhd     []byte
}

func defaultFile() fileFixture {
	return fileFixture{version: V20}
}

func (f fileFixture) build() *builder {
	b := newBuilder()
	if f.version == V21 {
		b.str("NITF02.10", 9)
	} else {
		b.str("NITF02.00", 9)
	}
	b.num(3, 2).
		str("BF01", 4).
		str("STATION", 10).
		str("19990101120000", 14).
		str("TEST FILE", 80)
	if f.version == V21 {
		b.str("U", 1).blank(166)
	} else {
		b.str("U", 1).blank(40).blank(40).blank(40).blank(20).blank(20).str(f.dwng, 6)
		if f.dwng == downgradeSentinel {
			b.str("ON EVENT", downgradeEventLen)
		}
	}
	b.num(1, 5).num(1, 5).str("0", 1)
	if f.version == V21 {
		b.raw([]byte{0x10, 0x20, 0x30}).str("ORIGINATOR", 24)
	} else {
		b.str("ORIGINATOR", 27)
	}
	b.str("555-0100", 18).
		mark("FL").str(f.fl, 12).
		mark("HL").num(0, 6)

	table := func(count string, segs []segFixture, sw, dw int) {
		b.mark(count).num(int64(len(segs)), 3)
		for i, s := range segs {
			b.mark(fmt.Sprintf("%s%d", count, i)).num(s.subheader, sw).num(s.data, dw)
		}
	}
	table("NUMI", f.images, 6, 10)
	table("NUMS", f.symbols, 4, 6)
	if f.version == V21 {
		b.num(0, 3)
	} else {
		table("NUML", nil, 4, 3)
	}
	table("NUMT", f.texts, 4, 5)
	table("NUMDES", f.des, 4, 9)
	table("NUMRES", nil, 4, 7)
	b.mark("UDHDL").writeWindow(f.udhd).
		mark("XHDL").writeWindow(f.xhd).
		mark("end")

	// Patch HL and, unless set, FL.
	p := b.Bytes()
	copy(p[b.marks["HL"]:], fmt.Sprintf("%06d", b.Len()))
	if f.fl == "" {
		total := int64(b.Len())
		for _, segs := range [][]segFixture{f.images, f.symbols, f.texts, f.des} {
			for _, s := range segs {
				total += s.subheader + s.data
			}
		}
		copy(p[b.marks["FL"]:], fmt.Sprintf("%012d", total))
	}
	return b
}

func (f fileFixture) bytes() []byte {
	return f.build().Bytes()
}
