package nitf

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFileHeader(t *testing.T) {
	f := defaultFile()
	f.images = []segFixture{{439, 1000}, {500, 2000}}
	f.texts = []segFixture{{282, 12}}
	f.udhd = window(0, tag("TESTAA", []byte("hello")))
	b := f.build()

	h, err := ParseFileHeader(bytes.NewReader(b.Bytes()), nil)
	require.NoError(t, err)
	assert.Equal(t, V20, h.Version)
	assert.Equal(t, "NITF02.00", h.FileTypeVersion)
	assert.Equal(t, 3, h.ComplexityLevel)
	assert.Equal(t, "BF01", h.SystemType)
	assert.Equal(t, "TEST FILE", h.Title)
	assert.Equal(t, "U", h.Security.Classification)
	assert.Equal(t, "ORIGINATOR", h.OriginatorName)
	assert.Equal(t, "555-0100", h.OriginatorPhone)
	assert.False(t, h.IsEncrypted())

	size := int64(b.marks["end"])
	assert.Equal(t, size, h.HeaderSize)
	assert.Equal(t, size, h.DeclaredHeaderLength)
	assert.Equal(t, size, h.End())
	assert.NoError(t, h.Warnings())

	require.Len(t, h.Images, 2)
	assert.Equal(t, Segment{SubheaderLength: 439, DataLength: 1000, SubheaderOffset: size, DataOffset: size + 439}, h.Images[0])
	assert.Equal(t, size+1439, h.Images[1].SubheaderOffset)
	assert.Equal(t, size+1439+500, h.Images[1].DataOffset)
	require.Len(t, h.Texts, 1)
	assert.Equal(t, size+1439+2500, h.Texts[0].SubheaderOffset)
	assert.Empty(t, h.Segments(SegmentSymbol))
	assert.Empty(t, h.Segments(SegmentLabel))

	off, err := h.ImageSubheaderOffset(1)
	assert.NoError(t, err)
	assert.Equal(t, size+1439, off)
	_, err = h.ImageSubheaderOffset(2)
	assert.Error(t, err)

	total := size + 1439 + 2500 + 294
	assert.Equal(t, total, h.DeclaredFileLength)
	assert.Equal(t, total, h.DerivedFileSize())
	assert.Equal(t, total, h.FileSize())

	assert.Equal(t, []string{"TESTAA"}, h.Tags().Names())
	assert.Equal(t, UserDefinedData, h.UserDefinedTags[0].Source)
	assert.Empty(t, h.ExtendedTags)
}

func TestFileHeaderUnknownLength(t *testing.T) {
	f := defaultFile()
	f.fl = unknownFileLength
	f.images = []segFixture{{439, 100}}

	h, err := ParseFileHeader(bytes.NewReader(f.bytes()), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), h.DeclaredFileLength)
	assert.Equal(t, h.HeaderSize+539, h.FileSize())
}

func TestFileHeaderDowngradeEvent(t *testing.T) {
	f := defaultFile()
	plain, err := ParseFileHeader(bytes.NewReader(f.bytes()), nil)
	require.NoError(t, err)

	f.dwng = downgradeSentinel
	gated, err := ParseFileHeader(bytes.NewReader(f.bytes()), nil)
	require.NoError(t, err)

	assert.Equal(t, "ON EVENT", gated.Security.DowngradingEvent)
	assert.Equal(t, int64(40), gated.HeaderSize-plain.HeaderSize)
	assert.Equal(t, plain.CopyNumber, gated.CopyNumber)
	assert.Equal(t, plain.OriginatorName, gated.OriginatorName)
}

func TestFileHeaderTruncatedImageTable(t *testing.T) {
	f := defaultFile()
	f.images = []segFixture{{439, 100}, {439, 100}}
	b := f.build()
	// Cut right after the first length pair.
	p := b.Bytes()[:b.marks["NUMI1"]]

	_, err := ParseFileHeader(bytes.NewReader(p), nil)
	var tse *TruncatedStreamError
	require.True(t, errors.As(err, &tse))
	assert.Equal(t, "file header", tse.Record)
	assert.Equal(t, "imageInfoRecords", tse.Context)
	assert.Equal(t, 1, tse.Index)
	assert.Equal(t, "LISH", tse.Field)
	assert.Equal(t, int64(b.marks["NUMI1"]), tse.Offset)
}

func TestFileHeaderMalformedCount(t *testing.T) {
	f := defaultFile()
	b := f.build()
	p := b.Bytes()
	copy(p[b.marks["NUMT"]:], "0X1")

	_, err := ParseFileHeader(bytes.NewReader(p), nil)
	var mfe *MalformedFieldError
	require.True(t, errors.As(err, &mfe))
	assert.Equal(t, "NUMT", mfe.Field)
}

func TestFileHeaderNegativeCount(t *testing.T) {
	f := defaultFile()
	b := f.build()
	p := b.Bytes()
	copy(p[b.marks["NUMT"]:], "-01")

	var err error
	assert.NotPanics(t, func() {
		_, err = ParseFileHeader(bytes.NewReader(p), nil)
	})
	var mfe *MalformedFieldError
	require.True(t, errors.As(err, &mfe))
	assert.Equal(t, "NUMT", mfe.Field)
	assert.Equal(t, int64(b.marks["NUMT"]), mfe.Offset)
}

func TestFileHeaderSignature(t *testing.T) {
	_, err := ParseFileHeader(bytes.NewReader([]byte("GIF89a...")), nil)
	assert.Equal(t, FormatError("missing NITF signature"), err)

	_, err = ParseFileHeader(bytes.NewReader([]byte("NITF01.10")), nil)
	assert.IsType(t, UnsupportedError(""), err)

	_, err = ParseFileHeader(bytes.NewReader([]byte("NIT")), nil)
	var tse *TruncatedStreamError
	assert.True(t, errors.As(err, &tse))
}

func TestFileHeaderV21(t *testing.T) {
	f := defaultFile()
	f.version = V21
	f.images = []segFixture{{500, 64}}
	f.symbols = []segFixture{{258, 10}}
	f.des = []segFixture{{200, 300}}
	f.xhd = window(0, tag("XTAG01", []byte("1")))

	h, err := ParseFileHeader(bytes.NewReader(f.bytes()), nil)
	require.NoError(t, err)
	assert.Equal(t, V21, h.Version)
	assert.Equal(t, [3]byte{0x10, 0x20, 0x30}, h.BackgroundColor)
	assert.Equal(t, "ORIGINATOR", h.OriginatorName)
	assert.Equal(t, 0, h.ReservedCount)
	require.Len(t, h.Symbols, 1)
	assert.Empty(t, h.Labels)
	require.Len(t, h.DataExtensions, 1)
	assert.Equal(t, h.HeaderSize+564+268, h.DataExtensions[0].SubheaderOffset)
	assert.Equal(t, ExtendedHeaderData, h.ExtendedTags[0].Source)
	assert.Equal(t, h.DeclaredFileLength, h.DerivedFileSize())
}

func TestFileHeaderNSIF(t *testing.T) {
	f := defaultFile()
	f.version = V21
	p := f.bytes()
	copy(p, "NSIF01.00")

	h, err := ParseFileHeader(bytes.NewReader(p), nil)
	require.NoError(t, err)
	assert.Equal(t, V21, h.Version)
	assert.Equal(t, "NSIF01.00", h.FileTypeVersion)
}

func TestFileHeaderDeclaredLengthMismatch(t *testing.T) {
	f := defaultFile()
	b := f.build()
	p := b.Bytes()
	copy(p[b.marks["HL"]:], "000001")

	h, err := ParseFileHeader(bytes.NewReader(p), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), h.DeclaredHeaderLength)
	assert.Error(t, h.Warnings())
}

func TestReadImageSubheader(t *testing.T) {
	img := defaultImage()
	img.iid = "SECOND"
	sub := img.bytes()

	f := defaultFile()
	f.images = []segFixture{{int64(len(sub)), 8}, {int64(len(sub)), 8}}
	p := append(f.bytes(), sub...)
	p = append(p, make([]byte, 8)...)
	p = append(p, sub...)
	p = append(p, []byte("12345678")...)

	r := bytes.NewReader(p)
	h, err := ParseFileHeader(r, nil)
	require.NoError(t, err)

	im, err := h.ReadImageSubheader(r, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "SECOND", im.ImageID)
	assert.Equal(t, h.Images[1].SubheaderOffset, im.Offset)
	assert.Equal(t, h.Images[1].DataOffset, im.DataOffset)
	assert.Equal(t, h.Images[1].End(), int64(len(p)))
}
