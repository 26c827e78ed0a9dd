package nitf

import (
	"fmt"
	"io"
	"strconv"

	"github.com/apex/log"
	"github.com/pkg/errors"
)

// SegmentKind identifies a segment type of the file header length tables.
type SegmentKind int

const (
	SegmentImage             SegmentKind = iota
	SegmentSymbol                        // Graphics in NITF 2.1.
	SegmentLabel                         // NITF 2.0 only.
	SegmentText
	SegmentDataExtension
	SegmentReservedExtension
)

var segmentKindNames = [...]string{
	SegmentImage:             "image",
	SegmentSymbol:            "symbol",
	SegmentLabel:             "label",
	SegmentText:              "text",
	SegmentDataExtension:     "data extension",
	SegmentReservedExtension: "reserved extension",
}

func (k SegmentKind) String() string {
	if k < 0 || int(k) >= len(segmentKindNames) {
		return fmt.Sprintf("SegmentKind(%d)", int(k))
	}
	return segmentKindNames[k]
}

// Segment is one (subheader, data) entry of the file header length tables,
// with the absolute offsets derived from them.
type Segment struct {
	SubheaderLength int64
	DataLength      int64
	SubheaderOffset int64
	DataOffset      int64
}

// End returns the offset following the segment data.
func (s Segment) End() int64 {
	return s.DataOffset + s.DataLength
}

// FileHeader is a parsed NITF file header. It is built once by
// ParseFileHeader and must be treated as read-only.
type FileHeader struct {
	Version              Version
	Offset               int64 // Absolute offset of the header.
	HeaderSize           int64 // Bytes actually consumed by the header.
	DeclaredHeaderLength int64 // HL
	DeclaredFileLength   int64 // FL, -1 when 999999999999.

	FileTypeVersion      string // FHDR+FVER
	ComplexityLevel      int    // CLEVEL
	SystemType           string // STYPE
	OriginatingStationID string // OSTAID
	DateTime             string // FDT
	Title                string // FTITLE
	Security             SecurityGroup
	CopyNumber           int     // FSCOP
	NumberOfCopies       int     // FSCPYS
	Encryption           string  // ENCRYP
	BackgroundColor      [3]byte // FBKGC, NITF 2.1 only.
	OriginatorName       string  // ONAME
	OriginatorPhone      string  // OPHONE

	Images             []Segment
	Symbols            []Segment // Graphics in NITF 2.1.
	Labels             []Segment
	Texts              []Segment
	DataExtensions     []Segment
	ReservedExtensions []Segment
	ReservedCount      int // NUMX, NITF 2.1 only.

	UserDefinedLength   int // UDHDL
	UserDefinedOverflow int // UDHOFL
	UserDefinedTags     TagList
	ExtendedLength      int // XHDL
	ExtendedOverflow    int // XHDLOFL
	ExtendedTags        TagList

	warnings error
}

// ParseFileHeader parses the file header starting at the current position
// of r and leaves r right after it. The version is taken from FHDR/FVER.
func ParseFileHeader(r io.ReadSeeker, opts *Options) (*FileHeader, error) {
	fr, err := newFieldReader(r, "file header", opts)
	if err != nil {
		return nil, err
	}
	fr.log.WithField("offset", fr.start).Debug("parsing file header")

	h := &FileHeader{Offset: fr.start}
	if err = h.parse(fr); err != nil {
		return nil, err
	}
	h.warnings = fr.warningsOrNil()

	fr.log.WithFields(log.Fields{
		"version":     h.Version,
		"header_size": h.HeaderSize,
		"images":      len(h.Images),
	}).Debug("parsed file header")
	return h, nil
}

func (h *FileHeader) parse(fr *fieldReader) (err error) {
	fr.enter("identification", -1)
	fhdr, err := fr.readString("FHDR", 9)
	if err != nil {
		return
	}
	if h.Version, err = parseVersion(fhdr); err != nil {
		return
	}
	h.FileTypeVersion = fhdr
	l, err := layoutOf(h.Version)
	if err != nil {
		return
	}

	if h.ComplexityLevel, err = fr.optionalInt("CLEVEL", 2); err != nil {
		return
	}
	if h.SystemType, err = fr.readString("STYPE", 4); err != nil {
		return
	}
	if h.OriginatingStationID, err = fr.readString("OSTAID", 10); err != nil {
		return
	}
	if h.DateTime, err = fr.readString("FDT", 14); err != nil {
		return
	}
	if h.Title, err = fr.readString("FTITLE", 80); err != nil {
		return
	}
	if h.Security, err = fr.readSecurity(l, "FS"); err != nil {
		return
	}
	if h.CopyNumber, err = fr.optionalInt("FSCOP", 5); err != nil {
		return
	}
	if h.NumberOfCopies, err = fr.optionalInt("FSCPYS", 5); err != nil {
		return
	}
	if h.Encryption, err = fr.readString("ENCRYP", 1); err != nil {
		return
	}

	fr.enter("originator", -1)
	if l.backgroundColor {
		bkgc, err := fr.readFixed("FBKGC", 3)
		if err != nil {
			return err
		}
		copy(h.BackgroundColor[:], bkgc)
	}
	if h.OriginatorName, err = fr.readString("ONAME", l.originatorNameLen); err != nil {
		return
	}
	if h.OriginatorPhone, err = fr.readString("OPHONE", 18); err != nil {
		return
	}

	fr.enter("lengths", -1)
	if err = h.readFileLength(fr); err != nil {
		return
	}
	if h.DeclaredHeaderLength, err = fr.readOptionalInt("HL", 6, 0); err != nil {
		return
	}

	for i := range l.segments {
		if err = h.readSegmentTable(fr, &l.segments[i]); err != nil {
			return
		}
	}

	fr.enter("userDefinedHeader", -1)
	h.UserDefinedLength, h.UserDefinedOverflow, h.UserDefinedTags, err = fr.readTagWindow("UDHDL", "UDHOFL", UserDefinedData)
	if err != nil {
		return
	}
	fr.enter("extendedHeader", -1)
	h.ExtendedLength, h.ExtendedOverflow, h.ExtendedTags, err = fr.readTagWindow("XHDL", "XHDLOFL", ExtendedHeaderData)
	if err != nil {
		return
	}

	h.HeaderSize = fr.consumed()
	if h.DeclaredHeaderLength != 0 && h.DeclaredHeaderLength != h.HeaderSize {
		fr.warn(fr.malformed("HL", []byte(fmt.Sprint(h.DeclaredHeaderLength)), fr.start,
			fmt.Sprintf("header is %d bytes long", h.HeaderSize)))
	}
	h.initializeOffsets()
	return nil
}

func (h *FileHeader) readFileLength(fr *fieldReader) error {
	at := fr.pos()
	raw, err := fr.readFixed("FL", 12)
	if err != nil {
		return err
	}
	if string(raw) == unknownFileLength {
		h.DeclaredFileLength = -1
		return nil
	}
	v, ok := parseASCIIInt(raw)
	if !ok {
		mfe := fr.malformed("FL", raw, at, "not a file length")
		if fr.strict {
			return mfe
		}
		fr.warn(mfe)
		v = -1
	}
	h.DeclaredFileLength = v
	return nil
}

// readSegmentTable reads one segment count and its length pairs. Any
// truncation inside the table is fatal: a short list is never returned.
func (h *FileHeader) readSegmentTable(fr *fieldReader, sl *segmentLayout) error {
	fr.enter(sl.context, -1)
	at := fr.pos()
	n, err := fr.requiredInt(sl.count, 3)
	if err != nil {
		return err
	}
	if n < 0 {
		return fr.malformed(sl.count, []byte(strconv.Itoa(n)), at, "negative segment count")
	}
	if sl.countOnly {
		h.ReservedCount = n
		return nil
	}

	segments := make([]Segment, n)
	for i := range segments {
		fr.enter(sl.context, i)
		if segments[i].SubheaderLength, err = fr.readASCIIInt(sl.subheader, sl.subheaderLen); err != nil {
			return err
		}
		if segments[i].DataLength, err = fr.readASCIIInt(sl.data, sl.dataLen); err != nil {
			return err
		}
	}
	*h.segments(sl.kind) = segments
	return nil
}

func (h *FileHeader) segments(kind SegmentKind) *[]Segment {
	switch kind {
	case SegmentImage:
		return &h.Images
	case SegmentSymbol:
		return &h.Symbols
	case SegmentLabel:
		return &h.Labels
	case SegmentText:
		return &h.Texts
	case SegmentDataExtension:
		return &h.DataExtensions
	case SegmentReservedExtension:
		return &h.ReservedExtensions
	}
	return nil
}

// initializeOffsets lays the segments out after the header, in table order.
func (h *FileHeader) initializeOffsets() {
	offset := h.Offset + h.HeaderSize
	for kind := SegmentImage; kind <= SegmentReservedExtension; kind++ {
		segments := *h.segments(kind)
		for i := range segments {
			segments[i].SubheaderOffset = offset
			segments[i].DataOffset = offset + segments[i].SubheaderLength
			offset = segments[i].End()
		}
	}
}

// Segments returns the length table of a segment kind.
func (h *FileHeader) Segments(kind SegmentKind) []Segment {
	if s := h.segments(kind); s != nil {
		return *s
	}
	return nil
}

// Tags returns the user-defined tags followed by the extended ones.
func (h *FileHeader) Tags() TagList {
	tags := make(TagList, 0, len(h.UserDefinedTags)+len(h.ExtendedTags))
	tags = append(tags, h.UserDefinedTags...)
	return append(tags, h.ExtendedTags...)
}

// DerivedFileSize returns the header size plus every declared segment
// length.
func (h *FileHeader) DerivedFileSize() int64 {
	size := h.HeaderSize
	for kind := SegmentImage; kind <= SegmentReservedExtension; kind++ {
		for _, s := range h.Segments(kind) {
			size += s.SubheaderLength + s.DataLength
		}
	}
	return size
}

// FileSize returns FL, or the derived file size when FL is unknown.
func (h *FileHeader) FileSize() int64 {
	if h.DeclaredFileLength >= 0 {
		return h.DeclaredFileLength
	}
	return h.DerivedFileSize()
}

// IsEncrypted reports whether ENCRYP is set.
func (h *FileHeader) IsEncrypted() bool {
	return h.Encryption == "1"
}

// End returns the offset following the header.
func (h *FileHeader) End() int64 {
	return h.Offset + h.HeaderSize
}

// Warnings returns the non-fatal diagnostics raised while parsing, as a
// *multierror.Error, or nil.
func (h *FileHeader) Warnings() error {
	return h.warnings
}

// ImageSubheaderOffset returns the absolute offset of the i-th image
// subheader.
func (h *FileHeader) ImageSubheaderOffset(i int) (int64, error) {
	if i < 0 || i >= len(h.Images) {
		return 0, errors.Errorf("nitf: image index %d out of range [0, %d)", i, len(h.Images))
	}
	return h.Images[i].SubheaderOffset, nil
}

// ReadImageSubheader seeks r to the i-th image subheader and parses it with
// the version of the file.
func (h *FileHeader) ReadImageSubheader(r io.ReadSeeker, i int, opts *Options) (*ImageSubheader, error) {
	off, err := h.ImageSubheaderOffset(i)
	if err != nil {
		return nil, err
	}
	if _, err = r.Seek(off, io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "nitf: seeking to image %d", i)
	}
	return parseImageSubheader(r, h.Version, opts)
}
