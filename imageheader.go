package nitf

import (
	"image"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/pkg/errors"
)

// ImageSubheader is a parsed image subheader, including the mask table and
// VQ header that precede masked or VQ compressed image data. It is built
// once by ParseImageSubheader and must be treated as read-only.
type ImageSubheader struct {
	Version    Version
	Offset     int64 // Absolute offset of the subheader.
	HeaderSize int64 // Subheader bytes, up to the mask table.
	DataOffset int64 // Absolute offset of the first block of image data.

	ImageID            string // IID
	DateTime           string // IDATIM
	TargetID           string // TGTID
	Title              string // ITITLE
	Security           SecurityGroup
	Encryption         string // ENCRYP
	ImageSource        string // ISORCE
	Rows               int    // NROWS
	Cols               int    // NCOLS
	PixelValueType     string // PVTYPE
	Representation     string // IREP
	Category           string // ICAT
	ActualBitsPerPixel int    // ABPP
	Justification      string // PJUST
	CoordinateSystem   string // ICORDS
	GeographicLocation string // IGEOLO
	Comments           int    // NICOM
	Compression        string // IC
	CompressionRate    string // COMRAT
	Bands              []Band
	SyncCode           int    // ISYNC
	Mode               byte   // IMODE
	BlocksPerRow       int    // NBPR
	BlocksPerCol       int    // NBPC
	PixelsPerBlockH    int    // NPPBH
	PixelsPerBlockV    int    // NPPBV
	BitsPerPixel       int    // NBPP
	DisplayLevel       int    // IDLVL
	AttachmentLevel    int    // IALVL
	Location           string // ILOC
	Magnification      string // IMAG

	UserDefinedLength   int // UDIDL
	UserDefinedOverflow int // UDOFL
	UserDefinedTags     TagList
	ExtendedLength      int // IXSHDL
	ExtendedOverflow    int // IXSOFL
	ExtendedTags        TagList

	BlockTable *CompressedBlockTable // Set for NM, M0, M3 and M4.
	VQ         *VQHeader             // Set for C4 and M4 using algorithm 1.

	warnings error
}

// ParseImageSubheader parses the image subheader starting at the current
// position of r. On success r is left at the start of the image data
// (DataOffset).
func ParseImageSubheader(r io.ReadSeeker, opts *Options) (*ImageSubheader, error) {
	return parseImageSubheader(r, opts.version(), opts)
}

func parseImageSubheader(r io.ReadSeeker, v Version, opts *Options) (*ImageSubheader, error) {
	l, err := layoutOf(v)
	if err != nil {
		return nil, err
	}
	fr, err := newFieldReader(r, "image subheader", opts)
	if err != nil {
		return nil, err
	}
	fr.log.WithFields(log.Fields{"offset": fr.start, "version": v}).Debug("parsing image subheader")

	h := &ImageSubheader{
		Version: v,
		Offset:  fr.start,
	}
	if err = h.parse(fr, l); err != nil {
		return nil, err
	}
	h.warnings = fr.warningsOrNil()

	fr.log.WithFields(log.Fields{
		"iid":         h.ImageID,
		"ic":          h.Compression,
		"data_offset": h.DataOffset,
	}).Debug("parsed image subheader")
	return h, nil
}

func (h *ImageSubheader) parse(fr *fieldReader, l *layout) (err error) {
	fr.enter("identification", -1)
	im, err := fr.readString("IM", 2)
	if err != nil {
		return
	}
	if im != "IM" {
		return FormatError("image subheader does not start with IM")
	}
	if h.ImageID, err = fr.readString("IID", 10); err != nil {
		return
	}
	if h.DateTime, err = fr.readString("IDATIM", 14); err != nil {
		return
	}
	if h.TargetID, err = fr.readString("TGTID", 17); err != nil {
		return
	}
	if h.Title, err = fr.readString("ITITLE", 80); err != nil {
		return
	}
	if h.Security, err = fr.readSecurity(l, "IS"); err != nil {
		return
	}

	fr.enter("imageDescription", -1)
	if h.Encryption, err = fr.readString("ENCRYP", 1); err != nil {
		return
	}
	if h.ImageSource, err = fr.readString("ISORCE", 42); err != nil {
		return
	}
	if h.Rows, err = fr.optionalInt("NROWS", 8); err != nil {
		return
	}
	if h.Cols, err = fr.optionalInt("NCOLS", 8); err != nil {
		return
	}
	if h.PixelValueType, err = fr.readString("PVTYPE", 3); err != nil {
		return
	}
	if h.Representation, err = fr.readString("IREP", 8); err != nil {
		return
	}
	if h.Category, err = fr.readString("ICAT", 8); err != nil {
		return
	}
	if h.ActualBitsPerPixel, err = fr.optionalInt("ABPP", 2); err != nil {
		return
	}
	if h.Justification, err = fr.readString("PJUST", 1); err != nil {
		return
	}
	icords, err := fr.readFixed("ICORDS", 1)
	if err != nil {
		return
	}
	h.CoordinateSystem = string(icords)
	if h.CoordinateSystem != l.noCoordinates {
		if h.GeographicLocation, err = fr.readString("IGEOLO", 60); err != nil {
			return
		}
	}
	h.CoordinateSystem = strings.TrimSpace(h.CoordinateSystem)

	if h.Comments, err = fr.requiredInt("NICOM", 1); err != nil {
		return
	}
	fr.enter("comments", -1)
	if err = fr.skip("ICOM", int64(h.Comments)*commentLen); err != nil {
		return
	}

	fr.enter("compression", -1)
	ic, err := fr.readString("IC", 2)
	if err != nil {
		return
	}
	h.Compression = strings.ToUpper(strings.TrimSpace(ic))
	if hasCompressionRate(h.Compression) {
		if h.CompressionRate, err = fr.readString("COMRAT", 4); err != nil {
			return
		}
	}

	if err = h.parseBands(fr, l); err != nil {
		return
	}

	fr.enter("blocking", -1)
	if h.SyncCode, err = fr.optionalInt("ISYNC", 1); err != nil {
		return
	}
	mode, err := fr.readFixed("IMODE", 1)
	if err != nil {
		return
	}
	h.Mode = mode[0]
	if h.BlocksPerRow, err = fr.requiredInt("NBPR", 4); err != nil {
		return
	}
	if h.BlocksPerCol, err = fr.requiredInt("NBPC", 4); err != nil {
		return
	}
	if h.PixelsPerBlockH, err = fr.optionalInt("NPPBH", 4); err != nil {
		return
	}
	if h.PixelsPerBlockV, err = fr.optionalInt("NPPBV", 4); err != nil {
		return
	}
	if h.BitsPerPixel, err = fr.optionalInt("NBPP", 2); err != nil {
		return
	}
	if h.DisplayLevel, err = fr.optionalInt("IDLVL", 3); err != nil {
		return
	}
	if h.AttachmentLevel, err = fr.optionalInt("IALVL", 3); err != nil {
		return
	}
	if h.Location, err = fr.readString("ILOC", 10); err != nil {
		return
	}
	if h.Magnification, err = fr.readString("IMAG", 4); err != nil {
		return
	}

	h.UserDefinedLength, h.UserDefinedOverflow, h.UserDefinedTags, err = fr.readTagWindow("UDIDL", "UDOFL", UserDefinedData)
	if err != nil {
		return
	}
	fr.enter("extendedSubheader", -1)
	h.ExtendedLength, h.ExtendedOverflow, h.ExtendedTags, err = fr.readTagWindow("IXSHDL", "IXSOFL", ExtendedHeaderData)
	if err != nil {
		return
	}
	h.HeaderSize = fr.consumed()

	return h.parseDataPrefix(fr)
}

func (h *ImageSubheader) parseBands(fr *fieldReader, l *layout) error {
	fr.enter("bands", -1)
	nbands, err := fr.requiredInt("NBANDS", 1)
	if err != nil {
		return err
	}
	if nbands == 0 && l.extendedBands {
		if nbands, err = fr.requiredInt("XBANDS", 5); err != nil {
			return err
		}
	}
	if nbands < 0 {
		return fr.malformed("NBANDS", []byte(strconv.Itoa(nbands)), fr.pos(), "negative band count")
	}

	h.Bands = make([]Band, nbands)
	for i := range h.Bands {
		if h.Bands[i], err = fr.readBand(i); err != nil {
			return err
		}
	}
	return nil
}

// parseDataPrefix reads the binary structures that masked and VQ
// compressed images carry before their blocks, then moves to the first
// block.
func (h *ImageSubheader) parseDataPrefix(fr *fieldReader) (err error) {
	before := fr.pos()

	if hasBlockTable(h.Compression) {
		if h.BlockTable, err = fr.readBlockTable(h.Compression, h.maskEntries()); err != nil {
			return
		}
	}

	if hasVQHeader(h.Compression) {
		vq, err := fr.readVQHeader()
		if err != nil {
			return err
		}
		if vq.AlgorithmID == vqAlgorithmNITF {
			h.VQ = vq
		} else {
			fr.warn(&UnsupportedCompressionAlgorithmError{AlgorithmID: vq.AlgorithmID, Offset: before})
		}
	}

	if h.BlockTable != nil {
		fr.enter("blockTable", -1)
		consumed := fr.pos() - before
		offset := int64(h.BlockTable.BlockedImageDataOffset)
		switch {
		case consumed < offset:
			if err = fr.seek(before + offset); err != nil {
				return
			}
		case consumed > offset:
			fr.warn(fr.malformed("IMDATOFF", []byte(strconv.FormatInt(offset, 10)), before,
				"offset points inside the mask table, "+strconv.FormatInt(consumed, 10)+" bytes were read"))
		}
	}

	h.DataOffset = fr.pos()
	return nil
}

// maskEntries returns the number of mask entries implied by the geometry.
func (h *ImageSubheader) maskEntries() int {
	n := h.BlocksPerRow * h.BlocksPerCol
	if h.Mode == ModeSequential {
		n *= len(h.Bands)
	}
	if n < 0 {
		return 0
	}
	return n
}

// requiredInt reads an ASCII integer without a default: a malformed value
// aborts the parse.
func (fr *fieldReader) requiredInt(field string, n int) (int, error) {
	v, err := fr.readASCIIInt(field, n)
	return int(v), err
}

// optionalInt reads an informational ASCII integer defaulting to 0.
func (fr *fieldReader) optionalInt(field string, n int) (int, error) {
	v, err := fr.readOptionalInt(field, n, 0)
	return int(v), err
}

// NumberOfBands returns NBANDS (or XBANDS).
func (h *ImageSubheader) NumberOfBands() int {
	return len(h.Bands)
}

// IsCompressed reports whether IC is neither NC nor NM.
func (h *ImageSubheader) IsCompressed() bool {
	return hasCompressionRate(h.Compression)
}

// IsEncrypted reports whether ENCRYP is set.
func (h *ImageSubheader) IsEncrypted() bool {
	return h.Encryption == "1"
}

// Tags returns the user-defined tags followed by the extended ones.
func (h *ImageSubheader) Tags() TagList {
	tags := make(TagList, 0, len(h.UserDefinedTags)+len(h.ExtendedTags))
	tags = append(tags, h.UserDefinedTags...)
	return append(tags, h.ExtendedTags...)
}

// Warnings returns the non-fatal diagnostics raised while parsing, as a
// *multierror.Error, or nil.
func (h *ImageSubheader) Warnings() error {
	return h.warnings
}

// ImageRect returns the bounds of the significant pixels.
func (h *ImageSubheader) ImageRect() image.Rectangle {
	return image.Rect(0, 0, h.Cols, h.Rows)
}

// BlockImageRect returns the bounds covered by the blocks, padding included.
func (h *ImageSubheader) BlockImageRect() image.Rectangle {
	return image.Rect(0, 0, h.PixelsPerBlockH*h.BlocksPerRow, h.PixelsPerBlockV*h.BlocksPerCol)
}

// BlockSize returns the block dimensions.
func (h *ImageSubheader) BlockSize() image.Point {
	return image.Pt(h.PixelsPerBlockH, h.PixelsPerBlockV)
}

// ImageLocation returns ILOC, the row and column of the image relative to
// the item it is attached to.
func (h *ImageSubheader) ImageLocation() (row, col int, err error) {
	loc := h.Location + strings.Repeat(" ", 10-minInt(len(h.Location), 10))
	if row, err = strconv.Atoi(strings.TrimSpace(loc[:5])); err != nil {
		return 0, 0, errors.Wrap(err, "nitf: invalid ILOC row")
	}
	if col, err = strconv.Atoi(strings.TrimSpace(loc[5:10])); err != nil {
		return 0, 0, errors.Wrap(err, "nitf: invalid ILOC column")
	}
	return row, col, nil
}

// AcquisitionTime parses IDATIM: DDhhmmssZMONYY for NITF 2.0,
// CCYYMMDDhhmmss for NITF 2.1.
func (h *ImageSubheader) AcquisitionTime() (time.Time, error) {
	layout := "20060102150405"
	if h.Version == V20 {
		layout = "02150405ZJan06"
	}
	t, err := time.Parse(layout, h.DateTime)
	return t, errors.Wrap(err, "nitf: invalid IDATIM")
}

// BlockMaskOffset returns the offset of a block, relative to the end of the
// mask table, or NoBlock when the block is not recorded. band is ignored
// unless IMODE is S.
func (h *ImageSubheader) BlockMaskOffset(block, band int) uint32 {
	if h.BlockTable == nil {
		return NoBlock
	}
	return h.maskValue(h.BlockTable.BlockMasks, block, band)
}

// PadPixelMaskOffset returns the pad pixel mask offset of a block, or
// NoBlock.
func (h *ImageSubheader) PadPixelMaskOffset(block, band int) uint32 {
	if h.BlockTable == nil {
		return NoBlock
	}
	return h.maskValue(h.BlockTable.PadPixelMasks, block, band)
}

func (h *ImageSubheader) maskValue(masks []uint32, block, band int) uint32 {
	i := maskIndex(h.Mode, h.BlocksPerRow*h.BlocksPerCol, len(h.Bands), block, band)
	if i < 0 || i >= len(masks) {
		return NoBlock
	}
	return masks[i]
}
