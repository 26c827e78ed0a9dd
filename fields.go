package nitf

import (
	"fmt"

	"github.com/Velocidex/ordereddict"
)

// Fields returns the header fields keyed by their mnemonic, in wire order.
// Conditional fields are only listed when present.
func (h *FileHeader) Fields() *ordereddict.Dict {
	d := ordereddict.NewDict().
		Set("FHDR", h.FileTypeVersion).
		Set("CLEVEL", h.ComplexityLevel).
		Set("STYPE", h.SystemType).
		Set("OSTAID", h.OriginatingStationID).
		Set("FDT", h.DateTime).
		Set("FTITLE", h.Title)
	setSecurity(d, h.Version, "FS", &h.Security)
	d.Set("FSCOP", h.CopyNumber).
		Set("FSCPYS", h.NumberOfCopies).
		Set("ENCRYP", h.Encryption)
	if h.Version == V21 {
		d.Set("FBKGC", fmt.Sprintf("%02X%02X%02X", h.BackgroundColor[0], h.BackgroundColor[1], h.BackgroundColor[2]))
	}
	d.Set("ONAME", h.OriginatorName).
		Set("OPHONE", h.OriginatorPhone)
	if h.DeclaredFileLength < 0 {
		d.Set("FL", unknownFileLength)
	} else {
		d.Set("FL", h.DeclaredFileLength)
	}
	d.Set("HL", h.DeclaredHeaderLength)

	l, err := layoutOf(h.Version)
	if err != nil {
		return d
	}
	for _, sl := range l.segments {
		if sl.countOnly {
			d.Set(sl.count, h.ReservedCount)
			continue
		}
		segments := h.Segments(sl.kind)
		d.Set(sl.count, len(segments))
		for i, s := range segments {
			d.Set(fmt.Sprintf("%s%03d", sl.subheader, i+1), s.SubheaderLength)
			d.Set(fmt.Sprintf("%s%03d", sl.data, i+1), s.DataLength)
		}
	}

	d.Set("UDHDL", h.UserDefinedLength)
	if h.UserDefinedLength > 0 {
		d.Set("UDHOFL", h.UserDefinedOverflow)
	}
	d.Set("XHDL", h.ExtendedLength)
	if h.ExtendedLength > 0 {
		d.Set("XHDLOFL", h.ExtendedOverflow)
	}
	return d
}

// Fields returns the subheader fields keyed by their mnemonic, in wire
// order. Band fields are suffixed with the 1-based band number.
func (h *ImageSubheader) Fields() *ordereddict.Dict {
	d := ordereddict.NewDict().
		Set("IM", "IM").
		Set("IID", h.ImageID).
		Set("IDATIM", h.DateTime).
		Set("TGTID", h.TargetID).
		Set("ITITLE", h.Title)
	setSecurity(d, h.Version, "IS", &h.Security)
	d.Set("ENCRYP", h.Encryption).
		Set("ISORCE", h.ImageSource).
		Set("NROWS", h.Rows).
		Set("NCOLS", h.Cols).
		Set("PVTYPE", h.PixelValueType).
		Set("IREP", h.Representation).
		Set("ICAT", h.Category).
		Set("ABPP", h.ActualBitsPerPixel).
		Set("PJUST", h.Justification).
		Set("ICORDS", h.CoordinateSystem)
	if h.GeographicLocation != "" {
		d.Set("IGEOLO", h.GeographicLocation)
	}
	d.Set("NICOM", h.Comments).
		Set("IC", h.Compression)
	if hasCompressionRate(h.Compression) {
		d.Set("COMRAT", h.CompressionRate)
	}
	d.Set("NBANDS", len(h.Bands))
	for i, b := range h.Bands {
		n := i + 1
		d.Set(fmt.Sprintf("IREPBAND%d", n), b.Representation).
			Set(fmt.Sprintf("ISUBCAT%d", n), b.Significance).
			Set(fmt.Sprintf("IFC%d", n), b.FilterCondition).
			Set(fmt.Sprintf("IMFLT%d", n), b.FilterCode).
			Set(fmt.Sprintf("NLUTS%d", n), len(b.LUTs))
		if len(b.LUTs) > 0 {
			d.Set(fmt.Sprintf("NELUT%d", n), b.LUTs[0].Entries)
		}
	}
	d.Set("ISYNC", h.SyncCode).
		Set("IMODE", string(h.Mode)).
		Set("NBPR", h.BlocksPerRow).
		Set("NBPC", h.BlocksPerCol).
		Set("NPPBH", h.PixelsPerBlockH).
		Set("NPPBV", h.PixelsPerBlockV).
		Set("NBPP", h.BitsPerPixel).
		Set("IDLVL", h.DisplayLevel).
		Set("IALVL", h.AttachmentLevel).
		Set("ILOC", h.Location).
		Set("IMAG", h.Magnification).
		Set("UDIDL", h.UserDefinedLength)
	if h.UserDefinedLength > 0 {
		d.Set("UDOFL", h.UserDefinedOverflow)
	}
	d.Set("IXSHDL", h.ExtendedLength)
	if h.ExtendedLength > 0 {
		d.Set("IXSOFL", h.ExtendedOverflow)
	}

	if t := h.BlockTable; t != nil {
		d.Set("IMDATOFF", t.BlockedImageDataOffset).
			Set("BMRLNTH", t.BlockMaskRecordLength).
			Set("TMRLNTH", t.PadPixelMaskRecordLength).
			Set("TPXCDLNTH", t.TransparentCodeBitLength)
		if t.HasTransparentCode() {
			d.Set("TPXCD", t.TransparentCode)
		}
	}
	return d
}

func setSecurity(d *ordereddict.Dict, v Version, prefix string, s *SecurityGroup) {
	l, err := layoutOf(v)
	if err != nil {
		return
	}
	for _, f := range l.security {
		if s.present(f) {
			d.Set(prefix+f.name, *s.field(f.name))
		}
	}
}

// CompressionName returns a description of an IC value.
func CompressionName(ic string) string {
	switch ic {
	case cNone:
		return "uncompressed"
	case cNoneMasked:
		return "uncompressed, masked"
	case cBilevel:
		return "bi-level"
	case cJPEG:
		return "JPEG"
	case cVQ:
		return "vector quantization"
	case cLossless:
		return "lossless JPEG"
	case cMaskedBlocked:
		return "downsampled JPEG, masked"
	case cBilevelMasked:
		return "bi-level, masked"
	case cJPEGMasked:
		return "JPEG, masked"
	case cVQMasked:
		return "vector quantization, masked"
	case cLosslessMask:
		return "lossless JPEG, masked"
	}
	return fmt.Sprintf("unknown (%s)", ic)
}
