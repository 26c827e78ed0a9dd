package nitf

// A NITF file is a sequence of segments, each one made of a subheader and
// its data. The file header carries the length of every subheader and data
// block, which is the only way to locate the segments:
//
//  - the file header (version, security, segment length tables, tags),
//  - image segments, then symbol/graphic, label, text, DES and RES segments.
//
// Every header field is fixed-width ASCII except the few binary records
// embedded in the image subheader (block mask table and VQ header), which
// are big-endian.

const (
	fhdrNITF = "NITF"
	fhdrNSIF = "NSIF"

	tagNameLen   = 6
	tagLengthLen = 5
	tagHeaderLen = tagNameLen + tagLengthLen // Length of a tag header in bytes.

	commentLen  = 80 // Length of one image comment (ICOM).
	overflowLen = 3  // Length of the UDOFL/IXSOFL style overflow index.

	downgradeSentinel = "999998" // ISDWNG/FSDWNG value gating the 40-byte downgrading event.
	downgradeEventLen = 40

	unknownFileLength = "999999999999"

	maxLUTs = 4
)

// NoBlock is returned by the mask accessors when a block has no recorded
// offset (absent table, out of range block or band).
const NoBlock uint32 = 0xFFFFFFFF

// Compression codes (IC).
const (
	cNone          = "NC" // Not compressed.
	cNoneMasked    = "NM" // Not compressed, with block mask.
	cBilevel       = "C1"
	cJPEG          = "C3"
	cVQ            = "C4"
	cLossless      = "C5"
	cBilevelMasked = "M1"
	cMaskedBlocked = "M0"
	cJPEGMasked    = "M3"
	cVQMasked      = "M4"
	cLosslessMask  = "M5"
)

// Image modes (IMODE).
const (
	ModeBlock      = 'B' // Band interleaved by block.
	ModePixel      = 'P' // Band interleaved by pixel.
	ModeRow        = 'R' // Band interleaved by row.
	ModeSequential = 'S' // Band sequential.
)

// vqAlgorithmNITF is the only VQ algorithm whose lookup tables are retained.
const vqAlgorithmNITF = 1

// hasBlockTable reports whether the compression code carries the binary
// block-mask tail after the extended subheader data.
func hasBlockTable(ic string) bool {
	switch ic {
	case cNoneMasked, cMaskedBlocked, cJPEGMasked, cVQMasked:
		return true
	}
	return false
}

// hasVQHeader reports whether the compression code implies a VQ compression
// header.
func hasVQHeader(ic string) bool {
	return ic == cVQ || ic == cVQMasked
}

// hasCompressionRate reports whether COMRAT follows IC.
func hasCompressionRate(ic string) bool {
	return ic != cNone && ic != cNoneMasked
}
