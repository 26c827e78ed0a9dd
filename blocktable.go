package nitf

import (
	"github.com/pkg/errors"
)

const maskRecordLen = 4 // Bytes per block or pad pixel mask entry.

// CompressedBlockTable is the image data mask table found at the start of
// masked (NM, M0, M3, M4) image data. It gives the offset of every block,
// relative to the end of the table, so that blocks can be read in random
// order.
type CompressedBlockTable struct {
	BlockedImageDataOffset   uint32 // IMDATOFF
	BlockMaskRecordLength    uint16 // BMRLNTH
	PadPixelMaskRecordLength uint16 // TMRLNTH
	TransparentCodeBitLength uint16 // TPXCDLNTH
	TransparentCode          uint16 // TPXCD
	BlockMasks               []uint32
	PadPixelMasks            []uint32
}

// HasTransparentCode reports whether a pad pixel value is recorded.
func (t *CompressedBlockTable) HasTransparentCode() bool {
	return t.TransparentCodeBitLength > 0
}

// readBlockTable reads the mask table. entries is the number of mask
// entries implied by the image geometry.
func (fr *fieldReader) readBlockTable(ic string, entries int) (*CompressedBlockTable, error) {
	fr.enter("blockTable", -1)

	t := &CompressedBlockTable{}
	var err error
	if t.BlockedImageDataOffset, err = fr.readUint32BE("IMDATOFF"); err != nil {
		return nil, err
	}
	if t.BlockMaskRecordLength, err = fr.readUint16BE("BMRLNTH"); err != nil {
		return nil, err
	}
	if t.PadPixelMaskRecordLength, err = fr.readUint16BE("TMRLNTH"); err != nil {
		return nil, err
	}
	if t.TransparentCodeBitLength, err = fr.readUint16BE("TPXCDLNTH"); err != nil {
		return nil, err
	}

	switch n := t.TransparentCodeBitLength; {
	case n == 0:
	case n <= 8:
		v, err := fr.readUint8("TPXCD")
		if err != nil {
			return nil, err
		}
		t.TransparentCode = uint16(v)
	default:
		// TODO: honor PJUST when the code takes 2 bytes but fewer than 16 bits.
		if t.TransparentCode, err = fr.readUint16BE("TPXCD"); err != nil {
			return nil, err
		}
	}

	if t.BlockMaskRecordLength > 0 {
		if t.BlockMasks, err = fr.readMaskArray("BMR", t.BlockMaskRecordLength, entries); err != nil {
			return nil, err
		}
	}
	// M3 always carries a pad pixel table, even when TMRLNTH reads 0.
	if t.PadPixelMaskRecordLength > 0 || ic == cJPEGMasked {
		if t.PadPixelMasks, err = fr.readMaskArray("TMR", t.PadPixelMaskRecordLength, entries); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// readMaskArray reads entries big-endian offsets, never more than the
// stream still holds. When it ends early a MaskTableSizeMismatchError is
// recorded and the missing entries read as zero, unless the computed size
// is too large to allocate, in which case the array is left short.
func (fr *fieldReader) readMaskArray(table string, recordLen uint16, entries int) ([]uint32, error) {
	if recordLen != 0 && recordLen != maskRecordLen {
		fr.warn(&MaskTableSizeMismatchError{
			Table:        table,
			RecordLength: recordLen,
			Expected:     entries,
			Read:         entries,
		})
	}

	avail, err := fr.remaining()
	if err != nil {
		return nil, err
	}
	n := entries
	if fit := avail / maskRecordLen; int64(n) > fit {
		n = int(fit)
	}

	masks := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		v, err := fr.readUint32BE(table)
		if err != nil {
			var tse *TruncatedStreamError
			if !errors.As(err, &tse) {
				return nil, err
			}
			break
		}
		masks = append(masks, v)
	}
	if len(masks) < entries {
		fr.warn(&MaskTableSizeMismatchError{
			Table:        table,
			RecordLength: recordLen,
			Expected:     entries,
			Read:         len(masks),
		})
		// Missing records read as 0 when the geometry is small enough to
		// hold them. Beyond that, lookups past the slice return NoBlock.
		if entries <= maxChunkSize/maskRecordLen {
			masks = append(masks, make([]uint32, entries-len(masks))...)
		}
	}
	return masks, nil
}

// minInt returns the smaller of x or y.
func minInt(a, b int) int {
	if a <= b {
		return a
	}
	return b
}

// maskIndex returns the position of (block, band) in a mask array, or -1.
func maskIndex(mode byte, blocksPerBand, bands, block, band int) int {
	if block < 0 || block >= blocksPerBand {
		return -1
	}
	if mode != ModeSequential {
		return block
	}
	if band < 0 || band >= bands {
		return -1
	}
	return band*blocksPerBand + block
}
