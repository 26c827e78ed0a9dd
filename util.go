package nitf

import (
	"fmt"
)

// A FormatError reports that the input is not a valid NITF stream.
type FormatError string

func (e FormatError) Error() string {
	return fmt.Sprintf("nitf: invalid format: %s", string(e))
}

// An UnsupportedError reports that the input uses a valid but
// unimplemented feature.
type UnsupportedError string

func (e UnsupportedError) Error() string {
	return fmt.Sprintf("nitf: unsupported feature: %s", string(e))
}

// A TruncatedStreamError reports that required header bytes are missing.
// It aborts the parse of the enclosing header only.
type TruncatedStreamError struct {
	Record  string // "file header", "image subheader"...
	Context string // Group being read, e.g. "imageInfoRecords".
	Field   string // Field mnemonic, e.g. "LISH".
	Index   int    // Loop index inside Context, -1 outside of a loop.
	Offset  int64  // Absolute offset of the field.
	Err     error
}

func (e *TruncatedStreamError) Error() string {
	where := e.Context
	if e.Index >= 0 {
		where = fmt.Sprintf("%s[%d]", e.Context, e.Index)
	}
	return fmt.Sprintf("nitf: truncated %s: %s: field %s at offset %d", e.Record, where, e.Field, e.Offset)
}

func (e *TruncatedStreamError) Unwrap() error {
	return e.Err
}

// A MalformedFieldError reports an ASCII field whose content cannot be
// interpreted. It is fatal only for fields without a documented default.
type MalformedFieldError struct {
	Record string
	Field  string
	Raw    []byte
	Offset int64
	Reason string
}

func (e *MalformedFieldError) Error() string {
	msg := fmt.Sprintf("nitf: malformed %s field %s at offset %d: %q", e.Record, e.Field, e.Offset, e.Raw)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// An UnsupportedCompressionAlgorithmError reports a VQ compression header
// whose algorithm is not handled. It is never fatal: the header is dropped
// once its bytes have been consumed.
type UnsupportedCompressionAlgorithmError struct {
	AlgorithmID uint16
	Offset      int64
}

func (e *UnsupportedCompressionAlgorithmError) Error() string {
	return fmt.Sprintf("nitf: unsupported VQ compression algorithm %d at offset %d", e.AlgorithmID, e.Offset)
}

// A MaskTableSizeMismatchError reports a block or pad pixel mask table whose
// declared sizes disagree with the image geometry or with the bytes actually
// available. The table is still allocated at the computed size.
type MaskTableSizeMismatchError struct {
	Table        string // "BMR" or "TMR".
	RecordLength uint16 // Declared record length.
	Expected     int    // Entries computed from the image geometry.
	Read         int    // Entries actually read.
}

func (e *MaskTableSizeMismatchError) Error() string {
	return fmt.Sprintf("nitf: %s mask table mismatch: record length %d, %d entries expected, %d read",
		e.Table, e.RecordLength, e.Expected, e.Read)
}
