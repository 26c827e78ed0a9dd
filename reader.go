package nitf

// Resources:
// MIL-STD-2500A (NITF 2.0) and MIL-STD-2500C (NITF 2.1), Tables A-1/A-3.
// MIL-STD-2411 (RPF) for the VQ compression header and mask tables.

import (
	"encoding/binary"
	"io"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const maxChunkSize = 10 << 20 // 10M

// fieldReader extracts fixed-width fields from a stream, tracking the
// absolute offset and the group being read for error reporting.
// It holds no state besides the cursor and the diagnostics of the header
// being built, so one reader per stream handle is all the locking needed.
type fieldReader struct {
	r       io.ReadSeeker
	start   int64 // Offset of the header start.
	off     int64 // Current offset.
	record  string
	context string
	index   int

	strict   bool
	text     *encoding.Decoder
	log      *log.Entry
	warnings *multierror.Error
}

func newFieldReader(r io.ReadSeeker, record string, opts *Options) (*fieldReader, error) {
	off, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errors.Wrap(err, "nitf: could not get stream position")
	}
	return &fieldReader{
		r:      r,
		start:  off,
		off:    off,
		record: record,
		index:  -1,
		strict: opts.strict(),
		text:   charmap.ISO8859_1.NewDecoder(),
		log:    opts.logger().WithField("record", record),
	}, nil
}

// enter sets the group reported by errors raised until the next call.
func (fr *fieldReader) enter(context string, index int) {
	fr.context = context
	fr.index = index
}

func (fr *fieldReader) pos() int64 {
	return fr.off
}

func (fr *fieldReader) consumed() int64 {
	return fr.off - fr.start
}

func (fr *fieldReader) truncated(field string, at int64, err error) error {
	return &TruncatedStreamError{
		Record:  fr.record,
		Context: fr.context,
		Field:   field,
		Index:   fr.index,
		Offset:  at,
		Err:     err,
	}
}

func (fr *fieldReader) malformed(field string, raw []byte, at int64, reason string) *MalformedFieldError {
	return &MalformedFieldError{
		Record: fr.record,
		Field:  field,
		Raw:    raw,
		Offset: at,
		Reason: reason,
	}
}

// warn records a non-fatal diagnostic for the header being parsed.
func (fr *fieldReader) warn(err error) {
	fr.warnings = multierror.Append(fr.warnings, err)
	fr.log.WithFields(log.Fields{
		"context": fr.context,
		"offset":  fr.off,
	}).WithError(err).Warn("degraded header field")
}

func (fr *fieldReader) warningsOrNil() error {
	return fr.warnings.ErrorOrNil()
}

// readFixed reads exactly n bytes.
func (fr *fieldReader) readFixed(field string, n int) ([]byte, error) {
	at := fr.off
	p := make([]byte, n)
	m, err := io.ReadFull(fr.r, p)
	fr.off += int64(m)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fr.truncated(field, at, err)
		}
		return nil, errors.Wrapf(err, "nitf: reading %s", field)
	}
	return p, nil
}

// readBytes reads n bytes whose size comes from untrusted data, without
// allocating the whole slice ahead of time when it is large.
func (fr *fieldReader) readBytes(field string, n uint64) ([]byte, error) {
	if n < maxChunkSize {
		return fr.readFixed(field, int(n))
	}

	var p []byte
	for n > 0 {
		next := n
		if next > maxChunkSize {
			next = maxChunkSize
		}
		chunk, err := fr.readFixed(field, int(next))
		if err != nil {
			return nil, err
		}
		p = append(p, chunk...)
		n -= next
	}
	return p, nil
}

// readString reads an n-byte text field, decoded from ISO 8859-1, without
// its trailing padding.
func (fr *fieldReader) readString(field string, n int) (string, error) {
	raw, err := fr.readFixed(field, n)
	if err != nil {
		return "", err
	}
	return fr.decodeText(raw), nil
}

func (fr *fieldReader) decodeText(raw []byte) string {
	s, err := fr.text.Bytes(raw)
	if err != nil {
		s = raw
	}
	return strings.TrimRight(string(s), " \x00")
}

// readASCIIInt reads an n-byte unsigned base-10 field. Surrounding spaces
// are ignored and a blank field reads as 0.
func (fr *fieldReader) readASCIIInt(field string, n int) (int64, error) {
	at := fr.off
	raw, err := fr.readFixed(field, n)
	if err != nil {
		return 0, err
	}
	v, ok := parseASCIIInt(raw)
	if !ok {
		return 0, fr.malformed(field, raw, at, "not a base-10 integer")
	}
	return v, nil
}

// readOptionalInt behaves like readASCIIInt but replaces a malformed value
// with def, unless the reader is strict. Truncation is always fatal.
func (fr *fieldReader) readOptionalInt(field string, n int, def int64) (int64, error) {
	v, err := fr.readASCIIInt(field, n)
	if err == nil {
		return v, nil
	}
	var mfe *MalformedFieldError
	if fr.strict || !errors.As(err, &mfe) {
		return 0, err
	}
	fr.warn(mfe)
	return def, nil
}

// parseASCIIInt parses an unsigned base-10 field. Signs and any other
// non-digit residue are rejected.
func parseASCIIInt(raw []byte) (int64, bool) {
	s := strings.Trim(string(raw), " \x00")
	if s == "" {
		return 0, true
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}

func (fr *fieldReader) readUint8(field string) (uint8, error) {
	p, err := fr.readFixed(field, 1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// readUint16BE reads a big-endian 16-bit field in host order.
func (fr *fieldReader) readUint16BE(field string) (uint16, error) {
	p, err := fr.readFixed(field, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(p), nil
}

// readUint32BE reads a big-endian 32-bit field in host order.
func (fr *fieldReader) readUint32BE(field string) (uint32, error) {
	p, err := fr.readFixed(field, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(p), nil
}

// skip consumes n header bytes, failing if the stream ends before.
func (fr *fieldReader) skip(field string, n int64) error {
	if n <= 0 {
		return nil
	}
	at := fr.off
	m, err := io.CopyN(io.Discard, fr.r, n)
	fr.off += m
	if err != nil {
		if err == io.EOF {
			return fr.truncated(field, at, io.ErrUnexpectedEOF)
		}
		return errors.Wrapf(err, "nitf: skipping %s", field)
	}
	return nil
}

// remaining returns the number of bytes between the cursor and the end of
// the stream.
func (fr *fieldReader) remaining() (int64, error) {
	end, err := fr.r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, errors.Wrap(err, "nitf: could not get stream size")
	}
	if _, err = fr.r.Seek(fr.off, io.SeekStart); err != nil {
		return 0, errors.Wrapf(err, "nitf: seeking to offset %d", fr.off)
	}
	if end < fr.off {
		return 0, nil
	}
	return end - fr.off, nil
}

// seek moves the cursor to an absolute offset without reading, used for
// padding that does not belong to the header itself.
func (fr *fieldReader) seek(off int64) error {
	n, err := fr.r.Seek(off, io.SeekStart)
	if err != nil {
		return errors.Wrapf(err, "nitf: seeking to offset %d", off)
	}
	fr.off = n
	return nil
}
