package nitf

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// TagSource tells which header window a tag was read from.
type TagSource int

const (
	UserDefinedData    TagSource = iota // UDHD in file headers, UDID in image subheaders.
	ExtendedHeaderData                  // XHD in file headers, IXSHD in image subheaders.
)

func (s TagSource) String() string {
	switch s {
	case UserDefinedData:
		return "UDID"
	case ExtendedHeaderData:
		return "IXSHD"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Tag locates a tagged record extension (TRE). The payload is not copied;
// use Payload or a Registry to get at it.
type Tag struct {
	Name          string // CETAG, trimmed.
	Length        int    // CEL, the declared payload length.
	HeaderOffset  int64  // Absolute offset of the tag name.
	PayloadOffset int64  // Absolute offset of the payload.
	Source        TagSource
	Malformed     bool // The name or length could not be read; Length is 0 when unknown.
}

// TotalLength returns the tag length including its 11-byte header.
func (t Tag) TotalLength() int {
	return t.Length + tagHeaderLen
}

// Location returns the payload offset and length.
func (t Tag) Location() (int64, int) {
	return t.PayloadOffset, t.Length
}

// Payload reads the payload bytes from r.
func (t Tag) Payload(r io.ReaderAt) ([]byte, error) {
	p := make([]byte, t.Length)
	if _, err := r.ReadAt(p, t.PayloadOffset); err != nil {
		return nil, errors.Wrapf(err, "nitf: could not read %s payload", t.Name)
	}
	return p, nil
}

// String implements Stringer.
func (t Tag) String() string {
	return fmt.Sprintf("%s: %d bytes at %d (%s)", t.Name, t.Length, t.PayloadOffset, t.Source)
}

// TagList is an ordered list of tags as found in a header.
type TagList []Tag

// Find returns the first tag named name.
func (l TagList) Find(name string) (Tag, bool) {
	for _, t := range l {
		if t.Name == name {
			return t, true
		}
	}
	return Tag{}, false
}

// FindAll returns every tag named name, in header order.
func (l TagList) FindAll(name string) TagList {
	var found TagList
	for _, t := range l {
		if t.Name == name {
			found = append(found, t)
		}
	}
	return found
}

// Names returns the tag names in header order.
func (l TagList) Names() []string {
	names := make([]string, 0, len(l))
	for _, t := range l {
		names = append(names, t.Name)
	}
	return names
}

// TotalLength returns the bytes taken by the tags, headers included.
func (l TagList) TotalLength() int {
	var n int
	for _, t := range l {
		n += t.TotalLength()
	}
	return n
}

// ParseTag reads one tag header from r and leaves r positioned at the
// start of the payload. Skipping the payload is up to the caller.
func ParseTag(r io.ReadSeeker, opts *Options) (Tag, error) {
	fr, err := newFieldReader(r, "tag", opts)
	if err != nil {
		return Tag{}, err
	}
	return fr.readTag(UserDefinedData)
}

// readTag reads the 6-byte name and the 5-byte length of a tag. A name or
// length that cannot be read yields a placeholder flagged as malformed.
func (fr *fieldReader) readTag(source TagSource) (Tag, error) {
	t := Tag{
		HeaderOffset: fr.pos(),
		Source:       source,
	}
	name, err := fr.readFixed("CETAG", tagNameLen)
	if err != nil {
		return t, err
	}
	lengthAt := fr.pos()
	length, err := fr.readFixed("CEL", tagLengthLen)
	if err != nil {
		return t, err
	}
	t.PayloadOffset = fr.pos()
	t.Name = fr.decodeText(name)

	if !isTagName(name) {
		t.Malformed = true
		fr.warn(fr.malformed("CETAG", name, t.HeaderOffset, "not a tag name"))
	}
	n, ok := parseASCIIInt(length)
	if !ok || n < 0 {
		t.Malformed = true
		fr.warn(fr.malformed("CEL", length, lengthAt, "not a tag length"))
		n = 0
	}
	t.Length = int(n)
	return t, nil
}

func isTagName(p []byte) bool {
	blank := true
	for _, b := range p {
		if b < 0x20 || b > 0x7E {
			return false
		}
		if b != ' ' {
			blank = false
		}
	}
	return !blank
}

// readTagWindow reads a length field, then, when it is not zero, the
// overflow index and as many tags as fit in the declared length. The
// declared length covers the overflow index.
func (fr *fieldReader) readTagWindow(lengthField, overflowField string, source TagSource) (length, overflow int, tags TagList, err error) {
	n, err := fr.readASCIIInt(lengthField, 5)
	if err != nil {
		return 0, 0, nil, err
	}
	if n == 0 {
		return 0, 0, nil, nil
	}
	length = int(n)

	start := fr.pos()
	end := start + n
	fr.enter(lengthField, -1)
	if n < overflowLen {
		mfe := fr.malformed(lengthField, []byte(fmt.Sprint(n)), start-5, "window too short for the overflow index")
		if fr.strict {
			return 0, 0, nil, mfe
		}
		fr.warn(mfe)
		if err = fr.skip(lengthField, n); err != nil {
			return 0, 0, nil, err
		}
		return length, 0, nil, nil
	}
	o, err := fr.readOptionalInt(overflowField, overflowLen, 0)
	if err != nil {
		return 0, 0, nil, err
	}
	overflow = int(o)

	for i := 0; fr.pos() < end; i++ {
		fr.enter(source.String()+"Tags", i)
		if remaining := end - fr.pos(); remaining < tagHeaderLen {
			fr.warn(fr.malformed(lengthField, nil, fr.pos(), fmt.Sprintf("%d trailing bytes cannot hold a tag", remaining)))
			if err = fr.skip(lengthField, remaining); err != nil {
				return 0, 0, nil, err
			}
			break
		}

		t, err := fr.readTag(source)
		if err != nil {
			return 0, 0, nil, err
		}
		payload := int64(t.Length)
		if remaining := end - fr.pos(); payload > remaining {
			fr.warn(fr.malformed("CEL", []byte(fmt.Sprint(t.Length)), t.HeaderOffset+tagNameLen,
				fmt.Sprintf("tag %s overruns its window by %d bytes", t.Name, payload-remaining)))
			t.Malformed = true
			payload = remaining
		}
		if err = fr.skip(t.Name, payload); err != nil {
			return 0, 0, nil, err
		}
		tags = append(tags, t)
	}
	return length, overflow, tags, nil
}
