package nitf

import (
	"io"
	"math"
	"sync"

	"github.com/apex/log"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// File is a NITF file header along with its image subheaders.
type File struct {
	Header *FileHeader
	Images []*ImageSubheader // A nil entry is an image that failed to parse.
}

// ReadFile parses the file header of ra, then every image subheader
// concurrently, each one on its own stream handle. An image that fails to
// parse leaves a nil entry and its error is added to the returned
// *multierror.Error; the other images are not affected. A file header error
// is returned alone with a nil File.
func ReadFile(ra io.ReaderAt, opts *Options) (*File, error) {
	hdr, err := ParseFileHeader(io.NewSectionReader(ra, 0, math.MaxInt64), opts)
	if err != nil {
		return nil, err
	}

	f := &File{
		Header: hdr,
		Images: make([]*ImageSubheader, len(hdr.Images)),
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		merr *multierror.Error
	)
	for i := range hdr.Images {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			img, err := f.readImage(ra, i, opts)
			if err != nil {
				mu.Lock()
				merr = multierror.Append(merr, errors.Wrapf(err, "image %d", i))
				mu.Unlock()
				return
			}
			f.Images[i] = img
		}(i)
	}
	wg.Wait()

	return f, merr.ErrorOrNil()
}

func (f *File) readImage(ra io.ReaderAt, i int, opts *Options) (*ImageSubheader, error) {
	img, err := f.Header.ReadImageSubheader(io.NewSectionReader(ra, 0, math.MaxInt64), i, opts)
	if err != nil {
		return nil, err
	}

	seg := f.Header.Images[i]
	if img.HeaderSize != seg.SubheaderLength {
		opts.logger().WithFields(log.Fields{
			"image":    i,
			"declared": seg.SubheaderLength,
			"parsed":   img.HeaderSize,
		}).Warn("image subheader length differs from LISH")
	}
	return img, nil
}

// Image returns the i-th image subheader, or nil.
func (f *File) Image(i int) *ImageSubheader {
	if i < 0 || i >= len(f.Images) {
		return nil
	}
	return f.Images[i]
}
