// Package nitf decodes the structural metadata of NITF 2.0/2.1 (and NSIF
// 1.0) files: the file header, image subheaders, tagged record extensions,
// band lookup tables, and the block mask and VQ tables that give random
// access to blocked image data.
//
// Pixels are never decoded. Parsers read left to right from an
// io.ReadSeeker and produce read-only records along with the offsets a
// block decoder needs:
//
//	f, err := nitf.ReadFile(r, nil)
//	for _, img := range f.Images {
//		offset := img.DataOffset + int64(img.BlockMaskOffset(0, 0))
//		...
//	}
//
// Tag payloads are located but not copied; decode them on demand with a
// Registry.
package nitf
