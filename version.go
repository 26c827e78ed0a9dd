package nitf

import (
	"strings"
)

// Version identifies the header layout of a NITF stream.
type Version int

const (
	VersionUnknown Version = iota
	V20                    // NITF 2.0 (MIL-STD-2500A).
	V21                    // NITF 2.1 and NSIF 1.0 (MIL-STD-2500B/C).
)

func (v Version) String() string {
	switch v {
	case V20:
		return "NITF02.00"
	case V21:
		return "NITF02.10"
	default:
		return "unknown"
	}
}

// parseVersion maps the 9-byte FHDR+FVER value onto a Version.
func parseVersion(fhdr string) (Version, error) {
	switch strings.TrimSpace(fhdr) {
	case fhdrNITF + "02.00":
		return V20, nil
	case fhdrNITF + "02.10", fhdrNSIF + "01.00":
		return V21, nil
	}
	if strings.HasPrefix(fhdr, fhdrNITF) || strings.HasPrefix(fhdr, fhdrNSIF) {
		return VersionUnknown, UnsupportedError("file version " + fhdr)
	}
	return VersionUnknown, FormatError("missing NITF signature")
}

// fieldSpec describes one fixed-width ASCII field. A gated field is present
// only when the already read field named gate holds gateValue.
type fieldSpec struct {
	name      string
	width     int
	gate      string
	gateValue string
}

// segmentLayout describes one entry of the file header segment tables.
type segmentLayout struct {
	kind         SegmentKind
	count        string
	subheader    string
	data         string
	subheaderLen int
	dataLen      int
	context      string
	countOnly    bool // NUMX: a count without length records.
}

// layout gathers everything that differs between header versions. One
// sequential reader walks these tables for every version.
type layout struct {
	security          []fieldSpec
	backgroundColor   bool // FBKGC follows ENCRYP.
	originatorNameLen int
	segments          []segmentLayout
	noCoordinates     string // ICORDS value meaning IGEOLO is absent.
	extendedBands     bool   // NBANDS == 0 is followed by XBANDS.
}

var layouts = map[Version]*layout{
	V20: {
		security: []fieldSpec{
			{name: "CLAS", width: 1},
			{name: "CODE", width: 40},
			{name: "CTLH", width: 40},
			{name: "REL", width: 40},
			{name: "CAUT", width: 20},
			{name: "CTLN", width: 20},
			{name: "DWNG", width: 6},
			{name: "DEVT", width: downgradeEventLen, gate: "DWNG", gateValue: downgradeSentinel},
		},
		originatorNameLen: 27,
		segments: []segmentLayout{
			{kind: SegmentImage, count: "NUMI", subheader: "LISH", data: "LI", subheaderLen: 6, dataLen: 10, context: "imageInfoRecords"},
			{kind: SegmentSymbol, count: "NUMS", subheader: "LSSH", data: "LS", subheaderLen: 4, dataLen: 6, context: "symbolInfoRecords"},
			{kind: SegmentLabel, count: "NUML", subheader: "LLSH", data: "LL", subheaderLen: 4, dataLen: 3, context: "labelInfoRecords"},
			{kind: SegmentText, count: "NUMT", subheader: "LTSH", data: "LT", subheaderLen: 4, dataLen: 5, context: "textInfoRecords"},
			{kind: SegmentDataExtension, count: "NUMDES", subheader: "LDSH", data: "LD", subheaderLen: 4, dataLen: 9, context: "dataExtSegInfoRecords"},
			{kind: SegmentReservedExtension, count: "NUMRES", subheader: "LRSH", data: "LR", subheaderLen: 4, dataLen: 7, context: "resExtSegInfoRecords"},
		},
		noCoordinates: "N",
	},
	V21: {
		security: []fieldSpec{
			{name: "CLAS", width: 1},
			{name: "CLSY", width: 2},
			{name: "CODE", width: 11},
			{name: "CTLH", width: 2},
			{name: "REL", width: 20},
			{name: "DCTP", width: 2},
			{name: "DCDT", width: 8},
			{name: "DCXM", width: 4},
			{name: "DG", width: 1},
			{name: "DGDT", width: 8},
			{name: "CLTX", width: 43},
			{name: "CATP", width: 1},
			{name: "CAUT", width: 40},
			{name: "CRSN", width: 1},
			{name: "SRDT", width: 8},
			{name: "CTLN", width: 15},
		},
		backgroundColor:   true,
		originatorNameLen: 24,
		segments: []segmentLayout{
			{kind: SegmentImage, count: "NUMI", subheader: "LISH", data: "LI", subheaderLen: 6, dataLen: 10, context: "imageInfoRecords"},
			{kind: SegmentSymbol, count: "NUMS", subheader: "LSSH", data: "LS", subheaderLen: 4, dataLen: 6, context: "graphicInfoRecords"},
			{count: "NUMX", context: "reservedInfoRecords", countOnly: true},
			{kind: SegmentText, count: "NUMT", subheader: "LTSH", data: "LT", subheaderLen: 4, dataLen: 5, context: "textInfoRecords"},
			{kind: SegmentDataExtension, count: "NUMDES", subheader: "LDSH", data: "LD", subheaderLen: 4, dataLen: 9, context: "dataExtSegInfoRecords"},
			{kind: SegmentReservedExtension, count: "NUMRES", subheader: "LRESH", data: "LRE", subheaderLen: 4, dataLen: 7, context: "resExtSegInfoRecords"},
		},
		noCoordinates: " ",
		extendedBands: true,
	},
}

func layoutOf(v Version) (*layout, error) {
	l, ok := layouts[v]
	if !ok {
		return nil, UnsupportedError("header version " + v.String())
	}
	return l, nil
}
