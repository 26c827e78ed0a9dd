package nitf

import (
	"fmt"
)

// Band describes one image band.
type Band struct {
	Representation  string // IREPBAND
	Significance    string // ISUBCAT
	FilterCondition string // IFC
	FilterCode      string // IMFLT
	LUTs            []LUT
}

// LUT is a band lookup table. Entries are kept as raw bytes.
type LUT struct {
	Entries int // NELUT
	Data    []byte
}

// readBand reads the band descriptor at index i along with its lookup
// tables.
func (fr *fieldReader) readBand(i int) (b Band, err error) {
	fr.enter("bands", i)

	if b.Representation, err = fr.readString("IREPBAND", 2); err != nil {
		return
	}
	if b.Significance, err = fr.readString("ISUBCAT", 6); err != nil {
		return
	}
	if b.FilterCondition, err = fr.readString("IFC", 1); err != nil {
		return
	}
	if b.FilterCode, err = fr.readString("IMFLT", 3); err != nil {
		return
	}

	at := fr.pos()
	nluts, err := fr.readASCIIInt("NLUTS", 1)
	if err != nil {
		return
	}
	if nluts < 0 || nluts > maxLUTs {
		return b, fr.malformed("NLUTS", []byte(fmt.Sprint(nluts)), at, "more than 4 lookup tables")
	}
	if nluts == 0 {
		return
	}

	at = fr.pos()
	nelut, err := fr.readASCIIInt("NELUT", 5)
	if err != nil {
		return
	}
	if nelut < 0 {
		return b, fr.malformed("NELUT", []byte(fmt.Sprint(nelut)), at, "negative entry count")
	}

	b.LUTs = make([]LUT, nluts)
	for j := range b.LUTs {
		data, err := fr.readFixed(fmt.Sprintf("LUTD%d", j+1), int(nelut))
		if err != nil {
			return b, err
		}
		b.LUTs[j] = LUT{Entries: int(nelut), Data: data}
	}
	return
}
