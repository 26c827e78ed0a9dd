package nitf

import (
	"fmt"
)

// VQHeader is the vector quantization compression header preceding C4/M4
// image data. It describes the lookup tables (codebooks) the block decoder
// needs; the tables themselves are kept as raw bytes.
type VQHeader struct {
	ImageRows                     uint32 // Number of image rows.
	CodesPerRow                   uint32 // Number of image codes per row.
	CodeBitLength                 uint8
	AlgorithmID                   uint16
	LookupOffsetRecords           uint16
	ParameterOffsetRecords        uint16
	LookupOffsetTableOffset       uint32
	LookupTableOffsetRecordLength uint16
	Tables                        []VQTable // Only filled for algorithm 1.
}

// VQTable is one compression lookup table.
type VQTable struct {
	ID              uint16
	Records         uint32
	ValuesPerRecord uint16
	ValueBitLength  uint16
	Offset          uint32
	Data            []byte
}

// PayloadLength returns the size in bytes of the table data.
func (t VQTable) PayloadLength() uint64 {
	bits := uint64(t.Records) * uint64(t.ValuesPerRecord) * uint64(t.ValueBitLength)
	return (bits + 7) / 8
}

// readVQHeader reads the VQ header. The offset records and the tables are
// always consumed so the cursor ends after them, but they are only kept
// when the algorithm is the NITF one.
func (fr *fieldReader) readVQHeader() (*VQHeader, error) {
	fr.enter("vqHeader", -1)

	h := &VQHeader{}
	var err error
	if h.ImageRows, err = fr.readUint32BE("NUMBER_OF_IMAGE_ROWS"); err != nil {
		return nil, err
	}
	if h.CodesPerRow, err = fr.readUint32BE("NUMBER_OF_CODES_PER_ROW"); err != nil {
		return nil, err
	}
	if h.CodeBitLength, err = fr.readUint8("IMAGE_CODE_BIT_LENGTH"); err != nil {
		return nil, err
	}
	if h.AlgorithmID, err = fr.readUint16BE("COMPRESSION_ALGORITHM_ID"); err != nil {
		return nil, err
	}
	if h.LookupOffsetRecords, err = fr.readUint16BE("NUMBER_OF_LOOKUP_OFFSET_RECORDS"); err != nil {
		return nil, err
	}
	if h.ParameterOffsetRecords, err = fr.readUint16BE("NUMBER_OF_PARAMETER_OFFSET_RECORDS"); err != nil {
		return nil, err
	}
	if h.LookupOffsetTableOffset, err = fr.readUint32BE("LOOKUP_OFFSET_TABLE_OFFSET"); err != nil {
		return nil, err
	}
	if h.LookupTableOffsetRecordLength, err = fr.readUint16BE("LOOKUP_TABLE_OFFSET_RECORD_LENGTH"); err != nil {
		return nil, err
	}

	if h.LookupOffsetRecords == 0 {
		return h, nil
	}

	tables := make([]VQTable, h.LookupOffsetRecords)
	for i := range tables {
		fr.enter("vqLookupOffsetRecords", i)
		t := &tables[i]
		if t.ID, err = fr.readUint16BE("TABLE_ID"); err != nil {
			return nil, err
		}
		if t.Records, err = fr.readUint32BE("NUMBER_OF_LOOKUP_RECORDS"); err != nil {
			return nil, err
		}
		if t.ValuesPerRecord, err = fr.readUint16BE("NUMBER_OF_VALUES_PER_RECORD"); err != nil {
			return nil, err
		}
		if t.ValueBitLength, err = fr.readUint16BE("VALUE_BIT_LENGTH"); err != nil {
			return nil, err
		}
		if t.Offset, err = fr.readUint32BE("TABLE_OFFSET"); err != nil {
			return nil, err
		}
	}

	keep := h.AlgorithmID == vqAlgorithmNITF
	for i := range tables {
		fr.enter("vqLookupTables", i)
		field := fmt.Sprintf("LOOKUP_TABLE_%d", tables[i].ID)
		n := tables[i].PayloadLength()
		if !keep {
			if err = fr.skip(field, int64(n)); err != nil {
				return nil, err
			}
			continue
		}
		if tables[i].Data, err = fr.readBytes(field, n); err != nil {
			return nil, err
		}
	}
	if keep {
		h.Tables = tables
	}
	return h, nil
}
