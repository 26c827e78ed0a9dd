package nitf

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBand(t *testing.T) {
	p := newBuilder().
		str("LU", 2).str("", 6).str("N", 1).str("", 3).
		num(2, 1).num(3, 5).
		raw([]byte{1, 2, 3}).raw([]byte{4, 5, 6}).
		str("NEXT", 4).
		Bytes()
	fr := newTestReader(t, p, nil)

	b, err := fr.readBand(0)
	require.NoError(t, err)
	assert.Equal(t, "LU", b.Representation)
	assert.Equal(t, "N", b.FilterCondition)
	require.Len(t, b.LUTs, 2)
	assert.Equal(t, LUT{Entries: 3, Data: []byte{1, 2, 3}}, b.LUTs[0])
	assert.Equal(t, LUT{Entries: 3, Data: []byte{4, 5, 6}}, b.LUTs[1])
	assert.Equal(t, int64(len(p)-4), fr.pos())
}

func TestReadBandWithoutLUT(t *testing.T) {
	p := newBuilder().str("M", 2).str("", 6).str("N", 1).str("", 3).num(0, 1).str("NEXT", 4).Bytes()
	fr := newTestReader(t, p, nil)

	b, err := fr.readBand(0)
	require.NoError(t, err)
	assert.Empty(t, b.LUTs)
	assert.Equal(t, int64(13), fr.pos())
}

func TestReadBandTooManyLUTs(t *testing.T) {
	p := newBuilder().str("M", 2).str("", 6).str("N", 1).str("", 3).num(5, 1).num(1, 5).Bytes()
	fr := newTestReader(t, p, nil)

	_, err := fr.readBand(0)
	var mfe *MalformedFieldError
	require.True(t, errors.As(err, &mfe))
	assert.Equal(t, "NLUTS", mfe.Field)
}

func TestReadBandTruncatedLUT(t *testing.T) {
	p := newBuilder().str("M", 2).str("", 6).str("N", 1).str("", 3).num(1, 1).num(256, 5).raw(make([]byte, 10)).Bytes()
	fr := newTestReader(t, p, nil)

	_, err := fr.readBand(3)
	var tse *TruncatedStreamError
	require.True(t, errors.As(err, &tse))
	assert.Equal(t, "bands", tse.Context)
	assert.Equal(t, 3, tse.Index)
	assert.Equal(t, "LUTD1", tse.Field)
}
