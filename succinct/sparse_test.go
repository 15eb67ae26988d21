package succinct

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSparseBitsRankSelect(t *testing.T) {
	ones := []uint64{0, 17, 18, 4095, 4096}
	s, err := NewSparseBits(5000, ones)
	require.NoError(t, err)

	require.Equal(t, uint64(5000), s.Len())
	require.Equal(t, uint64(len(ones)), s.Ones())

	for k, p := range ones {
		require.True(t, s.Bit(p), "bit %d", p)
		got, err := s.Select1(uint64(k) + 1)
		require.NoError(t, err)
		require.Equal(t, p, got)
		require.Equal(t, uint64(k), s.Rank1(p))
		require.Equal(t, uint64(k)+1, s.Rank1(p+1))
	}
	require.False(t, s.Bit(1))
	_, err = s.Select1(uint64(len(ones)) + 1)
	require.Error(t, err)
}

func TestSparseBitsRejectsBadPositions(t *testing.T) {
	_, err := NewSparseBits(10, []uint64{10})
	require.Error(t, err)
	_, err = NewSparseBits(10, []uint64{5, 3})
	require.Error(t, err)
}

func TestSparseBitsCodecRoundTrip(t *testing.T) {
	ones := []uint64{2, 100, 101, 999}
	s, err := NewSparseBits(1000, ones)
	require.NoError(t, err)

	payload, err := s.MarshalBinary()
	require.NoError(t, err)

	got, err := DecodeSparseBits(payload)
	require.NoError(t, err)
	require.Equal(t, s.Len(), got.Len())
	require.Equal(t, s.Ones(), got.Ones())
	for _, p := range ones {
		require.True(t, got.Bit(p))
	}

	again, err := got.MarshalBinary()
	require.NoError(t, err)
	require.True(t, bytes.Equal(payload, again), "re-encoded payload differs")
}

func TestSparseFromBitVec(t *testing.T) {
	v := NewBitVec(300)
	for i := uint64(0); i < 300; i += 13 {
		v.Set(i)
	}
	v.Seal()
	s, err := SparseFromBitVec(v)
	require.NoError(t, err)
	require.Equal(t, v.Ones(), s.Ones())
	for i := uint64(0); i < 300; i++ {
		require.Equal(t, v.Bit(i), s.Bit(i), "bit %d", i)
	}
}

func TestBlobFraming(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBlob(&buf, 0x07, []byte("payload")))
	require.NoError(t, WriteBlob(&buf, 0x08, nil))

	p, err := ReadBlob(&buf, 0x07)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), p)

	p, err = ReadBlob(&buf, 0x08)
	require.NoError(t, err)
	require.Nil(t, p)
}

func TestBlobTagMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBlob(&buf, 0x01, []byte{1}))
	_, err := ReadBlob(&buf, 0x02)
	require.ErrorIs(t, err, ErrBadBlobTag)
}
