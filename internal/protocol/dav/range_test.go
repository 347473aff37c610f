package dav

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wantpinow/sandboxdav/pkg/blob"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name   string
		header string
		size   int64
		want   *blob.ByteRange
	}{
		{"Empty", "", 1000, nil},
		{"Bounded", "bytes=0-499", 1000, &blob.ByteRange{Start: 0, End: 499}},
		{"Middle", "bytes=200-299", 1000, &blob.ByteRange{Start: 200, End: 299}},
		{"OpenEnded", "bytes=900-", 1000, &blob.ByteRange{Start: 900, End: 999}},
		{"Suffix", "bytes=-100", 1000, &blob.ByteRange{Start: 900, End: 999}},
		{"SuffixLargerThanEntity", "bytes=-5000", 1000, &blob.ByteRange{Start: 0, End: 999}},
		{"EndClampedToSize", "bytes=500-9999", 1000, &blob.ByteRange{Start: 500, End: 999}},
		{"SingleByte", "bytes=0-0", 1000, &blob.ByteRange{Start: 0, End: 0}},
		{"LastByte", "bytes=999-999", 1000, &blob.ByteRange{Start: 999, End: 999}},
		{"StartAtSize", "bytes=1000-", 1000, nil},
		{"StartBeyondSize", "bytes=2000-3000", 1000, nil},
		{"StartAfterEnd", "bytes=500-100", 1000, nil},
		{"NoOffsets", "bytes=-", 1000, nil},
		{"SuffixZero", "bytes=-0", 1000, nil},
		{"MissingUnit", "0-499", 1000, nil},
		{"WrongUnit", "items=0-499", 1000, nil},
		{"Garbage", "bytes=abc-def", 1000, nil},
		{"MultipleRanges", "bytes=0-1,5-9", 1000, nil},
		{"NegativeStart", "bytes=--5", 1000, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseRange(tt.header, tt.size)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseRangeLength(t *testing.T) {
	rng := parseRange("bytes=0-499", 1000)
	require.NotNil(t, rng)
	require.Equal(t, int64(500), rng.Length())

	rng = parseRange("bytes=-100", 1000)
	require.NotNil(t, rng)
	require.Equal(t, int64(100), rng.Length())
}
