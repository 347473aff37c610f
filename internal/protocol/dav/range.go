package dav

import (
	"regexp"
	"strconv"

	"github.com/wantpinow/sandboxdav/pkg/blob"
)

var rangePattern = regexp.MustCompile(`^bytes=(\d*)-(\d*)$`)

// parseRange interprets a Range header against a known entity size and
// returns the inclusive byte range to read, or nil when the whole entity
// should be served.
//
// Malformed or unsatisfiable ranges (start past the end of the entity,
// start greater than end, unparseable syntax) fall back to a full read
// instead of an error; compatibility with sloppy clients matters more here
// than strict range semantics. The end offset is clamped to size-1.
func parseRange(header string, size int64) *blob.ByteRange {
	if header == "" {
		return nil
	}

	m := rangePattern.FindStringSubmatch(header)
	if m == nil {
		return nil
	}
	startStr, endStr := m[1], m[2]

	var start, end int64
	switch {
	case startStr == "" && endStr != "":
		// Suffix range: bytes=-500 means the last 500 bytes.
		suffix, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return nil
		}
		start = size - suffix
		if start < 0 {
			start = 0
		}
		end = size - 1
	case endStr == "" && startStr != "":
		// Open-ended: bytes=500- reads to the end.
		var err error
		start, err = strconv.ParseInt(startStr, 10, 64)
		if err != nil {
			return nil
		}
		end = size - 1
	case startStr != "" && endStr != "":
		var err error
		start, err = strconv.ParseInt(startStr, 10, 64)
		if err != nil {
			return nil
		}
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return nil
		}
	default:
		// "bytes=-" carries no offsets at all.
		return nil
	}

	if start > end || start >= size {
		return nil
	}
	if end > size-1 {
		end = size - 1
	}
	return &blob.ByteRange{Start: start, End: end}
}
