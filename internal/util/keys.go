package util

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

const (
	// MaxKeyLength leaves headroom for outer-layer prefixes within a native
	// 150-byte limit.
	MaxKeyLength = 125
	// hashedSegmentLen is '#' plus 32 hex chars of MD5.
	hashedSegmentLen = 33

	longKeyMarker = ":BagOStuff-long-key:##"
)

// MakeKey joins keyspace and segments with ':' while keeping the result within
// MaxKeyLength bytes. Segments that would overflow the remaining budget are
// replaced by "#"+md5 while the budget still fits a digest. If the budget is
// exhausted anyway, the whole key collapses to keyspace + marker + md5 of the
// original segments. Lengths are byte lengths.
func MakeKey(keyspace string, segments []string) string {
	charsLeft := MaxKeyLength - len(keyspace) - len(segments)

	shaped := make([]string, len(segments))
	for i, seg := range segments {
		if charsLeft > hashedSegmentLen && len(seg) > charsLeft {
			seg = "#" + md5Hex(seg)
		}
		charsLeft -= len(seg)
		shaped[i] = seg
	}

	if charsLeft < 0 {
		return keyspace + longKeyMarker + md5Hex(strings.Join(segments, ":"))
	}
	return keyspace + ":" + strings.Join(shaped, ":")
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
