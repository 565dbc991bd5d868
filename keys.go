package kvbag

import "github.com/unkn0wn-root/kvbag/internal/util"

// MaxKeyLength is the byte budget MakeKeyInternal keeps keys within.
const MaxKeyLength = util.MaxKeyLength

// MakeKeyInternal builds a store key from a keyspace and ordered segments.
// The result is identical across every backend sharing the keyspace:
//   - keyspace + ":" + segments joined by ":" when it fits in MaxKeyLength;
//   - a segment that overflows the remaining budget (while the budget still
//     exceeds 33 bytes) becomes "#" + lowercase hex md5(segment);
//   - if the budget is still exceeded, keyspace + ":BagOStuff-long-key:##" +
//     md5 of the original segments joined by ":".
func MakeKeyInternal(keyspace string, segments ...string) string {
	return util.MakeKey(keyspace, segments)
}
