// Package kvbag adapts a native key-value store into a small, generic cache
// API with compare-and-swap and atomic increments emulated under a per-key
// FIFO lock.
//
// Components:
//   - provider.Store: byte store with per-entry TTL, add-if-absent and TTL
//     info (memory, Ristretto, BigCache, Redis, bbolt).
//   - provider.Locker: advisory per-key lock. The default is lock.Table, an
//     in-process FIFO lock table; provider/redis ships a distributed one.
//   - Codec[V]: (de)serializes V <-> []byte.
//   - MergePolicy[V]: bounded read-modify-CAS retry loop used by Merge.
//
// Keys:
//
//	<keyspace>:<seg>:<seg>...             - MakeKey / MakeKeyInternal
//	<keyspace>:<seg>:#<md5(seg)>          - a segment that overflowed the budget
//	<keyspace>:BagOStuff-long-key:##<md5> - the whole key overflowed
//
// CAS pattern:
//
//	v, tok, ok := bag.GetWithToken(ctx, k) // tok is the raw stored bytes
//	v = update(v)
//	if !bag.CompareAndSwap(ctx, tok, k, v, ttl) {
//		// lost the race: re-read and retry, or use Merge
//	}
//
// Every operation is best-effort. Misses, lost races and store failures are
// reported as ok=false and never as errors; callers fall back to their source
// of truth.
package kvbag
