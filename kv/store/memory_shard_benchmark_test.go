package store

import (
	"fmt"
	"testing"
)

// BenchmarkShardHashXXHash benchmarks the xxhash shard hash.
func BenchmarkShardHashXXHash(b *testing.B) {
	benchmarkShardHash(b, xxhashShardHash)
}

// BenchmarkShardHashFNV benchmarks the fnv shard hash.
func BenchmarkShardHashFNV(b *testing.B) {
	benchmarkShardHash(b, fnvShardHash)
}

// benchmarkShardHash benchmarks the shard hash.
func benchmarkShardHash(b *testing.B, fn shardHashFunc) {
	b.Helper()

	var sink uint64

	b.ReportAllocs()
	b.ResetTimer()

	// Keys are generated on demand to keep memory usage flat.
	for i := range b.N {
		key := fmt.Appendf(nil, "bench-key-%04d-%08d", i, i*i)
		sink += fn(key)
	}

	_ = sink
}
