package cache

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// bloomHashFunctions is fixed at 4 per spec.md §4.2/§6 ("4 hash functions at
// capacity = cache.max_size"). The corpus had no off-the-shelf bloom filter
// library, so this is a from-scratch fixed-k implementation (see DESIGN.md).
const bloomHashFunctions = 4

// bloomFilter is a probabilistic set used as the cache's negative-lookup
// fast path: resolve() consults it before any index probe, and a miss there
// is authoritative (false negatives are impossible, only false positives
// cause a full index probe). Add, MightContain and Reset each hold the
// filter's own mutex, so the filter is safe for concurrent use.
type bloomFilter struct {
	mu   sync.Mutex
	bits []uint64
	m    uint64 // number of bits
}

// newBloomFilter sizes the bit array to the cache's capacity, per spec. A
// capacity of 0 still gets a small usable filter so an empty/unbounded cache
// doesn't panic on first insert.
func newBloomFilter(capacity int) *bloomFilter {
	m := uint64(capacity)
	if m < 64 {
		m = 64
	}
	words := (m + 63) / 64
	return &bloomFilter{bits: make([]uint64, words), m: words * 64}
}

// positions derives bloomHashFunctions independent bit positions from two
// underlying 64-bit hashes via Kirsch–Mitzenmacher double hashing:
// h_i(x) = h1(x) + i*h2(x) mod m.
func (b *bloomFilter) positions(key string) [bloomHashFunctions]uint64 {
	h1 := xxhash.Sum64String(key)
	h2 := xxhash.Sum64(append([]byte("salt:"), []byte(key)...))

	var out [bloomHashFunctions]uint64
	for i := 0; i < bloomHashFunctions; i++ {
		out[i] = (h1 + uint64(i)*h2) % b.m
	}
	return out
}

func (b *bloomFilter) Add(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, pos := range b.positions(key) {
		b.bits[pos/64] |= 1 << (pos % 64)
	}
}

// MightContain returns false only when key is definitely absent.
func (b *bloomFilter) MightContain(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, pos := range b.positions(key) {
		if b.bits[pos/64]&(1<<(pos%64)) == 0 {
			return false
		}
	}
	return true
}

// Reset zeroes every bit, used by Cache.clear()'s full bloom-filter rebuild.
func (b *bloomFilter) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.bits {
		b.bits[i] = 0
	}
}
