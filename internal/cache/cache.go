// Package cache implements the symbol resolution cache from spec.md §4.2: a
// multi-index, LRU-evicting, bloom-filter-accelerated in-memory store of
// Symbols, used as a read-side accelerator over the persistence backend.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/polyglotdex/polyglotdex/pkg/models"
)

// CachedSymbol is the cache's resident record: a projection of the
// persisted models.Symbol plus access bookkeeping and materialized
// adjacency lists. Adjacency is mutated only through Cache.AddRelationship,
// per spec.md §9's "reference cycles" redesign note — symbols never embed
// pointers to each other, only integer IDs.
type CachedSymbol struct {
	models.Symbol

	LastAccessed time.Time
	AccessCount  int64

	Callers       []int64
	Callees       []int64
	InheritsFrom  []int64
	InheritedBy   []int64
	Uses          []int64
	UsedBy        []int64
}

// Stats tracks cumulative cache activity. Each lookup (GetByID,
// GetByQualifiedName, GetByFile, GetByNamespace, Resolve) adds exactly one
// hit or miss, each inserted symbol adds an update, and each evicted symbol
// adds an eviction. Callers, Callees, Inheritance, AddRelationship and
// ClearFile do not change the statistics; Clear resets them to zero.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Updates   int64
}

// ResolutionContext is the query-time environment resolve() consults: the
// file and namespace the reference appears in, the namespaces it imports,
// and any local type aliases.
type ResolutionContext struct {
	CurrentFile      string
	CurrentNamespace string // empty means "no enclosing namespace"
	ImportedNamespaces []string
	TypeAliases      map[string]string
}

// RelationshipKind is the cache-graph-only subset of models.RelationshipType
// that AddRelationship maintains adjacency lists for.
type RelationshipKind string

const (
	RelCalls    RelationshipKind = "calls"
	RelInherits RelationshipKind = "inherits"
	RelUses     RelationshipKind = "uses"
)

// Cache is the symbol resolution cache. All exported methods are safe for
// concurrent use. Stats, Len, Callers, Callees and Inheritance take a shared
// (RLock) lock. Writes (Add, AddBatch, AddRelationship, ClearFile, Clear)
// take the exclusive lock, and so do the lookups (GetByID,
// GetByQualifiedName, GetByFile, GetByNamespace, Resolve), because they
// update access bookkeeping and statistics; concurrent lookups therefore
// run one at a time.
type Cache struct {
	mu sync.RWMutex

	maxSize int

	bySymbolID      map[int64]*CachedSymbol
	byName          map[string][]int64
	byQualifiedName map[string]int64
	byFile          map[string][]int64
	byNamespace     map[string][]int64

	namesBloom *bloomFilter
	qnBloom    *bloomFilter

	stats Stats
}

// New creates a cache with the given maximum resident-symbol count. A
// maxSize <= 0 is treated as unbounded (eviction never triggers).
func New(maxSize int) *Cache {
	return &Cache{
		maxSize:         maxSize,
		bySymbolID:      make(map[int64]*CachedSymbol),
		byName:          make(map[string][]int64),
		byQualifiedName: make(map[string]int64),
		byFile:          make(map[string][]int64),
		byNamespace:     make(map[string][]int64),
		namesBloom:      newBloomFilter(maxSize),
		qnBloom:         newBloomFilter(maxSize),
	}
}

// Stats returns a snapshot of the cache's cumulative statistics.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Len returns the number of resident symbols.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bySymbolID)
}

// Add inserts or replaces a symbol. If a symbol with the same ID already
// resides in the cache, its old index entries are removed first and its
// AccessCount is preserved across the replacement (spec.md §4.2, and the
// "access_count biases against evicting hot symbols" policy from §9, which
// this implementation keeps as-is).
func (c *Cache) Add(sym models.Symbol) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addLocked(sym)
	c.evictIfNeededLocked()
}

// AddBatch inserts or replaces many symbols, pre-computing the eviction
// count once instead of once per symbol, per spec.md §4.2.
func (c *Cache) AddBatch(symbols []models.Symbol) {
	if len(symbols) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sym := range symbols {
		c.addLocked(sym)
	}
	c.evictIfNeededLocked()
}

func (c *Cache) addLocked(sym models.Symbol) {
	var preservedAccessCount int64
	if existing, ok := c.bySymbolID[sym.ID]; ok {
		preservedAccessCount = existing.AccessCount
		c.removeIndexEntriesLocked(existing)
	}

	cs := &CachedSymbol{
		Symbol:       sym,
		LastAccessed: time.Now(),
		AccessCount:  preservedAccessCount,
	}
	c.bySymbolID[sym.ID] = cs

	c.byName[sym.Name] = append(c.byName[sym.Name], sym.ID)
	if sym.QualifiedName != "" {
		c.byQualifiedName[sym.QualifiedName] = sym.ID
		c.qnBloom.Add(sym.QualifiedName)
	}
	c.byFile[sym.FilePath] = append(c.byFile[sym.FilePath], sym.ID)
	if sym.Namespace != "" {
		c.byNamespace[sym.Namespace] = append(c.byNamespace[sym.Namespace], sym.ID)
	}
	c.namesBloom.Add(sym.Name)

	c.stats.Updates++
}

// removeIndexEntriesLocked strips every index entry for an existing cached
// symbol, used both by Add's replace path and by ClearFile. It does not
// touch bloom filters: per spec.md §4.2, bloom filters are NOT rebuilt on
// removal, since a stale positive only costs an extra index probe.
func (c *Cache) removeIndexEntriesLocked(cs *CachedSymbol) {
	delete(c.bySymbolID, cs.ID)
	c.byName[cs.Name] = removeID(c.byName[cs.Name], cs.ID)
	if len(c.byName[cs.Name]) == 0 {
		delete(c.byName, cs.Name)
	}
	if cs.QualifiedName != "" && c.byQualifiedName[cs.QualifiedName] == cs.ID {
		delete(c.byQualifiedName, cs.QualifiedName)
	}
	c.byFile[cs.FilePath] = removeID(c.byFile[cs.FilePath], cs.ID)
	if len(c.byFile[cs.FilePath]) == 0 {
		delete(c.byFile, cs.FilePath)
	}
	if cs.Namespace != "" {
		c.byNamespace[cs.Namespace] = removeID(c.byNamespace[cs.Namespace], cs.ID)
		if len(c.byNamespace[cs.Namespace]) == 0 {
			delete(c.byNamespace, cs.Namespace)
		}
	}
}

func removeID(ids []int64, target int64) []int64 {
	for i, id := range ids {
		if id == target {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// evictionCount is max(1, floor(max_size * 0.1)) per spec.md §4.2.
func evictionCount(maxSize int) int {
	n := int(float64(maxSize) * 0.1)
	if n < 1 {
		n = 1
	}
	return n
}

// evictIfNeededLocked evicts entries once size exceeds maxSize. Victims are
// the entries with the smallest (AccessCount, LastAccessed), per spec.md
// §4.2 and the boundary-behavior test in spec.md §8.
func (c *Cache) evictIfNeededLocked() {
	if c.maxSize <= 0 || len(c.bySymbolID) <= c.maxSize {
		return
	}

	toEvict := evictionCount(c.maxSize)
	over := len(c.bySymbolID) - c.maxSize
	if toEvict < over {
		toEvict = over
	}

	candidates := make([]*CachedSymbol, 0, len(c.bySymbolID))
	for _, cs := range c.bySymbolID {
		candidates = append(candidates, cs)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].AccessCount != candidates[j].AccessCount {
			return candidates[i].AccessCount < candidates[j].AccessCount
		}
		return candidates[i].LastAccessed.Before(candidates[j].LastAccessed)
	})

	if toEvict > len(candidates) {
		toEvict = len(candidates)
	}
	for _, cs := range candidates[:toEvict] {
		c.removeIndexEntriesLocked(cs)
		c.stats.Evictions++
	}
}

// GetByID is a single-key lookup by symbol ID.
func (c *Cache) GetByID(id int64) (models.Symbol, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cs, ok := c.bySymbolID[id]
	if !ok {
		c.stats.Misses++
		return models.Symbol{}, false
	}
	c.touchLocked(cs)
	c.stats.Hits++
	return cs.Symbol, true
}

// GetByQualifiedName consults the qualified-name bloom filter before
// probing the index, per spec.md §4.2.
func (c *Cache) GetByQualifiedName(qn string) (models.Symbol, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.qnBloom.MightContain(qn) {
		c.stats.Misses++
		return models.Symbol{}, false
	}

	id, ok := c.byQualifiedName[qn]
	if !ok {
		c.stats.Misses++
		return models.Symbol{}, false
	}
	cs := c.bySymbolID[id]
	c.touchLocked(cs)
	c.stats.Hits++
	return cs.Symbol, true
}

// GetByFile returns every symbol recorded against a file path.
func (c *Cache) GetByFile(path string) []models.Symbol {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := c.byFile[path]
	if len(ids) == 0 {
		c.stats.Misses++
		return nil
	}
	out := make([]models.Symbol, 0, len(ids))
	for _, id := range ids {
		if cs, ok := c.bySymbolID[id]; ok {
			c.touchLocked(cs)
			out = append(out, cs.Symbol)
		}
	}
	c.stats.Hits++
	return out
}

// GetByNamespace returns every symbol recorded against a namespace.
func (c *Cache) GetByNamespace(ns string) []models.Symbol {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := c.byNamespace[ns]
	if len(ids) == 0 {
		c.stats.Misses++
		return nil
	}
	out := make([]models.Symbol, 0, len(ids))
	for _, id := range ids {
		if cs, ok := c.bySymbolID[id]; ok {
			c.touchLocked(cs)
			out = append(out, cs.Symbol)
		}
	}
	c.stats.Hits++
	return out
}

func (c *Cache) touchLocked(cs *CachedSymbol) {
	cs.LastAccessed = time.Now()
	cs.AccessCount++
}

// Callers returns the IDs of symbols known to call id.
func (c *Cache) Callers(id int64) []int64 { return c.adjacency(id, func(cs *CachedSymbol) []int64 { return cs.Callers }) }

// Callees returns the IDs of symbols id is known to call.
func (c *Cache) Callees(id int64) []int64 { return c.adjacency(id, func(cs *CachedSymbol) []int64 { return cs.Callees }) }

// Inheritance returns the parent and child symbol IDs for id.
func (c *Cache) Inheritance(id int64) (parents, children []int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cs, ok := c.bySymbolID[id]
	if !ok {
		return nil, nil
	}
	return append([]int64(nil), cs.InheritsFrom...), append([]int64(nil), cs.InheritedBy...)
}

func (c *Cache) adjacency(id int64, sel func(*CachedSymbol) []int64) []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cs, ok := c.bySymbolID[id]
	if !ok {
		return nil
	}
	return append([]int64(nil), sel(cs)...)
}

// AddRelationship records an edge in the cache's graph index and updates
// the embedded adjacency lists on both endpoint symbols. kind is
// single-valued per call — a caller wanting both a "calls" and a "uses"
// edge between the same pair issues two calls.
func (c *Cache) AddRelationship(from, to int64, kind RelationshipKind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fromCS, fromOK := c.bySymbolID[from]
	toCS, toOK := c.bySymbolID[to]
	if !fromOK || !toOK {
		return
	}

	switch kind {
	case RelCalls:
		fromCS.Callees = appendUnique(fromCS.Callees, to)
		toCS.Callers = appendUnique(toCS.Callers, from)
	case RelInherits:
		fromCS.InheritsFrom = appendUnique(fromCS.InheritsFrom, to)
		toCS.InheritedBy = appendUnique(toCS.InheritedBy, from)
	case RelUses:
		fromCS.Uses = appendUnique(fromCS.Uses, to)
		toCS.UsedBy = appendUnique(toCS.UsedBy, from)
	}
}

func appendUnique(ids []int64, v int64) []int64 {
	for _, id := range ids {
		if id == v {
			return ids
		}
	}
	return append(ids, v)
}

// ClearFile removes every symbol whose FilePath matches path from the
// primary store and every index. Per spec.md §4.2, bloom filters are not
// rebuilt — they may now contain stale positives for the removed names,
// which only costs an extra index probe on future lookups, never a false
// negative.
func (c *Cache) ClearFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := append([]int64(nil), c.byFile[path]...)
	for _, id := range ids {
		if cs, ok := c.bySymbolID[id]; ok {
			c.removeIndexEntriesLocked(cs)
		}
	}
}

// Clear performs a full reset, including rebuilding (zeroing) both bloom
// filters, per spec.md §4.2.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bySymbolID = make(map[int64]*CachedSymbol)
	c.byName = make(map[string][]int64)
	c.byQualifiedName = make(map[string]int64)
	c.byFile = make(map[string][]int64)
	c.byNamespace = make(map[string][]int64)
	c.namesBloom.Reset()
	c.qnBloom.Reset()
	c.stats = Stats{}
}
