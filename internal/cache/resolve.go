package cache

import (
	"sync/atomic"

	"github.com/polyglotdex/polyglotdex/pkg/models"
)

// probeCount counts index probes performed by Resolve, exposed only so
// tests can verify spec.md §8 scenario 5 ("no index probes occur" on a
// bloom-filter negative) without reaching into cache internals.
var probeCount atomic.Int64

// ProbeCount returns the number of index probes Resolve has performed since
// the process started or the last ResetProbeCount call.
func ProbeCount() int64 { return probeCount.Load() }

// ResetProbeCount zeroes the probe counter; call it at the start of a test.
func ResetProbeCount() { probeCount.Store(0) }

// Resolve is the central symbol-lookup routine, implementing spec.md §4.2's
// strict resolution order:
//
//  1. Bloom filter on names; a miss is authoritative absence.
//  2. {current_namespace}::{name}, if a current namespace is set.
//  3. {ns}::{name} for each imported namespace, in order.
//  4. The qualified name aliased by type_aliases[name], if any.
//  5. Among symbols indexed under the bare name, the one in the current
//     file, else the first.
func (c *Cache) Resolve(name string, ctx ResolutionContext) (models.Symbol, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.namesBloom.MightContain(name) {
		c.stats.Misses++
		return models.Symbol{}, false
	}

	if ctx.CurrentNamespace != "" {
		probeCount.Add(1)
		qn := ctx.CurrentNamespace + models.QualifiedNameSeparator + name
		if id, ok := c.byQualifiedName[qn]; ok {
			return c.hitLocked(id), true
		}
	}

	for _, ns := range ctx.ImportedNamespaces {
		probeCount.Add(1)
		qn := ns + models.QualifiedNameSeparator + name
		if id, ok := c.byQualifiedName[qn]; ok {
			return c.hitLocked(id), true
		}
	}

	if ctx.TypeAliases != nil {
		if aliased, ok := ctx.TypeAliases[name]; ok {
			probeCount.Add(1)
			if id, ok := c.byQualifiedName[aliased]; ok {
				return c.hitLocked(id), true
			}
		}
	}

	probeCount.Add(1)
	ids := c.byName[name]
	if len(ids) == 0 {
		c.stats.Misses++
		return models.Symbol{}, false
	}

	for _, id := range ids {
		if cs, ok := c.bySymbolID[id]; ok && cs.FilePath == ctx.CurrentFile {
			return c.hitLocked(id), true
		}
	}
	return c.hitLocked(ids[0]), true
}

func (c *Cache) hitLocked(id int64) models.Symbol {
	cs := c.bySymbolID[id]
	c.touchLocked(cs)
	c.stats.Hits++
	return cs.Symbol
}
