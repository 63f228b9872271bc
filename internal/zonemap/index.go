package zonemap

import (
	"fmt"
	"os"
	"strconv"
	"sync/atomic"
)

// Index: lock-free hot-swappable zone lookup. atomic.Value lets the admin
// reload endpoint replace the snapshot without blocking the read path.
type Index struct {
	v     atomic.Value
	cache *lru
}

// NewIndex: empty index; queries miss until the first Swap.
func NewIndex() *Index {
	ttlSec := 3600
	if s := os.Getenv("ZONE_CACHE_TTL_S"); s != "" {
		if n, e := strconv.Atoi(s); e == nil && n > 0 {
			ttlSec = n
		}
	}
	return &Index{cache: newLRU(4096, ttlSec)}
}

// Swap: install a new snapshot; effective for all subsequent lookups.
func (ix *Index) Swap(s *Snapshot) { ix.v.Store(s) }

// Snapshot: current snapshot, nil before the first Swap.
func (ix *Index) Snapshot() *Snapshot {
	x := ix.v.Load()
	if x == nil {
		return nil
	}
	return x.(*Snapshot)
}

// ZoneAt: district code containing the coordinate, or found=false.
// Bounding-box prefilter, then exact point-in-polygon; first containing zone
// wins, matching the original map's iteration order.
func (ix *Index) ZoneAt(lat, lon float64) (string, bool) {
	key := quantKey(lat, lon)
	if sigla, found, ok := ix.cache.get(key); ok {
		return sigla, found
	}
	snap := ix.Snapshot()
	if snap == nil {
		return "", false
	}
	pt := Point{Lat: lat, Lon: lon}
	for i := range snap.Zones {
		z := &snap.Zones[i]
		for _, p := range z.Polys {
			if !inBBox(pt, p.BBox) {
				continue
			}
			if pointInPoly(pt, p) {
				ix.cache.set(key, z.Sigla, true)
				return z.Sigla, true
			}
		}
	}
	ix.cache.set(key, "", false)
	return "", false
}

// quantKey: cache key at ~11 m resolution, enough to collapse repeated
// lookups of the same lot without bleeding across neighbors.
func quantKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f:%.4f", lat, lon)
}
