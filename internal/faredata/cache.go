package faredata

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/antigravity/transitfare/internal/fare"
	"github.com/antigravity/transitfare/internal/transit"
)

// Bundle is everything a request's fare calculator needs pulled from static
// tables: zone fares, station connectivity and Fares-V2 rule tables. One
// Bundle is built per distinct transit layer and shared by every search
// that runs against it.
type Bundle struct {
	ZoneFares     *ZoneFareTable
	Connected     fare.ConnectedPairs
	FaresV2Tables *FaresV2Tables
}

// Cache is the process-wide, lazily-built mapping from transit layer to its
// static fare Bundle (spec.md §5 "double-checked lazy initialization"): a
// sync.Map publishes completed bundles so readers that hit after the first
// build never pay the singleflight cost, and singleflight collapses
// concurrent first-builds for the same layer into one construction.
type Cache struct {
	group   singleflight.Group
	built   sync.Map // string(layer key) -> *Bundle
	Builder func(*transit.Layer) (*Bundle, error)
}

func NewCache(builder func(*transit.Layer) (*Bundle, error)) *Cache {
	return &Cache{Builder: builder}
}

// Get returns the Bundle for layer, building and publishing it on first
// use. A layer's generation is bumped by Layer.Close, so a caller that
// closes and reopens a layer under the same pointer still gets a fresh
// bundle rather than a stale cached one.
func (c *Cache) Get(layer *transit.Layer) (*Bundle, error) {
	key := fmt.Sprintf("%p:%d", layer, layer.Generation())

	if v, ok := c.built.Load(key); ok {
		return v.(*Bundle), nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.built.Load(key); ok {
			return v.(*Bundle), nil
		}
		bundle, err := c.Builder(layer)
		if err != nil {
			return nil, err
		}
		c.built.Store(key, bundle)
		return bundle, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Bundle), nil
}
