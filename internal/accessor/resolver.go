package accessor

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/roach88/ecvalue/internal/schema"
)

// DefaultResolverSize is the number of resolved access strings a Resolver
// keeps when created with size 0.
const DefaultResolverSize = 1024

type resolverKey struct {
	enabler      schema.Enabler
	accessString string
}

// Resolver caches PopulateValueAccessor results per enabler and access
// string. Failed resolutions are not cached. Safe for concurrent use.
type Resolver struct {
	cache *lru.Cache[resolverKey, *ValueAccessor]
}

// NewResolver creates a resolver holding up to size accessors.
func NewResolver(size int) (*Resolver, error) {
	if size <= 0 {
		size = DefaultResolverSize
	}
	cache, err := lru.New[resolverKey, *ValueAccessor](size)
	if err != nil {
		return nil, err
	}
	return &Resolver{cache: cache}, nil
}

// Resolve returns a new accessor for accessString against enabler.
func (r *Resolver) Resolve(enabler schema.Enabler, accessString string) (*ValueAccessor, error) {
	key := resolverKey{enabler: enabler, accessString: accessString}
	if cached, ok := r.cache.Get(key); ok {
		return cached.Clone(), nil
	}

	a := New()
	if err := a.PopulateValueAccessor(enabler, accessString); err != nil {
		return nil, err
	}
	r.cache.Add(key, a.Clone())
	return a, nil
}

// Len returns the number of cached accessors.
func (r *Resolver) Len() int { return r.cache.Len() }
