package arena

// Arena is a bump-style allocator scoped to one top-level value. Pools
// created against an arena hand out slots from reusable slabs; Reset
// returns every slot at once. Individual slots are never freed.
type Arena struct {
	pools []resettable
}

type resettable interface {
	reset()
}

// New creates an empty arena.
func New() *Arena {
	return &Arena{}
}

// Reset reclaims every allocation from every pool. Slab storage is kept
// for reuse; outstanding pointers into the arena become invalid.
func (a *Arena) Reset() {
	for _, p := range a.pools {
		p.reset()
	}
}

const slabSize = 32

// Pool hands out *T slots backed by slabs owned by its arena.
type Pool[T any] struct {
	slabs [][]T
	slab  int
	next  int
}

// NewPool registers a typed pool with the arena.
func NewPool[T any](a *Arena) *Pool[T] {
	p := &Pool[T]{}
	a.pools = append(a.pools, p)
	return p
}

// Alloc returns a pointer to a zeroed T that lives until the next Reset.
func (p *Pool[T]) Alloc() *T {
	if p.slab == len(p.slabs) {
		p.slabs = append(p.slabs, make([]T, slabSize))
	}
	slot := &p.slabs[p.slab][p.next]
	p.next++
	if p.next == slabSize {
		p.slab++
		p.next = 0
	}
	return slot
}

// New allocates a T in the pool and initializes it with v.
func (p *Pool[T]) New(v T) *T {
	slot := p.Alloc()
	*slot = v
	return slot
}

func (p *Pool[T]) reset() {
	// Zero the used region so reclaimed slots don't pin references.
	var zero T
	for i := 0; i <= p.slab && i < len(p.slabs); i++ {
		n := slabSize
		if i == p.slab {
			n = p.next
		}
		s := p.slabs[i]
		for j := 0; j < n; j++ {
			s[j] = zero
		}
	}
	p.slab = 0
	p.next = 0
}
