package svdag

import (
	"sync"
	"sync/atomic"
)

// subtreeScratch is the per-goroutine working state a hierarchical build
// job needs: its own LevelStructure to grow independently of every other
// job, reused across jobs to avoid reallocating the level slices on
// every subtree.
type subtreeScratch struct {
	ls *LevelStructure
}

// scratchPool is a type-safe wrapper around sync.Pool specialized for
// subtreeScratch, tracking live/allocated counts that Stats reports.
type scratchPool struct {
	sync.Pool

	levels int

	totalAllocated atomic.Int64
	currentLive    atomic.Int64
}

// newScratchPool returns a pool whose scratch LevelStructures span
// `levels` levels, matching the Voxelizer that will use it.
func newScratchPool(levels int) *scratchPool {
	p := &scratchPool{levels: levels}
	p.New = func() any {
		p.totalAllocated.Add(1)
		return &subtreeScratch{ls: &LevelStructure{Levels: make([][]Node, p.levels)}}
	}
	return p
}

// Get retrieves a subtreeScratch from the pool, or allocates a new one.
// A nil receiver always allocates, tracking nothing.
func (p *scratchPool) Get() *subtreeScratch {
	if p == nil {
		return &subtreeScratch{ls: &LevelStructure{}}
	}
	p.currentLive.Add(1)
	return p.Pool.Get().(*subtreeScratch)
}

// Put resets s and returns it to the pool for reuse by the next job.
func (p *scratchPool) Put(s *subtreeScratch) {
	if p == nil {
		return
	}
	p.currentLive.Add(-1)
	for i := range s.ls.Levels {
		s.ls.Levels[i] = s.ls.Levels[i][:0]
	}
	s.ls.Mirrored = false
	p.Pool.Put(s)
}

// Stats returns the number of scratch buffers currently checked out and
// the total ever allocated by this pool.
func (p *scratchPool) Stats() (live, total int64) {
	if p == nil {
		return 0, 0
	}
	return p.currentLive.Load(), p.totalAllocated.Load()
}
