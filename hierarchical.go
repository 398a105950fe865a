package svdag

import (
	"context"
	"sync"
	"time"

	"github.com/sparsevoxel/svdag/internal/geom"
)

// HierarchicalOptions configures the subtree-parallel build.
type HierarchicalOptions struct {
	// SplitDepth is how many levels the shallow root SVO spans before
	// fanning out: each node at that depth becomes one subtree job.
	SplitDepth int

	// MaxConcurrency bounds how many subtree jobs run at once. <= 0
	// means unbounded (one goroutine per occupied cell at SplitDepth).
	MaxConcurrency int

	VoxelizeOptions
}

// HierarchicalVoxelizer builds the shallow root levels single-threaded,
// then voxelizes the subtree under every occupied cell at SplitDepth
// concurrently, one goroutine per cell, and joins the results back into
// a single LevelStructure.
//
// There are no suspension points inside a single subtree job: ctx is
// only checked between jobs in the fan-out loop, never inside
// insertTriangleAt's recursion.
type HierarchicalVoxelizer struct {
	Voxelizer
	Opts HierarchicalOptions

	scratch *scratchPool
}

// NewHierarchicalVoxelizer returns a builder spanning vx.Levels total
// levels, splitting the fan-out at opts.SplitDepth.
func NewHierarchicalVoxelizer(vx *Voxelizer, opts HierarchicalOptions) *HierarchicalVoxelizer {
	return &HierarchicalVoxelizer{
		Voxelizer: *vx,
		Opts:      opts,
		scratch:   newScratchPool(vx.Levels - opts.SplitDepth),
	}
}

// subtreeJob describes one occupied cell at SplitDepth awaiting
// independent voxelization.
type subtreeJob struct {
	parentLevel int
	parentIdx   int32
	octant      uint8
	center      geom.Vec3
}

// FromTriangles runs the hierarchical build described above, returning
// the joined LevelStructure and accumulated BuildStats. If ctx is
// canceled between subtree jobs, it returns the partial result built so
// far along with ctx.Err(); there is no partial-job rollback, so the
// in-flight jobs that already started are allowed to finish and join.
func (h *HierarchicalVoxelizer) FromTriangles(ctx context.Context, scene geom.Scene) (*LevelStructure, BuildStats, error) {
	start := time.Now()

	ls := &LevelStructure{Levels: make([][]Node, h.Levels)}
	ls.Levels[0] = []Node{NewNode()}

	jobs := h.findJobs(ls, scene)

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		sem      chan struct{}
		total    BuildStats
		canceled error
	)
	if h.Opts.MaxConcurrency > 0 {
		sem = make(chan struct{}, h.Opts.MaxConcurrency)
	}

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			canceled = ctx.Err()
		default:
		}
		if canceled != nil {
			break
		}

		if sem != nil {
			sem <- struct{}{}
		}
		wg.Add(1)
		go func(job subtreeJob) {
			defer wg.Done()
			if sem != nil {
				defer func() { <-sem }()
			}

			s := h.scratch.Get()
			defer h.scratch.Put(s)

			sub := h.subtreeVoxelizer(job)
			substats := sub.voxelizeTriangleSubtree(s.ls, scene, h.Opts.VoxelizeOptions)

			mu.Lock()
			h.join(ls, job, s.ls)
			total.add(substats)
			mu.Unlock()
		}(job)
	}
	wg.Wait()

	ls.cleanEmptyNodes()
	DAGCompressor{}.ToDAG(ls)

	total.BuildSVOTime = time.Since(start)
	return ls, total, canceled
}

// findJobs builds the shallow root SVO down to SplitDepth by testing
// every triangle against every cell at that depth, and returns one job
// per resulting occupied cell. This shallow pass is single-threaded;
// only the (typically much larger) subtrees below SplitDepth are
// parallelized.
func (h *HierarchicalVoxelizer) findJobs(ls *LevelStructure, scene geom.Scene) []subtreeJob {
	vx := h.Voxelizer
	n := scene.TriangleCount()
	for i := range n {
		t, ok := scene.Triangle(i)
		if !ok {
			continue
		}
		vx.insertTriangleShallow(ls, t, h.Opts.SplitDepth)
	}

	jobs := make([]subtreeJob, 0)
	seen := make(map[[2]int32]bool)
	h.collectJobs(ls, 0, 0, vx.RootBBox.Center(), h.Opts.SplitDepth, &jobs, seen)
	return jobs
}

func (h *HierarchicalVoxelizer) collectJobs(ls *LevelStructure, level int, idx int32, center geom.Vec3, remaining int, jobs *[]subtreeJob, seen map[[2]int32]bool) {
	if remaining == 0 {
		return
	}
	node := ls.Levels[level][idx]
	childHalf := h.halfSideAt(level + 1)
	for c := range uint8(8) {
		if !node.ExistsChild(c) {
			continue
		}
		box := geom.ChildBox(center, childHalf, c)
		childIdx := node.Children[c]
		if remaining == 1 {
			key := [2]int32{int32(level), childIdx}
			if !seen[key] {
				seen[key] = true
				*jobs = append(*jobs, subtreeJob{parentLevel: level, parentIdx: idx, octant: c, center: box.Center()})
			}
			continue
		}
		h.collectJobs(ls, level+1, childIdx, box.Center(), remaining-1, jobs, seen)
	}
}

// insertTriangleShallow is insertTriangleAt bounded to stopDepth levels
// below the root, used only to discover which cells need a subtree job.
func (vx *Voxelizer) insertTriangleShallow(ls *LevelStructure, t geom.Triangle, stopDepth int) {
	vx.insertTriangleShallowAt(ls, 0, 0, vx.RootBBox.Center(), t, stopDepth)
}

func (vx *Voxelizer) insertTriangleShallowAt(ls *LevelStructure, level int, nodeIdx int32, center geom.Vec3, t geom.Triangle, remaining int) {
	if remaining == 0 {
		return
	}
	childHalf := vx.halfSideAt(level + 1)
	for c := int8(7); c >= 0; c-- {
		cc := uint8(c)
		box := geom.ChildBox(center, childHalf, cc)
		if !geom.TriBoxTest(box.Center(), childHalf, t) {
			continue
		}
		childIdx, _ := vx.getOrCreateChild(ls, level, nodeIdx, cc)
		vx.insertTriangleShallowAt(ls, level+1, childIdx, box.Center(), t, remaining-1)
	}
}

// subtreeVoxelizer returns a Voxelizer whose "root" is job's cell, with
// the remaining level count below SplitDepth.
func (h *HierarchicalVoxelizer) subtreeVoxelizer(job subtreeJob) *Voxelizer {
	side := h.halfSideAt(h.Opts.SplitDepth)
	return &Voxelizer{
		Levels: h.Levels - h.Opts.SplitDepth,
		RootBBox: geom.BBox{
			Min: geom.Vec3{X: job.center.X - side, Y: job.center.Y - side, Z: job.center.Z - side},
			Max: geom.Vec3{X: job.center.X + side, Y: job.center.Y + side, Z: job.center.Z + side},
		},
	}
}

// voxelizeTriangleSubtree re-tests every triangle in scene against this
// (smaller) Voxelizer's root, which is wasteful for huge scenes with
// localized geometry but keeps the job self-contained: a real
// deployment would pre-bucket triangles per job before fan-out.
func (vx *Voxelizer) voxelizeTriangleSubtree(ls *LevelStructure, scene geom.Scene, opts VoxelizeOptions) BuildStats {
	start := time.Now()
	ls.Levels[0] = []Node{NewNode()}
	for l := 1; l < vx.Levels; l++ {
		ls.Levels[l] = nil
	}

	n := scene.TriangleCount()
	for i := range n {
		t, ok := scene.Triangle(i)
		if !ok {
			continue
		}
		if !triangleMayTouch(vx.RootBBox, t) {
			continue
		}
		mat := scene.TriangleMaterial(i)
		vx.insertTriangle(ls, t, mat, nil)
	}

	ls.cleanEmptyNodes()
	stats := vx.buildStats(ls)
	stats.BuildSVOTime = time.Since(start)
	return stats
}

func triangleMayTouch(b geom.BBox, t geom.Triangle) bool {
	return geom.TriBoxTest(b.Center(), b.HalfSide(), t)
}

// join splices sub (already a complete, independently-indexed
// LevelStructure for job's subtree) into ls: every node in sub is
// appended to the corresponding global level with its indices offset,
// and job's parent cell is wired to point at the (offset) subtree root.
// Called only from within the mutex-held section of FromTriangles, so
// it never races with another job's join over the shared global index.
func (h *HierarchicalVoxelizer) join(ls *LevelStructure, job subtreeJob, sub *LevelStructure) {
	offsets := make([]int32, len(sub.Levels))
	for l := range sub.Levels {
		globalLevel := l + h.Opts.SplitDepth
		offsets[l] = int32(len(ls.Levels[globalLevel]))
	}

	for l, lvl := range sub.Levels {
		globalLevel := l + h.Opts.SplitDepth
		for _, n := range lvl {
			for c := range uint8(8) {
				if n.ExistsChildPointer(c) {
					childLevel := int(n.ChildLevels[c])
					n.Children[c] += offsets[childLevel]
					n.ChildLevels[c] = int16(childLevel + h.Opts.SplitDepth)
				}
			}
			ls.Levels[globalLevel] = append(ls.Levels[globalLevel], n)
		}
	}

	if len(sub.Levels[0]) == 0 {
		return
	}
	root := sub.Levels[0][0]
	if root.ChildMask == 0 {
		return
	}
	parent := &ls.Levels[job.parentLevel][job.parentIdx]
	parent.SetChildBit(job.octant)
	parent.Children[job.octant] = offsets[0]
	parent.ChildLevels[job.octant] = int16(h.Opts.SplitDepth)
}
