package deform

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/gogpu/deform/internal/parallel"
)

// Destination is a vertex buffer that can be mapped for direct CPU writes,
// typically a GPU buffer. The gpu package provides an implementation.
//
// Map returns at least size writable bytes or an error if the buffer cannot
// be mapped now. Unmap makes the written contents available to the consumer.
type Destination interface {
	Map(size int) ([]byte, error)
	Unmap() error
}

// Pool is a set of worker goroutines that runs deformation jobs.
//
// Thread safety: Pool is safe for concurrent use by multiple JobGroups.
type Pool struct {
	wp *parallel.WorkerPool
}

// NewPool starts a pool of workers goroutines. workers <= 0 means GOMAXPROCS.
func NewPool(workers int) *Pool {
	return &Pool{wp: parallel.NewWorkerPool(workers)}
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int { return p.wp.Workers() }

// Close stops the pool after every accepted job has run.
// Groups still using the pool run later submissions inline.
func (p *Pool) Close() { p.wp.Close() }

// sharedPool is used by groups that configure no pool of their own.
var sharedPool = sync.OnceValue(func() *Pool { return NewPool(0) })

// JobGroup schedules the deformation of a batch of meshes, typically all
// skinned meshes of one frame.
//
// A group is opened with BeginJobs, receives one Submit per mesh and is
// closed with End. After End returns every accepted mesh has been fully
// written and its destination unmapped.
//
// Jobs share their read-only inputs (bone palettes, influence tables,
// blend-shape data) and each owns its output; destinations of one group
// must not overlap.
//
// Thread safety: Submit may be called from multiple goroutines; End must be
// called once, after the last Submit.
type JobGroup struct {
	max     int
	pool    *parallel.WorkerPool
	ownPool bool
	log     *slog.Logger

	wg sync.WaitGroup

	mu       sync.Mutex
	accepted int
	mapped   []Destination
	ended    bool
}

// BeginJobs opens a group that accepts at most maxJobCount submissions.
func BeginJobs(maxJobCount int, opts ...JobOption) *JobGroup {
	o := defaultJobOptions()
	for _, opt := range opts {
		opt(&o)
	}

	g := &JobGroup{
		max:    max(maxJobCount, 0),
		log:    o.logger,
		mapped: make([]Destination, 0, max(maxJobCount, 0)),
	}
	if g.log == nil {
		g.log = Logger()
	}

	switch {
	case o.inline:
	case o.ownPool:
		g.pool = parallel.NewWorkerPool(o.ownWorkers)
		g.ownPool = true
	case o.pool != nil:
		g.pool = o.pool.wp
	default:
		g.pool = sharedPool().wp
	}
	return g
}

// reserve claims a submission slot. It panics after End.
func (g *JobGroup) reserve() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ended {
		panic("deform: Submit called after End")
	}
	if g.accepted >= g.max {
		return false
	}
	g.accepted++
	return true
}

func (g *JobGroup) release() {
	g.mu.Lock()
	g.accepted--
	g.mu.Unlock()
}

// Submit schedules the deformation of one mesh.
//
// If dst is non-nil it is mapped and the mesh is written into it instead of
// info.Out; info itself is not modified. Submit returns false, scheduling
// nothing, when the group is full, dst cannot be mapped, or info fails the
// constant-time checks of SkinMeshInfo.Validate. Otherwise the mesh is
// deformed on the group's pool, or inline if it has none, and Submit
// returns true.
//
// Submit panics if called after End.
func (g *JobGroup) Submit(info *SkinMeshInfo, dst Destination) bool {
	if !g.reserve() {
		g.log.Warn("skinning: job group full, mesh skipped", "max", g.max)
		return false
	}

	job := *info
	if dst != nil {
		size := job.VertexCount * job.OutStride
		buf, err := dst.Map(size)
		if err != nil {
			g.log.Warn("skinning: destination map failed, mesh skipped", "size", size, "err", err)
			g.release()
			return false
		}
		job.Out = buf
	}

	err := job.check()
	if err == nil {
		err = job.checkOut(job.Out)
	}
	if err != nil {
		g.log.Warn("skinning: invalid mesh skipped", "err", err)
		if dst != nil {
			if uerr := dst.Unmap(); uerr != nil {
				g.log.Warn("skinning: destination unmap failed", "err", uerr)
			}
		}
		g.release()
		return false
	}

	if dst != nil {
		g.mu.Lock()
		g.mapped = append(g.mapped, dst)
		g.mu.Unlock()
	}

	g.wg.Add(1)
	task := func() {
		defer g.wg.Done()
		deform(&job)
	}
	if g.pool == nil || !g.pool.Submit(task) {
		task()
	}
	return true
}

// Accepted returns the number of submissions accepted so far.
func (g *JobGroup) Accepted() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.accepted
}

// End waits for every accepted job, then unmaps every destination mapped by
// Submit. It returns the joined unmap errors. Calling End again returns nil.
func (g *JobGroup) End() error {
	g.mu.Lock()
	if g.ended {
		g.mu.Unlock()
		return nil
	}
	g.ended = true
	accepted := g.accepted
	g.mu.Unlock()

	if g.pool != nil {
		g.log.Debug("skinning: waiting for jobs", "accepted", accepted, "queued", g.pool.QueuedWork())
	}
	g.wg.Wait()

	var errs []error
	for _, d := range g.mapped {
		if err := d.Unmap(); err != nil {
			g.log.Warn("skinning: destination unmap failed", "err", err)
			errs = append(errs, err)
		}
	}
	g.mapped = nil

	if g.ownPool {
		g.pool.Close()
	}
	return errors.Join(errs...)
}
