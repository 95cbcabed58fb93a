package backtrack

import "sync/atomic"

// Stats tracks execution statistics for performance analysis.
type Stats struct {
	// Execs counts calls of Exec that passed validation.
	Execs uint64

	// Attempts counts match attempts, one per start position tried.
	Attempts uint64

	// Frames counts matcher frames entered across all attempts.
	Frames uint64

	// PrefilterSkips counts attempts whose start was moved forward by a
	// start-up scan.
	PrefilterSkips uint64
}

// Stats returns a snapshot of the execution statistics.
func (e *Engine) Stats() Stats {
	return Stats{
		Execs:          atomic.LoadUint64(&e.stats.Execs),
		Attempts:       atomic.LoadUint64(&e.stats.Attempts),
		Frames:         atomic.LoadUint64(&e.stats.Frames),
		PrefilterSkips: atomic.LoadUint64(&e.stats.PrefilterSkips),
	}
}

// ResetStats resets execution statistics to zero.
func (e *Engine) ResetStats() {
	atomic.StoreUint64(&e.stats.Execs, 0)
	atomic.StoreUint64(&e.stats.Attempts, 0)
	atomic.StoreUint64(&e.stats.Frames, 0)
	atomic.StoreUint64(&e.stats.PrefilterSkips, 0)
}
