package block

import "time"

// SafeHead returns best - depth, floored at 0
func SafeHead(best, depth uint64) uint64 {
	if best <= depth {
		return 0
	}
	return best - depth
}

// Lag describes how far a collection trails the safe head
type Lag struct {
	Blocks  uint64
	Seconds int64
}

// ComputeLag measures the distance between the last processed block and the safe target.
// safeTargetTime is the block time of the safe target.
func ComputeLag(safeTarget, lastProcessed uint64, safeTargetTime, now time.Time) Lag {
	var lag Lag
	if safeTarget > lastProcessed {
		lag.Blocks = safeTarget - lastProcessed
	}
	if !safeTargetTime.IsZero() {
		lag.Seconds = max(int64(now.Sub(safeTargetTime)/time.Second), 0)
	}
	return lag
}

// TailRange returns the next block range [from, to] a live tailing collection should scan.
// ok is false when the collection is already at the safe target.
func TailRange(safeHeadBlock, lastIndexedBlock, safeTarget, maxRange uint64) (from, to uint64, ok bool) {
	from = max(safeHeadBlock, lastIndexedBlock) + 1
	if maxRange == 0 {
		maxRange = 1
	}
	to = min(from+maxRange-1, safeTarget)
	return from, to, from <= to
}
