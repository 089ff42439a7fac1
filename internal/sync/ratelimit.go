package sync

import "math"

// maxEngineRate is the largest byte rate the engine option surface accepts.
const maxEngineRate = math.MaxUint32

// rateLimitBytes translates a user-facing KB/s cap into an engine-facing
// B/s cap. Nil, zero, negative, or out-of-range inputs all collapse to nil,
// meaning unlimited: a zero-byte rate limit is meaningless and must never
// reach the engine.
func rateLimitBytes(kbps *int64) *int64 {
	if kbps == nil || *kbps <= 0 {
		return nil
	}
	if *kbps > maxEngineRate/1024 {
		return nil
	}
	bps := *kbps * 1024
	return &bps
}
