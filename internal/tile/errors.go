package tile

import "fmt"

// UpstreamError reports a tile fetch that failed for good: retries were
// exhausted, or the upstream answered with a non-retryable client error.
type UpstreamError struct {
	Z      int
	X      int
	Y      int
	Status int // last HTTP status, 0 for transport-level failures
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream tile fetch %d/%d/%d failed: status %d", e.Z, e.X, e.Y, e.Status)
	}
	return fmt.Sprintf("upstream tile fetch %d/%d/%d failed: %v", e.Z, e.X, e.Y, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
