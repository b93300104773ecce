package searcher

import "time"

// Budget decides after each completed iteration whether the search should
// continue. It receives the number of iterations finished so far. Budgets
// are plain predicates owned by the caller, not by the driver.
type Budget func(iterations int) bool

// MaxIterations allows a fixed number of search iterations.
func MaxIterations(n int) Budget {
	return func(iterations int) bool {
		return iterations < n
	}
}

// Timeout allows searching for a wall-clock duration, measured from the
// first call. Once expired the clock resets, so the same budget value can
// drive consecutive search episodes.
func Timeout(d time.Duration) Budget {
	var start time.Time
	return func(int) bool {
		if start.IsZero() {
			start = time.Now()
		}
		if time.Since(start) > d {
			start = time.Time{}
			return false
		}
		return true
	}
}
