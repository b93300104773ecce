package searcher

import "time"

// SearchMetric describes one completed search episode.
type SearchMetric struct {
	Horizon      int
	Discounting  float64
	Duration     time.Duration
	Iterations   int
	GoalRollouts int // Rollouts that reached a goal state before the horizon
}

// Collector gathers per-episode search metrics. A search episode is
// single-threaded, so implementations need no synchronization.
type Collector interface {
	Start(horizon int, discounting float64)
	AddIteration()
	AddGoalRollout()
	Complete() SearchMetric
}

type collector struct {
	horizon      int
	discounting  float64
	startTime    time.Time
	iterations   int
	goalRollouts int
}

func NewCollector() Collector {
	return &collector{}
}

func (c *collector) Start(horizon int, discounting float64) {
	c.startTime = time.Now()
	c.horizon = horizon
	c.discounting = discounting
	c.iterations = 0
	c.goalRollouts = 0
}

func (c *collector) AddIteration() {
	c.iterations++
}

func (c *collector) AddGoalRollout() {
	c.goalRollouts++
}

func (c *collector) Complete() SearchMetric {
	return SearchMetric{
		Horizon:      c.horizon,
		Discounting:  c.discounting,
		Duration:     time.Since(c.startTime),
		Iterations:   c.iterations,
		GoalRollouts: c.goalRollouts,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (*dummyCollector) Start(horizon int, discounting float64) {}
func (*dummyCollector) AddIteration()                          {}
func (*dummyCollector) AddGoalRollout()                        {}
func (*dummyCollector) Complete() SearchMetric                 { return SearchMetric{} }
