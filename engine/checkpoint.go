package engine

import "time"

// Default checkpoint cadence (spec.md §5): a gate on bounding-box
// evaluation count, wall-clock time, or whichever trips first.
const (
	DefaultBBoxInterval = 1 << 26
	DefaultWallInterval = time.Hour
)

// Checkpointer gates a save callback behind a counter and a wall-clock
// interval, whichever trips first, and is handed to propagate.Engine as
// its Checkpoint hook.
type Checkpointer struct {
	BBoxInterval int64
	WallInterval time.Duration

	lastCount int64
	lastTime  time.Time
	save      func(bboxEvaluations int64) error
}

// NewCheckpointer builds a Checkpointer with the spec's default cadence;
// save is called with the running BBoxEvaluations count whenever the gate
// trips.
func NewCheckpointer(save func(bboxEvaluations int64) error) *Checkpointer {
	return &Checkpointer{
		BBoxInterval: DefaultBBoxInterval,
		WallInterval: DefaultWallInterval,
		lastTime:     time.Now(),
		save:         save,
	}
}

// Trip checks both gates and fires save if either has elapsed.
func (c *Checkpointer) Trip(bboxEvaluations int64) error {
	countDue := bboxEvaluations-c.lastCount >= c.BBoxInterval
	wallDue := time.Since(c.lastTime) >= c.WallInterval
	if !countDue && !wallDue {
		return nil
	}
	if err := c.save(bboxEvaluations); err != nil {
		return err
	}
	c.lastCount = bboxEvaluations
	c.lastTime = time.Now()
	return nil
}
