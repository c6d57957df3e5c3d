package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_FirstTickSetsAverage(t *testing.T) {
	start := time.Now()
	tr := newProgressTracker(start)

	tr.tick(start.Add(2 * time.Second))

	assert.Equal(t, 2*time.Second, tr.avgPerFile)
}

func TestProgressTracker_SmoothsSubsequentTicks(t *testing.T) {
	start := time.Now()
	tr := newProgressTracker(start)

	tr.tick(start.Add(1 * time.Second))
	tr.tick(start.Add(2 * time.Second)) // second file also took 1s

	assert.Equal(t, 1*time.Second, tr.avgPerFile)
}

func TestProgressTracker_EstimateScalesByRemaining(t *testing.T) {
	start := time.Now()
	tr := newProgressTracker(start)
	tr.tick(start.Add(1 * time.Second))

	assert.Equal(t, 4*time.Second, tr.estimate(4))
}

func TestProgressTracker_EstimateZeroBeforeAnySample(t *testing.T) {
	tr := newProgressTracker(time.Now())
	assert.Equal(t, time.Duration(0), tr.estimate(10))
}

func TestProgressTracker_EstimateZeroWhenNothingRemains(t *testing.T) {
	start := time.Now()
	tr := newProgressTracker(start)
	tr.tick(start.Add(1 * time.Second))

	assert.Equal(t, time.Duration(0), tr.estimate(0))
}
