package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newWaitPage() *page {
	return &page{loadFired: make(chan struct{}, 1)}
}

func TestWaitNavigationSeesEventFiredBeforeWait(t *testing.T) {
	p := newWaitPage()
	p.loadFired <- struct{}{}

	start := time.Now()
	p.WaitNavigationOrDelay(context.Background(), 5*time.Second)
	assert.Less(t, time.Since(start), time.Second, "buffered load event should short-circuit the delay")
}

func TestWaitNavigationFallsBackToDelay(t *testing.T) {
	p := newWaitPage()

	start := time.Now()
	p.WaitNavigationOrDelay(context.Background(), 20*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestDrainDiscardsStaleLoadEvent(t *testing.T) {
	p := newWaitPage()
	p.loadFired <- struct{}{}
	p.drainLoad()

	start := time.Now()
	p.WaitNavigationOrDelay(context.Background(), 20*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond, "a load event from an earlier navigation should not satisfy a later wait")
}
