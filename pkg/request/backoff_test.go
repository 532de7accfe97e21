package request

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_GrowsOnFailures(t *testing.T) {
	b := NewProviderBackoff(100*time.Millisecond, time.Second)

	b.RecordFailure("wikipedia")
	failures, next1 := b.GetState("wikipedia")
	assert.Equal(t, 1, failures)
	assert.True(t, next1.After(time.Now().Add(90*time.Millisecond)))

	b.RecordFailure("wikipedia")
	failures, next2 := b.GetState("wikipedia")
	assert.Equal(t, 2, failures)
	assert.True(t, next2.After(next1), "second failure pushes the window further out")
}

func TestBackoff_CapsAtMaxDelay(t *testing.T) {
	b := NewProviderBackoff(100*time.Millisecond, 300*time.Millisecond)

	for i := 0; i < 10; i++ {
		b.RecordFailure("spotify")
	}
	_, next := b.GetState("spotify")
	// Max delay plus 10% jitter headroom
	assert.True(t, time.Until(next) <= 330*time.Millisecond+10*time.Millisecond)
}

func TestBackoff_RecoversGradually(t *testing.T) {
	b := NewProviderBackoff(10*time.Millisecond, time.Second)

	b.RecordFailure("youtube")
	b.RecordFailure("youtube")
	b.RecordSuccess("youtube")

	failures, _ := b.GetState("youtube")
	assert.Equal(t, 1, failures, "one success removes one failure")

	b.RecordSuccess("youtube")
	failures, next := b.GetState("youtube")
	assert.Equal(t, 0, failures)
	assert.True(t, next.IsZero(), "backoff clears once failures drain")
}

func TestBackoff_IndependentProviders(t *testing.T) {
	b := NewProviderBackoff(10*time.Millisecond, time.Second)

	b.RecordFailure("wikipedia")
	failures, _ := b.GetState("googlemaps")
	assert.Equal(t, 0, failures)
}

func TestBackoff_WaitWithoutStateReturnsImmediately(t *testing.T) {
	b := NewProviderBackoff(time.Second, time.Minute)

	start := time.Now()
	b.Wait("unknown")
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}
