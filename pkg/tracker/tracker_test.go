package tracker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_Counters(t *testing.T) {
	tr := New()

	tr.TrackCacheHit("wikipedia")
	tr.TrackCacheMiss("wikipedia")
	tr.TrackCacheMiss("wikipedia")
	tr.TrackAPISuccess("wikipedia")
	tr.TrackAPIFailure("spotify")
	tr.TrackAPIZero("youtube")
	tr.TrackDecision("text")

	snap := tr.Snapshot()
	assert.Equal(t, int64(1), snap["wikipedia"].CacheHits)
	assert.Equal(t, int64(2), snap["wikipedia"].CacheMisses)
	assert.Equal(t, int64(1), snap["wikipedia"].APISuccess)
	assert.Equal(t, int64(1), snap["spotify"].APIFailures)
	assert.Equal(t, int64(1), snap["youtube"].APIZeroResult)
	assert.Equal(t, int64(1), snap["text"].Decisions)
}

func TestTracker_SnapshotIsCopy(t *testing.T) {
	tr := New()
	tr.TrackAPISuccess("wikipedia")

	snap := tr.Snapshot()
	tr.TrackAPISuccess("wikipedia")

	assert.Equal(t, int64(1), snap["wikipedia"].APISuccess)
	assert.Equal(t, int64(2), tr.Snapshot()["wikipedia"].APISuccess)
}

func TestTracker_ConcurrentAccess(t *testing.T) {
	tr := New()
	providers := []string{"wikipedia", "spotify", "youtube", "googlemaps"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p := providers[j%len(providers)]
				tr.TrackAPISuccess(p)
				tr.TrackCacheMiss(p)
			}
		}()
	}
	wg.Wait()

	snap := tr.Snapshot()
	var total int64
	for _, s := range snap {
		total += s.APISuccess
	}
	assert.Equal(t, int64(800), total)
}
