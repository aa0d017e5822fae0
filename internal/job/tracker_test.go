package job

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerLifecycle(t *testing.T) {
	tracker := NewTracker()

	rec := tracker.Create("shop.db")
	require.NotEmpty(t, rec.ID)
	assert.Equal(t, StatusPending, rec.Status)
	assert.Equal(t, "shop.db", rec.Name)

	require.NoError(t, tracker.Start(rec.ID))
	got, err := tracker.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, got.Status)

	require.NoError(t, tracker.SetProgress(rec.ID, "extracting", 10))
	got, err = tracker.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "extracting", got.Stage)
	assert.Equal(t, 10, got.Progress)

	require.NoError(t, tracker.Complete(rec.ID, []string{"out/report_a.md", "out/report_a.json"}))
	got, err = tracker.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Empty(t, got.Stage)
	assert.Len(t, got.Artifacts, 2)
}

func TestTrackerFail(t *testing.T) {
	tracker := NewTracker()
	rec := tracker.Create("broken.db")

	require.NoError(t, tracker.Start(rec.ID))
	require.NoError(t, tracker.Fail(rec.ID, errors.New("not a valid SQLite database")))

	got, err := tracker.Get(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "not a valid SQLite database", got.Error)
}

func TestTrackerProgressClamped(t *testing.T) {
	tracker := NewTracker()
	rec := tracker.Create("shop.db")

	require.NoError(t, tracker.SetProgress(rec.ID, "stage", -5))
	got, _ := tracker.Get(rec.ID)
	assert.Equal(t, 0, got.Progress)

	require.NoError(t, tracker.SetProgress(rec.ID, "stage", 250))
	got, _ = tracker.Get(rec.ID)
	assert.Equal(t, 100, got.Progress)
}

func TestTrackerUnknownJob(t *testing.T) {
	tracker := NewTracker()

	assert.Error(t, tracker.Start("nope"))
	assert.Error(t, tracker.SetProgress("nope", "stage", 10))
	_, err := tracker.Get("nope")
	assert.Error(t, err)
}

func TestTrackerList(t *testing.T) {
	tracker := NewTracker()
	first := tracker.Create("a.db")
	second := tracker.Create("b.db")

	records := tracker.List()
	require.Len(t, records, 2)

	ids := map[string]bool{records[0].ID: true, records[1].ID: true}
	assert.True(t, ids[first.ID])
	assert.True(t, ids[second.ID])
}

func TestTrackerConcurrentUpdates(t *testing.T) {
	tracker := NewTracker()
	rec := tracker.Create("shop.db")
	require.NoError(t, tracker.Start(rec.ID))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = tracker.SetProgress(rec.ID, "analyzing", n*2)
			_, _ = tracker.Get(rec.ID)
		}(i)
	}
	wg.Wait()

	got, err := tracker.Get(rec.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.Progress, 0)
	assert.LessOrEqual(t, got.Progress, 100)
}
