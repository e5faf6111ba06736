package background

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobScheduler_RunsAndRemovesJob(t *testing.T) {
	js, err := NewJobScheduler()
	require.NoError(t, err)
	require.NoError(t, js.Start())
	defer js.Stop()

	var runs atomic.Int32
	require.NoError(t, js.AddJob("tick", 20*time.Millisecond, func() { runs.Add(1) }))
	assert.True(t, js.HasJob("tick"))

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, js.RemoveJob("tick"))
	assert.False(t, js.HasJob("tick"))

	after := runs.Load()
	time.Sleep(80 * time.Millisecond)
	assert.LessOrEqual(t, runs.Load(), after+1)
}

func TestJobScheduler_AddReplacesSameName(t *testing.T) {
	js, err := NewJobScheduler()
	require.NoError(t, err)
	require.NoError(t, js.Start())
	defer js.Stop()

	require.NoError(t, js.AddJob("poll", time.Minute, func() {}))
	require.NoError(t, js.AddJob("poll", time.Minute, func() {}))

	status := js.GetJobStatus()
	assert.Equal(t, 1, status["total_jobs"])
	assert.Equal(t, []string{"poll"}, status["jobs"])
}

func TestJobScheduler_RemoveUnknownIsNoop(t *testing.T) {
	js, err := NewJobScheduler()
	require.NoError(t, err)
	require.NoError(t, js.Start())
	defer js.Stop()

	assert.NoError(t, js.RemoveJob("missing"))
}
