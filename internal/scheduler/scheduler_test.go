package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name  string
	runs  atomic.Int32
	err   error
	block chan struct{}
	start chan struct{}
}

func (j *countingJob) Run() error {
	if j.start != nil {
		j.start <- struct{}{}
	}
	if j.block != nil {
		<-j.block
	}
	j.runs.Add(1)
	return j.err
}

func (j *countingJob) Name() string {
	return j.name
}

func newTestScheduler() *Scheduler {
	return New(zerolog.New(nil).Level(zerolog.Disabled))
}

func TestScheduler_AddJob(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob("0 */5 * * * *", &countingJob{name: "a"}))
	require.NoError(t, s.AddJob("@hourly", &countingJob{name: "b"}))

	err := s.AddJob("@hourly", &countingJob{name: "a"})
	assert.Error(t, err)

	err = s.AddJob("not a schedule", &countingJob{name: "c"})
	assert.Error(t, err)

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0].Name)
	assert.Equal(t, "0 */5 * * * *", jobs[0].Schedule)
	assert.Equal(t, "b", jobs[1].Name)
}

func TestScheduler_RunNowRecordsStatus(t *testing.T) {
	s := newTestScheduler()
	ok := &countingJob{name: "ok"}
	bad := &countingJob{name: "bad", err: errors.New("boom")}
	require.NoError(t, s.AddJob("@daily", ok))
	require.NoError(t, s.AddJob("@daily", bad))

	require.NoError(t, s.RunNow("ok"))
	require.NoError(t, s.RunNow("ok"))
	assert.EqualError(t, s.RunNow("bad"), "boom")

	jobs := s.Jobs()
	require.Len(t, jobs, 2)

	assert.Equal(t, "bad", jobs[0].Name)
	assert.Equal(t, 1, jobs[0].Runs)
	assert.Equal(t, 1, jobs[0].Failures)
	assert.Equal(t, "boom", jobs[0].LastError)

	assert.Equal(t, "ok", jobs[1].Name)
	assert.Equal(t, 2, jobs[1].Runs)
	assert.Equal(t, 0, jobs[1].Failures)
	assert.Empty(t, jobs[1].LastError)
	assert.False(t, jobs[1].LastRun.IsZero())
	assert.EqualValues(t, 2, ok.runs.Load())
}

func TestScheduler_RunNowUnknownJob(t *testing.T) {
	s := newTestScheduler()
	assert.ErrorIs(t, s.RunNow("missing"), ErrJobNotFound)
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "slow", block: make(chan struct{}), start: make(chan struct{}, 1)}
	require.NoError(t, s.AddJob("@daily", job))

	done := make(chan error, 1)
	go func() { done <- s.RunNow("slow") }()
	<-job.start

	assert.ErrorIs(t, s.RunNow("slow"), ErrJobRunning)
	assert.True(t, s.Jobs()[0].Running)

	close(job.block)
	require.NoError(t, <-done)
	assert.EqualValues(t, 1, job.runs.Load())
	assert.False(t, s.Jobs()[0].Running)
}

func TestScheduler_StartRunsJobsOnSchedule(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "tick"}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	defer s.Stop()

	assert.False(t, s.Jobs()[0].NextRun.IsZero())
	require.Eventually(t, func() bool {
		return job.runs.Load() >= 1
	}, 5*time.Second, 50*time.Millisecond)
}
