package jobs_test

import (
	"errors"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnect/internal/jobs"
	"devconnect/internal/testsupport"
)

func TestSchedulerRunsJobImmediatelyAndOnInterval(t *testing.T) {
	var runs atomic.Int32
	s := jobs.NewScheduler(testsupport.GetLogger(), jobs.Job{
		Name:     "counter",
		Interval: 10 * time.Millisecond,
		Run: func() error {
			runs.Add(1)
			return nil
		},
	})

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	s.Stop()
	assert.False(t, s.IsRunning())

	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())
}

func TestSchedulerSurvivesFailingJobs(t *testing.T) {
	var runs atomic.Int32
	s := jobs.NewScheduler(testsupport.GetLogger(),
		jobs.Job{Name: "error", Interval: 10 * time.Millisecond, Run: func() error {
			runs.Add(1)
			return errors.New("boom")
		}},
		jobs.Job{Name: "panic", Interval: 10 * time.Millisecond, Run: func() error {
			runs.Add(1)
			panic("boom")
		}},
	)

	require.NoError(t, s.Start())
	defer s.Stop()
	assert.Eventually(t, func() bool { return runs.Load() >= 4 }, time.Second, 5*time.Millisecond)
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	s := jobs.NewScheduler(testsupport.GetLogger())
	s.Stop()
	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	s.Stop()
	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestSchedulerRejectsNonPositiveInterval(t *testing.T) {
	var runs atomic.Int32
	count := func() error {
		runs.Add(1)
		return nil
	}
	s := jobs.NewScheduler(testsupport.GetLogger(),
		jobs.Job{Name: "ok", Interval: time.Minute, Run: count},
		jobs.Job{Name: "zero", Interval: 0, Run: count},
	)

	err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"zero"`)
	assert.False(t, s.IsRunning())
	assert.Zero(t, runs.Load())

	s.Stop()
}

type fakeCheckpointer struct{ modes []string }

func (f *fakeCheckpointer) CheckpointWAL(mode string) error {
	f.modes = append(f.modes, mode)
	return nil
}

func TestCheckpointJob(t *testing.T) {
	fc := &fakeCheckpointer{}
	job := jobs.CheckpointJob(fc, time.Minute)

	require.NoError(t, job.Run())
	assert.Equal(t, "wal_checkpoint", job.Name)
	assert.Equal(t, []string{"PASSIVE"}, fc.modes)
}

func TestRecordEntityCounts(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	testsupport.CreateTestUser(t, db, "Jane", "jane@example.com", "secret1")
	testsupport.CreateTestUser(t, db, "John", "john@example.com", "secret1")

	require.NoError(t, jobs.RecordEntityCounts(db, testsupport.GetLogger()))

	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, `devconnect_entities{kind="users"} 2`)
	assert.Contains(t, body, `devconnect_entities{kind="profiles"} 0`)
	assert.Contains(t, body, `devconnect_entities{kind="posts"} 0`)
}

func TestStatsJobUsesManagedConnection(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	testsupport.CreateTestUser(t, db, "Ada", "ada@example.com", "secret1")

	job := jobs.StatsJob(testsupport.NewTestDBManager(db), testsupport.GetLogger(), time.Minute)
	assert.Equal(t, "entity_stats", job.Name)
	require.NoError(t, job.Run())

	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `devconnect_entities{kind="users"} 1`)
}
