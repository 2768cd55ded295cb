package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklog-app/worklog-backend/internal/common"
	"github.com/worklog-app/worklog-backend/internal/timelogs/domain"
	"github.com/worklog-app/worklog-backend/internal/timelogs/repository"
)

type fixture struct {
	svc    *TimerService
	store  *repository.MemoryRepository
	clock  *fakeClock
	userID string
	taskID string
	other  string
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newFixture(t *testing.T, cache TimerCache) *fixture {
	t.Helper()
	f := &fixture{
		store:  repository.NewMemoryRepository(),
		clock:  &fakeClock{t: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)},
		userID: uuid.NewString(),
		taskID: uuid.NewString(),
		other:  uuid.NewString(),
	}
	f.store.AddTask(f.userID, domain.TaskRef{ID: f.taskID, Name: "Design", Project: domain.ProjectRef{ID: uuid.NewString(), Name: "Acme"}})
	f.store.AddTask(f.other, domain.TaskRef{ID: uuid.NewString(), Name: "Foreign", Project: domain.ProjectRef{ID: uuid.NewString(), Name: "Globex"}})

	f.svc = NewTimerService(f.store, cache, nil)
	f.svc.now = f.clock.Now
	return f
}

func (f *fixture) logs(t *testing.T) []domain.TimeLog {
	t.Helper()
	logs, err := f.store.Find(context.Background(), domain.Filter{UserID: f.userID})
	require.NoError(t, err)
	return logs
}

func TestStart_CreatesRunningLogWithNames(t *testing.T) {
	f := newFixture(t, nil)

	l, err := f.svc.Start(context.Background(), f.userID, f.taskID)
	require.NoError(t, err)

	assert.True(t, l.IsRunning)
	assert.Nil(t, l.EndTime)
	assert.Equal(t, 0, l.Duration)
	assert.Equal(t, f.clock.Now(), l.StartTime)
	assert.Equal(t, "Design", l.TaskName())
	assert.Equal(t, "Acme", l.ProjectName())
}

func TestStart_WhileRunningConflicts(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, f.userID, f.taskID)
	require.NoError(t, err)

	_, err = f.svc.Start(ctx, f.userID, f.taskID)
	require.ErrorIs(t, err, domain.ErrTimerAlreadyRunning)
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, "Another timer is already running", err.Error())
	assert.Len(t, f.logs(t), 1)
}

func TestStart_TaskNotOwned(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, f.other, f.taskID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = f.svc.Start(ctx, f.userID, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestStartThenStop_ComputesDuration(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	started, err := f.svc.Start(ctx, f.userID, f.taskID)
	require.NoError(t, err)

	f.clock.Advance(95*time.Minute + 40*time.Second)
	stopped, err := f.svc.Stop(ctx, f.userID)
	require.NoError(t, err)

	assert.Equal(t, started.ID, stopped.ID)
	assert.False(t, stopped.IsRunning)
	require.NotNil(t, stopped.EndTime)
	assert.Equal(t, domain.ComputeDurationMinutes(started.StartTime, *stopped.EndTime), stopped.Duration)
	assert.Equal(t, 96, stopped.Duration)
	assert.Equal(t, "1:36", stopped.FormattedDuration())

	current, err := f.svc.Current(ctx, f.userID)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestStop_WhileIdleConflicts(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Stop(context.Background(), f.userID)
	require.ErrorIs(t, err, domain.ErrNoRunningTimer)
	assert.Equal(t, "No running timer found", err.Error())
	assert.Empty(t, f.logs(t))
}

func TestStart_ConcurrentExactlyOneWins(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	const n = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Start(ctx, f.userID, f.taskID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrTimerAlreadyRunning):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)

	running, err := f.store.ListRunning(ctx)
	require.NoError(t, err)
	assert.Len(t, running, 1)
}

func TestCreate_ManualEntry(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(2*time.Hour + 15*time.Minute)
	clientDuration := 5

	l, err := f.svc.Create(ctx, f.userID, CreateInput{
		TaskID:      f.taskID,
		ManualEntry: domain.ManualEntry{StartTime: start, EndTime: &end, Duration: &clientDuration, Description: "review"},
	})
	require.NoError(t, err)
	assert.Equal(t, 135, l.Duration)
	assert.False(t, l.IsRunning)
	assert.Equal(t, "review", l.Description)
	assert.Equal(t, "Acme", l.ProjectName())

	l, err = f.svc.Create(ctx, f.userID, CreateInput{
		TaskID:      f.taskID,
		ManualEntry: domain.ManualEntry{StartTime: start, Duration: &clientDuration},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, l.Duration)
	assert.Nil(t, l.EndTime)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	before := start.Add(-time.Minute)

	_, err := f.svc.Create(ctx, f.userID, CreateInput{ManualEntry: domain.ManualEntry{StartTime: start}})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.svc.Create(ctx, f.userID, CreateInput{TaskID: f.taskID, ManualEntry: domain.ManualEntry{StartTime: start, EndTime: &before}})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.svc.Create(ctx, f.other, CreateInput{TaskID: f.taskID, ManualEntry: domain.ManualEntry{StartTime: start}})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	assert.Empty(t, f.logs(t))
}

func TestUpdate_RecomputesDurationIgnoringClientValue(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	started, err := f.svc.Start(ctx, f.userID, f.taskID)
	require.NoError(t, err)

	start := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(50 * time.Minute)
	bogus := 999

	updated, err := f.svc.Update(ctx, f.userID, started.ID, domain.ManualEntry{StartTime: start, EndTime: &end, Duration: &bogus})
	require.NoError(t, err)

	assert.Equal(t, 50, updated.Duration)
	assert.False(t, updated.IsRunning)

	current, err := f.svc.Current(ctx, f.userID)
	require.NoError(t, err)
	assert.Nil(t, current, "update always stops a running log")
}

func TestUpdate_KeepsDescriptionWhenBlank(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	l, err := f.svc.Create(ctx, f.userID, CreateInput{TaskID: f.taskID, ManualEntry: domain.ManualEntry{StartTime: start, Description: "keep me"}})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, f.userID, l.ID, domain.ManualEntry{StartTime: start.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, "keep me", updated.Description)
	assert.Equal(t, 0, updated.Duration)
}

func TestUpdateAndDelete_NotFound(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	_, err := f.svc.Update(ctx, f.userID, uuid.NewString(), domain.ManualEntry{StartTime: start})
	assert.ErrorIs(t, err, domain.ErrTimeLogNotFound)

	_, err = f.svc.Update(ctx, f.userID, "garbage", domain.ManualEntry{StartTime: start})
	assert.ErrorIs(t, err, common.ErrNotFound)

	l, err := f.svc.Create(ctx, f.userID, CreateInput{TaskID: f.taskID, ManualEntry: domain.ManualEntry{StartTime: start}})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, f.other, l.ID), domain.ErrTimeLogNotFound)
	require.NoError(t, f.svc.Delete(ctx, f.userID, l.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, f.userID, l.ID), domain.ErrTimeLogNotFound)
}

func TestList_IgnoresMalformedIDs(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.userID, CreateInput{TaskID: f.taskID, ManualEntry: domain.ManualEntry{StartTime: f.clock.Now()}})
	require.NoError(t, err)

	logs, err := f.svc.List(ctx, domain.Filter{UserID: f.userID, TaskID: "bad"})
	require.NoError(t, err)
	assert.Empty(t, logs)

	logs, err = f.svc.List(ctx, domain.Filter{UserID: f.userID})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestTimerService_WithRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := repository.NewRedisTimerCache(client)
	f := newFixture(t, cache)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, closeSub, err := cache.Subscribe(ctx, f.userID)
	require.NoError(t, err)
	defer func() { _ = closeSub() }()

	started, err := f.svc.Start(ctx, f.userID, f.taskID)
	require.NoError(t, err)
	assert.True(t, mr.Exists("timer:running:"+f.userID))

	select {
	case ev := <-events:
		assert.Equal(t, domain.EventStarted, ev.Type)
		assert.Equal(t, started.ID, ev.LogID)
	case <-ctx.Done():
		t.Fatal("no started event")
	}

	current, err := f.svc.Current(ctx, f.userID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, started.ID, current.ID)

	_, err = f.svc.Stop(ctx, f.userID)
	require.NoError(t, err)
	assert.False(t, mr.Exists("timer:running:"+f.userID))

	select {
	case ev := <-events:
		assert.Equal(t, domain.EventStopped, ev.Type)
	case <-ctx.Done():
		t.Fatal("no stopped event")
	}
}

func TestTimerService_CacheOutageFallsBackToStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	f := newFixture(t, repository.NewRedisTimerCache(client))
	ctx := context.Background()
	mr.Close()

	started, err := f.svc.Start(ctx, f.userID, f.taskID)
	require.NoError(t, err)

	current, err := f.svc.Current(ctx, f.userID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, started.ID, current.ID)
}

func newRedisFixture(t *testing.T) (*fixture, *miniredis.Miniredis, *repository.RedisTimerCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := repository.NewRedisTimerCache(client)
	return newFixture(t, cache), mr, cache
}

func TestCurrent_DeletedTaskDropsCachedTimer(t *testing.T) {
	f, mr, _ := newRedisFixture(t)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, f.userID, f.taskID)
	require.NoError(t, err)
	require.True(t, mr.Exists("timer:running:"+f.userID))

	// Same effect as the ON DELETE CASCADE from tasks to time_logs.
	f.store.RemoveTask(f.taskID)

	current, err := f.svc.Current(ctx, f.userID)
	require.NoError(t, err)
	assert.Nil(t, current)
	assert.False(t, mr.Exists("timer:running:"+f.userID))

	_, err = f.svc.Stop(ctx, f.userID)
	assert.ErrorIs(t, err, domain.ErrNoRunningTimer)
}

func TestCurrent_StaleEntryWrittenAfterStopIsIgnored(t *testing.T) {
	f, mr, cache := newRedisFixture(t)
	ctx := context.Background()

	started, err := f.svc.Start(ctx, f.userID, f.taskID)
	require.NoError(t, err)
	f.clock.Advance(10 * time.Minute)
	_, err = f.svc.Stop(ctx, f.userID)
	require.NoError(t, err)

	// A concurrent writer that read the log before the stop committed.
	require.NoError(t, cache.SetRunning(ctx, started))

	current, err := f.svc.Current(ctx, f.userID)
	require.NoError(t, err)
	assert.Nil(t, current)
	assert.False(t, mr.Exists("timer:running:"+f.userID))
}

func TestCurrent_ServesRenamedTaskFromStore(t *testing.T) {
	f, _, _ := newRedisFixture(t)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, f.userID, f.taskID)
	require.NoError(t, err)

	ref, err := f.store.TaskRef(ctx, f.userID, f.taskID)
	require.NoError(t, err)
	ref.Name = "Design v2"
	ref.Project.Name = "Acme Corp"
	f.store.AddTask(f.userID, *ref)

	current, err := f.svc.Current(ctx, f.userID)
	require.NoError(t, err)
	require.NotNil(t, current)
	require.NotNil(t, current.Task)
	assert.Equal(t, "Design v2", current.Task.Name)
	assert.Equal(t, "Acme Corp", current.Task.Project.Name)
}

func TestCurrent_MissDoesNotFillCache(t *testing.T) {
	f, mr, _ := newRedisFixture(t)
	ctx := context.Background()

	started, err := f.svc.Start(ctx, f.userID, f.taskID)
	require.NoError(t, err)
	mr.Del("timer:running:" + f.userID)

	current, err := f.svc.Current(ctx, f.userID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, started.ID, current.ID)
	assert.False(t, mr.Exists("timer:running:"+f.userID))
}
