package project

import (
	"path/filepath"
	"testing"
	"time"

	"countdown_tui/internal/timelog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepositoryCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)

	p, err := repo.Create("write", 25*time.Minute)
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, 25*time.Minute, p.Remaining)

	got, err := repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	all, err := repo.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, *p, all[0])
}

func TestRepositoryUpdate(t *testing.T) {
	repo := newTestRepo(t)

	p, err := repo.Create("read", time.Hour)
	require.NoError(t, err)

	p.Name = "read more"
	p.Remaining = 10 * time.Minute
	p.Running = true
	require.NoError(t, repo.Update(p))

	got, err := repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "read more", got.Name)
	assert.Equal(t, 10*time.Minute, got.Remaining)
	assert.True(t, got.Running)

	require.NoError(t, repo.StopAllTimers())
	got, err = repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.False(t, got.Running)
}

func TestRepositoryNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetByID(42)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.Update(&Project{ID: 42}), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(42), ErrNotFound)
}

func TestRepositoryLogs(t *testing.T) {
	repo := newTestRepo(t)

	a, err := repo.Create("a", time.Minute)
	require.NoError(t, err)
	b, err := repo.Create("b", time.Minute)
	require.NoError(t, err)

	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	first := timelog.New(a.ID, start, start.Add(time.Minute), true)
	first.Tag = "focus"
	second := timelog.New(a.ID, start.Add(time.Hour), start.Add(time.Hour+30*time.Second), false)
	other := timelog.New(b.ID, start, start.Add(10*time.Second), false)

	for _, l := range []*timelog.TimeLog{first, second, other} {
		require.NoError(t, repo.CreateLog(l))
		assert.NotZero(t, l.ID)
	}

	logs, err := repo.GetLogsByProject(a.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, second.SessionID, logs[0].SessionID)
	assert.Equal(t, first.SessionID, logs[1].SessionID)
	assert.Equal(t, "focus", logs[1].Tag)
	assert.True(t, logs[1].Finished)
	assert.Equal(t, time.Minute, logs[1].Duration)
	assert.True(t, logs[1].StartedAt.Equal(start))

	all, err := repo.GetAllLogs()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ProjectName)

	require.NoError(t, repo.Delete(a.ID))
	logs, err = repo.GetLogsByProject(a.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestProjectTimerRoundTrip(t *testing.T) {
	p := NewProject("x", time.Minute)
	p.Remaining = 20 * time.Second

	tm := p.Timer()
	assert.Equal(t, 20*time.Second, tm.Remaining())
	assert.False(t, tm.Finished())

	tm.Tick(5 * time.Second)
	p.Sync(tm)
	assert.Equal(t, 15*time.Second, p.Remaining)
	assert.Equal(t, 45*time.Second, p.Elapsed())
}

func TestProjectTimerRestoresFinished(t *testing.T) {
	p := NewProject("x", time.Minute)
	p.Remaining = 0

	tm := p.Timer()
	assert.True(t, tm.Finished())
	assert.False(t, tm.JustFinished())
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"25", 25 * time.Minute, false},
		{"90s", 90 * time.Second, false},
		{"1h30m", 90 * time.Minute, false},
		{"1.5", 90 * time.Second, false},
		{"0.25", 15 * time.Second, false},
		{"153722867", 153722867 * time.Minute, false},
		{"153722867281", 0, true},
		{"99999999999", 0, true},
		{"soon", 0, true},
		{".", 0, true},
		{"1.2.3", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestRepositoryCorruptLogTime(t *testing.T) {
	repo := newTestRepo(t)

	p, err := repo.Create("a", time.Minute)
	require.NoError(t, err)
	_, err = repo.db.Exec(
		"INSERT INTO time_logs (session_id, project_id, started_at, stopped_at, duration) VALUES (?, ?, ?, ?, ?)",
		"broken", p.ID, "yesterday", "2024-05-01T10:00:00Z", 0,
	)
	require.NoError(t, err)

	_, err = repo.GetLogsByProject(p.ID)
	assert.ErrorContains(t, err, "started_at")

	_, err = repo.GetAllLogs()
	assert.ErrorContains(t, err, "started_at")
}
