package timelog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	stop := start.Add(25 * time.Minute)

	l := New(7, start, stop, true)
	assert.Equal(t, int64(7), l.ProjectID)
	assert.Equal(t, 25*time.Minute, l.Duration)
	assert.True(t, l.Finished)
	assert.Empty(t, l.Tag)

	_, err := uuid.Parse(l.SessionID)
	require.NoError(t, err)
}

func TestNewSessionIDsDiffer(t *testing.T) {
	now := time.Now()
	a := New(1, now, now, false)
	b := New(1, now, now, false)
	assert.NotEqual(t, a.SessionID, b.SessionID)
}
