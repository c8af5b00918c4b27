package project

import (
	"time"

	"countdown_tui/internal/timer"
)

// Project is a named countdown. Remaining is the persisted copy of the
// timer's remaining time.
type Project struct {
	ID        int64
	Name      string
	Duration  time.Duration
	Remaining time.Duration
	Running   bool
}

func NewProject(name string, duration time.Duration) *Project {
	return &Project{
		Name:      name,
		Duration:  duration,
		Remaining: duration,
	}
}

// Timer rebuilds the countdown from the persisted fields. A project saved at
// zero comes back finished without reporting a fresh finish.
func (p *Project) Timer() *timer.Timer {
	t := timer.New(p.Duration)
	if p.Remaining < p.Duration {
		t.SetRemaining(p.Remaining)
	}
	if t.JustFinished() {
		t.Tick(0)
	}
	return t
}

// Sync copies the timer's state back onto the project.
func (p *Project) Sync(t *timer.Timer) {
	p.Duration = t.Duration()
	p.Remaining = t.Remaining()
}

func (p *Project) Elapsed() time.Duration {
	if p.Remaining >= p.Duration {
		return 0
	}
	return p.Duration - p.Remaining
}
