package project

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"countdown_tui/internal/timelog"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("project not found")

type Repository struct {
	db *sql.DB
}

func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps foreign keys and in-memory databases consistent.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	repo := &Repository{db: db}
	if err := repo.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return repo, nil
}

func (r *Repository) init() error {
	if _, err := r.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return err
	}

	projectsQuery := `
	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		duration INTEGER NOT NULL,
		remaining INTEGER NOT NULL,
		running INTEGER DEFAULT 0
	)
	`
	if _, err := r.db.Exec(projectsQuery); err != nil {
		return err
	}

	timeLogsQuery := `
	CREATE TABLE IF NOT EXISTS time_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL UNIQUE,
		project_id INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		stopped_at TEXT NOT NULL,
		duration INTEGER NOT NULL,
		tag TEXT NOT NULL DEFAULT '',
		finished INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	)
	`
	_, err := r.db.Exec(timeLogsQuery)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (Project, error) {
	var p Project
	var duration, remaining int64
	var running int
	if err := s.Scan(&p.ID, &p.Name, &duration, &remaining, &running); err != nil {
		return p, err
	}
	p.Duration = time.Duration(duration)
	p.Remaining = time.Duration(remaining)
	p.Running = running == 1
	return p, nil
}

func (r *Repository) GetAll() ([]Project, error) {
	rows, err := r.db.Query("SELECT id, name, duration, remaining, running FROM projects ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *Repository) GetByID(id int64) (*Project, error) {
	row := r.db.QueryRow("SELECT id, name, duration, remaining, running FROM projects WHERE id = ?", id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Create(name string, duration time.Duration) (*Project, error) {
	p := NewProject(name, duration)
	result, err := r.db.Exec(
		"INSERT INTO projects (name, duration, remaining, running) VALUES (?, ?, ?, 0)",
		p.Name, int64(p.Duration), int64(p.Remaining),
	)
	if err != nil {
		return nil, err
	}

	p.ID, err = result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) Update(p *Project) error {
	running := 0
	if p.Running {
		running = 1
	}
	result, err := r.db.Exec(
		"UPDATE projects SET name = ?, duration = ?, remaining = ?, running = ? WHERE id = ?",
		p.Name, int64(p.Duration), int64(p.Remaining), running, p.ID,
	)
	if err != nil {
		return err
	}
	return expectRow(result, p.ID)
}

func (r *Repository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectRow(result, id)
}

func expectRow(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

func (r *Repository) StopAllTimers() error {
	_, err := r.db.Exec("UPDATE projects SET running = 0")
	return err
}

func (r *Repository) CreateLog(log *timelog.TimeLog) error {
	finished := 0
	if log.Finished {
		finished = 1
	}
	result, err := r.db.Exec(
		"INSERT INTO time_logs (session_id, project_id, started_at, stopped_at, duration, tag, finished) VALUES (?, ?, ?, ?, ?, ?, ?)",
		log.SessionID,
		log.ProjectID,
		log.StartedAt.Format(time.RFC3339),
		log.StoppedAt.Format(time.RFC3339),
		int64(log.Duration),
		log.Tag,
		finished,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	log.ID = id
	return nil
}

func scanLog(l *timelog.TimeLog, startedAt, stoppedAt string, duration int64, finished int) error {
	var err error
	if l.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return fmt.Errorf("time log %d started_at: %w", l.ID, err)
	}
	if l.StoppedAt, err = time.Parse(time.RFC3339, stoppedAt); err != nil {
		return fmt.Errorf("time log %d stopped_at: %w", l.ID, err)
	}
	l.Duration = time.Duration(duration)
	l.Finished = finished == 1
	return nil
}

func (r *Repository) GetLogsByProject(projectID int64) ([]timelog.TimeLog, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, project_id, started_at, stopped_at, duration, tag, finished
		 FROM time_logs WHERE project_id = ? ORDER BY stopped_at DESC, id DESC`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []timelog.TimeLog
	for rows.Next() {
		var l timelog.TimeLog
		var startedAt, stoppedAt string
		var duration int64
		var finished int
		if err := rows.Scan(&l.ID, &l.SessionID, &l.ProjectID, &startedAt, &stoppedAt, &duration, &l.Tag, &finished); err != nil {
			return nil, err
		}
		if err := scanLog(&l, startedAt, stoppedAt, duration, finished); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// LogWithProject pairs a TimeLog with the project name it belongs to.
type LogWithProject struct {
	Log         timelog.TimeLog
	ProjectName string
}

func (r *Repository) GetAllLogs() ([]LogWithProject, error) {
	rows, err := r.db.Query(
		`SELECT tl.id, tl.session_id, tl.project_id, p.name, tl.started_at, tl.stopped_at, tl.duration, tl.tag, tl.finished
		 FROM time_logs tl
		 JOIN projects p ON tl.project_id = p.id
		 ORDER BY tl.stopped_at DESC, tl.id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []LogWithProject
	for rows.Next() {
		var lp LogWithProject
		var startedAt, stoppedAt string
		var duration int64
		var finished int
		if err := rows.Scan(
			&lp.Log.ID, &lp.Log.SessionID, &lp.Log.ProjectID, &lp.ProjectName,
			&startedAt, &stoppedAt, &duration, &lp.Log.Tag, &finished,
		); err != nil {
			return nil, err
		}
		if err := scanLog(&lp.Log, startedAt, stoppedAt, duration, finished); err != nil {
			return nil, err
		}
		results = append(results, lp)
	}
	return results, rows.Err()
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// ParseDuration accepts a bare number of minutes, fractional minutes
// included, or a Go duration string.
func ParseDuration(input string) (time.Duration, error) {
	if isMinutes(input) {
		minutes, err := strconv.ParseFloat(input, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration format %q", input)
		}
		d := math.Round(minutes * float64(time.Minute))
		if d >= math.MaxInt64 {
			return 0, fmt.Errorf("duration %q minutes is too large", input)
		}
		return time.Duration(d), nil
	}

	d, err := time.ParseDuration(input)
	if err == nil {
		return d, nil
	}

	return 0, fmt.Errorf("invalid duration format %q", input)
}

func isMinutes(input string) bool {
	if input == "" {
		return false
	}
	for _, r := range input {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}
