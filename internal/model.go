package internal

import (
	"fmt"
	"strconv"
	"time"

	"countdown_tui/internal/project"
	"countdown_tui/internal/timelog"
	"countdown_tui/internal/timer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// MsgTick carries the real time that passed since the previous tick. The
// host measures it; the model only applies it to running countdowns.
type MsgTick struct {
	Delta time.Duration
}

// adjustStep is how much +/- move the elapsed time.
const adjustStep = time.Minute

type Model struct {
	Projects       []*project.Project
	SelectedIndex  int
	ShowAddForm    bool
	ShowEditForm   bool
	EditingProject *project.Project
	NewProjectName string
	NewProjectTime string
	InputFocus     int
	Err            error
	Timers         map[int64]*timer.Timer

	repo            *project.Repository
	log             zerolog.Logger
	defaultDuration time.Duration
	now             func() time.Time

	// Session tracking for time logs
	SessionStarts map[int64]time.Time // tracks when each project's current session started
	lastAdvanced  map[int64]time.Time // when each running countdown was last ticked

	// Tag input state (shown after pausing or finishing a countdown)
	ShowTagInput bool
	TagInput     string
	PendingLog   *timelog.TimeLog // the log entry waiting for a tag

	// Time logs per project
	TimeLogs map[int64][]timelog.TimeLog

	// All-logs viewer state
	ShowLogView   bool
	LogViewScroll int
	AllLogs       []project.LogWithProject
}

func NewModel(repo *project.Repository, defaultDuration time.Duration, log zerolog.Logger) (*Model, error) {
	projectList, err := repo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	m := &Model{
		Projects:        make([]*project.Project, len(projectList)),
		Timers:          make(map[int64]*timer.Timer),
		repo:            repo,
		log:             log,
		defaultDuration: defaultDuration,
		now:             time.Now,
		SessionStarts:   make(map[int64]time.Time),
		lastAdvanced:    make(map[int64]time.Time),
		TimeLogs:        make(map[int64][]timelog.TimeLog),
	}

	for i := range projectList {
		p := &projectList[i]
		m.Projects[i] = p
		t := p.Timer()
		m.Timers[p.ID] = t
		if p.Running && !t.Finished() {
			m.SessionStarts[p.ID] = m.now()
			m.lastAdvanced[p.ID] = m.now()
		} else {
			p.Running = false
		}

		logs, err := repo.GetLogsByProject(p.ID)
		if err != nil {
			m.log.Warn().Err(err).Int64("project", p.ID).Msg("failed to load time logs")
			continue
		}
		m.TimeLogs[p.ID] = logs
	}

	m.log.Info().Int("projects", len(m.Projects)).Msg("model loaded")
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MsgTick:
		m.tick(msg.Delta)
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		return m, nil
	}
	return m, nil
}

// tick applies delta to every running countdown, capped at the time each one
// has actually been running since it was last advanced.
func (m *Model) tick(delta time.Duration) {
	now := m.now()
	for _, p := range m.Projects {
		if !p.Running {
			continue
		}
		d := delta
		if last, ok := m.lastAdvanced[p.ID]; ok {
			d = min(d, now.Sub(last))
		}
		m.lastAdvanced[p.ID] = now

		t := m.Timers[p.ID]
		t.Tick(d)
		p.Sync(t)
		if t.JustFinished() {
			m.finish(p)
		}
	}
}

func (m *Model) View() string {
	if m.ShowTagInput {
		return m.tagInputView()
	}

	if m.ShowLogView {
		return m.allLogsView()
	}

	if len(m.Projects) == 0 && !m.ShowAddForm {
		return m.emptyStateView()
	}

	if m.ShowAddForm {
		return m.addFormView()
	}

	if m.ShowEditForm {
		return m.editFormView()
	}

	return m.mainView()
}

func (m *Model) SelectedProject() *project.Project {
	if m.SelectedIndex >= 0 && m.SelectedIndex < len(m.Projects) {
		return m.Projects[m.SelectedIndex]
	}
	return nil
}

func (m *Model) SelectedTimer() *timer.Timer {
	p := m.SelectedProject()
	if p == nil {
		return nil
	}
	return m.Timers[p.ID]
}

func (m *Model) AddProject(name string, duration time.Duration) error {
	p, err := m.repo.Create(name, duration)
	if err != nil {
		return m.fail(err, "failed to create project")
	}
	m.Timers[p.ID] = p.Timer()
	m.TimeLogs[p.ID] = nil
	m.Projects = append(m.Projects, p)
	m.SelectedIndex = len(m.Projects) - 1
	m.log.Info().Int64("project", p.ID).Str("name", name).Dur("duration", duration).Msg("project created")
	return nil
}

func (m *Model) UpdateProject(p *project.Project) error {
	if err := m.repo.Update(p); err != nil {
		return m.fail(err, "failed to update project")
	}
	for i, proj := range m.Projects {
		if proj.ID == p.ID {
			m.Projects[i] = p
			break
		}
	}
	return nil
}

func (m *Model) DeleteProject(id int64) error {
	if err := m.repo.Delete(id); err != nil {
		return m.fail(err, "failed to delete project")
	}
	delete(m.Timers, id)
	delete(m.SessionStarts, id)
	delete(m.lastAdvanced, id)
	delete(m.TimeLogs, id)
	for i, p := range m.Projects {
		if p.ID == id {
			m.Projects = append(m.Projects[:i], m.Projects[i+1:]...)
			break
		}
	}
	if m.SelectedIndex >= len(m.Projects) {
		m.SelectedIndex = len(m.Projects) - 1
	}
	if m.SelectedIndex < 0 {
		m.SelectedIndex = 0
	}
	m.log.Info().Int64("project", id).Msg("project deleted")
	return nil
}

// Start resumes the countdown of p, restarting it first if it had finished.
// Any other running countdown is paused and logged without a tag.
func (m *Model) Start(p *project.Project) {
	m.StopAllTimers()
	t := m.Timers[p.ID]
	if t.Remaining() == 0 {
		t.Reset()
	}
	p.Sync(t)
	p.Running = true
	m.SessionStarts[p.ID] = m.now()
	m.lastAdvanced[p.ID] = m.now()
	m.UpdateProject(p)
	m.log.Info().Int64("project", p.ID).Stringer("timer", t).Msg("countdown started")
}

// Pause stops the countdown of p and opens the tag prompt for the session.
func (m *Model) Pause(p *project.Project) {
	m.stop(p, false)
	m.log.Info().Int64("project", p.ID).Stringer("timer", m.Timers[p.ID]).Msg("countdown paused")
}

// finish handles the tick on which a running countdown reached zero.
func (m *Model) finish(p *project.Project) {
	m.stop(p, true)
	m.log.Info().Int64("project", p.ID).Str("name", p.Name).Msg("countdown finished")
}

func (m *Model) stop(p *project.Project, finished bool) {
	if m.catchUp(p) {
		finished = true
	}
	p.Running = false
	m.UpdateProject(p)

	l := m.sessionLog(p, finished)
	if m.PendingLog != nil {
		// A prompt is already open; record this one untagged.
		m.saveLog(l)
		return
	}
	m.PendingLog = l
	m.TagInput = ""
	m.ShowTagInput = true
}

// catchUp charges p's countdown with the running time since its last tick
// and reports whether that finished it.
func (m *Model) catchUp(p *project.Project) bool {
	t := m.Timers[p.ID]
	if last, ok := m.lastAdvanced[p.ID]; ok && !t.Finished() {
		t.Tick(m.now().Sub(last))
	}
	delete(m.lastAdvanced, p.ID)
	p.Sync(t)
	return t.JustFinished()
}

func (m *Model) sessionLog(p *project.Project, finished bool) *timelog.TimeLog {
	stoppedAt := m.now()
	startedAt := stoppedAt // fallback
	if sa, ok := m.SessionStarts[p.ID]; ok {
		startedAt = sa
		delete(m.SessionStarts, p.ID)
	}
	return timelog.New(p.ID, startedAt, stoppedAt, finished)
}

func (m *Model) saveLog(l *timelog.TimeLog) {
	if err := m.repo.CreateLog(l); err != nil {
		m.fail(err, "failed to save time log")
		return
	}
	m.TimeLogs[l.ProjectID] = append([]timelog.TimeLog{*l}, m.TimeLogs[l.ProjectID]...)
	m.log.Debug().Str("session", l.SessionID).Int64("project", l.ProjectID).
		Dur("duration", l.Duration).Str("tag", l.Tag).Msg("time log saved")
}

func (m *Model) StopAllTimers() {
	for _, p := range m.Projects {
		if !p.Running {
			continue
		}
		finished := m.catchUp(p)
		p.Running = false
		m.UpdateProject(p)
		// Note: when stopping all timers due to starting another,
		// we silently log without a tag prompt
		if _, ok := m.SessionStarts[p.ID]; ok {
			m.saveLog(m.sessionLog(p, finished))
		}
	}
}

// Reset puts the selected countdown back to its full duration and drops the
// current session.
func (m *Model) Reset(p *project.Project) {
	t := m.Timers[p.ID]
	t.Reset()
	p.Sync(t)
	p.Running = false
	delete(m.SessionStarts, p.ID)
	delete(m.lastAdvanced, p.ID)
	m.UpdateProject(p)
	m.log.Info().Int64("project", p.ID).Msg("countdown reset")
}

// AdjustElapsed moves the elapsed time of p by delta. Pushing a running
// countdown to zero finishes it.
func (m *Model) AdjustElapsed(p *project.Project, delta time.Duration) {
	t := m.Timers[p.ID]
	if t.Remaining() == 0 && delta > 0 {
		return
	}
	t.SetElapsed(t.Elapsed() + delta)
	p.Sync(t)
	if t.JustFinished() && p.Running {
		m.finish(p)
		return
	}
	m.UpdateProject(p)
	m.log.Debug().Int64("project", p.ID).Stringer("timer", t).Msg("elapsed adjusted")
}

// SetDuration changes the full length of p while keeping its elapsed time.
func (m *Model) SetDuration(p *project.Project, d time.Duration) {
	t := m.Timers[p.ID]
	elapsed := t.Elapsed()
	t.SetDuration(d)
	t.SetElapsed(elapsed)
	p.Sync(t)
	if t.JustFinished() && p.Running {
		m.finish(p)
	}
}

func (m *Model) Close() error {
	for _, p := range m.Projects {
		if !p.Running {
			continue
		}
		finished := m.catchUp(p)
		if _, ok := m.SessionStarts[p.ID]; ok {
			m.saveLog(m.sessionLog(p, finished))
		}
		if finished {
			p.Running = false
		}
		// Keep running so the countdown resumes on the next launch.
		m.UpdateProject(p)
	}
	return m.repo.Close()
}

func (m *Model) fail(err error, msg string) error {
	m.Err = fmt.Errorf("%s: %w", msg, err)
	m.log.Error().Err(err).Msg(msg)
	return m.Err
}

// parseDuration reads the form's duration field. Empty or unusable input
// falls back to the default; unusable input is also reported in Err.
func (m *Model) parseDuration(input string) time.Duration {
	if input == "" {
		return m.defaultDuration
	}
	d, err := project.ParseDuration(input)
	if err == nil && d <= 0 {
		err = fmt.Errorf("duration %s is not positive", d)
	}
	if err != nil {
		m.fail(err, fmt.Sprintf("using default %s", m.defaultDuration))
		return m.defaultDuration
	}
	return d
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// An error stays on screen until the next key.
	m.Err = nil

	if m.ShowTagInput {
		return m.handleTagInput(msg)
	}

	if m.ShowLogView {
		return m.handleLogViewInput(msg)
	}

	if m.ShowAddForm || m.ShowEditForm {
		return m.handleFormInput(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.SelectedIndex > 0 {
			m.SelectedIndex--
		}
	case "down", "j":
		if m.SelectedIndex < len(m.Projects)-1 {
			m.SelectedIndex++
		}
	case "enter":
		if p := m.SelectedProject(); p != nil {
			if p.Running {
				m.Pause(p)
			} else {
				m.Start(p)
			}
		}
	case "n":
		m.ShowAddForm = true
		m.NewProjectName = ""
		m.NewProjectTime = ""
		m.InputFocus = 0
	case "e":
		if p := m.SelectedProject(); p != nil {
			m.ShowEditForm = true
			m.EditingProject = p
			m.NewProjectName = p.Name
			m.NewProjectTime = formatMinutes(p.Duration)
			m.InputFocus = 0
		}
	case "d":
		if p := m.SelectedProject(); p != nil {
			m.DeleteProject(p.ID)
		}
	case "r":
		if p := m.SelectedProject(); p != nil {
			m.Reset(p)
		}
	case "+", "=":
		if p := m.SelectedProject(); p != nil {
			m.AdjustElapsed(p, adjustStep)
		}
	case "-":
		if p := m.SelectedProject(); p != nil {
			m.AdjustElapsed(p, -adjustStep)
		}
	case "l":
		// Open the all-logs viewer
		allLogs, err := m.repo.GetAllLogs()
		if err != nil {
			m.fail(err, "failed to load logs")
			allLogs = nil
		}
		m.AllLogs = allLogs
		m.ShowLogView = true
		m.LogViewScroll = 0
	}
	return m, nil
}

func (m *Model) handleLogViewInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc", "l":
		m.ShowLogView = false
		m.AllLogs = nil
	case "up", "k":
		if m.LogViewScroll > 0 {
			m.LogViewScroll--
		}
	case "down", "j":
		maxScroll := max(len(m.AllLogs)-1, 0)
		if m.LogViewScroll < maxScroll {
			m.LogViewScroll++
		}
	}
	return m, nil
}

func (m *Model) handleTagInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		// Save the log without a tag
		if m.PendingLog != nil {
			m.PendingLog.Tag = ""
			m.saveLog(m.PendingLog)
			m.PendingLog = nil
		}
		m.ShowTagInput = false
		m.TagInput = ""
	case "enter":
		// Save the log with the tag
		if m.PendingLog != nil {
			m.PendingLog.Tag = m.TagInput
			m.saveLog(m.PendingLog)
			m.PendingLog = nil
		}
		m.ShowTagInput = false
		m.TagInput = ""
	case "backspace":
		if len(m.TagInput) > 0 {
			runes := []rune(m.TagInput)
			m.TagInput = string(runes[:len(runes)-1])
		}
	case " ":
		m.TagInput += " "
	default:
		if msg.Type == tea.KeyRunes {
			m.TagInput += string(msg.Runes)
		}
	}
	return m, nil
}

func (m *Model) handleFormInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.closeForm()
	case "enter":
		if m.InputFocus == 0 {
			m.InputFocus = 1
			break
		}
		duration := m.parseDuration(m.NewProjectTime)
		if m.ShowAddForm {
			m.AddProject(m.NewProjectName, duration)
		} else if m.ShowEditForm && m.EditingProject != nil {
			p := m.EditingProject
			p.Name = m.NewProjectName
			m.SetDuration(p, duration)
			m.UpdateProject(p)
			m.log.Info().Int64("project", p.ID).Dur("duration", duration).Msg("project edited")
		}
		m.closeForm()
	case "backspace":
		if m.InputFocus == 0 {
			if len(m.NewProjectName) > 0 {
				runes := []rune(m.NewProjectName)
				m.NewProjectName = string(runes[:len(runes)-1])
			}
		} else {
			if len(m.NewProjectTime) > 0 {
				m.NewProjectTime = m.NewProjectTime[:len(m.NewProjectTime)-1]
			}
		}
	case "tab", "shift+tab":
		m.InputFocus = 1 - m.InputFocus
	case " ":
		if m.InputFocus == 0 {
			m.NewProjectName += " "
		}
	default:
		if msg.Type != tea.KeyRunes {
			break
		}
		if m.InputFocus == 0 {
			m.NewProjectName += string(msg.Runes)
			break
		}
		for _, r := range msg.Runes {
			if isDurationRune(r) {
				m.NewProjectTime += string(r)
			}
		}
	}
	return m, nil
}

func (m *Model) closeForm() {
	m.ShowAddForm = false
	m.ShowEditForm = false
	m.EditingProject = nil
}

func isDurationRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r == '.', r == 'h', r == 'm', r == 's':
		return true
	}
	return false
}

// formatMinutes renders d the way the duration field accepts it back.
func formatMinutes(d time.Duration) string {
	if d%time.Minute == 0 {
		return strconv.FormatInt(int64(d/time.Minute), 10)
	}
	return d.String()
}
