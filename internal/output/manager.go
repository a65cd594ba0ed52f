package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

type StepOutput struct {
	ID        int
	Name      string
	Status    string
	Message   string
	StartTime time.Time
	EndTime   time.Time
	Error     error
}

type ErrorReport struct {
	StepName string
	Error    error
	Time     time.Time
}

// Manager tracks the steps of a single command run (lookup, download,
// extract, ...) and prints one status line per transition.
type Manager struct {
	mutex  sync.Mutex
	out    io.Writer
	steps  []*StepOutput
	errors []ErrorReport
}

func NewManager(out io.Writer) *Manager {
	return &Manager{out: out}
}

func (m *Manager) Register(name string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	step := &StepOutput{
		ID:        len(m.steps) + 1,
		Name:      name,
		Status:    "pending",
		StartTime: time.Now(),
	}
	m.steps = append(m.steps, step)
	m.printStep(step)
	return step.ID
}

func (m *Manager) Complete(id int, message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if step := m.get(id); step != nil {
		if message == "" {
			message = fmt.Sprintf("Completed %s", step.Name)
		}
		step.Message = message
		step.Status = "success"
		step.EndTime = time.Now()
		m.printStep(step)
	}
}

func (m *Manager) ReportError(id int, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if step := m.get(id); step != nil {
		step.Status = "error"
		step.Error = err
		step.Message = fmt.Sprintf("Failed %s", step.Name)
		step.EndTime = time.Now()
		m.errors = append(m.errors, ErrorReport{StepName: step.Name, Error: err, Time: step.EndTime})
		m.printStep(step)
	}
}

func (m *Manager) GetStatus(id int) string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if step := m.get(id); step != nil {
		return step.Status
	}
	return "unknown"
}

func (m *Manager) Failures() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.errors)
}

func (m *Manager) GetStatusIndicator(status string) string {
	switch status {
	case "success", "pass":
		return successStyle.Render(StyleSymbols["pass"])
	case "error", "fail":
		return errorStyle.Render(StyleSymbols["fail"])
	case "warning":
		return warningStyle.Render(StyleSymbols["warning"])
	case "pending":
		return pendingStyle.Render(StyleSymbols["pending"])
	default:
		return FInfo(StyleSymbols["bullet"])
	}
}

func (m *Manager) get(id int) *StepOutput {
	if id < 1 || id > len(m.steps) {
		return nil
	}
	return m.steps[id-1]
}

func (m *Manager) printStep(step *StepOutput) {
	indicator := m.GetStatusIndicator(step.Status)
	var styled string
	switch step.Status {
	case "success":
		styled = FSuccess(step.Message)
	case "error":
		styled = FError(step.Message)
	default:
		styled = FPending(step.Name)
	}
	elapsed := time.Duration(0)
	if !step.EndTime.IsZero() {
		elapsed = step.EndTime.Sub(step.StartTime).Round(time.Second)
	}
	fmt.Fprintf(m.out, "%s%s %s %s\n", strings.Repeat(" ", 2), indicator, FDebug(elapsed.String()), styled)
}

func (m *Manager) ShowSummary() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	var success int
	for _, step := range m.steps {
		if step.Status == "success" {
			success++
		}
	}
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, strings.Repeat(" ", 2)+success2Style.Render(fmt.Sprintf("Completed %d of %d", success, len(m.steps))))
	if len(m.errors) == 0 {
		return
	}
	fmt.Fprintln(m.out, strings.Repeat(" ", 2)+errorStyle.Render(fmt.Sprintf("Failed %d of %d", len(m.errors), len(m.steps))))
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, strings.Repeat(" ", 2)+errorStyle.Bold(true).Render("Errors:"))
	for i, report := range m.errors {
		fmt.Fprintf(m.out, "%s%s %s %s\n",
			strings.Repeat(" ", 2+2),
			errorStyle.Render(fmt.Sprintf("%d.", i+1)),
			debugStyle.Render(fmt.Sprintf("[%s]", report.Time.Format("15:04:05"))),
			errorStyle.Render(fmt.Sprintf("Step: %s", report.StepName)))
		fmt.Fprintf(m.out, "%s%s\n", strings.Repeat(" ", 2+4), errorStyle.Render(fmt.Sprintf("Error: %v", report.Error)))
	}
}
