package domain

import "time"

// ArtifactResult describes one artifact that was produced and uploaded.
type ArtifactResult struct {
	Kind     ArtifactKind  `json:"kind"`
	Filename string        `json:"filename"`
	Key      string        `json:"key"`
	Bytes    int64         `json:"bytes"`
	Duration time.Duration `json:"duration"`
}

// TaskResult contains the outcome of a single task.
type TaskResult struct {
	Name      string            `json:"name"`
	Timestamp string            `json:"timestamp"`
	Skipped   bool              `json:"skipped,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Valid     bool              `json:"valid"`
	Artifacts []*ArtifactResult `json:"artifacts,omitempty"`
	Duration  time.Duration     `json:"duration"`
}

// Bytes returns the total size of the task's uploaded artifacts.
func (t *TaskResult) Bytes() int64 {
	var total int64
	for _, a := range t.Artifacts {
		total += a.Bytes
	}
	return total
}

// RunResult contains the results of a complete run over the task list.
type RunResult struct {
	Mode           Mode          `json:"mode"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	Duration       time.Duration `json:"duration"`
	Success        bool          `json:"success"`
	TasksCompleted int           `json:"tasks_completed"`
	Tasks          []*TaskResult `json:"tasks,omitempty"`
	Warnings       []string      `json:"warnings,omitempty"`
	Error          string        `json:"error,omitempty"`
}

// NewRunResult creates a new RunResult started at start.
func NewRunResult(mode Mode, start time.Time) *RunResult {
	return &RunResult{
		Mode:      mode,
		StartTime: start,
		Tasks:     make([]*TaskResult, 0),
	}
}

// AddTask records a task result.
func (r *RunResult) AddTask(t *TaskResult) {
	if t != nil {
		r.Tasks = append(r.Tasks, t)
	}
}

// AddWarning records a non-fatal problem.
func (r *RunResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Bytes returns the total size of all uploaded artifacts.
func (r *RunResult) Bytes() int64 {
	var total int64
	for _, t := range r.Tasks {
		total += t.Bytes()
	}
	return total
}

// Complete marks the run as finished at end.
func (r *RunResult) Complete(end time.Time, err error) {
	r.EndTime = end
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = err == nil
	if err != nil {
		r.Error = err.Error()
	}
}
