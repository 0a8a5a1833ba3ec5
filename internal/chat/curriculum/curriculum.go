// Package curriculum loads the static project dataset (projects, tasks and
// steps) that Edura uses to ground its prompts.
package curriculum

import (
	"encoding/json"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Project struct {
	ProjectID   string  `json:"project_id" yaml:"project_id" validate:"required"`
	ProjectName string  `json:"project_name" yaml:"project_name" validate:"required"`
	Description string  `json:"description" yaml:"description" validate:"required"`
	Difficulty  string  `json:"difficulty" yaml:"difficulty" validate:"required"`
	Tasks       []*Task `json:"tasks" yaml:"tasks" validate:"dive,required"`
}

type Task struct {
	TaskID      string  `json:"task_id" yaml:"task_id" validate:"required"`
	TaskName    string  `json:"task_name" yaml:"task_name" validate:"required"`
	Description string  `json:"description" yaml:"description" validate:"required"`
	Steps       []*Step `json:"steps" yaml:"steps" validate:"dive,required"`
}

type Step struct {
	StepID       string   `json:"step_id" yaml:"step_id" validate:"required"`
	StepName     string   `json:"step_name" yaml:"step_name" validate:"required"`
	Description  string   `json:"description" yaml:"description" validate:"required"`
	Guidelines   []string `json:"guidelines" yaml:"guidelines" validate:"required"`
	Why          Lines    `json:"why" yaml:"why" validate:"required"`
	Hints        []string `json:"hints,omitempty" yaml:"hints,omitempty"`
	StartingCode string   `json:"starting_code,omitempty" yaml:"starting_code,omitempty"`
	FinalCode    string   `json:"final_code,omitempty" yaml:"final_code,omitempty"`
}

// Summary is the listing shape used by the projects endpoint.
type Summary struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	Difficulty  string `json:"difficulty"`
	Description string `json:"description"`
}

type Stats struct {
	TotalProjects int       `json:"total_projects"`
	TotalTasks    int       `json:"total_tasks"`
	TotalSteps    int       `json:"total_steps"`
	LoadedAt      time.Time `json:"loaded_at"`
}

func (p *Project) Summary() Summary {
	return Summary{
		ProjectID:   p.ProjectID,
		ProjectName: p.ProjectName,
		Difficulty:  p.Difficulty,
		Description: p.Description,
	}
}

// TaskAt returns the task at index i, or nil when out of range.
func (p *Project) TaskAt(i int) *Task {
	if p == nil || i < 0 || i >= len(p.Tasks) {
		return nil
	}
	return p.Tasks[i]
}

func (t *Task) StepAt(i int) *Step {
	if t == nil || i < 0 || i >= len(t.Steps) {
		return nil
	}
	return t.Steps[i]
}

// Lines accepts either a single string or a list of strings. Dataset files
// are inconsistent about the "why" field.
type Lines []string

func (l *Lines) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*l = Lines{s}
		return nil
	}
	var xs []string
	if err := json.Unmarshal(b, &xs); err != nil {
		return err
	}
	if xs == nil {
		xs = []string{}
	}
	*l = xs
	return nil
}

func (l *Lines) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		if n.Tag == "!!null" {
			return nil
		}
		*l = Lines{n.Value}
		return nil
	}
	var xs []string
	if err := n.Decode(&xs); err != nil {
		return err
	}
	if xs == nil {
		xs = []string{}
	}
	*l = xs
	return nil
}

func (l Lines) String() string {
	return strings.Join(l, " ")
}
