// Package conversation persists Edura chat transcripts as one JSON file per
// conversation.
package conversation

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleEdura     = "edura"
)

type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ProjectContext ties a conversation to a curriculum position. Every field is
// optional; ids come from the bot endpoint, indices from project
// conversations.
type ProjectContext struct {
	ProjectID string `json:"project_id,omitempty"`
	TaskID    string `json:"task_id,omitempty"`
	StepID    string `json:"step_id,omitempty"`
	TaskIndex *int   `json:"task_index,omitempty"`
	StepIndex *int   `json:"step_index,omitempty"`
}

func (pc ProjectContext) IsZero() bool {
	return pc.ProjectID == "" && pc.TaskID == "" && pc.StepID == "" && pc.TaskIndex == nil && pc.StepIndex == nil
}

// Indices returns the task and step indices, defaulting to zero.
func (pc ProjectContext) Indices() (int, int) {
	task, step := 0, 0
	if pc.TaskIndex != nil {
		task = *pc.TaskIndex
	}
	if pc.StepIndex != nil {
		step = *pc.StepIndex
	}
	return task, step
}

type Conversation struct {
	ConversationID uuid.UUID      `json:"conversation_id"`
	UserID         uuid.UUID      `json:"user_id"`
	Title          string         `json:"title"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	ProjectContext ProjectContext `json:"project_context"`
	Messages       []Message      `json:"messages"`
}

type Summary struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (c *Conversation) Summary() Summary {
	return Summary{
		ConversationID: c.ConversationID,
		Title:          c.Title,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// StepInfo describes the step a project conversation currently points at.
type StepInfo struct {
	ProjectName      string   `json:"project_name"`
	TaskName         string   `json:"task_name"`
	TaskDescription  string   `json:"task_description"`
	StepName         string   `json:"step_name"`
	StepDescription  string   `json:"step_description"`
	Guidelines       []string `json:"guidelines"`
	Why              []string `json:"why"`
	StarterCode      string   `json:"starter_code"`
	TaskIndex        int      `json:"task_index"`
	StepIndex        int      `json:"step_index"`
	TotalTasks       int      `json:"total_tasks"`
	TotalStepsInTask int      `json:"total_steps_in_task"`
}
