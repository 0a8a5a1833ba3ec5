// Package llm sends Edura prompts to Gemini.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/yungbote/eduverse-backend/internal/pkg/errors"
	"github.com/yungbote/eduverse-backend/internal/platform/apierr"
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Engine turns a prompt into a reply.
type Engine interface {
	Generate(ctx context.Context, msgs []Message) (string, error)
	Available() bool
}

// Recorder receives one observation per Generate call.
type Recorder interface {
	ObserveLLM(outcome string, d time.Duration)
}

const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeRejected    = "rejected"
	OutcomeUnavailable = "unavailable"
)

// ErrUnavailable is returned when no model is configured or the breaker is open.
var ErrUnavailable = apierr.New(http.StatusServiceUnavailable, "llm_unavailable", errors.New("the AI assistant is currently unavailable"))

// UnavailableEngine stands in when GEMINI_API_KEY is unset.
type UnavailableEngine struct{}

func (UnavailableEngine) Generate(context.Context, []Message) (string, error) {
	return "", ErrUnavailable
}

func (UnavailableEngine) Available() bool { return false }

// SafetyHigh keeps replies on the current project step.
const SafetyHigh = "high"

const safetyInstruction = "IMPORTANT: Only provide guidance related to the current project step. Do not ask for general context or offer unrelated suggestions."

// GenerateWithSafety inserts the step-focus instruction after the system
// message when level is "high".
func GenerateWithSafety(ctx context.Context, e Engine, msgs []Message, level string) (string, error) {
	if strings.EqualFold(strings.TrimSpace(level), SafetyHigh) {
		at := 1
		if len(msgs) == 0 {
			at = 0
		}
		withSafety := make([]Message, 0, len(msgs)+1)
		withSafety = append(withSafety, msgs[:at]...)
		withSafety = append(withSafety, Message{Role: RoleUser, Content: safetyInstruction})
		withSafety = append(withSafety, msgs[at:]...)
		msgs = withSafety
	}
	return e.Generate(ctx, msgs)
}

// Analysis is the "analysis" structured shape. The reply is not parsed
// further yet; improvements and next steps stay empty.
type Analysis struct {
	Analysis     string   `json:"analysis"`
	Improvements []string `json:"improvements"`
	NextSteps    []string `json:"next_steps"`
}

type Natural struct {
	Response string `json:"response"`
}

const FormatAnalysis = "analysis"

// GenerateStructured wraps the reply in the requested shape: Analysis for
// "analysis", Natural for anything else.
func GenerateStructured(ctx context.Context, e Engine, msgs []Message, format string) (any, error) {
	out, err := e.Generate(ctx, msgs)
	if err != nil {
		return nil, err
	}
	if format == FormatAnalysis {
		return Analysis{Analysis: out, Improvements: []string{}, NextSteps: []string{}}, nil
	}
	return Natural{Response: out}, nil
}

func validateMessages(msgs []Message) ([]int, error) {
	if len(msgs) == 0 {
		return nil, fmt.Errorf("empty message list: %w", pkgerrors.ErrInvalidArgument)
	}
	var empty []int
	for i, m := range msgs {
		if m.Role != RoleUser && m.Role != RoleModel {
			return nil, fmt.Errorf("message %d has role %q: %w", i, m.Role, pkgerrors.ErrInvalidArgument)
		}
		if strings.TrimSpace(m.Content) == "" {
			empty = append(empty, i)
		}
	}
	return empty, nil
}

var contextMarkers = []string{"project:", "task:", "step:"}

func hasProjectContext(msgs []Message) bool {
	for _, m := range msgs {
		lowered := strings.ToLower(m.Content)
		for _, marker := range contextMarkers {
			if strings.Contains(lowered, marker) {
				return true
			}
		}
	}
	return false
}

var genericPatterns = []string{
	"i need more context",
	"what project are you working on",
	"could you provide more details",
	"i don't have enough information",
	"please tell me more about",
	"what kind of project",
	"what programming language",
	"what's your skill level",
}

const focusReminder = "**Reminder**: I can see you're working on a specific project step. " +
	"Let me focus on helping you with that particular task. " +
	"If you need help with the current step, just let me know!"

// checkQuality appends a focus reminder to generic replies given despite a
// project context. It reports whether the reminder was added.
func checkQuality(reply string, projectContext bool) (string, bool) {
	if !projectContext {
		return reply, false
	}
	lowered := strings.ToLower(reply)
	for _, p := range genericPatterns {
		if strings.Contains(lowered, p) {
			return reply + "\n\n" + focusReminder, true
		}
	}
	return reply, false
}
