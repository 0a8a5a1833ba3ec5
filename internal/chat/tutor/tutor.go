// Package tutor gives rule-based feedback on a snippet of learner code.
package tutor

import (
	"fmt"
	"strings"
	"time"
)

type Improvement struct {
	Type        string `json:"type"`
	Original    string `json:"original"`
	Improved    string `json:"improved"`
	Explanation string `json:"explanation"`
}

type Feedback struct {
	Analysis              string        `json:"analysis"`
	Improvements          []Improvement `json:"improvements"`
	LearningOpportunities []string      `json:"learning_opportunities"`
	ChallengeSuggestion   *string       `json:"challenge_suggestion,omitempty"`
}

type Context struct {
	StepTitle   string    `json:"step_title"`
	Timestamp   time.Time `json:"timestamp"`
	UserMessage string    `json:"user_message"`
}

type Response struct {
	TutorResponse Feedback `json:"tutor_response"`
	Context       Context  `json:"context"`
}

const (
	DefaultStepTitle   = "Current Step"
	DefaultUserMessage = "Can you help me improve this?"
)

type rule struct {
	match   func(code, lowered string) bool
	message string
}

var opportunityRules = []rule{
	{func(c, l string) bool { return strings.Contains(l, "function") || strings.Contains(c, "def ") }, "Function definition and organization"},
	{func(_, l string) bool { return strings.Contains(l, "fetch") || strings.Contains(l, "api") }, "API integration and error handling"},
	{func(c, l string) bool { return strings.Contains(l, "state") || strings.Contains(c, "useState") }, "State management and React hooks"},
	{func(_, l string) bool { return strings.Contains(l, "auth") || strings.Contains(l, "token") }, "Authentication and security"},
	{func(c, _ string) bool { return strings.Contains(c, "function") && !strings.Contains(c, "=>") }, "Consider using arrow functions for consistency"},
}

var needsRules = []rule{
	{func(c, _ string) bool { return strings.Contains(c, "test-user-id") }, "Hardcoded values should be replaced with dynamic data"},
	{func(c, _ string) bool { return strings.Count(c, "console.log") > 3 }, "Consider using proper logging instead of multiple console.log statements"},
}

var challenges = []struct {
	keyword, suggestion string
}{
	{"function", "If you want a challenge, try refactoring this into a reusable component/function."},
	{"api", "If you want a challenge, try implementing proper error handling and loading states."},
	{"state", "If you want a challenge, try implementing a custom hook for this functionality."},
}

// Analyze inspects code for the step titled stepTitle.
func Analyze(code, stepTitle, userMessage string, now time.Time) Response {
	if strings.TrimSpace(stepTitle) == "" {
		stepTitle = DefaultStepTitle
	}
	if strings.TrimSpace(userMessage) == "" {
		userMessage = DefaultUserMessage
	}
	lowered := strings.ToLower(code)

	opportunities := []string{}
	for _, r := range opportunityRules {
		if r.match(code, lowered) {
			opportunities = append(opportunities, r.message)
		}
	}
	var needs []string
	for _, r := range needsRules {
		if r.match(code, lowered) {
			needs = append(needs, r.message)
		}
	}

	summary := "Your code works, but some areas could be enhanced"
	if len(needs) > 0 {
		summary = "Your code works, but " + strings.ToLower(strings.Join(needs, ", "))
	}

	return Response{
		TutorResponse: Feedback{
			Analysis:              summary,
			Improvements:          improvements(code),
			LearningOpportunities: opportunities,
			ChallengeSuggestion:   challenge(opportunities),
		},
		Context: Context{
			StepTitle:   stepTitle,
			Timestamp:   now.UTC(),
			UserMessage: userMessage,
		},
	}
}

func improvements(code string) []Improvement {
	out := []Improvement{}
	if strings.Contains(code, "test-user-id") {
		out = append(out, Improvement{
			Type:        "naming",
			Original:    "test-user-id",
			Improved:    "authenticatedUserId",
			Explanation: "Renamed hardcoded value to descriptive variable name for clarity and maintainability",
		})
	}
	if strings.Contains(code, "function ") && !strings.Contains(code, "=>") {
		out = append(out, Improvement{
			Type:        "syntax",
			Original:    "function example()",
			Improved:    "const example = () =>",
			Explanation: "Use arrow functions for consistency with modern JavaScript practices",
		})
	}
	if strings.Contains(code, "fetch(") && !strings.Contains(code, "catch") {
		out = append(out, Improvement{
			Type:        "error_handling",
			Original:    "fetch(url)",
			Improved:    "fetch(url).then(res => res.json()).catch(err => console.error(err))",
			Explanation: "Add error handling to prevent unhandled promise rejections",
		})
	}
	return out
}

// challenge checks keywords in precedence order across all opportunities,
// ignoring case.
func challenge(opportunities []string) *string {
	joined := strings.ToLower(strings.Join(opportunities, " "))
	for _, c := range challenges {
		if strings.Contains(joined, c.keyword) {
			s := c.suggestion
			return &s
		}
	}
	return nil
}

// Format renders feedback as markdown for the chat window.
func Format(resp Response) string {
	fb := resp.TutorResponse
	var sb strings.Builder
	sb.WriteString("**Edura's Analysis**\n\n")
	sb.WriteString("**Analysis:**\n")
	sb.WriteString(fb.Analysis)
	sb.WriteString("\n\n**Improvements:**\n")
	for _, imp := range fb.Improvements {
		fmt.Fprintf(&sb, "- %s\n", imp.Explanation)
	}
	if len(fb.LearningOpportunities) > 0 {
		sb.WriteString("\n**Learning Opportunities:**\n")
		for _, op := range fb.LearningOpportunities {
			fmt.Fprintf(&sb, "- %s\n", op)
		}
	}
	if fb.ChallengeSuggestion != nil {
		fmt.Fprintf(&sb, "\n**Challenge:** %s\n", *fb.ChallengeSuggestion)
	}
	return strings.TrimSpace(sb.String())
}
