package prompt

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/eduverse-backend/internal/chat/conversation"
	"github.com/yungbote/eduverse-backend/internal/chat/curriculum"
	"github.com/yungbote/eduverse-backend/internal/chat/llm"
)

const systemInstruction = "You are Edura, an expert AI mentor inside EduVerse.\n" +
	"Your job is to guide users through coding projects.\n" +
	"Be clear, helpful, instructional and friendly.\n" +
	"Avoid hallucination. Use known project context when possible."

// BuildPrompt assembles the system message, up to maxMessages turns of
// history and the new input. A trailing history turn identical to userInput
// is dropped so a just-saved message is not sent twice.
func (b *Builder) BuildPrompt(conversationID uuid.UUID, userInput string, maxMessages int) []llm.Message {
	system := systemInstruction
	if pc, err := b.conversations.ProjectContext(conversationID); err != nil {
		b.log.Warn("Failed to load project context", "conversation_id", conversationID, "error", err)
	} else if pc.ProjectID != "" {
		if block := b.projectContext(pc); block != "" {
			system += "\n\nProject Context:\n" + block
		}
	}

	out := []llm.Message{{Role: llm.RoleUser, Content: system}}

	history, err := b.PrepareMemory(conversationID, maxMessages)
	if err != nil {
		b.log.Warn("Failed to load memory", "conversation_id", conversationID, "error", err)
		history = nil
	}
	if n := len(history); n > 0 && history[n-1].Role == conversation.RoleUser && history[n-1].Content == userInput {
		history = history[:n-1]
	}
	for _, m := range history {
		role := llm.RoleModel
		if m.Role == conversation.RoleUser {
			role = llm.RoleUser
		}
		out = append(out, llm.Message{Role: role, Content: m.Content})
	}

	return append(out, llm.Message{Role: llm.RoleUser, Content: userInput})
}

func (b *Builder) projectContext(pc conversation.ProjectContext) string {
	p, ok := b.curriculum.Project(pc.ProjectID)
	if !ok {
		b.log.Warn("Project context references unknown project", "project_id", pc.ProjectID)
		return ""
	}
	lines := []string{fmt.Sprintf("Project: %s (%s)", p.ProjectName, p.Difficulty)}
	if pc.TaskID == "" {
		return strings.Join(lines, "\n")
	}
	task, ok := b.curriculum.Task(pc.ProjectID, pc.TaskID)
	if !ok {
		return strings.Join(lines, "\n")
	}
	lines = append(lines, "Task: "+task.TaskName)
	if pc.StepID == "" {
		return strings.Join(lines, "\n")
	}
	step, ok := b.curriculum.Step(pc.ProjectID, pc.TaskID, pc.StepID)
	if !ok {
		return strings.Join(lines, "\n")
	}
	lines = append(lines, "Step: "+step.StepName)
	if step.Description != "" {
		lines = append(lines, "Step Description: "+step.Description)
	}
	if len(step.Guidelines) > 0 {
		lines = append(lines, "Guidelines:\n"+bullets(step.Guidelines))
	}
	return strings.Join(lines, "\n")
}

func bullets(items []string) string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, "- "+it)
	}
	return strings.Join(out, "\n")
}

const mentorPersona = `You are Edura, a friendly but concise AI mentor inside Eduverse.

Your role is to help users navigate projects, give suggestions, and explain concepts simply.

Guidelines:
- When suggesting projects, give 3-4 relevant ideas max.
- Keep explanations short, natural, and friendly.
- Avoid long lectures or unnecessary deep dives.
- Use simple, casual language like a human mentor.
- If user seems stuck, give a short helpful hint.
- Always encourage next actionable step.
- Avoid repeating the project name too many times.`

const technicalGuidance = `For technical questions:
- Give small, actionable hints rather than full solutions
- Explain concepts in simple terms
- Focus on one step at a time
- Encourage learning through doing`

const casualExample = `Example:
User: Hey Edura
Response: Hey there! I'm here to help you learn. What would you like to explore today?`

// ProjectQuestion is the bot endpoint input used when no curriculum node
// matched; the free-text project, task and step labels come from the caller.
type ProjectQuestion struct {
	Question    string
	Project     string
	Task        string
	Step        string
	UserProfile string
}

// BuildProjectPrompt renders a single-shot prompt for a project question.
// match may be nil.
func BuildProjectPrompt(match *curriculum.Match, q ProjectQuestion) []llm.Message {
	var sb strings.Builder
	sb.WriteString(mentorPersona)
	sb.WriteString("\n\n")
	sb.WriteString(technicalGuidance)
	sb.WriteString("\n")

	switch {
	case match == nil:
		fmt.Fprintf(&sb, "\nProject: %s\n", orNA(q.Project))
		fmt.Fprintf(&sb, "Task: %s\n", orNA(q.Task))
		fmt.Fprintf(&sb, "Step: %s\n", orNA(q.Step))
	case match.Kind == curriculum.MatchProject:
		p := match.Project
		fmt.Fprintf(&sb, "\nProject: %s\n", p.ProjectName)
		fmt.Fprintf(&sb, "Description: %s\n", p.Description)
		fmt.Fprintf(&sb, "Difficulty: %s\n", p.Difficulty)
	case match.Kind == curriculum.MatchTask:
		fmt.Fprintf(&sb, "\nProject: %s\n", match.Project.ProjectName)
		fmt.Fprintf(&sb, "Description: %s\n", match.Project.Description)
		fmt.Fprintf(&sb, "Task: %s\n", match.Task.TaskName)
		fmt.Fprintf(&sb, "Task Description: %s\n", match.Task.Description)
	default:
		st := match.Step
		fmt.Fprintf(&sb, "\nProject: %s\n", match.Project.ProjectName)
		fmt.Fprintf(&sb, "Description: %s\n", match.Project.Description)
		fmt.Fprintf(&sb, "Task: %s\n", match.Task.TaskName)
		fmt.Fprintf(&sb, "\nStep: %s\n", st.StepName)
		fmt.Fprintf(&sb, "Description: %s\n", st.Description)
		fmt.Fprintf(&sb, "Guidelines: %s\n", orNA(strings.Join(st.Guidelines, "; ")))
		fmt.Fprintf(&sb, "Why: %s\n", orNA(st.Why.String()))
		fmt.Fprintf(&sb, "Hints: %s\n", orNA(strings.Join(st.Hints, "; ")))
		fmt.Fprintf(&sb, "Starting Code: %s\n", st.StartingCode)
		fmt.Fprintf(&sb, "Final Code: %s\n", st.FinalCode)
	}

	fmt.Fprintf(&sb, "\nUser Question: %s\n", orNA(q.Question))
	fmt.Fprintf(&sb, "User Profile: %s\n", orNA(q.UserProfile))
	return []llm.Message{{Role: llm.RoleUser, Content: sb.String()}}
}

// BuildReviewPrompt asks the model to review code that already went through
// the heuristic tutor; summary is the tutor's analysis line.
func BuildReviewPrompt(code, stepTitle, userMessage, summary string) []llm.Message {
	var sb strings.Builder
	sb.WriteString(mentorPersona)
	sb.WriteString("\n\n")
	sb.WriteString(technicalGuidance)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "\nStep: %s\n", orNA(stepTitle))
	fmt.Fprintf(&sb, "Initial Analysis: %s\n", orNA(summary))
	fmt.Fprintf(&sb, "User Question: %s\n", orNA(userMessage))
	fmt.Fprintf(&sb, "\nCode:\n```\n%s\n```\n", strings.TrimSpace(code))
	sb.WriteString("\nReview this code in a few sentences. Point out the single most useful fix.")
	return []llm.Message{{Role: llm.RoleUser, Content: sb.String()}}
}

// BuildCasualPrompt renders the small-talk prompt.
func BuildCasualPrompt(question string) []llm.Message {
	content := mentorPersona + "\n\n" + casualExample + "\n\nUser: " + question + "\nResponse:"
	return []llm.Message{{Role: llm.RoleUser, Content: content}}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
