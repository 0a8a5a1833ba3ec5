package curriculum

import "strings"

var projectKeywords = []string{
	"project", "task", "step", "code", "api", "database", "frontend", "backend",
	"bug", "problem", "issue", "feature", "json", "logic", "guide", "help with",
	"how to", "explain", "implement", "create", "build", "develop", "write",
}

// IsProjectQuestion reports whether msg looks like a request for project help.
func IsProjectQuestion(msg string) bool {
	lowered := strings.ToLower(msg)
	for _, kw := range projectKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

type MatchKind string

const (
	MatchProject MatchKind = "project"
	MatchTask    MatchKind = "task"
	MatchStep    MatchKind = "step"
)

// Match is the curriculum node a message refers to. Task and Step are set
// according to Kind.
type Match struct {
	Kind    MatchKind
	Project *Project
	Task    *Task
	Step    *Step
}

// FindRelevant returns the best matching node for msg, or nil.
//
// A project whose name or description appears in the message wins outright.
// Otherwise tasks score 2 for a name hit and 1 for a description hit, steps 3
// and 1, and the first strictly highest score is kept.
func (s *Store) FindRelevant(msg string) *Match {
	return findRelevant(s.Projects(), msg)
}

func findRelevant(projects []*Project, msg string) *Match {
	lowered := strings.ToLower(msg)
	var best *Match
	bestScore := 0

	for _, p := range projects {
		if contains(lowered, p.ProjectName) || contains(lowered, p.Description) {
			return &Match{Kind: MatchProject, Project: p}
		}
		for _, t := range p.Tasks {
			score := 0
			if contains(lowered, t.TaskName) {
				score += 2
			}
			if contains(lowered, t.Description) {
				score++
			}
			if score > bestScore {
				best, bestScore = &Match{Kind: MatchTask, Project: p, Task: t}, score
			}
			for _, st := range t.Steps {
				score := 0
				if contains(lowered, st.StepName) {
					score += 3
				}
				if contains(lowered, st.Description) {
					score++
				}
				if score > bestScore {
					best, bestScore = &Match{Kind: MatchStep, Project: p, Task: t, Step: st}, score
				}
			}
		}
	}
	return best
}

// contains ignores empty needles, which would otherwise match everything.
func contains(lowered, needle string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	return needle != "" && strings.Contains(lowered, needle)
}
