package tutor

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestAnalyzeFlagsHardcodedIDsAndLogging(t *testing.T) {
	t.Parallel()
	code := `function load() {
  const id = "test-user-id";
  console.log(1); console.log(2); console.log(3); console.log(4);
  return fetch("/api/users/" + id);
}`
	resp := Analyze(code, "Fetch users", "is this ok?", fixedNow)
	fb := resp.TutorResponse

	assert.Equal(t, "Your code works, but hardcoded values should be replaced with dynamic data, consider using proper logging instead of multiple console.log statements", fb.Analysis)
	assert.Equal(t, []string{
		"Function definition and organization",
		"API integration and error handling",
		"Consider using arrow functions for consistency",
	}, fb.LearningOpportunities)

	types := make([]string, 0, len(fb.Improvements))
	for _, imp := range fb.Improvements {
		types = append(types, imp.Type)
	}
	assert.Equal(t, []string{"naming", "syntax", "error_handling"}, types)

	require.NotNil(t, fb.ChallengeSuggestion)
	assert.Contains(t, *fb.ChallengeSuggestion, "reusable component/function")
	assert.Equal(t, Context{StepTitle: "Fetch users", Timestamp: fixedNow, UserMessage: "is this ok?"}, resp.Context)
}

func TestAnalyzeDefaults(t *testing.T) {
	t.Parallel()
	resp := Analyze("const [todos, setTodos] = useState([]);", "", "", fixedNow)
	fb := resp.TutorResponse

	assert.Equal(t, "Your code works, but some areas could be enhanced", fb.Analysis)
	assert.Equal(t, []string{"State management and React hooks"}, fb.LearningOpportunities)
	assert.Empty(t, fb.Improvements)
	require.NotNil(t, fb.ChallengeSuggestion)
	assert.Contains(t, *fb.ChallengeSuggestion, "custom hook")
	assert.Equal(t, DefaultStepTitle, resp.Context.StepTitle)
	assert.Equal(t, DefaultUserMessage, resp.Context.UserMessage)
}

func TestAnalyzeNoChallenge(t *testing.T) {
	t.Parallel()
	resp := Analyze("x = 1", "s", "m", fixedNow)
	assert.Nil(t, resp.TutorResponse.ChallengeSuggestion)
	assert.Empty(t, resp.TutorResponse.LearningOpportunities)
}

func TestFormat(t *testing.T) {
	t.Parallel()
	out := Format(Analyze(`fetch("/x")`, "s", "m", fixedNow))

	assert.True(t, strings.HasPrefix(out, "**Edura's Analysis**"))
	assert.Contains(t, out, "**Analysis:**\nYour code works")
	assert.Contains(t, out, "- Add error handling to prevent unhandled promise rejections")
	assert.Contains(t, out, "**Learning Opportunities:**\n- API integration and error handling")
	assert.Contains(t, out, "**Challenge:** If you want a challenge, try implementing proper error handling")
	assert.False(t, strings.HasSuffix(out, "\n"), "no trailing newline")

	plain := Format(Analyze(`id = "test-user-id"`, "s", "m", fixedNow))
	assert.True(t, strings.HasSuffix(plain, "clarity and maintainability"), plain)
}
