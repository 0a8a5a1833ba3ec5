package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/yungbote/eduverse-backend/internal/chat/conversation"
	"github.com/yungbote/eduverse-backend/internal/chat/curriculum"
	"github.com/yungbote/eduverse-backend/internal/chat/llm"
	"github.com/yungbote/eduverse-backend/internal/chat/prompt"
	"github.com/yungbote/eduverse-backend/internal/chat/tutor"
	"github.com/yungbote/eduverse-backend/internal/data/repos"
	"github.com/yungbote/eduverse-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/eduverse-backend/internal/pkg/errors"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
	"github.com/yungbote/eduverse-backend/internal/platform/apierr"
)

const (
	DefaultConversationTitle = "Default Conversation"
	trendingLimit            = 10
)

var botSuggestions = []string{
	"What's the next step in my learning journey?",
	"Can you explain that in more detail?",
	"Show me some examples",
}

type EduraConfig struct {
	MaxConversations int
	MaxHistory       int
	RatePerMinute    int
}

type EduraHealth struct {
	Status     string           `json:"status"`
	Message    string           `json:"message"`
	Curriculum curriculum.Stats `json:"curriculum"`
	LLM        bool             `json:"llm"`
}

type StartConversationInput struct {
	Title          string
	ProjectContext conversation.ProjectContext
}

type BotInput struct {
	UserQuestion string
	Project      string
	Task         string
	Step         string
	// UserProfile is the caller-supplied profile blob; the stored profile
	// is summarized when empty.
	UserProfile string
}

type BotReply struct {
	Status      string   `json:"status"`
	Response    string   `json:"response"`
	Suggestions []string `json:"suggestions"`
}

type AnalysisInput struct {
	Code           string
	StepTitle      string
	UserMessage    string
	ProjectID      string
	TaskID         string
	ConversationID string
}

type AnalysisResult struct {
	Status            string         `json:"status"`
	EduraResponse     tutor.Response `json:"edura_response"`
	FormattedResponse string         `json:"formatted_response"`
	// ModelReview is set when the model is reachable and the caller is
	// within the rate limit.
	ModelReview *llm.Analysis `json:"model_review,omitempty"`
}

type TrendingProject struct {
	curriculum.Summary
	Conversations int `json:"conversations"`
}

type EduraService interface {
	Health() EduraHealth
	ListConversations(ctx context.Context) ([]conversation.Summary, error)
	StartConversation(ctx context.Context, in StartConversationInput) (*conversation.Conversation, error)
	StartProjectConversation(ctx context.Context, projectID string, taskIndex, stepIndex int) (*conversation.Conversation, error)
	RenameConversation(ctx context.Context, conversationID, title string) error
	DeleteConversation(ctx context.Context, conversationID string) error
	GetMessages(ctx context.Context, conversationID string) ([]conversation.Message, error)
	SendMessage(ctx context.Context, conversationID, userInput string) (string, error)
	Bot(ctx context.Context, in BotInput) (*BotReply, error)
	Analyze(ctx context.Context, in AnalysisInput) (*AnalysisResult, error)
	AdvanceStep(ctx context.Context, conversationID string) (bool, *conversation.StepInfo, error)
	CurrentStep(ctx context.Context, conversationID string) (*conversation.StepInfo, error)
	Projects() []curriculum.Summary
	Project(projectID string) (*curriculum.Project, error)
	Stats() curriculum.Stats
	Trending(ctx context.Context) ([]TrendingProject, error)
}

type eduraService struct {
	log           *logger.Logger
	cfg           EduraConfig
	curriculum    *curriculum.Store
	conversations *conversation.Store
	prompts       *prompt.Builder
	engine        llm.Engine
	profileRepo   repos.ProfileRepo
	limiter       *userLimiter
	now           func() time.Time
}

func NewEduraService(
	log *logger.Logger,
	cfg EduraConfig,
	projects *curriculum.Store,
	conversations *conversation.Store,
	engine llm.Engine,
	profileRepo repos.ProfileRepo,
) EduraService {
	if cfg.MaxConversations <= 0 {
		cfg.MaxConversations = 10
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = prompt.DefaultMaxMessages
	}
	return &eduraService{
		log:           log.With("service", "EduraService"),
		cfg:           cfg,
		curriculum:    projects,
		conversations: conversations,
		prompts:       prompt.NewBuilder(log, conversations, projects),
		engine:        engine,
		profileRepo:   profileRepo,
		limiter:       newUserLimiter(cfg.RatePerMinute),
		now:           time.Now,
	}
}

func (es *eduraService) Health() EduraHealth {
	return EduraHealth{
		Status:     "healthy",
		Message:    "AI backend is running",
		Curriculum: es.curriculum.Stats(),
		LLM:        es.engine.Available(),
	}
}

func (es *eduraService) ListConversations(ctx context.Context) ([]conversation.Summary, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return es.conversations.List(userID)
}

func (es *eduraService) StartConversation(ctx context.Context, in StartConversationInput) (*conversation.Conversation, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = DefaultConversationTitle
	}
	return es.createLimited(userID, func() (*conversation.Conversation, error) {
		return es.conversations.Create(userID, title, in.ProjectContext)
	})
}

func (es *eduraService) StartProjectConversation(ctx context.Context, projectID string, taskIndex, stepIndex int) (*conversation.Conversation, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, apierr.BadRequest("validation_error", "project_id is required")
	}
	c, err := es.createLimited(userID, func() (*conversation.Conversation, error) {
		return es.conversations.CreateProjectConversation(userID, projectID, taskIndex, stepIndex)
	})
	switch {
	case err == nil:
		return c, nil
	case errors.Is(err, pkgerrors.ErrNotFound):
		return nil, apierr.NotFound("project_not_found", "Project not found")
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return nil, apierr.BadRequest("invalid_position", "task_index or step_index is out of range")
	default:
		return nil, err
	}
}

func (es *eduraService) createLimited(userID uuid.UUID, create func() (*conversation.Conversation, error)) (*conversation.Conversation, error) {
	c, err := es.conversations.CreateLimited(userID, es.cfg.MaxConversations, create)
	if errors.Is(err, pkgerrors.ErrLimitExceeded) {
		es.log.Warn("Conversation limit reached", "user_id", userID)
		return nil, apierr.Newf(http.StatusForbidden, "conversation_limit", "Maximum %d conversations allowed", es.cfg.MaxConversations)
	}
	return c, err
}

func (es *eduraService) RenameConversation(ctx context.Context, conversationID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return apierr.BadRequest("validation_error", "new_title is required")
	}
	c, err := es.owned(ctx, conversationID)
	if err != nil {
		return err
	}
	return es.conversations.Rename(c.ConversationID, title)
}

func (es *eduraService) DeleteConversation(ctx context.Context, conversationID string) error {
	c, err := es.owned(ctx, conversationID)
	if err != nil {
		return err
	}
	if err := es.conversations.Delete(c.ConversationID); err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return conversationNotFound()
		}
		return err
	}
	return nil
}

func (es *eduraService) GetMessages(ctx context.Context, conversationID string) ([]conversation.Message, error) {
	c, err := es.owned(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return c.Messages, nil
}

func (es *eduraService) SendMessage(ctx context.Context, conversationID, userInput string) (string, error) {
	if strings.TrimSpace(userInput) == "" {
		return "", apierr.BadRequest("validation_error", "Missing required fields: conversation_id and user_input")
	}
	c, err := es.owned(ctx, conversationID)
	if err != nil {
		return "", err
	}
	if err := es.limiter.allow(c.UserID); err != nil {
		return "", err
	}

	if _, err := es.conversations.SaveMessage(c.ConversationID, conversation.RoleUser, userInput); err != nil {
		return "", fmt.Errorf("save user message: %w", err)
	}
	msgs := es.prompts.BuildPrompt(c.ConversationID, userInput, es.cfg.MaxHistory)
	level := ""
	if c.ProjectContext.ProjectID != "" {
		level = llm.SafetyHigh
	}
	reply, err := llm.GenerateWithSafety(ctx, es.engine, msgs, level)
	if err != nil {
		return "", err
	}
	if _, err := es.conversations.SaveMessage(c.ConversationID, conversation.RoleAssistant, reply); err != nil {
		return "", fmt.Errorf("save assistant message: %w", err)
	}
	return reply, nil
}

func (es *eduraService) Bot(ctx context.Context, in BotInput) (*BotReply, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	question := strings.TrimSpace(in.UserQuestion)
	if question == "" {
		return nil, apierr.BadRequest("validation_error", "Missing required fields: user_question")
	}
	if err := es.limiter.allow(userID); err != nil {
		return nil, err
	}

	c, err := es.botConversation(userID, in)
	if err != nil {
		return nil, err
	}

	projectQuestion := curriculum.IsProjectQuestion(question)
	var match *curriculum.Match
	if projectQuestion {
		match = es.curriculum.FindRelevant(question)
	}
	pc := c.ProjectContext
	if pc.ProjectID == "" && match != nil {
		pc = matchContext(match)
		if err := es.conversations.UpdateProjectContext(c.ConversationID, pc); err != nil {
			return nil, fmt.Errorf("attach project context: %w", err)
		}
		es.log.Debug("Attached matched project context", "conversation_id", c.ConversationID, "project_id", pc.ProjectID, "kind", string(match.Kind))
	}
	if match != nil && match.Project.ProjectID != pc.ProjectID {
		match = nil
	}

	q := prompt.ProjectQuestion{
		Question: question,
		Project:  in.Project,
		Task:     in.Task,
		Step:     in.Step,
	}
	var (
		msgs  []llm.Message
		level string
	)
	switch {
	case match != nil:
		// history plus the matched node's full detail as the final turn
		q.UserProfile = es.userProfile(ctx, userID, in.UserProfile)
		msgs = es.prompts.BuildPrompt(c.ConversationID, question, es.cfg.MaxHistory)
		msgs[len(msgs)-1] = prompt.BuildProjectPrompt(match, q)[0]
		level = llm.SafetyHigh
	case pc.ProjectID != "":
		msgs = es.prompts.BuildPrompt(c.ConversationID, question, es.cfg.MaxHistory)
		level = llm.SafetyHigh
	case projectQuestion:
		q.UserProfile = es.userProfile(ctx, userID, in.UserProfile)
		msgs = prompt.BuildProjectPrompt(nil, q)
	default:
		msgs = prompt.BuildCasualPrompt(question)
	}

	reply, err := llm.GenerateWithSafety(ctx, es.engine, msgs, level)
	if err != nil {
		return nil, err
	}
	if _, err := es.conversations.SaveMessage(c.ConversationID, conversation.RoleUser, question); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}
	if _, err := es.conversations.SaveMessage(c.ConversationID, conversation.RoleEdura, reply); err != nil {
		return nil, fmt.Errorf("save edura message: %w", err)
	}
	return &BotReply{Status: "success", Response: reply, Suggestions: append([]string(nil), botSuggestions...)}, nil
}

// botConversation returns the caller's most recent conversation, creating a
// default one seeded from the request when there is none.
func (es *eduraService) botConversation(userID uuid.UUID, in BotInput) (*conversation.Conversation, error) {
	existing, err := es.conversations.List(userID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return es.conversations.Load(existing[0].ConversationID)
	}
	pc := conversation.ProjectContext{
		ProjectID: strings.TrimSpace(in.Project),
		TaskID:    strings.TrimSpace(in.Task),
		StepID:    strings.TrimSpace(in.Step),
	}
	if _, ok := es.curriculum.Project(pc.ProjectID); !ok {
		// free-text labels stay in the single-shot prompt instead
		pc = conversation.ProjectContext{}
	}
	return es.createLimited(userID, func() (*conversation.Conversation, error) {
		return es.conversations.Create(userID, DefaultConversationTitle, pc)
	})
}

func matchContext(m *curriculum.Match) conversation.ProjectContext {
	pc := conversation.ProjectContext{ProjectID: m.Project.ProjectID}
	if m.Task != nil {
		pc.TaskID = m.Task.TaskID
	}
	if m.Step != nil {
		pc.StepID = m.Step.StepID
	}
	return pc
}

func (es *eduraService) userProfile(ctx context.Context, userID uuid.UUID, supplied string) string {
	if s := strings.TrimSpace(supplied); s != "" && s != "null" && s != "{}" {
		return s
	}
	if es.profileRepo == nil {
		return ""
	}
	p, err := es.profileRepo.GetByUserID(dbctx.New(ctx), userID)
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrNotFound) {
			es.log.Warn("Failed to load profile for prompt", "user_id", userID, "error", err)
		}
		return ""
	}
	parts := []string{}
	if p.DisplayName != "" {
		parts = append(parts, "name: "+p.DisplayName)
	}
	if len(p.Skills) > 0 {
		parts = append(parts, "skills: "+strings.Join(p.Skills, ", "))
	}
	if p.Bio != "" {
		parts = append(parts, "bio: "+p.Bio)
	}
	return strings.Join(parts, "; ")
}

func (es *eduraService) Analyze(ctx context.Context, in AnalysisInput) (*AnalysisResult, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Code) == "" {
		return nil, apierr.BadRequest("validation_error", "Code is required for analysis")
	}
	resp := tutor.Analyze(in.Code, in.StepTitle, in.UserMessage, es.now())
	formatted := tutor.Format(resp)
	es.log.Debug("Analyzed code", "user_id", userID, "project_id", in.ProjectID, "task_id", in.TaskID,
		"opportunities", len(resp.TutorResponse.LearningOpportunities))

	if strings.TrimSpace(in.ConversationID) != "" {
		if c, err := es.owned(ctx, in.ConversationID); err == nil {
			if _, err := es.conversations.SaveMessage(c.ConversationID, conversation.RoleUser, resp.Context.UserMessage); err != nil {
				return nil, fmt.Errorf("save analysis question: %w", err)
			}
			if _, err := es.conversations.SaveMessage(c.ConversationID, conversation.RoleEdura, formatted); err != nil {
				return nil, fmt.Errorf("save analysis reply: %w", err)
			}
		}
	}
	return &AnalysisResult{
		Status:            "success",
		EduraResponse:     resp,
		FormattedResponse: formatted,
		ModelReview:       es.modelReview(ctx, userID, in.Code, resp),
	}, nil
}

// modelReview is best effort; the heuristic analysis stands on its own.
func (es *eduraService) modelReview(ctx context.Context, userID uuid.UUID, code string, resp tutor.Response) *llm.Analysis {
	if !es.engine.Available() || es.limiter.allow(userID) != nil {
		return nil
	}
	msgs := prompt.BuildReviewPrompt(code, resp.Context.StepTitle, resp.Context.UserMessage, resp.TutorResponse.Analysis)
	out, err := llm.GenerateStructured(ctx, es.engine, msgs, llm.FormatAnalysis)
	if err != nil {
		es.log.Warn("Model review failed", "user_id", userID, "error", err)
		return nil
	}
	review, ok := out.(llm.Analysis)
	if !ok {
		return nil
	}
	return &review
}

func (es *eduraService) AdvanceStep(ctx context.Context, conversationID string) (bool, *conversation.StepInfo, error) {
	c, err := es.owned(ctx, conversationID)
	if err != nil {
		return false, nil, err
	}
	advanced, err := es.conversations.AdvanceToNextStep(c.ConversationID)
	if err != nil {
		return false, nil, err
	}
	info, err := es.conversations.CurrentStepInfo(c.ConversationID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return advanced, nil, nil
		}
		return false, nil, err
	}
	return advanced, info, nil
}

func (es *eduraService) CurrentStep(ctx context.Context, conversationID string) (*conversation.StepInfo, error) {
	c, err := es.owned(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	info, err := es.conversations.CurrentStepInfo(c.ConversationID)
	if errors.Is(err, pkgerrors.ErrNotFound) {
		return nil, apierr.NotFound("no_current_step", "Conversation has no current project step")
	}
	return info, err
}

func (es *eduraService) Projects() []curriculum.Summary {
	return es.curriculum.Summaries()
}

func (es *eduraService) Project(projectID string) (*curriculum.Project, error) {
	p, ok := es.curriculum.Project(projectID)
	if !ok {
		return nil, apierr.NotFound("project_not_found", "Project not found")
	}
	return p, nil
}

func (es *eduraService) Stats() curriculum.Stats {
	return es.curriculum.Stats()
}

// Trending ranks projects by how many conversations reference them.
func (es *eduraService) Trending(ctx context.Context) ([]TrendingProject, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	refs, err := es.conversations.ProjectReferences()
	if err != nil {
		return nil, err
	}
	projects := es.curriculum.Projects()
	out := make([]TrendingProject, 0, len(projects))
	for _, p := range projects {
		out = append(out, TrendingProject{Summary: p.Summary(), Conversations: refs[p.ProjectID]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Conversations != out[j].Conversations {
			return out[i].Conversations > out[j].Conversations
		}
		return out[i].ProjectName < out[j].ProjectName
	})
	if len(out) > trendingLimit {
		out = out[:trendingLimit]
	}
	return out, nil
}

// owned loads a conversation the caller owns. Missing, malformed and foreign
// ids all look the same to the caller.
func (es *eduraService) owned(ctx context.Context, conversationID string) (*conversation.Conversation, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return nil, apierr.BadRequest("validation_error", "conversation_id is required")
	}
	id, err := uuid.Parse(conversationID)
	if err != nil {
		return nil, conversationNotFound()
	}
	c, err := es.conversations.Load(id)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, conversationNotFound()
		}
		return nil, err
	}
	if c.UserID != userID {
		es.log.Warn("Conversation access denied", "user_id", userID, "conversation_id", id)
		return nil, conversationNotFound()
	}
	return c, nil
}

func conversationNotFound() error {
	return apierr.NotFound("conversation_not_found", "Conversation not found or access denied")
}

// limiterIdle is how long a user's bucket may sit unused before it is
// dropped. It is longer than a full refill, so a dropped bucket would have
// been full anyway.
const limiterIdle = 2 * time.Minute

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// userLimiter keeps one token bucket per active user.
type userLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
	limiters  map[uuid.UUID]*limiterEntry
}

func newUserLimiter(perMinute int) *userLimiter {
	if perMinute <= 0 {
		return &userLimiter{limit: rate.Inf}
	}
	return &userLimiter{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		now:      time.Now,
		limiters: make(map[uuid.UUID]*limiterEntry),
	}
}

func (l *userLimiter) allow(userID uuid.UUID) error {
	if l.limit == rate.Inf {
		return nil
	}
	now := l.now()
	l.mu.Lock()
	if now.Sub(l.lastSweep) >= limiterIdle {
		for id, e := range l.limiters {
			if now.Sub(e.seen) >= limiterIdle {
				delete(l.limiters, id)
			}
		}
		l.lastSweep = now
	}
	e, ok := l.limiters[userID]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[userID] = e
	}
	e.seen = now
	l.mu.Unlock()
	if !e.lim.AllowN(now, 1) {
		return apierr.Newf(http.StatusTooManyRequests, "rate_limited", "Too many messages; please slow down")
	}
	return nil
}
