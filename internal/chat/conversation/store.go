package conversation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/eduverse-backend/internal/chat/curriculum"
	pkgerrors "github.com/yungbote/eduverse-backend/internal/pkg/errors"
	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
)

const (
	unknownProject = "Project"
	unknownTask    = "Unknown Task"
	unknownStep    = "Unknown Step"
)

// Store reads and writes <dir>/<conversation_id>.json.
type Store struct {
	dir        string
	log        *logger.Logger
	curriculum *curriculum.Store
	now        func() time.Time

	convLocks keyedMutex
	userLocks keyedMutex
}

func NewStore(dir string, log *logger.Logger, projects *curriculum.Store) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create conversations dir: %w", err)
	}
	return &Store{
		dir:        dir,
		log:        log.With("component", "ConversationStore"),
		curriculum: projects,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *Store) path(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String()+".json")
}

func (s *Store) Create(userID uuid.UUID, title string, pc ProjectContext) (*Conversation, error) {
	now := s.now()
	c := &Conversation{
		ConversationID: uuid.New(),
		UserID:         userID,
		Title:          title,
		CreatedAt:      now,
		UpdatedAt:      now,
		ProjectContext: pc,
		Messages:       []Message{},
	}
	if err := s.write(c); err != nil {
		return nil, err
	}
	s.log.Info("Created conversation", "conversation_id", c.ConversationID, "user_id", userID)
	return c, nil
}

// CreateLimited runs create while holding userID's lock, after checking that
// the user owns fewer than limit conversations.
func (s *Store) CreateLimited(userID uuid.UUID, limit int, create func() (*Conversation, error)) (*Conversation, error) {
	unlock := s.userLocks.Lock(userID.String())
	defer unlock()

	n, err := s.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && n >= limit {
		return nil, fmt.Errorf("user has %d conversations: %w", n, pkgerrors.ErrLimitExceeded)
	}
	return create()
}

func (s *Store) Load(id uuid.UUID) (*Conversation, error) {
	raw, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("conversation %s: %w", id, pkgerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("read conversation %s: %w", id, err)
	}
	var c Conversation
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", id, err)
	}
	if c.Messages == nil {
		c.Messages = []Message{}
	}
	return &c, nil
}

func (s *Store) Messages(id uuid.UUID) ([]Message, error) {
	c, err := s.Load(id)
	if err != nil {
		return nil, err
	}
	return c.Messages, nil
}

func (s *Store) SaveMessage(id uuid.UUID, role, content string) (Message, error) {
	var msg Message
	err := s.mutate(id, func(c *Conversation, now time.Time) error {
		msg = Message{Role: role, Content: content, Timestamp: now}
		c.Messages = append(c.Messages, msg)
		return nil
	})
	return msg, err
}

func (s *Store) Rename(id uuid.UUID, title string) error {
	return s.mutate(id, func(c *Conversation, _ time.Time) error {
		c.Title = title
		return nil
	})
}

func (s *Store) Delete(id uuid.UUID) error {
	unlock := s.convLocks.Lock(id.String())
	defer unlock()
	if err := os.Remove(s.path(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("conversation %s: %w", id, pkgerrors.ErrNotFound)
		}
		return fmt.Errorf("delete conversation %s: %w", id, err)
	}
	s.log.Info("Deleted conversation", "conversation_id", id)
	return nil
}

// List returns the user's conversations, most recently updated first.
func (s *Store) List(userID uuid.UUID) ([]Summary, error) {
	all, err := s.scan()
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0)
	for _, c := range all {
		if c.UserID == userID {
			out = append(out, c.Summary())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *Store) CountByUser(userID uuid.UUID) (int, error) {
	all, err := s.scan()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range all {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

// ProjectReferences counts conversations per project id.
func (s *Store) ProjectReferences() (map[string]int, error) {
	all, err := s.scan()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int)
	for _, c := range all {
		if c.ProjectContext.ProjectID != "" {
			out[c.ProjectContext.ProjectID]++
		}
	}
	return out, nil
}

func (s *Store) UpdateProjectContext(id uuid.UUID, pc ProjectContext) error {
	return s.mutate(id, func(c *Conversation, _ time.Time) error {
		c.ProjectContext = pc
		return nil
	})
}

// ProjectContext returns the stored context, or the zero context when the
// conversation has none.
func (s *Store) ProjectContext(id uuid.UUID) (ProjectContext, error) {
	c, err := s.Load(id)
	if err != nil {
		return ProjectContext{}, err
	}
	return c.ProjectContext, nil
}

// CreateProjectConversation starts a conversation positioned at the given
// task and step of projectID.
func (s *Store) CreateProjectConversation(userID uuid.UUID, projectID string, taskIndex, stepIndex int) (*Conversation, error) {
	p, ok := s.curriculum.Project(projectID)
	if !ok {
		return nil, fmt.Errorf("project %q: %w", projectID, pkgerrors.ErrNotFound)
	}
	if taskIndex < 0 || stepIndex < 0 {
		return nil, fmt.Errorf("negative task or step index: %w", pkgerrors.ErrInvalidArgument)
	}
	if len(p.Tasks) > 0 {
		task := p.TaskAt(taskIndex)
		if task == nil {
			return nil, fmt.Errorf("task_index %d out of range: %w", taskIndex, pkgerrors.ErrInvalidArgument)
		}
		if len(task.Steps) > 0 && task.StepAt(stepIndex) == nil {
			return nil, fmt.Errorf("step_index %d out of range: %w", stepIndex, pkgerrors.ErrInvalidArgument)
		}
	}
	pc := positionContext(p, taskIndex, stepIndex)
	return s.Create(userID, projectTitle(p, taskIndex, stepIndex), pc)
}

// AdvanceToNextStep moves to the next step of the current task, or the first
// step of the next task. It reports false at the end of the project or when
// the conversation has no usable project context.
func (s *Store) AdvanceToNextStep(id uuid.UUID) (bool, error) {
	advanced := false
	err := s.mutate(id, func(c *Conversation, _ time.Time) error {
		p, ti, si, ok := s.position(c.ProjectContext)
		if !ok {
			return nil
		}
		task := p.TaskAt(ti)
		if task == nil {
			return nil
		}
		switch {
		case si+1 < len(task.Steps):
			si++
		case ti+1 < len(p.Tasks):
			ti, si = ti+1, 0
		default:
			return nil
		}
		c.ProjectContext = positionContext(p, ti, si)
		c.Title = projectTitle(p, ti, si)
		advanced = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if advanced {
		s.log.Info("Advanced conversation", "conversation_id", id)
	}
	return advanced, nil
}

func (s *Store) CurrentStepInfo(id uuid.UUID) (*StepInfo, error) {
	c, err := s.Load(id)
	if err != nil {
		return nil, err
	}
	p, ti, si, ok := s.position(c.ProjectContext)
	if !ok {
		return nil, fmt.Errorf("conversation %s has no project context: %w", id, pkgerrors.ErrNotFound)
	}
	task := p.TaskAt(ti)
	step := task.StepAt(si)
	if step == nil {
		return nil, fmt.Errorf("step %d/%d not in project %s: %w", ti, si, p.ProjectID, pkgerrors.ErrNotFound)
	}
	guidelines := step.Guidelines
	if guidelines == nil {
		guidelines = []string{}
	}
	why := []string(step.Why)
	if why == nil {
		why = []string{}
	}
	return &StepInfo{
		ProjectName:      p.ProjectName,
		TaskName:         task.TaskName,
		TaskDescription:  task.Description,
		StepName:         step.StepName,
		StepDescription:  step.Description,
		Guidelines:       guidelines,
		Why:              why,
		StarterCode:      step.StartingCode,
		TaskIndex:        ti,
		StepIndex:        si,
		TotalTasks:       len(p.Tasks),
		TotalStepsInTask: len(task.Steps),
	}, nil
}

// position resolves a context to a project and indices. Contexts that carry
// ids but no indices are located by id.
func (s *Store) position(pc ProjectContext) (*curriculum.Project, int, int, bool) {
	if pc.ProjectID == "" || s.curriculum == nil {
		return nil, 0, 0, false
	}
	p, ok := s.curriculum.Project(pc.ProjectID)
	if !ok {
		return nil, 0, 0, false
	}
	ti, si := pc.Indices()
	if pc.TaskIndex == nil && pc.TaskID != "" {
		for i, t := range p.Tasks {
			if t.TaskID == pc.TaskID {
				ti = i
				break
			}
		}
	}
	if pc.StepIndex == nil && pc.StepID != "" {
		if task := p.TaskAt(ti); task != nil {
			for i, st := range task.Steps {
				if st.StepID == pc.StepID {
					si = i
					break
				}
			}
		}
	}
	return p, ti, si, true
}

func positionContext(p *curriculum.Project, ti, si int) ProjectContext {
	pc := ProjectContext{ProjectID: p.ProjectID, TaskIndex: &ti, StepIndex: &si}
	if task := p.TaskAt(ti); task != nil {
		pc.TaskID = task.TaskID
		if step := task.StepAt(si); step != nil {
			pc.StepID = step.StepID
		}
	}
	return pc
}

func projectTitle(p *curriculum.Project, ti, si int) string {
	projectName, taskName, stepName := p.ProjectName, unknownTask, unknownStep
	if projectName == "" {
		projectName = unknownProject
	}
	if task := p.TaskAt(ti); task != nil {
		taskName = task.TaskName
		if step := task.StepAt(si); step != nil {
			stepName = step.StepName
		}
	}
	return fmt.Sprintf("%s - %s - %s", projectName, taskName, stepName)
}

// mutate loads, edits and rewrites one conversation under its lock, bumping
// updated_at.
func (s *Store) mutate(id uuid.UUID, fn func(c *Conversation, now time.Time) error) error {
	unlock := s.convLocks.Lock(id.String())
	defer unlock()

	c, err := s.Load(id)
	if err != nil {
		return err
	}
	now := s.now()
	if err := fn(c, now); err != nil {
		return err
	}
	c.UpdatedAt = now
	return s.write(c)
}

// write replaces the file atomically via a temp file in the same directory.
func (s *Store) write(c *Conversation) error {
	raw, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, ".conv-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write conversation: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync conversation: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close conversation: %w", err)
	}
	if err := os.Rename(tmpName, s.path(c.ConversationID)); err != nil {
		cleanup()
		return fmt.Errorf("rename conversation: %w", err)
	}
	return nil
}

// scan decodes every conversation file. Unreadable files are logged and
// skipped.
func (s *Store) scan() ([]*Conversation, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read conversations dir: %w", err)
	}
	out := make([]*Conversation, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		c, err := s.Load(id)
		if err != nil {
			s.log.Warn("Skipping unreadable conversation", "file", name, "error", err)
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
