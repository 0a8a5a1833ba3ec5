package curriculum

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
	"github.com/yungbote/eduverse-backend/internal/platform/validation"
)

// ErrNoProjects is returned when a load finds no valid project at all.
var ErrNoProjects = errors.New("no valid projects found in curriculum directory")

type snapshot struct {
	projects []*Project
	byID     map[string]*Project
	stats    Stats
}

// Store holds the current curriculum snapshot. Readers never block on a
// reload; Refresh swaps the whole snapshot at once.
type Store struct {
	dir  string
	log  *logger.Logger
	snap atomic.Pointer[snapshot]
	// serializes reloads so two watchers never interleave
	mu sync.Mutex
}

// Open loads every project file in dir.
func Open(dir string, log *logger.Logger) (*Store, error) {
	s := &Store{dir: dir, log: log.With("component", "Curriculum")}
	if err := s.Refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStatic builds a Store over an in-memory project list. It has no
// directory, so Refresh fails and the snapshot never changes.
func NewStatic(log *logger.Logger, projects ...*Project) *Store {
	s := &Store{log: log.With("component", "Curriculum")}
	snap := &snapshot{byID: map[string]*Project{}}
	for _, p := range projects {
		if _, dup := snap.byID[p.ProjectID]; dup {
			continue
		}
		snap.add(p)
	}
	snap.stats.TotalProjects = len(snap.projects)
	snap.stats.LoadedAt = time.Now().UTC()
	s.snap.Store(snap)
	return s
}

func (s *Store) Dir() string { return s.dir }

// Refresh reloads from disk. On failure the previous snapshot stays in place.
func (s *Store) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dir == "" {
		return errors.New("curriculum store has no directory")
	}
	snap, err := load(s.dir, s.log)
	if err != nil {
		return err
	}
	s.snap.Store(snap)
	s.log.Info("Curriculum loaded",
		"projects", snap.stats.TotalProjects,
		"tasks", snap.stats.TotalTasks,
		"steps", snap.stats.TotalSteps,
	)
	return nil
}

func (s *Store) current() *snapshot {
	if snap := s.snap.Load(); snap != nil {
		return snap
	}
	return &snapshot{byID: map[string]*Project{}}
}

func (s *Store) Projects() []*Project {
	return s.current().projects
}

func (s *Store) Project(projectID string) (*Project, bool) {
	p, ok := s.current().byID[projectID]
	return p, ok
}

func (s *Store) Task(projectID, taskID string) (*Task, bool) {
	p, ok := s.Project(projectID)
	if !ok {
		return nil, false
	}
	for _, t := range p.Tasks {
		if t.TaskID == taskID {
			return t, true
		}
	}
	return nil, false
}

func (s *Store) Step(projectID, taskID, stepID string) (*Step, bool) {
	t, ok := s.Task(projectID, taskID)
	if !ok {
		return nil, false
	}
	for _, st := range t.Steps {
		if st.StepID == stepID {
			return st, true
		}
	}
	return nil, false
}

func (s *Store) Summaries() []Summary {
	projects := s.current().projects
	out := make([]Summary, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.Summary())
	}
	return out
}

func (s *Store) Stats() Stats {
	return s.current().stats
}

type projectFile struct {
	Projects *[]*Project `json:"projects" yaml:"projects"`
}

func load(dir string, log *logger.Logger) (*snapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read curriculum dir %s: %w", dir, err)
	}

	snap := &snapshot{byID: map[string]*Project{}}
	// os.ReadDir sorts by filename
	for _, e := range entries {
		if e.IsDir() || !isCurriculumFile(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		projects, err := parseFile(path)
		if err != nil {
			log.Warn("Skipping curriculum file", "file", e.Name(), "error", err)
			continue
		}
		for i, p := range projects {
			if p == nil {
				continue
			}
			if err := validation.Struct(p); err != nil {
				log.Warn("Skipping invalid project", "file", e.Name(), "index", i, "project_id", p.ProjectID, "error", err)
				continue
			}
			if _, dup := snap.byID[p.ProjectID]; dup {
				log.Warn("Skipping duplicate project", "file", e.Name(), "project_id", p.ProjectID)
				continue
			}
			snap.add(p)
		}
	}
	if len(snap.projects) == 0 {
		return nil, ErrNoProjects
	}
	snap.stats.TotalProjects = len(snap.projects)
	snap.stats.LoadedAt = time.Now().UTC()
	return snap, nil
}

func (snap *snapshot) add(p *Project) {
	snap.projects = append(snap.projects, p)
	snap.byID[p.ProjectID] = p
	snap.stats.TotalTasks += len(p.Tasks)
	for _, t := range p.Tasks {
		snap.stats.TotalSteps += len(t.Steps)
	}
}

func isCurriculumFile(name string) bool {
	name = filepath.Base(name)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return !strings.HasPrefix(name, ".")
	}
	return false
}

func parseFile(path string) ([]*Project, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc projectFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		dec := json.NewDecoder(bytes.NewReader(raw))
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	} else if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if doc.Projects == nil {
		return nil, errors.New(`missing "projects" key`)
	}
	return *doc.Projects, nil
}
