// Package resources holds the hand-curated learning catalog served under /api/scraper.
package resources

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type EducationalContent struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	URL         string `yaml:"url" json:"url"`
	Source      string `yaml:"source" json:"source"`
}

type JobPosting struct {
	JobTitle       string   `yaml:"job_title" json:"job_title"`
	Company        string   `yaml:"company" json:"company"`
	Location       string   `yaml:"location" json:"location"`
	Requirements   []string `yaml:"requirements" json:"requirements"`
	ApplicationURL string   `yaml:"application_url" json:"application_url"`
}

type SkillResource struct {
	SkillName   string `yaml:"skill_name" json:"skill_name"`
	Description string `yaml:"description" json:"description"`
	ResourceURL string `yaml:"resource_url" json:"resource_url"`
}

type Catalog struct {
	Educational []EducationalContent `yaml:"educational"`
	Jobs        []JobPosting         `yaml:"jobs"`
	Skills      []SkillResource      `yaml:"skills"`
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse resource catalog: %w", err)
	}
	return &c, nil
}

// Filter keeps items where any of fields contains q, case-insensitively.
// An empty q keeps everything.
func Filter[T any](items []T, q string, fields func(T) []string) []T {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if q == "" {
			out = append(out, it)
			continue
		}
		for _, f := range fields(it) {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, it)
				break
			}
		}
	}
	return out
}
