package services

import (
	"fmt"
	"strings"

	"github.com/yungbote/eduverse-backend/internal/pkg/logger"
	"github.com/yungbote/eduverse-backend/internal/resources"
)

// ResourceService serves the static learning catalog.
type ResourceService interface {
	Educational(q string) []resources.EducationalContent
	Jobs(q string) []resources.JobPosting
	Skills(q string) []resources.SkillResource
}

type resourceService struct {
	log     *logger.Logger
	catalog *resources.Catalog
}

func NewResourceService(log *logger.Logger) (ResourceService, error) {
	c, err := resources.Load()
	if err != nil {
		return nil, fmt.Errorf("load resource catalog: %w", err)
	}
	serviceLog := log.With("service", "ResourceService")
	serviceLog.Info("Loaded resource catalog",
		"educational", len(c.Educational), "jobs", len(c.Jobs), "skills", len(c.Skills))
	return &resourceService{log: serviceLog, catalog: c}, nil
}

func (rs *resourceService) Educational(q string) []resources.EducationalContent {
	return resources.Filter(rs.catalog.Educational, q, func(e resources.EducationalContent) []string {
		return []string{e.Title, e.Description, e.Source}
	})
}

func (rs *resourceService) Jobs(q string) []resources.JobPosting {
	return resources.Filter(rs.catalog.Jobs, q, func(j resources.JobPosting) []string {
		return []string{j.JobTitle, j.Company, j.Location, strings.Join(j.Requirements, " ")}
	})
}

func (rs *resourceService) Skills(q string) []resources.SkillResource {
	return resources.Filter(rs.catalog.Skills, q, func(s resources.SkillResource) []string {
		return []string{s.SkillName, s.Description}
	})
}
