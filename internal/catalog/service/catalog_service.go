package service

import (
	"strings"

	"psychaid/backend/internal/catalog/domain"
)

// CatalogService serves the built-in resources and guided exercises.
type CatalogService struct {
	resources []domain.Resource
	exercises map[string][]domain.TherapeuticExercise
}

// NewCatalogService returns a CatalogService over the built-in catalog.
func NewCatalogService() *CatalogService {
	return &CatalogService{resources: domain.Resources, exercises: domain.TherapeuticExercises}
}

// Resources returns every resource, or those of kind when it is non-empty.
func (s *CatalogService) Resources(kind string) []domain.Resource {
	kind = strings.ToLower(strings.TrimSpace(kind))
	out := make([]domain.Resource, 0, len(s.resources))
	for _, r := range s.resources {
		if kind == "" || r.Type == kind {
			out = append(out, r)
		}
	}
	return out
}

// Resource returns the resource with id.
func (s *CatalogService) Resource(id string) (domain.Resource, error) {
	for _, r := range s.resources {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Resource{}, domain.ErrResourceNotFound
}

// TherapeuticExercises returns the guided exercises grouped by category.
func (s *CatalogService) TherapeuticExercises() map[string][]domain.TherapeuticExercise {
	return s.exercises
}
