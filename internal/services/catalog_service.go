package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tokoadmin/internal/models"
	"tokoadmin/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// NameInput is the payload for creating a category or a tag.
type NameInput struct {
	Name string `json:"name" form:"name" validate:"required,max=255"`
}

// CatalogService manages the categories and tags products refer to.
type CatalogService struct {
	categories repositories.CategoryRepository
	tags       repositories.TagRepository
	validate   *validator.Validate
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(categories repositories.CategoryRepository, tags repositories.TagRepository) *CatalogService {
	return &CatalogService{
		categories: categories,
		tags:       tags,
		validate:   newValidator(),
	}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, in NameInput) (*models.Category, error) {
	name, err := s.validateName(in)
	if err != nil {
		return nil, err
	}
	category := &models.Category{Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, repositories.ErrDuplicateName) {
			return nil, fieldError("name", takenMessage("name"))
		}
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.tags.List(ctx)
}

func (s *CatalogService) CreateTag(ctx context.Context, in NameInput) (*models.Tag, error) {
	name, err := s.validateName(in)
	if err != nil {
		return nil, err
	}
	tag := &models.Tag{Name: name}
	if err := s.tags.Create(ctx, tag); err != nil {
		if errors.Is(err, repositories.ErrDuplicateName) {
			return nil, fieldError("name", takenMessage("name"))
		}
		return nil, err
	}
	return tag, nil
}

func (s *CatalogService) validateName(in NameInput) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	fields := map[string]string{}
	if err := collectErrors(s.validate.Struct(in), fields); err != nil {
		return "", fmt.Errorf("failed to validate name: %w", err)
	}
	if len(fields) > 0 {
		return "", &ValidationError{Fields: fields}
	}
	return in.Name, nil
}
