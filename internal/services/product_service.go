package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tokoadmin/internal/models"
	"tokoadmin/internal/repositories"
	"tokoadmin/pkg/money"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// Product event routing keys.
const (
	EventProductCreated     = "product.created"
	EventProductUpdated     = "product.updated"
	EventProductDeleted     = "product.deleted"
	EventProductBulkDeleted = "product.bulk_deleted"
)

// EventPublisher publishes product lifecycle events.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// ProductEvent is the payload published for every product change.
type ProductEvent struct {
	Event      string    `json:"event"`
	ProductID  string    `json:"product_id,omitempty"`
	ProductIDs []string  `json:"product_ids,omitempty"`
	Name       string    `json:"name,omitempty"`
	Count      int64     `json:"count,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ProductInput is the create/edit form payload. Price is a numeric string
// in minor units, as typed into the form.
type ProductInput struct {
	Name       string `json:"name" form:"name" validate:"required,max=255"`
	Price      string `json:"price" form:"price" validate:"required,numeric"`
	Status     string `json:"status" form:"status" validate:"omitempty,product_status"`
	CategoryID string `json:"category_id" form:"category_id" validate:"omitempty,uuid"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo       repositories.ProductRepository
	categories repositories.CategoryRepository
	tags       repositories.TagRepository
	publisher  EventPublisher
	validate   *validator.Validate
}

// NewProductService creates a new ProductService. publisher may be nil.
func NewProductService(
	repo repositories.ProductRepository,
	categories repositories.CategoryRepository,
	tags repositories.TagRepository,
	publisher EventPublisher,
) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		tags:       tags,
		publisher:  publisher,
		validate:   newValidator(),
	}
}

// ListProducts returns one page of list-view rows and the total match count.
func (s *ProductService) ListProducts(ctx context.Context, q repositories.ProductQuery) ([]repositories.ProductRow, int64, error) {
	return s.repo.List(ctx, q)
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct validates the form input and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	product, err := s.validateInput(ctx, in, "")
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrDuplicateName) {
			return nil, fieldError("name", takenMessage("name"))
		}
		return nil, err
	}

	s.publish(ProductEvent{Event: EventProductCreated, ProductID: product.ID, Name: product.Name})
	return product, nil
}

// UpdateProduct validates the form input and overwrites the editable fields
// of an existing product. The product's own name does not count as taken.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	product, err := s.validateInput(ctx, in, id)
	if err != nil {
		return nil, err
	}
	product.ID = id

	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrDuplicateName) {
			return nil, fieldError("name", takenMessage("name"))
		}
		return nil, err
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ProductEvent{Event: EventProductUpdated, ProductID: id, Name: updated.Name})
	return updated, nil
}

// DeleteProduct soft-deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ProductEvent{Event: EventProductDeleted, ProductID: id})
	return nil
}

// BulkDeleteProducts soft-deletes every selected product and returns how many
// were deleted. Unknown or already deleted ids are skipped.
func (s *ProductService) BulkDeleteProducts(ctx context.Context, ids []string) (int64, error) {
	ids = uniqueNonEmpty(ids)
	if len(ids) == 0 {
		return 0, fieldError("ids", "The ids field is required.")
	}

	deleted, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.publish(ProductEvent{Event: EventProductBulkDeleted, ProductIDs: ids, Count: deleted})
	return deleted, nil
}

// ProductTags lists the tags attached to a product.
func (s *ProductService) ProductTags(ctx context.Context, id string) ([]models.Tag, error) {
	return s.repo.Tags(ctx, id)
}

// AttachTags attaches existing tags to a product and returns the resulting tag list.
func (s *ProductService) AttachTags(ctx context.Context, id string, tagIDs []string) ([]models.Tag, error) {
	tagIDs = uniqueNonEmpty(tagIDs)
	if len(tagIDs) == 0 {
		return nil, fieldError("tag_ids", "The tag ids field is required.")
	}

	tags, err := s.tags.GetByIDs(ctx, tagIDs)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, fieldError("tag_ids", "The selected tag ids is invalid.")
	}

	if err := s.repo.AttachTags(ctx, id, tags); err != nil {
		return nil, err
	}
	return s.repo.Tags(ctx, id)
}

// DetachTag removes a tag from a product.
func (s *ProductService) DetachTag(ctx context.Context, id, tagID string) error {
	return s.repo.DetachTag(ctx, id, tagID)
}

func (s *ProductService) validateInput(ctx context.Context, in ProductInput, excludeID string) (*models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Price = strings.TrimSpace(in.Price)
	in.Status = strings.TrimSpace(in.Status)
	in.CategoryID = strings.TrimSpace(in.CategoryID)

	fields := map[string]string{}
	if err := collectErrors(s.validate.Struct(in), fields); err != nil {
		return nil, fmt.Errorf("failed to validate product: %w", err)
	}

	product := &models.Product{Name: in.Name, Status: models.Status(in.Status)}

	if _, failed := fields["price"]; !failed {
		price, ok := money.ParseMinor(in.Price)
		if ok {
			product.Price = price
		} else {
			fields["price"] = "The price field must be a valid whole number of cents."
		}
	}

	if _, failed := fields["name"]; !failed {
		taken, err := s.repo.NameExists(ctx, in.Name, excludeID)
		if err != nil {
			return nil, err
		}
		if taken {
			fields["name"] = takenMessage("name")
		}
	}

	if _, failed := fields["category_id"]; !failed && in.CategoryID != "" {
		_, err := s.categories.GetByID(ctx, in.CategoryID)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			fields["category_id"] = "The selected category id is invalid."
		case err != nil:
			return nil, err
		default:
			categoryID := in.CategoryID
			product.CategoryID = &categoryID
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	return product, nil
}

func (s *ProductService) publish(ev ProductEvent) {
	if s.publisher == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC()
	body, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("event", ev.Event).Msg("failed to marshal product event")
		return
	}
	if err := s.publisher.Publish(ev.Event, body); err != nil {
		log.Warn().Err(err).Str("event", ev.Event).Str("product_id", ev.ProductID).Msg("failed to publish product event")
	}
}

func uniqueNonEmpty(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
