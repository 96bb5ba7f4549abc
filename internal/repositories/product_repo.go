package repositories

import (
	"context"
	"time"

	"tokoadmin/internal/models"
)

// Sortable product columns.
const (
	SortByName      = "name"
	SortByPrice     = "price"
	SortByCreatedAt = "created_at"
)

// ProductQuery holds the list-view filters. Zero values disable a filter;
// all set filters are combined with AND.
type ProductQuery struct {
	Search     string
	Status     models.Status
	CategoryID string
	// CreatedFrom and CreatedUntil are calendar dates (UTC midnight), both inclusive.
	CreatedFrom  *time.Time
	CreatedUntil *time.Time
	SortBy       string
	SortDesc     bool
	Limit        int
	Offset       int
}

// ProductRow is a denormalized list-view row.
type ProductRow struct {
	ID           string
	Name         string
	Price        int64
	Status       models.Status
	CategoryID   *string
	CategoryName *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	TagNames     []string `gorm:"-"`
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, q ProductQuery) ([]ProductRow, int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	// NameExists reports whether another product (soft-deleted ones included)
	// already uses name. excludeID may be empty.
	NameExists(ctx context.Context, name, excludeID string) (bool, error)
	Tags(ctx context.Context, productID string) ([]models.Tag, error)
	AttachTags(ctx context.Context, productID string, tags []models.Tag) error
	DetachTag(ctx context.Context, productID, tagID string) error
}
