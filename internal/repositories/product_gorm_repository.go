package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tokoadmin/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var productSortColumns = map[string]string{
	SortByName:      "products.name",
	SortByPrice:     "products.price",
	SortByCreatedAt: "products.created_at",
}

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

const productRowSelect = "products.id, products.name, products.price, products.status, " +
	"products.category_id, categories.name AS category_name, products.created_at, products.updated_at"

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func (r *GORMProductRepository) listQuery(ctx context.Context, q ProductQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Joins("LEFT JOIN categories ON categories.id = products.category_id")

	if q.Search != "" {
		tx = tx.Where(`LOWER(products.name) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(q.Search))+"%")
	}
	if q.Status != "" {
		tx = tx.Where("products.status = ?", q.Status)
	}
	if q.CategoryID != "" {
		tx = tx.Where("products.category_id = ?", q.CategoryID)
	}
	if q.CreatedFrom != nil {
		tx = tx.Where("products.created_at >= ?", q.CreatedFrom.UTC())
	}
	if q.CreatedUntil != nil {
		// until is inclusive of the whole day
		tx = tx.Where("products.created_at < ?", q.CreatedUntil.UTC().AddDate(0, 0, 1))
	}
	return tx
}

// List returns the rows matching q and the total count ignoring Limit/Offset.
func (r *GORMProductRepository) List(ctx context.Context, q ProductQuery) ([]ProductRow, int64, error) {
	var total int64
	if err := r.listQuery(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	column, ok := productSortColumns[q.SortBy]
	if !ok {
		column = productSortColumns[SortByName]
	}
	direction := "ASC"
	if q.SortDesc {
		direction = "DESC"
	}

	tx := r.listQuery(ctx, q).
		Select(productRowSelect).
		Order(column + " " + direction).
		Order("products.id ASC")
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit).Offset(q.Offset)
	}

	rows := []ProductRow{}
	if err := tx.Scan(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	if err := r.loadTagNames(ctx, rows); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *GORMProductRepository) loadTagNames(ctx context.Context, rows []ProductRow) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]string, len(rows))
	index := make(map[string]int, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
		index[row.ID] = i
	}

	var pairs []struct {
		ProductID string
		Name      string
	}
	err := r.db.WithContext(ctx).
		Table("product_tag").
		Select("product_tag.product_id, tags.name").
		Joins("JOIN tags ON tags.id = product_tag.tag_id").
		Where("product_tag.product_id IN ?", ids).
		Order("tags.name ASC").
		Scan(&pairs).Error
	if err != nil {
		return fmt.Errorf("failed to load product tags: %w", err)
	}
	for _, p := range pairs {
		i := index[p.ProductID]
		rows[i].TagNames = append(rows[i].TagNames, p.Name)
	}
	return nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Omit("Category", "Tags").Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("product %q: %w", product.Name, ErrDuplicateName)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update writes the editable columns of an existing product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":        product.Name,
			"price":       product.Price,
			"status":      product.Status,
			"category_id": product.CategoryID,
		})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("product %q: %w", product.Name, ErrDuplicateName)
		}
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	return nil
}

// Delete soft-deletes a product by its ID.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteMany soft-deletes every listed product and returns how many were deleted.
func (r *GORMProductRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Product{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to bulk delete products: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// NameExists checks the name against every stored product, soft-deleted included,
// to match the unique index.
func (r *GORMProductRepository) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	tx := r.db.WithContext(ctx).Unscoped().Model(&models.Product{}).Where("name = ?", name)
	if excludeID != "" {
		tx = tx.Where("id <> ?", excludeID)
	}
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check product name: %w", err)
	}
	return count > 0, nil
}

// Tags returns the tags attached to a product, ordered by name.
func (r *GORMProductRepository) Tags(ctx context.Context, productID string) ([]models.Tag, error) {
	if _, err := r.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	tags := []models.Tag{}
	err := r.db.WithContext(ctx).
		Joins("JOIN product_tag ON product_tag.tag_id = tags.id").
		Where("product_tag.product_id = ?", productID).
		Order("tags.name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get tags of product %s: %w", productID, err)
	}
	return tags, nil
}

// AttachTags associates existing tags with a product. Already attached tags are ignored.
func (r *GORMProductRepository) AttachTags(ctx context.Context, productID string, tags []models.Tag) error {
	if _, err := r.GetByID(ctx, productID); err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.Product{ID: productID}).
		Omit("Tags.*").
		Association("Tags").
		Append(tags)
	if err != nil {
		return fmt.Errorf("failed to attach tags to product %s: %w", productID, err)
	}
	return nil
}

// DetachTag removes a single tag association. A tag that is not attached
// to the product is reported as ErrNotFound.
func (r *GORMProductRepository) DetachTag(ctx context.Context, productID, tagID string) error {
	if _, err := r.GetByID(ctx, productID); err != nil {
		return err
	}
	assoc := r.db.WithContext(ctx).
		Model(&models.Product{ID: productID}).
		Where("tags.id = ?", tagID).
		Association("Tags")
	attached := assoc.Count()
	err := assoc.Error
	if err != nil {
		return fmt.Errorf("failed to check tag %s of product %s: %w", tagID, productID, err)
	}
	if attached == 0 {
		return fmt.Errorf("tag %s on product %s: %w", tagID, productID, ErrNotFound)
	}
	err = r.db.WithContext(ctx).
		Model(&models.Product{ID: productID}).
		Association("Tags").
		Delete(&models.Tag{ID: tagID})
	if err != nil {
		return fmt.Errorf("failed to detach tag %s from product %s: %w", tagID, productID, err)
	}
	return nil
}
