package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"tokoadmin/internal/models"
	"tokoadmin/internal/repositories"
	"tokoadmin/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	productID  = "5b0cf3bc-5a7e-4d29-9d1c-6d1f3a4e2b10"
	categoryID = "0f8fad5b-d9cb-469f-a165-70867728950e"
)

type productDeps struct {
	products   *MockProductRepository
	categories *MockCategoryRepository
	tags       *MockTagRepository
	publisher  *MockPublisher
}

func newProductService(withPublisher bool) (*services.ProductService, *productDeps) {
	d := &productDeps{
		products:   new(MockProductRepository),
		categories: new(MockCategoryRepository),
		tags:       new(MockTagRepository),
		publisher:  new(MockPublisher),
	}
	var publisher services.EventPublisher
	if withPublisher {
		publisher = d.publisher
	}
	return services.NewProductService(d.products, d.categories, d.tags, publisher), d
}

func (d *productDeps) assertExpectations(t *testing.T) {
	d.products.AssertExpectations(t)
	d.categories.AssertExpectations(t)
	d.tags.AssertExpectations(t)
	d.publisher.AssertExpectations(t)
}

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr), "expected a validation error, got %v", err)
	return verr.Fields
}

func TestProductService_CreateProduct(t *testing.T) {
	svc, d := newProductService(true)
	ctx := context.Background()

	d.products.On("NameExists", ctx, "Laptop", "").Return(false, nil).Once()
	d.categories.On("GetByID", ctx, categoryID).Return(&models.Category{ID: categoryID, Name: "Computers"}, nil).Once()
	d.products.On("Create", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return p.Name == "Laptop" && p.Price == 149999 && p.Status == models.StatusInStock &&
			p.CategoryID != nil && *p.CategoryID == categoryID
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Product).ID = productID
	}).Return(nil).Once()
	d.publisher.On("Publish", services.EventProductCreated, mock.MatchedBy(func(body []byte) bool {
		var ev services.ProductEvent
		return json.Unmarshal(body, &ev) == nil && ev.ProductID == productID && ev.Name == "Laptop"
	})).Return(nil).Once()

	product, err := svc.CreateProduct(ctx, services.ProductInput{
		Name:       "  Laptop ",
		Price:      "149999",
		Status:     "in_stock",
		CategoryID: categoryID,
	})
	require.NoError(t, err)
	assert.Equal(t, productID, product.ID)
	assert.Equal(t, "Laptop", product.Name)
	d.assertExpectations(t)
}

func TestProductService_CreateProductValidation(t *testing.T) {
	svc, d := newProductService(true)

	_, err := svc.CreateProduct(context.Background(), services.ProductInput{
		Name:       "",
		Price:      "abc",
		Status:     "discontinued",
		CategoryID: "not-a-uuid",
	})
	fields := validationFields(t, err)
	assert.Equal(t, map[string]string{
		"name":        "The name field is required.",
		"price":       "The price field must be a number.",
		"status":      "The selected status is invalid.",
		"category_id": "The category id field must be a valid UUID.",
	}, fields)

	// larger than int64: numeric, but it must not wrap around into a small price
	_, err = svc.CreateProduct(context.Background(), services.ProductInput{Price: "18446744073709551617"})
	assert.Equal(t, map[string]string{
		"name":  "The name field is required.",
		"price": "The price field must be a valid whole number of cents.",
	}, validationFields(t, err))

	// nothing is looked up or written once the form itself is invalid
	d.assertExpectations(t)
	d.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_CreateProductRequiresPrice(t *testing.T) {
	svc, d := newProductService(false)
	ctx := context.Background()
	d.products.On("NameExists", ctx, "Mouse", "").Return(false, nil).Once()

	_, err := svc.CreateProduct(ctx, services.ProductInput{Name: "Mouse"})
	assert.Equal(t, map[string]string{"price": "The price field is required."}, validationFields(t, err))
	d.assertExpectations(t)
}

func TestProductService_CreateProductFractionalCents(t *testing.T) {
	svc, d := newProductService(false)
	ctx := context.Background()
	d.products.On("NameExists", ctx, "Mouse", "").Return(false, nil).Once()

	_, err := svc.CreateProduct(ctx, services.ProductInput{Name: "Mouse", Price: "12.5"})
	fields := validationFields(t, err)
	assert.Contains(t, fields, "price")
	d.assertExpectations(t)
}

func TestProductService_CreateProductDuplicateName(t *testing.T) {
	svc, d := newProductService(true)
	ctx := context.Background()
	d.products.On("NameExists", ctx, "Laptop", "").Return(true, nil).Once()

	_, err := svc.CreateProduct(ctx, services.ProductInput{Name: "Laptop", Price: "100"})
	assert.Equal(t, map[string]string{"name": "The name has already been taken."}, validationFields(t, err))
	d.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	d.assertExpectations(t)
}

func TestProductService_CreateProductDuplicateRace(t *testing.T) {
	svc, d := newProductService(true)
	ctx := context.Background()
	d.products.On("NameExists", ctx, "Laptop", "").Return(false, nil).Once()
	d.products.On("Create", ctx, mock.AnythingOfType("*models.Product")).
		Return(fmt.Errorf("product %q: %w", "Laptop", repositories.ErrDuplicateName)).Once()

	_, err := svc.CreateProduct(ctx, services.ProductInput{Name: "Laptop", Price: "100"})
	assert.Equal(t, map[string]string{"name": "The name has already been taken."}, validationFields(t, err))
	d.assertExpectations(t)
}

func TestProductService_CreateProductUnknownCategory(t *testing.T) {
	svc, d := newProductService(false)
	ctx := context.Background()
	d.products.On("NameExists", ctx, "Laptop", "").Return(false, nil).Once()
	d.categories.On("GetByID", ctx, categoryID).Return(nil, repositories.ErrNotFound).Once()

	_, err := svc.CreateProduct(ctx, services.ProductInput{Name: "Laptop", Price: "100", CategoryID: categoryID})
	assert.Equal(t, map[string]string{"category_id": "The selected category id is invalid."}, validationFields(t, err))
	d.assertExpectations(t)
}

func TestProductService_CreateProductPublishFailureIsNotFatal(t *testing.T) {
	svc, d := newProductService(true)
	ctx := context.Background()
	d.products.On("NameExists", ctx, "Laptop", "").Return(false, nil).Once()
	d.products.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()
	d.publisher.On("Publish", services.EventProductCreated, mock.Anything).Return(errors.New("channel closed")).Once()

	product, err := svc.CreateProduct(ctx, services.ProductInput{Name: "Laptop", Price: "100"})
	require.NoError(t, err)
	assert.Equal(t, int64(100), product.Price)
	assert.Equal(t, models.Status(""), product.Status)
	d.assertExpectations(t)
}

func TestProductService_UpdateProductKeepingName(t *testing.T) {
	svc, d := newProductService(true)
	ctx := context.Background()
	existing := &models.Product{ID: productID, Name: "Laptop", Price: 100, Status: models.StatusInStock}
	updated := &models.Product{ID: productID, Name: "Laptop", Price: 250, Status: models.StatusSoldOut}

	d.products.On("GetByID", ctx, productID).Return(existing, nil).Once()
	// the record being edited is excluded from the uniqueness check
	d.products.On("NameExists", ctx, "Laptop", productID).Return(false, nil).Once()
	d.products.On("Update", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return p.ID == productID && p.Name == "Laptop" && p.Price == 250 && p.Status == models.StatusSoldOut && p.CategoryID == nil
	})).Return(nil).Once()
	d.products.On("GetByID", ctx, productID).Return(updated, nil).Once()
	d.publisher.On("Publish", services.EventProductUpdated, mock.Anything).Return(nil).Once()

	product, err := svc.UpdateProduct(ctx, productID, services.ProductInput{Name: "Laptop", Price: "250", Status: "sold_out"})
	require.NoError(t, err)
	assert.Equal(t, updated, product)
	d.assertExpectations(t)
}

func TestProductService_UpdateProductNameTakenByAnother(t *testing.T) {
	svc, d := newProductService(true)
	ctx := context.Background()
	d.products.On("GetByID", ctx, productID).Return(&models.Product{ID: productID, Name: "Laptop"}, nil).Once()
	d.products.On("NameExists", ctx, "Mouse", productID).Return(true, nil).Once()

	_, err := svc.UpdateProduct(ctx, productID, services.ProductInput{Name: "Mouse", Price: "100"})
	assert.Equal(t, map[string]string{"name": "The name has already been taken."}, validationFields(t, err))
	d.products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	d.assertExpectations(t)
}

func TestProductService_UpdateProductNotFound(t *testing.T) {
	svc, d := newProductService(true)
	ctx := context.Background()
	d.products.On("GetByID", ctx, productID).Return(nil, fmt.Errorf("product with ID %s: %w", productID, repositories.ErrNotFound)).Once()

	_, err := svc.UpdateProduct(ctx, productID, services.ProductInput{Name: "Laptop", Price: "100"})
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
	d.assertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	svc, d := newProductService(true)
	ctx := context.Background()
	d.products.On("Delete", ctx, productID).Return(nil).Once()
	d.publisher.On("Publish", services.EventProductDeleted, mock.Anything).Return(nil).Once()

	require.NoError(t, svc.DeleteProduct(ctx, productID))

	d.products.On("Delete", ctx, "missing").Return(repositories.ErrNotFound).Once()
	err := svc.DeleteProduct(ctx, "missing")
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
	d.assertExpectations(t)
}

func TestProductService_BulkDeleteProducts(t *testing.T) {
	svc, d := newProductService(false)
	ctx := context.Background()
	d.products.On("DeleteMany", ctx, []string{"a", "b"}).Return(int64(2), nil).Once()

	deleted, err := svc.BulkDeleteProducts(ctx, []string{"a", " a ", "", "b"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = svc.BulkDeleteProducts(ctx, []string{" "})
	assert.Contains(t, validationFields(t, err), "ids")
	d.assertExpectations(t)
}

func TestProductService_AttachTags(t *testing.T) {
	svc, d := newProductService(false)
	ctx := context.Background()
	gaming := models.Tag{ID: "t1", Name: "gaming"}

	d.tags.On("GetByIDs", ctx, []string{"t1", "t2"}).Return([]models.Tag{gaming}, nil).Once()
	_, err := svc.AttachTags(ctx, productID, []string{"t1", "t2"})
	assert.Equal(t, map[string]string{"tag_ids": "The selected tag ids is invalid."}, validationFields(t, err))
	d.products.AssertNotCalled(t, "AttachTags", mock.Anything, mock.Anything, mock.Anything)

	d.tags.On("GetByIDs", ctx, []string{"t1"}).Return([]models.Tag{gaming}, nil).Once()
	d.products.On("AttachTags", ctx, productID, []models.Tag{gaming}).Return(nil).Once()
	d.products.On("Tags", ctx, productID).Return([]models.Tag{gaming}, nil).Once()
	tags, err := svc.AttachTags(ctx, productID, []string{"t1", "t1"})
	require.NoError(t, err)
	assert.Equal(t, []models.Tag{gaming}, tags)
	d.assertExpectations(t)
}
