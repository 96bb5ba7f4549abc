// Package resource declares how products are presented and edited in the
// admin panel: form fields, table columns, filters, actions and pages.
package resource

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tokoadmin/internal/models"
	"tokoadmin/internal/repositories"
	"tokoadmin/pkg/money"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Query-string parameters understood by the list view.
const (
	ParamSearch       = "search"
	ParamStatus       = "status"
	ParamCategory     = "category"
	ParamCreatedFrom  = "created_from"
	ParamCreatedUntil = "created_until"
	ParamSort         = "sort"
	ParamDirection    = "direction"
	ParamPage         = "page"
	ParamPerPage      = "per_page"
)

const (
	dateLayout     = "2006-01-02"
	defaultPerPage = 10
	maxPerPage     = 100
)

// QueryError reports an invalid list-view parameter.
type QueryError struct {
	Param   string
	Message string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Message)
}

// Pagination is the requested page. PerPage 0 means every row.
type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// ProductResource is the admin resource descriptor for products.
type ProductResource struct {
	// Currency is the ISO code prices are displayed in.
	Currency string
	// BasePath prefixes the page paths in rendered links.
	BasePath string
}

// NewProductResource creates the product resource descriptor.
func NewProductResource(currency, basePath string) *ProductResource {
	if currency == "" {
		currency = "usd"
	}
	return &ProductResource{Currency: strings.ToLower(currency), BasePath: strings.TrimRight(basePath, "/")}
}

// Pages returns the list, create and edit routes.
func (r *ProductResource) Pages() []Page {
	return []Page{
		{Name: "index", Path: "/"},
		{Name: "create", Path: "/create"},
		{Name: "edit", Path: "/{record}/edit"},
	}
}

// Relations names the relation managers shown on the edit page.
func (r *ProductResource) Relations() []string {
	return []string{"tags"}
}

// Form returns the create/edit form schema with category options filled in.
func (r *ProductResource) Form(categories []models.Category) []Field {
	return []Field{
		{Name: "name", Label: "Name", Type: FieldText, Required: true, Rules: []string{"required", "unique:ignore_record"}},
		{Name: "price", Label: "Price", Type: FieldText, Required: true, Rules: []string{"required", "numeric"}},
		{Name: "status", Label: "Status", Type: FieldRadio, Options: statusOptions()},
		{Name: "category_id", Label: "Category", Type: FieldSelect, Relationship: "category", Options: categoryOptions(categories)},
	}
}

// Table returns the list-view schema with category options filled in.
func (r *ProductResource) Table(categories []models.Category) Table {
	return Table{
		Columns: []Column{
			{Name: "name", Label: "Name", Sortable: true, Searchable: true},
			{Name: "price", Label: "Price", Sortable: true, Format: "money:" + r.Currency},
			{Name: "status", Label: "Status", Badge: true},
			{Name: "category.name", Label: "Category"},
			{Name: "tags.name", Label: "Tags", Badge: true},
		},
		DefaultSort: Sort{Column: repositories.SortByName, Direction: "asc"},
		Filters: []Filter{
			{Name: ParamStatus, Label: "Status", Type: FieldSelect, Options: statusOptions()},
			{Name: ParamCategory, Label: "Category", Type: FieldSelect, Options: categoryOptions(categories)},
			{Name: ParamCreatedFrom, Label: "Created from", Type: FieldDate},
			{Name: ParamCreatedUntil, Label: "Created until", Type: FieldDate},
		},
		FiltersLayout:      FiltersAboveContent,
		FiltersFormColumns: 4,
		Actions:            []string{ActionEdit, ActionDelete},
		BulkActions:        []string{ActionDelete},
		EmptyStateActions:  []string{ActionCreate},
	}
}

// BuildQuery turns list-view query-string parameters into a repository query.
// Missing parameters leave the matching filter disabled.
func (r *ProductResource) BuildQuery(params map[string]string) (repositories.ProductQuery, Pagination, error) {
	var q repositories.ProductQuery
	page := Pagination{Page: 1, PerPage: defaultPerPage}

	q.Search = strings.TrimSpace(params[ParamSearch])
	q.CategoryID = strings.TrimSpace(params[ParamCategory])

	if v := strings.TrimSpace(params[ParamStatus]); v != "" {
		status := models.Status(v)
		if !status.Valid() {
			return q, page, &QueryError{Param: ParamStatus, Message: fmt.Sprintf("unknown status %q", v)}
		}
		q.Status = status
	}

	var err error
	if q.CreatedFrom, err = parseDate(ParamCreatedFrom, params[ParamCreatedFrom]); err != nil {
		return q, page, err
	}
	if q.CreatedUntil, err = parseDate(ParamCreatedUntil, params[ParamCreatedUntil]); err != nil {
		return q, page, err
	}

	q.SortBy = repositories.SortByName
	if v := strings.TrimSpace(params[ParamSort]); v != "" {
		if v != repositories.SortByName && v != repositories.SortByPrice && v != repositories.SortByCreatedAt {
			return q, page, &QueryError{Param: ParamSort, Message: fmt.Sprintf("column %q is not sortable", v)}
		}
		q.SortBy = v
	}
	switch strings.ToLower(strings.TrimSpace(params[ParamDirection])) {
	case "", "asc":
	case "desc":
		q.SortDesc = true
	default:
		return q, page, &QueryError{Param: ParamDirection, Message: "must be asc or desc"}
	}

	if v := strings.TrimSpace(params[ParamPage]); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return q, page, &QueryError{Param: ParamPage, Message: "must be a positive integer"}
		}
		page.Page = n
	}
	if v := strings.TrimSpace(params[ParamPerPage]); v != "" {
		if v == "all" {
			page.PerPage = 0
		} else {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > maxPerPage {
				return q, page, &QueryError{Param: ParamPerPage, Message: fmt.Sprintf("must be between 1 and %d or all", maxPerPage)}
			}
			page.PerPage = n
		}
	}
	if page.PerPage > 0 {
		q.Limit = page.PerPage
		q.Offset = (page.Page - 1) * page.PerPage
	}

	return q, page, nil
}

func parseDate(param, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return nil, &QueryError{Param: param, Message: "expected a YYYY-MM-DD date"}
	}
	return &d, nil
}

// Price is a rendered money cell.
type Price struct {
	Minor   int64           `json:"minor"`
	Amount  decimal.Decimal `json:"amount"`
	Display string          `json:"display"`
}

// Badge is a rendered status cell. Known is false when the stored value is
// not a recognised status; such badges use the gray color.
type Badge struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Color string `json:"color"`
	Known bool   `json:"known"`
}

// Links are the row action targets.
type Links struct {
	Edit   string `json:"edit"`
	Delete string `json:"delete"`
}

// Row is one rendered list-view row.
type Row struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Price        Price     `json:"price"`
	Status       *Badge    `json:"status"`
	CategoryID   *string   `json:"category_id"`
	CategoryName *string   `json:"category_name"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Links        Links     `json:"links"`
}

// RenderRow renders a repository row for the list view.
func (r *ProductResource) RenderRow(row repositories.ProductRow) Row {
	tags := row.TagNames
	if tags == nil {
		tags = []string{}
	}
	return Row{
		ID:   row.ID,
		Name: row.Name,
		Price: Price{
			Minor:   row.Price,
			Amount:  money.FromMinor(row.Price),
			Display: money.FormatMinor(row.Price, r.Currency),
		},
		Status:       r.StatusBadge(row.ID, row.Status),
		CategoryID:   row.CategoryID,
		CategoryName: row.CategoryName,
		Tags:         tags,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		Links: Links{
			Edit:   r.BasePath + "/" + row.ID + "/edit",
			Delete: r.BasePath + "/" + row.ID,
		},
	}
}

// StatusBadge renders the status badge, nil when no status is set.
func (r *ProductResource) StatusBadge(productID string, status models.Status) *Badge {
	if status == "" {
		return nil
	}
	color, err := status.Color()
	if err != nil {
		log.Warn().Err(err).Str("product_id", productID).Msg("rendering unknown product status")
		return &Badge{Value: string(status), Label: status.Label(), Color: models.ColorGray, Known: false}
	}
	return &Badge{Value: string(status), Label: status.Label(), Color: color, Known: true}
}

// FormValues returns the edit form state of a product.
func (r *ProductResource) FormValues(p *models.Product) map[string]interface{} {
	values := map[string]interface{}{
		"name":        p.Name,
		"price":       strconv.FormatInt(p.Price, 10),
		"status":      string(p.Status),
		"category_id": nil,
	}
	if p.CategoryID != nil {
		values["category_id"] = *p.CategoryID
	}
	return values
}

func statusOptions() []Option {
	statuses := models.Statuses()
	options := make([]Option, len(statuses))
	for i, s := range statuses {
		options[i] = Option{Value: string(s), Label: s.Label()}
	}
	return options
}

func categoryOptions(categories []models.Category) []Option {
	options := make([]Option, len(categories))
	for i, c := range categories {
		options[i] = Option{Value: c.ID, Label: c.Name}
	}
	return options
}
