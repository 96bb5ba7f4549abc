package resource

// Option is a selectable value of a radio, select or filter.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes one form input.
type Field struct {
	Name         string   `json:"name"`
	Label        string   `json:"label"`
	Type         string   `json:"type"`
	Required     bool     `json:"required"`
	Rules        []string `json:"rules,omitempty"`
	Relationship string   `json:"relationship,omitempty"`
	Options      []Option `json:"options,omitempty"`
}

// Column describes one list-view column.
type Column struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	Sortable   bool   `json:"sortable"`
	Searchable bool   `json:"searchable"`
	Badge      bool   `json:"badge"`
	Format     string `json:"format,omitempty"`
}

// Filter describes one list-view filter control.
type Filter struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Type    string   `json:"type"`
	Options []Option `json:"options,omitempty"`
}

// Sort is a column ordering.
type Sort struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

// Table describes the list view.
type Table struct {
	Columns            []Column `json:"columns"`
	DefaultSort        Sort     `json:"default_sort"`
	Filters            []Filter `json:"filters"`
	FiltersLayout      string   `json:"filters_layout"`
	FiltersFormColumns int      `json:"filters_form_columns"`
	Actions            []string `json:"actions"`
	BulkActions        []string `json:"bulk_actions"`
	EmptyStateActions  []string `json:"empty_state_actions"`
}

// Page is a named route of the resource, relative to its base path.
type Page struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Field types.
const (
	FieldText   = "text"
	FieldRadio  = "radio"
	FieldSelect = "select"
	FieldDate   = "date"
)

// Actions.
const (
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// FiltersAboveContent renders the filter form above the table.
const FiltersAboveContent = "above_content"
