package selection

import "slices"

// Operator is a filter comparison operator.
type Operator string

const (
	OpEq       Operator = "="
	OpNe       Operator = "!="
	OpLt       Operator = "<"
	OpLe       Operator = "<="
	OpGt       Operator = ">"
	OpGe       Operator = ">="
	OpContains Operator = "contains"
)

// Operators lists every accepted operator.
var Operators = []Operator{OpEq, OpNe, OpLt, OpLe, OpGt, OpGe, OpContains}

// Valid reports whether op is one of Operators.
func (op Operator) Valid() bool {
	return slices.Contains(Operators, op)
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Valid reports whether d is asc or desc.
func (d Direction) Valid() bool {
	return d == Asc || d == Desc
}

// SortFile orders groups by source document path.
const SortFile = "file"

// Default values.
const (
	DefaultVersion       = 1
	DefaultShowCompleted = false
	DefaultSortBy        = SortFile
	DefaultSortDirection = Desc
)

// Filter restricts matching pages by one property. Value is kept exactly as
// written; interpretation happens when the query is built.
type Filter struct {
	Property string   `json:"property"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// Source selects pages: an optional folder scope plus conjoined filters.
type Source struct {
	Folder  string   `json:"folder,omitempty"`
	Filters []Filter `json:"filters"`
}

// View controls completion visibility and group ordering.
type View struct {
	ShowCompleted bool      `json:"showCompleted"`
	SortBy        string    `json:"sortBy"`
	SortDirection Direction `json:"sortDirection"`
}

// Definition is a parsed selection definition.
type Definition struct {
	Version int    `json:"version"`
	Source  Source `json:"source"`
	View    View   `json:"view"`
}

// Equal reports whether d and o describe the same selection. A nil and an
// empty filter list are equal.
func (d Definition) Equal(o Definition) bool {
	if d.Version != o.Version || d.Source.Folder != o.Source.Folder || d.View != o.View {
		return false
	}
	return slices.Equal(d.Source.Filters, o.Source.Filters)
}

// Partial is a definition where every field may be absent (nil).
type Partial struct {
	Version *int
	Source  *PartialSource
	View    *PartialView
}

// PartialSource is the optional form of Source. A nil Filters means absent.
type PartialSource struct {
	Folder  *string
	Filters []Filter
}

// PartialView is the optional form of View.
type PartialView struct {
	ShowCompleted *bool
	SortBy        *string
	SortDirection *Direction
}

// Default returns the definition used when nothing is specified.
func Default() Definition {
	return MergeWithDefaults(Partial{})
}

// MergeWithDefaults fills every absent field of p from the fixed defaults,
// field by field. A present filter list replaces the default one wholesale.
func MergeWithDefaults(p Partial) Definition {
	d := Definition{
		Version: DefaultVersion,
		Source:  Source{Filters: []Filter{}},
		View: View{
			ShowCompleted: DefaultShowCompleted,
			SortBy:        DefaultSortBy,
			SortDirection: DefaultSortDirection,
		},
	}
	if p.Version != nil {
		d.Version = *p.Version
	}
	if s := p.Source; s != nil {
		if s.Folder != nil {
			d.Source.Folder = *s.Folder
		}
		if s.Filters != nil {
			d.Source.Filters = slices.Clone(s.Filters)
		}
	}
	if v := p.View; v != nil {
		if v.ShowCompleted != nil {
			d.View.ShowCompleted = *v.ShowCompleted
		}
		if v.SortBy != nil {
			d.View.SortBy = *v.SortBy
		}
		if v.SortDirection != nil {
			d.View.SortDirection = *v.SortDirection
		}
	}
	return d
}
