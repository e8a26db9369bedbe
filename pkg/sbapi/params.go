package sbapi

import (
	"net/url"
	"strconv"
	"strings"
)

// ListParameters are the query options of a list call.
type ListParameters struct {
	Page    int
	PerPage int
	Sort    []string
	Fields  []string
	Filters map[string][]string
	Extra   url.Values
}

// NewListParameters creates empty list parameters.
func NewListParameters() *ListParameters {
	return &ListParameters{
		Filters: make(map[string][]string),
		Extra:   make(url.Values),
	}
}

// WithPage sets the page number.
func (p *ListParameters) WithPage(page int) *ListParameters {
	p.Page = page

	return p
}

// WithPerPage sets the page size.
func (p *ListParameters) WithPerPage(perPage int) *ListParameters {
	p.PerPage = perPage

	return p
}

// WithSort appends sort keys. Prefix a key with "-" for descending order.
func (p *ListParameters) WithSort(keys ...string) *ListParameters {
	p.Sort = append(p.Sort, keys...)

	return p
}

// WithFields restricts the returned fields.
func (p *ListParameters) WithFields(fields ...string) *ListParameters {
	p.Fields = append(p.Fields, fields...)

	return p
}

// WithFilter adds a filter. Repeated calls for the same key accumulate values.
func (p *ListParameters) WithFilter(key string, values ...string) *ListParameters {
	if p.Filters == nil {
		p.Filters = make(map[string][]string)
	}

	p.Filters[key] = append(p.Filters[key], values...)

	return p
}

// With sets an arbitrary query parameter.
func (p *ListParameters) With(key, value string) *ListParameters {
	if p.Extra == nil {
		p.Extra = make(url.Values)
	}

	p.Extra.Add(key, value)

	return p
}

// ToValues converts the parameters to url.Values. Filters and raw values
// are encoded first. A typed field that is set replaces any filter or raw
// value under the same key (page, per_page, sort, fields).
func (p *ListParameters) ToValues() url.Values {
	values := make(url.Values)
	if p == nil {
		return values
	}

	for key, vals := range p.Filters {
		if len(vals) > 0 {
			values.Set(key, strings.Join(vals, ","))
		}
	}

	mergeValues(values, p.Extra)

	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}

	if p.PerPage > 0 {
		values.Set("per_page", strconv.Itoa(p.PerPage))
	}

	if len(p.Sort) > 0 {
		values.Set("sort", strings.Join(p.Sort, ","))
	}

	if len(p.Fields) > 0 {
		values.Set("fields", strings.Join(p.Fields, ","))
	}

	return values
}

// GetParameters are the query options of a get call.
type GetParameters struct {
	Fields []string
	Expand []string
	Extra  url.Values
}

// NewGetParameters creates empty get parameters.
func NewGetParameters() *GetParameters {
	return &GetParameters{Extra: make(url.Values)}
}

// WithFields restricts the returned fields.
func (p *GetParameters) WithFields(fields ...string) *GetParameters {
	p.Fields = append(p.Fields, fields...)

	return p
}

// WithExpand requests related objects to be embedded.
func (p *GetParameters) WithExpand(relations ...string) *GetParameters {
	p.Expand = append(p.Expand, relations...)

	return p
}

// With sets an arbitrary query parameter.
func (p *GetParameters) With(key, value string) *GetParameters {
	if p.Extra == nil {
		p.Extra = make(url.Values)
	}

	p.Extra.Add(key, value)

	return p
}

// ToValues converts the parameters to url.Values. Fields and Expand, when
// set, replace raw values under the same key.
func (p *GetParameters) ToValues() url.Values {
	values := make(url.Values)
	if p == nil {
		return values
	}

	mergeValues(values, p.Extra)

	if len(p.Fields) > 0 {
		values.Set("fields", strings.Join(p.Fields, ","))
	}

	if len(p.Expand) > 0 {
		values.Set("expand", strings.Join(p.Expand, ","))
	}

	return values
}

func mergeValues(dst, src url.Values) {
	for key, vals := range src {
		for _, val := range vals {
			dst.Add(key, val)
		}
	}
}
