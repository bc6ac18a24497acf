package catalog

import (
	"strings"
	"unicode"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10

	Uncategorized = "Uncategorized"

	msgBadPage   = "Page number must be a positive integer."
	msgBadLimit  = "Limit must be a positive integer."
	msgBadSearch = "Search query (q) is required and must be a non-empty string."
)

type PageParams struct {
	Page  int
	Limit int
}

type Page struct {
	Page          int       `json:"page"`
	Limit         int       `json:"limit"`
	TotalPages    int       `json:"totalPages"`
	TotalProducts int       `json:"totalProducts"`
	Products      []Product `json:"products"`
}

// FilterByCategory keeps products whose category contains term, ignoring
// case. An empty term keeps everything.
func FilterByCategory(products []Product, term string) []Product {
	if term == "" {
		return products
	}

	needle := strings.ToLower(term)
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Category), needle) {
			out = append(out, p)
		}
	}
	return out
}

// ParsePageParams reads the raw page and limit query values. A value with no
// leading integer falls back to the default; an integer below 1 is rejected.
func ParsePageParams(page, limit string) (PageParams, error) {
	pp := PageParams{Page: DefaultPage, Limit: DefaultLimit}

	if n, ok := leadingInt(page); ok {
		if n <= 0 {
			return PageParams{}, Validation(msgBadPage)
		}
		pp.Page = n
	}

	if n, ok := leadingInt(limit); ok {
		if n <= 0 {
			return PageParams{}, Validation(msgBadLimit)
		}
		pp.Limit = n
	}

	return pp, nil
}

// Paginate cuts the half-open window [(page-1)*limit, page*limit) out of
// products. A window past the end is empty, never an error.
func Paginate(products []Product, pp PageParams) Page {
	total := len(products)

	start := min((pp.Page-1)*pp.Limit, total)
	end := min(start+pp.Limit, total)

	window := make([]Product, end-start)
	copy(window, products[start:end])

	return Page{
		Page:          pp.Page,
		Limit:         pp.Limit,
		TotalPages:    (total + pp.Limit - 1) / pp.Limit,
		TotalProducts: total,
		Products:      window,
	}
}

// Search matches q against name or description, ignoring case.
func Search(products []Product, q string) ([]Product, error) {
	if strings.TrimSpace(q) == "" {
		return nil, Validation(msgBadSearch)
	}

	needle := strings.ToLower(q)
	out := make([]Product, 0)
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			out = append(out, p)
		}
	}
	return out, nil
}

// CategoryStats counts products per category.
func CategoryStats(products []Product) map[string]int {
	stats := make(map[string]int)
	for _, p := range products {
		category := p.Category
		if category == "" {
			category = Uncategorized
		}
		stats[category]++
	}
	return stats
}

// leadingInt parses s the way a lenient integer parser does: leading
// whitespace, an optional sign, then as many digits as follow. "12abc" is 12,
// "abc" and "" are not numbers.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	const maxValue = 1 << 31
	n, digits := 0, 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		if n < maxValue {
			n = n*10 + int(s[digits]-'0')
		}
		digits++
	}
	if digits == 0 {
		return 0, false
	}

	n = min(n, maxValue)
	if neg {
		n = -n
	}
	return n, true
}
