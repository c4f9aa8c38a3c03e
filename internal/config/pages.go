package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PageSelection is a parsed page-selection expression. The zero value
// selects all pages.
type PageSelection struct {
	all   bool
	pages map[int]struct{}
}

// ParsePageSelection parses a page-selection expression: "all" (or empty),
// a comma-separated list of 1-based page numbers, and inclusive ranges
// like "2-5". A malformed expression is a configuration error.
func ParsePageSelection(expr string) (PageSelection, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" || strings.EqualFold(expr, "all") {
		return PageSelection{all: true}, nil
	}

	sel := PageSelection{pages: make(map[int]struct{})}
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		pages, err := parseSelectionToken(part)
		if err != nil {
			return PageSelection{}, err
		}
		for _, p := range pages {
			sel.pages[p] = struct{}{}
		}
	}
	return sel, nil
}

// parseSelectionToken parses a single page token ("3") or a range ("1-5").
func parseSelectionToken(part string) ([]int, error) {
	if part == "" {
		return nil, fmt.Errorf("empty page token")
	}
	if strings.Contains(part, "-") {
		rangeParts := strings.Split(part, "-")
		if len(rangeParts) != 2 {
			return nil, fmt.Errorf("invalid range format: %s", part)
		}
		start, err := parsePageNumber(rangeParts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid start page: %s", rangeParts[0])
		}
		end, err := parsePageNumber(rangeParts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid end page: %s", rangeParts[1])
		}
		if start > end {
			return nil, fmt.Errorf("start page %d greater than end page %d", start, end)
		}
		out := make([]int, 0, end-start+1)
		for i := start; i <= end; i++ {
			out = append(out, i)
		}
		return out, nil
	}
	page, err := parsePageNumber(part)
	if err != nil {
		return nil, fmt.Errorf("invalid page number: %s", part)
	}
	return []int{page}, nil
}

func parsePageNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("page numbers are 1-based, got %d", n)
	}
	return n, nil
}

// All reports whether every page is selected.
func (s PageSelection) All() bool { return s.all || len(s.pages) == 0 }

// Contains reports whether the 1-based page number is selected.
func (s PageSelection) Contains(page int) bool {
	if s.All() {
		return true
	}
	_, ok := s.pages[page]
	return ok
}

// Pages returns the selected page numbers within a document of totalPages,
// in ascending order.
func (s PageSelection) Pages(totalPages int) []int {
	out := make([]int, 0, totalPages)
	if s.All() {
		for i := 1; i <= totalPages; i++ {
			out = append(out, i)
		}
		return out
	}
	for p := range s.pages {
		if p <= totalPages {
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out
}
