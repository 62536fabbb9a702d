package core

import (
	"resourcecatalog/pkg/domain"
	"strings"

	"golang.org/x/text/cases"
)

// PageSize is the fixed number of records per listing page.
const PageSize = 20

// pageWindow returns the [start, end) bounds of page within total items. ok is
// false for negative pages and pages past the end.
func pageWindow(page, total int) (start, end int, ok bool) {
	if page < 0 || total <= 0 {
		return 0, 0, false
	}
	if page > (total-1)/PageSize {
		return 0, 0, false
	}
	start = page * PageSize
	end = start + PageSize
	if end > total {
		end = total
	}
	return start, end, true
}

// listPage returns page of the store in natural (ascending id) order.
func listPage(view domain.TransactionView, page int) []domain.Resource {
	out := []domain.Resource{}
	start, end, ok := pageWindow(page, view.Count())
	if !ok {
		return out
	}
	pos := 0
	view.ScanResources(func(r domain.Resource) bool {
		if pos >= end {
			return false
		}
		if pos >= start {
			out = append(out, r)
		}
		pos++
		return true
	})
	return out
}

// categoryPage paginates the category's id list in insertion order, resolving
// each id against the store. Ids without a record are skipped.
func categoryPage(view domain.TransactionView, category domain.Category, page int) []domain.Resource {
	out := []domain.Resource{}
	ids := view.CategoryIDs(category)
	start, end, ok := pageWindow(page, len(ids))
	if !ok {
		return out
	}
	for _, id := range ids[start:end] {
		if r, found := view.FindResource(id); found {
			out = append(out, r)
		}
	}
	return out
}

// searchPage filters the store by case-insensitive substring match on title
// or description, then paginates the matches.
func searchPage(view domain.TransactionView, query string, page int) []domain.Resource {
	out := []domain.Resource{}
	if page < 0 {
		return out
	}
	folder := cases.Fold()
	needle := folder.String(query)
	skip := page * PageSize
	if skip/PageSize != page {
		return out
	}
	view.ScanResources(func(r domain.Resource) bool {
		if !strings.Contains(folder.String(r.Title), needle) && !strings.Contains(folder.String(r.Description), needle) {
			return true
		}
		if skip > 0 {
			skip--
			return true
		}
		out = append(out, r)
		return len(out) < PageSize
	})
	return out
}
