package projects

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/synergy-shm/synergy/internal/shared"
)

// Sort keys accepted by Query.
const (
	SortByName      = "name"
	SortByCreatedAt = "created_at"
)

const maxLimit = 100

// Query narrows and pages a project list. It is applied to an already
// visibility-filtered set.
type Query struct {
	Status          []Status
	StructureTypes  []string
	DestinationUses []string
	RiskClasses     []string
	Search          string
	OwnerID         string
	SortBy          string
	SortDesc        bool
	Page            int
	Limit           int
}

// ParseQuery reads a Query from URL values. Multi-valued filters accept
// repeated keys or comma-separated lists.
func ParseQuery(values url.Values) (Query, error) {
	q := Query{
		StructureTypes:  multi(values, "structure_type"),
		DestinationUses: multi(values, "destination_use"),
		RiskClasses:     multi(values, "risk_class"),
		Search:          strings.TrimSpace(values.Get("search")),
		OwnerID:         values.Get("owner_id"),
		SortBy:          values.Get("sort_by"),
	}
	for _, raw := range multi(values, "status") {
		status := Status(raw)
		if !status.Valid() {
			return Query{}, fmt.Errorf("unknown status %q", raw)
		}
		q.Status = append(q.Status, status)
	}
	for key, target := range map[string]*int{"page": &q.Page, "limit": &q.Limit} {
		raw := values.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Query{}, fmt.Errorf("%s must be a positive integer", key)
		}
		*target = n
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	switch q.SortBy {
	case "", SortByName, SortByCreatedAt:
	default:
		return Query{}, fmt.Errorf("unknown sort key %q", q.SortBy)
	}
	switch strings.ToLower(values.Get("sort_order")) {
	case "", "asc":
	case "desc":
		q.SortDesc = true
	default:
		return Query{}, fmt.Errorf("unknown sort order %q", values.Get("sort_order"))
	}
	return q, nil
}

// Apply filters, sorts and pages list. The input is not modified.
func (q Query) Apply(list []Project) ([]Project, shared.Pagination) {
	matched := make([]Project, 0, len(list))
	search := strings.ToLower(q.Search)
	for _, p := range list {
		if q.OwnerID != "" && p.OwnerID != q.OwnerID {
			continue
		}
		if len(q.Status) > 0 && !containsStatus(q.Status, p.Status) {
			continue
		}
		if len(q.StructureTypes) > 0 && !contains(q.StructureTypes, p.StructureType) {
			continue
		}
		if len(q.DestinationUses) > 0 && !contains(q.DestinationUses, p.DestinationUse) {
			continue
		}
		if len(q.RiskClasses) > 0 && !contains(q.RiskClasses, p.RiskClass) {
			continue
		}
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		matched = append(matched, p)
	}

	switch q.SortBy {
	case SortByName:
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := strings.ToLower(matched[i].Name), strings.ToLower(matched[j].Name)
			if q.SortDesc {
				return a > b
			}
			return a < b
		})
	case SortByCreatedAt:
		sort.SliceStable(matched, func(i, j int) bool {
			if q.SortDesc {
				return matched[i].CreatedAt.After(matched[j].CreatedAt)
			}
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		})
	}

	page := shared.NewPagination(q.Page, q.Limit, len(matched))
	start, end := page.Bounds()
	return matched[start:end], page
}

func matchesSearch(p Project, needle string) bool {
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Address), needle) ||
		strings.Contains(strings.ToLower(p.Code), needle)
}

func multi(values url.Values, key string) []string {
	var out []string
	for _, raw := range values[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsStatus(list []Status, v Status) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
