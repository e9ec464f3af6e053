package workqueue

import (
	"sort"
	"strings"
	"time"

	"sahaya/internal/casefile/models"
	"sahaya/internal/registry"
	"sahaya/internal/sla"
	"sahaya/pkg/domain"
	dErrors "sahaya/pkg/domain-errors"
)

// Item is one uniform row in an officer's work queue, projected from a case
// aggregate. Items are plain values; building them never mutates a case.
type Item struct {
	ID            domain.CaseID      `json:"id"`
	Category      domain.Category    `json:"category"`
	CategoryLabel string             `json:"category_label"`
	Title         string             `json:"title"`
	Applicant     string             `json:"applicant"`
	Status        domain.Status      `json:"status"`
	Priority      domain.Priority    `json:"priority,omitempty"`
	Assignee      domain.AssigneeRef `json:"assignee,omitempty"`
	Age           time.Duration      `json:"age"`
	SLA           *sla.Snapshot      `json:"sla,omitempty"`
}

// Items projects cases into queue rows. SLA snapshots are computed against
// the case's clock, so closed cases show their state as of closure.
func Items(cases []*models.Case, now time.Time) []Item {
	items := make([]Item, 0, len(cases))
	for _, c := range cases {
		items = append(items, project(c, now))
	}
	return items
}

func project(c *models.Case, now time.Time) Item {
	item := Item{
		ID:            c.ID,
		Category:      c.Category,
		CategoryLabel: c.Category.Label(),
		Title:         c.Title,
		Applicant:     c.Applicant,
		Status:        c.Status,
		Assignee:      c.AssignedTo,
		Age:           now.Sub(c.CreatedAt),
	}
	if registry.SLABearing(c.Category) {
		item.Priority = c.Priority
		snapshot := sla.Evaluate(c.Priority, c.CreatedAt, c.SLAClock(now))
		item.SLA = &snapshot
	}
	return item
}

// MyApprovals returns the rows waiting on the given role: cases whose status
// sits in the category's awaiting-approval subset for that role, plus cases
// whose verification workflow is parked at the role's review stage.
func MyApprovals(cases []*models.Case, role domain.Role, now time.Time) []Item {
	stage := role.ReviewStage()
	var items []Item
	for _, c := range cases {
		if registry.AwaitsRole(c.Category, c.Status, role) {
			items = append(items, project(c, now))
			continue
		}
		// A closed case accepts no further verification commands; its open
		// workflow is dead work and must not surface here.
		if stage == 0 || c.IsClosed() || c.Verification == nil || c.Verification.IsTerminal() {
			continue
		}
		if c.Verification.CurrentStage == stage {
			items = append(items, project(c, now))
		}
	}
	return items
}

// Search keeps items whose visible text columns contain the query,
// case-insensitively. An empty query keeps everything.
func Search(items []Item, query string) []Item {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}
	var out []Item
	for _, item := range items {
		if item.matches(query) {
			out = append(out, item)
		}
	}
	return out
}

func (i Item) matches(query string) bool {
	for _, column := range []string{
		i.ID.String(),
		i.CategoryLabel,
		i.Title,
		i.Applicant,
		string(i.Status),
		i.Assignee.String(),
	} {
		if strings.Contains(strings.ToLower(column), query) {
			return true
		}
	}
	return false
}

// Filters holds the per-field equality filters. Zero-valued fields do not
// constrain.
type Filters struct {
	Category domain.Category
	Status   domain.Status
	Priority domain.Priority
	Assignee domain.AssigneeRef
	SLAState sla.State
}

func Filter(items []Item, f Filters) []Item {
	var out []Item
	for _, item := range items {
		if f.Category != "" && item.Category != f.Category {
			continue
		}
		if f.Status != "" && item.Status != f.Status {
			continue
		}
		if f.Priority != "" && item.Priority != f.Priority {
			continue
		}
		if !f.Assignee.IsZero() && item.Assignee != f.Assignee {
			continue
		}
		if f.SLAState != "" && (item.SLA == nil || item.SLA.State != f.SLAState) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Sort columns.
const (
	ColumnCreated  = "created"
	ColumnTitle    = "title"
	ColumnStatus   = "status"
	ColumnPriority = "priority"
	ColumnDueAt    = "due_at"
)

// Sort orders items by one column, returning a new slice. Items without an
// SLA sort after all deadline-bearing ones on the due_at column.
func Sort(items []Item, column string, descending bool) ([]Item, error) {
	out := append([]Item(nil), items...)
	var less func(a, b Item) bool
	switch column {
	case "", ColumnCreated:
		less = func(a, b Item) bool { return a.Age > b.Age }
	case ColumnTitle:
		less = func(a, b Item) bool { return a.Title < b.Title }
	case ColumnStatus:
		less = func(a, b Item) bool { return a.Status < b.Status }
	case ColumnPriority:
		less = func(a, b Item) bool { return a.Priority < b.Priority }
	case ColumnDueAt:
		less = func(a, b Item) bool {
			switch {
			case a.SLA == nil:
				return false
			case b.SLA == nil:
				return true
			default:
				return a.SLA.DueAt.Before(b.SLA.DueAt)
			}
		}
	default:
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown sort column: "+column)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out, nil
}

// Page is one fixed-size window of queue rows.
type Page struct {
	Items      []Item `json:"items"`
	Number     int    `json:"page"`
	Size       int    `json:"size"`
	TotalItems int    `json:"total_items"`
	TotalPages int    `json:"total_pages"`
}

const DefaultPageSize = 25

// Paginate slices items into the requested page. Pages are 1-based; a page
// past the end comes back empty rather than erroring.
func Paginate(items []Item, number, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if number <= 0 {
		number = 1
	}
	total := len(items)
	totalPages := (total + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}

	start := (number - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	return Page{
		Items:      append([]Item(nil), items[start:end]...),
		Number:     number,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
