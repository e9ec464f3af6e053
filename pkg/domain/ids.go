// Package domain holds the typed identifiers and closed vocabularies shared by
// every module. Keeping them typed (rather than bare strings) lets the compiler
// catch a case id being passed where a document id belongs.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "sahaya/pkg/domain-errors"
)

// CaseID is the category-prefixed public identifier of a case, e.g. GRV-6F9619FF8B86.
// The prefix determines the category and therefore which status vocabulary and
// SLA table apply.
type CaseID string

// NewCaseID mints an id for the given category: prefix, dash, and a
// collision-resistant suffix derived from a fresh UUID.
func NewCaseID(category Category) CaseID {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return CaseID(category.Prefix() + "-" + strings.ToUpper(raw[:12]))
}

// ParseCaseID validates the prefix and suffix shape of a raw case id.
func ParseCaseID(raw string) (CaseID, error) {
	prefix, suffix, found := strings.Cut(raw, "-")
	if !found || suffix == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "case id must be category-prefixed")
	}
	if _, err := CategoryFromPrefix(prefix); err != nil {
		return "", err
	}
	return CaseID(raw), nil
}

// Category resolves the owning category from the id prefix.
func (id CaseID) Category() (Category, error) {
	prefix, _, found := strings.Cut(string(id), "-")
	if !found {
		return "", dErrors.New(dErrors.CodeInvalidInput, "case id must be category-prefixed")
	}
	return CategoryFromPrefix(prefix)
}

func (id CaseID) String() string { return string(id) }

// DocumentID identifies a single document review record.
type DocumentID uuid.UUID

func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

// ParseDocumentID rejects empty, malformed, and nil UUIDs.
func ParseDocumentID(raw string) (DocumentID, error) {
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return DocumentID{}, dErrors.New(dErrors.CodeInvalidInput, "document id must be a valid UUID")
	}
	if parsed == uuid.Nil {
		return DocumentID{}, dErrors.New(dErrors.CodeInvalidInput, "document id must not be nil")
	}
	return DocumentID(parsed), nil
}

func (id DocumentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) String() string { return uuid.UUID(id).String() }

// AssigneeRef points at the current owner of a case: an officer id or a
// department code. The engine treats it as opaque.
type AssigneeRef string

func (a AssigneeRef) IsZero() bool   { return a == "" }
func (a AssigneeRef) String() string { return string(a) }
