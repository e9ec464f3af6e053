// Package registry is the single authority for per-category status
// vocabularies and legal transitions. Pure data and rules, no I/O; every other
// module consults it instead of re-declaring status strings.
package registry

import (
	"sahaya/pkg/domain"
	dErrors "sahaya/pkg/domain-errors"
)

// Status constants shared across category vocabularies. Each category's
// vocabulary is a closed ordered subset of these; categories never share a
// unified enum, only spellings.
const (
	StatusNew                  domain.Status = "NEW"
	StatusTriaged              domain.Status = "TRIAGED"
	StatusAssigned             domain.Status = "ASSIGNED"
	StatusInProgress           domain.Status = "IN_PROGRESS"
	StatusDeptEscalated        domain.Status = "DEPT_ESCALATED"
	StatusResolved             domain.Status = "RESOLVED"
	StatusClosed               domain.Status = "CLOSED"
	StatusRequested            domain.Status = "REQUESTED"
	StatusInReview             domain.Status = "IN_REVIEW"
	StatusApproved             domain.Status = "APPROVED"
	StatusLetterIssued         domain.Status = "LETTER_ISSUED"
	StatusUtilized             domain.Status = "UTILIZED"
	StatusExpired              domain.Status = "EXPIRED"
	StatusIntake               domain.Status = "INTAKE"
	StatusDocsVerified         domain.Status = "DOCS_VERIFIED"
	StatusSanctionRequested    domain.Status = "SANCTION_REQUESTED"
	StatusSanctioned           domain.Status = "SANCTIONED"
	StatusDisbursed            domain.Status = "DISBURSED"
	StatusUtilizationSubmitted domain.Status = "UTILIZATION_SUBMITTED"
	StatusUnderReview          domain.Status = "UNDER_REVIEW"
	StatusMediationScheduled   domain.Status = "MEDIATION_SCHEDULED"
	StatusInMediation          domain.Status = "IN_MEDIATION"
	StatusSettled              domain.Status = "SETTLED"
	StatusReferredToCourt      domain.Status = "REFERRED_TO_COURT"
	StatusProposed             domain.Status = "PROPOSED"
	StatusAppraisal            domain.Status = "APPRAISAL"
	StatusMOUSigned            domain.Status = "MOU_SIGNED"
	StatusInExecution          domain.Status = "IN_EXECUTION"
	StatusCompleted            domain.Status = "COMPLETED"
	StatusCancelled            domain.Status = "CANCELLED"
	StatusApplied              domain.Status = "APPLIED"
	StatusDocsPending          domain.Status = "DOCS_PENDING"
	StatusEligible             domain.Status = "ELIGIBLE"
	StatusScheduled            domain.Status = "SCHEDULED"
	StatusConfirmed            domain.Status = "CONFIRMED"
	StatusPlanned              domain.Status = "PLANNED"
	StatusAnnounced            domain.Status = "ANNOUNCED"
	StatusEnrolling            domain.Status = "ENROLLING"
	StatusActive               domain.Status = "ACTIVE"
)

// categorySpec fixes one category's documented forward sequence plus its
// escape statuses. Escape statuses (dedicated CANCELLED variants) are
// reachable from every non-terminal status and are themselves terminal.
// CLOSED-style terminals are never escapes: they require their documented
// predecessor.
type categorySpec struct {
	sequence []domain.Status
	escapes  []domain.Status
}

var specs = map[domain.Category]categorySpec{
	domain.CategoryGrievance: {
		sequence: []domain.Status{StatusNew, StatusTriaged, StatusAssigned, StatusInProgress, StatusDeptEscalated, StatusResolved, StatusClosed},
	},
	domain.CategoryTempleLetter: {
		sequence: []domain.Status{StatusRequested, StatusInReview, StatusApproved, StatusLetterIssued, StatusUtilized, StatusExpired},
	},
	domain.CategoryCMRelief: {
		sequence: []domain.Status{StatusIntake, StatusDocsVerified, StatusSanctionRequested, StatusSanctioned, StatusDisbursed, StatusUtilizationSubmitted, StatusClosed},
	},
	domain.CategoryDispute: {
		sequence: []domain.Status{StatusNew, StatusUnderReview, StatusMediationScheduled, StatusInMediation, StatusSettled, StatusReferredToCourt, StatusClosed},
	},
	domain.CategoryCSRIndustrial: {
		sequence: []domain.Status{StatusProposed, StatusAppraisal, StatusApproved, StatusMOUSigned, StatusInExecution, StatusCompleted},
		escapes:  []domain.Status{StatusCancelled},
	},
	domain.CategoryEducationSupport: {
		sequence: []domain.Status{StatusApplied, StatusDocsPending, StatusEligible, StatusSanctioned, StatusDisbursed, StatusClosed},
	},
	domain.CategoryAppointment: {
		sequence: []domain.Status{StatusRequested, StatusScheduled, StatusConfirmed, StatusCompleted},
		escapes:  []domain.Status{StatusCancelled},
	},
	domain.CategoryProgram: {
		sequence: []domain.Status{StatusPlanned, StatusAnnounced, StatusEnrolling, StatusActive, StatusCompleted},
		escapes:  []domain.Status{StatusCancelled},
	},
}

func specFor(category domain.Category) (categorySpec, error) {
	spec, ok := specs[category]
	if !ok {
		return categorySpec{}, dErrors.New(dErrors.CodeUnknownCategory, "unknown category: "+category.String())
	}
	return spec, nil
}

// StatusesFor returns the category's ordered vocabulary: the documented
// sequence followed by its escape statuses.
func StatusesFor(category domain.Category) ([]domain.Status, error) {
	spec, err := specFor(category)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Status, 0, len(spec.sequence)+len(spec.escapes))
	out = append(out, spec.sequence...)
	out = append(out, spec.escapes...)
	return out, nil
}

// InitialStatus is the status a freshly created case of the category receives.
func InitialStatus(category domain.Category) (domain.Status, error) {
	spec, err := specFor(category)
	if err != nil {
		return "", err
	}
	return spec.sequence[0], nil
}

// Contains reports whether status belongs to the category's vocabulary.
func Contains(category domain.Category, status domain.Status) bool {
	spec, ok := specs[category]
	if !ok {
		return false
	}
	return spec.indexOf(status) >= 0 || spec.isEscape(status)
}

// IsTerminal reports whether status ends the case's life for the category:
// the last status of the documented sequence or any escape status.
func IsTerminal(category domain.Category, status domain.Status) bool {
	spec, ok := specs[category]
	if !ok {
		return false
	}
	if spec.isEscape(status) {
		return true
	}
	return status == spec.sequence[len(spec.sequence)-1]
}

// CanTransition answers "is from→to legal for this category". Forward-only:
// one or two steps ahead along the documented sequence, plus escape statuses
// from any non-terminal state.
func CanTransition(category domain.Category, from, to domain.Status) bool {
	return CheckTransition(category, from, to) == nil
}

// CheckTransition validates from→to and, when illegal, reports the legal next
// statuses in the error details so callers can surface them verbatim.
func CheckTransition(category domain.Category, from, to domain.Status) error {
	spec, err := specFor(category)
	if err != nil {
		return err
	}
	if !Contains(category, from) {
		return dErrors.New(dErrors.CodeUnknownStatus, "status "+from.String()+" is not in the "+category.String()+" vocabulary")
	}
	if !Contains(category, to) {
		return dErrors.New(dErrors.CodeUnknownStatus, "status "+to.String()+" is not in the "+category.String()+" vocabulary")
	}
	if spec.allows(from, to) {
		return nil
	}
	next := NextStatuses(category, from)
	details := make([]string, 0, len(next))
	for _, s := range next {
		details = append(details, s.String())
	}
	return dErrors.New(dErrors.CodeInvalidTransition,
		"cannot move to "+to.String()+" from "+from.String()).WithDetails(details...)
}

// NextStatuses lists every status legally reachable from the given one.
func NextStatuses(category domain.Category, from domain.Status) []domain.Status {
	spec, ok := specs[category]
	if !ok {
		return nil
	}
	var out []domain.Status
	for _, candidate := range spec.sequence {
		if candidate != from && spec.allows(from, candidate) {
			out = append(out, candidate)
		}
	}
	for _, escape := range spec.escapes {
		if escape != from && spec.allows(from, escape) {
			out = append(out, escape)
		}
	}
	return out
}

func (s categorySpec) indexOf(status domain.Status) int {
	for i, candidate := range s.sequence {
		if candidate == status {
			return i
		}
	}
	return -1
}

func (s categorySpec) isEscape(status domain.Status) bool {
	for _, escape := range s.escapes {
		if escape == status {
			return true
		}
	}
	return false
}

func (s categorySpec) isTerminal(status domain.Status) bool {
	return s.isEscape(status) || status == s.sequence[len(s.sequence)-1]
}

func (s categorySpec) allows(from, to domain.Status) bool {
	if s.isTerminal(from) {
		return false
	}
	if s.isEscape(to) {
		return true
	}
	fromIdx := s.indexOf(from)
	toIdx := s.indexOf(to)
	if fromIdx < 0 || toIdx < 0 {
		return false
	}
	step := toIdx - fromIdx
	return step == 1 || step == 2
}
