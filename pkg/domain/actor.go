package domain

import dErrors "sahaya/pkg/domain-errors"

// Role classifies the acting identity for a command. The engine consumes an
// already-authenticated actor; role appropriateness of stage reviews is
// enforced at the transport/auth boundary, stage matching inside the workflow.
type Role string

const (
	RoleCitizen   Role = "citizen"
	RoleOfficer   Role = "officer"
	RoleExecutive Role = "executive"
	RoleMaster    Role = "master"
	RoleAdmin     Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleCitizen, RoleOfficer, RoleExecutive, RoleMaster, RoleAdmin:
		return true
	}
	return false
}

// ReviewStage returns the verification stage this role reviews at, or 0 when
// the role does not review documents.
func (r Role) ReviewStage() int {
	switch r {
	case RoleExecutive:
		return 1
	case RoleMaster:
		return 2
	}
	return 0
}

func ParseRole(raw string) (Role, error) {
	r := Role(raw)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role: "+raw)
	}
	return r, nil
}

// Actor is the authenticated identity attached to every mutating command.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsZero() bool { return a.ID == "" }

// Priority is the ordinal urgency used to derive SLA deadlines. Present only
// on SLA-bearing categories.
type Priority string

const (
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
	PriorityP4 Priority = "P4"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityP1, PriorityP2, PriorityP3, PriorityP4:
		return true
	}
	return false
}

func (p Priority) String() string { return string(p) }

func ParsePriority(raw string) (Priority, error) {
	p := Priority(raw)
	if !p.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown priority: "+raw)
	}
	return p, nil
}
