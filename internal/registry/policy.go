package registry

import "sahaya/pkg/domain"

// slaBearing marks the categories whose cases carry a priority and an SLA
// deadline. The rest (letters, appointments, programs, CSR projects) are
// tracked without a clock.
var slaBearing = map[domain.Category]bool{
	domain.CategoryGrievance:        true,
	domain.CategoryCMRelief:         true,
	domain.CategoryDispute:          true,
	domain.CategoryEducationSupport: true,
}

// SLABearing reports whether cases of the category carry an SLA deadline.
func SLABearing(category domain.Category) bool {
	return slaBearing[category]
}

// approvalStatuses maps category and reviewing role to the statuses that mean
// "waiting on this role". Advisory read-side data for queue views; it never
// gates a transition.
var approvalStatuses = map[domain.Category]map[domain.Role][]domain.Status{
	domain.CategoryGrievance: {
		domain.RoleExecutive: {StatusNew, StatusTriaged},
		domain.RoleMaster:    {StatusDeptEscalated},
	},
	domain.CategoryTempleLetter: {
		domain.RoleExecutive: {StatusRequested, StatusInReview},
		domain.RoleMaster:    {StatusApproved},
	},
	domain.CategoryCMRelief: {
		domain.RoleExecutive: {StatusIntake, StatusDocsVerified},
		domain.RoleMaster:    {StatusSanctionRequested},
	},
	domain.CategoryDispute: {
		domain.RoleExecutive: {StatusNew, StatusUnderReview},
		domain.RoleMaster:    {StatusMediationScheduled},
	},
	domain.CategoryCSRIndustrial: {
		domain.RoleExecutive: {StatusProposed, StatusAppraisal},
		domain.RoleMaster:    {StatusApproved},
	},
	domain.CategoryEducationSupport: {
		domain.RoleExecutive: {StatusApplied, StatusDocsPending},
		domain.RoleMaster:    {StatusEligible},
	},
	domain.CategoryAppointment: {
		domain.RoleExecutive: {StatusRequested},
	},
	domain.CategoryProgram: {
		domain.RoleExecutive: {StatusPlanned, StatusAnnounced},
	},
}

// AwaitsRole reports whether a case in the given status is waiting on the
// given role to act.
func AwaitsRole(category domain.Category, status domain.Status, role domain.Role) bool {
	byRole, ok := approvalStatuses[category]
	if !ok {
		return false
	}
	for _, s := range byRole[role] {
		if s == status {
			return true
		}
	}
	return false
}
