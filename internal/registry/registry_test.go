package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sahaya/pkg/domain"
	dErrors "sahaya/pkg/domain-errors"
)

func TestVocabularies(t *testing.T) {
	t.Run("every category has a vocabulary with a distinct initial status", func(t *testing.T) {
		for category := range specs {
			statuses, err := StatusesFor(category)
			require.NoError(t, err)
			require.NotEmpty(t, statuses)

			initial, err := InitialStatus(category)
			require.NoError(t, err)
			assert.Equal(t, statuses[0], initial)
		}
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		_, err := StatusesFor(domain.Category("water_tax"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnknownCategory))
	})

	t.Run("grievance vocabulary matches the documented sequence", func(t *testing.T) {
		statuses, err := StatusesFor(domain.CategoryGrievance)
		require.NoError(t, err)
		assert.Equal(t, []domain.Status{
			StatusNew, StatusTriaged, StatusAssigned, StatusInProgress,
			StatusDeptEscalated, StatusResolved, StatusClosed,
		}, statuses)
	})
}

func TestCheckTransition(t *testing.T) {
	t.Run("single forward step is legal", func(t *testing.T) {
		require.NoError(t, CheckTransition(domain.CategoryGrievance, StatusNew, StatusTriaged))
		require.NoError(t, CheckTransition(domain.CategoryCMRelief, StatusIntake, StatusDocsVerified))
		require.NoError(t, CheckTransition(domain.CategoryDispute, StatusSettled, StatusReferredToCourt))
	})

	t.Run("skipping one step is legal", func(t *testing.T) {
		require.NoError(t, CheckTransition(domain.CategoryGrievance, StatusNew, StatusAssigned))
		require.NoError(t, CheckTransition(domain.CategoryTempleLetter, StatusRequested, StatusApproved))
	})

	t.Run("skipping more than one step is illegal", func(t *testing.T) {
		err := CheckTransition(domain.CategoryGrievance, StatusNew, StatusInProgress)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	t.Run("moving backwards is illegal", func(t *testing.T) {
		err := CheckTransition(domain.CategoryGrievance, StatusResolved, StatusAssigned)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	t.Run("closing directly from ASSIGNED is illegal", func(t *testing.T) {
		err := CheckTransition(domain.CategoryGrievance, StatusAssigned, StatusClosed)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
	})

	t.Run("illegal transition reports the legal next statuses", func(t *testing.T) {
		err := CheckTransition(domain.CategoryGrievance, StatusAssigned, StatusClosed)
		require.Error(t, err)
		assert.ElementsMatch(t, []string{"IN_PROGRESS", "DEPT_ESCALATED"}, dErrors.DetailsOf(err))
	})

	t.Run("cancellation escape is reachable from any non-terminal status", func(t *testing.T) {
		require.NoError(t, CheckTransition(domain.CategoryAppointment, StatusRequested, StatusCancelled))
		require.NoError(t, CheckTransition(domain.CategoryAppointment, StatusConfirmed, StatusCancelled))
		require.NoError(t, CheckTransition(domain.CategoryCSRIndustrial, StatusInExecution, StatusCancelled))
	})

	t.Run("no transition leaves a terminal status", func(t *testing.T) {
		for _, tc := range []struct {
			category domain.Category
			terminal domain.Status
		}{
			{domain.CategoryGrievance, StatusClosed},
			{domain.CategoryTempleLetter, StatusExpired},
			{domain.CategoryAppointment, StatusCancelled},
			{domain.CategoryProgram, StatusCompleted},
		} {
			statuses, err := StatusesFor(tc.category)
			require.NoError(t, err)
			for _, to := range statuses {
				assert.False(t, CanTransition(tc.category, tc.terminal, to),
					"%s: %s -> %s should be illegal", tc.category, tc.terminal, to)
			}
		}
	})

	t.Run("status outside the vocabulary is rejected, not coerced", func(t *testing.T) {
		err := CheckTransition(domain.CategoryGrievance, StatusNew, StatusSanctioned)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnknownStatus))
	})

	t.Run("exhaustive legality matches the graph", func(t *testing.T) {
		// For every pair, CanTransition must agree with first principles:
		// forward one or two steps, or an escape from a non-terminal status.
		for category, spec := range specs {
			all, err := StatusesFor(category)
			require.NoError(t, err)
			for _, from := range all {
				for _, to := range all {
					want := false
					if !spec.isTerminal(from) {
						if spec.isEscape(to) {
							want = true
						} else if fromIdx, toIdx := spec.indexOf(from), spec.indexOf(to); fromIdx >= 0 && toIdx >= 0 {
							want = toIdx-fromIdx == 1 || toIdx-fromIdx == 2
						}
					}
					assert.Equal(t, want, CanTransition(category, from, to),
						"%s: %s -> %s", category, from, to)
				}
			}
		}
	})
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(domain.CategoryGrievance, StatusClosed))
	assert.True(t, IsTerminal(domain.CategoryCSRIndustrial, StatusCancelled))
	assert.True(t, IsTerminal(domain.CategoryCSRIndustrial, StatusCompleted))
	assert.False(t, IsTerminal(domain.CategoryGrievance, StatusResolved))
	assert.False(t, IsTerminal(domain.CategoryTempleLetter, StatusUtilized))
}

func TestNextStatuses(t *testing.T) {
	next := NextStatuses(domain.CategoryAppointment, StatusScheduled)
	assert.ElementsMatch(t, []domain.Status{StatusConfirmed, StatusCompleted, StatusCancelled}, next)

	assert.Empty(t, NextStatuses(domain.CategoryAppointment, StatusCompleted))
}

func TestAwaitsRole(t *testing.T) {
	assert.True(t, AwaitsRole(domain.CategoryGrievance, StatusTriaged, domain.RoleExecutive))
	assert.True(t, AwaitsRole(domain.CategoryGrievance, StatusDeptEscalated, domain.RoleMaster))
	assert.False(t, AwaitsRole(domain.CategoryGrievance, StatusClosed, domain.RoleExecutive))
	assert.False(t, AwaitsRole(domain.CategoryAppointment, StatusRequested, domain.RoleMaster))
}

func TestSLABearing(t *testing.T) {
	assert.True(t, SLABearing(domain.CategoryGrievance))
	assert.True(t, SLABearing(domain.CategoryCMRelief))
	assert.False(t, SLABearing(domain.CategoryAppointment))
	assert.False(t, SLABearing(domain.CategoryTempleLetter))
}
