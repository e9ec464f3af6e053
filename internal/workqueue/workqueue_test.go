package workqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sahaya/internal/casefile/models"
	"sahaya/internal/registry"
	"sahaya/internal/sla"
	"sahaya/pkg/domain"
	dErrors "sahaya/pkg/domain-errors"
)

var queueNow = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

func queueCase(t *testing.T, category domain.Category, title string, age time.Duration) *models.Case {
	t.Helper()
	initial, err := registry.InitialStatus(category)
	require.NoError(t, err)
	return models.NewCase(
		domain.NewCaseID(category), category, initial,
		title, "S. Kumar", "", domain.PriorityP2,
		domain.Actor{ID: "officer-1", Role: domain.RoleOfficer}, queueNow.Add(-age),
	)
}

func TestItemsProjection(t *testing.T) {
	grievance := queueCase(t, domain.CategoryGrievance, "Pothole on NH bypass", 30*time.Hour)
	letter := queueCase(t, domain.CategoryTempleLetter, "Darshan letter request", 2*time.Hour)
	letter.AssignedTo = "off-3"

	items := Items([]*models.Case{grievance, letter}, queueNow)
	require.Len(t, items, 2)

	assert.Equal(t, grievance.ID, items[0].ID)
	assert.Equal(t, "Grievance", items[0].CategoryLabel)
	assert.Equal(t, 30*time.Hour, items[0].Age)
	require.NotNil(t, items[0].SLA, "grievances carry an SLA snapshot")
	assert.Equal(t, domain.PriorityP2, items[0].SLA.Priority)

	assert.Nil(t, items[1].SLA, "letter requests have no SLA clock")
	assert.Empty(t, items[1].Priority)
	assert.Equal(t, domain.AssigneeRef("off-3"), items[1].Assignee)
}

func TestItemsFreezeSLAForClosedCases(t *testing.T) {
	c := queueCase(t, domain.CategoryGrievance, "Drainage overflow", 0)
	c.Priority = domain.PriorityP1

	// Walk to CLOSED well within the allowance, then project long after.
	officer := domain.Actor{ID: "off-1", Role: domain.RoleOfficer}
	for _, next := range []domain.Status{
		registry.StatusTriaged, registry.StatusAssigned, registry.StatusInProgress,
		registry.StatusResolved, registry.StatusClosed,
	} {
		c.ApplyTransition(next, registry.IsTerminal(c.Category, next), officer, c.CreatedAt.Add(time.Hour))
	}

	items := Items([]*models.Case{c}, c.CreatedAt.Add(1000*time.Hour))
	require.Len(t, items, 1)
	require.NotNil(t, items[0].SLA)
	assert.Equal(t, sla.StateOnTime, items[0].SLA.State, "clock freezes at closure")
}

func TestMyApprovalsByStatus(t *testing.T) {
	fresh := queueCase(t, domain.CategoryGrievance, "New streetlight request", time.Hour)
	escalated := queueCase(t, domain.CategoryGrievance, "Escalated encroachment", 80*time.Hour)
	officer := domain.Actor{ID: "off-1", Role: domain.RoleOfficer}
	for _, next := range []domain.Status{
		registry.StatusTriaged, registry.StatusAssigned,
		registry.StatusInProgress, registry.StatusDeptEscalated,
	} {
		escalated.ApplyTransition(next, false, officer, queueNow)
	}
	cases := []*models.Case{fresh, escalated}

	execRows := MyApprovals(cases, domain.RoleExecutive, queueNow)
	require.Len(t, execRows, 1)
	assert.Equal(t, fresh.ID, execRows[0].ID)

	masterRows := MyApprovals(cases, domain.RoleMaster, queueNow)
	require.Len(t, masterRows, 1)
	assert.Equal(t, escalated.ID, masterRows[0].ID)

	assert.Empty(t, MyApprovals(cases, domain.RoleCitizen, queueNow))
}

func TestMyApprovalsIncludesVerificationStage(t *testing.T) {
	stage1 := queueCase(t, domain.CategoryCMRelief, "Flood relief claim", time.Hour)
	stage1.Verification = models.NewVerificationCase()
	stage2 := queueCase(t, domain.CategoryCMRelief, "Crop loss claim", time.Hour)
	stage2.Verification = models.NewVerificationCase()
	stage2.Verification.CurrentStage = 2
	stage2.Verification.OverallStatus = models.OverallStage2Review
	// Move stage2's case to SANCTIONED, past every master approval status, so
	// only its verification stage can surface it.
	officer := domain.Actor{ID: "off-1", Role: domain.RoleOfficer}
	stage2.ApplyTransition(registry.StatusSanctioned, false, officer, queueNow)

	execRows := MyApprovals([]*models.Case{stage1, stage2}, domain.RoleExecutive, queueNow)
	require.Len(t, execRows, 1)
	assert.Equal(t, stage1.ID, execRows[0].ID)

	masterRows := MyApprovals([]*models.Case{stage1, stage2}, domain.RoleMaster, queueNow)
	require.Len(t, masterRows, 1, "SANCTIONED awaits nobody; the stage-2 verification surfaces the case")
	assert.Equal(t, stage2.ID, masterRows[0].ID)
}

func TestMyApprovalsListsACaseOnce(t *testing.T) {
	// SANCTION_REQUESTED awaits the master and the verification sits at
	// stage 2: both conditions match, the case still appears once.
	c := queueCase(t, domain.CategoryCMRelief, "Medical relief claim", time.Hour)
	c.Verification = models.NewVerificationCase()
	c.Verification.CurrentStage = 2
	c.Verification.OverallStatus = models.OverallStage2Review
	officer := domain.Actor{ID: "off-1", Role: domain.RoleOfficer}
	c.ApplyTransition(registry.StatusSanctionRequested, false, officer, queueNow)

	rows := MyApprovals([]*models.Case{c}, domain.RoleMaster, queueNow)
	require.Len(t, rows, 1)
	assert.Equal(t, c.ID, rows[0].ID)
}

func TestMyApprovalsSkipsClosedCases(t *testing.T) {
	// A case closed through the status machine while its verification is
	// still open is dead work: every verification command against it fails,
	// so the queue must not advertise it.
	c := queueCase(t, domain.CategoryGrievance, "Closed with open review", time.Hour)
	c.Verification = models.NewVerificationCase()
	officer := domain.Actor{ID: "off-1", Role: domain.RoleOfficer}
	c.ApplyTransition(registry.StatusClosed, true, officer, queueNow)

	assert.Empty(t, MyApprovals([]*models.Case{c}, domain.RoleExecutive, queueNow))
}

func TestSearchAcrossColumns(t *testing.T) {
	a := queueCase(t, domain.CategoryGrievance, "Pothole on NH bypass", time.Hour)
	b := queueCase(t, domain.CategoryDispute, "Land boundary dispute", time.Hour)
	b.AssignedTo = "off-nh-desk"
	items := Items([]*models.Case{a, b}, queueNow)

	assert.Len(t, Search(items, "pothole"), 1)
	assert.Len(t, Search(items, "NH"), 2, "matches title of one and assignee of the other")
	assert.Len(t, Search(items, "s. kumar"), 2)
	assert.Empty(t, Search(items, "no such row"))
	assert.Len(t, Search(items, "  "), 2, "blank query keeps everything")
}

func TestFilterFields(t *testing.T) {
	a := queueCase(t, domain.CategoryGrievance, "Pothole", time.Hour)
	a.AssignedTo = "off-1"
	b := queueCase(t, domain.CategoryGrievance, "Overdue grievance", 600*time.Hour)
	b.Priority = domain.PriorityP1
	c := queueCase(t, domain.CategoryProgram, "Health camp", time.Hour)
	items := Items([]*models.Case{a, b, c}, queueNow)

	assert.Len(t, Filter(items, Filters{Category: domain.CategoryGrievance}), 2)
	assert.Len(t, Filter(items, Filters{Assignee: "off-1"}), 1)
	assert.Len(t, Filter(items, Filters{Priority: domain.PriorityP1}), 1)

	breached := Filter(items, Filters{SLAState: sla.StateBreached})
	require.Len(t, breached, 1)
	assert.Equal(t, b.ID, breached[0].ID)
}

func TestSortColumns(t *testing.T) {
	oldest := queueCase(t, domain.CategoryGrievance, "B oldest", 100*time.Hour)
	newest := queueCase(t, domain.CategoryGrievance, "A newest", time.Hour)
	noSLA := queueCase(t, domain.CategoryProgram, "C program", 50*time.Hour)
	items := Items([]*models.Case{newest, oldest, noSLA}, queueNow)

	byAge, err := Sort(items, ColumnCreated, false)
	require.NoError(t, err)
	assert.Equal(t, oldest.ID, byAge[0].ID)

	byTitle, err := Sort(items, ColumnTitle, false)
	require.NoError(t, err)
	assert.Equal(t, newest.ID, byTitle[0].ID)

	byTitleDesc, err := Sort(items, ColumnTitle, true)
	require.NoError(t, err)
	assert.Equal(t, noSLA.ID, byTitleDesc[0].ID)

	byDue, err := Sort(items, ColumnDueAt, false)
	require.NoError(t, err)
	assert.Equal(t, oldest.ID, byDue[0].ID)
	assert.Equal(t, noSLA.ID, byDue[2].ID, "rows without an SLA sort last")

	_, err = Sort(items, "applicant_shoe_size", false)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestPaginate(t *testing.T) {
	var cases []*models.Case
	for range 7 {
		cases = append(cases, queueCase(t, domain.CategoryGrievance, "Row", time.Hour))
	}
	items := Items(cases, queueNow)

	first := Paginate(items, 1, 3)
	assert.Len(t, first.Items, 3)
	assert.Equal(t, 7, first.TotalItems)
	assert.Equal(t, 3, first.TotalPages)

	last := Paginate(items, 3, 3)
	assert.Len(t, last.Items, 1)

	past := Paginate(items, 9, 3)
	assert.Empty(t, past.Items)
	assert.Equal(t, 9, past.Number)

	defaults := Paginate(items, 0, 0)
	assert.Equal(t, 1, defaults.Number)
	assert.Equal(t, DefaultPageSize, defaults.Size)
	assert.Len(t, defaults.Items, 7)
}
