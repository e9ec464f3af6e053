package models

import (
	"strconv"
	"time"

	"sahaya/pkg/domain"
	dErrors "sahaya/pkg/domain-errors"
)

// OverallStatus is the coarse phase of a verification case.
type OverallStatus string

const (
	OverallInitialWork  OverallStatus = "INITIAL_WORK"
	OverallStage1Review OverallStatus = "STAGE_1_REVIEW"
	OverallStage2Review OverallStatus = "STAGE_2_REVIEW"
	OverallVerified     OverallStatus = "VERIFIED"
	OverallRejected     OverallStatus = "REJECTED"
)

// DocumentStatus is the per-document review outcome.
type DocumentStatus string

const (
	DocPending        DocumentStatus = "PENDING"
	DocStage1Approved DocumentStatus = "STAGE_1_APPROVED"
	DocStage1Rejected DocumentStatus = "STAGE_1_REJECTED"
	DocStage2Approved DocumentStatus = "STAGE_2_APPROVED"
	DocStage2Rejected DocumentStatus = "STAGE_2_REJECTED"
	DocVerified       DocumentStatus = "VERIFIED"
)

// DocumentReview tracks one uploaded document through both review stages.
// Stage outcome fields are set together and never overwritten: a corrective
// re-review requires a fresh submission with a new document id, keeping the
// rejected record for audit.
type DocumentReview struct {
	ID         domain.DocumentID `json:"id"`
	Name       string            `json:"name"`
	Size       int64             `json:"size"`
	UploadedAt time.Time         `json:"uploaded_at"`
	Status     DocumentStatus    `json:"status"`

	Stage1Reviewer   string     `json:"stage1_reviewer,omitempty"`
	Stage1ReviewedAt *time.Time `json:"stage1_reviewed_at,omitempty"`
	Stage1Comments   string     `json:"stage1_comments,omitempty"`

	Stage2Reviewer   string     `json:"stage2_reviewer,omitempty"`
	Stage2ReviewedAt *time.Time `json:"stage2_reviewed_at,omitempty"`
	Stage2Comments   string     `json:"stage2_comments,omitempty"`
}

// VerificationCase is the two-stage document review attached 1:1 to a case.
// It is created lazily on the first document submission and owned entirely by
// the parent case.
//
// Invariants:
//   - CurrentStage is 1 or 2
//   - Stage1CompletedAt and Stage2CompletedAt are each set exactly once, and
//     Stage2CompletedAt >= Stage1CompletedAt when both present
//   - VERIFIED and REJECTED are terminal: no document mutation afterwards
type VerificationCase struct {
	CurrentStage      int              `json:"current_stage"`
	OverallStatus     OverallStatus    `json:"overall_status"`
	Documents         []DocumentReview `json:"documents"`
	Stage1CompletedAt *time.Time       `json:"stage1_completed_at,omitempty"`
	Stage2CompletedAt *time.Time       `json:"stage2_completed_at,omitempty"`
}

// NewVerificationCase opens stage 1 review.
func NewVerificationCase() *VerificationCase {
	return &VerificationCase{CurrentStage: 1, OverallStatus: OverallStage1Review}
}

// IsTerminal reports whether the review has reached VERIFIED or REJECTED.
func (v *VerificationCase) IsTerminal() bool {
	return v.OverallStatus == OverallVerified || v.OverallStatus == OverallRejected
}

// CanSubmitDocument checks that stage work is still open.
func (v *VerificationCase) CanSubmitDocument() error {
	if v.IsTerminal() {
		return dErrors.New(dErrors.CodeInvariantViolation,
			"verification is "+string(v.OverallStatus)+"; no further documents accepted")
	}
	return nil
}

// ApplySubmitDocument appends a PENDING review record.
func (v *VerificationCase) ApplySubmitDocument(id domain.DocumentID, name string, size int64, now time.Time) *DocumentReview {
	v.Documents = append(v.Documents, DocumentReview{
		ID:         id,
		Name:       name,
		Size:       size,
		UploadedAt: now,
		Status:     DocPending,
	})
	return &v.Documents[len(v.Documents)-1]
}

// FindDocument returns the review record for id, or nil.
func (v *VerificationCase) FindDocument(id domain.DocumentID) *DocumentReview {
	for i := range v.Documents {
		if v.Documents[i].ID == id {
			return &v.Documents[i]
		}
	}
	return nil
}

// CanReviewDocument checks terminal state, document existence, pending
// status, and that the reviewer's stage matches the case's current stage.
func (v *VerificationCase) CanReviewDocument(id domain.DocumentID, reviewerStage int) error {
	if v.IsTerminal() {
		return dErrors.New(dErrors.CodeInvariantViolation,
			"verification is "+string(v.OverallStatus)+"; documents can no longer be reviewed")
	}
	doc := v.FindDocument(id)
	if doc == nil {
		return dErrors.New(dErrors.CodeNotFound, "document "+id.String()+" not found")
	}
	if doc.Status != DocPending {
		return dErrors.New(dErrors.CodeDocumentNotPending,
			"document "+id.String()+" is already "+string(doc.Status)+"; resubmit to re-review")
	}
	if reviewerStage != v.CurrentStage {
		return dErrors.New(dErrors.CodeInvariantViolation,
			"reviewer acts at stage "+strconv.Itoa(reviewerStage)+" but case is in stage "+strconv.Itoa(v.CurrentStage))
	}
	return nil
}

// ApplyReviewDocument records the stage-appropriate outcome. Rejection never
// advances the stage; it awaits a corrective resubmission.
func (v *VerificationCase) ApplyReviewDocument(id domain.DocumentID, reviewer string, approve bool, comments string, now time.Time) *DocumentReview {
	doc := v.FindDocument(id)
	reviewedAt := now
	if v.CurrentStage == 1 {
		doc.Stage1Reviewer = reviewer
		doc.Stage1ReviewedAt = &reviewedAt
		doc.Stage1Comments = comments
		if approve {
			doc.Status = DocStage1Approved
		} else {
			doc.Status = DocStage1Rejected
		}
	} else {
		doc.Stage2Reviewer = reviewer
		doc.Stage2ReviewedAt = &reviewedAt
		doc.Stage2Comments = comments
		if approve {
			doc.Status = DocStage2Approved
		} else {
			doc.Status = DocStage2Rejected
		}
	}
	return doc
}

// CanCompleteStage checks that every document carries the stage-appropriate
// approval. The race loser on an already-advanced stage gets CodeStageCompleted,
// which transports surface as a success-equivalent.
func (v *VerificationCase) CanCompleteStage(stage int) error {
	if v.IsTerminal() || stage < v.CurrentStage {
		return dErrors.New(dErrors.CodeStageCompleted, "stage already completed")
	}
	if stage > v.CurrentStage {
		return dErrors.New(dErrors.CodeInvariantViolation,
			"cannot complete stage "+strconv.Itoa(stage)+" while case is in stage "+strconv.Itoa(v.CurrentStage))
	}
	want := DocStage1Approved
	if stage == 2 {
		want = DocStage2Approved
	}
	if len(v.Documents) == 0 {
		return dErrors.New(dErrors.CodeStageIncomplete, "no documents submitted for review")
	}
	var blocking []string
	for _, doc := range v.Documents {
		if doc.Status != want {
			blocking = append(blocking, doc.ID.String())
		}
	}
	if len(blocking) > 0 {
		return dErrors.New(dErrors.CodeStageIncomplete,
			strconv.Itoa(len(blocking))+" document(s) not yet approved for stage "+strconv.Itoa(stage)).WithDetails(blocking...)
	}
	return nil
}

// ApplyCompleteStage advances the workflow. Completing stage 1 re-opens every
// document as PENDING for stage 2 (the stage-1 outcome fields stay on the
// record); completing stage 2 promotes all documents to VERIFIED and is
// terminal.
func (v *VerificationCase) ApplyCompleteStage(now time.Time) {
	completedAt := now
	if v.CurrentStage == 1 {
		v.Stage1CompletedAt = &completedAt
		v.CurrentStage = 2
		v.OverallStatus = OverallStage2Review
		for i := range v.Documents {
			v.Documents[i].Status = DocPending
		}
		return
	}
	v.Stage2CompletedAt = &completedAt
	v.OverallStatus = OverallVerified
	for i := range v.Documents {
		v.Documents[i].Status = DocVerified
	}
}

// CanReject checks the case is still in an active review stage.
func (v *VerificationCase) CanReject() error {
	if v.IsTerminal() {
		return dErrors.New(dErrors.CodeInvariantViolation,
			"verification is already "+string(v.OverallStatus))
	}
	return nil
}

// ApplyReject marks the whole verification REJECTED. Terminal.
func (v *VerificationCase) ApplyReject() {
	v.OverallStatus = OverallRejected
}

// Progress is the coarse phase indicator: 10 / 33 / 66 / 100. It is not
// weighted by document counts.
func (v *VerificationCase) Progress() int {
	switch v.OverallStatus {
	case OverallInitialWork:
		return 10
	case OverallStage1Review:
		return 33
	case OverallStage2Review:
		return 66
	case OverallVerified:
		return 100
	default:
		return 0
	}
}

func (v *VerificationCase) clone() *VerificationCase {
	clone := *v
	clone.Documents = make([]DocumentReview, len(v.Documents))
	for i, doc := range v.Documents {
		d := doc
		if doc.Stage1ReviewedAt != nil {
			at := *doc.Stage1ReviewedAt
			d.Stage1ReviewedAt = &at
		}
		if doc.Stage2ReviewedAt != nil {
			at := *doc.Stage2ReviewedAt
			d.Stage2ReviewedAt = &at
		}
		clone.Documents[i] = d
	}
	if v.Stage1CompletedAt != nil {
		at := *v.Stage1CompletedAt
		clone.Stage1CompletedAt = &at
	}
	if v.Stage2CompletedAt != nil {
		at := *v.Stage2CompletedAt
		clone.Stage2CompletedAt = &at
	}
	return &clone
}

