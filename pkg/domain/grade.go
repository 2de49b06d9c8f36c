package domain

import (
	"time"

	"github.com/google/uuid"
)

// GradeID uniquely identifies a stored AI grade.
type GradeID uuid.UUID

// MarshalText implements encoding.TextMarshaler.
func (id GradeID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *GradeID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// GradeBreakdown holds per-dimension scores, each between 0 and 100.
type GradeBreakdown struct {
	ATS        int `json:"ats"`
	Impact     int `json:"impact"`
	Clarity    int `json:"clarity"`
	Formatting int `json:"formatting"`
}

// AIGrade is the stored result of one CV grading call.
type AIGrade struct {
	ID GradeID `json:"id"`
	// SubmissionID is zero for free audits that are not tied to an order.
	SubmissionID SubmissionID   `json:"submissionId"`
	Email        string         `json:"email,omitempty"`
	TargetRole   string         `json:"targetRole,omitempty"`
	Overall      int            `json:"overall"`
	Breakdown    GradeBreakdown `json:"breakdown"`
	Strengths    []string       `json:"strengths"`
	Improvements []string       `json:"improvements"`
	Summary      string         `json:"summary"`
	Model        string         `json:"model"`
	// Demo is set when the grade came from the built-in demo grader.
	Demo      bool      `json:"demo"`
	CreatedAt time.Time `json:"createdAt"`
}
