// Package grader defines the CV grading abstraction: prompt construction,
// tolerant parsing of model output and the rate-limit view reported by the
// backing provider.
package grader

import (
	"context"
	"rightfit/pkg/domain"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxCVChars is the number of CV characters sent to the model.
const MaxCVChars = 12000

// RateLimitStatus describes the request budget reported by the provider.
type RateLimitStatus struct {
	Limit     int       // Limit is the total number of allowed requests in the current window.
	Remaining int       // Remaining indicates how many requests are left in the current window.
	ResetAt   time.Time // ResetAt is when the window resets.
}

// Request is the input of a single grading call.
type Request struct {
	CVText          string
	TargetRole      string
	Industry        string
	ExperienceLevel string
}

// Result is a parsed grade.
type Result struct {
	Overall      int
	Breakdown    domain.GradeBreakdown
	Strengths    []string
	Improvements []string
	Summary      string
	Model        string
	Demo         bool
}

// Grade converts the result into a storable AIGrade. The caller fills in
// the ownership fields.
func (r Result) Grade() *domain.AIGrade {
	return &domain.AIGrade{
		Overall:      r.Overall,
		Breakdown:    r.Breakdown,
		Strengths:    r.Strengths,
		Improvements: r.Improvements,
		Summary:      r.Summary,
		Model:        r.Model,
		Demo:         r.Demo,
	}
}

// Client grades CV text.
//
//go:generate mockgen -package mockgrader -source=grader.go -destination=mock/mockgrader.go Client
type Client interface {
	// Grade sends the CV to the provider and returns the parsed grade plus
	// the rate-limit status observed on the response.
	Grade(ctx context.Context, req Request) (Result, RateLimitStatus, error)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	runes := []rune(s)

	return string(runes[:n])
}

const systemPrompt = `You are an expert CV reviewer and ATS specialist.
Grade the CV you are given and reply with a single JSON object of this shape:

{
  "overall": number,
  "breakdown": {"ats": number, "impact": number, "clarity": number, "formatting": number},
  "strengths": [string],
  "improvements": [string],
  "summary": string
}

Every score is an integer from 0 to 100. Give three to five strengths and three to five
concrete improvements. Keep the summary under 60 words. Base your judgement only on the
CV text. Return only JSON, without markdown or commentary.`

// BuildPrompt returns the system and user messages for req.
func BuildPrompt(req Request) (string, string) {
	var b strings.Builder
	b.WriteString("Target role: ")
	b.WriteString(orDefault(req.TargetRole, "not specified"))
	b.WriteString("\nIndustry: ")
	b.WriteString(orDefault(req.Industry, "not specified"))
	b.WriteString("\nExperience level: ")
	b.WriteString(orDefault(req.ExperienceLevel, "not specified"))
	b.WriteString("\n\nCV:\n")
	b.WriteString(Truncate(strings.TrimSpace(req.CVText), MaxCVChars))

	return systemPrompt, b.String()
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}

	return def
}
