// Package demo provides a grader.Client that returns a fixed grade without
// calling any provider. It is used when no OpenAI key is configured.
package demo

import (
	"context"
	"rightfit/pkg/domain"
	"rightfit/pkg/grader"
	"strings"
)

const Model = "demo"

// Client is a deterministic grader.
type Client struct{}

var _ grader.Client = Client{}

// Grade returns the demo grade. The overall score varies slightly with the
// CV length so repeated audits of different CVs do not look identical, but
// the same input always yields the same grade.
func (Client) Grade(_ context.Context, req grader.Request) (grader.Result, grader.RateLimitStatus, error) {
	words := len(strings.Fields(req.CVText))
	bump := min(words/150, 6)

	role := strings.TrimSpace(req.TargetRole)
	if role == "" {
		role = "your target role"
	}

	return grader.Result{
		Overall: 62 + bump,
		Breakdown: domain.GradeBreakdown{
			ATS:        58 + bump,
			Impact:     55 + bump,
			Clarity:    68 + bump,
			Formatting: 70,
		},
		Strengths: []string{
			"Clear chronological structure that is easy to scan",
			"Relevant experience is listed near the top",
			"Contact details are complete",
		},
		Improvements: []string{
			"Quantify achievements with numbers such as revenue, time saved or team size",
			"Add keywords from " + role + " job descriptions to pass ATS filters",
			"Replace duty lists with outcome-focused bullet points",
			"Tighten the professional summary to two or three lines",
		},
		Summary: "A solid foundation that undersells your impact. Sharper, metric-driven bullets and " +
			"role-specific keywords would make this CV far more competitive.",
		Model: Model,
		Demo:  true,
	}, grader.RateLimitStatus{}, nil
}
