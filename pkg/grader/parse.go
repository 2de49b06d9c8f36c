package grader

import (
	"math"
	"regexp"
	"rightfit/pkg/domain"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// ErrNoGrade is returned when the model output carries no usable grade.
var ErrNoGrade = errors.New("no grade in model output")

var fenced = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// ExtractJSON finds the JSON object in model output. It accepts a bare
// object, an object inside a code fence or the first {...} span in prose.
func ExtractJSON(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		return text, true
	}
	if m := fenced.FindStringSubmatch(text); m != nil {
		if inner := strings.TrimSpace(m[1]); strings.HasPrefix(inner, "{") {
			return inner, true
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}

	return text[start : end+1], true
}

// Parse decodes a grade from model output. Scores may be numbers or numeric
// strings and are clamped to 0..100. A missing overall score is derived from
// the breakdown.
func Parse(text string) (Result, error) {
	raw, ok := ExtractJSON(text)
	if !ok {
		return Result{}, ErrNoGrade
	}

	var (
		res        Result
		hasOverall bool
		seen       int
	)
	d := jx.DecodeStr(raw)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch strings.ToLower(string(key)) {
		case "overall", "overall_score", "overallscore", "score":
			v, ok, err := readScore(d)
			if err != nil {
				return errors.Wrapf(err, "read %s", key)
			}
			res.Overall, hasOverall = v, hasOverall || ok
		case "breakdown", "scores":
			n, err := readBreakdown(d, &res.Breakdown)
			if err != nil {
				return errors.Wrap(err, "read breakdown")
			}
			seen += n
		case "strengths":
			list, err := readStrings(d)
			if err != nil {
				return errors.Wrap(err, "read strengths")
			}
			res.Strengths = list
		case "improvements", "weaknesses":
			list, err := readStrings(d)
			if err != nil {
				return errors.Wrap(err, "read improvements")
			}
			res.Improvements = list
		case "summary":
			s, err := readText(d)
			if err != nil {
				return errors.Wrap(err, "read summary")
			}
			res.Summary = s
		default:
			return d.Skip()
		}

		return nil
	})
	if err != nil {
		return Result{}, errors.Wrap(err, "decode grade")
	}

	switch {
	case hasOverall:
	case seen > 0:
		b := res.Breakdown
		res.Overall = clamp(float64(b.ATS+b.Impact+b.Clarity+b.Formatting) / 4)
	default:
		return Result{}, ErrNoGrade
	}
	if res.Strengths == nil {
		res.Strengths = []string{}
	}
	if res.Improvements == nil {
		res.Improvements = []string{}
	}

	return res, nil
}

func readBreakdown(d *jx.Decoder, out *domain.GradeBreakdown) (int, error) {
	if d.Next() != jx.Object {
		return 0, d.Skip()
	}

	seen := 0
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var dst *int
		switch strings.ToLower(string(key)) {
		case "ats", "ats_compatibility":
			dst = &out.ATS
		case "impact":
			dst = &out.Impact
		case "clarity":
			dst = &out.Clarity
		case "formatting", "format":
			dst = &out.Formatting
		default:
			return d.Skip()
		}

		v, ok, err := readScore(d)
		if err != nil {
			return err
		}
		if ok {
			*dst = v
			seen++
		}

		return nil
	})

	return seen, err
}

// readScore reads a number or numeric string. Other values are skipped and
// reported as absent.
func readScore(d *jx.Decoder) (int, bool, error) {
	switch d.Next() {
	case jx.Number:
		f, err := d.Float64()
		if err != nil {
			return 0, false, err
		}

		return clamp(f), true, nil
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return 0, false, err
		}
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
		if err != nil {
			return 0, false, nil
		}

		return clamp(f), true, nil
	default:
		return 0, false, d.Skip()
	}
}

func readStrings(d *jx.Decoder) ([]string, error) {
	switch d.Next() {
	case jx.Array:
	case jx.String:
		s, err := d.Str()
		if err != nil || strings.TrimSpace(s) == "" {
			return nil, err
		}

		return []string{strings.TrimSpace(s)}, nil
	default:
		return nil, d.Skip()
	}

	out := []string{}
	err := d.Arr(func(d *jx.Decoder) error {
		s, err := readText(d)
		if err != nil {
			return err
		}
		if s != "" {
			out = append(out, s)
		}

		return nil
	})

	return out, err
}

func readText(d *jx.Decoder) (string, error) {
	if d.Next() != jx.String {
		return "", d.Skip()
	}
	s, err := d.Str()

	return strings.TrimSpace(s), err
}

// clamp bounds a score to 0..100 before converting, so huge or infinite
// values cannot overflow the int conversion.
func clamp(f float64) int {
	switch {
	case math.IsNaN(f), f <= 0:
		return 0
	case f >= 100:
		return 100
	default:
		return int(math.Round(f))
	}
}
