package model

import "testing"

func TestSubmissionStatusLabel(t *testing.T) {
	cases := map[string]string{
		SubmissionPending:   "Not started",
		SubmissionSubmitted: "Submitted",
		SubmissionGraded:    "Graded",
		SubmissionReturned:  "Needs revision",
		"archived":          "archived",
	}
	for status, want := range cases {
		if got := SubmissionStatusLabel(status); got != want {
			t.Errorf("SubmissionStatusLabel(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestCanTransitionSubmission(t *testing.T) {
	allowed := [][2]string{
		{SubmissionPending, SubmissionSubmitted},
		{SubmissionSubmitted, SubmissionSubmitted},
		{SubmissionSubmitted, SubmissionGraded},
		{SubmissionSubmitted, SubmissionReturned},
		{SubmissionReturned, SubmissionSubmitted},
		{SubmissionGraded, SubmissionReturned},
	}
	for _, p := range allowed {
		if !CanTransitionSubmission(p[0], p[1]) {
			t.Errorf("%s -> %s should be allowed", p[0], p[1])
		}
	}

	denied := [][2]string{
		{SubmissionPending, SubmissionGraded},
		{SubmissionGraded, SubmissionSubmitted},
		{SubmissionReturned, SubmissionGraded},
		{"unknown", SubmissionSubmitted},
	}
	for _, p := range denied {
		if CanTransitionSubmission(p[0], p[1]) {
			t.Errorf("%s -> %s should be rejected", p[0], p[1])
		}
	}
}
