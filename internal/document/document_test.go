package document

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myrtlewealth/blueprint/internal/model"
	"github.com/myrtlewealth/blueprint/internal/narrative"
	"github.com/myrtlewealth/blueprint/internal/scorer"
)

func TestFilename(t *testing.T) {
	date := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	assert.Equal(t,
		"Myrtle_Wealth_Blueprint_Ada_O_Brien_2025-06-30_3f2a9c1e.pdf",
		Filename("Ada O'Brien", date, "3f2a9c1e-77aa-4bb0-9d0e-123456789abc"),
	)
	assert.Equal(t, "Myrtle_Wealth_Blueprint_X_2025-06-30_abc.pdf", Filename("X", date, "abc"))
}

func TestLatin1(t *testing.T) {
	tests := []struct{ in, want string }{
		{"₦1,250,000", "NGN 1,250,000"},
		{"🌿 Your Myrtle Advisor Will Now…", "Your Myrtle Advisor Will Now\x85"},
		{"✓ Validate your details", "- Validate your details"},
		{"• Money Market", "\x95 Money Market"},
		{"Identity — Who You Are", "Identity \x97 Who You Are"},
		{"BLUEPRINT™", "BLUEPRINT\x99"},
		{"汉字 only", "only"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, latin1(tt.in), tt.in)
	}
}

func TestMaxScoreFor(t *testing.T) {
	assert.Equal(t, 16, maxScoreFor(model.Analysis{Narrative: "Your Risk Score was 9/16, which tells us"}))
	assert.Equal(t, 28, maxScoreFor(model.Analysis{Narrative: "no score here"}))
}

func scoredSubmission(t *testing.T, answers model.AnswerSet) *model.Submission {
	t.Helper()
	s, err := scorer.New(scorer.Standard())
	require.NoError(t, err)
	res := s.Score(answers)
	n := narrative.Generate(res, narrative.BuildContext(answers, s))
	return &model.Submission{
		ID:        "3f2a9c1e-77aa-4bb0-9d0e-123456789abc",
		Client:    model.Client{FullName: "Ada Obi", Email: "ada@example.com"},
		Answers:   answers,
		Analysis:  res.Analysis(n.Text()),
		CreatedAt: time.Date(2025, 6, 30, 9, 0, 0, 0, time.UTC),
	}
}

func standardAnswers(q4 string) model.AnswerSet {
	return model.AnswerSet{
		"Q1": model.Single("C"), "Q2": model.Multi("STG3"), "Q3": model.Single("C"),
		"Q4": model.Single(q4), "Q5": model.Single("B"), "Q6": model.Single("A"), "Q7": model.Single("A"),
		"Q8": model.Multi("T3"), "Q9": model.Single("B"), "Q10": model.Single("B"),
		"Q11": model.Single("B"), "Q12": model.Single("B"), "Q13": model.Single("B"), "Q14": model.Single("B"),
		"Q16": model.Single("Please call me"),
	}
}

func TestRender_Content(t *testing.T) {
	r := NewRenderer()
	r.compress = false
	r.now = func() time.Time { return time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC) }

	sub := scoredSubmission(t, standardAnswers("B"))
	out, err := r.Render(sub)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	body := string(out)
	for _, want := range []string{
		"MYRTLE WEALTH",
		"FINANCIAL SUMMARY",
		"Client: Ada Obi",
		"Report Generated: June 30, 2025",
		"YOUR WEALTH BLUEPRINT",
		"RECOMMENDED PORTFOLIO ALLOCATION",
		"2025 Myrtle Wealth. All rights reserved.",
		"1. Your Financial Identity",
	} {
		assert.Contains(t, body, want)
	}
	assert.False(t, strings.Contains(body, "₦"), "naira sign must be transliterated")
}

func TestRender_CustomAllocation(t *testing.T) {
	r := NewRenderer()
	r.compress = false

	sub := scoredSubmission(t, standardAnswers("A"))
	sub.Analysis.Portfolio = model.CustomAllocation()
	out, err := r.Render(sub)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Please contact your wealth advisor")
}

func TestRender_Compressed(t *testing.T) {
	out, err := NewRenderer().Render(scoredSubmission(t, standardAnswers("C")))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 1000)
}
