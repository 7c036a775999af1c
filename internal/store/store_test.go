package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/myrtlewealth/blueprint/internal/model"
)

func sampleSubmission(name, email, persona, profile string, netWorth int64) *model.Submission {
	return &model.Submission{
		Client: model.Client{
			FullName:        name,
			Email:           email,
			Phone:           "+2348012345678",
			Gender:          "Female",
			DateOfBirth:     "1985-04-12",
			Occupation:      "Engineer",
			Address:         "12 Marina, Lagos",
			MaritalStatus:   "Married",
			DependantsCount: 2,
		},
		Answers: model.AnswerSet{
			"Q1":  model.Single("C"),
			"Q4":  model.Single("B"),
			"Q8":  model.Multi("T1", "T3"),
			"Q16": model.Single("Call me after 5pm"),
		},
		Analysis: model.Analysis{
			NetWorth:     netWorth,
			NetWorthBand: "NW2-Mass Affluent",
			RiskScore:    17,
			RiskProfile:  profile,
			Persona:      persona,
			Portfolio:    model.Allocation{Cash: 60, Income: 30, Growth: 10},
			Narrative:    "narrative text",
			RuleSet:      "standard",
		},
	}
}

func TestSubmissionFilter_Where(t *testing.T) {
	t.Parallel()

	where, args := SubmissionFilter{}.where(pgPlaceholder)
	assert.Empty(t, where)
	assert.Nil(t, args)

	where, args = SubmissionFilter{Persona: "Everyday Builder", Email: "A@B.COM"}.where(pgPlaceholder)
	assert.Equal(t, " WHERE persona = $1 AND email = $2", where)
	assert.Equal(t, []any{"Everyday Builder", "a@b.com"}, args)
}

func TestSubmissionFilter_Limit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 20, SubmissionFilter{}.limit())
	assert.Equal(t, 20, SubmissionFilter{Limit: -3}.limit())
	assert.Equal(t, 5, SubmissionFilter{Limit: 5}.limit())
}

func TestPrepareSubmission(t *testing.T) {
	t.Parallel()

	sub := sampleSubmission("Ada", "  Ada@Example.COM ", "Everyday Builder", "Moderate", 1)
	prepareSubmission(sub)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, "ada@example.com", sub.Client.Email)
	assert.False(t, sub.CreatedAt.IsZero())

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	sub2 := &model.Submission{ID: "fixed", CreatedAt: created}
	prepareSubmission(sub2)
	assert.Equal(t, "fixed", sub2.ID)
	assert.Equal(t, created, sub2.CreatedAt)
}
