package store

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/myrtlewealth/blueprint/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = eris.New("store: not found")
	// ErrConflict is returned when a unique field is already taken.
	ErrConflict = eris.New("store: already exists")
)

// SubmissionFilter narrows a submission listing.
type SubmissionFilter struct {
	Persona     string `json:"persona,omitempty"`
	RiskProfile string `json:"risk_profile,omitempty"`
	Email       string `json:"email,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      int    `json:"offset,omitempty"`
}

// Store defines persistence for questionnaire submissions and admins.
type Store interface {
	// Submissions
	CreateSubmission(ctx context.Context, sub *model.Submission) error
	GetSubmission(ctx context.Context, id string) (*model.Submission, error)
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]model.SubmissionSummary, error)
	CountSubmissions(ctx context.Context, filter SubmissionFilter) (int, error)

	// Dashboard aggregates
	SumNetWorth(ctx context.Context) (decimal.Decimal, error)
	CountByPersona(ctx context.Context) (map[string]int, error)
	CountByRiskProfile(ctx context.Context) (map[string]int, error)

	// Admins
	CreateAdmin(ctx context.Context, admin *model.Admin) error
	FindAdmin(ctx context.Context, login string) (*model.Admin, error)
	CountAdmins(ctx context.Context) (int, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 20

func (f SubmissionFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}
