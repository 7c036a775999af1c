package model

import "time"

// Client holds the submitter's personal details.
type Client struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Gender          string `json:"gender"`
	DateOfBirth     string `json:"dateOfBirth"`
	Occupation      string `json:"occupation"`
	Address         string `json:"address"`
	MaritalStatus   string `json:"maritalStatus"`
	DependantsCount int    `json:"dependantsCount"`
}

// Analysis is the classification outcome persisted with a submission.
type Analysis struct {
	NetWorth     int64      `json:"netWorth"`
	NetWorthBand string     `json:"netWorthBand"`
	RiskScore    int        `json:"riskScore"`
	RiskProfile  string     `json:"riskProfile"`
	Persona      string     `json:"persona"`
	Portfolio    Allocation `json:"portfolio"`
	Narrative    string     `json:"narrative"`
	RuleSet      string     `json:"ruleSet"`
}

// Submission is a stored questionnaire with its analysis.
type Submission struct {
	ID        string    `json:"id"`
	Client    Client    `json:"client"`
	Answers   AnswerSet `json:"answers"`
	Analysis  Analysis  `json:"analysis"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SubmissionSummary is the list-view projection of a submission.
type SubmissionSummary struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	NetWorth     int64     `json:"netWorth"`
	NetWorthBand string    `json:"netWorthBand"`
	RiskScore    int       `json:"riskScore"`
	RiskProfile  string    `json:"riskProfile"`
	Persona      string    `json:"persona"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Summary projects a submission to its list view.
func (s *Submission) Summary() SubmissionSummary {
	return SubmissionSummary{
		ID:           s.ID,
		FullName:     s.Client.FullName,
		Email:        s.Client.Email,
		Phone:        s.Client.Phone,
		NetWorth:     s.Analysis.NetWorth,
		NetWorthBand: s.Analysis.NetWorthBand,
		RiskScore:    s.Analysis.RiskScore,
		RiskProfile:  s.Analysis.RiskProfile,
		Persona:      s.Analysis.Persona,
		CreatedAt:    s.CreatedAt,
	}
}

// Admin is a back-office user allowed to review submissions.
type Admin struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
