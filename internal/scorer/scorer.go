package scorer

import (
	"slices"

	"github.com/myrtlewealth/blueprint/internal/model"
)

// RiskScore is the outcome of the risk questions.
type RiskScore struct {
	Score   int         `json:"score"`
	Max     int         `json:"max"`
	Profile RiskProfile `json:"profile"`
}

// Result is the full classification of one answer set.
type Result struct {
	NetWorth  int64            `json:"netWorth"`
	Band      Band             `json:"band"`
	Risk      RiskScore        `json:"risk"`
	Persona   Persona          `json:"persona"`
	Portfolio model.Allocation `json:"portfolio"`
	RuleSet   string           `json:"ruleSet"`
}

// Analysis converts the result to its persisted form.
func (r Result) Analysis(narrative string) model.Analysis {
	return model.Analysis{
		NetWorth:     r.NetWorth,
		NetWorthBand: r.Band.Key(),
		RiskScore:    r.Risk.Score,
		RiskProfile:  string(r.Risk.Profile),
		Persona:      string(r.Persona),
		Portfolio:    r.Portfolio,
		Narrative:    narrative,
		RuleSet:      r.RuleSet,
	}
}

// Scorer applies a validated rule set. It holds no mutable state and is safe
// for concurrent use.
type Scorer struct {
	rules RuleSet
}

// New validates rs and returns a Scorer over a private copy of it.
func New(rs RuleSet) (*Scorer, error) {
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{rules: rs.clone()}, nil
}

// Rules returns a copy of the rule set in use.
func (s *Scorer) Rules() RuleSet {
	return s.rules.clone()
}

// Name returns the rule set name.
func (s *Scorer) Name() string {
	return s.rules.Name
}

// Midpoint returns the midpoint for a single-code answer to q. Multi-select,
// missing and unknown codes are 0.
func (s *Scorer) Midpoint(q string, a model.Answer) (int64, bool) {
	if a.IsMulti() {
		return 0, false
	}
	v, ok := s.rules.NetWorth.Midpoints[q][a.Code()]
	return v, ok
}

// NetWorth sums asset midpoints and subtracts liability midpoints. The
// result may be negative.
func (s *Scorer) NetWorth(answers model.AnswerSet) int64 {
	var total int64
	for _, q := range s.rules.NetWorth.Assets {
		v, _ := s.Midpoint(q, answers.Get(q))
		total += v
	}
	for _, q := range s.rules.NetWorth.Liabilities {
		v, _ := s.Midpoint(q, answers.Get(q))
		total -= v
	}
	return total
}

// Band returns the first band containing amount. Amounts below every band
// (negative net worth) fall back to the lowest band.
func (s *Scorer) Band(amount int64) Band {
	for _, b := range s.rules.Bands {
		if b.Contains(amount) {
			return b.detached()
		}
	}
	return s.rules.Bands[0].detached()
}

// BandByCode looks up a band by its code.
func (s *Scorer) BandByCode(code string) (Band, bool) {
	for _, b := range s.rules.Bands {
		if b.Code == code {
			return b.detached(), true
		}
	}
	return Band{}, false
}

// Risk scores the risk questions and maps the total to a profile.
func (s *Scorer) Risk(answers model.AnswerSet) RiskScore {
	score := 0
	for _, q := range s.rules.Risk.Questions {
		score += s.points(q, answers.Get(q.Question))
	}
	return RiskScore{
		Score:   score,
		Max:     s.rules.MaxRiskScore(),
		Profile: s.Profile(score),
	}
}

func (s *Scorer) points(q RiskQuestion, a model.Answer) int {
	if q.Direction == GoalsMax {
		best := 0
		for _, code := range a.Codes() {
			best = max(best, s.rules.Risk.GoalWeights[code])
		}
		return best
	}
	if a.IsMulti() {
		return 0
	}
	return directionPoints[q.Direction][a.Code()]
}

// Profile maps a risk score to a profile.
func (s *Scorer) Profile(score int) RiskProfile {
	for _, p := range s.rules.Risk.Profiles {
		if p.Max == nil || score <= *p.Max {
			return p.Profile
		}
	}
	return s.rules.Risk.Profiles[len(s.rules.Risk.Profiles)-1].Profile
}

// Persona walks the decision list and returns the first matching persona.
func (s *Scorer) Persona(bandCode string, answers model.AnswerSet) Persona {
	for _, r := range s.rules.Persona.Rules {
		if r.matches(bandCode, answers) {
			return r.Persona
		}
	}
	return s.rules.Persona.Default
}

func (r PersonaRule) matches(bandCode string, answers model.AnswerSet) bool {
	if len(r.Bands) > 0 && !slices.Contains(r.Bands, bandCode) {
		return false
	}
	for _, c := range r.All {
		if !c.holds(answers) {
			return false
		}
	}
	if len(r.Any) == 0 {
		return true
	}
	for _, c := range r.Any {
		if c.holds(answers) {
			return true
		}
	}
	return false
}

func (c Condition) holds(answers model.AnswerSet) bool {
	for _, code := range answers.Get(c.Question).Codes() {
		if slices.Contains(c.AnyOf, code) {
			return true
		}
	}
	return false
}

// Portfolio returns the preset allocation for persona and profile, or the
// custom sentinel when none exists.
func (s *Scorer) Portfolio(p Persona, profile RiskProfile) model.Allocation {
	for _, e := range s.rules.Portfolios {
		if e.Persona == p && e.Profile == profile {
			return e.Allocation
		}
	}
	return model.CustomAllocation()
}

// Score runs the full classification.
func (s *Scorer) Score(answers model.AnswerSet) Result {
	netWorth := s.NetWorth(answers)
	band := s.Band(netWorth)
	risk := s.Risk(answers)
	persona := s.Persona(band.Code, answers)
	return Result{
		NetWorth:  netWorth,
		Band:      band,
		Risk:      risk,
		Persona:   persona,
		Portfolio: s.Portfolio(persona, risk.Profile),
		RuleSet:   s.rules.Name,
	}
}
