// Package scorer classifies questionnaire answers into net worth band, risk
// profile, persona and portfolio allocation using an injected rule set.
package scorer

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/myrtlewealth/blueprint/internal/model"
)

// Persona is the client segment.
type Persona string

// Persona values.
const (
	EverydayBuilder    Persona = "Everyday Builder"
	StrategicAchiever  Persona = "Strategic Achiever"
	PrivateWealthNiche Persona = "Private Wealth Niche"
)

// RiskProfile is the client's tolerance for volatility.
type RiskProfile string

// RiskProfile values, from least to most risk tolerant.
const (
	Conservative RiskProfile = "Conservative"
	Moderate     RiskProfile = "Moderate"
	Growth       RiskProfile = "Growth"
	Aggressive   RiskProfile = "Aggressive"
)

// Direction controls how a risk question's option codes turn into points.
type Direction string

// Direction values.
const (
	// HighToLow scores A4 B3 C2 D1.
	HighToLow Direction = "high_to_low"
	// LowToHigh scores A1 B2 C3 D4.
	LowToHigh Direction = "low_to_high"
	// GoalsMax scores the highest goal weight among the selected codes.
	GoalsMax Direction = "goals_max"
)

var directionPoints = map[Direction]map[string]int{
	HighToLow: {"A": 4, "B": 3, "C": 2, "D": 1},
	LowToHigh: {"A": 1, "B": 2, "C": 3, "D": 4},
}

// Band is a half-open net worth range [Min, Max). A nil Max is unbounded.
type Band struct {
	Code  string `yaml:"code" json:"code"`
	Label string `yaml:"label" json:"label"`
	Min   int64  `yaml:"min" json:"min"`
	Max   *int64 `yaml:"max,omitempty" json:"max,omitempty"`
}

// Contains reports whether amount falls inside the band.
func (b Band) Contains(amount int64) bool {
	if amount < b.Min {
		return false
	}
	return b.Max == nil || amount < *b.Max
}

func (b Band) detached() Band {
	if b.Max != nil {
		v := *b.Max
		b.Max = &v
	}
	return b
}

// Key is the stored form of a band, e.g. "NW2-Mass Affluent".
func (b Band) Key() string {
	return b.Code + "-" + b.Label
}

// NetWorthRules maps option codes of the asset and liability questions to
// the midpoint of the range each code represents, in naira.
type NetWorthRules struct {
	Assets      []string                    `yaml:"assets"`
	Liabilities []string                    `yaml:"liabilities"`
	Midpoints   map[string]map[string]int64 `yaml:"midpoints"`
}

// RiskQuestion is one question that contributes to the risk score.
type RiskQuestion struct {
	Question  string    `yaml:"question"`
	Direction Direction `yaml:"direction"`
}

// ProfileThreshold assigns Profile to every score up to and including Max.
// The last threshold has a nil Max and catches everything above.
type ProfileThreshold struct {
	Profile RiskProfile `yaml:"profile"`
	Max     *int        `yaml:"max,omitempty"`
}

// RiskRules configures the risk scorer.
type RiskRules struct {
	Questions   []RiskQuestion     `yaml:"questions"`
	GoalWeights map[string]int     `yaml:"goal_weights"`
	Profiles    []ProfileThreshold `yaml:"profiles"`
}

// Condition holds when any selected code of Question is in AnyOf.
type Condition struct {
	Question string   `yaml:"question"`
	AnyOf    []string `yaml:"any_of"`
}

// PersonaRule assigns Persona when the band matches (empty Bands matches
// any band), every All condition holds and, if Any is non-empty, at least
// one Any condition holds.
type PersonaRule struct {
	Persona Persona     `yaml:"persona"`
	Bands   []string    `yaml:"bands,omitempty"`
	All     []Condition `yaml:"all,omitempty"`
	Any     []Condition `yaml:"any,omitempty"`
}

// PersonaRules is an ordered first-match-wins decision list.
type PersonaRules struct {
	Rules   []PersonaRule `yaml:"rules"`
	Default Persona       `yaml:"default"`
}

// PortfolioEntry is the preset allocation for one persona and risk profile.
type PortfolioEntry struct {
	Persona    Persona          `yaml:"persona"`
	Profile    RiskProfile      `yaml:"profile"`
	Allocation model.Allocation `yaml:"allocation"`
}

// RuleSet is the complete classification configuration.
type RuleSet struct {
	Name       string           `yaml:"name"`
	NetWorth   NetWorthRules    `yaml:"net_worth"`
	Bands      []Band           `yaml:"bands"`
	Risk       RiskRules        `yaml:"risk"`
	Persona    PersonaRules     `yaml:"persona"`
	Portfolios []PortfolioEntry `yaml:"portfolios"`
}

// MaxRiskScore is the highest score the risk questions can produce.
func (rs RuleSet) MaxRiskScore() int {
	total := 0
	for _, q := range rs.Risk.Questions {
		switch q.Direction {
		case GoalsMax:
			best := 0
			for _, w := range rs.Risk.GoalWeights {
				best = max(best, w)
			}
			total += best
		default:
			best := 0
			for _, p := range directionPoints[q.Direction] {
				best = max(best, p)
			}
			total += best
		}
	}
	return total
}

// Validate checks that the rule set is internally consistent: bands
// partition [lowest min, +inf), profile thresholds ascend to an unbounded
// top, every preset allocation sums to 100.
func (rs RuleSet) Validate() error {
	var errs []string

	if strings.TrimSpace(rs.Name) == "" {
		errs = append(errs, "name is required")
	}

	// Net worth.
	if len(rs.NetWorth.Assets) == 0 {
		errs = append(errs, "net_worth.assets must not be empty")
	}
	for _, q := range slices.Concat(rs.NetWorth.Assets, rs.NetWorth.Liabilities) {
		if len(rs.NetWorth.Midpoints[q]) == 0 {
			errs = append(errs, fmt.Sprintf("net_worth.midpoints missing for %s", q))
		}
	}

	// Bands.
	bandCodes := make(map[string]bool, len(rs.Bands))
	if len(rs.Bands) == 0 {
		errs = append(errs, "bands must not be empty")
	}
	for i, b := range rs.Bands {
		if b.Code == "" {
			errs = append(errs, fmt.Sprintf("bands[%d].code is required", i))
		}
		if bandCodes[b.Code] {
			errs = append(errs, fmt.Sprintf("bands[%d].code %q is duplicated", i, b.Code))
		}
		bandCodes[b.Code] = true

		last := i == len(rs.Bands)-1
		switch {
		case last && b.Max != nil:
			errs = append(errs, fmt.Sprintf("bands[%d] (%s) is the top band and must be unbounded", i, b.Code))
		case !last && b.Max == nil:
			errs = append(errs, fmt.Sprintf("bands[%d] (%s) must have a max", i, b.Code))
		case !last && *b.Max <= b.Min:
			errs = append(errs, fmt.Sprintf("bands[%d] (%s) max must exceed min", i, b.Code))
		case !last && *b.Max != rs.Bands[i+1].Min:
			errs = append(errs, fmt.Sprintf("bands[%d] (%s) max %d does not meet next min %d", i, b.Code, *b.Max, rs.Bands[i+1].Min))
		}
	}

	// Risk.
	if len(rs.Risk.Questions) == 0 {
		errs = append(errs, "risk.questions must not be empty")
	}
	for i, q := range rs.Risk.Questions {
		switch q.Direction {
		case HighToLow, LowToHigh:
		case GoalsMax:
			if len(rs.Risk.GoalWeights) == 0 {
				errs = append(errs, fmt.Sprintf("risk.questions[%d] uses goals_max but goal_weights is empty", i))
			}
		default:
			errs = append(errs, fmt.Sprintf("risk.questions[%d] has unknown direction %q", i, q.Direction))
		}
	}
	if len(rs.Risk.Profiles) == 0 {
		errs = append(errs, "risk.profiles must not be empty")
	}
	for i, p := range rs.Risk.Profiles {
		last := i == len(rs.Risk.Profiles)-1
		switch {
		case p.Profile == "":
			errs = append(errs, fmt.Sprintf("risk.profiles[%d].profile is required", i))
		case last && p.Max != nil:
			errs = append(errs, fmt.Sprintf("risk.profiles[%d] (%s) is the top profile and must be unbounded", i, p.Profile))
		case !last && p.Max == nil:
			errs = append(errs, fmt.Sprintf("risk.profiles[%d] (%s) must have a max", i, p.Profile))
		case !last && i > 0 && rs.Risk.Profiles[i-1].Max != nil && *p.Max <= *rs.Risk.Profiles[i-1].Max:
			errs = append(errs, fmt.Sprintf("risk.profiles[%d] (%s) max must ascend", i, p.Profile))
		}
	}

	// Persona.
	if rs.Persona.Default == "" {
		errs = append(errs, "persona.default is required")
	}
	for i, r := range rs.Persona.Rules {
		if r.Persona == "" {
			errs = append(errs, fmt.Sprintf("persona.rules[%d].persona is required", i))
		}
		for _, code := range r.Bands {
			if !bandCodes[code] {
				errs = append(errs, fmt.Sprintf("persona.rules[%d] references unknown band %q", i, code))
			}
		}
		for _, c := range slices.Concat(r.All, r.Any) {
			if c.Question == "" || len(c.AnyOf) == 0 {
				errs = append(errs, fmt.Sprintf("persona.rules[%d] has an incomplete condition", i))
			}
		}
	}

	// Portfolios.
	seen := make(map[string]bool, len(rs.Portfolios))
	for i, p := range rs.Portfolios {
		key := string(p.Persona) + "/" + string(p.Profile)
		if seen[key] {
			errs = append(errs, fmt.Sprintf("portfolios[%d] duplicates %s", i, key))
		}
		seen[key] = true
		if !p.Allocation.Custom && p.Allocation.Total() != 100 {
			errs = append(errs, fmt.Sprintf("portfolios[%d] (%s) sums to %d, want 100", i, key, p.Allocation.Total()))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("scorer: invalid rule set %q: %s", rs.Name, strings.Join(errs, "; "))
	}
	return nil
}

// clone returns a deep copy so a Scorer never shares mutable state with
// its caller.
func (rs RuleSet) clone() RuleSet {
	out := rs
	out.NetWorth.Assets = slices.Clone(rs.NetWorth.Assets)
	out.NetWorth.Liabilities = slices.Clone(rs.NetWorth.Liabilities)
	out.NetWorth.Midpoints = make(map[string]map[string]int64, len(rs.NetWorth.Midpoints))
	for q, m := range rs.NetWorth.Midpoints {
		out.NetWorth.Midpoints[q] = maps.Clone(m)
	}

	out.Bands = make([]Band, len(rs.Bands))
	for i, b := range rs.Bands {
		out.Bands[i] = b.detached()
	}

	out.Risk.Questions = slices.Clone(rs.Risk.Questions)
	out.Risk.GoalWeights = maps.Clone(rs.Risk.GoalWeights)
	out.Risk.Profiles = make([]ProfileThreshold, len(rs.Risk.Profiles))
	for i, p := range rs.Risk.Profiles {
		out.Risk.Profiles[i] = p
		if p.Max != nil {
			v := *p.Max
			out.Risk.Profiles[i].Max = &v
		}
	}

	out.Persona.Rules = make([]PersonaRule, len(rs.Persona.Rules))
	for i, r := range rs.Persona.Rules {
		out.Persona.Rules[i] = PersonaRule{
			Persona: r.Persona,
			Bands:   slices.Clone(r.Bands),
			All:     cloneConditions(r.All),
			Any:     cloneConditions(r.Any),
		}
	}

	out.Portfolios = slices.Clone(rs.Portfolios)
	return out
}

func cloneConditions(in []Condition) []Condition {
	if in == nil {
		return nil
	}
	out := make([]Condition, len(in))
	for i, c := range in {
		out[i] = Condition{Question: c.Question, AnyOf: slices.Clone(c.AnyOf)}
	}
	return out
}
