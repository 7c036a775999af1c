package scorer

import "github.com/myrtlewealth/blueprint/internal/model"

// Rule set names.
const (
	StandardName = "standard"
	LegacyName   = "legacy"
)

func i64(v int64) *int64 { return &v }
func iptr(v int) *int    { return &v }

func standardBands() []Band {
	return []Band{
		{Code: "NW1", Label: "Emerging", Min: 0, Max: i64(20_000_000)},
		{Code: "NW2", Label: "Mass Affluent", Min: 20_000_000, Max: i64(100_000_000)},
		{Code: "NW3", Label: "Affluent", Min: 100_000_000, Max: i64(250_000_000)},
		{Code: "NW4", Label: "Private Wealth", Min: 250_000_000},
	}
}

func standardPortfolios() []PortfolioEntry {
	return []PortfolioEntry{
		{Persona: EverydayBuilder, Profile: Moderate, Allocation: model.Allocation{Cash: 60, Income: 30, Growth: 10}},
		{Persona: StrategicAchiever, Profile: Growth, Allocation: model.Allocation{Cash: 15, Income: 35, Growth: 30, FX: 20}},
		{Persona: PrivateWealthNiche, Profile: Aggressive, Allocation: model.Allocation{Cash: 10, Income: 25, Growth: 30, FX: 25, Alternatives: 10}},
	}
}

// Standard returns the current rule set: five-option asset questions
// Q4-Q7, seven risk questions Q8-Q14 (max 28) and the stage-aware persona
// decision list.
func Standard() RuleSet {
	return RuleSet{
		Name: StandardName,
		NetWorth: NetWorthRules{
			Assets:      []string{"Q4", "Q5", "Q6"},
			Liabilities: []string{"Q7"},
			Midpoints: map[string]map[string]int64{
				"Q4": {"A": 2_500_000, "B": 27_500_000, "C": 150_000_000, "D": 625_000_000, "E": 1_250_000_000},
				"Q5": {"A": 0, "B": 25_000_000, "C": 150_000_000, "D": 625_000_000, "E": 1_250_000_000},
				"Q6": {"A": 0, "B": 25_000_000, "C": 150_000_000, "D": 625_000_000, "E": 1_250_000_000},
				"Q7": {"A": 0, "B": 12_500_000, "C": 62_500_000, "D": 300_000_000, "E": 750_000_000},
			},
		},
		Bands: standardBands(),
		Risk: RiskRules{
			Questions: []RiskQuestion{
				{Question: "Q8", Direction: GoalsMax},
				{Question: "Q9", Direction: HighToLow},
				{Question: "Q10", Direction: HighToLow},
				{Question: "Q11", Direction: LowToHigh},
				{Question: "Q12", Direction: LowToHigh},
				{Question: "Q13", Direction: LowToHigh},
				{Question: "Q14", Direction: LowToHigh},
			},
			GoalWeights: map[string]int{"T1": 1, "T2": 2, "T3": 3, "T4": 4, "T5": 3, "T6": 3, "T7": 2},
			Profiles: []ProfileThreshold{
				{Profile: Conservative, Max: iptr(12)},
				{Profile: Moderate, Max: iptr(18)},
				{Profile: Growth, Max: iptr(23)},
				{Profile: Aggressive},
			},
		},
		Persona: PersonaRules{
			Rules: []PersonaRule{
				{Persona: PrivateWealthNiche, Bands: []string{"NW4"}},
				{
					Persona: PrivateWealthNiche,
					Bands:   []string{"NW3"},
					All:     []Condition{{Question: "Q2", AnyOf: []string{"STG4", "STG5", "STG6"}}},
				},
				{
					Persona: PrivateWealthNiche,
					All: []Condition{
						{Question: "Q1", AnyOf: []string{"E", "F"}},
						{Question: "Q2", AnyOf: []string{"STG4", "STG5", "STG6"}},
					},
				},
				{
					Persona: StrategicAchiever,
					Bands:   []string{"NW2", "NW3"},
					All: []Condition{
						{Question: "Q1", AnyOf: []string{"B", "C", "D", "E", "F"}},
						{Question: "Q2", AnyOf: []string{"STG2", "STG3", "STG4"}},
						{Question: "Q3", AnyOf: []string{"B", "C", "D"}},
					},
				},
			},
			Default: EverydayBuilder,
		},
		Portfolios: standardPortfolios(),
	}
}

// Legacy returns the first-generation rule set: four-option asset
// questions where "A" always means none, four risk questions (max 16) and
// the letter-threshold persona heuristic.
func Legacy() RuleSet {
	assets := map[string]int64{"A": 0, "B": 25_000_000, "C": 150_000_000, "D": 625_000_000}
	upper := []string{"C", "D"}
	broad := []string{"B", "C", "D"}
	return RuleSet{
		Name: LegacyName,
		NetWorth: NetWorthRules{
			Assets:      []string{"Q4", "Q5", "Q6"},
			Liabilities: []string{"Q7"},
			Midpoints: map[string]map[string]int64{
				"Q4": assets,
				"Q5": assets,
				"Q6": assets,
				"Q7": {"A": 0, "B": 12_500_000, "C": 62_500_000, "D": 300_000_000},
			},
		},
		Bands: standardBands(),
		Risk: RiskRules{
			Questions: []RiskQuestion{
				{Question: "Q9", Direction: HighToLow},
				{Question: "Q10", Direction: HighToLow},
				{Question: "Q11", Direction: LowToHigh},
				{Question: "Q12", Direction: LowToHigh},
			},
			Profiles: []ProfileThreshold{
				{Profile: Conservative, Max: iptr(7)},
				{Profile: Moderate, Max: iptr(10)},
				{Profile: Growth, Max: iptr(13)},
				{Profile: Aggressive},
			},
		},
		Persona: PersonaRules{
			Rules: []PersonaRule{
				{Persona: PrivateWealthNiche, Bands: []string{"NW4"}},
				{
					Persona: PrivateWealthNiche,
					Bands:   []string{"NW3"},
					Any: []Condition{
						{Question: "Q1", AnyOf: upper},
						{Question: "Q2", AnyOf: upper},
						{Question: "Q3", AnyOf: upper},
					},
				},
				{
					Persona: StrategicAchiever,
					Bands:   []string{"NW2", "NW3"},
					All: []Condition{
						{Question: "Q1", AnyOf: broad},
						{Question: "Q2", AnyOf: broad},
						{Question: "Q3", AnyOf: broad},
					},
				},
			},
			Default: EverydayBuilder,
		},
		Portfolios: standardPortfolios(),
	}
}
