// Package questionnaire defines the wealth questionnaire: its questions,
// option codes, human labels and boundary validation of submitted answers.
package questionnaire

import "strings"

// Kind is the answer shape a question expects.
type Kind string

// Kind values.
const (
	SingleChoice Kind = "single"
	MultiChoice  Kind = "multi"
	FreeText     Kind = "text"
)

// Option is one selectable answer.
type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Question is one entry of the questionnaire.
type Question struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Kind     Kind     `json:"kind"`
	Required bool     `json:"required"`
	Options  []Option `json:"options,omitempty"`
}

// Label returns the label for code, or code itself when unknown.
func (q Question) Label(code string) string {
	for _, o := range q.Options {
		if o.Code == code {
			return o.Label
		}
	}
	return code
}

// HasCode reports whether code is a valid option.
func (q Question) HasCode(code string) bool {
	for _, o := range q.Options {
		if o.Code == code {
			return true
		}
	}
	return false
}

// Codes lists the option codes in order.
func (q Question) Codes() []string {
	out := make([]string, len(q.Options))
	for i, o := range q.Options {
		out[i] = o.Code
	}
	return out
}

// AdvisorQuestion is the free-text field sent alongside the answers.
const AdvisorQuestion = "advisorQuestion"

func opts(pairs ...string) []Option {
	out := make([]Option, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Option{Code: pairs[i], Label: pairs[i+1]})
	}
	return out
}

var catalog = []Question{
	{ID: "Q1", Title: "Annual income", Kind: SingleChoice, Required: true, Options: opts(
		"A", "Below ₦5m",
		"B", "₦5m–₦20m",
		"C", "₦20m–₦40m",
		"D", "₦40m–₦100m",
		"E", "₦100m–₦500m",
		"F", "Above ₦500m",
	)},
	{ID: "Q2", Title: "Financial life stage", Kind: MultiChoice, Required: true, Options: opts(
		"STG1", "Building stability",
		"STG2", "Growing income / expanding career or business",
		"STG3", "Preparing long-term financial plans",
		"STG4", "Wealth expansion & asset consolidation",
		"STG5", "Preparing for legacy transfer / succession",
		"STG6", "Managing multi-generational wealth",
	)},
	{ID: "Q3", Title: "Investment horizon", Kind: SingleChoice, Required: true, Options: opts(
		"A", "Short-term (0–12 months)",
		"B", "Medium-term (1–3 years)",
		"C", "Long-term (3–5 years)",
		"D", "Very long-term (5+ years)",
	)},
	{ID: "Q4", Title: "Cash and investments", Kind: SingleChoice, Required: true, Options: opts(
		"A", "Below ₦5m",
		"B", "₦5m–₦50m",
		"C", "₦50m–₦250m",
		"D", "₦250m–₦1bn",
		"E", "Above ₦1bn",
	)},
	{ID: "Q5", Title: "Real estate", Kind: SingleChoice, Required: true, Options: opts(
		"A", "None",
		"B", "Below ₦50m",
		"C", "₦50m–₦250m",
		"D", "₦250m–₦1bn",
		"E", "Above ₦1bn",
	)},
	{ID: "Q6", Title: "Business interests", Kind: SingleChoice, Required: true, Options: opts(
		"A", "None",
		"B", "Below ₦50m",
		"C", "₦50m–₦250m",
		"D", "₦250m–₦1bn",
		"E", "Above ₦1bn",
	)},
	{ID: "Q7", Title: "Debts and liabilities", Kind: SingleChoice, Required: true, Options: opts(
		"A", "None",
		"B", "Below ₦25m",
		"C", "₦25m–₦100m",
		"D", "₦100m–₦500m",
		"E", "Above ₦500m",
	)},
	{ID: "Q8", Title: "Investment goals", Kind: MultiChoice, Required: true, Options: opts(
		"T1", "Capital preservation / safety",
		"T2", "Steady income",
		"T3", "Medium-term growth",
		"T4", "Long-term aggressive growth",
		"T5", "Legacy building",
		"T6", "FX protection / currency diversification",
		"T7", "Wealth transfer & continuity",
	)},
	{ID: "Q9", Title: "Reaction to a market dip", Kind: SingleChoice, Required: true, Options: opts(
		"A", "Buy more",
		"B", "Stay invested",
		"C", "Reduce exposure",
		"D", "Exit immediately",
	)},
	{ID: "Q10", Title: "Comfort with volatility", Kind: SingleChoice, Required: true, Options: opts(
		"A", "Very comfortable",
		"B", "Moderate",
		"C", "Slightly uncomfortable",
		"D", "Not comfortable at all",
	)},
	{ID: "Q11", Title: "Acceptable short-term loss", Kind: SingleChoice, Required: true, Options: opts(
		"A", "0% (No loss)",
		"B", "Up to 5%",
		"C", "Up to 10%",
		"D", "Above 10%",
	)},
	{ID: "Q12", Title: "Financial buffer", Kind: SingleChoice, Required: true, Options: opts(
		"A", "Limited buffer — I may need liquidity often",
		"B", "Moderate buffer — I can stay invested",
		"C", "Strong buffer — little need for liquidity",
		"D", "Very strong buffer — I invest for the long game",
	)},
	{ID: "Q13", Title: "Investment experience", Kind: SingleChoice, Required: true, Options: opts(
		"A", "None",
		"B", "Beginner",
		"C", "Moderate",
		"D", "Experienced",
	)},
	{ID: "Q14", Title: "Liquidity needs", Kind: SingleChoice, Required: true, Options: opts(
		"A", "Very high liquidity (may need access anytime)",
		"B", "Moderate liquidity (6–12 months)",
		"C", "Low liquidity (1–3 years)",
		"D", "No liquidity need (3+ years)",
	)},
	{ID: "Q15", Title: "Sources of funds", Kind: MultiChoice, Options: opts(
		"SRC1", "Salary / Employment Income",
		"SRC2", "Business Income",
		"SRC3", "Rental Income",
		"SRC4", "Investment Income (Dividends, Interest)",
		"SRC5", "Asset Sale",
		"SRC6", "Family Support / Gifts",
		"SRC7", "Diaspora Remittance",
		"SRC8", "Others",
	)},
	{ID: "Q16", Title: "Message to your advisor", Kind: FreeText},
}

var byID = func() map[string]Question {
	m := make(map[string]Question, len(catalog))
	for _, q := range catalog {
		m[q.ID] = q
	}
	return m
}()

// Questions returns the questionnaire in display order.
func Questions() []Question {
	out := make([]Question, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the question with the given id.
func Lookup(id string) (Question, bool) {
	q, ok := byID[id]
	return q, ok
}

// Label renders a stored answer for humans. Multi-select labels are joined
// with ", ". Unknown questions and codes fall back to the raw value.
func Label(id string, codes ...string) string {
	q, ok := byID[id]
	labels := make([]string, len(codes))
	for i, c := range codes {
		if ok {
			labels[i] = q.Label(c)
		} else {
			labels[i] = c
		}
	}
	return strings.Join(labels, ", ")
}
