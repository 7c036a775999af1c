package narrative

import (
	"strings"

	"github.com/myrtlewealth/blueprint/internal/model"
	"github.com/myrtlewealth/blueprint/internal/questionnaire"
	"github.com/myrtlewealth/blueprint/internal/scorer"
)

// Reaction is how the client responds to a market dip.
type Reaction string

// Reaction values.
const (
	BuyMore        Reaction = "BUY_MORE"
	StayInvested   Reaction = "STAY_INVESTED"
	ReduceExposure Reaction = "REDUCE_EXPOSURE"
	Exit           Reaction = "EXIT"
)

// Volatility is the client's comfort with price swings.
type Volatility string

// Volatility values.
const (
	VeryComfortable       Volatility = "VERY_COMFORTABLE"
	ModeratelyComfortable Volatility = "MODERATE"
	SlightlyUncomfortable Volatility = "SLIGHTLY_UNCOMFORTABLE"
	NotComfortable        Volatility = "NOT_COMFORTABLE"
)

// Liquidity is how soon the client may need their money back.
type Liquidity string

// Liquidity values.
const (
	LiquidityVeryHigh Liquidity = "VERY_HIGH"
	LiquidityModerate Liquidity = "MODERATE"
	LiquidityLow      Liquidity = "LOW"
	LiquidityNone     Liquidity = "NONE"
)

var (
	reactionByCode   = map[string]Reaction{"A": BuyMore, "B": StayInvested, "C": ReduceExposure, "D": Exit}
	volatilityByCode = map[string]Volatility{"A": VeryComfortable, "B": ModeratelyComfortable, "C": SlightlyUncomfortable, "D": NotComfortable}
	liquidityByCode  = map[string]Liquidity{"A": LiquidityVeryHigh, "B": LiquidityModerate, "C": LiquidityLow, "D": LiquidityNone}
)

// SnapshotLine is one row of the net worth breakdown.
type SnapshotLine struct {
	Label  string
	Amount int64
}

// Context carries the optional answer-derived detail a narrative may show.
// Zero values mean "not provided" and the matching text is omitted.
type Context struct {
	Snapshot      []SnapshotLine
	Goals         string
	Reaction      Reaction
	Volatility    Volatility
	Liquidity     Liquidity
	Sources       string
	ClientMessage string
}

func (c *Context) hasBehaviour() bool {
	if c == nil {
		return false
	}
	return c.Goals != "" || c.Reaction != "" || c.Volatility != "" || c.Liquidity != ""
}

var snapshotLabels = map[string]string{
	"Q4": "Cash & Investments",
	"Q5": "Real Estate",
	"Q6": "Business Interests",
	"Q7": "Debts & Liabilities",
}

// BuildContext derives the narrative context from an answer set using the
// scorer's midpoint table.
func BuildContext(answers model.AnswerSet, s *scorer.Scorer) *Context {
	ctx := &Context{}

	rules := s.Rules()
	for _, q := range append(rules.NetWorth.Assets, rules.NetWorth.Liabilities...) {
		a := answers.Get(q)
		if a.IsZero() {
			continue
		}
		amount, ok := s.Midpoint(q, a)
		if !ok {
			continue
		}
		label, ok := snapshotLabels[q]
		if !ok {
			if qq, found := questionnaire.Lookup(q); found {
				label = qq.Title
			} else {
				label = q
			}
		}
		ctx.Snapshot = append(ctx.Snapshot, SnapshotLine{Label: label, Amount: amount})
	}

	if goals := answers.Get("Q8"); !goals.IsZero() {
		ctx.Goals = questionnaire.Label("Q8", goals.Codes()...)
	}
	if sources := answers.Get("Q15"); !sources.IsZero() {
		ctx.Sources = questionnaire.Label("Q15", sources.Codes()...)
	}
	ctx.Reaction = reactionByCode[answers.Get("Q9").Code()]
	ctx.Volatility = volatilityByCode[answers.Get("Q10").Code()]
	ctx.Liquidity = liquidityByCode[answers.Get("Q14").Code()]

	msg := strings.TrimSpace(answers.Get("Q16").Code())
	if msg == "" {
		msg = strings.TrimSpace(answers.Get(questionnaire.AdvisorQuestion).Code())
	}
	ctx.ClientMessage = msg

	return ctx
}
