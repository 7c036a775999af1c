package narrative

import "github.com/myrtlewealth/blueprint/internal/scorer"

const (
	documentTitle    = "🌿 MYRTLE WEALTH BLUEPRINT™"
	documentSubtitle = "— Personalized Client Narrative"
	tagline          = "Reimagining Wealth. Building Prosperity Together."

	fallbackStory = "on a journey to build and preserve wealth through strategic financial planning."
)

var personaMeaning = map[scorer.Persona]string{
	scorer.EverydayBuilder:    "You are establishing your financial foundation — building stability, developing strong money habits, and creating the structures that support long-term confidence.",
	scorer.StrategicAchiever:  "You are actively expanding your wealth through diversified investments, income growth strategies, and forward-looking financial planning.",
	scorer.PrivateWealthNiche: "You oversee significant assets and decisions. Your priority is wealth preservation, strategic growth, governance, and multi-generational continuity.",
}

var personaStory = map[scorer.Persona]string{
	scorer.EverydayBuilder:    "building a solid foundation with disciplined savings, smart budgeting, and strategic investments that grow steadily over time.",
	scorer.StrategicAchiever:  "actively expanding your wealth through diversified investments, income growth strategies, and long-term financial planning.",
	scorer.PrivateWealthNiche: "managing significant assets with a focus on preservation, tax efficiency, legacy planning, and intergenerational wealth transfer.",
}

// Keyed by band code so custom rule sets with other labels still resolve.
var bandMeaning = map[string]string{
	"NW1": "You are in the early wealth-building phase. Your current structure focuses on stability and growth foundations.",
	"NW2": "You have a growing financial base and expanding opportunities. With structure, your net worth can scale rapidly.",
	"NW3": "You have established assets and are now in a stage that requires thoughtful diversification, risk-managed growth, and early legacy planning.",
	"NW4": "You are operating at a governance and preservation level. Your plan prioritizes multi-asset strategy, global diversification, security, and intergenerational wealth.",
}

var riskMeaning = map[scorer.RiskProfile]string{
	scorer.Conservative: "You prefer stability and protection above aggressive growth. Your strategy prioritizes security and predictable returns.",
	scorer.Moderate:     "You value balance — steady returns with measured exposure to growth opportunities.",
	scorer.Growth:       "You are comfortable with calculated swings because you have a long-term mindset and seek meaningful expansion.",
	scorer.Aggressive:   "You think in decades, not days. You embrace volatility in pursuit of strong long-term returns.",
}

var portfolioMeaning = map[scorer.RiskProfile]string{
	scorer.Conservative: "Your funds are positioned for maximum stability and minimal volatility.",
	scorer.Moderate:     "You have a balanced structure — steady returns with sustainable growth.",
	scorer.Growth:       "Your portfolio leans into long-term expansion with calculated exposure.",
	scorer.Aggressive:   "You hold a high-growth posture optimised for long-term wealth accumulation.",
}

var reactionMeaning = map[Reaction]string{
	BuyMore:        "You see dips as opportunity — a strategic long-term thinker.",
	StayInvested:   "You remain calm during fluctuations — a disciplined investor.",
	ReduceExposure: "You prefer to manage downside carefully.",
	Exit:           "You value capital safety and want minimum turbulence.",
}

var volatilityMeaning = map[Volatility]string{
	VeryComfortable:       "You're unfazed by swings; you trust long-term outcomes.",
	ModeratelyComfortable: "You accept volatility as part of growth.",
	SlightlyUncomfortable: "You prefer managed volatility and stable progression.",
	NotComfortable:        "You want minimal fluctuation and steady results.",
}

var liquidityMeaning = map[Liquidity]string{
	LiquidityVeryHigh: "We prioritise flexible, low-lock instruments for you.",
	LiquidityModerate: "Your plan can tolerate structured liquidity intervals.",
	LiquidityLow:      "Your funds can work for you over longer cycles.",
	LiquidityNone:     "Your horizon allows for maximum long-term strategy.",
}

var productLines = []string{
	"• Money Market: Myrtle Nest",
	"• Fixed Income: Myrtle Fixed Income Plus, Myrtle Treasury Notes",
	"• Balanced Growth: Myrtle Balanced Plus, Myrtle WealthBlend",
	"• FX Protection: Myrtle Dollar Shield",
}

var advisorSteps = []string{
	"✓ Validate your details",
	"✓ Confirm product selection",
	"✓ Prepare your onboarding documents",
	"✓ Build your personalized portfolio",
	"✓ Set up your review cycle",
	"✓ Walk you through each step in plain, human language",
}

// PersonaStory is the one-line wealth story for a persona.
func PersonaStory(p scorer.Persona) string {
	if s, ok := personaStory[p]; ok {
		return s
	}
	return fallbackStory
}

// BandMeaning explains a band code in plain language.
func BandMeaning(code string) string {
	return bandMeaning[code]
}

// RiskMeaning explains a risk profile in plain language.
func RiskMeaning(p scorer.RiskProfile) string {
	return riskMeaning[p]
}
