package narrative

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myrtlewealth/blueprint/internal/model"
	"github.com/myrtlewealth/blueprint/internal/scorer"
)

func newScorer(t *testing.T) *scorer.Scorer {
	t.Helper()
	s, err := scorer.New(scorer.Standard())
	require.NoError(t, err)
	return s
}

func fullAnswers() model.AnswerSet {
	return model.AnswerSet{
		"Q1":  model.Single("B"),
		"Q2":  model.Multi("STG1"),
		"Q3":  model.Single("B"),
		"Q4":  model.Single("B"),
		"Q5":  model.Single("A"),
		"Q6":  model.Single("A"),
		"Q7":  model.Single("B"),
		"Q8":  model.Multi("T2", "T3"),
		"Q9":  model.Single("B"),
		"Q10": model.Single("B"),
		"Q11": model.Single("B"),
		"Q12": model.Single("B"),
		"Q13": model.Single("B"),
		"Q14": model.Single("C"),
	}
}

func headings(n Narrative) []string {
	out := make([]string, len(n.Sections))
	for i, s := range n.Sections {
		out[i] = s.Heading()
	}
	return out
}

func TestGenerate_MinimalNumbering(t *testing.T) {
	t.Parallel()
	s := newScorer(t)
	r := s.Score(model.AnswerSet{})

	n := Generate(r, nil)
	assert.Equal(t, []string{
		"1. Your Financial Identity — Who You Are Today",
		"2. Your Net Worth Position — A Clear Picture",
		"3. Your Investment Personality — Your Comfort With Risk",
		"4. What We Recommend for You — The Myrtle Pathway",
		"5. Sample Portfolio Blueprint — Your Ideal Starting Mix",
		"6. Your Wealth Story — Going Forward",
		"🌿 Your Myrtle Advisor Will Now…",
	}, headings(n))
}

func TestGenerate_OptionalSectionsShiftNumbers(t *testing.T) {
	t.Parallel()
	s := newScorer(t)
	r := s.Score(fullAnswers())

	tests := []struct {
		name string
		ctx  *Context
		want []string
	}{
		{
			name: "behaviour only",
			ctx:  &Context{Reaction: BuyMore},
			want: []string{"4. Your Goals", "5. What We Recommend", "6. Sample Portfolio", "7. Your Wealth Story"},
		},
		{
			name: "message without sources",
			ctx:  &Context{ClientMessage: "Call me"},
			want: []string{"4. What We Recommend", "7. Your Message to Your Advisor"},
		},
		{
			name: "sources and message",
			ctx:  &Context{Goals: "Steady income", Sources: "Business Income", ClientMessage: "Call me"},
			want: []string{"4. Your Goals", "8. Sources of Funds", "9. Your Message to Your Advisor"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			text := Generate(r, tt.ctx).Text()
			for _, w := range tt.want {
				assert.Contains(t, text, "\n\n"+w)
			}
		})
	}
}

func TestGenerate_NumbersAreContiguous(t *testing.T) {
	t.Parallel()
	s := newScorer(t)
	answers := fullAnswers()
	answers["Q15"] = model.Multi("SRC2")
	answers["Q16"] = model.Single("Hello")

	n := Generate(s.Score(answers), BuildContext(answers, s))
	want := 1
	for _, sec := range n.Sections {
		if sec.Number == 0 {
			continue
		}
		assert.Equal(t, want, sec.Number)
		want++
	}
	assert.Equal(t, 10, want)
	assert.Equal(t, 0, n.Sections[len(n.Sections)-1].Number)
}

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()
	s := newScorer(t)
	answers := fullAnswers()
	answers["Q15"] = model.Multi("SRC1", "SRC3")

	first := Generate(s.Score(answers), BuildContext(answers, s)).Text()
	for range 10 {
		assert.Equal(t, first, Generate(s.Score(answers), BuildContext(answers, s)).Text())
	}
}

func TestGenerate_Content(t *testing.T) {
	t.Parallel()
	s := newScorer(t)
	answers := fullAnswers()
	r := s.Score(answers)
	text := Generate(r, BuildContext(answers, s)).Text()

	assert.True(t, strings.HasPrefix(text, "🌿 MYRTLE WEALTH BLUEPRINT™\n— Personalized Client Narrative"))
	assert.Contains(t, text, "• Cash & Investments: ₦27,500,000")
	assert.Contains(t, text, "• Real Estate: ₦0")
	assert.Contains(t, text, "• Debts & Liabilities: ₦12,500,000")
	assert.Contains(t, text, "your Estimated Net Worth is:\n₦15,000,000")
	assert.Contains(t, text, "This places you in the Emerging category.")
	assert.Contains(t, text, "Your Risk Score was 18/28, which tells us")
	assert.Contains(t, text, "Your Investment Goals:\nSteady income, Medium-term growth")
	assert.Contains(t, text, "Your Reaction to Market Dips: You remain calm during fluctuations")
	assert.Contains(t, text, "Your Liquidity Needs: Your funds can work for you over longer cycles.")
	assert.Contains(t, text, "✓ Set up your review cycle")
	assert.Equal(t, scorer.EverydayBuilder, r.Persona)
	assert.Contains(t, text, "you fall into the Everyday Builder segment")
}

func TestGenerate_RiskScoreUsesRuleSetMax(t *testing.T) {
	t.Parallel()
	s, err := scorer.New(scorer.Legacy())
	require.NoError(t, err)

	answers := model.AnswerSet{"Q9": model.Single("A"), "Q10": model.Single("A"), "Q11": model.Single("D"), "Q12": model.Single("D")}
	text := Generate(s.Score(answers), nil).Text()
	assert.Contains(t, text, "Your Risk Score was 16/16")
}

func TestGenerate_CustomPortfolio(t *testing.T) {
	t.Parallel()
	s := newScorer(t)

	r := s.Score(model.AnswerSet{})
	require.True(t, r.Portfolio.Custom)
	text := Generate(r, nil).Text()
	assert.Contains(t, text, "Recommended Product Set\nCustom allocation based on your unique profile")
	assert.Contains(t, text, "Please contact your wealth advisor")
}

func TestGenerate_PresetPortfolio(t *testing.T) {
	t.Parallel()
	s := newScorer(t)

	r := s.Score(fullAnswers())
	require.Equal(t, scorer.Moderate, r.Risk.Profile)
	text := Generate(r, nil).Text()
	assert.Contains(t, text, "60% Cash, 30% Income, 10% Growth")
	assert.Contains(t, text, "You have a balanced structure")
	assert.NotContains(t, text, "Your Financial Snapshot")
	assert.NotContains(t, text, "Your Goals & Financial Behaviour")
}

func TestBuildContext(t *testing.T) {
	t.Parallel()
	s := newScorer(t)

	answers := fullAnswers()
	answers["Q15"] = model.Multi("SRC1", "SRC7")
	answers["advisorQuestion"] = model.Single("  Do you offer dollar funds?  ")
	answers["Q6"] = model.Multi("B")

	ctx := BuildContext(answers, s)
	assert.Equal(t, []SnapshotLine{
		{Label: "Cash & Investments", Amount: 27_500_000},
		{Label: "Real Estate", Amount: 0},
		{Label: "Debts & Liabilities", Amount: 12_500_000},
	}, ctx.Snapshot)
	assert.Equal(t, "Steady income, Medium-term growth", ctx.Goals)
	assert.Equal(t, "Salary / Employment Income, Diaspora Remittance", ctx.Sources)
	assert.Equal(t, StayInvested, ctx.Reaction)
	assert.Equal(t, ModeratelyComfortable, ctx.Volatility)
	assert.Equal(t, LiquidityLow, ctx.Liquidity)
	assert.Equal(t, "Do you offer dollar funds?", ctx.ClientMessage)

	answers["Q16"] = model.Single("Q16 wins")
	assert.Equal(t, "Q16 wins", BuildContext(answers, s).ClientMessage)
}

func TestBuildContext_Empty(t *testing.T) {
	t.Parallel()
	ctx := BuildContext(model.AnswerSet{}, newScorer(t))
	assert.Empty(t, ctx.Snapshot)
	assert.False(t, ctx.hasBehaviour())
	assert.Empty(t, ctx.ClientMessage)
}

func TestNaira(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "₦0", Naira(0))
	assert.Equal(t, "₦2,500,000", Naira(2_500_000))
	assert.Equal(t, "₦3,750,000,000", Naira(3_750_000_000))
	assert.Equal(t, "-₦747,500,000", Naira(-747_500_000))
	assert.Equal(t, "999", Number(999))
}
