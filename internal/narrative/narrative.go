// Package narrative turns a classification result into the client-facing
// wealth blueprint: an ordered list of numbered sections rendered as text.
package narrative

import (
	"fmt"
	"strings"

	"github.com/myrtlewealth/blueprint/internal/scorer"
)

// Section is one block of the blueprint. Number is 0 for unnumbered blocks.
type Section struct {
	Number     int      `json:"number,omitempty"`
	Title      string   `json:"title"`
	Paragraphs []string `json:"paragraphs"`
}

// Heading renders "3. Title" for numbered sections and the bare title
// otherwise.
func (s Section) Heading() string {
	if s.Number == 0 {
		return s.Title
	}
	return fmt.Sprintf("%d. %s", s.Number, s.Title)
}

// Narrative is the assembled blueprint.
type Narrative struct {
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle"`
	Tagline  string    `json:"tagline"`
	Sections []Section `json:"sections"`
}

// Text renders the narrative as plain text. Paragraphs are separated by a
// blank line.
func (n Narrative) Text() string {
	var b strings.Builder
	b.WriteString(n.Title)
	b.WriteString("\n")
	b.WriteString(n.Subtitle)
	b.WriteString("\n\n")
	b.WriteString(n.Tagline)
	for _, s := range n.Sections {
		b.WriteString("\n\n")
		b.WriteString(s.Heading())
		for _, p := range s.Paragraphs {
			b.WriteString("\n\n")
			b.WriteString(p)
		}
	}
	return b.String()
}

// Generate assembles the narrative for a result. ctx may be nil; optional
// sections appear only when ctx carries the matching data, and later
// section numbers shift so numbering stays contiguous.
func Generate(r scorer.Result, ctx *Context) Narrative {
	if ctx == nil {
		ctx = &Context{}
	}

	persona := r.Persona
	profile := r.Risk.Profile
	summary := r.Portfolio.Summary()
	story := PersonaStory(persona)

	meaning, ok := personaMeaning[persona]
	if !ok {
		meaning = story
	}

	sections := []Section{
		{
			Title: "Your Financial Identity — Who You Are Today",
			Paragraphs: []string{
				fmt.Sprintf("Based on the information you shared, you fall into the %s segment.", persona),
				"What this means in simple language:\n" + meaning,
				"This section helps us understand where you are on your financial journey so we can recommend solutions that match your lifestyle, goals, capacity, and long-term aspirations.",
			},
		},
		netWorthSection(r, ctx),
		{
			Title: "Your Investment Personality — Your Comfort With Risk",
			Paragraphs: []string{
				fmt.Sprintf("Your Risk Profile is: %s", profile),
				"What this means:\n" + RiskMeaning(profile),
				fmt.Sprintf("Your Risk Score was %d/%d, which tells us how you naturally make financial decisions.", r.Risk.Score, r.Risk.Max),
				"This ensures your portfolio aligns with your temperament, not pressure or uncertainty.",
			},
		},
	}

	if ctx.hasBehaviour() {
		sections = append(sections, behaviourSection(ctx))
	}

	sections = append(sections,
		Section{
			Title: "What We Recommend for You — The Myrtle Pathway",
			Paragraphs: []string{
				fmt.Sprintf("Using your Persona (%s) + Risk Profile (%s) + Net Worth (%s), your recommended investment path is:", persona, profile, r.Band.Label),
				"Recommended Product Set\n" + summary,
				"This may include:\n" + strings.Join(productLines, "\n"),
				"Each recommendation aligns with your goals, your time horizon, your personality, and your financial reality.",
			},
		},
		Section{
			Title:      "Sample Portfolio Blueprint — Your Ideal Starting Mix",
			Paragraphs: portfolioParagraphs(r, summary),
		},
		Section{
			Title: "Your Wealth Story — Going Forward",
			Paragraphs: []string{
				fmt.Sprintf("You are %s", story),
				"Your next step is simple:\nWe help you structure your money to support the life you're building — one that is confident, intentional, and aligned with your long-term aspirations.",
			},
		},
	)

	if ctx.Sources != "" {
		sections = append(sections, Section{
			Title: "Sources of Funds",
			Paragraphs: []string{
				ctx.Sources,
				"This helps us understand how your wealth is generated and ensures your plan aligns with both regulatory expectations and your financial reality.",
			},
		})
	}

	if ctx.ClientMessage != "" {
		sections = append(sections, Section{
			Title: "Your Message to Your Advisor",
			Paragraphs: []string{
				`"` + ctx.ClientMessage + `"`,
				"We hear you clearly and will integrate this into your structured wealth plan.",
			},
		})
	}

	for i := range sections {
		sections[i].Number = i + 1
	}

	sections = append(sections, Section{
		Title: "🌿 Your Myrtle Advisor Will Now…",
		Paragraphs: []string{
			strings.Join(advisorSteps, "\n"),
			"At Myrtle, our promise is to walk with you — with clarity, structure, dignity, and care.",
			"We look forward to being a meaningful partner on your wealth journey.",
		},
	})

	return Narrative{
		Title:    documentTitle,
		Subtitle: documentSubtitle,
		Tagline:  tagline,
		Sections: sections,
	}
}

func netWorthSection(r scorer.Result, ctx *Context) Section {
	var paras []string
	if len(ctx.Snapshot) > 0 {
		lines := []string{"Your Financial Snapshot:"}
		for _, l := range ctx.Snapshot {
			lines = append(lines, fmt.Sprintf("• %s: %s", l.Label, Naira(l.Amount)))
		}
		paras = append(paras, strings.Join(lines, "\n"))
	}
	paras = append(paras,
		"After consolidating everything, your Estimated Net Worth is:\n"+Naira(r.NetWorth),
		fmt.Sprintf("This places you in the %s category.", r.Band.Label),
	)
	if m := BandMeaning(r.Band.Code); m != "" {
		paras = append(paras, "What this means:\n"+m)
	}
	paras = append(paras, "Net worth assessment helps us understand your financial capacity, your liquidity needs, and the type of structures best suited for your long-term prosperity.")
	return Section{Title: "Your Net Worth Position — A Clear Picture", Paragraphs: paras}
}

func behaviourSection(ctx *Context) Section {
	var paras []string
	if ctx.Goals != "" {
		paras = append(paras, "Your Investment Goals:\n"+ctx.Goals)
	}
	if m := reactionMeaning[ctx.Reaction]; m != "" {
		paras = append(paras, "Your Reaction to Market Dips: "+m)
	}
	if m := volatilityMeaning[ctx.Volatility]; m != "" {
		paras = append(paras, "Your Comfort with Volatility: "+m)
	}
	if m := liquidityMeaning[ctx.Liquidity]; m != "" {
		paras = append(paras, "Your Liquidity Needs: "+m)
	}
	paras = append(paras, "These behavioural insights help us design a portfolio you can stay consistent with — not just one that looks good on paper.")
	return Section{Title: "Your Goals & Financial Behaviour — What You're Building Toward", Paragraphs: paras}
}

func portfolioParagraphs(r scorer.Result, summary string) []string {
	if r.Portfolio.Custom {
		return []string{
			summary,
			"Your combination of persona and risk profile calls for a tailored mix. Please contact your wealth advisor, who will design an allocation around your circumstances.",
		}
	}
	paras := []string{summary}
	if m := portfolioMeaning[r.Risk.Profile]; m != "" {
		paras = append(paras, m)
	}
	return append(paras, "This blueprint shows how your wealth is best positioned today, grounded in global standards and Myrtle's disciplined investment philosophy.")
}
