package notify

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/myrtlewealth/blueprint/internal/model"
	"github.com/myrtlewealth/blueprint/internal/narrative"
)

// OnboardingSubject is the subject line of the blueprint email.
const OnboardingSubject = "🌿 MYRTLE WEALTH BLUEPRINT™ — Personalized Client Narrative"

type emailBlock struct {
	Lines   []string
	Bullets []string
}

type emailSection struct {
	Heading string
	Closing bool
	Blocks  []emailBlock
}

type emailView struct {
	Title    string
	Subtitle string
	Tagline  string
	Name     string
	Email    string
	Sections []emailSection
}

var onboardingTemplate = template.Must(template.New("onboarding").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>
body { font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; line-height: 1.8; color: #333; max-width: 700px; margin: 0 auto; padding: 20px; background-color: #f5f5f5; }
.container { background-color: #ffffff; border-radius: 8px; padding: 40px; }
.header { text-align: center; margin-bottom: 40px; border-bottom: 2px solid #27dc85; padding-bottom: 20px; }
.logo { color: #27dc85; font-size: 28px; font-weight: bold; }
.tagline { color: #666; font-size: 14px; font-style: italic; }
h2 { color: #27dc85; font-size: 20px; margin-top: 30px; border-left: 4px solid #27dc85; padding-left: 15px; }
.closing { background-color: #fff9e6; border-left: 4px solid #ffc107; padding: 20px; margin: 30px 0; border-radius: 4px; }
.footer { margin-top: 40px; padding-top: 20px; border-top: 1px solid #eee; text-align: center; color: #666; font-size: 14px; }
</style>
</head>
<body>
<div class="container">
<div class="header">
<div class="logo">{{.Title}}</div>
<div class="tagline">{{.Tagline}}</div>
</div>
<h1>{{.Subtitle}}</h1>
<p>Dear {{.Name}},</p>
{{range .Sections}}<div class="{{if .Closing}}closing{{else}}section{{end}}">
<h2>{{.Heading}}</h2>
{{range .Blocks}}{{range .Lines}}<p>{{.}}</p>
{{end}}{{if .Bullets}}<ul>
{{range .Bullets}}<li>{{.}}</li>
{{end}}</ul>
{{end}}{{end}}</div>
{{end}}<div class="footer">
<p>Best regards,<br><strong>The Myrtle Wealth Team</strong></p>
<p style="font-size: 12px; color: #999;">This email was sent to {{.Email}}. If you have any questions, please contact our support team.</p>
</div>
</div>
</body>
</html>
`))

// ComposeOnboarding builds the onboarding email for sub from its
// narrative. Bulleted lines in the narrative become list items.
func ComposeOnboarding(sub *model.Submission, n narrative.Narrative) (Message, error) {
	view := emailView{
		Title:    n.Title,
		Subtitle: strings.TrimLeft(n.Subtitle, "— "),
		Tagline:  n.Tagline,
		Name:     sub.Client.FullName,
		Email:    sub.Client.Email,
	}
	for _, s := range n.Sections {
		es := emailSection{Heading: s.Heading(), Closing: s.Number == 0}
		for _, p := range s.Paragraphs {
			es.Blocks = append(es.Blocks, splitBlock(p))
		}
		view.Sections = append(view.Sections, es)
	}

	var buf bytes.Buffer
	if err := onboardingTemplate.Execute(&buf, view); err != nil {
		return Message{}, eris.Wrap(err, "notify: render onboarding email")
	}

	return Message{
		To:      sub.Client.Email,
		Subject: OnboardingSubject,
		HTML:    buf.String(),
		Text:    n.Text(),
	}, nil
}

func splitBlock(p string) emailBlock {
	var b emailBlock
	for _, line := range strings.Split(p, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "• "), strings.HasPrefix(line, "✓ "):
			b.Bullets = append(b.Bullets, strings.TrimSpace(line[strings.Index(line, " ")+1:]))
		default:
			b.Lines = append(b.Lines, line)
		}
	}
	return b
}
