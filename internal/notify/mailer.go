// Package notify delivers the onboarding email that carries a client's
// blueprint.
package notify

import (
	"context"
	"mime"
	"net/mail"
	"strings"
)

// Attachment is a file sent alongside a message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is a single outbound email.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
}

// Mailer sends messages. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
	// Name identifies the provider in logs and metrics.
	Name() string
}

// Sender is the From identity.
type Sender struct {
	Name    string
	Address string
}

// String renders the sender as an RFC 5322 address, encoding the display
// name when it is not plain ASCII.
func (s Sender) String() string {
	if s.Name == "" {
		return s.Address
	}
	name := s.Name
	if !isASCII(name) {
		name = mime.QEncoding.Encode("utf-8", name)
		return name + " <" + s.Address + ">"
	}
	return (&mail.Address{Name: name, Address: s.Address}).String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// plainText strips tags from an HTML body for clients that cannot render it.
func plainText(html string) string {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
