package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// SMTPConfig locates and authenticates against an SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// ImplicitTLS dials TLS directly (port 465). Otherwise STARTTLS is used
	// when the server offers it.
	ImplicitTLS bool
	Timeout     time.Duration
}

// SMTPMailer sends through an SMTP relay.
type SMTPMailer struct {
	cfg  SMTPConfig
	from Sender
	now  func() time.Time
}

// NewSMTPMailer validates cfg and returns a mailer. Port 465 implies
// implicit TLS.
func NewSMTPMailer(cfg SMTPConfig, from Sender) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, eris.New("smtp: host is required")
	}
	if from.Address == "" {
		return nil, eris.New("smtp: from address is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Port == 465 {
		cfg.ImplicitTLS = true
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPMailer{cfg: cfg, from: from, now: time.Now}, nil
}

func (m *SMTPMailer) Name() string { return "smtp" }

// Send delivers msg in a single SMTP session.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	raw, err := m.build(msg)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	dialer := &net.Dialer{Timeout: m.cfg.Timeout}
	var conn net.Conn
	if m.cfg.ImplicitTLS {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: m.cfg.Host}}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return eris.Wrapf(err, "smtp: dial %s", addr)
	}
	deadline := time.Now().Add(m.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close() //nolint:errcheck
		return eris.Wrap(err, "smtp: handshake")
	}
	defer c.Close() //nolint:errcheck

	if !m.cfg.ImplicitTLS {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
				return eris.Wrap(err, "smtp: starttls")
			}
		}
	}
	if m.cfg.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)); err != nil {
			return eris.Wrap(err, "smtp: auth")
		}
	}
	if err := c.Mail(m.from.Address); err != nil {
		return eris.Wrap(err, "smtp: mail from")
	}
	if err := c.Rcpt(msg.To); err != nil {
		return eris.Wrapf(err, "smtp: rcpt %s", msg.To)
	}
	w, err := c.Data()
	if err != nil {
		return eris.Wrap(err, "smtp: data")
	}
	if _, err := w.Write(raw); err != nil {
		return eris.Wrap(err, "smtp: write body")
	}
	if err := w.Close(); err != nil {
		return eris.Wrap(err, "smtp: close body")
	}
	return eris.Wrap(c.Quit(), "smtp: quit")
}

// build renders msg as a MIME message: multipart/mixed wrapping a
// multipart/alternative text+html body and any attachments.
func (m *SMTPMailer) build(msg Message) ([]byte, error) {
	var buf bytes.Buffer
	mixed := multipart.NewWriter(&buf)

	text := msg.Text
	if text == "" {
		text = plainText(msg.HTML)
	}

	fmt.Fprintf(&buf, "From: %s\r\n", m.from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "Message-ID: <%s@%s>\r\n", uuid.NewString(), m.cfg.Host)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mixed.Boundary())

	altHeader := textproto.MIMEHeader{}
	var alt bytes.Buffer
	altWriter := multipart.NewWriter(&alt)
	altHeader.Set("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", altWriter.Boundary()))
	if err := writeQuotedPart(altWriter, "text/plain; charset=utf-8", text); err != nil {
		return nil, err
	}
	if msg.HTML != "" {
		if err := writeQuotedPart(altWriter, "text/html; charset=utf-8", msg.HTML); err != nil {
			return nil, err
		}
	}
	if err := altWriter.Close(); err != nil {
		return nil, eris.Wrap(err, "smtp: close alternative part")
	}
	part, err := mixed.CreatePart(altHeader)
	if err != nil {
		return nil, eris.Wrap(err, "smtp: create body part")
	}
	if _, err := part.Write(alt.Bytes()); err != nil {
		return nil, eris.Wrap(err, "smtp: write body part")
	}

	for _, a := range msg.Attachments {
		h := textproto.MIMEHeader{}
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		h.Set("Content-Transfer-Encoding", "base64")
		h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}))
		part, err := mixed.CreatePart(h)
		if err != nil {
			return nil, eris.Wrapf(err, "smtp: create attachment %s", a.Filename)
		}
		if err := writeBase64Lines(part, a.Content); err != nil {
			return nil, eris.Wrapf(err, "smtp: write attachment %s", a.Filename)
		}
	}
	if err := mixed.Close(); err != nil {
		return nil, eris.Wrap(err, "smtp: close message")
	}
	return buf.Bytes(), nil
}

func writeQuotedPart(w *multipart.Writer, contentType, body string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	part, err := w.CreatePart(h)
	if err != nil {
		return eris.Wrap(err, "smtp: create part")
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(body)); err != nil {
		return eris.Wrap(err, "smtp: write part")
	}
	return eris.Wrap(qp.Close(), "smtp: close part")
}

// writeBase64Lines wraps base64 output at 76 columns.
func writeBase64Lines(w io.Writer, data []byte) error {
	enc := base64.StdEncoding.EncodeToString(data)
	for len(enc) > 0 {
		n := min(76, len(enc))
		if _, err := w.Write([]byte(enc[:n] + "\r\n")); err != nil {
			return err
		}
		enc = enc[n:]
	}
	return nil
}
