package notify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myrtlewealth/blueprint/internal/config"
	"github.com/myrtlewealth/blueprint/internal/model"
	"github.com/myrtlewealth/blueprint/internal/narrative"
	"github.com/myrtlewealth/blueprint/internal/resilience"
)

var testFrom = Sender{Name: "Myrtle Wealth", Address: "noreply@myrtlewealth.com"}

func testMessage() Message {
	return Message{
		To:      "ada@example.com",
		Subject: OnboardingSubject,
		HTML:    "<p>Hello <strong>Ada</strong></p>",
		Attachments: []Attachment{{
			Filename:    "blueprint.pdf",
			ContentType: "application/pdf",
			Content:     []byte("%PDF-1.3 fake"),
		}},
	}
}

func TestSender_String(t *testing.T) {
	assert.Equal(t, `"Myrtle Wealth" <noreply@myrtlewealth.com>`, testFrom.String())
	assert.Equal(t, "a@b.com", Sender{Address: "a@b.com"}.String())
	assert.Contains(t, Sender{Name: "Mýrtle", Address: "a@b.com"}.String(), "=?utf-8?q?")
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Hello Ada", plainText("<p>Hello <strong>Ada</strong></p>"))
}

func TestPlunkMailer_Send(t *testing.T) {
	var got plunkPayload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	m, err := NewPlunkMailer(srv.URL, "pk_test", testFrom, time.Second)
	require.NoError(t, err)
	require.NoError(t, m.Send(context.Background(), testMessage()))

	assert.Equal(t, "Bearer pk_test", auth)
	assert.Equal(t, "ada@example.com", got.To)
	assert.Equal(t, OnboardingSubject, got.Subject)
	assert.Equal(t, "<p>Hello <strong>Ada</strong></p>", got.Body)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "blueprint.pdf", got.Attachments[0].Filename)
	decoded, err := base64.StdEncoding.DecodeString(got.Attachments[0].Content)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3 fake", string(decoded))
}

func TestPlunkMailer_ErrorClassification(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusTooManyRequests, true},
		{http.StatusBadGateway, true},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(`{"error":"nope"}`))
		}))
		m, err := NewPlunkMailer(srv.URL, "pk", testFrom, time.Second)
		require.NoError(t, err)

		err = m.Send(context.Background(), testMessage())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nope")
		assert.Equal(t, tt.transient, resilience.IsTransient(err), "status %d", tt.status)
		srv.Close()
	}
}

func TestNewPlunkMailer_RequiresKey(t *testing.T) {
	_, err := NewPlunkMailer("", "", testFrom, 0)
	assert.Error(t, err)
}

func TestReliable_RetriesTransient(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	inner, err := NewPlunkMailer(srv.URL, "pk", testFrom, time.Second)
	require.NoError(t, err)
	m := NewReliable(inner, resilience.Policy{Attempts: 3, Backoff: time.Millisecond, MaxBackoff: time.Millisecond})

	require.NoError(t, m.Send(context.Background(), testMessage()))
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, "plunk", m.Name())
}

type failingMailer struct {
	calls int
	err   error
}

func (f *failingMailer) Name() string { return "broken" }

func (f *failingMailer) Send(context.Context, Message) error {
	f.calls++
	return f.err
}

func TestReliable_BreakerOpens(t *testing.T) {
	inner := &failingMailer{err: resilience.Transient(errors.New("service unavailable"), http.StatusServiceUnavailable)}
	m := NewReliable(inner, resilience.Policy{Attempts: 1})

	for range 5 {
		assert.Error(t, m.Send(context.Background(), testMessage()))
	}
	err := m.Send(context.Background(), testMessage())
	require.Error(t, err)
	assert.ErrorIs(t, err, resilience.ErrOpen)
	assert.Equal(t, 5, inner.calls)
}

func TestReliable_RejectedRecipientsKeepBreakerClosed(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 5 {
			http.Error(w, `{"error":"invalid recipient"}`, http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	plunk, err := NewPlunkMailer(srv.URL, "pk", testFrom, time.Second)
	require.NoError(t, err)
	m := NewReliable(plunk, resilience.Policy{Attempts: 1})

	for range 5 {
		err := m.Send(context.Background(), testMessage())
		require.Error(t, err)
		assert.NotErrorIs(t, err, resilience.ErrOpen)
	}
	require.NoError(t, m.Send(context.Background(), testMessage()))
	assert.Equal(t, int32(6), calls.Load())
}

func TestSMTPMailer_Build(t *testing.T) {
	m, err := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com"}, testFrom)
	require.NoError(t, err)
	m.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	raw, err := m.build(testMessage())
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)
	assert.Equal(t, `"Myrtle Wealth" <noreply@myrtlewealth.com>`, parsed.Header.Get("From"))
	assert.Equal(t, "ada@example.com", parsed.Header.Get("To"))

	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, OnboardingSubject, subject)

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	mr := multipart.NewReader(parsed.Body, params["boundary"])
	body, err := mr.NextPart()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(body.Header.Get("Content-Type"), "multipart/alternative"))

	att, err := mr.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "blueprint.pdf", att.FileName())
	assert.Equal(t, "application/pdf", att.Header.Get("Content-Type"))
	enc, err := io.ReadAll(att)
	require.NoError(t, err)
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(enc), "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3 fake", string(decoded))

	_, err = mr.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestNewSMTPMailer_Defaults(t *testing.T) {
	m, err := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 465}, testFrom)
	require.NoError(t, err)
	assert.True(t, m.cfg.ImplicitTLS)

	_, err = NewSMTPMailer(SMTPConfig{}, testFrom)
	assert.Error(t, err)
	_, err = NewSMTPMailer(SMTPConfig{Host: "h"}, Sender{})
	assert.Error(t, err)
}

func TestLogMailer(t *testing.T) {
	m := NewLogMailer(testFrom)
	assert.Equal(t, "log", m.Name())
	assert.NoError(t, m.Send(context.Background(), testMessage()))
}

func TestNew_Providers(t *testing.T) {
	m, err := New(config.MailConfig{Provider: "log"})
	require.NoError(t, err)
	assert.Equal(t, "log", m.Name())

	m, err = New(config.MailConfig{Provider: "plunk", PlunkKey: "pk"})
	require.NoError(t, err)
	assert.IsType(t, &Reliable{}, m)

	m, err = New(config.MailConfig{Provider: "smtp", SMTPHost: "smtp.example.com", From: "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, "smtp", m.Name())

	_, err = New(config.MailConfig{Provider: "pigeon"})
	assert.Error(t, err)
}

func TestComposeOnboarding(t *testing.T) {
	sub := &model.Submission{Client: model.Client{FullName: "Ada <Obi>", Email: "ada@example.com"}}
	n := narrative.Narrative{
		Title:    "🌿 MYRTLE WEALTH BLUEPRINT™",
		Subtitle: "— Personalized Client Narrative",
		Tagline:  "Reimagining Wealth.",
		Sections: []narrative.Section{
			{Number: 1, Title: "Identity", Paragraphs: []string{"You are here.", "This may include:\n• Money Market: Myrtle Nest\n• FX Protection: Myrtle Dollar Shield"}},
			{Title: "🌿 Your Myrtle Advisor Will Now…", Paragraphs: []string{"✓ Validate your details"}},
		},
	}

	msg, err := ComposeOnboarding(sub, n)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, OnboardingSubject, msg.Subject)
	assert.Contains(t, msg.HTML, "<h1>Personalized Client Narrative</h1>")
	assert.Contains(t, msg.HTML, "<h2>1. Identity</h2>")
	assert.Contains(t, msg.HTML, "<li>Money Market: Myrtle Nest</li>")
	assert.Contains(t, msg.HTML, "<li>Validate your details</li>")
	assert.Contains(t, msg.HTML, `class="closing"`)
	assert.Contains(t, msg.HTML, "Dear Ada &lt;Obi&gt;,")
	assert.Equal(t, n.Text(), msg.Text)
}
