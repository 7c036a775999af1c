package notify

import (
	"github.com/rotisserie/eris"

	"github.com/myrtlewealth/blueprint/internal/config"
	"github.com/myrtlewealth/blueprint/internal/resilience"
)

// New builds the Mailer selected by cfg.Provider. Network providers are
// wrapped in Reliable.
func New(cfg config.MailConfig) (Mailer, error) {
	from := Sender{Name: cfg.FromName, Address: cfg.From}

	policy := resilience.DefaultPolicy()
	if cfg.RetryAttempts > 0 {
		policy.Attempts = cfg.RetryAttempts
	}

	switch cfg.Provider {
	case "", "log":
		return NewLogMailer(from), nil
	case "smtp":
		m, err := NewSMTPMailer(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			Timeout:  cfg.Timeout(),
		}, from)
		if err != nil {
			return nil, err
		}
		return NewReliable(m, policy), nil
	case "plunk":
		m, err := NewPlunkMailer(cfg.PlunkURL, cfg.PlunkKey, from, cfg.Timeout())
		if err != nil {
			return nil, err
		}
		return NewReliable(m, policy), nil
	default:
		return nil, eris.Errorf("notify: unknown mail provider %q", cfg.Provider)
	}
}
