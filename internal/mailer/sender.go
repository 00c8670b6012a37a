package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wneessen/go-mail"

	"github.com/talx-hub/gopher-users/internal/model/email"
)

type SMTPConfig struct {
	Host      string
	User      string
	Password  string
	FromEmail string
	FromName  string
	Port      int
	TLS       bool
}

// SMTPSender dials a fresh connection per message, so one sender can be
// shared by all workers.
type SMTPSender struct {
	log  *slog.Logger
	opts []mail.Option
	cfg  SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig, log *slog.Logger) (*SMTPSender, error) {
	// WithTLSPortPolicy would replace port 25 with 587, so the policy and
	// the configured port are set separately.
	policy := mail.NoTLS
	if cfg.TLS {
		policy = mail.TLSMandatory
	}
	opts := []mail.Option{
		mail.WithTLSPolicy(policy),
		mail.WithPort(cfg.Port),
		mail.WithTimeout(smtpTimeout),
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}

	s := &SMTPSender{
		log:  log.With("module", "smtp"),
		opts: opts,
		cfg:  cfg,
	}
	if _, err := s.newClient(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SMTPSender) newClient() (*mail.Client, error) {
	client, err := mail.NewClient(s.cfg.Host, s.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return client, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg email.Message) error {
	m := mail.NewMsg()
	if err := m.FromFormat(s.cfg.FromName, s.cfg.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)

	client, err := s.newClient()
	if err != nil {
		return err
	}
	if err = client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send e-mail: %w", err)
	}
	s.log.LogAttrs(ctx, slog.LevelDebug, "e-mail sent",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject))
	return nil
}
