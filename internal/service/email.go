package service

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/pageza/recipeshare/backend/config"
	"github.com/pageza/recipeshare/backend/internal/metrics"
)

// ErrMailUnavailable is returned while the SMTP circuit is open
var ErrMailUnavailable = errors.New("mail service unavailable")

// sendFunc matches smtp.SendMail
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService sends account emails over SMTP. With no host configured the
// messages are logged instead.
type EmailService struct {
	cfg       config.SMTPConfig
	clientURL string
	breaker   *gobreaker.CircuitBreaker[struct{}]
	send      sendFunc
	logger    zerolog.Logger
}

// NewEmailService creates a new EmailService instance
func NewEmailService(cfg config.SMTPConfig, clientURL string, logger zerolog.Logger) *EmailService {
	s := &EmailService{
		cfg:       cfg,
		clientURL: strings.TrimRight(clientURL, "/"),
		send:      smtp.SendMail,
		logger:    logger,
	}
	s.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
	return s
}

// SendVerificationEmail sends the link that confirms ownership of an address
func (s *EmailService) SendVerificationEmail(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", s.clientURL, token)
	body := fmt.Sprintf(`<p>Welcome to RecipeShare!</p>
<p>Please confirm your email address by opening the link below:</p>
<p><a href="%s">Verify Email</a></p>
<p>This link expires in 24 hours.</p>`, link)
	return s.sendEmail(ctx, "verification", to, "Verify your email", body)
}

// SendPasswordResetEmail sends the link that lets a user choose a new password
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.clientURL, token)
	body := fmt.Sprintf(`<p>We received a request to reset your password.</p>
<p><a href="%s">Reset Password</a></p>
<p>This link expires in 1 hour. If you did not ask for a reset you can ignore this email.</p>`, link)
	return s.sendEmail(ctx, "password_reset", to, "Reset your password", body)
}

func (s *EmailService) sendEmail(ctx context.Context, kind, to, subject, body string) error {
	if s.cfg.Host == "" {
		s.logger.Info().
			Str("to", to).
			Str("subject", subject).
			Str("body", body).
			Msg("SMTP not configured, logging email")
		metrics.EmailsSent.WithLabelValues(kind, "logged").Inc()
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.send(s.addr(), s.auth(), s.cfg.From, []string{to}, s.message(to, subject, body))
	})
	if err != nil {
		metrics.EmailsSent.WithLabelValues(kind, "failed").Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return ErrMailUnavailable
		}
		return fmt.Errorf("failed to send email: %w", err)
	}

	metrics.EmailsSent.WithLabelValues(kind, "sent").Inc()
	return nil
}

func (s *EmailService) addr() string {
	return fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
}

func (s *EmailService) auth() smtp.Auth {
	if s.cfg.Username == "" {
		return nil
	}
	return smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
}

func (s *EmailService) message(to, subject, body string) []byte {
	from := s.cfg.From
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From)
	}
	return []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", to, from, subject, body))
}
