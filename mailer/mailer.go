// Package mailer sends transactional HTML mail over SMTP.
package mailer

import (
	"fmt"
	"html"
	"log/slog"
	"net/url"

	"gopkg.in/gomail.v2"
)

type Options struct {
	Host        string
	Port        int
	User        string
	Pass        string
	From        string
	FrontendURL string
}

// Service is disabled (sends are logged and skipped) when SMTP is not configured.
type Service struct {
	dialer      *gomail.Dialer
	from        string
	frontendURL string
	log         *slog.Logger
}

func New(opts Options, log *slog.Logger) *Service {
	s := &Service{from: opts.From, frontendURL: opts.FrontendURL, log: log}
	if opts.Host != "" && opts.User != "" && opts.Pass != "" {
		port := opts.Port
		if port == 0 {
			port = 587
		}
		s.dialer = gomail.NewDialer(opts.Host, port, opts.User, opts.Pass)
	}
	return s
}

func (s *Service) Enabled() bool { return s.dialer != nil }

// ResetLink is the frontend page the reset mail points at.
func (s *Service) ResetLink(token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, url.QueryEscape(token))
}

func (s *Service) SendPasswordReset(to, token string) error {
	link := s.ResetLink(token)
	body := layout("Password Reset Request", fmt.Sprintf(`
        <p>Hello,</p>
        <p>You have requested to reset your password. Click the button below to choose a new one:</p>
        <p style="text-align:center;margin:30px 0;">
            <a href="%s" style="background:#f97316;color:#fff;padding:12px 24px;border-radius:6px;text-decoration:none;">Reset password</a>
        </p>
        <p><strong>This link will expire in 1 hour.</strong></p>
        <p>If you did not request a password reset, please ignore this email.</p>`, html.EscapeString(link)))
	return s.send(to, "Reset your Starides password", body)
}

func (s *Service) SendPasswordResetConfirmation(to string) error {
	body := layout("Password Changed", `
        <p>Hello,</p>
        <p>Your password was changed successfully. If this was not you, contact support immediately.</p>`)
	return s.send(to, "Your Starides password was changed", body)
}

func (s *Service) SendOrderConfirmation(to, orderNumber string, total float64) error {
	body := layout("Order Received", fmt.Sprintf(`
        <p>Thanks for your order!</p>
        <p>Order <strong>%s</strong> has been sent to the restaurant.</p>
        <p>Total charged: <strong>$%.2f</strong></p>`, html.EscapeString(orderNumber), total))
	return s.send(to, "Order "+orderNumber+" received", body)
}

func (s *Service) send(to, subject, body string) error {
	if !s.Enabled() {
		s.log.Info("smtp not configured, skipping email", "action", "send_email", "to", to, "subject", subject)
		return nil
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func layout(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 10px; }
        .logo { font-size: 24px; font-weight: bold; color: #f97316; text-align: center; }
        .footer { text-align: center; margin-top: 30px; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="logo">Starides</div>
        <h2 style="color: #333;">%s</h2>
        %s
        <div class="footer">
            <p>This is an automated email. Please do not reply.</p>
        </div>
    </div>
</body>
</html>`, title, content)
}
