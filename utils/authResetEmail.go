package utils

import (
	"fmt"
	"strconv"

	"gopkg.in/gomail.v2"
)

// SMTPConfig carries the mail settings loaded from the environment.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
}

// Configured reports whether enough settings are present to send mail.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Port != "" && c.User != ""
}

// SendResetCodeEmail mails a password reset code to a doctor.
func SendResetCodeEmail(cfg SMTPConfig, email, code string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", cfg.User)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Password Reset Code")

	m.SetBody("text/plain", "Your password reset code is: "+code)

	htmlBody := `
	<!DOCTYPE html>
	<html>
	<head>
		<title>Password Reset Code</title>
	</head>
	<body>
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 20px auto; padding: 20px;">
			<h1>Password Reset Code</h1>
			<p>Your password reset code is:</p>
			<p style="font-weight: bold; color: #007bff;">` + code + `</p>
			<p>If you did not request a password reset, please ignore this email.</p>
		</div>
	</body>
	</html>
	`
	m.AddAlternative("text/html", htmlBody)

	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		return fmt.Errorf("invalid SMTP port %q: %w", cfg.Port, err)
	}

	d := gomail.NewDialer(cfg.Host, port, cfg.User, cfg.Pass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send reset code email: %w", err)
	}
	return nil
}
