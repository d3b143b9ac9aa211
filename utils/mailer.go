package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Mailer sends plain-text email over SMTP
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	dial     func(m *gomail.Message) error
}

// NewMailerFromEnv reads SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS and SMTP_FROM.
// It returns nil when SMTP_HOST is not set.
func NewMailerFromEnv() *Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Println("SMTP not configured, email notifications disabled")
		return nil
	}
	port := 2525
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USER")
	}
	return NewMailer(host, port, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASS"), from)
}

// NewMailer creates a mailer for the given SMTP server
func NewMailer(host string, port int, username, password, from string) *Mailer {
	m := &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
	m.dial = func(msg *gomail.Message) error {
		return gomail.NewDialer(m.host, m.port, m.username, m.password).DialAndSend(msg)
	}
	return m
}

// Send delivers one message
func (m *Mailer) Send(to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("missing recipient")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	if err := m.dial(msg); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	log.Printf("📧 email sent to=%s subject=%q", to, subject)
	return nil
}
