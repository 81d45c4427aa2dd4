package email

import (
	"fmt"
	"net/smtp"
)

// SMTPMailer sends plain text email through an authenticated SMTP relay.
type SMTPMailer struct {
	Host     string
	Port     string
	Sender   string
	Password string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(host, port, sender, password string) *SMTPMailer {
	return &SMTPMailer{
		Host:     host,
		Port:     port,
		Sender:   sender,
		Password: password,
		send:     smtp.SendMail,
	}
}

func buildMessage(from, to, subject, body string) []byte {
	return []byte("From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" + body + "\r\n")
}

// SendEmail sends a plain text email using SMTP.
func (m *SMTPMailer) SendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", m.Sender, m.Password, m.Host)
	address := m.Host + ":" + m.Port

	err := m.send(address, auth, m.Sender, []string{to}, buildMessage(m.Sender, to, subject, body))
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
