package mailer

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
)

// Mailer is the outbound email boundary. The fan-out engine treats every
// failure as best-effort: logged, never propagated.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

type ConsoleMailer struct {
	enabled bool
}

func NewConsoleMailer(enabled bool) *ConsoleMailer {
	return &ConsoleMailer{enabled: enabled}
}

func (m *ConsoleMailer) Send(_ context.Context, to, subject, _, textBody string) error {
	if m.enabled {
		log.Printf("[DEV-EMAIL] to=%s subject=%q body=%q", to, subject, textBody)
	}
	return nil
}

type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPMailer(host, port, from, user, pass string) *SMTPMailer {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}
	return &SMTPMailer{
		addr: host + ":" + port,
		from: from,
		auth: auth,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := buildMessage(m.from, to, subject, htmlBody, textBody)
	if err != nil {
		return err
	}

	return smtp.SendMail(m.addr, m.auth, m.from, []string{to}, msg)
}

// buildMessage assembles a multipart/alternative MIME message so clients can
// pick the HTML or the plain-text part.
func buildMessage(from, to, subject, htmlBody, textBody string) ([]byte, error) {
	var b strings.Builder
	var body strings.Builder

	w := multipart.NewWriter(&body)

	part, err := w.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/plain; charset=utf-8"}})
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(textBody)); err != nil {
		return nil, err
	}

	part, err = w.CreatePart(textproto.MIMEHeader{"Content-Type": {"text/html; charset=utf-8"}})
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(htmlBody)); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%s\r\n", w.Boundary())
	b.WriteString("\r\n")
	b.WriteString(body.String())

	return []byte(b.String()), nil
}
