package mail

import (
	"context"

	gomail "github.com/wneessen/go-mail"
)

// Message is a single outbound plain-text email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer delivers outbound messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends messages through an SMTP relay.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
}

// NewSMTPMailer creates an SMTPMailer for the given relay. Credentials
// may be empty for relays that accept unauthenticated local delivery.
func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, username: username, password: password}
}

// Send dials the relay and delivers one message.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out := gomail.NewMsg()
	if err := out.From(msg.From); err != nil {
		return err
	}
	if err := out.To(msg.To); err != nil {
		return err
	}
	out.Subject(msg.Subject)
	out.SetBodyString(gomail.TypeTextPlain, msg.Body)

	opts := []gomail.Option{gomail.WithPort(m.port)}
	if m.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.username),
			gomail.WithPassword(m.password),
		)
	}

	client, err := gomail.NewClient(m.host, opts...)
	if err != nil {
		return err
	}

	return client.DialAndSendWithContext(ctx, out)
}
