package notification

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"strconv"

	mail "github.com/go-mail/mail/v2"
	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/config"
	"github.com/saulo-duarte/appraisal-lambda/internal/user"
)

// Sender delivers composed messages. *mail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*mail.Message) error
}

// UserLookup resolves event participants to an address.
type UserLookup interface {
	GetByID(id uuid.UUID) (*user.User, error)
}

type MailConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	From          string
	SkipTLSVerify bool
}

// MailConfigFromEnv reads SMTP_* variables. ok is false when SMTP_HOST or
// SMTP_FROM is missing.
func MailConfigFromEnv() (cfg MailConfig, ok bool) {
	port, err := strconv.Atoi(config.GetEnv("SMTP_PORT", "587"))
	if err != nil || port == 0 {
		port = 587
	}
	cfg = MailConfig{
		Host:          config.GetEnv("SMTP_HOST"),
		Port:          port,
		Username:      config.GetEnv("SMTP_USER"),
		Password:      config.GetEnv("SMTP_PASS"),
		From:          config.GetEnv("SMTP_FROM"),
		SkipTLSVerify: config.GetEnv("SMTP_SKIP_TLS_VERIFY") == "1",
	}
	return cfg, cfg.Host != "" && cfg.From != ""
}

func NewDialer(cfg MailConfig) *mail.Dialer {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}
	return d
}

type mailNotifier struct {
	sender Sender
	from   string
	users  UserLookup
}

// NewMailNotifier emails the reviewer on submission and the owner on review.
func NewMailNotifier(sender Sender, from string, users UserLookup) Notifier {
	return &mailNotifier{sender: sender, from: from, users: users}
}

func (n *mailNotifier) GoalSubmitted(ctx context.Context, evt GoalSubmitted) error {
	reviewer, err := n.users.GetByID(evt.ReviewerID)
	if err != nil {
		return fmt.Errorf("lookup reviewer %s: %w", evt.ReviewerID, err)
	}
	owner, err := n.users.GetByID(evt.OwnerID)
	if err != nil {
		return fmt.Errorf("lookup owner %s: %w", evt.OwnerID, err)
	}

	subject := fmt.Sprintf("Goal submitted for review: %s", evt.GoalTitle)
	body := fmt.Sprintf("<p>%s submitted the goal <strong>%s</strong> for your review.</p>",
		html.EscapeString(owner.Name), html.EscapeString(evt.GoalTitle))
	return n.send(ctx, reviewer.Email, subject, body)
}

func (n *mailNotifier) GoalReviewed(ctx context.Context, evt GoalReviewed) error {
	owner, err := n.users.GetByID(evt.OwnerID)
	if err != nil {
		return fmt.Errorf("lookup owner %s: %w", evt.OwnerID, err)
	}

	subject := fmt.Sprintf("Goal %s: %s", reviewedVerb(evt.Action), evt.GoalTitle)
	body := fmt.Sprintf("<p>Your goal <strong>%s</strong> was %s.</p>",
		html.EscapeString(evt.GoalTitle), reviewedVerb(evt.Action))
	if evt.Feedback != "" {
		body += fmt.Sprintf("<p>Reviewer feedback:</p><blockquote>%s</blockquote>", html.EscapeString(evt.Feedback))
	}
	return n.send(ctx, owner.Email, subject, body)
}

func (n *mailNotifier) send(ctx context.Context, to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	config.WithContext(ctx).WithField("to", to).Debug("Notification mail sent")
	return nil
}

func reviewedVerb(action string) string {
	switch action {
	case "approve":
		return "approved"
	case "reject":
		return "rejected"
	case "return":
		return "returned for revision"
	default:
		return action
	}
}

type multiNotifier []Notifier

// Multi fans events out to every notifier and reports the first failure
// after all have run.
func Multi(notifiers ...Notifier) Notifier {
	return multiNotifier(notifiers)
}

func (m multiNotifier) GoalSubmitted(ctx context.Context, evt GoalSubmitted) error {
	var first error
	for _, n := range m {
		if err := n.GoalSubmitted(ctx, evt); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m multiNotifier) GoalReviewed(ctx context.Context, evt GoalReviewed) error {
	var first error
	for _, n := range m {
		if err := n.GoalReviewed(ctx, evt); err != nil && first == nil {
			first = err
		}
	}
	return first
}
