package notification_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	mail "github.com/go-mail/mail/v2"
	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/notification"
	"github.com/saulo-duarte/appraisal-lambda/internal/user"
	"github.com/saulo-duarte/appraisal-lambda/internal/user/usertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	sent []*mail.Message
	err  error
}

func (s *captureSender) DialAndSend(m ...*mail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, m...)
	return nil
}

func body(t *testing.T, m *mail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestMailNotifier(t *testing.T) {
	ctx := context.Background()
	owner := usertest.NewUser("ed", user.RoleEmployee)
	reviewer := usertest.NewUser("maria", user.RoleReviewer)
	users := usertest.NewRepository(owner, reviewer)

	t.Run("SubmittedGoesToReviewer", func(t *testing.T) {
		sender := &captureSender{}
		n := notification.NewMailNotifier(sender, "noreply@example.com", users)

		require.NoError(t, n.GoalSubmitted(ctx, notification.GoalSubmitted{
			GoalID: uuid.New(), GoalTitle: "Latency <p99>", OwnerID: owner.ID, ReviewerID: reviewer.ID,
		}))

		require.Len(t, sender.sent, 1)
		assert.Equal(t, []string{reviewer.Email}, sender.sent[0].GetHeader("To"))
		assert.Contains(t, body(t, sender.sent[0]), "Latency &lt;p99&gt;")
	})

	t.Run("ReviewedGoesToOwner", func(t *testing.T) {
		sender := &captureSender{}
		n := notification.NewMailNotifier(sender, "noreply@example.com", users)

		require.NoError(t, n.GoalReviewed(ctx, notification.GoalReviewed{
			GoalID: uuid.New(), GoalTitle: "Latency", OwnerID: owner.ID, ReviewerID: reviewer.ID,
			Action: "return", Feedback: "split it",
		}))

		require.Len(t, sender.sent, 1)
		assert.Equal(t, []string{owner.Email}, sender.sent[0].GetHeader("To"))
		assert.Equal(t, []string{"Goal returned for revision: Latency"}, sender.sent[0].GetHeader("Subject"))
	})

	t.Run("UnknownRecipient", func(t *testing.T) {
		n := notification.NewMailNotifier(&captureSender{}, "noreply@example.com", users)
		err := n.GoalSubmitted(ctx, notification.GoalSubmitted{OwnerID: owner.ID, ReviewerID: uuid.New()})
		assert.Error(t, err)
	})

	t.Run("MultiRunsAllAndReportsFailure", func(t *testing.T) {
		failing := &captureSender{err: errors.New("smtp down")}
		working := &captureSender{}
		n := notification.Multi(
			notification.NewMailNotifier(failing, "noreply@example.com", users),
			notification.NewMailNotifier(working, "noreply@example.com", users),
		)

		err := n.GoalReviewed(ctx, notification.GoalReviewed{OwnerID: owner.ID, Action: "approve"})
		assert.ErrorContains(t, err, "smtp down")
		assert.Len(t, working.sent, 1)
	})
}

func TestMailConfigFromEnv(t *testing.T) {
	t.Setenv("SMTP_HOST", "")
	t.Setenv("SMTP_FROM", "")
	_, ok := notification.MailConfigFromEnv()
	assert.False(t, ok)

	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_FROM", "Appraisals <noreply@example.com>")
	t.Setenv("SMTP_PORT", "2525")
	cfg, ok := notification.MailConfigFromEnv()
	require.True(t, ok)
	assert.Equal(t, 2525, cfg.Port)
	assert.Equal(t, "smtp.example.com", notification.NewDialer(cfg).TLSConfig.ServerName)
}
