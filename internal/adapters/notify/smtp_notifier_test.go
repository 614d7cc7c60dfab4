package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"congregation-api/internal/config"
	"congregation-api/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendWithoutHostFails(t *testing.T) {
	n := NewSMTPNotifier(config.SMTPConfig{})

	err := n.Send(context.Background(), "donor@example.org", "Donation Receipt", "body")

	var notifyErr *domain.NotificationError
	require.True(t, errors.As(err, &notifyErr))
	assert.Equal(t, "donor@example.org", notifyErr.Address)
	assert.ErrorIs(t, err, ErrMailDisabled)
}

func TestSendRejectsHeaderInjection(t *testing.T) {
	n := NewSMTPNotifier(config.SMTPConfig{Host: "127.0.0.1", Port: "1", From: "a@example.org"})

	err := n.Send(context.Background(), "donor@example.org\r\nBcc: x@example.org", "hi", "body")
	assert.ErrorIs(t, err, ErrInvalidHeader)
}

func TestSendReportsDialFailure(t *testing.T) {
	n := NewSMTPNotifier(config.SMTPConfig{Host: "127.0.0.1", Port: "1", From: "a@example.org"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := n.Send(ctx, "donor@example.org", "hi", "body")
	var notifyErr *domain.NotificationError
	assert.True(t, errors.As(err, &notifyErr))
}

func TestBuildMessage(t *testing.T) {
	date := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	msg := string(buildMessage("church@example.org", "donor@example.org", "Donation Receipt", "line one\nline two\n", date))

	assert.True(t, strings.HasPrefix(msg, "From: church@example.org\r\nTo: donor@example.org\r\nSubject: Donation Receipt\r\n"))
	assert.Contains(t, msg, "Date: Fri, 01 Mar 2024 10:00:00 +0000\r\n")
	assert.Contains(t, msg, "\r\n\r\nline one\r\nline two\r\n")
	assert.NotContains(t, strings.ReplaceAll(msg, "\r\n", ""), "\n")
}
