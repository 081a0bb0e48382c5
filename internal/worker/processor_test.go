package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dieselnoi/course_go_server/internal/pkg/queue"
)

type recordingSender struct {
	verifications [][2]string // to, code
	welcomes      [][2]string // to, username
	err           error
}

func (s *recordingSender) SendVerificationCode(to, code string) error {
	s.verifications = append(s.verifications, [2]string{to, code})
	return s.err
}

func (s *recordingSender) SendWelcome(to, username string) error {
	s.welcomes = append(s.welcomes, [2]string{to, username})
	return s.err
}

func TestProcessor_VerificationEmail(t *testing.T) {
	sender := &recordingSender{}
	p := NewProcessor(sender)

	err := p.Process(context.Background(), &queue.EmailMessage{
		Kind: queue.EmailKindVerification,
		To:   "user@example.com",
		Code: "abc123",
	})
	require.NoError(t, err)
	require.Len(t, sender.verifications, 1)
	assert.Equal(t, [2]string{"user@example.com", "abc123"}, sender.verifications[0])
	assert.Empty(t, sender.welcomes)
}

func TestProcessor_WelcomeEmail(t *testing.T) {
	sender := &recordingSender{}
	p := NewProcessor(sender)

	err := p.Process(context.Background(), &queue.EmailMessage{
		Kind:     queue.EmailKindWelcome,
		To:       "user@example.com",
		Username: "somchai",
	})
	require.NoError(t, err)
	require.Len(t, sender.welcomes, 1)
	assert.Equal(t, [2]string{"user@example.com", "somchai"}, sender.welcomes[0])
}

func TestProcessor_UnknownKind(t *testing.T) {
	p := NewProcessor(&recordingSender{})

	err := p.Process(context.Background(), &queue.EmailMessage{Kind: "newsletter"})
	assert.Error(t, err)
}

func TestProcessor_SenderFailure(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp: connection refused")}
	p := NewProcessor(sender)

	err := p.Process(context.Background(), &queue.EmailMessage{
		Kind: queue.EmailKindVerification,
		To:   "user@example.com",
		Code: "abc123",
	})
	assert.Error(t, err)
}
