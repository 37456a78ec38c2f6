package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSender(t *testing.T) {
	logger := zerolog.Nop()
	tests := []struct {
		name    string
		cfg     Config
		want    any
		wantErr bool
	}{
		{"default is log", Config{}, &LogSender{}, false},
		{"smtp", Config{Provider: "smtp", Host: "localhost", Port: 25}, &SMTPSender{}, false},
		{"smtp without host", Config{Provider: "smtp"}, nil, true},
		{"sendgrid", Config{Provider: "SendGrid", SendgridAPIKey: "key"}, &SendgridSender{}, false},
		{"sendgrid without key", Config{Provider: "sendgrid"}, nil, true},
		{"unknown", Config{Provider: "pigeon"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSender(tt.cfg, logger)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, s)
		})
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	require.NoError(t, r.Send(ctx, Message{To: []string{"a@x.com"}, Subject: "hi"}))
	require.NoError(t, r.Send(ctx, Message{To: []string{"b@x.com"}, Subject: "yo"}))
	assert.Len(t, r.Messages(), 2)
	assert.Len(t, r.SentTo("a@x.com"), 1)

	assert.ErrorIs(t, r.Send(ctx, Message{Subject: "none"}), ErrNoRecipients)

	r.Err = errors.New("smtp down")
	assert.Error(t, r.Send(ctx, Message{To: []string{"c@x.com"}, Subject: "x"}))
	assert.Empty(t, r.SentTo("c@x.com"))

	r.Reset()
	assert.Empty(t, r.Messages())
}

func TestApprovalMessage(t *testing.T) {
	msg := ApprovalMessage(ApprovalData{
		Name:              "Jane Doe",
		Email:             "jane@x.com",
		TemporaryPassword: "Tmp!Pass1234",
		StudentID:         "STU0005",
		LoginURL:          "http://localhost:5173/login",
	})
	assert.Equal(t, SubjectApproved, msg.Subject)
	assert.Equal(t, []string{"jane@x.com"}, msg.To)
	assert.Contains(t, msg.Body, "Tmp!Pass1234")
	assert.Contains(t, msg.Body, "STU0005")
	assert.Contains(t, msg.Body, "http://localhost:5173/login")

	faculty := ApprovalMessage(ApprovalData{Name: "A", Email: "a@x.com", TemporaryPassword: "p"})
	assert.NotContains(t, faculty.Body, "Student ID")
}

func TestRejectionMessage_DefaultReason(t *testing.T) {
	msg := RejectionMessage("Jane", "jane@x.com", "  ")
	assert.Equal(t, SubjectRejected, msg.Subject)
	assert.Contains(t, msg.Body, DefaultRejectionReason)

	msg = RejectionMessage("Jane", "jane@x.com", "incomplete documents")
	assert.Contains(t, msg.Body, "incomplete documents")
	assert.NotContains(t, msg.Body, DefaultRejectionReason)
}

func TestAdminNotificationMessage(t *testing.T) {
	msg := AdminNotificationMessage("admin@x.com", RequestSummary{Name: "Jane", Email: "jane@x.com", Role: "faculty"})
	assert.Equal(t, "New Registration Request: Faculty", msg.Subject)
	assert.Equal(t, []string{"admin@x.com"}, msg.To)
	assert.True(t, strings.Contains(msg.Body, "jane@x.com"))
}

func TestSMTPBuildMessage(t *testing.T) {
	s := NewSMTPSender(Config{FromName: "Portal", FromEmail: "noreply@x.com"}, zerolog.Nop())
	raw := string(s.buildMessage(Message{To: []string{"a@x.com", "b@x.com"}, Subject: "Hello", Body: "line1\nline2"}))
	assert.Contains(t, raw, "From: Portal <noreply@x.com>\r\n")
	assert.Contains(t, raw, "To: a@x.com, b@x.com\r\n")
	assert.Contains(t, raw, "Subject: Hello\r\n")
	assert.True(t, strings.HasSuffix(raw, "line1\r\nline2"))
}
