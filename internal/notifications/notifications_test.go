package notifications

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/AlbertoOrlando/travel-journal-app/internal/config"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
	hook func(ctx context.Context)
}

func (m *recordingMailer) Send(ctx context.Context, msg Message) error {
	if m.hook != nil {
		m.hook(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *recordingMailer) messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

type fakeSendClient struct {
	status int
	err    error
	got    *mail.SGMailV3
}

func (f *fakeSendClient) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.got = email
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status, Body: "body"}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestSendGridMailer_Send(t *testing.T) {
	tests := []struct {
		name    string
		client  *fakeSendClient
		wantErr bool
	}{
		{"accepted", &fakeSendClient{status: 202}, false},
		{"rejected", &fakeSendClient{status: 401}, true},
		{"transport error", &fakeSendClient{err: errors.New("timeout")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &SendGridMailer{client: tt.client, from: mail.NewEmail("Travel Journal", "no-reply@example.com")}
			err := m.Send(context.Background(), RegistrationConfirmation("anna", "anna@example.com"))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			require.NotNil(t, tt.client.got)
			assert.Equal(t, "Conferma Registrazione al Travel Journal App", tt.client.got.Subject)
			assert.Equal(t, "no-reply@example.com", tt.client.got.From.Address)
		})
	}
}

func TestNewMailer(t *testing.T) {
	_, isLog := NewMailer(&config.Config{}, discardLogger()).(*LogMailer)
	assert.True(t, isLog)

	_, isSendGrid := NewMailer(&config.Config{SendGridAPIKey: "SG.key"}, discardLogger()).(*SendGridMailer)
	assert.True(t, isSendGrid)
}

func TestDispatcher_SendAsync(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, time.Second, discardLogger())

	d.SendAsync(context.Background(), RegistrationConfirmation("luca", "luca@example.com"))
	d.SendAsync(context.Background(), RegistrationConfirmation("sara", "sara@example.com"))
	require.NoError(t, d.Wait(context.Background()))

	assert.Len(t, mailer.messages(), 2)
}

func TestDispatcher_FailureIsSwallowed(t *testing.T) {
	var logs bytes.Buffer
	mailer := &recordingMailer{err: errors.New("smtp down")}
	d := NewDispatcher(mailer, time.Second, slog.New(slog.NewTextHandler(&logs, nil)))

	d.SendAsync(context.Background(), RegistrationConfirmation("luca", "luca@example.com"))
	require.NoError(t, d.Wait(context.Background()))

	assert.Contains(t, logs.String(), "email delivery failed")
	assert.Contains(t, logs.String(), "smtp down")
}

func TestDispatcher_OutlivesCanceledRequest(t *testing.T) {
	var deadlineSet bool
	mailer := &recordingMailer{hook: func(ctx context.Context) {
		_, deadlineSet = ctx.Deadline()
	}}
	d := NewDispatcher(mailer, time.Second, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.SendAsync(ctx, RegistrationConfirmation("luca", "luca@example.com"))
	require.NoError(t, d.Wait(context.Background()))

	assert.Len(t, mailer.messages(), 1)
	assert.True(t, deadlineSet, "each send is bounded by the dispatcher timeout")
}

func TestDispatcher_RecoversPanics(t *testing.T) {
	mailer := &recordingMailer{hook: func(context.Context) { panic("boom") }}
	d := NewDispatcher(mailer, time.Second, discardLogger())

	d.SendAsync(context.Background(), Message{To: "x@example.com"})
	assert.NoError(t, d.Wait(context.Background()))
}

func TestRegistrationConfirmation_EscapesHTML(t *testing.T) {
	msg := RegistrationConfirmation("<b>eve</b>", "eve@example.com")
	assert.Contains(t, msg.HTML, "&lt;b&gt;eve&lt;/b&gt;")
	assert.Contains(t, msg.Text, "<b>eve</b>")
	assert.Equal(t, "eve@example.com", msg.To)
}
