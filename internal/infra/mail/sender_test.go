package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

type fakeDialer struct {
	sent  []*gomail.Message
	err   error
	block chan struct{}
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.block != nil {
		<-d.block
	}
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSMTPSenderBuildsMessage(t *testing.T) {
	d := &fakeDialer{}
	s := &SMTPSender{From: "me@example.com", dialer: d}

	id, err := s.Send(context.Background(), entity.OutgoingEmail{
		To: "sam@acme.io", Subject: "Hello Sam", Body: "<p>Hi</p>", IsHTML: true,
	})

	require.NoError(t, err)
	assert.Empty(t, id)
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"sam@acme.io"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Hello Sam"}, d.sent[0].GetHeader("Subject"))

	var buf bytes.Buffer
	_, err = d.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "text/html")
}

func TestSMTPSenderWrapsDialError(t *testing.T) {
	boom := errors.New("connection refused")
	s := &SMTPSender{From: "me@example.com", dialer: &fakeDialer{err: boom}}

	_, err := s.Send(context.Background(), entity.OutgoingEmail{To: "sam@acme.io"})

	assert.ErrorIs(t, err, boom)
}

func TestSMTPSenderStopsAtDeadline(t *testing.T) {
	d := &fakeDialer{block: make(chan struct{})}
	defer close(d.block)
	s := &SMTPSender{From: "me@example.com", dialer: d}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.Send(ctx, entity.OutgoingEmail{To: "sam@acme.io"})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type mockSES struct{ mock.Mock }

func (m *mockSES) SendEmail(ctx context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*ses.SendEmailOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSESSenderReturnsMessageID(t *testing.T) {
	client := new(mockSES)
	s := &SESSender{From: "me@example.com", client: client}

	client.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return in.Destination.ToAddresses[0] == "sam@acme.io" &&
			aws.ToString(in.Source) == "me@example.com" &&
			in.Message.Body.Text != nil && in.Message.Body.Html == nil
	})).Return(&ses.SendEmailOutput{MessageId: aws.String("ses-123")}, nil)

	id, err := s.Send(context.Background(), entity.OutgoingEmail{To: "sam@acme.io", Subject: "Hi", Body: "plain"})

	require.NoError(t, err)
	assert.Equal(t, "ses-123", id)
	client.AssertExpectations(t)
}

func TestSESSenderWrapsError(t *testing.T) {
	client := new(mockSES)
	s := &SESSender{From: "me@example.com", client: client}
	boom := errors.New("throttled")
	client.On("SendEmail", mock.Anything, mock.Anything).Return(nil, boom)

	_, err := s.Send(context.Background(), entity.OutgoingEmail{To: "sam@acme.io"})

	assert.ErrorIs(t, err, boom)
}
