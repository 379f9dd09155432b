package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(ctx, exchange, key, msg).Error(0)
}

type mockMover struct{ mock.Mock }

func (m *mockMover) MoveToFollowup(ctx context.Context, ownerID, assignmentID string) (*entity.FollowupMove, error) {
	args := m.Called(ctx, ownerID, assignmentID)
	if mv := args.Get(0); mv != nil {
		return mv.(*entity.FollowupMove), args.Error(1)
	}
	return nil, args.Error(1)
}

// ackRecorder stands in for the broker side of a delivery.
type ackRecorder struct {
	acked, nacked, requeued bool
}

func (a *ackRecorder) Ack(uint64, bool) error { a.acked = true; return nil }
func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}
func (a *ackRecorder) Reject(_ uint64, requeue bool) error {
	a.nacked, a.requeued = true, requeue
	return nil
}

func delivery(t *testing.T, body any) (amqp.Delivery, *ackRecorder) {
	t.Helper()
	raw, ok := body.([]byte)
	if !ok {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	rec := &ackRecorder{}
	return amqp.Delivery{Acknowledger: rec, Body: raw}, rec
}

func TestPublishProgression(t *testing.T) {
	pub := new(mockPublisher)
	p := &ProgressionProducer{ch: pub}
	event := entity.ProgressionEvent{OwnerID: "user-1", AssignmentID: "a-1", SentAt: time.Now()}

	pub.On("PublishWithContext", mock.Anything, ExchangeName, RoutingKey,
		mock.MatchedBy(func(msg amqp.Publishing) bool {
			var got entity.ProgressionEvent
			return json.Unmarshal(msg.Body, &got) == nil &&
				got.AssignmentID == "a-1" &&
				msg.DeliveryMode == amqp.Persistent
		})).Return(nil)

	require.NoError(t, p.PublishProgression(context.Background(), event))
	pub.AssertExpectations(t)
}

func TestPublishProgressionWrapsError(t *testing.T) {
	pub := new(mockPublisher)
	p := &ProgressionProducer{ch: pub}
	boom := errors.New("channel closed")
	pub.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(boom)

	err := p.PublishProgression(context.Background(), entity.ProgressionEvent{AssignmentID: "a-1"})

	assert.ErrorIs(t, err, boom)
}

func TestWorkerAcksAfterMove(t *testing.T) {
	mover := new(mockMover)
	w := &Worker{Mover: mover, Logger: zap.NewNop()}
	mover.On("MoveToFollowup", mock.Anything, "user-1", "a-1").
		Return(&entity.FollowupMove{Previous: &entity.Assignment{ID: "a-1"}, Followup: &entity.Assignment{ID: "a-2"}}, nil).Once()

	d, rec := delivery(t, entity.ProgressionEvent{OwnerID: "user-1", AssignmentID: "a-1"})
	w.handle(context.Background(), d)

	assert.True(t, rec.acked)
	assert.False(t, rec.nacked)
	mover.AssertExpectations(t)
}

func TestWorkerLogsProgressionOutcome(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mover := new(mockMover)
	w := &Worker{Mover: mover, Logger: zap.New(core)}
	mover.On("MoveToFollowup", mock.Anything, "user-1", "a-1").
		Return(&entity.FollowupMove{Followup: &entity.Assignment{ID: "a-2", TemplateID: "tpl-2"}}, nil).Once()

	d, _ := delivery(t, entity.ProgressionEvent{OwnerID: "user-1", AssignmentID: "a-1"})
	w.handle(context.Background(), d)

	entries := logs.FilterMessage("outreach progression applied").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "tpl-2", entries[0].ContextMap()["followup_template_id"])
}

func TestWorkerDeadLettersFailedMove(t *testing.T) {
	mover := new(mockMover)
	w := &Worker{Mover: mover, Logger: zap.NewNop()}
	mover.On("MoveToFollowup", mock.Anything, "user-1", "a-1").Return(nil, errors.New("no follow-up template")).Once()

	d, rec := delivery(t, entity.ProgressionEvent{OwnerID: "user-1", AssignmentID: "a-1"})
	w.handle(context.Background(), d)

	assert.True(t, rec.nacked)
	assert.False(t, rec.requeued)
	mover.AssertNumberOfCalls(t, "MoveToFollowup", 1)
}

func TestWorkerRejectsMalformedEvent(t *testing.T) {
	mover := new(mockMover)
	w := &Worker{Mover: mover, Logger: zap.NewNop()}

	for _, body := range [][]byte{[]byte("{not json"), []byte(`{"owner_id":"user-1"}`)} {
		d, rec := delivery(t, body)
		w.handle(context.Background(), d)
		assert.True(t, rec.nacked)
		assert.False(t, rec.requeued)
	}
	mover.AssertNotCalled(t, "MoveToFollowup", mock.Anything, mock.Anything, mock.Anything)
}
