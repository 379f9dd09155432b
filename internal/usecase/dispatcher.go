package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

const defaultSendTimeout = 30 * time.Second

// DispatchRefs ties a message back to the records it was composed from.
type DispatchRefs struct {
	TemplateID   string
	RecruiterID  string
	AssignmentID string
	// Progress is carried onto a ScheduledEmail so the dispatcher can run
	// the progression rule after delivery. Bulk sends leave it false.
	Progress bool
}

type DispatchResult struct {
	MessageID        string
	Scheduled        bool
	ScheduledEmailID string
}

// Dispatcher sends a message now or parks it as a ScheduledEmail. A schedule
// time that is not in the future sends immediately.
type Dispatcher struct {
	Transport   EmailTransport
	Logs        entity.EmailLogRepository
	Scheduled   entity.ScheduledEmailRepository
	SendTimeout time.Duration
	Logger      *zap.Logger
	Now         func() time.Time
}

func NewDispatcher(
	transport EmailTransport,
	logs entity.EmailLogRepository,
	scheduled entity.ScheduledEmailRepository,
	sendTimeout time.Duration,
	logger *zap.Logger,
) *Dispatcher {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &Dispatcher{
		Transport:   transport,
		Logs:        logs,
		Scheduled:   scheduled,
		SendTimeout: sendTimeout,
		Logger:      logger,
		Now:         time.Now,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, ownerID string, msg entity.OutgoingEmail, scheduleAt *time.Time, refs DispatchRefs) (*DispatchResult, error) {
	if scheduleAt != nil && scheduleAt.After(d.Now()) {
		return d.schedule(ctx, ownerID, msg, *scheduleAt, refs)
	}
	messageID, err := d.SendNow(ctx, ownerID, msg, refs)
	if err != nil {
		return nil, err
	}
	return &DispatchResult{MessageID: messageID}, nil
}

// SendNow hands the message to the transport within SendTimeout and writes
// an EmailLog for the outcome. A timeout is reported like any other failure;
// a nil error from the transport counts as delivered even past the deadline.
func (d *Dispatcher) SendNow(ctx context.Context, ownerID string, msg entity.OutgoingEmail, refs DispatchRefs) (string, error) {
	sendCtx, cancel := context.WithTimeout(ctx, d.SendTimeout)
	defer cancel()

	messageID, err := d.Transport.Send(sendCtx, msg)

	log := entity.NewEmailLog(ownerID, msg)
	log.TemplateID = refs.TemplateID
	log.RecruiterID = refs.RecruiterID

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = errors.New("email transport timed out")
		}
		log.Status = entity.EmailFailed
		log.ErrorMessage = err.Error()
		d.writeLog(ctx, log)
		return "", transportError(err)
	}

	if messageID == "" {
		messageID = "ecold-" + uuid.New().String()
	}
	now := d.Now()
	log.Status = entity.EmailSent
	log.MessageID = messageID
	log.SentAt = &now
	d.writeLog(ctx, log)

	return messageID, nil
}

func (d *Dispatcher) schedule(ctx context.Context, ownerID string, msg entity.OutgoingEmail, at time.Time, refs DispatchRefs) (*DispatchResult, error) {
	s := entity.NewScheduledEmail(ownerID, msg, at)
	s.TemplateID = refs.TemplateID
	s.RecruiterID = refs.RecruiterID
	s.AssignmentID = refs.AssignmentID
	s.Progress = refs.Progress && refs.AssignmentID != ""
	if err := d.Scheduled.Create(ctx, s); err != nil {
		return nil, databaseError("schedule email", err)
	}
	d.Logger.Info("email scheduled",
		zap.String("owner_id", ownerID),
		zap.String("scheduled_email_id", s.ID),
		zap.Time("schedule_time", at),
	)
	return &DispatchResult{Scheduled: true, ScheduledEmailID: s.ID}, nil
}

func (d *Dispatcher) writeLog(ctx context.Context, log *entity.EmailLog) {
	if d.Logs == nil {
		return
	}
	if err := d.Logs.Create(ctx, log); err != nil {
		d.Logger.Warn("failed to write email log",
			zap.String("recipient", log.RecipientEmail),
			zap.String("status", string(log.Status)),
			zap.Error(err),
		)
	}
}
