package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type EmailStatus string

const (
	EmailScheduled EmailStatus = "SCHEDULED"
	EmailSent      EmailStatus = "SENT"
	EmailDelivered EmailStatus = "DELIVERED"
	EmailFailed    EmailStatus = "FAILED"
	EmailCancelled EmailStatus = "CANCELLED"
)

var ErrScheduledEmailNotFound = errors.New("scheduled email not found")

// OutgoingEmail is what a transport needs to deliver one message.
type OutgoingEmail struct {
	To      string
	Subject string
	Body    string
	IsHTML  bool
}

// EmailLog is append-only once SENT or DELIVERED.
type EmailLog struct {
	ID             string      `json:"id" bson:"_id"`
	OwnerID        string      `json:"-" bson:"owner_id"`
	RecipientEmail string      `json:"recipientEmail" bson:"recipient_email"`
	Subject        string      `json:"subject" bson:"subject"`
	Body           string      `json:"body" bson:"body"`
	Status         EmailStatus `json:"status" bson:"status"`
	TemplateID     string      `json:"templateId,omitempty" bson:"template_id,omitempty"`
	RecruiterID    string      `json:"recruiterId,omitempty" bson:"recruiter_id,omitempty"`
	MessageID      string      `json:"messageId,omitempty" bson:"message_id,omitempty"`
	ErrorMessage   string      `json:"errorMessage,omitempty" bson:"error_message,omitempty"`
	RetryCount     int         `json:"retryCount" bson:"retry_count"`
	SentAt         *time.Time  `json:"sentAt,omitempty" bson:"sent_at,omitempty"`
	CreatedAt      time.Time   `json:"createdAt" bson:"created_at"`
}

func NewEmailLog(ownerID string, msg OutgoingEmail) *EmailLog {
	return &EmailLog{
		ID:             uuid.New().String(),
		OwnerID:        ownerID,
		RecipientEmail: msg.To,
		Subject:        msg.Subject,
		Body:           msg.Body,
		CreatedAt:      time.Now(),
	}
}

// ScheduledEmail is parked until its schedule time. Progress marks a single
// template send whose assignment advances once the email goes out.
type ScheduledEmail struct {
	ID             string      `json:"id" bson:"_id"`
	OwnerID        string      `json:"-" bson:"owner_id"`
	RecipientEmail string      `json:"recipientEmail" bson:"recipient_email"`
	Subject        string      `json:"subject" bson:"subject"`
	Body           string      `json:"body" bson:"body"`
	IsHTML         bool        `json:"isHtml" bson:"is_html"`
	Status         EmailStatus `json:"status" bson:"status"`
	ScheduleTime   time.Time   `json:"scheduleTime" bson:"schedule_time"`
	TemplateID     string      `json:"templateId,omitempty" bson:"template_id,omitempty"`
	RecruiterID    string      `json:"recruiterId,omitempty" bson:"recruiter_id,omitempty"`
	AssignmentID   string      `json:"assignmentId,omitempty" bson:"assignment_id,omitempty"`
	Progress       bool        `json:"progress" bson:"progress"`
	RetryCount     int         `json:"retryCount" bson:"retry_count"`
	MessageID      string      `json:"messageId,omitempty" bson:"message_id,omitempty"`
	ErrorMessage   string      `json:"errorMessage,omitempty" bson:"error_message,omitempty"`
	SentAt         *time.Time  `json:"sentAt,omitempty" bson:"sent_at,omitempty"`
	CreatedAt      time.Time   `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time   `json:"updatedAt" bson:"updated_at"`
}

func NewScheduledEmail(ownerID string, msg OutgoingEmail, at time.Time) *ScheduledEmail {
	now := time.Now()
	return &ScheduledEmail{
		ID:             uuid.New().String(),
		OwnerID:        ownerID,
		RecipientEmail: msg.To,
		Subject:        msg.Subject,
		Body:           msg.Body,
		IsHTML:         msg.IsHTML,
		Status:         EmailScheduled,
		ScheduleTime:   at,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (s *ScheduledEmail) Message() OutgoingEmail {
	return OutgoingEmail{To: s.RecipientEmail, Subject: s.Subject, Body: s.Body, IsHTML: s.IsHTML}
}

type EmailLogRepository interface {
	Create(ctx context.Context, l *EmailLog) error
	List(ctx context.Context, ownerID string, page PageRequest) (*Page[*EmailLog], error)
}

type ScheduledEmailRepository interface {
	Create(ctx context.Context, s *ScheduledEmail) error
	FindByID(ctx context.Context, ownerID, id string) (*ScheduledEmail, error)
	List(ctx context.Context, ownerID string, page PageRequest) (*Page[*ScheduledEmail], error)
	// FindDue returns SCHEDULED rows of every owner whose schedule time is not after now.
	FindDue(ctx context.Context, now time.Time, limit int) ([]*ScheduledEmail, error)
	MarkSent(ctx context.Context, id, messageID string, at time.Time) error
	MarkFailed(ctx context.Context, id, reason string) error
	// Cancel only affects rows still SCHEDULED.
	Cancel(ctx context.Context, ownerID, id string) error
}
