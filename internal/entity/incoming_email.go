package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type IncomingCategory string

const (
	IncomingApplicationUpdate  IncomingCategory = "APPLICATION_UPDATE"
	IncomingShortlistInterview IncomingCategory = "SHORTLIST_INTERVIEW"
	IncomingRejectionClosed    IncomingCategory = "REJECTION_CLOSED"
	IncomingRecruiterOutreach  IncomingCategory = "RECRUITER_OUTREACH"
	IncomingGeneralInquiry     IncomingCategory = "GENERAL_INQUIRY"
	IncomingSpam               IncomingCategory = "SPAM"
	IncomingUnknown            IncomingCategory = "UNKNOWN"
)

func (c IncomingCategory) Valid() bool {
	switch c {
	case IncomingApplicationUpdate, IncomingShortlistInterview, IncomingRejectionClosed,
		IncomingRecruiterOutreach, IncomingGeneralInquiry, IncomingSpam, IncomingUnknown:
		return true
	}
	return false
}

// Priority derived from the category.
func (c IncomingCategory) Priority() IncomingPriority {
	switch c {
	case IncomingShortlistInterview:
		return PriorityHigh
	case IncomingRecruiterOutreach:
		return PriorityNormal
	}
	return PriorityLow
}

type IncomingPriority string

const (
	PriorityHigh   IncomingPriority = "HIGH"
	PriorityNormal IncomingPriority = "NORMAL"
	PriorityLow    IncomingPriority = "LOW"
)

var (
	ErrIncomingEmailNotFound  = errors.New("incoming email not found")
	ErrIncomingEmailDuplicate = errors.New("incoming email already ingested")
)

type IncomingEmail struct {
	ID              string           `json:"id" bson:"_id"`
	OwnerID         string           `json:"-" bson:"owner_id"`
	MessageID       string           `json:"messageId" bson:"message_id"`
	SenderEmail     string           `json:"senderEmail" bson:"sender_email"`
	SenderName      string           `json:"senderName,omitempty" bson:"sender_name,omitempty"`
	Subject         string           `json:"subject" bson:"subject"`
	Body            string           `json:"body" bson:"body"`
	Category        IncomingCategory `json:"category" bson:"category"`
	Priority        IncomingPriority `json:"priority" bson:"priority"`
	IsRead          bool             `json:"isRead" bson:"is_read"`
	IsProcessed     bool             `json:"isProcessed" bson:"is_processed"`
	ReceivedAt      time.Time        `json:"receivedAt" bson:"received_at"`
	ConfidenceScore float64          `json:"confidenceScore" bson:"confidence_score"`
	CreatedAt       time.Time        `json:"createdAt" bson:"created_at"`
}

func NewIncomingEmail(ownerID, messageID, sender, subject, body string) *IncomingEmail {
	now := time.Now()
	return &IncomingEmail{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		MessageID:   messageID,
		SenderEmail: sender,
		Subject:     subject,
		Body:        body,
		Category:    IncomingUnknown,
		Priority:    PriorityLow,
		ReceivedAt:  now,
		CreatedAt:   now,
	}
}

type IncomingEmailRepository interface {
	Create(ctx context.Context, e *IncomingEmail) error
	FindByID(ctx context.Context, ownerID, id string) (*IncomingEmail, error)
	List(ctx context.Context, ownerID string, category IncomingCategory, page PageRequest) (*Page[*IncomingEmail], error)
	CountUnread(ctx context.Context, ownerID string, category IncomingCategory) (int64, error)
	SetRead(ctx context.Context, ownerID, id string, read bool) error
	SetProcessed(ctx context.Context, ownerID, id string, processed bool) error
	SetCategory(ctx context.Context, ownerID, id string, category IncomingCategory) error
}
