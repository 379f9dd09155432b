package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type AssignmentStatus string

const (
	AssignmentActive          AssignmentStatus = "ACTIVE"
	AssignmentCompleted       AssignmentStatus = "COMPLETED"
	AssignmentMovedToFollowup AssignmentStatus = "MOVED_TO_FOLLOWUP"
	AssignmentArchived        AssignmentStatus = "ARCHIVED"
)

func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentActive, AssignmentCompleted, AssignmentMovedToFollowup, AssignmentArchived:
		return true
	}
	return false
}

// Terminal statuses never transition again.
func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentMovedToFollowup || s == AssignmentArchived
}

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrInvalidTransition  = errors.New("invalid assignment status transition")
)

// Assignment binds one recruiter to one template for the week it was assigned in.
type Assignment struct {
	ID              string           `json:"id" bson:"_id"`
	OwnerID         string           `json:"-" bson:"owner_id"`
	RecruiterID     string           `json:"recruiterId" bson:"recruiter_id"`
	TemplateID      string           `json:"templateId" bson:"template_id"`
	WeekAssigned    int              `json:"weekAssigned" bson:"week_assigned"`
	YearAssigned    int              `json:"yearAssigned" bson:"year_assigned"`
	AssignedAt      time.Time        `json:"assignedAt" bson:"assigned_at"`
	Status          AssignmentStatus `json:"assignmentStatus" bson:"assignment_status"`
	EmailsSent      int64            `json:"emailsSent" bson:"emails_sent"`
	LastEmailSentAt *time.Time       `json:"lastEmailSentAt,omitempty" bson:"last_email_sent_at,omitempty"`
	CreatedAt       time.Time        `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time        `json:"updatedAt" bson:"updated_at"`

	// Populated on reads that join the recruiter document.
	Recruiter *Recruiter `json:"recruiter,omitempty" bson:"-"`
}

func NewAssignment(ownerID, recruiterID, templateID string, now time.Time) *Assignment {
	year, week := now.ISOWeek()
	return &Assignment{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		RecruiterID:  recruiterID,
		TemplateID:   templateID,
		WeekAssigned: week,
		YearAssigned: year,
		AssignedAt:   now,
		Status:       AssignmentActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CanTransition reports whether a manual status change is allowed.
// MOVED_TO_FOLLOWUP is only reached through MoveToFollowup.
func (a *Assignment) CanTransition(to AssignmentStatus) bool {
	if a.Status.Terminal() {
		return false
	}
	switch to {
	case AssignmentCompleted:
		return a.Status == AssignmentActive
	case AssignmentArchived:
		return true
	}
	return false
}

// FollowupMove is the outcome of advancing an assignment. Followup is nil when
// the owner has no follow-up template to move to.
type FollowupMove struct {
	Previous *Assignment `json:"previous"`
	Followup *Assignment `json:"followup,omitempty"`
}

// ProgressionEvent asks for an assignment to be advanced after a successful send.
type ProgressionEvent struct {
	OwnerID      string    `json:"owner_id"`
	AssignmentID string    `json:"assignment_id"`
	TemplateID   string    `json:"template_id,omitempty"`
	RecruiterID  string    `json:"recruiter_id,omitempty"`
	SentAt       time.Time `json:"sent_at"`
}

type AssignmentRepository interface {
	Create(ctx context.Context, a *Assignment) error
	Delete(ctx context.Context, ownerID, id string) error
	DeleteMany(ctx context.Context, ownerID string, ids []string) (int64, error)
	DeleteByRecruiters(ctx context.Context, ownerID string, recruiterIDs []string) (int64, error)
	FindByID(ctx context.Context, ownerID, id string) (*Assignment, error)
	FindActive(ctx context.Context, ownerID, recruiterID, templateID string) (*Assignment, error)
	ListByTemplate(ctx context.Context, ownerID, templateID string, page PageRequest) (*Page[*Assignment], error)
	// ListActiveInRange returns ACTIVE assignments with assigned_at in [from, to).
	ListActiveInRange(ctx context.Context, ownerID, templateID string, from, to time.Time, page PageRequest) (*Page[*Assignment], error)
	ListActiveByTemplate(ctx context.Context, ownerID, templateID string) ([]*Assignment, error)
	UpdateStatus(ctx context.Context, ownerID, id string, status AssignmentStatus) error
	IncrementEmailsSent(ctx context.Context, ownerID, id string, at time.Time) error
}
