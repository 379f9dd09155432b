package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type RecruiterStatus string

const (
	RecruiterPending   RecruiterStatus = "PENDING"
	RecruiterContacted RecruiterStatus = "CONTACTED"
	RecruiterResponded RecruiterStatus = "RESPONDED"
	RecruiterRejected  RecruiterStatus = "REJECTED"
	RecruiterHired     RecruiterStatus = "HIRED"
)

func (s RecruiterStatus) Valid() bool {
	switch s {
	case RecruiterPending, RecruiterContacted, RecruiterResponded, RecruiterRejected, RecruiterHired:
		return true
	}
	return false
}

var (
	ErrRecruiterNotFound    = errors.New("recruiter not found")
	ErrRecruiterEmailExists = errors.New("recruiter with this email already exists")
)

type Recruiter struct {
	ID              string          `json:"id" bson:"_id"`
	OwnerID         string          `json:"-" bson:"owner_id"`
	Email           string          `json:"email" bson:"email"`
	RecruiterName   string          `json:"recruiterName" bson:"recruiter_name"`
	CompanyName     string          `json:"companyName" bson:"company_name"`
	JobRole         string          `json:"jobRole" bson:"job_role"`
	LinkedinProfile string          `json:"linkedinProfile,omitempty" bson:"linkedin_profile,omitempty"`
	Notes           string          `json:"notes,omitempty" bson:"notes,omitempty"`
	Status          RecruiterStatus `json:"status" bson:"status"`
	LastContactedAt *time.Time      `json:"lastContactedAt,omitempty" bson:"last_contacted_at,omitempty"`
	CreatedAt       time.Time       `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updated_at"`
}

func NewRecruiter(ownerID, email, name, company, role string) *Recruiter {
	now := time.Now()
	return &Recruiter{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		Email:         strings.ToLower(strings.TrimSpace(email)),
		RecruiterName: strings.TrimSpace(name),
		CompanyName:   strings.TrimSpace(company),
		JobRole:       strings.TrimSpace(role),
		Status:        RecruiterPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// MarkContacted is idempotent on status; the timestamp always moves to now.
func (r *Recruiter) MarkContacted(now time.Time) {
	r.Status = RecruiterContacted
	r.LastContactedAt = &now
	r.UpdatedAt = now
}

type RecruiterFilter struct {
	Status  RecruiterStatus
	Search  string
	Company string
}

type RecruiterStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Contacted int64 `json:"contacted"`
	Responded int64 `json:"responded"`
	Rejected  int64 `json:"rejected"`
	Hired     int64 `json:"hired"`
}

type RecruiterRepository interface {
	Create(ctx context.Context, r *Recruiter) error
	Update(ctx context.Context, r *Recruiter) error
	Delete(ctx context.Context, ownerID, id string) error
	DeleteMany(ctx context.Context, ownerID string, ids []string) (int64, error)
	FindByID(ctx context.Context, ownerID, id string) (*Recruiter, error)
	FindByEmail(ctx context.Context, ownerID, email string) (*Recruiter, error)
	List(ctx context.Context, ownerID string, filter RecruiterFilter, page PageRequest) (*Page[*Recruiter], error)
	ListUncontacted(ctx context.Context, ownerID string) ([]*Recruiter, error)
	CountByStatus(ctx context.Context, ownerID string) (map[RecruiterStatus]int64, error)
}
