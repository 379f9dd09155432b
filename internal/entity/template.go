package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TemplateCategory string

const (
	CategoryOutreach  TemplateCategory = "OUTREACH"
	CategoryFollowUp  TemplateCategory = "FOLLOW_UP"
	CategoryReferral  TemplateCategory = "REFERRAL"
	CategoryInterview TemplateCategory = "INTERVIEW"
	CategoryThankYou  TemplateCategory = "THANK_YOU"
)

func (c TemplateCategory) Valid() bool {
	switch c {
	case CategoryOutreach, CategoryFollowUp, CategoryReferral, CategoryInterview, CategoryThankYou:
		return true
	}
	return false
}

type TemplateStatus string

const (
	TemplateDraft    TemplateStatus = "DRAFT"
	TemplateActive   TemplateStatus = "ACTIVE"
	TemplateArchived TemplateStatus = "ARCHIVED"
)

func (s TemplateStatus) Valid() bool {
	return s == TemplateDraft || s == TemplateActive || s == TemplateArchived
}

var (
	ErrTemplateNotFound   = errors.New("template not found")
	ErrTemplateNameExists = errors.New("template name already exists")
)

// Template is an outreach message with {Placeholder} tokens in subject and body.
type Template struct {
	ID                 string           `json:"id" bson:"_id"`
	OwnerID            string           `json:"-" bson:"owner_id"`
	Name               string           `json:"name" bson:"name"`
	Subject            string           `json:"subject" bson:"subject"`
	Body               string           `json:"body" bson:"body"`
	Category           TemplateCategory `json:"category" bson:"category"`
	Status             TemplateStatus   `json:"status" bson:"status"`
	UsageCount         int64            `json:"usageCount" bson:"usage_count"`
	EmailsSent         int64            `json:"emailsSent" bson:"emails_sent"`
	ResponseRate       float64          `json:"responseRate" bson:"response_rate"`
	Tags               []string         `json:"tags" bson:"tags"`
	IsDefault          bool             `json:"isDefault" bson:"is_default"`
	FollowUpTemplateID string           `json:"followUpTemplateId,omitempty" bson:"follow_up_template_id,omitempty"`
	LastUsedAt         *time.Time       `json:"lastUsed,omitempty" bson:"last_used_at,omitempty"`
	CreatedAt          time.Time        `json:"createdAt" bson:"created_at"`
	UpdatedAt          time.Time        `json:"updatedAt" bson:"updated_at"`
}

func NewTemplate(ownerID, name, subject, body string, category TemplateCategory) *Template {
	now := time.Now()
	return &Template{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      strings.TrimSpace(name),
		Subject:   subject,
		Body:      body,
		Category:  category,
		Status:    TemplateDraft,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Copy returns a DRAFT clone with fresh id and zeroed counters.
func (t *Template) Copy() *Template {
	c := NewTemplate(t.OwnerID, t.Name+" (Copy)", t.Subject, t.Body, t.Category)
	c.Tags = append([]string{}, t.Tags...)
	c.FollowUpTemplateID = t.FollowUpTemplateID
	return c
}

type TemplateFilter struct {
	Status   TemplateStatus
	Category TemplateCategory
	Search   string
}

type TemplateRepository interface {
	Create(ctx context.Context, t *Template) error
	Update(ctx context.Context, t *Template) error
	Delete(ctx context.Context, ownerID, id string) error
	FindByID(ctx context.Context, ownerID, id string) (*Template, error)
	FindByName(ctx context.Context, ownerID, name string) (*Template, error)
	List(ctx context.Context, ownerID string, filter TemplateFilter) ([]*Template, error)
	// DemoteActive moves every other ACTIVE template of the category back to DRAFT.
	DemoteActive(ctx context.Context, ownerID string, category TemplateCategory, exceptID string) error
	IncrementUsage(ctx context.Context, ownerID, id string, at time.Time) error
	IncrementEmailsSent(ctx context.Context, ownerID, id string, n int64) error
}
