package usecase

import (
	"time"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

type TemplateInput struct {
	Name               string                  `json:"name"`
	Subject            string                  `json:"subject"`
	Body               string                  `json:"body"`
	Category           entity.TemplateCategory `json:"category"`
	Status             entity.TemplateStatus   `json:"status"`
	Tags               []string                `json:"tags"`
	FollowUpTemplateID string                  `json:"followUpTemplateId"`
	IsDefault          bool                    `json:"isDefault"`
}

type TemplateStats struct {
	Total           int64   `json:"total"`
	Active          int64   `json:"active"`
	Draft           int64   `json:"draft"`
	Archived        int64   `json:"archived"`
	TotalUsage      int64   `json:"totalUsage"`
	TotalEmailsSent int64   `json:"totalEmailsSent"`
	AvgResponseRate float64 `json:"avgResponseRate"`
}

type RecruiterInput struct {
	Email           string                 `json:"email"`
	RecruiterName   string                 `json:"recruiterName"`
	CompanyName     string                 `json:"companyName"`
	JobRole         string                 `json:"jobRole"`
	LinkedinProfile string                 `json:"linkedinProfile"`
	Notes           string                 `json:"notes"`
	Status          entity.RecruiterStatus `json:"status"`
}

type BulkStatusOutput struct {
	Updated int               `json:"updated"`
	Failed  map[string]string `json:"failed,omitempty"`
}

type ImportOutput struct {
	Imported      int      `json:"imported"`
	Skipped       int      `json:"skipped"`
	AssignedCount int      `json:"assignedCount"`
	Errors        []string `json:"errors"`
}

type BulkAssignOutput struct {
	Assigned []*entity.Assignment `json:"assigned"`
	Errors   map[string]string    `json:"errors,omitempty"`
}

type WeekSummary struct {
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	RecruitersCount int64  `json:"recruitersCount"`
	DateRangeLabel  string `json:"dateRangeLabel"`
}

// Cohort selects bulk send recipients: either a date range of assignments or
// an explicit list of recruiter ids.
type Cohort struct {
	Start        time.Time
	End          time.Time
	RecruiterIDs []string
}

type BulkSendInput struct {
	TemplateID string
	Cohort     Cohort
	// Subject and Body override the template's text when set.
	Subject      string
	Body         string
	IsHTML       bool
	ScheduleTime *time.Time
}

type BulkSendFailure struct {
	RecruiterID  string `json:"recruiterId,omitempty"`
	AssignmentID string `json:"assignmentId,omitempty"`
	Email        string `json:"email,omitempty"`
	Reason       string `json:"reason"`
}

type BulkSendSummary struct {
	SuccessCount int               `json:"successCount"`
	FailureCount int               `json:"failureCount"`
	Total        int               `json:"total"`
	Scheduled    bool              `json:"scheduled"`
	Failures     []BulkSendFailure `json:"failures,omitempty"`
}

type SendEmailInput struct {
	To           string     `json:"to"`
	Subject      string     `json:"subject"`
	Body         string     `json:"body"`
	IsHTML       bool       `json:"isHtml"`
	ScheduleTime *time.Time `json:"scheduleTime"`
}

type SendTemplateInput struct {
	TemplateID   string     `json:"templateId"`
	RecruiterID  string     `json:"recruiterId"`
	AssignmentID string     `json:"assignmentId"`
	IsHTML       bool       `json:"isHtml"`
	ScheduleTime *time.Time `json:"scheduleTime"`
}

type EmailResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	MessageID   string `json:"messageId,omitempty"`
	Scheduled   bool   `json:"scheduled"`
	ErrorCode   string `json:"errorCode,omitempty"`
	ErrorDetail string `json:"errorDetail,omitempty"`
}

type IngestInput struct {
	MessageID   string     `json:"messageId"`
	SenderEmail string     `json:"senderEmail"`
	SenderName  string     `json:"senderName"`
	Subject     string     `json:"subject"`
	Body        string     `json:"body"`
	ReceivedAt  *time.Time `json:"receivedAt"`
}

type RegisterInput struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthOutput struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}
