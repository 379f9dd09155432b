package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/entity"
	"github.com/xavierca1/ecold-outreach/internal/usecase"
)

const owner = "user-1"

type bulkFixture struct {
	templates   *MockTemplateRepository
	recruiters  *MockRecruiterRepository
	assignments *MockAssignmentRepository
	transport   *MockEmailTransport
	logs        *MockEmailLogRepository
	scheduled   *MockScheduledEmailRepository
	ledger      *MockEmailSentMarker
	uc          *usecase.BulkSendUseCase
}

func newBulkFixture() *bulkFixture {
	f := &bulkFixture{
		templates:   new(MockTemplateRepository),
		recruiters:  new(MockRecruiterRepository),
		assignments: new(MockAssignmentRepository),
		transport:   new(MockEmailTransport),
		logs:        new(MockEmailLogRepository),
		scheduled:   new(MockScheduledEmailRepository),
		ledger:      new(MockEmailSentMarker),
	}
	f.logs.On("Create", mock.Anything, mock.Anything).Return(nil)
	dispatcher := usecase.NewDispatcher(f.transport, f.logs, f.scheduled, time.Second, zap.NewNop())
	f.uc = usecase.NewBulkSendUseCase(f.templates, f.recruiters, f.assignments, nil, dispatcher, f.ledger, nil, nil, zap.NewNop())
	return f
}

func activeTemplate() *entity.Template {
	return &entity.Template{
		ID:       "tpl-1",
		OwnerID:  owner,
		Name:     "Intro",
		Subject:  "Hello {RecruiterName}",
		Body:     "Interested in {Role} at {Company}",
		Category: entity.CategoryOutreach,
		Status:   entity.TemplateActive,
	}
}

func recruiter(id, email string) *entity.Recruiter {
	return &entity.Recruiter{
		ID:            id,
		OwnerID:       owner,
		Email:         email,
		RecruiterName: "Name " + id,
		CompanyName:   "Company " + id,
		JobRole:       "Engineer",
		Status:        entity.RecruiterPending,
	}
}

func toAddress(addr string) interface{} {
	return mock.MatchedBy(func(msg entity.OutgoingEmail) bool { return msg.To == addr })
}

// TestBulkSendTalliesSuccessesAndFailures - a missing recruiter and a transport failure are counted without stopping the batch
func TestBulkSendTalliesSuccessesAndFailures(t *testing.T) {
	ctx := context.Background()
	f := newBulkFixture()

	f.templates.On("FindByID", ctx, owner, "tpl-1").Return(activeTemplate(), nil)
	for _, id := range []string{"r1", "r2", "r3"} {
		f.recruiters.On("FindByID", ctx, owner, id).Return(recruiter(id, id+"@example.com"), nil)
		f.assignments.On("FindActive", ctx, owner, id, "tpl-1").
			Return(&entity.Assignment{ID: "a-" + id, RecruiterID: id, TemplateID: "tpl-1", Status: entity.AssignmentActive}, nil)
	}
	f.recruiters.On("FindByID", ctx, owner, "ghost").Return(nil, entity.ErrRecruiterNotFound)

	f.transport.On("Send", mock.Anything, toAddress("r1@example.com")).Return("msg-1", nil)
	f.transport.On("Send", mock.Anything, toAddress("r2@example.com")).Return("msg-2", nil)
	f.transport.On("Send", mock.Anything, toAddress("r3@example.com")).Return("", errors.New("smtp: 550 mailbox unavailable"))
	f.ledger.On("MarkEmailSent", ctx, owner, mock.Anything).Return(nil)

	summary, err := f.uc.Execute(ctx, owner, usecase.BulkSendInput{
		TemplateID: "tpl-1",
		Cohort:     usecase.Cohort{RecruiterIDs: []string{"r1", "r2", "ghost", "r3"}},
	})

	require.NoError(t, err)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.SuccessCount)
	assert.Equal(t, 2, summary.FailureCount)
	assert.Equal(t, summary.Total, summary.SuccessCount+summary.FailureCount)
	assert.False(t, summary.Scheduled)
	require.Len(t, summary.Failures, 2)
	assert.Equal(t, "ghost", summary.Failures[0].RecruiterID)
	assert.Equal(t, "recruiter not found", summary.Failures[0].Reason)
	assert.Equal(t, "r3", summary.Failures[1].RecruiterID)

	f.ledger.AssertNumberOfCalls(t, "MarkEmailSent", 2)
	f.ledger.AssertCalled(t, "MarkEmailSent", ctx, owner, "a-r1")
	f.ledger.AssertCalled(t, "MarkEmailSent", ctx, owner, "a-r2")
	f.ledger.AssertNotCalled(t, "MarkEmailSent", ctx, owner, "a-r3")
	f.logs.AssertNumberOfCalls(t, "Create", 3)
}

func TestBulkSendResolvesPlaceholdersPerRecipient(t *testing.T) {
	ctx := context.Background()
	f := newBulkFixture()

	f.templates.On("FindByID", ctx, owner, "tpl-1").Return(activeTemplate(), nil)
	f.recruiters.On("FindByID", ctx, owner, "r1").Return(recruiter("r1", "r1@example.com"), nil)
	f.assignments.On("FindActive", ctx, owner, "r1", "tpl-1").Return(nil, entity.ErrAssignmentNotFound)
	f.transport.On("Send", mock.Anything, entity.OutgoingEmail{
		To:      "r1@example.com",
		Subject: "Hello Name r1",
		Body:    "Interested in Engineer at Company r1",
	}).Return("msg-1", nil)

	summary, err := f.uc.Execute(ctx, owner, usecase.BulkSendInput{
		TemplateID: "tpl-1",
		Cohort:     usecase.Cohort{RecruiterIDs: []string{"r1"}},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, summary.SuccessCount)
	f.transport.AssertExpectations(t)
	f.ledger.AssertNotCalled(t, "MarkEmailSent", mock.Anything, mock.Anything, mock.Anything)
}

func TestBulkSendByDateRangeReadsWholeCohort(t *testing.T) {
	ctx := context.Background()
	f := newBulkFixture()

	start := time.Date(2024, 9, 16, 15, 0, 0, 0, time.UTC)
	end := time.Date(2024, 9, 22, 0, 0, 0, 0, time.UTC)
	from := time.Date(2024, 9, 16, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 9, 23, 0, 0, 0, 0, time.UTC)

	f.templates.On("FindByID", ctx, owner, "tpl-1").Return(activeTemplate(), nil)
	page := entity.NewPage([]*entity.Assignment{
		{ID: "a1", RecruiterID: "r1", TemplateID: "tpl-1", Status: entity.AssignmentActive},
		{ID: "a2", RecruiterID: "r2", TemplateID: "tpl-1", Status: entity.AssignmentActive},
	}, entity.PageRequest{Page: 0, Size: entity.MaxPageSize}, 2)
	f.assignments.On("ListActiveInRange", ctx, owner, "tpl-1", from, to, entity.PageRequest{Page: 0, Size: entity.MaxPageSize}).
		Return(page, nil).Once()
	f.recruiters.On("FindByID", ctx, owner, "r1").Return(recruiter("r1", "r1@example.com"), nil)
	f.recruiters.On("FindByID", ctx, owner, "r2").Return(recruiter("r2", ""), nil)
	f.transport.On("Send", mock.Anything, toAddress("r1@example.com")).Return("msg-1", nil)
	f.ledger.On("MarkEmailSent", ctx, owner, "a1").Return(nil)

	summary, err := f.uc.Execute(ctx, owner, usecase.BulkSendInput{
		TemplateID: "tpl-1",
		Cohort:     usecase.Cohort{Start: start, End: end},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.SuccessCount)
	assert.Equal(t, 1, summary.FailureCount)
	assert.Equal(t, "recipient has no email address", summary.Failures[0].Reason)
	f.assignments.AssertExpectations(t)
	f.ledger.AssertExpectations(t)
}

func TestBulkSendEmptyCohort(t *testing.T) {
	ctx := context.Background()
	f := newBulkFixture()

	day := time.Date(2024, 9, 16, 0, 0, 0, 0, time.UTC)
	f.templates.On("FindByID", ctx, owner, "tpl-1").Return(activeTemplate(), nil)
	f.assignments.On("ListActiveInRange", ctx, owner, "tpl-1", mock.Anything, mock.Anything, mock.Anything).
		Return(entity.NewPage([]*entity.Assignment{}, entity.PageRequest{Size: entity.MaxPageSize}, 0), nil)

	summary, err := f.uc.Execute(ctx, owner, usecase.BulkSendInput{
		TemplateID: "tpl-1",
		Cohort:     usecase.Cohort{Start: day, End: day},
	})

	require.NoError(t, err)
	assert.Equal(t, usecase.BulkSendSummary{}, *summary)
	f.transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestBulkSendEmptyRecruiterList(t *testing.T) {
	ctx := context.Background()
	f := newBulkFixture()
	f.templates.On("FindByID", ctx, owner, "tpl-1").Return(activeTemplate(), nil)

	summary, err := f.uc.Execute(ctx, owner, usecase.BulkSendInput{
		TemplateID: "tpl-1",
		Cohort:     usecase.Cohort{RecruiterIDs: []string{}},
	})

	require.NoError(t, err)
	assert.Equal(t, usecase.BulkSendSummary{}, *summary)
	f.transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	f.recruiters.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestBulkSendRequiresCohortSelector(t *testing.T) {
	ctx := context.Background()
	f := newBulkFixture()
	f.templates.On("FindByID", ctx, owner, "tpl-1").Return(activeTemplate(), nil)

	_, err := f.uc.Execute(ctx, owner, usecase.BulkSendInput{TemplateID: "tpl-1"})

	assert.True(t, usecase.IsDomainError(err))
}

func TestBulkSendRejectsInactiveTemplate(t *testing.T) {
	ctx := context.Background()
	f := newBulkFixture()

	tpl := activeTemplate()
	tpl.Status = entity.TemplateDraft
	f.templates.On("FindByID", ctx, owner, "tpl-1").Return(tpl, nil)

	_, err := f.uc.Execute(ctx, owner, usecase.BulkSendInput{
		TemplateID: "tpl-1",
		Cohort:     usecase.Cohort{RecruiterIDs: []string{"r1"}},
	})

	var de *usecase.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, usecase.CodeValidation, de.Code)
}

func TestBulkSendRejectsInvalidOverride(t *testing.T) {
	ctx := context.Background()
	f := newBulkFixture()
	f.templates.On("FindByID", ctx, owner, "tpl-1").Return(activeTemplate(), nil)

	_, err := f.uc.Execute(ctx, owner, usecase.BulkSendInput{
		TemplateID: "tpl-1",
		Body:       "Hi {Unknown}",
		Cohort:     usecase.Cohort{RecruiterIDs: []string{"r1"}},
	})

	var de *usecase.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "body", de.Fields[0].Field)
	f.recruiters.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestBulkSendScheduledSkipsLedger(t *testing.T) {
	ctx := context.Background()
	f := newBulkFixture()

	at := time.Now().Add(2 * time.Hour)
	f.templates.On("FindByID", ctx, owner, "tpl-1").Return(activeTemplate(), nil)
	f.recruiters.On("FindByID", ctx, owner, "r1").Return(recruiter("r1", "r1@example.com"), nil)
	f.assignments.On("FindActive", ctx, owner, "r1", "tpl-1").
		Return(&entity.Assignment{ID: "a1", RecruiterID: "r1", Status: entity.AssignmentActive}, nil)
	f.scheduled.On("Create", ctx, mock.MatchedBy(func(s *entity.ScheduledEmail) bool {
		return s.AssignmentID == "a1" && s.ScheduleTime.Equal(at) && s.Status == entity.EmailScheduled && !s.Progress
	})).Return(nil)

	summary, err := f.uc.Execute(ctx, owner, usecase.BulkSendInput{
		TemplateID:   "tpl-1",
		Cohort:       usecase.Cohort{RecruiterIDs: []string{"r1"}},
		ScheduleTime: &at,
	})

	require.NoError(t, err)
	assert.True(t, summary.Scheduled)
	assert.Equal(t, 1, summary.SuccessCount)
	f.scheduled.AssertExpectations(t)
	f.transport.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "MarkEmailSent", mock.Anything, mock.Anything, mock.Anything)
}
