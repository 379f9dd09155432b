package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/ecold-outreach/internal/entity"
	"github.com/xavierca1/ecold-outreach/internal/usecase"
)

type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) Create(ctx context.Context, t *entity.Template) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTemplateRepository) Update(ctx context.Context, t *entity.Template) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTemplateRepository) Delete(ctx context.Context, ownerID, id string) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockTemplateRepository) FindByID(ctx context.Context, ownerID, id string) (*entity.Template, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Template), args.Error(1)
}

func (m *MockTemplateRepository) FindByName(ctx context.Context, ownerID, name string) (*entity.Template, error) {
	args := m.Called(ctx, ownerID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Template), args.Error(1)
}

func (m *MockTemplateRepository) List(ctx context.Context, ownerID string, filter entity.TemplateFilter) ([]*entity.Template, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Template), args.Error(1)
}

func (m *MockTemplateRepository) DemoteActive(ctx context.Context, ownerID string, category entity.TemplateCategory, exceptID string) error {
	return m.Called(ctx, ownerID, category, exceptID).Error(0)
}

func (m *MockTemplateRepository) IncrementUsage(ctx context.Context, ownerID, id string, at time.Time) error {
	return m.Called(ctx, ownerID, id, at).Error(0)
}

func (m *MockTemplateRepository) IncrementEmailsSent(ctx context.Context, ownerID, id string, n int64) error {
	return m.Called(ctx, ownerID, id, n).Error(0)
}

type MockRecruiterRepository struct {
	mock.Mock
}

func (m *MockRecruiterRepository) Create(ctx context.Context, r *entity.Recruiter) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRecruiterRepository) Update(ctx context.Context, r *entity.Recruiter) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRecruiterRepository) Delete(ctx context.Context, ownerID, id string) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockRecruiterRepository) DeleteMany(ctx context.Context, ownerID string, ids []string) (int64, error) {
	args := m.Called(ctx, ownerID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecruiterRepository) FindByID(ctx context.Context, ownerID, id string) (*entity.Recruiter, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Recruiter), args.Error(1)
}

func (m *MockRecruiterRepository) FindByEmail(ctx context.Context, ownerID, email string) (*entity.Recruiter, error) {
	args := m.Called(ctx, ownerID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Recruiter), args.Error(1)
}

func (m *MockRecruiterRepository) List(ctx context.Context, ownerID string, filter entity.RecruiterFilter, page entity.PageRequest) (*entity.Page[*entity.Recruiter], error) {
	args := m.Called(ctx, ownerID, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[*entity.Recruiter]), args.Error(1)
}

func (m *MockRecruiterRepository) ListUncontacted(ctx context.Context, ownerID string) ([]*entity.Recruiter, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Recruiter), args.Error(1)
}

func (m *MockRecruiterRepository) CountByStatus(ctx context.Context, ownerID string) (map[entity.RecruiterStatus]int64, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[entity.RecruiterStatus]int64), args.Error(1)
}

type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) Create(ctx context.Context, a *entity.Assignment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAssignmentRepository) Delete(ctx context.Context, ownerID, id string) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

func (m *MockAssignmentRepository) DeleteMany(ctx context.Context, ownerID string, ids []string) (int64, error) {
	args := m.Called(ctx, ownerID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAssignmentRepository) DeleteByRecruiters(ctx context.Context, ownerID string, recruiterIDs []string) (int64, error) {
	args := m.Called(ctx, ownerID, recruiterIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAssignmentRepository) FindByID(ctx context.Context, ownerID, id string) (*entity.Assignment, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) FindActive(ctx context.Context, ownerID, recruiterID, templateID string) (*entity.Assignment, error) {
	args := m.Called(ctx, ownerID, recruiterID, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) ListByTemplate(ctx context.Context, ownerID, templateID string, page entity.PageRequest) (*entity.Page[*entity.Assignment], error) {
	args := m.Called(ctx, ownerID, templateID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[*entity.Assignment]), args.Error(1)
}

func (m *MockAssignmentRepository) ListActiveInRange(ctx context.Context, ownerID, templateID string, from, to time.Time, page entity.PageRequest) (*entity.Page[*entity.Assignment], error) {
	args := m.Called(ctx, ownerID, templateID, from, to, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[*entity.Assignment]), args.Error(1)
}

func (m *MockAssignmentRepository) ListActiveByTemplate(ctx context.Context, ownerID, templateID string) ([]*entity.Assignment, error) {
	args := m.Called(ctx, ownerID, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Assignment), args.Error(1)
}

func (m *MockAssignmentRepository) UpdateStatus(ctx context.Context, ownerID, id string, status entity.AssignmentStatus) error {
	return m.Called(ctx, ownerID, id, status).Error(0)
}

func (m *MockAssignmentRepository) IncrementEmailsSent(ctx context.Context, ownerID, id string, at time.Time) error {
	return m.Called(ctx, ownerID, id, at).Error(0)
}

type MockEmailLogRepository struct {
	mock.Mock
}

func (m *MockEmailLogRepository) Create(ctx context.Context, l *entity.EmailLog) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockEmailLogRepository) List(ctx context.Context, ownerID string, page entity.PageRequest) (*entity.Page[*entity.EmailLog], error) {
	args := m.Called(ctx, ownerID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[*entity.EmailLog]), args.Error(1)
}

type MockScheduledEmailRepository struct {
	mock.Mock
}

func (m *MockScheduledEmailRepository) Create(ctx context.Context, s *entity.ScheduledEmail) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockScheduledEmailRepository) FindByID(ctx context.Context, ownerID, id string) (*entity.ScheduledEmail, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ScheduledEmail), args.Error(1)
}

func (m *MockScheduledEmailRepository) List(ctx context.Context, ownerID string, page entity.PageRequest) (*entity.Page[*entity.ScheduledEmail], error) {
	args := m.Called(ctx, ownerID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[*entity.ScheduledEmail]), args.Error(1)
}

func (m *MockScheduledEmailRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*entity.ScheduledEmail, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.ScheduledEmail), args.Error(1)
}

func (m *MockScheduledEmailRepository) MarkSent(ctx context.Context, id, messageID string, at time.Time) error {
	return m.Called(ctx, id, messageID, at).Error(0)
}

func (m *MockScheduledEmailRepository) MarkFailed(ctx context.Context, id, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

func (m *MockScheduledEmailRepository) Cancel(ctx context.Context, ownerID, id string) error {
	return m.Called(ctx, ownerID, id).Error(0)
}

type MockIncomingEmailRepository struct {
	mock.Mock
}

func (m *MockIncomingEmailRepository) Create(ctx context.Context, e *entity.IncomingEmail) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockIncomingEmailRepository) FindByID(ctx context.Context, ownerID, id string) (*entity.IncomingEmail, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.IncomingEmail), args.Error(1)
}

func (m *MockIncomingEmailRepository) List(ctx context.Context, ownerID string, category entity.IncomingCategory, page entity.PageRequest) (*entity.Page[*entity.IncomingEmail], error) {
	args := m.Called(ctx, ownerID, category, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Page[*entity.IncomingEmail]), args.Error(1)
}

func (m *MockIncomingEmailRepository) CountUnread(ctx context.Context, ownerID string, category entity.IncomingCategory) (int64, error) {
	args := m.Called(ctx, ownerID, category)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockIncomingEmailRepository) SetRead(ctx context.Context, ownerID, id string, read bool) error {
	return m.Called(ctx, ownerID, id, read).Error(0)
}

func (m *MockIncomingEmailRepository) SetProcessed(ctx context.Context, ownerID, id string, processed bool) error {
	return m.Called(ctx, ownerID, id, processed).Error(0)
}

func (m *MockIncomingEmailRepository) SetCategory(ctx context.Context, ownerID, id string, category entity.IncomingCategory) error {
	return m.Called(ctx, ownerID, id, category).Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *entity.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

type MockEmailTransport struct {
	mock.Mock
}

func (m *MockEmailTransport) Send(ctx context.Context, msg entity.OutgoingEmail) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

type MockEmailSentMarker struct {
	mock.Mock
}

func (m *MockEmailSentMarker) MarkEmailSent(ctx context.Context, ownerID, assignmentID string) error {
	return m.Called(ctx, ownerID, assignmentID).Error(0)
}

type MockFollowupMover struct {
	mock.Mock
}

func (m *MockFollowupMover) MoveToFollowup(ctx context.Context, ownerID, assignmentID string) (*entity.FollowupMove, error) {
	args := m.Called(ctx, ownerID, assignmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FollowupMove), args.Error(1)
}

type MockProgressionPublisher struct {
	mock.Mock
}

func (m *MockProgressionPublisher) PublishProgression(ctx context.Context, event entity.ProgressionEvent) error {
	return m.Called(ctx, event).Error(0)
}

type MockDeduper struct {
	mock.Mock
}

func (m *MockDeduper) AcquireOnce(ctx context.Context, scope, key string) bool {
	return m.Called(ctx, scope, key).Bool(0)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) GenerateToken(userID, email string) (string, error) {
	args := m.Called(userID, email)
	return args.String(0), args.Error(1)
}

type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Compare(hash, password string) error {
	return m.Called(hash, password).Error(0)
}

var _ usecase.EmailTransport = (*MockEmailTransport)(nil)
