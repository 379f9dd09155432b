package handlers_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/ecold-outreach/internal/entity"
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
