package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/entity"
	"github.com/xavierca1/ecold-outreach/internal/usecase"
)

type stubAssigner struct {
	calls []string
}

func (s *stubAssigner) BulkAssign(_ context.Context, _ string, ids []string, _ string) (*usecase.BulkAssignOutput, error) {
	s.calls = append(s.calls, ids...)
	out := &usecase.BulkAssignOutput{}
	for _, id := range ids {
		out.Assigned = append(out.Assigned, &entity.Assignment{RecruiterID: id})
	}
	return out, nil
}

func TestMarkAsContactedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRecruiterRepository)
	uc := usecase.NewRecruiterUseCase(repo, nil, nil, zap.NewNop())

	r := recruiter("r1", "r1@example.com")
	repo.On("FindByID", ctx, owner, "r1").Return(r, nil)
	repo.On("Update", ctx, r).Return(nil)

	first := time.Date(2024, 9, 16, 9, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	uc.Now = func() time.Time { return first }
	got, err := uc.MarkAsContacted(ctx, owner, "r1")
	require.NoError(t, err)
	assert.Equal(t, entity.RecruiterContacted, got.Status)
	assert.Equal(t, first, *got.LastContactedAt)

	uc.Now = func() time.Time { return second }
	got, err = uc.MarkAsContacted(ctx, owner, "r1")
	require.NoError(t, err)
	assert.Equal(t, entity.RecruiterContacted, got.Status)
	assert.Equal(t, second, *got.LastContactedAt)
}

func TestCreateRecruiterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRecruiterRepository)
	uc := usecase.NewRecruiterUseCase(repo, nil, nil, zap.NewNop())
	repo.On("Create", ctx, mock.AnythingOfType("*entity.Recruiter")).Return(entity.ErrRecruiterEmailExists)

	_, err := uc.Create(ctx, owner, usecase.RecruiterInput{
		Email: "Jane@Example.com", RecruiterName: "Jane", CompanyName: "Acme", JobRole: "SRE",
	})

	var de *usecase.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "email", de.Fields[0].Field)
}

func TestCreateRecruiterNormalizesEmail(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRecruiterRepository)
	uc := usecase.NewRecruiterUseCase(repo, nil, nil, zap.NewNop())
	repo.On("Create", ctx, mock.AnythingOfType("*entity.Recruiter")).Return(nil)

	r, err := uc.Create(ctx, owner, usecase.RecruiterInput{
		Email: " Jane@Example.com ", RecruiterName: "Jane", CompanyName: "Acme", JobRole: "SRE",
	})

	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", r.Email)
	assert.Equal(t, entity.RecruiterPending, r.Status)
	assert.Nil(t, r.LastContactedAt)
}

func TestBulkUpdateStatusIsPerRecruiter(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRecruiterRepository)
	uc := usecase.NewRecruiterUseCase(repo, nil, nil, zap.NewNop())

	repo.On("FindByID", ctx, owner, "r1").Return(recruiter("r1", "a@example.com"), nil)
	repo.On("FindByID", ctx, owner, "r2").Return(nil, entity.ErrRecruiterNotFound)
	repo.On("Update", ctx, mock.AnythingOfType("*entity.Recruiter")).Return(nil)

	out, err := uc.BulkUpdateStatus(ctx, owner, []string{"r1", "r2"}, entity.RecruiterResponded)

	require.NoError(t, err)
	assert.Equal(t, 1, out.Updated)
	assert.Contains(t, out.Failed, "r2")
}

func TestDeleteRecruiterDropsAssignments(t *testing.T) {
	ctx := context.Background()
	repo, assignments := new(MockRecruiterRepository), new(MockAssignmentRepository)
	uc := usecase.NewRecruiterUseCase(repo, assignments, nil, zap.NewNop())

	repo.On("DeleteMany", ctx, owner, []string{"r1", "r2"}).Return(int64(2), nil)
	assignments.On("DeleteByRecruiters", ctx, owner, []string{"r1", "r2"}).Return(int64(3), errors.New("ignored"))

	n, err := uc.BulkDelete(ctx, owner, []string{"r1", "r2"})

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assignments.AssertExpectations(t)
}

func TestRecruiterStatsTotals(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRecruiterRepository)
	uc := usecase.NewRecruiterUseCase(repo, nil, nil, zap.NewNop())
	repo.On("CountByStatus", ctx, owner).Return(map[entity.RecruiterStatus]int64{
		entity.RecruiterPending:   4,
		entity.RecruiterContacted: 3,
		entity.RecruiterHired:     1,
	}, nil)

	stats, err := uc.Stats(ctx, owner)

	require.NoError(t, err)
	assert.Equal(t, entity.RecruiterStats{Total: 8, Pending: 4, Contacted: 3, Hired: 1}, *stats)
}

func TestImportCSV(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRecruiterRepository)
	assigner := &stubAssigner{}
	uc := usecase.NewRecruiterUseCase(repo, nil, assigner, zap.NewNop())

	repo.On("Create", ctx, mock.MatchedBy(func(r *entity.Recruiter) bool { return r.Email == "taken@acme.io" })).
		Return(entity.ErrRecruiterEmailExists)
	repo.On("Create", ctx, mock.AnythingOfType("*entity.Recruiter")).Return(nil)

	csv := "\ufeffEmail,Name,Company,Role,LinkedIn\n" +
		"jane@acme.io,Jane,Acme,SRE,https://linkedin.com/in/jane\n" +
		"not-an-email,Bob,Acme,SRE,\n" +
		"JANE@acme.io,Jane Again,Acme,SRE,\n" +
		",,,,\n" +
		"taken@acme.io,Tom,Acme,SRE,\n" +
		"li@globex.io,Li,Globex,Backend,\n"

	out, err := uc.ImportCSV(ctx, owner, strings.NewReader(csv), "tpl-1")

	require.NoError(t, err)
	assert.Equal(t, 2, out.Imported)
	assert.Equal(t, 3, out.Skipped)
	assert.Equal(t, 2, out.AssignedCount)
	require.Len(t, out.Errors, 3)
	assert.True(t, strings.HasPrefix(out.Errors[0], "Line 3: email"))
	assert.Equal(t, "Line 4: duplicate email JANE@acme.io in file", out.Errors[1])
	assert.True(t, strings.HasPrefix(out.Errors[2], "Line 6: "))
	assert.Len(t, assigner.calls, 2)
}

func TestImportCSVMissingColumn(t *testing.T) {
	uc := usecase.NewRecruiterUseCase(new(MockRecruiterRepository), nil, nil, zap.NewNop())

	_, err := uc.ImportCSV(context.Background(), owner, strings.NewReader("email,name\njane@acme.io,Jane\n"), "")

	var de *usecase.DomainError
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Message, "missing required column companyName")
}

func TestImportCSVEmptyFile(t *testing.T) {
	uc := usecase.NewRecruiterUseCase(new(MockRecruiterRepository), nil, nil, zap.NewNop())

	_, err := uc.ImportCSV(context.Background(), owner, strings.NewReader(""), "")

	assert.True(t, usecase.IsDomainError(err))
}
