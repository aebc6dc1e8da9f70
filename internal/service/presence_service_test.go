package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"officehub/internal/domain"
	"officehub/internal/repository"
)

func setupPresence(t *testing.T) (PresenceService, *repository.MemoryEmployeesRepo, *repository.MemoryVisitorsRepo) {
	t.Helper()
	employees := repository.NewMemoryEmployeesRepo()
	presence := repository.NewMemoryPresenceRepo()
	visitors := repository.NewMemoryVisitorsRepo()
	svc := NewPresenceService(presence, employees, visitors, zap.NewNop())
	return svc, employees, visitors
}

func addEmployee(t *testing.T, repo *repository.MemoryEmployeesRepo, first, last string, userID int64, status string) *domain.Employee {
	t.Helper()
	e := &domain.Employee{
		FirstName: first,
		LastName:  last,
		Email:     first + "@example.com",
		Status:    status,
	}
	if userID > 0 {
		e.UserID = sql.NullInt64{Int64: userID, Valid: true}
	}
	created, err := repo.CreateEmployee(context.Background(), e)
	require.NoError(t, err)
	return created
}

func TestPresenceSummary_LatestEventWins(t *testing.T) {
	svc, employees, _ := setupPresence(t)
	ctx := context.Background()

	addEmployee(t, employees, "Alice", "Adams", 1, domain.EmployeeStatusActive)
	addEmployee(t, employees, "Bob", "Brown", 2, domain.EmployeeStatusActive)

	_, err := svc.RecordEvent(ctx, RecordEventRequest{UserID: 1, Status: "in"})
	require.NoError(t, err)
	_, err = svc.RecordEvent(ctx, RecordEventRequest{UserID: 2, Status: "in"})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.EmployeesInOffice)
	assert.Equal(t, 2, summary.TotalEmployees)

	// 新的 out 事件立即翻转在岗判定
	_, err = svc.RecordEvent(ctx, RecordEventRequest{UserID: 1, Status: "out"})
	require.NoError(t, err)

	summary, err = svc.Summary(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.EmployeesInOffice)
	assert.Equal(t, 2, summary.TotalEmployees)
}

func TestPresenceSummary_OnlyInCounts(t *testing.T) {
	svc, employees, _ := setupPresence(t)
	ctx := context.Background()

	addEmployee(t, employees, "Alice", "Adams", 1, domain.EmployeeStatusActive)
	addEmployee(t, employees, "Bob", "Brown", 2, domain.EmployeeStatusActive)
	addEmployee(t, employees, "Cara", "Clark", 3, domain.EmployeeStatusActive)

	// remote/meeting/break 都不算在办公室
	_, err := svc.RecordEvent(ctx, RecordEventRequest{UserID: 1, Status: "remote"})
	require.NoError(t, err)
	_, err = svc.RecordEvent(ctx, RecordEventRequest{UserID: 2, Status: "meeting"})
	require.NoError(t, err)
	_, err = svc.RecordEvent(ctx, RecordEventRequest{UserID: 3, Status: "in"})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.EmployeesInOffice)
	assert.Equal(t, 3, summary.TotalEmployees)
}

func TestPresenceSummary_ExcludesUnlinkedAndInactive(t *testing.T) {
	svc, employees, _ := setupPresence(t)
	ctx := context.Background()

	addEmployee(t, employees, "Alice", "Adams", 1, domain.EmployeeStatusActive)
	// 无登录账号：分子分母都不出现
	addEmployee(t, employees, "Ghost", "Giles", 0, domain.EmployeeStatusActive)
	// 离职员工不参与
	addEmployee(t, employees, "Old", "Owens", 9, domain.EmployeeStatusTerminated)

	_, err := svc.RecordEvent(ctx, RecordEventRequest{UserID: 1, Status: "in"})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.EmployeesInOffice)
	assert.Equal(t, 1, summary.TotalEmployees)
}

func TestPresenceSummary_WithVisitors(t *testing.T) {
	svc, employees, visitors := setupPresence(t)
	ctx := context.Background()

	addEmployee(t, employees, "Alice", "Adams", 1, domain.EmployeeStatusActive)
	_, err := svc.RecordEvent(ctx, RecordEventRequest{UserID: 1, Status: "in"})
	require.NoError(t, err)

	_, err = visitors.CheckIn(ctx, &domain.Visitor{Name: "Vera Visitor"})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, true)
	require.NoError(t, err)
	require.NotNil(t, summary.VisitorsInOffice)
	require.NotNil(t, summary.TotalInOffice)
	assert.Equal(t, 1, *summary.VisitorsInOffice)
	assert.Equal(t, 2, *summary.TotalInOffice)

	// include_visitors=false 时不出现访客字段
	summary, err = svc.Summary(ctx, false)
	require.NoError(t, err)
	assert.Nil(t, summary.VisitorsInOffice)
	assert.Nil(t, summary.TotalInOffice)
}

func TestPresenceSummary_ReadIdempotent(t *testing.T) {
	svc, employees, _ := setupPresence(t)
	ctx := context.Background()

	addEmployee(t, employees, "Alice", "Adams", 1, domain.EmployeeStatusActive)
	_, err := svc.RecordEvent(ctx, RecordEventRequest{UserID: 1, Status: "in"})
	require.NoError(t, err)

	first, err := svc.Summary(ctx, false)
	require.NoError(t, err)
	second, err := svc.Summary(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, first.EmployeesInOffice, second.EmployeesInOffice)
	assert.Equal(t, first.TotalEmployees, second.TotalEmployees)
}

func TestRecordEvent_Validation(t *testing.T) {
	svc, employees, _ := setupPresence(t)
	ctx := context.Background()

	addEmployee(t, employees, "Alice", "Adams", 1, domain.EmployeeStatusActive)

	_, err := svc.RecordEvent(ctx, RecordEventRequest{UserID: 1, Status: "teleporting"})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	// 未知用户
	_, err = svc.RecordEvent(ctx, RecordEventRequest{UserID: 42, Status: "in"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestOccupants_NamesEmployeesAndVisitors(t *testing.T) {
	svc, employees, visitors := setupPresence(t)
	ctx := context.Background()

	addEmployee(t, employees, "Alice", "Adams", 1, domain.EmployeeStatusActive)
	addEmployee(t, employees, "Bob", "Brown", 2, domain.EmployeeStatusActive)

	_, err := svc.RecordEvent(ctx, RecordEventRequest{UserID: 1, Status: "in", Location: "3rd floor"})
	require.NoError(t, err)
	_, err = svc.RecordEvent(ctx, RecordEventRequest{UserID: 2, Status: "out"})
	require.NoError(t, err)

	_, err = visitors.CheckIn(ctx, &domain.Visitor{
		Name:    "Vera Visitor",
		Company: sql.NullString{String: "Acme", Valid: true},
	})
	require.NoError(t, err)

	resp, err := svc.Occupants(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, resp.Total)

	assert.Equal(t, "employee", resp.Occupants[0].Type)
	assert.Equal(t, "Alice Adams", resp.Occupants[0].Name)
	assert.Equal(t, "3rd floor", resp.Occupants[0].Location)
	assert.Equal(t, "visitor", resp.Occupants[1].Type)
	assert.Equal(t, "Vera Visitor", resp.Occupants[1].Name)
	assert.Equal(t, "Acme", resp.Occupants[1].Company)
}
