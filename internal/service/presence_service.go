package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"officehub/internal/domain"
	"officehub/internal/repository"
)

// PresenceService 在岗聚合服务接口
type PresenceService interface {
	// Summary 办公室人数汇总。includeVisitors 时叠加在馆访客。
	Summary(ctx context.Context, includeVisitors bool) (*PresenceSummary, error)

	// Occupants 在办公室的具名名单（员工 + 访客）
	Occupants(ctx context.Context) (*OccupantsResponse, error)

	// RecordEvent 追加一条签到事件
	RecordEvent(ctx context.Context, req RecordEventRequest) (*domain.PresenceEvent, error)

	// History 某用户的签到历史
	History(ctx context.Context, userID int64, limit int) ([]*domain.PresenceEvent, error)
}

// PresenceSummary 人数汇总
// VisitorsInOffice / TotalInOffice 仅在 include_visitors 时出现
type PresenceSummary struct {
	EmployeesInOffice int    `json:"employees_in_office"`
	TotalEmployees    int    `json:"total_employees"`
	VisitorsInOffice  *int   `json:"visitors_in_office,omitempty"`
	TotalInOffice     *int   `json:"total_in_office,omitempty"`
	Timestamp         string `json:"timestamp"`
}

// Occupant 在馆的一个人（员工或访客）
type Occupant struct {
	Type       string `json:"type"` // "employee" | "visitor"
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
	Company    string `json:"company,omitempty"`
	Host       string `json:"host,omitempty"`
	Location   string `json:"location,omitempty"`
	Since      string `json:"since"`
}

type OccupantsResponse struct {
	Occupants []Occupant `json:"occupants"`
	Total     int        `json:"total"`
}

// RecordEventRequest 签到事件请求
type RecordEventRequest struct {
	UserID   int64  `json:"user_id"`
	Status   string `json:"status"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

type presenceService struct {
	presenceRepo  repository.PresenceRepository
	employeesRepo repository.EmployeesRepository
	visitorsRepo  repository.VisitorsRepository
	logger        *zap.Logger
}

func NewPresenceService(
	presenceRepo repository.PresenceRepository,
	employeesRepo repository.EmployeesRepository,
	visitorsRepo repository.VisitorsRepository,
	logger *zap.Logger,
) PresenceService {
	return &presenceService{
		presenceRepo:  presenceRepo,
		employeesRepo: employeesRepo,
		visitorsRepo:  visitorsRepo,
		logger:        logger,
	}
}

var _ PresenceService = (*presenceService)(nil)

// linkedActiveEmployees 参与统计的员工：active 且已关联登录账号。
// 无账号的员工既不进分子也不进分母。
func (s *presenceService) linkedActiveEmployees(ctx context.Context) ([]*domain.Employee, error) {
	employees, err := s.employeesRepo.ListEmployees(ctx, domain.EmployeeStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	linked := employees[:0]
	for _, e := range employees {
		if e.UserID.Valid {
			linked = append(linked, e)
		}
	}
	return linked, nil
}

func (s *presenceService) Summary(ctx context.Context, includeVisitors bool) (*PresenceSummary, error) {
	employees, err := s.linkedActiveEmployees(ctx)
	if err != nil {
		return nil, err
	}

	userIDs := make([]int64, 0, len(employees))
	for _, e := range employees {
		userIDs = append(userIDs, e.UserID.Int64)
	}

	latest, err := s.presenceRepo.LatestForUsers(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest presence events: %w", err)
	}

	// 只有最新事件恰好是 "in" 才算在办公室；remote/meeting/break 都不算
	inOffice := 0
	for _, userID := range userIDs {
		if ev, ok := latest[userID]; ok && ev.Status == domain.PresenceIn {
			inOffice++
		}
	}

	summary := &PresenceSummary{
		EmployeesInOffice: inOffice,
		TotalEmployees:    len(employees),
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
	}

	if includeVisitors {
		visitors, err := s.visitorsRepo.CountCheckedIn(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count visitors: %w", err)
		}
		total := inOffice + visitors
		summary.VisitorsInOffice = &visitors
		summary.TotalInOffice = &total
	}
	return summary, nil
}

func (s *presenceService) Occupants(ctx context.Context) (*OccupantsResponse, error) {
	employees, err := s.linkedActiveEmployees(ctx)
	if err != nil {
		return nil, err
	}

	userIDs := make([]int64, 0, len(employees))
	byUser := make(map[int64]*domain.Employee, len(employees))
	for _, e := range employees {
		userIDs = append(userIDs, e.UserID.Int64)
		byUser[e.UserID.Int64] = e
	}

	latest, err := s.presenceRepo.LatestForUsers(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest presence events: %w", err)
	}

	var occupants []Occupant
	for _, userID := range userIDs {
		ev, ok := latest[userID]
		if !ok || ev.Status != domain.PresenceIn {
			continue
		}
		e := byUser[userID]
		occupants = append(occupants, Occupant{
			Type:       "employee",
			Name:       e.FullName(),
			Department: e.Department.String,
			Location:   ev.Location.String,
			Since:      ev.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	visitors, err := s.visitorsRepo.ListCheckedIn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list visitors: %w", err)
	}
	for _, v := range visitors {
		occupants = append(occupants, Occupant{
			Type:    "visitor",
			Name:    v.Name,
			Company: v.Company.String,
			Host:    v.Host.String,
			Since:   v.CheckinTime.UTC().Format(time.RFC3339),
		})
	}

	return &OccupantsResponse{Occupants: occupants, Total: len(occupants)}, nil
}

func (s *presenceService) RecordEvent(ctx context.Context, req RecordEventRequest) (*domain.PresenceEvent, error) {
	status := domain.PresenceStatus(req.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid presence status %q", domain.ErrValidation, req.Status)
	}

	// 事件必须对应一个已知员工
	if _, err := s.employeesRepo.GetEmployeeByUser(ctx, req.UserID); err != nil {
		return nil, err
	}

	event := &domain.PresenceEvent{
		UserID:   req.UserID,
		Status:   status,
		Location: sql.NullString{String: req.Location, Valid: req.Location != ""},
		Notes:    sql.NullString{String: req.Notes, Valid: req.Notes != ""},
	}
	created, err := s.presenceRepo.InsertEvent(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to record presence event: %w", err)
	}

	s.logger.Info("presence event recorded",
		zap.Int64("user_id", req.UserID),
		zap.String("status", req.Status))
	return created, nil
}

func (s *presenceService) History(ctx context.Context, userID int64, limit int) ([]*domain.PresenceEvent, error) {
	return s.presenceRepo.ListEvents(ctx, userID, limit)
}
