package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"officehub/internal/domain"
	"officehub/internal/repository"
)

// VisitorService 访客服务接口
type VisitorService interface {
	CheckIn(ctx context.Context, req VisitorCheckInRequest) (*VisitorView, error)
	CheckOut(ctx context.Context, id int64) (*VisitorView, error)
	// List 过滤条件 status 为空时返回全部（当前在馆用 status=checked_in）
	List(ctx context.Context, status string, limit int) ([]*VisitorView, error)
}

// VisitorCheckInRequest 访客登记
type VisitorCheckInRequest struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Host    string `json:"host"`
	Purpose string `json:"purpose"`
}

// VisitorView 访客视图
type VisitorView struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Company      string  `json:"company,omitempty"`
	Host         string  `json:"host,omitempty"`
	BadgeNumber  string  `json:"badge_number"`
	Purpose      string  `json:"purpose,omitempty"`
	CheckinTime  string  `json:"checkin_time"`
	CheckoutTime *string `json:"checkout_time"`
	Status       string  `json:"status"`
}

type visitorService struct {
	repo   repository.VisitorsRepository
	logger *zap.Logger
}

func NewVisitorService(repo repository.VisitorsRepository, logger *zap.Logger) VisitorService {
	return &visitorService{repo: repo, logger: logger}
}

var _ VisitorService = (*visitorService)(nil)

func visitorView(v *domain.Visitor) *VisitorView {
	view := &VisitorView{
		ID:          v.ID,
		Name:        v.Name,
		Company:     v.Company.String,
		Host:        v.Host.String,
		BadgeNumber: v.BadgeNumber,
		Purpose:     v.Purpose.String,
		CheckinTime: v.CheckinTime.UTC().Format(time.RFC3339),
		Status:      v.Status,
	}
	if v.CheckoutTime.Valid {
		out := v.CheckoutTime.Time.UTC().Format(time.RFC3339)
		view.CheckoutTime = &out
	}
	return view
}

func (s *visitorService) CheckIn(ctx context.Context, req VisitorCheckInRequest) (*VisitorView, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: visitor name is required", domain.ErrValidation)
	}

	visitor := &domain.Visitor{
		Name:    strings.TrimSpace(req.Name),
		Company: nullString(req.Company),
		Host:    nullString(req.Host),
		Purpose: nullString(req.Purpose),
		// 胸牌号取 uuid 前 8 位，足够在当天唯一
		BadgeNumber: "V-" + strings.ToUpper(uuid.NewString()[:8]),
	}
	created, err := s.repo.CheckIn(ctx, visitor)
	if err != nil {
		return nil, err
	}

	s.logger.Info("visitor checked in",
		zap.Int64("visitor_id", created.ID),
		zap.String("badge", created.BadgeNumber))
	return visitorView(created), nil
}

func (s *visitorService) CheckOut(ctx context.Context, id int64) (*VisitorView, error) {
	visitor, err := s.repo.CheckOut(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("visitor checked out", zap.Int64("visitor_id", id))
	return visitorView(visitor), nil
}

func (s *visitorService) List(ctx context.Context, status string, limit int) ([]*VisitorView, error) {
	if status != "" && status != domain.VisitorCheckedIn && status != domain.VisitorCheckedOut {
		return nil, fmt.Errorf("%w: invalid visitor status %q", domain.ErrValidation, status)
	}
	visitors, err := s.repo.List(ctx, status, limit)
	if err != nil {
		return nil, err
	}
	views := make([]*VisitorView, 0, len(visitors))
	for _, v := range visitors {
		views = append(views, visitorView(v))
	}
	return views, nil
}
