package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"officehub/internal/config"
	"officehub/internal/domain"
	"officehub/internal/repository"
)

// AssistantService 办公室助手：关键词匹配 + 实时数字填充。
// 配置了外部 LLM 时先走外部通道，任何失败都退回本地应答，不向上抛错。
type AssistantService interface {
	Reply(ctx context.Context, message string) (*AssistantReply, error)
}

// AssistantReply 助手应答
type AssistantReply struct {
	Reply     string `json:"reply"`
	Source    string `json:"source"` // "openai" | "canned"
	Timestamp string `json:"timestamp"`
}

type assistantService struct {
	stockSvc    StockService
	climateSvc  ClimateService
	presenceSvc PresenceService
	coffeeRepo  repository.CoffeeRepository
	client      *resty.Client
	cfg         config.AssistantConfig
	logger      *zap.Logger
}

func NewAssistantService(
	stockSvc StockService,
	climateSvc ClimateService,
	presenceSvc PresenceService,
	coffeeRepo repository.CoffeeRepository,
	cfg config.AssistantConfig,
	logger *zap.Logger,
) AssistantService {
	client := resty.New().
		SetBaseURL(cfg.OpenAIBaseURL).
		SetTimeout(15 * time.Second)
	return &assistantService{
		stockSvc:    stockSvc,
		climateSvc:  climateSvc,
		presenceSvc: presenceSvc,
		coffeeRepo:  coffeeRepo,
		client:      client,
		cfg:         cfg,
		logger:      logger,
	}
}

var _ AssistantService = (*assistantService)(nil)

const assistantHelp = "I can help with stock levels, office temperature, coffee orders " +
	"and who is in the office. Try asking \"how much coffee is left?\" or " +
	"\"who is in the office?\"."

// snapshot 回答所需的实时数据。任何一块取不到就置空，
// 对应的回答退化为静态文案，绝不让助手端点整体失败。
type assistantSnapshot struct {
	alerts  *StockAlertsResponse
	stock   *StockSummary
	climate *ClimateSummary
	coffee  *coffeeSnapshot
	present *PresenceSummary
}

type coffeeSnapshot struct {
	today  int
	recent []*domain.CoffeeOrder
}

func (s *assistantService) buildSnapshot(ctx context.Context) *assistantSnapshot {
	snap := &assistantSnapshot{}

	if alerts, err := s.stockSvc.Alerts(ctx); err == nil {
		snap.alerts = alerts
	} else {
		s.logger.Warn("assistant: stock alerts unavailable", zap.Error(err))
	}
	if summary, err := s.stockSvc.Summary(ctx); err == nil {
		snap.stock = summary
	}
	if climate, err := s.climateSvc.Summary(ctx); err == nil {
		snap.climate = climate
	} else {
		s.logger.Warn("assistant: climate summary unavailable", zap.Error(err))
	}
	if s.coffeeRepo != nil {
		cs := &coffeeSnapshot{}
		if today, err := s.coffeeRepo.CountToday(ctx); err == nil {
			cs.today = today
			snap.coffee = cs
		}
		if recent, err := s.coffeeRepo.RecentOrders(ctx, 5); err == nil && snap.coffee != nil {
			snap.coffee.recent = recent
		}
	}
	if present, err := s.presenceSvc.Summary(ctx, true); err == nil {
		snap.present = present
	} else {
		s.logger.Warn("assistant: presence summary unavailable", zap.Error(err))
	}
	return snap
}

func (s *assistantService) Reply(ctx context.Context, message string) (*AssistantReply, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrValidation)
	}

	snap := s.buildSnapshot(ctx)

	if s.cfg.OpenAIKey != "" {
		if reply, err := s.replyOpenAI(ctx, message, snap); err == nil {
			return reply, nil
		} else {
			s.logger.Warn("assistant: external model failed, using canned reply", zap.Error(err))
		}
	}

	return &AssistantReply{
		Reply:     s.cannedReply(message, snap),
		Source:    "canned",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// cannedReply 关键词匹配，固定优先级：库存 → 温度 → 咖啡 → 在岗
func (s *assistantService) cannedReply(message string, snap *assistantSnapshot) string {
	msg := strings.ToLower(message)

	switch {
	case containsAny(msg, "stock", "supply", "supplies", "running low", "inventory", "reorder"):
		return stockReply(snap)
	case containsAny(msg, "temperature", "weather", "hot", "cold", "warm", "degrees"):
		return temperatureReply(snap)
	case containsAny(msg, "coffee", "latte", "espresso", "cappuccino"):
		return coffeeReply(snap)
	case containsAny(msg, "who is in", "who's in", "presence", "office today", "in the office", "at work"):
		return presenceReply(snap)
	}
	return assistantHelp
}

func containsAny(msg string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

func stockReply(snap *assistantSnapshot) string {
	if snap.alerts == nil {
		return "I can't reach the stock system right now, please try again in a bit."
	}
	if snap.alerts.Count == 0 {
		return "All stock levels look healthy, nothing needs reordering right now."
	}
	var names []string
	for _, a := range snap.alerts.Alerts {
		names = append(names, fmt.Sprintf("%s (%.1f %s left)", a.Name, a.Quantity, a.Unit))
	}
	return fmt.Sprintf("%d item(s) need attention: %s.", snap.alerts.Count, strings.Join(names, ", "))
}

func temperatureReply(snap *assistantSnapshot) string {
	if snap.climate == nil {
		return "I can't read the temperature sensors right now."
	}
	parts := []string{}
	if snap.climate.AverageC != nil {
		parts = append(parts, fmt.Sprintf("it's %.1f°C on average inside", *snap.climate.AverageC))
	}
	if snap.climate.Outdoor != nil {
		parts = append(parts, fmt.Sprintf("%.1f°C and %s outside in %s",
			snap.climate.Outdoor.Temperature, snap.climate.Outdoor.Conditions, snap.climate.Outdoor.City))
	}
	if len(parts) == 0 {
		return "No temperature readings are available yet."
	}
	return "Right now " + strings.Join(parts, ", and ") + "."
}

func coffeeReply(snap *assistantSnapshot) string {
	if snap.coffee == nil {
		return "The coffee tracker is offline right now."
	}
	if snap.coffee.today == 0 {
		return "No coffee orders yet today. Someone should fix that."
	}
	return fmt.Sprintf("%d coffee order(s) so far today.", snap.coffee.today)
}

func presenceReply(snap *assistantSnapshot) string {
	if snap.present == nil {
		return "I can't see the presence board right now."
	}
	reply := fmt.Sprintf("%d of %d employees are in the office",
		snap.present.EmployeesInOffice, snap.present.TotalEmployees)
	if snap.present.VisitorsInOffice != nil && *snap.present.VisitorsInOffice > 0 {
		reply += fmt.Sprintf(", plus %d visitor(s)", *snap.present.VisitorsInOffice)
	}
	return reply + "."
}

// --- optional external model ---

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (s *assistantService) replyOpenAI(ctx context.Context, message string, snap *assistantSnapshot) (*AssistantReply, error) {
	system := "You are a helpful office assistant. Answer briefly using this live office data:\n" +
		s.snapshotPrompt(snap)

	var body chatCompletionResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.cfg.OpenAIKey).
		SetBody(chatCompletionRequest{
			Model: s.cfg.Model,
			Messages: []chatMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: message},
			},
		}).
		SetResult(&body).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("chat completion failed: status %d", resp.StatusCode())
	}
	if len(body.Choices) == 0 || body.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	return &AssistantReply{
		Reply:     body.Choices[0].Message.Content,
		Source:    "openai",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (s *assistantService) snapshotPrompt(snap *assistantSnapshot) string {
	var b strings.Builder
	if snap.stock != nil {
		fmt.Fprintf(&b, "Stock: %d items, %d low, %d critical.\n",
			snap.stock.TotalItems, snap.stock.LowItems, snap.stock.CriticalItems)
	}
	if snap.climate != nil && snap.climate.AverageC != nil {
		fmt.Fprintf(&b, "Indoor temperature: %.1f°C average.\n", *snap.climate.AverageC)
	}
	if snap.coffee != nil {
		fmt.Fprintf(&b, "Coffee orders today: %d.\n", snap.coffee.today)
	}
	if snap.present != nil {
		fmt.Fprintf(&b, "Employees in office: %d of %d.\n",
			snap.present.EmployeesInOffice, snap.present.TotalEmployees)
	}
	return b.String()
}
