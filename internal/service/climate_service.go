package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"officehub/internal/config"
	"officehub/internal/domain"
	"officehub/internal/repository"
	"officehub/internal/store"
)

const weatherCacheKey = "officehub:weather:outdoor"

// ClimateService 温度/天气聚合服务接口
type ClimateService interface {
	// Summary 室内每个传感器的最新读数 + 室外天气
	Summary(ctx context.Context) (*ClimateSummary, error)

	// Outdoor 室外天气：live → cache → static 三级回退
	Outdoor(ctx context.Context) (*domain.WeatherObservation, error)

	// RecordReading 追加一条室内读数（HTTP 或 MQTT 入口共用）
	RecordReading(ctx context.Context, req TemperatureReadingRequest) error
}

// ClimateSummary 温度汇总
type ClimateSummary struct {
	Indoor    []*IndoorReading           `json:"indoor"`
	AverageC  *float64                   `json:"average_indoor_c"`
	Outdoor   *domain.WeatherObservation `json:"outdoor"`
	Timestamp string                     `json:"timestamp"`
}

type IndoorReading struct {
	Sensor      string  `json:"sensor"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	RecordedAt  string  `json:"recorded_at"`
}

// TemperatureReadingRequest 传感器读数上报
type TemperatureReadingRequest struct {
	Sensor      string  `json:"sensor"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

type climateService struct {
	repo   repository.TemperatureRepository
	kv     store.KV
	client *resty.Client
	cfg    config.WeatherConfig
	logger *zap.Logger
}

func NewClimateService(
	repo repository.TemperatureRepository,
	kv store.KV,
	cfg config.WeatherConfig,
	logger *zap.Logger,
) ClimateService {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(10 * time.Second)
	return &climateService{
		repo:   repo,
		kv:     kv,
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

var _ ClimateService = (*climateService)(nil)

func (s *climateService) Summary(ctx context.Context) (*ClimateSummary, error) {
	readings, err := s.repo.LatestPerSensor(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load indoor readings: %w", err)
	}

	summary := &ClimateSummary{
		Indoor:    make([]*IndoorReading, 0, len(readings)),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	var sum float64
	for _, r := range readings {
		summary.Indoor = append(summary.Indoor, &IndoorReading{
			Sensor:      r.Sensor,
			Temperature: r.Temperature,
			Humidity:    r.Humidity,
			RecordedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
		})
		sum += r.Temperature
	}
	if len(readings) > 0 {
		avg := sum / float64(len(readings))
		summary.AverageC = &avg
	}

	// 室外天气拿不到也不影响室内汇总
	outdoor, err := s.Outdoor(ctx)
	if err == nil {
		summary.Outdoor = outdoor
	}
	return summary, nil
}

// openWeatherResponse OpenWeatherMap /weather 响应（只取用到的字段）
type openWeatherResponse struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Name string `json:"name"`
}

func (s *climateService) Outdoor(ctx context.Context) (*domain.WeatherObservation, error) {
	if s.cfg.APIKey != "" {
		obs, err := s.fetchLive(ctx)
		if err == nil {
			s.cacheObservation(ctx, obs)
			return obs, nil
		}
		s.logger.Warn("live weather fetch failed, trying cache", zap.Error(err))
	}

	if obs := s.cachedObservation(ctx); obs != nil {
		return obs, nil
	}

	// 静态兜底：天气端点永远有响应
	return &domain.WeatherObservation{
		Timestamp:   time.Now().UTC(),
		Temperature: 18.0,
		FeelsLike:   17.0,
		Humidity:    65,
		Conditions:  "partly cloudy",
		City:        s.cfg.City,
		Source:      "static",
	}, nil
}

func (s *climateService) fetchLive(ctx context.Context) (*domain.WeatherObservation, error) {
	var body openWeatherResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     s.cfg.City,
			"appid": s.cfg.APIKey,
			"units": "metric",
		}).
		SetResult(&body).
		Get("/weather")
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("weather request failed: status %d", resp.StatusCode())
	}

	conditions := ""
	if len(body.Weather) > 0 {
		conditions = body.Weather[0].Description
	}
	return &domain.WeatherObservation{
		Timestamp:   time.Now().UTC(),
		Temperature: body.Main.Temp,
		FeelsLike:   body.Main.FeelsLike,
		Humidity:    body.Main.Humidity,
		Conditions:  conditions,
		City:        body.Name,
		Source:      "live",
	}, nil
}

func (s *climateService) cacheObservation(ctx context.Context, obs *domain.WeatherObservation) {
	if s.kv == nil {
		return
	}
	data, err := json.Marshal(obs)
	if err != nil {
		return
	}
	ttl := time.Duration(s.cfg.CacheTTL) * time.Second
	if err := s.kv.Set(ctx, weatherCacheKey, string(data), ttl); err != nil {
		s.logger.Warn("failed to cache weather", zap.Error(err))
	}
}

func (s *climateService) cachedObservation(ctx context.Context) *domain.WeatherObservation {
	if s.kv == nil {
		return nil
	}
	data, err := s.kv.Get(ctx, weatherCacheKey)
	if err != nil {
		return nil
	}
	var obs domain.WeatherObservation
	if err := json.Unmarshal([]byte(data), &obs); err != nil {
		return nil
	}
	obs.Source = "cache"
	return &obs
}

func (s *climateService) RecordReading(ctx context.Context, req TemperatureReadingRequest) error {
	if req.Sensor == "" {
		return fmt.Errorf("%w: sensor is required", domain.ErrValidation)
	}
	if req.Temperature < -50 || req.Temperature > 80 {
		return fmt.Errorf("%w: temperature %.1f out of range", domain.ErrValidation, req.Temperature)
	}
	reading := &domain.TemperatureReading{
		Sensor:      req.Sensor,
		Temperature: req.Temperature,
		Humidity:    req.Humidity,
	}
	if err := s.repo.InsertReading(ctx, reading); err != nil {
		return fmt.Errorf("failed to record reading: %w", err)
	}
	s.logger.Debug("temperature reading recorded",
		zap.String("sensor", req.Sensor),
		zap.Float64("temperature", req.Temperature))
	return nil
}
