package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"dealership/internal/currency"
	"dealership/internal/logger"
	"dealership/internal/models"
	"dealership/internal/redis"
	"dealership/internal/repository"

	"github.com/rs/zerolog"
)

const ratesCacheKey = "settings:exchange_rates"

// ExchangeRates are the two persisted rates behind every conversion.
type ExchangeRates struct {
	DZDPerUSDT float64 `json:"exchange_rate_dzd_usdt" validate:"gt=0"`
	KRWPerUSDT float64 `json:"exchange_rate_usdt_krw" validate:"gt=0"`
}

// Currency returns the rates in the shape the converter expects.
func (r ExchangeRates) Currency() currency.Rates {
	return currency.RatesFromExchange(r.DZDPerUSDT, r.KRWPerUSDT)
}

type SettingsService interface {
	LoadRates(ctx context.Context) (ExchangeRates, error)
	SaveRates(ctx context.Context, rates ExchangeRates, updatedBy string) error
}

type settingsService struct {
	settings repository.SettingsRepository
	cache    redis.Cache
	cacheTTL time.Duration
	defaults ExchangeRates
	log      zerolog.Logger
}

// NewSettingsService reads rates from the settings table, falling back to
// defaults for keys that were never saved.
func NewSettingsService(settings repository.SettingsRepository, cache redis.Cache, cacheTTL time.Duration, defaults ExchangeRates) SettingsService {
	return &settingsService{
		settings: settings,
		cache:    cache,
		cacheTTL: cacheTTL,
		defaults: defaults,
		log:      logger.WithComponent("settings"),
	}
}

func (s *settingsService) LoadRates(ctx context.Context) (ExchangeRates, error) {
	var rates ExchangeRates
	if s.cache != nil {
		err := s.cache.GetJSON(ctx, ratesCacheKey, &rates)
		if err == nil {
			return rates, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.log.Warn().Err(err).Msg("Rates cache read failed")
		}
	}

	values, err := s.settings.GetMany(ctx, models.SettingRateDZDUSDT, models.SettingRateUSDTKRW)
	if err != nil {
		return ExchangeRates{}, fmt.Errorf("failed to load exchange rates: %w", err)
	}
	rates = ExchangeRates{
		DZDPerUSDT: parseRate(values[models.SettingRateDZDUSDT], s.defaults.DZDPerUSDT),
		KRWPerUSDT: parseRate(values[models.SettingRateUSDTKRW], s.defaults.KRWPerUSDT),
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, ratesCacheKey, rates, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("Rates cache write failed")
		}
	}
	return rates, nil
}

func (s *settingsService) SaveRates(ctx context.Context, rates ExchangeRates, updatedBy string) error {
	if rates.DZDPerUSDT <= 0 || rates.KRWPerUSDT <= 0 {
		return errors.New("exchange rates must be greater than 0")
	}
	if err := s.settings.Set(ctx, models.SettingRateDZDUSDT, formatRate(rates.DZDPerUSDT), updatedBy); err != nil {
		return err
	}
	if err := s.settings.Set(ctx, models.SettingRateUSDTKRW, formatRate(rates.KRWPerUSDT), updatedBy); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, ratesCacheKey); err != nil {
			s.log.Warn().Err(err).Msg("Rates cache invalidation failed")
		}
	}
	s.log.Info().Float64("dzd_per_usdt", rates.DZDPerUSDT).Float64("krw_per_usdt", rates.KRWPerUSDT).
		Str("updated_by", updatedBy).Msg("Exchange rates saved")
	return nil
}

func parseRate(raw string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
		return v
	}
	return fallback
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
