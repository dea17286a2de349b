package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"portfolio-tracker/database"
	"portfolio-tracker/models"
)

const (
	quoteCacheTTL   = 5 * time.Minute
	historyCacheTTL = 24 * time.Hour
)

// Service fronts a Gateway with a Redis cache and records every fetched
// price as a PriceSnapshot row. Both cache and db may be nil, in which
// case every call goes straight to the gateway.
type Service struct {
	gateway Gateway
	cache   *redis.Client
	db      *gorm.DB
}

func NewService(gateway Gateway, cache *redis.Client, db *gorm.DB) *Service {
	return &Service{gateway: gateway, cache: cache, db: db}
}

func (s *Service) Quote(ctx context.Context, symbol string) (Quote, error) {
	key := fmt.Sprintf("stock:%s:quote", symbol)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Result(); err == nil {
			var q Quote
			if json.Unmarshal([]byte(raw), &q) == nil {
				return q, nil
			}
		}
	}

	q, err := s.gateway.Lookup(ctx, symbol)
	if err != nil {
		return Quote{}, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(q); err == nil {
			s.cache.Set(ctx, key, raw, quoteCacheTTL)
		}
	}

	if s.db != nil && q.Price != nil {
		snapshot := models.PriceSnapshot{
			Symbol:    symbol,
			Price:     *q.Price,
			Timestamp: time.Now(),
		}
		s.db.Create(&snapshot)
	}

	return q, nil
}

func (s *Service) History(ctx context.Context, symbol string) ([]DailyPrice, error) {
	key := fmt.Sprintf("stock:%s:history", symbol)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Result(); err == nil {
			var prices []DailyPrice
			if json.Unmarshal([]byte(raw), &prices) == nil {
				return prices, nil
			}
		}
	}

	prices, err := s.gateway.History(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if s.db != nil && len(prices) > 0 {
		snapshots := make([]models.PriceSnapshot, len(prices))
		for i, p := range prices {
			snapshots[i] = models.PriceSnapshot{
				Symbol:    symbol,
				Price:     p.Close,
				Timestamp: p.Date,
			}
		}
		if err := database.CreateInBatches(s.db, snapshots, 100); err != nil {
			return nil, err
		}
	}

	if s.cache != nil {
		if raw, err := json.Marshal(prices); err == nil {
			s.cache.Set(ctx, key, raw, historyCacheTTL)
		}
	}

	return prices, nil
}
