package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"golfcam/internal/events"
	"golfcam/internal/model"
	"golfcam/internal/report"
	"golfcam/internal/store"
)

const (
	reportCachePrefix  = "golfcam:report"
	reportVersionKey   = reportCachePrefix + ":version"
	defaultReportCache = 5 * time.Minute
)

// TournamentReportQuery selects the tournament monthly series.
type TournamentReportQuery struct {
	Split bool
	Days  int
	Hole  int
}

// ShipmentReportQuery selects the shipment monthly series.
type ShipmentReportQuery struct {
	Split  bool
	Status string
}

// ReportService serves the dashboard series. Results are cached in Redis
// under a version number that every domain event bumps, so a write is
// never followed by a stale chart. A nil Redis client disables the cache.
type ReportService struct {
	store    store.Store
	redis    *redis.Client
	ttl      time.Duration
	location *time.Location
}

func NewReportService(s store.Store, redisClient *redis.Client, ttl time.Duration, loc *time.Location) *ReportService {
	if ttl <= 0 {
		ttl = defaultReportCache
	}
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{store: s, redis: redisClient, ttl: ttl, location: loc}
}

// Publish invalidates cached reports. ReportService is registered as an
// events.Publisher so every change reaches it.
func (s *ReportService) Publish(ctx context.Context, _ events.Event) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Incr(ctx, reportVersionKey).Err()
}

// TournamentsMonthly returns tournaments per month, split by status when
// q.Split is set.
func (s *ReportService) TournamentsMonthly(ctx context.Context, q TournamentReportQuery) ([]report.Row, error) {
	key := fmt.Sprintf("tournaments:split=%t:days=%d:hole=%d", q.Split, q.Days, q.Hole)
	return cached(ctx, s, key, func() ([]report.Row, error) {
		tournaments, err := s.store.Tournaments().List(ctx, nil)
		if err != nil {
			return nil, err
		}
		var filters []report.Predicate[model.Tournament]
		if q.Days > 0 {
			filters = append(filters, report.DaysEquals(q.Days))
		}
		if q.Hole > 0 {
			filters = append(filters, report.HolesContain(q.Hole))
		}
		opts := report.Tournaments(q.Split, filters...)
		opts.Location = s.location
		return report.AggregateMonthly(tournaments, opts), nil
	})
}

// ShipmentsMonthly returns shipments per month, split by status when
// q.Split is set.
func (s *ReportService) ShipmentsMonthly(ctx context.Context, q ShipmentReportQuery) ([]report.Row, error) {
	key := fmt.Sprintf("shipments:split=%t:status=%s", q.Split, q.Status)
	return cached(ctx, s, key, func() ([]report.Row, error) {
		shipments, err := s.store.Shipments().List(ctx, nil)
		if err != nil {
			return nil, err
		}
		var filters []report.Predicate[model.Shipment]
		if q.Status != "" {
			filters = append(filters, report.StatusIs(q.Status))
		}
		opts := report.Shipments(q.Split, filters...)
		opts.Location = s.location
		return report.AggregateMonthly(shipments, opts), nil
	})
}

// States returns the per-state map summary, limited to state when given.
func (s *ReportService) States(ctx context.Context, state string) ([]report.StateSummary, error) {
	return cached(ctx, s, "states:"+state, func() ([]report.StateSummary, error) {
		cameras, err := s.store.Cameras().List(ctx, nil)
		if err != nil {
			return nil, err
		}
		workers, err := s.store.Workers().List(ctx, nil)
		if err != nil {
			return nil, err
		}
		tournaments, err := s.store.Tournaments().List(ctx, nil)
		if err != nil {
			return nil, err
		}
		return report.SummarizeByState(cameras, workers, tournaments, state), nil
	})
}

// cached returns the value under key for the current report version,
// computing and storing it on a miss. Cache errors are logged and the
// value is computed directly.
func cached[T any](ctx context.Context, s *ReportService, key string, compute func() (T, error)) (T, error) {
	if s.redis == nil {
		return compute()
	}

	version, err := s.redis.Get(ctx, reportVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("[Report] cache version: %v", err)
		return compute()
	}
	full := fmt.Sprintf("%s:v%d:%s", reportCachePrefix, version, key)

	if b, err := s.redis.Get(ctx, full).Bytes(); err == nil {
		var out T
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		log.Printf("[Report] cache decode %s: %v", full, err)
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("[Report] cache get %s: %v", full, err)
	}

	out, err := compute()
	if err != nil {
		return out, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return out, nil
	}
	if err := s.redis.Set(ctx, full, b, s.ttl).Err(); err != nil {
		log.Printf("[Report] cache set %s: %v", full, err)
	}
	return out, nil
}
