package gstin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/timberline-erp/timberline/internal/shared"
)

// Service resolves a GSTIN through the cache, database, API, dummy chain.
type Service struct {
	logger   *slog.Logger
	repo     Repository
	api      *APIClient
	redis    *redis.Client
	cacheTTL time.Duration
}

// NewService constructs the lookup service. api may be nil; redis may be
// nil, which skips the hot cache tier.
func NewService(logger *slog.Logger, repo Repository, api *APIClient, rdb *redis.Client, cacheTTL time.Duration) *Service {
	return &Service{logger: logger, repo: repo, api: api, redis: rdb, cacheTTL: cacheTTL}
}

func cacheKey(gstin string) string {
	return "gstin:" + gstin
}

// Lookup resolves the GSTIN. Source order: Redis, Postgres, external API,
// deterministic dummy. The dummy tier never fails.
func (s *Service) Lookup(ctx context.Context, raw string) (Result, error) {
	gstin := strings.ToUpper(strings.TrimSpace(raw))
	if err := Validate(gstin); err != nil {
		return Result{}, err
	}

	if cached, source, ok := s.fromRedis(ctx, gstin); ok {
		return Result{Success: true, Source: source, Data: cached}, nil
	}

	if rec, err := s.repo.Get(ctx, gstin); err == nil {
		s.toRedis(ctx, gstin, rec, SourceDatabase)
		return Result{Success: true, Source: SourceDatabase, Data: rec}, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("gstin db lookup failed", slog.String("gstin", gstin), slog.Any("error", err))
	}

	if s.api != nil {
		rec, err := s.api.Fetch(ctx, gstin)
		if err == nil {
			if err := s.repo.Upsert(ctx, rec); err != nil {
				s.logger.Warn("gstin cache store failed", slog.Any("error", err))
			}
			s.toRedis(ctx, gstin, rec, SourceAPI)
			return Result{Success: true, Source: SourceAPI, Data: rec}, nil
		}
		s.logger.Warn("gstin api lookup failed", slog.String("gstin", gstin), slog.Any("error", err))
	}

	return Result{Success: true, Source: SourceDummy, Data: dummyRecord(gstin)}, nil
}

type redisEnvelope struct {
	Source Source `json:"source"`
	Data   Record `json:"data"`
}

func (s *Service) fromRedis(ctx context.Context, gstin string) (Record, Source, bool) {
	if s.redis == nil {
		return Record{}, "", false
	}
	raw, err := s.redis.Get(ctx, cacheKey(gstin)).Bytes()
	if err != nil {
		return Record{}, "", false
	}
	var env redisEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Record{}, "", false
	}
	return env.Data, env.Source, true
}

func (s *Service) toRedis(ctx context.Context, gstin string, rec Record, source Source) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(redisEnvelope{Source: source, Data: rec})
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, cacheKey(gstin), raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("gstin redis set failed", slog.Any("error", err))
	}
}
