package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/cinematalkiez/blackhole/internal/gate"
	"github.com/cinematalkiez/blackhole/internal/metrics"
	"github.com/cinematalkiez/blackhole/internal/model"
	"github.com/cinematalkiez/blackhole/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const checkCachePrefix = "check:"

var ErrInvalidDeviceID = errors.New("device id is required")

// VerificationService owns the verification store: lookups for the gate,
// registration from the verify page and confirmation from the external flow.
type VerificationService struct {
	repo     *repository.VerificationRepository
	rdb      *redis.Client
	cacheTTL time.Duration
	log      *zap.Logger
	now      func() time.Time
}

// NewVerificationService creates the service. rdb may be nil, in which case
// lookups are not cached.
func NewVerificationService(
	repo *repository.VerificationRepository,
	rdb *redis.Client,
	cacheTTL time.Duration,
	log *zap.Logger,
) *VerificationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &VerificationService{
		repo:     repo,
		rdb:      rdb,
		cacheTTL: cacheTTL,
		log:      log,
		now:      time.Now,
	}
}

func (s *VerificationService) SetClock(now func() time.Time) { s.now = now }

// Check answers the verification lookup for id. An unknown id is not an
// error; it reports exists=false.
func (s *VerificationService) Check(ctx context.Context, id string) (gate.RemoteRecord, error) {
	if resp, ok := s.cached(ctx, id); ok {
		metrics.CheckLookupsTotal.WithLabelValues(metrics.LookupHit).Inc()
		return gate.RemoteRecord{Exists: resp.Exists, TokenVerified: resp.TokenVerified}, nil
	}

	var resp model.CheckResponse
	rec, err := s.repo.FindByDeviceID(ctx, id)
	switch {
	case err == nil:
		resp = model.CheckResponse{Exists: true, TokenVerified: rec.TokenVerified}
	case errors.Is(err, gorm.ErrRecordNotFound):
		resp = model.CheckResponse{}
	default:
		metrics.CheckLookupsTotal.WithLabelValues(metrics.LookupError).Inc()
		return gate.RemoteRecord{}, err
	}

	metrics.CheckLookupsTotal.WithLabelValues(metrics.LookupMiss).Inc()
	// only verified answers are cached; a pending one can flip at any time
	if resp.TokenVerified {
		s.store(ctx, id, resp)
	}
	return gate.RemoteRecord{Exists: resp.Exists, TokenVerified: resp.TokenVerified}, nil
}

// Register records id as awaiting verification. Verified records are kept.
func (s *VerificationService) Register(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidDeviceID
	}
	if err := s.repo.Register(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.log.Info("device registered for verification", zap.String("device_id", id))
	return nil
}

// MarkVerified flags id as verified
func (s *VerificationService) MarkVerified(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidDeviceID
	}
	if err := s.repo.MarkVerified(ctx, id, s.now().UTC()); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.log.Info("device verified", zap.String("device_id", id))
	return nil
}

// CleanupStale drops unverified records older than retention
func (s *VerificationService) CleanupStale(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := s.repo.CleanupStale(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("stale verification records removed", zap.Int64("count", n))
	}
	return n, nil
}

// RefreshVerifiedGauge publishes the number of verified devices
func (s *VerificationService) RefreshVerifiedGauge(ctx context.Context) (int64, error) {
	n, err := s.repo.CountVerified(ctx)
	if err != nil {
		return 0, err
	}
	metrics.VerifiedDevices.Set(float64(n))
	return n, nil
}

// RunCleanup calls CleanupStale every interval until ctx is done and keeps
// the verified-devices gauge current.
func (s *VerificationService) RunCleanup(ctx context.Context, interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.refreshGauge(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.CleanupStale(ctx, retention); err != nil {
				s.log.Error("verification cleanup failed", zap.Error(err))
			}
			s.refreshGauge(ctx)
		}
	}
}

func (s *VerificationService) refreshGauge(ctx context.Context) {
	if _, err := s.RefreshVerifiedGauge(ctx); err != nil {
		s.log.Warn("counting verified devices failed", zap.Error(err))
	}
}

func (s *VerificationService) cached(ctx context.Context, id string) (model.CheckResponse, bool) {
	if s.rdb == nil || s.cacheTTL <= 0 {
		return model.CheckResponse{}, false
	}
	raw, err := s.rdb.Get(ctx, checkCachePrefix+id).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("check cache read failed", zap.Error(err))
		}
		return model.CheckResponse{}, false
	}
	var resp model.CheckResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return model.CheckResponse{}, false
	}
	return resp, true
}

func (s *VerificationService) store(ctx context.Context, id string, resp model.CheckResponse) {
	if s.rdb == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, checkCachePrefix+id, raw, s.cacheTTL).Err(); err != nil {
		s.log.Warn("check cache write failed", zap.Error(err))
	}
}

func (s *VerificationService) invalidate(ctx context.Context, id string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, checkCachePrefix+id).Err(); err != nil {
		s.log.Warn("check cache invalidate failed", zap.String("device_id", id), zap.Error(err))
	}
}
