package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/model"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/repository"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/valuation"
)

// DefaultSummaryTTL is used when NewPortfolioService is given a non-positive TTL.
const DefaultSummaryTTL = 30 * time.Second

// SummaryInvalidator is notified after every mutation of an owner's ledger.
type SummaryInvalidator interface {
	Invalidate(ownerID string)
}

// PortfolioService computes portfolio summaries from position snapshots.
// Summaries are cached per owner until the next mutation or until the TTL expires.
type PortfolioService struct {
	store repository.Store
	cache *cache.Cache
	group singleflight.Group

	mu     sync.Mutex
	epochs map[string]uint64
}

// NewPortfolioService creates a new PortfolioService with the provided store.
func NewPortfolioService(store repository.Store, ttl time.Duration) *PortfolioService {
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	return &PortfolioService{
		store:  store,
		cache:  cache.New(ttl, 2*ttl),
		epochs: make(map[string]uint64),
	}
}

// GetSummary returns the owner's aggregated valuation. Positions and the
// journal count are read from a single snapshot.
func (s *PortfolioService) GetSummary(ctx context.Context, ownerID string) (model.PortfolioSummary, error) {
	if ownerID == "" {
		return model.PortfolioSummary{}, apperrors.ErrInvalidOwner
	}

	if cached, ok := s.cache.Get(ownerID); ok {
		return cached.(model.PortfolioSummary), nil
	}

	epoch := s.epoch(ownerID)
	key := fmt.Sprintf("%s#%d", ownerID, epoch)

	v, err, _ := s.group.Do(key, func() (any, error) {
		summary, err := s.computeSummary(ctx, ownerID)
		if err != nil {
			return nil, err
		}

		// A mutation that landed while computing bumped the epoch; the
		// result may predate it and is returned without being cached.
		s.mu.Lock()
		if s.epochs[ownerID] == epoch {
			s.cache.SetDefault(ownerID, summary)
		}
		s.mu.Unlock()

		return summary, nil
	})
	if err != nil {
		return model.PortfolioSummary{}, err
	}
	return v.(model.PortfolioSummary), nil
}

func (s *PortfolioService) computeSummary(ctx context.Context, ownerID string) (model.PortfolioSummary, error) {
	var positions []model.Position
	var count int

	err := s.store.WithinTx(ctx, true, func(u repository.UnitOfWork) error {
		var err error
		positions, err = u.Positions().ListPositions(ctx, ownerID)
		if err != nil {
			return err
		}
		count, err = u.Journal().CountForOwner(ctx, ownerID)
		return err
	})
	if err != nil {
		return model.PortfolioSummary{}, fmt.Errorf("failed to load portfolio: %w", err)
	}

	return valuation.Summarize(positions, count), nil
}

// Invalidate drops the owner's cached summary.
func (s *PortfolioService) Invalidate(ownerID string) {
	s.mu.Lock()
	s.epochs[ownerID]++
	s.cache.Delete(ownerID)
	s.mu.Unlock()

	log.WithField("owner", ownerID).Debug("portfolio summary invalidated")
}

func (s *PortfolioService) epoch(ownerID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epochs[ownerID]
}
