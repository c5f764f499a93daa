package service

import (
	"context"
	"fmt"
	"math"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/ndewijer/Investment-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/model"
	"github.com/ndewijer/Investment-Ledger-Backend/internal/repository"
)

// AuditTolerance is the absolute difference below which a stored value is
// considered equal to its replayed counterpart.
const AuditTolerance = 1e-9

// AuditService compares stored positions with the state rebuilt from their journals.
type AuditService struct {
	store repository.Store
}

// NewAuditService creates a new AuditService.
func NewAuditService(store repository.Store) *AuditService {
	return &AuditService{store: store}
}

// ReconcilePosition replays one of the owner's positions and reports whether
// the stored quantity and average cost match the journal.
func (s *AuditService) ReconcilePosition(ctx context.Context, ownerID, positionID string) (model.Discrepancy, error) {
	if ownerID == "" {
		return model.Discrepancy{}, apperrors.ErrInvalidOwner
	}

	var report model.Discrepancy
	err := s.store.WithinTx(ctx, true, func(u repository.UnitOfWork) error {
		p, err := u.Positions().GetPosition(ctx, ownerID, positionID)
		if err != nil {
			return err
		}
		report, err = reconcile(ctx, u.Journal(), p)
		return err
	})
	if err != nil {
		return model.Discrepancy{}, err
	}
	return report, nil
}

// Reconcile audits every position of every owner. The result is ordered by
// owner and symbol.
func (s *AuditService) Reconcile(ctx context.Context) ([]model.Discrepancy, error) {
	reports := []model.Discrepancy{}
	err := s.store.WithinTx(ctx, true, func(u repository.UnitOfWork) error {
		positions, err := u.Positions().ListAllPositions(ctx)
		if err != nil {
			return err
		}
		for _, p := range positions {
			report, err := reconcile(ctx, u.Journal(), p)
			if err != nil {
				return err
			}
			reports = append(reports, report)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToReconcile, err)
	}
	return reports, nil
}

func reconcile(ctx context.Context, journal repository.JournalStore, p model.Position) (model.Discrepancy, error) {
	entries, err := journal.ListForPosition(ctx, p.ID)
	if err != nil {
		return model.Discrepancy{}, err
	}

	report := model.Discrepancy{
		PositionID:        p.ID,
		OwnerID:           p.OwnerID,
		Symbol:            p.Symbol,
		StoredQuantity:    p.Quantity,
		StoredAverageCost: p.AverageCost,
		EntryCount:        len(entries),
	}

	replayed, err := ledger.Replay(entries)
	if err != nil {
		report.ReplayError = err.Error()
		return report, nil
	}
	report.ReplayedQuantity = replayed.Quantity
	report.ReplayedAverageCost = replayed.AverageCost
	report.Consistent = math.Abs(p.Quantity-replayed.Quantity) <= AuditTolerance &&
		math.Abs(p.AverageCost-replayed.AverageCost) <= AuditTolerance

	return report, nil
}

// StartSchedule runs Reconcile on the given cron spec and logs every drifted
// position. An empty spec disables the schedule. The returned function stops
// the scheduler and waits for a running audit to finish.
func (s *AuditService) StartSchedule(spec string) (stop func(), err error) {
	if spec == "" {
		return func() {}, nil
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, s.runScheduled); err != nil {
		return nil, fmt.Errorf("invalid audit schedule %q: %w", spec, err)
	}
	c.Start()
	log.WithField("schedule", spec).Info("ledger audit scheduled")

	return func() {
		<-c.Stop().Done()
	}, nil
}

func (s *AuditService) runScheduled() {
	reports, err := s.Reconcile(context.Background())
	if err != nil {
		log.WithError(err).Error("scheduled ledger audit failed")
		return
	}

	drifted := 0
	for _, r := range reports {
		if r.Consistent {
			continue
		}
		drifted++
		log.WithFields(log.Fields{
			"owner":            r.OwnerID,
			"position":         r.PositionID,
			"symbol":           r.Symbol,
			"storedQuantity":   r.StoredQuantity,
			"replayedQuantity": r.ReplayedQuantity,
			"replayError":      r.ReplayError,
		}).Warn("position drifted from its journal")
	}
	log.WithFields(log.Fields{
		"positions": len(reports),
		"drifted":   drifted,
	}).Info("ledger audit finished")
}
