// Package actions accepts vendor redeem, stake and restock submissions.
package actions

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"watch2give-vendor/internal/domain"
	"watch2give-vendor/internal/idhash"
	"watch2give-vendor/internal/ledger"
	"watch2give-vendor/internal/observability"
	"watch2give-vendor/internal/queue"
	"watch2give-vendor/internal/storage"
)

// ErrValidation matches every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError is a user-facing rejection of a submission.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// Service validates, executes and records vendor actions.
type Service struct {
	vendor    string
	ledger    ledger.Ledger
	store     storage.ActionStore
	stats     storage.ActionStatsStore
	publisher queue.Publisher
	now       func() time.Time
	logger    logrus.FieldLogger
}

// Options contains configuration for creating a Service.
type Options struct {
	Vendor    string // vendor address actions are recorded against
	Ledger    ledger.Ledger
	Store     storage.ActionStore
	Stats     storage.ActionStatsStore
	Publisher queue.Publisher // Default: queue.NopPublisher
	Now       func() time.Time
	Logger    logrus.FieldLogger
}

// NewService creates an action service.
func NewService(opts Options) *Service {
	publisher := opts.Publisher
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Service{
		vendor:    opts.Vendor,
		ledger:    opts.Ledger,
		store:     opts.Store,
		stats:     opts.Stats,
		publisher: publisher,
		now:       now,
		logger:    logger.WithField("component", "actions"),
	}
}

// Submit validates req, applies it to the ledger and records it.
func (s *Service) Submit(ctx context.Context, req domain.ActionRequest) (*domain.ActionResponse, error) {
	action, err := s.validate(ctx, req)
	if err != nil {
		observability.RecordActionSubmitted(req.Action, "rejected")
		return nil, err
	}

	resp, err := s.execute(ctx, action, req)
	if err != nil {
		observability.RecordActionSubmitted(string(action), "error")
		return nil, err
	}

	observability.RecordActionSubmitted(string(action), "ok")
	return resp, nil
}

func (s *Service) validate(ctx context.Context, req domain.ActionRequest) (domain.ActionType, error) {
	if req.TokenID == "" {
		return "", invalid("please enter or scan a token")
	}
	if req.Action == "" {
		return "", invalid("please select an action")
	}
	action, ok := domain.ParseActionType(req.Action)
	if !ok {
		return "", invalid("unknown action")
	}
	if req.Amount < 0 || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return "", invalid("amount must be positive")
	}
	if action == domain.ActionRestock && len(req.ProofImages) == 0 {
		return "", invalid("please upload proof of delivery")
	}

	valid, err := s.ledger.ValidateToken(ctx, req.TokenID)
	if err != nil {
		return "", fmt.Errorf("validate token: %w", err)
	}
	if !valid {
		return "", invalid("invalid token")
	}
	return action, nil
}

func (s *Service) execute(ctx context.Context, action domain.ActionType, req domain.ActionRequest) (*domain.ActionResponse, error) {
	amount := decimal.NewFromFloat(req.Amount)
	moved := amount.IsPositive() && action != domain.ActionRestock
	if moved {
		if err := s.apply(ctx, action, amount); err != nil {
			return nil, err
		}
	}

	submittedAt := s.now().UnixMilli()
	rec := &domain.ActionRecord{
		TransactionID: idhash.ComputeTransactionID(s.vendor, req.TokenID, action, submittedAt),
		Vendor:        s.vendor,
		TokenID:       req.TokenID,
		Action:        action,
		Amount:        req.Amount,
		ProofURLs:     req.ProofImages,
		SubmittedAt:   submittedAt,
	}

	if err := s.store.Insert(ctx, rec); err != nil {
		if moved {
			s.revert(ctx, action, amount, rec.TransactionID)
		}
		return nil, fmt.Errorf("record action: %w", err)
	}

	log := s.logger.WithFields(logrus.Fields{
		"tx":     rec.TransactionID,
		"action": action,
		"token":  rec.TokenID,
	})

	// The action record is authoritative; analytics and the event stream
	// are best effort.
	if s.stats != nil {
		if err := s.stats.InsertEvent(ctx, rec); err != nil {
			log.WithError(err).Warn("failed to record action event")
		}
	}
	if err := s.publisher.Publish(ctx, rec); err != nil {
		log.WithError(err).Warn("failed to publish action event")
	}

	log.Info("action submitted")

	return &domain.ActionResponse{
		Success:       true,
		Message:       fmt.Sprintf("%s action completed successfully", action),
		TransactionID: rec.TransactionID,
	}, nil
}

// apply moves amount on the ledger for action.
func (s *Service) apply(ctx context.Context, action domain.ActionType, amount decimal.Decimal) error {
	switch action {
	case domain.ActionRedeem:
		return s.ledger.Redeem(ctx, s.vendor, amount)
	case domain.ActionStake:
		return s.ledger.Stake(ctx, s.vendor, amount)
	}
	return nil
}

// revert undoes apply when the action could not be recorded. It runs
// detached from ctx so a cancelled request still restores the balance.
func (s *Service) revert(ctx context.Context, action domain.ActionType, amount decimal.Decimal, tx string) {
	ctx = context.WithoutCancel(ctx)

	var err error
	switch action {
	case domain.ActionRedeem:
		err = s.ledger.Refund(ctx, s.vendor, amount)
	case domain.ActionStake:
		err = s.ledger.Unstake(ctx, s.vendor, amount)
	}
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"tx":     tx,
			"action": action,
			"amount": amount,
		}).Error("failed to revert ledger movement")
	}
}

// Stats returns per-action counts for vendor from the analytics store.
func (s *Service) Stats(ctx context.Context, vendor string) ([]domain.ActionCount, error) {
	if vendor == "" {
		vendor = s.vendor
	}
	return s.stats.CountsByAction(ctx, vendor)
}

// History returns the most recent actions of vendor, newest first.
func (s *Service) History(ctx context.Context, vendor string, limit int) ([]*domain.ActionRecord, error) {
	if vendor == "" {
		vendor = s.vendor
	}
	return s.store.ListByVendor(ctx, vendor, limit)
}

// Count returns the number of recorded actions of vendor.
func (s *Service) Count(ctx context.Context, vendor string) (int64, error) {
	if vendor == "" {
		vendor = s.vendor
	}
	return s.store.CountByVendor(ctx, vendor)
}

// Vendor returns the address actions are recorded against.
func (s *Service) Vendor() string {
	return s.vendor
}
