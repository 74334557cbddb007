package notices

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/primrose/pkg/metrics"
	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/reconciler"
)

// Retrier replays the operations that produce notices.
type Retrier interface {
	ReloadCollection(ctx context.Context, kind models.Kind) (reconciler.Collection, error)
	ResolveAssociatedRecord(ctx context.Context, kind models.Kind, vendorID, tourID string) (reconciler.Resolution, error)
}

// RetryResult carries whatever the replayed operation produced. Notice is set
// when the retry failed again and was recorded under a new token.
type RetryResult struct {
	Collection *reconciler.Collection
	Resolution *reconciler.Resolution
	Notice     *models.RecoverableError
}

type Service struct {
	board   Board
	retrier Retrier
	logger  ectologger.Logger
}

func NewService(board Board, retrier Retrier, logger ectologger.Logger) *Service {
	return &Service{
		board:   board,
		retrier: retrier,
		logger:  logger,
	}
}

// Publish records each non-nil notice. Board failures are logged only.
func (s *Service) Publish(ctx context.Context, notices ...*models.RecoverableError) {
	for _, n := range notices {
		if n == nil {
			continue
		}
		if err := s.board.Record(ctx, *n); err != nil {
			s.logger.WithContext(ctx).WithError(err).WithField("token", n.Token.String()).Warn("Failed to record notice")
			continue
		}
		metrics.RecordNotice(string(n.Kind))
	}
}

func (s *Service) List(ctx context.Context) ([]models.RecoverableError, error) {
	return s.board.List(ctx)
}

func (s *Service) Dismiss(ctx context.Context, token string) error {
	return s.board.Dismiss(ctx, token)
}

// Retry replays the failed fetch behind token and removes the notice.
func (s *Service) Retry(ctx context.Context, token string) (RetryResult, error) {
	notice, err := s.board.Get(ctx, token)
	if err != nil {
		return RetryResult{}, err
	}

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"token": token,
		"kind":  notice.Kind,
	})

	var result RetryResult
	switch {
	case notice.Kind.IsCatalog():
		col, err := s.retrier.ReloadCollection(ctx, notice.Kind)
		if err != nil {
			return RetryResult{}, err
		}
		result.Collection = &col
		result.Notice = col.Error
	case notice.Kind.IsAssociated():
		res, err := s.retrier.ResolveAssociatedRecord(ctx, notice.Kind, notice.VendorID, notice.TourID)
		if err != nil {
			return RetryResult{}, err
		}
		result.Resolution = &res
		result.Notice = res.Error
	default:
		return RetryResult{}, fmt.Errorf("notice %s has unsupported kind %q", token, notice.Kind)
	}

	if err := s.board.Dismiss(ctx, token); err != nil && !errors.Is(err, ErrNotFound) {
		log.WithError(err).Warn("Failed to dismiss retried notice")
	}
	s.Publish(ctx, result.Notice)

	log.WithField("failed_again", result.Notice != nil).Info("Retried notice")
	return result, nil
}
