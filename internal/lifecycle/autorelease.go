package lifecycle

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/pkg/enums"
)

// RunAutoRelease releases every escrow whose auto-release time has passed
// and that carries no active dispute. Rows locked by a concurrent run are
// skipped, so parallel runs split the work instead of double-releasing.
func (s *service) RunAutoRelease(ctx context.Context) ([]FinalizeResult, error) {
	var released []FinalizeResult
	err := s.inTx(ctx, func(r repos, _ *gorm.DB) error {
		due, err := r.payments.ListDueForAutoRelease(ctx, s.nowUTC(), s.cfg.AutoReleaseBatchSize)
		if err != nil {
			return storeErr(err, "select due payments")
		}
		released = make([]FinalizeResult, 0, len(due))
		for i := range due {
			final, err := s.finalize(ctx, r, &due[i], enums.PaymentStatusReleasedToHauler, true)
			if err != nil {
				return err
			}
			if final == nil {
				continue
			}
			released = append(released, *final)
		}
		return nil
	})
	if err != nil {
		released = nil
	}

	s.record(ctx, "auto_release", err, map[string]any{"released": len(released)})
	if err != nil {
		return nil, err
	}
	s.metrics.AddAutoReleased(len(released))
	return released, nil
}
