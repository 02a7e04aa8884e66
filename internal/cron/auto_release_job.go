package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/livehaul-backend/internal/lifecycle"
	"github.com/angelmondragon/livehaul-backend/internal/notifications"
	pkgerrors "github.com/angelmondragon/livehaul-backend/pkg/errors"
	"github.com/angelmondragon/livehaul-backend/pkg/logger"
)

// AutoReleaseJobName is the registry and metrics name of the escrow job.
const AutoReleaseJobName = "escrow-auto-release"

// autoReleaseAttempts bounds batches retried after losing a lock race.
const autoReleaseAttempts = 2

type autoReleaser interface {
	RunAutoRelease(ctx context.Context) ([]lifecycle.FinalizeResult, error)
}

// AutoReleaseJobParams configure the escrow auto-release job.
type AutoReleaseJobParams struct {
	Logger    *logger.Logger
	Lifecycle autoReleaser
	Sink      notifications.Sink
}

type autoReleaseJob struct {
	logg   *logger.Logger
	engine autoReleaser
	sink   notifications.Sink
}

// NewAutoReleaseJob builds the job that releases confirmed, undisputed
// escrows once their hold has elapsed.
func NewAutoReleaseJob(params AutoReleaseJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lifecycle == nil {
		return nil, fmt.Errorf("lifecycle service required")
	}
	sink := params.Sink
	if sink == nil {
		sink = notifications.Nop{}
	}
	return &autoReleaseJob{logg: params.Logger, engine: params.Lifecycle, sink: sink}, nil
}

func (j *autoReleaseJob) Name() string { return AutoReleaseJobName }

func (j *autoReleaseJob) Run(ctx context.Context) error {
	var (
		released []lifecycle.FinalizeResult
		err      error
	)
	for attempt := 1; attempt <= autoReleaseAttempts; attempt++ {
		released, err = j.engine.RunAutoRelease(ctx)
		if err == nil || !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			break
		}
		j.logg.Warn(j.logg.WithField(ctx, "attempt", attempt), "escrow auto-release batch conflicted")
	}
	if err != nil {
		return fmt.Errorf("run auto-release: %w", err)
	}
	for i := range released {
		notifications.Publish(ctx, j.sink, j.logg,
			notifications.NewEvent(notifications.EventEscrowAutoReleased, released[i]))
	}
	if len(released) > 0 {
		j.logg.Info(j.logg.WithField(ctx, "released", len(released)), "escrow auto-release batch committed")
	}
	return nil
}
