package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/directory-backend/internal/notifications"
	"github.com/angelmondragon/directory-backend/internal/projects"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/angelmondragon/directory-backend/pkg/logger"
	"github.com/angelmondragon/directory-backend/pkg/metrics"
	"github.com/google/uuid"
)

const (
	// StaleNeedsReminderJobName is the registry and lock name of the sweep.
	StaleNeedsReminderJobName = "stale-needs-reminder"

	defaultStaleAfter = 30 * 24 * time.Hour

	ReminderStatusSent  = "sent"
	ReminderStatusError = "error"
)

type staleNeedsRepo interface {
	ListStaleNeeds(ctx context.Context, cutoff time.Time) ([]projects.StaleProject, error)
	MarkNeedsReminded(ctx context.Context, projectID uuid.UUID, at time.Time) error
}

type reminderSender interface {
	SendNeedReminder(ctx context.Context, reminder notifications.NeedReminder) error
}

type StaleNeedsReminderJobParams struct {
	Logger     *logger.Logger
	Repository staleNeedsRepo
	Notifier   reminderSender
	Metrics    *metrics.ReminderMetrics
	// Lock keeps the cron loop and manual admin runs from sweeping at once.
	// Defaults to a process-local lock.
	Lock       Lock
	StaleAfter time.Duration
}

// ReminderResult is the outcome for one eligible project.
type ReminderResult struct {
	ProjectID    uuid.UUID `json:"projectId"`
	ProjectTitle string    `json:"projectTitle"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
}

// SweepResult summarizes one reminder sweep.
type SweepResult struct {
	TotalEligible int              `json:"totalEligible"`
	Sent          int              `json:"sent"`
	Errors        int              `json:"errors"`
	Results       []ReminderResult `json:"results"`
}

// StaleNeedsReminderJob emails creators whose project needs have not changed
// within StaleAfter. The watermark only moves after a successful send, so a
// failed project stays eligible for the next sweep.
type StaleNeedsReminderJob struct {
	logg       *logger.Logger
	repo       staleNeedsRepo
	notifier   reminderSender
	metrics    *metrics.ReminderMetrics
	lock       Lock
	staleAfter time.Duration
	now        func() time.Time
}

func NewStaleNeedsReminderJob(params StaleNeedsReminderJobParams) (*StaleNeedsReminderJob, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("reminder repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("reminder notifier required")
	}
	lock := params.Lock
	if lock == nil {
		lock = NewLocalLock()
	}
	staleAfter := params.StaleAfter
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	return &StaleNeedsReminderJob{
		logg:       params.Logger,
		repo:       params.Repository,
		notifier:   params.Notifier,
		metrics:    params.Metrics,
		lock:       lock,
		staleAfter: staleAfter,
		now:        time.Now,
	}, nil
}

func (j *StaleNeedsReminderJob) Name() string { return StaleNeedsReminderJobName }

// Run is the cron entry point. A sweep already held by another runner is
// not a failure of this cycle.
func (j *StaleNeedsReminderJob) Run(ctx context.Context) error {
	_, err := j.Sweep(ctx, j.now())
	if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		j.logg.Info(ctx, "reminder sweep skipped: lock held elsewhere")
		return nil
	}
	return err
}

// Sweep sends one reminder per eligible project. Per-project failures are
// recorded in the result and never abort the batch; only a failure to list
// candidates or to take the sweep lock is returned as an error.
func (j *StaleNeedsReminderJob) Sweep(ctx context.Context, now time.Time) (*SweepResult, error) {
	locked, err := j.lock.Acquire(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire reminder lock")
	}
	if !locked {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "reminder sweep already running")
	}
	defer func() {
		if relErr := j.lock.Release(context.WithoutCancel(ctx)); relErr != nil {
			j.logg.Error(ctx, "failed to release reminder lock", relErr)
		}
	}()

	now = now.UTC()
	cutoff := now.Add(-j.staleAfter)
	candidates, err := j.repo.ListStaleNeeds(ctx, cutoff)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stale projects")
	}

	result := &SweepResult{
		TotalEligible: len(candidates),
		Results:       make([]ReminderResult, 0, len(candidates)),
	}
	for _, candidate := range candidates {
		var outcome ReminderResult
		if ctxErr := ctx.Err(); ctxErr != nil {
			// Unsent projects keep their watermark and stay eligible.
			outcome = ReminderResult{
				ProjectID:    candidate.ProjectID,
				ProjectTitle: candidate.ProjectTitle,
				Status:       ReminderStatusError,
				Error:        ctxErr.Error(),
			}
		} else {
			outcome = j.remind(ctx, candidate, now)
		}
		if outcome.Status == ReminderStatusSent {
			result.Sent++
		} else {
			result.Errors++
		}
		result.Results = append(result.Results, outcome)
	}

	j.metrics.ObserveSweep(result.TotalEligible, result.Sent, result.Errors)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"total_eligible": result.TotalEligible,
		"sent":           result.Sent,
		"errors":         result.Errors,
	})
	if result.Errors > 0 {
		j.logg.Warn(logCtx, "stale needs sweep finished with errors")
	} else {
		j.logg.Info(logCtx, "stale needs sweep complete")
	}
	return result, nil
}

func (j *StaleNeedsReminderJob) remind(ctx context.Context, candidate projects.StaleProject, now time.Time) ReminderResult {
	outcome := ReminderResult{
		ProjectID:    candidate.ProjectID,
		ProjectTitle: candidate.ProjectTitle,
	}
	projectCtx := j.logg.WithProjectID(ctx, candidate.ProjectID.String())

	err := j.notifier.SendNeedReminder(projectCtx, notifications.NeedReminder{
		To:           candidate.Email,
		ProfileName:  candidate.ProfileName,
		ProjectTitle: candidate.ProjectTitle,
		ProjectID:    candidate.ProjectID,
	})
	if err == nil {
		// The email is out; the watermark must land even if the caller went away.
		err = j.repo.MarkNeedsReminded(context.WithoutCancel(projectCtx), candidate.ProjectID, now)
	}
	if err != nil {
		j.logg.Error(projectCtx, "stale needs reminder failed", err)
		outcome.Status = ReminderStatusError
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Status = ReminderStatusSent
	return outcome
}
