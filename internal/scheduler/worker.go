package scheduler

import (
	"context"
	"fmt"

	"agency_workspace_backend/internal/events"
	"agency_workspace_backend/internal/pipeline/domain"
	"agency_workspace_backend/internal/pipeline/repository"
	"agency_workspace_backend/platform/config"
	"agency_workspace_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *repository.Repository
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, repo *repository.Repository, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   repo,
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskFollowUpReminder, w.handleFollowUpReminder)

	return w, nil
}

// handleFollowUpReminder fires the due event if the opportunity is still
// open and the follow-up was not rescheduled past now. Stale reminders
// are dropped without error so asynq does not retry them.
func (w *Worker) handleFollowUpReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseFollowUpReminderPayload(task)
	if err != nil {
		return err
	}

	oppID, err := uuid.Parse(payload.OpportunityID)
	if err != nil {
		return err
	}

	agencyID, err := uuid.Parse(payload.AgencyID)
	if err != nil {
		return err
	}

	var opp *domain.Opportunity
	for _, candidate := range w.repo.Opportunities(ctx, agencyID) {
		if candidate.ID == oppID {
			found := candidate
			opp = &found
			break
		}
	}
	if opp == nil || opp.Stage.Terminal() || opp.NextFollowUpAt == nil {
		return nil
	}

	if w.bus == nil {
		return nil
	}

	agentID, _ := uuid.Parse(payload.AgentID)
	w.bus.Publish(ctx, events.FollowUpDue{
		BaseEvent:     events.NewBaseEvent(),
		AgencyID:      agencyID,
		AgentID:       agentID,
		OpportunityID: opp.ID,
		Title:         opp.Title,
	})
	w.log.WithAgency(agencyID.String()).Info("follow-up reminder dispatched",
		"opportunity_id", opp.ID.String())

	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
