package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"agendanotify/internal/config"
	"agendanotify/internal/metrics"
	"agendanotify/internal/models"
	"agendanotify/internal/repository"
)

// Scheduler runs the time-triggered campaign path: it scans due
// dispatch intents on a fixed tick, fans each one out sequentially to
// its resolved recipients, records per-recipient outcomes and finalizes
// the intent's aggregate status. The scheduler owns its ticker and stop
// signal; it is the sole writer of intent status once an intent leaves
// pending.
type Scheduler struct {
	intents    repository.IntentRepository
	channels   repository.ChannelRepository
	deliveries repository.DeliveryRepository
	resolver   *RecipientResolver
	sender     Sender
	cfg        config.SchedulerConfig
	logger     zerolog.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}

	// ticking guards against overlapping scans when Tick is also
	// triggered outside the loop
	ticking atomic.Bool
}

// NewScheduler creates a campaign scheduler
func NewScheduler(
	intents repository.IntentRepository,
	channels repository.ChannelRepository,
	deliveries repository.DeliveryRepository,
	resolver *RecipientResolver,
	sender Sender,
	cfg config.SchedulerConfig,
	logger zerolog.Logger,
) *Scheduler {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 60 * time.Second
	}
	return &Scheduler{
		intents:    intents,
		channels:   channels,
		deliveries: deliveries,
		resolver:   resolver,
		sender:     sender,
		cfg:        cfg,
		logger:     logger,
	}
}

// Start launches the tick loop. It is a no-op if the scheduler is
// already running. Shortly after start, stale sending intents are
// reconciled and one bootstrap scan runs so that intents scheduled
// while the process was down are not left waiting for the first full
// interval.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.run(s.stop, s.done)
	s.logger.Info().
		Dur("tick_interval", s.cfg.TickInterval).
		Dur("send_delay", s.cfg.SendDelay).
		Msg("campaign scheduler started")
}

// Stop cancels the timer and waits for an in-progress tick to finish.
// It never interrupts a tick mid-flight. Calling Stop on a stopped
// scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done
	s.logger.Info().Msg("campaign scheduler stopped")
}

// run is the loop goroutine. Ticks execute inline, so two ticks can
// never overlap; a tick that outlasts the interval simply absorbs the
// missed firings.
func (s *Scheduler) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ctx := context.Background()

	s.reconcileStale(ctx)

	bootstrap := time.NewTimer(s.cfg.BootstrapDelay)
	defer bootstrap.Stop()

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-bootstrap.C:
			s.Tick(ctx)
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// reconcileStale fails intents stuck in sending beyond the staleness
// threshold. A crash mid-send leaves intents in sending with nothing to
// finish them; failing them explicitly beats silent resumption.
func (s *Scheduler) reconcileStale(ctx context.Context) {
	if s.cfg.StaleAfter <= 0 {
		return
	}
	n, err := s.intents.FailStale(ctx, time.Now().Add(-s.cfg.StaleAfter))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to reconcile stale intents")
		return
	}
	if n > 0 {
		s.logger.Warn().Int("count", n).Msg("marked stale sending intents as failed")
	}
}

// Tick runs one due-intent scan. If a previous tick is still running,
// the call returns immediately; overlapping scans would race on the
// same intents.
func (s *Scheduler) Tick(ctx context.Context) {
	if !s.ticking.CompareAndSwap(false, true) {
		metrics.IncTickSkipped()
		s.logger.Warn().Msg("previous tick still running, skipping")
		return
	}
	defer s.ticking.Store(false)

	start := time.Now()
	defer func() { metrics.ObserveTick(time.Since(start)) }()

	due, err := s.intents.ListDue(ctx, time.Now())
	if err != nil {
		// Persistence being unreachable is fatal to this tick only
		s.logger.Error().Err(err).Msg("failed to list due intents")
		return
	}
	if len(due) == 0 {
		return
	}

	s.logger.Info().Int("count", len(due)).Msg("processing due intents")
	for _, intent := range due {
		s.processIntent(ctx, intent)
	}
}

// processIntent drives one intent through sending to a terminal status.
// Every failure below this boundary is converted into recorded state;
// one intent's failure never aborts the tick.
func (s *Scheduler) processIntent(ctx context.Context, intent *models.DispatchIntent) {
	log := s.logger.With().
		Int("intent_id", intent.ID).
		Int("tenant_id", intent.TenantID).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("panic while processing intent")
			s.fail(ctx, intent, log)
		}
	}()

	if err := s.intents.UpdateStatus(ctx, intent.ID, models.IntentStatusSending); err != nil {
		// Intent stays pending; the next tick retries the transition
		log.Error().Err(err).Msg("failed to transition intent to sending")
		return
	}

	instance, err := s.channels.GetConnected(ctx, intent.TenantID)
	if err != nil {
		log.Error().Err(err).Msg("failed to look up channel instance")
		s.fail(ctx, intent, log)
		return
	}
	if instance == nil {
		log.Warn().Msg("tenant has no connected channel instance")
		s.fail(ctx, intent, log)
		return
	}

	recipients, err := s.resolver.Resolve(ctx, intent.TenantID, intent.TargetMode, intent.RecipientIDs)
	if err != nil {
		log.Error().Err(err).Msg("failed to resolve recipients")
		s.fail(ctx, intent, log)
		return
	}

	// An empty audience is a successful no-op, not a failure
	if len(recipients) == 0 {
		s.finalize(ctx, intent, models.IntentStatusCompleted, 0, 0, log)
		return
	}

	sent := 0
	for i, recipient := range recipients {
		outcome := s.sender.Send(ctx, instance, recipient.Phone, intent.MessageBody)

		record := &models.DeliveryRecord{
			TenantID:          intent.TenantID,
			SourceKind:        models.SourceKindCampaign,
			SourceID:          intent.ID,
			RecipientPhone:    recipient.Phone,
			MessageBody:       intent.MessageBody,
			ChannelInstanceID: instance.ID,
			Status:            models.DeliveryStatusFailed,
		}
		if outcome.NormalizedPhone != "" {
			record.RecipientPhone = outcome.NormalizedPhone
		}
		if outcome.ProviderResponse != "" {
			providerResponse := outcome.ProviderResponse
			record.ProviderResponse = &providerResponse
		}
		if outcome.OK {
			record.Status = models.DeliveryStatusSent
			sent++
		} else if outcome.Err != nil {
			lastError := outcome.Err.Error()
			record.LastError = &lastError
		}

		if err := s.deliveries.Insert(ctx, record); err != nil {
			log.Error().Err(err).Int("contact_id", recipient.ID).Msg("failed to insert delivery record")
		}
		metrics.IncMessage(string(record.Status))

		// Courtesy spacing toward the provider
		if i < len(recipients)-1 {
			s.pause(ctx)
		}
	}

	status := models.IntentStatusCompleted
	if sent == 0 {
		status = models.IntentStatusFailed
	}
	s.finalize(ctx, intent, status, len(recipients), sent, log)
}

// pause sleeps the configured inter-send delay
func (s *Scheduler) pause(ctx context.Context) {
	if s.cfg.SendDelay <= 0 {
		return
	}
	timer := time.NewTimer(s.cfg.SendDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// fail marks an intent failed without totals beyond what was already
// written
func (s *Scheduler) fail(ctx context.Context, intent *models.DispatchIntent, log zerolog.Logger) {
	if err := s.intents.UpdateStatus(ctx, intent.ID, models.IntentStatusFailed); err != nil {
		log.Error().Err(err).Msg("failed to mark intent as failed")
		return
	}
	metrics.IncIntentProcessed(string(models.IntentStatusFailed))
	log.Warn().Msg("intent failed")
}

// finalize sets the terminal status and the aggregate totals exactly once
func (s *Scheduler) finalize(ctx context.Context, intent *models.DispatchIntent, status models.IntentStatus, total, sent int, log zerolog.Logger) {
	if err := s.intents.Finalize(ctx, intent.ID, status, total, sent); err != nil {
		log.Error().Err(err).Msg("failed to finalize intent")
		return
	}
	metrics.IncIntentProcessed(string(status))
	log.Info().
		Str("status", string(status)).
		Int("total_targets", total).
		Int("sent_count", sent).
		Msg("intent finalized")
}
