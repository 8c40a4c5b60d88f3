package worker

import (
	"FileVault/config"
	"FileVault/internal/mq"
	"FileVault/internal/task"
	"FileVault/utils"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type outcome int

const (
	outcomeDone outcome = iota
	outcomeRequeue
	outcomeRetry
	outcomeDeadLetter
)

// decide maps a processing result to what happens with the delivery.
func decide(err error, attempt, maxRetry int) outcome {
	switch {
	case err == nil:
		return outcomeDone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeRequeue
	case task.Retryable(err) && maxRetry > 0 && attempt+1 <= maxRetry:
		return outcomeRetry
	default:
		return outcomeDeadLetter
	}
}

// VerifyWorker consumes index events and re-checks the stored content of
// each new record.
type VerifyWorker struct {
	client   *mq.Client
	verifier task.ContentVerifier
	limiter  *rate.Limiter
	cfg      config.Config
	logger   *zap.Logger
}

// RunVerifyWorker blocks until ctx is done or the delivery channel closes.
func RunVerifyWorker(ctx context.Context, cfg config.Config, verifier task.ContentVerifier, logger *zap.Logger) error {
	client, err := mq.Dial(cfg.RabbitMQURL)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeclareTopology(); err != nil {
		return err
	}

	prefetch := cfg.RabbitMQPrefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := client.Channel.Qos(prefetch, 0, false); err != nil {
		return err
	}

	deliveries, err := client.Channel.Consume(mq.QueueIndex, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	w := &VerifyWorker{
		client:   client,
		verifier: verifier,
		limiter:  utils.NewRateLimiter(cfg.VerifyRate, cfg.VerifyBurst),
		cfg:      cfg,
		logger:   logger,
	}

	return consume(ctx, deliveries, cfg.VerifyWorkerConcurrency, w.handle)
}

// consume dispatches deliveries to handle with bounded concurrency. It waits
// for in-flight handlers before returning so the channel outlives their acks.
func consume(ctx context.Context, deliveries <-chan amqp.Delivery, concurrency int, handle func(context.Context, amqp.Delivery)) error {
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("verify worker: delivery channel closed")
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				_ = delivery.Nack(false, true)
				return nil
			}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer wg.Done()
				defer func() { <-sem }()
				handle(ctx, d)
			}(delivery)
		}
	}
}

func (w *VerifyWorker) handle(ctx context.Context, delivery amqp.Delivery) {
	var event mq.IndexEvent
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		w.logger.Warn("verify worker: invalid message", zap.Error(err))
		_ = delivery.Ack(false)
		return
	}

	if err := w.limiter.Wait(ctx); err != nil {
		_ = delivery.Nack(false, true)
		return
	}

	procErr := task.ProcessIndexEvent(ctx, w.verifier, event)
	switch decide(procErr, event.Attempt, w.cfg.VerifyRetryMax) {
	case outcomeRequeue:
		_ = delivery.Nack(false, true)
		return
	case outcomeRetry:
		if err := w.scheduleRetry(ctx, event, procErr); err != nil {
			w.logger.Warn("verify worker: retry schedule failed", zap.String("id", event.FileID), zap.Error(err))
			_ = delivery.Nack(false, true)
			return
		}
	case outcomeDeadLetter:
		w.deadLetter(ctx, event, procErr)
	}
	_ = delivery.Ack(false)
}

func (w *VerifyWorker) scheduleRetry(ctx context.Context, event mq.IndexEvent, procErr error) error {
	event.Attempt++
	delay := task.RetryDelay(event.Attempt, w.cfg.VerifyRetryDelays)
	w.logger.Info("verify worker: retrying",
		zap.String("id", event.FileID),
		zap.Int("attempt", event.Attempt),
		zap.Duration("delay", delay),
		zap.Error(procErr),
	)
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return w.client.PublishRetry(ctx, body, delay)
}

func (w *VerifyWorker) deadLetter(ctx context.Context, event mq.IndexEvent, procErr error) {
	w.logger.Error("verify worker: giving up",
		zap.String("id", event.FileID),
		zap.Int("attempt", event.Attempt),
		zap.Error(procErr),
	)
	body, err := json.Marshal(mq.DeadLetter{Event: event, Error: procErr.Error(), FailedAt: time.Now().UTC()})
	if err != nil {
		return
	}
	if err := w.client.PublishDLQ(ctx, body); err != nil {
		w.logger.Warn("verify worker: dlq publish failed", zap.Error(err))
	}
}
