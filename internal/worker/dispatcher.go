package worker

import (
	"context"
	"encoding/json"
	"time"

	"mydienst/internal/config"
	"mydienst/internal/domain"
	"mydienst/internal/events"
	"mydienst/internal/mail"
	"mydienst/internal/metrics"

	"github.com/rs/zerolog"
)

// task is one queued email with its retry state.
type task struct {
	msg     domain.Message
	attempt int
}

// Dispatcher sends notification emails off the request path. Booking
// and cancellation handlers only publish an event; the dispatcher
// renders the mails, queues them, and delivers with backoff. Delivery
// is best-effort: a full queue or exhausted retries drop the task and
// the API response is never affected.
type Dispatcher struct {
	mailer     domain.Mailer
	retry      RetryPolicy
	queue      chan task
	brand      string
	adminEmail string
	replyTo    string
	logger     zerolog.Logger
}

func NewDispatcher(cfg config.SMTPConfig, notify config.NotifyConfig, mailer domain.Mailer, logger *zerolog.Logger) *Dispatcher {
	retry := RetryPolicy{
		MaxRetries:    notify.MaxRetries,
		BackoffFactor: notify.Backoff,
	}
	if d, err := time.ParseDuration(notify.InitialDelay); err == nil {
		retry.InitialDelay = d
	}
	if d, err := time.ParseDuration(notify.MaxDelay); err == nil {
		retry.MaxDelay = d
	}
	if retry.MaxRetries <= 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay <= 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay <= 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor <= 0 {
		retry.BackoffFactor = 2
	}

	queueSize := notify.QueueSize
	if queueSize <= 0 {
		queueSize = 128
	}

	return &Dispatcher{
		mailer:     mailer,
		retry:      retry,
		queue:      make(chan task, queueSize),
		brand:      cfg.Brand,
		adminEmail: cfg.AdminEmail,
		replyTo:    cfg.ReplyTo,
		logger:     logger.With().Str("component", "notify").Logger(),
	}
}

// AttachTo subscribes the dispatcher to the booking lifecycle events.
func (d *Dispatcher) AttachTo(bus *events.Bus) {
	bus.Subscribe(events.EventBookingCreated, d.onBookingCreated)
	bus.Subscribe(events.EventBookingCanceled, d.onBookingCanceled)
}

func (d *Dispatcher) onBookingCreated(event *events.Event) error {
	var payload events.BookingPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	rendered := mail.BookingConfirmation(d.brand, payload)
	d.enqueuePair(payload.Email, rendered)
	return nil
}

func (d *Dispatcher) onBookingCanceled(event *events.Event) error {
	var payload events.BookingPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	rendered := mail.BookingCancellation(d.brand, payload)
	d.enqueuePair(payload.Email, rendered)
	return nil
}

func (d *Dispatcher) enqueuePair(customer string, r mail.Rendered) {
	d.Enqueue(domain.Message{To: customer, Subject: r.Subject, HTML: r.HTMLCustomer, ReplyTo: d.replyTo})
	if d.adminEmail != "" {
		d.Enqueue(domain.Message{To: d.adminEmail, Subject: r.Subject, HTML: r.HTMLAdmin, ReplyTo: d.replyTo})
	}
}

// Enqueue schedules a message without blocking. When the queue is full
// the message is dropped: notifications are at-most-once.
func (d *Dispatcher) Enqueue(msg domain.Message) {
	select {
	case d.queue <- task{msg: msg, attempt: 0}:
	default:
		metrics.IncEmail("dropped")
		d.logger.Warn().Str("to", msg.To).Msg("notification queue full, email dropped")
	}
}

// Start runs the delivery loop until ctx is done.
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info().Msg("notification dispatcher started")
	defer d.logger.Info().Msg("notification dispatcher stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-d.queue:
			d.deliver(ctx, t)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, t task) {
	err := d.mailer.Send(ctx, t.msg)
	if err == nil {
		metrics.IncEmail("sent")
		return
	}

	t.attempt++
	if t.attempt >= d.retry.MaxRetries {
		metrics.IncEmail("failed")
		d.logger.Error().Err(err).Str("to", t.msg.To).Int("attempts", t.attempt).
			Msg("notification delivery gave up")
		return
	}

	delay := d.retry.NextDelay(t.attempt)
	d.logger.Warn().Err(err).Str("to", t.msg.To).Dur("retry_in", delay).Msg("notification delivery failed")

	// requeue after the backoff delay without holding up the loop
	go func() {
		select {
		case <-ctx.Done():
		case <-time.After(delay):
			select {
			case d.queue <- t:
			default:
				metrics.IncEmail("dropped")
			}
		}
	}()
}
