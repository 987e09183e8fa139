package feed

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"rcsapi/internal/observability"
	sqsqueue "rcsapi/internal/queue/sqs"
	"rcsapi/internal/store"
	"rcsapi/internal/store/pg"
	"rcsapi/internal/util"
)

type Store interface {
	GetMessageByTrackingID(ctx context.Context, trackingID string) (store.Message, bool, error)
	InsertEvent(ctx context.Context, in store.EventInsert) error
}

var errUnknownMessage = errors.New("no message for callback_message_id")

// Processor lands carrier delivery events in the store. The envelope names
// only the tracking id; account, template and campaign fields are denormalized
// from the message row so events stay queryable without further joins.
type Processor struct {
	Store   Store
	Limiter *rate.Limiter
	Breaker *gobreaker.CircuitBreaker
}

func (p *Processor) Process(ctx context.Context, ev sqsqueue.DeliveryEvent) error {
	if ev.EventID == "" || ev.CallbackMessageID == "" || ev.MessageStatus == "" || ev.EventType == "" || ev.EventDirection == "" {
		// Malformed envelope. Retrying cannot fix it; drop it.
		observability.FeedEvents.WithLabelValues("dropped").Inc()
		slog.Warn("dropping malformed delivery event", "event_id", ev.EventID, "callback_message_id", ev.CallbackMessageID)
		return nil
	}

	msg, found, err := p.Store.GetMessageByTrackingID(ctx, ev.CallbackMessageID)
	if err != nil {
		return err
	}
	if !found {
		// The feed can outrun the dispatcher; let SQS retry later.
		observability.FeedEvents.WithLabelValues("retry").Inc()
		return errUnknownMessage
	}

	if p.Limiter != nil {
		waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := p.Limiter.Wait(waitCtx)
		cancel()
		if err != nil {
			observability.FeedEvents.WithLabelValues("rate_limited").Inc()
			return err
		}
	}

	start := time.Now()
	err = p.insertWithBreaker(ctx, buildInsert(ev, msg))

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		// Store protection tripped; this is transient, not a bad event.
		observability.FeedEvents.WithLabelValues("cb_open").Inc()
		return err
	}
	if pg.IsUniqueViolation(err) {
		// Redelivered envelope; the event is already on record.
		observability.FeedEvents.WithLabelValues("duplicate").Inc()
		return nil
	}
	if pg.IsForeignKeyViolation(err) {
		// Message row disappeared between lookup and insert; same retry
		// path as an unknown message.
		observability.FeedEvents.WithLabelValues("retry").Inc()
		return errUnknownMessage
	}
	if err != nil {
		observability.FeedEvents.WithLabelValues("error").Inc()
		return err
	}

	observability.FeedInsertLatency.Observe(time.Since(start).Seconds())
	observability.FeedEvents.WithLabelValues("ok").Inc()
	return nil
}

func (p *Processor) insertWithBreaker(ctx context.Context, in store.EventInsert) error {
	insert := func() (any, error) {
		dbCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return nil, p.Store.InsertEvent(dbCtx, in)
	}

	if p.Breaker == nil {
		_, err := insert()
		return err
	}
	_, err := p.Breaker.Execute(insert)
	return err
}

func buildInsert(ev sqsqueue.DeliveryEvent, msg store.Message) store.EventInsert {
	text := ev.MessageText
	if text == "" {
		text = msg.MessageText
	}
	occurred := util.NowUTC()
	if ev.Timestamp != nil {
		occurred = *ev.Timestamp
	}

	return store.EventInsert{
		EventID:        ev.EventID,
		TrackingID:     msg.TrackingID,
		AccountID:      msg.AccountID,
		TemplateID:     msg.TemplateID,
		CampaignName:   msg.CampaignName,
		CampaignID:     msg.CampaignID,
		Channel:        msg.Channel,
		ChannelType:    msg.ChannelType,
		MessageText:    text,
		MessageStatus:  ev.MessageStatus,
		EventType:      ev.EventType,
		EventValue:     ev.EventValue,
		EventDirection: ev.EventDirection,
		CallbackURL:    msg.CallbackURL,
		ScheduleTo:     msg.ScheduleTo,
		Timestamp:      occurred,
		Now:            util.NowUTC(),
	}
}
