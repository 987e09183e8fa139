package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"rcsapi/internal/awsutil"
	"rcsapi/internal/config"
	"rcsapi/internal/domain"
	"rcsapi/internal/logging"
	sqsqueue "rcsapi/internal/queue/sqs"
	"rcsapi/internal/util"
)

// mock-feed stands in for the carrier's delivery-status feed during local
// development: it publishes one synthetic event for a tracking id onto the
// feed queue.
func main() {
	trackingID := flag.String("tracking-id", "", "callback message id to emit an event for (required)")
	status := flag.String("status", "delivered", "message status carried by the event")
	eventType := flag.String("type", "delivery", "event type")
	eventValue := flag.String("value", "", "optional event value")
	direction := flag.String("direction", domain.DirectionOutbound, "event direction: inbound or outbound")
	flag.Parse()

	cfg := config.LoadMockFeed()
	logging.Init("mock-feed", cfg.LogFormat)

	if *trackingID == "" {
		slog.Error("missing -tracking-id")
		os.Exit(2)
	}
	if *direction != domain.DirectionInbound && *direction != domain.DirectionOutbound {
		slog.Error("bad -direction", "direction", *direction)
		os.Exit(2)
	}

	ctx := context.Background()
	sqsClient, err := awsutil.NewSQSClient(ctx, cfg.AWSRegion, cfg.LocalstackEndpoint)
	if err != nil {
		slog.Error("sqs client init failed", "err", err)
		os.Exit(1)
	}

	producer := &sqsqueue.Producer{SQS: sqsClient, QueueURL: cfg.FeedQueueURL}

	now := util.NowUTC()
	ev := sqsqueue.DeliveryEvent{
		EventID:           util.NewEventID(),
		CallbackMessageID: *trackingID,
		MessageStatus:     *status,
		EventType:         *eventType,
		EventValue:        *eventValue,
		EventDirection:    *direction,
		Timestamp:         &now,
	}
	if err := producer.Enqueue(ctx, ev); err != nil {
		slog.Error("enqueue failed", "err", err)
		os.Exit(1)
	}
	slog.Info("event published", "event_id", ev.EventID, "callback_message_id", *trackingID, "status", *status)
}
