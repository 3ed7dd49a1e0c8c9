package worker

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// PubSubConfig holds configuration for the Pub/Sub worker.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	ResultTopic      string

	// MaxOutstandingMessages bounds concurrent jobs (default: 10).
	MaxOutstandingMessages int

	Processor ProcessorConfig
	Logger    zerolog.Logger
}

// PubSubWorker receives analysis jobs from a subscription.
type PubSubWorker struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	publisher        *pubsub.Publisher
	subscriptionName string
	processor        *Processor
	logger           zerolog.Logger
}

// NewPubSubWorker creates the Pub/Sub client, the job subscriber and the
// result publisher. cfg.Processor.Publisher is replaced by the result topic.
func NewPubSubWorker(ctx context.Context, cfg PubSubConfig) (*PubSubWorker, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	maxOutstanding := cfg.MaxOutstandingMessages
	if maxOutstanding <= 0 {
		maxOutstanding = 10
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = maxOutstanding
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	publisher := client.Publisher(cfg.ResultTopic)

	procCfg := cfg.Processor
	procCfg.Publisher = TopicPublisher{publisher: publisher}
	procCfg.Logger = cfg.Logger

	return &PubSubWorker{
		client:           client,
		subscriber:       subscriber,
		publisher:        publisher,
		subscriptionName: cfg.SubscriptionName,
		processor:        NewProcessor(procCfg),
		logger:           cfg.Logger,
	}, nil
}

// Start processes messages until ctx is cancelled.
func (w *PubSubWorker) Start(ctx context.Context) error {
	w.logger.Info().
		Str("subscription", w.subscriptionName).
		Msg("starting pubsub worker")

	return w.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		logger := w.logger.With().
			Str("message_id", msg.ID).
			Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
			Logger()
		logger.Debug().Msg("received pubsub message")

		switch w.processor.Process(ctx, msg.ID, msg.Data) {
		case Nack:
			msg.Nack()
		default:
			msg.Ack()
		}
	})
}

// Stats returns the processor counters.
func (w *PubSubWorker) Stats() Stats {
	return w.processor.Stats()
}

// Close flushes pending results and closes the client.
func (w *PubSubWorker) Close() error {
	w.publisher.Stop()
	return w.client.Close()
}

// TopicPublisher adapts a Pub/Sub publisher to the Publisher interface.
type TopicPublisher struct {
	publisher *pubsub.Publisher
}

// Publish sends the message and blocks until the server acknowledges it.
func (p TopicPublisher) Publish(ctx context.Context, data []byte, attributes map[string]string) error {
	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attributes,
	})
	if _, err := result.Get(ctx); err != nil {
		return err
	}
	return nil
}
