// Package worker analyzes polygons submitted as Pub/Sub jobs and publishes
// the reports to a result topic.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arealens/arealens/internal/analysis"
	"github.com/arealens/arealens/internal/api/models"
	"github.com/arealens/arealens/internal/geometry"
)

// DefaultJobTimeout bounds a single analysis.
const DefaultJobTimeout = 2 * time.Minute

// AnalysisJob is the message body consumed from the job subscription. The
// polygon fields are the same as the HTTP API's area request.
type AnalysisJob struct {
	// JobID correlates the job with its result. Generated when empty.
	JobID string `json:"jobId,omitempty"`
	models.AreaRequest
}

// AnalysisResult is the message body published to the result topic.
type AnalysisResult struct {
	JobID       string           `json:"jobId"`
	Report      *analysis.Report `json:"report"`
	CompletedAt time.Time        `json:"completedAt"`
}

// Disposition tells the subscriber what to do with a message.
type Disposition int

const (
	// Ack removes the message from the subscription.
	Ack Disposition = iota
	// Nack asks Pub/Sub to redeliver the message.
	Nack
)

func (d Disposition) String() string {
	if d == Nack {
		return "nack"
	}
	return "ack"
}

// Analyzer produces reports. *analysis.Service implements it.
type Analyzer interface {
	Aggregate(ctx context.Context, ring geometry.Ring, creds analysis.Credentials) *analysis.Report
}

// Publisher sends an encoded result to the result topic and waits for the
// server to accept it.
type Publisher interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) error
}

// ProcessorConfig holds configuration for a Processor.
type ProcessorConfig struct {
	Analyzer  Analyzer
	Publisher Publisher

	// Credentials configured for the worker. Job credentials override them.
	Credentials analysis.Credentials

	// JobTimeout bounds each analysis (default: DefaultJobTimeout).
	JobTimeout time.Duration

	Logger zerolog.Logger
	Now    func() time.Time
}

// Processor turns job messages into published results.
type Processor struct {
	cfg   ProcessorConfig
	stats processorStats
}

type processorStats struct {
	processed atomic.Int64
	published atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

// Stats is a snapshot of processor counters.
type Stats struct {
	Processed int64
	Published int64
	Dropped   int64
	Failed    int64
}

// NewProcessor creates a new job processor.
func NewProcessor(cfg ProcessorConfig) *Processor {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultJobTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Processor{cfg: cfg}
}

// Process handles one message body. Messages that can never succeed
// (undecodable JSON, invalid polygons) are acked and dropped. A failed
// publish is nacked so the job is retried.
func (p *Processor) Process(ctx context.Context, messageID string, data []byte) Disposition {
	p.stats.processed.Add(1)
	logger := p.cfg.Logger.With().Str("message_id", messageID).Logger()

	var job AnalysisJob
	if err := json.Unmarshal(data, &job); err != nil {
		logger.Warn().Err(err).Msg("dropping undecodable job")
		p.stats.dropped.Add(1)
		return Ack
	}
	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}
	logger = logger.With().Str("job_id", job.JobID).Logger()

	ring, fieldErrs := job.Validate()
	if len(fieldErrs) > 0 {
		logger.Warn().
			Str("field", fieldErrs[0].Field).
			Str("reason", fieldErrs[0].Message).
			Msg("dropping job with invalid polygon")
		p.stats.dropped.Add(1)
		return Ack
	}

	start := p.cfg.Now()
	jobCtx, cancel := context.WithTimeout(logger.WithContext(ctx), p.cfg.JobTimeout)
	report := p.cfg.Analyzer.Aggregate(jobCtx, ring, p.credentials(job.Credentials))
	cancel()

	result := AnalysisResult{
		JobID:       job.JobID,
		Report:      report,
		CompletedAt: p.cfg.Now().UTC(),
	}
	if err := p.publish(ctx, result); err != nil {
		logger.Error().Err(err).Msg("failed to publish result")
		p.stats.failed.Add(1)
		return Nack
	}

	p.stats.published.Add(1)
	logger.Info().
		Dur("duration", p.cfg.Now().Sub(start)).
		Interface("estimated", report.EstimatedCategories()).
		Msg("job completed")
	return Ack
}

func (p *Processor) publish(ctx context.Context, result AnalysisResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := p.cfg.Publisher.Publish(ctx, data, map[string]string{"jobId": result.JobID}); err != nil {
		return fmt.Errorf("publishing result: %w", err)
	}
	return nil
}

func (p *Processor) credentials(fromJob map[string]string) analysis.Credentials {
	merged := make(analysis.Credentials, len(p.cfg.Credentials)+len(fromJob))
	for name, token := range p.cfg.Credentials {
		merged[name] = token
	}
	for name, token := range fromJob {
		if token != "" {
			merged[name] = token
		}
	}
	return merged
}

// Stats returns a snapshot of the processor counters.
func (p *Processor) Stats() Stats {
	return Stats{
		Processed: p.stats.processed.Load(),
		Published: p.stats.published.Load(),
		Dropped:   p.stats.dropped.Load(),
		Failed:    p.stats.failed.Load(),
	}
}
