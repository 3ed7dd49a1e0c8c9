package worker_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arealens/arealens/internal/analysis"
	"github.com/arealens/arealens/internal/geometry"
	"github.com/arealens/arealens/internal/worker"
)

type fakeAnalyzer struct {
	mu       sync.Mutex
	calls    int
	ring     geometry.Ring
	creds    analysis.Credentials
	deadline bool
}

func (f *fakeAnalyzer) Aggregate(ctx context.Context, ring geometry.Ring, creds analysis.Credentials) *analysis.Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.ring = ring
	f.creds = creds
	_, f.deadline = ctx.Deadline()
	return &analysis.Report{
		Metrics: geometry.Compute(ring),
		Provenance: map[analysis.Category]analysis.Provenance{
			analysis.CategoryPopulation: {Source: "geographic-estimate", Estimated: true},
		},
	}
}

type fakePublisher struct {
	mu         sync.Mutex
	err        error
	messages   [][]byte
	attributes []map[string]string
}

func (f *fakePublisher) Publish(_ context.Context, data []byte, attributes map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, data)
	f.attributes = append(f.attributes, attributes)
	return nil
}

func newProcessor(analyzer *fakeAnalyzer, publisher *fakePublisher, creds analysis.Credentials) *worker.Processor {
	return worker.NewProcessor(worker.ProcessorConfig{
		Analyzer:    analyzer,
		Publisher:   publisher,
		Credentials: creds,
		Logger:      zerolog.Nop(),
		Now:         func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) },
	})
}

const triangleJob = `{"jobId":"job-1","ring":[{"lat":10,"lon":10},{"lat":10,"lon":10.1},{"lat":10.1,"lon":10}]}`

func TestProcessor_PublishesResult(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	publisher := &fakePublisher{}
	p := newProcessor(analyzer, publisher, nil)

	got := p.Process(context.Background(), "msg-1", []byte(triangleJob))

	assert.Equal(t, worker.Ack, got)
	assert.Equal(t, 1, analyzer.calls)
	assert.Len(t, analyzer.ring, 3)
	assert.True(t, analyzer.deadline, "analysis must run under the job timeout")

	require.Len(t, publisher.messages, 1)
	assert.Equal(t, map[string]string{"jobId": "job-1"}, publisher.attributes[0])

	var result worker.AnalysisResult
	require.NoError(t, json.Unmarshal(publisher.messages[0], &result))
	assert.Equal(t, "job-1", result.JobID)
	require.NotNil(t, result.Report)
	assert.Equal(t, 3, result.Report.Metrics.VertexCount)
	assert.Equal(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), result.CompletedAt)

	assert.Equal(t, worker.Stats{Processed: 1, Published: 1}, p.Stats())
}

func TestProcessor_GeneratesJobID(t *testing.T) {
	publisher := &fakePublisher{}
	p := newProcessor(&fakeAnalyzer{}, publisher, nil)

	got := p.Process(context.Background(), "msg-2", []byte(`{"encodedPolyline":"_p~iF~ps|U_ulLnnqC_mqNvxq`+"`"+`@"}`))

	require.Equal(t, worker.Ack, got)
	require.Len(t, publisher.messages, 1)

	var result worker.AnalysisResult
	require.NoError(t, json.Unmarshal(publisher.messages[0], &result))
	assert.Len(t, result.JobID, 36)
}

func TestProcessor_MergesCredentials(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	p := newProcessor(analyzer, &fakePublisher{}, analysis.Credentials{"openweathermap": "worker", "meteostat": "worker"})

	job := `{"ring":[{"lat":0,"lon":0}],"credentials":{"meteostat":"job"}}`
	require.Equal(t, worker.Ack, p.Process(context.Background(), "msg-3", []byte(job)))

	assert.Equal(t, "worker", analyzer.creds.For("openweathermap"))
	assert.Equal(t, "job", analyzer.creds.For("meteostat"))
}

func TestProcessor_DropsMalformedMessages(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not JSON", data: `ring please`},
		{name: "no polygon", data: `{"jobId":"job-x"}`},
		{name: "out of range", data: `{"ring":[{"lat":-91,"lon":0}]}`},
		{name: "bad polyline", data: `{"encodedPolyline":"~"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &fakeAnalyzer{}
			publisher := &fakePublisher{}
			p := newProcessor(analyzer, publisher, nil)

			assert.Equal(t, worker.Ack, p.Process(context.Background(), "msg", []byte(tt.data)))
			assert.Zero(t, analyzer.calls)
			assert.Empty(t, publisher.messages)
			assert.Equal(t, worker.Stats{Processed: 1, Dropped: 1}, p.Stats())
		})
	}
}

func TestProcessor_NacksOnPublishFailure(t *testing.T) {
	publisher := &fakePublisher{err: assert.AnError}
	p := newProcessor(&fakeAnalyzer{}, publisher, nil)

	got := p.Process(context.Background(), "msg-4", []byte(triangleJob))

	assert.Equal(t, worker.Nack, got)
	assert.Equal(t, worker.Stats{Processed: 1, Failed: 1}, p.Stats())
}

func TestDisposition_String(t *testing.T) {
	assert.Equal(t, "ack", worker.Ack.String())
	assert.Equal(t, "nack", worker.Nack.String())
}
