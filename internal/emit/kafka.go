package emit

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kprom"

	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
)

// DefaultKafkaBatchSize is the number of records per synchronous produce
const DefaultKafkaBatchSize = 500

// KafkaConfig selects the cluster and topic statements are published to
type KafkaConfig struct {
	Brokers   []string `yaml:"brokers,omitempty"`
	Topic     string   `yaml:"topic"`
	ClientID  string   `yaml:"client_id"`
	BatchSize int      `yaml:"batch_size"`
}

// Enabled reports whether publishing to Kafka is configured
func (cfg KafkaConfig) Enabled() bool {
	return len(cfg.Brokers) > 0
}

func (cfg KafkaConfig) Validate() error {
	if !cfg.Enabled() {
		return nil
	}
	if cfg.Topic == "" {
		return errors.New("kafka topic is required when brokers are set")
	}
	if cfg.BatchSize < 0 {
		return errors.Errorf("kafka batch size must not be negative, got %d", cfg.BatchSize)
	}
	return nil
}

// KafkaEmitter publishes one record per statement. The record key is the
// dataset graph so that a dataset keeps its order within one partition; the
// value is the statement as a single N-Quads line. It is safe for concurrent
// use, so one producer can serve several translations.
type KafkaEmitter struct {
	mu        sync.Mutex
	ctx       context.Context
	client    *kgo.Client
	batchSize int
	pending   []*kgo.Record
	line      strings.Builder
	logger    log.Logger

	produced int64
}

// NewKafkaEmitter connects a producer. ctx bounds every produce call.
// Client metrics are registered on reg with the obo2rdf_kafka_ prefix.
func NewKafkaEmitter(ctx context.Context, cfg KafkaConfig, logger log.Logger, reg prometheus.Registerer) (*KafkaEmitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled() {
		return nil, errors.New("no kafka brokers configured")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultKafkaBatchSize
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "obo2rdf"
	}

	metrics := kprom.NewMetrics(
		"",
		kprom.Registerer(prometheus.WrapRegistererWithPrefix("obo2rdf_kafka_", reg)),
		kprom.FetchAndProduceDetail(kprom.Batches, kprom.Records, kprom.CompressedBytes, kprom.UncompressedBytes))

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.WithLogger(newKafkaLogger(logger)),
		kgo.WithHooks(metrics),
		kgo.ProducerLinger(50*time.Millisecond),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create kafka client")
	}

	return &KafkaEmitter{
		ctx:       ctx,
		client:    client,
		batchSize: cfg.BatchSize,
		pending:   make([]*kgo.Record, 0, cfg.BatchSize),
		logger:    logger,
	}, nil
}

func (e *KafkaEmitter) Emit(quads []*rdf.Quad) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, q := range quads {
		e.line.Reset()
		rdf.WriteQuadCanonical(&e.line, q)

		var key []byte
		if g, ok := q.Graph.(*rdf.NamedNode); ok {
			key = []byte(g.IRI)
		}
		e.pending = append(e.pending, &kgo.Record{Key: key, Value: []byte(e.line.String())})
	}
	if len(e.pending) < e.batchSize {
		return nil
	}
	return e.flush()
}

func (e *KafkaEmitter) flush() error {
	if len(e.pending) == 0 {
		return nil
	}
	// The batch is discarded even on failure; acknowledged records are never resent.
	results := e.client.ProduceSync(e.ctx, e.pending...)
	e.pending = e.pending[:0]

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		e.produced++
	}
	if err := results.FirstErr(); err != nil {
		level.Warn(e.logger).Log("msg", "dropping failed kafka batch", "records", len(results), "failed", failed, "err", err)
		return errors.Wrapf(err, "produce %d of %d records", failed, len(results))
	}
	return nil
}

// Produced returns the number of records acknowledged by the cluster
func (e *KafkaEmitter) Produced() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.produced
}

// Close produces what is still buffered and closes the client
func (e *KafkaEmitter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.flush()
	e.client.Close()
	level.Debug(e.logger).Log("msg", "kafka emitter closed", "records", e.produced)
	return err
}

type kafkaLogger struct {
	logger log.Logger
}

func newKafkaLogger(logger log.Logger) *kafkaLogger {
	return &kafkaLogger{
		logger: log.With(logger, "component", "kafka_client"),
	}
}

// Level always answers Info so the client never builds debug messages
func (l *kafkaLogger) Level() kgo.LogLevel {
	return kgo.LogLevelInfo
}

func (l *kafkaLogger) Log(lev kgo.LogLevel, msg string, keyvals ...any) {
	if lev == kgo.LogLevelNone {
		return
	}
	keyvals = append([]any{"msg", msg}, keyvals...)
	switch lev {
	case kgo.LogLevelDebug:
		level.Debug(l.logger).Log(keyvals...)
	case kgo.LogLevelInfo:
		level.Info(l.logger).Log(keyvals...)
	case kgo.LogLevelWarn:
		level.Warn(l.logger).Log(keyvals...)
	case kgo.LogLevelError:
		level.Error(l.logger).Log(keyvals...)
	}
}
