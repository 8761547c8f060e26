package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"points-server/internal/domain/transaction"
	otelinfra "points-server/internal/infrastructure/observability/otel"
)

var (
	// ErrQueueFull キューが満杯で記録を破棄した
	ErrQueueFull = errors.New("transaction recorder queue is full")
	// ErrRecorderClosed Close後に記録しようとした
	ErrRecorderClosed = errors.New("transaction recorder is closed")
)

// Entry 記録するトランザクションの内容
type Entry struct {
	IssuerID   string
	ReceiverID string
	Points     int64
	Type       transaction.TransactionType
	Status     transaction.TransactionStatus
	Items      transaction.Items
}

type job struct {
	spanContext trace.SpanContext
	txn         *transaction.Transaction
}

// Recorder 監査用トランザクションを非同期に保存する
type Recorder struct {
	repo    transaction.TransactionRepository
	logger  *otelinfra.Logger
	metrics *otelinfra.Metrics
	tracer  trace.Tracer
	timeout time.Duration
	now     func() time.Time

	mu        sync.RWMutex
	closed    bool
	queue     chan job
	done      chan struct{}
	closeOnce sync.Once
}

// Option Recorderのオプション
type Option func(*Recorder)

// WithClock 作成日時の取得に使う時計を差し替える
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// NewRecorder 新しいRecorderを作成し、workers個の書き込みgoroutineを起動する
func NewRecorder(
	repo transaction.TransactionRepository,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	workers, bufferSize int,
	timeout time.Duration,
	opts ...Option,
) *Recorder {
	if workers <= 0 {
		workers = 1
	}
	if bufferSize < 0 {
		bufferSize = 0
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	r := &Recorder{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer("transaction-recorder"),
		timeout: timeout,
		now:     time.Now,
		queue:   make(chan job, bufferSize),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for j := range r.queue {
				r.persist(j)
			}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(r.done)
	}()

	return r
}

// Record トランザクションIDを採番してキューに積む。呼び出し元をブロックしない。
// キューが満杯の場合、記録は破棄されErrQueueFullを返す（IDは採番済みのものを返す）
func (r *Recorder) Record(ctx context.Context, entry Entry) (string, error) {
	transactionID := uuid.NewString()
	txn, err := transaction.NewTransaction(
		transactionID,
		entry.IssuerID,
		entry.ReceiverID,
		entry.Points,
		entry.Type,
		entry.Status,
		entry.Items,
		r.now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to build transaction: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return "", ErrRecorderClosed
	}

	select {
	case r.queue <- job{spanContext: trace.SpanContextFromContext(ctx), txn: txn}:
		return transactionID, nil
	default:
		r.metrics.RecordAuditFailure(ctx, entry.Type.String())
		r.logger.Warn(ctx, "Transaction record dropped", map[string]interface{}{
			"transaction_id":   transactionID,
			"transaction_type": entry.Type.String(),
			"status":           entry.Status.String(),
			"issuer_id":        entry.IssuerID,
			"receiver_id":      entry.ReceiverID,
			"points":           entry.Points,
		})
		return transactionID, ErrQueueFull
	}
}

// QueueDepth 未処理の記録数
func (r *Recorder) QueueDepth() int {
	return len(r.queue)
}

// Close 受付を停止し、キューに残った記録の書き込み完了を待つ
func (r *Recorder) Close(ctx context.Context) error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()
	})

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("transaction recorder did not drain: %w", ctx.Err())
	}
}

// persist 1件保存する。失敗は記録するだけで呼び出し元には返さない
func (r *Recorder) persist(j job) {
	ctx, cancel := context.WithTimeout(trace.ContextWithSpanContext(context.Background(), j.spanContext), r.timeout)
	defer cancel()

	ctx, span := r.tracer.Start(ctx, "Recorder.persist")
	defer span.End()

	txn := j.txn
	span.SetAttributes(
		attribute.String("transaction_id", txn.TransactionID()),
		attribute.String("transaction_type", txn.TransactionType().String()),
		attribute.String("status", txn.Status().String()),
	)

	if err := r.repo.Save(ctx, txn); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		r.metrics.RecordAuditFailure(ctx, txn.TransactionType().String())
		r.logger.Error(ctx, "Failed to save transaction record", err, map[string]interface{}{
			"transaction_id":   txn.TransactionID(),
			"transaction_type": txn.TransactionType().String(),
			"issuer_id":        txn.IssuerID(),
			"receiver_id":      txn.ReceiverID(),
			"points":           txn.Points(),
		})
		return
	}

	span.SetStatus(otelcodes.Ok, "")
	r.metrics.RecordTransaction(ctx, txn.TransactionType().String(), txn.Status().String())
}
