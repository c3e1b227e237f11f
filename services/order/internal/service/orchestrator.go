package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Skotchmaster/shop_orders/pkg/logging"
	"github.com/Skotchmaster/shop_orders/services/order/internal/domain"
)

const compensationTimeout = 5 * time.Second

type LineRequest struct {
	ProductID uuid.UUID
	Quantity  int
}

// Orchestrator runs the order workflows against the user and product
// services and the order store. Remote calls are made one at a time.
type Orchestrator struct {
	users    UserLookupClient
	products ProductAvailabilityClient
	store    OrderStore

	assembler Assembler
	restorer  StockRestorer
	events    EventPublisher
	outcomes  OutcomeRecorder
	now       func() time.Time
	tracer    trace.Tracer
}

type Option func(*Orchestrator)

// WithCompensation makes a failed CreateOrder give back the stock it already
// took. Without it decrements applied before the failure stay applied.
func WithCompensation(r StockRestorer) Option {
	return func(o *Orchestrator) { o.restorer = r }
}

func WithEvents(p EventPublisher) Option {
	return func(o *Orchestrator) { o.events = p }
}

func WithOutcomes(r OutcomeRecorder) Option {
	return func(o *Orchestrator) { o.outcomes = r }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
		o.assembler.Now = now
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Orchestrator) { o.tracer = tp.Tracer(tracerName) }
}

const tracerName = "github.com/Skotchmaster/shop_orders/services/order/internal/service"

func NewOrchestrator(users UserLookupClient, products ProductAvailabilityClient, store OrderStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		users:    users,
		products: products,
		store:    store,
		now:      func() time.Time { return time.Now().UTC() },
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func validateLines(lines []LineRequest) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: items required", ErrValidation)
	}
	for i, l := range lines {
		if l.ProductID == uuid.Nil {
			return fmt.Errorf("%w: items[%d]: product_id required", ErrValidation, i)
		}
		if l.Quantity < 1 {
			return fmt.Errorf("%w: items[%d]: quantity must be > 0", ErrValidation, i)
		}
	}
	return nil
}

// CreateOrder checks the user, then reserves stock line by line in request
// order and stores a PENDING order.
func (s *Orchestrator) CreateOrder(ctx context.Context, userID uuid.UUID, lines []LineRequest) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.create", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.Int("order.lines", len(lines)),
	))
	defer span.End()

	o, err := s.createOrder(ctx, span, func(ctx context.Context) (*UserRecord, error) {
		if userID == uuid.Nil {
			return nil, fmt.Errorf("%w: user_id required", ErrValidation)
		}
		return s.users.GetByID(ctx, userID)
	}, lines)
	return o, s.finish(span, "create_order", err)
}

// CreateOrderForUsername is CreateOrder with the user resolved by name.
func (s *Orchestrator) CreateOrderForUsername(ctx context.Context, username string, lines []LineRequest) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.create", trace.WithAttributes(
		attribute.String("user.name", username),
		attribute.Int("order.lines", len(lines)),
	))
	defer span.End()

	o, err := s.createOrder(ctx, span, func(ctx context.Context) (*UserRecord, error) {
		if username == "" {
			return nil, fmt.Errorf("%w: username required", ErrValidation)
		}
		return s.users.GetByUsername(ctx, username)
	}, lines)
	return o, s.finish(span, "create_order", err)
}

func (s *Orchestrator) createOrder(ctx context.Context, span trace.Span, lookup func(context.Context) (*UserRecord, error), lines []LineRequest) (*domain.Order, error) {
	l := logging.FromContext(ctx).With("component", "order.orchestrator")

	if err := validateLines(lines); err != nil {
		return nil, err
	}

	user, err := lookup(ctx)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return nil, err
		}
		l.Warn("user_lookup_failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUserNotFound, err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	span.SetAttributes(attribute.String("user.id", user.ID.String()))

	var applied []LineRequest
	snapshots := make([]domain.Line, 0, len(lines))
	for i, req := range lines {
		snap, err := s.reserveLine(ctx, i, req)
		if err != nil {
			l.Warn("reserve_line_failed", "line", i, "product_id", req.ProductID, "error", err, "applied_lines", len(applied))
			s.compensate(ctx, applied)
			return nil, err
		}
		applied = append(applied, req)
		snapshots = append(snapshots, snap)
	}

	order := s.assembler.Build(user.ID, snapshots)
	if err := s.store.Save(ctx, order); err != nil {
		l.Error("save_order_failed", "error", err, "applied_lines", len(applied))
		s.compensate(ctx, applied)
		return nil, fmt.Errorf("save order: %w", err)
	}

	l.Info("order_created", "order_id", order.ID, "user_id", order.UserID, "total", order.Total().StringFixed(2))
	s.publish(ctx, domain.NewEvent(domain.EventOrderCreated, order, s.now(), fmt.Sprintf("%d lines", len(snapshots))))
	return order, nil
}

func (s *Orchestrator) reserveLine(ctx context.Context, idx int, req LineRequest) (domain.Line, error) {
	ctx, span := s.tracer.Start(ctx, "order.reserve_line", trace.WithAttributes(
		attribute.Int("line.index", idx),
		attribute.String("product.id", req.ProductID.String()),
		attribute.Int("line.quantity", req.Quantity),
	))
	defer span.End()

	p, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return domain.Line{}, &ProductUnavailableError{ProductID: req.ProductID, Cause: err}
	}
	if p == nil || !p.Active {
		return domain.Line{}, &ProductUnavailableError{ProductID: req.ProductID}
	}
	if p.StockQuantity < req.Quantity {
		return domain.Line{}, &InsufficientStockError{ProductID: req.ProductID, Available: p.StockQuantity, Requested: req.Quantity}
	}

	if err := s.products.DecreaseStock(ctx, req.ProductID, req.Quantity); err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return domain.Line{}, &InsufficientStockError{ProductID: req.ProductID, Available: p.StockQuantity, Requested: req.Quantity}
		}
		return domain.Line{}, &ProductUnavailableError{ProductID: req.ProductID, Cause: err}
	}

	return domain.Line{
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.Price.Round(2),
		Quantity:    req.Quantity,
	}, nil
}

// compensate gives back applied decrements in reverse order. It only runs
// when a StockRestorer was configured and never changes the caller's error.
func (s *Orchestrator) compensate(ctx context.Context, applied []LineRequest) {
	if s.restorer == nil || len(applied) == 0 {
		return
	}
	l := logging.FromContext(ctx).With("component", "order.orchestrator")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	for i := len(applied) - 1; i >= 0; i-- {
		req := applied[i]
		if err := s.restorer.IncreaseStock(ctx, req.ProductID, req.Quantity); err != nil {
			l.Error("stock_compensation_failed", "product_id", req.ProductID, "quantity", req.Quantity, "error", err)
			continue
		}
		l.Info("stock_compensated", "product_id", req.ProductID, "quantity", req.Quantity)
	}
}

// UpdateStatus sets any known status, whatever the current one is.
func (s *Orchestrator) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Order, error) {
	next, err := domain.ParseStatus(status)
	if err != nil {
		return nil, s.finish(nil, "update_status", fmt.Errorf("%w: %w", ErrValidation, err))
	}

	var prev domain.Status
	o, err := s.store.Update(ctx, id, func(o *domain.Order) error {
		prev = o.Status
		o.SetStatus(next, s.now())
		return nil
	})
	if err != nil {
		return nil, s.finish(nil, "update_status", err)
	}

	logging.FromContext(ctx).Info("order_status_updated", "order_id", id, "from", prev, "to", next)
	s.publish(ctx, domain.NewEvent(domain.EventStatusChanged, o, s.now(), fmt.Sprintf("%s -> %s", prev, next)))
	return o, s.finish(nil, "update_status", nil)
}

// Cancel moves the order to CANCELLED unless it has already shipped.
func (s *Orchestrator) Cancel(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var prev domain.Status
	o, err := s.store.Update(ctx, id, func(o *domain.Order) error {
		if !o.Status.Cancellable() {
			return &InvalidTransitionError{From: o.Status, To: domain.StatusCancelled}
		}
		prev = o.Status
		o.SetStatus(domain.StatusCancelled, s.now())
		return nil
	})
	if err != nil {
		return nil, s.finish(nil, "cancel_order", err)
	}

	logging.FromContext(ctx).Info("order_cancelled", "order_id", id, "from", prev)
	s.publish(ctx, domain.NewEvent(domain.EventCancelled, o, s.now(), fmt.Sprintf("cancelled from %s", prev)))
	return o, s.finish(nil, "cancel_order", nil)
}

func (s *Orchestrator) GetAll(ctx context.Context) ([]*domain.Order, error) {
	return s.store.FindAll(ctx)
}

func (s *Orchestrator) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Orchestrator) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.store.FindByUserID(ctx, userID)
}

func (s *Orchestrator) GetByStatus(ctx context.Context, status string) ([]*domain.Order, error) {
	st, err := domain.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return s.store.FindByStatus(ctx, st)
}

func (s *Orchestrator) Delete(ctx context.Context, id uuid.UUID) error {
	o, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	logging.FromContext(ctx).Info("order_deleted", "order_id", id)
	s.publish(ctx, domain.NewEvent(domain.EventDeleted, o, s.now(), ""))
	return nil
}

func (s *Orchestrator) publish(ctx context.Context, ev domain.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "type", ev.Type, "order_id", ev.OrderID, "error", err)
	}
}

func (s *Orchestrator) finish(span trace.Span, operation string, err error) error {
	if s.outcomes != nil {
		s.outcomes.ObserveOutcome(operation, Outcome(err))
	}
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, Outcome(err))
	}
	return err
}

// Outcome names the error kind of err for metrics and traces.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrProductUnavailable):
		return "product_unavailable"
	case errors.Is(err, ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	default:
		return "error"
	}
}
