package order

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"retail-backend/internal/domain"
	auditrepo "retail-backend/internal/repository/audit"
	orderrepo "retail-backend/internal/repository/order"
	"github.com/google/uuid"
)

// Service is the order lifecycle: checkout, status transitions, cancellation
// with stock restoration, and the reporting surface.
type Service struct {
	repo       orderRepo
	audit      auditSink
	taxRateBps int64
	logger     *log.Logger
}

type orderRepo interface {
	Create(ctx context.Context, in orderrepo.CreateInput) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, f orderrepo.ListFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
	Cancel(ctx context.Context, id int64, actorID int64) (*domain.Order, error)
	Stats(ctx context.Context) (*domain.OrderStats, error)
}

type auditSink interface {
	Record(ctx context.Context, e auditrepo.Entry) error
}

func New(repo orderRepo, audit auditSink, taxRateBps int64, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, audit: audit, taxRateBps: taxRateBps, logger: logger}
}

// CreateInput captures the checkout payload.
type CreateInput struct {
	ShippingAddress string `json:"delivery_address"`
	DeliveryPhone   string `json:"delivery_phone"`
	Notes           string `json:"notes"`
}

// Create converts the actor's active cart into an order. Stock is not
// decremented here; debits happen downstream of fulfilment, and cancellation
// restores whatever the order lines carry.
func (s *Service) Create(ctx context.Context, actor domain.Actor, in CreateInput) (*domain.Order, error) {
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return nil, fmt.Errorf("%w: delivery_address required", domain.ErrValidation)
	}

	order, err := s.repo.Create(ctx, orderrepo.CreateInput{
		UserID:          actor.UserID,
		OrderNumber:     newOrderNumber(),
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		DeliveryPhone:   strings.TrimSpace(in.DeliveryPhone),
		Notes:           in.Notes,
		TaxRateBps:      s.taxRateBps,
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, "order.create", order.ID, nil, order.Status)
	return order, nil
}

// Get returns one order. Non-privileged actors may only read their own.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id int64) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Privileged() && !actor.Owns(order.UserID) {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

// List returns filtered orders. Non-privileged actors are pinned to their
// own orders regardless of the requested filter.
func (s *Service) List(ctx context.Context, actor domain.Actor, f orderrepo.ListFilter) ([]domain.Order, error) {
	if !actor.Privileged() {
		f.UserID = actor.UserID
	}
	return s.repo.List(ctx, f)
}

// UpdateStatus moves an order to any recognized status. Only terminal states
// are protected; there is deliberately no transition graph beyond that.
func (s *Service) UpdateStatus(ctx context.Context, actor domain.Actor, id int64, status string) (*domain.Order, error) {
	if !actor.Privileged() {
		return nil, domain.ErrForbidden
	}
	parsed, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateStatus(ctx, id, parsed)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, "order.status", id, before.Status, updated.Status)
	return updated, nil
}

// Cancel restores stock for every line and marks the order CANCELLED. The
// owning user may cancel their own order; privileged actors may cancel any.
func (s *Service) Cancel(ctx context.Context, actor domain.Actor, id int64) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Privileged() && !actor.Owns(order.UserID) {
		return nil, domain.ErrForbidden
	}
	if order.Status.Terminal() {
		return nil, domain.ErrInvalidState
	}

	cancelled, err := s.repo.Cancel(ctx, id, actor.UserID)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, "order.cancel", id, order.Status, cancelled.Status)
	return cancelled, nil
}

func (s *Service) Stats(ctx context.Context, actor domain.Actor) (*domain.OrderStats, error) {
	if !actor.Privileged() {
		return nil, domain.ErrForbidden
	}
	return s.repo.Stats(ctx)
}

// recordAudit is fire-and-forget: a failed audit write is logged and must
// not surface to the caller.
func (s *Service) recordAudit(ctx context.Context, actor domain.Actor, action string, orderID int64, oldVal, newVal interface{}) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, auditrepo.Entry{
		ActorID:    actor.UserID,
		Action:     action,
		EntityType: "order",
		EntityID:   orderID,
		Old:        oldVal,
		New:        newVal,
	})
	if err != nil {
		s.logger.Printf("order service: audit %s order_id=%d error=%v", action, orderID, err)
	}
}

func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102-150405"), suffix)
}
