package cart

import (
	"context"
	"errors"
	"fmt"

	"retail-backend/internal/domain"
)

// Service owns the shopping cart operations. Ownership is always checked by
// loading the line and comparing user ids, never trusted from the request.
type Service struct {
	repo        cartRepo
	productRepo productRepo
	taxRateBps  int64
}

type cartRepo interface {
	Upsert(ctx context.Context, userID, productID int64, quantity int) (*domain.CartLine, error)
	GetByID(ctx context.Context, id int64) (*domain.CartLine, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int) (*domain.CartLine, error)
	SetSaved(ctx context.Context, id int64, saved bool) (*domain.CartLine, error)
	Restore(ctx context.Context, id int64) (*domain.CartLine, error)
	Delete(ctx context.Context, id int64) error
	ClearActive(ctx context.Context, userID int64) error
	ListByUser(ctx context.Context, userID int64, saved bool) ([]domain.CartLine, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

func New(repo cartRepo, productRepo productRepo, taxRateBps int64) *Service {
	return &Service{repo: repo, productRepo: productRepo, taxRateBps: taxRateBps}
}

// AddItem puts a product in the actor's cart, merging quantity when an
// active line for the product already exists.
func (s *Service) AddItem(ctx context.Context, actor domain.Actor, productID int64, quantity int) (*domain.CartLine, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProductUnavailable
		}
		return nil, err
	}
	if !product.Active {
		return nil, domain.ErrProductUnavailable
	}
	return s.repo.Upsert(ctx, actor.UserID, productID, quantity)
}

func (s *Service) UpdateQuantity(ctx context.Context, actor domain.Actor, lineID int64, quantity int) (*domain.CartLine, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrValidation)
	}
	if _, err := s.loadOwned(ctx, actor, lineID); err != nil {
		return nil, err
	}
	return s.repo.UpdateQuantity(ctx, lineID, quantity)
}

func (s *Service) Remove(ctx context.Context, actor domain.Actor, lineID int64) error {
	if _, err := s.loadOwned(ctx, actor, lineID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, lineID)
}

// Clear removes the actor's active lines; saved-for-later lines stay.
func (s *Service) Clear(ctx context.Context, actor domain.Actor) error {
	return s.repo.ClearActive(ctx, actor.UserID)
}

func (s *Service) SaveForLater(ctx context.Context, actor domain.Actor, lineID int64) (*domain.CartLine, error) {
	if _, err := s.loadOwned(ctx, actor, lineID); err != nil {
		return nil, err
	}
	return s.repo.SetSaved(ctx, lineID, true)
}

// RestoreToCart moves a saved-for-later line back into the active cart,
// merging with an existing active line for the same product.
func (s *Service) RestoreToCart(ctx context.Context, actor domain.Actor, lineID int64) (*domain.CartLine, error) {
	if _, err := s.loadOwned(ctx, actor, lineID); err != nil {
		return nil, err
	}
	return s.repo.Restore(ctx, lineID)
}

// GetActive returns the active cart with totals. Lines whose product has
// gone inactive are returned for display but excluded from the money.
func (s *Service) GetActive(ctx context.Context, actor domain.Actor) (*domain.CartView, error) {
	lines, err := s.repo.ListByUser(ctx, actor.UserID, false)
	if err != nil {
		return nil, err
	}

	view := &domain.CartView{Lines: lines}
	for _, line := range lines {
		if !line.ProductActive {
			continue
		}
		view.SubtotalCents += line.UnitPriceCents * int64(line.Quantity)
	}
	view.TaxCents = view.SubtotalCents * s.taxRateBps / 10000
	view.TotalCents = view.SubtotalCents + view.TaxCents
	return view, nil
}

func (s *Service) GetSaved(ctx context.Context, actor domain.Actor) ([]domain.CartLine, error) {
	return s.repo.ListByUser(ctx, actor.UserID, true)
}

func (s *Service) loadOwned(ctx context.Context, actor domain.Actor, lineID int64) (*domain.CartLine, error) {
	line, err := s.repo.GetByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(line.UserID) {
		return nil, domain.ErrForbidden
	}
	return line, nil
}
