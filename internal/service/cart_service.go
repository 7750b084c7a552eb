package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Safwa9amar/safwanPos-sub000/internal/cart"
	"github.com/Safwa9amar/safwanPos-sub000/internal/dto"
	"github.com/Safwa9amar/safwanPos-sub000/internal/repository"

	"github.com/google/uuid"
)

const maxCartNameLen = 40

// CartService keeps each user's named cart drafts and checks them out.
type CartService interface {
	Load(ctx context.Context, userID uuid.UUID) (cart.Drafts, error)
	Replace(ctx context.Context, userID uuid.UUID, payload []byte) (cart.Drafts, error)
	Apply(ctx context.Context, actor Actor, name string, req dto.CartActionRequest) (*dto.CartResponse, error)
	Remove(ctx context.Context, userID uuid.UUID, name string) (cart.Drafts, error)
	Checkout(ctx context.Context, actor Actor, name string, req dto.CartCheckoutRequest) (*dto.SaleResponse, error)
}

type cartService struct {
	store    repository.DraftStore
	products ProductService
	sales    SaleService
}

func NewCartService(store repository.DraftStore, products ProductService, sales SaleService) CartService {
	return &cartService{store: store, products: products, sales: sales}
}

func (s *cartService) Load(ctx context.Context, userID uuid.UUID) (cart.Drafts, error) {
	raw, err := s.store.Load(ctx, userID)
	if err != nil {
		return cart.Drafts{}, err
	}
	return cart.Decode(raw)
}

// Replace accepts drafts in any supported version and stores them at the current one.
func (s *cartService) Replace(ctx context.Context, userID uuid.UUID, payload []byte) (cart.Drafts, error) {
	drafts, err := cart.Decode(payload)
	if err != nil {
		return cart.Drafts{}, err
	}
	if err := s.save(ctx, userID, drafts); err != nil {
		return cart.Drafts{}, err
	}
	return drafts, nil
}

func (s *cartService) Apply(ctx context.Context, actor Actor, name string, req dto.CartActionRequest) (*dto.CartResponse, error) {
	if err := validCartName(name); err != nil {
		return nil, err
	}
	action, err := s.buildAction(ctx, actor.TenantID, req)
	if err != nil {
		return nil, err
	}

	drafts, err := s.Load(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	next, notice, err := cart.Reduce(drafts.Get(name), action)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	drafts = drafts.With(name, next)
	if err := s.save(ctx, actor.UserID, drafts); err != nil {
		return nil, err
	}
	resp := CartToResponse(name, next)
	resp.Notice = notice
	return resp, nil
}

func (s *cartService) buildAction(ctx context.Context, tenantID uuid.UUID, req dto.CartActionRequest) (cart.Action, error) {
	var productID *uuid.UUID
	if req.ProductID != "" {
		id, err := uuid.Parse(req.ProductID)
		if err != nil {
			return cart.Action{}, fmt.Errorf("%w: product_id", ErrInvalidInput)
		}
		productID = &id
	}

	switch cart.ActionType(req.Type) {
	case cart.ActionAddItem:
		p, err := s.products.Snapshot(ctx, tenantID, productID, strings.TrimSpace(req.Barcode))
		if err != nil {
			return cart.Action{}, err
		}
		return cart.AddItem(p), nil
	case cart.ActionSetQuantity:
		if productID == nil {
			return cart.Action{}, fmt.Errorf("%w: product_id is required", ErrInvalidInput)
		}
		return cart.SetQuantity(*productID, req.Quantity), nil
	case cart.ActionRemoveItem:
		if productID == nil {
			return cart.Action{}, fmt.Errorf("%w: product_id is required", ErrInvalidInput)
		}
		return cart.RemoveItem(*productID), nil
	case cart.ActionClear:
		return cart.Clear(), nil
	default:
		return cart.Action{}, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, req.Type)
	}
}

func (s *cartService) Remove(ctx context.Context, userID uuid.UUID, name string) (cart.Drafts, error) {
	drafts, err := s.Load(ctx, userID)
	if err != nil {
		return cart.Drafts{}, err
	}
	if _, ok := drafts.Carts[name]; !ok {
		return cart.Drafts{}, ErrCartNotFound
	}
	drafts = drafts.Without(name)
	if err := s.save(ctx, userID, drafts); err != nil {
		return cart.Drafts{}, err
	}
	return drafts, nil
}

// Checkout submits the named cart as a sale. The cart is removed only if the sale commits.
func (s *cartService) Checkout(ctx context.Context, actor Actor, name string, req dto.CartCheckoutRequest) (*dto.SaleResponse, error) {
	drafts, err := s.Load(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	c, ok := drafts.Carts[name]
	if !ok {
		return nil, ErrCartNotFound
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	saleReq := dto.CompleteSaleRequest{PaymentType: req.PaymentType, CustomerID: req.CustomerID}
	for _, l := range c.Lines {
		saleReq.Items = append(saleReq.Items, dto.SaleLineRequest{
			ProductID: l.ProductID.String(),
			Quantity:  l.Quantity,
			Price:     l.UnitPrice,
			Name:      l.Name,
		})
	}
	sale, err := s.sales.CompleteSale(ctx, actor, saleReq)
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, actor.UserID, drafts.Without(name)); err != nil {
		return nil, fmt.Errorf("sale %s completed but cart was not cleared: %w", sale.ID, err)
	}
	return sale, nil
}

func (s *cartService) save(ctx context.Context, userID uuid.UUID, drafts cart.Drafts) error {
	data, err := cart.Encode(drafts)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, userID, data)
}

func validCartName(name string) error {
	if name == "" || len(name) > maxCartNameLen {
		return fmt.Errorf("%w: cart name must be 1-%d characters", ErrInvalidInput, maxCartNameLen)
	}
	return nil
}

// CartToResponse renders one cart with its derived totals.
func CartToResponse(name string, c cart.Cart) *dto.CartResponse {
	lines := make([]dto.CartLineResponse, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, dto.CartLineResponse{
			ProductID:      l.ProductID.String(),
			Name:           l.Name,
			UnitPrice:      l.UnitPrice,
			Quantity:       l.Quantity,
			StockAtAddTime: l.StockAtAddTime,
		})
	}
	return &dto.CartResponse{
		Name:       name,
		Lines:      lines,
		Subtotal:   c.Subtotal(),
		TotalItems: c.TotalItems(),
	}
}

// IsCartPayloadError reports whether err came from decoding a drafts payload.
func IsCartPayloadError(err error) bool {
	return errors.Is(err, cart.ErrMalformedDrafts) || errors.Is(err, cart.ErrUnsupportedVersion)
}
