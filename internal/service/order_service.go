package service

import (
	"context"
	"errors"
	"time"

	"github.com/dom/lunch-order-website/internal/domain"
	"github.com/dom/lunch-order-website/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MenuService struct {
	userRepo repository.UserRepository
	dishRepo repository.DishRepository
	now      func() time.Time
}

func NewMenuService(userRepo repository.UserRepository, dishRepo repository.DishRepository) *MenuService {
	return &MenuService{
		userRepo: userRepo,
		dishRepo: dishRepo,
		now:      time.Now,
	}
}

type CreateDishInput struct {
	Name      string
	ImagePath string
	MenuDate  datatypes.Date
}

func (s *MenuService) CreateDish(ctx context.Context, actorID uuid.UUID, input CreateDishInput) (*domain.Dish, error) {
	actor, err := loadAdmin(ctx, s.userRepo, actorID)
	if err != nil {
		return nil, err
	}

	dish := &domain.Dish{
		ID:        uuid.New(),
		Name:      input.Name,
		ImagePath: input.ImagePath,
		MenuDate:  input.MenuDate,
		CreatedBy: actor.ID,
		CreatedAt: s.now(),
	}
	if err := s.dishRepo.Create(ctx, dish); err != nil {
		return nil, err
	}
	return dish, nil
}

func (s *MenuService) ListDishes(ctx context.Context, date datatypes.Date) ([]*domain.Dish, error) {
	return s.dishRepo.ListByDate(ctx, date)
}

func (s *MenuService) DeleteDish(ctx context.Context, actorID, dishID uuid.UUID) error {
	if _, err := loadAdmin(ctx, s.userRepo, actorID); err != nil {
		return err
	}
	if err := s.dishRepo.Delete(ctx, dishID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDishNotFound
		}
		return err
	}
	return nil
}

type OrderService struct {
	dishRepo  repository.DishRepository
	orderRepo repository.OrderRepository
	now       func() time.Time
}

func NewOrderService(dishRepo repository.DishRepository, orderRepo repository.OrderRepository) *OrderService {
	return &OrderService{
		dishRepo:  dishRepo,
		orderRepo: orderRepo,
		now:       time.Now,
	}
}

type OrderItem struct {
	DishID   uuid.UUID
	Quantity int
}

// ReplaceOrder overwrites the user's order for date with items. An empty
// item list cancels the order.
func (s *OrderService) ReplaceOrder(ctx context.Context, userID uuid.UUID, date datatypes.Date, items []OrderItem) ([]*domain.OrderLine, error) {
	dishes, err := s.dishRepo.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	onMenu := make(map[uuid.UUID]bool, len(dishes))
	for _, d := range dishes {
		onMenu[d.ID] = true
	}

	now := s.now()
	seen := make(map[uuid.UUID]bool, len(items))
	lines := make([]*domain.OrderLine, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 || item.Quantity > domain.MaxOrderQuantity {
			return nil, domain.ErrInvalidQuantity
		}
		if seen[item.DishID] {
			return nil, domain.ErrDuplicateOrderDish
		}
		if !onMenu[item.DishID] {
			return nil, domain.ErrDishNotOnMenu
		}
		seen[item.DishID] = true

		lines = append(lines, &domain.OrderLine{
			ID:        uuid.New(),
			UserID:    userID,
			DishID:    item.DishID,
			MenuDate:  date,
			Quantity:  item.Quantity,
			CreatedAt: now,
		})
	}

	if err := s.orderRepo.ReplaceForUser(ctx, userID, date, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// GetOrder returns owner's order for date if actor may see it.
func (s *OrderService) GetOrder(ctx context.Context, actor *domain.User, ownerID uuid.UUID, date datatypes.Date) ([]*domain.OrderLine, error) {
	if err := Authorize(actor, Requirement{OwnerID: ownerID}, s.now()); err != nil {
		return nil, err
	}
	return s.orderRepo.ListForUser(ctx, ownerID, date)
}

func (s *OrderService) Summary(ctx context.Context, date datatypes.Date) ([]domain.DishTotal, error) {
	return s.orderRepo.Summary(ctx, date)
}
