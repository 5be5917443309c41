package postgres

import (
	"context"

	"github.com/dom/lunch-order-website/internal/domain"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type dishRepository struct {
	db *gorm.DB
}

func NewDishRepository(db *gorm.DB) *dishRepository {
	return &dishRepository{db: db}
}

func (r *dishRepository) Create(ctx context.Context, dish *domain.Dish) error {
	return r.db.WithContext(ctx).Create(dish).Error
}

func (r *dishRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Dish, error) {
	var dish domain.Dish
	err := r.db.WithContext(ctx).First(&dish, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &dish, nil
}

func (r *dishRepository) ListByDate(ctx context.Context, date datatypes.Date) ([]*domain.Dish, error) {
	var dishes []*domain.Dish
	err := r.db.WithContext(ctx).
		Where("menu_date = ?", date).
		Order("created_at ASC").
		Find(&dishes).Error
	if err != nil {
		return nil, err
	}
	return dishes, nil
}

func (r *dishRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Dish{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *orderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) ReplaceForUser(ctx context.Context, userID uuid.UUID, date datatypes.Date, lines []*domain.OrderLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND menu_date = ?", userID, date).Delete(&domain.OrderLine{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.Create(&lines).Error
	})
}

func (r *orderRepository) ListForUser(ctx context.Context, userID uuid.UUID, date datatypes.Date) ([]*domain.OrderLine, error) {
	var lines []*domain.OrderLine
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND menu_date = ?", userID, date).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *orderRepository) Summary(ctx context.Context, date datatypes.Date) ([]domain.DishTotal, error) {
	var totals []domain.DishTotal
	err := r.db.WithContext(ctx).
		Table("order_lines").
		Select("dishes.id AS dish_id, dishes.name AS name, SUM(order_lines.quantity) AS quantity").
		Joins("JOIN dishes ON dishes.id = order_lines.dish_id").
		Where("order_lines.menu_date = ?", date).
		Group("dishes.id, dishes.name").
		Order("dishes.name ASC").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}
