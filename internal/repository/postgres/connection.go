package postgres

import (
	"github.com/dom/lunch-order-website/internal/domain"
	"github.com/dom/lunch-order-website/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// Models lists every table owned by the application, parents first.
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.UserSession{},
		&domain.Dish{},
		&domain.OrderLine{},
	}
}

// AutoMigrate creates or alters tables to match the domain models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:    NewUserRepository(db),
		Session: NewSessionRepository(db),
		Dish:    NewDishRepository(db),
		Order:   NewOrderRepository(db),
	}
}
