package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MenuDateLayout is the wire format of a menu day
const MenuDateLayout = "2006-01-02"

// MaxOrderQuantity caps a single order line
const MaxOrderQuantity = 20

type Dish struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string         `json:"name" gorm:"not null"`
	ImagePath string         `json:"imagePath" gorm:"not null"`
	MenuDate  datatypes.Date `json:"menuDate" gorm:"not null;index"`
	CreatedBy uuid.UUID      `json:"createdBy" gorm:"type:uuid;not null"`
	CreatedAt time.Time      `json:"createdAt"`
}

type OrderLine struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID      `json:"userId" gorm:"type:uuid;not null;index:idx_order_user_date"`
	DishID    uuid.UUID      `json:"dishId" gorm:"type:uuid;not null"`
	MenuDate  datatypes.Date `json:"menuDate" gorm:"not null;index:idx_order_user_date"`
	Quantity  int            `json:"quantity" gorm:"not null"`
	CreatedAt time.Time      `json:"createdAt"`

	// Relations
	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Dish *Dish `json:"-" gorm:"foreignKey:DishID;constraint:OnDelete:CASCADE"`
}

// DishTotal is the aggregated quantity ordered for one dish on one day
type DishTotal struct {
	DishID   uuid.UUID `json:"dishId"`
	Name     string    `json:"name"`
	Quantity int       `json:"quantity"`
}

// ParseMenuDate parses a YYYY-MM-DD day into a date value
func ParseMenuDate(s string) (datatypes.Date, error) {
	t, err := time.Parse(MenuDateLayout, s)
	if err != nil {
		return datatypes.Date{}, err
	}
	return datatypes.Date(t), nil
}

// FormatMenuDate renders a date value as YYYY-MM-DD
func FormatMenuDate(d datatypes.Date) string {
	return time.Time(d).Format(MenuDateLayout)
}
