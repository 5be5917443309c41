package service_test

import (
	"context"
	"testing"

	"github.com/dom/lunch-order-website/internal/domain"
	"github.com/dom/lunch-order-website/internal/service"
	"github.com/dom/lunch-order-website/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderService_ReplaceOrder(t *testing.T) {
	services, _, testDB := testutil.NewTestServices(t, testutil.TestConfig())
	ctx := context.Background()

	admin, _ := testutil.NewUserBuilder().AsAdmin().Build(t, testDB.DB)
	employee, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	soup := testutil.NewDishBuilder().WithName("Soup").WithCreator(admin).OnDate(t, "2025-01-06").Build(t, testDB.DB)
	stew := testutil.NewDishBuilder().WithName("Stew").WithCreator(admin).OnDate(t, "2025-01-06").Build(t, testDB.DB)
	tomorrow := testutil.NewDishBuilder().WithCreator(admin).OnDate(t, "2025-01-07").Build(t, testDB.DB)

	day, err := domain.ParseMenuDate("2025-01-06")
	require.NoError(t, err)

	tests := []struct {
		name    string
		items   []service.OrderItem
		wantErr error
	}{
		{
			name:  "two dishes",
			items: []service.OrderItem{{DishID: soup.ID, Quantity: 1}, {DishID: stew.ID, Quantity: 2}},
		},
		{
			name:  "empty order cancels",
			items: nil,
		},
		{
			name:    "zero quantity",
			items:   []service.OrderItem{{DishID: soup.ID, Quantity: 0}},
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name:    "quantity above the cap",
			items:   []service.OrderItem{{DishID: soup.ID, Quantity: domain.MaxOrderQuantity + 1}},
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name:    "duplicate dish",
			items:   []service.OrderItem{{DishID: soup.ID, Quantity: 1}, {DishID: soup.ID, Quantity: 1}},
			wantErr: domain.ErrDuplicateOrderDish,
		},
		{
			name:    "dish from another day",
			items:   []service.OrderItem{{DishID: tomorrow.ID, Quantity: 1}},
			wantErr: domain.ErrDishNotOnMenu,
		},
		{
			name:    "unknown dish",
			items:   []service.OrderItem{{DishID: uuid.New(), Quantity: 1}},
			wantErr: domain.ErrDishNotOnMenu,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := services.Order.ReplaceOrder(ctx, employee.ID, day, tt.items)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, lines, len(tt.items))

			stored, err := services.Order.GetOrder(ctx, employee, employee.ID, day)
			require.NoError(t, err)
			assert.Len(t, stored, len(tt.items))
		})
	}
}

func TestOrderService_GetOrderOwnership(t *testing.T) {
	services, _, testDB := testutil.NewTestServices(t, testutil.TestConfig())
	ctx := context.Background()

	admin, _ := testutil.NewUserBuilder().AsAdmin().Build(t, testDB.DB)
	alice, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	bob, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	soup := testutil.NewDishBuilder().WithCreator(admin).OnDate(t, "2025-01-06").Build(t, testDB.DB)
	day := soup.MenuDate

	_, err := services.Order.ReplaceOrder(ctx, alice.ID, day, []service.OrderItem{{DishID: soup.ID, Quantity: 2}})
	require.NoError(t, err)

	_, err = services.Order.GetOrder(ctx, bob, alice.ID, day)
	assert.ErrorIs(t, err, service.ErrForbidden)

	lines, err := services.Order.GetOrder(ctx, admin, alice.ID, day)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)

	totals, err := services.Order.Summary(ctx, day)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, 2, totals[0].Quantity)
}

func TestMenuService(t *testing.T) {
	services, _, testDB := testutil.NewTestServices(t, testutil.TestConfig())
	ctx := context.Background()

	admin, _ := testutil.NewUserBuilder().AsAdmin().Build(t, testDB.DB)
	employee, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	day, err := domain.ParseMenuDate("2025-01-06")
	require.NoError(t, err)

	input := service.CreateDishInput{Name: "Soup", ImagePath: "/images/soup.jpg", MenuDate: day}

	_, err = services.Menu.CreateDish(ctx, employee.ID, input)
	assert.ErrorIs(t, err, service.ErrForbidden)

	dish, err := services.Menu.CreateDish(ctx, admin.ID, input)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, dish.CreatedBy)

	dishes, err := services.Menu.ListDishes(ctx, day)
	require.NoError(t, err)
	require.Len(t, dishes, 1)

	assert.ErrorIs(t, services.Menu.DeleteDish(ctx, employee.ID, dish.ID), service.ErrForbidden)
	require.NoError(t, services.Menu.DeleteDish(ctx, admin.ID, dish.ID))
	assert.ErrorIs(t, services.Menu.DeleteDish(ctx, admin.ID, dish.ID), service.ErrDishNotFound)
}
