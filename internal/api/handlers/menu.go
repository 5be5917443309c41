package handlers

import (
	"net/http"
	"time"

	"github.com/dom/lunch-order-website/internal/api/middleware"
	"github.com/dom/lunch-order-website/internal/api/respond"
	"github.com/dom/lunch-order-website/internal/domain"
	"github.com/dom/lunch-order-website/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

type MenuHandler struct {
	menuService  *service.MenuService
	orderService *service.OrderService
	logger       logrus.FieldLogger
}

func NewMenuHandler(menuService *service.MenuService, orderService *service.OrderService, logger logrus.FieldLogger) *MenuHandler {
	return &MenuHandler{
		menuService:  menuService,
		orderService: orderService,
		logger:       logger.WithField("component", "handlers.menu"),
	}
}

type CreateDishRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	ImagePath string `json:"imagePath" validate:"required,max=500"`
	MenuDate  string `json:"menuDate" validate:"required"`
}

type DishResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ImagePath string `json:"imagePath"`
	MenuDate  string `json:"menuDate"`
}

type OrderItemRequest struct {
	DishID   string `json:"dishId" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required"`
}

type ReplaceOrderRequest struct {
	Items []OrderItemRequest `json:"items" validate:"dive"`
}

type OrderLineResponse struct {
	DishID   string `json:"dishId"`
	Quantity int    `json:"quantity"`
}

type OrderResponse struct {
	UserID   string              `json:"userId"`
	MenuDate string              `json:"menuDate"`
	Items    []OrderLineResponse `json:"items"`
}

type SummaryResponse struct {
	MenuDate string             `json:"menuDate"`
	Totals   []domain.DishTotal `json:"totals"`
}

func toDishResponse(d *domain.Dish) DishResponse {
	return DishResponse{
		ID:        d.ID.String(),
		Name:      d.Name,
		ImagePath: d.ImagePath,
		MenuDate:  domain.FormatMenuDate(d.MenuDate),
	}
}

func toOrderResponse(userID string, date datatypes.Date, lines []*domain.OrderLine) OrderResponse {
	items := make([]OrderLineResponse, len(lines))
	for i, l := range lines {
		items[i] = OrderLineResponse{DishID: l.DishID.String(), Quantity: l.Quantity}
	}
	return OrderResponse{
		UserID:   userID,
		MenuDate: domain.FormatMenuDate(date),
		Items:    items,
	}
}

func (h *MenuHandler) ListDishes(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("date")
	if value == "" {
		value = time.Now().Format(domain.MenuDateLayout)
	}
	date, err := dateParam(value)
	if err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}

	dishes, err := h.menuService.ListDishes(r.Context(), date)
	if err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}

	resp := make([]DishResponse, len(dishes))
	for i, d := range dishes {
		resp[i] = toDishResponse(d)
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (h *MenuHandler) CreateDish(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())

	var req CreateDishRequest
	if err := decodeRequest(r, &req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}
	date, err := dateParam(req.MenuDate)
	if err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}

	dish, err := h.menuService.CreateDish(r.Context(), actorID, service.CreateDishInput{
		Name:      req.Name,
		ImagePath: req.ImagePath,
		MenuDate:  date,
	})
	if err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, toDishResponse(dish))
}

func (h *MenuHandler) DeleteDish(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.GetUserID(r.Context())
	dishID, err := uuidParam(r, "id")
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	if err := h.menuService.DeleteDish(r.Context(), actorID, dishID); err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}
	respond.NoContent(w)
}

// GetOrder serves both the caller's own order and, for admins or the owner,
// the order of the user named in the path.
func (h *MenuHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	date, err := dateParam(chi.URLParam(r, "date"))
	if err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}

	ownerID := actor.ID
	if chi.URLParam(r, "id") != "" {
		if ownerID, err = uuidParam(r, "id"); err != nil {
			respond.BadRequest(w, err.Error())
			return
		}
	}

	lines, err := h.orderService.GetOrder(r.Context(), actor, ownerID, date)
	if err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, toOrderResponse(ownerID.String(), date, lines))
}

func (h *MenuHandler) ReplaceOrder(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.GetUser(r.Context())
	date, err := dateParam(chi.URLParam(r, "date"))
	if err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}

	var req ReplaceOrderRequest
	if err := decodeRequest(r, &req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	items := make([]service.OrderItem, len(req.Items))
	for i, item := range req.Items {
		dishID, err := uuid.Parse(item.DishID)
		if err != nil {
			respond.BadRequest(w, "invalid dishId")
			return
		}
		items[i] = service.OrderItem{DishID: dishID, Quantity: item.Quantity}
	}

	lines, err := h.orderService.ReplaceOrder(r.Context(), actor.ID, date, items)
	if err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, toOrderResponse(actor.ID.String(), date, lines))
}

func (h *MenuHandler) Summary(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(chi.URLParam(r, "date"))
	if err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}

	totals, err := h.orderService.Summary(r.Context(), date)
	if err != nil {
		respond.ServiceError(w, h.logger, err)
		return
	}
	if totals == nil {
		totals = []domain.DishTotal{}
	}
	respond.JSON(w, http.StatusOK, SummaryResponse{
		MenuDate: domain.FormatMenuDate(date),
		Totals:   totals,
	})
}
