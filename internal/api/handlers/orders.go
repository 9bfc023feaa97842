package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/service"
	"github.com/jafarshop/storefront/internal/money"
)

// OrderResponse represents the order response
type OrderResponse struct {
	ID              string              `json:"id"`
	Status          string              `json:"status"`
	Total           string              `json:"total"`
	TotalDisplay    string              `json:"totalDisplay"`
	ContactInfo     string              `json:"contactInfo"`
	ShippingAddress string              `json:"shippingAddress"`
	Items           []OrderItemResponse `json:"items"`
}

type OrderItemResponse struct {
	ProductID string `json:"productId"`
	Quantity  string `json:"quantity"`
}

func toOrderResponse(order domain.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity.String(),
		})
	}
	return OrderResponse{
		ID:              order.ID.String(),
		Status:          order.Status,
		Total:           order.Total.String(),
		TotalDisplay:    money.Format(order.Total),
		ContactInfo:     order.ContactInfo,
		ShippingAddress: order.ShippingAddress,
		Items:           items,
	}
}

// HandleCheckoutDefaults handles GET /v1/checkout/defaults
func HandleCheckoutDefaults(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerOrAbort(c)
		if !ok {
			return
		}

		form, err := orders.Defaults(c.Request.Context(), caller)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, form)
	}
}

// HandleCheckout handles POST /v1/checkout
func HandleCheckout(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerOrAbort(c)
		if !ok {
			return
		}

		var form domain.CheckoutForm
		if err := c.ShouldBindJSON(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		attempt, err := orders.Checkout(c.Request.Context(), caller, form)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"state":             attempt.State,
			"order":             toOrderResponse(*attempt.Order),
			"confirmationRoute": attempt.ConfirmationRoute,
		})
	}
}

// HandleListOrders handles GET /v1/orders
func HandleListOrders(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerOrAbort(c)
		if !ok {
			return
		}

		list, err := orders.ListOrders(c.Request.Context(), caller)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		resp := make([]OrderResponse, 0, len(list))
		for _, order := range list {
			resp = append(resp, toOrderResponse(order))
		}
		c.JSON(http.StatusOK, gin.H{
			"orders": resp,
			"count":  len(resp),
		})
	}
}

// HandleGetOrder handles GET /v1/orders/:id
func HandleGetOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerOrAbort(c)
		if !ok {
			return
		}
		orderID, ok := natParam(c, "id", "order ID")
		if !ok {
			return
		}

		order, err := orders.Order(c.Request.Context(), caller, orderID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(*order))
	}
}
