package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookverse/internal/cart"
	"bookverse/internal/models"
)

type addToCartRequest struct {
	Name  string  `json:"name" binding:"required"`
	Price float64 `json:"price" binding:"required"`
	Image string  `json:"image"`
}

type cartItemRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddToCart handles POST /api/cart/add-to-cart.
func AddToCart(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/cart/add-to-cart"
		defer handlePanic(c, route)

		userID, ok := userIDFromContext(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req addToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "missing cart data")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		updated, err := svc.AddItem(ctx, userID, cart.AddItemInput{
			Name:  req.Name,
			Price: req.Price,
			Image: req.Image,
		})
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Item added to cart",
			"cart":    updated,
		})
	}
}

// GetCart handles GET /api/cart. A user with no cart gets an empty
// synthetic cart, never a 404.
func GetCart(svc *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/cart"
		defer handlePanic(c, route)

		userID, ok := userIDFromContext(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		current, err := svc.Get(ctx, userID)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, current)
	}
}

// IncreaseItem handles POST /api/cart/increase.
func IncreaseItem(svc *cart.Service) gin.HandlerFunc {
	return cartMutation("POST /api/cart/increase", svc.IncreaseItem)
}

// DecreaseItem handles POST /api/cart/decrease.
func DecreaseItem(svc *cart.Service) gin.HandlerFunc {
	return cartMutation("POST /api/cart/decrease", svc.DecreaseItem)
}

// RemoveItem handles POST /api/cart/remove-item.
func RemoveItem(svc *cart.Service) gin.HandlerFunc {
	return cartMutation("POST /api/cart/remove-item", svc.RemoveItem)
}

// cartMutation wraps the by-name cart mutations, which share a request
// shape and the swallow-missing idempotent contract.
func cartMutation(route string, mutate func(context.Context, primitive.ObjectID, string) (*models.Cart, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		userID, ok := userIDFromContext(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "item name is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		updated, err := mutate(ctx, userID, req.Name)
		if err != nil {
			respondServiceError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "cart": updated})
	}
}
