package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"bookverse/internal/models"
)

type addBookRequest struct {
	Title    string  `json:"title" binding:"required"`
	Author   string  `json:"author" binding:"required"`
	Price    float64 `json:"price" binding:"required"`
	Quantity int     `json:"quantity" binding:"required"`
	Image    string  `json:"image"`
	PDF      string  `json:"pdf"`
}

// AddBook handles POST /api/seller/books. The seller comes from the
// auth token, not the request body.
func AddBook(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/seller/books"
		defer handlePanic(c, route)

		sellerID, ok := userIDFromContext(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req addBookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "all fields required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		book := models.Book{
			Title:     req.Title,
			Author:    req.Author,
			Price:     req.Price,
			Quantity:  req.Quantity,
			Image:     req.Image,
			PDF:       req.PDF,
			CreatedBy: sellerID,
			CreatedAt: time.Now(),
		}
		if _, err := db.Collection("books").InsertOne(ctx, book); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// GetSellerBooks handles GET /api/seller/books.
func GetSellerBooks(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/seller/books"
		defer handlePanic(c, route)

		sellerID, ok := userIDFromContext(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		cursor, err := db.Collection("books").Find(ctx, bson.M{"createdBy": sellerID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		books := []models.Book{}
		if err := cursor.All(ctx, &books); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, books)
	}
}

// DeleteBook handles DELETE /api/seller/books/:id.
func DeleteBook(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/seller/books/:id"
		defer handlePanic(c, route)

		sellerID, ok := userIDFromContext(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		bookID, err := objectIDParam(c, "id")
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		res, err := db.Collection("books").DeleteOne(ctx, bson.M{"_id": bookID, "createdBy": sellerID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "book not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// GetBooks handles GET /api/books, the public storefront listing.
func GetBooks(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/books"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		cursor, err := db.Collection("books").Find(ctx, bson.M{})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		books := []models.Book{}
		if err := cursor.All(ctx, &books); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, books)
	}
}
