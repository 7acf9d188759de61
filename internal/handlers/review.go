package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"bookverse/internal/models"
	"bookverse/internal/notify"
)

type addReviewRequest struct {
	Name     string `json:"name" binding:"required"`
	BookName string `json:"bookName"`
	Review   string `json:"review" binding:"required"`
}

// AddReview handles POST /api/reviews. The admin gets a copy by mail;
// a mail failure does not fail the submission.
func AddReview(db *mongo.Database, notifier notify.Notifier, adminEmail string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/reviews"
		defer handlePanic(c, route)

		var req addReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "required fields missing")
			return
		}

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		review := models.Review{
			Name:      req.Name,
			BookName:  req.BookName,
			Review:    req.Review,
			CreatedAt: time.Now(),
		}
		if _, err := db.Collection("reviews").InsertOne(ctx, review); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		go func() {
			subject, body := notify.ReviewMail(review)
			if err := notifier.Send(adminEmail, subject, body); err != nil {
				log.Println("[NOTIFY] [ERROR] review mail failed:", err)
			}
		}()

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// GetReviews handles GET /api/reviews, newest first.
func GetReviews(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/reviews"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		cursor, err := db.Collection("reviews").Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "failed to load reviews")
			return
		}
		defer cursor.Close(ctx)

		reviews := []models.Review{}
		if err := cursor.All(ctx, &reviews); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "failed to load reviews")
			return
		}

		c.JSON(http.StatusOK, reviews)
	}
}
