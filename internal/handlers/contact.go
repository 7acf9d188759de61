package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"bookverse/internal/models"
	"bookverse/internal/notify"
)

type contactRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	BookName string `json:"bookName"`
	Message  string `json:"message" binding:"required"`
}

// SubmitContact handles POST /api/contact.
func SubmitContact(db *mongo.Database, notifier notify.Notifier, adminEmail string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/contact"
		defer handlePanic(c, route)

		var req contactRequest
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

		msg := models.ContactMessage{
			Name:      req.Name,
			Email:     req.Email,
			Phone:     req.Phone,
			BookName:  req.BookName,
			Message:   req.Message,
			CreatedAt: time.Now(),
		}
		if _, err := db.Collection("contacts").InsertOne(ctx, msg); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "failed to send message")
			return
		}

		go func() {
			subject, body := notify.ContactMail(msg)
			if err := notifier.Send(adminEmail, subject, body); err != nil {
				log.Println("[NOTIFY] [ERROR] contact mail failed:", err)
			}
		}()

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
