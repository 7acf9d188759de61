package handlers

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"bookverse/internal/models"
	"bookverse/internal/notify"
)

const otpValidity = 10 * time.Minute

type otpRequest struct {
	Email string `json:"email" binding:"required"`
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

type resetPasswordRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func findUserByEmail(ctx context.Context, db *mongo.Database, email string) (*models.User, error) {
	var user models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SendOTP handles POST /api/password/send-otp and (with resend=true)
// POST /api/password/resend-otp.
func SendOTP(db *mongo.Database, notifier notify.Notifier, resend bool) gin.HandlerFunc {
	route := "POST /api/password/send-otp"
	if resend {
		route = "POST /api/password/resend-otp"
	}
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		var req otpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "email is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		user, err := findUserByEmail(ctx, db, req.Email)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		otp, err := generateOTP()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "otp generation failed")
			return
		}

		_, err = db.Collection("users").UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
			"resetOTP":       otp,
			"resetOTPExpiry": time.Now().Add(otpValidity),
		}})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		// The OTP must actually reach the user, so unlike order mail
		// this send is on the request path.
		subject, body := notify.OTPMail(otp, resend)
		if err := notifier.Send(req.Email, subject, body); err != nil {
			log.Println("[AUTH] [ERROR] otp mail failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "failed to send otp")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully"})
	}
}

// VerifyOTP handles POST /api/password/verify-otp.
func VerifyOTP(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/password/verify-otp"
		defer handlePanic(c, route)

		var req verifyOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "email and otp are required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		user, err := findUserByEmail(ctx, db, req.Email)
		if err != nil || user.ResetOTP == "" || user.ResetOTP != req.OTP || time.Now().After(user.ResetOTPExpiry) {
			respondWithError(c, http.StatusBadRequest, route, "invalid or expired OTP")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "OTP verified"})
	}
}

// ResetPassword handles POST /api/password/reset.
func ResetPassword(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/password/reset"
		defer handlePanic(c, route)

		var req resetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "email and password are required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		user, err := findUserByEmail(ctx, db, req.Email)
		if errors.Is(err, mongo.ErrNoDocuments) {
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "password hash failed")
			return
		}

		_, err = db.Collection("users").UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
			"$set":   bson.M{"password": string(hash), "updatedAt": time.Now()},
			"$unset": bson.M{"resetOTP": "", "resetOTPExpiry": ""},
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[AUTH] [INFO] password reset for:", req.Email)
		c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
	}
}
