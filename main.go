package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"bookverse/internal/cart"
	"bookverse/internal/catalog"
	"bookverse/internal/config"
	"bookverse/internal/database"
	"bookverse/internal/handlers"
	"bookverse/internal/middleware"
	"bookverse/internal/notify"
	"bookverse/internal/orders"
	"bookverse/internal/store"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureCartIndexes(db); err != nil {
		log.Printf("cart index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureBookIndexes(db); err != nil {
		log.Printf("book index warning: %v", err)
	}

	mailer := notify.NewMailer(
		config.AppEnv.SMTPHost,
		config.AppEnv.SMTPPort,
		config.AppEnv.SMTPUser,
		config.AppEnv.SMTPPass,
		config.AppEnv.MailFrom,
	)

	cartService := cart.New(store.NewMongoCartStore(db))
	orderService := orders.New(
		store.NewMongoOrderStore(db),
		store.NewMongoCartStore(db),
		catalog.Default(),
		mailer,
		config.AppEnv.PublicBaseURL,
	)

	r := gin.Default()
	r.Static("/public", "./public")

	api := r.Group("/api")

	api.POST("/auth/signup", handlers.Signup(db))
	api.POST("/auth/login", handlers.Login(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))

	api.POST("/password/send-otp", handlers.SendOTP(db, mailer, false))
	api.POST("/password/resend-otp", handlers.SendOTP(db, mailer, true))
	api.POST("/password/verify-otp", handlers.VerifyOTP(db))
	api.POST("/password/reset", handlers.ResetPassword(db))

	api.GET("/books", handlers.GetBooks(db))
	api.GET("/reviews", handlers.GetReviews(db))
	api.POST("/reviews", handlers.AddReview(db, mailer, config.AppEnv.AdminEmail))
	api.POST("/contact", handlers.SubmitContact(db, mailer, config.AppEnv.AdminEmail))

	user := api.Group("")
	user.Use(middleware.UserAuth(config.AppEnv.JWTSecret))
	{
		user.POST("/cart/add-to-cart", handlers.AddToCart(cartService))
		user.GET("/cart", handlers.GetCart(cartService))
		user.POST("/cart/increase", handlers.IncreaseItem(cartService))
		user.POST("/cart/decrease", handlers.DecreaseItem(cartService))
		user.POST("/cart/remove-item", handlers.RemoveItem(cartService))

		user.POST("/order", handlers.CreateOrder(orderService))
		user.GET("/order/pending", handlers.GetLatestPendingOrder(orderService))
		user.POST("/order/:id/pay", handlers.ConfirmPayment(orderService))
		user.POST("/order/:id/cancel", handlers.CancelOrder(orderService))
		user.GET("/order/my", handlers.GetMyOrders(orderService))

		user.POST("/seller/books", handlers.AddBook(db))
		user.GET("/seller/books", handlers.GetSellerBooks(db))
		user.DELETE("/seller/books/:id", handlers.DeleteBook(db))
	}

	r.POST("/admin/login", handlers.AdminLogin(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/orders", handlers.GetAllOrders(orderService))
		admin.PUT("/orders/:id/status", handlers.UpdateOrderStatus(orderService))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(orderService))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
