package server

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"gorm.io/gorm"

	"github.com/kalilynx/embededticketautomation/config"
	"github.com/kalilynx/embededticketautomation/internal/fulfillment"
	"github.com/kalilynx/embededticketautomation/internal/handlers"
	"github.com/kalilynx/embededticketautomation/internal/helpers"
	"github.com/kalilynx/embededticketautomation/internal/ledger"
	"github.com/kalilynx/embededticketautomation/internal/middleware"
	"github.com/kalilynx/embededticketautomation/internal/notifier"
	"github.com/kalilynx/embededticketautomation/internal/qr"
	"github.com/kalilynx/embededticketautomation/internal/redemption"
	"github.com/kalilynx/embededticketautomation/internal/ticketcode"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	stripeCfg, err := config.LoadStripeConfig()
	if err != nil {
		return fmt.Errorf("failed to load stripe config: %v", err)
	}
	stripe.Key = stripeCfg.SecretKey

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return fmt.Errorf("JWT_SECRET not configured")
	}

	eventCfg := config.LoadEventConfig()
	mailerCfg := config.LoadMailerConfig()

	currentDate := func() string { return helpers.CurrentSaturday(time.Now()) }

	ledgerStore := ledger.NewGormLedger(db)
	renderer := qr.NewRenderer(eventCfg.BaseURL)
	mailer := notifier.NewMailer(notifier.Options{
		APIKey:    mailerCfg.APIKey,
		FromName:  mailerCfg.FromName,
		FromEmail: mailerCfg.FromEmail,
		EventName: eventCfg.Name,
		VenueName: eventCfg.Venue,
	}, renderer)
	orchestrator := fulfillment.New(ledgerStore, mailer, ticketcode.Generate, currentDate)
	gate := redemption.NewGate(ledgerStore, currentDate)

	r := gin.Default()

	setupRoutes(r, db, routeComponents{
		event:        eventCfg,
		stripeCfg:    stripeCfg,
		jwtSecret:    jwtSecret,
		ledger:       ledgerStore,
		renderer:     renderer,
		orchestrator: orchestrator,
		gate:         gate,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

type routeComponents struct {
	event        *config.EventConfig
	stripeCfg    *config.StripeConfig
	jwtSecret    string
	ledger       ledger.Ledger
	renderer     *qr.Renderer
	orchestrator *fulfillment.Orchestrator
	gate         *redemption.Gate
}

func setupRoutes(r *gin.Engine, db *gorm.DB, deps routeComponents) {
	auth := handlers.NewAuthHandler(db, deps.jwtSecret)
	event := handlers.NewEventHandler(deps.event, time.Now)
	checkout := handlers.NewCheckoutHandler(deps.event, time.Now)
	hook := handlers.NewWebhookHandler(deps.orchestrator, deps.stripeCfg.WebhookSecret, deps.event.TicketPrice)
	checkin := handlers.NewCheckInHandler(deps.gate, deps.ledger, deps.renderer, time.Now)
	stats := handlers.NewStatsHandler(deps.ledger, time.Now)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Embedded Ticket Automation API",
			"version": "1.0.0",
		})
	})

	r.GET("/current-event", event.CurrentEvent)
	r.POST("/create-checkout-session", checkout.CreateCheckoutSession)
	r.POST("/webhook", hook.HandleStripeWebhook)
	r.GET("/verify/:code", checkin.Verify)
	r.GET("/qr/:code", checkin.TicketQR)
	r.POST("/login", auth.Login)

	staff := r.Group("")
	staff.Use(middleware.JWTAuthMiddleware(deps.jwtSecret))
	{
		staff.POST("/checkin", checkin.CheckIn)
		staff.GET("/offline-tickets", checkin.OfflineTickets)
		staff.GET("/admin/stats", stats.Stats)
	}

	admin := r.Group("")
	admin.Use(middleware.JWTAuthMiddleware(deps.jwtSecret), middleware.RequireRole("admin"))
	{
		admin.POST("/register", auth.Register)
	}
}
