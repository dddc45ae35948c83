package routes

import (
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/edumatch/tutor-scheduler/internal/audit"
	"github.com/edumatch/tutor-scheduler/internal/clock"
	"github.com/edumatch/tutor-scheduler/internal/config"
	"github.com/edumatch/tutor-scheduler/internal/handlers"
	infraRepo "github.com/edumatch/tutor-scheduler/internal/infra/repository"
	"github.com/edumatch/tutor-scheduler/internal/lock"
	"github.com/edumatch/tutor-scheduler/internal/middleware"
	"github.com/edumatch/tutor-scheduler/internal/payment"
	ucScheduling "github.com/edumatch/tutor-scheduler/internal/usecase/scheduling"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	var locker lock.Locker = lock.Noop{}
	if cfg.RedisAddr != "" {
		redisLock, err := lock.NewRedisLock(cfg.RedisAddr)
		if err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		locker = redisLock
	} else {
		log.Println("REDIS_ADDR not set, schedule mutations rely on the slot identity index alone")
	}

	var gateway payment.Gateway = payment.Disabled{}
	if cfg.MPAccessToken != "" {
		mp, err := payment.NewMercadoPagoGateway(cfg.MPAccessToken)
		if err != nil {
			log.Fatalf("failed to init payment gateway: %v", err)
		}
		gateway = mp
	} else {
		log.Println("MP_ACCESS_TOKEN not set, refund instructions will not be emitted")
	}

	methods := payment.NewGormMethods(db)
	clk := clock.System{}

	// ======================================================
	// USE CASES
	// ======================================================
	createBookingUC := ucScheduling.NewCreateBooking(
		bookingRepo,
		methods,
		auditDispatcher,
		clk,
		cfg.BookingMinAdvanceMinutes,
		cfg.Currency,
	)

	cancelBookingUC := ucScheduling.NewCancelBooking(
		bookingRepo,
		gateway,
		auditDispatcher,
		clk,
		cfg.CancelCutoffHours,
	)

	createSlotsUC := ucScheduling.NewCreateSlots(bookingRepo, locker, auditDispatcher)
	replaceSlotsUC := ucScheduling.NewReplaceSlots(bookingRepo, locker, auditDispatcher)
	deleteSlotUC := ucScheduling.NewDeleteSlot(bookingRepo, auditDispatcher)
	listSlotsUC := ucScheduling.NewListSlots(bookingRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)

	slotHandler := handlers.NewSlotHandler(
		createSlotsUC,
		replaceSlotsUC,
		deleteSlotUC,
		listSlotsUC,
	)

	bookingHandler := handlers.NewBookingHandler(
		db,
		createBookingUC,
		cancelBookingUC,
	)

	publicHandler := handlers.NewPublicHandler(db, listSlotsUC)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.GET("/teachers/:id/slots", publicHandler.TeacherSlots)
		api.GET("/courses", publicHandler.ListCourses)

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PRIVATE
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			// ------------------------------
			// AVAILABILITY (teacher)
			// ------------------------------
			teacherOnly := secured.Group("/me/slots")
			teacherOnly.Use(middleware.RequireRole(middleware.RoleTeacher))
			{
				teacherOnly.POST("", slotHandler.Create)
				teacherOnly.PUT("", slotHandler.Replace)
				teacherOnly.GET("", slotHandler.List)
				teacherOnly.DELETE("/:id", slotHandler.Delete)
			}

			// ------------------------------
			// BOOKINGS
			// ------------------------------
			secured.POST("/bookings",
				middleware.RequireRole(middleware.RoleStudent),
				bookingHandler.Create,
			)
			secured.PATCH("/bookings/:id/cancel",
				middleware.RequireRole(middleware.RoleStudent),
				bookingHandler.Cancel,
			)
			secured.GET("/bookings", bookingHandler.List)
			secured.GET("/bookings/:id/sessions", bookingHandler.ListSessions)

			secured.GET("/me/audit-logs", auditLogsHandler.List)
		}
	}
}
