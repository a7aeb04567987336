package main

import (
	"context"
	"fmt"
	"time"

	_ "eduvibe/docs" // Import swagger docs
	"eduvibe/internal/cache"
	common_api "eduvibe/internal/common/api"
	"eduvibe/internal/config"
	"eduvibe/internal/database"
	"eduvibe/internal/events"
	"eduvibe/internal/features/audit"
	"eduvibe/internal/features/auth"
	"eduvibe/internal/features/email"
	"eduvibe/internal/features/file"
	"eduvibe/internal/features/mentor"
	"eduvibe/internal/features/notification"
	"eduvibe/internal/features/payment"
	"eduvibe/internal/features/recommendation"
	"eduvibe/internal/features/review"
	"eduvibe/internal/features/scheduler"
	"eduvibe/internal/features/session"
	"eduvibe/internal/features/system"
	"eduvibe/internal/features/user"
	"eduvibe/internal/logger"
	"eduvibe/internal/metrics"
	"eduvibe/internal/middleware"
	"eduvibe/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(cfg *config.Config, log *zap.Logger, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(log),
		BodyLimit:             int(cfg.Uploads.MaxSizeBytes) + 1<<20,
	})

	app.Use(middleware.RequestLogger(log, m))
	app.Use(middleware.CORSMiddleware(cfg))

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, log *zap.Logger) {
	for _, route := range routes {
		log.Debug("setting up route", zap.String("api", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
	log.Info("routes registered", zap.Int("count", len(routes)))
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`, ``),
)

// ConfigureAuth pushes JWT settings into the token helpers before any request is served.
func ConfigureAuth(cfg *config.Config, log *zap.Logger) {
	if cfg.IsProduction() && cfg.JWT.Secret == "secret" {
		log.Warn("JWT_SECRET is the development default")
	}
	utils.SetSecret(cfg.JWT.Secret)
	utils.SetExpiration(cfg.JWT.Expiration)
}

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				log.Info("http server listening", zap.String("addr", port), zap.String("env", cfg.Environment))
				if err := app.Listen(port); err != nil {
					log.Fatal("server failed to start", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

type indexed interface {
	EnsureIndexes(ctx context.Context) error
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(
	lc fx.Lifecycle,
	log *zap.Logger,
	users user.UserRepository,
	mentors mentor.MentorRepository,
	sessions session.SessionRepository,
	reviews review.ReviewRepository,
	payments payment.PaymentRepository,
	files file.FileRepository,
	notifications notification.NotificationRepository,
	audits audit.AuditRepository,
	runs scheduler.RunRepository,
) {
	repos := map[string]indexed{
		"users":         users,
		"mentors":       mentors,
		"sessions":      sessions,
		"reviews":       reviews,
		"payments":      payments,
		"files":         files,
		"notifications": notifications,
		"audit_logs":    audits,
		"job_runs":      runs,
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				for name, repo := range repos {
					if err := repo.EnsureIndexes(ctx); err != nil {
						log.Error("failed to ensure indexes", zap.String("collection", name), zap.Error(err))
					}
				}
			}()
			return nil
		},
	})
}

// RunScheduler ties the background jobs to the application lifecycle.
func RunScheduler(lc fx.Lifecycle, s scheduler.SchedulerService) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return s.Start()
		},
		OnStop: func(context.Context) error {
			s.Stop()
			return nil
		},
	})
}

func NewMentorPool(pool *mentor.EligiblePool, cacheRepo *cache.Repository, cfg *config.Config, log *zap.Logger, m *metrics.Metrics) *recommendation.CachedMentorSource {
	return recommendation.NewCachedMentorSource(pool, cacheRepo, cfg.Recommendation.CacheTTL, log, m)
}

func NewUploadStorage(cfg *config.Config) (file.Storage, error) {
	return file.NewLocalStorage(cfg.Uploads.Dir)
}

// @title           EduVibe API
// @version         1.0
// @description     Student and mentor platform: mentor discovery, session booking, payments and reviews.

// @contact.name    EduVibe Engineering
// @contact.email   engineering@eduvibe.dev

// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Infrastructure
			metrics.New,
			database.NewDatabase,
			cache.NewRedis,
			cache.NewRepository,
			events.NewPublisher,
			NewFiberServer,

			// Initialize Repository
			user.NewUserRepository,
			mentor.NewMentorRepository,
			session.NewSessionRepository,
			review.NewReviewRepository,
			payment.NewPaymentRepository,
			file.NewFileRepository,
			notification.NewNotificationRepository,
			email.NewEmailRepository,
			audit.NewAuditRepository,
			scheduler.NewRunRepository,

			// Initialize Service
			audit.NewAuditService,
			user.NewUserService,
			user.NewNameDirectory,
			user.NewStudentProfileSource,
			auth.NewAuthService,
			email.NewEmailService,
			notification.NewHub,
			notification.NewNotificationService,
			mentor.NewEligiblePool,
			NewMentorPool,
			mentor.NewMentorService,
			recommendation.NewRecommendationService,
			session.NewSessionService,
			review.NewReviewService,
			payment.NewStripeGateway,
			payment.NewPaymentService,
			NewUploadStorage,
			file.NewFileService,
			scheduler.NewSchedulerService,

			// Interface Adapters to break circular dependencies and satisfy Fx
			func(d *user.NameDirectory) audit.ActorNamer { return d },
			func(d *user.NameDirectory) mentor.NameLookup { return d },
			func(r session.SessionRepository) user.SubjectHistory { return r },
			func(p *user.StudentProfileSource) recommendation.ProfileSource { return p },
			func(c *recommendation.CachedMentorSource) recommendation.MentorSource { return c },
			func(c *recommendation.CachedMentorSource) mentor.PoolInvalidator { return c },
			func(s notification.NotificationService) notification.Notifier { return s },
			func(s email.EmailService) auth.WelcomeMailer { return s },
			func(s email.EmailService) session.Mailer { return s },
			func(s email.EmailService) payment.Mailer { return s },
			func(s mentor.MentorService) session.MentorDirectory { return s },
			func(s mentor.MentorService) review.RatingSink { return s },
			func(r user.UserRepository) session.UserDirectory { return r },
			func(r user.UserRepository) payment.UserDirectory { return r },
			func(r session.SessionRepository) review.SessionLookup { return r },
			func(r session.SessionRepository) payment.SessionLedger { return r },
			func(s session.SessionService) scheduler.SessionJobs { return s },

			// Initialize Controller
			auth.NewAuthController,
			user.NewUserController,
			mentor.NewMentorController,
			recommendation.NewRecommendationController,
			session.NewSessionController,
			review.NewReviewController,
			payment.NewPaymentController,
			file.NewFileController,
			notification.NewNotificationController,
			audit.NewAuditController,
			scheduler.NewSchedulerController,

			// Initialize API Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(user.NewUserApi),
			AsRoute(mentor.NewMentorApi),
			AsRoute(recommendation.NewRecommendationApi),
			AsRoute(session.NewSessionApi),
			AsRoute(review.NewReviewApi),
			AsRoute(payment.NewPaymentApi),
			AsRoute(file.NewFileApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(scheduler.NewSchedulerApi),
			AsRoute(system.NewSystemApi),
			AsRoute(system.NewSwaggerApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			ConfigureAuth,
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			RunScheduler,
			InitializeIndexes,
		),
	)

	app.Run()
}
