package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"log"
	"os"
	"time"

	"eduvibe/internal/config"
	"eduvibe/internal/database"
	"eduvibe/internal/features/access"
	"eduvibe/internal/features/mentor"
	"eduvibe/internal/features/recommendation"
	"eduvibe/internal/features/user"
	"eduvibe/internal/logger"
	"eduvibe/pkg/apperrors"
	"eduvibe/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

//go:embed data/*.json
var seedData embed.FS

type seedUser struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Role      string   `json:"role"`
	Interests []string `json:"interests"`
	Languages []string `json:"languages"`
}

type seedMentor struct {
	Name            string                            `json:"name"`
	Bio             string                            `json:"bio"`
	Subjects        []string                          `json:"subjects"`
	HourlyRate      float64                           `json:"hourly_rate"`
	ExperienceLevel string                            `json:"experience_level"`
	ResponseTime    string                            `json:"response_time"`
	Languages       []string                          `json:"languages"`
	Location        *string                           `json:"location"`
	Availability    []recommendation.AvailabilitySlot `json:"availability"`
	// Pending leaves the profile waiting for admin approval.
	Pending bool `json:"pending"`
}

func readJSON(name string, v any) error {
	b, err := seedData.ReadFile("data/" + name)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Seed creates demo accounts and mentor profiles. Existing emails are left untouched.
func Seed(
	lc fx.Lifecycle,
	userRepo user.UserRepository,
	mentorRepo mentor.MentorRepository,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("failed to shutdown", zap.Error(err))
					}
				}()

				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				defer cancel()

				if err := userRepo.EnsureIndexes(ctx); err != nil {
					logger.Error("failed to ensure user indexes", zap.Error(err))
					return
				}

				password := os.Getenv("SEED_PASSWORD")
				if password == "" {
					password = "Password123!"
				}
				hash, err := utils.HashPassword(password)
				if err != nil {
					logger.Error("failed to hash seed password", zap.Error(err))
					return
				}

				logger.Info("starting database seeding")

				var users []seedUser
				if err := readJSON("users.json", &users); err != nil {
					logger.Error("failed to read users.json", zap.Error(err))
					return
				}
				for _, u := range users {
					if _, err := ensureUser(ctx, userRepo, hash, u); err != nil {
						logger.Error("failed to seed user", zap.String("email", u.Email), zap.Error(err))
					}
				}

				var mentors []seedMentor
				if err := readJSON("mentors.json", &mentors); err != nil {
					logger.Error("failed to read mentors.json", zap.Error(err))
					return
				}
				for _, m := range mentors {
					account := seedUser{
						Name:      m.Name,
						Email:     utils.Slugify(m.Name) + "@mentors.eduvibe.dev",
						Role:      string(access.RoleMentor),
						Languages: m.Languages,
					}
					owner, err := ensureUser(ctx, userRepo, hash, account)
					if err != nil {
						logger.Error("failed to seed mentor account", zap.String("email", account.Email), zap.Error(err))
						continue
					}

					profile, err := mentorRepo.Upsert(ctx, &mentor.MentorProfile{
						ID:              owner.ID,
						Name:            m.Name,
						Bio:             m.Bio,
						Subjects:        m.Subjects,
						HourlyRate:      m.HourlyRate,
						ExperienceLevel: recommendation.ExperienceLevel(m.ExperienceLevel),
						ResponseTime:    m.ResponseTime,
						Languages:       m.Languages,
						Location:        m.Location,
						Availability:    m.Availability,
					})
					if err != nil {
						logger.Error("failed to seed mentor profile", zap.String("mentor", m.Name), zap.Error(err))
						continue
					}
					if err := mentorRepo.SetApproved(ctx, profile.ID.Hex(), !m.Pending); err != nil {
						logger.Error("failed to set mentor approval", zap.String("mentor", m.Name), zap.Error(err))
						continue
					}
					logger.Info("mentor profile seeded", zap.String("mentor", m.Name), zap.Bool("approved", !m.Pending))
				}

				logger.Info("seeding complete")
			}()
			return nil
		},
	})
}

func ensureUser(ctx context.Context, repo user.UserRepository, hash string, u seedUser) (*user.User, error) {
	existing, err := repo.FindByEmail(ctx, u.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	role, ok := access.ParseRole(u.Role)
	if !ok {
		role = access.RoleStudent
	}
	now := time.Now().UTC()
	created := &user.User{
		ID:        primitive.NewObjectID(),
		Name:      u.Name,
		Email:     u.Email,
		Password:  hash,
		Role:      role,
		IsActive:  true,
		Interests: u.Interests,
		Languages: u.Languages,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			user.NewUserRepository,
			mentor.NewMentorRepository,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	<-app.Done()
}
