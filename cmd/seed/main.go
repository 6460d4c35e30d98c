package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/local-business-directory/config"
	"github.com/oksasatya/local-business-directory/internal/domain/entity"
	pginfra "github.com/oksasatya/local-business-directory/internal/infrastructure/postgres"
	"github.com/oksasatya/local-business-directory/pkg/helpers"
)

func ptr[T any](v T) *T { return &v }

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolConfig{
		AppName:     cfg.AppName + "-seed",
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
		MaxConnLife: cfg.DBMaxConnLife,
	})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	users := pginfra.NewUserRepository(pool)
	businesses := pginfra.NewBusinessRepository(pool)

	owner := &entity.User{ID: "demo-owner", Email: "owner@example.com", FirstName: "Demo", LastName: "Owner"}
	if err := users.Upsert(ctx, owner); err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	logger.WithField("user_id", owner.ID).Info("seeded demo owner")

	existing, err := businesses.GetByOwner(ctx, owner.ID)
	if err != nil {
		log.Fatalf("failed to read listings: %v", err)
	}
	if len(existing) > 0 {
		logger.WithField("count", len(existing)).Info("demo listings already present, skipping")
		return
	}

	samples := []entity.Business{
		{Name: "Village Bakery", Category: entity.CategoryFood, Description: ptr("Sourdough and pastries baked daily"), Phone: ptr("555-0100"), Address: ptr("12 Main St"), Latitude: ptr(40.7128), Longitude: ptr(-74.006)},
		{Name: "Main Street Hardware", Category: entity.CategoryShop, Description: ptr("Tools, paint and garden supplies"), Phone: ptr("555-0101"), Address: ptr("40 Main St")},
		{Name: "Corner Clinic", Category: entity.CategoryHealth, Description: ptr("Walk-in family practice"), Address: ptr("3 Elm Ave")},
		{Name: "QuickFix Plumbing", Category: entity.CategoryService, Phone: ptr("555-0199")},
	}
	for i := range samples {
		b := &samples[i]
		b.OwnerID = owner.ID
		b.IsOpen = true
		if err := businesses.Create(ctx, b); err != nil {
			log.Fatalf("failed to seed %q: %v", b.Name, err)
		}
		logger.WithField("business_id", b.ID).Infof("seeded %s", b.Name)
	}
}
