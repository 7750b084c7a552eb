// Command admin runs operational tasks against the SafwanPOS database and Redis:
// schema migrations, tenant and user seeding, password hashing and DLQ inspection.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Safwa9amar/safwanPos-sub000/internal/config"
	"github.com/Safwa9amar/safwanPos-sub000/internal/infra"
	"github.com/Safwa9amar/safwanPos-sub000/internal/model"
	"github.com/Safwa9amar/safwanPos-sub000/internal/repository"
	"github.com/Safwa9amar/safwanPos-sub000/internal/service"
	"github.com/Safwa9amar/safwanPos-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func main() {
	app := &cli.App{
		Name:  "admin",
		Usage: "SafwanPOS maintenance commands",
		Before: func(*cli.Context) error {
			infra.SetupLogger("development", "info")
			return nil
		},
		Commands: []*cli.Command{
			migrateCommand(),
			seedTenantCommand(),
			seedUserCommand(),
			hashPasswordCommand(),
			dlqCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("admin command failed")
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply pending schema migrations",
		Action: func(*cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := infra.RunMigrations(cfg.DatabaseURL); err != nil {
				return err
			}
			log.Info().Msg("migrations applied")
			return nil
		},
	}
}

func seedTenantCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed-tenant",
		Usage: "create a tenant and print its id",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "status", Value: model.SubscriptionTrial, Usage: "TRIAL | ACTIVE | INACTIVE"},
			&cli.IntFlag{Name: "trial-days", Value: 14, Usage: "trial length, only for TRIAL"},
		},
		Action: func(c *cli.Context) error {
			status := strings.ToUpper(c.String("status"))
			switch status {
			case model.SubscriptionTrial, model.SubscriptionActive, model.SubscriptionInactive:
			default:
				return fmt.Errorf("unknown subscription status %q", status)
			}
			t := &model.Tenant{Name: c.String("name"), SubscriptionStatus: status}
			if status == model.SubscriptionTrial {
				ends := time.Now().UTC().AddDate(0, 0, c.Int("trial-days"))
				t.TrialEndsAt = &ends
			}
			return withDB(func(db *gorm.DB) error {
				if err := repository.NewTenantRepository(db).Create(c.Context, t); err != nil {
					return fmt.Errorf("create tenant: %w", err)
				}
				fmt.Println(t.ID)
				return nil
			})
		},
	}
}

func seedUserCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed-user",
		Usage: "create a user in a tenant",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tenant", Required: true, Usage: "tenant UUID"},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"SEED_PASSWORD"}},
			&cli.StringFlag{Name: "role", Value: model.RoleCashier, Usage: "admin | manager | cashier"},
		},
		Action: func(c *cli.Context) error {
			tenantID, err := uuid.Parse(c.String("tenant"))
			if err != nil {
				return fmt.Errorf("invalid tenant id: %w", err)
			}
			role := strings.ToLower(c.String("role"))
			switch role {
			case model.RoleAdmin, model.RoleManager, model.RoleCashier:
			default:
				return fmt.Errorf("unknown role %q", role)
			}
			hash, err := service.HashPassword(c.String("password"))
			if err != nil {
				return err
			}
			u := &model.User{
				TenantID:     tenantID,
				Email:        strings.ToLower(strings.TrimSpace(c.String("email"))),
				Name:         c.String("name"),
				PasswordHash: hash,
				Role:         role,
				Active:       true,
			}
			return withDB(func(db *gorm.DB) error {
				if _, err := repository.NewTenantRepository(db).FindByID(c.Context, tenantID); err != nil {
					return fmt.Errorf("tenant %s: %w", tenantID, err)
				}
				if err := repository.NewUserRepository(db).Create(c.Context, u); err != nil {
					return fmt.Errorf("create user: %w", err)
				}
				fmt.Println(u.ID)
				return nil
			})
		},
	}
}

func hashPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash-password",
		Usage:     "print the bcrypt hash of a password",
		ArgsUsage: "<password>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: admin hash-password <password>", 2)
			}
			hash, err := service.HashPassword(c.Args().First())
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}
}

func dlqCommand() *cli.Command {
	return &cli.Command{
		Name:  "dlq",
		Usage: "show dead-lettered receipt jobs",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "limit", Value: 20},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			rdb, err := infra.NewRedis(cfg.RedisURL)
			if err != nil {
				return err
			}
			defer rdb.Close()

			ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
			defer cancel()
			total, err := worker.DLQLength(ctx, rdb, worker.QueueReceipt)
			if err != nil {
				return err
			}
			entries, err := worker.PeekDLQ(ctx, rdb, worker.QueueReceipt, c.Int64("limit"))
			if err != nil {
				return err
			}
			fmt.Printf("%d entries in %s%s\n", total, worker.DLQPrefix, worker.QueueReceipt)
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		},
	}
}

// withDB loads config, opens the database, runs fn and closes the pool.
func withDB(fn func(db *gorm.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, 2)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return fn(db)
}
