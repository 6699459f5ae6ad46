// Command adminctl manages admin accounts directly in the configured
// user store. It bootstraps the first admin, since signup over HTTP
// requires an existing session.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Purav2003/epimech-admin/internal/auth"
	"github.com/Purav2003/epimech-admin/internal/config"
	"github.com/Purav2003/epimech-admin/internal/logging"
	"github.com/Purav2003/epimech-admin/internal/models"
	"github.com/Purav2003/epimech-admin/internal/respond"
	"github.com/Purav2003/epimech-admin/internal/store"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, true)

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "adminctl",
		Short:        "Manage back-office admin accounts",
		SilenceUsage: true,
	}

	user := &cobra.Command{Use: "user", Short: "Create or update admin users"}
	user.AddCommand(newCreateCmd(cfg), newPasswdCmd(cfg))
	root.AddCommand(user)
	return root
}

func newCreateCmd(cfg *config.Config) *cobra.Command {
	var username, email, password string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			req := models.SignupRequest{Username: username, Email: email, Password: password}
			if err := respond.Validate(req); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			users, closeFn, err := openUserStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			hashed, err := auth.HashPassword(req.Password)
			if err != nil {
				return err
			}
			u, err := users.CreateUser(ctx, models.User{
				Username: strings.TrimSpace(req.Username),
				Email:    strings.TrimSpace(req.Email),
				Password: hashed,
			})
			if errors.Is(err, store.ErrConflict) {
				return fmt.Errorf("user %q already exists", req.Username)
			}
			if err != nil {
				return err
			}
			log.Info().Str("id", u.ID).Str("username", u.Username).Msg("admin created")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&email, "email", "", "address that receives login codes")
	cmd.Flags().StringVar(&password, "password", "", "password (defaults to $ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newPasswdCmd(cfg *config.Config) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Reset an admin's password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			if len(password) < 8 {
				return errors.New("password must be at least 8 characters")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			users, closeFn, err := openUserStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			u, err := users.GetUserByUsername(ctx, username)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("user %q not found", username)
			}
			if err != nil {
				return err
			}
			if u.Password, err = auth.HashPassword(password); err != nil {
				return err
			}
			if _, err := users.UpdateUser(ctx, *u); err != nil {
				return err
			}
			log.Info().Str("username", u.Username).Msg("password updated")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&password, "password", "", "new password (defaults to $ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func openUserStore(ctx context.Context, cfg *config.Config) (auth.UserStore, func(), error) {
	switch cfg.UserStore {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		pg := store.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return pg, pool.Close, nil
	case "mongo":
		if cfg.MongoURI == "" {
			return nil, nil, errors.New("MONGO_URI is required")
		}
		client, err := store.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		us := store.NewMongoUserStore(client.Database(cfg.MongoDB))
		if err := us.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return us, func() { _ = client.Disconnect(context.Background()) }, nil
	default:
		return nil, nil, fmt.Errorf("adminctl needs a persistent USER_STORE, got %q", cfg.UserStore)
	}
}
