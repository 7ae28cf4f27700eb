// mailerctl is the operator CLI: schema migrations, seed data and SMTP checks.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/uslaccafrica/registration-mailer/internal/config"
	"github.com/uslaccafrica/registration-mailer/internal/email"
	migrations "github.com/uslaccafrica/registration-mailer/migrations/postgres"
)

func main() {
	_ = godotenv.Load()

	var configPath string

	root := &cobra.Command{
		Use:          "mailerctl",
		Short:        "Operations CLI for the registration mailer",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "Path to YAML config")

	root.AddCommand(
		migrateCmd(&configPath),
		seedCmd(&configPath),
		smtpCheckCmd(&configPath),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func openPool(ctx context.Context, configPath string) (*pgxpool.Pool, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	return pool, nil
}

func migrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [up|down]",
		Short: "Apply the embedded schema migrations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = strings.ToLower(args[0])
			}
			suffix := "_up.sql"
			switch action {
			case "up":
			case "down":
				suffix = "_down.sql"
			default:
				return fmt.Errorf("unknown action %q, use: up | down", action)
			}

			ctx := cmd.Context()
			pool, err := openPool(ctx, *configPath)
			if err != nil {
				return err
			}
			defer pool.Close()

			entries, err := migrations.FS.ReadDir(".")
			if err != nil {
				return err
			}
			var files []string
			for _, e := range entries {
				if strings.HasSuffix(e.Name(), suffix) {
					files = append(files, e.Name())
				}
			}
			sort.Strings(files)
			if action == "down" {
				for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
					files[i], files[j] = files[j], files[i]
				}
			}

			for _, f := range files {
				sql, err := migrations.FS.ReadFile(f)
				if err != nil {
					return err
				}
				start := time.Now()
				if _, err := pool.Exec(ctx, string(sql)); err != nil {
					return fmt.Errorf("exec %s: %w", f, err)
				}
				fmt.Printf("OK %s (%s)\n", f, time.Since(start).Truncate(time.Millisecond))
			}
			fmt.Printf("%d migration(s) applied.\n", len(files))
			return nil
		},
	}
	return cmd
}

func seedCmd(configPath *string) *cobra.Command {
	var (
		emailAddr string
		fullName  string
		verified  bool
		ageSecs   int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert a test registration row",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := openPool(ctx, *configPath)
			if err != nil {
				return err
			}
			defer pool.Close()

			id := uuid.NewString()
			token := uuid.NewString()
			createdAt := time.Now().UTC().Add(-time.Duration(ageSecs) * time.Second)

			_, err = pool.Exec(ctx, `
				INSERT INTO registrations (id, email, full_name, verified, verification_token, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, id, emailAddr, fullName, verified, token, createdAt)
			if err != nil {
				return err
			}
			fmt.Printf("registrationId:    %s\n", id)
			fmt.Printf("verificationToken: %s\n", token)
			fmt.Printf("created_at:        %s\n", createdAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&emailAddr, "email", "test@example.org", "Registration email")
	cmd.Flags().StringVar(&fullName, "name", "Test User", "Registration full name")
	cmd.Flags().BoolVar(&verified, "verified", false, "Mark as already verified")
	cmd.Flags().IntVar(&ageSecs, "age", 120, "Record age in seconds (backdates created_at)")
	return cmd
}

func smtpCheckCmd(configPath *string) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "smtp-check",
		Short: "Send a test message through the configured SMTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("config load: %w", err)
			}
			if to == "" {
				return fmt.Errorf("--to is required")
			}
			if err := cfg.ValidateSMTP(); err != nil {
				return err
			}

			sender := email.NewSMTPSender(email.SMTPConfig{
				Host:               cfg.SMTP.Host,
				Port:               cfg.SMTP.Port,
				Username:           cfg.SMTP.Username,
				Password:           cfg.SMTP.Password,
				FromEmail:          cfg.SMTP.From,
				TLSMode:            cfg.SMTP.TLS,
				InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
			})

			err = sender.Send(to, "SMTP check",
				"<p>SMTP connectivity check from mailerctl.</p>",
				"SMTP connectivity check from mailerctl.")
			if err != nil {
				diag := email.DiagnoseSMTP(err)
				return fmt.Errorf("send failed (%s, temporary=%v): %w", diag.Code, diag.Temporary, err)
			}
			fmt.Println("SMTP check OK")
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Recipient address for the test message")
	return cmd
}
