package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"rightfit/internal/admin"
	"rightfit/internal/config"
	"rightfit/pkg/domain"
	"rightfit/pkg/logger"
	"rightfit/pkg/ordertoken"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// adminTokenCommand constructs the 'admin-token' subcommand that mints an
// admin session token, e.g. for scripts or when no password is configured.
func adminTokenCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin-token",
		Short: "Generates an admin session token",
		Run: func(cmd *cobra.Command, args []string) {
			ttl, _ := cmd.Flags().GetDuration("ttl")

			sessions, err := admin.NewSessions(cfg.Admin.JWTSecret, "", ttl)
			if err != nil {
				logger.Fatal(context.Background(), "could not create admin sessions", zap.Error(err))
			}
			token, _, err := sessions.Issue(admin.Subject, sessions.TTL())
			if err != nil {
				logger.Fatal(context.Background(), "could not sign admin token", zap.Error(err))
			}

			fmt.Println(token) //nolint: forbidigo
		},
	}

	cmd.Flags().Duration("ttl", 24*time.Hour, "Token TTL (e.g., 30m, 1h, 24h)")

	return cmd
}

// hashPasswordCommand constructs the 'hash-password' subcommand that prints
// the bcrypt hash to put in admin.passwordHash. The password is read from
// --password or the first line of stdin.
func hashPasswordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Hashes an admin password with bcrypt",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil && line == "" {
					logger.Fatal(ctx, "could not read password from stdin", zap.Error(err))
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				logger.Fatal(ctx, "password is empty")
			}

			hash, err := admin.HashPassword(password)
			if err != nil {
				logger.Fatal(ctx, "could not hash password", zap.Error(err))
			}

			fmt.Println(hash) //nolint: forbidigo
		},
	}

	cmd.Flags().String("password", "", "Password to hash; read from stdin when empty")

	return cmd
}

// orderLinkCommand constructs the 'order-link' subcommand that prints the
// tokenized status URL of an order, e.g. for customer support.
func orderLinkCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order-link",
		Short: "Prints the customer status link of an order",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			rawID, _ := cmd.Flags().GetString("id")
			email, _ := cmd.Flags().GetString("email")

			id, err := domain.ParseSubmissionID(rawID)
			if err != nil {
				logger.Fatal(ctx, "invalid order id", zap.Error(err))
			}
			signer, err := ordertoken.New(cfg.OrderTokenSecret)
			if err != nil {
				logger.Fatal(ctx, "could not create order token signer", zap.Error(err))
			}

			fmt.Println(signer.StatusURL(strings.TrimRight(cfg.PublicURL, "/"), id, email)) //nolint: forbidigo
		},
	}

	cmd.Flags().String("id", "", "Order (submission) ID")
	cmd.Flags().String("email", "", "Customer email")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
