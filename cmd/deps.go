package main

import (
	"context"
	"net/http"
	"rightfit/internal/config"
	"rightfit/pkg/blob"
	"rightfit/pkg/blob/dirblob"
	"rightfit/pkg/blob/s3blob"
	"rightfit/pkg/grader"
	"rightfit/pkg/grader/demo"
	"rightfit/pkg/grader/openai"
	"rightfit/pkg/logger"
	"rightfit/pkg/mailer"
	"rightfit/pkg/mailer/resendmail"
	"rightfit/pkg/ordertoken"
	"rightfit/pkg/payments"
	"rightfit/pkg/payments/stripepay"
	"rightfit/pkg/ratelimit"
	"rightfit/pkg/storage/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// getPostgres creates a PostgreSQL client using configuration values and returns it
// along with a cleanup function to close the connection pool.
func getPostgres(ctx context.Context, cfg *config.Config) (*postgres.PgSQL, func()) {
	pgsql, err := postgres.New(ctx, postgres.Options{
		URL:                cfg.Database.URL,
		Username:           cfg.Database.Username,
		Password:           cfg.Database.Password,
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		Database:           cfg.Database.DatabaseName,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime:    cfg.Database.ConnMaxIdleTime,
		MaxOpenConnections: cfg.Database.MaxOpenConnections,
		MaxIdleConnections: cfg.Database.MaxIdleConnections,
		SslMode:            cfg.Database.SslMode,
	})
	if err != nil {
		logger.Fatal(ctx, "could not create postgres storage", zap.Error(err))
	}

	return pgsql, func() {
		logger.Info(ctx, "closing postgres client...")
		if err = pgsql.Close(); err != nil {
			logger.Warn(ctx, "could not close postgres connection", zap.Error(err))
		}
	}
}

// getBlobStore returns the configured CV file store.
func getBlobStore(ctx context.Context, cfg *config.Config) blob.Store {
	if cfg.Blob.Backend == config.BlobS3 {
		bucket, err := s3blob.New(ctx, s3blob.Options{
			Endpoint:     cfg.Blob.S3.Endpoint,
			AccessKey:    cfg.Blob.S3.AccessKey,
			SecretKey:    cfg.Blob.S3.SecretKey,
			Region:       cfg.Blob.S3.Region,
			Bucket:       cfg.Blob.S3.Bucket,
			UseSSL:       cfg.Blob.S3.UseSSL,
			CreateBucket: cfg.Blob.S3.CreateBucket,
		})
		if err != nil {
			logger.Fatal(ctx, "could not create s3 blob store", zap.Error(err))
		}

		return bucket
	}

	dir, err := dirblob.New(cfg.Blob.Dir)
	if err != nil {
		logger.Fatal(ctx, "could not create blob directory", zap.Error(err))
	}

	return dir
}

// getLimiter returns the configured rate limiter.
func getLimiter(ctx context.Context, cfg *config.Config) ratelimit.Limiter {
	if cfg.RateLimit.Backend == config.RateLimitRedis {
		limiter, err := ratelimit.NewRedis(ctx, ratelimit.RedisOptions{
			Addr:     cfg.RateLimit.RedisAddr,
			Password: cfg.RateLimit.RedisPassword,
			DB:       cfg.RateLimit.RedisDB,
		})
		if err != nil {
			logger.Fatal(ctx, "could not create redis rate limiter", zap.Error(err))
		}

		return limiter
	}

	return ratelimit.NewMemory()
}

// getGrader returns the OpenAI grader, or the demo grader when no API key is set.
func getGrader(ctx context.Context, cfg *config.Config) grader.Client {
	if cfg.OpenAI.APIKey == "" {
		logger.Warn(ctx, "no OpenAI API key configured, using the demo grader")

		return demo.Client{}
	}

	return openai.New(openai.Options{
		APIKey:     cfg.OpenAI.APIKey,
		Model:      cfg.OpenAI.Model,
		BaseURL:    cfg.OpenAI.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.OpenAI.Timeout},
	})
}

// getPayments returns the Stripe provider, or a disabled provider when no key is set.
func getPayments(ctx context.Context, cfg *config.Config) payments.Provider {
	if cfg.Stripe.SecretKey == "" {
		logger.Warn(ctx, "no Stripe key configured, payments are disabled")

		return payments.Disabled{}
	}

	return stripepay.New(stripepay.Options{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	})
}

// getMailer returns the Resend mailer, or a logging mailer when no key is set.
func getMailer(ctx context.Context, cfg *config.Config) mailer.Mailer {
	if cfg.Email.ResendAPIKey == "" {
		logger.Warn(ctx, "no Resend API key configured, emails are only logged")

		return mailer.Log{}
	}

	m, err := resendmail.New(resendmail.Options{
		APIKey: cfg.Email.ResendAPIKey,
		From:   cfg.Email.From,
	})
	if err != nil {
		logger.Fatal(ctx, "could not create resend mailer", zap.Error(err))
	}

	return m
}

// getOrderTokens returns the order link signer. Outside production a missing
// secret is replaced by a random one, so links die with the process.
func getOrderTokens(ctx context.Context, cfg *config.Config) *ordertoken.Signer {
	secret := cfg.OrderTokenSecret
	if secret == "" {
		logger.Warn(ctx, "no order token secret configured, order links will not survive a restart")
		secret = uuid.NewString()
	}

	signer, err := ordertoken.New(secret)
	if err != nil {
		logger.Fatal(ctx, "could not create order token signer", zap.Error(err))
	}

	return signer
}
