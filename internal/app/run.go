package app

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"webhook-guard/internal/common/errors"
	"webhook-guard/internal/common/logging"
	"webhook-guard/internal/config"
	"webhook-guard/internal/crypto"
)

// Version is reported at startup.
const Version = "1.0.0"

// Run is the main entry point for the application
func Run(args []string) error {
	// Load environment variables
	_ = godotenv.Load()

	flags := flag.NewFlagSet("webhook-guard", flag.ContinueOnError)
	encryptSecret := flags.Bool("encrypt-secret", false,
		"Read a secret from stdin, print it sealed with CONFIG_ENCRYPTION_KEY and exit")
	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	if *encryptSecret {
		return EncryptSecret(os.Stdin, os.Stdout, os.Getenv("CONFIG_ENCRYPTION_KEY"))
	}

	cfg := config.Load()

	closer, err := logging.InitGlobalLogger(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer closer.Close()
	defer logging.MustSync()

	logging.Info("Starting webhook guard", logging.Field{Key: "version", Value: Version})

	if err := cfg.Validate(); err != nil {
		logging.Error("Configuration validation failed", err)
		return err
	}

	app, err := New(cfg)
	if err != nil {
		logging.Error("Failed to initialize application", err)
		return err
	}
	defer app.Cleanup()

	srv := app.RunServer()
	if err := srv.Start(); err != nil {
		logging.Error("Server failed to start", err)
		return err
	}
	logging.Info("Server listening",
		logging.Field{Key: "address", Value: srv.Addr()},
		logging.Field{Key: "tls", Value: cfg.TLSEnabled()},
		logging.Field{Key: "webhook_prefix", Value: cfg.WebhookPathPrefix},
	)

	// Wait for interrupt signal or a serve failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case err := <-srv.Errors():
		if err != nil {
			logging.Error("Server stopped unexpectedly", err)
			return err
		}
	}

	logging.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", err)
		return err
	}

	logging.Info("Server exited")
	return nil
}

// EncryptSecret reads one secret line from in and writes its sealed form to
// out, ready to be used as WEBHOOK_SECRET_ENCRYPTED.
func EncryptSecret(in io.Reader, out io.Writer, passphrase string) error {
	encryptor, err := crypto.NewConfigEncryptor(passphrase)
	if err != nil {
		return errors.ConfigError("CONFIG_ENCRYPTION_KEY must be set to encrypt a secret")
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return errors.InternalError("failed to read secret", err)
	}
	secret := strings.TrimRight(line, "\r\n")

	sealed, err := encryptor.Seal(secret)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, sealed)
	return err
}
