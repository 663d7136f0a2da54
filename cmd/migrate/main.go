// Command migrate applies the vendors, reviews and users schema to the
// remote store configured by REMOTE_URL and REMOTE_KEY.
//
//	go run ./cmd/migrate -direction up
//	go run ./cmd/migrate -direction down -steps 1
package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"

	"tinyspots/internal/connmode"
	"tinyspots/internal/db"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of migrations to apply, 0 for all")
	flag.Parse()

	envErr := godotenv.Load()

	logCfg := zap.NewDevelopmentConfig()
	logCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	base, err := logCfg.Build()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		os.Exit(1)
	}
	logger := base.Sugar()
	defer logger.Sync()

	if envErr != nil {
		logger.Infow(".env not loaded, using process environment", "error", envErr)
	}

	dsn, err := dataSource(os.Getenv("REMOTE_URL"), os.Getenv("REMOTE_KEY"))
	if err != nil {
		logger.Fatalw("no usable remote store", "error", err)
	}

	if err := db.Migrate(dsn, *direction, *steps, logger); err != nil {
		logger.Fatal(err)
	}
}

// dataSource builds the migration DSN, putting key in as the password when
// it is set.
func dataSource(endpoint, key string) (string, error) {
	normalized, err := connmode.NormalizeEndpoint(endpoint)
	if err != nil {
		return "", err
	}
	if key == "" {
		return normalized, nil
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return "", err
	}
	u.User = url.UserPassword(u.User.Username(), key)
	return u.String(), nil
}
