package configs

import (
	"fmt"
	"net"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	maxConnectAttempts = 10
	connectRetryDelay  = 5 * time.Second
)

// Dialector builds the gorm dialector for the configured DB_DRIVER.
func Dialector(env ENV) (gorm.Dialector, error) {
	switch env.DBDriver {
	case "mysql":
		cfg := mysqldriver.NewConfig()
		cfg.User = env.DBUser
		cfg.Passwd = env.DBPassword
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(env.DBHost, portOr(env.DBPort, "3306"))
		cfg.DBName = env.DBName
		cfg.ParseTime = true
		cfg.Params = map[string]string{"charset": "utf8mb4"}
		return mysql.Open(cfg.FormatDSN()), nil
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			env.DBHost, env.DBUser, env.DBPassword, env.DBName, portOr(env.DBPort, "5432"),
		)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want mysql or postgres)", env.DBDriver)
	}
}

// GormConfig is shared by the server and the tests so driver errors are translated the same way.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

func OpenConnection(env ENV) (*gorm.DB, error) {
	dialector, err := Dialector(env)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for i := 0; i < maxConnectAttempts; i++ {
		log.Info().Str("driver", env.DBDriver).Int("attempt", i+1).Msg("connecting to database")

		db, err := gorm.Open(dialector, GormConfig())
		if err == nil {
			sqlDB, pingErr := db.DB()
			if pingErr == nil {
				pingErr = sqlDB.Ping()
				if pingErr == nil {
					log.Info().Msg("database connection successful")
					return db, nil
				}
			}
			lastErr = pingErr
			log.Warn().Err(pingErr).Dur("retry_in", connectRetryDelay).Msg("failed to ping database")
		} else {
			lastErr = err
			log.Warn().Err(err).Dur("retry_in", connectRetryDelay).Msg("failed to open gorm connection")
		}

		time.Sleep(connectRetryDelay)
	}

	return nil, fmt.Errorf("connect to database after %d attempts: %w", maxConnectAttempts, lastErr)
}

func portOr(port, fallback string) string {
	if port == "" {
		return fallback
	}
	return port
}
