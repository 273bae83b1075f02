package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	OracleBaseURL   string
	RegistryBaseURL string
	// OracleTimeoutSecs bounds every external valuation/transfer call.
	OracleTimeoutSecs int

	// ScanIntervalSecs is the liquidation sweep period.
	ScanIntervalSecs int

	// AdminToken authorizes pause/unpause/scan. Empty disables admin routes.
	AdminToken string

	IdempTTLSecs int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	return &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "lendcore"),
		MySQLUser: getenv("MYSQL_USER", "lendcore"),
		MySQLPass: getenv("MYSQL_PASS", "lendcore"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getenvInt("REDIS_DB", 0),

		OracleBaseURL:     getenv("ORACLE_BASE_URL", "http://oracle:9090"),
		RegistryBaseURL:   getenv("REGISTRY_BASE_URL", "http://registry:9091"),
		OracleTimeoutSecs: getenvInt("ORACLE_TIMEOUT_SECONDS", 5),

		// 5 minutes, matching the sweep cadence the book was designed for.
		ScanIntervalSecs: getenvInt("SCAN_INTERVAL_SECONDS", 300),

		AdminToken: os.Getenv("ADMIN_TOKEN"),

		IdempTTLSecs: getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),
	}
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.OracleBaseURL == "" || c.RegistryBaseURL == "" {
		return errors.New("missing ORACLE_BASE_URL/REGISTRY_BASE_URL")
	}
	if c.ScanIntervalSecs < 1 {
		return errors.New("SCAN_INTERVAL_SECONDS must be positive")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
