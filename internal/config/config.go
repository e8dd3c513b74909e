package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DB接続の設定
type DBConfig struct {
	Driver string // postgres / mysql / sqlite
	DSN    string // DATABASE_URL。空なら各項目から組み立てる

	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogSQL          bool
}

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // dev/prod

	DB DBConfig

	JWTSecret string        // JWT署名シークレット
	JWTTTL    time.Duration // アクセストークンの有効期限

	FEURLs   []string // CORSで許可するフロントURL
	LogLevel string   // debug/info/warn/error

	ShutdownTimeout   time.Duration
	BodyLimit         string
	ContactRatePerMin int // 0以下なら制限なし
	LoginRatePerMin   int

	// 起動時に作る管理者（空なら作らない）
	AdminEmail    string
	AdminPassword string
	AdminUsername string
}

// Loadは.envを読んでから環境変数を組み立てる
func Load() (Config, error) {
	// .env は無くてもよい
	_ = godotenv.Load()

	driver := getenv("DB_DRIVER", "postgres")
	port, err := getInt("DB_PORT", defaultDBPort(driver))
	if err != nil {
		return Config{}, err
	}
	maxOpen, err := getInt("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return Config{}, err
	}
	maxIdle, err := getInt("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return Config{}, err
	}
	lifetime, err := getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return Config{}, err
	}
	jwtTTL, err := getDuration("JWT_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	shutdown, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	contactRate, err := getInt("CONTACT_RATE_PER_MIN", 10)
	if err != nil {
		return Config{}, err
	}
	loginRate, err := getInt("LOGIN_RATE_PER_MIN", 20)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: getenv("GO_ENV", "dev"),

		DB: DBConfig{
			Driver:          driver,
			DSN:             os.Getenv("DATABASE_URL"),
			Host:            getenv("DB_HOST", "localhost"),
			Port:            port,
			User:            getenv("DB_USER", "postgres"),
			Password:        os.Getenv("DB_PASSWORD"),
			Name:            getenv("DB_NAME", "cakeshop"),
			SSLMode:         getenv("DB_SSLMODE", "disable"),
			MaxOpenConns:    maxOpen,
			MaxIdleConns:    maxIdle,
			ConnMaxLifetime: lifetime,
			LogSQL:          getBool("DB_LOG_SQL", false),
		},

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    jwtTTL,

		FEURLs:   splitList(getenv("FE_URL", "http://localhost:3000")),
		LogLevel: getenv("LOG_LEVEL", "info"),

		ShutdownTimeout:   shutdown,
		BodyLimit:         getenv("BODY_LIMIT", "1M"),
		ContactRatePerMin: contactRate,
		LoginRatePerMin:   loginRate,

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminUsername: getenv("ADMIN_USERNAME", "admin"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.DB.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return Config{}, fmt.Errorf("DB_DRIVER must be postgres, mysql or sqlite: %q", cfg.DB.Driver)
	}
	if cfg.DB.Driver == "sqlite" && cfg.DB.DSN == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required for sqlite")
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return Config{}, fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}

// echoに渡すアドレス
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func defaultDBPort(driver string) int {
	if driver == "mysql" {
		return 3306
	}
	return 5432
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func getBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
