package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	configFileENV    = "CONFIG_FILE"
	tokenTelegramENV = "TELEGRAM_TOKEN"
	chatTelegramENV  = "TELEGRAM_CHAT_ID"
	oandaKeyENV      = "OANDA_API_KEY"
	oandaAccountENV  = "OANDA_ACCOUNT_ID"
	oandaEnvENV      = "OANDA_ENV"
	databaseDSN      = "DATABASE_DSN"
)

// Config ...
type Config struct {
	Telegram struct {
		Token  string
		ChatID int64
	}
	Oanda struct {
		APIKey      string
		AccountID   string
		Environment string // practice | live
	}
	DB string

	// Watchlist: YAML-файл с парами (EUR_USD, GBP_USD, ...)
	PairsFile string

	// Лимиты исполнения
	MaxSpreadPips        float64
	MaxTradesPerDay      int
	MaxGlobalTrades      int
	MaxOpenTrades        int
	MinTimeBetweenTrades time.Duration

	// Риск
	RiskFraction    float64 // 0.02 => 2% баланса на сделку по стопу
	DefaultStopPips float64 // запасная дистанция стопа, если нет ATR
	MinUnits        int     // минимальный лот брокера

	// Циклы
	TradeInterval   time.Duration
	MonitorInterval time.Duration
	MaxHoldTime     time.Duration
	ConfidenceMin   float64
	RetryAttempts   int
	RetryDelay      time.Duration

	// Стейт на диске
	StateFile      string
	BackupDir      string
	BackupInterval time.Duration
	MaxBackups     int

	// Сброс дневных счётчиков
	ResetTimezone string

	// Контрольная поверхность
	MaxCommandsPerMin int

	// Health endpoint
	HealthAddr string

	Jaeger struct {
		Host string
		Port int
	}
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	name := os.Getenv(configFileENV)
	if name == "" {
		name = "values_local"
	}
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	v.AddConfigPath("configs")
	v.AddConfigPath(".")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// без файла живём на дефолтах + env, это валидный режим
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	cfg := &Config{}
	cfg.Telegram.Token = v.GetString("telegram.token")
	cfg.Telegram.ChatID = v.GetInt64("telegram.chat_id")
	cfg.Oanda.APIKey = v.GetString("oanda.api_key")
	cfg.Oanda.AccountID = v.GetString("oanda.account_id")
	cfg.Oanda.Environment = v.GetString("oanda.environment")
	cfg.DB = v.GetString("db_dsn")

	cfg.PairsFile = v.GetString("pairs_file")

	cfg.MaxSpreadPips = v.GetFloat64("limits.max_spread_pips")
	cfg.MaxTradesPerDay = v.GetInt("limits.max_trades_per_day")
	cfg.MaxGlobalTrades = v.GetInt("limits.max_global_trades")
	cfg.MaxOpenTrades = v.GetInt("limits.max_open_trades")
	cfg.MinTimeBetweenTrades = v.GetDuration("limits.min_time_between_trades")

	cfg.RiskFraction = v.GetFloat64("risk.fraction")
	cfg.DefaultStopPips = v.GetFloat64("risk.default_stop_pips")
	cfg.MinUnits = v.GetInt("risk.min_units")

	cfg.TradeInterval = v.GetDuration("loops.trade_interval")
	cfg.MonitorInterval = v.GetDuration("loops.monitor_interval")
	cfg.MaxHoldTime = v.GetDuration("loops.max_hold_time")
	cfg.ConfidenceMin = v.GetFloat64("loops.confidence_min")
	cfg.RetryAttempts = v.GetInt("loops.retry_attempts")
	cfg.RetryDelay = v.GetDuration("loops.retry_delay")

	cfg.StateFile = v.GetString("state.file")
	cfg.BackupDir = v.GetString("state.backup_dir")
	cfg.BackupInterval = v.GetDuration("state.backup_interval")
	cfg.MaxBackups = v.GetInt("state.max_backups")

	cfg.ResetTimezone = v.GetString("reset_timezone")
	cfg.MaxCommandsPerMin = v.GetInt("max_commands_per_min")
	cfg.HealthAddr = v.GetString("health_addr")
	cfg.Jaeger.Host = v.GetString("jaeger.host")
	cfg.Jaeger.Port = v.GetInt("jaeger.port")

	// секреты из env всегда перекрывают файл
	if token := os.Getenv(tokenTelegramENV); token != "" {
		cfg.Telegram.Token = token
	}
	if chat := os.Getenv(chatTelegramENV); chat != "" {
		if id, err := strconv.ParseInt(chat, 10, 64); err == nil {
			cfg.Telegram.ChatID = id
		}
	}
	if key := os.Getenv(oandaKeyENV); key != "" {
		cfg.Oanda.APIKey = key
	}
	if acc := os.Getenv(oandaAccountENV); acc != "" {
		cfg.Oanda.AccountID = acc
	}
	if env := os.Getenv(oandaEnvENV); env != "" {
		cfg.Oanda.Environment = env
	}
	if dsn := os.Getenv(databaseDSN); dsn != "" {
		cfg.DB = dsn
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("oanda.environment", "practice")
	v.SetDefault("pairs_file", "configs/pairs.yaml")

	v.SetDefault("limits.max_spread_pips", 2.0)
	v.SetDefault("limits.max_trades_per_day", 10)
	v.SetDefault("limits.max_global_trades", 50)
	v.SetDefault("limits.max_open_trades", 7)
	v.SetDefault("limits.min_time_between_trades", "6s")

	v.SetDefault("risk.fraction", 0.02)
	v.SetDefault("risk.default_stop_pips", 20.0)
	v.SetDefault("risk.min_units", 1)

	v.SetDefault("loops.trade_interval", "60s")
	v.SetDefault("loops.monitor_interval", "15s")
	v.SetDefault("loops.max_hold_time", "2h")
	v.SetDefault("loops.confidence_min", 0.5)
	v.SetDefault("loops.retry_attempts", 3)
	v.SetDefault("loops.retry_delay", "5s")

	v.SetDefault("state.file", "trade_state.json")
	v.SetDefault("state.backup_dir", "state_backups")
	v.SetDefault("state.backup_interval", "300s")
	v.SetDefault("state.max_backups", 12)

	v.SetDefault("reset_timezone", "Europe/London")
	v.SetDefault("max_commands_per_min", 10)
	v.SetDefault("health_addr", ":8080")
	v.SetDefault("jaeger.host", "localhost")
	v.SetDefault("jaeger.port", 6831)
}
