package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App         App      `mapstructure:",squash"`
	Server      Server   `mapstructure:",squash"`
	Database    Database `mapstructure:",squash"`
	Meta        Meta     `mapstructure:",squash"`
	Auth        Auth     `mapstructure:",squash"`
	Sync        Sync     `mapstructure:",squash"`
	Cache       Cache    `mapstructure:",squash"`
	InsightSync SyncCron `mapstructure:",squash"`
	SecretKey   string   `mapstructure:"secret_key"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Meta struct {
	BaseURL     string `mapstructure:"meta_base_url"`
	URL         string `mapstructure:"meta_url"`
	Version     string `mapstructure:"meta_version"`
	AccessToken string `mapstructure:"meta_access_token"`
}

type Auth struct {
	Secret            string `mapstructure:"auth_secret"`
	AdminUser         string `mapstructure:"auth_admin_user"`
	AdminPasswordHash string `mapstructure:"auth_admin_password_hash"`
}

// Sync agrupa os parâmetros do motor de sincronização de insights
type Sync struct {
	MaxLookbackMonths      int  `mapstructure:"sync_max_lookback_months"` // 0 = sondar o limite de retenção
	RowLimit               int  `mapstructure:"sync_row_limit"`
	SkipCreativeEnrichment bool `mapstructure:"sync_skip_creative_enrichment"`
	VerboseLogging         bool `mapstructure:"sync_verbose_logging"`
	MinCallSpacingMS       int  `mapstructure:"sync_min_call_spacing_ms"`
	InterChunkDelayMS      int  `mapstructure:"sync_inter_chunk_delay_ms"`
	FlushEveryChunks       int  `mapstructure:"sync_flush_every_chunks"`
	CreativeBatchSize      int  `mapstructure:"sync_creative_batch_size"`
	RetryMaxAttempts       int  `mapstructure:"sync_retry_max_attempts"`
	RetryBaseDelayMS       int  `mapstructure:"sync_retry_base_delay_ms"`
	RetryRateLimitDelayMS  int  `mapstructure:"sync_retry_rate_limit_delay_ms"`
	InitialWindowDays      int  `mapstructure:"sync_initial_window_days"`
}

// Cache agrupa os parâmetros do cache local comprimido
type Cache struct {
	Dir          string `mapstructure:"cache_dir"`
	MaxBytes     int64  `mapstructure:"cache_max_bytes"`
	HistoryLimit int    `mapstructure:"cache_history_limit"`
}

// SyncCron agrupa os parâmetros do agendador de sincronização incremental
type SyncCron struct {
	CronSchedule        string `mapstructure:"insight_sync_cron"`
	RequestDelaySeconds int    `mapstructure:"insight_sync_request_delay_seconds"`
	Enabled             bool   `mapstructure:"insight_sync_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/ads_dashboard")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("META_VERSION", "v22.0")
	viper.SetDefault("META_ACCESS_TOKEN", "your_access_token") // ONLY LOCAL

	viper.SetDefault("SECRET_KEY", "your_secret_key")
	viper.SetDefault("AUTH_SECRET", "your_auth_secret")
	viper.SetDefault("AUTH_ADMIN_USER", "admin")
	viper.SetDefault("AUTH_ADMIN_PASSWORD_HASH", "")

	// Defaults do motor de sincronização
	viper.SetDefault("SYNC_MAX_LOOKBACK_MONTHS", 0)          // 0 = detectar via sondagem
	viper.SetDefault("SYNC_ROW_LIMIT", 25)                   // Limite de linhas por requisição
	viper.SetDefault("SYNC_SKIP_CREATIVE_ENRICHMENT", false) // Buscar criativos por padrão
	viper.SetDefault("SYNC_VERBOSE_LOGGING", false)
	viper.SetDefault("SYNC_MIN_CALL_SPACING_MS", 100)  // Espaçamento mínimo entre chamadas
	viper.SetDefault("SYNC_INTER_CHUNK_DELAY_MS", 500) // Pausa entre chunks
	viper.SetDefault("SYNC_FLUSH_EVERY_CHUNKS", 10)
	viper.SetDefault("SYNC_CREATIVE_BATCH_SIZE", 50)
	viper.SetDefault("SYNC_RETRY_MAX_ATTEMPTS", 3)
	viper.SetDefault("SYNC_RETRY_BASE_DELAY_MS", 1000)
	viper.SetDefault("SYNC_RETRY_RATE_LIMIT_DELAY_MS", 5000)
	viper.SetDefault("SYNC_INITIAL_WINDOW_DAYS", 30)

	// Defaults do cache local
	viper.SetDefault("CACHE_DIR", "./data/cache")
	viper.SetDefault("CACHE_MAX_BYTES", 50*1024*1024) // 50MB por instância
	viper.SetDefault("CACHE_HISTORY_LIMIT", 50)

	// Defaults do agendador de sincronização incremental
	viper.SetDefault("INSIGHT_SYNC_CRON", "0 3 * * *") // Todos os dias às 3h da manhã
	viper.SetDefault("INSIGHT_SYNC_REQUEST_DELAY_SECONDS", 2)
	viper.SetDefault("INSIGHT_SYNC_ENABLED", false)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	// Configurar valores padrão
	SetDefaults()

	// Configurar o Viper
	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv() // Isso permite que o Viper leia variáveis de ambiente

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Meta.URL = fmt.Sprintf("%s/%s", config.Meta.BaseURL, config.Meta.Version)

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../.env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
