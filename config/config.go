package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/ahrbot/internal/domain"
)

// Config es la configuración completa del backtester.
type Config struct {
	Strategy StrategyConfig `yaml:"strategy"`
	Data     DataConfig     `yaml:"data"`
	Storage  StorageConfig  `yaml:"storage"`
	Output   OutputConfig   `yaml:"output"`
	Live     LiveConfig     `yaml:"live"`
	Log      LogConfig      `yaml:"log"`
}

// StrategyConfig son los parámetros de la estrategia active-DCA.
type StrategyConfig struct {
	StopInvesting     float64 `yaml:"stop_investing"`
	SellThreshold     float64 `yaml:"sell_threshold"`
	DipBuyThreshold   float64 `yaml:"dip_buy_threshold"`
	InvestPercentage  float64 `yaml:"invest_percentage"`
	DailyInvestment   float64 `yaml:"daily_investment"`
	WeightCoefficient float64 `yaml:"weight_coefficient"`
	InitialCash       float64 `yaml:"initial_cash"`
}

// DataConfig apunta a las fuentes de datos.
type DataConfig struct {
	SeriesCSV     string `yaml:"series_csv"`     // serie histórica para el backtest
	CoinGeckoBase string `yaml:"coingecko_base"` // base URL para el modo live
}

// StorageConfig controla dónde se persisten los runs.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, ":memory:", o vacío para desactivar
}

// OutputConfig controla los artefactos generados tras un run.
type OutputConfig struct {
	LedgerCSV string `yaml:"ledger_csv"` // export del ledger; vacío lo desactiva
	Report    string `yaml:"report"`     // informe HTML con gráficos; vacío lo desactiva
}

// LiveConfig es el estado del portfolio real para el modo live: la decisión
// de hoy se calcula contra estos saldos.
type LiveConfig struct {
	Cash            float64 `yaml:"cash"`
	Holdings        float64 `yaml:"holdings"`
	AccumulatedCash float64 `yaml:"accumulated_cash"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. Las variables de entorno sobreescriben el YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// Params convierte la sección strategy en los parámetros del dominio.
func (c *Config) Params() domain.StrategyParams {
	return domain.StrategyParams{
		StopInvesting:     c.Strategy.StopInvesting,
		SellThreshold:     c.Strategy.SellThreshold,
		DipBuyThreshold:   c.Strategy.DipBuyThreshold,
		InvestPercentage:  c.Strategy.InvestPercentage,
		DailyInvestment:   c.Strategy.DailyInvestment,
		WeightCoefficient: c.Strategy.WeightCoefficient,
		InitialCash:       c.Strategy.InitialCash,
	}
}

// LivePortfolio convierte la sección live en un Portfolio del dominio.
func (c *Config) LivePortfolio() domain.Portfolio {
	return domain.Portfolio{
		Cash:            c.Live.Cash,
		Holdings:        c.Live.Holdings,
		AccumulatedCash: c.Live.AccumulatedCash,
	}
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están
// presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("COINGECKO_BASE"); v != "" {
		cfg.Data.CoinGeckoBase = v
	}
	if v := os.Getenv("AHRBOT_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
// La sección strategy solo se rellena si viene completamente vacía: un 0
// explícito en dip_buy_threshold es válido (desactiva el dip-buy).
func setDefaults(cfg *Config) {
	if cfg.Strategy == (StrategyConfig{}) {
		p := domain.DefaultParams()
		cfg.Strategy = StrategyConfig{
			StopInvesting:     p.StopInvesting,
			SellThreshold:     p.SellThreshold,
			DipBuyThreshold:   p.DipBuyThreshold,
			InvestPercentage:  p.InvestPercentage,
			DailyInvestment:   p.DailyInvestment,
			WeightCoefficient: p.WeightCoefficient,
			InitialCash:       p.InitialCash,
		}
	}
	if cfg.Data.SeriesCSV == "" {
		cfg.Data.SeriesCSV = "historical_data.csv"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
