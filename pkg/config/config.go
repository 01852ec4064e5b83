package config

import (
	"errors"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTP     HTTP
	Logger   Logger
	Store    Store
	Postgres Postgres
	Sheets   Sheets
	Kafka    Kafka
	Ledger   Ledger
	Cache    Cache
	Jobs     Jobs
}

type HTTP struct {
	Port          int    `env:"HTTP_PORT" envDefault:"8080"`
	APIKeyEnabled bool   `env:"HTTP_API_KEY_ENABLED" envDefault:"false"`
	APIKey        string `env:"HTTP_API_KEY" envDefault:"dev"`
}

type Logger struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// Store selects the system of record and the call spacing towards it.
type Store struct {
	Backend      string        `env:"STORE_BACKEND" envDefault:"postgres"`
	Timeout      time.Duration `env:"STORE_TIMEOUT" envDefault:"10s"`
	SingleDelay  time.Duration `env:"STORE_SINGLE_DELAY" envDefault:"1500ms"`
	BatchDelay   time.Duration `env:"STORE_BATCH_DELAY" envDefault:"2s"`
	ClaimsTable  string        `env:"STORE_CLAIMS_TABLE" envDefault:"claims"`
	ClientsTable string        `env:"STORE_CLIENTS_TABLE" envDefault:"clients"`
}

type Postgres struct {
	DSN     string `env:"POSTGRES_DSN"`
	MaxConn int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
}

type Sheets struct {
	BaseURL       string `env:"SHEETS_BASE_URL" envDefault:"https://sheets.googleapis.com"`
	SpreadsheetID string `env:"SHEETS_SPREADSHEET_ID"`
	Token         string `env:"SHEETS_TOKEN"`
	RetryMax      int    `env:"SHEETS_RETRY_MAX" envDefault:"0"`
}

type Kafka struct {
	Brokers          []string `env:"KAFKA_BROKERS"`
	ClaimEventsTopic string   `env:"KAFKA_CLAIM_EVENTS_TOPIC" envDefault:"claims.events"`
}

type Ledger struct {
	Timezone                     string   `env:"LEDGER_TIMEZONE" envDefault:"America/Argentina/Buenos_Aires"`
	RequireTechnicianForProgress bool     `env:"LEDGER_REQUIRE_TECHNICIAN_FOR_PROGRESS" envDefault:"true"`
	Technicians                  []string `env:"LEDGER_TECHNICIANS" envDefault:"Braian,Conejo,Juan,Junior,Maxi,Ramon,Roque,Viki,Oficina,Base"`
	ClaimTypes                   []string `env:"LEDGER_CLAIM_TYPES" envDefault:"Conexion C+I,Conexion Cable,Conexion Internet,Suma Internet,Suma Cable,Reconexion,Sin Señal Ambos,Sin Señal Cable,Sin Señal Internet,Sintonia,Interferencia,Traslado,Extension x2,Extension x3,Extension x4,Cambio de Ficha,Cambio de Equipo,Reclamo,Desconexion a Pedido"`
}

type Cache struct {
	TTL time.Duration `env:"CACHE_TTL" envDefault:"30s"`
}

type Jobs struct {
	StatsInterval   time.Duration `env:"JOB_STATS_INTERVAL" envDefault:"1m"`
	SummaryInterval time.Duration `env:"JOB_SUMMARY_INTERVAL" envDefault:"5m"`
	SummaryEnabled  bool          `env:"JOB_SUMMARY_ENABLED" envDefault:"true"`
}

func New(envPath string) (Config, error) {
	err := godotenv.Load(envPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	c, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}

	return c, nil
}
