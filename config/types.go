package config

import "time"

// Raw mirrors the on-disk TOML schema verbatim (spec.md §6). Load decodes
// into this, then Validate converts it into a runtime Config.
type Raw struct {
	Domain struct {
		Time struct {
			WeekStart string `toml:"week_start"`
		} `toml:"time"`
		Money struct {
			Currency string `toml:"currency"`
		} `toml:"money"`
	} `toml:"domain"`

	Features struct {
		MondayMultiplier struct {
			Enabled    bool  `toml:"enabled"`
			Multiplier int64 `toml:"multiplier"`
		} `toml:"monday_multiplier"`
		PrimeGate struct {
			Enabled bool `toml:"enabled"`
		} `toml:"prime_gate"`
	} `toml:"features"`

	Policies struct {
		Limits struct {
			DailyAmount   string `toml:"daily_amount"`
			WeeklyAmount  string `toml:"weekly_amount"`
			DailyAttempts uint32 `toml:"daily_attempts"`
		} `toml:"limits"`
		PrimeGate struct {
			GlobalPerDay uint32 `toml:"global_per_day"`
			AmountCap    string `toml:"amount_cap"`
		} `toml:"prime_gate"`
		EvaluationOrder []string `toml:"evaluation_order"`
	} `toml:"policies"`

	Idempotency struct {
		Mode string `toml:"mode"`
	} `toml:"idempotency"`

	Output struct {
		FilePath      string `toml:"file_path"`
		AtomicReplace bool   `toml:"atomic_replace"`
	} `toml:"output"`

	Observability struct {
		Tracing struct {
			Enabled bool   `toml:"enabled"`
			Path    string `toml:"path"`
		} `toml:"tracing"`
		Metrics struct {
			Enabled bool `toml:"enabled"`
		} `toml:"metrics"`
		Otel struct {
			Enabled  bool   `toml:"enabled"`
			Endpoint string `toml:"endpoint"`
			Insecure bool   `toml:"insecure"`
		} `toml:"otel"`
		Admin struct {
			Enabled       bool    `toml:"enabled"`
			ListenAddress string  `toml:"listen_address"`
			RatePerSecond float64 `toml:"rate_per_second"`
			Burst         int     `toml:"burst"`
		} `toml:"admin"`
	} `toml:"observability"`

	Audit struct {
		Enabled      bool   `toml:"enabled"`
		DatabasePath string `toml:"database_path"`
		ReportDir    string `toml:"report_dir"`
	} `toml:"audit"`
}

// Config is the validated, runtime-ready configuration consumed by the
// composition root (spec.md §6: "the core consumes an already-parsed
// configuration object").
type Config struct {
	WeekStart time.Weekday
	Currency  string

	MondayMultiplierEnabled bool
	MondayMultiplier        int64
	PrimeGateEnabled        bool

	DailyAmountLimit  int64 // minor units
	WeeklyAmountLimit int64
	DailyAttemptLimit uint32
	PrimeGlobalPerDay uint32
	PrimeAmountCap    int64

	IdempotencyMode string

	OutputFilePath   string
	OutputAtomicMode bool

	TracingEnabled bool
	TracePath      string
	MetricsEnabled bool

	OtelEnabled  bool
	OtelEndpoint string
	OtelInsecure bool

	AdminEnabled       bool
	AdminListenAddress string
	AdminRatePerSecond float64
	AdminBurst         int

	AuditEnabled      bool
	AuditDatabasePath string
	AuditReportDir    string
}
