package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"vaultSwap/internal/model"
)

// DefaultProgramID is the program identity vault signers derive under.
const DefaultProgramID = "3k6pmDkLLF7FBANTs1ddTCGpsxvDjx8UBc5tUryisKTG"

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	ProgramID    solana.PublicKey
	DataDir      string
	Journal      string
	PGDSN        string
	Precision    uint8
	MaxRetries   int
	RetryBackoff time.Duration
	LockTimeout  time.Duration
	LogLevel     string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("AMM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("program-id", DefaultProgramID)
	v.SetDefault("data-dir", "./data/ledger")
	v.SetDefault("journal", "./data/receipts.jsonl")
	v.SetDefault("precision", int(model.DefaultPrecision))
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 200*time.Millisecond)
	v.SetDefault("lock-timeout", 5*time.Second)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	program, err := solana.PublicKeyFromBase58(strings.TrimSpace(v.GetString("program-id")))
	if err != nil {
		return Config{}, fmt.Errorf("parse program-id: %w", err)
	}
	precision := v.GetInt("precision")
	if precision < 0 || precision > int(model.MaxPrecision) {
		return Config{}, fmt.Errorf("precision must be between 0 and %d, got %d", model.MaxPrecision, precision)
	}

	cfg := Config{
		ProgramID:    program,
		DataDir:      v.GetString("data-dir"),
		Journal:      v.GetString("journal"),
		PGDSN:        v.GetString("pg-dsn"),
		Precision:    uint8(precision),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LockTimeout:  v.GetDuration("lock-timeout"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}
