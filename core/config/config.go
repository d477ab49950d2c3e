package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	EnvDataDir         = "SHOPLEDGER_DATA_DIR"
	EnvSigningKey      = "SHOPLEDGER_SIGNING_KEY"
	EnvSigningKeyFile  = "SHOPLEDGER_SIGNING_KEY_FILE"
	EnvReset           = "SHOPLEDGER_RESET"
	EnvRetention       = "SHOPLEDGER_BACKUP_RETENTION"
	EnvRPCAddr         = "SHOPLEDGER_RPC_ADDR"
	EnvInsecureDevKey  = "SHOPLEDGER_INSECURE_DEV_KEY"
	DefaultRetention   = 20
	DefaultRPCAddr     = "127.0.0.1:8080"
	insecureDevKeyText = "shopledger-insecure-development-key"
)

var ErrMissingSigningKey = errors.New("no signing key configured: set " + EnvSigningKey + " or " + EnvSigningKeyFile)

// Config is the process-start configuration of the ledger. None of it is
// request-time input.
type Config struct {
	DataDir     string
	LedgerFile  string
	BackupDir   string
	CatalogFile string
	Retention   int
	Reset       bool
	RPCAddr     string

	// SigningKey is the operator secret the block signer derives its HMAC key
	// from. Never log it.
	SigningKey []byte
	// InsecureKey is set when SigningKey is the built-in development key.
	InsecureKey bool
}

// WithDataDir points every on-disk path at dataDir.
func (c Config) WithDataDir(dataDir string) Config {
	c.DataDir = dataDir
	c.LedgerFile = LedgerFile(dataDir)
	c.BackupDir = BackupDir(dataDir)
	c.CatalogFile = CatalogFile(dataDir)
	return c
}

// FromEnv builds a Config from SHOPLEDGER_* environment variables. A missing
// signing key is not an error here; Validate reports it.
func FromEnv() (Config, error) {
	dataDir := os.Getenv(EnvDataDir)
	if dataDir == "" {
		dataDir = AppDir()
	}
	cfg := Config{
		Retention: DefaultRetention,
		RPCAddr:   DefaultRPCAddr,
	}.WithDataDir(dataDir)

	if v := os.Getenv(EnvRPCAddr); v != "" {
		cfg.RPCAddr = v
	}

	if v := os.Getenv(EnvRetention); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", EnvRetention, v, err)
		}
		cfg.Retention = n
	}

	reset, err := envBool(EnvReset)
	if err != nil {
		return Config{}, err
	}
	cfg.Reset = reset

	key, err := LoadSigningKey(os.Getenv(EnvSigningKey), os.Getenv(EnvSigningKeyFile))
	switch {
	case err == nil:
		cfg.SigningKey = key
	case errors.Is(err, ErrMissingSigningKey):
		insecure, berr := envBool(EnvInsecureDevKey)
		if berr != nil {
			return Config{}, berr
		}
		if insecure {
			cfg.SigningKey = []byte(insecureDevKeyText)
			cfg.InsecureKey = true
		}
	default:
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if len(c.SigningKey) == 0 {
		return ErrMissingSigningKey
	}
	if c.Retention < 1 {
		return fmt.Errorf("backup retention must be at least 1, got %d", c.Retention)
	}
	if c.LedgerFile == "" || c.BackupDir == "" {
		return errors.New("ledger file and backup directory must be set")
	}
	return nil
}

func envBool(name string) (bool, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return b, nil
}
