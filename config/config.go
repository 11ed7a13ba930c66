/*
Package config loads server configuration from the environment.

PURPOSE:
  One place that knows every knob. A .env file in the working directory
  is loaded first when present (development convenience); real
  environment variables win over it. Every value has a default so the
  server starts with no configuration at all.

VARIABLES:
  CLUB_PORT       HTTP port                      (default 8080)
  CLUB_BACKEND    "file" or "sqlite"             (default file)
  CLUB_DATA_DIR   directory for ledger + catalogs (default ./data)
  CLUB_NAME       organization name
  CLUB_TAX_ID     tax identifier
  CLUB_ADDRESS    street address
  CLUB_REGION     province / region
  CLUB_ACCOUNT    organization account number
*/
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/warp/club-ledger/club"
)

// Backend selects the persistence implementation.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config is the fully resolved server configuration.
type Config struct {
	Port    int
	Backend string
	DataDir string

	Name          string
	TaxID         string
	Address       string
	Region        string
	AccountNumber string
}

// Load reads the .env file (if any) and the environment, applying
// defaults for everything unset.
func Load() Config {
	// Missing .env is the normal production case, not an error.
	_ = godotenv.Load()

	return Config{
		Port:          envInt("CLUB_PORT", 8080),
		Backend:       envStr("CLUB_BACKEND", BackendFile),
		DataDir:       envStr("CLUB_DATA_DIR", "./data"),
		Name:          envStr("CLUB_NAME", "Olympus Gym"),
		TaxID:         envStr("CLUB_TAX_ID", "20-11111111-1"),
		Address:       envStr("CLUB_ADDRESS", "Av. Siempreviva 742"),
		Region:        envStr("CLUB_REGION", "Buenos Aires"),
		AccountNumber: envStr("CLUB_ACCOUNT", "0001-0001"),
	}
}

// LedgerPath is the ledger file location for the file backend.
func (c Config) LedgerPath() string { return filepath.Join(c.DataDir, "ledger.txt") }

// DBPath is the SQLite file location for the sqlite backend.
func (c Config) DBPath() string { return filepath.Join(c.DataDir, "ledger.db") }

// CatalogDir is where the entity catalogs live.
func (c Config) CatalogDir() string { return c.DataDir }

// Identity builds the organization identity used to seed a fresh store.
func (c Config) Identity() club.Identity {
	return club.Identity{
		Name:          c.Name,
		TaxID:         c.TaxID,
		Address:       c.Address,
		Region:        c.Region,
		AccountNumber: c.AccountNumber,
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
