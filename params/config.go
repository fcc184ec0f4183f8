package params

import (
	"os"

	"github.com/joho/godotenv"
)

type Venue struct {
	// RPCURL is the venue node endpoint requests are relayed to.
	RPCURL string
	// DexProgramID is the venue program id (base58). Requests presenting a
	// different venue program are rejected.
	DexProgramID string
}

type Proxy struct {
	// ProgramID is the gateway's own program id (base58), the namespace
	// owner for every derived custody address.
	ProgramID string
	// ReferralAddress is the configured settle-funds beneficiary (base58).
	ReferralAddress string
	// ReferralEnforce turns the referral policy from observe-only into
	// rejecting. Off by default.
	ReferralEnforce bool
	// StrictFallback rejects payloads that are not recognized venue
	// instructions instead of forwarding them verbatim.
	StrictFallback bool
}

type Gateway struct {
	Listen      string
	JournalPath string
	LogFile     string
}

type Config struct {
	Venue   Venue
	Proxy   Proxy
	Gateway Gateway
}

func Default() Config {
	return Config{
		Venue: Venue{
			RPCURL: "http://localhost:8899",
		},
		Gateway: Gateway{
			Listen:      ":8080",
			JournalPath: "data/journal.db",
			LogFile:     "data/gateway.log",
		},
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	cfg.Venue.RPCURL = getEnv("VENUE_RPC_URL", cfg.Venue.RPCURL)
	cfg.Venue.DexProgramID = getEnv("DEX_PROGRAM_ID", cfg.Venue.DexProgramID)

	cfg.Proxy.ProgramID = getEnv("PROXY_PROGRAM_ID", cfg.Proxy.ProgramID)
	cfg.Proxy.ReferralAddress = getEnv("REFERRAL_ADDRESS", cfg.Proxy.ReferralAddress)
	cfg.Proxy.ReferralEnforce = os.Getenv("REFERRAL_ENFORCE") == "true"
	cfg.Proxy.StrictFallback = os.Getenv("STRICT_FALLBACK") == "true"

	cfg.Gateway.Listen = getEnv("GATEWAY_LISTEN", cfg.Gateway.Listen)
	cfg.Gateway.JournalPath = getEnv("JOURNAL_PATH", cfg.Gateway.JournalPath)
	cfg.Gateway.LogFile = getEnv("LOG_FILE", cfg.Gateway.LogFile)

	return cfg
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
