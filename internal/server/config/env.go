package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays Config fields from PRATTLE_* environment variables.
// Unset variables leave the current value untouched; malformed values
// panic, consistent with the other overlay stages.
//
// Supported variables:
//
//	PRATTLE_HTTP_ADDR         HTTP bind address
//	PRATTLE_DATABASE_DSN      PostgreSQL DSN
//	PRATTLE_IN_MEMORY         strconv.ParseBool syntax
//	PRATTLE_LOCKOUT_DURATION  time.ParseDuration syntax, e.g. "24h"
//	PRATTLE_TIMESTAMP_ZONE    IANA zone name
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("PRATTLE_HTTP_ADDR"); ok {
		config.HTTPAddr = v
	}
	if v, ok := os.LookupEnv("PRATTLE_DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("PRATTLE_IN_MEMORY"); ok {
		inMemory, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		config.InMemory = inMemory
	}
	if v, ok := os.LookupEnv("PRATTLE_LOCKOUT_DURATION"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.LockoutDuration = d
	}
	if v, ok := os.LookupEnv("PRATTLE_TIMESTAMP_ZONE"); ok {
		config.TimestampZone = v
	}
}
