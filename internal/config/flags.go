package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags from args (without the program
// name).
//
// Flags:
//
//	-a server listen address in format [host]:[port]
//	-r remote store address used by the client
//	-d database DSN (SQLite path on the client, PostgreSQL DSN on the server)
//	-kv-file JSON file used instead of SQLite for client key-value state
//	-c/-config json file path with configs
//	-user user id the client syncs for
//	-hash-key HMAC key for request signing
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-sync-interval background sync interval
//	-probe-interval connectivity probe interval
//	-reminder-schedule cron spec for fuel reminders
//	-max-retries retries per queue item
//	-base-delay first backoff step
//	-trace enable tracing with the stdout exporter
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("fuel-sync", flag.ContinueOnError)

	var serverAddress, remoteAddress NetAddress
	var databaseDSN, kvFile string
	var jsonConfigPath string
	var userID, hashKey string
	var requestTimeout, syncInterval, probeInterval, baseDelay time.Duration
	var reminderSchedule string
	var maxRetries int
	var trace bool

	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.Var(&remoteAddress, "r", "Remote store address host:port")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&kvFile, "kv-file", "", "Key-value state file")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&userID, "user", "", "User id")
	fs.StringVar(&hashKey, "hash-key", "", "Security hash key")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Background sync interval")
	fs.DurationVar(&probeInterval, "probe-interval", 0, "Connectivity probe interval")
	fs.StringVar(&reminderSchedule, "reminder-schedule", "", "Cron spec for fuel reminders")
	fs.IntVar(&maxRetries, "max-retries", 0, "Retries per queue item")
	fs.DurationVar(&baseDelay, "base-delay", 0, "First backoff step")
	fs.BoolVar(&trace, "trace", false, "Enable stdout tracing")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &StructuredConfig{
		App: App{
			HashKey: hashKey,
			UserID:  userID,
		},
		Storage: Storage{
			DB:     DB{DSN: databaseDSN},
			KVFile: kvFile,
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Adapter: Adapter{
			HTTPAddress:    remoteAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Workers: Workers{
			SyncInterval:     syncInterval,
			ProbeInterval:    probeInterval,
			ReminderSchedule: reminderSchedule,
		},
		Sync: Sync{
			MaxRetries: maxRetries,
			BaseDelay:  baseDelay,
		},
		JSONFilePath: jsonConfigPath,
	}
	if trace {
		cfg.Tracing = Tracing{Enabled: true, Exporter: "stdout"}
	}

	return cfg, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1-65535")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(host)
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
