package config

import (
	"flag"
	"os"
	"time"

	"github.com/gabrielslopes/labelcheck/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-b string   storage backend: "sqlite" or "postgres"
//	-f string   sqlite database file path
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      session token validity, minutes
//	-w int      auth timeout, seconds
//	-i int      record flush interval (entries between durability flushes)
//	-x          enable the S3 export archive
//	-u string   S3 root user
//	-p string   S3 root password
//	-k string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-b", "-f", "-d", "-s", "-t", "-w", "-i", "-x", "-u", "-p", "-k", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.StorageBackend, "b", config.StorageBackend, "storage backend (sqlite|postgres)")
	fs.StringVar(&config.SQLitePath, "f", config.SQLitePath, "sqlite database file")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidityMinutes := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session_validity_duration (in minutes)")
	authTimeoutSeconds := fs.Int("w", int(config.AuthTimeout.Seconds()), "auth timeout (in seconds)")

	fs.IntVar(&config.RecordFlushInterval, "i", config.RecordFlushInterval, "record flush interval")
	fs.BoolVar(&config.S3ArchiveEnabled, "x", config.S3ArchiveEnabled, "enable S3 export archive")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "k", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionValidityMinutes) * time.Minute
	config.AuthTimeout = time.Duration(*authTimeoutSeconds) * time.Second
}
