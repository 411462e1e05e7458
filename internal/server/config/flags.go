package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/featureimage/internal/flagx"
)

var serverFlags = []string{"-a", "-o", "-d", "-s", "-t", "-n", "-i", "-w", "-u", "-p", "-b", "-r", "-e", "-m", "-g", "-l"}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-o string   gRPC health bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   HMAC secret key
//	-t int      session validity, minutes
//	-n int      nonce validity, minutes
//	-i string   thumbnail size name
//	-w string   public site URL
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-r string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-m string   public media base URL
//	-g int      max image pixels (width*height)
//	-l string   log level
//
// Durations are accepted as integer minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run HTTP server")
	fs.StringVar(&config.EndpointAddrGRPC, "o", config.EndpointAddrGRPC, "address and port to run gRPC health server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidity := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session validity (in minutes)")
	nonceValidity := fs.Int("n", int(config.NonceValidityDuration.Minutes()), "nonce validity (in minutes)")

	fs.StringVar(&config.ThumbnailSize, "i", config.ThumbnailSize, "thumbnail size name")
	fs.StringVar(&config.SiteURL, "w", config.SiteURL, "public site URL")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.MediaBaseURL, "m", config.MediaBaseURL, "public media base URL")
	fs.Int64Var(&config.MaxImagePixels, "g", config.MaxImagePixels, "max image pixels (width*height)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionValidity) * time.Minute
	config.NonceValidityDuration = time.Duration(*nonceValidity) * time.Minute
}
