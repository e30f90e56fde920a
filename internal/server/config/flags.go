package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/flagx"
)

// parseFlags applies the server's short flags found in args.
//
//	-a string   HTTP bind address (e.g. ":5000")
//	-d string   PostgreSQL DSN
//	-u string   admin email
//	-p string   admin password
//	-t int      session TTL, hours
//	-s string   storage backend: local | s3
//	-f string   upload directory for the local backend
//	-w int      image worker count (0 = NumCPU)
//	-l string   log level
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-u", "-p", "-t", "-s", "-f", "-w", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AdminEmail, "u", config.AdminEmail, "admin email")
	fs.StringVar(&config.AdminPassword, "p", config.AdminPassword, "admin password")
	ttlHours := fs.Int("t", int(config.SessionTTL.Hours()), "session ttl (in hours)")
	fs.StringVar(&config.StorageBackend, "s", config.StorageBackend, "storage backend (local|s3)")
	fs.StringVar(&config.UploadDir, "f", config.UploadDir, "upload directory")
	fs.IntVar(&config.Workers, "w", config.Workers, "image workers")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.SessionTTL = time.Duration(*ttlHours) * time.Hour
		}
	})
	return nil
}
