package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr          string
	DBUrl         string
	TokenSecret   string
	TokenTTL      time.Duration
	NotifyURL     string
	NotifyRPS     float64
	NotifyWorkers int
	Debug         bool
}

// ParseFlags loads an optional .env file, then parses the command line.
// Environment variables (PROMO_*) provide the flag defaults.
func ParseFlags() (Config, error) {
	_ = godotenv.Load()
	return Parse(flag.CommandLine, os.Args[1:])
}

func Parse(fs *flag.FlagSet, args []string) (cfg Config, err error) {
	var host string
	fs.StringVar(&host, "host", env("PROMO_HOST", "0.0.0.0"), "listen host name")
	var port uint
	fs.UintVar(&port, "port", uint(envInt("PROMO_PORT", 80)), "listen port number")
	fs.StringVar(&cfg.DBUrl, "db-url", env("PROMO_DB_URL", "promo.sqlite"), "path to SQLite3 DB file")
	fs.StringVar(&cfg.TokenSecret, "token-secret", env("PROMO_TOKEN_SECRET", ""), "secret key for token encryption and decryption")
	var ttl uint
	fs.UintVar(&ttl, "token-ttl", uint(envInt("PROMO_TOKEN_TTL", 120)), "token TTL in seconds")
	fs.StringVar(&cfg.NotifyURL, "notify-url", env("PROMO_NOTIFY_URL", ""), "webhook receiving submission notifications (log only when empty)")
	fs.Float64Var(&cfg.NotifyRPS, "notify-rps", envFloat("PROMO_NOTIFY_RPS", 5), "max notifications sent per second")
	fs.IntVar(&cfg.NotifyWorkers, "notify-workers", envInt("PROMO_NOTIFY_WORKERS", 2), "concurrent notification senders")
	fs.BoolVar(&cfg.Debug, "debug", env("PROMO_DEBUG", "") == "true", "log at DEBUG level")
	if err = fs.Parse(args); err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second

	switch {
	case cfg.TokenSecret == "":
		err = errors.New("missing parameter -token-secret")
	case cfg.NotifyWorkers < 1:
		err = errors.New("-notify-workers must be at least 1")
	case cfg.NotifyRPS <= 0:
		err = errors.New("-notify-rps must be positive")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return def
}
