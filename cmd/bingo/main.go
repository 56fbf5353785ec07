// Command bingo translates text with the Bing web translator and manages
// the session caches it keeps between runs.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/bingo"
	"github.com/ZaguanLabs/bingo/cache"
	"github.com/ZaguanLabs/bingo/config"
	"github.com/ZaguanLabs/bingo/logging"
	"github.com/ZaguanLabs/bingo/provider"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = bingo.Version
	commit    = bingo.GitCommit
	buildDate = bingo.BuildDate
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	return newApp(stdin, stdout, stderr).execute(args)
}

// app carries the state shared by all commands of one invocation.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// Global flags
	configPath string
	cacheDir   string
	backend    string
	logLevel   string
	debug      string

	cfg   *config.Config
	log   *slog.Logger
	redis *redis.Client

	closers []func() error

	// newSessionProvider builds the Bing client. Tests replace it.
	newSessionProvider func(cfg *config.Config) bingo.SessionProvider
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		newSessionProvider: func(cfg *config.Config) bingo.SessionProvider {
			return provider.NewBingClient(provider.BingConfig{
				BaseURL:   cfg.Bing.BaseURL,
				UserAgent: cfg.Bing.UserAgent,
				Timeout:   cfg.Bing.Timeout,
			})
		},
	}
}

// execute runs the command line and releases everything opened by it.
func (a *app) execute(args []string) error {
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := root.ExecuteContext(ctx)
	if cerr := a.close(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	return err
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bingo",
		Short: "Translate text with the Bing web translator",
		Long: `bingo translates text through the Bing web translator.

Session tokens scraped from the translator page are kept in a persistent
cache per language pair, so consecutive runs reuse them until they expire.

Commands:
  translate   Translate text into one or more languages
  languages   List supported languages
  cache       Inspect, clear, export and import session caches
  version     Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: $BINGO_CONFIG or user config dir)")
	root.PersistentFlags().StringVar(&a.cacheDir, "cache-dir", "", "Session cache directory")
	root.PersistentFlags().StringVar(&a.backend, "backend", "", "Cache backend: file, redis, memory")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.debug, "debug", "", "Enable debug namespaces (e.g. 'cache:*,session:*')")

	root.AddCommand(
		a.newTranslateCmd(),
		a.newLanguagesCmd(),
		a.newCacheCmd(),
		a.newVersionCmd(),
	)

	return root
}

// setup loads the configuration, applies flag overrides and installs the
// process logger.
func (a *app) setup(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("cache-dir") {
		cfg.Cache.Dir = a.cacheDir
	}
	if flags.Changed("backend") {
		cfg.Cache.Backend = a.backend
		if cfg.Cache.Backend != config.BackendFile && cfg.Cache.Backend != config.BackendRedis && cfg.Cache.Backend != config.BackendMemory {
			return fmt.Errorf("unknown cache backend %q", a.backend)
		}
		if cfg.Cache.Backend == config.BackendRedis && cfg.Cache.RedisURL == "" {
			return errors.New("the redis backend needs cache.redis_url or BINGO_REDIS_URL")
		}
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if flags.Changed("debug") {
		cfg.Logging.Debug = a.debug
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = cache.DefaultDir()
	}

	level := cfg.Logging.Level
	if cfg.Logging.Debug != "" {
		// namespaced loggers write at debug level
		level = "debug"
	}
	logging.SetDebug(cfg.Logging.Debug)
	a.log = logging.Setup(level, cfg.Logging.Format, a.stderr)
	slog.SetDefault(a.log)

	a.cfg = cfg
	return nil
}

// cacheOptions returns the options shared by every cache this run opens.
func (a *app) cacheOptions() []cache.Option {
	return []cache.Option{
		cache.WithDir(a.cfg.Cache.Dir),
		cache.WithFlushInterval(a.cfg.Cache.FlushInterval),
	}
}

// storeFor returns the store of a cache, or nil for the default file store.
func (a *app) storeFor(name string) (cache.Store, error) {
	switch a.cfg.Cache.Backend {
	case config.BackendMemory:
		return cache.NewMemoryStore(nil), nil
	case config.BackendRedis:
		client, err := a.redisClient()
		if err != nil {
			return nil, err
		}
		return cache.NewRedisStoreFromClient(client, a.cfg.Cache.KeyPrefix, name), nil
	default:
		return nil, nil
	}
}

// redisClient returns the client shared by all Redis-backed caches.
func (a *app) redisClient() (*redis.Client, error) {
	if a.redis != nil {
		return a.redis, nil
	}
	opts, err := redis.ParseURL(a.cfg.Cache.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	a.redis = redis.NewClient(opts)
	a.closers = append(a.closers, a.redis.Close)
	return a.redis, nil
}

// newRegistry creates a session registry closed when the run ends.
func (a *app) newRegistry(p bingo.SessionProvider) (*bingo.Registry, error) {
	opts := []bingo.RegistryOption{
		bingo.WithCacheOptions(a.cacheOptions()...),
		bingo.WithLogger(a.log),
	}
	if a.cfg.Cache.Backend == config.BackendRedis {
		// Parse the URL here so the factory below cannot fail
		if _, err := a.redisClient(); err != nil {
			return nil, err
		}
	}
	if a.cfg.Cache.Backend != config.BackendFile {
		opts = append(opts, bingo.WithStoreFactory(func(pair string) cache.Store {
			s, _ := a.storeFor(pair)
			return s
		}))
	}

	reg := bingo.NewRegistry(p, opts...)
	a.closers = append(a.closers, reg.Close)
	return reg, nil
}

// openCache opens a session cache by name.
func (a *app) openCache(name string) (*cache.PersistentCache, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("invalid cache name %q", name)
	}

	opts := a.cacheOptions()
	opts = append(opts, cache.WithLogger(logging.New("cache:"+name, a.log)))

	store, err := a.storeFor(name)
	if err != nil {
		return nil, err
	}
	if store != nil {
		opts = append(opts, cache.WithStore(store))
	}

	c := cache.New(name, opts...)
	if err := c.Init(); err != nil {
		return nil, err
	}
	return c, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "%s %s\n", bingo.Name, version)
			if commit != "unknown" && commit != "" {
				fmt.Fprintf(a.stdout, "  commit:  %s\n", commit)
			}
			if buildDate != "unknown" && buildDate != "" {
				fmt.Fprintf(a.stdout, "  built:   %s\n", buildDate)
			}
		},
	}
}
