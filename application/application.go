package application

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lk2023060901/databrief-go/pkg/codec"
	zlog "github.com/lk2023060901/databrief-go/pkg/log"
	"github.com/lk2023060901/databrief-go/pkg/metrics"
	"github.com/lk2023060901/databrief-go/pkg/paramtable"
	"github.com/lk2023060901/databrief-go/pkg/util/merr"
	zviper "github.com/lk2023060901/databrief-go/pkg/util/viper"
)

const (
	defaultConfigPath = "./config.yaml"
	configPathEnv     = "BRIEF_CONFIG_FILE_PATH"
)

// Application is the runtime container for databrief tools.
// It owns configuration and manages common dependencies.
type Application struct {
	cfg      *zviper.Config
	params   *paramtable.ComponentParam
	loggers  map[string]*zlog.MLogger
	registry prometheus.Registerer
}

// New creates a new Application instance.
func New() *Application {
	return &Application{}
}

// Run parses os.Args for the config path and initializes the application.
func (a *Application) Run() error {
	path, explicit, err := ResolveConfigPath(os.Args[1:])
	if err != nil {
		return err
	}
	return a.Init(path, explicit)
}

// Init loads configuration from path and initializes logging and metrics.
// A missing file is only an error when the path was given explicitly;
// otherwise defaults apply.
func (a *Application) Init(path string, explicit bool) error {
	cfg, err := a.loadConfig(path, explicit)
	if err != nil {
		return err
	}
	a.cfg = cfg

	params, err := paramtable.Load(cfg)
	if err != nil {
		return errors.Wrap(err, "load parameters")
	}
	a.params = params

	if err := a.initLogging(); err != nil {
		return err
	}
	a.initMetrics()
	return nil
}

// Config returns the loaded configuration, if any.
func (a *Application) Config() *zviper.Config {
	return a.cfg
}

// Params returns the effective parameters, defaults when Init has not run.
func (a *Application) Params() *paramtable.ComponentParam {
	if a.params == nil {
		return paramtable.Default()
	}
	return a.params
}

// Codec builds a codec configured from Params.
func (a *Application) Codec(opts ...codec.Option) *codec.Codec {
	all := append(a.Params().CodecOptions(), opts...)
	c := codec.New(all...)
	c.SetLogger(a.Logger("codec"))
	return c
}

// Registerer returns the registry metrics were registered on, nil when disabled.
func (a *Application) Registerer() prometheus.Registerer {
	return a.registry
}

// Logger returns a named logger created from configuration.
// If the name is unknown, it falls back to the global logger.
func (a *Application) Logger(name string) *zlog.MLogger {
	if lg, ok := a.loggers[name]; ok && lg != nil {
		return lg
	}
	return zlog.With(zlog.FieldModule(name))
}

// ResolveConfigPath resolves the config file path using the following priority:
//  1. Default: ./config.yaml
//  2. Env: BRIEF_CONFIG_FILE_PATH
//  3. CLI: --config <path> or --config=<path>
//
// explicit reports whether the path came from the env or the command line.
func ResolveConfigPath(args []string) (path string, explicit bool, err error) {
	path = defaultConfigPath
	if envPath := os.Getenv(configPathEnv); envPath != "" {
		path, explicit = envPath, true
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--config" {
			if i+1 >= len(args) {
				return "", false, merr.WrapErrParameterMissing("--config", "missing value after --config")
			}
			path, explicit = args[i+1], true
			i++
			continue
		}
		if val, ok := strings.CutPrefix(arg, "--config="); ok && val != "" {
			path, explicit = val, true
		}
	}
	return path, explicit, nil
}

// loadConfig loads the file at path via the viper wrapper.
func (a *Application) loadConfig(path string, explicit bool) (*zviper.Config, error) {
	cfg := zviper.New()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, merr.WrapErrIoFailed(path, err)
	}
	if err := cfg.LoadFile(path); err != nil {
		return nil, errors.Wrapf(err, "failed to load config file %q", path)
	}
	return cfg, nil
}

// initLogging initializes global and module-level loggers.
func (a *Application) initLogging() error {
	if err := a.initGlobalLogger(); err != nil {
		return err
	}
	return a.initModuleLoggersFromConfig()
}

// initGlobalLogger configures the process-wide logger from the "log" section,
// then applies BRIEF_LOG_* env overrides:
//   - BRIEF_LOG_LEVEL: log level.
//   - BRIEF_LOG_STDOUT: whether to log to stdout.
//   - BRIEF_LOG_FILE_DIR: log directory.
//   - BRIEF_LOG_FILE: log file name (empty means no file).
//   - BRIEF_LOG_FORMAT: log format ("text" or "json").
//   - BRIEF_LOG_RATE_*: rated logging, see log.RateLimitFromEnv.
func (a *Application) initGlobalLogger() error {
	cfg := a.params.Log
	cfg.Level = getenvDefault("BRIEF_LOG_LEVEL", cfg.Level)
	cfg.Format = getenvDefault("BRIEF_LOG_FORMAT", cfg.Format)
	cfg.Stdout = getenvBool("BRIEF_LOG_STDOUT", cfg.Stdout)
	cfg.File.RootPath = getenvDefault("BRIEF_LOG_FILE_DIR", cfg.File.RootPath)
	cfg.File.Filename = getenvDefault("BRIEF_LOG_FILE", cfg.File.Filename)

	logger, props, err := zlog.InitLogger(&cfg)
	if err != nil {
		return errors.Wrap(err, "init global logger")
	}
	zlog.ReplaceGlobals(logger, props)
	zlog.SetRateLimit(zlog.RateLimitFromEnv(cfg.RateLimit))
	return nil
}

// initModuleLoggersFromConfig creates named loggers from YAML config under "logging" key.
//
// Example:
//
//	logging:
//	  codec:
//	    level: debug
//	    stdout: true
//	    file:
//	      rootpath: ./logs
//	      filename: codec.log
func (a *Application) initModuleLoggersFromConfig() error {
	if a.cfg == nil {
		return nil
	}

	raw := make(map[string]zlog.Config)
	if err := a.cfg.UnmarshalKey("logging", &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}

	a.loggers = make(map[string]*zlog.MLogger, len(raw))
	for name, lc := range raw {
		cfgCopy := lc
		logger, _, err := zlog.InitLogger(&cfgCopy)
		if err != nil {
			return errors.Wrapf(err, "init module logger %q", name)
		}
		a.loggers[name] = &zlog.MLogger{Logger: logger.With(zlog.FieldModule(name))}
	}
	return nil
}

// initMetrics registers codec metrics on the default registerer when enabled.
func (a *Application) initMetrics() {
	if !a.params.Metrics.Enabled {
		return
	}
	metrics.Register(prometheus.DefaultRegisterer)
	a.registry = metrics.GetRegisterer()
}

func getenvDefault(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

func getenvBool(key string, def bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}
