package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/heinlein/internal/application/registry"
	"github.com/zjrosen/heinlein/internal/config"
	"github.com/zjrosen/heinlein/internal/domain/dataset"
	"github.com/zjrosen/heinlein/internal/infrastructure/jsonstore"
	"github.com/zjrosen/heinlein/internal/log"
	"github.com/zjrosen/heinlein/internal/paths"
	"github.com/zjrosen/heinlein/internal/presentation"
	"github.com/zjrosen/heinlein/internal/prompt"
	"github.com/zjrosen/heinlein/internal/templates"
	"github.com/zjrosen/heinlein/internal/tracing"
)

// annotationStandalone marks commands that run without the registry runtime.
const annotationStandalone = "heinlein/standalone"

var (
	version   = "dev"
	cfgFile   string
	cfg       config.Config
	configErr error
	app       *runtime

	// newConfirmer builds the prompt used when --yes is not set.
	newConfirmer = func() dataset.Confirmer { return prompt.NewTTY() }
)

// runtime holds everything a registry command needs for one invocation.
type runtime struct {
	runID     string
	service   *registry.Service
	formatter *presentation.Formatter
	provider  *tracing.Provider
	span      trace.Span
	closeLog  func()
}

var rootCmd = &cobra.Command{
	Use:   "heinlein",
	Short: "A local registry of datasets and the paths of their data",
	Long: `heinlein keeps track of where the data for your datasets lives.

Each dataset maps datatypes (catalog, mask, images, ...) to absolute paths on
disk. Datasets are stored as JSON files under the registry root and can be
seeded from a bundled template (see 'heinlein templates').`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupRuntime,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "",
		"config file (default: <user config dir>/heinlein/config.yaml)")
	pf.String("root", "", "registry root directory (env HEINLEIN_ROOT)")
	pf.BoolP("yes", "y", false, "answer yes to every confirmation prompt")
	pf.StringP("output", "o", "", "output format: table, json or yaml")
	pf.Bool("debug", false, "write a debug log to <root>/debug.log")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("root", defaults.Root)
	viper.SetDefault("debug", defaults.Debug)
	viper.SetDefault("log_file", defaults.LogFile)
	viper.SetDefault("assume_yes", defaults.AssumeYes)
	viper.SetDefault("output", defaults.Output)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)

	// HEINLEIN_ROOT, HEINLEIN_TRACING_ENABLED, ...
	viper.SetEnvPrefix("HEINLEIN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	pf := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("root", pf.Lookup("root"))
	_ = viper.BindPFlag("assume_yes", pf.Lookup("yes"))
	_ = viper.BindPFlag("output", pf.Lookup("output"))
	_ = viper.BindPFlag("debug", pf.Lookup("debug"))

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(config.DefaultConfigDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	configErr = nil
	if err := viper.ReadInConfig(); err != nil {
		// No settings file is fine; everything has a default.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			configErr = err
		}
	}

	cfg = config.Config{}
	if err := viper.Unmarshal(&cfg); err != nil && configErr == nil {
		configErr = err
	}
}

// configPath returns the settings file the config:* commands operate on.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return config.DefaultConfigPath()
}

func setupRuntime(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[annotationStandalone] == "true" {
		return nil
	}
	if configErr != nil {
		return fmt.Errorf("reading config %s: %w", configPath(), configErr)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	format, err := presentation.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}

	rt := &runtime{runID: uuid.NewString(), closeLog: func() {}}
	app = rt

	if cfg.Debug {
		closeLog, err := log.Init(cfg.ResolvedLogFile())
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		rt.closeLog = closeLog
	}
	log.With("run_id", rt.runID)
	log.Debug(log.CatCLI, "Starting command", "command", cmd.CommandPath(), "root", cfg.ResolvedRoot())

	rt.provider, err = tracing.NewProvider(cfg.ResolvedTracing())
	if err != nil {
		log.ErrorErr(log.CatTrace, "Failed to start tracing", err)
		return fmt.Errorf("starting tracing: %w", err)
	}
	ctx, span := tracing.Start(cmd.Context(), rt.provider.Tracer(), "cli."+cmd.Name(),
		attribute.String(tracing.AttrRunID, rt.runID),
		attribute.String(tracing.AttrCommand, cmd.CommandPath()),
	)
	rt.span = span
	cmd.SetContext(ctx)

	catalog := templates.NewEmbedded()
	catalog.MustValidate()

	store := jsonstore.New(paths.NewResolver(cfg.ResolvedRoot()), catalog)

	confirmer := newConfirmer()
	if cfg.AssumeYes {
		confirmer = prompt.AssumeYes{}
	}

	rt.service = registry.NewService(store, catalog, confirmer, registry.WithTracer(rt.provider.Tracer()))
	rt.formatter = presentation.NewFormatter(cmd.OutOrStdout(), format)
	return nil
}

// teardown ends the command span and releases the runtime. Safe when setup
// never ran or stopped part way.
func teardown(err error) {
	rt := app
	app = nil
	if rt == nil {
		return
	}
	if rt.span != nil {
		tracing.Finish(rt.span, err)
	}
	if rt.provider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if shutdownErr := rt.provider.Shutdown(ctx); shutdownErr != nil {
			log.ErrorErr(log.CatTrace, "Failed to flush traces", shutdownErr)
		}
		cancel()
	}
	if err != nil {
		log.ErrorErr(log.CatCLI, "Command failed", err)
	}
	log.Reset()
	rt.closeLog()
}

func run(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	teardown(err)
	return err
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	err := run(context.Background())
	if err != nil {
		_, _ = fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
