package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/vemigrate/app/config"
	actx "go.hackfix.me/vemigrate/app/context"
	"go.hackfix.me/vemigrate/cli"
)

// DefaultEnvFile is the dotenv file loaded into the environment before the CLI
// is parsed.
const DefaultEnvFile = ".env"

// App is the application.
type App struct {
	name       string
	ctx        *actx.Context
	cli        *cli.CLI
	configPath string
	envFile    string
	// the logging level is set via the CLI, if the app was initialized with the
	// WithLogger option.
	logLevel *slog.LevelVar
}

// New initializes a new application.
func New(name, configPath string, opts ...Option) (*App, error) {
	version, err := actx.GetVersion()
	if err != nil {
		return nil, err
	}

	defaultCtx := &actx.Context{
		Ctx:     context.Background(),
		FS:      memoryfs.New(),
		Logger:  slog.Default(),
		TimeNow: time.Now,
		Version: version,
	}
	app := &App{name: name, ctx: defaultCtx, configPath: configPath, envFile: DefaultEnvFile}

	for _, opt := range opts {
		opt(app)
	}

	ver := fmt.Sprintf("%s %s", app.name, app.ctx.Version.String())
	app.cli, err = cli.New(app.ctx, configPath, ver)
	if err != nil {
		return nil, err
	}

	return app, nil
}

// Run initializes the application environment and starts execution of the
// application.
func (app *App) Run(args []string) error {
	if err := app.loadEnvFile(); err != nil {
		return err
	}

	if err := app.cli.Parse(args); err != nil {
		return err
	}

	if app.logLevel != nil {
		app.logLevel.Set(app.cli.Log.Level)
		slog.SetLogLoggerLevel(app.cli.Log.Level)
	}

	cfgPath := app.cli.ConfigFile
	if cfgPath == "" {
		cfgPath = app.configPath
	}
	cfg := config.NewConfig(app.ctx.FS, cfgPath)
	if err := cfg.Load(); err != nil {
		return err
	}
	app.ctx.Config = cfg

	if err := app.cli.ApplyConfig(cfg); err != nil {
		return err
	}

	return app.cli.Execute(app.ctx)
}

// loadEnvFile sets environment variables from the dotenv file, if it exists.
// Variables already set in the environment take precedence.
func (app *App) loadEnvFile() error {
	if app.envFile == "" || app.ctx.Env == nil {
		return nil
	}

	f, err := app.ctx.FS.Open(app.envFile)
	if err != nil {
		if vfs.IsErrNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed opening env file: %w", err)
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("failed parsing env file '%s': %w", app.envFile, err)
	}

	for key, val := range vars {
		if app.ctx.Env.Get(key) != "" {
			continue
		}
		if err = app.ctx.Env.Set(key, val); err != nil {
			return fmt.Errorf("failed setting environment variable '%s': %w", key, err)
		}
	}

	return nil
}
