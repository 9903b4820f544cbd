package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"go.hackfix.me/vemigrate/app/config"
	actx "go.hackfix.me/vemigrate/app/context"
	"go.hackfix.me/vemigrate/store"
	"go.hackfix.me/vemigrate/store/scylla"
)

// envTag is the struct tag naming the environment variable of a flag.
const envTag = "appenv"

// CLI is the command line interface of vemigrate.
type CLI struct {
	Init    Init    `kong:"cmd,help='Create the migrations directory and the initial migration.'"`
	New     NewCmd  `kong:"cmd,name='new',help='Create a new empty migration named with the current timestamp.'"`
	Migrate Migrate `kong:"cmd,help='Apply all pending migrations.'"`
	Reset   Reset   `kong:"cmd,help='Roll back all applied migrations.'"`
	Do      Do      `kong:"cmd,help='Apply the next N pending migrations.'"`
	Undo    Undo    `kong:"cmd,help='Roll back the N most recently applied migrations.'"`
	Redo    Redo    `kong:"cmd,help='Roll back and apply again the most recently applied migration.'"`
	Status  Status  `kong:"cmd,help='Show the state of all migrations.'"`

	Globals `embed:""`

	Log struct {
		Level slog.Level `enum:"DEBUG,INFO,WARN,ERROR" default:"INFO" help:"Set the app logging level."`
	} `embed:"" prefix:"log-"`
	// NOTE: kong.ConfigFlag isn't used, since configuration is managed
	// independently from the CLI.
	ConfigFile string           `kong:"default='${configFile}',help='Path to the configuration file.'"`
	Version    kong.VersionFlag `kong:"help='Output version and exit.'"`

	kong *kong.Kong
	kctx *kong.Context
}

// New initializes the command-line interface.
func New(appCtx *actx.Context, configFilePath, version string) (*CLI, error) {
	c := &CLI{}
	kparser, err := kong.New(c,
		kong.Name("vemigrate"),
		kong.Description("Directory-based schema migrations for ScyllaDB, Cassandra, SQLite and MySQL."),
		kong.UsageOnError(),
		kong.Resolvers(envResolver(appCtx.Env)),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"configFile":    configFilePath,
			"version":       version,
			"storeTypes":    strings.Join(storeTypes(), ", "),
			"strategies":    strings.Join(scylla.ReplicationStrategies(), ","),
			"migrationsDir": defaultMigrationsDir,
			"keyspace":      scylla.DefaultKeyspace,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed creating the Kong parser: %w", err)
	}

	c.kong = kparser

	return c, nil
}

// Execute starts the command execution. Parse must be called before this method.
func (c *CLI) Execute(appCtx *actx.Context) error {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	c.kong.Stdout = appCtx.Stdout
	c.kong.Stderr = appCtx.Stderr

	//nolint:wrapcheck // This is fine.
	return c.kctx.Run(appCtx, &c.Globals)
}

// Parse the given command line arguments. This method must be called before
// Execute.
func (c *CLI) Parse(args []string) error {
	kctx, err := c.kong.Parse(args)
	if err != nil {
		return fmt.Errorf("failed parsing CLI arguments: %w", err)
	}
	c.kctx = kctx

	return nil
}

// Command returns the full path of the executed command.
func (c *CLI) Command() string {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	cmdPath := []string{}
	for _, p := range c.kctx.Path {
		if p.Command != nil {
			cmdPath = append(cmdPath, p.Command.Name)
		}
	}

	return strings.Join(cmdPath, " ")
}

// ApplyConfig applies configuration values to the CLI, but only if they weren't
// already set by flags or environment variables. Values that remain unset get
// their defaults.
func (c *CLI) ApplyConfig(cfg *config.Config) error {
	return c.Globals.applyConfig(cfg)
}

// envResolver resolves flags tagged with appenv from the application
// environment. Kong's own env tag isn't used, since it always reads the process
// environment.
func envResolver(env actx.Environment) kong.Resolver {
	return kong.ResolverFunc(func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		name := flag.Tag.Get(envTag)
		if env == nil || name == "" {
			return nil, nil //nolint:nilnil // No value to resolve.
		}
		if val := env.Get(name); val != "" {
			return val, nil
		}
		return nil, nil //nolint:nilnil // No value to resolve.
	})
}

func storeTypes() []string {
	return []string{
		string(store.TypeScylla), string(store.TypeSQLite),
		string(store.TypeMySQL), string(store.TypeMemory),
	}
}
