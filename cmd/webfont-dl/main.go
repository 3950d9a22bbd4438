package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/jrnewell/goog-webfont-dl/internal/config"
	"github.com/jrnewell/goog-webfont-dl/internal/download"
	ioutils "github.com/jrnewell/goog-webfont-dl/internal/io"
	"github.com/jrnewell/goog-webfont-dl/internal/model"
	"github.com/jrnewell/goog-webfont-dl/internal/state"
)

const appName = "webfont-dl"

// set with -ldflags "-X main.version=..."
var version = "dev"

// initializeAppContext prepares settings and logging after the command line
// has been parsed.
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if env.Settings, err = config.LoadSettings(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare settings: %w", err)
	}

	switch {
	case cmd.String("out") == ioutils.Stdout:
		// stdout belongs to the stylesheet
		env.Settings.Logging.ConsoleLogger.Level = config.LevelNone
	case cmd.Bool("quiet") && env.Settings.Logging.ConsoleLogger.Level != config.LevelNone:
		env.Settings.Logging.ConsoleLogger.Level = config.LevelQuiet
	}

	if env.Log, err = env.Settings.Logging.Prepare(appName); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", version), zap.String("runtime", runtime.Version()))
	if len(configFile) == 0 {
		env.Log.Debug("Using defaults (no settings file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
		if er := env.Log.Sync(); er != nil && !errors.Is(er, syscall.EINVAL) && !errors.Is(er, syscall.ENOTTY) {
			err = multierr.Append(err, fmt.Errorf("unable to sync logs: %w", er))
		}
	}
	env.RestoreStdLog()
	return
}

// Errors are returned from actions as regular errors; exitErrHandler logs
// them while the logger is still open.
var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil && env.Settings != nil && env.Settings.Logging.ConsoleLogger.Level != config.LevelNone {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:                   appName,
		Usage:                  "downloads a webfont and writes a stylesheet referencing local copies",
		Version:                version + " (" + runtime.Version() + ")",
		HideHelpCommand:        true,
		UseShortOptionHandling: true,
		Before:                 initializeAppContext,
		After:                  destroyAppContext,
		OnUsageError:           usageErrorHandler,
		ExitErrHandler:         exitErrHandler,
		Action:                 runDownload,
		ArgsUsage:              "[FONT]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load settings from `FILE` (YAML)"},
			&cli.StringFlag{Name: "font", Aliases: []string{"f"}, Usage: "font `FAMILY` to download, e.g. \"Open Sans\" (may be given as argument)"},
			&cli.BoolFlag{Name: "ttf", Aliases: []string{"t"}, Usage: "fetch TrueType fonts"},
			&cli.BoolFlag{Name: "eot", Aliases: []string{"e"}, Usage: "fetch Embedded OpenType fonts"},
			&cli.BoolFlag{Name: "woff", Aliases: []string{"w"}, Usage: "fetch WOFF fonts"},
			&cli.BoolFlag{Name: "woff2", Aliases: []string{"W"}, Usage: "fetch WOFF2 fonts"},
			&cli.BoolFlag{Name: "svg", Aliases: []string{"s"}, Usage: "fetch SVG fonts"},
			&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "fetch all formats (" + strings.Join(model.FormatNames(), ", ") + ")"},
			&cli.StringFlag{Name: "destination", Aliases: []string{"d"}, Usage: "save font files to `DIR` (default: font name)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write stylesheet to `FILE`, - for stdout (default: <font>.css)"},
			&cli.StringFlag{Name: "prefix", Aliases: []string{"p"}, Usage: "`PATH` prefix of font urls in the stylesheet (default: ../fonts/<font>)"},
			&cli.StringFlag{Name: "subset", Aliases: []string{"u"}, Usage: "subset `LIST` to request, e.g. latin,cyrillic"},
			&cli.StringFlag{Name: "styles", Aliases: []string{"y"}, Value: config.DefaultStyles, Usage: "comma separated `STYLES` to request"},
			&cli.StringFlag{Name: "proxy", Aliases: []string{"P"}, Usage: "proxy `URL` (http, https or socks5), overrides settings"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only report warnings and errors"},
			&cli.BoolFlag{Name: "preview", Usage: "render a specimen PNG of the downloaded TrueType faces"},
			&cli.BoolFlag{Name: "dry-run", Usage: "fetch and merge stylesheets, list files without downloading"},
		},
		Commands: []*cli.Command{
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual settings (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded settings"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				CustomHelpTemplate: fmt.Sprintf(`%s

DESTINATION:
    file name to write settings to, if absent - STDOUT

Produces file with actual "active" settings which is composition of
default values and values specified in settings file. To see default
settings embedded into the program use --default flag.
`, cli.CommandHelpTemplate),
			},
		},
	}

	var err error
	// os.Exit is called at the end of main to set exit code, make sure
	// there are no other deferred functions after that
	defer func() {
		interrupted := ctx.Err() != nil
		stop()
		switch {
		case interrupted:
			fmt.Fprintln(os.Stderr, "Interrupted")
			os.Exit(130)
		case err != nil:
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

// optionsFromCommand collects run options from flags. Validation is left to
// Options.Normalize.
func optionsFromCommand(cmd *cli.Command) config.Options {
	opts := config.Options{
		Font:        cmd.String("font"),
		Styles:      cmd.String("styles"),
		Prefix:      cmd.String("prefix"),
		Destination: cmd.String("destination"),
		Out:         cmd.String("out"),
		Subset:      cmd.String("subset"),
		Proxy:       cmd.String("proxy"),
		Verbose:     !cmd.Bool("quiet"),
		Preview:     cmd.Bool("preview"),
		DryRun:      cmd.Bool("dry-run"),
	}
	if opts.Font == "" {
		opts.Font = cmd.Args().First()
	}

	if cmd.Bool("all") {
		opts.Formats = model.FormatNames()
	} else {
		for _, f := range model.AllFormats() {
			if cmd.Bool(f.String()) {
				opts.Formats = append(opts.Formats, f.String())
			}
		}
	}

	if opts.Out == "" && opts.Font != "" {
		opts.Out = ioutils.SanitizeFileName(strings.ReplaceAll(opts.Font, "+", " ")) + ".css"
	}
	return opts
}

func runDownload(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Logger()

	opts := optionsFromCommand(cmd)
	if cmd.NArg() > 1 || (cmd.NArg() == 1 && cmd.String("font") != "") {
		log.Warn("Malformed command line, too many font names", zap.Strings("ignoring", cmd.Args().Slice()))
	}

	manager := download.NewManager(env.Settings, log, func(event download.ProgressEvent) {
		switch event.Level {
		case download.LevelError:
			log.Error(event.Message)
		case download.LevelWarning:
			log.Warn(event.Message)
		case download.LevelVerbose:
			if opts.Verbose {
				log.Info(event.Message)
			} else {
				log.Debug(event.Message)
			}
		default:
			log.Info(event.Message)
		}
	})

	res, err := manager.Run(ctx, &opts)
	if err != nil {
		return err
	}

	if opts.DryRun {
		for _, task := range res.Tasks {
			log.Info("Planned download", zap.String("url", task.URL), zap.String("file", task.Name))
		}
		return nil
	}

	received, files, _ := manager.GetProgress()
	log.Debug("Download complete", zap.Int32("files", files), zap.Int64("bytes", received))
	return nil
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		data []byte
		kind string
	)

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer func() {
			err = multierr.Append(err, out.Close())
		}()
	}

	if cmd.Bool("default") {
		kind = "default"
		data, err = config.Prepare()
	} else {
		kind = "actual"
		data, err = config.Dump(env.Settings)
	}
	if err != nil {
		return fmt.Errorf("unable to get settings: %w", err)
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Info("Outputing settings", zap.String("state", kind), zap.String("file", fname))

	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("unable to write settings: %w", err)
	}
	return nil
}
