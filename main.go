package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/mcncl/textjson/internal/config"
	"github.com/mcncl/textjson/internal/converter"
	"github.com/mcncl/textjson/internal/errors"
	"github.com/mcncl/textjson/internal/formatter"
	"github.com/mcncl/textjson/internal/logging"
	"github.com/mcncl/textjson/internal/models"
	"github.com/mcncl/textjson/internal/notify"
	"github.com/mcncl/textjson/internal/parser"
	"github.com/mcncl/textjson/internal/server"
	"github.com/mcncl/textjson/internal/stats"
	"go.uber.org/zap"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string   `help:"Path to input text file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string   `help:"Path to output JSON file. If not specified, writes to stdout." short:"o" type:"path"`
	Config      string   `help:"Path to config file. Defaults to the nearest .textjson.yml." short:"c" type:"path"`
	Compact     bool     `help:"Write compact JSON instead of indenting with two spaces."`
	Separate    bool     `help:"Keep several array lines as a list of lists instead of merging them."`
	Repair      bool     `help:"Try to repair the text when it does not parse as JSON."`
	Highlight   string   `help:"Highlight stdout output: none, ansi or html." short:"H"`
	Stats       bool     `help:"Print element count and size to stderr." short:"s"`
	Preview     bool     `help:"Print the normalized text instead of converting." short:"P"`
	Set         []string `help:"Override a config value, e.g. --set prettyPrint=false." placeholder:"KEY=VALUE"`
	Serve       bool     `help:"Run the HTTP converter instead of converting once."`
	Addr        string   `help:"Listen address for --serve." short:"a"`
	Debug       bool     `help:"Enable debug logging." short:"d"`
	Version     bool     `help:"Show version information." short:"v"`
	Interactive bool     `help:"Run in interactive mode, allowing direct text input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Logger *zap.Logger
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	app := kong.Must(&CLI,
		kong.Name("textjson"),
		kong.Description("Turn pasted Python-style or loosely structured text into JSON"),
		kong.UsageOnError(),
	)

	// No arguments means the user wants to paste text
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	if _, err := app.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("textjson version %s\n", Version)
		return
	}

	cfg, err := buildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	if CLI.Serve {
		if err := serve(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
			os.Exit(1)
		}
		return
	}

	logger, err := logging.NewCLI(cfg.Dev.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	err = run(&Context{Debug: cfg.Dev.Debug, Config: cfg, Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nFor help, run: textjson --help\n")
		os.Exit(1)
	}
}

// buildConfig layers defaults, config file, environment, --set and flags
func buildConfig() (*config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyOverrides(CLI.Set); err != nil {
		return nil, err
	}

	if CLI.Compact {
		cfg.PrettyPrint = false
	}
	if CLI.Separate {
		cfg.CombineArrays = false
	}
	if CLI.Repair {
		cfg.Repair = true
	}
	if CLI.Highlight != "" {
		cfg.Highlight = CLI.Highlight
	}
	if CLI.Addr != "" {
		cfg.Server.Addr = CLI.Addr
	}
	if CLI.Debug {
		cfg.Dev.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// serve runs the HTTP adapter until interrupted
func serve(cfg *config.Config) error {
	logger, err := logging.New(cfg.Dev.Debug)
	if err != nil {
		return errors.NewServerError("failed to create logger", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, logger).Run(ctx)
}

// run executes the main program logic
func run(ctx *Context) error {
	cfg := ctx.Config
	logger := ctx.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	notifier := notify.NewNotifier()
	notifier.Timeout = cfg.Notifications.Timeout
	notifier.ErrorTimeout = cfg.Notifications.ErrorTimeout
	defer notifier.Close()

	// 1. Read raw text
	raw, err := readInput()
	if err != nil {
		printNotification(notifier.Error(errors.UserFriendlyError(err)))
		return err
	}

	conv := converter.NewConverter(logger)
	conv.PreviewLength = cfg.PreviewLength

	// 2. Preview only
	if CLI.Preview {
		p := conv.Preview(raw)
		if p.Waiting {
			fmt.Fprintln(os.Stderr, "Waiting for data...")
			return nil
		}
		return writeOutput(p.Text)
	}

	// 3. Convert
	opts := models.Options{
		PrettyPrint:   cfg.PrettyPrint,
		CombineArrays: cfg.CombineArrays,
		Repair:        cfg.Repair,
	}
	result, err := conv.ConvertAfter(context.Background(), cfg.Delay, raw, opts)
	if err != nil {
		message := errors.UserFriendlyError(err)
		if errors.IsEmptyInput(err) {
			printNotification(notifier.Warning(message))
		} else {
			logger.Error("Conversion error", zap.Error(err))
			printNotification(notifier.Error(message))
		}
		return err
	}

	// 4. Output the result
	out := result.Serialized
	if CLI.Output == "" {
		out = formatter.NewFormatter().Highlight(out, cfg.Highlight)
	}
	if err := writeOutput(out); err != nil {
		printNotification(notifier.Error(errors.UserFriendlyError(err)))
		return err
	}

	if CLI.Stats {
		size := stats.ByteSize(result.Serialized)
		fmt.Fprintf(os.Stderr, "%s, %s\n", stats.ProcessedSummary(result.ElementCount), stats.FormatKB(size))
	}
	for _, skipped := range result.SkippedLines {
		logger.Debug(errors.UserFriendlyError(skipped))
	}
	printNotification(notifier.Success(stats.ConvertedMessage(result.ElementCount)))
	return nil
}

// printNotification writes a notification line to stderr
func printNotification(n notify.Notification) {
	fmt.Fprintf(os.Stderr, "[%s] %s\n", n.Kind, n.Message)
}

// readInput reads raw text from file or stdin
func readInput() (string, error) {
	if CLI.Input != "" {
		return parser.ReadFile(CLI.Input)
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return "", errors.NewInputError("failed to access stdin", err)
	}

	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		if CLI.Interactive {
			return readInteractiveInput()
		}
		return "", errors.NewInputError("no input provided: specify a file with -i or pipe text to stdin", nil)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.NewInputError("failed to read from stdin", err)
	}
	return string(data), nil
}

// writeOutput writes the result to file or stdout
func writeOutput(out string) error {
	if CLI.Output != "" {
		if err := os.WriteFile(CLI.Output, []byte(out+"\n"), 0644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(os.Stderr, "JSON written to %s\n", CLI.Output)
		return nil
	}

	if _, err := fmt.Println(strings.TrimRight(out, "\n")); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput lets users paste text and finish with Ctrl+D (EOF)
func readInteractiveInput() (string, error) {
	fmt.Fprintln(os.Stderr, "textjson Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste your data below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(os.Stdin)
	var builder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		builder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.NewInputError("error reading input", err)
		}
	}

	fmt.Fprintln(os.Stderr, "\nConverting...")
	return builder.String(), nil
}
