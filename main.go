package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/mcncl/mirrorjson/internal/config"
	"github.com/mcncl/mirrorjson/internal/encoder"
	"github.com/mcncl/mirrorjson/internal/errors"
	"github.com/mcncl/mirrorjson/internal/formatter"
	"github.com/mcncl/mirrorjson/internal/models"
	"github.com/mcncl/mirrorjson/internal/parser"
	"github.com/mcncl/mirrorjson/internal/serializer"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string `help:"Path to input JSON or YAML file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	From        string `help:"Input format: json or yaml. Detected from the file extension or the content when empty."`
	Indent      string `help:"Indentation used for JSON output."`
	Compact     bool   `help:"Write compact JSON without indentation."`
	Engine      string `help:"JSON encoder engine: go-json or jsoniter."`
	KeyStyle    string `help:"Rename untagged struct fields: snake, camel, lower_camel or kebab." name:"key-style"`
	Pretty      bool   `help:"Pretty-print JSON or XML text instead of serializing it. Other text is echoed unchanged."`
	StrictRoot  bool   `help:"Reject documents whose root is not an object or an array." name:"strict-root"`
	Config      string `help:"Path to a configuration file." short:"c" type:"path"`
	Debug       bool   `help:"Enable debug logging." short:"d"`
	Version     bool   `help:"Show version information." short:"v"`
	Interactive bool   `help:"Run in interactive mode, allowing direct input with Ctrl+D to process." short:"I"`
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
	parser := kong.Must(&CLI,
		kong.Name("mirrorjson"),
		kong.Description("A tool to render JSON and YAML documents as canonical JSON"),
		kong.UsageOnError(),
	)

	// No arguments means interactive mode
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	if _, err := parser.Parse(os.Args[1:]); err != nil {
		// kong.UsageOnError() has already printed the usage
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("mirrorjson version %s\n", Version)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Dev.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	err = run(&Context{Debug: cfg.Dev.Debug, Config: cfg, Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: mirrorjson --help\n")
		os.Exit(1)
	}
}

// loadConfig merges the config file (explicit or discovered) with CLI flags
func loadConfig() (*config.Config, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	overrides := config.CLIOverrides{
		Engine:     CLI.Engine,
		Format:     CLI.From,
		KeyStyle:   CLI.KeyStyle,
		Compact:    CLI.Compact,
		StrictRoot: CLI.StrictRoot,
		Debug:      CLI.Debug,
	}
	if CLI.Indent != "" {
		overrides.Indent = &CLI.Indent
	}
	return config.LoadConfigWithCLI(configPath, overrides)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// run executes the main program logic
func run(ctx *Context) error {
	cfg := ctx.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	logger := ctx.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if CLI.Pretty {
		return prettyPrint(cfg, logger)
	}

	// 1. Decode the input document
	doc, err := parseInput(cfg.Input.Format)
	if err != nil {
		return err
	}
	logger.Debug("decoded input", zap.String("format", doc.Format))

	// 2. Serialize the document root
	s := serializer.New(serializer.WithConfig(cfg), serializer.WithLogger(logger))
	data, err := s.Serialize(doc.Root)
	if err != nil {
		return err
	}

	// 3. Output the result
	return writeOutput(string(data))
}

// prettyPrint re-renders JSON or XML text and passes anything else through
func prettyPrint(cfg *config.Config, logger *zap.Logger) error {
	text, err := readInput()
	if err != nil {
		return err
	}

	engine, err := encoder.Lookup(cfg.Encoder.Engine)
	if err != nil {
		return errors.NewConfigError("unknown encoder engine", err)
	}
	indent := cfg.Output.Indent
	if indent == "" {
		indent = "  "
	}

	logger.Debug("pretty-printing input", zap.String("engine", engine.Name()), zap.Int("bytes", len(text)))
	return writeOutput(formatter.NewFormatterWith(engine, indent).PrettyPrint(text))
}

// parseInput decodes a document from file or stdin
func parseInput(format string) (models.Document, error) {
	if CLI.Input != "" {
		return parser.ParseFile(CLI.Input, format)
	}

	text, err := readInput()
	if err != nil {
		return models.Document{}, err
	}
	return parser.ParseString(text, format)
}

// readInput returns the raw input text from file, piped stdin or interactive paste
func readInput() (string, error) {
	if CLI.Input != "" {
		data, err := parser.ReadFile(CLI.Input)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return "", errors.NewInputError("failed to access stdin", err)
	}

	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal is interactive (not piped)
		if CLI.Interactive {
			return readInteractiveInput()
		}
		return "", errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.NewInputError("failed to read from stdin", err)
	}
	if len(data) == 0 {
		return "", errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return string(data), nil
}

// writeOutput writes text to file or stdout
func writeOutput(text string) error {
	if CLI.Output != "" {
		err := os.WriteFile(CLI.Output, []byte(text), 0644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(os.Stderr, "Output written to %s\n", CLI.Output)
		return nil
	}

	_, err := fmt.Println(strings.TrimSpace(text))
	if err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput lets users paste a document and signal completion
// with Ctrl+D (EOF)
func readInteractiveInput() (string, error) {
	fmt.Fprintln(os.Stderr, "mirrorjson Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste your JSON or YAML below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(os.Stdin)
	var builder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			builder.WriteString(line)
			break
		}
		if err != nil {
			return "", errors.NewInputError("error reading input", err)
		}
		builder.WriteString(line)
	}

	text := builder.String()
	if len(text) == 0 {
		return "", errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing input...")
	return text, nil
}
