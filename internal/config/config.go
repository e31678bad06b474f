package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"
)

// Supported encoder engines
const (
	EngineGoJSON   = "go-json"
	EngineJSONIter = "jsoniter"
)

// Supported key styles for struct fields without a json tag
const (
	KeyStyleNone       = ""
	KeyStyleSnake      = "snake"
	KeyStyleCamel      = "camel"
	KeyStyleLowerCamel = "lower_camel"
	KeyStyleKebab      = "kebab"
)

// DefaultMaxDepth bounds the nesting depth the serializer descends into.
const DefaultMaxDepth = 1000

// Config represents the complete configuration for mirrorjson
type Config struct {
	Output     OutputConfig     `yaml:"output"`
	Encoder    EncoderConfig    `yaml:"encoder"`
	Serializer SerializerConfig `yaml:"serializer"`
	Input      InputConfig      `yaml:"input"`
	Dev        DevConfig        `yaml:"dev"`
}

// OutputConfig controls how JSON bytes are written
type OutputConfig struct {
	Prefix     string `yaml:"prefix"`
	Indent     string `yaml:"indent"`
	EscapeHTML bool   `yaml:"escape_html"`
}

// EncoderConfig selects the JSON encoder backend
type EncoderConfig struct {
	Engine string `yaml:"engine"`
}

// SerializerConfig controls the object-to-JSON conversion
type SerializerConfig struct {
	MaxDepth             int    `yaml:"max_depth"`
	RequireContainerRoot bool   `yaml:"require_container_root"`
	KeyStyle             string `yaml:"key_style"`
}

// InputConfig controls how CLI input documents are decoded
type InputConfig struct {
	Format string `yaml:"format"` // "", "json" or "yaml"
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Indent: "  ",
		},
		Encoder: EncoderConfig{
			Engine: EngineGoJSON,
		},
		Serializer: SerializerConfig{
			MaxDepth: DefaultMaxDepth,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file '%s': %w", path, err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".mirrorjson.yml", ".mirrorjson.yaml", "mirrorjson.yml", "mirrorjson.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks the configuration for unsupported values
func (c *Config) Validate() error {
	switch c.Encoder.Engine {
	case EngineGoJSON, EngineJSONIter:
	default:
		return fmt.Errorf("unknown encoder engine '%s'", c.Encoder.Engine)
	}

	switch c.Serializer.KeyStyle {
	case KeyStyleNone, KeyStyleSnake, KeyStyleCamel, KeyStyleLowerCamel, KeyStyleKebab:
	default:
		return fmt.Errorf("unknown key style '%s'", c.Serializer.KeyStyle)
	}

	if c.Serializer.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive, got %d", c.Serializer.MaxDepth)
	}

	switch strings.ToLower(c.Input.Format) {
	case "", "json", "yaml", "yml":
	default:
		return fmt.Errorf("unknown input format '%s'", c.Input.Format)
	}

	if c.Encoder.Engine == EngineJSONIter {
		if c.Output.Prefix != "" {
			return fmt.Errorf("the %s engine does not support an indent prefix", EngineJSONIter)
		}
		if strings.Trim(c.Output.Indent, " ") != "" {
			return fmt.Errorf("the %s engine only supports space indentation", EngineJSONIter)
		}
	}

	return nil
}

// ApplyKeyStyle returns the JSON key for a struct field name without a json tag
func (c *Config) ApplyKeyStyle(fieldName string) string {
	return ApplyKeyStyle(c.Serializer.KeyStyle, fieldName)
}

// ApplyKeyStyle converts name according to style
func ApplyKeyStyle(style, name string) string {
	switch style {
	case KeyStyleSnake:
		return strcase.ToSnake(name)
	case KeyStyleCamel:
		return strcase.ToCamel(name)
	case KeyStyleLowerCamel:
		return strcase.ToLowerCamel(name)
	case KeyStyleKebab:
		return strcase.ToKebab(name)
	default:
		return name
	}
}

// CLIOverrides holds values given on the command line. Nil pointers and
// empty strings leave the config file value in place.
type CLIOverrides struct {
	Indent     *string
	Engine     string
	Format     string
	KeyStyle   string
	Compact    bool
	StrictRoot bool
	Debug      bool
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, cli CLIOverrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cli.Indent != nil {
		cfg.Output.Indent = *cli.Indent
	}
	if cli.Compact {
		cfg.Output.Prefix = ""
		cfg.Output.Indent = ""
	}
	if cli.Engine != "" {
		cfg.Encoder.Engine = cli.Engine
	}
	if cli.Format != "" {
		cfg.Input.Format = cli.Format
	}
	if cli.KeyStyle != "" {
		cfg.Serializer.KeyStyle = cli.KeyStyle
	}

	// Boolean flags can only switch behavior on
	if cli.StrictRoot {
		cfg.Serializer.RequireContainerRoot = true
	}
	if cli.Debug {
		cfg.Dev.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
