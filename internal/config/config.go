package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix         = "FUTU_MCP"
	DefaultConfigFile = "futu-mcp.yaml"
	DefaultEnvFile    = ".env"

	DefaultScriptsDir       = "./scripts"
	DefaultInterpreter      = "python"
	DefaultTimeout          = 30 * time.Second
	DefaultMaxOutputBytes   = 10 << 20
	DefaultBatchConcurrency = 4
	DefaultLogCapacity      = 64
	DefaultShutdownTimeout  = 10 * time.Second
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// HTTPConfig は HTTP 待ち受けの設定。Addr が空なら stdio のみ。
type HTTPConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Config は起動時に解決した設定。
type Config struct {
	ScriptsDir       string
	Interpreter      string
	Timeout          time.Duration
	MaxOutputBytes   int64
	Debug            bool
	ToolsDir         string
	HTTP             HTTPConfig
	BatchConcurrency int
	LogCapacity      int

	// ConfigFile は実際に読み込んだ設定ファイル（なければ空）。
	ConfigFile string
}

type rawConfig struct {
	ScriptsDir     string `mapstructure:"scripts_dir"`
	Interpreter    string `mapstructure:"interpreter"`
	Timeout        string `mapstructure:"timeout"`
	MaxOutputBytes int64  `mapstructure:"max_output_bytes"`
	Debug          bool   `mapstructure:"debug"`
	ToolsDir       string `mapstructure:"tools_dir"`
	HTTP           struct {
		Addr            string `mapstructure:"addr"`
		ShutdownTimeout string `mapstructure:"shutdown_timeout"`
	} `mapstructure:"http"`
	Batch struct {
		Concurrency int `mapstructure:"concurrency"`
	} `mapstructure:"batch"`
	LogStore struct {
		Capacity int `mapstructure:"capacity"`
	} `mapstructure:"log_store"`
}

// FlagBindings は viper キー → フラグ名の対応。
var FlagBindings = map[string]string{
	"scripts_dir":       "scripts-dir",
	"interpreter":       "interpreter",
	"timeout":           "timeout",
	"max_output_bytes":  "max-output-bytes",
	"debug":             "debug",
	"tools_dir":         "tools-dir",
	"http.addr":         "http",
	"batch.concurrency": "concurrency",
}

// Options は Load の入力。
type Options struct {
	// ConfigFile を指定した場合、存在しなければエラー。
	// 空なら カレントディレクトリの futu-mcp.yaml を（あれば）読む。
	ConfigFile string
	// EnvFile は環境変数に読み込む .env。空なら ".env"。存在しなくてよい。
	EnvFile string
	Flags   *pflag.FlagSet
}

// Load はデフォルト → 設定ファイル → 環境変数（FUTU_MCP_*）→ フラグ の順に解決する。
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := loadDotEnv(envFile); err != nil {
		return nil, fmt.Errorf("config: failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("scripts_dir", DefaultScriptsDir)
	v.SetDefault("interpreter", DefaultInterpreter)
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("max_output_bytes", DefaultMaxOutputBytes)
	v.SetDefault("debug", false)
	v.SetDefault("tools_dir", "")
	v.SetDefault("http.addr", "")
	v.SetDefault("http.shutdown_timeout", DefaultShutdownTimeout.String())
	v.SetDefault("batch.concurrency", DefaultBatchConcurrency)
	v.SetDefault("log_store.capacity", DefaultLogCapacity)

	if opts.Flags != nil {
		for key, name := range FlagBindings {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: bind flag %s: %w", name, err)
				}
			}
		}
	}

	used, err := readConfigFile(v, opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	var raw rawConfig
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		Result:           &raw,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	timeout, err := parsePositiveDuration("timeout", raw.Timeout)
	if err != nil {
		return nil, err
	}
	shutdown, err := parsePositiveDuration("http.shutdown_timeout", raw.HTTP.ShutdownTimeout)
	if err != nil {
		return nil, err
	}
	if raw.MaxOutputBytes <= 0 {
		return nil, fmt.Errorf("config: max_output_bytes must be positive, got %d", raw.MaxOutputBytes)
	}
	if raw.Batch.Concurrency <= 0 {
		return nil, fmt.Errorf("config: batch.concurrency must be positive, got %d", raw.Batch.Concurrency)
	}

	cfg := &Config{
		ScriptsDir:       expandEnvString(raw.ScriptsDir),
		Interpreter:      expandEnvString(raw.Interpreter),
		Timeout:          timeout,
		MaxOutputBytes:   raw.MaxOutputBytes,
		Debug:            raw.Debug,
		ToolsDir:         expandEnvString(raw.ToolsDir),
		HTTP:             HTTPConfig{Addr: raw.HTTP.Addr, ShutdownTimeout: shutdown},
		BatchConcurrency: raw.Batch.Concurrency,
		LogCapacity:      raw.LogStore.Capacity,
		ConfigFile:       used,
	}
	if strings.TrimSpace(cfg.Interpreter) == "" {
		return nil, errors.New("config: interpreter must not be empty")
	}
	if cfg.LogCapacity <= 0 {
		cfg.LogCapacity = DefaultLogCapacity
	}
	return cfg, nil
}

// readConfigFile は設定ファイルを読む。明示されていないファイルが無いのは正常。
func readConfigFile(v *viper.Viper, path string) (string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return "", nil
		}
		return "", fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return path, nil
}

func parsePositiveDuration(key, s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s duration %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s must be positive, got %s", key, d)
	}
	return d, nil
}

// loadDotEnv は .env を読み、未設定のキーだけ環境変数に入れる。
// ${VAR} はホスト環境にあればその値で先に展開し、残りは .env 内の定義で解決する。
func loadDotEnv(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	env, err := godotenv.Unmarshal(expandHostVars(string(data)))
	if err != nil {
		return err
	}
	for key, value := range env {
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}

// expandHostVars はホスト環境に存在する ${VAR} だけを展開する。
func expandHostVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if v, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return v
		}
		return match
	})
}

// expandEnvString は文字列内の ${VAR} をホスト環境変数で展開する
func expandEnvString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}
