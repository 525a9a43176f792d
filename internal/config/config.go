package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tickerloom-cli/internal/utils"
)

// Dir is the per-user directory under $HOME holding config and state.
const Dir = ".tickerloom"

// Global configuration structure.
type Global struct {
	WorkspacesDir string `mapstructure:"workspaces_dir" yaml:"workspaces_dir"`
	SampleRows    int    `mapstructure:"sample_rows" yaml:"sample_rows" validate:"min=1,max=1000"`
	MaxFileMB     int    `mapstructure:"max_file_mb" yaml:"max_file_mb" validate:"min=1,max=1024"`
	// Seed for synthetic overlays; 0 derives one from the clock.
	Seed uint64 `mapstructure:"seed" yaml:"seed"`
	// HistoryDB is the SQLite file for ingestion history; empty disables recording.
	HistoryDB    string `mapstructure:"history_db" yaml:"history_db"`
	ExportFormat string `mapstructure:"export_format" yaml:"export_format" validate:"oneof=csv json parquet"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn warning error"`

	// HTTP server
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr" validate:"hostname_port"`

	BatchWorkers int `mapstructure:"batch_workers" yaml:"batch_workers" validate:"min=1,max=64"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"workspaces_dir", "sample_rows", "max_file_mb", "seed", "history_db",
	"export_format", "log_level", "listen_addr", "batch_workers",
}

var validate = validator.New()

// Validate checks value ranges and enumerations.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q (got %v)", yamlKey(fe.StructField()), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func yamlKey(field string) string {
	switch field {
	case "WorkspacesDir":
		return "workspaces_dir"
	case "SampleRows":
		return "sample_rows"
	case "MaxFileMB":
		return "max_file_mb"
	case "HistoryDB":
		return "history_db"
	case "ExportFormat":
		return "export_format"
	case "LogLevel":
		return "log_level"
	case "ListenAddr":
		return "listen_addr"
	case "BatchWorkers":
		return "batch_workers"
	}
	return strings.ToLower(field)
}

// Get returns the display value of key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "workspaces_dir":
		return c.WorkspacesDir, nil
	case "sample_rows":
		return strconv.Itoa(c.SampleRows), nil
	case "max_file_mb":
		return strconv.Itoa(c.MaxFileMB), nil
	case "seed":
		return strconv.FormatUint(c.Seed, 10), nil
	case "history_db":
		return c.HistoryDB, nil
	case "export_format":
		return c.ExportFormat, nil
	case "log_level":
		return c.LogLevel, nil
	case "listen_addr":
		return c.ListenAddr, nil
	case "batch_workers":
		return strconv.Itoa(c.BatchWorkers), nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set parses val into key and validates the result. On error c is unchanged.
func (c *Global) Set(key, val string) error {
	next := *c
	switch key {
	case "workspaces_dir":
		next.WorkspacesDir = val
	case "sample_rows", "max_file_mb", "batch_workers":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		switch key {
		case "sample_rows":
			next.SampleRows = i
		case "max_file_mb":
			next.MaxFileMB = i
		default:
			next.BatchWorkers = i
		}
	case "seed":
		u, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed: %v", val)
		}
		next.Seed = u
	case "history_db":
		next.HistoryDB = val
	case "export_format":
		next.ExportFormat = strings.ToLower(val)
	case "log_level":
		next.LogLevel = strings.ToLower(val)
	case "listen_addr":
		next.ListenAddr = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// MaxBytes converts MaxFileMB to a byte limit.
func (c *Global) MaxBytes() int64 { return int64(c.MaxFileMB) << 20 }

// Default returns the built-in settings.
func Default() *Global {
	return &Global{
		WorkspacesDir: "~/" + Dir + "/workspaces",
		SampleRows:    10,
		MaxFileMB:     10,
		HistoryDB:     "~/" + Dir + "/history.db",
		ExportFormat:  "csv",
		LogLevel:      "info",
		ListenAddr:    "127.0.0.1:8088",
		BatchWorkers:  4,
	}
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tickerloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, Dir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file (cfgFile or ~/.tickerloom/config.yaml) > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TICKERLOOM")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("workspaces_dir", d.WorkspacesDir)
	v.SetDefault("sample_rows", d.SampleRows)
	v.SetDefault("max_file_mb", d.MaxFileMB)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("history_db", d.HistoryDB)
	v.SetDefault("export_format", d.ExportFormat)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("batch_workers", d.BatchWorkers)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, Dir)
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.WorkspacesDir == "" {
		c.WorkspacesDir = d.WorkspacesDir
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ResolvedWorkspacesDir expands ~ in WorkspacesDir and creates the directory.
func (c *Global) ResolvedWorkspacesDir() (string, error) {
	dir, err := utils.ExpandHome(c.WorkspacesDir)
	if err != nil {
		return "", err
	}
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// ResolvedHistoryDB expands ~ in HistoryDB and creates its parent directory.
// An empty HistoryDB yields "".
func (c *Global) ResolvedHistoryDB() (string, error) {
	if strings.TrimSpace(c.HistoryDB) == "" {
		return "", nil
	}
	path, err := utils.ExpandHome(c.HistoryDB)
	if err != nil {
		return "", err
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return "", err
	}
	return path, nil
}
