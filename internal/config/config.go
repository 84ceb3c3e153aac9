package config // import "github.com/Xunop/e-library/internal/config"

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "ELIB"

var (
	Opts *Options
	v    = viper.New()
)

// GetConfig loads the default options overridden by ELIB_* environment variables.
func GetConfig() (*Options, error) {
	return load("")
}

// ParseFile loads the options from file, then applies ELIB_* environment variables.
func ParseFile(file string) (*Options, error) {
	// Check if file exists
	if _, err := os.Stat(file); err != nil {
		return nil, errors.Wrapf(err, "unable to access config file %s", file)
	}
	return load(file)
}

func load(file string) (*Options, error) {
	opts := GetDefaultOptions()

	v = viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, opts)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "unable to read config file %s", file)
		}
	}
	if err := unmarshal(v, opts); err != nil {
		return nil, errors.Wrap(err, "unable to decode options")
	}

	dataDir, err := checkDataDir(opts.Data)
	if err != nil {
		fmt.Println("Error checking data directory: ", err)
		return nil, err
	}
	opts.Data = dataDir

	Opts = opts
	return Opts, nil
}

// unmarshal decodes v into opts. List options are cleared first, mapstructure
// would otherwise decode a shorter list over the front of the old one.
func unmarshal(v *viper.Viper, opts *Options) error {
	opts.SupportedTypes = nil
	opts.CORSAllowedOrigins = nil
	if err := v.Unmarshal(opts); err != nil {
		return err
	}
	opts.SupportedTypes = normalizeTypes(opts.SupportedTypes)
	return nil
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper, opts *Options) {
	v.SetDefault("log_file", opts.LogFile)
	v.SetDefault("log_level", opts.LogLevel)
	v.SetDefault("log_file_max_size", opts.LogFileMaxSize)
	v.SetDefault("log_file_max_backups", opts.LogFileMaxBackups)
	v.SetDefault("log_file_max_age", opts.LogFileMaxAge)
	v.SetDefault("log_compress", opts.LogCompress)
	v.SetDefault("port", opts.Port)
	v.SetDefault("host", opts.Host)
	v.SetDefault("data", opts.Data)
	v.SetDefault("books_dir", opts.BooksDir)
	v.SetDefault("metadata_file", opts.MetadataFile)
	v.SetDefault("max_upload_size", opts.MaxUploadSize)
	v.SetDefault("supported_types", opts.SupportedTypes)
	v.SetDefault("default_field", opts.DefaultField)
	v.SetDefault("default_type", opts.DefaultType)
	v.SetDefault("cors_allowed_origins", opts.CORSAllowedOrigins)
	v.SetDefault("upload_rate_limit", opts.UploadRateLimit)
	v.SetDefault("upload_rate_burst", opts.UploadRateBurst)
	v.SetDefault("worker_pool_size", opts.WorkerPoolSize)
	v.SetDefault("read_timeout", opts.ReadTimeout)
	v.SetDefault("write_timeout", opts.WriteTimeout)
}

// WatchFile calls onChange with freshly decoded options each time the loaded
// config file is written. Only settings that can change at runtime should be
// read from the callback; the rest need a restart.
func WatchFile(onChange func(*Options)) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		opts := *Opts
		if err := unmarshal(v, &opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error reloading config file %s: %v\n", e.Name, err)
			return
		}
		onChange(&opts)
	})
	v.WatchConfig()
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
		}
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			if dataDir == defaultData && errors.Is(err, os.ErrPermission) {
				return homeDataDir()
			}
			return "", errors.Wrapf(err, "unable to create data folder %s", dataDir)
		}
	}
	return dataDir, nil
}

// homeDataDir falls back to ~/.e-library when the default data folder can't be created.
func homeDataDir() (string, error) {
	currentUser, err := user.Current()
	if err != nil {
		return "", errors.Wrap(err, "unable to get current user")
	}
	if currentUser.HomeDir == "" {
		return "", errors.New("unable to get home directory")
	}
	fmt.Println("Permission denied, trying to use data folder in user's home directory")

	dir := filepath.Join(currentUser.HomeDir, ".e-library")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "unable to create data folder %s", dir)
	}
	return dir, nil
}

func normalizeTypes(types []string) []string {
	normalized := make([]string, 0, len(types))
	for _, t := range types {
		t = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "."))
		if t != "" {
			normalized = append(normalized, t)
		}
	}
	return normalized
}

// IsSupportedType checks if the file extension is supported
func (o *Options) IsSupportedType(fileType string) bool {
	if len(o.SupportedTypes) == 0 {
		return false
	}

	fileType = strings.ToLower(strings.TrimPrefix(fileType, "."))
	for _, t := range o.SupportedTypes {
		if t == fileType {
			return true
		}
	}

	return false
}
