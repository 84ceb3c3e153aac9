package config // import "github.com/Xunop/e-library/internal/config"

import (
	"path/filepath"
	"time"
)

const (
	defaultLogFile           = "e-library.log"
	defaultLogLevel          = "info"
	defaultLogFileMaxSize    = 20
	defaultLogFileMaxBackups = 3
	defaultLogFileMaxAge     = 28
	defaultLogCompress       = false
	defaultPort              = 5000
	defaultHost              = "0.0.0.0"
	defaultData              = "/var/opt/e-library"
	defaultBooksDir          = "books-full"
	defaultMetadataFile      = "metadata-full.json"
	defaultMaxUploadSize     = 100
	defaultField             = "Uncategorized"
	defaultType              = "book"
	defaultUploadRateLimit   = 30
	defaultUploadRateBurst   = 5
	defaultWorkerPoolSize    = 4
	defaultReadTimeout       = 60
	defaultWriteTimeout      = 300
)

var (
	defaultSupportedTypes     = []string{"pdf", "epub", "mobi"}
	defaultCORSAllowedOrigins = []string{"*"}
)

// Why use mapstructure instead of json, if use json as field tags, it can't recgnize the field, since the viper use mapstructure.
// see: https://pkg.go.dev/github.com/mitchellh/mapstructure#hdr-Field_Tags
type Options struct {
	// LogFile is the file to write logs to
	LogFile string `mapstructure:"log_file"`
	// LogLevel is the level of logging to show
	LogLevel string `mapstructure:"log_level"`
	// LogFilemaxSize is the maximum size of the log file before it is rotated
	LogFileMaxSize int `mapstructure:"log_file_max_size"`
	// LogFileMaxBackups is the maximum number of log files to keep
	LogFileMaxBackups int `mapstructure:"log_file_max_backups"`
	// LogFileMaxAge is the maximum number of days to keep a log file
	LogFileMaxAge int `mapstructure:"log_file_max_age"`
	// LogCompress is whether or not to compress the log files
	LogCompress bool `mapstructure:"log_compress"`
	// Port is the port to listen on
	Port int `mapstructure:"port"`
	// Host is the host to listen on
	Host string `mapstructure:"host"`
	// Data is the directory to store data
	Data string `mapstructure:"data"`
	// BooksDir is the repository root holding one directory per field.
	// Relative values are resolved against Data.
	BooksDir string `mapstructure:"books_dir"`
	// MetadataFile is the JSON document holding every book record.
	// Relative values are resolved against Data.
	MetadataFile string `mapstructure:"metadata_file"`
	// MaxUploadSize is the maximum size of the upload, in MiB
	MaxUploadSize int64 `mapstructure:"max_upload_size"`
	// SupportedTypes is the supported extensions of books, without the dot
	SupportedTypes []string `mapstructure:"supported_types"`
	DefaultField   string   `mapstructure:"default_field"`
	DefaultType    string   `mapstructure:"default_type"`
	// CORSAllowedOrigins lists the origins allowed to call the API, "*" allows any
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	// UploadRateLimit is the number of uploads a client may do per minute, 0 disables it
	UploadRateLimit int `mapstructure:"upload_rate_limit"`
	UploadRateBurst int `mapstructure:"upload_rate_burst"`
	WorkerPoolSize  int `mapstructure:"worker_pool_size"`
	// ReadTimeout and WriteTimeout are in seconds
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

func GetDefaultOptions() *Options {
	Opts = &Options{
		LogFile:            defaultLogFile,
		LogLevel:           defaultLogLevel,
		LogFileMaxSize:     defaultLogFileMaxSize,
		LogFileMaxBackups:  defaultLogFileMaxBackups,
		LogFileMaxAge:      defaultLogFileMaxAge,
		LogCompress:        defaultLogCompress,
		Port:               defaultPort,
		Host:               defaultHost,
		Data:               defaultData,
		BooksDir:           defaultBooksDir,
		MetadataFile:       defaultMetadataFile,
		MaxUploadSize:      defaultMaxUploadSize,
		SupportedTypes:     append([]string(nil), defaultSupportedTypes...),
		DefaultField:       defaultField,
		DefaultType:        defaultType,
		CORSAllowedOrigins: append([]string(nil), defaultCORSAllowedOrigins...),
		UploadRateLimit:    defaultUploadRateLimit,
		UploadRateBurst:    defaultUploadRateBurst,
		WorkerPoolSize:     defaultWorkerPoolSize,
		ReadTimeout:        defaultReadTimeout,
		WriteTimeout:       defaultWriteTimeout,
	}
	return Opts
}

// BooksPath returns the absolute repository root.
func (o *Options) BooksPath() string {
	return o.resolve(o.BooksDir)
}

// MetadataPath returns the absolute path of the metadata document.
func (o *Options) MetadataPath() string {
	return o.resolve(o.MetadataFile)
}

func (o *Options) ReadTimeoutDuration() time.Duration {
	return time.Duration(o.ReadTimeout) * time.Second
}

func (o *Options) WriteTimeoutDuration() time.Duration {
	return time.Duration(o.WriteTimeout) * time.Second
}

func (o *Options) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(o.Data, p)
}
