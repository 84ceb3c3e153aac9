package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/config"
	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/scanner"
	"github.com/Xunop/e-library/internal/server"
	"github.com/Xunop/e-library/internal/storage"
	"github.com/Xunop/e-library/internal/store"
	"github.com/Xunop/e-library/internal/version"
)

const (
	greetingBanner = `
███████       ██      ██ ██████  ██████   █████  ██████  ██    ██
██            ██      ██ ██   ██ ██   ██ ██   ██ ██   ██  ██  ██
█████   █████ ██      ██ ██████  ██████  ███████ ██████    ████
██            ██      ██ ██   ██ ██   ██ ██   ██ ██   ██    ██
███████       ███████ ██ ██████  ██   ██ ██   ██ ██   ██    ██
`
	shutdownTimeout = 10 * time.Second
)

var (
	configFile string
	data       string
	host       string
	port       int
	output     string
	opts       *config.Options

	rootCmd = &cobra.Command{
		Use:               "e-library",
		Short:             "E-Library is a minimal digital library server",
		PersistentPreRunE: setup,
		RunE:              serve,
		SilenceUsage:      true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  serve,
	}

	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "Rebuild the metadata document from the books folder",
		RunE:  scan,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		// No config or logger needed
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.GetCurrentVersion())
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (toml, yaml or json)")
	rootCmd.PersistentFlags().StringVarP(&data, "data", "d", "", "data directory")
	rootCmd.PersistentFlags().StringVar(&host, "host", "", "address to listen on")
	rootCmd.PersistentFlags().IntVarP(&port, "port", "p", 0, "port to listen on")
	scanCmd.Flags().StringVarP(&output, "output", "o", "", "metadata file to write, defaults to the configured one")

	rootCmd.AddCommand(serveCmd, scanCmd, versionCmd)
}

// setup loads .env, the config and the flags, in increasing priority, then
// the logger.
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "unable to load .env file")
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		os.Setenv("ELIB_DATA", data)
	}
	if flags.Changed("host") {
		os.Setenv("ELIB_HOST", host)
	}
	if flags.Changed("port") {
		os.Setenv("ELIB_PORT", strconv.Itoa(port))
	}

	var err error
	if configFile != "" {
		opts, err = config.ParseFile(configFile)
	} else {
		opts, err = config.GetConfig()
	}
	if err != nil {
		return err
	}

	log.Logger = log.NewLogger(opts)
	config.WatchFile(func(o *config.Options) {
		log.SetLevel(o.LogLevel)
		log.Info("Config file reloaded", zap.String("log_level", o.LogLevel))
	})
	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	defer log.Logger.Sync()

	files := storage.NewLocalStorage(opts.BooksPath())
	if err := files.Init(); err != nil {
		return err
	}
	metadata := store.NewMetadataFile(opts.MetadataPath())
	if err := metadata.Init(); err != nil {
		return err
	}

	s := store.NewStore(metadata, files, opts)
	if err := s.Ping(); err != nil {
		log.Warn("Metadata document is unreadable, serving an empty library", zap.Error(err))
	}

	fmt.Print(greetingBanner)
	log.Info("Server started",
		zap.String("version", version.GetCurrentVersion()),
		zap.String("books", opts.BooksPath()),
		zap.String("metadata", opts.MetadataPath()))
	srv := server.StartServer(s, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server shutdown")
	}
	return nil
}

func scan(cmd *cobra.Command, args []string) error {
	defer log.Logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	library, err := scanner.New(opts.BooksPath(), opts).Scan(ctx)
	if err != nil {
		return err
	}

	target := output
	if target == "" {
		target = opts.MetadataPath()
	}
	metadata := store.NewMetadataFile(target)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, "unable to create output folder for %s", target)
	}
	if err := metadata.Save(library); err != nil {
		return err
	}

	fmt.Printf("Wrote %d book(s) in %d field(s) to %s\n", library.TotalBooks, len(library.Fields), target)
	for _, field := range library.Fields {
		count := 0
		for _, book := range library.Books {
			if book.Field == field {
				count++
			}
		}
		fmt.Printf("  %s: %d book(s)\n", field, count)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
