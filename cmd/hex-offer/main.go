package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/osamarehman/hex-docs/internal/cache"
	"github.com/osamarehman/hex-docs/internal/config"
	"github.com/osamarehman/hex-docs/internal/hexapi"
	"github.com/osamarehman/hex-docs/internal/offer"
	"github.com/osamarehman/hex-docs/internal/server"
	"github.com/osamarehman/hex-docs/pkg/constants"
	"github.com/osamarehman/hex-docs/pkg/output"
	"github.com/osamarehman/hex-docs/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
	case "json":
		zapConfig = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

// loadConfiguration reads the config file. A missing default file falls
// back to built-in defaults; a missing explicit file is an error.
func loadConfiguration(path string, explicit bool) (*config.Configuration, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) && !explicit {
		return config.Default(), nil
	}
	return config.LoadConfiguration(path)
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration overrides")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	productsFile := flag.String("products", "", "path to a getCalculation response (JSON array of products)")
	selectFlag := flag.String("select", "", "product slot to quote with interactive terms: A, B or C")
	downPayment := flag.Float64("down-payment", -1, "interactive down payment in percent (default from config)")
	term := flag.Int("term", 0, "interactive term in months (default from config)")
	serve := flag.Bool("serve", false, "run the HTTP API instead of printing quotes")
	flag.Parse()

	explicitConfig := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicitConfig = true
		}
	})

	conf, err := loadConfiguration(*configLocation, explicitConfig)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	calculator := offer.NewCalculator(logger, conf.Financing.Catalog)

	if *serve {
		if err := runServer(logger, conf, calculator, *serverConfigLocation); err != nil {
			logger.Fatal("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		return
	}

	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	if *productsFile == "" {
		logger.Fatal("either -products or -serve is required",
			zap.String("op", "main"),
		)
	}

	data, err := os.ReadFile(*productsFile)
	if err != nil {
		logger.Fatal("failed to read products file",
			zap.String("op", "main"),
			zap.String("path", *productsFile),
			zap.Error(err),
		)
	}
	products, err := offer.DecodeProducts(data)
	if err != nil {
		logger.Fatal("failed to decode products",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	result, err := calculator.Catalog(products)
	if err != nil {
		logger.Fatal("failed to compute catalog",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	terms := conf.Financing.Interactive
	if *downPayment >= 0 {
		terms.DownPaymentPercent = *downPayment
	}
	if *term > 0 {
		terms.TermMonths = *term
	}

	if err := printQuotes(os.Stdout, calculator, products, result, outputFormat, *selectFlag, terms); err != nil {
		logger.Fatal("failed to compute interactive quote",
			zap.String("op", "main"),
			zap.String("slot", *selectFlag),
			zap.Error(err),
		)
	}
}

func printQuotes(w io.Writer, calculator *offer.Calculator, products []offer.Product, result offer.CatalogResult, outputFormat, slot string, terms offer.Terms) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(w, result)
	case constants.OutputFormatCSV:
		output.CsvFormat(w, result)
	}

	if slot == "" {
		return nil
	}
	if err := validation.ValidateTerms(terms.DownPaymentPercent, terms.TermMonths); err != nil {
		return err
	}
	quote, err := calculator.Interactive(products, offer.Selection{Slot: slot, Terms: terms})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w)
	output.QuoteFormat(w, quote)
	return nil
}

func runServer(logger *zap.Logger, conf *config.Configuration, calculator *offer.Calculator, serverConfigPath string) error {
	serverConf, err := server.LoadConfig(serverConfigPath, conf.Server, conf.Logging)
	if err != nil {
		return err
	}

	lookupCache := cache.New(conf.Cache.Backend(), logger)
	if closer, ok := lookupCache.(io.Closer); ok {
		defer func() {
			_ = closer.Close()
		}()
	}

	client := hexapi.NewClient(logger, hexapi.Options{
		BaseURL:    conf.API.BaseURL,
		Timeout:    conf.API.Timeout,
		MaxRetries: conf.API.MaxRetries,
		CacheTTL:   conf.Cache.TTL,
		Cache:      lookupCache,
	})

	handler := server.NewHandler(logger, calculator, client, server.Options{
		MaxBodySize:      serverConf.BodySizeBytes(),
		Version:          version,
		InteractiveTerms: conf.Financing.Interactive,
	})

	srv := &http.Server{
		Addr:              serverConf.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("op", "main.runServer"),
			zap.String("address", serverConf.Address),
			zap.Int64("maxBodySize", serverConf.BodySizeBytes()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server", zap.String("op", "main.runServer"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
