package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"google.golang.org/api/option"

	"github.com/zombor/invoice-extractor/internal/extraction"
	"github.com/zombor/invoice-extractor/internal/invoice"
	"github.com/zombor/invoice-extractor/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

type config struct {
	port              int
	dbPath            string
	storagePath       string
	ocr               string
	visionKey         string
	visionCredentials string
	geminiKey         string
	geminiModel       string
	ollamaURL         string
	ollamaModel       string
	ocrTimeout        time.Duration
	workers           int
	authUser          string
	authPass          string
	debug             bool
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("invoice-extractor")
	var (
		port              = fs.IntLong("port", 8080, "HTTP server port")
		dbPath            = fs.StringLong("db", "invoice-extractor.db", "History database file path")
		storagePath       = fs.StringLong("storage", "./invoices", "Uploaded image directory")
		ocr               = fs.StringLong("ocr", "vision", "OCR provider: 'vision', 'gemini' or 'ollama'")
		visionKey         = fs.StringLong("vision-key", "", "Google Cloud Vision API key (defaults to application credentials)")
		visionCredentials = fs.StringLong("vision-credentials", "", "Google Cloud service account JSON file")
		geminiKey         = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel       = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL         = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel       = fs.StringLong("ollama-model", "qwen2.5vl", "Ollama vision model name")
		ocrTimeout        = fs.DurationLong("ocr-timeout", 60*time.Second, "Timeout for a single OCR request")
		workers           = fs.IntLong("workers", 4, "Concurrent extractions in batch mode")
		authUser          = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass          = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		debug             = fs.BoolLong("debug", "Log OCR text and other debug output")
		showVersion       = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("INVOICE_EXTRACTOR"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	cfg := config{
		port:              *port,
		dbPath:            *dbPath,
		storagePath:       *storagePath,
		ocr:               *ocr,
		visionKey:         *visionKey,
		visionCredentials: *visionCredentials,
		geminiKey:         *geminiKey,
		geminiModel:       *geminiModel,
		ollamaURL:         *ollamaURL,
		ollamaModel:       *ollamaModel,
		ocrTimeout:        *ocrTimeout,
		workers:           *workers,
		authUser:          *authUser,
		authPass:          *authPass,
		debug:             *debug,
	}

	level := slog.LevelInfo
	if cfg.debug {
		level = slog.LevelDebug
	}
	// Logs go to stderr so batch output on stdout stays machine readable.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	scanner, err := newScanner(cfg)
	if err != nil {
		slog.Error("Failed to initialize OCR provider", "provider", cfg.ocr, "error", err)
		os.Exit(1)
	}
	defer scanner.Close()

	pipeline := extraction.NewPipeline(scanner)

	if files := fs.GetArgs(); len(files) > 0 {
		if err := runBatch(os.Stdout, pipeline, files, cfg.workers); err != nil {
			slog.Error("Batch extraction failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := runServer(cfg, pipeline); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func newScanner(cfg config) (scanning.Scanner, error) {
	switch cfg.ocr {
	case "vision":
		var opts []option.ClientOption
		switch {
		case cfg.visionKey != "":
			opts = append(opts, option.WithAPIKey(cfg.visionKey))
		case cfg.visionCredentials != "":
			opts = append(opts, option.WithCredentialsFile(cfg.visionCredentials))
		}
		slog.Info("Initializing Google Cloud Vision scanner...")
		return scanning.NewVision(cfg.ocrTimeout, opts...)
	case "gemini":
		apiKey := cfg.geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("gemini API key is required: set --gemini-key or GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini scanner...", "model", cfg.geminiModel)
		return scanning.NewGemini(apiKey, cfg.geminiModel, cfg.ocrTimeout)
	case "ollama":
		slog.Info("Initializing Ollama scanner...", "url", cfg.ollamaURL, "model", cfg.ollamaModel)
		return scanning.NewOllama(cfg.ollamaURL, cfg.ollamaModel, cfg.ocrTimeout)
	default:
		return nil, fmt.Errorf("invalid OCR provider %q: use vision, gemini or ollama", cfg.ocr)
	}
}

func runServer(cfg config, pipeline *extraction.Pipeline) error {
	slog.Info("Initializing database...")
	db, err := invoice.NewBoltDB(cfg.dbPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	slog.Info("Initializing storage...")
	store, err := invoice.NewLocalStorage(cfg.storagePath)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	service := invoice.NewService(db, pipeline, store)
	server := invoice.NewServer(service, invoice.BasicAuth{
		Username: cfg.authUser,
		Password: cfg.authPass,
	})

	addr := fmt.Sprintf(":%d", cfg.port)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(addr)
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if cfg.authUser != "" || cfg.authPass != "" {
		slog.Info("Basic auth enabled", "user", cfg.authUser)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigChan:
		slog.Info("Shutting down...")
		return nil
	}
}
