package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/himanishpuri/AmpSpectrum/pkg/ampspectrum"
	"github.com/himanishpuri/AmpSpectrum/pkg/logger"
)

// Global flags
var (
	dbPath     string
	method     string
	crossCheck bool
)

func init() {
	flag.StringVar(&dbPath, "db", "", "Path to the SQLite history database (empty disables history)")
	flag.StringVar(&method, "method", "", "Estimator: parity, direct, fft or fourier (default from SPECTRUM_METHOD)")
	flag.BoolVar(&crossCheck, "cross-check", false, "Compare the header against an independent WAV decoder")
}

// createService builds the service from SPECTRUM_* variables, then flags.
func createService(extra ...ampspectrum.Option) (ampspectrum.Service, error) {
	opts, err := ampspectrum.ConfigFromEnv(os.Getenv)
	if err != nil {
		return nil, err
	}

	if dbPath != "" {
		opts = append(opts, ampspectrum.WithDBPath(dbPath))
	}
	if method != "" {
		m, err := ampspectrum.ParseMethod(method)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ampspectrum.WithMethod(m))
	}
	if crossCheck {
		opts = append(opts, ampspectrum.WithCrossCheck(true))
	}

	return ampspectrum.NewService(append(opts, extra...)...)
}

func main() {
	// A missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	flag.Usage = printUsage
	flag.Parse()

	log := logger.GetLogger()

	args := flag.Args()
	command := "analyze"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}
	log.Debugf("Executing command: %s", command)

	var err error
	switch command {
	case "analyze":
		err = handleAnalyze(args)
	case "list":
		err = handleList()
	case "show":
		err = handleShow(args)
	case "delete":
		err = handleDelete(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("%v", err)
	}
}

func handleAnalyze(args []string) error {
	var extra []ampspectrum.Option
	if len(args) > 0 {
		extra = append(extra, ampspectrum.WithInputPath(args[0]))
	}

	service, err := createService(extra...)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer service.Close()

	ctx := context.Background()
	result, err := service.Analyze(ctx)
	if err != nil {
		return err
	}

	return ampspectrum.NewTextSink(os.Stdout).Emit(ctx, result)
}

func handleList() error {
	service, err := createService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer service.Close()

	analyses, err := service.ListAnalyses()
	if err != nil {
		return fmt.Errorf("failed to list analyses: %w", err)
	}

	if len(analyses) == 0 {
		fmt.Println("No stored analyses.")
		return nil
	}

	for _, a := range analyses {
		fmt.Printf("%s  %s  %s  window=%d bins=%d  %s\n",
			a.ID, a.CreatedAt.Format("2006-01-02 15:04:05"), a.Method, a.WindowLength, a.Bins, a.Source)
	}
	return nil
}

func handleShow(args []string) error {
	if len(args) < 1 {
		return errors.New("show requires an analysis ID")
	}

	service, err := createService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer service.Close()

	a, err := service.GetAnalysis(args[0])
	if err != nil {
		return err
	}

	result := &ampspectrum.Result{Analysis: *a, FrameSyncOffset: -1}
	return ampspectrum.NewTextSink(os.Stdout).Emit(context.Background(), result)
}

func handleDelete(args []string) error {
	if len(args) < 1 {
		return errors.New("delete requires an analysis ID")
	}

	service, err := createService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer service.Close()

	if err := service.DeleteAnalysis(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Deleted analysis %s\n", args[0])
	return nil
}

func printUsage() {
	usage := []string{
		"Usage: ampspectrum [flags] [command] [args]",
		"",
		"Commands:",
		"  analyze [file]   Print \"<index>, <amplitude>\" lines for file (default: SPECTRUM_INPUT)",
		"  list             List stored analyses",
		"  show <id>        Print the spectrum of a stored analysis",
		"  delete <id>      Remove a stored analysis",
		"",
		"Environment:",
		"  SPECTRUM_INPUT, SPECTRUM_WINDOW, SPECTRUM_BINS, SPECTRUM_LEAD_IN_BYTES,",
		"  SPECTRUM_METHOD, SPECTRUM_VALIDATION, SPECTRUM_RANGE_SEED, SPECTRUM_DEGENERATE,",
		"  SPECTRUM_MIX, SPECTRUM_CROSS_CHECK, SPECTRUM_DB_PATH, LOG_LEVEL",
		"",
		"Flags:",
	}
	fmt.Fprintln(os.Stderr, strings.Join(usage, "\n"))
	flag.PrintDefaults()
}
