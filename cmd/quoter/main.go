package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/aman-zulfiqar/meteora-quoter/internal/amount"
	"github.com/aman-zulfiqar/meteora-quoter/internal/config"
	"github.com/aman-zulfiqar/meteora-quoter/internal/quoter"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func loadEnv(logger *logrus.Logger) {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	if err := godotenv.Load(filepath.Join(projectRoot, ".env")); err != nil {
		logger.Debug("no .env file found, using system environment variables")
	}
}

type operation struct {
	name string
	run  func(ctx context.Context) (json.RawMessage, error)
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	loadEnv(logger)
	cfg := config.Load()

	mode := flag.String("mode", "all", "pool-info | swap | dlmm | all")
	baseURL := flag.String("baseUrl", cfg.QuoterBaseURL, "quoting service base url")
	nodeURL := flag.String("nodeUrl", cfg.RPCUrl, "Solana RPC node the service reads pools from")
	poolAddress := flag.String("poolAddress", "", "pool address (defaults to DYN_POOL_ADDRESS or DLMM_POOL_ADDRESS by mode)")
	swapAmount := flag.String("swapAmount", "", "amount in the input token's smallest unit")
	humanAmount := flag.String("amount", "", "amount in human units, converted with -decimals")
	decimals := flag.Int("decimals", 9, "input token decimals used with -amount")
	swapAtoB := flag.Bool("swapAtoB", false, "DYN: sell token A for token B")
	token := flag.String("token", cfg.DLMMTokenAddress, "DLMM: mint of the token being sold")
	limit := flag.Int("limit", cfg.DLMMBinLimit, "DLMM: max bin arrays to consider")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	logger.SetLevel(cfg.Level())
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg.QuoterBaseURL = *baseURL
	cfg.RPCUrl = *nodeURL
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	amt := *swapAmount
	if *humanAmount != "" {
		a, err := amount.ToBaseUnits(*humanAmount, int32(*decimals))
		if err != nil {
			fmt.Println("invalid -amount:", err)
			os.Exit(2)
		}
		amt = a
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	client := quoter.NewClient(quoter.ClientConfig{
		BaseURL: cfg.QuoterBaseURL,
		Timeout: cfg.HTTPTimeout,
		Logger:  logger,
	})

	dynPool := firstNonEmpty(*poolAddress, cfg.DynPoolAddress)
	dlmmPool := firstNonEmpty(*poolAddress, cfg.DLMMPoolAddress)
	if *mode == "all" {
		// one -poolAddress cannot be both pools
		dynPool, dlmmPool = cfg.DynPoolAddress, cfg.DLMMPoolAddress
	}

	ops := map[string]operation{
		"pool-info": {"pool info", func(ctx context.Context) (json.RawMessage, error) {
			return client.GetPoolInfo(ctx, cfg.RPCUrl, dynPool)
		}},
		"swap": {"swap quote", func(ctx context.Context) (json.RawMessage, error) {
			return client.GetSwapQuote(ctx, cfg.RPCUrl, dynPool, firstNonEmpty(amt, "1000000000"), *swapAtoB)
		}},
		"dlmm": {"dlmm swap quote", func(ctx context.Context) (json.RawMessage, error) {
			return client.GetDLMMSwapQuote(ctx, cfg.RPCUrl, dlmmPool, firstNonEmpty(amt, "100000000"), *token, quoter.WithLimit(*limit))
		}},
	}

	var order []string
	switch *mode {
	case "all":
		order = []string{"pool-info", "swap", "dlmm"}
	case "pool-info", "swap", "dlmm":
		order = []string{*mode}
	default:
		fmt.Println("invalid -mode (use pool-info|swap|dlmm|all)")
		os.Exit(2)
	}

	failed := runAll(ctx, logger, order, ops)
	if failed == len(order) {
		os.Exit(1)
	}
}

// runAll runs each operation in turn and prints its result. A failed
// operation is logged and the next one still runs. It returns the number
// of failures.
func runAll(ctx context.Context, logger *logrus.Logger, order []string, ops map[string]operation) int {
	failed := 0
	for _, key := range order {
		if ctx.Err() != nil {
			logger.Warn("interrupted")
			return failed + 1
		}

		op := ops[key]
		out, err := op.run(ctx)
		if err != nil {
			failed++
			entry := logger.WithError(err).WithField("operation", op.name)
			if code, ok := quoter.StatusCode(err); ok {
				entry = entry.WithField("status", code)
			}
			entry.Error("request failed")
			continue
		}

		fmt.Printf("%s:\n%s\n", op.name, indent(out))
	}
	return failed
}

func indent(raw json.RawMessage) string {
	b, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(b)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
