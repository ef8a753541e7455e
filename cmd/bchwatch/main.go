package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"bchwatch/internal/api"
	"bchwatch/internal/config"
	"bchwatch/internal/inspect"
	"bchwatch/internal/metrics"
	"bchwatch/internal/report"
	"bchwatch/internal/watch"
)

func main() {
	cfgPath := flag.String("config", "", "path to YAML config file (optional, defaults built in)")
	worker := flag.String("worker", "", "worker address sent in mining.authorize")
	password := flag.String("password", "", "stratum password")
	host := flag.String("host", "", "custom pool hostname (use with -port)")
	port := flag.Int("port", 0, "custom pool port (use with -host)")
	metricsListen := flag.String("metrics-listen", "", "address for the metrics/API listener")
	watchCron := flag.String("watch-cron", "", "cron spec for recurring sweeps (enables watch mode)")
	list := flag.Bool("list", false, "list preconfigured pools and exit")
	debug := flag.Bool("debug", false, "log raw stratum frames")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}
	if *worker != "" {
		cfg.Worker = *worker
	}
	if *password != "" {
		cfg.Password = *password
	}
	if *metricsListen != "" {
		cfg.MetricsListen = *metricsListen
	}
	if *watchCron != "" {
		cfg.WatchCron = *watchCron
	}
	if *debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	fmt.Print(report.Banner())

	if *list {
		fmt.Print(report.ListPools(cfg.Pools))
		return
	}

	// -host/-port: one-shot against a custom endpoint.
	if *host != "" {
		p := *port
		if p == 0 {
			p = 3333
		}
		name := "custom"
		if flag.NArg() > 0 {
			name = strings.ToLower(flag.Arg(0))
		}
		pool := config.Pool{Name: name, Host: *host, Port: uint16(p)}
		if !runOne(inspect.New(cfg), pool) {
			os.Exit(1)
		}
		return
	}

	// Positional argument: one preconfigured pool.
	if flag.NArg() > 0 {
		name := strings.ToLower(flag.Arg(0))
		pool, ok := cfg.FindPool(name)
		if !ok {
			fmt.Printf("\n[!] Unknown pool %q.\n", name)
			fmt.Printf("    Available: %s\n", strings.Join(poolNames(cfg.Pools), ", "))
			fmt.Printf("    Or use -host and -port to test a custom endpoint.\n")
			os.Exit(1)
		}
		if !runOne(inspect.New(cfg), pool) {
			os.Exit(1)
		}
		return
	}

	if cfg.WatchCron != "" {
		runWatch(cfg)
		return
	}

	runAll(cfg)
}

func runOne(ins *inspect.Inspector, pool config.Pool) bool {
	fmt.Printf("\n[*] Pool: %s (%s)\n\n", strings.ToUpper(pool.Name), pool.Addr())
	res, err := ins.Inspect(pool)
	if err != nil {
		fmt.Printf("\n[-] %s: %v\n", strings.ToUpper(pool.Name), err)
		return false
	}
	fmt.Print(report.Render(res))
	return true
}

// runAll sweeps every pool in the registry once and prints a tally.
func runAll(cfg config.Config) {
	fmt.Printf("\n[*] Querying all %d pools: %s ...\n", len(cfg.Pools), strings.Join(poolNames(cfg.Pools), ", "))
	outcomes := inspect.New(cfg).InspectAll(cfg.Pools, cfg.Concurrency)
	var ok, failed int
	for _, o := range outcomes {
		fmt.Print(report.RunHeader(o.Pool.Name, o.Pool.Addr()))
		if o.Err != nil {
			fmt.Printf("\n[-] %s: %v\n", strings.ToUpper(o.Pool.Name), o.Err)
			failed++
			continue
		}
		fmt.Print(report.Render(o.Result))
		ok++
	}
	fmt.Print(report.Summary(len(outcomes), ok, failed))
	if ok == 0 && failed > 0 {
		os.Exit(1)
	}
}

// runWatch keeps sweeping pools on the configured schedule and serves the
// results over HTTP until interrupted.
func runWatch(cfg config.Config) {
	prom, err := metrics.NewPromRecorder("bchwatch")
	if err != nil {
		log.Fatalf("init metrics: %v", err)
	}
	metrics.Default = prom

	apiSrv := api.New()
	mux := http.NewServeMux()
	mux.Handle("/metrics", prom.Handler())
	mux.Handle("/api/", apiSrv.Handler())
	mux.Handle("/healthz", apiSrv.Handler())
	go func() {
		log.Printf("metrics/api listening on %s", cfg.MetricsListen)
		if err := http.ListenAndServe(cfg.MetricsListen, mux); err != nil {
			log.Printf("metrics server error: %v", err)
		}
	}()

	svc := watch.New(cfg, inspect.New(cfg), apiSrv)
	stop, err := svc.Start()
	if err != nil {
		log.Fatalf("start watch: %v", err)
	}
	defer stop()
	log.Printf("watch mode: schedule %q over %d pools", cfg.WatchCron, len(cfg.Pools))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received, stopping...")
}

func poolNames(pools []config.Pool) []string {
	names := make([]string, 0, len(pools))
	for _, p := range pools {
		names = append(names, p.Name)
	}
	return names
}
