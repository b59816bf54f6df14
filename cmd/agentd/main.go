// Command agentd runs agent actions as supervised child processes.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/deixis/agentd"
	"github.com/deixis/agentd/internal/actions"
	"github.com/deixis/agentd/internal/config"
	agentmcp "github.com/deixis/agentd/internal/mcp"
	"github.com/deixis/agentd/internal/results"
	"github.com/deixis/agentd/internal/runner"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Exit codes used by "agentd run" when the action has no exit code of its own.
const (
	exitTimedOut = 124
	exitSignaled = 128
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("agentd: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "run":
		var code int
		code, err = runMain(args)
		if err == nil {
			os.Exit(code)
		}
	case "mcp":
		err = mcpMain(args)
	case "version":
		fmt.Println(agentd.Version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "agentd: unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: agentd <command> [flags]

Commands:
  run         Run one command and report its exit code and output
  mcp         Start the MCP server exposing the actions directory
  version     Print the version
  help        Show this help

Use "agentd <command> -h" for command-specific flags.`)
}

// --- run ---

func runMain(args []string) (int, error) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configFlag := fs.String("config", config.DefaultPath, "path to the agentd YAML configuration")
	timeoutFlag := fs.String("timeout", "", `override configured timeout (e.g. 30s, or "none")`)
	maxOutputFlag := fs.Int("max-output", 0, "override configured per-stream capture limit in bytes")
	inputFlag := fs.String("input", "", `file whose contents are written to the command's stdin ("-" for our stdin)`)
	jsonFlag := fs.Bool("json", false, "print the result as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: agentd run [flags] -- <command> [args...]")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	argv := fs.Args()
	if len(argv) == 0 {
		fs.Usage()
		return 2, nil
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		return 0, fmt.Errorf("loading config: %w", err)
	}
	timeout, err := resolveTimeout(cfg, *timeoutFlag)
	if err != nil {
		return 0, err
	}
	input, err := readInput(*inputFlag)
	if err != nil {
		return 0, err
	}

	e := newExecutor(cfg)
	if *maxOutputFlag > 0 {
		e.MaxOutput = *maxOutputFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	req := runner.Request{
		ID:      runner.NewID(),
		Action:  argv[0],
		Path:    argv[0],
		Args:    argv[1:],
		Input:   input,
		Timeout: timeout,
	}
	rec := results.Start(req, time.Now())
	out, err := e.Execute(ctx, req)
	rec.Finish(out, err, time.Now())

	if cfg.SpoolDir != "" {
		if serr := results.NewDiskStore(cfg.SpoolDir).Save(rec); serr != nil {
			log.Printf("saving result %s: %v", rec.ID, serr)
		}
	}
	if err != nil {
		return 0, err
	}

	if *jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rec); err != nil {
			return 0, err
		}
	} else {
		fmt.Fprint(os.Stdout, out.Stdout())
		fmt.Fprint(os.Stderr, out.Stderr())
		reportStreams(out)
	}
	return exitCode(out), nil
}

// reportStreams notes capture problems on stderr after the action's own output.
func reportStreams(out runner.Output) {
	reportStream("stdout", out.StdoutStream())
	reportStream("stderr", out.StderrStream())
	switch out.Outcome() {
	case runner.TimedOut:
		log.Printf("action timed out")
	case runner.Cancelled:
		log.Printf("action cancelled")
	}
}

func reportStream(name string, s runner.CapturedStream) {
	if s.Truncated() {
		log.Printf("%s truncated: kept %d of %d bytes", name, len(s.String()), s.Len())
	}
	if s.Err() != nil {
		log.Print(s.Err())
	}
}

func exitCode(out runner.Output) int {
	switch {
	case out.Outcome() == runner.TimedOut:
		return exitTimedOut
	case out.Signal() > 0:
		return exitSignaled + out.Signal()
	case out.Killed():
		return exitSignaled
	default:
		return out.ExitCode()
	}
}

func resolveTimeout(cfg *config.Config, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return cfg.Timeout(), nil
	case strings.EqualFold(raw, "none"):
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid -timeout %q", raw)
	}
	return d, nil
}

func readInput(path string) ([]byte, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return data, nil
}

// --- mcp ---

func mcpMain(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	configFlag := fs.String("config", config.DefaultPath, "path to the agentd YAML configuration")
	instructions := fs.Bool("instructions", false, "print model instructions and exit")
	httpAddr := fs.String("http", "", "start HTTP server on address (e.g. 127.0.0.1:9090)")
	_ = fs.Parse(args)

	if *instructions {
		fmt.Print(agentmcp.Instructions)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, *configFlag, *httpAddr)
}

func serve(ctx context.Context, configPath, httpAddr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	return runServer(ctx, cfg, &mcpsdk.StdioTransport{}, httpAddr)
}

// runServer serves the MCP tools on t, or over HTTP when httpAddr is set.
// Background actions still running when the session ends are cancelled and
// their results stored before runServer returns.
func runServer(ctx context.Context, cfg *config.Config, t mcpsdk.Transport, httpAddr string) error {
	disk := results.NewDiskStore(cfg.SpoolDir)
	store := results.NewLRUStore(cfg.CacheSize(), disk)
	catalog := &actions.Catalog{Dir: cfg.ActionsPath()}

	bgCtx, cancelBg := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancelBg()

	server := agentmcp.NewServer(cfg, newExecutor(cfg), catalog, store, agentmcp.WithBackground(bgCtx, &wg))

	if httpAddr != "" {
		return serveHTTP(ctx, server, httpAddr)
	}
	err := server.Run(ctx, t)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Printf("listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// --- shared ---

func newExecutor(cfg *config.Config) *runner.Executor {
	return &runner.Executor{
		MaxOutput:    cfg.MaxOutputBytes(),
		KillGrace:    cfg.KillGrace(),
		DrainTimeout: cfg.DrainTimeout(),
	}
}
