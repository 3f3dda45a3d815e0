package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/giraftest/packages/core/config"
	"github.com/abdul-hamid-achik/giraftest/packages/core/env"
	"github.com/abdul-hamid-achik/giraftest/packages/core/runner"
	"github.com/abdul-hamid-achik/giraftest/packages/fixture"
	"github.com/abdul-hamid-achik/giraftest/packages/giraf"
	"github.com/abdul-hamid-achik/giraftest/packages/history"
	"github.com/abdul-hamid-achik/giraftest/packages/http"
	"github.com/abdul-hamid-achik/giraftest/packages/metrics"
	"github.com/abdul-hamid-achik/giraftest/packages/mock"
	"github.com/abdul-hamid-achik/giraftest/packages/notify"
	"github.com/abdul-hamid-achik/giraftest/packages/output"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the GIRAF API suites",
	Long: `Run the account and week template suites against a GIRAF API server.

Every case gets exactly one outcome: passed, failed, or skipped when one of
its prerequisites did not pass. The exit status is 0 when every executed
case passed and 1 otherwise.

Examples:
  giraftest run
  giraftest run --base-url http://localhost:5000
  giraftest run --suite account --verbose
  giraftest run --tags auth --output junit --output-file report.xml
  giraftest run --mock
  giraftest run --wait 30s --history=runs.db --notify-on failure --slack-webhook $SLACK_WEBHOOK`,
	Args: cobra.NoArgs,
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	baseURLFlag      string
	configFlag       string
	envFileFlag      string
	suiteFlag        []string
	nameFlag         string
	tagsFlag         string
	outputFlag       string
	outputFileFlag   string
	bailFlag         bool
	timeoutFlag      time.Duration
	rateFlag         float64
	waitFlag         time.Duration
	historyFlag      string
	notifyOnFlag     string
	slackWebhookFlag string
	slackChannelFlag string
	verboseFlag      bool
	noColorFlag      bool
	insecureFlag     bool
	proxyFlag        string
	watchFlag        bool
	mockFlag         bool
)

func init() {
	// Target flags
	runCmd.Flags().StringVar(&baseURLFlag, "base-url", "", "GIRAF API base URL (env: GIRAF_BASE_URL)")
	runCmd.Flags().StringVar(&configFlag, "config", "", "Path to config file (default: giraftest.config.json or giraftest.yaml)")
	runCmd.Flags().StringVar(&envFileFlag, "env-file", "", "Path to .env file with GIRAF_* variables (default: .env if present)")
	runCmd.Flags().BoolVar(&mockFlag, "mock", false, "Run against an in-process fake GIRAF API")

	// Selection flags
	runCmd.Flags().StringSliceVarP(&suiteFlag, "suite", "s", nil, "Run only the named suites (repeatable or comma-separated)")
	runCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Run only cases matching name pattern (supports * wildcards)")
	runCmd.Flags().StringVarP(&tagsFlag, "tags", "t", "", "Run only cases with specified tags (comma-separated)")

	// Output flags
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", "console", "Output format: "+strings.Join(output.Formats, ", "))
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", "", "Write output to file (default: stdout)")
	runCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Show requests and case logs")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")

	// Execution flags
	runCmd.Flags().BoolVar(&bailFlag, "bail", false, "Skip all remaining cases after the first failure")
	runCmd.Flags().DurationVar(&timeoutFlag, "timeout", http.DefaultTimeout, "Request timeout (e.g., 30s, 1m)")
	runCmd.Flags().Float64Var(&rateFlag, "rate", 0, "Maximum requests per second (0 = unlimited)")
	runCmd.Flags().DurationVar(&waitFlag, "wait", 0, "Wait up to this long for the server to respond before running")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Re-run when the config or .env file changes")

	// Network flags
	runCmd.Flags().StringVar(&proxyFlag, "proxy", "", "Proxy URL for HTTP requests")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", false, "Disable SSL certificate validation")

	// Reporting flags
	runCmd.Flags().StringVar(&historyFlag, "history", "", "Record outcomes in a SQLite history database")
	runCmd.Flags().Lookup("history").NoOptDefVal = history.DefaultPath
	runCmd.Flags().StringVar(&notifyOnFlag, "notify-on", string(notify.NotifyFailure), "When to notify: always, failure, success, recovery")
	runCmd.Flags().StringVar(&slackWebhookFlag, "slack-webhook", os.Getenv("SLACK_WEBHOOK"), "Slack webhook URL (env: SLACK_WEBHOOK)")
	runCmd.Flags().StringVar(&slackChannelFlag, "slack-channel", "", "Slack channel override")
}

// loadConfig layers defaults, the config file, GIRAF_* environment
// variables and finally explicitly set flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, err
	}

	vars, err := env.Load(envFileFlag)
	if err != nil {
		return nil, err
	}
	envCfg, err := config.FromEnv(vars)
	if err != nil {
		return nil, err
	}
	cfg = cfg.Merge(envCfg)

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = baseURLFlag
	}
	if flags.Changed("timeout") {
		cfg.Timeout = int(timeoutFlag.Milliseconds())
	}
	if flags.Changed("rate") {
		cfg.RateLimit = rateFlag
	}
	if flags.Changed("proxy") {
		cfg.Proxy = proxyFlag
	}
	if flags.Changed("bail") {
		cfg.Bail = config.BoolPtr(bailFlag)
	}
	if flags.Changed("verbose") {
		cfg.Verbose = config.BoolPtr(verboseFlag)
	}
	if flags.Changed("no-color") {
		cfg.NoColor = config.BoolPtr(noColorFlag)
	}
	if flags.Changed("insecure") {
		cfg.ValidateSSL = config.BoolPtr(!insecureFlag)
	}
	if flags.Changed("output") || len(cfg.Reporters) == 0 {
		cfg.Reporters = []string{outputFlag}
	}

	if err := resolveConfig(cfg, vars); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveConfig expands {{NAME}}, {{$ENV_VAR}} and {{func()}} expressions in
// header values and account credentials. NAME is a GIRAF_* variable without
// its prefix, read from the .env file or the process environment.
func resolveConfig(cfg *config.Config, vars map[string]string) error {
	store := fixture.NewStore()
	values := make(map[string]any, len(vars))
	for k, v := range vars {
		values[k] = v
	}
	store.SetAll(values)

	var unresolved []string
	store.SetWarnFunc(func(format string, args ...any) {
		unresolved = append(unresolved, fmt.Sprintf(format, args...))
	})
	cfg.Expand(store.Resolve)

	if len(unresolved) > 0 {
		return fmt.Errorf("config: %s", strings.Join(unresolved, "; "))
	}
	return nil
}

// newClient builds the HTTP client for a run, feeding the latency recorder
// and tracing requests to trace when it is not nil
func newClient(cfg *config.Config, recorder *metrics.Recorder, trace io.Writer) *http.Client {
	opts := []http.ClientOption{
		http.WithTimeout(cfg.TimeoutDuration()),
		http.WithValidateSSL(cfg.GetValidateSSL()),
		http.WithProxy(cfg.Proxy),
		http.WithDefaultHeaders(cfg.Headers),
		http.WithRateLimit(cfg.RateLimit),
		http.WithObserver(recorder.Observer()),
	}
	if trace != nil {
		opts = append(opts, http.WithObserver(traceObserver(trace)))
	}
	return http.NewClient(opts...)
}

// traceObserver writes "METHOD URL -> status (ms)" for each request
func traceObserver(w io.Writer) http.Observer {
	return func(req *http.Request, resp *http.Response, err error) {
		if err != nil {
			fmt.Fprintf(w, "%s %s -> error: %v\n", req.Method, req.URL, err)
			return
		}
		fmt.Fprintf(w, "%s %s -> %d (%dms)\n", req.Method, req.URL, resp.StatusCode, resp.DurationMs())
	}
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// session holds what stays the same across watch reruns
type session struct {
	cmd      *cobra.Command
	out      io.Writer
	errOut   io.Writer
	history  *history.Store
	notifier *notify.Manager
	mockURL  string
}

func runCommand(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Validate flags that do not depend on configuration up front
	notifyOn, err := notify.ParseNotifyOn(notifyOnFlag)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	if _, err := output.New(outputFlag, output.Options{Writer: io.Discard}); err != nil {
		return withExitCode(ExitUsageError, err)
	}

	s := &session{cmd: cmd, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}

	if outputFileFlag != "" {
		f, err := os.Create(outputFileFlag)
		if err != nil {
			return withExitCode(ExitConfigError, fmt.Errorf("cannot create output file: %w", err))
		}
		defer f.Close()
		s.out = f
	}

	if historyFlag != "" {
		store, err := history.Open(historyFlag)
		if err != nil {
			return withExitCode(ExitConfigError, err)
		}
		defer store.Close()
		s.history = store
	}

	if slackWebhookFlag != "" {
		var slackOpts []notify.SlackOption
		if slackChannelFlag != "" {
			slackOpts = append(slackOpts, notify.WithSlackChannel(slackChannelFlag))
		}
		s.notifier = notify.NewManager(notifyOn, notify.NewSlackNotifier(slackWebhookFlag, slackOpts...))
	}

	if mockFlag {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return withExitCode(ExitNetworkError, fmt.Errorf("starting mock server: %w", err))
		}
		server := mock.NewServer()
		go func() { _ = server.Serve(ctx, ln) }()
		s.mockURL = "http://" + ln.Addr().String()
	}

	err = s.run(ctx)
	if !watchFlag {
		return err
	}
	if err != nil && exitCode(err) != ExitTestFailure {
		return err
	}
	return s.watch(ctx)
}

// run executes the selected suites once and reports the outcome
func (s *session) run(ctx context.Context) error {
	cfg, err := loadConfig(s.cmd)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	if s.mockURL != "" {
		cfg.BaseURL = s.mockURL
	}

	formatter, err := output.New(cfg.Reporters[0], output.Options{
		Writer:  s.out,
		Verbose: cfg.GetVerbose(),
		NoColor: cfg.GetNoColor(),
	})
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	formatter.FormatHeader(version)

	recorder := metrics.NewRecorder()
	var trace io.Writer
	if cfg.GetVerbose() {
		trace = s.errOut
	}
	client := newClient(cfg, recorder, trace)

	e, err := giraf.NewEnv(cfg, client)
	if err != nil {
		formatter.FormatError(err)
		return withExitCode(ExitConfigError, err)
	}
	suites, err := giraf.Select(giraf.Suites(e), suiteFlag)
	if err != nil {
		formatter.FormatError(err)
		return withExitCode(ExitUsageError, err)
	}

	if waitFlag > 0 {
		if err := runner.WaitForService(ctx, cfg.BaseURL, waitFlag, runner.DefaultWaitInterval); err != nil {
			formatter.FormatError(err)
			return withExitCode(ExitNetworkError, err)
		}
	}

	r := runner.NewRunner(&runner.Config{
		Verbose:    cfg.GetVerbose(),
		Bail:       cfg.GetBail(),
		NameFilter: nameFlag,
		TagsFilter: splitTags(tagsFlag),
		LogWriter:  io.Discard,
		WarnFunc: func(format string, args ...any) {
			fmt.Fprintf(s.errOut, "warning: "+format+"\n", args...)
		},
	})

	start := time.Now()
	results, err := r.Run(ctx, suites...)
	if err != nil {
		formatter.FormatError(err)
		return withExitCode(ExitConfigError, err)
	}
	for _, result := range results {
		formatter.FormatResult(result)
	}
	totalDuration := time.Since(start)

	if lr, ok := formatter.(output.LatencyReporter); ok {
		lr.SetLatency(recorder.Summary())
	}
	if flushable, ok := formatter.(output.Flushable); ok {
		if err := flushable.Flush(totalDuration); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
	}

	summary := notify.NewRunSummary(cfg.BaseURL, results)
	// recording and notifying use their own context so an interrupted run is still reported
	reportCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.history != nil {
		run, err := s.history.Record(reportCtx, cfg.BaseURL, results)
		if err != nil {
			fmt.Fprintf(s.errOut, "warning: failed to record history: %v\n", err)
		} else {
			summary.RunID = run.ID
			fmt.Fprintf(s.errOut, "Recorded run %s in %s\n", run.ID, historyFlag)
		}
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(reportCtx, summary); err != nil {
			fmt.Fprintf(s.errOut, "warning: failed to send notification: %v\n", err)
		}
	}

	if !runner.Summarize(results).OK() {
		return withExitCode(ExitTestFailure, nil)
	}
	return nil
}

// watchedFiles returns the config and env files a rerun would read
func watchedFiles() []string {
	var files []string
	if configFlag != "" {
		files = append(files, configFlag)
	} else if path := config.FindConfigFile("."); path != "" {
		files = append(files, path)
	}
	if envFileFlag != "" {
		files = append(files, envFileFlag)
	} else {
		files = append(files, ".env")
	}

	for i, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			files[i] = abs
		}
	}
	return files
}

// watch re-runs the suites whenever a watched file is written, until ctx ends
func (s *session) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	files := watchedFiles()
	watched := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		watched[f] = true
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			fmt.Fprintf(s.errOut, "warning: failed to watch %s: %v\n", dir, err)
		}
		dirs[dir] = true
	}

	fmt.Fprintf(s.errOut, "\nWatching %s for changes... (press Ctrl+C to stop)\n\n", strings.Join(files, ", "))

	// Debounce rapid writes into one rerun
	rerun := make(chan string, 1)
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(event.Name)] || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				select {
				case rerun <- name:
				default:
				}
			})

		case name := <-rerun:
			fmt.Fprintf(s.errOut, "\nFile changed: %s\nRe-running suites...\n\n", name)
			if err := s.run(ctx); err != nil {
				var ee *exitError
				if !errors.As(err, &ee) || ee.err != nil {
					fmt.Fprintf(s.errOut, "Error: %v\n", err)
				}
			}
			fmt.Fprintf(s.errOut, "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(s.errOut, "watcher error: %v\n", err)
		}
	}
}
