// Package runtime wires config, endpoint parsing, ICMP capability
// detection, the timeline store, the scheduler, and the dashboard into one
// running process — grounded on the teacher's cmd/gtrace/root.go runTrace
// orchestration (resolve target → build tracer → run TUI) and its
// os/signal.Notify + context-cancellation shutdown shape.
package runtime

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/fprochazka/hydraping/internal/config"
	"github.com/fprochazka/hydraping/internal/dashboard"
	"github.com/fprochazka/hydraping/internal/scheduler"
	"github.com/fprochazka/hydraping/internal/timeline"
	"github.com/fprochazka/hydraping/pkg/endpoint"
	"github.com/fprochazka/hydraping/pkg/probe"
)

// Exit codes per spec.md §6/§7.
const (
	ExitOK            = 0
	ExitConfigError   = 2
	ExitTerminalError = 3
	ExitInterrupted   = 130
)

// icmpDeniedReason is the one notice spec.md §12 requires surfaced both to
// stderr before the dashboard starts and, again, in-TUI if the dashboard
// does get entered — the same text either way.
const icmpDeniedReason = "missing CAP_NET_RAW or not running as root"

// Options are the CLI-flag overrides layered on top of the loaded config
// file, spec.md §6's "runtime-only" knobs.
type Options struct {
	ConfigPath string
	Interval   time.Duration // 0 = use config
	Timeout    time.Duration // 0 = use config
	NoDNS      bool
	NoICMP     bool
	NoColor    bool
}

// Run loads configuration, builds every component, and drives the program
// until ctx is canceled or the user quits. It returns the process exit code
// spec.md §6/§7 specifies rather than an error, since different failure
// classes map to different codes.
func Run(ctx context.Context, opts Options, logger *zap.Logger) int {
	path, err := config.ResolvePath(opts.ConfigPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hydraping: resolving config path:", err)
		return ExitConfigError
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hydraping:", err)
		return ExitConfigError
	}

	endpoints, err := endpoint.ParseEntries(cfg.RawEntries())
	if err != nil {
		fmt.Fprintln(os.Stderr, "hydraping:", err)
		return ExitConfigError
	}

	capability := probe.DetectICMPCapability()
	if opts.NoICMP {
		capability = &probe.ICMPCapability{}
	} else if !capability.Allowed() {
		fmt.Fprintln(os.Stderr, "hydraping: ICMP disabled:", icmpDeniedReason)
	}

	interval := time.Duration(cfg.Checks.IntervalSeconds * float64(time.Second))
	if opts.Interval > 0 {
		interval = opts.Interval
	}
	timeout := time.Duration(cfg.Checks.TimeoutSeconds * float64(time.Second))
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	width := cfg.UI.GraphWidth
	autoWidth := width == 0
	if autoWidth {
		width = terminalWidth()
	}
	store := timeline.NewStore(endpoints, width)

	schedCfg := scheduler.Config{
		Interval:    interval,
		Timeout:     timeout,
		DisableDNS:  opts.NoDNS,
		DisableICMP: opts.NoICMP,
	}
	sched := scheduler.New(
		schedCfg, endpoints, store, capability,
		probe.NewDNSProbe(cfg.DNS.CustomServers),
		probe.NewICMPProbe(capability),
		probe.NewTCPProbe(),
		probe.NewUDPProbe(),
		probe.NewHTTPProbe(),
		logger,
	)

	theme := dashboard.DefaultTheme
	if opts.NoColor {
		theme = dashboard.PlainTheme
	}
	thresholds := dashboard.DefaultThresholds
	if len(cfg.UI.ThresholdsMs) == 3 {
		thresholds = dashboard.Thresholds{
			GreenBelow:  float64(cfg.UI.ThresholdsMs[0]),
			YellowBelow: float64(cfg.UI.ThresholdsMs[1]),
			OrangeBelow: float64(cfg.UI.ThresholdsMs[2]),
		}
	}
	refreshEvery := refreshInterval(interval)
	model := dashboard.NewModel(store, endpoints, theme, thresholds, refreshEvery)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var interrupted atomic.Bool
	go func() {
		select {
		case <-sigCh:
			interrupted.Store(true)
			cancel()
		case <-runCtx.Done():
		}
	}()

	if autoWidth {
		go watchResize(runCtx, store)
	}

	schedErrCh := make(chan error, 1)
	go func() { schedErrCh <- sched.Run(runCtx) }()

	program := tea.NewProgram(model, tea.WithContext(runCtx))
	if !opts.NoICMP {
		go watchICMPDisabled(runCtx, sched, program)
	}

	if _, err := program.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "hydraping: terminal error:", err)
		return ExitTerminalError
	}

	cancel()
	<-schedErrCh

	if interrupted.Load() {
		return ExitInterrupted
	}
	return ExitOK
}

// refreshInterval picks the render cadence spec.md §4.6 mandates:
// min(4Hz, 1/interval).
func refreshInterval(probeInterval time.Duration) time.Duration {
	const fourHz = 250 * time.Millisecond
	if probeInterval > fourHz {
		return probeInterval
	}
	return fourHz
}

// watchICMPDisabled surfaces the scheduler's one-time ICMP-unavailable
// notice to the dashboard exactly once, per spec.md §4.2: "A globally
// disabled check surfaces exactly once as a standalone notice, not
// per-endpoint."
func watchICMPDisabled(ctx context.Context, sched *scheduler.Scheduler, program *tea.Program) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if denied, _ := sched.ICMPDisabled(); denied {
				program.Send(dashboard.ICMPNoticeMsg{Reason: icmpDeniedReason})
				return
			}
		}
	}
}

// terminalWidth returns the current stdout terminal width, or 80 when
// stdout isn't a terminal or the size can't be read — grounded on the
// teacher's display.NewCompareRenderer term.GetSize fallback.
func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// watchResize polls the terminal width and resizes store when it changes,
// per spec.md §4.6's "graph_width = 0 adapts on terminal resize, preserving
// min(old_W, new_W) buckets".
func watchResize(ctx context.Context, store *timeline.Store) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	last := store.Width()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w := terminalWidth()
			if w != last {
				store.Resize(w)
				last = w
			}
		}
	}
}
