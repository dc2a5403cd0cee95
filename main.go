package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"releaseday/internal/chime"
	"releaseday/internal/clock"
	"releaseday/internal/config"
	"releaseday/internal/countdown"
	"releaseday/internal/display"
	"releaseday/internal/refresh"
	"releaseday/internal/share"
	"releaseday/internal/web"
)

const appVersion = "0.2.0"

type options struct {
	configPath string
	target     string
	zone       string
	at         string
	watch      bool
	tui        bool
	serve      bool
	port       int
	broker     string
	displayID  string
	logLevel   string
}

func main() {
	var opts options

	cmd := &cobra.Command{
		Use:   "releaseday",
		Short: "Countdown to release day (console, terminal or web)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ok, _ := cmd.Flags().GetBool("version"); ok {
				fmt.Printf("releaseday v%s\n", appVersion)
				return nil
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd, opts)
		},
	}

	cmd.Version = appVersion
	cmd.SetVersionTemplate("releaseday v{{.Version}}\n")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.Flags().StringVar(&opts.configPath, "config", "", "YAML config file (optional)")
	cmd.Flags().StringVar(&opts.target, "target", "", "Target instant, RFC 3339 (default "+countdown.DefaultTarget+")")
	cmd.Flags().StringVar(&opts.zone, "zone", "", "Display time zone (default "+countdown.DefaultZone+")")
	cmd.Flags().StringVar(&opts.at, "at", "", "Pretend the current time is this RFC 3339 instant")

	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Keep printing the countdown once per tick")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "Full-screen terminal view")
	cmd.Flags().BoolVar(&opts.serve, "serve", false, "Run the web page on the configured server address")
	cmd.Flags().IntVar(&opts.port, "port", 0, "Run the web page on this port (e.g. 8484)")

	cmd.Flags().StringVar(&opts.broker, "mqtt-broker", "", "Announce the countdown to this MQTT broker (e.g. tcp://localhost:1883)")
	cmd.Flags().StringVar(&opts.displayID, "display-id", "", "Display id used in the MQTT topic")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cobra.Command, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	setupLogging(cfg.LogLevel, opts.tui)

	target, err := cfg.CountdownTarget()
	if err != nil {
		return err
	}
	labels := buildLabels(cfg, target)

	var clk clock.Clock = clock.Real{}
	if opts.at != "" {
		at, err := time.Parse(time.RFC3339, opts.at)
		if err != nil {
			return fmt.Errorf("invalid --at %q: %w", opts.at, err)
		}
		if opts.interactive() {
			clk = clock.NewOffset(at)
		} else {
			clk = clock.NewManual(at)
		}
	}

	var announcer *share.Announcer
	if cfg.MQTT.Broker != "" {
		announcer, err = share.Dial(cfg.MQTT.Broker, cfg.MQTT.TopicPrefix, cfg.MQTT.DisplayID, target, cfg.MQTT.EveryTick)
		if err != nil {
			log.Warn().Err(err).Msg("announcements disabled")
		} else {
			defer announcer.Close()
		}
	}

	switch {
	case opts.port > 0 || opts.serve:
		addr := cfg.ServerAddress
		if opts.port > 0 {
			addr = fmt.Sprintf(":%d", opts.port)
			printListenAddrs(opts.port)
		}
		return serveWeb(ctx, cfg, target, labels, clk, addr, announcer)
	case opts.tui:
		return runTerminal(ctx, cfg, target, labels, clk, announcer)
	case opts.watch:
		return runWatch(ctx, cmd.OutOrStdout(), target, labels, clk, cfg.Interval, announcer)
	default:
		now := clk.Now()
		state := target.Compute(now)
		if announcer != nil {
			announcer.Observe(now, state)
		}
		display.WriteText(cmd.OutOrStdout(), state, labels)
		return nil
	}
}

// interactive reports whether the command keeps running and ticking.
func (o options) interactive() bool {
	return o.watch || o.tui || o.serve || o.port > 0
}

func applyFlags(cfg *config.Config, opts options) {
	if opts.target != "" {
		cfg.Target = opts.target
	}
	if opts.zone != "" {
		cfg.Zone = opts.zone
	}
	if opts.broker != "" {
		cfg.MQTT.Broker = opts.broker
	}
	if opts.displayID != "" {
		cfg.MQTT.DisplayID = opts.displayID
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
}

func buildLabels(cfg *config.Config, target countdown.Target) display.Labels {
	return display.Labels{
		Title:      cfg.Page.Title,
		Subtitle:   cfg.Subtitle(target),
		Motivation: cfg.Page.Motivation,
		Celebrate:  cfg.Page.Celebrate,
		ShareText:  cfg.Share.Message,
		ShareLink:  share.WhatsAppURL(cfg.Share.Message, cfg.Share.PageURL),
	}
}

func setupLogging(level string, quiet bool) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if quiet {
		// the terminal view owns the screen
		log.Logger = zerolog.New(io.Discard)
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime})
}

/* ---------------- modes ---------------- */

// runWatch prints one line per tick and returns once the countdown finishes.
func runWatch(ctx context.Context, w io.Writer, target countdown.Target, labels display.Labels, clk clock.Clock, interval time.Duration, announcer *share.Announcer) error {
	var tracker countdown.Tracker
	var driver *refresh.Driver
	driver = refresh.New(clk, interval, func(now time.Time) {
		_, finished := tracker.Observe(target.Compute(now))
		if announcer != nil {
			announcer.Observe(now, tracker.State())
		}
		if finished {
			fmt.Fprintf(w, "\r\033[K")
			display.WriteText(w, countdown.Finished{}, labels)
			driver.Stop()
			return
		}
		fmt.Fprintf(w, "\r%s", display.Line(tracker.State(), labels))
	})

	if err := driver.Start(ctx); err != nil {
		return err
	}
	defer driver.Stop()

	<-driver.Done()
	if ctx.Err() != nil {
		fmt.Fprintln(w)
	}
	return nil
}

func runTerminal(ctx context.Context, cfg *config.Config, target countdown.Target, labels display.Labels, clk clock.Clock, announcer *share.Announcer) error {
	screen, err := display.OpenScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	defer screen.Fini()

	ch := chime.New()
	defer ch.Close()

	opts := []display.TerminalOption{display.WithNotifier(ch)}
	if announcer != nil {
		opts = append(opts, display.WithTickHook(announcer.Observe))
	}
	return display.NewTerminal(screen, target, labels, clk, cfg.Interval, opts...).Run(ctx)
}

func serveWeb(ctx context.Context, cfg *config.Config, target countdown.Target, labels display.Labels, clk clock.Clock, addr string, announcer *share.Announcer) error {
	gin.SetMode(gin.ReleaseMode)

	srv := web.NewServer(web.Options{
		Target:     target,
		Labels:     labels,
		ShareTitle: cfg.Share.Title,
		PageURL:    cfg.Share.PageURL,
		Clock:      clk,
		Interval:   cfg.Interval,
		Version:    appVersion,
	})

	if announcer != nil {
		driver := refresh.New(clk, cfg.Interval, func(now time.Time) {
			announcer.Observe(now, target.Compute(now))
		})
		if err := driver.Start(ctx); err != nil {
			return err
		}
		defer driver.Stop()
	}

	log.Info().
		Str("target", target.Local().Format(time.RFC3339)).
		Str("zone", target.ZoneName()).
		Msg("serving countdown")
	return srv.ListenAndServe(ctx, addr)
}

func printListenAddrs(port int) {
	fmt.Println("Listening on:")
	fmt.Printf("  http://127.0.0.1:%d/\n", port)

	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			ip, _, err := net.ParseCIDR(a.String())
			if err != nil || ip == nil || ip.IsLoopback() || ip.To4() == nil {
				continue
			}
			fmt.Printf("  http://%s:%d/\n", ip.String(), port)
		}
	}
	fmt.Println()
}
