package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"console-warden/internal/bridge"
	"console-warden/internal/commands"
	"console-warden/internal/config"
	"console-warden/internal/console"
	"console-warden/internal/domain"
	"console-warden/internal/elo"
	"console-warden/internal/events"
	"console-warden/internal/formatting"
	"console-warden/internal/roster"
	"console-warden/internal/sanctions"
	"console-warden/internal/storage"
)

type App struct {
	config *config.Config
	store  storage.Store

	transport  console.Transport
	writer     *console.Writer
	poller     *console.Poller
	roster     *roster.Manager
	scheduler  *sanctions.Scheduler
	ratings    *elo.Service
	dispatcher *commands.Dispatcher

	discord *discordgo.Session
	bridge  *bridge.Bridge

	metricsServer *http.Server
}

func NewApp(ctx context.Context, cfg *config.Config, shutdown context.CancelFunc) (*App, error) {
	store, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to storage", "error", err)
		return nil, err
	}

	transport, err := console.DialWS(ctx, cfg.ConsoleURL)
	if err != nil {
		slog.Error("Failed to connect to console", "url", cfg.ConsoleURL, "error", err)
		store.Close()
		return nil, err
	}

	a := &App{
		config:    cfg,
		store:     store,
		transport: transport,
	}

	a.writer = console.NewWriter(transport, cfg.WriteSettleDelay)
	a.roster = roster.NewManager(a.writer, cfg.Greeting)
	a.scheduler = sanctions.NewScheduler(store, a.writer)

	mode, _ := domain.ParseGameMode(cfg.GameMode)
	a.ratings = elo.NewService(store, a.roster, a.writer, elo.NewClient(cfg.EloAPIURL), elo.Options{
		Mode:      mode,
		Min:       cfg.EloMin,
		Max:       cfg.EloMax,
		TTL:       cfg.EloCacheTTL,
		BotName:   cfg.BotName,
		OwnerName: cfg.OwnerName,
	})

	registry, err := commands.NewDefaultRegistry(commands.Deps{
		Store:     store,
		Console:   a.writer,
		Roster:    a.roster,
		Sanctions: a.scheduler,
		Ratings:   a.ratings,
		BotName:   cfg.BotName,
		OwnerName: cfg.OwnerName,
		Shutdown:  shutdown,
	})
	if err != nil {
		transport.Close()
		store.Close()
		return nil, err
	}

	a.dispatcher = commands.NewDispatcher(registry, store, commands.DispatcherOptions{
		Prefix:             cfg.CommandPrefix,
		BotName:            cfg.BotName,
		OwnerName:          cfg.OwnerName,
		BridgeAlias:        cfg.BridgeAlias,
		RejectUnauthorized: cfg.RejectUnauthorized,
		ConsoleReply:       a.consoleReply,
		BridgeReply:        a.bridgeReply,
	})

	if cfg.DiscordToken != "" {
		discord, err := bridge.NewSession(cfg.DiscordToken)
		if err != nil {
			transport.Close()
			store.Close()
			return nil, err
		}
		a.discord = discord
		a.bridge = bridge.New(discord, a.dispatcher, cfg.DiscordGuildID, cfg.RelayChannel)
	}

	a.poller = console.NewPoller(transport, cfg.PollInterval, a.handleDelta)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	a.metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}

	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	if a.discord != nil {
		if err := a.discord.Open(); err != nil {
			slog.Error("Failed to open discord session", "error", err)
			return err
		}
		a.bridge.SetBotUserID(a.discord.State.User.ID)
		a.discord.AddHandler(a.bridge.HandleFunc(ctx))
	}

	go func() {
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Metrics server failed", "error", err)
		}
	}()

	go a.poller.Start(ctx)

	// Prime the roster before the first events arrive.
	if err := a.writer.RequestListing(ctx); err != nil {
		slog.Warn("Failed to request initial roster listing", "error", err)
	}

	slog.Info("Console warden is online", "console", a.config.ConsoleURL,
		"bridge", a.bridge != nil)
	return nil
}

// Fatal surfaces unrecoverable transport errors from the poll loop.
func (a *App) Fatal() <-chan error {
	return a.poller.Err()
}

func (a *App) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down...")

	// Let in-flight command handlers finish before tearing down the
	// transports they reply through.
	done := make(chan struct{})
	go func() {
		a.dispatcher.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		slog.Warn("Shutdown deadline reached with handlers still in flight")
	}

	var firstErr error
	if a.discord != nil {
		if err := a.discord.Close(); err != nil {
			firstErr = err
		}
	}
	if a.transport != nil {
		if err := a.transport.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.store != nil {
		a.store.Close()
	}
	return firstErr
}

// handleDelta fans one poll tick's events out to the roster, the
// dispatcher, the sanction gate and the bridge, in document order.
func (a *App) handleDelta(ctx context.Context, delta string) {
	for _, ev := range events.Classify(delta) {
		a.roster.Apply(ctx, ev)

		switch e := ev.(type) {
		case events.Chat:
			a.dispatcher.HandleChat(ctx, e, commands.OriginConsole)
		case events.Connected:
			go a.gateConnect(ctx, e.Name)
		case events.RosterListing:
			go a.ratings.Cycle(ctx)
		}

		if a.bridge != nil {
			go a.bridge.Relay(ctx, ev)
		}
	}
}

// gateConnect ejects a joining player who still has an active sanction.
func (a *App) gateConnect(ctx context.Context, name string) {
	sanction, err := a.scheduler.Check(ctx, domain.Key(name))
	if err != nil {
		slog.Error("Failed to check sanction on connect", "name", name, "error", err)
		return
	}
	if sanction == nil {
		return
	}

	if err := a.writer.Say(ctx, formatting.MsgSanctionStatus(*sanction)); err != nil {
		slog.Error("Failed to announce sanction", "name", name, "error", err)
	}
	if err := a.writer.Kick(ctx, domain.Key(name)); err != nil {
		slog.Error("Failed to kick sanctioned player", "name", name, "error", err)
	}
}

func (a *App) consoleReply(ctx context.Context, message string) error {
	for _, line := range strings.Split(message, "\n") {
		if err := a.writer.Say(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) bridgeReply(ctx context.Context, message string) error {
	if a.bridge == nil {
		return nil
	}
	return a.bridge.Send(ctx, message)
}
