package app

import (
	"fmt"

	"netforge/internal/config"
	transport "netforge/internal/net"
	"netforge/internal/net/proto"
	"netforge/internal/net/ws"
	"netforge/internal/sim"
	"netforge/internal/telemetry"
)

// Config assembles a server. Host is optional; when nil the app binds
// a websocket host on the configured port during engine load.
type Config struct {
	Server  config.Server
	Host    transport.Host
	Logger  telemetry.Logger
	Metrics telemetry.Metrics
}

// App owns the engine and its transport and implements the engine's
// lifecycle callbacks: the transport comes up inside Load on the
// engine goroutine and is torn down in Unload.
type App struct {
	cfg     config.Server
	logger  telemetry.Logger
	metrics telemetry.Metrics

	engine   *sim.Engine
	host     transport.Host
	ownsHost bool
	receiver *transport.Receiver
}

// New builds an app around a fresh engine. The server config is
// normalized first, so out-of-range values fall back with a warning.
func New(cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	server := cfg.Server.Normalized(logger)

	engine := sim.NewEngine(sim.Config{
		SimHz:        server.SimHz,
		NetHz:        server.NetHz,
		RingCapacity: server.RingCapacity,
		MaxPeers:     server.MaxPeers,
		Logger:       logger,
		Metrics:      metrics,
	})

	return &App{
		cfg:     server,
		logger:  logger,
		metrics: metrics,
		engine:  engine,
		host:    cfg.Host,
	}
}

// Engine exposes the simulation core, mainly for tests.
func (a *App) Engine() *sim.Engine {
	return a.engine
}

// Run drives the engine until Stop or a fatal load error.
func (a *App) Run() error {
	return a.engine.Run(a)
}

// Stop asks the engine loop to exit after the current frame.
func (a *App) Stop() {
	a.engine.Stop()
}

// Load brings up the transport and the intake worker. A bind failure
// is fatal and aborts the run before the first tick.
func (a *App) Load() error {
	if a.host == nil {
		host := ws.NewHost(ws.HostConfig{
			Addr:     fmt.Sprintf(":%d", a.cfg.Port),
			MaxPeers: a.cfg.MaxPeers,
			Logger:   a.logger,
		})
		if err := host.Start(); err != nil {
			a.logger.Criticalf("transport startup failed: %v", err)
			return err
		}
		a.host = host
		a.ownsHost = true
	}

	// Peer ids double as ack-table indices; the two capacities must
	// agree or acks for high slots silently vanish.
	if a.host.MaxPeers() != a.engine.Acks().Size() {
		err := fmt.Errorf("transport capacity %d does not match ack table size %d",
			a.host.MaxPeers(), a.engine.Acks().Size())
		a.logger.Criticalf("%v", err)
		a.teardownHost()
		return err
	}

	a.receiver = transport.NewReceiver(a.host, a.engine, transport.ReceiverConfig{
		InputDelayTicks: uint64(a.cfg.InputDelayTicks),
		Logger:          a.logger,
		Metrics:         a.metrics,
	})
	a.receiver.Start()

	a.logger.Infof("listening on port %d (sim %d Hz, net %d Hz, delay %d ticks)",
		a.cfg.Port, a.cfg.SimHz, a.cfg.NetHz, a.cfg.InputDelayTicks)
	return nil
}

// Unload stops the intake worker before the transport so no event is
// serviced against a closed host.
func (a *App) Unload() {
	if a.receiver != nil {
		a.receiver.Stop()
		a.receiver = nil
	}
	a.teardownHost()
	a.logger.Infof("server stopped at tick %d", a.engine.SimTick())
}

func (a *App) teardownHost() {
	if a.host == nil {
		return
	}
	if err := a.host.Close(); err != nil {
		a.logger.Warnf("transport close: %v", err)
	}
	if a.ownsHost {
		a.host = nil
		a.ownsHost = false
	}
}

// SimulationUpdate is the per-tick gameplay hook. The engine core has
// no game state, so the stock server only traces what it applied.
func (a *App) SimulationUpdate(dt float64, inputs []sim.ClientInput) {
	for _, in := range inputs {
		a.logger.Debugf("tick %d: applied input from client %d (seq %d, buttons %#x, axes %.2f/%.2f)",
			a.engine.SimTick(), in.ClientID, in.Seq, in.Buttons, in.AxisX, in.AxisY)
	}
}

// NetworkUpdate emits one snapshot per connected peer. Snapshots are
// per-peer because the ack pair differs between clients.
func (a *App) NetworkUpdate() {
	tick := a.engine.SimTick()
	acks := a.engine.Acks()
	for _, peer := range a.host.Peers() {
		payload, err := proto.EncodeSnapshot(proto.Snapshot{
			ServerTick: tick,
			AckApplied: acks.Applied(peer),
			AckRecv:    acks.Received(peer),
		})
		if err != nil {
			a.logger.Errorf("snapshot encode for peer %d: %v", peer, err)
			continue
		}
		if err := a.host.Send(peer, 0, transport.PacketUnsequenced, payload); err != nil {
			a.logger.Warnf("snapshot send to peer %d: %v", peer, err)
		}
	}
	a.host.Flush()
}

var _ sim.Callbacks = (*App)(nil)
