package network

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"

	"github.com/HondryTravis/noflo/component"
	"github.com/HondryTravis/noflo/errors"
	"github.com/HondryTravis/noflo/graph"
	"github.com/HondryTravis/noflo/metric"
	"github.com/HondryTravis/noflo/packet"
	"github.com/HondryTravis/noflo/pkg/worker"
)

// Status represents the network lifecycle state.
type Status int

const (
	// StatusCreated indicates the network exists but is not wired or running.
	StatusCreated Status = iota
	// StatusStarting indicates startup is in progress.
	StatusStarting
	// StatusRunning indicates the network is executing.
	StatusRunning
	// StatusStopping indicates shutdown is in progress.
	StatusStopping
	// StatusStopped indicates a clean terminal state.
	StatusStopped
	// StatusErrored is the terminal substate of Stopped entered on a fatal error.
	StatusErrored
)

// String returns a string representation of the network status
func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	case StatusStopping:
		return "stopping"
	case StatusStopped:
		return "stopped"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Network owns the live instances of a graph: components keyed by node
// ID, channels keyed by edge key, and the single scheduling authority
// that serializes every delivery, activation completion and topology
// mutation.
type Network struct {
	name   string
	source graph.Source
	loader *component.Registry
	opts   options
	logger *slog.Logger

	mu       sync.Mutex
	status   Status
	wired    bool
	fatalErr error

	commands   chan func()
	loopCtx    context.Context
	loopCancel context.CancelFunc
	loopDone   chan struct{}

	actCtx    context.Context
	actCancel context.CancelFunc

	pool *worker.Pool[activationTask]

	// Owned by the scheduler loop once Start launches it. Before that,
	// Connect populates them under n.mu.
	components   map[string]*instance
	channels     map[string]*Channel
	initialChans map[string]*Channel
	initialData  map[string]any
	initialOrder []string
	deferredOps  []deferredOp

	unsubscribeGraph func()
	subs             subscriptions
	endedReported    bool

	teardownOnce sync.Once

	activations    atomic.Int64
	packetsDropped atomic.Int64
}

// Stats is a point-in-time summary of the network.
type Stats struct {
	Name           string `json:"name"`
	Status         string `json:"status"`
	Components     int    `json:"components"`
	Channels       int    `json:"channels"`
	Activations    int64  `json:"activations"`
	PacketsDropped int64  `json:"packets_dropped"`
}

// New creates a network over a graph source, resolving component names
// through the loader. Unless WithDelay is given, the network is wired
// and started before New returns; the first fatal error aborts creation.
func New(name string, source graph.Source, loader *component.Registry, opts ...Option) (*Network, error) {
	if source == nil || loader == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Network", "New", "dependency validation")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	n := &Network{
		name:         name,
		source:       source,
		loader:       loader,
		opts:         o,
		logger:       o.logger.With("network", name),
		status:       StatusCreated,
		commands:     make(chan func(), 1024),
		components:   make(map[string]*instance),
		channels:     make(map[string]*Channel),
		initialChans: make(map[string]*Channel),
		initialData:  make(map[string]any),
	}

	if !o.delay {
		if err := n.Connect(); err != nil {
			return nil, err
		}
		if err := n.Start(); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Name returns the network name.
func (n *Network) Name() string { return n.name }

// Status returns the current lifecycle status.
func (n *Network) Status() Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.status
}

// Err returns the fatal error that moved the network to Errored, if any.
func (n *Network) Err() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.fatalErr
}

// Connect materializes the current graph snapshot into components and
// channels without starting execution. Calling Connect on an already
// wired network is a no-op; on a started one it fails with a network
// state error.
func (n *Network) Connect() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.status != StatusCreated {
		return errors.WrapInvalid(
			fmt.Errorf("%w: connect while %s", errors.ErrNetworkState, n.status),
			"Network", "Connect", "status check")
	}
	if n.wired {
		return nil
	}
	return n.wireLocked()
}

// wireLocked builds instances and channels from the source snapshot.
// Caller holds n.mu and the scheduler loop is not running yet.
func (n *Network) wireLocked() error {
	snap := n.source.Snapshot()

	for _, node := range snap.Nodes {
		if err := n.addComponent(node); err != nil {
			return err
		}
	}
	for _, edge := range snap.Edges {
		if _, err := n.addChannel(edge); err != nil {
			return err
		}
	}
	for _, initial := range snap.Initials {
		if _, err := n.addInitialChannel(initial); err != nil {
			return err
		}
	}
	if err := n.validateRequiredPorts(); err != nil {
		return err
	}

	n.wired = true
	n.logger.Info("network wired",
		"components", len(n.components),
		"channels", len(n.channels),
		"initials", len(n.initialChans))
	return nil
}

// validateRequiredPorts rejects a wiring that leaves a required port
// with no attachment. It runs after the full snapshot is applied, so an
// initial packet satisfies a required input. Nodes added live start
// unwired and are not re-checked.
func (n *Network) validateRequiredPorts() error {
	for id, inst := range n.components {
		for name, in := range inst.inputs {
			if in.Descriptor().Required && !in.IsConnected() {
				return errors.WrapInvalid(
					fmt.Errorf("required input port %s.%s has no channel or initial", id, name),
					"Network", "validateRequiredPorts", "required port check")
			}
		}
		for name, out := range inst.outputs {
			if out.Descriptor().Required && !out.IsConnected() {
				return errors.WrapInvalid(
					fmt.Errorf("required output port %s.%s has no channel", id, name),
					"Network", "validateRequiredPorts", "required port check")
			}
		}
	}
	return nil
}

// Start wires the network if needed, launches the scheduling loop and
// activation workers, injects initial packets and begins idle
// detection. It returns the first fatal error; a strict-mode capacity
// overflow during initial injection fails Start before any packet is
// lost.
func (n *Network) Start() error {
	n.mu.Lock()

	if n.status != StatusCreated {
		n.mu.Unlock()
		return errors.WrapInvalid(
			fmt.Errorf("%w: start while %s", errors.ErrNetworkState, n.status),
			"Network", "Start", "status check")
	}
	if !n.wired {
		if err := n.wireLocked(); err != nil {
			n.mu.Unlock()
			return err
		}
	}

	n.status = StatusStarting
	n.loopCtx, n.loopCancel = context.WithCancel(context.Background())
	n.actCtx, n.actCancel = context.WithCancel(context.Background())
	n.loopDone = make(chan struct{})

	poolOpts := []worker.Option[activationTask]{}
	if n.opts.metrics != nil {
		poolOpts = append(poolOpts, worker.WithMetricsRegistry[activationTask](n.opts.metrics, "network_activations"))
	}
	n.pool = worker.NewPool[activationTask](n.opts.workers, defaultActivationQueue, n.runActivation, poolOpts...)
	if err := n.pool.Start(n.actCtx); err != nil {
		n.status = StatusCreated
		n.mu.Unlock()
		return errors.WrapFatal(err, "Network", "Start", "worker pool startup")
	}

	go n.loop()

	if n.opts.subscribeGraph {
		n.unsubscribeGraph = n.source.Subscribe(func(e graph.Event) {
			n.post(func() { n.applyGraphEvent(e) })
		})
	}
	n.mu.Unlock()

	errCh := make(chan error, 1)
	if !n.post(func() { errCh <- n.bootstrap() }) {
		return errors.WrapFatal(errors.ErrShuttingDown, "Network", "Start", "scheduler handoff")
	}
	if err := <-errCh; err != nil {
		return err
	}

	n.logger.Info("network started")
	return nil
}

// Stop transitions to Stopping, lets in-flight activations finish
// bounded by the stop timeout, then tears everything down. Stop is
// idempotent: repeated calls observe the same terminal status with no
// side effects. Must not be called from subscription handlers.
func (n *Network) Stop() error {
	n.mu.Lock()
	switch n.status {
	case StatusStopped, StatusErrored:
		n.mu.Unlock()
		return nil
	case StatusCreated:
		n.status = StatusStopped
		n.mu.Unlock()
		return nil
	case StatusStopping:
		n.mu.Unlock()
		return nil
	}
	n.status = StatusStopping
	n.mu.Unlock()

	n.logger.Info("network stopping")

	n.mu.Lock()
	if n.unsubscribeGraph != nil {
		n.unsubscribeGraph()
		n.unsubscribeGraph = nil
	}
	n.mu.Unlock()

	errs := n.teardown()
	<-n.loopDone

	// Loop and workers are gone; finalize runtime tables directly.
	for key, ch := range n.channels {
		if err := ch.Close(); err != nil {
			errs = multierr.Append(errs, err)
			n.logger.Warn("channel closed with protocol violation", "channel", key, "error", err)
		}
	}
	for _, ch := range n.initialChans {
		if err := ch.Close(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	for _, inst := range n.components {
		if inst.pending > 0 {
			n.logger.Warn("activation force-ended at shutdown",
				"component", inst.node.ID, "pending", inst.pending)
		}
		inst.setState(component.StateEnded)
	}

	n.setStatus(StatusStopped)
	n.recordStatusMetric()
	if !n.endedReported {
		n.endedReported = true
		n.subs.fireEnded(nil)
	}

	n.logger.Info("network stopped")
	return errs
}

// Trigger externally activates a source component that has no input
// ports feeding it data. It is the external trigger for source nodes.
func (n *Network) Trigger(node string) error {
	n.mu.Lock()
	if n.status != StatusRunning {
		status := n.status
		n.mu.Unlock()
		return errors.WrapInvalid(
			fmt.Errorf("%w: trigger while %s", errors.ErrNetworkState, status),
			"Network", "Trigger", "status check")
	}
	n.mu.Unlock()

	errCh := make(chan error, 1)
	posted := n.post(func() {
		inst, exists := n.components[node]
		if !exists {
			errCh <- errors.WrapInvalid(
				fmt.Errorf("%w: %q", errors.ErrComponentNotFound, node),
				"Network", "Trigger", "node lookup")
			return
		}
		inst.triggerPending = true
		n.maybeActivate(inst)
		errCh <- nil
	})
	if !posted {
		return errors.WrapInvalid(errors.ErrShuttingDown, "Network", "Trigger", "scheduler handoff")
	}
	return <-errCh
}

// Stats returns a point-in-time summary. While the scheduler runs the
// snapshot is taken on the scheduling goroutine.
func (n *Network) Stats() Stats {
	if n.loopCtx != nil {
		reply := make(chan Stats, 1)
		if n.post(func() { reply <- n.buildStats() }) {
			return <-reply
		}
	}
	return n.buildStats()
}

func (n *Network) buildStats() Stats {
	return Stats{
		Name:           n.name,
		Status:         n.currentStatus().String(),
		Components:     len(n.components),
		Channels:       len(n.channels) + len(n.initialChans),
		Activations:    n.activations.Load(),
		PacketsDropped: n.packetsDropped.Load(),
	}
}

func (n *Network) setStatus(status Status) {
	n.mu.Lock()
	n.status = status
	n.mu.Unlock()
}

func (n *Network) currentStatus() Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.status
}

// teardown stops the activation workers once. The activation context is
// cancelled first as the cooperative abort request; activations that
// ignore it are bounded by the stop timeout.
func (n *Network) teardown() error {
	var err error
	n.teardownOnce.Do(func() {
		if n.actCancel != nil {
			n.actCancel()
		}
		if n.pool != nil {
			if perr := n.pool.Stop(n.opts.stopTimeout); perr != nil {
				err = errors.WrapTransient(perr, "Network", "teardown", "activation drain")
			}
		}
		if n.loopCancel != nil {
			n.loopCancel()
		}
	})
	return err
}

// addComponent resolves a node to a component instance via the loader.
func (n *Network) addComponent(node graph.Node) error {
	if _, exists := n.components[node.ID]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("node %q already instantiated", node.ID),
			"Network", "addComponent", "duplicate node check")
	}

	factory, err := n.loader.Resolve(node.Component)
	if err != nil {
		return errors.Wrap(err, "Network", "addComponent", "component resolution")
	}

	rawConfig := json.RawMessage("{}")
	if node.Metadata != nil {
		data, merr := json.Marshal(node.Metadata)
		if merr != nil {
			return errors.WrapInvalid(merr, "Network", "addComponent", "metadata encoding")
		}
		rawConfig = data
	}

	deps := component.Dependencies{
		Logger:          n.logger,
		MetricsRegistry: n.opts.metrics,
	}
	comp, err := factory(rawConfig, deps)
	if err != nil {
		return errors.Wrap(err, "Network", "addComponent", "factory execution")
	}

	inst := &instance{
		node:    node,
		comp:    comp,
		state:   component.StateInit,
		inputs:  make(map[string]*component.InputPort),
		outputs: make(map[string]*component.OutputPort),
	}
	def := comp.Definition()
	for _, p := range def.InPorts {
		inst.inputs[p.Name] = component.NewInputPort(p)
	}
	for _, p := range def.OutPorts {
		inst.outputs[p.Name] = component.NewOutputPort(p)
	}

	n.components[node.ID] = inst
	return nil
}

// addChannel realizes an edge as a channel attached at both ends.
func (n *Network) addChannel(edge graph.Edge) (*Channel, error) {
	key := edge.Key()
	if _, exists := n.channels[key]; exists {
		return nil, errors.WrapInvalid(
			fmt.Errorf("edge %s already wired", key),
			"Network", "addChannel", "duplicate edge check")
	}

	from, exists := n.components[edge.From.Node]
	if !exists {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrComponentNotFound, edge.From.Node),
			"Network", "addChannel", "source node lookup")
	}
	to, exists := n.components[edge.To.Node]
	if !exists {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrComponentNotFound, edge.To.Node),
			"Network", "addChannel", "target node lookup")
	}

	outPort, exists := from.outputs[edge.From.Port]
	if !exists {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %s", errors.ErrPortNotFound, edge.From),
			"Network", "addChannel", "output port lookup")
	}
	inPort, exists := to.inputs[edge.To.Port]
	if !exists {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %s", errors.ErrPortNotFound, edge.To),
			"Network", "addChannel", "input port lookup")
	}

	ch := NewChannel(edge.From, edge.To, n.opts.channelCapacity, n.channelMode(), n.logger, n.notifyPush)

	if err := outPort.Attach(ch); err != nil {
		return nil, errors.Wrap(err, "Network", "addChannel", "output attachment")
	}
	if err := inPort.Attach(ch); err != nil {
		outPort.Detach(ch)
		return nil, errors.Wrap(err, "Network", "addChannel", "input attachment")
	}

	n.channels[key] = ch
	return ch, nil
}

// addInitialChannel creates the synthetic single-producer channel an
// initial packet is injected through at startup.
func (n *Network) addInitialChannel(initial graph.Initial) (*Channel, error) {
	key := initial.Key()
	if _, exists := n.initialChans[key]; exists {
		return nil, errors.WrapInvalid(
			fmt.Errorf("initial for %s already wired", initial.To),
			"Network", "addInitialChannel", "duplicate initial check")
	}

	to, exists := n.components[initial.To.Node]
	if !exists {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrComponentNotFound, initial.To.Node),
			"Network", "addInitialChannel", "target node lookup")
	}
	inPort, exists := to.inputs[initial.To.Port]
	if !exists {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %s", errors.ErrPortNotFound, initial.To),
			"Network", "addInitialChannel", "input port lookup")
	}

	from := graph.Endpoint{Node: "initial", Port: "out"}
	ch := NewChannel(from, initial.To, n.opts.channelCapacity, n.channelMode(), n.logger, n.notifyPush)

	if err := inPort.Attach(ch); err != nil {
		return nil, errors.Wrap(err, "Network", "addInitialChannel", "input attachment")
	}

	n.initialChans[key] = ch
	n.initialData[key] = initial.Data
	n.initialOrder = append(n.initialOrder, key)
	return ch, nil
}

// notifyPush posts a delivery notification to the scheduler loop.
func (n *Network) notifyPush(ch *Channel, p *packet.Packet) {
	n.post(func() { n.onPacketQueued(ch, p) })
}

func (n *Network) channelMode() Mode {
	if n.opts.strictBackpressure {
		return ModePull
	}
	return ModePush
}

func (n *Network) coreMetrics() *metric.Metrics {
	if n.opts.metrics == nil {
		return nil
	}
	return n.opts.metrics.CoreMetrics()
}

func (n *Network) recordStatusMetric() {
	if m := n.coreMetrics(); m != nil {
		m.RecordNetworkStatus(n.name, int(n.currentStatus()))
	}
}
