package network

import (
	"context"
	"fmt"
	"time"

	"github.com/HondryTravis/noflo/component"
	"github.com/HondryTravis/noflo/errors"
	"github.com/HondryTravis/noflo/graph"
	"github.com/HondryTravis/noflo/packet"
)

// instance tracks one live component: its runtime ports, activation
// state and pending-activation count. All fields are owned by the
// scheduler loop.
type instance struct {
	node    graph.Node
	comp    component.Component
	state   component.State
	inputs  map[string]*component.InputPort
	outputs map[string]*component.OutputPort

	pending        int
	triggerPending bool
	removed        bool
}

// setState applies one step of the activation state machine. Illegal
// steps are rejected and leave the state unchanged.
func (i *instance) setState(next component.State) bool {
	if !i.state.CanTransition(next) {
		return false
	}
	i.state = next
	return true
}

func (i *instance) hasData() bool {
	for _, in := range i.inputs {
		if in.HasData() {
			return true
		}
	}
	return false
}

// isSource reports whether the instance produces without consuming: no
// declared inputs and at least one connected output. Fully disconnected
// nodes are not sources; they never activate on their own.
func (i *instance) isSource() bool {
	if len(i.inputs) > 0 {
		return false
	}
	for _, out := range i.outputs {
		if out.IsConnected() {
			return true
		}
	}
	return false
}

// activationTask is one unit of work for the activation pool.
type activationTask struct {
	inst *instance
	ac   *component.ActivationContext
}

// deferredOp is a topology mutation postponed until every named node is
// free of in-flight activations, so port tables are never mutated under
// a running activation.
type deferredOp struct {
	nodes []string
	op    func()
}

// loop is the single scheduling authority. Every delivery notification,
// activation completion and graph mutation is applied here, one at a
// time, which makes the idle check atomic relative to all of them.
func (n *Network) loop() {
	defer close(n.loopDone)
	for {
		select {
		case <-n.loopCtx.Done():
			return
		case fn := <-n.commands:
			fn()
		}
	}
}

// post hands a command to the scheduler loop. Returns false when the
// loop has shut down.
func (n *Network) post(fn func()) bool {
	select {
	case n.commands <- fn:
		return true
	case <-n.loopCtx.Done():
		return false
	}
}

// bootstrap runs on the scheduler loop during Start: inject every
// initial packet, fire source components, set Running and evaluate the
// first idle check. A failed injection is fatal and aborts startup.
func (n *Network) bootstrap() error {
	for _, key := range n.initialOrder {
		ch := n.initialChans[key]
		if err := ch.Push(packet.NewData(n.initialData[key])); err != nil {
			err = errors.Wrap(err, "Network", "bootstrap", "initial packet injection")
			n.fatal(err)
			return err
		}
	}

	for _, inst := range n.components {
		if inst.isSource() {
			inst.triggerPending = true
		}
	}

	n.setStatus(StatusRunning)
	n.recordStatusMetric()

	for _, inst := range n.components {
		n.maybeActivate(inst)
	}
	n.checkIdle()
	return nil
}

// onPacketQueued runs after a successful channel push: record metrics
// and mark the consumer activatable.
func (n *Network) onPacketQueued(ch *Channel, p *packet.Packet) {
	n.endedReported = false

	if m := n.coreMetrics(); m != nil {
		m.RecordPacketDelivered(n.name, p.Kind().String())
		m.RecordChannelDepth(n.name, ch.Key(), ch.Len())
	}

	inst, exists := n.components[ch.To().Node]
	if !exists {
		return
	}
	n.maybeActivate(inst)
	n.checkIdle()
}

// maybeActivate schedules one activation when the instance is ready and
// has none in flight. Activations of one component never overlap, so no
// two hold concurrent access to the same port.
func (n *Network) maybeActivate(inst *instance) {
	status := n.currentStatus()
	if status != StatusRunning && status != StatusStarting {
		return
	}
	if inst.state == component.StateEnded || inst.pending > 0 {
		return
	}
	if !inst.hasData() && !inst.triggerPending {
		return
	}
	inst.triggerPending = false

	if inst.state != component.StateActivatable && !inst.setState(component.StateActivatable) {
		return
	}
	inst.setState(component.StateActivated)
	inst.pending++
	n.activations.Add(1)
	n.endedReported = false

	n.subs.fireActivated(inst.node.ID)

	task := activationTask{
		inst: inst,
		ac:   component.NewActivationContext(inst.inputs, inst.outputs),
	}
	if err := n.pool.Submit(task); err != nil {
		inst.pending--
		n.fatal(errors.WrapFatal(err, "Network", "maybeActivate", "activation scheduling"))
	}
}

// runActivation executes on a pool worker. The completion is posted
// back to the scheduler so completions are processed in observed order,
// regardless of activation start order.
func (n *Network) runActivation(ctx context.Context, task activationTask) error {
	start := time.Now()
	err := task.inst.comp.Activate(ctx, task.ac)
	duration := time.Since(start)

	if m := n.coreMetrics(); m != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		m.RecordActivation(n.name, task.inst.node.ID, status)
		m.RecordActivationDuration(n.name, task.inst.node.ID, duration)
	}

	n.post(func() { n.finishActivation(task.inst, err) })
	return err
}

// finishActivation runs on the scheduler loop after an activation
// returns.
func (n *Network) finishActivation(inst *instance, err error) {
	inst.pending--
	if inst.pending == 0 {
		inst.setState(component.StateDeactivated)
	}

	if err != nil {
		n.handleActivationError(inst, err)
	}

	if ender, ok := inst.comp.(component.Ender); ok && ender.Done() {
		inst.setState(component.StateEnded)
	}
	if inst.removed && inst.pending == 0 {
		delete(n.components, inst.node.ID)
	}

	n.runDeferredOps()

	if n.currentStatus() == StatusRunning {
		n.maybeActivate(inst)
		n.checkIdle()
	}
}

// handleActivationError routes a failed activation: to the component's
// error-designated output when one is declared and connected, otherwise
// escalating to a fatal network error. Either way the failure surfaces
// through the error subscription.
func (n *Network) handleActivationError(inst *instance, actErr error) {
	n.subs.fireError(inst.node.ID, actErr)
	if m := n.coreMetrics(); m != nil {
		m.RecordError(n.name, errors.Classify(actErr).String())
	}

	def := inst.comp.Definition()
	if def.HasErrorPort() {
		if out, exists := inst.outputs[def.ErrorPort]; exists && out.IsConnected() {
			if err := out.Send(packet.NewData(actErr)); err == nil {
				n.logger.Warn("activation failure routed to error port",
					"component", inst.node.ID, "port", def.ErrorPort, "error", actErr)
				return
			}
		}
	}

	n.fatal(errors.WrapFatal(
		fmt.Errorf("%w: node %q: %w", errors.ErrActivationFailed, inst.node.ID, actErr),
		"Network", "handleActivationError", "activation escalation"))
}

// runDeferredOps applies topology mutations whose target nodes are now
// free of in-flight activations, preserving the order they arrived in.
func (n *Network) runDeferredOps() {
	remaining := n.deferredOps[:0]
	for _, d := range n.deferredOps {
		if n.nodesQuiet(d.nodes) {
			d.op()
		} else {
			remaining = append(remaining, d)
		}
	}
	n.deferredOps = remaining
}

func (n *Network) nodesQuiet(nodes []string) bool {
	for _, id := range nodes {
		if inst, exists := n.components[id]; exists && inst.pending > 0 {
			return false
		}
	}
	return true
}

// whenQuiet runs op now when every named node has no in-flight
// activation, otherwise defers it.
func (n *Network) whenQuiet(nodes []string, op func()) {
	if n.nodesQuiet(nodes) {
		op()
		return
	}
	n.deferredOps = append(n.deferredOps, deferredOp{nodes: nodes, op: op})
}

// applyGraphEvent reacts to one live topology mutation. Mutations are
// already serialized by the graph; here they are serialized against
// deliveries and completions as well.
func (n *Network) applyGraphEvent(e graph.Event) {
	if n.currentStatus() != StatusRunning {
		return
	}

	switch e.Type {
	case graph.EventNodeAdded:
		if err := n.addComponent(*e.Node); err != nil {
			n.fatal(err)
			return
		}
		// New nodes start activatable and unwired.
		n.components[e.Node.ID].setState(component.StateActivatable)
		n.logger.Info("node added", "node", e.Node.ID, "component", e.Node.Component)

	case graph.EventNodeRemoved:
		n.removeNode(e.Node.ID)

	case graph.EventEdgeAdded:
		edge := *e.Edge
		n.whenQuiet([]string{edge.From.Node, edge.To.Node}, func() {
			if _, err := n.addChannel(edge); err != nil {
				n.fatal(err)
				return
			}
			n.logger.Info("edge added", "edge", edge.Key())
			if inst, exists := n.components[edge.To.Node]; exists {
				n.maybeActivate(inst)
			}
		})

	case graph.EventEdgeRemoved:
		edge := *e.Edge
		n.whenQuiet([]string{edge.From.Node, edge.To.Node}, func() {
			n.removeChannel(edge)
		})

	case graph.EventInitialAdded:
		initial := *e.Initial
		n.whenQuiet([]string{initial.To.Node}, func() {
			ch, err := n.addInitialChannel(initial)
			if err != nil {
				n.fatal(err)
				return
			}
			if err := ch.Push(packet.NewData(initial.Data)); err != nil {
				n.fatal(errors.Wrap(err, "Network", "applyGraphEvent", "initial packet injection"))
			}
		})

	case graph.EventInitialRemoved:
		initial := *e.Initial
		n.whenQuiet([]string{initial.To.Node}, func() {
			n.removeInitialChannel(initial)
		})
	}

	n.checkIdle()
}

// removeChannel detaches an edge's channel from both ports and reports
// a drop event for every packet still queued. Nothing is lost silently.
func (n *Network) removeChannel(edge graph.Edge) {
	key := edge.Key()
	ch, exists := n.channels[key]
	if !exists {
		return
	}

	if from, ok := n.components[edge.From.Node]; ok {
		if out, ok := from.outputs[edge.From.Port]; ok {
			out.Detach(ch)
		}
	}
	if to, ok := n.components[edge.To.Node]; ok {
		if in, ok := to.inputs[edge.To.Port]; ok {
			in.Detach(ch)
		}
	}

	n.dropPending(key, ch)
	if err := ch.Close(); err != nil {
		n.subs.fireError(edge.To.Node, err)
		n.logger.Warn("channel closed with open brackets", "channel", key, "error", err)
	}
	delete(n.channels, key)
	n.logger.Info("edge removed", "edge", key)
}

// removeInitialChannel detaches and closes a synthetic initial channel.
func (n *Network) removeInitialChannel(initial graph.Initial) {
	key := initial.Key()
	ch, exists := n.initialChans[key]
	if !exists {
		return
	}

	if to, ok := n.components[initial.To.Node]; ok {
		if in, ok := to.inputs[initial.To.Port]; ok {
			in.Detach(ch)
		}
	}

	n.dropPending(key, ch)
	_ = ch.Close()
	delete(n.initialChans, key)
	for i, k := range n.initialOrder {
		if k == key {
			n.initialOrder = append(n.initialOrder[:i], n.initialOrder[i+1:]...)
			break
		}
	}
}

func (n *Network) dropPending(key string, ch *Channel) {
	for _, p := range ch.Drain() {
		n.packetsDropped.Add(1)
		if m := n.coreMetrics(); m != nil {
			m.RecordPacketDropped(n.name)
		}
		n.subs.fireDropped(key, p)
	}
}

// removeNode forces the component to Ended and detaches every channel
// still touching it. The graph cascades edge removals first, so this is
// normally just the instance teardown.
func (n *Network) removeNode(id string) {
	inst, exists := n.components[id]
	if !exists {
		return
	}

	for _, ch := range n.channels {
		if ch.From().Node != id && ch.To().Node != id {
			continue
		}
		n.removeChannel(graph.Edge{From: ch.From(), To: ch.To()})
	}
	for _, key := range append([]string(nil), n.initialOrder...) {
		ch := n.initialChans[key]
		if ch != nil && ch.To().Node == id {
			n.removeInitialChannel(graph.Initial{To: ch.To()})
		}
	}

	inst.setState(component.StateEnded)
	inst.removed = true
	if inst.pending == 0 {
		delete(n.components, id)
	}
	n.logger.Info("node removed", "node", id)
}

// checkIdle evaluates the finished condition: no channel holds pending
// packets or open brackets and no component has an activation in
// flight. It runs only on the scheduler loop, after the command that
// could have changed the answer, which is what makes it atomic relative
// to deliveries and completions.
func (n *Network) checkIdle() {
	if n.currentStatus() != StatusRunning || n.endedReported {
		return
	}

	for _, ch := range n.channels {
		if !ch.IsIdle() {
			return
		}
	}
	for _, ch := range n.initialChans {
		if !ch.IsIdle() {
			return
		}
	}
	for _, inst := range n.components {
		if inst.pending > 0 {
			return
		}
	}

	n.endedReported = true
	n.logger.Info("network finished", "activations", n.activations.Load())
	n.subs.fireEnded(nil)
}

// fatal moves the network to Errored exactly once and reports the error
// through the ended subscription. Runs on the scheduler loop.
func (n *Network) fatal(err error) {
	n.mu.Lock()
	if n.status == StatusErrored || n.status == StatusStopped || n.status == StatusStopping {
		n.mu.Unlock()
		return
	}
	n.status = StatusErrored
	n.fatalErr = err
	n.mu.Unlock()

	n.logger.Error("network errored", "error", err)
	n.recordStatusMetric()
	if m := n.coreMetrics(); m != nil {
		m.RecordError(n.name, errors.Classify(err).String())
	}

	n.mu.Lock()
	if n.unsubscribeGraph != nil {
		n.unsubscribeGraph()
		n.unsubscribeGraph = nil
	}
	n.mu.Unlock()

	n.endedReported = true
	n.subs.fireEnded(err)

	// Tear down off the loop so completions already queued still drain.
	go func() { _ = n.teardown() }()
}
