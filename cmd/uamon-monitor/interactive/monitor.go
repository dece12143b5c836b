// Package interactive provides the interactive command loop for the
// monitoring client.
package interactive

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/uamon-protocol/uamon-go/pkg/discovery"
	"github.com/uamon-protocol/uamon-go/pkg/service"
	"github.com/uamon-protocol/uamon-go/pkg/simstack"
	"github.com/uamon-protocol/uamon-go/pkg/ua"
)

// pumpSlice bounds one background pump iteration.
const pumpSlice = 50 * time.Millisecond

// Monitor handles interactive mode for uamon-monitor. All access to the
// client facade is serialized through mu: the facade performs no
// internal locking, and both the command loop and the background pump
// goroutine drive it.
type Monitor struct {
	client *service.Client
	sim    *simstack.Sim
	rl     *readline.Instance

	mu        sync.Mutex
	closeOnce sync.Once

	// Background pump control. pumpMu is separate from mu: stopping
	// the pump waits for the goroutine, which needs mu to finish its
	// current iteration.
	pumpMu      sync.Mutex
	pumpCancel  context.CancelFunc
	pumpDone    chan struct{}
	pumpRunning bool
}

// New creates a new interactive monitor handler.
func New(client *service.Client, sim *simstack.Sim) (*Monitor, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "uamon> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Monitor{
		client: client,
		sim:    sim,
		rl:     rl,
	}, nil
}

// Stdout returns a writer that coordinates with the readline prompt.
// Use this for log output to avoid interfering with the input line.
func (m *Monitor) Stdout() io.Writer {
	return m.rl.Stdout()
}

// Stderr returns a writer that coordinates with the readline prompt.
func (m *Monitor) Stderr() io.Writer {
	return m.rl.Stderr()
}

// Shutdown stops the background pump and unblocks a pending readline,
// so the service can be closed from outside the command loop. Safe to
// call concurrently with Run.
func (m *Monitor) Shutdown() {
	m.stopPump()
	m.closeReadline()
}

func (m *Monitor) closeReadline() {
	m.closeOnce.Do(func() { m.rl.Close() })
}

// Run starts the interactive command loop. The background pump starts
// enabled so notifications arrive without manual pumping.
func (m *Monitor) Run(ctx context.Context, cancel context.CancelFunc) {
	defer m.closeReadline()

	m.startPump()
	defer m.stopPump()

	m.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := m.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(m.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			m.printHelp()

		case "sub":
			m.cmdSub(args)

		case "subs":
			m.cmdSubs()

		case "monitor", "mon":
			m.cmdMonitor(args)

		case "monitor-event", "mev":
			m.cmdMonitorEvent(args)

		case "items":
			m.cmdItems(args)

		case "mode":
			m.cmdMode(args)

		case "modify":
			m.cmdModify(args)

		case "trigger":
			m.cmdTrigger(args)

		case "unmonitor", "unmon":
			m.cmdUnmonitor(args)

		case "call":
			m.cmdCall(args, false)

		case "call-async":
			m.cmdCall(args, true)

		case "pending":
			m.cmdPending()

		case "set":
			m.cmdSet(args)

		case "read":
			m.cmdRead(args)

		case "emit":
			m.cmdEmit(args)

		case "pump":
			m.cmdPump(args)

		case "auto":
			m.cmdAuto(args)

		case "browse":
			m.cmdBrowse(args)

		case "quit", "exit", "q":
			fmt.Fprintln(m.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(m.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (m *Monitor) printHelp() {
	fmt.Fprintln(m.rl.Stdout(), `
Monitoring Client Commands:
  Subscriptions:
    sub create [interval]        - Create a subscription (e.g. sub create 100ms)
    sub modify <id> <interval>   - Change the publishing interval
    sub enable <id>              - Enable notification delivery
    sub disable <id>             - Disable notification delivery
    sub delete <id>              - Delete a subscription and its items
    subs                         - List subscriptions

  Monitored Items:
    monitor <sub> <node> [interval]     - Monitor data changes on a node
    monitor-event <sub> <node> [field ...] - Monitor events from a node
    items <sub>                  - List monitored items
    mode <sub> <item> <mode>     - disabled, sampling or reporting
    modify <sub> <item> <interval> - Change the sampling interval
    trigger <sub> <item> add|remove <link ...> - Manage triggering links
    unmonitor <sub> <item>       - Delete a monitored item

  Method Calls:
    call <object> <method> [arg ...]       - Synchronous call
    call-async <object> <method> [arg ...] - Result arrives on a later pump
    pending                      - Count outstanding async calls

  Simulator:
    set <node> <value>           - Set a variable (provokes data changes)
    read <node>                  - Read a variable
    emit <node> [key=value ...]  - Emit an event from a source node
                                   (reserved key "type" sets the event type node)

  Pump:
    pump [duration]              - Run one client pump (default 100ms)
    auto on|off                  - Background pump on/off

  Discovery:
    browse [timeout]             - Browse announced endpoints (default 3s)

  General:
    help                         - Show this help
    quit                         - Exit

  Node Format:
    ns=<namespace>;i=<id>        - e.g. ns=1;i=100`)
}

// cmdSub handles the subscription lifecycle subcommands.
func (m *Monitor) cmdSub(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: sub create|modify|enable|disable|delete ...")
		return
	}

	switch args[0] {
	case "create":
		params := ua.DefaultSubscriptionParameters()
		if len(args) > 1 {
			interval, err := time.ParseDuration(args[1])
			if err != nil {
				fmt.Fprintf(m.rl.Stdout(), "Invalid interval: %v\n", err)
				return
			}
			params.PublishingInterval = interval
		}

		m.mu.Lock()
		subID, err := m.client.Subscribe(&params, true)
		m.mu.Unlock()
		if err != nil {
			fmt.Fprintf(m.rl.Stdout(), "Create failed: %v\n", err)
			return
		}
		fmt.Fprintf(m.rl.Stdout(), "Subscription %d created (revised interval %v, keep-alive %d, lifetime %d)\n",
			subID, params.PublishingInterval, params.MaxKeepAliveCount, params.LifetimeCount)

	case "modify":
		if len(args) < 3 {
			fmt.Fprintln(m.rl.Stdout(), "Usage: sub modify <id> <interval>")
			return
		}
		subID, ok := m.parseSubID(args[1])
		if !ok {
			return
		}
		interval, err := time.ParseDuration(args[2])
		if err != nil {
			fmt.Fprintf(m.rl.Stdout(), "Invalid interval: %v\n", err)
			return
		}

		m.mu.Lock()
		state, known := m.client.Subscription(subID)
		m.mu.Unlock()
		if !known {
			fmt.Fprintf(m.rl.Stdout(), "Unknown subscription %d\n", subID)
			return
		}
		params := state.Parameters
		params.PublishingInterval = interval

		m.mu.Lock()
		err = m.client.ModifySubscription(subID, &params)
		m.mu.Unlock()
		if err != nil {
			fmt.Fprintf(m.rl.Stdout(), "Modify failed: %v\n", err)
			return
		}
		fmt.Fprintf(m.rl.Stdout(), "Subscription %d modified (revised interval %v)\n",
			subID, params.PublishingInterval)

	case "enable", "disable":
		if len(args) < 2 {
			fmt.Fprintf(m.rl.Stdout(), "Usage: sub %s <id>\n", args[0])
			return
		}
		subID, ok := m.parseSubID(args[1])
		if !ok {
			return
		}
		enabled := args[0] == "enable"

		m.mu.Lock()
		err := m.client.SetPublishingMode(subID, enabled)
		m.mu.Unlock()
		if err != nil {
			fmt.Fprintf(m.rl.Stdout(), "Set publishing mode failed: %v\n", err)
			return
		}
		fmt.Fprintf(m.rl.Stdout(), "Subscription %d publishing %sd\n", subID, args[0])

	case "delete":
		if len(args) < 2 {
			fmt.Fprintln(m.rl.Stdout(), "Usage: sub delete <id>")
			return
		}
		subID, ok := m.parseSubID(args[1])
		if !ok {
			return
		}

		m.mu.Lock()
		err := m.client.Unsubscribe(subID)
		m.mu.Unlock()
		if err != nil {
			fmt.Fprintf(m.rl.Stdout(), "Delete failed: %v\n", err)
			return
		}
		fmt.Fprintf(m.rl.Stdout(), "Subscription %d deleted\n", subID)

	default:
		fmt.Fprintf(m.rl.Stdout(), "Unknown subcommand: sub %s\n", args[0])
	}
}

// cmdSubs lists the known subscriptions.
func (m *Monitor) cmdSubs() {
	m.mu.Lock()
	ids := m.client.Subscriptions()
	states := make(map[ua.SubscriptionID]bool, len(ids))
	params := make(map[ua.SubscriptionID]ua.SubscriptionParameters, len(ids))
	for _, id := range ids {
		if s, ok := m.client.Subscription(id); ok {
			states[id] = s.PublishingEnabled
			params[id] = s.Parameters
		}
	}
	m.mu.Unlock()

	if len(ids) == 0 {
		fmt.Fprintln(m.rl.Stdout(), "No subscriptions")
		return
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fmt.Fprintf(m.rl.Stdout(), "\nSubscriptions (%d):\n", len(ids))
	for _, id := range ids {
		p := params[id]
		status := "enabled"
		if !states[id] {
			status = "disabled"
		}
		fmt.Fprintf(m.rl.Stdout(), "  %d: interval %v, keep-alive %d, lifetime %d, publishing %s\n",
			id, p.PublishingInterval, p.MaxKeepAliveCount, p.LifetimeCount, status)
	}
	fmt.Fprintln(m.rl.Stdout())
}

// cmdMonitor creates a reporting data change item on a node.
func (m *Monitor) cmdMonitor(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: monitor <sub> <node> [interval]")
		fmt.Fprintln(m.rl.Stdout(), "  Example: monitor 1 ns=1;i=102 20ms")
		return
	}
	subID, ok := m.parseSubID(args[0])
	if !ok {
		return
	}
	node, err := parseNode(args[1])
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Invalid node: %v\n", err)
		return
	}

	params := ua.DefaultMonitoringParameters()
	if len(args) > 2 {
		interval, err := time.ParseDuration(args[2])
		if err != nil {
			fmt.Fprintf(m.rl.Stdout(), "Invalid interval: %v\n", err)
			return
		}
		params.SamplingInterval = interval
	}

	onChange := func(subID ua.SubscriptionID, itemID ua.MonitoredItemID, value ua.DataValue) {
		fmt.Fprintf(m.rl.Stdout(), "[sub %d item %d] %s  (source %s)\n",
			subID, itemID, value.Value.String(),
			value.SourceTimestamp.Format("15:04:05.000"))
	}
	onDelete := func(subID ua.SubscriptionID, itemID ua.MonitoredItemID) {
		fmt.Fprintf(m.rl.Stdout(), "[sub %d item %d] deleted\n", subID, itemID)
	}

	m.mu.Lock()
	itemID, err := m.client.MonitorDataChange(subID,
		ua.ReadValueID{NodeID: node, AttributeID: ua.AttrValue},
		ua.MonitoringReporting, &params, onChange, onDelete)
	m.mu.Unlock()
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Monitor failed: %v\n", err)
		return
	}
	fmt.Fprintf(m.rl.Stdout(), "Item %d monitoring %s (revised sampling %v, queue %d)\n",
		itemID, node, params.SamplingInterval, params.QueueSize)
}

// cmdMonitorEvent creates a reporting event item on a source node. Any
// extra arguments become select clauses by browse path.
func (m *Monitor) cmdMonitorEvent(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: monitor-event <sub> <node> [field ...]")
		fmt.Fprintln(m.rl.Stdout(), "  Example: monitor-event 1 ns=1;i=300 severity message")
		return
	}
	subID, ok := m.parseSubID(args[0])
	if !ok {
		return
	}
	node, err := parseNode(args[1])
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Invalid node: %v\n", err)
		return
	}

	var filter *ua.EventFilter
	fields := args[2:]
	if len(fields) > 0 {
		filter = &ua.EventFilter{}
		for _, f := range fields {
			filter.SelectClauses = append(filter.SelectClauses, ua.SelectClause{
				BrowsePath:  strings.Split(f, "/"),
				AttributeID: ua.AttrValue,
			})
		}
	}

	onEvent := func(subID ua.SubscriptionID, itemID ua.MonitoredItemID, eventFields []ua.Variant) {
		var sb strings.Builder
		for i, v := range eventFields {
			if i > 0 {
				sb.WriteString(", ")
			}
			if i < len(fields) {
				fmt.Fprintf(&sb, "%s=%s", fields[i], v.String())
			} else {
				sb.WriteString(v.String())
			}
		}
		fmt.Fprintf(m.rl.Stdout(), "[sub %d item %d] event: %s\n", subID, itemID, sb.String())
	}
	onDelete := func(subID ua.SubscriptionID, itemID ua.MonitoredItemID) {
		fmt.Fprintf(m.rl.Stdout(), "[sub %d item %d] deleted\n", subID, itemID)
	}

	params := ua.DefaultMonitoringParameters()

	m.mu.Lock()
	itemID, err := m.client.MonitorEvent(subID,
		ua.ReadValueID{NodeID: node, AttributeID: ua.AttrEventNotifier},
		ua.MonitoringReporting, &params, filter, onEvent, onDelete)
	m.mu.Unlock()
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Monitor failed: %v\n", err)
		return
	}
	fmt.Fprintf(m.rl.Stdout(), "Item %d monitoring events from %s\n", itemID, node)
}

// cmdItems lists the monitored items of a subscription.
func (m *Monitor) cmdItems(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: items <sub>")
		return
	}
	subID, ok := m.parseSubID(args[0])
	if !ok {
		return
	}

	m.mu.Lock()
	ids := m.client.MonitoredItems(subID)
	m.mu.Unlock()

	if len(ids) == 0 {
		fmt.Fprintf(m.rl.Stdout(), "No monitored items on subscription %d\n", subID)
		return
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fmt.Fprintf(m.rl.Stdout(), "Monitored items on subscription %d:", subID)
	for _, id := range ids {
		fmt.Fprintf(m.rl.Stdout(), " %d", id)
	}
	fmt.Fprintln(m.rl.Stdout())
}

// cmdMode sets the monitoring mode of an item.
func (m *Monitor) cmdMode(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: mode <sub> <item> disabled|sampling|reporting")
		return
	}
	subID, ok := m.parseSubID(args[0])
	if !ok {
		return
	}
	itemID, ok := m.parseItemID(args[1])
	if !ok {
		return
	}

	var mode ua.MonitoringMode
	switch args[2] {
	case "disabled":
		mode = ua.MonitoringDisabled
	case "sampling":
		mode = ua.MonitoringSampling
	case "reporting":
		mode = ua.MonitoringReporting
	default:
		fmt.Fprintf(m.rl.Stdout(), "Unknown mode: %s\n", args[2])
		return
	}

	m.mu.Lock()
	err := m.client.SetMonitoringMode(subID, itemID, mode)
	m.mu.Unlock()
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Set mode failed: %v\n", err)
		return
	}
	fmt.Fprintf(m.rl.Stdout(), "Item %d now %s\n", itemID, mode)
}

// cmdModify changes the sampling interval of an item.
func (m *Monitor) cmdModify(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: modify <sub> <item> <interval>")
		return
	}
	subID, ok := m.parseSubID(args[0])
	if !ok {
		return
	}
	itemID, ok := m.parseItemID(args[1])
	if !ok {
		return
	}
	interval, err := time.ParseDuration(args[2])
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Invalid interval: %v\n", err)
		return
	}

	params := ua.DefaultMonitoringParameters()
	params.SamplingInterval = interval

	m.mu.Lock()
	err = m.client.ModifyItem(subID, itemID, &params)
	m.mu.Unlock()
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Modify failed: %v\n", err)
		return
	}
	fmt.Fprintf(m.rl.Stdout(), "Item %d modified (revised sampling %v, queue %d)\n",
		itemID, params.SamplingInterval, params.QueueSize)
}

// cmdTrigger adds or removes triggering links on an item.
func (m *Monitor) cmdTrigger(args []string) {
	if len(args) < 4 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: trigger <sub> <item> add|remove <link ...>")
		return
	}
	subID, ok := m.parseSubID(args[0])
	if !ok {
		return
	}
	itemID, ok := m.parseItemID(args[1])
	if !ok {
		return
	}

	var links []ua.MonitoredItemID
	for _, a := range args[3:] {
		link, ok := m.parseItemID(a)
		if !ok {
			return
		}
		links = append(links, link)
	}

	var add, remove []ua.MonitoredItemID
	switch args[2] {
	case "add":
		add = links
	case "remove":
		remove = links
	default:
		fmt.Fprintf(m.rl.Stdout(), "Unknown action: %s (want add or remove)\n", args[2])
		return
	}

	m.mu.Lock()
	result, err := m.client.SetTriggering(subID, itemID, add, remove)
	m.mu.Unlock()
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Set triggering failed: %v\n", err)
		return
	}

	for i, status := range result.AddResults {
		fmt.Fprintf(m.rl.Stdout(), "  add link %d: %s\n", add[i], status)
	}
	for i, status := range result.RemoveResults {
		fmt.Fprintf(m.rl.Stdout(), "  remove link %d: %s\n", remove[i], status)
	}
}

// cmdUnmonitor deletes a monitored item.
func (m *Monitor) cmdUnmonitor(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: unmonitor <sub> <item>")
		return
	}
	subID, ok := m.parseSubID(args[0])
	if !ok {
		return
	}
	itemID, ok := m.parseItemID(args[1])
	if !ok {
		return
	}

	m.mu.Lock()
	err := m.client.Unmonitor(subID, itemID)
	m.mu.Unlock()
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Unmonitor failed: %v\n", err)
		return
	}
	fmt.Fprintf(m.rl.Stdout(), "Item %d delete requested\n", itemID)
}

// cmdCall invokes a method, synchronously or via a future.
func (m *Monitor) cmdCall(args []string, async bool) {
	if len(args) < 2 {
		name := "call"
		if async {
			name = "call-async"
		}
		fmt.Fprintf(m.rl.Stdout(), "Usage: %s <object> <method> [arg ...]\n", name)
		fmt.Fprintf(m.rl.Stdout(), "  Example: %s ns=1;i=200 ns=1;i=201 2 3\n", name)
		return
	}
	object, err := parseNode(args[0])
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Invalid object node: %v\n", err)
		return
	}
	method, err := parseNode(args[1])
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Invalid method node: %v\n", err)
		return
	}

	var callArgs []ua.Variant
	for _, a := range args[2:] {
		callArgs = append(callArgs, parseVariant(a))
	}

	if async {
		m.mu.Lock()
		future, err := m.client.CallAsync(object, method, callArgs)
		m.mu.Unlock()
		if err != nil {
			fmt.Fprintf(m.rl.Stdout(), "Call failed: %v\n", err)
			return
		}
		fmt.Fprintf(m.rl.Stdout(), "Request %d pending\n", future.RequestID())

		// The future resolves during a later pump; print from a
		// waiter so the prompt stays responsive.
		go func() {
			<-future.Done()
			resp, err := future.Result()
			if err != nil {
				fmt.Fprintf(m.rl.Stdout(), "[request %d] failed: %v\n", future.RequestID(), err)
				return
			}
			m.printCallResults(fmt.Sprintf("request %d", future.RequestID()), resp.Results)
		}()
		return
	}

	m.mu.Lock()
	result, err := m.client.Call(object, method, callArgs)
	m.mu.Unlock()
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Call failed: %v\n", err)
		return
	}
	m.printCallResults("call", []ua.CallMethodResult{*result})
}

func (m *Monitor) printCallResults(label string, results []ua.CallMethodResult) {
	for _, r := range results {
		if r.StatusCode != ua.Good {
			fmt.Fprintf(m.rl.Stdout(), "[%s] status %s\n", label, r.StatusCode)
			for i, s := range r.InputArgumentResults {
				if s != ua.Good {
					fmt.Fprintf(m.rl.Stdout(), "  argument %d: %s\n", i, s)
				}
			}
			continue
		}
		var sb strings.Builder
		for i, v := range r.OutputArguments {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(v.String())
		}
		fmt.Fprintf(m.rl.Stdout(), "[%s] ok: %s\n", label, sb.String())
	}
}

// cmdPending shows the outstanding async call count.
func (m *Monitor) cmdPending() {
	m.mu.Lock()
	n := m.client.PendingCalls()
	m.mu.Unlock()
	fmt.Fprintf(m.rl.Stdout(), "Pending calls: %d\n", n)
}

// cmdSet writes a simulator variable.
func (m *Monitor) cmdSet(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: set <node> <value>")
		fmt.Fprintln(m.rl.Stdout(), "  Example: set ns=1;i=100 42")
		return
	}
	node, err := parseNode(args[0])
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Invalid node: %v\n", err)
		return
	}

	value := parseVariant(strings.Join(args[1:], " "))
	if err := m.sim.SetValue(node, value); err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Set failed: %v\n", err)
		return
	}
	fmt.Fprintln(m.rl.Stdout(), "OK")
}

// cmdRead reads a simulator variable.
func (m *Monitor) cmdRead(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: read <node>")
		return
	}
	node, err := parseNode(args[0])
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Invalid node: %v\n", err)
		return
	}

	value, ok := m.sim.Value(node)
	if !ok {
		fmt.Fprintf(m.rl.Stdout(), "Unknown node %s\n", node)
		return
	}
	fmt.Fprintf(m.rl.Stdout(), "%s = %s\n", node, value.String())
}

// cmdEmit raises an event against a source node.
func (m *Monitor) cmdEmit(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: emit <node> [key=value ...]")
		fmt.Fprintln(m.rl.Stdout(), "  Example: emit ns=1;i=300 severity=500 message=overtemp")
		return
	}
	source, err := parseNode(args[0])
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Invalid node: %v\n", err)
		return
	}

	ev := simstack.Event{Fields: make(map[string]ua.Variant)}
	for _, pair := range args[1:] {
		key, raw, found := strings.Cut(pair, "=")
		if !found {
			fmt.Fprintf(m.rl.Stdout(), "Invalid field %q (want key=value)\n", pair)
			return
		}
		if key == "type" {
			typeID, err := parseNode(raw)
			if err != nil {
				fmt.Fprintf(m.rl.Stdout(), "Invalid type node: %v\n", err)
				return
			}
			ev.TypeID = typeID
			continue
		}
		ev.Fields[key] = parseVariant(raw)
	}

	queued := m.sim.EmitEvent(source, ev)
	fmt.Fprintf(m.rl.Stdout(), "Event queued for %d item(s)\n", queued)
}

// cmdPump runs one manual client pump.
func (m *Monitor) cmdPump(args []string) {
	d := 100 * time.Millisecond
	if len(args) > 0 {
		parsed, err := time.ParseDuration(args[0])
		if err != nil {
			fmt.Fprintf(m.rl.Stdout(), "Invalid duration: %v\n", err)
			return
		}
		d = parsed
	}

	m.mu.Lock()
	err := m.client.RunIterate(d)
	m.mu.Unlock()
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Pump failed: %v\n", err)
		return
	}
	fmt.Fprintf(m.rl.Stdout(), "Pumped %v\n", d)
}

// cmdAuto toggles the background pump.
func (m *Monitor) cmdAuto(args []string) {
	if len(args) < 1 {
		state := "off"
		if m.pumpActive() {
			state = "on"
		}
		fmt.Fprintf(m.rl.Stdout(), "Background pump is %s (usage: auto on|off)\n", state)
		return
	}

	switch args[0] {
	case "on":
		if m.pumpActive() {
			fmt.Fprintln(m.rl.Stdout(), "Background pump already running")
			return
		}
		m.startPump()
		fmt.Fprintln(m.rl.Stdout(), "Background pump started")
	case "off":
		if !m.pumpActive() {
			fmt.Fprintln(m.rl.Stdout(), "Background pump not running")
			return
		}
		m.stopPump()
		fmt.Fprintln(m.rl.Stdout(), "Background pump stopped (use 'pump' to pump manually)")
	default:
		fmt.Fprintf(m.rl.Stdout(), "Unknown argument: %s (want on or off)\n", args[0])
	}
}

// cmdBrowse discovers announced endpoints on the local network.
func (m *Monitor) cmdBrowse(args []string) {
	timeout := 3 * time.Second
	if len(args) > 0 {
		parsed, err := time.ParseDuration(args[0])
		if err != nil {
			fmt.Fprintf(m.rl.Stdout(), "Invalid timeout: %v\n", err)
			return
		}
		timeout = parsed
	}

	browser, err := discovery.NewMDNSBrowser(discovery.DefaultBrowserConfig())
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Browse failed: %v\n", err)
		return
	}
	defer browser.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	added, _, err := browser.Browse(ctx)
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Browse failed: %v\n", err)
		return
	}

	fmt.Fprintf(m.rl.Stdout(), "Browsing for %v...\n", timeout)
	count := 0
	for server := range added {
		count++
		fmt.Fprintf(m.rl.Stdout(), "  %s  %s  caps=%s\n",
			server.Name, server.Endpoint(), strings.Join(server.Capabilities, ","))
	}
	fmt.Fprintf(m.rl.Stdout(), "Found %d endpoint(s)\n", count)
}

func (m *Monitor) pumpActive() bool {
	m.pumpMu.Lock()
	defer m.pumpMu.Unlock()
	return m.pumpRunning
}

// startPump launches the background pump goroutine. Each iteration
// takes the client mutex, so commands interleave cleanly.
func (m *Monitor) startPump() {
	m.pumpMu.Lock()
	defer m.pumpMu.Unlock()
	if m.pumpRunning {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.pumpCancel = cancel
	m.pumpDone = done
	m.pumpRunning = true

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			m.mu.Lock()
			err := m.client.RunIterate(pumpSlice)
			m.mu.Unlock()
			if err != nil {
				return
			}
		}
	}()
}

// stopPump stops the background pump and waits for it to exit.
func (m *Monitor) stopPump() {
	m.pumpMu.Lock()
	defer m.pumpMu.Unlock()
	if !m.pumpRunning {
		return
	}
	m.pumpCancel()
	<-m.pumpDone
	m.pumpRunning = false
}

func (m *Monitor) parseSubID(s string) (ua.SubscriptionID, bool) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Invalid subscription id %q\n", s)
		return 0, false
	}
	return ua.SubscriptionID(n), true
}

func (m *Monitor) parseItemID(s string) (ua.MonitoredItemID, bool) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Invalid item id %q\n", s)
		return 0, false
	}
	return ua.MonitoredItemID(n), true
}

// parseNode parses the "ns=1;i=100" node id form.
func parseNode(s string) (ua.NodeID, error) {
	var ns uint16
	var id uint32
	if _, err := fmt.Sscanf(s, "ns=%d;i=%d", &ns, &id); err != nil {
		return ua.NodeID{}, fmt.Errorf("invalid node id %q (want \"ns=1;i=100\")", s)
	}
	return ua.NewNodeID(ns, id), nil
}

// parseVariant converts a command argument: int, then float, then bool,
// then string with surrounding quotes stripped.
func parseVariant(s string) ua.Variant {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ua.NewVariant(v)
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return ua.NewVariant(v)
	}
	if v, err := strconv.ParseBool(s); err == nil {
		return ua.NewVariant(v)
	}
	return ua.NewVariant(strings.Trim(s, "\"'"))
}
