package statusengine

import (
	"regexp"
	"time"

	"apiary/classify"
	"apiary/config"
	"apiary/discovery"
	"apiary/events"
	"apiary/log"
	"apiary/pod"
	"apiary/tmux"
)

const discoveryInterval = 2 * time.Second

// Engine holds the live roster and everything needed to refresh it: the
// multiplexer, the event tailer, the Pod store, polling configuration, and
// the notifier used on permission edges.
type Engine struct {
	mux      multiplexer
	podMux   podMuxAdapter
	discMux  discoveryMuxAdapter
	store    *pod.Store
	tailer   *events.Tailer
	cfg      config.Config
	notifier Notifier

	Pods    []pod.Pod
	Focused string

	lastDiscovery  time.Time
	prevPermission map[string]bool

	extraPermission []*regexp.Regexp
	extraError      []*regexp.Regexp
	extraIdle       []*regexp.Regexp
}

// NewEngine wires a status engine against a live tmux adapter.
func NewEngine(store *pod.Store, mux *tmux.Adapter, tailer *events.Tailer, cfg config.Config, notifier Notifier) *Engine {
	return newEngine(store, mux, tailer, cfg, notifier)
}

func newEngine(store *pod.Store, mux multiplexer, tailer *events.Tailer, cfg config.Config, notifier Notifier) *Engine {
	return &Engine{
		mux:             mux,
		podMux:          podMuxAdapter{mux: mux},
		discMux:         discoveryMuxAdapter{mux: mux},
		store:           store,
		tailer:          tailer,
		cfg:             cfg,
		notifier:        notifier,
		prevPermission:  make(map[string]bool),
		extraPermission: compileAll(cfg.Detection.Permission),
		extraError:      compileAll(cfg.Detection.Error),
		extraIdle:       compileAll(cfg.Detection.Idle),
	}
}

func compileAll(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			log.WarningLog.Printf("skipping invalid detection pattern %q: %v", p, err)
			continue
		}
		compiled = append(compiled, re)
	}
	return compiled
}

// Load populates the roster from the Pod store, reconciling against live
// multiplexer state.
func (e *Engine) Load() error {
	pods, err := e.store.LoadAndReconcile(e.podMux)
	if err != nil {
		return err
	}
	e.Pods = pods
	return nil
}

// Refresh runs the full-refresh cadence: dead-session detection, event
// ingestion, the (throttled) discovery cadence, roll-up, and permission-edge
// notification. It persists the roster when its shape changed.
func (e *Engine) Refresh(now time.Time) error {
	e.detectDeadSessions(now)
	e.ingestEvents(now)

	shapeChanged := false
	if now.Sub(e.lastDiscovery) >= discoveryInterval {
		if e.mergeFromDisk() {
			shapeChanged = true
		}
		if e.runDiscovery(now) {
			shapeChanged = true
		}
		e.lastDiscovery = now
	}

	for i := range e.Pods {
		e.Pods[i].RollUp()
	}

	e.notifyPermissionEdges()

	if shapeChanged {
		if err := e.store.Save(e.Pods); err != nil {
			return err
		}
	}
	return nil
}

// Save persists the current in-memory roster to the Pod store.
func (e *Engine) Save() error {
	return e.store.Save(e.Pods)
}

// mergeFromDisk reloads the Pod store and folds in any Pods created by
// other processes since this engine last saw the roster, per spec §4.6's
// cross-process convergence requirement. Pods the engine already knows
// about keep their in-memory state rather than being overwritten by a
// stale on-disk copy.
func (e *Engine) mergeFromDisk() bool {
	diskPods, err := e.store.Load()
	if err != nil {
		// Observation failure: leave the in-memory roster as is, per
		// spec §7 rule 1.
		log.WarningLog.Printf("discovery: reloading pod store: %v", err)
		return false
	}

	known := make(map[string]bool, len(e.Pods))
	for _, p := range e.Pods {
		known[p.Name] = true
	}

	merged := false
	for _, p := range diskPods {
		if known[p.Name] {
			continue
		}
		e.Pods = append(e.Pods, p)
		known[p.Name] = true
		merged = true
	}
	return merged
}

// Tick runs the adaptive per-member polling pass.
func (e *Engine) Tick(now time.Time) {
	for i := range e.Pods {
		p := &e.Pods[i]
		for j := range p.Members {
			m := &p.Members[j]

			var interval time.Duration
			if p.Name == e.Focused {
				interval = e.cfg.Polling.Focused()
			} else {
				interval = e.cfg.Polling.IntervalFor(string(m.Status))
			}
			if m.LastPolled != nil && now.Sub(*m.LastPolled) < interval {
				continue
			}

			output, err := e.discMux.CapturePane(m.PaneID)
			polled := now
			if err != nil {
				m.LastPolled = &polled
				continue
			}

			newStatus := classify.DetectMemberStatus(output, e.extraPermission, e.extraError, e.extraIdle)
			if newStatus != m.Status {
				m.SetStatus(newStatus, now)
			}
			m.LastOutput = output
			m.SubAgents = classify.ParseSubAgents(output)
			m.LastPolled = &polled
		}
		p.RollUp()
	}
}

func (e *Engine) detectDeadSessions(now time.Time) {
	for i := range e.Pods {
		p := &e.Pods[i]
		exists, err := e.mux.SessionExists(p.Session)
		if err != nil {
			continue // observation failure absorbed
		}
		if !exists {
			for j := range p.Members {
				if p.Members[j].Status != pod.StatusDead {
					p.Members[j].SetStatus(pod.StatusDead, now)
				}
			}
		} else {
			for j := range p.Members {
				if p.Members[j].Status == pod.StatusDead {
					p.Members[j].SetStatus(pod.StatusIdle, now)
				}
			}
		}
		p.RollUp()
	}
}

func (e *Engine) ingestEvents(now time.Time) {
	records, err := e.tailer.Poll()
	if err != nil {
		log.WarningLog.Printf("event ingest: %v", err)
		return
	}
	if len(records) == 0 {
		return
	}

	var lastStatusEvent *events.Record
	for i := range records {
		rec := records[i]
		switch rec.Kind {
		case events.KindSubagentStart:
			e.applySubAgent(rec, true)
		case events.KindSubagentStop:
			e.applySubAgent(rec, false)
		}
		if _, ok := rec.InferredStatus(); ok {
			r := rec
			lastStatusEvent = &r
		}
	}
	if lastStatusEvent != nil {
		e.applyStatusEvent(*lastStatusEvent, now)
	}
}

func (e *Engine) applyStatusEvent(rec events.Record, now time.Time) {
	status, ok := rec.InferredStatus()
	if !ok {
		return
	}
	for i := range e.Pods {
		p := &e.Pods[i]
		if rec.Session != "" && p.Session != rec.Session && p.Name != rec.Session {
			continue
		}
		for j := range p.Members {
			m := &p.Members[j]
			m.SetStatus(status, now)
			m.LastPolled = nil
		}
	}
}

func (e *Engine) applySubAgent(rec events.Record, start bool) {
	for i := range e.Pods {
		p := &e.Pods[i]
		if rec.Session != "" && p.Session != rec.Session && p.Name != rec.Session {
			continue
		}
		for j := range p.Members {
			m := &p.Members[j]
			if start {
				addSubAgent(m, rec.AgentID, rec.AgentType)
			} else {
				removeSubAgent(m, rec.AgentID)
			}
		}
	}
}

func addSubAgent(m *pod.Member, agentID, agentType string) {
	for _, sa := range m.SubAgents {
		if sa.AgentID == agentID {
			return
		}
	}
	at := pod.AgentTask
	switch pod.SubAgentType(agentType) {
	case pod.AgentExplore, pod.AgentPlan, pod.AgentBash, pod.AgentTask:
		at = pod.SubAgentType(agentType)
	}
	m.SubAgents = append(m.SubAgents, pod.SubAgent{AgentID: agentID, AgentType: at})
}

func removeSubAgent(m *pod.Member, agentID string) {
	survivors := m.SubAgents[:0]
	for _, sa := range m.SubAgents {
		if sa.AgentID != agentID {
			survivors = append(survivors, sa)
		}
	}
	m.SubAgents = survivors
}

func (e *Engine) runDiscovery(now time.Time) bool {
	changed := false

	for i := range e.Pods {
		if discovery.RemoveStaleMembers(&e.Pods[i], e.discMux) {
			changed = true
		}
	}

	var newChildren []pod.Pod
	for i := range e.Pods {
		candidates, err := discovery.DiscoverNewMembers(e.Pods[i], e.Pods, e.discMux)
		if err != nil || len(candidates) == 0 {
			continue
		}
		children := discovery.CreateChildPods(&e.Pods[i], candidates, now)
		newChildren = append(newChildren, children...)
		changed = true
	}
	e.Pods = append(e.Pods, newChildren...)

	pruned := discovery.RemoveOrphanChildPods(e.Pods)
	if len(pruned) != len(e.Pods) {
		changed = true
	}
	e.Pods = pruned

	return changed
}

func (e *Engine) notifyPermissionEdges() {
	current := make(map[string]bool)
	for _, p := range e.Pods {
		if p.Status == pod.StatusPermission {
			current[p.Name] = true
		}
	}

	if e.cfg.Notification.Enabled {
		for name := range current {
			if !e.prevPermission[name] {
				if err := e.notifier.Notify("Permission needed", name+" is waiting on permission", e.cfg.Notification.Sound); err != nil {
					log.WarningLog.Printf("notify %s: %v", name, err)
				}
			}
		}
	}

	e.prevPermission = current
}
