// Package supervisor owns the LCU connection lifecycle: locate the
// client, connect, resync, apply events, reconnect on failure, and shut
// down cleanly (§4.10). It is the sole component allowed to decide when
// to reconnect or reacquire credentials (§7).
package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/lolscout/agent/internal/champions"
	"github.com/lolscout/agent/internal/config"
	"github.com/lolscout/agent/internal/dispatch"
	"github.com/lolscout/agent/internal/draft"
	"github.com/lolscout/agent/internal/lcuevents"
	"github.com/lolscout/agent/internal/locator"
	"github.com/lolscout/agent/internal/observer"
	"github.com/lolscout/agent/internal/phase"
	"github.com/lolscout/agent/internal/transport"
	"github.com/lolscout/agent/internal/trigger"
	"github.com/lolscout/agent/pkg/lcu"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	minBackoff = 1 * time.Second
	maxBackoff = 30 * time.Second
	graceDelay = 15 * time.Second
)

// Supervisor drives one League client session end to end.
type Supervisor struct {
	log      *zap.Logger
	cfg      *config.Config
	locator  *locator.Locator
	registry *champions.Registry
	hub      *observer.Hub
	dispatch *dispatch.Dispatcher

	// genGuard is bumped on every champ-select entry and grace timer arm;
	// a callback closure captures its own generation and checks it
	// against this field before acting, so a stale timer fire is a
	// no-op — the same guard shape as the teacher's lobby
	// timer-generation idiom, made safe for the timer's own goroutine
	// with an atomic counter.
	genGuard atomic.Uint64

	// sessionCtx is cancelled and replaced on every champ-select entry,
	// independent of the connection-scoped context runOneSession hands
	// down. A dodge-and-remake leaves the old draft's dispatch-delay
	// goroutines racing a closed-over fingerprint and URL; deriving
	// their context from sessionCtx rather than the connection context
	// means a new EvtChampSelectEntered kills them outright instead of
	// letting them fire late against the new session. Only touched from
	// the single event-loop goroutine, so it needs no lock.
	sessionCtx    context.Context
	sessionCancel context.CancelFunc
}

// New builds a Supervisor with its full dependency set.
func New(log *zap.Logger, cfg *config.Config, reg *champions.Registry, hub *observer.Hub) *Supervisor {
	return &Supervisor{
		log:      log,
		cfg:      cfg,
		locator:  locator.New(),
		registry: reg,
		hub:      hub,
		dispatch: dispatch.New(log),
	}
}

// Run blocks until ctx is cancelled, connecting and reconnecting to the
// client as needed. When Transport.MaxRetries is positive it instead
// returns an error once more than that many sessions have failed.
func (s *Supervisor) Run(ctx context.Context) error {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return nil
		}

		err := s.runOneSession(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			return nil
		}
		s.log.Warn("session ended, reconnecting", zap.Error(err))

		attempt++
		if s.cfg.Transport.MaxRetries > 0 && attempt > s.cfg.Transport.MaxRetries {
			return multierr.Append(err, errors.New("supervisor: max retries exceeded"))
		}

		wait := backoff(attempt, s.cfg.Transport.RetryIntervalMs)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// backoff computes the exponential delay for attempt N, capped at 30s.
func backoff(attempt int, intervalMs int) time.Duration {
	base := time.Duration(intervalMs) * time.Millisecond
	if base <= 0 {
		base = minBackoff
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

// runOneSession locates the client, connects, resyncs, and streams
// events until the connection fails or ctx is cancelled. A nil return
// means ctx was cancelled cleanly.
func (s *Supervisor) runOneSession(ctx context.Context) error {
	creds, err := s.locator.Acquire(ctx)
	if err != nil {
		return err
	}

	client := transport.New(creds, s.log)
	defer client.Close()

	if err := client.OpenEvents(ctx); err != nil {
		return err
	}

	ps := phase.Initial()
	draftModel := draft.New(s.registry, "")
	trig := trigger.New(s.cfg.Features, s.registry, s.cfg.Analytics.BaseURL)

	if err := s.resync(ctx, client, &ps, draftModel); err != nil {
		s.log.Warn("resync incomplete", zap.Error(err))
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return s.eventLoop(gctx, client, &ps, draftModel, trig)
	})

	return group.Wait()
}

// resync replays one get of each tracked resource before event
// application resumes, so a reconnect never applies deltas against a
// stale baseline (§4.10, §5's "resync gets are applied before any
// buffered WebSocket events").
func (s *Supervisor) resync(ctx context.Context, client *transport.Client, ps *phase.State, draftModel *draft.Model) error {
	var errs error

	var rawPhase string
	if err := client.Get(ctx, "/lol-gameflow/v1/gameflow-phase", &rawPhase); err != nil {
		errs = multierr.Append(errs, err)
	} else {
		_, next := phase.Apply(*ps, phase.Command{Type: phase.CmdPhaseChanged, Phase: &lcuevents.PhaseChanged{Phase: lcu.ParsePhase(rawPhase)}})
		*ps = next
		s.publish(*ps, draftModel.State(), nil)
	}

	if ps.Status == phase.StatusChampSelect {
		var raw map[string]any
		if err := client.Get(ctx, "/lol-champ-select/v1/session", &raw); err != nil && !transport.IsNotFound(err) {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// eventLoop reads frames until the stream fails or ctx is cancelled,
// applying each strictly in arrival order (§5).
func (s *Supervisor) eventLoop(ctx context.Context, client *transport.Client, ps *phase.State, draftModel *draft.Model, trig *trigger.Engine) error {
	for {
		frame, err := client.ReadFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		evt, err := lcuevents.Decode(frame)
		if err != nil {
			s.log.Debug("dropped malformed frame", zap.Error(err))
			continue
		}
		if evt == nil {
			continue
		}

		s.applyEvent(ctx, evt, ps, draftModel, trig)
	}
}

func (s *Supervisor) applyEvent(ctx context.Context, evt *lcuevents.Event, ps *phase.State, draftModel *draft.Model, trig *trigger.Engine) {
	switch {
	case evt.PhaseChanged != nil:
		events, next := phase.Apply(*ps, phase.Command{Type: phase.CmdPhaseChanged, Phase: evt.PhaseChanged})
		*ps = next
		for _, e := range events {
			s.handlePhaseEvent(ctx, ps, e, draftModel, trig)
		}

	case evt.ChampSelectSnapshot != nil:
		events, next := phase.Apply(*ps, phase.Command{Type: phase.CmdChampSelectSnapshot, Snapshot: evt.ChampSelectSnapshot})
		*ps = next
		for _, e := range events {
			s.handlePhaseEvent(ctx, ps, e, draftModel, trig)
		}
	}
}

func (s *Supervisor) handlePhaseEvent(ctx context.Context, ps *phase.State, e phase.Event, draftModel *draft.Model, trig *trigger.Engine) {
	switch e.Type {
	case phase.EvtChampSelectEntered:
		s.genGuard.Add(1)
		if s.sessionCancel != nil {
			s.sessionCancel()
		}
		s.sessionCtx, s.sessionCancel = context.WithCancel(ctx)
		draftModel.Reset(e.SessionID)
		trig.Reset(e.SessionID)

	case phase.EvtDraftUpdated:
		if e.IsNewSession {
			draftModel.Reset(e.SessionID)
			trig.Reset(e.SessionID)
		}
		picks := draftModel.Fold(e.Snapshot)
		for _, pe := range picks {
			s.fireTrigger(s.sessionDispatchCtx(ctx), *ps, draftModel.State(), trig, pickEventKind(pe.Kind), pe.Pick)
		}
		s.publish(*ps, draftModel.State(), nil)

	case phase.EvtGameStarted:
		if local, ok := draftModel.State().LocalPick(); ok {
			s.fireTrigger(s.sessionDispatchCtx(ctx), *ps, draftModel.State(), trig, trigger.KindGameStart, local)
		}

	case phase.EvtEnteringGrace:
		s.armGraceTimer(ctx, draftModel)

	case phase.EvtSessionCleared, phase.EvtGameEnded:
		// no further trigger activity for the closed session
	}
}

// sessionDispatchCtx returns the current champ-select session's context,
// falling back to the connection context if fireTrigger is somehow
// reached before any EvtChampSelectEntered has run.
func (s *Supervisor) sessionDispatchCtx(fallback context.Context) context.Context {
	if s.sessionCtx != nil {
		return s.sessionCtx
	}
	return fallback
}

func pickEventKind(k draft.EventKind) trigger.Kind {
	switch k {
	case draft.KindHover:
		return trigger.KindHover
	case draft.KindPick:
		return trigger.KindPick
	case draft.KindLockIn:
		return trigger.KindLockIn
	default:
		return ""
	}
}

// armGraceTimer resets the draft model to an empty session once
// graceDelay has passed; it does not run phase.CmdGraceExpired. A new
// champ-select entry bumps genGuard before this fires, so a stale timer
// from an already-superseded session is silently discarded.
func (s *Supervisor) armGraceTimer(ctx context.Context, draftModel *draft.Model) {
	myGen := s.genGuard.Add(1)
	go func() {
		select {
		case <-ctx.Done():
		case <-time.After(graceDelay):
			if myGen == s.genGuard.Load() {
				draftModel.Reset("")
			}
		}
	}()
}

// fireTrigger dispatches the intents trig.Evaluate returns. ctx is the
// caller's session-scoped context (see sessionDispatchCtx), not the
// connection-wide one, so a dodge-and-remake's delayed opens die with
// the session that queued them rather than firing into a new one.
func (s *Supervisor) fireTrigger(ctx context.Context, ps phase.State, state draft.State, trig *trigger.Engine, kind trigger.Kind, pick draft.Pick) {
	intents := trig.Evaluate(state, kind, pick)
	delay := time.Duration(s.cfg.Dispatch.DelayMs) * time.Millisecond
	for _, intent := range intents {
		intent := intent
		go func() {
			err := s.dispatch.Open(ctx, intent.URL, delay)
			logEntry := &observer.DispatchLog{URL: intent.URL, Feature: string(intent.Feature)}
			if err != nil && !errors.Is(err, dispatch.ErrCancelled) {
				logEntry.Error = err.Error()
			}
			s.publish(ps, state, logEntry)
		}()
	}
}

func (s *Supervisor) publish(ps phase.State, ds draft.State, lastDispatch *observer.DispatchLog) {
	if s.hub == nil {
		return
	}
	s.hub.Inbox() <- observer.Publish{Phase: ps, Draft: ds, LastDispatch: lastDispatch}
}
