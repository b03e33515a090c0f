// Package engine is the dialogue core: it resolves each inbound message to an
// intent, advances any open task flow, asks collaborators for side effects and
// composes the response directive. Collaborator failures fold into the
// directive; no turn fails hard.
package engine

import (
	"context"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/salespilot-ai/salespilot/internal/analysis"
	"github.com/salespilot-ai/salespilot/internal/crm"
	"github.com/salespilot-ai/salespilot/internal/enhancer"
	"github.com/salespilot-ai/salespilot/internal/flow"
	"github.com/salespilot-ai/salespilot/internal/intent"
	"github.com/salespilot-ai/salespilot/internal/mail"
	"github.com/salespilot-ai/salespilot/internal/observability"
	"github.com/salespilot-ai/salespilot/internal/session"
)

// Engine orchestrates one turn at a time per session.
type Engine struct {
	sessions *session.Store
	store    crm.Store
	sender   mail.Sender
	rewriter enhancer.Rewriter
	metrics  *observability.Metrics
	window   *observability.TurnStageWindow

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func New(sessions *session.Store, store crm.Store, sender mail.Sender, rewriter enhancer.Rewriter, metrics *observability.Metrics) *Engine {
	return &Engine{
		sessions: sessions,
		store:    store,
		sender:   sender,
		rewriter: rewriter,
		metrics:  metrics,
		window:   observability.NewTurnStageWindow(256),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
	}
}

// SetRandSource overrides the template-selection randomness, for tests.
func (e *Engine) SetRandSource(src rand.Source) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rng = rand.New(src)
}

// SetClock overrides the time source, for tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// PerfSnapshot exposes the rolling turn-stage latency window.
func (e *Engine) PerfSnapshot() observability.TurnStageSnapshot {
	return e.window.Snapshot()
}

// pick selects an index in [0,n) through the injectable random source.
func (e *Engine) pick(n int) int {
	if n <= 1 {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Intn(n)
}

// HandleTurn runs one operator message through the router. The whole turn,
// including collaborator calls, executes under the session's lock so turns on
// one session never interleave.
func (e *Engine) HandleTurn(ctx context.Context, sessionID, text string) Directive {
	start := e.now()
	var d Directive
	_, err := e.sessions.Update(sessionID, func(s *session.Session) error {
		d = e.routeTurn(ctx, s, text)
		s.Turns = append(s.Turns,
			session.Turn{Role: "client", Text: text, At: e.now()},
			session.Turn{Role: "agent", Text: d.ResponseText, At: e.now()},
		)
		return nil
	})
	if err != nil {
		// Mutator never errors today; keep the guard for future mutators.
		log.Printf("engine: session update for %q: %v", sessionID, err)
	}
	if e.metrics != nil {
		e.metrics.ObserveTurnLatency(e.now().Sub(start))
	}
	e.observeStage("turn_total", start)
	return d
}

func (e *Engine) routeTurn(ctx context.Context, s *session.Session, text string) Directive {
	lower := strings.ToLower(text)

	// 1. Continuation of an open task flow.
	flowStart := e.now()
	switch s.CurrentTask {
	case session.TaskInvoiceCreation:
		d := e.continueInvoice(s, text)
		e.observeStage("flow", flowStart)
		return d
	case session.TaskDiscountNegotiation:
		d := e.continueDiscount(s, text)
		e.observeStage("flow", flowStart)
		return d
	}

	// 2. Pending follow-up confirmation gate. Unmatched replies fall through
	// to intent resolution; the draft stays pending.
	if s.PendingFollowup != nil {
		if d, handled := e.resolveConfirmation(ctx, s, lower); handled {
			e.observeStage("flow", flowStart)
			return d
		}
	}

	// 3. Fresh intent.
	classifyStart := e.now()
	tag := intent.Classify(lower)
	e.observeStage("classify", classifyStart)
	if e.metrics != nil {
		e.metrics.Turns.WithLabelValues(string(tag)).Inc()
	}

	actStart := e.now()
	var d Directive
	switch tag {
	case intent.GenerateEmails:
		d = e.generateEmails(ctx, s)
	case intent.SendFollowups:
		d = e.generateFollowup(ctx, s)
	case intent.ShowHighPriority:
		d = e.showHighPriority(ctx)
	case intent.AnalyzeLeads:
		d = e.analyzeLeads(ctx)
	case intent.SendInvoice:
		d = e.sendInvoice(ctx, s)
	case intent.ShowEmailExample:
		d = e.showEmailExample(ctx)
	case intent.SendEmails:
		d = e.sendEmails(ctx, s)
	case intent.CreateInvoice:
		d = e.startInvoice(s)
	case intent.SendPitch:
		d = e.sendPitch(s, lower)
	case intent.DiscountRequest:
		d = e.startDiscount(s, lower)
	case intent.FollowUp:
		d = e.followUpOverview(ctx)
	case intent.ClientResponded:
		d = e.clientResponded(lower)
	default:
		d = e.generalQuery(ctx, text, lower)
	}
	e.observeStage("act", actStart)

	return e.enhance(ctx, s.ID, string(tag), d)
}

// resolveConfirmation answers a pending follow-up preview. handled is false
// when the reply matched no gate keyword and normal routing should take over.
func (e *Engine) resolveConfirmation(ctx context.Context, s *session.Session, lower string) (d Directive, handled bool) {
	switch flow.ClassifyConfirmation(lower) {
	case flow.ConfirmationSend:
		return e.sendPendingFollowup(ctx, s), true
	case flow.ConfirmationRegenerate:
		s.PendingFollowup = nil
		return e.generateFollowup(ctx, s), true
	case flow.ConfirmationCancel:
		s.PendingFollowup = nil
		return Directive{
			Understood:       true,
			ResponseText:     "Follow-up cancelled. What would you like to do next?",
			SuggestedActions: []string{"Generate emails", "Analyze leads", "Create invoice"},
		}, true
	}
	return Directive{}, false
}

func (e *Engine) observeStage(stage string, started time.Time) {
	e.window.Observe(stage, float64(e.now().Sub(started).Milliseconds()))
}

// enhance optionally rewrites the response wording. The rewriter can only
// touch text; everything else in the directive is already final.
func (e *Engine) enhance(ctx context.Context, sessionID, tag string, d Directive) Directive {
	if e.rewriter == nil || d.ResponseText == "" {
		return d
	}
	started := e.now()
	text, err := e.rewriter.Rewrite(ctx, enhancer.Request{
		SessionID: sessionID,
		Intent:    tag,
		Text:      d.ResponseText,
	})
	e.observeStage("enhance", started)
	if err != nil {
		if e.metrics != nil {
			e.metrics.CollaboratorErrors.WithLabelValues("enhancer", "rewrite").Inc()
		}
		e.window.ObserveIndicator("enhancer_fallback")
		return d
	}
	if strings.TrimSpace(text) != "" {
		d.ResponseText = text
	}
	return d
}

// sentimentOf is a convenience wrapper used by the client-response handler.
func sentimentOf(text string) analysis.Sentiment {
	return analysis.Analyze(text).Sentiment
}
