package policy

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/agenticflow/agenticflow"
	"go.uber.org/zap"
)

// Interface compliance check.
var _ agenticflow.Requester = (*Guard)(nil)

// Guard wraps a Requester: every call is checked against the policy, then
// forwarded, then audited.
type Guard struct {
	next   agenticflow.Requester
	policy Policy
	audit  *Audit
	logger *zap.Logger

	mu    sync.Mutex
	spent float64
}

// GuardOption configures a [Guard].
type GuardOption func(*Guard)

// WithAudit records every decision in a.
func WithAudit(a *Audit) GuardOption {
	return func(g *Guard) { g.audit = a }
}

// WithLogger sets the logger for denials.
func WithLogger(l *zap.Logger) GuardOption {
	return func(g *Guard) { g.logger = l }
}

// NewGuard returns a Guard forwarding allowed calls to next.
func NewGuard(next agenticflow.Requester, p Policy, opts ...GuardOption) *Guard {
	g := &Guard{next: next, policy: p, logger: zap.NewNop()}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Spent returns the cost charged so far. Denied calls are not charged.
func (g *Guard) Spent() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.spent
}

// Request implements agenticflow.Requester.
func (g *Guard) Request(ctx context.Context, method, path string, opts agenticflow.RequestOptions) (*agenticflow.Response, error) {
	op, cost, err := g.admit(method, path)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := g.next.Request(ctx, method, path, opts)
	e := Entry{Operation: op, Decision: DecisionAllow, Cost: cost, Duration: time.Since(start), Err: err}
	if resp != nil {
		e.Status, e.RequestID = resp.StatusCode, resp.RequestID
	}
	g.record(e)
	return resp, err
}

// RequestStream implements agenticflow.Requester. The audit entry is
// written once the stream is opened.
func (g *Guard) RequestStream(ctx context.Context, method, path string, opts agenticflow.RequestOptions) (*agenticflow.LiveResponse, error) {
	op, cost, err := g.admit(method, path)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	live, err := g.next.RequestStream(ctx, method, path, opts)
	e := Entry{Operation: op, Decision: DecisionAllow, Cost: cost, Duration: time.Since(start), Err: err}
	if live != nil {
		e.Status, e.RequestID = live.StatusCode, live.RequestID
	}
	g.record(e)
	return live, err
}

func (g *Guard) admit(method, path string) (agenticflow.Operation, float64, error) {
	op := agenticflow.OperationFor(method, path)
	cost := agenticflow.EstimateCost(op.Method)

	g.mu.Lock()
	err := g.policy.Check(op, g.spent)
	if err == nil {
		g.spent += cost
	}
	g.mu.Unlock()

	if err != nil {
		g.logger.Warn("call denied by policy",
			zap.String(agenticflow.LogKeyOperation, op.ID),
			zap.Error(err),
		)
		g.record(Entry{Operation: op, Decision: DecisionDeny, Cost: cost, Err: err})
		return op, cost, err
	}
	return op, cost, nil
}

func (g *Guard) record(e Entry) {
	if g.audit == nil {
		return
	}
	var afErr *agenticflow.Error
	if e.Status == 0 && errors.As(e.Err, &afErr) {
		e.Status, e.RequestID = afErr.StatusCode, afErr.RequestID
	}
	g.audit.Record(e)
}
