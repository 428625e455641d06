package usecase

import (
	"context"

	"github.com/google/uuid"

	"lingomic/internal/domain"
)

// Operation is the caller's handle on a started pipeline.
type Operation struct {
	ID   string
	Kind domain.OperationKind

	done  chan struct{}
	state domain.OperationState
	err   error
}

// Done is closed when the operation reaches a terminal state.
func (op *Operation) Done() <-chan struct{} {
	return op.done
}

// Wait blocks until the operation ends. A superseded operation reports
// cancelled.
func (op *Operation) Wait() (domain.OperationState, error) {
	<-op.done
	return op.state, op.err
}

func (op *Operation) resolve(state domain.OperationState, err error) {
	op.state = state
	op.err = err
	close(op.done)
}

type activeOperation struct {
	ctx    context.Context
	cancel context.CancelFunc
	handle *Operation
}

func newActiveOperation(ctx context.Context, kind domain.OperationKind) *activeOperation {
	opCtx, cancel := context.WithCancel(ctx)
	return &activeOperation{
		ctx:    opCtx,
		cancel: cancel,
		handle: &Operation{ID: uuid.NewString(), Kind: kind, done: make(chan struct{})},
	}
}

func (a *activeOperation) id() string {
	return a.handle.ID
}

func (a *activeOperation) kind() domain.OperationKind {
	return a.handle.Kind
}

// begin cancels the running operation, installs a new one as current and
// reports it running. The superseded operation's terminal state is never
// reported.
func (o *Orchestrator) begin(ctx context.Context, kind domain.OperationKind, label string) *activeOperation {
	op := newActiveOperation(ctx, kind)

	o.mu.Lock()
	previous := o.current
	o.current = op
	o.errorMessage = ""
	o.processingMessage = label
	o.mu.Unlock()

	if previous != nil {
		previous.cancel()
		o.log.Debug().Str("op", previous.id()).Str("by", op.id()).Msg("operation superseded")
	}
	o.log.Debug().Str("op", op.id()).Str("kind", string(kind)).Msg("operation started")

	o.events.OperationStateChanged(op.id(), kind, domain.OperationStateRunning)
	o.publish()
	return op
}

// run executes pipeline on its own goroutine and finishes op with its result.
func (o *Orchestrator) run(op *activeOperation, pipeline func(op *activeOperation) error) {
	go func() {
		o.finish(op, pipeline(op))
	}()
}

// commit applies mutate only while op is current and live.
func (o *Orchestrator) commit(op *activeOperation, mutate func()) bool {
	o.mu.Lock()
	if o.current != op || op.ctx.Err() != nil {
		o.mu.Unlock()
		return false
	}
	mutate()
	o.mu.Unlock()

	o.publish()
	return true
}

func (o *Orchestrator) finish(op *activeOperation, err error) {
	o.mu.Lock()
	if o.current != op {
		o.mu.Unlock()
		op.cancel()
		op.handle.resolve(domain.OperationStateCancelled, domain.ErrCancelled)
		return
	}

	state := domain.OperationStateSucceeded
	message := ""
	switch {
	case err == nil:
	case domain.IsCancelled(err) || op.ctx.Err() != nil:
		state = domain.OperationStateCancelled
	default:
		state = domain.OperationStateFailed
		message = domain.Describe(err)
		o.errorMessage = message
	}
	o.current = nil
	o.processingMessage = domain.ProcessingDefault
	o.mu.Unlock()
	op.cancel()

	logEvent := o.log.Debug()
	if state == domain.OperationStateFailed {
		logEvent = o.log.Warn().Err(err)
	}
	logEvent.Str("op", op.id()).Str("kind", string(op.kind())).Str("state", string(state)).Msg("operation finished")

	o.events.OperationStateChanged(op.id(), op.kind(), state)
	if state == domain.OperationStateFailed {
		o.events.OperationError(domain.KindOf(err), message)
	}
	o.publish()

	if state == domain.OperationStateCancelled && err == nil {
		err = domain.ErrCancelled
	}
	op.handle.resolve(state, err)
}
