package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Transaction runs steps in order and, when one fails, runs the compensations
// of the steps that already succeeded in reverse order. It gives
// multi-document writes all-or-nothing behavior on a store without
// cross-document transactions.
type Transaction struct {
	steps  []step
	logger *zap.Logger
}

type step struct {
	name       string
	fn         func(context.Context) error
	compensate func(context.Context) error
}

func NewTransaction(logger *zap.Logger) *Transaction {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transaction{logger: logger}
}

func (t *Transaction) AddOperation(name string, fn func(context.Context) error) {
	t.steps = append(t.steps, step{name: name, fn: fn})
}

// AddCompensation attaches an undo action to the last added operation.
func (t *Transaction) AddCompensation(name string, fn func(context.Context) error) {
	if len(t.steps) == 0 {
		return
	}
	t.steps[len(t.steps)-1].compensate = fn
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, s := range t.steps {
		if err := s.fn(ctx); err != nil {
			t.rollback(ctx, i)
			return fmt.Errorf("operation '%s' failed: %w (rolled back %d operations)", s.name, err, i)
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAt int) {
	for i := failedAt - 1; i >= 0; i-- {
		s := t.steps[i]
		if s.compensate == nil {
			continue
		}
		if err := s.compensate(ctx); err != nil {
			t.logger.Error("compensation failed, data may be inconsistent",
				zap.String("operation", s.name),
				zap.Error(err),
			)
		}
	}
}
