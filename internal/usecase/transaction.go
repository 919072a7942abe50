package usecase

import (
	"context"
	"errors"
	"fmt"
)

// Transaction executa passos em sequência; se um passo falha, as
// compensações dos passos já concluídos rodam em ordem reversa (saga).
type Transaction struct {
	steps []Step
}

type Step struct {
	Name string
	Run  func(context.Context) error
	// Compensate recebe o erro que causou o rollback. Pode ser nil.
	Compensate func(ctx context.Context, cause error) error
}

// StepError descreve a falha de um passo e o resultado do rollback.
type StepError struct {
	Step            string
	Err             error
	RolledBack      int
	CompensationErr error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("operation '%s' failed: %v (rolled back %d operations)", e.Step, e.Err, e.RolledBack)
	if e.CompensationErr != nil {
		msg += fmt.Sprintf("; compensation failed: %v", e.CompensationErr)
	}
	return msg
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func NewTransaction() *Transaction {
	return &Transaction{}
}

func (t *Transaction) AddStep(name string, run func(context.Context) error, compensate func(context.Context, error) error) {
	t.steps = append(t.steps, Step{Name: name, Run: run, Compensate: compensate})
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, step := range t.steps {
		if err := step.Run(ctx); err != nil {
			rolledBack, compErr := t.rollback(ctx, i, err)
			return &StepError{Step: step.Name, Err: err, RolledBack: rolledBack, CompensationErr: compErr}
		}
	}
	return nil
}

// rollback roda mesmo com o ctx da requisição cancelado.
func (t *Transaction) rollback(ctx context.Context, failedAt int, cause error) (int, error) {
	ctx = context.WithoutCancel(ctx)

	var errs []error
	rolledBack := 0
	for i := failedAt - 1; i >= 0; i-- {
		comp := t.steps[i].Compensate
		if comp == nil {
			continue
		}
		if err := comp(ctx, cause); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.steps[i].Name, err))
			continue
		}
		rolledBack++
	}
	return rolledBack, errors.Join(errs...)
}
