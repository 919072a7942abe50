package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/nexus-concierge/internal/entity"
)

// SchedulingSweeper devolve para failed os posts que ficaram presos em
// scheduling (processo morto entre o begin_scheduling e a compensação).
type SchedulingSweeper struct {
	posts        entity.SocialPostRepositoryInterface
	staleAfter   time.Duration
	tickInterval time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

func NewSchedulingSweeper(posts entity.SocialPostRepositoryInterface, staleAfter, tick time.Duration, logger *zap.Logger) *SchedulingSweeper {
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	if tick <= 0 {
		tick = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulingSweeper{
		posts:        posts,
		staleAfter:   staleAfter,
		tickInterval: tick,
		logger:       logger,
		now:          time.Now,
	}
}

func (w *SchedulingSweeper) Start(ctx context.Context) {
	w.logger.Info("sweeper de agendamentos iniciado", zap.Duration("janela", w.staleAfter))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sweeper de agendamentos encerrado")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

func (w *SchedulingSweeper) Sweep(ctx context.Context) int64 {
	n, err := w.posts.FailStaleScheduling(ctx, w.now().Add(-w.staleAfter))
	if err != nil {
		w.logger.Error("erro ao liberar posts travados", zap.Error(err))
		return 0
	}
	if n > 0 {
		w.logger.Warn("posts presos em scheduling marcados como failed", zap.Int64("total", n))
	}
	return n
}
