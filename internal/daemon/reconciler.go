package daemon

import (
	"context"
	"log/slog"
	"time"
)

// WindowChecker reports whether a window still exists.
type WindowChecker func(windowID uint32) bool

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// ReconcileTarget is the daemon state the reconciler keeps honest.
type ReconcileTarget interface {
	TrackedWindow() uint32
	HandleWindowClosed(windowID uint32)
	RefreshWorkArea()
}

// Reconciler periodically checks for state drift and corrects it: a
// tracked window whose client exited, or a work area that changed because a
// monitor or panel moved.
type Reconciler struct {
	interval time.Duration
	target   ReconcileTarget
	exists   WindowChecker
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, target ReconcileTarget, exists WindowChecker) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		target:   target,
		exists:   exists,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	id := r.target.TrackedWindow()
	if id == 0 {
		return
	}

	if !r.exists(id) {
		r.logger.Info("reconciler: tracked window is gone", "window_id", id)
		r.target.HandleWindowClosed(id)
		return
	}

	r.target.RefreshWorkArea()
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}
