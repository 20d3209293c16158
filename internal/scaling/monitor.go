package scaling

import (
	"context"
	"time"
)

// StartMonitoring launches the background monitoring loop. Each tick runs
// one full measure-predict-execute cycle over every monitored service.
// Returns false if the loop is already running.
func (e *Engine) StartMonitoring(ctx context.Context) bool {
	e.loopMu.Lock()
	defer e.loopMu.Unlock()
	if e.cancel != nil {
		return false
	}
	loopCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.wg.Add(1)
	go e.monitorLoop(loopCtx)
	e.log.Info("Infrastructure monitoring started")
	return true
}

// StopMonitoring requests loop shutdown and waits for it. The in-flight
// cycle completes; the loop exits at the next cycle boundary.
func (e *Engine) StopMonitoring() {
	e.loopMu.Lock()
	cancel := e.cancel
	e.cancel = nil
	e.loopMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	e.wg.Wait()
	e.log.Info("Infrastructure monitoring stopped")
}

// MonitoringActive reports whether the loop is running.
func (e *Engine) MonitoringActive() bool {
	e.loopMu.Lock()
	defer e.loopMu.Unlock()
	return e.cancel != nil
}

func (e *Engine) monitorLoop(ctx context.Context) {
	defer e.wg.Done()
	ticker := time.NewTicker(e.cfg.MonitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.runCycle(ctx)
		}
	}
}

// runCycle measures every monitored service and executes the resulting
// verdicts. While the coordination domain is paused, metrics are still
// collected but no decisions are made.
func (e *Engine) runCycle(ctx context.Context) {
	paused, _ := e.coord.IsPaused(Domain)
	for _, service := range e.cfg.MonitoredServices {
		metrics, err := e.cluster.CollectMetrics(ctx, service)
		if err != nil {
			e.log.WithError(err).WithField("service", service).Warn("Could not collect metrics")
			continue
		}
		history := e.History(service)
		e.recordMetrics(metrics)

		if paused {
			continue
		}
		decision, err := e.Decide(ctx, service, metrics, history)
		if err != nil {
			e.log.WithError(err).WithField("service", service).Error("Decision failed")
			continue
		}
		e.execute(ctx, decision)
	}
}
