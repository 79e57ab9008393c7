package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"workforce/internal/domain/compliance"
	"workforce/internal/platform/config"
	"workforce/internal/platform/metrics"
	"workforce/internal/platform/querier"
	"workforce/internal/requestctx"
)

const JobComplianceSweep = "compliance_sweep"

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Sweeper is satisfied by *compliance.Service.
type Sweeper interface {
	Sweep(ctx context.Context, tenantID string) (compliance.SweepResult, error)
}

// Notifier is satisfied by *notifications.Service.
type Notifier interface {
	NotifyCompliance(ctx context.Context, tenantID string, transitions []compliance.Transition) (int, error)
}

type Service struct {
	Cfg      config.Config
	Metrics  *metrics.Collector
	ledger   ledger
	sweeper  Sweeper
	notifier Notifier
	queue    chan job
}

type job struct {
	Type     string
	TenantID string
	Run      func(context.Context) (any, error)
}

// SweepSummary is stored as the details of a compliance_sweep run.
type SweepSummary struct {
	Checked     int                     `json:"checked"`
	Counts      compliance.StatusCounts `json:"counts"`
	Transitions int                     `json:"transitions"`
	Escalations int                     `json:"escalations"`
	Notified    int                     `json:"notified"`
}

func New(db querier.Querier, cfg config.Config, sweeper Sweeper, notifier Notifier) *Service {
	return &Service{
		Cfg:      cfg,
		ledger:   &pgLedger{DB: db},
		sweeper:  sweeper,
		notifier: notifier,
		queue:    make(chan job, 128),
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Cfg.ComplianceSweepInterval > 0 {
		go s.scheduleSweeps(ctx, s.Cfg.ComplianceSweepInterval)
	}
}

func (s *Service) Enqueue(jobType, tenantID string, run func(context.Context) (any, error)) bool {
	select {
	case s.queue <- job{Type: jobType, TenantID: tenantID, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType, "tenantId", tenantID)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType, tenantID string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, TenantID: tenantID, Run: run})
}

// SweepTenant refreshes cached compliance statuses of one tenant and tells
// the responsible people about records that moved into WARNING or EXPIRED.
func (s *Service) SweepTenant(ctx context.Context, tenantID string) (SweepSummary, error) {
	result, err := s.sweeper.Sweep(ctx, tenantID)
	summary := SweepSummary{
		Checked:     result.Checked,
		Counts:      result.Counts,
		Transitions: len(result.Transitions),
	}
	if err != nil {
		return summary, err
	}
	escalations := result.Escalations()
	summary.Escalations = len(escalations)
	if s.Metrics != nil {
		s.Metrics.RecordSweep(summary.Checked, summary.Transitions, summary.Escalations)
	}
	if s.Cfg.WarningDigestEnabled && s.notifier != nil && len(escalations) > 0 {
		notified, err := s.notifier.NotifyCompliance(ctx, tenantID, escalations)
		summary.Notified = notified
		if err != nil {
			slog.Warn("compliance notification failed", "tenantId", tenantID, "correlation", requestctx.Correlation(ctx), "err", err)
		}
	}
	return summary, nil
}

// RunSweep runs and logs the sweep of one tenant synchronously.
func (s *Service) RunSweep(ctx context.Context, tenantID string) (SweepSummary, error) {
	details, err := s.RunNow(ctx, JobComplianceSweep, tenantID, func(ctx context.Context) (any, error) {
		return s.SweepTenant(ctx, tenantID)
	})
	summary, _ := details.(SweepSummary)
	return summary, err
}

// SweepAll sweeps every tenant, a few at a time, and returns the per-tenant summaries.
func (s *Service) SweepAll(ctx context.Context) (map[string]SweepSummary, error) {
	tenants, err := s.ledger.Tenants(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]SweepSummary, len(tenants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, tenantID := range tenants {
		i, tenantID := i, tenantID
		g.Go(func() error {
			summary, err := s.RunSweep(gctx, tenantID)
			summaries[i] = summary
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[string]SweepSummary, len(tenants))
	for i, tenantID := range tenants {
		out[tenantID] = summaries[i]
	}
	return out, nil
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "tenantId", j.TenantID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	ctx, span := otel.Tracer("workforce/jobs").Start(ctx, "job."+j.Type)
	span.SetAttributes(attribute.String("job.type", j.Type), attribute.String("tenant.id", j.TenantID))
	defer span.End()

	runID, err := s.ledger.Start(ctx, j.TenantID, j.Type)
	if err != nil {
		slog.Warn("job run insert failed", "err", err)
	}
	if runID != "" {
		ctx = requestctx.WithJobRun(ctx, runID)
	}

	details, err := j.Run(ctx)
	status := StatusCompleted
	payload := any(details)
	if err != nil {
		status = StatusFailed
		payload = map[string]any{"error": err.Error(), "result": details}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	detailsJSON, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "runId", runID, "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if s.Metrics != nil {
		s.Metrics.RecordJob(j.Type, status)
	}
	if runID != "" {
		if updErr := s.ledger.Finish(ctx, runID, status, detailsJSON); updErr != nil {
			slog.Warn("job run update failed", "runId", runID, "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleSweeps(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tenants, err := s.ledger.Tenants(ctx)
			if err != nil {
				slog.Warn("sweep scheduler tenant lookup failed", "err", err)
				continue
			}
			for _, tenantID := range tenants {
				tenant := tenantID
				s.Enqueue(JobComplianceSweep, tenant, func(ctx context.Context) (any, error) {
					return s.SweepTenant(ctx, tenant)
				})
			}
		}
	}
}
