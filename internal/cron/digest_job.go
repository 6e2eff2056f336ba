package cron

import (
	"context"
	"errors"

	"github.com/pmcollective/pmc-backend/internal/digest"
	"github.com/pmcollective/pmc-backend/pkg/metrics"
)

const digestJobName = "weekly_digest"

// DigestJob dispatches the weekly pending-request digest.
type DigestJob struct {
	service digest.Service
	metrics *metrics.CronJobMetrics
}

// NewDigestJob builds the digest job.
func NewDigestJob(service digest.Service, m *metrics.CronJobMetrics) (*DigestJob, error) {
	if service == nil {
		return nil, errors.New("digest service required")
	}
	return &DigestJob{service: service, metrics: m}, nil
}

// Name identifies the job in logs and metrics.
func (j *DigestJob) Name() string { return digestJobName }

// Run sends the digest and records how many emails went out.
func (j *DigestJob) Run(ctx context.Context) error {
	dispatched, err := j.service.SendWeeklyDigest(ctx)
	if err != nil {
		return err
	}
	if j.metrics != nil {
		j.metrics.AddEmailsDispatched(digestJobName, dispatched)
	}
	return nil
}
