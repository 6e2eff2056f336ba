package digest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/pmcollective/pmc-backend/internal/buddies"
	"github.com/pmcollective/pmc-backend/internal/users"
	"github.com/pmcollective/pmc-backend/pkg/email"
	pkgerrors "github.com/pmcollective/pmc-backend/pkg/errors"
	"github.com/pmcollective/pmc-backend/pkg/logger"
)

type batchSender interface {
	SendBatch(ctx context.Context, msgs []email.Message) (email.Result, error)
	From() string
}

// ServiceParams groups dependencies for the digest service.
type ServiceParams struct {
	BuddiesRepo buddies.Repository
	UsersRepo   users.Repository
	Mailer      batchSender
	Logger      *logger.Logger
}

// Service composes and dispatches the weekly pending-request digest.
type Service interface {
	SendWeeklyDigest(ctx context.Context) (int, error)
}

type service struct {
	buddiesRepo buddies.Repository
	usersRepo   users.Repository
	mailer      batchSender
	logg        *logger.Logger
}

// NewService builds a digest service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.BuddiesRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buddies repo is required")
	}
	if params.UsersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "users repo is required")
	}
	if params.Mailer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mailer is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		buddiesRepo: params.BuddiesRepo,
		usersRepo:   params.UsersRepo,
		mailer:      params.Mailer,
		logg:        params.Logger,
	}, nil
}

// SendWeeklyDigest counts pending requests per receiver, resolves each
// active receiver's profile and submits one batch call to the provider.
// Resolution failures are aggregated; they never abort the receivers that
// resolved cleanly. Returns the number of emails dispatched.
func (s *service) SendWeeklyDigest(ctx context.Context) (int, error) {
	pending, err := s.buddiesRepo.ListAllPending(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list pending requests")
	}
	if len(pending) == 0 {
		return 0, nil
	}

	counts := make(map[uuid.UUID]int, len(pending))
	for _, request := range pending {
		counts[request.ReceiverID]++
	}

	ids := make([]uuid.UUID, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	receivers, err := s.usersRepo.FindByIDs(ctx, ids)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to resolve digest receivers")
	}

	messages := make([]email.Message, 0, len(receivers))
	for _, receiver := range receivers {
		if !receiver.IsActive {
			continue
		}
		count := counts[receiver.ID]
		messages = append(messages, email.Message{
			From:    s.mailer.From(),
			To:      receiver.Email,
			Subject: "Your weekly buddy request digest",
			Text:    digestBody(receiver.Name, count),
		})
	}
	if len(messages) == 0 {
		return 0, nil
	}

	result, err := s.mailer.SendBatch(ctx, messages)
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("digest batch send failed: %v", err))
		return 0, multierr.Append(
			pkgerrors.New(pkgerrors.CodeDependency, "digest batch send failed"),
			err,
		)
	}
	if !result.Success {
		s.logg.Warn(ctx, fmt.Sprintf("digest batch rejected by provider: %s", result.Error))
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "digest batch rejected by provider")
	}

	s.logg.Info(s.logg.WithField(ctx, "emails", len(messages)), "weekly digest dispatched")
	return len(messages), nil
}

func digestBody(name string, count int) string {
	noun := "buddy requests"
	if count == 1 {
		noun = "buddy request"
	}
	return fmt.Sprintf(
		"Hi %s,\n\nYou have %d pending %s waiting for your response.\n\nLog in to review them.",
		name, count, noun,
	)
}
