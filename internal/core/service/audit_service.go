package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/baf/identity-service/internal/core/domain"
	"github.com/baf/identity-service/internal/core/ports"
	"github.com/baf/identity-service/internal/infrastructure/metrics"
)

type auditService struct {
	repo ports.AuthEventRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService persisting into repo.
func NewAuditService(repo ports.AuthEventRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

func (s *auditService) Record(ctx context.Context, event domain.AuthEvent) error {
	if err := s.repo.Insert(ctx, &event); err != nil {
		return fmt.Errorf("record auth event: %w", err)
	}
	metrics.AuthEventsRecordedTotal.WithLabelValues(string(event.Type)).Inc()

	s.log.Debug().
		Str("type", string(event.Type)).
		Str("user_id", event.UserID.String()).
		Str("tenant_id", event.TenantID.String()).
		Msg("auth event recorded")
	return nil
}
