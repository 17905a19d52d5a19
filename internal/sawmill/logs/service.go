package logs

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/timberline-erp/timberline/internal/shared"
)

// AuditPort records audit trail entries.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates the log registry.
type Service struct {
	repo   Repository
	logger *slog.Logger
	audit  AuditPort
	now    func() time.Time
}

// NewService constructs the log registry service.
func NewService(repo Repository, logger *slog.Logger, audit AuditPort) *Service {
	return &Service{repo: repo, logger: logger, audit: audit, now: time.Now}
}

// RegisterInput carries a new log registration.
type RegisterInput struct {
	TagNumber   string  `json:"tag_number" validate:"required"`
	GirthCM     float64 `json:"girth_cm" validate:"required,gt=0"`
	LengthMeter float64 `json:"length_meter" validate:"required,gt=0"`
	Grade       Grade   `json:"grade" validate:"required"`
}

// Validate applies domain checks before persistence.
func (in RegisterInput) Validate() error {
	if strings.TrimSpace(in.TagNumber) == "" {
		return errors.New("tag number is required")
	}
	if in.GirthCM <= 0 {
		return errors.New("girth must be positive")
	}
	if in.LengthMeter <= 0 {
		return errors.New("length must be positive")
	}
	if !in.Grade.IsValid() {
		return errors.New("unknown grade")
	}
	return nil
}

// Register creates a log with its derived dimensions and QR snapshot.
func (s *Service) Register(ctx context.Context, companyID, actorID int64, in RegisterInput) (Log, error) {
	if err := in.Validate(); err != nil {
		return Log{}, err
	}
	now := s.now()
	log := Log{
		CompanyID:   companyID,
		TagNumber:   strings.TrimSpace(in.TagNumber),
		GirthCM:     in.GirthCM,
		GirthInch:   GirthInch(in.GirthCM),
		LengthMeter: in.LengthMeter,
		Grade:       in.Grade,
		CFT:         CFT(in.GirthCM, in.LengthMeter),
		Status:      StatusAvailable,
	}
	qr, err := encodeQR(log, now)
	if err != nil {
		return Log{}, err
	}
	log.QRData = qr

	created, err := s.repo.Create(ctx, log)
	if err != nil {
		return Log{}, err
	}
	s.recordAudit(ctx, actorID, "sawmill.log.register", created.ID, map[string]any{
		"tag": created.TagNumber, "cft": created.CFT,
	})
	return created, nil
}

// Advance moves a log one step forward through the status machine.
func (s *Service) Advance(ctx context.Context, companyID, actorID, id int64, to Status) (Log, error) {
	if !to.IsValid() {
		return Log{}, ErrInvalidTransition
	}
	log, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return Log{}, err
	}
	if !log.Status.CanAdvanceTo(to) {
		return Log{}, ErrInvalidTransition
	}
	if err := s.repo.AdvanceStatus(ctx, companyID, id, log.Status, to); err != nil {
		return Log{}, err
	}
	prev := log.Status
	log.Status = to
	s.recordAudit(ctx, actorID, "sawmill.log.status", id, map[string]any{
		"from": string(prev), "to": string(to),
	})
	return log, nil
}

// Consume marks an available log as in process. Production entries call
// this when a log enters the saw line.
func (s *Service) Consume(ctx context.Context, companyID, actorID, id int64) (Log, error) {
	return s.Advance(ctx, companyID, actorID, id, StatusInProcess)
}

func (s *Service) List(ctx context.Context, companyID int64, filters ListFilters) ([]Log, error) {
	return s.repo.List(ctx, companyID, filters)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Log, error) {
	return s.repo.Get(ctx, companyID, id)
}

// Lookup resolves a scanned QR tag to its log.
func (s *Service) Lookup(ctx context.Context, companyID int64, tag string) (Log, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return Log{}, errors.New("tag is required")
	}
	return s.repo.GetByTag(ctx, companyID, tag)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "sawmill_log",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
		At:       s.now(),
	})
	if err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}
