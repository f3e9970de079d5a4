package checks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ats-backend/internal/ingest"
	"ats-backend/internal/quota"
	"ats-backend/internal/scoring"
	"ats-backend/internal/shared/metrics"
	"ats-backend/internal/shared/storage/object"
	"ats-backend/internal/shared/telemetry"
	"ats-backend/internal/taxonomy"
)

// Phase identifies a coarse pipeline stage. Transitions are emitted through
// the optional progress callback so callers get real progress instead of
// timer-driven guesses.
type Phase string

const (
	PhaseAdmitting  Phase = "admitting"
	PhaseIngesting  Phase = "ingesting"
	PhaseScoring    Phase = "scoring"
	PhasePersisting Phase = "persisting"
	PhaseCompleted  Phase = "completed"
)

const (
	defaultIngestTimeout  = 5 * time.Second
	defaultStorageTimeout = 3 * time.Second
	defaultMaxUploadBytes = 5 << 20 // 5MB
)

// CheckInput is the uploaded resume as received from the caller.
type CheckInput struct {
	FileName         string
	DeclaredMimeType string
	Data             []byte
}

// HistoryPage bundles a user's past checks with their current quota status.
type HistoryPage struct {
	Checks        []ResumeCheck
	CanCheckToday bool
	NextCheckTime *time.Time
}

// Service is the analysis orchestrator: it admits, ingests, scores and
// persists one resume check per request.
type Service struct {
	Repo           Repo
	Quota          *quota.Tracker
	Store          object.ObjectStore
	Taxonomy       taxonomy.Taxonomy
	IngestTimeout  time.Duration
	StorageTimeout time.Duration
	MaxUploadBytes int64
	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Run executes the full check pipeline for one uploaded resume.
//
// A per-user lock is held from admission through persistence so two
// concurrent requests cannot both observe an open daily slot. The quota is
// derived from persisted history, so a pipeline that fails or is cancelled
// after admission never consumes the user's slot.
func (s *Service) Run(ctx context.Context, userID string, in CheckInput, onPhase func(Phase)) (ResumeCheck, error) {
	if userID == "" {
		return ResumeCheck{}, errors.New("user id is required")
	}

	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	metrics.IncCheckStarted()
	started := time.Now()

	emit(onPhase, PhaseAdmitting)
	now := s.now()
	adm, err := s.Quota.TryAdmit(ctx, userID, now)
	if err != nil {
		metrics.IncCheckFailed()
		return ResumeCheck{}, s.infraError("admit", err)
	}
	if !adm.Admitted {
		metrics.IncCheckDenied()
		return ResumeCheck{}, &QuotaError{NextEligibleAt: adm.NextEligibleAt}
	}

	emit(onPhase, PhaseIngesting)
	ictx, cancelIngest := context.WithTimeout(ctx, s.ingestTimeout())
	defer cancelIngest()

	text, err := ingest.Extract(ictx, in.Data, in.DeclaredMimeType, in.FileName, s.maxUploadBytes())
	if err != nil {
		metrics.IncCheckFailed()
		if isIngestError(err) {
			return ResumeCheck{}, err
		}
		return ResumeCheck{}, s.infraError("ingest", err)
	}

	rawFileRef, _, _, err := s.Store.Save(ictx, userID, in.FileName, bytes.NewReader(in.Data))
	if err != nil {
		metrics.IncCheckFailed()
		return ResumeCheck{}, s.infraError("store raw file", err)
	}

	emit(onPhase, PhaseScoring)
	result := scoring.Score(text, s.Taxonomy)
	suggestions := scoring.Suggest(result.MissingByCategory, result.Score)

	emit(onPhase, PhasePersisting)
	check := ResumeCheck{
		ID:              uuid.NewString(),
		UserID:          userID,
		CheckedAt:       s.now(),
		RawFileRef:      rawFileRef,
		Score:           result.Score,
		StrongKeywords:  result.Strong,
		MissingKeywords: result.Missing,
		Suggestions:     suggestions,
	}

	pctx, cancelPersist := context.WithTimeout(ctx, s.storageTimeout())
	defer cancelPersist()
	if err := s.Repo.Append(pctx, check); err != nil {
		if errors.Is(err, ErrDuplicateDay) {
			// Another instance won the day. Report it as the normal quota
			// denial, not a fault.
			metrics.IncCheckDenied()
			return ResumeCheck{}, &QuotaError{NextEligibleAt: s.Quota.NextBoundary(check.CheckedAt)}
		}
		metrics.IncCheckFailed()
		return ResumeCheck{}, s.infraError("persist", err)
	}

	metrics.IncCheckCompleted()
	metrics.ObserveCheckDurationMs(float64(time.Since(started).Microseconds()) / 1000.0)
	emit(onPhase, PhaseCompleted)

	telemetry.Info("check.completed", map[string]any{
		"user_id":  userID,
		"check_id": check.ID,
		"score":    check.Score,
	})
	return check, nil
}

// History returns the user's past checks newest-first plus quota status.
func (s *Service) History(ctx context.Context, userID string, limit, offset int) (HistoryPage, error) {
	list, err := s.Repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return HistoryPage{}, s.infraError("list history", err)
	}
	status, err := s.Quota.Peek(ctx, userID, s.now())
	if err != nil {
		return HistoryPage{}, s.infraError("peek quota", err)
	}
	return HistoryPage{
		Checks:        list,
		CanCheckToday: status.CanCheckToday,
		NextCheckTime: status.NextCheckTime,
	}, nil
}

// Latest returns the user's most recent check, or ErrNotFound.
func (s *Service) Latest(ctx context.Context, userID string) (ResumeCheck, error) {
	check, err := s.Repo.LatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ResumeCheck{}, ErrNotFound
		}
		return ResumeCheck{}, s.infraError("latest check", err)
	}
	return check, nil
}

func (s *Service) lockFor(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks == nil {
		s.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// infraError classifies failures from I/O-bound collaborators. Caller
// cancellation passes through untouched; deadlines become ErrTimeout and
// everything else ErrStorageUnavailable.
func (s *Service) infraError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}

func isIngestError(err error) bool {
	return errors.Is(err, ingest.ErrUnsupportedFormat) ||
		errors.Is(err, ingest.ErrTooLarge) ||
		errors.Is(err, ingest.ErrUndecodable)
}

func emit(onPhase func(Phase), phase Phase) {
	if onPhase != nil {
		onPhase(phase)
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) ingestTimeout() time.Duration {
	if s.IngestTimeout > 0 {
		return s.IngestTimeout
	}
	return defaultIngestTimeout
}

func (s *Service) storageTimeout() time.Duration {
	if s.StorageTimeout > 0 {
		return s.StorageTimeout
	}
	return defaultStorageTimeout
}

func (s *Service) maxUploadBytes() int64 {
	if s.MaxUploadBytes > 0 {
		return s.MaxUploadBytes
	}
	return defaultMaxUploadBytes
}
