// Package gorm provides GORM-based database operations for focusforge.
package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thebtf/focusforge/pkg/models"
)

// DefaultListLimit is the number of sessions returned when no limit is given.
const DefaultListLimit = 20

// eventBatchSize bounds a single multi-row INSERT.
const eventBatchSize = 200

var (
	// ErrSessionNotFound is returned when a session id does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidStatus is returned when a status transition is not allowed.
	ErrInvalidStatus = errors.New("invalid session status")
)

// SessionStore provides session, event and analysis operations using GORM.
type SessionStore struct {
	db *gorm.DB
}

// NewSessionStore creates a new session store.
func NewSessionStore(store *Store) *SessionStore {
	return &SessionStore{db: store.DB}
}

// CreateSession starts a new running session.
func (s *SessionStore) CreateSession(ctx context.Context, intentRaw string, tags []string) (*models.Session, error) {
	row := &Session{
		ID:         uuid.NewString(),
		Status:     string(models.SessionStatusRunning),
		IntentRaw:  nullString(intentRaw),
		IntentTags: models.JSONStringArray(models.CleanTags(tags)),
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return row.toModel(), nil
}

// GetSession returns the session with the given id.
func (s *SessionStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var row Session
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return row.toModel(), nil
}

// ListSessions returns the most recently started sessions first.
func (s *SessionStore) ListSessions(ctx context.Context, limit int) ([]*models.Session, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	var rows []Session
	err := s.db.WithContext(ctx).
		Order("started_at_epoch DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := make([]*models.Session, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

// EndSession closes a session with status ended or auto_ended.
func (s *SessionStore) EndSession(ctx context.Context, id string, endedAt int64, status models.SessionStatus) (*models.Session, error) {
	if status != models.SessionStatusEnded && status != models.SessionStatusAutoEnded {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if endedAt <= 0 {
		endedAt = time.Now().UnixMilli()
	}

	res := s.db.WithContext(ctx).
		Model(&Session{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":         string(status),
			"ended_at_epoch": endedAt,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("end session %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrSessionNotFound
	}
	return s.GetSession(ctx, id)
}

// MarkAnalyzed flags a session whose analyzer payload has been stored.
func (s *SessionStore) MarkAnalyzed(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).
		Model(&Session{}).
		Where("id = ?", id).
		Update("status", string(models.SessionStatusAnalyzed))
	if res.Error != nil {
		return fmt.Errorf("mark session %s analyzed: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// AppendEvents stores events for a session and returns how many were written.
// The caller validates the events; SessionID is overwritten with id.
func (s *SessionStore) AppendEvents(ctx context.Context, id string, events []models.Event) (int, error) {
	if err := s.ensureSession(ctx, id); err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	rows := make([]Event, 0, len(events))
	for _, ev := range events {
		rows = append(rows, Event{
			SessionID: id,
			TS:        ev.TS,
			Type:      string(ev.Type),
			URL:       ev.URL,
			Title:     ev.Title,
		})
	}
	if err := s.db.WithContext(ctx).CreateInBatches(rows, eventBatchSize).Error; err != nil {
		return 0, fmt.Errorf("append events to %s: %w", id, err)
	}
	return len(rows), nil
}

// GetEvents returns a session's events in insertion order. Sorting by
// timestamp is left to the summary pipeline.
func (s *SessionStore) GetEvents(ctx context.Context, id string) ([]models.Event, error) {
	if err := s.ensureSession(ctx, id); err != nil {
		return nil, err
	}

	var rows []Event
	err := s.db.WithContext(ctx).
		Where("session_id = ?", id).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get events for %s: %w", id, err)
	}

	out := make([]models.Event, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

// SaveAnalysis stores or replaces the analyzer payload for a session.
func (s *SessionStore) SaveAnalysis(ctx context.Context, id string, res *models.AnalysisResult) error {
	if res == nil {
		return fmt.Errorf("save analysis for %s: nil payload", id)
	}
	if err := s.ensureSession(ctx, id); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			UpdateAll: true,
		}).
		Create(newAnalysis(id, res)).Error
	if err != nil {
		return fmt.Errorf("save analysis for %s: %w", id, err)
	}
	return nil
}

// GetAnalysis returns the stored analyzer payload, or nil if none exists.
func (s *SessionStore) GetAnalysis(ctx context.Context, id string) (*models.AnalysisResult, error) {
	var row Analysis
	err := s.db.WithContext(ctx).Where("session_id = ?", id).Limit(1).Find(&row).Error
	if err != nil {
		return nil, fmt.Errorf("get analysis for %s: %w", id, err)
	}
	if row.SessionID == "" {
		return nil, nil
	}
	return row.toModel(), nil
}

// DeleteSession removes a session with its events and analysis.
func (s *SessionStore) DeleteSession(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&Event{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", id).Delete(&Analysis{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&Session{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSessionNotFound
		}
		return nil
	})
}

func (s *SessionStore) ensureSession(ctx context.Context, id string) error {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&Session{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("check session %s: %w", id, err)
	}
	if count == 0 {
		return ErrSessionNotFound
	}
	return nil
}
