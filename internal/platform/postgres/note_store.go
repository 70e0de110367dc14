package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kerrian/notely-api/internal/domain"
	"github.com/kerrian/notely-api/internal/platform/logger"
	"github.com/kerrian/notely-api/internal/store"
)

// noteColumns is the canonical select list for note rows.
const noteColumns = "id, owner_id, raw_text, summary, status, job_id, created_at, updated_at"

// PostgresNoteStore implements the store.NoteStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNoteStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNoteStore creates a new PostgreSQL implementation of the
// NoteStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresNoteStore(db store.DBTX, logger *slog.Logger) *PostgresNoteStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresNoteStore{
		db:     db,
		logger: logger.With(slog.String("component", "note_store")),
	}
}

// Ensure PostgresNoteStore implements store.NoteStore interface
var _ store.NoteStore = (*PostgresNoteStore)(nil)

// Create implements store.NoteStore.Create
// It saves a new note to the database, handling domain validation.
// Returns store.ErrInvalidEntity if the owner ID doesn't exist
// (foreign key violation).
func (s *PostgresNoteStore) Create(ctx context.Context, note *domain.Note) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := note.Validate(); err != nil {
		log.Warn("note validation failed during create",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()))
		return err
	}

	query := `
		INSERT INTO notes (id, owner_id, raw_text, summary, status, job_id, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		note.ID,
		note.OwnerID,
		note.RawText,
		note.Summary,
		note.Status,
		note.JobID,
		note.CreatedAt,
		note.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during note creation",
				slog.String("note_id", note.ID.String()),
				slog.String("owner_id", note.OwnerID.String()))
			return fmt.Errorf("%w: owner with ID %s not found",
				store.ErrInvalidEntity, note.OwnerID)
		}

		log.Error("failed to create note",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()),
			slog.String("owner_id", note.OwnerID.String()))
		return MapError(err)
	}

	log.Info("note created successfully",
		slog.String("note_id", note.ID.String()),
		slog.String("owner_id", note.OwnerID.String()),
		slog.String("status", string(note.Status)))
	return nil
}

// GetByID implements store.NoteStore.GetByID
// AGENT requesters are scoped to their own notes in the query itself, so
// an inaccessible note and an absent note produce the same
// store.ErrNoteNotFound.
func (s *PostgresNoteStore) GetByID(
	ctx context.Context,
	id uuid.UUID,
	requester *domain.User,
) (*domain.Note, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := "SELECT " + noteColumns + " FROM notes WHERE id = $1"
	args := []any{id}

	if !requester.IsAdmin() {
		query += " AND owner_id = $2"
		args = append(args, requester.ID)
	}

	note, err := scanNote(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("note not found",
				slog.String("note_id", id.String()),
				slog.String("requester_id", requester.ID.String()))
			return nil, store.ErrNoteNotFound
		}
		log.Error("failed to get note by ID",
			slog.String("error", err.Error()),
			slog.String("note_id", id.String()))
		return nil, MapError(err)
	}

	return note, nil
}

// Get implements store.NoteStore.Get
// It loads a note without access scoping, for internal consumers.
func (s *PostgresNoteStore) Get(ctx context.Context, id uuid.UUID) (*domain.Note, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := "SELECT " + noteColumns + " FROM notes WHERE id = $1"

	note, err := scanNote(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("note not found", slog.String("note_id", id.String()))
			return nil, store.ErrNoteNotFound
		}
		log.Error("failed to get note",
			slog.String("error", err.Error()),
			slog.String("note_id", id.String()))
		return nil, MapError(err)
	}

	return note, nil
}

// List implements store.NoteStore.List
// The total count is computed over the same filtered set, independent of
// the page window.
func (s *PostgresNoteStore) List(
	ctx context.Context,
	requester *domain.User,
	page *store.Page,
	filters *store.NoteFilters,
) ([]*domain.Note, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := buildNoteConditions(requester, filters)

	countQuery := "SELECT COUNT(*) FROM notes" + where
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count notes",
			slog.String("error", err.Error()),
			slog.String("requester_id", requester.ID.String()))
		return nil, 0, MapError(err)
	}

	query := "SELECT " + noteColumns + " FROM notes" + where + " ORDER BY created_at DESC"
	if page != nil {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, page.Size, page.Offset())
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query notes",
			slog.String("error", err.Error()),
			slog.String("requester_id", requester.ID.String()))
		return nil, 0, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var notes []*domain.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			log.Error("failed to scan note row",
				slog.String("error", err.Error()))
			return nil, 0, MapError(err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	if notes == nil {
		notes = []*domain.Note{}
	}

	log.Debug("listed notes",
		slog.String("requester_id", requester.ID.String()),
		slog.Int("count", len(notes)),
		slog.Int("total", total))
	return notes, total, nil
}

// UpdateStatus implements store.NoteStore.UpdateStatus
// Empty summary/jobID arguments leave the stored columns untouched;
// updated_at always advances. Returns store.ErrNoteNotFound if the note
// does not exist.
func (s *PostgresNoteStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.NoteStatus,
	summary string,
	jobID string,
) (*domain.Note, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := domain.ParseNoteStatus(string(status)); err != nil {
		log.Warn("invalid status for note update",
			slog.String("note_id", id.String()),
			slog.String("status", string(status)))
		return nil, err
	}

	query := `
		UPDATE notes
		SET status = $1,
		    summary = COALESCE(NULLIF($2, ''), summary),
		    job_id = COALESCE(NULLIF($3, ''), job_id),
		    updated_at = $4
		WHERE id = $5
		RETURNING ` + noteColumns

	note, err := scanNote(s.db.QueryRowContext(
		ctx,
		query,
		status,
		summary,
		jobID,
		time.Now().UTC(),
		id,
	))

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("note not found for status update",
				slog.String("note_id", id.String()))
			return nil, store.ErrNoteNotFound
		}
		log.Error("failed to update note status",
			slog.String("error", err.Error()),
			slog.String("note_id", id.String()),
			slog.String("status", string(status)))
		return nil, MapError(err)
	}

	log.Info("note status updated successfully",
		slog.String("note_id", id.String()),
		slog.String("status", string(status)))
	return note, nil
}

// buildNoteConditions assembles the WHERE clause shared by the count and
// page queries so both always see the same filtered set.
func buildNoteConditions(
	requester *domain.User,
	filters *store.NoteFilters,
) (string, []any) {
	var conditions []string
	var args []any

	next := func() int { return len(args) + 1 }

	if !requester.IsAdmin() {
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", next()))
		args = append(args, requester.ID)
	}

	if filters != nil {
		if filters.Search != "" {
			pattern := "%" + filters.Search + "%"
			conditions = append(conditions,
				fmt.Sprintf("(raw_text ILIKE $%d OR summary ILIKE $%d)", next(), next()+1))
			args = append(args, pattern, pattern)
		}

		if filters.Status != "" {
			conditions = append(conditions, fmt.Sprintf("status = $%d", next()))
			args = append(args, filters.Status)
		}

		if !filters.CreatedAfter.IsZero() {
			conditions = append(conditions, fmt.Sprintf("created_at >= $%d", next()))
			args = append(args, filters.CreatedAfter)
		}

		if !filters.CreatedBefore.IsZero() {
			conditions = append(conditions, fmt.Sprintf("created_at <= $%d", next()))
			args = append(args, filters.CreatedBefore)
		}
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanNote scans a single note row in noteColumns order.
func scanNote(row rowScanner) (*domain.Note, error) {
	var note domain.Note
	var summary, jobID sql.NullString
	var status string

	err := row.Scan(
		&note.ID,
		&note.OwnerID,
		&note.RawText,
		&summary,
		&status,
		&jobID,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	note.Summary = summary.String
	note.JobID = jobID.String
	note.Status = domain.NoteStatus(status)
	return &note, nil
}
