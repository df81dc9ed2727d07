package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/offerdesk/internal/app/models"
	"github.com/yigit/offerdesk/internal/pkg/apperrors"
	"github.com/yigit/offerdesk/internal/pkg/dberrors"
)

const (
	offerLettersTable = "offer_letters"

	// RefNoConstraint is the unique constraint on reference codes
	RefNoConstraint = "offer_letters_ref_no_key"
)

// ErrDuplicateRefNo is returned by Insert when the reference code is taken
var ErrDuplicateRefNo = errors.New("reference number already exists")

var offerLetterColumns = []string{
	"id", "ref_no", "candidate_name", "candidate_email", "domain",
	"joining_date", "end_date", "status", "pdf_url", "sent_at",
	"created_by", "created_at", "updated_at",
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// OfferLetterFilter narrows an owner's dashboard listing
type OfferLetterFilter struct {
	Statuses []models.OfferLetterStatus
	Query    string
	Limit    int
}

// OfferLetterRepository handles database operations for offer letters
type OfferLetterRepository struct {
	db *pgxpool.Pool
}

// NewOfferLetterRepository creates a new OfferLetterRepository
func NewOfferLetterRepository(db *pgxpool.Pool) *OfferLetterRepository {
	return &OfferLetterRepository{db: db}
}

func scanOfferLetter(row pgx.Row) (*models.OfferLetter, error) {
	var o models.OfferLetter
	err := row.Scan(
		&o.ID,
		&o.RefNo,
		&o.CandidateName,
		&o.CandidateEmail,
		&o.Domain,
		&o.JoiningDate,
		&o.EndDate,
		&o.Status,
		&o.PdfURL,
		&o.SentAt,
		&o.CreatedBy,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OfferLetterRepository) queryOne(ctx context.Context, q squirrel.Sqlizer, notFound string) (*models.OfferLetter, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	o, err := scanOfferLetter(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError(notFound)
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return o, nil
}

func (r *OfferLetterRepository) queryMany(ctx context.Context, q squirrel.Sqlizer) ([]*models.OfferLetter, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	letters := make([]*models.OfferLetter, 0)
	for rows.Next() {
		o, err := scanOfferLetter(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		letters = append(letters, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return letters, nil
}

func insertQuery(o *models.OfferLetter) squirrel.InsertBuilder {
	return psql.Insert(offerLettersTable).
		Columns("ref_no", "candidate_name", "candidate_email", "domain", "joining_date", "end_date", "status", "created_by").
		Values(o.RefNo, o.CandidateName, o.CandidateEmail, o.Domain, o.JoiningDate, o.EndDate, models.StatusDraft, o.CreatedBy).
		Suffix("RETURNING id, status, created_at, updated_at")
}

// Insert persists a new draft. ID, Status and timestamps are filled from the database.
func (r *OfferLetterRepository) Insert(ctx context.Context, o *models.OfferLetter) error {
	sql, args, err := insertQuery(o).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&o.ID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, RefNoConstraint) {
			return ErrDuplicateRefNo
		}
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewValidationError("endDate", "End date must not be before joining date").WithCause(err)
		}
		return fmt.Errorf("error inserting offer letter: %w", err)
	}
	return nil
}

func findByIDQuery(ownerID, id int64) squirrel.SelectBuilder {
	return psql.Select(offerLetterColumns...).
		From(offerLettersTable).
		Where(squirrel.Eq{"id": id, "created_by": ownerID})
}

// FindByID retrieves an owner's offer letter
func (r *OfferLetterRepository) FindByID(ctx context.Context, ownerID, id int64) (*models.OfferLetter, error) {
	return r.queryOne(ctx, findByIDQuery(ownerID, id), "Offer letter not found")
}

func findByOwnerQuery(ownerID int64, f OfferLetterFilter) squirrel.SelectBuilder {
	q := psql.Select(offerLetterColumns...).
		From(offerLettersTable).
		Where(squirrel.Eq{"created_by": ownerID}).
		OrderBy("created_at DESC", "id DESC")

	if len(f.Statuses) > 0 {
		q = q.Where(squirrel.Eq{"status": statusStrings(f.Statuses)})
	}
	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + escapeLike(term) + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"candidate_name": like},
			squirrel.ILike{"candidate_email": like},
			squirrel.ILike{"ref_no": like},
		})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	return q
}

// FindByOwner lists an owner's offer letters, newest first
func (r *OfferLetterRepository) FindByOwner(ctx context.Context, ownerID int64, f OfferLetterFilter) ([]*models.OfferLetter, error) {
	return r.queryMany(ctx, findByOwnerQuery(ownerID, f))
}

func findByRefQuery(refNo string, statuses []models.OfferLetterStatus) squirrel.SelectBuilder {
	q := psql.Select(offerLetterColumns...).
		From(offerLettersTable).
		Where(squirrel.Eq{"ref_no": refNo})
	if len(statuses) > 0 {
		q = q.Where(squirrel.Eq{"status": statusStrings(statuses)})
	}
	return q
}

// FindByRef looks a letter up by reference code regardless of owner,
// optionally restricted to the given statuses.
func (r *OfferLetterRepository) FindByRef(ctx context.Context, refNo string, statuses ...models.OfferLetterStatus) (*models.OfferLetter, error) {
	return r.queryOne(ctx, findByRefQuery(refNo, statuses), "Offer letter not found")
}

// RefExists checks if a reference code is already in use
func (r *OfferLetterRepository) RefExists(ctx context.Context, refNo string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM offer_letters WHERE ref_no = $1)`,
		refNo).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking reference number: %w", err)
	}
	return exists, nil
}

func updateDocumentQuery(id int64, pdfURL string, now time.Time) squirrel.UpdateBuilder {
	return psql.Update(offerLettersTable).
		Set("pdf_url", pdfURL).
		Set("status", models.StatusGenerated).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "status": statusStrings(models.PredecessorsOf(models.StatusGenerated))}).
		Suffix("RETURNING " + strings.Join(offerLetterColumns, ", "))
}

// UpdateDocument records the document location and marks the letter generated
// in one statement. Letters that were already sent are left alone.
func (r *OfferLetterRepository) UpdateDocument(ctx context.Context, id int64, pdfURL string) (*models.OfferLetter, error) {
	o, err := r.queryOne(ctx, updateDocumentQuery(id, pdfURL, time.Now().UTC()), "Offer letter not found or already sent")
	if err != nil && errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, r.explainMissedUpdate(ctx, id, err)
	}
	return o, err
}

func updateStatusQuery(id int64, next models.OfferLetterStatus, now time.Time) squirrel.UpdateBuilder {
	q := psql.Update(offerLettersTable).
		Set("status", next).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "status": statusStrings(models.PredecessorsOf(next))})
	if next == models.StatusSent {
		q = q.Set("sent_at", squirrel.Expr("COALESCE(sent_at, ?)", now))
	}
	return q.Suffix("RETURNING " + strings.Join(offerLetterColumns, ", "))
}

// UpdateStatus moves a letter forward. A letter whose current status does not
// allow the move is reported as a precondition failure.
func (r *OfferLetterRepository) UpdateStatus(ctx context.Context, id int64, next models.OfferLetterStatus) (*models.OfferLetter, error) {
	if !next.IsValid() {
		return nil, apperrors.NewValidationError("status", "Unknown status "+string(next))
	}
	o, err := r.queryOne(ctx, updateStatusQuery(id, next, time.Now().UTC()), "Offer letter not found")
	if err != nil && errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, r.explainMissedUpdate(ctx, id, err)
	}
	return o, err
}

// explainMissedUpdate distinguishes a missing row from a guarded transition
func (r *OfferLetterRepository) explainMissedUpdate(ctx context.Context, id int64, notFound error) error {
	var status models.OfferLetterStatus
	err := r.db.QueryRow(ctx, `SELECT status FROM offer_letters WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound
		}
		return fmt.Errorf("error reading offer letter status: %w", err)
	}
	return apperrors.NewPreconditionError(fmt.Sprintf("Offer letter is %s and cannot move backwards", status))
}

// Delete removes an owner's offer letter
func (r *OfferLetterRepository) Delete(ctx context.Context, ownerID, id int64) error {
	sql, args, err := psql.Delete(offerLettersTable).
		Where(squirrel.Eq{"id": id, "created_by": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting offer letter: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("Offer letter not found")
	}
	return nil
}

func listDraftsQuery(afterID int64, limit int) squirrel.SelectBuilder {
	q := psql.Select(offerLetterColumns...).
		From(offerLettersTable).
		Where(squirrel.Eq{"status": string(models.StatusDraft)}).
		Where(squirrel.Gt{"id": afterID}).
		OrderBy("id")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return q
}

// ListDrafts returns one page of drafts across all owners with id above
// afterID, oldest first
func (r *OfferLetterRepository) ListDrafts(ctx context.Context, afterID int64, limit int) ([]*models.OfferLetter, error) {
	return r.queryMany(ctx, listDraftsQuery(afterID, limit))
}

func statusStrings(statuses []models.OfferLetterStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
