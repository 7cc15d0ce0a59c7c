package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

const violationSelect = `SELECT v.id, v.user_id, v.reservation_id, v.type, v.description, v.penalty, v.penalty_duration_days,
       v.is_resolved, v.resolved_at, v.created_at, v.updated_at,
       u.name, u.student_id, u.phone
FROM violations v
LEFT JOIN users u ON u.id = v.user_id`

// ViolationFilter narrows the admin listing. Zero values match all.
type ViolationFilter struct {
	Type       string
	Penalty    string
	IsResolved *bool
}

type ViolationRepo struct{ db DBTX }

func NewViolationRepo(db DBTX) *ViolationRepo { return &ViolationRepo{db: db} }

func scanViolation(s rowScanner) (*model.Violation, error) {
	var (
		v                    model.Violation
		desc                 sql.NullString
		resolvedAt           sql.NullTime
		name, student, phone sql.NullString
	)
	if err := s.Scan(&v.ID, &v.UserID, &v.ReservationID, &v.Type, &desc, &v.Penalty, &v.PenaltyDurationDays,
		&v.IsResolved, &resolvedAt, &v.CreatedAt, &v.UpdatedAt, &name, &student, &phone); err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		v.Description = &d
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		v.ResolvedAt = &t
	}
	if name.Valid {
		v.User = &model.ReservationUser{ID: v.UserID, Name: name.String, StudentID: student.String, Phone: phone.String}
	}
	return &v, nil
}

func (r *ViolationRepo) Create(ctx context.Context, v *model.Violation) error {
	if v.Penalty == "" {
		v.Penalty = model.PenaltyNone
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO violations (user_id, reservation_id, type, description, penalty, penalty_duration_days, is_resolved, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.UserID, v.ReservationID, v.Type, v.Description, v.Penalty, v.PenaltyDurationDays, v.IsResolved, utcOrNil(v.ResolvedAt))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

func (r *ViolationRepo) GetByID(ctx context.Context, id uint64) (*model.Violation, error) {
	v, err := scanViolation(r.db.QueryRowContext(ctx, violationSelect+"\nWHERE v.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrViolationNotFound
	}
	return v, err
}

// ListByUser returns the user's violations, newest first.
func (r *ViolationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Violation, error) {
	return r.query(ctx, violationSelect+"\nWHERE v.user_id = ? ORDER BY v.created_at DESC, v.id DESC", userID)
}

// List returns one page of violations matching filter and the total count.
func (r *ViolationRepo) List(ctx context.Context, filter ViolationFilter, page Page) ([]model.Violation, int, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Type != "" {
		conds = append(conds, "v.type = ?")
		args = append(args, filter.Type)
	}
	if filter.Penalty != "" {
		conds = append(conds, "v.penalty = ?")
		args = append(args, filter.Penalty)
	}
	if filter.IsResolved != nil {
		conds = append(conds, "v.is_resolved = ?")
		args = append(args, *filter.IsResolved)
	}
	where := ""
	if len(conds) > 0 {
		where = "\nWHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM violations v"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	page = page.Normalize()
	items, err := r.query(ctx, violationSelect+where+"\nORDER BY v.created_at DESC, v.id DESC LIMIT ? OFFSET ?",
		append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *ViolationRepo) query(ctx context.Context, q string, args ...any) ([]model.Violation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Violation
	for rows.Next() {
		v, err := scanViolation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// Update writes every admin-editable column.
func (r *ViolationRepo) Update(ctx context.Context, v *model.Violation) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE violations SET type = ?, description = ?, penalty = ?, penalty_duration_days = ?,
		 is_resolved = ?, resolved_at = ? WHERE id = ?`,
		v.Type, v.Description, v.Penalty, v.PenaltyDurationDays, v.IsResolved, utcOrNil(v.ResolvedAt), v.ID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrViolationNotFound)
}

func (r *ViolationRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM violations WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res, ErrViolationNotFound)
}
