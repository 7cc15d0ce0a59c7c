package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

const feedbackSelect = `SELECT f.id, f.user_id, f.type, f.content, f.status, f.response, f.created_at, f.updated_at,
       u.name, u.student_id, u.phone
FROM feedbacks f
LEFT JOIN users u ON u.id = f.user_id`

// FeedbackFilter narrows the admin listing. Empty fields match all.
type FeedbackFilter struct {
	Status string
	Type   string
}

type FeedbackRepo struct{ db DBTX }

func NewFeedbackRepo(db DBTX) *FeedbackRepo { return &FeedbackRepo{db: db} }

func scanFeedback(s rowScanner) (*model.Feedback, error) {
	var (
		f                    model.Feedback
		resp                 sql.NullString
		name, student, phone sql.NullString
	)
	if err := s.Scan(&f.ID, &f.UserID, &f.Type, &f.Content, &f.Status, &resp, &f.CreatedAt, &f.UpdatedAt,
		&name, &student, &phone); err != nil {
		return nil, err
	}
	if resp.Valid {
		v := resp.String
		f.Response = &v
	}
	if name.Valid {
		f.User = &model.ReservationUser{ID: f.UserID, Name: name.String, StudentID: student.String, Phone: phone.String}
	}
	return &f, nil
}

func (r *FeedbackRepo) Create(ctx context.Context, f *model.Feedback) error {
	if f.Status == "" {
		f.Status = model.FeedbackPending
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO feedbacks (user_id, type, content, status) VALUES (?, ?, ?, ?)",
		f.UserID, f.Type, f.Content, f.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return nil
}

func (r *FeedbackRepo) GetByID(ctx context.Context, id uint64) (*model.Feedback, error) {
	f, err := scanFeedback(r.db.QueryRowContext(ctx, feedbackSelect+"\nWHERE f.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFeedbackNotFound
	}
	return f, err
}

// ListByUser returns the user's feedback, newest first.
func (r *FeedbackRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Feedback, error) {
	return r.query(ctx, feedbackSelect+"\nWHERE f.user_id = ? ORDER BY f.created_at DESC, f.id DESC", userID)
}

// List returns one page of feedback matching filter and the total count.
func (r *FeedbackRepo) List(ctx context.Context, filter FeedbackFilter, page Page) ([]model.Feedback, int, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		conds = append(conds, "f.status = ?")
		args = append(args, filter.Status)
	}
	if filter.Type != "" {
		conds = append(conds, "f.type = ?")
		args = append(args, filter.Type)
	}
	where := ""
	if len(conds) > 0 {
		where = "\nWHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feedbacks f"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	page = page.Normalize()
	items, err := r.query(ctx, feedbackSelect+where+"\nORDER BY f.created_at DESC, f.id DESC LIMIT ? OFFSET ?",
		append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *FeedbackRepo) query(ctx context.Context, q string, args ...any) ([]model.Feedback, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Feedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// Update writes status and response.
func (r *FeedbackRepo) Update(ctx context.Context, f *model.Feedback) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE feedbacks SET status = ?, response = ? WHERE id = ?", f.Status, f.Response, f.ID)
	if err != nil {
		return err
	}
	return requireRow(res, ErrFeedbackNotFound)
}

func (r *FeedbackRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM feedbacks WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res, ErrFeedbackNotFound)
}
