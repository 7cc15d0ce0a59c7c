package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/study-room-reservation/internal/model"
)

const userColumns = "id,name,student_id,password_hash,phone,role,study_minutes,study_days,last_study_date,created_at,updated_at"

type UserRepo struct{ DB DBTX }

func NewUserRepo(db DBTX) *UserRepo { return &UserRepo{DB: db} }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*model.User, error) {
	var (
		u    model.User
		last sql.NullTime
	)
	if err := s.Scan(&u.ID, &u.Name, &u.StudentID, &u.PasswordHash, &u.Phone, &u.Role,
		&u.StudyMinutes, &u.StudyDays, &last, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if last.Valid {
		t := last.Time
		u.LastStudyDate = &t
	}
	return &u, nil
}

// Create inserts the user and sets its ID. PasswordHash must already be
// a bcrypt hash.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.StudentID = strings.TrimSpace(u.StudentID)
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, student_id, password_hash, phone, role) VALUES (?,?,?,?,?)",
		u.Name, u.StudentID, u.PasswordHash, u.Phone, u.Role)
	if err != nil {
		if isDuplicate(err) {
			return ErrStudentIDExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

func (r *UserRepo) get(ctx context.Context, query string, arg any) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetByStudentID fetches a user by login identifier.
func (r *UserRepo) GetByStudentID(ctx context.Context, studentID string) (*model.User, error) {
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE student_id=? LIMIT 1", strings.TrimSpace(studentID))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// GetByIDForUpdate is GetByID with a row lock. Call it inside a transaction.
func (r *UserRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*model.User, error) {
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE id=? FOR UPDATE", id)
}

// List returns all users ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// Update writes the admin-editable fields: name, student id, phone and role.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, student_id=?, phone=?, role=? WHERE id=?",
		u.Name, strings.TrimSpace(u.StudentID), u.Phone, u.Role, u.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrStudentIDExists
		}
		return err
	}
	return requireRow(res, ErrUserNotFound)
}

// UpdateProfile writes the self-editable fields.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, name, phone string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET name=?, phone=? WHERE id=?", name, phone, id)
	if err != nil {
		return err
	}
	return requireRow(res, ErrUserNotFound)
}

// UpdateStudyStats persists the check-out counters.
func (r *UserRepo) UpdateStudyStats(ctx context.Context, u *model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET study_minutes=?, study_days=?, last_study_date=? WHERE id=?",
		u.StudyMinutes, u.StudyDays, utcOrNil(u.LastStudyDate), u.ID)
	return err
}

func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res, ErrUserNotFound)
}

// requireRow maps zero affected rows to notFound. The DSN sets
// clientFoundRows so an UPDATE that changes nothing still counts its match.
func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
