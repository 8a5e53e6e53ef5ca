package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/classmark/classmark/internal/domain"
)

type StudentRepository struct {
	pool PgxPool
}

func NewStudentRepository(pool PgxPool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

func (r *StudentRepository) Create(ctx context.Context, student *domain.Student) error {
	query := `
		INSERT INTO students (roll, name)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, student.Roll, student.Name).
		Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRoll
		}
		return fmt.Errorf("create student: %w", err)
	}

	return nil
}

func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*domain.Student, error) {
	query := `
		SELECT id, roll, name, created_at, updated_at
		FROM students
		WHERE id = $1
	`

	var student domain.Student
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&student.ID,
		&student.Roll,
		&student.Name,
		&student.CreatedAt,
		&student.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get student by id: %w", err)
	}

	return &student, nil
}

func (r *StudentRepository) List(ctx context.Context) ([]domain.Student, error) {
	query := `
		SELECT id, roll, name, created_at, updated_at
		FROM students
		ORDER BY roll
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var students []domain.Student
	for rows.Next() {
		var student domain.Student
		if err := rows.Scan(
			&student.ID,
			&student.Roll,
			&student.Name,
			&student.CreatedAt,
			&student.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	return students, nil
}

func (r *StudentRepository) Update(ctx context.Context, student *domain.Student) error {
	query := `
		UPDATE students
		SET roll = $2, name = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query, student.ID, student.Roll, student.Name).
		Scan(&student.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrStudentNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRoll
		}
		return fmt.Errorf("update student: %w", err)
	}

	return nil
}

func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM students
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrStudentNotFound
	}

	return nil
}
