package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/hitoshi/kumivoice/internal/model"
)

// PostgresOpinionRepo はPostgreSQLを使用した意見リポジトリ。
// IDはbigserialで採番し、挿入順に単調増加する。
type PostgresOpinionRepo struct {
	db *sql.DB
}

// NewPostgresOpinionRepo はPostgresOpinionRepoを生成する。
func NewPostgresOpinionRepo(db *sql.DB) *PostgresOpinionRepo {
	return &PostgresOpinionRepo{db: db}
}

// Create は意見を作成する。IDと作成日時はDBが決定する。
func (r *PostgresOpinionRepo) Create(ctx context.Context, opinion *model.Opinion) (*model.Opinion, error) {
	stored := *opinion
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO opinions (name, department, email, subject, content, is_anonymous, is_read)
		 VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		 RETURNING id, created_at`,
		opinion.Name, opinion.Department, opinion.Email,
		opinion.Subject, opinion.Content, opinion.IsAnonymous,
	).Scan(&id, &stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create opinion: %w", err)
	}

	stored.ID = strconv.FormatInt(id, 10)
	stored.IsRead = false
	return &stored, nil
}

// List は全意見を作成日時の降順で返す。
func (r *PostgresOpinionRepo) List(ctx context.Context) ([]model.Opinion, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, department, email, subject, content, is_anonymous, is_read, created_at
		 FROM opinions
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list opinions: %w", err)
	}
	defer rows.Close()

	opinions := make([]model.Opinion, 0)
	for rows.Next() {
		op, err := scanOpinion(rows)
		if err != nil {
			return nil, err
		}
		opinions = append(opinions, *op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate opinions: %w", err)
	}
	return opinions, nil
}

// FindByID は指定IDの意見を取得する。見つからない場合はnilを返す。
func (r *PostgresOpinionRepo) FindByID(ctx context.Context, id string) (*model.Opinion, error) {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		// bigserial採番のため、数値でないIDは存在しない
		return nil, nil
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, department, email, subject, content, is_anonymous, is_read, created_at
		 FROM opinions
		 WHERE id = $1`,
		numericID,
	)
	op, err := scanOpinion(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return op, nil
}

// Update は意見の全フィールドを保存する。
func (r *PostgresOpinionRepo) Update(ctx context.Context, opinion *model.Opinion) error {
	numericID, err := strconv.ParseInt(opinion.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid opinion id: %q", opinion.ID)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE opinions
		 SET name = $2, department = $3, email = $4, subject = $5,
		     content = $6, is_anonymous = $7, is_read = $8
		 WHERE id = $1`,
		numericID, opinion.Name, opinion.Department, opinion.Email,
		opinion.Subject, opinion.Content, opinion.IsAnonymous, opinion.IsRead,
	)
	if err != nil {
		return fmt.Errorf("failed to update opinion: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("opinion not found: %s", opinion.ID)
	}
	return nil
}

// Delete は指定IDの意見を削除する。削除された場合trueを返す。
func (r *PostgresOpinionRepo) Delete(ctx context.Context, id string) (bool, error) {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return false, nil
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM opinions WHERE id = $1`,
		numericID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete opinion: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// rowScanner はsql.Rowとsql.Rowsの共通部分。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanOpinion は1行を意見モデルに読み取る。
func scanOpinion(row rowScanner) (*model.Opinion, error) {
	op := &model.Opinion{}
	var id int64
	err := row.Scan(
		&id, &op.Name, &op.Department, &op.Email,
		&op.Subject, &op.Content, &op.IsAnonymous, &op.IsRead, &op.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan opinion: %w", err)
	}
	op.ID = strconv.FormatInt(id, 10)
	return op, nil
}

// compile-time interface check
var _ OpinionRepository = (*PostgresOpinionRepo)(nil)
