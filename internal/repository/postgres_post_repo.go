package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/lib/pq"

	"github.com/hitoshi/kumivoice/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した投稿リポジトリ。
// 画像・PDFの参照列はtext[]で保持する。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// Create は投稿を作成する。IDとタイムスタンプはDBが決定する。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	stored := *post
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO posts (title, content, excerpt, category, is_published, image_urls, pdf_urls)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		post.Title, post.Content, post.Excerpt, post.Category, post.IsPublished,
		pq.Array(post.ImageURLs), pq.Array(post.PDFURLs),
	).Scan(&id, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	stored.ID = strconv.FormatInt(id, 10)
	return &stored, nil
}

// List は全投稿を作成日時の降順で返す。
func (r *PostgresPostRepo) List(ctx context.Context) ([]model.Post, error) {
	return r.queryPosts(ctx,
		`SELECT id, title, content, excerpt, category, is_published, image_urls, pdf_urls, created_at, updated_at
		 FROM posts
		 ORDER BY created_at DESC, id DESC`,
	)
}

// ListPublished は公開済み投稿を作成日時の降順で返す。limit<=0は無制限。
func (r *PostgresPostRepo) ListPublished(ctx context.Context, limit int) ([]model.Post, error) {
	query := `SELECT id, title, content, excerpt, category, is_published, image_urls, pdf_urls, created_at, updated_at
		 FROM posts
		 WHERE is_published
		 ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		return r.queryPosts(ctx, query+` LIMIT $1`, limit)
	}
	return r.queryPosts(ctx, query)
}

// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, nil
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, content, excerpt, category, is_published, image_urls, pdf_urls, created_at, updated_at
		 FROM posts
		 WHERE id = $1`,
		numericID,
	)
	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Update は投稿の全フィールドを保存し、updated_atをDB側のnow()で更新する。
func (r *PostgresPostRepo) Update(ctx context.Context, post *model.Post) error {
	numericID, err := strconv.ParseInt(post.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid post id: %q", post.ID)
	}

	err = r.db.QueryRowContext(ctx,
		`UPDATE posts
		 SET title = $2, content = $3, excerpt = $4, category = $5,
		     is_published = $6, image_urls = $7, pdf_urls = $8, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`,
		numericID, post.Title, post.Content, post.Excerpt, post.Category,
		post.IsPublished, pq.Array(post.ImageURLs), pq.Array(post.PDFURLs),
	).Scan(&post.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("post not found: %s", post.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

// Delete は指定IDの投稿を削除する。削除された場合trueを返す。
func (r *PostgresPostRepo) Delete(ctx context.Context, id string) (bool, error) {
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return false, nil
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM posts WHERE id = $1`,
		numericID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete post: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// queryPosts はクエリを実行して投稿のスライスを返す。
func (r *PostgresPostRepo) queryPosts(ctx context.Context, query string, args ...any) ([]model.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}

// scanPost は1行を投稿モデルに読み取る。
func scanPost(row rowScanner) (*model.Post, error) {
	post := &model.Post{}
	var id int64
	err := row.Scan(
		&id, &post.Title, &post.Content, &post.Excerpt, &post.Category,
		&post.IsPublished, pq.Array(&post.ImageURLs), pq.Array(&post.PDFURLs),
		&post.CreatedAt, &post.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan post: %w", err)
	}
	post.ID = strconv.FormatInt(id, 10)
	return post, nil
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
