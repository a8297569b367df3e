// Package opinion は組合員意見の受付・管理・集計・報告書生成のサービス層を提供する。
package opinion

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/kumivoice/internal/aggregate"
	"github.com/hitoshi/kumivoice/internal/metrics"
	"github.com/hitoshi/kumivoice/internal/model"
	"github.com/hitoshi/kumivoice/internal/report"
	"github.com/hitoshi/kumivoice/internal/repository"
)

// emailPattern はメールアドレスの形式チェックに使う。
// 厳密なRFC検証ではなく、明らかな誤入力を弾くためのもの。
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SubmitInput は意見投稿の入力を表す。
type SubmitInput struct {
	Name        string `json:"name"`
	Department  string `json:"department"`
	Email       string `json:"email"`
	Subject     string `json:"subject"`
	Content     string `json:"content"`
	IsAnonymous bool   `json:"isAnonymous"`
}

// ExportResult は月次報告書のエクスポート結果を表す。
type ExportResult struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Service は意見のサービス層。投稿の検証・保存・集計・報告書生成を担当する。
type Service struct {
	repo      repository.OpinionRepository
	engine    *aggregate.Engine
	assembler *report.Assembler
	sink      report.DocumentSink
	collector metrics.MetricsCollector
}

// NewService は新しい意見サービスを生成する。
// collectorはnil可（メトリクスを記録しない）。
func NewService(
	repo repository.OpinionRepository,
	engine *aggregate.Engine,
	assembler *report.Assembler,
	sink report.DocumentSink,
	collector metrics.MetricsCollector,
) *Service {
	return &Service{
		repo:      repo,
		engine:    engine,
		assembler: assembler,
		sink:      sink,
		collector: collector,
	}
}

// Submit は公開フォームからの意見投稿を検証して保存する。
// 件名と本文は必須。匿名希望でない場合は氏名も必須。
// 本文は1000文字以内。メールアドレスは入力された場合のみ形式チェックする。
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*model.Opinion, error) {
	name := strings.TrimSpace(input.Name)
	subject := strings.TrimSpace(input.Subject)
	content := strings.TrimSpace(input.Content)
	email := strings.TrimSpace(input.Email)

	if subject == "" {
		return nil, model.NewRequiredFieldError("件名")
	}
	if content == "" {
		return nil, model.NewRequiredFieldError("ご意見")
	}
	if !input.IsAnonymous && name == "" {
		return nil, model.NewRequiredFieldError("お名前")
	}
	if utf8.RuneCountInString(content) > model.OpinionContentMaxLen {
		return nil, model.NewContentTooLongError(model.OpinionContentMaxLen)
	}
	if email != "" && !emailPattern.MatchString(email) {
		return nil, model.NewInvalidEmailError()
	}

	opinion := &model.Opinion{
		Name:        name,
		Department:  strings.TrimSpace(input.Department),
		Email:       email,
		Subject:     subject,
		Content:     content,
		IsAnonymous: input.IsAnonymous,
		IsRead:      false,
	}

	saved, err := s.repo.Create(ctx, opinion)
	if err != nil {
		return nil, fmt.Errorf("failed to create opinion: %w", err)
	}

	if s.collector != nil {
		s.collector.RecordOpinionSubmitted(saved.DepartmentLabel())
	}
	slog.Info("opinion submitted",
		slog.String("opinion_id", saved.ID),
		slog.String("department", saved.DepartmentLabel()),
		slog.Bool("anonymous", saved.IsAnonymous),
	)

	return saved, nil
}

// List は全意見を新しい順で返す。
func (s *Service) List(ctx context.Context) ([]model.Opinion, error) {
	opinions, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list opinions: %w", err)
	}
	return opinions, nil
}

// Get は指定IDの意見を返す。見つからない場合はOPINION_NOT_FOUNDエラー。
func (s *Service) Get(ctx context.Context, id string) (*model.Opinion, error) {
	opinion, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find opinion: %w", err)
	}
	if opinion == nil {
		return nil, model.NewOpinionNotFoundError(id)
	}
	return opinion, nil
}

// Update は意見を部分更新する。nilのフィールドは既存値を保持する。
// 更新後の本文にも1000文字制限を適用する。
func (s *Service) Update(ctx context.Context, id string, update model.OpinionUpdate) (*model.Opinion, error) {
	opinion, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		opinion.Name = strings.TrimSpace(*update.Name)
	}
	if update.Department != nil {
		opinion.Department = strings.TrimSpace(*update.Department)
	}
	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if email != "" && !emailPattern.MatchString(email) {
			return nil, model.NewInvalidEmailError()
		}
		opinion.Email = email
	}
	if update.Subject != nil {
		subject := strings.TrimSpace(*update.Subject)
		if subject == "" {
			return nil, model.NewRequiredFieldError("件名")
		}
		opinion.Subject = subject
	}
	if update.Content != nil {
		content := strings.TrimSpace(*update.Content)
		if content == "" {
			return nil, model.NewRequiredFieldError("ご意見")
		}
		if utf8.RuneCountInString(content) > model.OpinionContentMaxLen {
			return nil, model.NewContentTooLongError(model.OpinionContentMaxLen)
		}
		opinion.Content = content
	}
	if update.IsAnonymous != nil {
		opinion.IsAnonymous = *update.IsAnonymous
	}
	if update.IsRead != nil {
		opinion.IsRead = *update.IsRead
	}

	if err := s.repo.Update(ctx, opinion); err != nil {
		return nil, fmt.Errorf("failed to update opinion: %w", err)
	}

	return opinion, nil
}

// MarkRead は意見を既読にする。
func (s *Service) MarkRead(ctx context.Context, id string) (*model.Opinion, error) {
	read := true
	return s.Update(ctx, id, model.OpinionUpdate{IsRead: &read})
}

// Delete は指定IDの意見を削除する。見つからない場合はOPINION_NOT_FOUNDエラー。
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete opinion: %w", err)
	}
	if !deleted {
		return model.NewOpinionNotFoundError(id)
	}
	slog.Info("opinion deleted", slog.String("opinion_id", id))
	return nil
}

// Stats は総件数・未読件数・今月件数を返す。
func (s *Service) Stats(ctx context.Context) (aggregate.Stats, error) {
	opinions, err := s.repo.List(ctx)
	if err != nil {
		return aggregate.Stats{}, fmt.Errorf("failed to list opinions: %w", err)
	}
	return s.engine.Stats(opinions), nil
}

// GroupedByDepartment は意見を分会別にグループ化して返す。
func (s *Service) GroupedByDepartment(ctx context.Context) ([]aggregate.DepartmentGroup, error) {
	opinions, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list opinions: %w", err)
	}
	return s.engine.GroupByDepartment(opinions), nil
}

// MonthlyStats は月別の集計（総件数・分会別件数）を返す。
func (s *Service) MonthlyStats(ctx context.Context) (map[string]aggregate.MonthStats, error) {
	opinions, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list opinions: %w", err)
	}
	return s.engine.MonthlyStats(opinions), nil
}

// ListByMonth は指定年月の意見のみを返す。
// 年月が範囲外の場合はINVALID_YEAR_MONTHエラー。
func (s *Service) ListByMonth(ctx context.Context, year, month int) ([]model.Opinion, error) {
	if year < 1 || month < 1 || month > 12 {
		return nil, model.NewInvalidYearMonthError()
	}
	opinions, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list opinions: %w", err)
	}
	return s.engine.FilterByMonth(opinions, year, month), nil
}

// ExportMonthlyReport は指定年月の意見集約報告書を生成する。
// 該当月に意見がない場合はNO_OPINIONS_FOR_MONTHエラー。
func (s *Service) ExportMonthlyReport(ctx context.Context, year, month int) (*ExportResult, error) {
	if year < 1 || month < 1 || month > 12 {
		return nil, model.NewInvalidYearMonthError()
	}

	opinions, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list opinions: %w", err)
	}

	rpt, err := s.assembler.AssembleMonthly(year, month, opinions)
	if err != nil {
		return nil, err
	}

	data, err := s.sink.Render(rpt)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	if s.collector != nil {
		s.collector.RecordReportExported()
	}
	slog.Info("monthly report exported",
		slog.Int("year", year),
		slog.Int("month", month),
		slog.Int("opinion_count", rpt.TotalCount),
	)

	return &ExportResult{
		Data:        data,
		ContentType: s.sink.ContentType(),
		Filename:    s.sink.Filename(year, month),
	}, nil
}
