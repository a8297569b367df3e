// Package report は月次意見集約報告書の組み立てとドキュメント出力を提供する。
//
// Assemblerはフォーマットに依存しない構造（model.Report）を生成し、
// 実際のバイト列への変換はDocumentSink実装に委ねる。
// この分離により、集計・報告ロジックはドキュメント形式ライブラリなしでテストできる。
package report

import (
	"github.com/hitoshi/kumivoice/internal/aggregate"
	"github.com/hitoshi/kumivoice/internal/model"
)

// Assembler は月次報告書を組み立てる。状態を持たない。
type Assembler struct {
	engine *aggregate.Engine
	clock  aggregate.Clock
}

// NewAssembler はAssemblerを生成する。
// clockは報告書の作成日の決定にのみ使用する。nilの場合はシステム時計。
func NewAssembler(engine *aggregate.Engine, clock aggregate.Clock) *Assembler {
	if clock == nil {
		clock = aggregate.SystemClock()
	}
	return &Assembler{engine: engine, clock: clock}
}

// AssembleMonthly は指定年月の意見から報告書を組み立てる。
// 該当月に意見が1件もない場合はmodel.NewNoOpinionsForMonthErrorを返す。
// これは唯一のドメインエラーであり、システム障害とは区別される。
//
// 報告書の構成順:
//  1. タイトル（年月と作成日）
//  2. 総件数サマリー
//  3. 分会別集計表（グループ初出順に1行ずつ）
//  4. 分会ごとの意見詳細（集計表と同じ分会順、分会内は1始まりの連番）
func (a *Assembler) AssembleMonthly(year, month int, opinions []model.Opinion) (*model.Report, error) {
	filtered := a.engine.FilterByMonth(opinions, year, month)
	if len(filtered) == 0 {
		return nil, model.NewNoOpinionsForMonthError(year, month)
	}

	groups := a.engine.GroupByDepartment(filtered)

	r := &model.Report{
		Year:        year,
		Month:       month,
		GeneratedAt: a.clock.Now(),
		TotalCount:  len(filtered),
		Tally:       make([]model.DepartmentTally, 0, len(groups)),
		Groups:      make([]model.DepartmentSection, 0, len(groups)),
	}

	for _, g := range groups {
		r.Tally = append(r.Tally, model.DepartmentTally{
			Department: g.Department,
			Count:      len(g.Opinions),
		})

		section := model.DepartmentSection{
			Department: g.Department,
			Entries:    make([]model.ReportEntry, 0, len(g.Opinions)),
		}
		for i, op := range g.Opinions {
			section.Entries = append(section.Entries, model.ReportEntry{
				Seq:         i + 1,
				Name:        op.DisplayName(),
				SubmittedAt: op.CreatedAt,
				Department:  op.DepartmentLabel(),
				Content:     op.Content,
			})
		}
		r.Groups = append(r.Groups, section)
	}

	return r, nil
}
