// Package aggregate は意見コレクションの読み取り専用集計を提供する。
//
// すべての操作は入力スライスに対する純粋な変換であり、永続化や副作用を持たない。
// 「今月」の判定のみ注入されたClockに依存する。
// 月の境界・グループ化はレポート用タイムゾーン（loc）で判定する。
package aggregate

import (
	"fmt"
	"time"

	"github.com/hitoshi/kumivoice/internal/model"
)

// Engine は意見の集計処理を提供する。
// 状態を持たず、すべてのメソッドは並行呼び出しに対して安全。
type Engine struct {
	clock Clock
	loc   *time.Location
}

// NewEngine はEngineを生成する。
// clockがnilの場合はシステム時計、locがnilの場合はtime.Localを使用する。
func NewEngine(clock Clock, loc *time.Location) *Engine {
	if clock == nil {
		clock = SystemClock()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Engine{clock: clock, loc: loc}
}

// Stats は意見全体のサマリー統計を表す。
type Stats struct {
	Total     int `json:"total"`
	Unread    int `json:"unread"`
	ThisMonth int `json:"thisMonth"`
}

// DepartmentGroup は1分会分の意見リスト。
// グループの並び順は入力中でラベルが最初に現れた順。
type DepartmentGroup struct {
	Department string
	Opinions   []model.Opinion
}

// MonthStats は1か月分の集計（総件数と分会別件数）。
type MonthStats struct {
	Total        int            `json:"total"`
	ByDepartment map[string]int `json:"byDepartment"`
}

// Stats は総件数・未読件数・今月件数を計算する。
// 「今月」は呼び出し時点のレポート用タイムゾーンでの暦月（year*12+month）で判定する。
// 空の入力にはゼロ値を返す。
func (e *Engine) Stats(opinions []model.Opinion) Stats {
	now := e.clock.Now().In(e.loc)
	currentMonth := now.Year()*12 + int(now.Month())

	s := Stats{Total: len(opinions)}
	for _, op := range opinions {
		if !op.IsRead {
			s.Unread++
		}
		created := op.CreatedAt.In(e.loc)
		if created.Year()*12+int(created.Month()) == currentMonth {
			s.ThisMonth++
		}
	}
	return s
}

// GroupByDepartment は意見を分会ラベルでグループ化する。
// ラベルはOpinion.DepartmentLabel()（未入力は「未記入」）。
// 各意見はちょうど1グループに属し、グループ内の並びは入力順を保つ。
// 入力順への仮定は置かない（呼び出し側のソート規約に依存しない）。
func (e *Engine) GroupByDepartment(opinions []model.Opinion) []DepartmentGroup {
	index := make(map[string]int)
	groups := make([]DepartmentGroup, 0)

	for _, op := range opinions {
		label := op.DepartmentLabel()
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, DepartmentGroup{Department: label})
		}
		groups[i].Opinions = append(groups[i].Opinions, op)
	}
	return groups
}

// GroupMap はGroupByDepartmentの結果をJSON応答用のマップ形式に変換する。
func GroupMap(groups []DepartmentGroup) map[string][]model.Opinion {
	m := make(map[string][]model.Opinion, len(groups))
	for _, g := range groups {
		m[g.Department] = g.Opinions
	}
	return m
}

// MonthlyStats は意見を作成月ごとに集計する。
// キーは"YYYY-MM"形式（月はゼロ埋め）。辞書順ソートが時系列順に一致する。
// 各意見はちょうど1つの月バケットに寄与する。
func (e *Engine) MonthlyStats(opinions []model.Opinion) map[string]MonthStats {
	result := make(map[string]MonthStats)
	for _, op := range opinions {
		key := e.MonthKey(op.CreatedAt)
		ms, ok := result[key]
		if !ok {
			ms = MonthStats{ByDepartment: make(map[string]int)}
		}
		ms.Total++
		ms.ByDepartment[op.DepartmentLabel()]++
		result[key] = ms
	}
	return result
}

// MonthKey は作成日時から"YYYY-MM"形式の月キーを導出する。
func (e *Engine) MonthKey(t time.Time) string {
	local := t.In(e.loc)
	return fmt.Sprintf("%04d-%02d", local.Year(), int(local.Month()))
}

// FilterByMonth は指定された年・月（1〜12）に作成された意見のみを返す。
// 該当がない場合は空スライスを返す（エラーにはしない）。
// 結果の並びは入力順を保つ。
func (e *Engine) FilterByMonth(opinions []model.Opinion, year, month int) []model.Opinion {
	filtered := make([]model.Opinion, 0)
	for _, op := range opinions {
		created := op.CreatedAt.In(e.loc)
		if created.Year() == year && int(created.Month()) == month {
			filtered = append(filtered, op)
		}
	}
	return filtered
}

// FilterPostsByMonth は指定された年・月（1〜12）に作成された投稿のみを返す。
// アーカイブページの月別絞り込みに使う。月の判定規則はFilterByMonthと同じ。
func (e *Engine) FilterPostsByMonth(posts []model.Post, year, month int) []model.Post {
	filtered := make([]model.Post, 0)
	for _, p := range posts {
		created := p.CreatedAt.In(e.loc)
		if created.Year() == year && int(created.Month()) == month {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
