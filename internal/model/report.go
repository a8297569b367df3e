package model

import "time"

// Report は月次の意見集約報告書をフォーマット非依存の構造で表す。
// セクションの出現順は構造の定義順に一致する:
// タイトル → 総件数サマリー → 分会別集計表 → 分会ごとの意見詳細。
// ドキュメント形式への変換はDocumentSink実装の責務であり、
// このモデルはバイト列やエンコーディングを一切持たない。
type Report struct {
	Year        int
	Month       int
	GeneratedAt time.Time
	TotalCount  int
	Tally       []DepartmentTally
	Groups      []DepartmentSection
}

// DepartmentTally は分会別集計表の1行（分会ラベルと件数）。
type DepartmentTally struct {
	Department string
	Count      int
}

// DepartmentSection は1分会分の意見詳細サブセクション。
// EntriesはTallyと同じ分会順で並ぶ。
type DepartmentSection struct {
	Department string
	Entries    []ReportEntry
}

// ReportEntry は報告書に載る個々の意見。
// Seqは分会内で1から始まる連番。
// Nameは表示名（匿名希望の場合は置換済み）。
type ReportEntry struct {
	Seq         int
	Name        string
	SubmittedAt time.Time
	Department  string
	Content     string
}
