package report

import "github.com/hitoshi/kumivoice/internal/model"

// DocumentSink は報告書構造を具体的なドキュメント形式へ変換する。
// Assemblerはこのインターフェースにのみ依存し、形式の差し替え
// （Word・HTML・プレーンテキスト等）は集計ロジックに影響しない。
type DocumentSink interface {
	// Render は報告書をドキュメントのバイト列へ変換する。
	Render(r *model.Report) ([]byte, error)
	// ContentType はレスポンスのContent-Typeに設定するメディアタイプを返す。
	ContentType() string
	// Filename はダウンロード時のファイル名（年月入り）を返す。
	Filename(year, month int) string
}
