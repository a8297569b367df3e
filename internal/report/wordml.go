package report

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/hitoshi/kumivoice/internal/model"
)

// wordMediaType はWord 2003 XML（単一ファイルのWordprocessingML）のメディアタイプ。
const wordMediaType = "application/msword"

// WordMLSink は報告書をWord 2003 XML形式で出力するDocumentSink実装。
// 単一ファイルのXMLのためアーカイブ処理が不要で、出力は決定的。
// Microsoft WordおよびLibreOfficeでそのまま開ける。
type WordMLSink struct{}

// NewWordMLSink はWordMLSinkを生成する。
func NewWordMLSink() *WordMLSink {
	return &WordMLSink{}
}

// ContentType はWordドキュメントのメディアタイプを返す。
func (s *WordMLSink) ContentType() string {
	return wordMediaType
}

// Filename はダウンロード用のファイル名を返す。
func (s *WordMLSink) Filename(year, month int) string {
	return fmt.Sprintf("意見集約_%d年%d月.doc", year, month)
}

// Render は報告書をWordprocessingML（Word 2003 XML）のバイト列へ変換する。
// セクションはmodel.Reportの定義順に出力する。
func (s *WordMLSink) Render(r *model.Report) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(xml.Header)
	buf.WriteString(`<?mso-application progid="Word.Document"?>` + "\n")
	buf.WriteString(`<w:wordDocument xmlns:w="http://schemas.microsoft.com/office/word/2003/wordml"><w:body>`)

	// 1. タイトルと作成日
	writeHeading(&buf, 1, fmt.Sprintf("組合員意見集約報告書 %d年%d月", r.Year, r.Month))
	writeParagraph(&buf, fmt.Sprintf("作成日: %s", r.GeneratedAt.Format("2006年1月2日")))

	// 2. 総件数サマリー
	writeParagraph(&buf, fmt.Sprintf("総件数: %d件", r.TotalCount))
	writeParagraph(&buf, "")

	// 3. 分会別集計表
	writeHeading(&buf, 2, "分会別集計")
	buf.WriteString(`<w:tbl>`)
	writeTableRow(&buf, "分会名", "件数")
	for _, row := range r.Tally {
		writeTableRow(&buf, row.Department, fmt.Sprintf("%d", row.Count))
	}
	buf.WriteString(`</w:tbl>`)
	writeParagraph(&buf, "")

	// 4. 分会ごとの意見詳細
	for _, g := range r.Groups {
		writeHeading(&buf, 2, fmt.Sprintf("%s (%d件)", g.Department, len(g.Entries)))
		for _, entry := range g.Entries {
			writeHeading(&buf, 3, fmt.Sprintf("%d. %s", entry.Seq, entry.Name))
			writeParagraph(&buf, fmt.Sprintf("投稿日時: %s", entry.SubmittedAt.Format("2006年1月2日")))
			writeParagraph(&buf, fmt.Sprintf("所属: %s", entry.Department))
			writeParagraph(&buf, "内容:")
			writeParagraph(&buf, entry.Content)
			writeParagraph(&buf, "")
		}
	}

	buf.WriteString(`</w:body></w:wordDocument>`)
	return buf.Bytes(), nil
}

// writeParagraph は1段落を書き込む。
func writeParagraph(buf *bytes.Buffer, text string) {
	buf.WriteString(`<w:p><w:r><w:t>`)
	xml.EscapeText(buf, []byte(text))
	buf.WriteString(`</w:t></w:r></w:p>`)
}

// writeHeading は見出しスタイル付きの段落を書き込む。
func writeHeading(buf *bytes.Buffer, level int, text string) {
	fmt.Fprintf(buf, `<w:p><w:pPr><w:pStyle w:val="Heading%d"/></w:pPr><w:r><w:t>`, level)
	xml.EscapeText(buf, []byte(text))
	buf.WriteString(`</w:t></w:r></w:p>`)
}

// writeTableRow は2セルの表行を書き込む。
func writeTableRow(buf *bytes.Buffer, cells ...string) {
	buf.WriteString(`<w:tr>`)
	for _, cell := range cells {
		buf.WriteString(`<w:tc><w:p><w:r><w:t>`)
		xml.EscapeText(buf, []byte(cell))
		buf.WriteString(`</w:t></w:r></w:p></w:tc>`)
	}
	buf.WriteString(`</w:tr>`)
}

// compile-time interface check
var _ DocumentSink = (*WordMLSink)(nil)
