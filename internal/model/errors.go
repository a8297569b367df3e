package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, opinion, post, upload, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeLoginFailed         = "LOGIN_FAILED"
	ErrCodeRequiredField       = "REQUIRED_FIELD_MISSING"
	ErrCodeContentTooLong      = "CONTENT_TOO_LONG"
	ErrCodeTitleTooLong        = "TITLE_TOO_LONG"
	ErrCodeInvalidEmail        = "INVALID_EMAIL"
	ErrCodeInvalidCategory     = "INVALID_CATEGORY"
	ErrCodeTooManyImages       = "TOO_MANY_IMAGES"
	ErrCodeOpinionNotFound     = "OPINION_NOT_FOUND"
	ErrCodePostNotFound        = "POST_NOT_FOUND"
	ErrCodeInvalidYearMonth    = "INVALID_YEAR_MONTH"
	ErrCodeNoOpinionsForMonth  = "NO_OPINIONS_FOR_MONTH"
	ErrCodeFileRequired        = "FILE_REQUIRED"
	ErrCodeFileTooLarge        = "FILE_TOO_LARGE"
	ErrCodeUnsupportedFileType = "UNSUPPORTED_FILE_TYPE"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "管理者としてログインしてください。",
	}
}

// NewLoginFailedError はログイン失敗エラーを生成する。
// ユーザー名とパスワードのどちらが誤っているかは区別しない。
func NewLoginFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeLoginFailed,
		Message:  "ユーザー名またはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewRequiredFieldError は必須項目未入力エラーを生成する。
func NewRequiredFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeRequiredField,
		Message:  fmt.Sprintf("必須項目が入力されていません: %s", field),
		Category: "validation",
		Action:   "必須項目をすべて入力してください。",
	}
}

// NewContentTooLongError は本文の文字数超過エラーを生成する。
func NewContentTooLongError(limit int) *APIError {
	return &APIError{
		Code:     ErrCodeContentTooLong,
		Message:  fmt.Sprintf("本文は%d文字以内で入力してください。", limit),
		Category: "validation",
		Action:   "本文を短くして再度お試しください。",
	}
}

// NewTitleTooLongError はタイトルの文字数超過エラーを生成する。
func NewTitleTooLongError(limit int) *APIError {
	return &APIError{
		Code:     ErrCodeTitleTooLong,
		Message:  fmt.Sprintf("タイトルは%d文字以内で入力してください。", limit),
		Category: "validation",
		Action:   "タイトルを短くして再度お試しください。",
	}
}

// NewInvalidEmailError はメールアドレス形式エラーを生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  "正しいメールアドレスを入力してください。",
		Category: "validation",
		Action:   "メールアドレスの形式を確認してください。",
	}
}

// NewInvalidCategoryError は未定義カテゴリエラーを生成する。
func NewInvalidCategoryError(category string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCategory,
		Message:  fmt.Sprintf("未定義のカテゴリです: %s", category),
		Category: "validation",
		Action:   "定義済みのカテゴリから選択してください。",
	}
}

// NewTooManyImagesError は画像添付数の上限超過エラーを生成する。
func NewTooManyImagesError(limit int) *APIError {
	return &APIError{
		Code:     ErrCodeTooManyImages,
		Message:  fmt.Sprintf("画像は%d枚まで添付できます。", limit),
		Category: "validation",
		Action:   "添付画像を減らして再度お試しください。",
	}
}

// NewOpinionNotFoundError は意見未検出エラーを生成する。
func NewOpinionNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeOpinionNotFound,
		Message:  fmt.Sprintf("意見が見つかりません: %s", id),
		Category: "opinion",
		Action:   "意見IDを確認してください。",
	}
}

// NewPostNotFoundError は投稿未検出エラーを生成する。
func NewPostNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("投稿が見つかりません: %s", id),
		Category: "post",
		Action:   "投稿IDを確認してください。",
	}
}

// NewInvalidYearMonthError は年月指定の不備エラーを生成する。
func NewInvalidYearMonthError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidYearMonth,
		Message:  "年月を指定してください。",
		Category: "validation",
		Action:   "年と月（1〜12）を数値で指定してください。",
	}
}

// NewNoOpinionsForMonthError は指定月に意見が存在しないことを表すエラーを生成する。
// システム障害ではなく、正常系の「該当なし」を表すドメインエラー。
func NewNoOpinionsForMonthError(year, month int) *APIError {
	return &APIError{
		Code:     ErrCodeNoOpinionsForMonth,
		Message:  fmt.Sprintf("%d年%d月の意見はありません。", year, month),
		Category: "opinion",
		Action:   "対象の年月を確認してください。",
	}
}

// NewFileRequiredError はファイル未選択エラーを生成する。
func NewFileRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeFileRequired,
		Message:  "ファイルが選択されていません。",
		Category: "upload",
		Action:   "アップロードするファイルを選択してください。",
	}
}

// NewFileTooLargeError はファイルサイズ超過エラーを生成する。
func NewFileTooLargeError(limitBytes int64) *APIError {
	return &APIError{
		Code:     ErrCodeFileTooLarge,
		Message:  fmt.Sprintf("ファイルサイズが大きすぎます（%dMB以下にしてください）。", limitBytes/(1024*1024)),
		Category: "upload",
		Action:   "ファイルを小さくして再度お試しください。",
	}
}

// NewUnsupportedFileTypeError は非対応ファイル形式エラーを生成する。
func NewUnsupportedFileTypeError(contentType string) *APIError {
	return &APIError{
		Code:     ErrCodeUnsupportedFileType,
		Message:  fmt.Sprintf("サポートされていないファイル形式です: %s", contentType),
		Category: "upload",
		Action:   "JPEG・PNG・GIF画像またはPDFをアップロードしてください。",
	}
}
