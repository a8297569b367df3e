// Package model はドメインモデルを定義する。
package model

import "time"

// DepartmentUnspecified は分会が未入力の意見に付与される集計用ラベル。
// 集計・レポート生成のすべての経路でこの定数を使い、表記ゆれを防ぐ。
const DepartmentUnspecified = "未記入"

// AnonymousDisplayName は匿名希望の意見の表示名。
// 保存されている氏名は変更せず、表示時のみ置き換える。
const AnonymousDisplayName = "匿名希望"

// OpinionContentMaxLen は意見本文の最大文字数。
const OpinionContentMaxLen = 1000

// Opinion は組合員から投稿された意見を表す。
type Opinion struct {
	ID          string
	Name        string
	Department  string
	Email       string
	Subject     string
	Content     string
	IsAnonymous bool
	IsRead      bool
	CreatedAt   time.Time
}

// DepartmentLabel は集計に使う分会ラベルを返す。
// 分会が未入力の場合はDepartmentUnspecifiedを返す。
func (o *Opinion) DepartmentLabel() string {
	if o.Department == "" {
		return DepartmentUnspecified
	}
	return o.Department
}

// DisplayName は表示用の投稿者名を返す。
// 匿名希望の場合はAnonymousDisplayNameを返す（保存値は変更しない）。
func (o *Opinion) DisplayName() string {
	if o.IsAnonymous {
		return AnonymousDisplayName
	}
	return o.Name
}

// OpinionUpdate は意見の部分更新を表す。
// nilのフィールドは変更しない（マージセマンティクス）。
type OpinionUpdate struct {
	Name        *string
	Department  *string
	Email       *string
	Subject     *string
	Content     *string
	IsAnonymous *bool
	IsRead      *bool
}
