package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Master は分会と投稿カテゴリのマスター定義を保持する。
// YAMLファイルで上書きできるが、省略時は組織の既定値を使う。
type Master struct {
	Departments []string `yaml:"departments"`
	Categories  []string `yaml:"categories"`
}

// DefaultMaster は組織の既定マスター定義を返す。
func DefaultMaster() *Master {
	return &Master{
		Departments: []string{
			"本部",
			"製造分会",
			"営業分会",
			"技術分会",
			"事務分会",
		},
		Categories: []string{
			"活動報告",
			"お知らせ",
			"労使協議会",
			"その他",
		},
	}
}

// LoadMaster はYAMLファイルからマスター定義を読み込む。
// pathが空文字の場合は既定値を返す。ファイルに欠けた項目があれば
// 既定値で補完する。
func LoadMaster(path string) (*Master, error) {
	if path == "" {
		return DefaultMaster(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read master file %s: %w", path, err)
	}

	var m Master
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse master file %s: %w", path, err)
	}

	def := DefaultMaster()
	if len(m.Departments) == 0 {
		m.Departments = def.Departments
	}
	if len(m.Categories) == 0 {
		m.Categories = def.Categories
	}

	return &m, nil
}

// ValidCategory はカテゴリがマスター定義に含まれるかを返す。
func (m *Master) ValidCategory(category string) bool {
	for _, c := range m.Categories {
		if c == category {
			return true
		}
	}
	return false
}
