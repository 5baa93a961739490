package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryName(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"02", "設計"},
		{"03", "トレーニング・たよれーる・データ販売"},
		{"04", "製品販売"},
		{"06", "システム受託"},
		{"07", "システム小規模開発"},
		{"08", "付帯業務"},
		{"99", "不明"},
		{"", "不明"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CategoryName(tt.code), "code %q", tt.code)
	}
}

func TestKnownCategory(t *testing.T) {
	assert.True(t, KnownCategory("07"))
	assert.False(t, KnownCategory("05"))
	assert.False(t, KnownCategory(""))

	p := Project{Category: "06"}
	assert.Equal(t, "システム受託", p.CategoryName())
}

func TestNewCreateMarker(t *testing.T) {
	assert.Equal(t, "新規作成", NewCreateMarker().Action)
}
