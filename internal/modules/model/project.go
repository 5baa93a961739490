package model

import (
	"time"
)

// Project is one numbered order case. ProjectNumber is the 7-character code
// YYCCNNN (two-digit year, two-character category, three-digit sequence) and
// is never reassigned once issued, even after the row is deleted.
type Project struct {
	ID            int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectNumber string `gorm:"type:char(7);not null;uniqueIndex:uq_project_number" json:"project_number"`
	Category      string `gorm:"type:char(2);not null" json:"category"`

	StaffID string `gorm:"type:varchar(50);not null" json:"staff_id"`
	// StaffName is a denormalized copy of the employee name captured at
	// create/edit time. It is refreshed only when the staff field itself is
	// edited, not when the employee record changes.
	StaffName string `gorm:"type:varchar(100);not null" json:"staff_name"`

	CaseNumber  string `gorm:"type:varchar(50)" json:"case_number"`
	ProjectName string `gorm:"type:varchar(200);not null" json:"project_name"`
	ClientName  string `gorm:"type:varchar(200);not null" json:"client_name"`
	Budget      int64  `gorm:"not null" json:"budget"`

	Deadline time.Time `gorm:"type:timestamptz;not null" json:"deadline"`
	Remarks  string    `gorm:"type:text" json:"remarks"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Project <-> EditHistory (one-to-many, rows die with the project)
	EditHistory []EditHistory `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"edit_history,omitempty"`
}

func (Project) TableName() string { return "projects" }

// categoryNames is the fixed category-code table. The display names are
// kept verbatim from the legacy system for compatibility.
var categoryNames = map[string]string{
	"02": "設計",
	"03": "トレーニング・たよれーる・データ販売",
	"04": "製品販売",
	"06": "システム受託",
	"07": "システム小規模開発",
	"08": "付帯業務",
}

// CategoryName resolves a two-character category code to its display name.
// Unknown codes render as 不明 rather than failing.
func CategoryName(code string) string {
	if name, ok := categoryNames[code]; ok {
		return name
	}
	return "不明"
}

func (p Project) CategoryName() string {
	return CategoryName(p.Category)
}

// KnownCategory reports whether code is one of the fixed category codes.
func KnownCategory(code string) bool {
	_, ok := categoryNames[code]
	return ok
}
