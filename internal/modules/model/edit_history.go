package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	EditTypeCreate = "create"
	EditTypeUpdate = "update"
)

// EditHistory is one immutable audit row. A create writes exactly one row
// with the legacy marker payload; an update writes one row whose Changes
// maps each changed column to its old and new value.
type EditHistory struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID int64 `gorm:"not null;index:ix_edit_history_project_id" json:"project_id"`

	EditorID   string `gorm:"type:varchar(50);not null" json:"editor_id"`
	EditorName string `gorm:"type:varchar(100);not null" json:"editor_name"`
	EditType   string `gorm:"type:varchar(20);not null" json:"edit_type"`

	Changes datatypes.JSON `gorm:"type:jsonb" json:"changes"`

	EditedAt time.Time `gorm:"type:timestamptz;not null" json:"edited_at"`

	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (EditHistory) TableName() string { return "edit_history" }

// FieldChange is one entry in an update row's changes payload.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// ChangeSet maps a projects column name to its old/new pair.
type ChangeSet map[string]FieldChange

// CreateMarker is the payload recorded for create rows. The value is kept
// verbatim from the legacy system so old and new rows stay uniform.
type CreateMarker struct {
	Action string `json:"action"`
}

func NewCreateMarker() CreateMarker {
	return CreateMarker{Action: "新規作成"}
}
