package repo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threedv/saiban/internal/modules/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupTestDB connects to the database named by SAIBAN_TEST_DSN. Without one
// the integration tests are skipped.
func setupTestDB(t *testing.T) *gorm.DB {
	dsn := os.Getenv("SAIBAN_TEST_DSN")
	if dsn == "" {
		dsn = "host=localhost user=saiban password=saiban dbname=saiban_test port=5432 sslmode=disable"
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Skip("Test database not available, skipping integration tests")
		return nil
	}

	err = db.AutoMigrate(
		&model.Employee{},
		&model.Project{},
		&model.EditHistory{},
	)
	require.NoError(t, err)

	return db
}

func cleanupProjects(db *gorm.DB, prefix string) {
	db.Exec("DELETE FROM edit_history WHERE project_id IN (SELECT id FROM projects WHERE project_number LIKE ?)", prefix+"%")
	db.Exec("DELETE FROM projects WHERE project_number LIKE ?", prefix+"%")
}

func testProject(number string) *model.Project {
	return &model.Project{
		ProjectNumber: number,
		Category:      number[2:4],
		StaffID:       "E001",
		StaffName:     "山田太郎",
		ProjectName:   "テスト案件",
		ClientName:    "株式会社テスト",
		Budget:        100000,
		Deadline:      time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC),
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
}

func createMarker(t *testing.T) []byte {
	raw, err := sonic.Marshal(model.NewCreateMarker())
	require.NoError(t, err)
	return raw
}

func TestProjectRepo_MaxNumberByPrefix(t *testing.T) {
	db := setupTestDB(t)
	if db == nil {
		return
	}
	// 99 is not a real category, so these rows cannot collide with dev data
	defer cleanupProjects(db, "9902")

	r := NewProjectRepo(db)
	ctx := context.Background()

	got, err := r.MaxNumberByPrefix(ctx, "9902")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	for _, n := range []string{"9902001", "9902003", "9902002"} {
		require.NoError(t, r.CreateWithHistory(ctx, testProject(n), &model.EditHistory{
			EditorID: "E001", EditorName: "山田太郎",
			EditType: model.EditTypeCreate, Changes: createMarker(t),
			EditedAt: time.Now().UTC(),
		}))
	}

	got, err = r.MaxNumberByPrefix(ctx, "9902")
	require.NoError(t, err)
	assert.Equal(t, "9902003", got)
}

func TestProjectRepo_CreateWithHistory_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	if db == nil {
		return
	}
	defer cleanupProjects(db, "9903")

	r := NewProjectRepo(db)
	ctx := context.Background()

	h := func() *model.EditHistory {
		return &model.EditHistory{
			EditorID: "E001", EditorName: "山田太郎",
			EditType: model.EditTypeCreate, Changes: createMarker(t),
			EditedAt: time.Now().UTC(),
		}
	}

	require.NoError(t, r.CreateWithHistory(ctx, testProject("9903001"), h()))

	err := r.CreateWithHistory(ctx, testProject("9903001"), h())
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// the failed insert must not leave an orphan audit row
	var count int64
	db.Model(&model.EditHistory{}).
		Joins("JOIN projects ON projects.id = edit_history.project_id").
		Where("projects.project_number = ?", "9903001").
		Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestProjectRepo_UpdateAndHistoryOrder(t *testing.T) {
	db := setupTestDB(t)
	if db == nil {
		return
	}
	defer cleanupProjects(db, "9904")

	r := NewProjectRepo(db)
	ctx := context.Background()

	p := testProject("9904001")
	require.NoError(t, r.CreateWithHistory(ctx, p, &model.EditHistory{
		EditorID: "E001", EditorName: "山田太郎",
		EditType: model.EditTypeCreate, Changes: createMarker(t),
		EditedAt: time.Now().UTC().Add(-time.Hour),
	}))

	loaded, err := r.GetByNumber(ctx, "9904001")
	require.NoError(t, err)

	loaded.Budget = 250000
	changes, err := sonic.Marshal(model.ChangeSet{
		"budget": {Old: 100000, New: 250000},
	})
	require.NoError(t, err)

	require.NoError(t, r.UpdateWithHistory(ctx, loaded, &model.EditHistory{
		EditorID: "E002", EditorName: "佐藤花子",
		EditType: model.EditTypeUpdate, Changes: changes,
		EditedAt: time.Now().UTC(),
	}))

	reloaded, err := r.GetByNumber(ctx, "9904001")
	require.NoError(t, err)
	assert.EqualValues(t, 250000, reloaded.Budget)
	require.Len(t, reloaded.EditHistory, 2)
	assert.Equal(t, model.EditTypeCreate, reloaded.EditHistory[0].EditType)
	assert.Equal(t, model.EditTypeUpdate, reloaded.EditHistory[1].EditType)
}

func TestProjectRepo_List(t *testing.T) {
	db := setupTestDB(t)
	if db == nil {
		return
	}
	defer cleanupProjects(db, "9906")
	defer cleanupProjects(db, "9907")

	r := NewProjectRepo(db)
	ctx := context.Background()

	a := testProject("9906001")
	a.ProjectName = "検索用の受託案件"
	b := testProject("9907001")
	b.ClientName = "検索株式会社"

	for _, p := range []*model.Project{a, b} {
		require.NoError(t, r.CreateWithHistory(ctx, p, &model.EditHistory{
			EditorID: "E001", EditorName: "山田太郎",
			EditType: model.EditTypeCreate, Changes: createMarker(t),
			EditedAt: time.Now().UTC(),
		}))
	}

	byCategory, err := r.List(ctx, "06", "")
	require.NoError(t, err)
	for _, p := range byCategory {
		assert.Equal(t, "06", p.Category)
	}

	byKeyword, err := r.List(ctx, "", "検索")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(byKeyword), 2)
}

func TestProjectRepo_DeleteByNumber(t *testing.T) {
	db := setupTestDB(t)
	if db == nil {
		return
	}
	defer cleanupProjects(db, "9908")

	r := NewProjectRepo(db)
	ctx := context.Background()

	require.NoError(t, r.CreateWithHistory(ctx, testProject("9908001"), &model.EditHistory{
		EditorID: "E001", EditorName: "山田太郎",
		EditType: model.EditTypeCreate, Changes: createMarker(t),
		EditedAt: time.Now().UTC(),
	}))

	require.NoError(t, r.DeleteByNumber(ctx, "9908001"))

	_, err := r.GetByNumber(ctx, "9908001")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// deleting again is a no-op
	assert.NoError(t, r.DeleteByNumber(ctx, "9908001"))
}
