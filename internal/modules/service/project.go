package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/threedv/saiban/internal/infra/board"
	"github.com/threedv/saiban/internal/modules/model"
	"github.com/threedv/saiban/internal/modules/repo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// createAttempts bounds the duplicate-key retry loop. Two concurrent
// creations for the same year+category can generate the same candidate
// number; the unique index rejects one of them and that loser regenerates
// from fresh state.
const createAttempts = 3

// Editor identifies who performs a mutation. It is passed explicitly
// rather than read from request-scoped state.
type Editor struct {
	ID   string
	Name string
}

type CreateProjectInput struct {
	Category    string
	StaffID     string
	CaseNumber  string
	ProjectName string
	ClientName  string
	Budget      int64
	Deadline    time.Time
	Remarks     string
}

// UpdateProjectInput is the full proposed field set; the service diffs it
// against the stored record. The project number itself is not updatable.
type UpdateProjectInput struct {
	Category    string
	StaffID     string
	CaseNumber  string
	ProjectName string
	ClientName  string
	Budget      int64
	Deadline    time.Time
	Remarks     string
}

type UpdateProjectOutput struct {
	Project *model.Project
	// Changed is false when the proposed values matched the stored record
	// exactly; nothing was written and updated_at did not advance.
	Changed bool
}

type ListProjectsInput struct {
	Category string
	Keyword  string
}

type ProjectService interface {
	Create(ctx context.Context, in CreateProjectInput, editor Editor) (*model.Project, error)
	Update(ctx context.Context, number string, in UpdateProjectInput, editor Editor) (*UpdateProjectOutput, error)
	Get(ctx context.Context, number string) (*model.Project, error)
	List(ctx context.Context, in ListProjectsInput) ([]model.Project, error)
	Delete(ctx context.Context, number string) error
}

type projectService struct {
	projects  repo.ProjectRepo
	employees repo.EmployeeRepo
	gen       *NumberGenerator
	board     board.Client
	notifier  Notifier
	now       Clock
	log       *zap.Logger
}

func NewProjectService(
	projects repo.ProjectRepo,
	employees repo.EmployeeRepo,
	gen *NumberGenerator,
	boardClient board.Client,
	notifier Notifier,
	now Clock,
	log *zap.Logger,
) ProjectService {
	if now == nil {
		now = utcNow
	}
	return &projectService{
		projects:  projects,
		employees: employees,
		gen:       gen,
		board:     boardClient,
		notifier:  notifier,
		now:       now,
		log:       log,
	}
}

func (s *projectService) Create(ctx context.Context, in CreateProjectInput, editor Editor) (*model.Project, error) {
	if strings.TrimSpace(in.StaffID) == "" || strings.TrimSpace(in.ProjectName) == "" {
		return nil, fmt.Errorf("staff id and project name are required: %w", ErrValidation)
	}
	if !model.KnownCategory(in.Category) {
		return nil, fmt.Errorf("unknown category %q: %w", in.Category, ErrValidation)
	}

	staff, err := s.employees.FindActiveByEmployeeID(ctx, in.StaffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("staff %q: %w", in.StaffID, ErrEmployeeNotFound)
		}
		return nil, fmt.Errorf("resolve staff: %w", err)
	}

	p := &model.Project{
		Category:    in.Category,
		StaffID:     staff.EmployeeID,
		StaffName:   staff.Name,
		CaseNumber:  in.CaseNumber,
		ProjectName: in.ProjectName,
		ClientName:  in.ClientName,
		Budget:      in.Budget,
		Deadline:    in.Deadline.UTC(),
		Remarks:     in.Remarks,
	}

	// Board enrichment happens before the numbering transaction and never
	// blocks it: a dead Board API just means the form values stand.
	boardProjectID := s.enrichFromBoard(ctx, p)

	marker, err := sonic.Marshal(model.NewCreateMarker())
	if err != nil {
		return nil, fmt.Errorf("marshal audit payload: %w", err)
	}

	for attempt := 1; ; attempt++ {
		number, err := s.gen.Next(ctx, p.Category)
		if err != nil {
			return nil, err
		}

		now := s.now()
		p.ProjectNumber = number
		p.CreatedAt = now
		p.UpdatedAt = now

		h := &model.EditHistory{
			EditorID:   editor.ID,
			EditorName: editor.Name,
			EditType:   model.EditTypeCreate,
			Changes:    marker,
			EditedAt:   now,
		}

		err = s.projects.CreateWithHistory(ctx, p, h)
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("persist project: %w", err)
		}
		if attempt >= createAttempts {
			return nil, fmt.Errorf("number %s taken after %d attempts: %w", number, attempt, ErrNumberConflict)
		}
		s.log.Warn("project number collision, regenerating",
			zap.String("project_number", number),
			zap.Int("attempt", attempt))
		p.ID = 0
	}

	// Post-commit side effects. The number is durable at this point;
	// nothing below may undo it.
	if s.notifier != nil {
		s.notifier.NumberAssigned(ctx, p, boardProjectID)
	}

	return p, nil
}

// enrichFromBoard fills project/client name and budget from the linked
// Board case, when one exists. Returns the Board project id for the later
// management-number write-back, or "".
func (s *projectService) enrichFromBoard(ctx context.Context, p *model.Project) string {
	if p.CaseNumber == "" || s.board == nil || !s.board.Configured() {
		return ""
	}

	bp, err := s.board.FindByCaseNumber(ctx, p.CaseNumber)
	if err != nil {
		s.log.Warn("board lookup failed, continuing without enrichment",
			zap.String("case_number", p.CaseNumber),
			zap.Error(err))
		return ""
	}
	if bp == nil {
		s.log.Info("case number has no board record",
			zap.String("case_number", p.CaseNumber))
		return ""
	}

	if bp.Name != "" {
		p.ProjectName = bp.Name
	}
	if bp.ClientName != "" {
		p.ClientName = bp.ClientName
	}
	if bp.HasAmount {
		p.Budget = bp.Amount
	}
	return bp.ID
}

func (s *projectService) Update(ctx context.Context, number string, in UpdateProjectInput, editor Editor) (*UpdateProjectOutput, error) {
	p, err := s.projects.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project %s: %w", number, ErrProjectNotFound)
		}
		return nil, fmt.Errorf("load project: %w", err)
	}

	changes := model.ChangeSet{}

	if in.Category != p.Category {
		if !model.KnownCategory(in.Category) {
			return nil, fmt.Errorf("unknown category %q: %w", in.Category, ErrValidation)
		}
		changes["category"] = model.FieldChange{Old: p.Category, New: in.Category}
		p.Category = in.Category
	}

	if in.StaffID != p.StaffID {
		// Staff edits re-resolve the employee so the denormalized name
		// stays in step with the id.
		staff, err := s.employees.FindActiveByEmployeeID(ctx, in.StaffID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("staff %q: %w", in.StaffID, ErrEmployeeNotFound)
			}
			return nil, fmt.Errorf("resolve staff: %w", err)
		}
		changes["staff_id"] = model.FieldChange{Old: p.StaffID, New: staff.EmployeeID}
		changes["staff_name"] = model.FieldChange{Old: p.StaffName, New: staff.Name}
		p.StaffID = staff.EmployeeID
		p.StaffName = staff.Name
	}

	if in.CaseNumber != p.CaseNumber {
		changes["case_number"] = model.FieldChange{Old: p.CaseNumber, New: in.CaseNumber}
		p.CaseNumber = in.CaseNumber
	}
	if in.ProjectName != p.ProjectName {
		changes["project_name"] = model.FieldChange{Old: p.ProjectName, New: in.ProjectName}
		p.ProjectName = in.ProjectName
	}
	if in.ClientName != p.ClientName {
		changes["client_name"] = model.FieldChange{Old: p.ClientName, New: in.ClientName}
		p.ClientName = in.ClientName
	}
	if in.Budget != p.Budget {
		changes["budget"] = model.FieldChange{Old: p.Budget, New: in.Budget}
		p.Budget = in.Budget
	}

	deadline := in.Deadline.UTC()
	if !deadline.Equal(p.Deadline) {
		changes["deadline"] = model.FieldChange{Old: p.Deadline, New: deadline}
		p.Deadline = deadline
	}

	if in.Remarks != p.Remarks {
		changes["remarks"] = model.FieldChange{Old: p.Remarks, New: in.Remarks}
		p.Remarks = in.Remarks
	}

	if len(changes) == 0 {
		return &UpdateProjectOutput{Project: p, Changed: false}, nil
	}

	payload, err := sonic.Marshal(changes)
	if err != nil {
		return nil, fmt.Errorf("marshal audit payload: %w", err)
	}

	now := s.now()
	p.UpdatedAt = now

	h := &model.EditHistory{
		EditorID:   editor.ID,
		EditorName: editor.Name,
		EditType:   model.EditTypeUpdate,
		Changes:    payload,
		EditedAt:   now,
	}

	if err := s.projects.UpdateWithHistory(ctx, p, h); err != nil {
		return nil, fmt.Errorf("persist update: %w", err)
	}

	return &UpdateProjectOutput{Project: p, Changed: true}, nil
}

func (s *projectService) Get(ctx context.Context, number string) (*model.Project, error) {
	p, err := s.projects.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project %s: %w", number, ErrProjectNotFound)
		}
		return nil, fmt.Errorf("load project: %w", err)
	}
	return p, nil
}

func (s *projectService) List(ctx context.Context, in ListProjectsInput) ([]model.Project, error) {
	items, err := s.projects.List(ctx, in.Category, in.Keyword)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return items, nil
}

func (s *projectService) Delete(ctx context.Context, number string) error {
	if err := s.projects.DeleteByNumber(ctx, number); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}
