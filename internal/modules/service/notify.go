package service

import (
	"context"

	"github.com/threedv/saiban/internal/config"
	"github.com/threedv/saiban/internal/infra/board"
	"github.com/threedv/saiban/internal/infra/mailer"
	mq "github.com/threedv/saiban/internal/infra/queue"
	"github.com/threedv/saiban/internal/modules/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Notifier fans out the side effects of a successful numbering: the Board
// management-number write-back, the notification mail, and the integration
// event. All three are best-effort; NumberAssigned never reports failure
// because the number is already committed and must stand.
type Notifier interface {
	NumberAssigned(ctx context.Context, p *model.Project, boardProjectID string)
}

// NumberAssignedEvent is the published message body.
type NumberAssignedEvent struct {
	ProjectNumber string `json:"project_number"`
	Category      string `json:"category"`
	StaffID       string `json:"staff_id"`
	ProjectName   string `json:"project_name"`
	ClientName    string `json:"client_name"`
	AssignedAt    string `json:"assigned_at"`
}

type notifier struct {
	board     board.Client
	mail      mailer.Sender
	publisher *mq.Publisher
	cfg       *config.Config
	log       *zap.Logger
}

func NewNotifier(boardClient board.Client, mail mailer.Sender, publisher *mq.Publisher, cfg *config.Config, log *zap.Logger) Notifier {
	return &notifier{
		board:     boardClient,
		mail:      mail,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
}

func (n *notifier) NumberAssigned(ctx context.Context, p *model.Project, boardProjectID string) {
	g, gctx := errgroup.WithContext(ctx)

	if boardProjectID != "" && n.board != nil && n.board.Configured() {
		g.Go(func() error {
			if err := n.board.SetManagementNumber(gctx, boardProjectID, p.ProjectNumber); err != nil {
				n.log.Error("board management number write-back failed",
					zap.String("project_number", p.ProjectNumber),
					zap.String("board_project_id", boardProjectID),
					zap.Error(err))
			}
			return nil
		})
	}

	if n.mail != nil {
		g.Go(func() error {
			if err := n.mail.SendNumberAssigned(p); err != nil {
				n.log.Error("notification mail failed",
					zap.String("project_number", p.ProjectNumber),
					zap.Error(err))
			}
			return nil
		})
	}

	if n.publisher != nil {
		g.Go(func() error {
			ev := NumberAssignedEvent{
				ProjectNumber: p.ProjectNumber,
				Category:      p.Category,
				StaffID:       p.StaffID,
				ProjectName:   p.ProjectName,
				ClientName:    p.ClientName,
				AssignedAt:    p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			}
			if err := n.publisher.PublishJSON(gctx, n.cfg.RabbitMQ.NumberAssignedKey, ev); err != nil {
				n.log.Error("number assigned event publish failed",
					zap.String("project_number", p.ProjectNumber),
					zap.Error(err))
			}
			return nil
		})
	}

	_ = g.Wait()
}
