// Package mailer sends the number-assigned notification mail. Sending is
// best-effort: a misconfigured or unreachable SMTP server is logged and
// never fails the numbering that triggered it.
package mailer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/threedv/saiban/internal/config"
	"github.com/threedv/saiban/internal/modules/model"
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

type Sender interface {
	SendNumberAssigned(p *model.Project) error
}

type smtpSender struct {
	cfg *config.Config
	log *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) Sender {
	return &smtpSender{cfg: cfg, log: log}
}

func (s *smtpSender) SendNumberAssigned(p *model.Project) error {
	subject := fmt.Sprintf("受注番号が採番されました（受注番号: %s）", p.ProjectNumber)
	body := buildBody(p)

	mc := s.cfg.Mail

	// Development or unconfigured instances log the mail instead of sending.
	if !mc.Enabled || s.cfg.IsDevelopment() {
		s.log.Info("notification mail (not sent)",
			zap.String("to", mc.To),
			zap.String("subject", subject),
			zap.String("body", body))
		return nil
	}
	if mc.Username == "" || mc.Password == "" {
		s.log.Warn("mail credentials missing, skipping notification",
			zap.String("project_number", p.ProjectNumber))
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", mc.From)
	m.SetHeader("To", mc.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(mc.Host, mc.Port, mc.Username, mc.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send notification mail: %w", err)
	}

	s.log.Info("notification mail sent", zap.String("project_number", p.ProjectNumber))
	return nil
}

// buildBody keeps the legacy notification layout so existing mail filters
// keep working.
func buildBody(p *model.Project) string {
	remarks := p.Remarks
	if remarks == "" {
		remarks = "なし"
	}

	var b strings.Builder
	b.WriteString("受注番号が採番されました。\n\n")
	fmt.Fprintf(&b, "■ 受注番号: %s\n", p.ProjectNumber)
	fmt.Fprintf(&b, "■ カテゴリ: %s\n", p.CategoryName())
	fmt.Fprintf(&b, "■ 担当者: %s（%s）\n", p.StaffName, p.StaffID)
	fmt.Fprintf(&b, "■ 案件名: %s\n", p.ProjectName)
	fmt.Fprintf(&b, "■ 客先名: %s\n", p.ClientName)
	fmt.Fprintf(&b, "■ 費用: ¥%s\n", groupDigits(p.Budget))
	fmt.Fprintf(&b, "■ 納期: %s\n", p.Deadline.Format("2006年01月02日"))
	fmt.Fprintf(&b, "■ 備考: %s\n\n", remarks)
	fmt.Fprintf(&b, "採番日時: %s\n", p.CreatedAt.Format("2006年01月02日 15:04"))
	b.WriteString("\n---\n3Dビジュアル 受注番号採番システム\n")
	return b.String()
}

func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return s
}
