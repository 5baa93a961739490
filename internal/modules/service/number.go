package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/threedv/saiban/internal/modules/repo"
)

// Clock supplies the canonical time for numbering and record stamps. All
// callers share one clock so the year prefix and the timestamps can never
// disagree; production uses UTC.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// maxSequence is the 3-digit capacity of one year+category block.
const maxSequence = 999

// NumberGenerator computes the next project number for a category within
// the current year. It reads persisted state only; it never writes, so an
// aborted creation leaves no hole and no claim.
type NumberGenerator struct {
	projects repo.ProjectRepo
	now      Clock
}

func NewNumberGenerator(projects repo.ProjectRepo, now Clock) *NumberGenerator {
	if now == nil {
		now = utcNow
	}
	return &NumberGenerator{projects: projects, now: now}
}

// Next returns the next 7-character project number for category: two-digit
// year, the category code, then a zero-padded sequence starting at 001.
// Sequences advance from the highest persisted number with the same prefix;
// gaps from deleted projects are never refilled.
func (g *NumberGenerator) Next(ctx context.Context, category string) (string, error) {
	prefix := fmt.Sprintf("%02d%s", g.now().Year()%100, category)

	maxNumber, err := g.projects.MaxNumberByPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("query max number for prefix %s: %w", prefix, err)
	}

	seq := 1
	if maxNumber != "" {
		last, err := strconv.Atoi(maxNumber[4:])
		if err != nil {
			return "", fmt.Errorf("malformed project number %q: %w", maxNumber, err)
		}
		seq = last + 1
	}

	if seq > maxSequence {
		return "", fmt.Errorf("prefix %s: %w", prefix, ErrSequenceExhausted)
	}

	return fmt.Sprintf("%s%03d", prefix, seq), nil
}
