package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/alimgiray/contribrank/internal/models"
	"github.com/alimgiray/contribrank/pkg/logger"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const summaryUnavailablePrefix = "Summary unavailable: "

// Summarizer produces a free-text narrative for one contributor
type Summarizer interface {
	Summarize(ctx context.Context, rec models.ContributorRecord) (string, error)
}

// SummarizerFunc adapts a function to the Summarizer interface
type SummarizerFunc func(ctx context.Context, rec models.ContributorRecord) (string, error)

func (f SummarizerFunc) Summarize(ctx context.Context, rec models.ContributorRecord) (string, error) {
	return f(ctx, rec)
}

// ActivitySummarizer writes a deterministic one-line summary from counters
type ActivitySummarizer struct{}

func NewActivitySummarizer() *ActivitySummarizer {
	return &ActivitySummarizer{}
}

func (s *ActivitySummarizer) Summarize(ctx context.Context, rec models.ContributorRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	a := rec.Activity
	merged := 0
	for _, pr := range a.Code.PullRequests {
		if pr.Merged {
			merged++
		}
	}

	parts := []string{}
	if a.Code.TotalPRs > 0 {
		parts = append(parts, fmt.Sprintf("opened %s (%d merged)", plural(a.Code.TotalPRs, "pull request"), merged))
	}
	if a.Code.TotalCommits > 0 {
		parts = append(parts, "authored "+plural(a.Code.TotalCommits, "commit"))
	}
	if a.Issues.TotalOpened > 0 {
		parts = append(parts, "reported "+plural(a.Issues.TotalOpened, "issue"))
	}
	if a.Engagement.TotalReviews > 0 || a.Engagement.TotalComments > 0 {
		parts = append(parts, fmt.Sprintf("drew %s and %s", plural(a.Engagement.TotalReviews, "review"), plural(a.Engagement.TotalComments, "comment")))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("%s had no recorded activity in this period.", rec.Contributor), nil
	}
	return fmt.Sprintf("%s %s.", rec.Contributor, joinClauses(parts)), nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func joinClauses(parts []string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
}

// SummaryService attaches summaries to contributor records with bounded
// concurrency. A failed summary never fails the batch.
type SummaryService struct {
	summarizer  Summarizer
	concurrency int
	log         *logrus.Entry
}

func NewSummaryService(summarizer Summarizer, concurrency int) *SummaryService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &SummaryService{
		summarizer:  summarizer,
		concurrency: concurrency,
		log:         logger.Component("summarizer"),
	}
}

// SummarizeAll sets Summary on every record in place and returns how many
// summaries failed. Results are stored by index, so completion order does
// not matter.
func (s *SummaryService) SummarizeAll(ctx context.Context, records []models.ContributorRecord) int {
	summaries := make([]string, len(records))
	failed := make([]bool, len(records))

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)

	for i := range records {
		i := i
		g.Go(func() error {
			text, err := s.summarizer.Summarize(ctx, records[i])
			if err != nil {
				s.log.WithFields(logrus.Fields{
					"contributor": records[i].Contributor,
					"error":       err.Error(),
				}).Warn("Summary failed")
				summaries[i] = summaryUnavailablePrefix + err.Error()
				failed[i] = true
				return nil
			}
			summaries[i] = text
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for i := range records {
		records[i].Summary = summaries[i]
		if failed[i] {
			n++
		}
	}
	return n
}
