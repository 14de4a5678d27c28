package services

import (
	"context"
	"fmt"

	"github.com/alimgiray/contribrank/internal/models"
	"github.com/xuri/excelize/v2"
)

const contributorsSheet = "Contributors"

var workbookHeaders = []string{"Rank", "Contributor", "Score", "Commits", "Pull Requests", "Issues", "Comments", "Reviews", "Summary"}

// Builder renders the final contributor list into a report artifact
type Builder interface {
	Artifact() string
	Build(ctx context.Context, records []models.ContributorRecord) ([]byte, error)
}

// WorkbookBuilder renders contributors as an Excel workbook
type WorkbookBuilder struct{}

func NewWorkbookBuilder() *WorkbookBuilder {
	return &WorkbookBuilder{}
}

func (b *WorkbookBuilder) Artifact() string {
	return models.ArtifactWorkbook
}

// Build writes one row per contributor in the given order
func (b *WorkbookBuilder) Build(ctx context.Context, records []models.ContributorRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", contributorsSheet); err != nil {
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for i, h := range workbookHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(contributorsSheet, cell, h); err != nil {
			return nil, err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(workbookHeaders), 1)
	if err := f.SetCellStyle(contributorsSheet, "A1", last, header); err != nil {
		return nil, err
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := []interface{}{
			i + 1,
			rec.Contributor,
			rec.Score,
			rec.Activity.Code.TotalCommits,
			rec.Activity.Code.TotalPRs,
			rec.Activity.Issues.TotalOpened,
			rec.Activity.Engagement.TotalComments,
			rec.Activity.Engagement.TotalReviews,
			rec.Summary,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(contributorsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row for %s: %w", rec.Contributor, err)
		}
	}

	if err := f.SetColWidth(contributorsSheet, "B", "B", 24); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(contributorsSheet, "I", "I", 80); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
