package services

import (
	"sort"

	"github.com/alimgiray/contribrank/internal/models"
)

// RankingService scores every contributor and orders them by score
type RankingService struct {
	scorer *Scorer
}

func NewRankingService(scorer *Scorer) *RankingService {
	return &RankingService{scorer: scorer}
}

// Rank sets each record's score and sorts descending by score. Ties keep
// their input order. Scores depend only on activity, so ranking an already
// ranked slice yields the same result.
func (s *RankingService) Rank(records []models.ContributorRecord) []models.ContributorRecord {
	for i := range records {
		records[i].Score = s.scorer.Score(&records[i])
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})
	return records
}
