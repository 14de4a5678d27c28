package models

import (
	"fmt"
	"math"
)

// ScoringConfig holds every weight, multiplier and threshold used by the
// scorer. It is passed by value and never mutated after construction.
type ScoringConfig struct {
	PullRequest   PullRequestWeights   `yaml:"pull_request"`
	Issue         IssueWeights         `yaml:"issue"`
	Commit        CommitWeights        `yaml:"commit"`
	Collaboration CollaborationWeights `yaml:"collaboration"`
	Reviewer      ReviewerWeights      `yaml:"reviewer"`
	Volume        VolumeWeights        `yaml:"volume"`
}

// PullRequestWeights score merged, non-draft pull requests
type PullRequestWeights struct {
	Base float64 `yaml:"base"`

	// Size multiplier: changed lines < SmallThreshold is small,
	// > LargeThreshold is large, anything between is medium.
	SmallThreshold   int     `yaml:"small_threshold"`
	LargeThreshold   int     `yaml:"large_threshold"`
	SmallMultiplier  float64 `yaml:"small_multiplier"`
	MediumMultiplier float64 `yaml:"medium_multiplier"`
	LargeMultiplier  float64 `yaml:"large_multiplier"`

	// Quality bonuses compound multiplicatively
	SquashMinLines         int     `yaml:"squash_min_lines"`
	SquashBonus            float64 `yaml:"squash_bonus"`
	DeletionMargin         int     `yaml:"deletion_margin"`
	DeletionBonus          float64 `yaml:"deletion_bonus"`
	DocumentationMinLength int     `yaml:"documentation_min_length"`
	DocumentationBonus     float64 `yaml:"documentation_bonus"`

	ReviewPoints      float64 `yaml:"review_points"`
	ApprovedBonus     float64 `yaml:"approved_bonus"`
	BodyLengthDivisor float64 `yaml:"body_length_divisor"`
	BodyBonusCap      float64 `yaml:"body_bonus_cap"`
	CommentPoints     float64 `yaml:"comment_points"`
	MinCommentLength  int     `yaml:"min_comment_length"`
}

// IssueWeights score issues that drew engagement
type IssueWeights struct {
	Base                  float64 `yaml:"base"`
	BugMultiplier         float64 `yaml:"bug_multiplier"`
	EnhancementMultiplier float64 `yaml:"enhancement_multiplier"`
	FeatureMultiplier     float64 `yaml:"feature_multiplier"`
	DocsMultiplier        float64 `yaml:"docs_multiplier"`
	HighComplexity        float64 `yaml:"high_complexity"`
	MediumComplexity      float64 `yaml:"medium_complexity"`
	LowComplexity         float64 `yaml:"low_complexity"`
	CommentPoints         float64 `yaml:"comment_points"`
}

type CommitWeights struct {
	Points float64 `yaml:"points"`
}

type CollaborationWeights struct {
	MergedOthersPoints   float64 `yaml:"merged_others_points"`
	ReviewCommentPoints  float64 `yaml:"review_comment_points"`
	MinReviewLength      int     `yaml:"min_review_length"`
	CoordinationPoints   float64 `yaml:"coordination_points"`
	CoordinationMentions int     `yaml:"coordination_mentions"`
}

type ReviewerWeights struct {
	ReviewPoints float64 `yaml:"review_points"`
}

// VolumeWeights form the activity floor, independent of quality signals
type VolumeWeights struct {
	Commit  float64 `yaml:"commit"`
	PR      float64 `yaml:"pr"`
	Issue   float64 `yaml:"issue"`
	Comment float64 `yaml:"comment"`
}

// DefaultScoringConfig returns the stock weights
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		PullRequest: PullRequestWeights{
			Base:                   7,
			SmallThreshold:         50,
			LargeThreshold:         300,
			SmallMultiplier:        0.8,
			MediumMultiplier:       1.2,
			LargeMultiplier:        0.9,
			SquashMinLines:         200,
			SquashBonus:            1.1,
			DeletionMargin:         50,
			DeletionBonus:          1.2,
			DocumentationMinLength: 500,
			DocumentationBonus:     1.1,
			ReviewPoints:           3,
			ApprovedBonus:          2,
			BodyLengthDivisor:      500,
			BodyBonusCap:           3,
			CommentPoints:          0.5,
			MinCommentLength:       10,
		},
		Issue: IssueWeights{
			Base:                  5,
			BugMultiplier:         1.3,
			EnhancementMultiplier: 1.2,
			FeatureMultiplier:     1.0,
			DocsMultiplier:        0.8,
			HighComplexity:        1.5,
			MediumComplexity:      1.2,
			LowComplexity:         0.8,
			CommentPoints:         0.5,
		},
		Commit: CommitWeights{
			Points: 1,
		},
		Collaboration: CollaborationWeights{
			MergedOthersPoints:   3,
			ReviewCommentPoints:  1,
			MinReviewLength:      30,
			CoordinationPoints:   1.5,
			CoordinationMentions: 2,
		},
		Reviewer: ReviewerWeights{
			ReviewPoints: 2,
		},
		Volume: VolumeWeights{
			Commit:  1,
			PR:      2,
			Issue:   1,
			Comment: 0.5,
		},
	}
}

// Validate rejects negative or non-finite weights and inconsistent thresholds
func (c ScoringConfig) Validate() error {
	weights := map[string]float64{
		"pull_request.base":                c.PullRequest.Base,
		"pull_request.small_multiplier":    c.PullRequest.SmallMultiplier,
		"pull_request.medium_multiplier":   c.PullRequest.MediumMultiplier,
		"pull_request.large_multiplier":    c.PullRequest.LargeMultiplier,
		"pull_request.squash_bonus":        c.PullRequest.SquashBonus,
		"pull_request.deletion_bonus":      c.PullRequest.DeletionBonus,
		"pull_request.documentation_bonus": c.PullRequest.DocumentationBonus,
		"pull_request.review_points":       c.PullRequest.ReviewPoints,
		"pull_request.approved_bonus":      c.PullRequest.ApprovedBonus,
		"pull_request.body_bonus_cap":      c.PullRequest.BodyBonusCap,
		"pull_request.comment_points":      c.PullRequest.CommentPoints,
		"issue.base":                       c.Issue.Base,
		"issue.bug_multiplier":             c.Issue.BugMultiplier,
		"issue.enhancement_multiplier":     c.Issue.EnhancementMultiplier,
		"issue.feature_multiplier":         c.Issue.FeatureMultiplier,
		"issue.docs_multiplier":            c.Issue.DocsMultiplier,
		"issue.high_complexity":            c.Issue.HighComplexity,
		"issue.medium_complexity":          c.Issue.MediumComplexity,
		"issue.low_complexity":             c.Issue.LowComplexity,
		"issue.comment_points":             c.Issue.CommentPoints,
		"commit.points":                    c.Commit.Points,
		"collaboration.merged_others":      c.Collaboration.MergedOthersPoints,
		"collaboration.review_comment":     c.Collaboration.ReviewCommentPoints,
		"collaboration.coordination":       c.Collaboration.CoordinationPoints,
		"reviewer.review_points":           c.Reviewer.ReviewPoints,
		"volume.commit":                    c.Volume.Commit,
		"volume.pr":                        c.Volume.PR,
		"volume.issue":                     c.Volume.Issue,
		"volume.comment":                   c.Volume.Comment,
		"pull_request.body_length_divisor": c.PullRequest.BodyLengthDivisor,
	}
	for name, v := range weights {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be a finite number, got %v", ErrInvalidConfig, name, v)
		}
		if v < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %v", ErrInvalidConfig, name, v)
		}
	}

	if c.PullRequest.BodyLengthDivisor <= 0 {
		return fmt.Errorf("%w: pull_request.body_length_divisor must be positive", ErrInvalidConfig)
	}
	if c.PullRequest.SmallThreshold < 0 || c.PullRequest.LargeThreshold < c.PullRequest.SmallThreshold {
		return fmt.Errorf("%w: pull_request size thresholds must satisfy 0 <= small <= large", ErrInvalidConfig)
	}
	if c.Collaboration.CoordinationMentions < 1 {
		return fmt.Errorf("%w: collaboration.coordination_mentions must be at least 1", ErrInvalidConfig)
	}
	return nil
}
