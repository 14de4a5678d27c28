package models

import (
	"encoding/json"
	"unicode/utf8"
)

// RawPullRequest is a pull request as supplied by the fetch stage (prs.json)
type RawPullRequest struct {
	Number    int              `json:"number"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	State     string           `json:"state"`
	Merged    bool             `json:"merged"`
	Draft     bool             `json:"draft"`
	CreatedAt string           `json:"created_at"`
	UpdatedAt string           `json:"updated_at"`
	Author    *RawUser         `json:"author"`
	MergedBy  *RawUser         `json:"merged_by,omitempty"`
	Commits   Count            `json:"commits"`
	Files     List[RawFile]    `json:"files"`
	Reviews   List[RawReview]  `json:"reviews"`
	Comments  List[RawComment] `json:"comments"`
	Labels    List[RawLabel]   `json:"labels"`
}

// RawFile is a changed file of a pull request
type RawFile struct {
	Path      string `json:"path"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// RawReview is a review submitted on a pull request
type RawReview struct {
	Author    *RawUser `json:"author"`
	State     string   `json:"state"`
	Body      string   `json:"body"`
	CreatedAt string   `json:"created_at,omitempty"`
}

// UnmarshalJSON reads REST field names and falls back to their GraphQL
// spellings (createdAt, mergedBy, isDraft, ...).
func (pr *RawPullRequest) UnmarshalJSON(data []byte) error {
	type plain RawPullRequest
	var aux struct {
		plain
		IsDraft        bool     `json:"isDraft"`
		CreatedAtCamel string   `json:"createdAt"`
		UpdatedAtCamel string   `json:"updatedAt"`
		MergedByCamel  *RawUser `json:"mergedBy"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*pr = RawPullRequest(aux.plain)
	pr.Draft = pr.Draft || aux.IsDraft
	pr.CreatedAt = orString(pr.CreatedAt, aux.CreatedAtCamel)
	pr.UpdatedAt = orString(pr.UpdatedAt, aux.UpdatedAtCamel)
	if pr.MergedBy == nil {
		pr.MergedBy = aux.MergedByCamel
	}
	return nil
}

func (r *RawReview) UnmarshalJSON(data []byte) error {
	type plain RawReview
	var aux struct {
		plain
		CreatedAtCamel string `json:"createdAt"`
		SubmittedAt    string `json:"submittedAt"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = RawReview(aux.plain)
	r.CreatedAt = orString(r.CreatedAt, orString(aux.CreatedAtCamel, aux.SubmittedAt))
	return nil
}

// AuthorLogin returns the PR author's login, or "" when unattributed
func (pr *RawPullRequest) AuthorLogin() string {
	return pr.Author.login()
}

// Entry normalizes the raw pull request into the shape stored on a contributor
func (pr *RawPullRequest) Entry() PullRequestEntry {
	files := make([]FileEntry, 0, len(pr.Files))
	for _, f := range pr.Files {
		files = append(files, FileEntry{Path: f.Path, Additions: f.Additions, Deletions: f.Deletions})
	}

	reviews := make([]ReviewEntry, 0, len(pr.Reviews))
	for _, r := range pr.Reviews {
		reviews = append(reviews, ReviewEntry{
			Author:    r.Author.login(),
			State:     r.State,
			Body:      r.Body,
			CreatedAt: r.CreatedAt,
		})
	}

	return PullRequestEntry{
		Number:      pr.Number,
		Title:       pr.Title,
		State:       pr.State,
		Merged:      pr.Merged,
		Draft:       pr.Draft,
		Author:      pr.AuthorLogin(),
		MergedBy:    pr.MergedBy.login(),
		CommitCount: int(pr.Commits),
		CreatedAt:   pr.CreatedAt,
		UpdatedAt:   pr.UpdatedAt,
		Body:        pr.Body,
		Files:       files,
		Reviews:     reviews,
		Comments:    commentEntries(pr.Comments),
		Labels:      labelNames(pr.Labels),
	}
}

// PullRequestEntry is a pull request as recorded in a contributor's activity
type PullRequestEntry struct {
	Number      int            `json:"number"`
	Title       string         `json:"title"`
	State       string         `json:"state"`
	Merged      bool           `json:"merged"`
	Draft       bool           `json:"draft"`
	Author      string         `json:"author"`
	MergedBy    string         `json:"merged_by,omitempty"`
	CommitCount int            `json:"commit_count"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
	Body        string         `json:"body"`
	Files       []FileEntry    `json:"files"`
	Reviews     []ReviewEntry  `json:"reviews"`
	Comments    []CommentEntry `json:"comments"`
	Labels      []string       `json:"labels"`
}

// FileEntry is a changed file with its line counts
type FileEntry struct {
	Path      string `json:"path"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// ReviewEntry is a review recorded on a pull request entry
type ReviewEntry struct {
	Author    string `json:"author"`
	State     string `json:"state"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CommentEntry is a conversation comment recorded on a PR or issue entry
type CommentEntry struct {
	Author    string `json:"author"`
	Body      string `json:"body"`
	Reactions int    `json:"reactions"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Additions sums added lines across the changed files
func (pr PullRequestEntry) Additions() int {
	total := 0
	for _, f := range pr.Files {
		total += f.Additions
	}
	return total
}

// Deletions sums deleted lines across the changed files
func (pr PullRequestEntry) Deletions() int {
	total := 0
	for _, f := range pr.Files {
		total += f.Deletions
	}
	return total
}

// ChangedLines is additions plus deletions
func (pr PullRequestEntry) ChangedLines() int {
	return pr.Additions() + pr.Deletions()
}

// BodyLength is the body length in characters
func (pr PullRequestEntry) BodyLength() int {
	return utf8.RuneCountInString(pr.Body)
}
