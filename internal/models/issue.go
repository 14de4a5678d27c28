package models

import "encoding/json"

// RawIssue is an issue as supplied by the fetch stage (issues.json)
type RawIssue struct {
	Number    int              `json:"number"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	State     string           `json:"state"`
	CreatedAt string           `json:"created_at"`
	UpdatedAt string           `json:"updated_at"`
	ClosedAt  string           `json:"closed_at,omitempty"`
	Author    *RawUser         `json:"author"`
	Labels    List[RawLabel]   `json:"labels"`
	Comments  List[RawComment] `json:"comments"`
}

func (i *RawIssue) UnmarshalJSON(data []byte) error {
	type plain RawIssue
	var aux struct {
		plain
		CreatedAtCamel string `json:"createdAt"`
		UpdatedAtCamel string `json:"updatedAt"`
		ClosedAtCamel  string `json:"closedAt"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*i = RawIssue(aux.plain)
	i.CreatedAt = orString(i.CreatedAt, aux.CreatedAtCamel)
	i.UpdatedAt = orString(i.UpdatedAt, aux.UpdatedAtCamel)
	i.ClosedAt = orString(i.ClosedAt, aux.ClosedAtCamel)
	return nil
}

// AuthorLogin returns the issue author's login, or "" when unattributed
func (i *RawIssue) AuthorLogin() string {
	return i.Author.login()
}

// Entry normalizes the raw issue into the shape stored on a contributor
func (i *RawIssue) Entry() IssueEntry {
	return IssueEntry{
		Number:    i.Number,
		Title:     i.Title,
		State:     i.State,
		CreatedAt: i.CreatedAt,
		UpdatedAt: i.UpdatedAt,
		ClosedAt:  i.ClosedAt,
		Body:      i.Body,
		Labels:    labelNames(i.Labels),
		Comments:  commentEntries(i.Comments),
	}
}

// IssueEntry is an opened issue as recorded in a contributor's activity
type IssueEntry struct {
	Number    int            `json:"number"`
	Title     string         `json:"title"`
	State     string         `json:"state"`
	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
	ClosedAt  string         `json:"closed_at,omitempty"`
	Body      string         `json:"body"`
	Labels    []string       `json:"labels"`
	Comments  []CommentEntry `json:"comments"`
}

// Engaged reports whether the issue drew any discussion. Reactions only
// exist on comments, so a single comment is enough.
func (i IssueEntry) Engaged() bool {
	return len(i.Comments) > 0
}
