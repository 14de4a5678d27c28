package models

import "encoding/json"

// RawCommit is a commit as supplied by the fetch stage (commits.json)
type RawCommit struct {
	SHA          string           `json:"sha"`
	Message      string           `json:"message"`
	CreatedAt    string           `json:"created_at"`
	Additions    int              `json:"additions"`
	Deletions    int              `json:"deletions"`
	ChangedFiles int              `json:"changed_files"`
	Author       *RawCommitAuthor `json:"author"`
}

// RawCommitAuthor is the git author of a commit. The GitHub account is
// either inlined (REST: author.login) or nested (GraphQL: author.user.login).
type RawCommitAuthor struct {
	Login string   `json:"login,omitempty"`
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	User  *RawUser `json:"user,omitempty"`
}

// UnmarshalJSON also accepts GraphQL commit nodes (oid, committedDate,
// changedFiles)
func (c *RawCommit) UnmarshalJSON(data []byte) error {
	type plain RawCommit
	var aux struct {
		plain
		OID           string `json:"oid"`
		CommittedDate string `json:"committedDate"`
		ChangedFiles  *int   `json:"changedFiles"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = RawCommit(aux.plain)
	c.SHA = orString(c.SHA, aux.OID)
	c.CreatedAt = orString(c.CreatedAt, aux.CommittedDate)
	if c.ChangedFiles == 0 && aux.ChangedFiles != nil {
		c.ChangedFiles = *aux.ChangedFiles
	}
	return nil
}

// AuthorLogin resolves the GitHub login of the commit author, or "" when the
// commit can't be attributed to an account.
func (c *RawCommit) AuthorLogin() string {
	if c.Author == nil {
		return ""
	}
	if c.Author.Login != "" {
		return c.Author.Login
	}
	return c.Author.User.login()
}

// Entry normalizes the raw commit into the shape stored on a contributor
func (c *RawCommit) Entry() CommitEntry {
	return CommitEntry{
		SHA:          c.SHA,
		Message:      c.Message,
		CreatedAt:    c.CreatedAt,
		Additions:    c.Additions,
		Deletions:    c.Deletions,
		ChangedFiles: c.ChangedFiles,
	}
}

// CommitEntry is a commit as recorded in a contributor's activity
type CommitEntry struct {
	SHA          string `json:"sha"`
	Message      string `json:"message"`
	CreatedAt    string `json:"created_at"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
	ChangedFiles int    `json:"changed_files"`
}
