package models

import "encoding/json"

// RawUser is an account reference nested in a raw GitHub record
type RawUser struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// UnmarshalJSON accepts the GraphQL avatarUrl spelling as well
func (u *RawUser) UnmarshalJSON(data []byte) error {
	type plain RawUser
	var aux struct {
		plain
		AvatarURLCamel string `json:"avatarUrl"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*u = RawUser(aux.plain)
	u.AvatarURL = orString(u.AvatarURL, aux.AvatarURLCamel)
	return nil
}

// login returns the user's login, or "" for a nil user
func (u *RawUser) login() string {
	if u == nil {
		return ""
	}
	return u.Login
}

// RawLabel is a label attached to an issue or pull request
type RawLabel struct {
	Name string `json:"name"`
}

// RawComment is a conversation comment on an issue or pull request
type RawComment struct {
	Author    *RawUser `json:"author"`
	Body      string   `json:"body"`
	Reactions Count    `json:"reactions"`
	CreatedAt string   `json:"created_at,omitempty"`
}

func (c *RawComment) UnmarshalJSON(data []byte) error {
	type plain RawComment
	var aux struct {
		plain
		CreatedAtCamel string `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*c = RawComment(aux.plain)
	c.CreatedAt = orString(c.CreatedAt, aux.CreatedAtCamel)
	return nil
}

// labelNames flattens raw labels, dropping unnamed ones
func labelNames(labels []RawLabel) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		if l.Name != "" {
			names = append(names, l.Name)
		}
	}
	return names
}

// commentEntries normalizes raw comments
func commentEntries(comments []RawComment) []CommentEntry {
	entries := make([]CommentEntry, 0, len(comments))
	for _, c := range comments {
		entries = append(entries, CommentEntry{
			Author:    c.Author.login(),
			Body:      c.Body,
			Reactions: int(c.Reactions),
			CreatedAt: c.CreatedAt,
		})
	}
	return entries
}
