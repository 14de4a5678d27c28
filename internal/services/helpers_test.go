package services

import (
	"strings"

	"github.com/alimgiray/contribrank/internal/models"
)

func user(login string) *models.RawUser {
	return &models.RawUser{Login: login, AvatarURL: "https://avatars.example/" + login}
}

func rawPR(number int, author string) models.RawPullRequest {
	return models.RawPullRequest{
		Number: number,
		Title:  "change",
		State:  "closed",
		Merged: true,
		Author: user(author),
	}
}

func rawIssue(number int, author string, comments int) models.RawIssue {
	issue := models.RawIssue{Number: number, Title: "issue", State: "open", Author: user(author)}
	for i := 0; i < comments; i++ {
		issue.Comments = append(issue.Comments, models.RawComment{Author: user("someone"), Body: "thanks"})
	}
	return issue
}

func rawCommit(sha, author string) models.RawCommit {
	return models.RawCommit{SHA: sha, Message: "fix", Author: &models.RawCommitAuthor{Login: author}}
}

func body(n int) string {
	return strings.Repeat("x", n)
}

func mergedPR(body string, files ...models.FileEntry) models.PullRequestEntry {
	return models.PullRequestEntry{
		Number:   1,
		State:    "closed",
		Merged:   true,
		Author:   "alice",
		Body:     body,
		Files:    files,
		Reviews:  []models.ReviewEntry{},
		Comments: []models.CommentEntry{},
	}
}
