package command

import (
	"fmt"
	"io"
	"strings"
	"time"

	"commenthub/internal/microservices/http-api/dto"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

var (
	successColor  = color.New(color.FgGreen).SprintFunc()
	errorColor    = color.New(color.FgRed, color.Bold).SprintFunc()
	usernameColor = color.New(color.FgCyan, color.Bold).SprintFunc()
	dimColor      = color.New(color.Faint).SprintFunc()
	warnColor     = color.New(color.FgYellow).SprintFunc()
)

const timeLayout = "2006-01-02 15:04:05"

func authorName(c *dto.CommentResponse) string {
	if c.User != nil && c.User.Username != "" {
		return c.User.Username
	}
	return c.UserID
}

// writeComment prints one comment at the given nesting depth.
func writeComment(w io.Writer, c *dto.CommentResponse, depth int, now time.Time) {
	indent := strings.Repeat("  ", depth)
	header := fmt.Sprintf("%s%s %s", indent, usernameColor(authorName(c)), dimColor(humanize.RelTime(c.CreatedAt, now, "ago", "from now")))
	if c.IsEdited {
		header += " " + dimColor("(edited)")
	}
	fmt.Fprintln(w, header)
	for _, line := range strings.Split(c.Content, "\n") {
		fmt.Fprintf(w, "%s  %s\n", indent, line)
	}
	fmt.Fprintf(w, "%s  %s\n", indent, dimColor("id: "+c.ID))
}

// printTree prints a forest depth-first, replies indented under their parent.
func printTree(w io.Writer, roots []*dto.CommentTreeResponse, now time.Time) {
	type frame struct {
		node  *dto.CommentTreeResponse
		depth int
	}
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{roots[i], 0})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		writeComment(w, &f.node.CommentResponse, f.depth, now)
		for i := len(f.node.Replies) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Replies[i], f.depth + 1})
		}
	}
}

// restoreStatus describes how long a deleted comment can still be restored.
func restoreStatus(item dto.DeletedCommentResponse, now time.Time) string {
	if !item.CanRestore || item.RestoreSecondsRemaining <= 0 {
		return warnColor("restore window closed")
	}
	deadline := now.Add(time.Duration(item.RestoreSecondsRemaining) * time.Second)
	return successColor("restorable, " + humanize.RelTime(now, deadline, "left", "ago"))
}

func printDeleted(w io.Writer, items []dto.DeletedCommentResponse, now time.Time) {
	for _, item := range items {
		deleted := ""
		if item.DeletedAt != nil {
			deleted = "deleted " + humanize.RelTime(*item.DeletedAt, now, "ago", "from now")
		}
		fmt.Fprintf(w, "%s %s  %s\n", dimColor(item.ID), dimColor(deleted), restoreStatus(item, now))
		fmt.Fprintf(w, "  %s\n", item.Content)
	}
}

func printNotifications(w io.Writer, items []dto.NotificationResponse, now time.Time) {
	for _, n := range items {
		marker := "●"
		if n.IsRead {
			marker = dimColor("○")
		} else {
			marker = warnColor(marker)
		}
		fmt.Fprintf(w, "%s %s %s %s\n", marker, n.Message, dimColor(humanize.RelTime(n.CreatedAt, now, "ago", "from now")), dimColor("id: "+n.ID))
		if n.RelatedCommentID != nil {
			fmt.Fprintf(w, "  %s\n", dimColor("comment: "+*n.RelatedCommentID))
		}
	}
}
