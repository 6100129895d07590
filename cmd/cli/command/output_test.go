package command

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"commenthub/internal/microservices/http-api/dto"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func node(id, user, content string, replies ...*dto.CommentTreeResponse) *dto.CommentTreeResponse {
	return &dto.CommentTreeResponse{
		CommentResponse: dto.CommentResponse{
			ID:        id,
			Content:   content,
			UserID:    "id-" + user,
			User:      &dto.CommentAuthor{ID: "id-" + user, Username: user},
			CreatedAt: now.Add(-2 * time.Minute),
		},
		Replies: replies,
	}
}

func TestPrintTree_IndentsRepliesUnderParent(t *testing.T) {
	forest := []*dto.CommentTreeResponse{
		node("a", "alice", "first", node("b", "bob", "reply", node("c", "carol", "deep"))),
		node("d", "dave", "second"),
	}

	var buf bytes.Buffer
	printTree(&buf, forest, now)
	out := buf.String()

	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "reply"))
	assert.Less(t, strings.Index(out, "deep"), strings.Index(out, "second"))
	assert.Contains(t, out, "\n  bob 2 minutes ago\n")
	assert.Contains(t, out, "\n    carol 2 minutes ago\n")
	assert.True(t, strings.HasPrefix(out, "alice 2 minutes ago\n"))
}

func TestPrintTree_EditedMarker(t *testing.T) {
	n := node("a", "alice", "text")
	n.IsEdited = true

	var buf bytes.Buffer
	printTree(&buf, []*dto.CommentTreeResponse{n}, now)

	assert.Contains(t, buf.String(), "(edited)")
}

func TestRestoreStatus(t *testing.T) {
	open := dto.DeletedCommentResponse{CanRestore: true, RestoreSecondsRemaining: 600}
	closed := dto.DeletedCommentResponse{CanRestore: false}

	assert.Equal(t, "restorable, 10 minutes left", restoreStatus(open, now))
	assert.Equal(t, "restore window closed", restoreStatus(closed, now))
}

func TestAuthorName_FallsBackToID(t *testing.T) {
	c := &dto.CommentResponse{UserID: "u-1"}
	assert.Equal(t, "u-1", authorName(c))
}
