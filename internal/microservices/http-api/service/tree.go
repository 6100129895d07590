package service

import (
	"cmp"
	"context"
	"slices"

	"commenthub/internal/microservices/http-api/models"
)

// CommentNode is a visible comment with its visible replies. Replies are
// derived on read and never stored.
type CommentNode struct {
	Comment models.Comment
	Replies []*CommentNode
}

func newestFirst(a, b models.Comment) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func oldestFirst(a, b models.Comment) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func toNodes(comments []models.Comment) []*CommentNode {
	nodes := make([]*CommentNode, len(comments))
	for i := range comments {
		nodes[i] = &CommentNode{Comment: comments[i], Replies: []*CommentNode{}}
	}
	return nodes
}

// attachReplies expands the forest below roots one level at a time, issuing
// one store query per level. Only visible nodes are expanded, so the subtree
// under a soft-deleted comment is not reached from here. It returns the number
// of levels that produced replies.
func (s *commentService) attachReplies(ctx context.Context, roots []*CommentNode) (int, error) {
	placed := make(map[string]bool, len(roots))
	for _, n := range roots {
		placed[n.Comment.ID] = true
	}

	levels := 0
	frontier := roots
	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return levels, err
		}

		byID := make(map[string]*CommentNode, len(frontier))
		ids := make([]string, 0, len(frontier))
		for _, n := range frontier {
			byID[n.Comment.ID] = n
			ids = append(ids, n.Comment.ID)
		}

		children, err := s.repo.ListChildrenOf(ctx, ids)
		if err != nil {
			return levels, err
		}
		slices.SortStableFunc(children, oldestFirst)

		next := make([]*CommentNode, 0, len(children))
		for i := range children {
			child := children[i]
			if child.IsDeleted || child.ParentID == nil || placed[child.ID] {
				continue
			}
			parent, ok := byID[*child.ParentID]
			if !ok {
				continue
			}
			node := &CommentNode{Comment: child, Replies: []*CommentNode{}}
			parent.Replies = append(parent.Replies, node)
			placed[child.ID] = true
			next = append(next, node)
		}

		if len(next) > 0 {
			levels++
		}
		frontier = next
	}
	return levels, nil
}

// visibleOnly drops soft-deleted rows in case the store returned any.
func visibleOnly(comments []models.Comment) []models.Comment {
	out := comments[:0:0]
	for _, c := range comments {
		if !c.IsDeleted {
			out = append(out, c)
		}
	}
	return out
}
