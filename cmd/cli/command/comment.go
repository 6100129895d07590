package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Comment commands",
	Long:  `Read the comment tree, post comments and replies, edit, delete and restore your own comments.`,
}

var listCommentsCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the full comment tree, newest threads first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		forest, err := httpClient.ListComments(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list comments: %w", err)
		}
		if len(forest) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No comments yet.")
			return nil
		}
		printTree(cmd.OutOrStdout(), forest, time.Now())
		return nil
	},
}

var getCommentCmd = &cobra.Command{
	Use:   "get [comment-id]",
	Short: "Show a comment with its parent and replies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		detail, err := httpClient.GetComment(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get comment: %w", err)
		}

		out := cmd.OutOrStdout()
		now := time.Now()
		if detail.Parent != nil {
			fmt.Fprintln(out, dimColor("in reply to:"))
			writeComment(out, detail.Parent, 1, now)
		}
		writeComment(out, &detail.CommentResponse, 0, now)
		printTree(out, detail.Replies, now)
		return nil
	},
}

var repliesCmd = &cobra.Command{
	Use:   "replies [comment-id]",
	Short: "Show the replies under a comment, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		replies, err := httpClient.ListReplies(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to list replies: %w", err)
		}
		if len(replies) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No replies.")
			return nil
		}
		printTree(cmd.OutOrStdout(), replies, time.Now())
		return nil
	},
}

var createCommentCmd = &cobra.Command{
	Use:   "create [content]",
	Short: "Post a comment, or a reply with --parent",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}

		var parentID *string
		if parent, _ := cmd.Flags().GetString("parent"); parent != "" {
			parentID = &parent
		}

		result, err := httpClient.CreateComment(cmd.Context(), strings.Join(args, " "), parentID)
		if err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, successColor("✓ Comment posted"))
		fmt.Fprintf(out, "Comment ID: %s\n", result.ID)
		if result.ParentID != nil {
			fmt.Fprintf(out, "Reply to: %s\n", *result.ParentID)
		}
		return nil
	},
}

var editCommentCmd = &cobra.Command{
	Use:   "edit [comment-id] [content]",
	Short: "Edit your comment (only shortly after posting)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		result, err := httpClient.UpdateComment(cmd.Context(), args[0], strings.Join(args[1:], " "))
		if err != nil {
			return fmt.Errorf("failed to edit comment: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), successColor("✓ Comment updated"))
		if result.EditedAt != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Edited at: %s\n", result.EditedAt.Local().Format(timeLayout))
		}
		return nil
	},
}

var deleteCommentCmd = &cobra.Command{
	Use:   "delete [comment-id]",
	Short: "Delete your comment; it can be restored for a short while",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		remaining, err := httpClient.DeleteComment(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}

		now := time.Now()
		fmt.Fprintf(cmd.OutOrStdout(), "%s Comment %s deleted. Restore it within %s with `commenthub comment restore %s`.\n",
			successColor("✓"), args[0], strings.TrimSpace(humanize.RelTime(now, now.Add(remaining), "", "")), args[0])
		return nil
	},
}

var restoreCommentCmd = &cobra.Command{
	Use:   "restore [comment-id]",
	Short: "Restore a comment you deleted recently",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		if _, err := httpClient.RestoreComment(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to restore comment: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Comment %s restored\n", successColor("✓"), args[0])
		return nil
	},
}

var deletedCommentsCmd = &cobra.Command{
	Use:   "deleted",
	Short: "List your deleted comments and whether they can still be restored",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		items, err := httpClient.ListDeleted(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list deleted comments: %w", err)
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "You have no deleted comments.")
			return nil
		}
		printDeleted(cmd.OutOrStdout(), items, time.Now())
		return nil
	},
}

func init() {
	commentCmd.AddCommand(listCommentsCmd)
	commentCmd.AddCommand(getCommentCmd)
	commentCmd.AddCommand(repliesCmd)
	commentCmd.AddCommand(createCommentCmd)
	commentCmd.AddCommand(editCommentCmd)
	commentCmd.AddCommand(deleteCommentCmd)
	commentCmd.AddCommand(restoreCommentCmd)
	commentCmd.AddCommand(deletedCommentsCmd)

	createCommentCmd.Flags().String("parent", "", "ID of the comment to reply to")
}
