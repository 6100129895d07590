package command

import (
	"encoding/json"
	"fmt"
	"time"

	"commenthub/cmd/cli/command/client"
	"commenthub/internal/microservices/http-api/dto"
	"commenthub/internal/microservices/websocket"

	"github.com/spf13/cobra"
)

var notificationCmd = &cobra.Command{
	Use:     "notification",
	Aliases: []string{"notif"},
	Short:   "Notification commands",
	Long:    `List, mark and delete your notifications, or watch new ones arrive live.`,
}

var listNotificationsCmd = &cobra.Command{
	Use:   "list",
	Short: "List your notifications, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		unread, _ := cmd.Flags().GetBool("unread")
		items, err := httpClient.ListNotifications(cmd.Context(), unread)
		if err != nil {
			return fmt.Errorf("failed to list notifications: %w", err)
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No notifications.")
			return nil
		}
		printNotifications(cmd.OutOrStdout(), items, time.Now())
		return nil
	},
}

var countNotificationsCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the number of unread notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		count, err := httpClient.UnreadCount(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d unread\n", count)
		return nil
	},
}

func markCommand(use, short string, read bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [notification-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			httpClient, _, err := GetAuthenticatedClient()
			if err != nil {
				return err
			}
			if _, err := httpClient.MarkNotification(cmd.Context(), args[0], read); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successColor("✓ Notification marked "+use))
			return nil
		},
	}
}

var readAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification as read",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		if err := httpClient.MarkAllNotificationsRead(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successColor("✓ All notifications marked read"))
		return nil
	},
}

var deleteNotificationCmd = &cobra.Command{
	Use:   "delete [notification-id]",
	Short: "Delete a notification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		if err := httpClient.DeleteNotification(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successColor("✓ Notification deleted"))
		return nil
	},
}

var watchNotificationsCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print notifications as they arrive (Ctrl-C to stop)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, creds, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		return client.StreamNotifications(cmd.Context(), apiURL, creds.AccessToken, func(msg *websocket.Message) {
			switch msg.Type {
			case websocket.TypeSystem:
				fmt.Fprintln(out, dimColor("["+msg.Content+"]"))
			case websocket.TypeNotification:
				var n dto.NotificationResponse
				if err := json.Unmarshal(msg.Notification, &n); err != nil {
					return
				}
				printNotifications(out, []dto.NotificationResponse{n}, time.Now())
			}
		})
	},
}

func init() {
	notificationCmd.AddCommand(listNotificationsCmd)
	notificationCmd.AddCommand(countNotificationsCmd)
	notificationCmd.AddCommand(markCommand("read", "Mark a notification as read", true))
	notificationCmd.AddCommand(markCommand("unread", "Mark a notification as unread", false))
	notificationCmd.AddCommand(readAllCmd)
	notificationCmd.AddCommand(deleteNotificationCmd)
	notificationCmd.AddCommand(watchNotificationsCmd)

	listNotificationsCmd.Flags().Bool("unread", false, "only unread notifications")
}
