package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Rrens/crewchat/internal/cli"
	"github.com/Rrens/crewchat/internal/client"
	"github.com/Rrens/crewchat/internal/config"
)

const requestTimeout = 30 * time.Second

var idStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

func newClient(cfg *config.Config) *client.Client {
	return client.New(cfg.Client.APIURL, requestTimeout)
}

// newChatsCmd lists chats
func newChatsCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "chats",
		Short: "List chats, newest last",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			chats, err := newClient(cfg).ListChats(ctx)
			cobra.CheckErr(err)

			for i, c := range chats {
				fmt.Printf("%3d  %s  %s\n", i+1, idStyle.Render(c.ID.String()), c.Title)
			}
		},
	}
}

// newNewCmd creates a chat
func newNewCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "new <title>",
		Short: "Create a chat",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			chat, err := newClient(cfg).CreateChat(ctx, args[0])
			cobra.CheckErr(err)
			fmt.Println(chat.ID)
		},
	}
}

// newRmCmd deletes a chat after confirmation
func newRmCmd(cfg *config.Config) *cobra.Command {
	var opts struct {
		Yes bool
	}

	cmd := &cobra.Command{
		Use:   "rm <chat-id>",
		Short: "Delete a chat and its messages",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := uuid.Parse(args[0])
			cobra.CheckErr(err)

			ok, err := cli.Confirmer{AssumeYes: opts.Yes}.Confirm(cmd.Context(), fmt.Sprintf("Delete chat %s and all its messages?", id))
			cobra.CheckErr(err)
			if !ok {
				return
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			cobra.CheckErr(newClient(cfg).DeleteChat(ctx, id))
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

// newSendCmd stores one message without asking for a reply
func newSendCmd(cfg *config.Config) *cobra.Command {
	var opts struct {
		Bot bool
	}

	cmd := &cobra.Command{
		Use:   "send <chat-id> <text>",
		Short: "Store a message in a chat",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := uuid.Parse(args[0])
			cobra.CheckErr(err)

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			msg, err := newClient(cfg).CreateMessage(ctx, id, args[1], opts.Bot)
			cobra.CheckErr(err)
			fmt.Println(msg.ID)
		},
	}

	cmd.Flags().BoolVar(&opts.Bot, "bot", false, "Store the message as a bot message")
	return cmd
}
