package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Rrens/crewchat/internal/cli"
	"github.com/Rrens/crewchat/internal/client"
	"github.com/Rrens/crewchat/internal/config"
	"github.com/Rrens/crewchat/internal/llm"
	"github.com/Rrens/crewchat/internal/llm/crew"
	"github.com/Rrens/crewchat/internal/llm/gemini"
	"github.com/Rrens/crewchat/internal/llm/ollama"
	"github.com/Rrens/crewchat/internal/session"
	"github.com/Rrens/crewchat/internal/ui"
)

// newOpenCmd starts the interactive chat
func newOpenCmd(cfg *config.Config) *cobra.Command {
	var opts struct {
		Width    int
		Provider string
	}

	cmd := &cobra.Command{
		Use:   "open [chat-id]",
		Short: "Chat interactively",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()

			api := newClient(cfg)

			inference := newInference(cfg, opts.Provider)
			if _, err := inference.GetProvider(""); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v (configured: %v), bot replies will use the fallback text\n", err, inference.ListProviders())
			}

			toaster := ui.NewToaster(cfg.Client.ToastTTL)
			defer toaster.Close()

			confirmer := &cli.LineConfirmer{}
			sess := session.New(session.Options{
				Backend:   api,
				Feed:      newFeed(cfg, api),
				Inference: inference,
				Confirmer: confirmer,
				Notifier:  toaster,
			})
			defer sess.Close()

			_ = sess.LoadChats(ctx)

			if len(args) == 1 {
				id, err := cli.ResolveChat(sess.Snapshot().Chats, args[0])
				cobra.CheckErr(err)
				sess.SelectChat(id)
			}

			shell := cli.NewShell(cli.ShellOptions{
				Session:     sess,
				Toaster:     toaster,
				Confirmer:   confirmer,
				Width:       opts.Width,
				HistoryFile: historyFile(),
			})
			cobra.CheckErr(shell.Run(ctx))
		},
	}

	cmd.Flags().IntVarP(&opts.Width, "width", "w", 80, "Render width")
	cmd.Flags().StringVarP(&opts.Provider, "provider", "p", "", "Inference provider (crew, ollama, gemini)")
	return cmd
}

func newInference(cfg *config.Config, provider string) *llm.Router {
	if provider == "" {
		provider = cfg.Inference.DefaultProvider
	}

	router := llm.NewRouter(provider)
	router.RegisterProvider(crew.NewProvider(cfg.Inference.Crew.BaseURL, cfg.Inference.Timeout))
	router.RegisterProvider(ollama.NewProvider(cfg.Inference.Ollama.Host, cfg.Inference.Ollama.DefaultModel, cfg.Inference.Timeout))
	router.RegisterProvider(gemini.NewProvider(cfg.Inference.Gemini))
	return router
}

func newFeed(cfg *config.Config, api *client.Client) client.Feed {
	if cfg.Client.FeedMode == config.FeedPoll {
		return client.NewPollFeed(api, cfg.Client.PollInterval)
	}
	return client.NewStreamFeed(api.BaseURL(), 0)
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".crewchat_history")
}
