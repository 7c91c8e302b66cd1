package main

import (
	"fmt"
	"strings"

	"github.com/brizzai/realtor-cli/internal/auth"
	"github.com/brizzai/realtor-cli/internal/chat"
	"github.com/brizzai/realtor-cli/internal/favorites"
	"github.com/brizzai/realtor-cli/internal/state"
	"github.com/brizzai/realtor-cli/internal/tui"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var (
			chatClient *chat.Client
			gate       *auth.Gate
			saved      *favorites.Client
			appState   *state.AppState
		)
		stop, err := build(&chatClient, &gate, &saved, &appState)
		if err != nil {
			return err
		}
		defer stop()

		// prime the view-model so the page shows who is signed in
		gate.IsAuthenticated(cmd.Context())
		return tui.RunChat(chatClient, gate, saved, appState)
	},
}

var chatSendCmd = &cobra.Command{
	Use:   "send <message>",
	Short: "Send one message and stream the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.TrimSpace(strings.Join(args, " "))
		if prompt == "" {
			return fmt.Errorf("message must not be empty")
		}

		var chatClient *chat.Client
		stop, err := build(&chatClient)
		if err != nil {
			return err
		}
		defer stop()

		out := cmd.OutOrStdout()
		_, err = chatClient.SendMessage(cmd.Context(), prompt, func(chunk string) {
			fmt.Fprint(out, chunk)
		})
		fmt.Fprintln(out)
		return err
	},
}

var chatHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the conversation of the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var chatClient *chat.Client
		stop, err := build(&chatClient)
		if err != nil {
			return err
		}
		defer stop()

		history, err := chatClient.GetChatHistory(cmd.Context())
		if err != nil {
			return err
		}
		messages := history.Messages()
		return render(cmd.OutOrStdout(), cfg.Output, messages, func() pterm.TableData {
			rows := pterm.TableData{{"Role", "Message"}}
			for _, m := range messages {
				rows = append(rows, []string{m.Role, truncate(m.Content, 100)})
			}
			return rows
		})
	},
}

var chatClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Start a new conversation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var chatClient *chat.Client
		stop, err := build(&chatClient)
		if err != nil {
			return err
		}
		defer stop()

		if err := chatClient.ClearChat(cmd.Context()); err != nil {
			return err
		}
		pterm.Success.Println("Started a new conversation")
		return nil
	},
}

var chatSuggestionsCmd = &cobra.Command{
	Use:   "suggestions",
	Short: "Show suggested questions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var chatClient *chat.Client
		stop, err := build(&chatClient)
		if err != nil {
			return err
		}
		defer stop()

		suggestions, err := chatClient.GetSuggestions(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), cfg.Output, suggestions, func() pterm.TableData {
			rows := pterm.TableData{{"Suggestion"}}
			for _, s := range suggestions {
				rows = append(rows, []string{s})
			}
			return rows
		})
	},
}

func init() {
	chatCmd.AddCommand(chatSendCmd, chatHistoryCmd, chatClearCmd, chatSuggestionsCmd)
	rootCmd.AddCommand(chatCmd)
}
