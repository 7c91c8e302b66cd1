package main

import (
	"context"
	"errors"
	"strings"

	"github.com/brizzai/realtor-cli/internal/auth"
	"github.com/brizzai/realtor-cli/internal/chat"
	"github.com/brizzai/realtor-cli/internal/favorites"
	"github.com/brizzai/realtor-cli/internal/logger"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	usePassword  bool
	loginNoMerge bool
)

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Sign in with an emailed code, or a password with --password",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the cached tokens",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var gate *auth.Gate
		stop, err := build(&gate)
		if err != nil {
			return err
		}
		defer stop()

		gate.SignOut(cmd.Context())
		pterm.Success.Println("Signed out")
		return nil
	},
}

type statusOutput struct {
	Authenticated bool   `json:"authenticated" yaml:"authenticated"`
	Username      string `json:"username,omitempty" yaml:"username,omitempty"`
	Email         string `json:"email,omitempty" yaml:"email,omitempty"`
	ChatSession   string `json:"chat_session,omitempty" yaml:"chat_session,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is signed in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var (
			gate       *auth.Gate
			chatClient *chat.Client
		)
		stop, err := build(&gate, &chatClient)
		if err != nil {
			return err
		}
		defer stop()

		out := statusOutput{
			Authenticated: gate.IsAuthenticated(cmd.Context()),
			ChatSession:   chatClient.SessionID(),
		}
		if user := gate.State().Snapshot().User; user != nil {
			out.Username, out.Email = user.Username, user.Email
		}

		return render(cmd.OutOrStdout(), cfg.Output, out, func() pterm.TableData {
			return pterm.TableData{
				{"Signed in", "User", "Email", "Chat session"},
				{yesNo(out.Authenticated), out.Username, out.Email, out.ChatSession},
			}
		})
	},
}

func init() {
	loginCmd.Flags().BoolVar(&usePassword, "password", false, "Sign in with a password instead of an emailed code")
	loginCmd.Flags().BoolVar(&loginNoMerge, "no-merge", false, "Keep properties saved during the anonymous chat session in that session")

	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	var (
		gate       *auth.Gate
		chatClient *chat.Client
		saved      *favorites.Client
	)
	stop, err := build(&gate, &chatClient, &saved)
	if err != nil {
		return err
	}
	defer stop()
	ctx := cmd.Context()

	email := ""
	if len(args) == 1 {
		email = args[0]
	}
	if email == "" {
		if email, err = pterm.DefaultInteractiveTextInput.Show("Email"); err != nil {
			return err
		}
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("an email is required")
	}

	var ok bool
	if usePassword {
		ok, err = loginWithPassword(ctx, gate, email)
	} else {
		ok, err = loginWithCode(ctx, gate, email)
	}
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("sign in did not complete")
	}

	username, _ := gate.Username(ctx)
	pterm.Success.Printfln("Signed in as %s", username)

	if !loginNoMerge {
		mergeChatSession(ctx, saved, chatClient.SessionID())
	}
	return nil
}

func loginWithPassword(ctx context.Context, gate *auth.Gate, email string) (bool, error) {
	password, err := pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
	if err != nil {
		return false, err
	}
	if password == "" {
		return false, errors.New("a password is required")
	}
	return gate.SignInWithPassword(ctx, email, password)
}

func loginWithCode(ctx context.Context, gate *auth.Gate, email string) (bool, error) {
	confirm, err := gate.StartPasswordless(ctx, email)
	if err != nil {
		return false, err
	}
	if !confirm {
		return gate.IsAuthenticated(ctx), nil
	}

	pterm.Info.Printfln("A sign-in code was sent to %s", email)
	code, err := pterm.DefaultInteractiveTextInput.Show("Code")
	if err != nil {
		return false, err
	}
	return gate.CompletePasswordless(ctx, strings.TrimSpace(code))
}

// mergeChatSession moves properties saved while chatting anonymously to the
// signed-in user. Failures only warn; the sign in itself succeeded.
func mergeChatSession(ctx context.Context, saved *favorites.Client, sessionID string) {
	if sessionID == "" {
		return
	}
	merged, err := saved.MergeSession(ctx, sessionID)
	if err != nil {
		logger.Warn("Failed to merge chat session", zap.String("session_id", sessionID), zap.Error(err))
		pterm.Warning.Printfln("Could not move properties saved in the chat session: %v", err)
		return
	}
	if merged > 0 {
		pterm.Info.Printfln("Moved %d saved properties from the chat session", merged)
	}
}
