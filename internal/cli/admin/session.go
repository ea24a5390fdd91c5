package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/pxtester/showcase/internal/config"
	"github.com/pxtester/showcase/internal/domain"
	"github.com/pxtester/showcase/internal/logging"
	"github.com/pxtester/showcase/internal/session"
	"github.com/spf13/cobra"
)

const sessionStoreNote = "The session store allows one process at a time, so run this while the server is stopped."

func SessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage login sessions",
		Long:  "Issue and revoke session tokens. " + sessionStoreNote,
	}

	cmd.AddCommand(SessionIssueCmd())
	cmd.AddCommand(SessionRevokeCmd())

	return cmd
}

func SessionIssueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a session token for a user",
		Long:  "Issue a session token that authenticates as the given user. " + sessionStoreNote,
		Args:  cobra.NoArgs,
		RunE:  runSessionIssue,
	}

	cmd.Flags().String("user-id", "", "User ID the session acts as")
	cmd.Flags().String("email", "", "User email")
	cmd.Flags().String("name", "", "Display name")
	cmd.Flags().String("role", string(domain.RoleUser), "Role (user, admin or super_admin)")
	cmd.Flags().Duration("ttl", 0, "Session lifetime (defaults to SESSION_TTL)")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	_ = cmd.MarkFlagRequired("user-id")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runSessionIssue(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	userID, _ := cmd.Flags().GetString("user-id")
	email, _ := cmd.Flags().GetString("email")
	name, _ := cmd.Flags().GetString("name")
	roleFlag, _ := cmd.Flags().GetString("role")
	ttl, _ := cmd.Flags().GetDuration("ttl")
	outputFormat, _ := cmd.Flags().GetString("output")

	role, err := domain.ParseRole(roleFlag)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if ttl <= 0 {
		ttl = cfg.SessionTTL
	}

	store, err := session.Open(cfg.SessionDir, logging.Component(logging.New(cfg.Debug), "sessions"))
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer store.Close()

	sess, err := store.Issue(ctx, domain.Actor{UserID: userID, Email: email, Name: name, Role: role}, ttl)
	if err != nil {
		return fmt.Errorf("failed to issue session: %w", err)
	}

	if outputFormat == "json" {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"token":      sess.Token,
			"user_id":    sess.Actor.UserID,
			"role":       sess.Actor.Role,
			"expires_at": sess.ExpiresAt.Format(time.RFC3339),
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Session token: %s\n", sess.Token)
	fmt.Fprintf(cmd.OutOrStdout(), "Expires: %s\n", sess.ExpiresAt.Format(time.RFC3339))
	fmt.Fprintln(cmd.OutOrStdout(), "Send it as the session cookie or an Authorization: Bearer header.")
	return nil
}

func SessionRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <token>",
		Short: "Revoke a session token",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionRevoke,
	}
}

func runSessionRevoke(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := session.Open(cfg.SessionDir, logging.Component(logging.New(cfg.Debug), "sessions"))
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer store.Close()

	if err := store.Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Session revoked.")
	return nil
}
