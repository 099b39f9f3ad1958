package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openhome-school/backend/internal/apperrors"
	"github.com/openhome-school/backend/internal/auth"
)

// TokenCommand mints a bearer token that attributes logged answers to a user.
func TokenCommand(env *Env) *cobra.Command {
	var (
		userID int64
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a user id",
		Long: `Mint an HS256 bearer token signed with server.jwt_secret. Requests to
/api/v1 carrying it have their quiz answers logged against the user id.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID <= 0 {
				return apperrors.ErrorWithContextf(apperrors.ErrInvalidInput, "--user-id must be positive")
			}
			token, err := auth.IssueToken([]byte(env.Config.Server.JWTSecret), userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 0, "User id to embed in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTTL, "Token lifetime")
	return cmd
}
