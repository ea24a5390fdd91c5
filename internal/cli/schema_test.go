package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoot() *cobra.Command {
	root := &cobra.Command{Use: "showcased", Short: "root"}
	AddHelpJSONFlag(root)

	session := &cobra.Command{Use: "session", Short: "Manage sessions"}
	issue := &cobra.Command{Use: "issue", Short: "Issue a token", RunE: func(*cobra.Command, []string) error { return nil }}
	issue.Flags().String("user-id", "", "User ID")
	issue.Flags().String("role", "user", "Role")
	_ = issue.MarkFlagRequired("user-id")
	session.AddCommand(issue)

	search := &cobra.Command{Use: "search <query>", Short: "Search", RunE: func(*cobra.Command, []string) error { return nil }}
	search.Flags().IntP("limit", "l", 0, "Limit")

	root.AddCommand(session, search, &cobra.Command{Use: "hidden", Hidden: true})
	return root
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema(testRoot())

	assert.Equal(t, "showcased", schema.Name)
	require.Len(t, schema.Subcommands, 2)

	search := schema.Subcommands[0]
	assert.Equal(t, "search", search.Name)
	require.Len(t, search.Flags, 1)
	assert.Equal(t, FlagSchema{Name: "limit", Shorthand: "l", Type: "int", Default: "0", Description: "Limit"}, search.Flags[0])

	issue := schema.Subcommands[1].Subcommands[0]
	flags := map[string]FlagSchema{}
	for _, f := range issue.Flags {
		flags[f.Name] = f
	}
	assert.True(t, flags["user-id"].Required)
	assert.False(t, flags["role"].Required)
	assert.Equal(t, "user", flags["role"].Default)
}

func TestFindTargetCommand(t *testing.T) {
	root := testRoot()

	assert.Equal(t, "showcased", findTargetCommand(root, nil).Name())
	assert.Equal(t, "issue", findTargetCommand(root, []string{"session", "issue", "--user-id", "u-1"}).Name())
	assert.Equal(t, "search", findTargetCommand(root, []string{"search", "portfolio"}).Name())
	assert.Equal(t, "showcased", findTargetCommand(root, []string{"unknown"}).Name())
}
