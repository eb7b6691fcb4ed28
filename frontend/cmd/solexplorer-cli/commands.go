package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solexplorer/solexplorer/shared/api"
	"github.com/solexplorer/solexplorer/shared/domain"
)

var (
	commentProfile string
	commentReplyTo string
)

var profileCmd = &cobra.Command{
	Use:   "profile [username]",
	Short: "Show a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := client.GetProfile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), raw)
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score [wallet-or-profile]",
	Short: "Show the Solid Score of a wallet or profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := client.GetSolidScore(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), raw)
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment [content-id] [text...]",
	Short: "Post a comment on a content node",
	Long: `Posts a comment as --profile and prints the refreshed first page of
comments. Requires --token.

Example:
  solexplorer-cli comment 5Yz...post gm --profile alice --token $JWT`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if token == "" {
			return fmt.Errorf("--token is required to comment")
		}
		if commentProfile == "" {
			return fmt.Errorf("--profile is required to comment")
		}
		contentId := args[0]
		body := api.CreateCommentRequest{
			ProfileId: commentProfile,
			ContentId: contentId,
			CommentId: commentReplyTo,
			Text:      strings.Join(args[1:], " "),
		}
		if _, err := client.CreateComment(contentId).Trigger(cmd.Context(), body); err != nil {
			return err
		}

		res, err := client.GetComments(cmd.Context(), contentId, domain.Page{})
		if err != nil {
			return err
		}
		for _, item := range res.Comments {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", item.Comment.Id, item.Comment.Text)
		}
		return nil
	},
}

func init() {
	commentCmd.Flags().StringVar(&commentProfile, "profile", "", "profile id posting the comment")
	commentCmd.Flags().StringVar(&commentReplyTo, "reply-to", "", "comment id to reply to")
}

func printJSON(w io.Writer, raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("cannot decode response: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
