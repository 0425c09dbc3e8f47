package main

import (
	"github.com/keepmind9/unibot/internal/messenger"
	"github.com/keepmind9/unibot/internal/service"
	"github.com/spf13/cobra"
)

var (
	publishBotID    string
	publishPlatform string
	publishPost     service.Post
	publishFormat   string
	publishSummary  bool
	publishLink     bool
	publishJSON     bool
)

var publishCmd = &cobra.Command{
	Use:   "publish --bot <id> --title <title>",
	Short: "Publish a post to the channels of configured bots",
	Long: `Render a post (bold title, content or summary, optional link) and publish
it to the configured channel of every enabled bot with the given id.

Example:
  unibot publish --bot news --title "v1.2 released" --summary "Faster sends" \
    --link https://example.com/v1.2 --use-summary --include-link`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newOneShotEngine()
		if err != nil {
			return err
		}
		defer engine.Stop()

		bots, err := selectBots(engine, publishBotID, publishPlatform)
		if err != nil {
			return err
		}

		deliveries := engine.Service().PublishPost(cmd.Context(), bots, publishPost, service.PublishOptions{
			Format:      messenger.TextFormat(publishFormat),
			UseSummary:  publishSummary,
			IncludeLink: publishLink,
		})
		return reportDeliveries(cmd.OutOrStdout(), deliveries, publishJSON)
	},
}

func init() {
	publishCmd.Flags().StringVarP(&publishBotID, "bot", "b", "", "Bot id from the configuration")
	publishCmd.MarkFlagRequired("bot")
	publishCmd.Flags().StringVarP(&publishPlatform, "platform", "p", "", "Only publish through the bot on this platform")
	publishCmd.Flags().StringVar(&publishPost.Title, "title", "", "Post title")
	publishCmd.Flags().StringVar(&publishPost.Content, "content", "", "Post body")
	publishCmd.Flags().StringVar(&publishPost.Summary, "summary", "", "Short summary used with --use-summary")
	publishCmd.Flags().StringVar(&publishPost.Link, "link", "", "Link appended with --include-link")
	publishCmd.Flags().StringVarP(&publishFormat, "format", "f", "", "Text format: plain, markdown (default) or html")
	publishCmd.Flags().BoolVar(&publishSummary, "use-summary", false, "Publish the summary instead of the content")
	publishCmd.Flags().BoolVar(&publishLink, "include-link", false, "Append the link")
	publishCmd.Flags().BoolVar(&publishJSON, "json", false, "Output in JSON format")
}
