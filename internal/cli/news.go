package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/pcarrot/internal/config"
	"github.com/mcoot/pcarrot/internal/factory"
)

func newNewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "news",
		Short: "Read and write news",
	}

	cmd.AddCommand(newNewsPostCmd())
	cmd.AddCommand(newNewsListCmd())

	return cmd
}

func newNewsPostCmd() *cobra.Command {
	var title, author, body, bodyFile string

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Write a news item to the database",
		Long: `post inserts a news item dated now. The body is Markdown, taken from
--body, --body-file ("-" for stdin) or read from stdin.
Cached listings show it once their cache timeout passes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := newsBody(cmd, body, bodyFile)
			if err != nil {
				return err
			}

			settings, err := config.Load(cfg.ConfigPath)
			if err != nil {
				return err
			}

			app, err := factory.New(factory.Config{Settings: settings, Logger: stderrLogger(settings)})
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			id, err := app.NewsService.Post(cmd.Context(), title, author, text)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(NewsPosted{ID: id})
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "News title")
	cmd.Flags().StringVar(&author, "author", "", "Author shown with the item")
	cmd.Flags().StringVar(&body, "body", "", "Markdown body")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "Read the Markdown body from a file")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")
	cmd.MarkFlagsMutuallyExclusive("body", "body-file")

	return cmd
}

func newsBody(cmd *cobra.Command, body, bodyFile string) (string, error) {
	var text string
	switch {
	case body != "":
		text = body
	case bodyFile != "" && bodyFile != "-":
		b, err := os.ReadFile(bodyFile)
		if err != nil {
			return "", fmt.Errorf("read body file: %w", err)
		}
		text = string(b)
	default:
		var err error
		text, err = readText(cmd, "news body")
		if err != nil {
			return "", err
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", errors.New("news body is empty")
	}
	return text, nil
}

func newNewsListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the latest news from the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/news"
			if limit > 0 {
				path += "?limit=" + strconv.Itoa(limit)
			}

			var result NewsList
			if err := client.Get(path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Number of items (server default if unset)")

	return cmd
}
