package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

// WordResult response type
type WordResult struct {
	Word  string `json:"word"`
	Valid bool   `json:"valid"`
}

func newWordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "word <word>",
		Short: "Check a word against the server's dictionary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result WordResult
			if err := client.Get("/api/v1/words/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
