package client

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewLogCommand constructs the `log` command group.
func NewLogCommand(baseURL BaseURLFunc) *cobra.Command {
	logCmd := &cobra.Command{Use: "log", Short: "Log operations"}
	logCmd.AddCommand(
		newLogCommitCommand(baseURL),
		newLogCommitNoInputCommand(baseURL),
		newLogPageCommand(baseURL),
	)
	return logCmd
}

func newLogCommitCommand(baseURL BaseURLFunc) *cobra.Command {
	commitCmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit a log for a template",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString("template")
			valuesJSON, _ := cmd.Flags().GetString("values")
			if id == "" {
				return fmt.Errorf("--template is required")
			}
			var values []map[string]string
			if valuesJSON != "" {
				if err := json.Unmarshal([]byte(valuesJSON), &values); err != nil {
					return fmt.Errorf("invalid --values: %w", err)
				}
			}
			b, _ := json.Marshal(map[string]any{"templateId": id, "slotValues": values})
			return postJSON(cmd, baseURL()+"/v1/logs/commit", b)
		},
	}
	commitCmd.Flags().String("template", "", "Template id")
	commitCmd.Flags().String("values", "", `Slot values as JSON, e.g. [{"slotId":"...","value":"..."}]`)
	return commitCmd
}

func newLogCommitNoInputCommand(baseURL BaseURLFunc) *cobra.Command {
	noInputCmd := &cobra.Command{
		Use:   "commit-no-input",
		Short: "One-tap commit for a template whose slots are all static text",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString("template")
			if id == "" {
				return fmt.Errorf("--template is required")
			}
			b, _ := json.Marshal(map[string]string{"templateId": id})
			return postJSON(cmd, baseURL()+"/v1/logs/commit-no-input", b)
		},
	}
	noInputCmd.Flags().String("template", "", "Template id")
	return noInputCmd
}

func newLogPageCommand(baseURL BaseURLFunc) *cobra.Command {
	pageCmd := &cobra.Command{
		Use:   "page",
		Short: "Load a page of logs, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			size, _ := cmd.Flags().GetInt("size")
			cursor, _ := cmd.Flags().GetString("cursor")
			filter, _ := cmd.Flags().GetString("filter")

			u := baseURL() + "/v1/logs/page?"
			if size > 0 {
				u += "size=" + strconv.Itoa(size) + "&"
			}
			if cursor != "" {
				u += "cursor=" + queryEscape(cursor) + "&"
			}
			if filter != "" {
				u += "filter=" + queryEscape(filter) + "&"
			}
			return getJSON(cmd, u)
		},
	}
	pageCmd.Flags().Int("size", 0, "Page size (0 = server default)")
	pageCmd.Flags().String("cursor", "", "Resume cursor from a previous page")
	pageCmd.Flags().String("filter", "", "CEL filter (server-side)")
	return pageCmd
}
