// Package client contains Cobra CLI commands for majin.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// NewTemplateCommand constructs the `template` command group.
func NewTemplateCommand(baseURL BaseURLFunc) *cobra.Command {
	tplCmd := &cobra.Command{Use: "template", Short: "Template operations"}
	tplCmd.AddCommand(
		newTemplateCreateCommand(baseURL),
		newTemplateListCommand(baseURL),
		newTemplateArchiveCommand(baseURL),
	)
	return tplCmd
}

func newTemplateCreateCommand(baseURL BaseURLFunc) *cobra.Command {
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a template (empty body provisions the starter template)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			def, _ := cmd.Flags().GetString("json")
			body := []byte("{}")
			if def != "" {
				body = []byte(def)
			}
			return postJSON(cmd, baseURL()+"/v1/templates/create", body)
		},
	}
	createCmd.Flags().String("json", "", "Template definition as JSON (name, slots, color, icon)")
	return createCmd
}

func newTemplateListCommand(baseURL BaseURLFunc) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			includeArchived, _ := cmd.Flags().GetBool("include-archived")
			u := baseURL() + "/v1/templates/list"
			if includeArchived {
				u += "?includeArchived=true"
			}
			return getJSON(cmd, u)
		},
	}
	listCmd.Flags().Bool("include-archived", false, "Include archived templates")
	return listCmd
}

func newTemplateArchiveCommand(baseURL BaseURLFunc) *cobra.Command {
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Archive a template",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString("id")
			if id == "" {
				return fmt.Errorf("--id is required")
			}
			b, _ := json.Marshal(map[string]string{"templateId": id})
			return postJSON(cmd, baseURL()+"/v1/templates/archive", b)
		},
	}
	archiveCmd.Flags().String("id", "", "Template id")
	return archiveCmd
}

func postJSON(cmd *cobra.Command, url string, body []byte) error {
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printResponse(cmd, resp)
}

func getJSON(cmd *cobra.Command, url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printResponse(cmd, resp)
}

func printResponse(cmd *cobra.Command, resp *http.Response) error {
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	var pretty bytes.Buffer
	if json.Indent(&pretty, b, "", "  ") == nil {
		fmt.Fprintln(out, pretty.String())
	} else {
		fmt.Fprintln(out, string(b))
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("status: %s", resp.Status)
	}
	return nil
}

func queryEscape(v string) string { return url.QueryEscape(v) }
