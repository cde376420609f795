package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewHistoryCommand constructs the `history` command group.
func NewHistoryCommand(baseURL BaseURLFunc) *cobra.Command {
	histCmd := &cobra.Command{Use: "history", Short: "Input history operations"}
	histCmd.AddCommand(newHistoryGetCommand(baseURL))
	return histCmd
}

func newHistoryGetCommand(baseURL BaseURLFunc) *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show a slot's input history, most recent first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			slotID, _ := cmd.Flags().GetString("slot")
			if slotID == "" {
				return fmt.Errorf("--slot is required")
			}
			return getJSON(cmd, baseURL()+"/v1/history/get?slotId="+queryEscape(slotID))
		},
	}
	getCmd.Flags().String("slot", "", "Slot id")
	return getCmd
}
