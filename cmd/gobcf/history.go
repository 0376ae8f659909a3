package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/philipparndt/gobcf/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded viewpoints",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a recorded viewpoint as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries (0 for all)")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory(cmd *cobra.Command) (*history.Store, error) {
	if cfg.HistoryPath == "" {
		return nil, errors.New("history is disabled (history_path is empty)")
	}
	return history.Open(cmd.Context(), cfg.HistoryPath)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No viewpoints recorded")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %s  %-6s  %-6s  %s  %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.ID, e.Direction, e.Source, e.ViewpointGUID, e.Status)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	entry, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	vp, err := entry.Viewpoint()
	if err != nil {
		return err
	}
	return vp.Write(os.Stdout)
}
