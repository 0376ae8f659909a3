package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/philipparndt/gobcf/pkg/ifcguid"
)

var guidDecode bool

var guidCmd = &cobra.Command{
	Use:   "guid [uuid...]",
	Short: "Convert between UUIDs and IFC GUIDs",
	Long: `Print the IFC GUID of each UUID argument, or a new IFC GUID when called without
arguments. With --decode the arguments are IFC GUIDs and their UUIDs are printed.`,
	RunE: runGUID,
}

func init() {
	guidCmd.Flags().BoolVarP(&guidDecode, "decode", "d", false, "convert IFC GUIDs to UUIDs")
	rootCmd.AddCommand(guidCmd)
}

func runGUID(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println(ifcguid.New())
		return nil
	}
	for _, arg := range args {
		if guidDecode {
			id, err := ifcguid.ToUUID(arg)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %s\n", arg, id)
			continue
		}
		id, err := uuid.Parse(arg)
		if err != nil {
			return fmt.Errorf("invalid UUID %q: %w", arg, err)
		}
		fmt.Printf("%s  %s\n", arg, ifcguid.FromUUID(id))
	}
	return nil
}
