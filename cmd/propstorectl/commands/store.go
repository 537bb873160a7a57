package commands

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/propstore/propstore/internal/cli/output"
	"github.com/propstore/propstore/pkg/apiclient"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage stores (list, add, remove, clear, info)",
}

var (
	storeTimeout     string
	storeLockTimeout string
	assumeYes        bool
)

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered stores",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := printer()
		if err != nil {
			return err
		}
		stores, err := client().ListStores()
		if err != nil {
			return err
		}

		if p.Format() != output.FormatTable {
			return p.Print(stores)
		}

		table := output.NewTableData("NAME", "PROPS", "TIMEOUT", "LOCK TIMEOUT", "ENTRIES")
		for _, s := range stores {
			table.AddRow(s.Name, strconv.Itoa(len(s.Props)), s.Timeout, s.LockTimeout, strconv.Itoa(s.Entries))
		}
		return p.Print(table)
	},
}

var storeAddCmd = &cobra.Command{
	Use:   "add <name> <prop>...",
	Short: "Create a store with the given property descriptors",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := client().CreateStore(apiclient.CreateStoreRequest{
			Name:        args[0],
			Props:       args[1:],
			Timeout:     storeTimeout,
			LockTimeout: storeLockTimeout,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Store %q created with %d properties\n", info.Name, len(info.Props))
		return nil
	},
}

var storeInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show one store's configuration and entry count",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := printer()
		if err != nil {
			return err
		}
		info, err := client().GetStore(args[0])
		if err != nil {
			return err
		}
		if p.Format() != output.FormatTable {
			return p.Print(info)
		}
		return output.SimpleTable(cmd.OutOrStdout(), [][2]string{
			{"Name", info.Name},
			{"ID", info.ID},
			{"Props", fmt.Sprintf("%v", info.Props)},
			{"Timeout", info.Timeout},
			{"Lock timeout", info.LockTimeout},
			{"Entries", strconv.Itoa(info.Entries)},
		})
	},
}

var storeRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Unregister a store and drop all its entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(fmt.Sprintf("Remove store %q and drop all entries", args[0])); err != nil {
			return err
		}
		if err := client().DeleteStore(args[0]); err != nil {
			return err
		}
		fmt.Printf("Store %q removed\n", args[0])
		return nil
	},
}

var storeClearCmd = &cobra.Command{
	Use:   "clear <name>",
	Short: "Drop all entries of a store, keeping it registered",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := confirm(fmt.Sprintf("Clear all entries of store %q", args[0])); err != nil {
			return err
		}
		if err := client().ClearStore(args[0]); err != nil {
			return err
		}
		fmt.Printf("Store %q cleared\n", args[0])
		return nil
	},
}

func init() {
	storeAddCmd.Flags().StringVar(&storeTimeout, "timeout", "", `Entry timeout (e.g. "5m")`)
	storeAddCmd.Flags().StringVar(&storeLockTimeout, "lock-timeout", "", `Lock timeout (e.g. "30s")`)

	storeCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Skip confirmation prompts")

	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeAddCmd)
	storeCmd.AddCommand(storeInfoCmd)
	storeCmd.AddCommand(storeRemoveCmd)
	storeCmd.AddCommand(storeClearCmd)
}

// confirm asks before a destructive operation unless --yes was given.
func confirm(action string) error {
	if assumeYes {
		return nil
	}
	prompt := promptui.Prompt{
		Label:     action,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		return fmt.Errorf("aborted")
	}
	return nil
}
