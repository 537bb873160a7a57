package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/propstore/propstore/internal/cli/output"
	"github.com/propstore/propstore/pkg/apiclient"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Operate on keys (create, exists, get, put, remove, delete)",
	Long: `Operate on single keys of a store.

Keys are given as plain strings. Property values are printed and accepted
as plain strings; use the JSON output format for binary-safe round trips.`,
}

var (
	keyMaxWait int64
	keyForce   bool
)

var keyCreateCmd = &cobra.Command{
	Use:   "create <store> <key>",
	Short: "Create an entry for the key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := client().CreateKey(args[0], []byte(args[1]))
		if err != nil {
			return err
		}
		fmt.Println(res.Status)
		return nil
	},
}

var keyExistsCmd = &cobra.Command{
	Use:   "exists <store> <key>",
	Short: "Check key presence and idle seconds",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := client().Exists(args[0], []byte(args[1]))
		if err != nil {
			return err
		}
		if res.Exists != nil && *res.Exists {
			fmt.Printf("exists, idle %ds\n", *res.Seconds)
		} else {
			fmt.Println("does not exist")
		}
		return nil
	},
}

var keyGetCmd = &cobra.Command{
	Use:   "get <store> <key> <index>:<mode>...",
	Short: "Acquire property locks and read current values",
	Long: `Acquire locks on the given properties and print their current
values. Each request is "<index>:<mode>" with mode one of read, update,
create.

Example:
  propstorectl key get sessions user42 0:read 1:update`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		requests, err := parseRequests(args[2:])
		if err != nil {
			return err
		}
		res, err := client().Get(args[0], []byte(args[1]), requests, keyMaxWait, keyForce)
		if err != nil {
			return err
		}
		return printOpResult(res)
	},
}

var keyPutCmd = &cobra.Command{
	Use:   "put <store> <key> <index>:<lock-id>[:<value>]...",
	Short: "Write property values under granted lock ids",
	Long: `Write values (or clear locks) under previously granted lock ids.
Each entry is "<index>:<lock-id>:<value>"; omit the value to clear the
lock without storing anything.

Example:
  propstorectl key put sessions user42 0:17:hello 1:17`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		props, err := parseEntries(args[2:])
		if err != nil {
			return err
		}
		res, err := client().Put(args[0], []byte(args[1]), props)
		if err != nil {
			return err
		}
		fmt.Println(res.Status)
		return nil
	},
}

var keyRemoveCmd = &cobra.Command{
	Use:   "remove <store> <key>",
	Short: "Remove the key and print its assigned properties",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := client().RemoveKey(args[0], []byte(args[1]), keyMaxWait, keyForce)
		if err != nil {
			return err
		}
		return printOpResult(res)
	},
}

var keyDeleteCmd = &cobra.Command{
	Use:   "delete <store> <key>",
	Short: "Delete the key without reading it back",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := client().DeleteKey(args[0], []byte(args[1]), keyMaxWait, keyForce)
		if err != nil {
			return err
		}
		fmt.Println(res.Status)
		return nil
	},
}

func init() {
	keyCmd.PersistentFlags().Int64Var(&keyMaxWait, "max-wait", 0,
		"Seconds to wait on contended locks (0 = no wait)")
	keyCmd.PersistentFlags().BoolVar(&keyForce, "force", false,
		"Take over contended locks when the wait budget runs out")

	keyCmd.AddCommand(keyCreateCmd)
	keyCmd.AddCommand(keyExistsCmd)
	keyCmd.AddCommand(keyGetCmd)
	keyCmd.AddCommand(keyPutCmd)
	keyCmd.AddCommand(keyRemoveCmd)
	keyCmd.AddCommand(keyDeleteCmd)
}

// parseRequests parses "<index>:<mode>" arguments.
func parseRequests(args []string) ([]apiclient.PropRequest, error) {
	requests := make([]apiclient.PropRequest, 0, len(args))
	for _, arg := range args {
		parts := strings.SplitN(arg, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid request %q, want <index>:<mode>", arg)
		}
		index, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid index in %q: %w", arg, err)
		}
		requests = append(requests, apiclient.PropRequest{Index: index, Mode: parts[1]})
	}
	return requests, nil
}

// parseEntries parses "<index>:<lock-id>[:<value>]" arguments.
func parseEntries(args []string) ([]apiclient.PropEntry, error) {
	props := make([]apiclient.PropEntry, 0, len(args))
	for _, arg := range args {
		parts := strings.SplitN(arg, ":", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid entry %q, want <index>:<lock-id>[:<value>]", arg)
		}
		index, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid index in %q: %w", arg, err)
		}
		lockID, err := strconv.ParseInt(parts[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid lock id in %q: %w", arg, err)
		}
		if len(parts) == 3 {
			props = append(props, apiclient.NewPropEntry(index, int32(lockID), []byte(parts[2])))
		} else {
			props = append(props, apiclient.NewClearEntry(index, int32(lockID)))
		}
	}
	return props, nil
}

// printOpResult renders an operation result with its properties.
func printOpResult(res *apiclient.OpResult) error {
	p, err := printer()
	if err != nil {
		return err
	}
	if p.Format() != output.FormatTable {
		return p.Print(res)
	}

	fmt.Println(res.Status)
	if len(res.Props) == 0 {
		return nil
	}
	table := output.NewTableData("INDEX", "LOCK ID", "VALUE")
	for _, prop := range res.Props {
		value := "<none>"
		if prop.Value != nil {
			raw, err := prop.DecodedValue()
			if err != nil {
				return err
			}
			value = string(raw)
		}
		table.AddRow(strconv.Itoa(prop.Index), strconv.FormatInt(int64(prop.LockID), 10), value)
	}
	return p.Print(table)
}
