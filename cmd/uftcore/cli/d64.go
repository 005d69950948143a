package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"uftcore/internal/d64"
)

var d64Cmd = &cobra.Command{
	Use:   "d64",
	Short: "Inspect D64 (1541) disk images",
}

func init() {
	d64Cmd.AddCommand(d64LsCmd)
	d64Cmd.AddCommand(d64ExtractCmd)
	d64Cmd.AddCommand(d64ValidateCmd)
}

func openD64(path string) (*d64.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return d64.Open(data)
}

var d64LsCmd = &cobra.Command{
	Use:   "ls FILE",
	Short: "List the directory of a D64 image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := openD64(args[0])
		if err != nil {
			return err
		}
		entries, err := img.Directory()
		if err != nil {
			return err
		}
		for _, e := range entries {
			lock := " "
			if e.Locked {
				lock = "<"
			}
			fmt.Printf("%-16q %4d blocks %s\n", e.Name, e.Blocks, lock)
		}
		return nil
	},
}

var d64ExtractCmd = &cobra.Command{
	Use:   "extract FILE NAME OUTPUT",
	Short: "Extract a file from a D64 image to OUTPUT",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := openD64(args[0])
		if err != nil {
			return err
		}
		data, err := img.ExtractFile(args[1])
		if err != nil {
			return err
		}
		return os.WriteFile(args[2], data, 0o644)
	},
}

var d64ValidateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a D64 image's BAM for free-block-count mismatches",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := openD64(args[0])
		if err != nil {
			return err
		}
		bad := img.BAM().Validate()
		if len(bad) == 0 {
			fmt.Println("BAM OK")
			return nil
		}
		for _, track := range bad {
			fmt.Printf("track %d: free-block count mismatch\n", track)
		}
		return nil
	},
}
