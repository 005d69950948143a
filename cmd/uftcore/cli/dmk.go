package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"uftcore/internal/dmk"
)

var (
	dmkWD1771NonIBM bool
	dmkRX02         bool
)

var dmkCmd = &cobra.Command{
	Use:   "dmk",
	Short: "Inspect DMK track images",
}

func init() {
	dmkCmd.PersistentFlags().BoolVar(&dmkWD1771NonIBM, "wd1771", false, "use WD1771 non-IBM sector-length codes")
	dmkCmd.PersistentFlags().BoolVar(&dmkRX02, "rx02", false, "treat image as RX02 double-density-in-FM")
	dmkCmd.AddCommand(dmkInspectCmd)
}

func openDMK(path string) (*dmk.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return dmk.ReadImage(data, dmkWD1771NonIBM, dmkRX02)
}

var dmkInspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Print each track's geometry and sector status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := openDMK(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("tracks=%d heads=%d track_length=%d\n", img.Header.NumTracks, img.Header.Heads(), img.Header.TrackLength)
		for _, t := range img.Tracks {
			fmt.Printf("cyl=%-3d head=%d sectors=%d\n", t.Cylinder, t.Head, len(t.Sectors))
			for _, s := range t.Sectors {
				status := "OK"
				if s.Deleted {
					status = "DELETED"
				}
				if !s.IDCRCValid || !s.DataCRCValid {
					status = "CRC-ERROR"
				}
				fmt.Printf("  sector=%d encoding=%s size=%d %s\n", s.Number, s.Encoding, len(s.Data), status)
			}
		}
		return nil
	},
}
