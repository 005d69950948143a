package cli

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"uftcore/internal/dmk"
	"uftcore/internal/protection/classify"
)

var (
	protectWD1771NonIBM bool
	protectRX02         bool
	protectTrack        int
	protectHead         int
)

var protectCmd = &cobra.Command{
	Use:   "protect",
	Short: "Analyze DMK tracks for known copy-protection schemes",
}

func init() {
	protectCmd.PersistentFlags().BoolVar(&protectWD1771NonIBM, "wd1771", false, "use WD1771 non-IBM sector-length codes")
	protectCmd.PersistentFlags().BoolVar(&protectRX02, "rx02", false, "treat image as RX02 double-density-in-FM")
	protectCmd.AddCommand(protectClassifyCmd)
}

var protectClassifyCmd = &cobra.Command{
	Use:   "classify FILE",
	Short: "Classify a single track's copy protection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return errors.Wrapf(err, "reading %s", args[0])
		}
		img, err := dmk.ReadImage(data, protectWD1771NonIBM, protectRX02)
		if err != nil {
			return err
		}
		track := img.Track(protectTrack, protectHead)
		if track == nil {
			return fmt.Errorf("no track at cylinder=%d head=%d", protectTrack, protectHead)
		}
		analysis := classify.Classify(track, nil, nil, classify.NewContext())
		fmt.Print(analysis.Report())
		return nil
	},
}

func init() {
	protectClassifyCmd.Flags().IntVar(&protectTrack, "track", 0, "cylinder to analyze")
	protectClassifyCmd.Flags().IntVar(&protectHead, "head", 0, "head to analyze")
}
