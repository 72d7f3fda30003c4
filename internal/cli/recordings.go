package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"danmaku-player/pkg/recordFs"
	"danmaku-player/pkg/settings"
	"danmaku-player/pkg/sharedTypes"
)

// RecordingsOptions holds flags for the recordings command.
type RecordingsOptions struct {
	*RootOptions
	Remote bool
	Fetch  string
	JSON   bool
}

// NewRecordingsCommand creates the recordings command.
func NewRecordingsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordingsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "recordings",
		Short: "List danmaku recordings",
		Long: `List the ASS recordings in the configured record directory, or with
--remote the ones uploaded to RECORD_BUCKET. --fetch downloads one remote
recording into the record directory.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordings(opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.Remote, "remote", false, "list recordings in RECORD_BUCKET")
	cmd.Flags().StringVar(&opts.Fetch, "fetch", "", "download the recording with this key")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print JSON instead of a table")

	return cmd
}

func runRecordings(opts *RecordingsOptions, out io.Writer) error {
	s := settings.Load()

	var (
		recs []sharedTypes.Recording
		err  error
	)
	switch {
	case opts.Fetch != "":
		bucket, err := recordFs.BucketFromEnv()
		if err != nil {
			return err
		}
		path, err := bucket.Download(opts.Fetch, s.RecordDir)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, path)
		return nil
	case opts.Remote:
		bucket, berr := recordFs.BucketFromEnv()
		if berr != nil {
			return berr
		}
		recs, err = bucket.List()
	default:
		recs, err = recordFs.AvailableRecordings(s.RecordDir)
	}
	if err != nil {
		return err
	}
	return printRecordings(out, recs, opts.JSON)
}

func printRecordings(out io.Writer, recs []sharedTypes.Recording, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSIZE\tMODIFIED")
	for _, r := range recs {
		modified := "-"
		if !r.LastModified.IsZero() {
			modified = r.LastModified.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", r.Key, r.Size, modified)
	}
	return tw.Flush()
}
