package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	treewalk "github.com/TFMV/treewalk/walk"
)

var (
	// Watch command options
	watchEvents    []string
	watchRecursive bool
	watchTimeout   time.Duration
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a directory tree for filesystem changes",
	Long: `Watch a directory tree and print an event line whenever a file or
directory is created, modified, or deleted.

Examples:
  treewalk watch /path/to/watch
  treewalk watch --events=create,modify /path/to/watch
  treewalk watch --recursive --timeout=30m /path/to/watch`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		watchDir := "."
		if len(args) > 0 {
			watchDir = args[0]
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Convert string events to WatchEvent types
		var events []treewalk.WatchEvent
		for _, e := range watchEvents {
			switch strings.ToLower(e) {
			case "create":
				events = append(events, treewalk.EventCreate)
			case "write", "modify":
				events = append(events, treewalk.EventModify)
			case "remove", "delete":
				events = append(events, treewalk.EventDelete)
			case "rename":
				events = append(events, treewalk.EventRename)
			case "chmod":
				events = append(events, treewalk.EventChmod)
			default:
				return fmt.Errorf("unknown event type: %s", e)
			}
		}

		opts := treewalk.WatchOptions{
			Events:    events,
			Recursive: watchRecursive,
			Timeout:   watchTimeout,
			Logger:    buildLogger(),
		}

		fmt.Fprintf(os.Stderr, "Watching %s for changes...\n", watchDir)
		return treewalk.Watch(ctx, watchDir, opts, nil)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	// Define flags for the watch command
	watchCmd.Flags().StringSliceVar(&watchEvents, "events", []string{}, "Events to watch for (create, modify, delete, rename, chmod)")
	watchCmd.Flags().BoolVar(&watchRecursive, "recursive", false, "Watch subdirectories recursively")
	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", 0, "Duration to watch before exiting (e.g., 1h, 30m)")
}
