package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	treewalk "github.com/TFMV/treewalk/walk"
)

var (
	cfgFile string
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "treewalk [options] <path>",
	Short: "Lazily enumerate a directory tree in pre-order",
	Long: `treewalk walks a directory tree and prints one entry per line, in
pre-order: each directory appears before its contents. Entries that cannot be
read are reported on stderr without stopping the walk.`,
	Version:      version,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTreeWalk(args[0])
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Flags
	rootCmd.Flags().String("format", "text", "Output format (text|json)")
	rootCmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.Flags().Bool("silent", false, "Disable all output except errors")
	rootCmd.Flags().Bool("stats", false, "Print a summary after the walk")
	rootCmd.Flags().Bool("abs", false, "Print absolute paths instead of paths relative to the root")

	// Bind flags to viper
	viper.BindPFlag("format", rootCmd.Flags().Lookup("format"))
	viper.BindPFlag("verbose", rootCmd.Flags().Lookup("verbose"))
	viper.BindPFlag("silent", rootCmd.Flags().Lookup("silent"))
	viper.BindPFlag("stats", rootCmd.Flags().Lookup("stats"))
	viper.BindPFlag("abs", rootCmd.Flags().Lookup("abs"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".treewalk" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".treewalk")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// buildLogger creates a zap logger matching the requested verbosity.
func buildLogger() *zap.Logger {
	var config zap.Config
	if viper.GetBool("verbose") {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	logger, _ := config.Build()
	return logger
}

func runTreeWalk(root string) error {
	logger := buildLogger()
	defer logger.Sync()

	w, err := treewalk.NewWithOptions(root, treewalk.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer w.Close()

	format := viper.GetString("format")
	silent := viper.GetBool("silent")
	abs := viper.GetBool("abs")

	var files, dirs, errCount int64
	for w.Next() {
		if err := w.Err(); err != nil {
			errCount++
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		entry := w.Entry()
		if entry.IsDir() {
			dirs++
		} else {
			files++
		}
		if silent {
			continue
		}

		path := entry.Path
		if !abs {
			if rel, err := filepath.Rel(root, path); err == nil {
				path = rel
			}
		}

		if format == "json" {
			info, _ := entry.Info()
			entryInfo := map[string]interface{}{
				"path":          norm.NFC.String(path),
				"dir":           entry.IsDir(),
				"size":          info.Size(),
				"mode":          info.Mode().String(),
				"last_modified": info.ModTime().Format(time.RFC3339),
			}
			jsonInfo, _ := json.Marshal(entryInfo)
			fmt.Println(string(jsonInfo))
		} else {
			// Normalize names to NFC so decomposed Unicode (macOS
			// style) prints consistently.
			fmt.Println(norm.NFC.String(path))
		}
	}

	if viper.GetBool("stats") {
		fmt.Fprintf(os.Stderr, "%d files, %d directories, %d errors\n", files, dirs, errCount)
	}
	if errCount > 0 {
		return fmt.Errorf("%d entries could not be read", errCount)
	}
	return nil
}
