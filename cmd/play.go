package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aptxgo/aptx/pkg/aptx"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play <file/directories>",
	Short: "Play aptX or aptX HD audio file(s)",
	Long:  "Provide one or more aptX/aptX HD files, or directories containing them, to play.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var allFiles []string
		for _, arg := range args {
			info, err := os.Stat(arg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error accessing %s: %v\n", arg, err)
				continue
			}
			if info.IsDir() {
				files, err := findAllAptxFiles(arg)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error walking %s: %v\n", arg, err)
					continue
				}
				allFiles = append(allFiles, files...)
			} else if _, ok := sniffAptxFile(arg); ok {
				allFiles = append(allFiles, arg)
			}
		}
		if len(allFiles) == 0 {
			fmt.Println("No valid aptX files found :(")
			return
		}
		startTUI(allFiles)
	},
}

// sniffAptxFile reports whether path looks like an aptX or aptX HD stream,
// by checking for the first codeword the encoder produces from a silent
// first frame (aptx.MagicAptx / aptx.MagicAptxHD). A stream whose first
// frame was not silent can start with other bytes and is not recognized.
func sniffAptxFile(path string) (hd bool, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return false, false
	}
	defer f.Close()

	header := make([]byte, len(aptx.MagicAptxHD))
	n, _ := f.Read(header)
	header = header[:n]

	switch {
	case bytes.HasPrefix(header, aptx.MagicAptxHD[:]):
		return true, true
	case bytes.HasPrefix(header, aptx.MagicAptx[:]):
		return false, true
	default:
		return false, false
	}
}

func findAllAptxFiles(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			if _, ok := sniffAptxFile(path); ok {
				files = append(files, path)
			}
		}
		return nil
	})
	return files, err
}

func init() {
	rootCmd.AddCommand(playCmd)
}
