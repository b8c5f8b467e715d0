package cmd

import (
	"io"
	"os"

	"github.com/aptxgo/aptx/pkg/aptx"
	"github.com/spf13/cobra"
)

var (
	encodeHD  bool
	encodeIn  string
	encodeOut string
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode raw 24-bit stereo PCM from stdin to aptX on stdout",
	Long: `Reads raw 24-bit signed little-endian stereo PCM samples from
stdin (or --in) and writes an aptX (or, with --hd, aptX HD) bitstream to
stdout (or --out).

Examples:
        aptx encode < sample.s24 > sample.aptx
        aptx encode --hd < sample.s24 > sample.aptxhd
        sox sample.wav -t raw -r 44.1k -s -3 -c 2 - | aptx encode > sample.aptx`,
	Run: func(cmd *cobra.Command, args []string) {
		r, closeIn := openInput(encodeIn)
		defer closeIn()
		w, closeOut := createOutput(encodeOut)
		defer closeOut()

		runEncode(r, w, encodeHD)
	},
	DisableFlagsInUseLine: true,
}

func init() {
	encodeCmd.Flags().BoolVar(&encodeHD, "hd", false, "encode to aptX HD")
	encodeCmd.Flags().StringVar(&encodeIn, "in", "", "read raw PCM from this file instead of stdin")
	encodeCmd.Flags().StringVar(&encodeOut, "out", "", "write the aptX stream to this file instead of stdout")
	rootCmd.AddCommand(encodeCmd)
}

// openInput opens path for reading, or returns os.Stdin if path is empty.
// The returned close func is always safe to call.
func openInput(path string) (io.Reader, func()) {
	if path == "" {
		return os.Stdin, func() {}
	}
	f, err := os.Open(path)
	if err != nil {
		logger.Fatalf("Error opening %s: %v", path, err)
	}
	return f, func() { f.Close() }
}

// createOutput creates path for writing, or returns os.Stdout if path is
// empty. The returned close func is always safe to call.
func createOutput(path string) (io.Writer, func()) {
	if path == "" {
		return os.Stdout, func() {}
	}
	f, err := os.Create(path)
	if err != nil {
		logger.Fatalf("Error creating %s: %v", path, err)
	}
	return f, func() { f.Close() }
}

func runEncode(r io.Reader, w io.Writer, hd bool) {
	ctx := aptx.Init(hd)

	chunk := make([]byte, 512*8*3*2*4)
	var pending []byte
	for {
		n, readErr := r.Read(chunk)
		if n > 0 {
			pending = append(pending, chunk[:n]...)

			out, consumed := ctx.Encode(pending)
			if len(out) > 0 {
				if _, err := w.Write(out); err != nil {
					logger.Fatalf("aptX encoding failed to write encoded data: %v", err)
				}
			}
			pending = pending[consumed:]
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			logger.Fatalf("aptX encoding failed to read input data: %v", readErr)
		}
	}

	if len(pending) > 0 {
		logger.Warnf("aptX encoding stopped in the middle of the sample, dropped %d bytes", len(pending))
	}

	for {
		out, done := ctx.EncodeFinish(0)
		if len(out) > 0 {
			if _, err := w.Write(out); err != nil {
				logger.Fatalf("aptX encoding failed to write encoded data: %v", err)
			}
		}
		if done {
			break
		}
	}
}
