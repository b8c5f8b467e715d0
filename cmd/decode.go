package cmd

import (
	"bytes"
	"io"

	"github.com/aptxgo/aptx/pkg/aptx"
	"github.com/spf13/cobra"
)

var (
	decodeHD   bool
	decodeSync bool
	decodeIn   string
	decodeOut  string
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode an aptX bitstream from stdin to raw 24-bit stereo PCM on stdout",
	Long: `Reads an aptX (or, with --hd, aptX HD) bitstream from stdin
(or --in) and writes raw 24-bit signed little-endian stereo PCM samples
to stdout (or --out).

With --sync, decode tries to synchronize and recover when the input is
damaged, rather than stopping at the first bad frame.

Examples:
        aptx decode < sample.aptx > sample.s24
        aptx decode --hd < sample.aptxhd > sample.s24
        aptx decode --sync < noisy.aptx > sample.s24
        aptx decode < sample.aptx | play -t raw -r 44.1k -s -3 -c 2 -`,
	Run: func(cmd *cobra.Command, args []string) {
		r, closeIn := openInput(decodeIn)
		defer closeIn()
		w, closeOut := createOutput(decodeOut)
		defer closeOut()

		runDecode(r, w, decodeHD, decodeSync)
	},
	DisableFlagsInUseLine: true,
}

func init() {
	decodeCmd.Flags().BoolVar(&decodeHD, "hd", false, "decode from aptX HD")
	decodeCmd.Flags().BoolVar(&decodeSync, "sync", false, "auto-resynchronize on damaged input instead of stopping at the first bad frame")
	decodeCmd.Flags().StringVar(&decodeIn, "in", "", "read the aptX stream from this file instead of stdin")
	decodeCmd.Flags().StringVar(&decodeOut, "out", "", "write raw PCM to this file instead of stdout")
	rootCmd.AddCommand(decodeCmd)
}

func sniffStreamType(header []byte, hd bool) {
	switch {
	case bytes.HasPrefix(header, aptx.MagicAptx[:]):
		if hd {
			logger.Warn("Input looks like aptX audio stream (not aptX HD), try without --hd")
		}
	case len(header) >= len(aptx.MagicAptxHD) && bytes.Equal(header[:len(aptx.MagicAptxHD)], aptx.MagicAptxHD[:]):
		if !hd {
			logger.Warn("Input looks like aptX HD audio stream, try with --hd")
		}
	default:
		logger.Warn("Input does not look like aptX nor aptX HD audio stream")
	}
}

func runDecode(r io.Reader, w io.Writer, hd, sync bool) {
	ctx := aptx.Init(hd)

	header := make([]byte, 6)
	n, _ := io.ReadFull(r, header)
	header = header[:n]
	sniffStreamType(header, hd)

	if sync {
		runDecodeSync(ctx, r, w, header)
		return
	}

	frameSize := 4
	if hd {
		frameSize = 6
	}

	pending := header
	buf := make([]byte, 512*8*6)
	for {
		m, readErr := r.Read(buf)
		if m > 0 {
			pending = append(pending, buf[:m]...)
		}

		out, consumed := ctx.Decode(pending)
		if len(out) > 0 {
			if _, err := w.Write(out); err != nil {
				logger.Fatalf("aptX decoding failed to write decoded data: %v", err)
			}
		}
		pending = pending[consumed:]

		// A leftover shorter than one frame is just a trailing partial
		// sample, carried forward to prepend to the next read. A
		// leftover of a full frame or more means Decode stopped on a
		// parity failure and made no forward progress on it.
		if len(pending) >= frameSize {
			logger.Warnf("aptX decoding failed, dropped %d bytes", len(pending))
			return
		}

		if readErr == io.EOF {
			if len(pending) > 0 {
				logger.Warnf("aptX decoding stopped in the middle of the sample, dropped %d bytes", len(pending))
			}
			break
		}
		if readErr != nil {
			logger.Fatalf("aptX decoding failed to read input data: %v", readErr)
		}
	}
}

func runDecodeSync(ctx *aptx.Context, r io.Reader, w io.Writer, header []byte) {
	pending := header
	var failed uint64

	buf := make([]byte, 512*8*6)
	for {
		m, readErr := r.Read(buf)
		if m > 0 {
			pending = append(pending, buf[:m]...)
		}

		out, synced, dropped := ctx.DecodeSync(pending)
		pending = nil

		if dropped > 0 && failed == 0 {
			logger.Warn("aptX decoding failed, trying to synchronize ...")
		}
		failed += uint64(dropped)
		if synced && failed > 0 {
			logger.Warnf("... synchronization successful, dropped %d bytes", failed)
			failed = 0
		}

		if len(out) > 0 {
			if _, err := w.Write(out); err != nil {
				logger.Fatalf("aptX decoding failed to write decoded data: %v", err)
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			logger.Fatalf("aptX decoding failed to read input data: %v", readErr)
		}
	}

	leftover := ctx.DecodeSyncFinish()
	failed += uint64(leftover)
	if failed > 0 {
		logger.Warnf("... synchronization failed, dropped %d bytes", failed)
	}
}
