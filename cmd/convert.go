package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aptxgo/aptx/pkg/aptx"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/spf13/cobra"
)

var convertHD bool

var convertCmd = &cobra.Command{
	Use:   "convert <input-file> <output-file>",
	Short: "Convert between WAV and aptX/aptX HD",
	Long:  fmt.Sprintf("Convert between WAV and aptX/aptX HD. The supported file extensions are:\n%v", strings.Join(supportedFormats, "\n")),
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		inputFile := args[0]
		outputFile := args[1]

		if !isSupportedConversion(inputFile, outputFile) {
			logger.Fatal("Unsupported conversion")
		}
		convertAudio(inputFile, outputFile)
	},
	DisableFlagsInUseLine: true,
}

var supportedFormats = []string{".wav", ".aptx", ".aptxhd"}

func init() {
	convertCmd.Flags().BoolVar(&convertHD, "hd", false, "encode WAV input to aptX HD rather than aptX")
	rootCmd.AddCommand(convertCmd)
}

func isSupportedConversion(inputFile, outputFile string) bool {
	inExt := filepath.Ext(inputFile)
	outExt := filepath.Ext(outputFile)

	notSameExt := inExt != outExt
	bothSupported := contains(supportedFormats, inExt) && contains(supportedFormats, outExt)
	atLeastOneWav := inExt == ".wav" || outExt == ".wav"

	return notSameExt && bothSupported && atLeastOneWav
}

func contains(arr []string, target string) bool {
	for _, item := range arr {
		if item == target {
			return true
		}
	}
	return false
}

// convertAudio dispatches on the input/output file extensions: exactly one
// side is WAV and the other is aptX or aptX HD, enforced by
// isSupportedConversion before this is called.
func convertAudio(inputFile, outputFile string) {
	inExt := filepath.Ext(inputFile)

	if inExt == ".wav" {
		encodeWavToAptx(inputFile, outputFile, convertHD || filepath.Ext(outputFile) == ".aptxhd")
	} else {
		decodeAptxToWav(inputFile, inExt == ".aptxhd", outputFile)
	}

	logger.Infof("Conversion completed: %s -> %s", inputFile, outputFile)
}

func encodeWavToAptx(inputFile, outputFile string, hd bool) {
	inputData, err := os.ReadFile(inputFile)
	if err != nil {
		logger.Fatalf("Error loading audio file: %v", err)
	}

	wavReader := bytes.NewReader(inputData)
	wavDecoder := wav.NewDecoder(wavReader)
	if err := wavDecoder.FwdToPCM(); err != nil {
		logger.Fatalf("Error reading WAV file header: %v", err)
	}
	if wavDecoder.NumChans != 2 {
		logger.Fatalf("aptX requires stereo input, got %d channel(s)", wavDecoder.NumChans)
	}

	pcmBuffer := &audio.IntBuffer{Data: make([]int, 4096), Format: wavDecoder.Format()}
	var pcm []byte
	samples := 0
	for {
		n, err := wavDecoder.PCMBuffer(pcmBuffer)
		if err != nil {
			logger.Fatalf("Error decoding WAV file: %v", err)
		}
		if n == 0 {
			break
		}
		for i := 0; i < n; i++ {
			pcm = append24(pcm, int32(pcmBuffer.Data[i]))
		}
		samples += n
	}

	logger.Debug(
		inputFile,
		"channels", wavDecoder.NumChans,
		"samplerate(hz)", wavDecoder.Format().SampleRate,
		"samples", samples/2,
		"bit depth", wavDecoder.SampleBitDepth(),
		"size", formatSize(len(inputData)),
	)
	if wavDecoder.SampleBitDepth() > 24 {
		logger.Warn("Bit depth is greater than 24, this will lose precision when encoded to aptX!")
	}

	ctx := aptx.Init(hd)
	var encoded []byte
	for len(pcm) > 0 {
		out, consumed := ctx.Encode(pcm)
		encoded = append(encoded, out...)
		if consumed == 0 {
			break
		}
		pcm = pcm[consumed:]
	}
	for {
		out, done := ctx.EncodeFinish(0)
		encoded = append(encoded, out...)
		if done {
			break
		}
	}

	if err := os.WriteFile(outputFile, encoded, 0o644); err != nil {
		logger.Fatalf("Error writing aptX file: %v", err)
	}

	variant := "aptX"
	if hd {
		variant = "aptX HD"
	}
	bitrate := (float64(len(encoded)*8) / float64(samples/2/wavDecoder.Format().SampleRate)) / 1024
	logger.Debug(outputFile, "format", variant, "size", formatSize(len(encoded)), "bitrate", fmt.Sprintf("%0.2f kbit/s", bitrate))
}

func decodeAptxToWav(inputFile string, hd bool, outputFile string) {
	encoded, err := os.ReadFile(inputFile)
	if err != nil {
		logger.Fatalf("Error loading audio file: %v", err)
	}

	ctx := aptx.Init(hd)
	var pcm []byte
	remaining := encoded
	for len(remaining) > 0 {
		out, consumed := ctx.Decode(remaining)
		pcm = append(pcm, out...)
		if consumed == 0 {
			logger.Warn("aptX decoding failed, input does not look like a clean stream")
			break
		}
		remaining = remaining[consumed:]
	}

	const sampleRate = 44100
	intData := make([]int, len(pcm)/3)
	for i := range intData {
		intData[i] = int(get24(pcm, i*3))
	}

	wavFile, err := os.Create(outputFile)
	if err != nil {
		logger.Fatalf("Error creating WAV file: %v", err)
	}
	defer wavFile.Close()

	wavEncoder := wav.NewEncoder(wavFile, sampleRate, 24, 2, 1)
	buffer := &audio.IntBuffer{
		Data:           intData,
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 2},
		SourceBitDepth: 24,
	}
	if err := wavEncoder.Write(buffer); err != nil {
		logger.Fatalf("Error writing WAV data: %v", err)
	}
	if err := wavEncoder.Close(); err != nil {
		logger.Fatalf("Error closing WAV encoder: %v", err)
	}
}

// append24 appends the low 24 bits of v to buf, little-endian.
func append24(buf []byte, v int32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16))
}

// get24 reads a sign-extended 24-bit little-endian sample at byteOffset.
func get24(buf []byte, byteOffset int) int32 {
	v := int32(buf[byteOffset]) | int32(buf[byteOffset+1])<<8 | int32(buf[byteOffset+2])<<16
	if v&0x800000 != 0 {
		v |= ^0xFFFFFF
	}
	return v
}

// formatSize converts inputSize to a human readable format.
func formatSize(inputSize int) string {
	const unit = 1024
	if inputSize < unit {
		return fmt.Sprintf("%d B", inputSize)
	}
	div, exp := int64(unit), 0
	for n := inputSize / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(inputSize)/float64(div), "KMGTPE"[exp])
}
