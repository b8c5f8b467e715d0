package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aptxgo/aptx/pkg/aptx"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	setupLogger()
	os.Exit(m.Run())
}

func execute(t *testing.T, command *cobra.Command, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	command.SetOut(buf)
	command.SetErr(buf)
	command.SetArgs(args)

	err := command.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, rootCmd, "version")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d.%d.%d\n", aptx.Major, aptx.Minor, aptx.Patch), out)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	const n = 200
	pcm := make([]byte, n*12)
	for i := range pcm {
		pcm[i] = byte(i * 13)
	}

	var encoded bytes.Buffer
	runEncode(bytes.NewReader(pcm), &encoded, false)
	assert.NotZero(t, encoded.Len())

	var decoded bytes.Buffer
	runDecode(bytes.NewReader(encoded.Bytes()), &decoded, false, false)
	assert.NotZero(t, decoded.Len())
}

func TestEncodeDecodeRoundTripHD(t *testing.T) {
	const n = 200
	pcm := make([]byte, n*12)
	for i := range pcm {
		pcm[i] = byte(i * 17)
	}

	var encoded bytes.Buffer
	runEncode(bytes.NewReader(pcm), &encoded, true)

	var decoded bytes.Buffer
	runDecode(bytes.NewReader(encoded.Bytes()), &decoded, true, false)
	assert.NotZero(t, decoded.Len())
}

func TestDecodeSyncRecoversFromCorruption(t *testing.T) {
	const n = 80
	pcm := make([]byte, n*12)
	for i := range pcm {
		pcm[i] = byte(i * 19)
	}

	var encoded bytes.Buffer
	runEncode(bytes.NewReader(pcm), &encoded, false)

	corrupted := encoded.Bytes()[:20]
	corrupted = append(corrupted, encoded.Bytes()[21:]...)

	var decoded bytes.Buffer
	runDecode(bytes.NewReader(corrupted), &decoded, false, true)
	assert.NotZero(t, decoded.Len(), "sync mode should recover at least some audio from a single dropped byte")
}

func TestConvertCmdWavToAptxAndBack(t *testing.T) {
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "test.wav")
	aptxPath := filepath.Join(dir, "test.aptx")
	roundTripPath := filepath.Join(dir, "roundtrip.wav")

	writeTestWav(t, wavPath, 2000)

	_, err := execute(t, rootCmd, "convert", wavPath, aptxPath)
	require.NoError(t, err)

	info, err := os.Stat(aptxPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	_, err = execute(t, rootCmd, "convert", aptxPath, roundTripPath)
	require.NoError(t, err)

	info, err = os.Stat(roundTripPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func writeTestWav(t *testing.T, path string, frames int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, 44100, 24, 2, 1)
	data := make([]int, frames*2)
	for i := range data {
		data[i] = (i % 2000) * 100
	}
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{SampleRate: 44100, NumChannels: 2},
		SourceBitDepth: 24,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
}
