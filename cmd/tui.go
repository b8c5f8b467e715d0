package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aptxgo/aptx/pkg/aptx"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ebitengine/oto/v3"
)

// ==========================================
// =============== Messages =================
// ==========================================
// tickMsg is sent periodically to update the progress bar.
type tickMsg time.Time

// tickCmd is a helper function to create a tickMsg.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// controlsMsg is sent to control various things about the music player.
type controlsMsg int

const (
	start controlsMsg = iota
	stop
)

// sendControlsMsg is a helper function to create a controlsMsg.
func sendControlsMsg(msg controlsMsg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}

// changeSongMsg is sent to change the song.
type changeSongMsg int

const (
	next changeSongMsg = iota
	prev
)

// sendChangeSongMsg is a helper function to create a changeSongMsg.
func sendChangeSongMsg(msg changeSongMsg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}

// ==========================================
// ================ Models ==================
// ==========================================

// model holds the main state of the application.
type model struct {
	// filenames is a list of filenames to play.
	filenames []string
	// currentIndex is the index of the current song playing
	currentIndex int
	// aptxPlayer is the aptX player
	aptxPlayer *aptxPlayer
	// ctx is the Oto context. There can only be one per process.
	ctx *oto.Context
}

// aptxPlayer handles decoding and playing an aptX or aptX HD file and
// showing its progress.
type aptxPlayer struct {
	// pcm holds the fully decoded samples, downsampled to 16 bits for oto.
	pcm []int16
	// player is the Oto player, which does the actually playing of sound.
	player *oto.Player
	// hd records whether this file was aptX HD.
	hd bool
	// startTime is the time when the song started playing.
	startTime time.Time
	// lastPauseTime is the time when the last pause started.
	lastPauseTime time.Time
	// totalPausedTime is the total time spent paused.
	totalPausedTime time.Duration
	// totalLength is the total length of the song.
	totalLength time.Duration
	// filename is the filename of the song being played.
	filename string
	// progress is the progress bubble model.
	progress progress.Model
	// paused is whether the song is paused.
	paused bool
}

// initialModel creates a new model with the given filenames.
func initialModel(filenames []string) *model {
	ctx, ready, err := oto.NewContext(
		&oto.NewContextOptions{
			SampleRate:   44100,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
		})
	if err != nil {
		panic("oto.NewContext failed: " + err.Error())
	}
	<-ready

	m := &model{
		filenames:    filenames,
		currentIndex: 0,
		ctx:          ctx,
	}
	m.aptxPlayer = m.newAptxPlayer(filenames[0])
	return m
}

// newAptxPlayer decodes filename and returns a ready-to-play aptxPlayer.
func (m *model) newAptxPlayer(filename string) *aptxPlayer {
	hd, ok := sniffAptxFile(filename)
	if !ok {
		logger.Fatalf("%s does not look like an aptX or aptX HD stream", filename)
	}

	encoded, err := os.ReadFile(filename)
	if err != nil {
		logger.Fatalf("Error reading aptX file: %v", err)
	}

	ctx := aptx.Init(hd)
	var pcm24 []byte
	remaining := encoded
	for len(remaining) > 0 {
		out, consumed := ctx.Decode(remaining)
		pcm24 = append(pcm24, out...)
		if consumed == 0 {
			logger.Warnf("%s: decoding failed partway through, playing what decoded cleanly", filename)
			break
		}
		remaining = remaining[consumed:]
	}

	pcm := downsampleTo16(pcm24)
	totalLength := time.Duration(len(pcm)/2) * time.Second / 44100

	prog := progress.New(progress.WithGradient(aptxBlue, aptxCyan))
	prog.ShowPercentage = false
	prog.Width = maxWidth

	player := m.ctx.NewPlayer(newPCMReader(pcm))
	return &aptxPlayer{
		filename:    filename,
		pcm:         pcm,
		hd:          hd,
		progress:    prog,
		player:      player,
		totalLength: totalLength,
	}
}

// ==========================================
// ================= Main ===================
// ==========================================
// startTUI is the main entry point for the TUI.
func startTUI(inputFiles []string) {
	p := tea.NewProgram(initialModel(inputFiles))
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(sendControlsMsg(start))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	// Handle terminal resizing
	case tea.WindowSizeMsg:
		m.aptxPlayer.progress.Width = msg.Width - padding*2 - 4
		if m.aptxPlayer.progress.Width > maxWidth {
			m.aptxPlayer.progress.Width = maxWidth
		}
		return m, nil

	// Handle key presses
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, helpKeys.quit):
			if m.aptxPlayer.player.IsPlaying() {
				m.aptxPlayer.player.Close()
			}
			return m, tea.Quit
		case key.Matches(msg, helpKeys.togglePlay):
			var cmd tea.Cmd
			if m.aptxPlayer.player.IsPlaying() {
				cmd = sendControlsMsg(stop)
			} else if m.aptxPlayer.player != nil {
				cmd = sendControlsMsg(start)
			}
			return m, cmd
		case key.Matches(msg, helpKeys.nextSong):
			return m, sendChangeSongMsg(next)
		case key.Matches(msg, helpKeys.previousSong):
			return m, sendChangeSongMsg(prev)
		}
	// Handle requests to change controls (play, pause, etc.)
	case controlsMsg:
		switch msg {
		case start:
			if !m.aptxPlayer.player.IsPlaying() {
				m.aptxPlayer.player.Play()
				m.aptxPlayer.paused = false

				if m.aptxPlayer.startTime.IsZero() {
					m.aptxPlayer.startTime = time.Now()
				} else {
					m.aptxPlayer.totalPausedTime += time.Since(m.aptxPlayer.lastPauseTime)
					m.aptxPlayer.lastPauseTime = time.Time{}
				}
				return m, tickCmd()
			}
		case stop:
			m.aptxPlayer.player.Pause()
			m.aptxPlayer.lastPauseTime = time.Now()
			m.aptxPlayer.paused = true
		}
	// Handle requests to change song (prev, next, etc.)
	case changeSongMsg:
		switch msg {
		case next:
			m = adjacentSong(m, 1)
			return m, sendControlsMsg(start)
		case prev:
			m = adjacentSong(m, -1)
			return m, sendControlsMsg(start)
		}
	// Update the progress. This is called periodically, so also handle songs that are over.
	case tickMsg:
		if !m.aptxPlayer.player.IsPlaying() && !m.aptxPlayer.paused {
			return m, sendChangeSongMsg(next)
		}
		if m.aptxPlayer.player.IsPlaying() {
			elapsed := time.Since(m.aptxPlayer.startTime) - m.aptxPlayer.totalPausedTime
			newPercent := elapsed.Seconds() / m.aptxPlayer.totalLength.Seconds()
			cmd := m.aptxPlayer.progress.SetPercent(newPercent)
			return m, tea.Batch(cmd, tickCmd())
		} else if m.aptxPlayer.progress.Percent() >= 1.0 {
			return m, tea.Batch(sendChangeSongMsg(next))
		}

	case progress.FrameMsg:
		progressModel, cmd := m.aptxPlayer.progress.Update(msg)
		m.aptxPlayer.progress = progressModel.(progress.Model)
		return m, cmd

	}
	return m, nil
}

// adjacentSong changes to the song at currentIndex+step, wrapping around.
func adjacentSong(m model, step int) model {
	m.aptxPlayer.player.Close()

	nextIndex := (m.currentIndex + step + len(m.filenames)) % len(m.filenames)
	nextFile := m.filenames[nextIndex]

	m.aptxPlayer = m.newAptxPlayer(nextFile)
	m.currentIndex = nextIndex

	return m
}

// ==========================================
// ================= View ===================
// ==========================================
// View renders the current state of the application.
func (m model) View() string {
	pad := strings.Repeat(" ", 2)
	variant := "aptX"
	if m.aptxPlayer.hd {
		variant = "aptX HD"
	}
	statusLine := "Press 'p' to pause/play, up/down for prev/next, 'q' to quit."
	return fmt.Sprintf("\nPlaying (%s): %s (index: %v)\n\n%s%s\n\n%s%s\n", variant, m.aptxPlayer.filename, m.currentIndex, pad, m.aptxPlayer.progress.View(), pad, statusLine)
}
