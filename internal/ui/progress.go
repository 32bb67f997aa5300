package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/kenki-os/kenkictl/internal/artifact"
)

// ErrInterrupted is returned when the operator aborts a download from
// the progress view. Deliberate, so never worth a retry.
var ErrInterrupted = errors.New("download interrupted")

type progressMsg struct {
	done  uint64
	total uint64
}

type downloadDoneMsg struct {
	err error
}

type downloadModel struct {
	name     string
	bar      progress.Model
	done     uint64
	total    uint64
	err      error
	finished bool
}

func newDownloadModel(name string) downloadModel {
	return downloadModel{
		name: name,
		bar:  progress.New(progress.WithDefaultGradient()),
	}
}

func (m downloadModel) Init() tea.Cmd { return nil }

func (m downloadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		width := msg.Width - 24
		if width > 10 {
			m.bar.Width = width
		}
		return m, nil
	case progressMsg:
		m.done, m.total = msg.done, msg.total
		return m, nil
	case downloadDoneMsg:
		m.err = msg.err
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = ErrInterrupted
			m.finished = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m downloadModel) View() string {
	if m.finished {
		if m.err != nil {
			return errorStyle.Render("download failed: "+m.err.Error()) + "\n"
		}
		return successStyle.Render(fmt.Sprintf("downloaded %s (%s)", m.name, humanize.Bytes(m.total))) + "\n"
	}

	ratio := 0.0
	if m.total > 0 {
		ratio = float64(m.done) / float64(m.total)
	}
	return fmt.Sprintf("%s\n%s %s\n",
		titleStyle.Render("Downloading "+m.name),
		m.bar.ViewAs(ratio),
		dimStyle.Render(fmt.Sprintf("%s / %s", humanize.Bytes(m.done), humanize.Bytes(m.total))))
}

// RunDownload executes fetch while rendering progress. Interactive
// terminals get a live progress bar; otherwise a line is printed at
// each 10% boundary so CI logs stay readable.
//
// fetch runs with a context derived from ctx that is canceled as soon
// as the progress view exits, and RunDownload does not return until the
// fetch goroutine has stopped writing. Bubbletea's raw terminal mode
// swallows SIGINT, so a ctrl+c quit must propagate through this
// cancellation; without it an aborted transfer would keep appending to
// the partial file behind the caller's back.
func RunDownload(ctx context.Context, name string, fetch func(ctx context.Context, progress artifact.ProgressFunc) error) error {
	if !IsInteractive() {
		return runDownloadPlain(ctx, name, fetch)
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := tea.NewProgram(newDownloadModel(name))

	fetchDone := make(chan error, 1)
	go func() {
		err := fetch(fetchCtx, func(done, total uint64) {
			prog.Send(progressMsg{done: done, total: total})
		})
		fetchDone <- err
		prog.Send(downloadDoneMsg{err: err})
	}()

	final, err := prog.Run()
	cancel()
	fetchErr := <-fetchDone
	if err != nil {
		return fmt.Errorf("progress display failed: %w", err)
	}
	if m, ok := final.(downloadModel); ok && m.err != nil {
		return m.err
	}
	return fetchErr
}

func runDownloadPlain(ctx context.Context, name string, fetch func(ctx context.Context, progress artifact.ProgressFunc) error) error {
	fmt.Printf("downloading %s...\n", name)
	lastDecile := -1
	return fetch(ctx, func(done, total uint64) {
		if total == 0 {
			return
		}
		decile := int(done * 10 / total)
		if decile > lastDecile {
			lastDecile = decile
			fmt.Printf("  %d%% (%s / %s)\n", decile*10, humanize.Bytes(done), humanize.Bytes(total))
		}
	})
}
