package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"reelgen/internal/slideshow"
)

// Phase row keys, in display order.
const (
	RowRender = "render"
	RowAudio  = "audio"
	RowUpload = "upload"
)

// GenerationColumns is the table layout used by GenerationReporter.
var GenerationColumns = []Column{
	{Header: "PHASE", Width: 8},
	{Header: "STATUS", Width: 10},
	{Header: "DETAIL", Width: 48},
}

// NewGenerationModel returns a progress model pre-populated with one row
// per phase of a generation run.
func NewGenerationModel(title string) ProgressModel {
	m := NewProgressModel(title, GenerationColumns)
	m.AddRow(RowRender, []string{"render", "pending", ""})
	m.AddRow(RowAudio, []string{"audio", "pending", ""})
	m.AddRow(RowUpload, []string{"upload", "pending", ""})
	return m
}

// GenerationReporter adapts bubbletea message sending to the
// slideshow.ProgressReporter interface. Frame updates are throttled to
// about one per percent of the render.
type GenerationReporter struct {
	send func(tea.Msg)
	last int
}

// NewGenerationReporter wraps send.
func NewGenerationReporter(send func(tea.Msg)) *GenerationReporter {
	return &GenerationReporter{send: send}
}

// Phase implements slideshow.ProgressReporter.
func (r *GenerationReporter) Phase(state slideshow.State, detail string) {
	switch state {
	case slideshow.GeneratingFrames:
		r.update(RowRender, "running", detail)
	case slideshow.Encoded:
		r.update(RowRender, "encoded", detail)
	case slideshow.AudioAttached:
		r.update(RowAudio, "attached", detail)
	case slideshow.Uploaded:
		r.update(RowUpload, "uploaded", detail)
	case slideshow.Aborted:
		r.update(RowRender, "aborted", detail)
	}
}

// Frame implements slideshow.ProgressReporter.
func (r *GenerationReporter) Frame(done, total int) {
	step := max(1, total/100)
	if done != total && done-r.last < step {
		return
	}
	r.last = done
	r.send(FrameMsg{Done: done, Total: total})
}

func (r *GenerationReporter) update(key, status, detail string) {
	r.send(RowUpdateMsg{
		Key:    key,
		Fields: map[string]string{"STATUS": status, "DETAIL": detail},
	})
}
