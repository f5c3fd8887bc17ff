package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the full screen from the latest ViewModel snapshot.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n\n")

	if status := m.renderStatus(); status != "" {
		b.WriteString(status)
		b.WriteString("\n\n")
	}

	if m.vm.Error != "" {
		b.WriteString(errorStyle.Render(m.vm.Error))
		b.WriteString("\n\n")
	}

	if m.vm.Result != nil {
		b.WriteString(m.renderResult())
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	dot := offlineDotStyle.Render("● offline")
	if m.vm.ServerOnline {
		dot = onlineDotStyle.Render("● online")
	}
	return lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("Smart Librarian"),
		"  ",
		dot,
	)
}

func (m Model) renderInput() string {
	if m.vm.Query == "" {
		return inputStyle.Render(placeholderStyle.Render(m.placeholder))
	}
	return inputStyle.Render(m.vm.Query + "▎")
}

func (m Model) renderStatus() string {
	switch {
	case m.recording:
		return recordingStyle.Render("● Recording... ctrl+t to stop, esc to discard")
	case m.vm.Busy:
		return busyStyle.Render("Thinking...")
	default:
		return ""
	}
}

func (m Model) renderResult() string {
	r := m.vm.Result

	var lines []string
	lines = append(lines, cardTitleStyle.Render(r.Title))

	if r.Metadata != nil {
		var meta []string
		if r.Metadata.Author != "" {
			meta = append(meta, r.Metadata.Author)
		}
		if r.Metadata.Year != 0 {
			meta = append(meta, strconv.Itoa(r.Metadata.Year))
		}
		if len(r.Metadata.Genres) > 0 {
			meta = append(meta, strings.Join(r.Metadata.Genres, ", "))
		}
		if len(meta) > 0 {
			lines = append(lines, metadataStyle.Render(strings.Join(meta, " · ")))
		}
	}

	if r.Blurb != "" {
		lines = append(lines, "", r.Blurb)
	}
	if r.Summary != "" && r.Summary != r.Blurb {
		lines = append(lines, "", r.Summary)
	}

	lines = append(lines, "", metadataStyle.Render("cover: "+m.ctrl.CoverURL(r.Title)))

	if len(r.Candidates) > 0 {
		lines = append(lines, "", metadataStyle.Render("Candidates"))
		for i, c := range r.Candidates {
			label := fmt.Sprintf("%s · %s", c.Title, c.Author)
			if i == m.selected {
				lines = append(lines, selectedCandidateStyle.Render("> "+label))
			} else {
				lines = append(lines, candidateStyle.Render("  "+label))
			}
		}
	}

	return cardStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderFooter() string {
	keys := "enter ask · ctrl+t talk · ctrl+l listen · ctrl+s summary · ctrl+r reindex · ctrl+c quit"
	return footerStyle.Render(keys + "\n" + m.baseURL)
}
