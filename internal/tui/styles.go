package tui

import (
	"cycles/internal/game"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22d3ee"))
	moneyStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#facc15"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af"))
	fadedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80"))
	sectionStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#374151")).Padding(0, 1)
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff"))
)

func orbStyle(c game.SocketColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(game.DisplayColor(c)))
}

func highlightStyle(c game.SocketColor) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(game.HighlightColor(c)))
}

func hotbarStyle(c game.SocketColor, selected bool) lipgloss.Style {
	s := lipgloss.NewStyle().Padding(0, 1)
	if selected {
		return s.Bold(true).Foreground(lipgloss.Color("#030712")).Background(lipgloss.Color(game.HighlightColor(c)))
	}
	return s.Foreground(lipgloss.Color(game.DisplayColor(c)))
}

func textStyle(t game.FloatingText) lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Tint))
	if t.Size >= 26 {
		s = s.Bold(true)
	}
	return s
}
