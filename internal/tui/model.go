// Package tui is the terminal front end for a local session: it renders
// rings, the hotbar, the shop and floating texts, and turns key presses
// into session calls.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cycles/internal/game"
	"cycles/internal/script"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	frameEvery    = time.Second / 30
	barWidth      = 32
	statusSeconds = 2.0
	feedSize      = 12
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type Options struct {
	// Record, when set, receives every accepted player action.
	Record *script.Script
	Logger *slog.Logger
}

type Model struct {
	session *game.Session
	log     *slog.Logger
	record  *script.Script
	feed    *feed
	keys    keyMap
	help    help.Model

	snap   game.Snapshot
	clock  float64
	last   time.Time
	paused bool

	ring     int
	socket   int
	color    game.SocketColor
	offer    int
	status   string
	statusOK bool
	statusAt float64
	width    int
}

func New(s *game.Session, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	f := newFeed(feedSize)
	s.Subscribe(f)
	m := &Model{
		session: s,
		log:     logger,
		record:  opts.Record,
		feed:    f,
		keys:    defaultKeyMap(),
		help:    help.New(),
		clock:   s.Now(),
		color:   game.ColorBlue,
	}
	m.refresh()
	return m
}

func (m *Model) Init() tea.Cmd {
	m.last = time.Now()
	return tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		now := time.Time(msg)
		if !m.paused && !m.last.IsZero() {
			m.clock += now.Sub(m.last).Seconds()
		}
		m.last = now
		m.advance(m.clock)
		return m, tick()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) advance(now float64) {
	if err := m.session.Tick(now); err != nil {
		m.log.Error("tick failed", slog.Any("err", err))
		m.flash(err.Error(), false)
	}
	m.refresh()
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
	case key.Matches(msg, m.keys.Left):
		m.moveSocket(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveSocket(1)
	case key.Matches(msg, m.keys.Up):
		m.moveRing(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveRing(1)
	case key.Matches(msg, m.keys.Color):
		m.pickColor(msg.String())
	case key.Matches(msg, m.keys.Paint):
		m.paint(false)
	case key.Matches(msg, m.keys.Clear):
		m.paint(true)
	case key.Matches(msg, m.keys.ShopPrev):
		m.moveOffer(-1)
	case key.Matches(msg, m.keys.ShopNext):
		m.moveOffer(1)
	case key.Matches(msg, m.keys.Buy):
		m.buy()
	}
	return m, nil
}

func (m *Model) refresh() {
	m.snap = m.session.Snapshot()
	m.clamp()
}

func (m *Model) clamp() {
	m.ring = clampIndex(m.ring, len(m.snap.Rings))
	if len(m.snap.Rings) > 0 {
		m.socket = clampIndex(m.socket, len(m.snap.Rings[m.ring].Sockets))
	}
	m.offer = clampIndex(m.offer, len(m.snap.Offers))
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (m *Model) moveSocket(d int) {
	if len(m.snap.Rings) == 0 {
		return
	}
	n := len(m.snap.Rings[m.ring].Sockets)
	m.socket = ((m.socket+d)%n + n) % n
}

func (m *Model) moveRing(d int) {
	m.ring = clampIndex(m.ring+d, len(m.snap.Rings))
	m.clamp()
}

func (m *Model) moveOffer(d int) {
	n := len(m.snap.Offers)
	if n == 0 {
		return
	}
	m.offer = ((m.offer+d)%n + n) % n
}

func (m *Model) pickColor(k string) {
	for _, p := range m.snap.Palette {
		if fmt.Sprint(p.Hotkey) == k {
			m.color = p.Color
			return
		}
	}
	m.flash("color locked", false)
}

func (m *Model) paint(remove bool) {
	if len(m.snap.Rings) == 0 {
		return
	}
	r := m.snap.Rings[m.ring]
	in := game.SocketColorInput{Ring: r.ID, Socket: m.socket, Color: m.color, Remove: remove}
	if err := m.session.SetSocketColor(in); err != nil {
		m.flash(err.Error(), false)
		return
	}
	if m.record != nil {
		cmd := script.Command{At: m.session.Now(), Action: script.ActionColor, Ring: r.ID, Socket: m.socket, Color: m.color}
		if remove {
			cmd.Action = script.ActionClear
			cmd.Color = game.ColorNone
		}
		m.record.Push(cmd)
	}
	m.refresh()
}

func (m *Model) buy() {
	if len(m.snap.Offers) == 0 {
		return
	}
	o := m.snap.Offers[m.offer]
	err := m.session.Purchase(game.Purchase{Upgrade: o.Upgrade, Cost: o.Cost})
	switch {
	case errors.Is(err, game.ErrInsufficientFunds):
		m.flash("can't afford", false)
		return
	case err != nil:
		m.flash(err.Error(), false)
		return
	}
	if m.record != nil {
		u := o.Upgrade
		m.record.Push(script.Command{At: m.session.Now(), Action: script.ActionBuy, Upgrade: &u})
	}
	m.flash("bought "+o.Upgrade.Description(), true)
	m.refresh()
}

func (m *Model) flash(msg string, ok bool) {
	m.status = msg
	m.statusOK = ok
	m.statusAt = m.clock
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")
	for i, r := range m.snap.Rings {
		b.WriteString(m.ringView(i, r))
		b.WriteString("\n")
	}
	left := sectionStyle.Render(m.hotbarView())
	right := sectionStyle.Render(m.shopView())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	b.WriteString("\n")
	if texts := m.feedView(); texts != "" {
		b.WriteString(texts)
		b.WriteString("\n")
	}
	if m.status != "" && m.clock-m.statusAt <= statusSeconds {
		if m.statusOK {
			b.WriteString(okStyle.Render(m.status))
		} else {
			b.WriteString(fadedStyle.Inherit(errorStyle).Render(m.status))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) header() string {
	w := m.snap.Wallet
	parts := []string{
		titleStyle.Render("cycles"),
		moneyStyle.Render("$" + w.AmountText),
		labelStyle.Render("pending $" + w.PendingText),
		labelStyle.Render("cycles " + m.snap.TotalCycles.Scientific()),
		labelStyle.Render(fmt.Sprintf("t=%.1fs", m.snap.Now)),
	}
	if m.paused {
		parts = append(parts, errorStyle.Render("paused"))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) ringView(i int, r game.RingView) string {
	var b strings.Builder
	label := fmt.Sprintf("ring %d (%d,%d)", r.Ordinal, r.Grid.X, r.Grid.Y)
	if i == m.ring {
		b.WriteString(cursorStyle.Render("> " + label))
	} else {
		b.WriteString(labelStyle.Render("  " + label))
	}
	b.WriteString(" ")
	b.WriteString(progressBar(r))
	b.WriteString(" ")
	for _, s := range r.Sockets {
		glyph := "○"
		if s.Color != game.ColorNone {
			glyph = "●"
		}
		st := orbStyle(s.Color)
		if s.Color == game.ColorNone {
			st = labelStyle
		}
		if !s.Ready {
			st = st.Faint(true)
		}
		if i == m.ring && s.Index == m.socket {
			b.WriteString(highlightStyle(s.Color).Render("[") + st.Render(glyph) + highlightStyle(s.Color).Render("]"))
			continue
		}
		b.WriteString(" " + st.Render(glyph) + " ")
	}
	score := fmt.Sprintf("  $%s", r.CycleScore.Scientific())
	if r.CycleMultiplier > 1 {
		score += fmt.Sprintf(" x%g", r.CycleMultiplier)
	}
	b.WriteString(moneyStyle.Render(score))
	b.WriteString(labelStyle.Render(fmt.Sprintf("  #%s", r.CycleCount.Scientific())))
	for _, bonus := range r.PreviousBonuses {
		b.WriteString("  " + lipgloss.NewStyle().Foreground(lipgloss.Color(bonus.Tint())).Render(bonus.Text()))
	}
	if panels := panelRows(r.Panels); panels != "" {
		b.WriteString("\n")
		b.WriteString(panels)
	}
	return b.String()
}

// progressBar marks the sweep and each socket's crossing point.
func progressBar(r game.RingView) string {
	cells := make([]string, barWidth)
	filled := int(r.Progress * barWidth)
	for i := range cells {
		if i < filled {
			cells[i] = "━"
		} else {
			cells[i] = labelStyle.Render("─")
		}
	}
	for _, s := range r.Sockets {
		if s.Color == game.ColorNone {
			continue
		}
		at := int(s.PositionPct*barWidth) - 1
		if at < 0 || at >= barWidth {
			continue
		}
		cells[at] = orbStyle(s.Color).Render("┃")
	}
	return strings.Join(cells, "")
}

func panelRows(panels []game.Panel) string {
	if len(panels) == 0 {
		return ""
	}
	var rows []string
	var row strings.Builder
	for i, p := range panels {
		row.WriteString(orbStyle(p.Color).Render("■"))
		if (i+1)%game.PanelRowSize == 0 || i == len(panels)-1 {
			rows = append(rows, "    "+row.String())
			row.Reset()
		}
	}
	return strings.Join(rows, "\n")
}

func (m *Model) hotbarView() string {
	var keys []string
	var desc string
	for _, p := range m.snap.Palette {
		selected := p.Color == m.color
		keys = append(keys, hotbarStyle(p.Color, selected).Render(fmt.Sprintf("%d %s", p.Hotkey, p.Color)))
		if selected {
			desc = p.Description
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render("hotbar"),
		strings.Join(keys, ""),
		lipgloss.NewStyle().Width(40).Render(desc),
	)
}

func (m *Model) shopView() string {
	lines := []string{labelStyle.Render(fmt.Sprintf("shop (%d locked)", m.snap.PendingUnlocks))}
	if len(m.snap.Offers) == 0 {
		lines = append(lines, fadedStyle.Render("nothing for sale"))
	}
	for i, o := range m.snap.Offers {
		prefix := "  "
		if i == m.offer {
			prefix = "> "
		}
		line := prefix + o.Text
		if !o.Affordable {
			line = fadedStyle.Render(line + "  can't afford")
		} else if i == m.offer {
			line = cursorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) feedView() string {
	texts := m.feed.Live(m.clock)
	if len(texts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(texts))
	for _, e := range texts {
		parts = append(parts, textStyle(*e.Text).Render(e.Text.Text))
	}
	return strings.Join(parts, "  ")
}

// Clock is the world time the model last advanced to.
func (m *Model) Clock() float64 {
	return m.clock
}
