// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Openwinch Project

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/openwinch/winchctl/internal/fleet"
	"github.com/openwinch/winchctl/internal/session"
	"github.com/openwinch/winchctl/pkg/mylifter"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const (
	controlTickInterval = 200 * time.Millisecond
	maxControlLog       = 100
)

// Focus states
const (
	focusWinchList = iota
	focusSpeedInput
)

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// winchRow is one fleet entry in the list panel.
type winchRow struct {
	id int
	w  *fleet.Winch
}

// Implement list.Item interface
func (r winchRow) Title() string { return fmt.Sprintf("%d %s", r.id, r.w.Name()) }
func (r winchRow) Description() string {
	s := r.w.Session
	desc := fmt.Sprintf("%s pos=%d", s.State(), s.Position())
	if s.AwaitingOverride() {
		desc += " SOFT LIMIT"
	}
	return desc
}
func (r winchRow) FilterValue() string { return r.w.Name() }

// controlLogEntry is one line in the event log panel.
type controlLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool
}

// controlModel is the Bubble Tea model for the control TUI
type controlModel struct {
	rows      []winchRow
	winchList list.Model

	speedInput   textinput.Model
	focusedField int

	eventLog []controlLogEntry

	width    int
	height   int
	quitting bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type controlTickMsg time.Time

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialControlModel(rows []winchRow) controlModel {
	ti := textinput.New()
	ti.Placeholder = strconv.Itoa(int(cfg.DefaultSpeed))
	ti.CharLimit = 3
	ti.Width = 5

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	winchList := list.New([]list.Item{}, delegate, 34, 10)
	winchList.Title = "Winches"
	winchList.SetShowStatusBar(false)
	winchList.SetShowHelp(false)
	winchList.SetFilteringEnabled(false)

	m := controlModel{
		rows:         rows,
		winchList:    winchList,
		speedInput:   ti,
		focusedField: focusWinchList,
		width:        80,
		height:       24,
	}
	m.refreshList()
	return m
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m controlModel) Init() tea.Cmd {
	return controlTickCmd()
}

func controlTickCmd() tea.Cmd {
	return tea.Tick(controlTickInterval, func(t time.Time) tea.Msg {
		return controlTickMsg(t)
	})
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateListSize()

	case controlTickMsg:
		m.drainEvents()
		m.refreshList()
		return m, controlTickCmd()
	}

	var cmd tea.Cmd
	if m.focusedField == focusSpeedInput {
		m.speedInput, cmd = m.speedInput.Update(msg)
	}
	return m, cmd
}

func (m *controlModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		manager.StopAll(context.Background())
		return m, tea.Quit

	case "tab", "shift+tab":
		if m.focusedField == focusWinchList {
			m.focusedField = focusSpeedInput
			m.speedInput.Focus()
		} else {
			m.focusedField = focusWinchList
			m.speedInput.Blur()
		}
		return m, nil

	case "u":
		m.commandSelected(mylifter.MoveUp, "raising")
		return m, nil

	case "d":
		m.commandSelected(mylifter.MoveDown, "lowering")
		return m, nil

	case "s", " ":
		m.commandSelected(mylifter.MoveStop, "stopped")
		return m, nil

	case "o":
		m.commandSelected(mylifter.MoveOverrideUp, "override up")
		return m, nil

	case "O":
		m.commandSelected(mylifter.MoveOverrideDown, "override down")
		return m, nil

	case "S":
		for _, r := range manager.StopAll(context.Background()) {
			if r.Err != nil {
				m.addLogEntry(fmt.Sprintf("stop winch %d: %v", r.ID, r.Err), true)
			}
		}
		m.addLogEntry("all stop", false)
		return m, nil
	}

	var cmd tea.Cmd
	if m.focusedField == focusSpeedInput {
		m.speedInput, cmd = m.speedInput.Update(msg)
		return m, cmd
	}
	m.winchList, cmd = m.winchList.Update(msg)
	return m, cmd
}

func (m controlModel) View() string {
	if m.quitting {
		return "Stopping winches...\n"
	}

	var s strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	warnStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	errStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	// Header
	s.WriteString(titleStyle.Render("WINCHCTL"))
	s.WriteString(" ")
	s.WriteString(headerStyle.Render("| u=up d=down s=stop o/O=override S=all-stop Tab=speed q=quit"))
	s.WriteString("\n\n")

	// Left: winch list, right: selected winch detail
	leftWidth := 34
	rightWidth := m.width - leftWidth - 6
	if rightWidth < 20 {
		rightWidth = 20
	}

	listStyle := boxStyle.Width(leftWidth)
	if m.focusedField == focusWinchList {
		listStyle = focusedBoxStyle.Width(leftWidth)
	}
	listPanel := listStyle.Render(m.winchList.View())

	detailStyle := boxStyle.Width(rightWidth)
	detailPanel := detailStyle.Render(m.renderDetail(labelStyle, valueStyle, warnStyle))

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, listPanel, " ", detailPanel))
	s.WriteString("\n\n")

	// Speed input
	s.WriteString(labelStyle.Render("Speed %: "))
	if m.focusedField == focusSpeedInput {
		s.WriteString(m.speedInput.View())
	} else {
		val := m.speedInput.Value()
		if val == "" {
			val = m.speedInput.Placeholder
		}
		s.WriteString(fmt.Sprintf("[%s]", val))
	}
	s.WriteString("\n\n")

	// Event log
	s.WriteString(m.renderEventLog(labelStyle, headerStyle, warnStyle, errStyle, boxStyle))

	return s.String()
}

//////////////////////////////////////////////////////////////
// View Helpers
//////////////////////////////////////////////////////////////

func (m controlModel) renderDetail(labelStyle, valueStyle, warnStyle lipgloss.Style) string {
	row := m.selectedRow()
	if row == nil {
		return "No winch selected"
	}
	s := row.w.Session

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Winch:"), row.w.Name()))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("State:"), valueStyle.Render(s.State().String())))
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Position:"), valueStyle.Render(strconv.Itoa(int(s.Position())))))
	if real, err := row.w.RealPosition(); err == nil {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Real:"), valueStyle.Render(fmt.Sprintf("%.2f", real))))
	}
	b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Weight:"), valueStyle.Render(strconv.Itoa(int(s.Weight())))))
	if s.AwaitingOverride() {
		b.WriteString(warnStyle.Render("Soft limit reached: s=stop, o/O=override"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m controlModel) renderEventLog(labelStyle, headerStyle, warnStyle, errStyle, boxStyle lipgloss.Style) string {
	var s strings.Builder
	s.WriteString(labelStyle.Render("EVENTS"))
	s.WriteString("\n")

	logHeight := 8
	if len(m.eventLog) < logHeight {
		logHeight = len(m.eventLog)
	}
	startIdx := len(m.eventLog) - logHeight

	if len(m.eventLog) == 0 {
		s.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			style := warnStyle
			icon := "i"
			if entry.isError {
				style = errStyle
				icon = "x"
			}
			s.WriteString(fmt.Sprintf("%s %s %s\n",
				headerStyle.Render(entry.timestamp.Format("15:04:05.000")),
				style.Render(icon),
				entry.message))
		}
	}
	return boxStyle.Width(m.width - 4).Render(s.String())
}

//////////////////////////////////////////////////////////////
// Commands
//////////////////////////////////////////////////////////////

// commandSelected applies a move code to the currently selected winch at
// the speed from the input field.
func (m *controlModel) commandSelected(code mylifter.MoveCode, what string) {
	row := m.selectedRow()
	if row == nil {
		return
	}

	spd := m.currentSpeed()
	var err error
	switch code {
	case mylifter.MoveStop:
		err = row.w.Session.Stop(context.Background())
	case mylifter.MoveOverrideUp, mylifter.MoveOverrideDown:
		err = row.w.Session.Override(context.Background(), code, spd)
	default:
		err = row.w.Session.Move(context.Background(), code, spd)
	}
	if err != nil {
		m.addLogEntry(fmt.Sprintf("winch %d: %v", row.id, err), true)
		return
	}
	m.addLogEntry(fmt.Sprintf("winch %d: %s", row.id, what), false)
}

func (m *controlModel) currentSpeed() uint8 {
	val := m.speedInput.Value()
	if val == "" {
		return cfg.DefaultSpeed
	}
	spd, err := strconv.Atoi(val)
	if err != nil || spd < 1 || spd > 100 {
		m.addLogEntry(fmt.Sprintf("invalid speed %q, using %d", val, cfg.DefaultSpeed), true)
		return cfg.DefaultSpeed
	}
	return uint8(spd)
}

//////////////////////////////////////////////////////////////
// Helpers
//////////////////////////////////////////////////////////////

// drainEvents pulls pending session events into the log without blocking.
func (m *controlModel) drainEvents() {
	for _, row := range m.rows {
	drain:
		for {
			select {
			case ev := <-row.w.Session.Events():
				isErr := ev.Type != session.EventSoftLimit
				m.addLogEntry(fmt.Sprintf("winch %d: %s at %d", row.id, ev.Type, ev.Position), isErr)
			default:
				break drain
			}
		}
	}
}

func (m *controlModel) addLogEntry(message string, isError bool) {
	m.eventLog = append(m.eventLog, controlLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.eventLog) > maxControlLog {
		m.eventLog = m.eventLog[len(m.eventLog)-maxControlLog:]
	}
}

func (m *controlModel) selectedRow() *winchRow {
	if len(m.rows) == 0 {
		return nil
	}
	idx := m.winchList.Index()
	if idx < 0 || idx >= len(m.rows) {
		return nil
	}
	return &m.rows[idx]
}

func (m *controlModel) refreshList() {
	items := make([]list.Item, len(m.rows))
	for i, r := range m.rows {
		items[i] = r
	}
	m.winchList.SetItems(items)
}

func (m *controlModel) updateListSize() {
	listHeight := m.height / 3
	if listHeight < 5 {
		listHeight = 5
	}
	m.winchList.SetSize(32, listHeight)
}
