package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wasmkit/wazir/ir"
	"github.com/wasmkit/wazir/validate"
	"github.com/wasmkit/wazir/wasm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	instrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browseState int

const (
	stateSelectFunc browseState = iota
	stateShowBody
)

type browseModel struct {
	filename  string
	module    *wasm.Module
	funcs     []*validate.Function
	visible   []int // indices into funcs matching the current filter
	selected  int
	state     browseState
	filter    textinput.Model
	filtering bool
}

func runInteractive(filename string, m *wasm.Module, funcs []*validate.Function) error {
	ti := textinput.New()
	ti.Placeholder = "filter by func index"
	ti.CharLimit = 16
	model := &browseModel{filename: filename, module: m, funcs: funcs, filter: ti}
	model.applyFilter()
	_, err := tea.NewProgram(model).Run()
	return err
}

// applyFilter recomputes the visible function list from the filter box's
// text: a prefix match against each function's decimal index, or every
// function when the box is empty.
func (m *browseModel) applyFilter() {
	m.visible = m.visible[:0]
	query := strings.TrimSpace(m.filter.Value())
	for i := range m.funcs {
		if query == "" || strings.HasPrefix(strconv.Itoa(m.module.NumImportedFuncs+i), query) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = 0
	}
}

func (m *browseModel) Init() tea.Cmd { return nil }

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.filtering {
		switch keyMsg.String() {
		case "esc", "enter":
			m.filtering = false
			m.filter.Blur()
		default:
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(keyMsg)
			m.applyFilter()
			return m, cmd
		}
		return m, nil
	}

	switch keyMsg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "/":
		if m.state == stateSelectFunc {
			m.filtering = true
			return m, m.filter.Focus()
		}
	case "up", "k":
		if m.state == stateSelectFunc && m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.state == stateSelectFunc && m.selected < len(m.visible)-1 {
			m.selected++
		}
	case "enter":
		if m.state == stateSelectFunc && len(m.visible) > 0 {
			m.state = stateShowBody
		}
	case "esc":
		if m.state == stateShowBody {
			m.state = stateSelectFunc
		}
	}
	return m, nil
}

func (m *browseModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("wazirvet"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select a function:")
		if m.filtering || m.filter.Value() != "" {
			b.WriteString("  " + m.filter.View())
		}
		b.WriteString("\n\n")
		for row, funcIdx := range m.visible {
			fn := m.funcs[funcIdx]
			line := fmt.Sprintf("func[%d]: %d instructions", m.module.NumImportedFuncs+funcIdx, fn.Size())
			if row == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		if len(m.visible) == 0 {
			b.WriteString(helpStyle.Render("no functions match the filter"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("up/down select - enter view body - / filter - q quit"))

	case stateShowBody:
		funcIdx := m.visible[m.selected]
		fn := m.funcs[funcIdx]
		b.WriteString(fmt.Sprintf("func[%d] entry sequence:\n\n", m.module.NumImportedFuncs+funcIdx))
		renderSequence(&b, fn, fn.EntrySequence(), 0)
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc back - q quit"))
	}

	return b.String()
}

// renderSequence writes one instruction per line, indenting nested
// sequences (the bodies of Block/Loop/IfElse) one level deeper.
func renderSequence(b *strings.Builder, fn *validate.Function, id ir.SeqID, depth int) {
	indent := strings.Repeat("  ", depth)
	seq := fn.Block(id)
	for _, loc := range seq.Instrs {
		b.WriteString(indent)
		b.WriteString(instrStyle.Render(fmt.Sprintf("%T", loc.Instr)))
		b.WriteString("\n")
		switch v := loc.Instr.(type) {
		case ir.Block:
			renderSequence(b, fn, v.Seq, depth+1)
		case ir.Loop:
			renderSequence(b, fn, v.Seq, depth+1)
		case ir.IfElse:
			renderSequence(b, fn, v.Consequent, depth+1)
			b.WriteString(indent + "  else:\n")
			renderSequence(b, fn, v.Alternate, depth+1)
		}
	}
}
