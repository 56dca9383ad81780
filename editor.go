package main

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"flowire/connect"
	"flowire/engine"
	"flowire/geom"
	"flowire/gesture"
	"flowire/workflow"
)

var (
	modeStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("63")).Padding(0, 1)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
)

func newModel(cfg *Config, log logrus.FieldLogger, doc workflow.Workflow, filename string, platform gesture.Platform) model {
	h := &host{log: log}
	e := engine.New(h, doc, engine.Options{
		Canvas:    cfg.CanvasSize(),
		Platform:  platform,
		Logger:    log,
		HitRadius: handleHitRadius,
	})
	input := newTeaSource()
	e.Attach(input)

	return model{
		mode:     ModeNormal,
		engine:   e,
		input:    input,
		host:     h,
		config:   cfg,
		log:      log,
		platform: platform,
		filename: filename,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) canvasHeight() int {
	if m.height < 2 {
		return 1
	}
	return m.height - 1 // status line
}

func (m model) canvasSize() geom.Size {
	return geom.Size{
		W: float64(m.width) * cellWidth,
		H: float64(m.canvasHeight()) * cellHeight,
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.engine.SetCanvasSize(m.canvasSize())
		if !m.sized {
			m.sized = true
			m.engine.ResetView()
		}
		return m, nil

	case tea.MouseMsg:
		m.cursorX, m.cursorY = msg.X, msg.Y
		if msg.Y >= m.canvasHeight() || m.mode == ModeHelp {
			return m, nil
		}
		m.input.Mouse(msg)
		m.checkRequest()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

// checkRequest opens the picker when a dropped wire asked for a node.
func (m *model) checkRequest() {
	req, ok := m.host.takeRequest()
	if !ok {
		return
	}
	m.pickAt = placeForRequest(req)
	m.fromDraft = true
	m.mode = ModePicker
}

// placeForRequest positions the new node so the handle the wire attaches to
// sits on the drop point.
func placeForRequest(req connect.NodeRequest) geom.Point {
	p := req.Position.Sub(geom.Pt(0, geom.NodeHeight/2))
	if req.SourceType == workflow.Input {
		p.X -= geom.NodeWidth
	}
	return p
}

func (m model) cursorWorld() geom.Point {
	return m.engine.Viewport().ScreenToWorld(cellToScreen(m.cursorX, m.cursorY))
}

func (m model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeHelp:
		m.mode = ModeNormal
		return m, nil
	case ModePicker:
		return m.handlePickerKey(key)
	}

	m.errorMessage = ""
	m.successMessage = ""

	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?":
		m.mode = ModeHelp
	case "esc":
		m.input.Cancel()
	case "+", "=":
		m.engine.ZoomIn()
	case "-", "_":
		m.engine.ZoomOut()
	case "0":
		m.engine.ResetView()
	case "f":
		m.engine.FitView(fitPadding)
	case "n":
		m.pickAt = m.cursorWorld().Sub(geom.Pt(geom.NodeWidth/2, geom.NodeHeight/2))
		m.fromDraft = false
		m.mode = ModePicker
	case "d":
		m.deleteAtCursor()
	case "y":
		if err := copyDocument(m.engine.Workflow()); err != nil {
			m.errorMessage = err.Error()
		} else {
			m.successMessage = "copied document"
		}
	case "P":
		m.paste()
	case "e":
		m.export(".png")
	case "E":
		m.export(".json")
	case "T":
		m.export(".txt")
	case "t":
		m.togglePlatform()
	default:
		if isNavigationKey(key) {
			m.handlePan(key, m.getMoveSpeed(key))
		}
	}
	return m, nil
}

func (m model) handlePickerKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "q":
		if m.fromDraft {
			m.engine.SetCancel(true)
		}
		m.mode = ModeNormal
	case "ctrl+c":
		return m, tea.Quit
	default:
		if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(nodeTypes) {
			m.addNode(nodeTypes[key[0]-'1'])
			m.mode = ModeNormal
		}
	}
	return m, nil
}

func (m *model) addNode(t nodeType) {
	n := workflow.Node{
		ID:       uuid.NewString(),
		Type:     t.Name,
		Position: m.pickAt,
		Data: workflow.NodeData{
			Title:   t.Title,
			Inputs:  t.Inputs,
			Outputs: t.Outputs,
		},
	}
	if err := m.engine.AddNode(n); err != nil {
		m.errorMessage = err.Error()
		if m.fromDraft {
			m.engine.SetCancel(true)
		}
		return
	}
	m.successMessage = fmt.Sprintf("added %s", t.Title)
}

func (m *model) deleteAtCursor() {
	id, ok := m.engine.NodeAt(cellToScreen(m.cursorX, m.cursorY))
	if !ok {
		m.errorMessage = "no node under cursor"
		return
	}
	if err := m.engine.DeleteNode(id); err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.successMessage = "deleted node"
}

func (m *model) paste() {
	doc, err := pasteDocument(m.log)
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.engine.SetWorkflow(doc)
	m.engine.FitView(fitPadding)
	m.successMessage = fmt.Sprintf("pasted %d nodes, %d wires", doc.Len(), len(doc.Wires()))
}

func (m model) exportBase() string {
	if m.filename == "" {
		return defaultFile
	}
	base := filepath.Base(m.filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (m *model) export(ext string) {
	path := m.config.GetSavePath(m.exportBase() + ext)
	doc := m.engine.Workflow()

	var err error
	switch ext {
	case ".png":
		err = ExportPNG(doc, path, m.config.Export.Scale)
	case ".json":
		err = ExportJSON(doc, path)
	case ".txt":
		err = ExportTXT(doc, path, m.width, m.canvasHeight())
	}
	if err != nil {
		m.log.WithError(err).WithField("path", path).Warn("export failed")
		m.errorMessage = err.Error()
		return
	}
	m.log.WithField("path", path).Info("exported")
	m.successMessage = "exported " + path
}

func (m *model) togglePlatform() {
	if m.platform == gesture.PlatformTrackpad {
		m.platform = gesture.PlatformMouse
	} else {
		m.platform = gesture.PlatformTrackpad
	}
	m.engine.SetPlatform(m.platform)
	m.successMessage = "input: " + m.platform.String()
}

func (m model) View() string {
	if m.mode == ModeHelp {
		return m.helpView()
	}
	width := m.width
	if width < 1 {
		width = 1
	}
	var b strings.Builder
	for _, line := range Render(m.engine, width, m.canvasHeight()) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(m.statusLine())
	return b.String()
}

func (m model) modeString() string {
	switch m.mode {
	case ModePicker:
		return "ADD NODE"
	case ModeHelp:
		return "HELP"
	default:
		return "NORMAL"
	}
}

func (m model) statusLine() string {
	badge := modeStyle.Render(m.modeString())

	var info string
	if m.mode == ModePicker {
		parts := make([]string, len(nodeTypes))
		for i, t := range nodeTypes {
			parts[i] = fmt.Sprintf("[%d] %s", i+1, t.Title)
		}
		info = strings.Join(parts, "  ") + "  esc cancel"
	} else {
		doc := m.engine.Workflow()
		info = fmt.Sprintf("%s | zoom %d%% | %d nodes %d wires | %s",
			m.config.Canvas.Class,
			int(m.engine.Viewport().Scale()*100+0.5),
			doc.Len(), len(doc.Wires()),
			m.engine.ActiveGesture())
		switch {
		case m.errorMessage != "":
			info += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
		case m.successMessage != "":
			info += " | " + successStyle.Render(m.successMessage)
		default:
			info += " | ? for help | q to quit"
		}
	}

	line := lipgloss.JoinHorizontal(lipgloss.Top, badge, statusStyle.Render(info))
	if m.width > 0 {
		line = lipgloss.NewStyle().MaxWidth(m.width).Render(line)
	}
	return line
}

func (m model) helpView() string {
	helpLines := []string{
		"flowire help",
		"============",
		"",
		"Mouse:",
		"  drag canvas          pan",
		"  drag node            move (snaps to neighbours)",
		"  drag handle (o)      draw a wire; drop on empty canvas to add a node",
		"  wheel                zoom at pointer (ctrl/alt: finer)",
		"",
		"Keys:",
		"  hjkl / arrows        pan (shift: faster)",
		"  + / -                zoom in / out",
		"  0                    reset view to the first node",
		"  f                    fit all nodes",
		"  n                    add node at pointer",
		"  d                    delete node at pointer",
		"  esc                  cancel the current gesture",
		"  y / P                copy / paste document JSON",
		"  e / E / T            export PNG / JSON / text",
		"  t                    toggle mouse / trackpad wheel handling",
		"  q                    quit",
		"",
		"Press any key to return.",
	}
	return strings.Join(helpLines, "\n")
}
