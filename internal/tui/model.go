// Package tui provides the Bubble Tea population model interface.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/greenfly/internal/export"
	"github.com/verte-zerg/greenfly/internal/logging"
	"github.com/verte-zerg/greenfly/internal/model"
	"github.com/verte-zerg/greenfly/internal/sim"
	"github.com/verte-zerg/greenfly/internal/stats"
	"github.com/verte-zerg/greenfly/internal/validate"
)

// Title is the heading of the main menu.
const Title = "Greenfly Population Model Program"

const (
	plotHeight = 10
)

type screen int

const (
	screenMenu screen = iota
	screenOptionsForm
	screenOptionsView
	screenResults
	screenExportPath
	screenExportConfirm
)

const (
	tabGenerations = iota
	tabThousands
	tabOverview
)

type menuItem struct {
	key   string
	label string
}

var menuItems = []menuItem{
	{key: "1", label: "Set starting options"},
	{key: "2", label: "Display starting options"},
	{key: "3", label: "Run model"},
	{key: "4", label: "Export current model data"},
	{key: "0", label: "Exit"},
}

var (
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	menuStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	menuSelected   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	cardStyle    = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Archiver stores completed runs.
type Archiver interface {
	InsertRun(ctx context.Context, opts model.Options, generations []model.Generation) (int64, error)
}

// Config wires the interface to its collaborators.
type Config struct {
	Validation validate.Validation
	// Defaults pre-configures the starting options when non-nil.
	Defaults *model.Options
	// Archive receives every completed run when non-nil.
	Archive   Archiver
	Logger    *slog.Logger
	NewSource func() sim.Source
}

type status struct {
	text  string
	isErr bool
}

// Model implements the Bubble Tea population model UI.
type Model struct {
	validation validate.Validation
	archive    Archiver
	logger     *slog.Logger
	newSource  func() sim.Source

	options    model.Options
	hasOptions bool
	engine     *sim.Engine

	screen    screen
	menuIndex int
	status    status

	rules      []validate.Rule
	formInputs []textinput.Model
	formIndex  int
	formError  string

	tabs         []string
	activeTab    int
	resultsTable table.Model
	viewports    map[int]*viewport.Model

	exportInput textinput.Model
	exportPath  string
	exportError string

	width  int
	height int
}

// NewModel constructs the population model UI.
func NewModel(cfg Config) *Model {
	m := &Model{
		validation: cfg.Validation,
		archive:    cfg.Archive,
		logger:     cfg.Logger,
		newSource:  cfg.NewSource,
		tabs:       []string{"Generations", "Thousands", "Overview"},
	}
	if m.validation == (validate.Validation{}) {
		m.validation = validate.Default()
	}
	if m.logger == nil {
		m.logger = logging.Discard()
	}
	if m.newSource == nil {
		m.newSource = sim.NewSource
	}
	if cfg.Defaults != nil {
		m.options = *cfg.Defaults
		m.hasOptions = true
	}
	m.initForm()
	m.initExportInput()
	m.resultsTable = buildResultsTable(nil, 80, 10)
	m.viewports = map[int]*viewport.Model{}
	for _, tab := range []int{tabThousands, tabOverview} {
		vp := viewport.New(0, 0)
		m.viewports[tab] = &vp
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenOptionsForm:
			return m.updateForm(msg)
		case screenOptionsView:
			m.screen = screenMenu
			return m, nil
		case screenResults:
			return m.updateResults(msg)
		case screenExportPath:
			return m.updateExportPath(msg)
		case screenExportConfirm:
			return m.updateExportConfirm(msg)
		default:
			return m.updateMenu(msg)
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.screen {
	case screenOptionsForm:
		body = m.renderForm()
	case screenOptionsView:
		body = m.renderOptionsView()
	case screenResults:
		body = m.renderResults()
	case screenExportPath:
		body = m.renderExportPath()
	case screenExportConfirm:
		body = m.renderExportConfirm()
	default:
		body = m.renderMenu()
	}
	if m.width == 0 || m.height == 0 {
		return body
	}
	footer := m.renderFooter()
	footerHeight := lipgloss.Height(footer)
	bodyHeight := maxInt(1, m.height-footerHeight)
	return fitLines(body, m.width, bodyHeight) + "\n" + fitLines(footer, m.width, footerHeight)
}

func (m *Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.menuIndex = (m.menuIndex + len(menuItems) - 1) % len(menuItems)
		return m, nil
	case "down", "j":
		m.menuIndex = (m.menuIndex + 1) % len(menuItems)
		return m, nil
	case "q", "esc":
		return m, tea.Quit
	case "enter":
		return m.selectMenu(menuItems[m.menuIndex].key)
	}
	for i, item := range menuItems {
		if strings.EqualFold(msg.String(), item.key) {
			m.menuIndex = i
			return m.selectMenu(item.key)
		}
	}
	return m, nil
}

func (m *Model) selectMenu(key string) (tea.Model, tea.Cmd) {
	m.status = status{}
	switch key {
	case "1":
		return m, m.startForm()
	case "2":
		if !m.requireOptions() {
			return m, nil
		}
		m.screen = screenOptionsView
		return m, nil
	case "3":
		if !m.requireOptions() {
			return m, nil
		}
		m.runModel()
		return m, nil
	case "4":
		if !m.requireModel() {
			return m, nil
		}
		return m, m.startExport()
	case "0":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) requireOptions() bool {
	if !m.hasOptions {
		m.setError("No options have been configured")
		return false
	}
	return true
}

func (m *Model) requireModel() bool {
	if m.engine == nil {
		m.setError("No model has been created")
		return false
	}
	return true
}

func (m *Model) setError(text string) {
	m.status = status{text: text, isErr: true}
}

func (m *Model) setMessage(text string) {
	m.status = status{text: text}
}

func (m *Model) runModel() {
	m.engine = sim.NewEngine(m.options, sim.WithSource(m.newSource()), sim.WithLogger(m.logger))
	m.engine.RunAllGenerations()
	generations := m.engine.Generations()
	m.logger.Info("model run complete", "generations", len(generations)-1)
	m.archiveRun(generations)
	m.activeTab = tabGenerations
	m.screen = screenResults
	m.refreshResults()
}

func (m *Model) archiveRun(generations []model.Generation) {
	if m.archive == nil {
		return
	}
	id, err := m.archive.InsertRun(context.Background(), m.options, generations)
	if err != nil {
		m.logger.Warn("failed to archive run", "error", err)
		m.setError(fmt.Sprintf("failed to archive run: %v", err))
		return
	}
	m.logger.Info("run archived", "id", id)
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	for i := range m.formInputs {
		promptWidth := lipgloss.Width(m.formInputs[i].Prompt)
		m.formInputs[i].Width = maxInt(10, minInt(40, m.width-promptWidth-2))
	}
	promptWidth := lipgloss.Width(m.exportInput.Prompt)
	m.exportInput.Width = maxInt(10, modalInnerWidth(m.width)-promptWidth)
	m.refreshResults()
}

func (m *Model) renderMenu() string {
	lines := []string{
		titleStyle.Render(Title),
		strings.Repeat("-", len(Title)),
		"",
	}
	for i, item := range menuItems {
		line := fmt.Sprintf("%s - %s", item.key, item.label)
		if i == m.menuIndex {
			lines = append(lines, menuSelected.Render("> "+line))
		} else {
			lines = append(lines, menuStyle.Render("  "+line))
		}
	}
	lines = append(lines, "", "Select Option")
	return strings.Join(lines, "\n")
}

func (m *Model) renderOptionsView() string {
	lines := []string{titleStyle.Render("Starting options"), ""}
	optionLines := stats.OptionLines(m.options)
	labelWidth := 0
	for _, line := range optionLines {
		labelWidth = maxInt(labelWidth, lipgloss.Width(line.Label))
	}
	for _, line := range optionLines {
		label := padLine(line.Label, labelWidth)
		lines = append(lines, labelStyle.Render(label)+"  "+line.Value)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderHelp() string {
	switch m.screen {
	case screenOptionsForm:
		return "enter: confirm  tab/shift+tab: move  esc: cancel"
	case screenOptionsView:
		return "any key: back"
	case screenResults:
		return "Nav: left/right  Scroll: up/down/pgup/pgdn  Back: esc/q"
	case screenExportPath:
		return "enter: export  esc: cancel"
	case screenExportConfirm:
		return "y: overwrite  n: choose another path  esc: cancel"
	default:
		return "Select: 0-4 or up/down + enter  Quit: q"
	}
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render(truncateLine(m.renderHelp(), m.width))
	if m.status.text == "" {
		return help
	}
	if m.status.isErr {
		return help + "\n" + errorStyle.Render(wrapWords("ERROR: "+m.status.text, m.width))
	}
	return help + "\n" + messageStyle.Render(wrapWords(m.status.text, m.width))
}

func (m *Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.screen = screenMenu
		return m, nil
	case "left", "h":
		m.moveTab(-1)
		return m, tea.ClearScreen
	case "right", "l":
		m.moveTab(1)
		return m, tea.ClearScreen
	case "g", "home":
		if m.activeTab == tabGenerations {
			m.resultsTable.GotoTop()
		} else {
			m.viewports[m.activeTab].GotoTop()
		}
		return m, nil
	case "G", "end":
		if m.activeTab == tabGenerations {
			m.resultsTable.GotoBottom()
		} else {
			m.viewports[m.activeTab].GotoBottom()
		}
		return m, nil
	}
	var cmd tea.Cmd
	if m.activeTab == tabGenerations {
		m.resultsTable, cmd = m.resultsTable.Update(msg)
		return m, cmd
	}
	vp := m.viewports[m.activeTab]
	*vp, cmd = vp.Update(msg)
	return m, cmd
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabGenerations {
		m.resultsTable.Focus()
	} else {
		m.resultsTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) resultsBodyHeight() int {
	if m.height <= 0 {
		return 20
	}
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	footerHeight := lipgloss.Height(m.renderFooter())
	return maxInt(3, m.height-tabsHeight-1-footerHeight)
}

func (m *Model) refreshResults() {
	if m.engine == nil {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	height := m.resultsBodyHeight()
	generations := m.engine.Generations()
	m.resultsTable = buildResultsTable(generations, width, height)
	if m.activeTab == tabGenerations {
		m.resultsTable.Focus()
	}
	for _, vp := range m.viewports {
		vp.Width = width
		vp.Height = height
	}
	m.viewports[tabThousands].SetContent(renderThousands(generations))
	m.viewports[tabOverview].SetContent(renderOverview(generations, width))
}

func (m *Model) renderResults() string {
	header := padLines(m.renderTabs(), m.width)
	summary := headerStyle.Render(truncateLine(fmt.Sprintf("Results: %d generations, disease trigger %d",
		m.options.Generations, m.options.DiseaseTrigger), m.width))
	var body string
	if m.activeTab == tabGenerations {
		body = tableMutedStyle.Render(m.resultsTable.View())
	} else {
		body = m.viewports[m.activeTab].View()
	}
	return strings.Join([]string{header, summary, body}, "\n")
}

func buildResultsTable(generations []model.Generation, width, height int) table.Model {
	columns := make([]table.Column, len(stats.GenerationHeaders))
	for i, title := range stats.GenerationHeaders {
		columns[i] = table.Column{Title: title, Width: maxInt(10, lipgloss.Width(title))}
	}
	rows := make([]table.Row, 0, len(generations))
	for _, row := range stats.GenerationRows(generations) {
		rows = append(rows, table.Row(row))
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(resultsTableStyles())
	return t
}

func resultsTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func renderThousands(generations []model.Generation) string {
	var buf bytes.Buffer
	if err := stats.RenderGenerationsInThousands(&buf, generations); err != nil {
		return fmt.Sprintf("Failed to render generations: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func renderOverview(generations []model.Generation, width int) string {
	if len(generations) == 0 {
		return "No model has been created."
	}
	summary := renderSummaryCards(stats.Summarize(generations), width)
	curves := renderCurves(generations, width)
	return strings.TrimRight(summary+"\n\n"+curves, "\n")
}

func renderSummaryCards(s stats.Summary, width int) string {
	mean := "-"
	if s.DiseaseGenerations > 0 {
		mean = fmt.Sprintf("%.1f%%", s.MeanDiseaseRate)
	}
	cards := []string{
		metricCard("Final total", fmt.Sprintf("%d", s.FinalTotal)),
		metricCard("Peak total", fmt.Sprintf("%d (gen %d)", s.PeakTotal, s.PeakGeneration)),
		metricCard("Growth", fmt.Sprintf("%+.1f%%", s.GrowthPct())),
		metricCard("Disease gens", fmt.Sprintf("%d of %d", s.DiseaseGenerations, s.Generations)),
		metricCard("Mean disease", mean),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderCurves(generations []model.Generation, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderCurvesWithSize(&buf, generations, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func newPromptInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) initExportInput() {
	m.exportInput = newPromptInput("Enter file path to export to : ")
	m.exportInput.Placeholder = "generations.csv"
}

func (m *Model) startExport() tea.Cmd {
	m.screen = screenExportPath
	m.exportError = ""
	m.exportPath = ""
	return m.exportInput.Focus()
}

func (m *Model) updateExportPath(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.exportInput.Blur()
		m.screen = screenMenu
		return m, nil
	case tea.KeyEnter:
		raw := strings.TrimSpace(m.exportInput.Value())
		if raw == "" {
			m.exportError = "Please enter a path"
			return m, nil
		}
		abs, err := filepath.Abs(raw)
		if err != nil {
			m.exportError = "Invalid path"
			return m, nil
		}
		exists, err := export.Exists(abs)
		if err != nil {
			m.exportError = err.Error()
			return m, nil
		}
		m.exportPath = abs
		m.exportError = ""
		if exists {
			m.exportInput.Blur()
			m.screen = screenExportConfirm
			return m, nil
		}
		m.writeExport(false)
		return m, nil
	}
	var cmd tea.Cmd
	m.exportInput, cmd = m.exportInput.Update(msg)
	return m, cmd
}

func (m *Model) updateExportConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.screen = screenMenu
		return m, nil
	}
	switch strings.ToLower(msg.String()) {
	case "y":
		m.writeExport(true)
		return m, nil
	case "n":
		m.screen = screenExportPath
		return m, m.exportInput.Focus()
	default:
		m.exportError = "Please enter a Y or N"
		return m, nil
	}
}

func (m *Model) writeExport(overwrite bool) {
	m.exportInput.Blur()
	m.screen = screenMenu
	if err := export.WriteCSVFile(m.exportPath, m.engine.Generations(), overwrite); err != nil {
		m.logger.Warn("failed to export generations", "path", m.exportPath, "error", err)
		m.setError(fmt.Sprintf("failed to export generations: %v", err))
		return
	}
	m.logger.Info("generations exported", "path", m.exportPath)
	m.setMessage(fmt.Sprintf("Generations data written to %s", m.exportPath))
	m.exportInput.SetValue("")
}

func (m *Model) renderExportPath() string {
	body := []string{
		cardValueStyle.Render("Export current model data"),
		m.exportInput.View(),
	}
	if m.exportError != "" {
		body = append(body, errorStyle.Render(m.exportError))
	}
	return m.renderModal(body)
}

func (m *Model) renderExportConfirm() string {
	body := []string{
		cardValueStyle.Render("Export current model data"),
		wrapWords(fmt.Sprintf("File already exists at %s, overwrite (Y/N)", m.exportPath), modalInnerWidth(m.width)),
	}
	if m.exportError != "" {
		body = append(body, errorStyle.Render(m.exportError))
	}
	return m.renderModal(body)
}

func (m *Model) renderModal(body []string) string {
	if m.width == 0 || m.height == 0 {
		return strings.Join(body, "\n")
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, maxInt(1, m.height-2), lipgloss.Center, lipgloss.Center, box)
}
