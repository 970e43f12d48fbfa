package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/storefront/internal/catalog"
	"github.com/five82/storefront/internal/logtail"
	"github.com/five82/storefront/internal/remote"
	"github.com/five82/storefront/internal/state"
)

const (
	headerHeight = 1
	footerHeight = 1
	minPaneWidth = 30
)

func productColumns(width int) []table.Column {
	// Fixed columns: price, stock, reviews
	fixed := 10 + 13 + 8
	flex := max(width-fixed-10, 20)
	nameW := flex * 3 / 5
	return []table.Column{
		{Title: "Name", Width: nameW},
		{Title: "Price", Width: 10},
		{Title: "Category", Width: flex - nameW},
		{Title: "Stock", Width: 13},
		{Title: "Reviews", Width: 8},
	}
}

func (m *Model) applyTableStyles() {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderMuted)).
		BorderBottom(true).
		Foreground(lipgloss.Color(m.theme.Accent)).
		Bold(true)
	s.Cell = s.Cell.Foreground(lipgloss.Color(m.theme.Text))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(m.theme.SelectionText)).
		Background(lipgloss.Color(m.theme.SelectionBg)).
		Bold(false)
	m.products.SetStyles(s)
}

// layout sizes the panes for the current window.
func (m *Model) layout() {
	bodyH := max(m.height-headerHeight-footerHeight, 3)
	tableW := m.width
	if m.width >= 2*minPaneWidth+2 {
		tableW = m.width * 3 / 5
	}
	detailW := max(m.width-tableW, minPaneWidth)

	// Pane borders take two rows and two columns.
	m.products.SetColumns(productColumns(tableW - 2))
	m.products.SetWidth(tableW - 2)
	m.products.SetHeight(bodyH - 2)
	m.detail.Width = detailW - 2
	m.detail.Height = bodyH - 2
	m.logs.Width = m.width - 2
	m.logs.Height = bodyH - 2
	m.refreshDetail()
}

// syncRows rebuilds the table from the current snapshot, keeping the cursor
// on the same product when it is still visible.
func (m *Model) syncRows() {
	visible := m.snapshot.VisibleProducts()
	rows := make([]table.Row, 0, len(visible))
	ids := make([]int, 0, len(visible))
	cursor := 0
	for i, p := range visible {
		category := "-"
		if c, ok := m.snapshot.Tables.Categories.SelectByID(p.CategoryID); ok {
			category = c.Name
		}
		rows = append(rows, table.Row{
			p.Name,
			formatPrice(p.Price),
			category,
			stockLabel(p.InStock),
			fmt.Sprintf("%d", len(p.ReviewIDs)),
		})
		ids = append(ids, p.ID)
		if p.ID == m.selectedID {
			cursor = i
		}
	}
	m.rowIDs = ids
	m.products.SetRows(rows)
	if len(ids) > 0 {
		m.products.SetCursor(cursor)
	}
	m.trackCursor()
}

func (m *Model) trackCursor() {
	idx := m.products.Cursor()
	next := 0
	if idx >= 0 && idx < len(m.rowIDs) {
		next = m.rowIDs[idx]
	}
	if next != m.selectedID {
		m.detail.GotoTop()
	}
	m.selectedID = next
	m.refreshDetail()
}

func (m *Model) refreshDetail() {
	m.detail.SetContent(m.renderDetail())
}

func (m Model) renderMain() string {
	header := m.renderHeader()
	footer := m.renderFooter()
	styles := m.theme.Styles()

	if m.currentView == ViewLogs {
		return lipgloss.JoinVertical(lipgloss.Left, header, styles.PaneFocus.Render(m.logs.View()), footer)
	}

	tablePane, detailPane := styles.PaneFocus, styles.Pane
	if m.focusDetail {
		tablePane, detailPane = styles.Pane, styles.PaneFocus
	}
	left := tablePane.Render(m.products.View())
	body := left
	if m.width >= 2*minPaneWidth+2 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, detailPane.Render(m.detail.View()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// renderHeader renders catalog counts and connection state.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	stats := m.snapshot.Stats()

	parts := []string{styles.Logo.Render("storefront")}
	switch {
	case m.snapshot.IsOffline():
		parts = append(parts, styles.StatusStyle("offline").Render("OFFLINE"))
	case m.snapshot.Query(remote.KeyProducts).Status == state.StatusLoading:
		parts = append(parts, styles.StatusStyle("loading").Render("loading"))
	}
	if n := m.snapshot.Mutation(state.MutationUpdateProduct).InFlight; n > 0 {
		parts = append(parts, styles.StatusStyle("pending").Render(fmt.Sprintf("%d pending", n)))
	}

	parts = append(parts,
		styles.MutedText.Render("Products:")+" "+styles.Text.Render(fmt.Sprintf("%d", stats.Products)),
		styles.MutedText.Render("In stock:")+" "+styles.SuccessText.Render(fmt.Sprintf("%d", stats.InStock)),
		styles.MutedText.Render("Reviews:")+" "+styles.Text.Render(fmt.Sprintf("%d", stats.Reviews)),
	)
	if stats.Reviews > 0 {
		parts = append(parts, styles.MutedText.Render("Avg:")+" "+styles.WarningText.Render(fmt.Sprintf("%.1f", stats.AverageRating)))
	}

	category := "all"
	if id := m.snapshot.SelectedCategory; id != catalog.NoCategory {
		category = fmt.Sprintf("#%d", id)
		if c, ok := m.snapshot.Tables.Categories.SelectByID(id); ok {
			category = c.Name
		}
	}
	parts = append(parts, styles.MutedText.Render("Category:")+" "+styles.AccentText.Render(category))

	if !m.snapshot.LastUpdated.IsZero() {
		parts = append(parts, styles.FaintText.Render(m.snapshot.LastUpdated.Format("15:04:05")))
	}
	return styles.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, styles.AccentText.Render(h.Key)+" "+styles.MutedText.Render(h.Desc))
	}
	line := strings.Join(parts, "  ")

	switch {
	case m.status != "" && m.statusErr:
		line += "  " + styles.DangerText.Render(truncate(m.status, 60))
	case m.status != "":
		line += "  " + styles.InfoText.Render(truncate(m.status, 60))
	case m.snapshot.LastError != nil:
		line += "  " + styles.DangerText.Render("ERROR "+truncate(m.snapshot.LastError.Error(), 60))
	}
	return styles.Footer.Width(m.width).Render(line)
}

// renderDetail renders the selected product with its category and reviews.
func (m Model) renderDetail() string {
	styles := m.theme.Styles()
	if m.selectedID == 0 {
		return styles.FaintText.Render("No product selected")
	}
	d := m.snapshot.ProductWithDetails(m.selectedID)
	if d == nil {
		return styles.FaintText.Render("Product not cached")
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(d.Product.Name))
	b.WriteString("\n")
	b.WriteString(styles.WarningText.Render(formatPrice(d.Product.Price)))
	b.WriteString("  ")
	b.WriteString(styles.StatusStyle(stockLabel(d.Product.InStock)).Render(stockLabel(d.Product.InStock)))
	b.WriteString("\n")
	if d.Category != nil {
		b.WriteString(styles.MutedText.Render("Category: "))
		b.WriteString(styles.AccentText.Render(d.Category.Name))
		b.WriteString("\n")
	}
	if desc := strings.TrimSpace(d.Product.Description); desc != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(max(m.detail.Width, 10)).Render(desc))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.AccentText.Bold(true).Render(fmt.Sprintf("Reviews (%d)", len(d.Reviews))))
	b.WriteString("\n")
	if len(d.Reviews) == 0 {
		b.WriteString(styles.FaintText.Render("No reviews yet"))
		b.WriteString("\n")
	}
	for _, r := range d.Reviews {
		author := "unknown"
		if r.Author != nil {
			author = r.Author.Name
		}
		b.WriteString(styles.WarningText.Render(stars(r.Rating)))
		b.WriteString(" ")
		b.WriteString(styles.Text.Render(author))
		if !r.CreatedAt.IsZero() {
			b.WriteString(" ")
			b.WriteString(styles.FaintText.Render(r.CreatedAt.Format("2006-01-02")))
		}
		b.WriteString("\n")
		if text := strings.TrimSpace(r.Text); text != "" {
			b.WriteString(styles.MutedText.Render("  " + truncate(text, 200)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *Model) setLogContent(msg logLinesMsg) {
	styles := m.theme.Styles()
	if msg.err != nil {
		m.logs.SetContent(styles.DangerText.Render("read log: " + msg.err.Error()))
		return
	}
	if len(msg.lines) == 0 {
		m.logs.SetContent(styles.FaintText.Render("No log lines yet"))
		return
	}
	atBottom := m.logs.AtBottom()
	var b strings.Builder
	for _, line := range msg.lines {
		switch logtail.Classify(line) {
		case logtail.SeverityError:
			b.WriteString(styles.DangerText.Render(line))
		case logtail.SeverityWarn:
			b.WriteString(styles.WarningText.Render(line))
		default:
			b.WriteString(styles.Text.Render(line))
		}
		b.WriteString("\n")
	}
	m.logs.SetContent(b.String())
	if atBottom {
		m.logs.GotoBottom()
	}
}
