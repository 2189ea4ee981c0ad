package panels

import (
	"fmt"
	"strings"

	"legend-matcher/internal/legend"
	"legend-matcher/internal/library"
	"legend-matcher/internal/matching"
)

// matchLabel formats a pending match for the match list.
func matchLabel(m legend.SymbolMatch) string {
	return fmt.Sprintf("%s  (%s ↔ %s)", m.SymbolName, m.SymbolID, m.TextID)
}

// entryLabel formats a library entry for the library list.
func entryLabel(e *library.Entry) string {
	if len(e.Tags) == 0 {
		return fmt.Sprintf("%s [%s/%s]", e.Name, e.Category, e.Subcategory)
	}
	return fmt.Sprintf("%s [%s/%s] #%s", e.Name, e.Category, e.Subcategory, strings.Join(e.Tags, " #"))
}

// selectionText describes the current selection for the status line.
func selectionText(d *legend.Drawing, sel matching.Selection) string {
	if d == nil {
		return "No drawing selected"
	}

	sym := "none"
	if s, ok := d.Symbol(sel.SymbolID); ok {
		sym = fmt.Sprintf("%s (%.0f%%)", s.ID, s.Confidence*100)
	}
	txt := "none"
	if t, ok := d.Text(sel.TextID); ok {
		txt = fmt.Sprintf("%q (%.0f%%)", t.Text, t.Confidence*100)
	}
	return fmt.Sprintf("Symbol: %s\nText: %s", sym, txt)
}

// drawingSummary describes a drawing's recognized regions.
func drawingSummary(d *legend.Drawing) string {
	if d == nil {
		return ""
	}
	syms, texts := d.ConfidenceStats()
	return fmt.Sprintf("%.0f x %.0f px\n%d symbols, mean confidence %.0f%%\n%d texts, mean confidence %.0f%%",
		d.Width, d.Height,
		syms.Count, syms.Mean*100,
		texts.Count, texts.Mean*100)
}

// classified returns m with edited classification fields. Blank name,
// category or subcategory keep their current value; tags are split on commas
// and normalized.
func classified(m legend.SymbolMatch, name, category, subcategory, tags string) legend.SymbolMatch {
	if v := strings.TrimSpace(name); v != "" {
		m.SymbolName = v
	}
	if v := strings.TrimSpace(category); v != "" {
		m.Category = v
	}
	if v := strings.TrimSpace(subcategory); v != "" {
		m.Subcategory = v
	}
	m.Tags = nil
	for _, t := range strings.Split(tags, ",") {
		if t = legend.NormalizeTag(t); t != "" {
			m.Tags = append(m.Tags, t)
		}
	}
	return m
}
