package core

import "strings"

// utf8BOM prefixes exported files so spreadsheet tools decode the Arabic
// header correctly.
const utf8BOM = "\ufeff"

var csvHeader = []string{
	"التاريخ",
	"رقم السند",
	"النوع",
	"المستفيد/المصدر",
	"المبلغ",
	"العملة",
	"ملاحظات",
}

var typeLabels = map[CategoryType]string{
	CategoryFund:         "إيداع",
	CategoryPurchaseType: "فاتورة شراء",
	CategoryVoucherType:  "سند صرف",
}

// TypeLabel returns the Arabic document label for a category type.
func TypeLabel(t CategoryType) string { return typeLabels[t] }

// CSVRow flattens one transaction into the export column order: date,
// document number (or a dash), type label, title, signed amount, currency
// code, notes.
func CSVRow(t UnifiedTransaction) []string {
	doc := t.DocumentNumber
	if doc == "" {
		doc = "-"
	}
	title := t.Title
	if title == "" {
		title = "-"
	}
	return []string{
		string(t.Date),
		doc,
		TypeLabel(t.CategoryType),
		title,
		t.SignedAmount().Decimal(),
		string(t.Currency),
		t.Notes,
	}
}

// ExportCSV renders the filtered, sorted sequence as a UTF-8 CSV document
// with a byte-order mark and an Arabic header row. Fields containing a
// comma, quote or newline are wrapped in quotes with embedded quotes
// doubled, so a standard CSV parser round-trips them unchanged.
func ExportCSV(transactions []UnifiedTransaction) []byte {
	var b strings.Builder
	b.WriteString(utf8BOM)
	writeCSVLine(&b, csvHeader)
	for _, t := range transactions {
		writeCSVLine(&b, CSVRow(t))
	}
	return []byte(b.String())
}

// CSVFilename embeds the active date range, or the export date when the
// range is open-ended.
func CSVFilename(start, end Date) string {
	if start.IsZero() || end.IsZero() {
		return "financial_report_" + string(Today()) + ".csv"
	}
	return "financial_report_" + string(start) + "_" + string(end) + ".csv"
}

func writeCSVLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quoteCSV(f))
	}
	b.WriteByte('\n')
}

func quoteCSV(f string) string {
	if !strings.ContainsAny(f, ",\"\n\r") {
		return f
	}
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}
