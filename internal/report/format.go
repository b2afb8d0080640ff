package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Tag returns the report's language tag, defaulting to Simplified Chinese
func (r *Report) Tag() language.Tag {
	if r.Language == "" {
		return language.SimplifiedChinese
	}
	tag, err := language.Parse(r.Language)
	if err != nil {
		return language.SimplifiedChinese
	}
	return tag
}

// NumberFormatter formats chart values with locale grouping and at most two
// fraction digits.
type NumberFormatter struct {
	printer *message.Printer
}

// NewNumberFormatter creates a formatter for tag
func NewNumberFormatter(tag language.Tag) *NumberFormatter {
	return &NumberFormatter{printer: message.NewPrinter(tag)}
}

// Format renders v, e.g. 1500 -> "1,500" and 0.7 -> "0.7"
func (f *NumberFormatter) Format(v float64) string {
	return f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// Percent renders the share of part in total, e.g. "45%"
func (f *NumberFormatter) Percent(part, total float64) string {
	if total == 0 {
		return "0%"
	}
	return f.printer.Sprint(number.Percent(part/total, number.MaxFractionDigits(1)))
}

// Labels are the fixed captions printed around report content
type Labels struct {
	Period     string
	ReportDate string
	Contents   string
	Item       string
	Value      string
	Share      string
	Change     string
}

var (
	chineseLabels = Labels{
		Period:     "报告期间",
		ReportDate: "报告日期",
		Contents:   "目录",
		Item:       "项目",
		Value:      "数值",
		Share:      "占比",
		Change:     "变化",
	}
	englishLabels = Labels{
		Period:     "Period",
		ReportDate: "Report date",
		Contents:   "Contents",
		Item:       "Item",
		Value:      "Value",
		Share:      "Share",
		Change:     "Change",
	}
)

// LabelsFor returns Chinese captions for zh tags and English otherwise
func LabelsFor(tag language.Tag) Labels {
	if base, _ := tag.Base(); base.String() == "zh" {
		return chineseLabels
	}
	return englishLabels
}
