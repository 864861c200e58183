// Package report flattens stored intake documents into the rows shown by the
// admin leads page and the spreadsheet and PDF exports.
package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/DAVIDafergan/tatpro-intake/internal/cache"
	"github.com/DAVIDafergan/tatpro-intake/internal/domain"
	"github.com/DAVIDafergan/tatpro-intake/internal/pricing"
)

// Column keys double as the English headers.
var columns = []string{
	"Received",
	"Yeshiva",
	"Manager",
	"Phone",
	"Duration (days)",
	"Goal",
	"Students",
	"Field devices",
	"Clearing company",
	"Price",
	"Remarks",
}

func init() {
	he := map[string]string{
		"Received":         "התקבל",
		"Yeshiva":          "שם הישיבה",
		"Manager":          "מנהל",
		"Phone":            "טלפון",
		"Duration (days)":  "משך (ימים)",
		"Goal":             "יעד",
		"Students":         "תלמידים",
		"Field devices":    "מכשירי שטח",
		"Clearing company": "חברת סליקה",
		"Price":            "מחיר",
		"Remarks":          "הערות",
		"Intake leads":     "לידים",
	}
	for k, v := range he {
		message.SetString(language.Hebrew, k, v)
	}
}

// Lead is one rendered row. Cells line up with Headers.
type Lead struct {
	ID    string
	Cells []string
}

// Headers returns the localized column titles.
func Headers(tag language.Tag) []string {
	p := message.NewPrinter(tag)
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = p.Sprintf(c)
	}
	return out
}

// Title is the localized report title.
func Title(tag language.Tag) string { return message.NewPrinter(tag).Sprintf("Intake leads") }

// Leads renders docs in the order given. The recorded calculatedPrice wins;
// documents without one are quoted from their goal against table.
func Leads(docs []domain.StoredDocument, table *pricing.Table, tag language.Tag) []Lead {
	if table == nil {
		table = pricing.Default()
	}
	out := make([]Lead, 0, len(docs))
	for _, d := range docs {
		price := d.String("calculatedPrice")
		if price == "" {
			price = table.Quote(d.String("campaignGoal")).StoredLabel(tag)
		}
		out = append(out, Lead{
			ID: d.ID,
			Cells: []string{
				received(d, tag),
				d.String("yeshivaName"),
				d.String("managerName"),
				d.String("phoneNumber"),
				d.String("campaignDuration"),
				d.String("campaignGoal"),
				d.String("averageStudents"),
				devices(d),
				d.String("clearingCompany"),
				price,
				d.String("specialRemarks"),
			},
		})
	}
	return out
}

// received prefers the client's own timestamp string, as the admin list does.
func received(d domain.StoredDocument, tag language.Tag) string {
	if ts := d.String("timestamp"); ts != "" {
		return ts
	}
	if d.CreatedAt.IsZero() {
		return ""
	}
	return cache.FormatTimestamp(d.CreatedAt.UTC(), tag)
}

func devices(d domain.StoredDocument) string {
	if d.String("usesFieldDevices") != domain.DevicesYes {
		return d.String("usesFieldDevices")
	}
	s := d.String("deviceCount")
	if t := d.String("deviceType"); t != "" {
		s += " " + t
	}
	if p := d.String("deviceProvider"); p != "" {
		s += " (" + p + ")"
	}
	return s
}
