package pricing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Catalog keys. English output is the key itself.
const (
	msgNotApplicable = "N/A"
	msgContactUs     = "contact us"
	msgCustomQuote   = "custom quote"
)

func init() {
	message.SetString(language.Hebrew, msgContactUs, "צור קשר")
	message.SetString(language.Hebrew, msgCustomQuote, "התאמה אישית")
}

// Label renders the quote for the price summary screen.
func (p Price) Label(tag language.Tag) string {
	pr := message.NewPrinter(tag)
	switch p.Kind {
	case Fixed:
		return pr.Sprintf("%s%d", p.Currency, p.Amount)
	case ContactUs:
		return pr.Sprintf(msgContactUs)
	default:
		return pr.Sprintf(msgNotApplicable)
	}
}

// StoredLabel renders the quote as it is recorded on a submission.
// A contact quote is stored as a custom-quote marker rather than a price.
func (p Price) StoredLabel(tag language.Tag) string {
	if p.Kind == ContactUs {
		return message.NewPrinter(tag).Sprintf(msgCustomQuote)
	}
	return p.Label(tag)
}
