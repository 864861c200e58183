package handlers

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Page text keys. English output is the key itself.
const (
	textAdminAccess   = "Admin access"
	textEnter         = "Enter"
	textNoLeads       = "No leads yet."
	textConfirmDelete = "Delete this lead?"
	textNoBuild       = "The client build was not found. Set STATIC_DIR to the built app."
	textWrongCode     = "Wrong access code."
	textLoginFailed   = "Login failed, try again."
	textBadRequest    = "Invalid request."
)

func init() {
	for k, v := range map[string]string{
		textAdminAccess:   "כניסת מנהל",
		textEnter:         "כניסה",
		textNoLeads:       "אין לידים עדיין.",
		textConfirmDelete: "למחוק את הליד?",
		textNoBuild:       "לא נמצאה גרסת לקוח. הגדירו STATIC_DIR לתיקיית האפליקציה.",
		textWrongCode:     "קוד גישה שגוי.",
		textLoginFailed:   "תקלה באימות, נסו שוב.",
		textBadRequest:    "בקשה לא תקינה.",
	} {
		message.SetString(language.Hebrew, k, v)
	}
}

func (h *Handler) text(key string) string {
	return message.NewPrinter(h.tag).Sprintf(key)
}
