package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// Step identifies a wizard screen. The numeric values are stable; the linear
// flow runs Welcome..Success and Admin sits outside it.
type Step int

const (
	StepWelcome Step = iota
	StepInitialDetails
	StepCampaignDetails
	StepClearingDetails
	StepSpecialRemarks
	StepPriceSummary
	StepSuccess
	StepAdmin
)

// LinearSteps is the step count used by the progress indicator.
const LinearSteps = 6

var stepNames = map[Step]string{
	StepWelcome:         "welcome",
	StepInitialDetails:  "initial-details",
	StepCampaignDetails: "campaign-details",
	StepClearingDetails: "clearing-details",
	StepSpecialRemarks:  "special-remarks",
	StepPriceSummary:    "price-summary",
	StepSuccess:         "success",
	StepAdmin:           "admin",
}

func (s Step) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return "unknown"
}

// Field device usage answers. The empty string means the question is unanswered.
const (
	DevicesYes   = "yes"
	DevicesNo    = "no"
	DevicesUnset = ""
)

// FormData is the mutable wizard state for one session.
// JSON names match the documents the web client posts to /api/submit.
type FormData struct {
	YeshivaName string `json:"yeshivaName"`
	ManagerName string `json:"managerName"`
	PhoneNumber string `json:"phoneNumber"`

	// Numeric-as-text; the goal feeds the price quote.
	CampaignDuration string `json:"campaignDuration"`
	CampaignGoal     string `json:"campaignGoal"`
	AverageStudents  string `json:"averageStudents"`

	UsesFieldDevices string `json:"usesFieldDevices"`
	DeviceCount      string `json:"deviceCount"`
	DeviceType       string `json:"deviceType"`
	DeviceProvider   string `json:"deviceProvider"`
	ClearingCompany  string `json:"clearingCompany"`

	SpecialRemarks string `json:"specialRemarks"`
}

// Submission is one finalized wizard run. It is never mutated after creation.
type Submission struct {
	FormData
	ID              string `json:"id"`
	Timestamp       string `json:"timestamp"`
	CalculatedPrice string `json:"calculatedPrice"`
}

// Document is an arbitrary JSON object accepted by the ingest API.
type Document map[string]any

// Server-assigned document keys.
const (
	KeyID        = "_id"
	KeyCreatedAt = "createdAt"
	KeyUpdatedAt = "updatedAt"
)

// StoredDocument is a persisted Document with its server-assigned metadata.
type StoredDocument struct {
	ID        string
	Body      Document
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Flatten merges the metadata into a copy of the body, the shape the listing
// API returns. Server keys win over any client-supplied keys of the same name.
func (d StoredDocument) Flatten() Document {
	out := make(Document, len(d.Body)+3)
	for k, v := range d.Body {
		out[k] = v
	}
	out[KeyID] = d.ID
	out[KeyCreatedAt] = d.CreatedAt.UTC().Format(time.RFC3339Nano)
	out[KeyUpdatedAt] = d.UpdatedAt.UTC().Format(time.RFC3339Nano)
	return out
}

// String returns the body value under key as text. Strings and numbers are
// rendered; anything else is empty.
func (d StoredDocument) String(key string) string {
	switch v := d.Body[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}
