package wizard

import (
	"errors"
	"fmt"

	"github.com/DAVIDafergan/tatpro-intake/internal/domain"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid value")
)

// Field names, identical to the JSON document keys.
const (
	FieldYeshivaName      = "yeshivaName"
	FieldManagerName      = "managerName"
	FieldPhoneNumber      = "phoneNumber"
	FieldCampaignDuration = "campaignDuration"
	FieldCampaignGoal     = "campaignGoal"
	FieldAverageStudents  = "averageStudents"
	FieldUsesFieldDevices = "usesFieldDevices"
	FieldDeviceCount      = "deviceCount"
	FieldDeviceType       = "deviceType"
	FieldDeviceProvider   = "deviceProvider"
	FieldClearingCompany  = "clearingCompany"
	FieldSpecialRemarks   = "specialRemarks"
)

var stepFields = map[domain.Step][]string{
	domain.StepInitialDetails:  {FieldYeshivaName, FieldManagerName, FieldPhoneNumber},
	domain.StepCampaignDetails: {FieldCampaignDuration, FieldCampaignGoal, FieldAverageStudents},
	domain.StepClearingDetails: {FieldUsesFieldDevices, FieldDeviceCount, FieldDeviceType, FieldDeviceProvider, FieldClearingCompany},
	domain.StepSpecialRemarks:  {FieldSpecialRemarks},
}

// StepFields lists the fields entered on step, in display order.
func StepFields(step domain.Step) []string {
	return append([]string(nil), stepFields[step]...)
}

func fieldPtr(f *domain.FormData, name string) *string {
	switch name {
	case FieldYeshivaName:
		return &f.YeshivaName
	case FieldManagerName:
		return &f.ManagerName
	case FieldPhoneNumber:
		return &f.PhoneNumber
	case FieldCampaignDuration:
		return &f.CampaignDuration
	case FieldCampaignGoal:
		return &f.CampaignGoal
	case FieldAverageStudents:
		return &f.AverageStudents
	case FieldUsesFieldDevices:
		return &f.UsesFieldDevices
	case FieldDeviceCount:
		return &f.DeviceCount
	case FieldDeviceType:
		return &f.DeviceType
	case FieldDeviceProvider:
		return &f.DeviceProvider
	case FieldClearingCompany:
		return &f.ClearingCompany
	case FieldSpecialRemarks:
		return &f.SpecialRemarks
	}
	return nil
}

func setField(f *domain.FormData, name, value string) error {
	p := fieldPtr(f, name)
	if p == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if name == FieldUsesFieldDevices {
		switch value {
		case domain.DevicesYes, domain.DevicesNo, domain.DevicesUnset:
		default:
			return fmt.Errorf("%w: %s must be yes or no", ErrInvalidValue, name)
		}
	}
	*p = value
	return nil
}

func getField(f domain.FormData, name string) (string, error) {
	p := fieldPtr(&f, name)
	if p == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return *p, nil
}

// Valid reports whether step's required fields are present in f. Steps
// without inputs are always valid.
func Valid(step domain.Step, f domain.FormData) bool {
	switch step {
	case domain.StepInitialDetails:
		return present(f.YeshivaName, f.ManagerName, f.PhoneNumber)
	case domain.StepCampaignDetails:
		return present(f.CampaignDuration, f.CampaignGoal, f.AverageStudents)
	case domain.StepClearingDetails:
		if !present(f.UsesFieldDevices, f.ClearingCompany) {
			return false
		}
		if f.UsesFieldDevices == domain.DevicesYes {
			return present(f.DeviceCount, f.DeviceType, f.DeviceProvider)
		}
		return true
	default:
		return true
	}
}

func present(values ...string) bool {
	for _, v := range values {
		if v == "" {
			return false
		}
	}
	return true
}
