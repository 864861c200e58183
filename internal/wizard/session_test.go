package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DAVIDafergan/tatpro-intake/internal/adapters/filekv"
	"github.com/DAVIDafergan/tatpro-intake/internal/admin"
	"github.com/DAVIDafergan/tatpro-intake/internal/cache"
	"github.com/DAVIDafergan/tatpro-intake/internal/domain"
)

type recordingPublisher struct {
	got []domain.Submission
	err error
}

func (p *recordingPublisher) Publish(_ context.Context, s domain.Submission) error {
	p.got = append(p.got, s)
	return p.err
}

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	kv, err := filekv.New(t.TempDir())
	require.NoError(t, err)
	return NewSession(cache.New(kv), admin.NewGate(admin.NewSecretChecker("DA12")), opts...)
}

func fill(t *testing.T, s *Session, values map[string]string) {
	t.Helper()
	for k, v := range values {
		require.NoError(t, s.Set(k, v))
	}
}

var (
	initialDetails = map[string]string{
		FieldYeshivaName: "Ohr", FieldManagerName: "Levi", FieldPhoneNumber: "050-1234567",
	}
	campaignDetails = map[string]string{
		FieldCampaignDuration: "36", FieldCampaignGoal: "320000", FieldAverageStudents: "80",
	}
)

// walkTo fills every earlier step and advances until step is reached.
func walkTo(t *testing.T, s *Session, step domain.Step) {
	t.Helper()
	fill(t, s, initialDetails)
	fill(t, s, campaignDetails)
	fill(t, s, map[string]string{FieldUsesFieldDevices: "no", FieldClearingCompany: "Nedarim"})
	for s.Step() < step {
		require.True(t, s.Advance(), "advance from %v", s.Step())
	}
}

func TestAdvanceRequiresInitialDetails(t *testing.T) {
	s := newTestSession(t)
	require.True(t, s.Advance(), "welcome has no inputs")
	assert.Equal(t, domain.StepInitialDetails, s.Step())

	assert.False(t, s.CanAdvance())
	assert.False(t, s.Advance())
	assert.Equal(t, domain.StepInitialDetails, s.Step())

	fill(t, s, initialDetails)
	assert.True(t, s.Advance())
	assert.Equal(t, domain.StepCampaignDetails, s.Step())
}

func TestAdvanceCampaignDetailsMissingOne(t *testing.T) {
	for missing := range campaignDetails {
		t.Run(missing, func(t *testing.T) {
			s := newTestSession(t)
			walkTo(t, s, domain.StepCampaignDetails)
			require.NoError(t, s.Set(missing, ""))

			assert.False(t, s.Advance())
			assert.Equal(t, domain.StepCampaignDetails, s.Step())
		})
	}
}

func TestClearingDetailsDeviceRules(t *testing.T) {
	s := newTestSession(t)
	walkTo(t, s, domain.StepClearingDetails)

	fill(t, s, map[string]string{
		FieldUsesFieldDevices: "yes", FieldDeviceType: "terminal", FieldDeviceProvider: "Acme",
	})
	assert.False(t, s.Advance(), "device count missing")
	assert.Equal(t, domain.StepClearingDetails, s.Step())

	require.NoError(t, s.Set(FieldUsesFieldDevices, "no"))
	require.NoError(t, s.Set(FieldDeviceType, ""))
	require.NoError(t, s.Set(FieldDeviceProvider, ""))
	assert.True(t, s.Advance(), "device fields not required without devices")
	assert.Equal(t, domain.StepSpecialRemarks, s.Step())
}

func TestValid(t *testing.T) {
	full := domain.FormData{
		YeshivaName: "a", ManagerName: "b", PhoneNumber: "c",
		CampaignDuration: "1", CampaignGoal: "2", AverageStudents: "3",
		UsesFieldDevices: "yes", DeviceCount: "4", DeviceType: "t", DeviceProvider: "p",
		ClearingCompany: "cc",
	}
	tests := []struct {
		name   string
		step   domain.Step
		mutate func(*domain.FormData)
		want   bool
	}{
		{"initial complete", domain.StepInitialDetails, func(*domain.FormData) {}, true},
		{"initial missing phone", domain.StepInitialDetails, func(f *domain.FormData) { f.PhoneNumber = "" }, false},
		{"whitespace counts as present", domain.StepInitialDetails, func(f *domain.FormData) { f.PhoneNumber = " " }, true},
		{"campaign missing goal", domain.StepCampaignDetails, func(f *domain.FormData) { f.CampaignGoal = "" }, false},
		{"clearing devices unset", domain.StepClearingDetails, func(f *domain.FormData) { f.UsesFieldDevices = "" }, false},
		{"clearing company missing", domain.StepClearingDetails, func(f *domain.FormData) { f.UsesFieldDevices = "no"; f.ClearingCompany = "" }, false},
		{"clearing yes missing provider", domain.StepClearingDetails, func(f *domain.FormData) { f.DeviceProvider = "" }, false},
		{"clearing yes complete", domain.StepClearingDetails, func(*domain.FormData) {}, true},
		{"remarks always valid", domain.StepSpecialRemarks, func(f *domain.FormData) { *f = domain.FormData{} }, true},
		{"welcome always valid", domain.StepWelcome, func(f *domain.FormData) { *f = domain.FormData{} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := full
			tt.mutate(&f)
			assert.Equal(t, tt.want, Valid(tt.step, f))
		})
	}
}

func TestAdvanceClampsAtSummaryAndRetreatAtWelcome(t *testing.T) {
	s := newTestSession(t)
	walkTo(t, s, domain.StepPriceSummary)
	assert.False(t, s.CanAdvance())
	assert.False(t, s.Advance())
	assert.Equal(t, domain.StepPriceSummary, s.Step())

	for s.Retreat() {
	}
	assert.Equal(t, domain.StepWelcome, s.Step())
	assert.False(t, s.Retreat())
}

func TestProgress(t *testing.T) {
	s := newTestSession(t)
	_, ok := s.Progress()
	assert.False(t, ok, "no progress on welcome")

	walkTo(t, s, domain.StepCampaignDetails)
	frac, ok := s.Progress()
	require.True(t, ok)
	assert.InDelta(t, 0.5, frac, 1e-9)

	walkTo(t, s, domain.StepPriceSummary)
	frac, ok = s.Progress()
	require.True(t, ok)
	assert.InDelta(t, 1.0, frac, 1e-9)

	s.OpenAdmin()
	_, ok = s.Progress()
	assert.False(t, ok)
}

func TestRegister(t *testing.T) {
	pub := &recordingPublisher{}
	s := newTestSession(t, WithPublisher(pub))

	_, err := s.Register(context.Background())
	assert.ErrorIs(t, err, ErrNotAtSummary)

	walkTo(t, s, domain.StepPriceSummary)
	assert.Equal(t, 8500, s.Price().Amount)

	sub, err := s.Register(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StepSuccess, s.Step())
	assert.Equal(t, "Ohr", sub.YeshivaName)
	assert.Equal(t, "₪8,500", sub.CalculatedPrice)
	assert.Equal(t, []domain.Submission{sub}, s.Store().List())
	assert.Equal(t, []domain.Submission{sub}, pub.got)

	_, err = s.Register(context.Background())
	assert.ErrorIs(t, err, ErrNotAtSummary, "one registration per success transition")
	assert.False(t, s.Advance())
	assert.False(t, s.Retreat())

	s.Restart()
	assert.Equal(t, domain.StepWelcome, s.Step())
}

func TestRegisterPublishFailureKeepsLocalRecord(t *testing.T) {
	boom := errors.New("503")
	s := newTestSession(t, WithPublisher(&recordingPublisher{err: boom}))
	walkTo(t, s, domain.StepPriceSummary)

	sub, err := s.Register(context.Background())
	var pubErr *PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, sub, pubErr.Submission)
	assert.Equal(t, domain.StepSuccess, s.Step())
	assert.Len(t, s.Store().List(), 1)
}

func TestRegisterRevalidatesEarlierSteps(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
	}{
		{"cleared name", map[string]string{FieldYeshivaName: ""}},
		{"cleared goal", map[string]string{FieldCampaignGoal: ""}},
		{"devices without details", map[string]string{FieldUsesFieldDevices: domain.DevicesYes}},
		{"cleared clearing company", map[string]string{FieldClearingCompany: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t)
			walkTo(t, s, domain.StepPriceSummary)
			fill(t, s, tt.values)

			_, err := s.Register(context.Background())
			assert.ErrorIs(t, err, ErrIncomplete)
			assert.Equal(t, domain.StepPriceSummary, s.Step())
			assert.Empty(t, s.Store().List())
		})
	}
}

func TestAdminFlow(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)
	walkTo(t, s, domain.StepCampaignDetails)

	s.OpenAdmin()
	assert.Equal(t, domain.StepAdmin, s.Step())
	assert.False(t, s.Gate().LoggedIn())

	assert.ErrorIs(t, s.Login(ctx, "dana", "nope"), admin.ErrRejected)
	assert.False(t, s.Gate().LoggedIn())

	require.NoError(t, s.Login(ctx, "dana", "DA12"))
	assert.True(t, s.Gate().LoggedIn())
	assert.Equal(t, domain.StepAdmin, s.Step())

	s.Logout()
	assert.False(t, s.Gate().LoggedIn())
	assert.Equal(t, domain.StepAdmin, s.Step())

	s.CloseAdmin()
	assert.Equal(t, domain.StepWelcome, s.Step())
}

func TestSetField(t *testing.T) {
	s := newTestSession(t)
	assert.ErrorIs(t, s.Set("nickname", "x"), ErrUnknownField)
	assert.ErrorIs(t, s.Set(FieldUsesFieldDevices, "maybe"), ErrInvalidValue)
	require.NoError(t, s.Set(FieldSpecialRemarks, "call after 6"))

	v, err := s.Field(FieldSpecialRemarks)
	require.NoError(t, err)
	assert.Equal(t, "call after 6", v)
	_, err = s.Field("nickname")
	assert.ErrorIs(t, err, ErrUnknownField)
}
