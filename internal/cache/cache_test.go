package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/DAVIDafergan/tatpro-intake/internal/adapters/filekv"
	"github.com/DAVIDafergan/tatpro-intake/internal/domain"
	"github.com/DAVIDafergan/tatpro-intake/internal/pricing"
)

type memKV struct {
	data    map[string][]byte
	failPut error
}

func newMemKV() *memKV { return &memKV{data: map[string][]byte{}} }

func (m *memKV) Get(key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Put(key string, value []byte) error {
	if m.failPut != nil {
		return m.failPut
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

var fixedNow = time.Date(2026, 10, 18, 14, 3, 5, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(kv *memKV) *Store {
	return New(kv, WithClock(func() time.Time { return fixedNow }), WithIDs(sequentialIDs()))
}

func sampleForm(name string) domain.FormData {
	return domain.FormData{
		YeshivaName:      name,
		ManagerName:      "Manager",
		PhoneNumber:      "050-0000000",
		CampaignDuration: "36",
		CampaignGoal:     "250000",
		AverageStudents:  "120",
		UsesFieldDevices: domain.DevicesNo,
		ClearingCompany:  "Nedarim",
	}
}

func TestRegisterThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	kv, err := filekv.New(dir)
	require.NoError(t, err)

	s := New(kv, WithClock(func() time.Time { return fixedNow }))
	form := sampleForm("Beit Midrash")
	sub, err := s.Register(form, pricing.Quote(form.CampaignGoal))
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, "18.10.2026, 14:03:05", sub.Timestamp)
	assert.Equal(t, "₪7,500", sub.CalculatedPrice)

	fresh := New(kv)
	require.NoError(t, fresh.Load())
	got := fresh.List()
	require.Len(t, got, 1)
	assert.Equal(t, form, got[0].FormData)
	assert.Equal(t, sub, got[0])
}

func TestRegisterContactSentinel(t *testing.T) {
	s := newTestStore(newMemKV())
	sub, err := s.Register(sampleForm("Big"), pricing.Quote("750000"))
	require.NoError(t, err)
	assert.Equal(t, "התאמה אישית", sub.CalculatedPrice)

	en := New(newMemKV(), WithLocale(language.English), WithClock(func() time.Time { return fixedNow }))
	sub, err = en.Register(sampleForm("Big"), pricing.Quote("750000"))
	require.NoError(t, err)
	assert.Equal(t, "custom quote", sub.CalculatedPrice)
	assert.Equal(t, "10/18/2026, 2:03:05 PM", sub.Timestamp)
}

func TestPersistedListMatchesMemory(t *testing.T) {
	kv := newMemKV()
	s := newTestStore(kv)
	for _, n := range []string{"a", "b", "c"} {
		_, err := s.Register(sampleForm(n), pricing.Quote("100"))
		require.NoError(t, err)
	}

	var persisted []domain.Submission
	require.NoError(t, json.Unmarshal(kv.data[StorageKey], &persisted))
	assert.Equal(t, s.List(), persisted)
}

func TestRegisterWriteFailureKeepsList(t *testing.T) {
	kv := newMemKV()
	s := newTestStore(kv)
	_, err := s.Register(sampleForm("kept"), pricing.Quote("100"))
	require.NoError(t, err)

	kv.failPut = errors.New("disk full")
	_, err = s.Register(sampleForm("lost"), pricing.Quote("100"))
	require.Error(t, err)
	assert.Len(t, s.List(), 1)
}

func TestDelete(t *testing.T) {
	kv := newMemKV()
	s := newTestStore(kv)
	for _, n := range []string{"a", "b", "c"} {
		_, err := s.Register(sampleForm(n), pricing.Quote("100"))
		require.NoError(t, err)
	}
	before := s.List()
	yes := func(domain.Submission) bool { return true }

	require.NoError(t, s.Delete("id-2", yes))
	after := s.List()
	require.Len(t, after, 2)
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[2], after[1])

	reloaded := New(kv)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, after, reloaded.List())

	assert.ErrorIs(t, s.Delete("id-9", yes), ErrNotFound)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	s := newTestStore(newMemKV())
	_, err := s.Register(sampleForm("a"), pricing.Quote("100"))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete("id-1", func(domain.Submission) bool { return false }), ErrCancelled)
	assert.ErrorIs(t, s.Delete("id-1", nil), ErrCancelled)
	assert.Len(t, s.List(), 1)
}

func TestLoadMalformedIsEmpty(t *testing.T) {
	kv := newMemKV()
	kv.data[StorageKey] = []byte("{not json")
	s := New(kv)
	require.NoError(t, s.Load())
	assert.Empty(t, s.List())
}

func TestLoadMissingIsEmpty(t *testing.T) {
	s := New(newMemKV())
	require.NoError(t, s.Load())
	assert.Empty(t, s.List())
}
