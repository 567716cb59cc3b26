package selector

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carehub/consult-api/internal/domain/catalog"
)

var medicineOptions = []catalog.Option{
	{Label: "Paracetamol", Value: "NLEM001", DosageForm: "Tablet", Strength: "500mg"},
	{Label: "Amoxicillin", Value: "NLEM002", DosageForm: "Capsule", Strength: "250mg"},
	{Label: "Paracetamol Syrup", Value: "NLEM003", DosageForm: "Syrup"},
}

type searchRecorder struct {
	mu    sync.Mutex
	terms []string
}

func (r *searchRecorder) record(term string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.terms = append(r.terms, term)
}

func (r *searchRecorder) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.terms...)
}

func TestDebounceFloor(t *testing.T) {
	rec := &searchRecorder{}
	s := New(Config{
		Options:       medicineOptions,
		OnSearch:      rec.record,
		DebounceDelay: 500 * time.Millisecond,
	})
	defer s.Close()

	assert.Equal(t, MinDebounceDelay, s.DebounceDelay())

	s.Focus() // dispatches the empty default-set search immediately
	s.Input("amo")

	// Well past the configured delay but under the floor: the typed term
	// has not fired yet.
	time.Sleep(700 * time.Millisecond)
	assert.Equal(t, []string{""}, rec.calls())
}

func TestDebounceOnlyLastKeystrokeFires(t *testing.T) {
	rec := &searchRecorder{}
	s := New(Config{
		Options:       medicineOptions,
		OnSearch:      rec.record,
		DebounceDelay: 2 * time.Second,
	})
	defer s.Close()

	s.Focus()
	s.Input("p")
	s.Input("pa")
	s.Input("par")

	time.Sleep(2500 * time.Millisecond)
	assert.Equal(t, []string{"", "par"}, rec.calls())
}

func TestEmptyTermSearchesImmediately(t *testing.T) {
	rec := &searchRecorder{}
	s := New(Config{Options: medicineOptions, OnSearch: rec.record})
	defer s.Close()

	s.Focus()
	s.Input("")

	assert.Equal(t, []string{""}, rec.calls())
}

func TestDispatchedTermIsNotRepeated(t *testing.T) {
	rec := &searchRecorder{}
	s := New(Config{Options: medicineOptions, OnSearch: rec.record})
	defer s.Close()

	s.Focus()
	s.Input("")
	s.Input("x")
	s.Input("")

	// The empty term was already dispatched; only the first call stands.
	assert.Equal(t, []string{""}, rec.calls())

	s.ResetCache()
	s.Input("")
	assert.Equal(t, []string{"", ""}, rec.calls())
}

func TestNoSearchWhileBlurred(t *testing.T) {
	rec := &searchRecorder{}
	s := New(Config{Options: medicineOptions, OnSearch: rec.record})
	defer s.Close()

	s.Input("")
	assert.Empty(t, rec.calls())
}

func TestMinSearchChars(t *testing.T) {
	rec := &searchRecorder{}
	s := New(Config{
		Options:        medicineOptions,
		OnSearch:       rec.record,
		MinSearchChars: 3,
	})
	defer s.Close()

	s.Focus()
	s.Input("pa")
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, rec.calls())
}

func TestLocalFilterOnKeystroke(t *testing.T) {
	s := New(Config{Options: medicineOptions})
	defer s.Close()

	s.Focus()
	s.Input("para")

	filtered := s.Filtered()
	require.Len(t, filtered, 2)
	assert.Equal(t, "Paracetamol", filtered[0].Label)
	assert.Equal(t, "Paracetamol Syrup", filtered[1].Label)
	assert.True(t, s.IsOpen())
}

func TestKeyboardSelection(t *testing.T) {
	var committedValue string
	var committedOpt *catalog.Option
	s := New(Config{
		Options: medicineOptions,
		OnChange: func(v string, opt *catalog.Option) {
			committedValue = v
			committedOpt = opt
		},
	})
	defer s.Close()

	s.Focus()
	s.Input("para")
	s.CursorDown()
	s.CursorDown()
	s.CursorDown() // bounded at the last row
	assert.Equal(t, 1, s.ActiveIndex())

	s.CursorUp()
	s.CursorUp() // bounded at the first row
	assert.Equal(t, 0, s.ActiveIndex())

	s.Enter()

	assert.Equal(t, "NLEM001", committedValue)
	require.NotNil(t, committedOpt)
	assert.Equal(t, "Tablet", committedOpt.DosageForm)
	assert.Equal(t, "Paracetamol", s.Term())
	assert.False(t, s.IsOpen())
}

func TestFreeSoloCommitsOnType(t *testing.T) {
	var committed []string
	s := New(Config{
		Options:  medicineOptions,
		FreeSolo: true,
		OnChange: func(v string, _ *catalog.Option) { committed = append(committed, v) },
	})
	defer s.Close()

	s.Focus()
	for _, text := range []string{"C", "Cu", "Custom Drug"} {
		s.Input(text)
	}

	require.NotEmpty(t, committed)
	assert.Equal(t, "Custom Drug", committed[len(committed)-1])
	assert.Equal(t, "Custom Drug", s.Value())
}

func TestFreeSoloEnterCommitsCustomOption(t *testing.T) {
	var committedOpt *catalog.Option
	s := New(Config{
		Options:  medicineOptions,
		FreeSolo: true,
		OnChange: func(_ string, opt *catalog.Option) { committedOpt = opt },
	})
	defer s.Close()

	s.Focus()
	s.Input("Herbal Mix")
	s.Enter()

	require.NotNil(t, committedOpt)
	assert.True(t, committedOpt.IsCustom)
	assert.Equal(t, "Herbal Mix", committedOpt.Value)
	assert.False(t, s.IsOpen())
}

func TestFreeSoloEnterWithExactMatchDoesNotSynthesize(t *testing.T) {
	var commits int
	var lastOpt *catalog.Option
	s := New(Config{
		Options:  medicineOptions,
		FreeSolo: true,
		OnChange: func(_ string, opt *catalog.Option) { commits++; lastOpt = opt },
	})
	defer s.Close()

	s.Focus()
	s.Input("Paracetamol")
	typed := commits
	s.Enter()

	// Enter must not mint a custom option for text that matches a label.
	assert.Equal(t, typed, commits)
	assert.Nil(t, lastOpt)
}

func TestBlurRevertsUncommittedEdit(t *testing.T) {
	s := New(Config{Options: medicineOptions, Value: "NLEM002"})
	defer s.Close()

	assert.Equal(t, "Amoxicillin", s.Term())

	s.Focus()
	s.Input("parace")
	s.Blur()

	assert.Equal(t, "Amoxicillin", s.Term())
}

func TestBlurKeepsTextInFreeSolo(t *testing.T) {
	s := New(Config{Options: medicineOptions, FreeSolo: true})
	defer s.Close()

	s.Focus()
	s.Input("Custom Drug")
	s.Blur()

	assert.Equal(t, "Custom Drug", s.Term())
}

func TestExternalValueResync(t *testing.T) {
	s := New(Config{Options: medicineOptions})
	defer s.Close()

	s.Focus()
	s.Input("half-typed")
	s.SetValue("NLEM003")

	assert.Equal(t, "Paracetamol Syrup", s.Term())

	// Unknown value falls back to the raw value.
	s.SetValue("mystery")
	assert.Equal(t, "mystery", s.Term())
}

func TestEscapeRevertsUnlessFreeSolo(t *testing.T) {
	s := New(Config{Options: medicineOptions, Value: "NLEM001"})
	defer s.Close()

	s.Focus()
	s.Input("amox")
	s.Escape()
	assert.Equal(t, "Paracetamol", s.Term())
	assert.False(t, s.IsOpen())

	free := New(Config{Options: medicineOptions, FreeSolo: true})
	defer free.Close()
	free.Focus()
	free.Input("amox")
	free.Escape()
	assert.Equal(t, "amox", free.Term())
}

func TestClearCommitsEmpty(t *testing.T) {
	var committedValue = "sentinel"
	var committedOpt = &catalog.Option{}
	s := New(Config{
		Options: medicineOptions,
		Value:   "NLEM001",
		OnChange: func(v string, opt *catalog.Option) {
			committedValue = v
			committedOpt = opt
		},
	})
	defer s.Close()

	s.Clear()

	assert.Equal(t, "", committedValue)
	assert.Nil(t, committedOpt)
	assert.Equal(t, "", s.Term())
}

func TestClickOutsideClosesAndReverts(t *testing.T) {
	s := New(Config{Options: medicineOptions, Value: "NLEM002"})
	defer s.Close()

	s.Focus()
	s.Input("par")
	require.True(t, s.IsOpen())

	s.ClickOutside()

	assert.False(t, s.IsOpen())
	assert.Equal(t, "Amoxicillin", s.Term())
}

func TestSetOptionsRefilters(t *testing.T) {
	s := New(Config{Options: nil})
	defer s.Close()

	s.Focus()
	s.Input("para")
	assert.Empty(t, s.Filtered())

	s.SetOptions(medicineOptions)

	filtered := s.Filtered()
	require.Len(t, filtered, 2)
	assert.Equal(t, "Paracetamol", filtered[0].Label)
}

func TestDisabledIgnoresInput(t *testing.T) {
	rec := &searchRecorder{}
	s := New(Config{Options: medicineOptions, Disabled: true, OnSearch: rec.record})
	defer s.Close()

	s.Focus()
	s.Input("para")

	assert.False(t, s.IsFocused())
	assert.Equal(t, "", s.Term())
	assert.Empty(t, rec.calls())
}
