// Package selector implements the searchable-select engine behind the
// console's typeahead fields: ranked local filtering over a held option set,
// an optional debounced remote search, free-solo entry, and a keyboard
// navigation contract. It holds view state only; the committed value is
// owned by the caller and pushed back in through SetValue.
package selector

import (
	"sync"
	"time"

	"github.com/carehub/consult-api/internal/domain/catalog"
	"go.uber.org/zap"
)

// MinDebounceDelay is the floor for the remote-search debounce. A shorter
// configured delay is raised to this value.
const MinDebounceDelay = 2 * time.Second

type Config struct {
	// Value is the committed value at construction time.
	Value string
	// Options is the initial candidate list. The owner updates it through
	// SetOptions as remote results arrive.
	Options []catalog.Option
	// OnChange commits a selection. The option is nil for raw free-solo
	// text and for the clear action.
	OnChange func(value string, opt *catalog.Option)
	// OnSearch triggers a remote search. Optional.
	OnSearch func(term string)

	DebounceDelay  time.Duration
	MinSearchChars int
	FreeSolo       bool
	Disabled       bool

	Log *zap.Logger
}

type Selector struct {
	mu  sync.Mutex
	cfg Config
	log *zap.Logger

	debounce time.Duration

	options  []catalog.Option
	filtered []catalog.Option

	searchTerm  string
	value       string
	isOpen      bool
	isFocused   bool
	activeIndex int

	// dispatched remembers every term already sent to OnSearch. It lives
	// for the Selector's lifetime; owners remount to refresh.
	dispatched map[string]struct{}
	timer      *time.Timer
	closed     bool
}

func New(cfg Config) *Selector {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	debounce := cfg.DebounceDelay
	if debounce < MinDebounceDelay {
		debounce = MinDebounceDelay
	}

	s := &Selector{
		cfg:         cfg,
		log:         log,
		debounce:    debounce,
		options:     append([]catalog.Option(nil), cfg.Options...),
		value:       cfg.Value,
		activeIndex: -1,
		dispatched:  make(map[string]struct{}),
	}
	s.searchTerm = s.labelFor(cfg.Value)
	s.filtered = catalog.Rank(s.options, "")
	return s
}

// Close releases the pending debounce timer, if any.
func (s *Selector) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopTimerLocked()
}

// SetValue synchronizes the engine with the externally owned committed
// value. A changed value resynchronizes the visible text unconditionally,
// even over an in-progress edit.
func (s *Selector) SetValue(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == s.value {
		return
	}
	s.value = value
	s.searchTerm = s.labelFor(value)
	s.filtered = catalog.Rank(s.options, "")
}

// SetOptions replaces the candidate list and refilters against the current
// term. Called by the owner when remote results arrive.
func (s *Selector) SetOptions(options []catalog.Option) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = append([]catalog.Option(nil), options...)
	s.filtered = catalog.Rank(s.options, s.searchTerm)
	if s.activeIndex >= len(s.filtered) {
		s.activeIndex = len(s.filtered) - 1
	}
}

// Focus marks the input focused and kicks the remote-search effect for the
// current term.
func (s *Selector) Focus() {
	if s.cfg.Disabled {
		return
	}
	s.mu.Lock()
	s.isFocused = true
	fire := s.scheduleSearchLocked()
	s.mu.Unlock()
	if fire != nil {
		fire()
	}
}

// Blur drops focus. Outside free-solo mode an uncommitted edit reverts to
// the last committed selection.
func (s *Selector) Blur() {
	s.mu.Lock()
	s.isFocused = false
	s.isOpen = false
	s.activeIndex = -1
	s.stopTimerLocked()
	if !s.cfg.FreeSolo {
		s.revertLocked()
	}
	s.mu.Unlock()
}

// Input records a keystroke: refilters locally, opens the dropdown, and
// (re)schedules the remote search. In free-solo mode the raw text is
// committed immediately so the owner always holds the latest typed value.
func (s *Selector) Input(text string) {
	if s.cfg.Disabled {
		return
	}

	s.mu.Lock()
	s.searchTerm = text
	s.isOpen = true
	s.activeIndex = -1
	s.filtered = catalog.Rank(s.options, text)

	var commit func()
	if s.cfg.FreeSolo {
		s.value = text
		if s.cfg.OnChange != nil {
			onChange := s.cfg.OnChange
			commit = func() { onChange(text, nil) }
		}
	}
	fire := s.scheduleSearchLocked()
	s.mu.Unlock()

	if commit != nil {
		commit()
	}
	if fire != nil {
		fire()
	}
}

// CursorDown opens the dropdown and advances the highlight, bounded at the
// last row.
func (s *Selector) CursorDown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.Disabled {
		return
	}
	s.isOpen = true
	if s.activeIndex < len(s.filtered)-1 {
		s.activeIndex++
	}
}

// CursorUp retreats the highlight, bounded at the first row.
func (s *Selector) CursorUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeIndex > 0 {
		s.activeIndex--
	}
}

// Enter commits the highlighted option when the dropdown is open. With no
// highlight, free-solo mode commits the typed text as a custom option when
// it matches no existing option's label or value.
func (s *Selector) Enter() {
	s.mu.Lock()

	if s.isOpen && s.activeIndex >= 0 && s.activeIndex < len(s.filtered) {
		commit := s.selectLocked(s.filtered[s.activeIndex])
		s.mu.Unlock()
		if commit != nil {
			commit()
		}
		return
	}

	if s.cfg.FreeSolo && s.searchTerm != "" && !s.hasExactMatchLocked(s.searchTerm) {
		opt := catalog.Custom(s.searchTerm)
		commit := s.selectLocked(opt)
		s.mu.Unlock()
		if commit != nil {
			commit()
		}
		return
	}

	s.mu.Unlock()
}

// Escape closes the dropdown and, unless free-solo, reverts the text to the
// last committed selection.
func (s *Selector) Escape() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isOpen = false
	s.activeIndex = -1
	if !s.cfg.FreeSolo {
		s.revertLocked()
	}
}

// Clear resets the text and commits an empty selection.
func (s *Selector) Clear() {
	s.mu.Lock()
	s.searchTerm = ""
	s.value = ""
	s.isOpen = false
	s.activeIndex = -1
	s.filtered = catalog.Rank(s.options, "")
	onChange := s.cfg.OnChange
	s.mu.Unlock()

	if onChange != nil {
		onChange("", nil)
	}
}

// ClickOutside closes the dropdown and discards an uncommitted edit, except
// in free-solo mode where typed text stands.
func (s *Selector) ClickOutside() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isOpen = false
	s.activeIndex = -1
	if !s.cfg.FreeSolo {
		s.revertLocked()
	}
}

// Select commits the i-th filtered option, as a pointer click would.
func (s *Selector) Select(i int) {
	s.mu.Lock()
	if i < 0 || i >= len(s.filtered) {
		s.mu.Unlock()
		return
	}
	commit := s.selectLocked(s.filtered[i])
	s.mu.Unlock()
	if commit != nil {
		commit()
	}
}

// ResetCache forgets which terms have been dispatched, so previously typed
// terms search again.
func (s *Selector) ResetCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatched = make(map[string]struct{})
}

// DebounceDelay reports the effective delay after flooring.
func (s *Selector) DebounceDelay() time.Duration { return s.debounce }

func (s *Selector) Term() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchTerm
}

func (s *Selector) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

func (s *Selector) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isOpen
}

func (s *Selector) IsFocused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isFocused
}

func (s *Selector) ActiveIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeIndex
}

func (s *Selector) Filtered() []catalog.Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]catalog.Option(nil), s.filtered...)
}

// selectLocked applies a selection and returns the commit callback to run
// outside the lock. Selection closes the dropdown and keeps input focus.
func (s *Selector) selectLocked(opt catalog.Option) func() {
	s.searchTerm = opt.Label
	s.value = opt.Value
	s.isOpen = false
	s.activeIndex = -1
	if s.cfg.OnChange == nil {
		return nil
	}
	onChange := s.cfg.OnChange
	o := opt
	return func() { onChange(o.Value, &o) }
}

func (s *Selector) revertLocked() {
	s.searchTerm = s.labelFor(s.value)
	s.filtered = catalog.Rank(s.options, "")
}

// labelFor resolves the display text for a committed value: the matching
// option's label, or the raw value when nothing matches.
func (s *Selector) labelFor(value string) string {
	for _, opt := range s.options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

func (s *Selector) hasExactMatchLocked(text string) bool {
	for _, opt := range s.options {
		if opt.Label == text || opt.Value == text {
			return true
		}
	}
	return false
}

// scheduleSearchLocked arranges the remote search for the current term and
// returns an immediate dispatch to run outside the lock, or nil. An empty
// term while focused dispatches right away to refresh the default option
// set; anything else waits out the debounce, with each keystroke resetting
// the pending timer. Terms already dispatched are never sent again.
func (s *Selector) scheduleSearchLocked() func() {
	if s.cfg.OnSearch == nil || !s.isFocused || s.closed {
		return nil
	}
	term := s.searchTerm
	if len(term) < s.cfg.MinSearchChars {
		s.stopTimerLocked()
		return nil
	}
	if _, ok := s.dispatched[term]; ok {
		s.stopTimerLocked()
		return nil
	}

	if term == "" {
		s.stopTimerLocked()
		s.dispatched[term] = struct{}{}
		onSearch := s.cfg.OnSearch
		return func() { onSearch("") }
	}

	s.stopTimerLocked()
	s.timer = time.AfterFunc(s.debounce, func() {
		s.fireSearch(term)
	})
	return nil
}

func (s *Selector) fireSearch(term string) {
	s.mu.Lock()
	if s.closed || !s.isFocused || s.searchTerm != term {
		s.mu.Unlock()
		return
	}
	if _, ok := s.dispatched[term]; ok {
		s.mu.Unlock()
		return
	}
	s.dispatched[term] = struct{}{}
	onSearch := s.cfg.OnSearch
	s.mu.Unlock()

	s.log.Debug("remote search dispatched", zap.String("term", term))
	onSearch(term)
}

func (s *Selector) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
