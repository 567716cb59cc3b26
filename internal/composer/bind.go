package composer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/carehub/consult-api/internal/domain/catalog"
	"github.com/carehub/consult-api/internal/selector"
)

// SearchMedicines queries the medicine catalog and ranks the results so
// the best phrase matches lead regardless of upstream ordering.
func (s *Service) SearchMedicines(ctx context.Context, term string) ([]catalog.Option, error) {
	s.countSearch("medicine")
	options, err := s.backend.SearchMedicines(ctx, term, s.searchLimit)
	if err != nil {
		return nil, err
	}
	return catalog.Rank(options, term), nil
}

func (s *Service) SearchProcedures(ctx context.Context, term string) ([]catalog.Option, error) {
	s.countSearch("procedure")
	options, err := s.backend.SearchProcedures(ctx, term, s.searchLimit)
	if err != nil {
		return nil, err
	}
	return catalog.Rank(options, term), nil
}

func (s *Service) SearchLabTests(ctx context.Context, term string) ([]catalog.Option, error) {
	s.countSearch("lab_test")
	options, err := s.backend.SearchLabTests(ctx, term, s.searchLimit)
	if err != nil {
		return nil, err
	}
	return catalog.Rank(options, term), nil
}

func (s *Service) countSearch(kind string) {
	if s.metrics != nil {
		s.metrics.CatalogSearchesTotal.WithLabelValues(kind).Inc()
	}
}

// SelectorParams tunes the typeahead widgets bound to draft rows.
type SelectorParams struct {
	DebounceDelay  time.Duration
	MinSearchChars int
}

// MedicineSelector binds a free-solo typeahead to the medicine row at the
// given index. Selecting a catalog entry derives the row's form-dependent
// fields; typing keeps the raw text as the medicine name; clearing wipes
// the row. The selector is rebuilt whenever rows shift, so a stale index
// is a no-op rather than a write to the wrong row.
func (s *Service) MedicineSelector(ctx context.Context, d *Draft, row int, p SelectorParams) *selector.Selector {
	var sel *selector.Selector
	sel = selector.New(selector.Config{
		Value:          d.Medicines[row].MedicineName,
		FreeSolo:       true,
		DebounceDelay:  p.DebounceDelay,
		MinSearchChars: p.MinSearchChars,
		Log:            s.log,
		OnChange: func(value string, opt *catalog.Option) {
			if row >= len(d.Medicines) {
				return
			}
			r := &d.Medicines[row]
			switch {
			case value == "":
				ApplyMedicineSelection(r, nil)
			case opt != nil:
				ApplyMedicineSelection(r, opt)
			default:
				r.MedicineName = value
			}
			d.rederiveQuantity(row)
		},
		OnSearch: func(term string) {
			go s.searchInto(ctx, sel, term, s.SearchMedicines)
		},
	})
	return sel
}

// ProcedureSelector binds a strict typeahead to the procedure row at the
// given index. Only catalog entries may be committed.
func (s *Service) ProcedureSelector(ctx context.Context, d *Draft, row int, p SelectorParams) *selector.Selector {
	var sel *selector.Selector
	sel = selector.New(selector.Config{
		Value:          d.Procedures[row].Code,
		DebounceDelay:  p.DebounceDelay,
		MinSearchChars: p.MinSearchChars,
		Log:            s.log,
		OnChange: func(value string, opt *catalog.Option) {
			if row >= len(d.Procedures) {
				return
			}
			ApplyProcedureSelection(&d.Procedures[row], opt)
		},
		OnSearch: func(term string) {
			go s.searchInto(ctx, sel, term, s.SearchProcedures)
		},
	})
	return sel
}

func (s *Service) LabTestSelector(ctx context.Context, d *Draft, row int, p SelectorParams) *selector.Selector {
	var sel *selector.Selector
	sel = selector.New(selector.Config{
		Value:          d.LabTests[row].Code,
		DebounceDelay:  p.DebounceDelay,
		MinSearchChars: p.MinSearchChars,
		Log:            s.log,
		OnChange: func(value string, opt *catalog.Option) {
			if row >= len(d.LabTests) {
				return
			}
			ApplyLabTestSelection(&d.LabTests[row], opt)
		},
		OnSearch: func(term string) {
			go s.searchInto(ctx, sel, term, s.SearchLabTests)
		},
	})
	return sel
}

// searchInto runs a catalog search off the caller's goroutine and feeds
// the results back to the selector. The selector discards results for
// terms the clinician has already typed past.
func (s *Service) searchInto(ctx context.Context, sel *selector.Selector, term string, search func(context.Context, string) ([]catalog.Option, error)) {
	options, err := search(ctx, term)
	if err != nil {
		s.log.Warn("catalog search failed", zap.String("term", term), zap.Error(err))
		return
	}
	sel.SetOptions(options)
}
