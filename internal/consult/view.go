// Package consult models the consultation screen's mode as a closed set of
// views. Exactly one view is active at a time, so view-dependent behavior
// dispatches on the variant instead of comparing mode strings.
package consult

import "fmt"

// ActiveView is the consultation screen's current tab. The interface is
// sealed: only the variants in this package implement it.
type ActiveView interface {
	String() string
	activeView()
}

// Current is the live consultation: vitals, the prescription form, and the
// catalog typeaheads.
type Current struct{}

// PastAppointments lists the patient's earlier appointments. A selected
// appointment ID narrows the list to one.
type PastAppointments struct {
	AppointmentID string
}

// PastPrescriptions lists the patient's earlier prescriptions.
type PastPrescriptions struct{}

// AISummary shows the generated case summary.
type AISummary struct{}

func (Current) activeView()           {}
func (PastAppointments) activeView()  {}
func (PastPrescriptions) activeView() {}
func (AISummary) activeView()         {}

func (Current) String() string           { return "current" }
func (PastAppointments) String() string  { return "appointments" }
func (PastPrescriptions) String() string { return "prescriptions" }
func (AISummary) String() string         { return "summary" }

// ParseView maps a tab name to its variant. Unknown names are an error
// rather than a silent fallback to the current view.
func ParseView(name string) (ActiveView, error) {
	switch name {
	case "", "current":
		return Current{}, nil
	case "appointments":
		return PastAppointments{}, nil
	case "prescriptions":
		return PastPrescriptions{}, nil
	case "summary":
		return AISummary{}, nil
	default:
		return nil, fmt.Errorf("unknown consultation view %q", name)
	}
}

// Dispatch routes to the handler for the active variant. Every variant has
// a mandatory handler, so adding a view without wiring it is a compile
// error at each call site.
type Dispatch[T any] struct {
	Current           func(Current) T
	PastAppointments  func(PastAppointments) T
	PastPrescriptions func(PastPrescriptions) T
	AISummary         func(AISummary) T
}

func (d Dispatch[T]) On(view ActiveView) T {
	switch v := view.(type) {
	case Current:
		return d.Current(v)
	case PastAppointments:
		return d.PastAppointments(v)
	case PastPrescriptions:
		return d.PastPrescriptions(v)
	case AISummary:
		return d.AISummary(v)
	default:
		panic(fmt.Sprintf("unhandled consultation view %T", view))
	}
}
