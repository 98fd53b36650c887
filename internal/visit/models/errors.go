package models

import (
	"errors"
	"fmt"

	id "visitflow/pkg/domain"
)

// ErrIncompleteSchedule marks a schedule that exists without its checkpoint snapshot,
// the residue of a failed second insert phase. Readers must not treat it as an empty plan.
var ErrIncompleteSchedule = errors.New("schedule has no scheduled checkpoints")

// RouteViolation is returned when a pavilion is outside every active plan of the visitor.
// Allowed lists the planned pavilions so the caller can show where the visitor may go.
type RouteViolation struct {
	VisitorID  id.VisitorID
	PavilionID id.PavilionID
	Allowed    []id.PavilionID
}

func (e *RouteViolation) Error() string {
	return fmt.Sprintf("pavilion %s is not in the active route of visitor %s (%d allowed)",
		e.PavilionID, e.VisitorID, len(e.Allowed))
}

// AsRouteViolation extracts a RouteViolation from err's chain.
func AsRouteViolation(err error) (*RouteViolation, bool) {
	var rv *RouteViolation
	if errors.As(err, &rv) {
		return rv, true
	}
	return nil, false
}
