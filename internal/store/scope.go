package store

import (
	"fmt"
	"strings"

	"golfcam/internal/model"
)

// HistoryScope selects the CameraHistory rows owned by a parent entity:
// rows whose type is one of Types and whose details[Key] equals Value.
type HistoryScope struct {
	Types []string
	Key   string
	Value string
}

// ShipmentScope returns the scope of history rows owned by a shipment.
func ShipmentScope(shipmentID string) HistoryScope {
	return HistoryScope{
		Types: []string{model.HistoryShipment, model.HistoryReturn},
		Key:   "shipmentId",
		Value: shipmentID,
	}
}

// TournamentScope returns the scope of history rows owned by a tournament.
func TournamentScope(tournamentID string) HistoryScope {
	return HistoryScope{
		Types: []string{model.HistoryTournament},
		Key:   "tournamentId",
		Value: tournamentID,
	}
}

// Validate rejects scopes that would match rows with an empty key.
func (s HistoryScope) Validate() error {
	if len(s.Types) == 0 {
		return fmt.Errorf("%w: no history types", ErrEmptyScope)
	}
	if strings.TrimSpace(s.Key) == "" {
		return fmt.Errorf("%w: no details key", ErrEmptyScope)
	}
	if strings.TrimSpace(s.Value) == "" {
		return fmt.Errorf("%w: %s is empty", ErrEmptyScope, s.Key)
	}
	return nil
}

// Matches reports whether h belongs to the scope. An invalid scope matches
// nothing, and a row with an empty details[Key] never matches.
func (s HistoryScope) Matches(h model.CameraHistory) bool {
	if s.Validate() != nil {
		return false
	}
	typeOK := false
	for _, t := range s.Types {
		if h.Type == t {
			typeOK = true
			break
		}
	}
	if !typeOK {
		return false
	}
	v := h.Detail(s.Key)
	return v != "" && v == s.Value
}
