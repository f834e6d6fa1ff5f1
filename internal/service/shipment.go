package service

import (
	"context"
	"fmt"

	"golfcam/internal/events"
	"golfcam/internal/model"
	"golfcam/internal/store"
)

// ShipmentService manages shipments and the shipment history of their
// cameras.
type ShipmentService struct {
	*CrudService[model.Shipment]
}

func NewShipmentService(s store.Store, pub events.Publisher) *ShipmentService {
	return &ShipmentService{newCrudService(s, model.KindShipment, store.Store.Shipments, pub)}
}

// Create stores a shipment and appends a shipment history row for each of
// its cameras.
func (s *ShipmentService) Create(ctx context.Context, shipment *model.Shipment) (*model.Shipment, error) {
	if shipment.Cameras == nil {
		shipment.Cameras = []string{}
	}
	var created *model.Shipment
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.Shipments().Create(ctx, shipment); err != nil {
			return err
		}
		desc := fmt.Sprintf("Envío %s a %s", shipment.ID, shipment.Destination)
		if err := appendCameraHistory(ctx, tx, shipment.Cameras, model.HistoryShipment, "shipmentId", shipment.ID, desc); err != nil {
			return err
		}
		var err error
		created, err = tx.Shipments().Get(ctx, shipment.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events.ActionCreated, created)
	return created, nil
}

// Delete removes the shipment together with its shipment and return
// history rows.
func (s *ShipmentService) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	return scopedDelete(ctx, s.CrudService, id, store.ShipmentScope(id))
}
