package model

// Tournament status values.
const (
	TournamentPending  = "pendiente"
	TournamentActive   = "activo"
	TournamentFinished = "terminado"
)

// Worker status values.
const (
	WorkerAvailable = "disponible"
	WorkerActive    = "activo"
)

// Camera status values.
const (
	CameraAvailable   = "disponible"
	CameraInUse       = "en uso"
	CameraMaintenance = "mantenimiento"
)

// Warehouse is the location every camera returns to on a warehouse reset.
const Warehouse = "Almacén"

// CameraHistory types.
const (
	HistoryTournament   = "tournament"
	HistoryMaintenance  = "maintenance"
	HistoryAssignment   = "assignment"
	HistoryStatusChange = "status_change"
	HistoryShipment     = "shipment"
	HistoryReturn       = "return"
)

// ValidHistoryTypes lists the accepted CameraHistory.Type values.
var ValidHistoryTypes = map[string]bool{
	HistoryTournament:   true,
	HistoryMaintenance:  true,
	HistoryAssignment:   true,
	HistoryStatusChange: true,
	HistoryShipment:     true,
	HistoryReturn:       true,
}

// Resource kinds, used in errors, events and routes.
const (
	KindTournament = "tournament"
	KindWorker     = "worker"
	KindCamera     = "camera"
	KindShipment   = "shipment"
	KindHistory    = "camera_history"
)
