package model

// Collections maps the route and import names of the four main
// collections to their kinds.
var Collections = map[string]string{
	"tournaments": KindTournament,
	"workers":     KindWorker,
	"cameras":     KindCamera,
	"shipments":   KindShipment,
}

// Import column types.
const (
	ColumnString = "string"
	ColumnInt    = "int"
	ColumnList   = "list"
	ColumnHoles  = "holes"
)

// ImportRow is one record of a dataset being imported, keyed by JSON
// field name.
type ImportRow struct {
	RowNum int            `json:"rowNum"`
	Data   map[string]any `json:"data"`
	Error  string         `json:"error,omitempty"`
}

// ID returns the row's id field.
func (r ImportRow) ID() string {
	if s, ok := r.Data["id"].(string); ok {
		return s
	}
	return ""
}

// ImportResult is the outcome of an import.
type ImportResult struct {
	TaskID       string        `json:"taskId"`
	Kind         string        `json:"kind"`
	Status       string        `json:"status"`
	TotalCount   int           `json:"totalCount"`
	SuccessCount int           `json:"successCount"`
	ErrorCount   int           `json:"errorCount"`
	Errors       []ImportError `json:"errors,omitempty"`
	Progress     int           `json:"progress"`
}

// ImportError describes a rejected row.
type ImportError struct {
	RowNum int    `json:"rowNum"`
	ID     string `json:"id,omitempty"`
	Error  string `json:"error"`
}

// ImportColumn describes one column of an import template.
type ImportColumn struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
	Example     string `json:"example"`
}

// ImportColumns returns the template columns of kind, or nil for an
// unknown kind.
func ImportColumns(kind string) []ImportColumn {
	switch kind {
	case KindTournament:
		return []ImportColumn{
			{Name: "id", Type: ColumnString, Required: true, Description: "Identificador del torneo", Example: "T-2025-01"},
			{Name: "name", Type: ColumnString, Required: true, Description: "Nombre del torneo", Example: "Abierto de Jalisco"},
			{Name: "location", Type: ColumnString, Description: "Club o sede", Example: "Club Atlas"},
			{Name: "state", Type: ColumnString, Description: "Estado", Example: "Jalisco"},
			{Name: "date", Type: ColumnString, Description: "Fecha de inicio (AAAA-MM-DD)", Example: "2025-03-14"},
			{Name: "endDate", Type: ColumnString, Description: "Fecha de fin (AAAA-MM-DD)", Example: "2025-03-16"},
			{Name: "status", Type: ColumnString, Description: "pendiente, activo o terminado", Example: TournamentPending},
			{Name: "worker", Type: ColumnString, Description: "Nombre del operador", Example: "Ana López"},
			{Name: "cameras", Type: ColumnList, Description: "Cámaras separadas por coma", Example: "CAM-01,CAM-02"},
			{Name: "holes", Type: ColumnHoles, Description: "Hoyos separados por coma o número de hoyos", Example: "18"},
			{Name: "days", Type: ColumnInt, Description: "Días de juego", Example: "3"},
			{Name: "field", Type: ColumnString, Description: "Campo", Example: "Campo Norte"},
		}
	case KindWorker:
		return []ImportColumn{
			{Name: "id", Type: ColumnString, Required: true, Description: "Identificador del operador", Example: "W-01"},
			{Name: "name", Type: ColumnString, Required: true, Description: "Nombre completo", Example: "Ana López"},
			{Name: "state", Type: ColumnString, Description: "Estado de residencia", Example: "Jalisco"},
			{Name: "status", Type: ColumnString, Description: "disponible o activo", Example: WorkerAvailable},
			{Name: "phone", Type: ColumnString, Description: "Teléfono", Example: "3312345678"},
			{Name: "email", Type: ColumnString, Description: "Correo electrónico", Example: "ana@example.com"},
			{Name: "specialty", Type: ColumnString, Description: "Especialidad", Example: "Instalación"},
		}
	case KindCamera:
		return []ImportColumn{
			{Name: "id", Type: ColumnString, Required: true, Description: "Identificador de la cámara", Example: "CAM-01"},
			{Name: "model", Type: ColumnString, Description: "Modelo", Example: "SolarCam X2"},
			{Name: "type", Type: ColumnString, Description: "Tipo", Example: "PTZ"},
			{Name: "status", Type: ColumnString, Description: "disponible, en uso o mantenimiento", Example: CameraAvailable},
			{Name: "location", Type: ColumnString, Description: "Almacén o estado", Example: Warehouse},
			{Name: "batteryLevel", Type: ColumnInt, Description: "Batería en porcentaje", Example: "100"},
			{Name: "lastMaintenance", Type: ColumnString, Description: "Último mantenimiento (AAAA-MM-DD)", Example: "2025-01-10"},
			{Name: "assignedTo", Type: ColumnString, Description: "Operador asignado", Example: ""},
			{Name: "serialNumber", Type: ColumnString, Description: "Número de serie", Example: "SN-0001"},
			{Name: "simNumber", Type: ColumnString, Description: "Número de SIM", Example: "8952000000000000001"},
			{Name: "notes", Type: ColumnString, Description: "Notas", Example: ""},
		}
	case KindShipment:
		return []ImportColumn{
			{Name: "id", Type: ColumnString, Required: true, Description: "Identificador del envío", Example: "S-01"},
			{Name: "cameras", Type: ColumnList, Description: "Cámaras separadas por coma", Example: "CAM-01,CAM-02"},
			{Name: "destination", Type: ColumnString, Description: "Destino", Example: "Club Atlas"},
			{Name: "recipient", Type: ColumnString, Description: "Destinatario", Example: "Ana López"},
			{Name: "sender", Type: ColumnString, Description: "Remitente", Example: Warehouse},
			{Name: "date", Type: ColumnString, Description: "Fecha de envío (AAAA-MM-DD)", Example: "2025-03-10"},
			{Name: "status", Type: ColumnString, Description: "Estado del envío", Example: "enviado"},
			{Name: "trackingNumber", Type: ColumnString, Description: "Guía", Example: "1Z999"},
			{Name: "originState", Type: ColumnString, Description: "Estado de origen", Example: "Ciudad de México"},
		}
	}
	return nil
}
