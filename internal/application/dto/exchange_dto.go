package dto

// ImportRowError error de una fila concreta; la importación sigue con las demás.
type ImportRowError struct {
	Row     int    `json:"row"` // 1 = primera fila de datos
	Message string `json:"message"`
}

// ImportReport resumen de una importación.
type ImportReport struct {
	Format  string           `json:"format"`
	Rows    int              `json:"rows"`
	Created int              `json:"created"`
	Updated int              `json:"updated"`
	Failed  int              `json:"failed"`
	Errors  []ImportRowError `json:"errors"`
}
