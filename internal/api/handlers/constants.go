package handlers

const (
	// downloadRoute prefixes the file links returned to clients
	downloadRoute = "/download_music/"

	// maxImportBytes caps an uploaded history CSV
	maxImportBytes = 5 << 20

	csvContentType = "text/csv; charset=utf-8"
)
