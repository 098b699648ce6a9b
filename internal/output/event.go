package output

import "time"

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

type EventName string

const (
	EventDiffStarted        EventName = "diff_started"
	EventReferenceLoaded    EventName = "reference_loaded"
	EventLibraryScanned     EventName = "library_scanned"
	EventDiffFinished       EventName = "diff_finished"
	EventExportWritten      EventName = "export_written"
	EventDiagnosticsWritten EventName = "diagnostics_written"
	EventPlaylistCreated    EventName = "playlist_created"
	EventPlaylistBatchAdded EventName = "playlist_batch_added"
)

type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Event     EventName      `json:"event"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}
