package playlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxBatchSize is the most tracks the Web API accepts in one add request.
const MaxBatchSize = 100

const DefaultDescription = "Generated from spotdiff missing tracks CSV"

var ErrNoTracks = errors.New("no spotify track identifiers to add")

type Playlist struct {
	ID  string
	URL string
}

// API is the slice of the Spotify Web API the exporter needs.
type API interface {
	CurrentUserID(ctx context.Context) (string, error)
	CreatePlaylist(ctx context.Context, userID string, name string, description string, public bool) (Playlist, error)
	AddTracks(ctx context.Context, playlistID string, uris []string) error
}

type Request struct {
	Name        string
	Description string
	Public      bool
	URIs        []string
}

type Result struct {
	UserID   string
	Playlist Playlist
	Added    int
	Batches  int
}

type BatchFunc func(batch int, total int, added int)

type Exporter struct {
	api       API
	batchSize int
	onBatch   BatchFunc
}

func NewExporter(api API, onBatch BatchFunc) *Exporter {
	return &Exporter{api: api, batchSize: MaxBatchSize, onBatch: onBatch}
}

// Export creates one playlist and appends the URIs to it batch by batch, in
// order. A failed batch aborts the export; earlier batches stay applied.
func (e *Exporter) Export(ctx context.Context, req Request) (Result, error) {
	if len(req.URIs) == 0 {
		return Result{}, ErrNoTracks
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = DefaultName(time.Now())
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = DefaultDescription
	}

	userID, err := e.api.CurrentUserID(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("resolve spotify user: %w", err)
	}
	created, err := e.api.CreatePlaylist(ctx, userID, name, description, req.Public)
	if err != nil {
		return Result{}, fmt.Errorf("create playlist %q: %w", name, err)
	}

	result := Result{UserID: userID, Playlist: created}
	batches := Batches(req.URIs, e.batchSize)
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := e.api.AddTracks(ctx, created.ID, batch); err != nil {
			return result, fmt.Errorf("add batch %d/%d to playlist %s: %w", i+1, len(batches), created.ID, err)
		}
		result.Added += len(batch)
		result.Batches++
		if e.onBatch != nil {
			e.onBatch(i+1, len(batches), result.Added)
		}
	}
	return result, nil
}

// Batches splits uris into consecutive groups of at most size.
func Batches(uris []string, size int) [][]string {
	if size <= 0 || size > MaxBatchSize {
		size = MaxBatchSize
	}
	batches := make([][]string, 0, (len(uris)+size-1)/size)
	for start := 0; start < len(uris); start += size {
		end := start + size
		if end > len(uris) {
			end = len(uris)
		}
		batches = append(batches, uris[start:end])
	}
	return batches
}

func DefaultName(now time.Time) string {
	return "SpotDiff Missing Tracks " + now.Format("2006-01-02")
}
