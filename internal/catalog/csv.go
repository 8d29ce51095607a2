package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"
)

// csvHeader is the fixed column layout for video export and import.
var csvHeader = []string{"id", "title", "link", "category", "thumb", "created"}

// ErrNoVideosToExport indicates an export was requested on an empty store.
var ErrNoVideosToExport = errors.New("catalog: no videos to export")

const opImportCSV = "catalog.import_csv"

// ExportCSV writes the current video collection as CSV.
func (s *Service) ExportCSV(w io.Writer) error {
	videos := s.store.Videos()
	if len(videos) == 0 {
		return ErrNoVideosToExport
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("catalog: write csv header: %w", err)
	}
	for _, video := range videos {
		row := []string{
			video.ID,
			video.Title,
			video.Link,
			video.Category,
			video.Thumb,
			strconv.FormatInt(video.Created, 10),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("catalog: write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ImportCSV appends videos parsed from CSV input. Rows missing an id or
// title are skipped; a missing category defaults to General and a missing
// thumbnail is synthesized from the link. Imported videos are local only,
// they are not pushed remotely. Returns the number of videos appended.
func (s *Service) ImportCSV(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("catalog: read csv header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for index, name := range header {
		columns[name] = index
	}
	if _, ok := columns["id"]; !ok {
		return 0, fmt.Errorf("catalog: csv header missing id column")
	}

	field := func(record []string, name string) string {
		index, ok := columns[name]
		if !ok || index >= len(record) {
			return ""
		}
		return record[index]
	}

	now := s.clock().UnixMilli()
	var imported []Video
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("catalog: read csv row: %w", err)
		}
		video := Video{
			ID:       field(record, "id"),
			Title:    field(record, "title"),
			Link:     field(record, "link"),
			Category: field(record, "category"),
			Thumb:    field(record, "thumb"),
		}
		if video.ID == "" || video.Title == "" {
			s.logger.Warn("skipping csv row without id or title",
				zap.String("operation", opImportCSV))
			continue
		}
		if raw := field(record, "created"); raw != "" {
			if created, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil {
				video.Created = created
			}
		}
		video = video.Normalize(now)
		if video.Thumb == "" {
			video.Thumb = s.thumbnail(video.Link)
		}
		imported = append(imported, video)
	}

	if len(imported) == 0 {
		return 0, nil
	}
	s.store.AppendVideos(imported)
	s.render()
	return len(imported), nil
}
