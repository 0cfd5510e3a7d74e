// package formatter exports clipboard contents to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/worldbuilder/internal/clipboard"
	"github.com/desertthunder/worldbuilder/internal/models"
	"github.com/desertthunder/worldbuilder/internal/shared"
)

// Entry is one captured block in export order.
type Entry struct {
	Pos   models.BlockPos
	Block models.BlockState
}

// Metadata summarizes a clipboard without its entries.
type Metadata struct {
	Origin models.BlockPos `json:"origin"`
	Size   models.BlockPos `json:"size"`
	Volume int             `json:"volume"`
}

// Entries drains a fresh cursor over cb.
func Entries(cb clipboard.Clipboard) ([]Entry, error) {
	cur, err := cb.All()
	if err != nil {
		return nil, fmt.Errorf("failed to open clipboard cursor: %w", err)
	}
	defer cur.Close()

	var entries []Entry
	for cur.Next() {
		entries = append(entries, Entry{Pos: cur.Pos(), Block: cur.Block()})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to read clipboard: %w", err)
	}
	return entries, nil
}

// Describe returns the clipboard's metadata.
func Describe(cb clipboard.Clipboard) (Metadata, error) {
	volume, err := cb.Volume()
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to size clipboard: %w", err)
	}
	md := Metadata{Origin: cb.Origin(), Volume: volume}
	if volume > 0 {
		md.Size = cb.AsSelection(models.BlockPos{}).Size()
	}
	return md, nil
}

// ExportToCSV converts entries to CSV format with columns: X, Y, Z, ID, Meta
func ExportToCSV(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"X", "Y", "Z", "ID", "Meta"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range entries {
		record := []string{
			strconv.Itoa(e.Pos.X),
			strconv.Itoa(e.Pos.Y),
			strconv.Itoa(e.Pos.Z),
			strconv.FormatUint(uint64(e.Block.ID), 10),
			strconv.FormatUint(uint64(e.Block.Meta), 10),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a clipboard summary and its non-air entries to Markdown format
func ExportToMarkdown(title string, md Metadata, entries []Entry) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Origin**: %s\n", md.Origin))
	buf.WriteString(fmt.Sprintf("**Size**: %s\n", md.Size))
	buf.WriteString(fmt.Sprintf("**Blocks**: %d\n\n", md.Volume))

	buf.WriteString("## Blocks\n\n")
	buf.WriteString("| Position | Block |\n|---|---|\n")
	for _, e := range entries {
		if e.Block == models.Air {
			continue
		}
		buf.WriteString(fmt.Sprintf("| %s | %s |\n", e.Pos, e.Block))
	}

	return buf.Bytes(), nil
}

// ExportToText converts entries to plain text format, one block per line
func ExportToText(md Metadata, entries []Entry) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Origin: %s\n", md.Origin))
	buf.WriteString(fmt.Sprintf("Blocks: %d\n\n", md.Volume))

	for _, e := range entries {
		buf.WriteString(fmt.Sprintf("%s %s\n", e.Pos, e.Block))
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of clipboard metadata (without entries)
func ToMetadataJSON(md Metadata) ([]byte, error) {
	return json.MarshalIndent(md, "", "  ")
}

// WriteExport writes cb to path in the format named by its extension (.csv, .md, .txt or .json).
func WriteExport(cb clipboard.Clipboard, path string) error {
	md, err := Describe(cb)
	if err != nil {
		return err
	}

	var data []byte
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		data, err = ToMetadataJSON(md)
	} else {
		var entries []Entry
		if entries, err = Entries(cb); err != nil {
			return err
		}
		switch ext {
		case ".csv":
			data, err = ExportToCSV(entries)
		case ".md":
			data, err = ExportToMarkdown(strings.TrimSuffix(filepath.Base(path), ext), md, entries)
		case ".txt":
			data, err = ExportToText(md, entries)
		default:
			return fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidArgument, ext)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to generate %s export: %w", ext, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
