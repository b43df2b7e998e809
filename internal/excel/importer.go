// Package excel loads vocabulary from .xlsx workbooks: one sheet per
// topic, columns word / translation / usage example / example
// translation, first row is the header.
package excel

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/lingobot/pkg/models"
)

// TopicWriter creates topics during import.
type TopicWriter interface {
	List(ctx context.Context) ([]models.Topic, error)
	Create(ctx context.Context, topic *models.Topic) error
}

// WordWriter creates words during import.
type WordWriter interface {
	Create(ctx context.Context, word *models.Word) error
}

// Result summarizes one import run.
type Result struct {
	TopicsCreated int
	WordsCreated  int
	Skipped       int
	Errors        []string
}

// Importer loads workbooks into the topic and word stores.
type Importer struct {
	topics TopicWriter
	words  WordWriter
}

// NewImporter creates an importer over the given stores.
func NewImporter(topics TopicWriter, words WordWriter) *Importer {
	return &Importer{topics: topics, words: words}
}

// ImportFile reads every sheet of the workbook. The sheet name becomes
// the topic title; an existing topic with the same title is reused so
// repeated imports don't duplicate topics.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	existing, err := im.topics.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	topicIDs := make(map[string]int64, len(existing))
	for _, t := range existing {
		topicIDs[strings.ToLower(t.Title)] = t.ID
	}

	result := &Result{}
	for _, sheet := range f.GetSheetList() {
		if err := im.importSheet(ctx, f, sheet, topicIDs, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (im *Importer) importSheet(ctx context.Context, f *excelize.File, sheet string, topicIDs map[string]int64, result *Result) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil
	}

	topicID, ok := topicIDs[strings.ToLower(sheet)]
	if !ok {
		topic := &models.Topic{Title: sheet}
		if err := im.topics.Create(ctx, topic); err != nil {
			return fmt.Errorf("failed to create topic %q: %w", sheet, err)
		}
		topicID = topic.ID
		topicIDs[strings.ToLower(sheet)] = topicID
		result.TopicsCreated++
	}

	// Row 0 is the header
	for i, row := range rows[1:] {
		if len(row) < 2 || strings.TrimSpace(row[0]) == "" || strings.TrimSpace(row[1]) == "" {
			result.Skipped++
			continue
		}
		word := &models.Word{
			TopicID:     topicID,
			Word:        strings.TrimSpace(row[0]),
			Translation: strings.TrimSpace(row[1]),
		}
		if len(row) > 2 && strings.TrimSpace(row[2]) != "" {
			word.UsageExample = sql.NullString{String: strings.TrimSpace(row[2]), Valid: true}
		}
		if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
			word.UsageExampleTranslation = sql.NullString{String: strings.TrimSpace(row[3]), Valid: true}
		}
		if err := im.words.Create(ctx, word); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s row %d: %v", sheet, i+2, err))
			continue
		}
		result.WordsCreated++
	}
	return nil
}
