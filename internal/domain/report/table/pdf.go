package table

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ledongthuc/pdf"

	"github.com/FACorreiaa/afa-daily-reports/pkg/storage"
)

// PDFSource reads tables out of PDF bulletins held in storage.
type PDFSource struct {
	store  storage.Storage
	logger *slog.Logger
}

// NewPDFSource creates a PDF table source.
func NewPDFSource(store storage.Storage, logger *slog.Logger) *PDFSource {
	return &PDFSource{store: store, logger: logger}
}

// Tables opens name and assembles the tables of every page.
func (s *PDFSource) Tables(ctx context.Context, name string, anchor string) (tables []Table, err error) {
	obj, err := s.store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	// The decoder panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			tables = nil
			err = fmt.Errorf("%w: %s: %v", ErrMalformed, name, r)
		}
	}()

	reader, err := pdf.NewReader(obj, obj.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
	}

	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			s.logger.Warn("failed to read page text",
				slog.String("file", name),
				slog.Int("page", i),
				slog.Any("error", err),
			)
			continue
		}

		var runs []Run
		for _, row := range rows {
			for _, t := range row.Content {
				runs = append(runs, Run{X: t.X, Y: t.Y, W: t.W, S: t.S})
			}
		}
		tables = append(tables, Assemble(i, runs, anchor)...)
	}

	s.logger.Debug("pdf tables assembled",
		slog.String("file", name),
		slog.Int("pages", reader.NumPage()),
		slog.Int("tables", len(tables)),
	)
	return tables, nil
}
