package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/afa-daily-reports/internal/domain/report/table"
)

var tracer = otel.Tracer("github.com/FACorreiaa/afa-daily-reports/internal/domain/report")

// ReaderFactory builds readers for the document formats it has sources for.
type ReaderFactory struct {
	sources map[FileType]table.Source
	logger  *slog.Logger
}

// NewReaderFactory creates a factory reading PDF bulletins from pdf.
func NewReaderFactory(pdf table.Source, logger *slog.Logger) *ReaderFactory {
	return &ReaderFactory{
		sources: map[FileType]table.Source{FileTypePDF: pdf},
		logger:  logger,
	}
}

// GetReader returns the reader of the product type's family. Product types
// without a family get the generic layout.
func (f *ReaderFactory) GetReader(date time.Time, fileType FileType, productType ProductType, holidays HolidaySet) (*Reader, error) {
	source, ok := f.sources[fileType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, fileType)
	}
	return newReader(Resolve(date, productType, holidays), fileType, source, f.logger), nil
}

// DocumentProcessor resolves a bulletin and extracts its records.
type DocumentProcessor struct {
	reader *Reader
	logger *slog.Logger
}

// NewDocumentProcessor resolves the bulletin identity and selects its reader.
func (f *ReaderFactory) NewDocumentProcessor(date time.Time, fileType FileType, productType ProductType, holidays HolidaySet) (*DocumentProcessor, error) {
	reader, err := f.GetReader(date, fileType, productType, holidays)
	if err != nil {
		return nil, err
	}
	return &DocumentProcessor{reader: reader, logger: f.logger}, nil
}

// Reader is the reader chosen for the product type.
func (p *DocumentProcessor) Reader() *Reader { return p.reader }

// Meta is the resolved bulletin identity.
func (p *DocumentProcessor) Meta() *MetaInfo { return p.reader.Meta() }

// Process extracts the bulletin's records. It returns no records and no
// error when no bulletin is expected for the date and product type.
func (p *DocumentProcessor) Process(ctx context.Context) ([]ProductRecord, error) {
	meta := p.reader.Meta()
	ctx, span := tracer.Start(ctx, "report.Process")
	defer span.End()
	span.SetAttributes(
		attribute.String("report.date", meta.Date().Format(DateLayout)),
		attribute.String("report.product_type", meta.ProductType().String()),
		attribute.String("report.filename", meta.Filename()),
	)

	if meta.Filename() == "" {
		p.logger.Debug("no report expected",
			slog.String("date", meta.Date().Format(DateLayout)),
			slog.String("product_type", meta.ProductType().String()),
		)
		return nil, nil
	}

	records, err := p.reader.Extract(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("report.records", len(records)))
	return records, nil
}
