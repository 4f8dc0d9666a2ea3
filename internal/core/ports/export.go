package ports

import "context"

// InvoiceRenderer formats a finalized invoice view into a downloadable
// document. Implementations are pure formatters: they are constructed
// once at process start and injected, hold no hidden global state, and
// never touch storage.
type InvoiceRenderer interface {
	Render(ctx context.Context, detail *InvoiceDetail) ([]byte, error)
	ContentType() string
	FileExtension() string
}
