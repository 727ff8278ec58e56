package cli

import (
	"context"
	"fmt"

	"chronotrakr/internal/api"
	"chronotrakr/internal/errors"
)

// InvoiceCommand handles the invoice command
type InvoiceCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// InvoiceOptions are the flags of the invoice command
type InvoiceOptions struct {
	OutDir string
	Stdout bool
}

// NewInvoiceCommand creates a new invoice command handler
func NewInvoiceCommand(app *App) *InvoiceCommand {
	return &InvoiceCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(app.logger),
	}
}

// Execute runs "invoice <project>". The invoice is written to a file in the
// output directory unless opts.Stdout is set.
func (c *InvoiceCommand) Execute(ctx context.Context, args []string, opts InvoiceOptions) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "invoice", "usage: ct invoice <project> [--out DIR] [--stdout]")
	}

	if opts.Stdout {
		invoice, err := c.businessAPI.GenerateInvoice(ctx, args[0])
		if err != nil {
			return c.errorHandler.Handle("generate invoice", err)
		}
		fmt.Fprintln(c.app.out, invoice.Body())
		return nil
	}

	dir := opts.OutDir
	if dir == "" {
		dir = c.app.config.Invoice.Dir
	}
	invoice, path, err := c.businessAPI.ExportInvoice(ctx, args[0], dir)
	if err != nil {
		return c.errorHandler.Handle("export invoice", err)
	}
	c.app.logger.Info("invoice written", "project", invoice.ProjectName, "path", path, "content_type", invoice.ContentType())
	fmt.Fprintf(c.app.out, "Invoice for %s (%s) written to %s\n", invoice.ProjectName, invoice.TotalTime, path)
	return nil
}
