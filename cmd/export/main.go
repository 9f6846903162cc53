// Command export renders an invoice to disk in one or all of the
// supported formats. The invoice may be referenced by numeric ID or by
// its assigned number.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"

	"invoice-engine/internal/app"
	"invoice-engine/internal/config"
	"invoice-engine/internal/core"
	"invoice-engine/internal/db"
	"invoice-engine/internal/export"

	"github.com/joho/godotenv"
)

func main() {
	var (
		ref    = flag.String("invoice", "", "invoice ID or number (required)")
		format = flag.String("format", "all", "export format: pdf, xlsx, xml or all")
		outDir = flag.String("out", ".", "output directory")
	)
	flag.Parse()

	if *ref == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	series := config.NumberSeries()
	invoices := core.NewInvoiceService(pool, core.NewNumberService(), series)

	issuer := config.IssuerFromEnv()
	environment := export.EnvironmentFromString(os.Getenv("FISCAL_ENVIRONMENT"))
	renderers := map[string]export.Renderer{
		"pdf":  export.NewPDFRenderer(issuer),
		"xlsx": export.NewWorkbookExporter(issuer),
		"xml":  export.NewFiscalXMLSerializer(issuer, series, environment),
	}

	svc := app.NewAppService(invoices, renderers)

	formats := []string{*format}
	if *format == "all" {
		formats = []string{"pdf", "xlsx", "xml"}
	}

	for _, f := range formats {
		artifact, err := svc.ExportInvoice(ctx, *ref, f)
		if err != nil {
			log.Fatalf("export %s: %v", f, err)
		}

		path := filepath.Join(*outDir, artifact.Filename)
		err = export.WriteArtifact(path, func(w io.Writer) error {
			_, err := w.Write(artifact.Data)
			return err
		})
		if err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
		log.Printf("wrote %s", path)
	}
}
