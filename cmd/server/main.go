package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "invoice-engine/internal/adapters/web"
	"invoice-engine/internal/app"
	"invoice-engine/internal/config"
	"invoice-engine/internal/core"
	"invoice-engine/internal/db"
	"invoice-engine/internal/export"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	series := config.NumberSeries()
	numbers := core.NewNumberService()
	invoices := core.NewInvoiceService(pool, numbers, series)

	issuer := config.IssuerFromEnv()
	environment := export.EnvironmentFromString(os.Getenv("FISCAL_ENVIRONMENT"))
	renderers := map[string]export.Renderer{
		"pdf":  export.NewPDFRenderer(issuer),
		"xlsx": export.NewWorkbookExporter(issuer),
		"xml":  export.NewFiscalXMLSerializer(issuer, series, environment),
	}

	svc := app.NewAppService(invoices, renderers)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
