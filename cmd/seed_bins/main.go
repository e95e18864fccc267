// seed_bins carga el directorio de ubicaciones desde un layout YAML.
//
// Uso:
//
//	go run ./cmd/seed_bins [-layout bins.yaml] [-sql salida.sql]
//
// Con -sql escribe un script PostgreSQL (esquema + upserts). Sin -sql aplica las ubicaciones
// directamente sobre el driver configurado (LEDGER_DRIVER, DATABASE_URL, SQLITE_PATH).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/Ubicaciones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Ubicaciones-api/internal/infrastructure/storage"
	"github.com/jhoicas/Ubicaciones-api/pkg/config"
	"github.com/jhoicas/Ubicaciones-api/pkg/logger"
)

func main() {
	layoutPath := flag.String("layout", "bins.yaml", "archivo YAML con el layout de ubicaciones")
	sqlPath := flag.String("sql", "", "escribir script SQL en esta ruta en lugar de aplicar")
	flag.Parse()

	f, err := os.Open(*layoutPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir layout: %v\n", err)
		os.Exit(1)
	}
	bins, err := parseLayout(f, time.Now().UTC())
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Layout inválido: %v\n", err)
		os.Exit(1)
	}

	if *sqlPath != "" {
		out, err := os.Create(*sqlPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		if err := writeSQL(out, postgres.Schema(), bins); err != nil {
			out.Close()
			fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
			os.Exit(1)
		}
		out.Close()
		fmt.Printf("Escrito %s (%d ubicaciones)\n", *sqlPath, len(bins))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed_bins"})

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer store.Close()

	for _, b := range bins {
		if err := store.Bins.Upsert(ctx, b); err != nil {
			log.Fatal().Err(err).Str("bin_id", b.ID).Msg("upsert de ubicación")
		}
	}
	log.Info().Int("bins", len(bins)).Str("driver", store.Driver).Msg("directorio de ubicaciones cargado")
}
