// cmd/migrate/main.go: Aplica o revierte los scripts de migrations/.
// Uso: go run ./cmd/migrate [-dir migrations] up|down
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JoaquinAb/web-alquiler/internal/config"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	dir := flag.String("dir", "migrations", "directorio con los archivos NNNNNN_nombre.{up,down}.sql")
	flag.Parse()

	direction := flag.Arg(0)
	if direction != "up" && direction != "down" {
		log.Fatal().Msg("uso: migrate [-dir migrations] up|down")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open postgres")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	files, err := archivos(*dir, direction)
	if err != nil {
		log.Fatal().Err(err).Str("dir", *dir).Msg("leyendo migraciones")
	}

	for _, f := range files {
		content, err := os.ReadFile(filepath.Join(*dir, f))
		if err != nil {
			log.Fatal().Err(err).Str("file", f).Msg("leyendo migracion")
		}
		log.Info().Str("file", f).Msg("aplicando")
		if _, err := db.Exec(string(content)); err != nil {
			log.Fatal().Err(err).Str("file", f).Msg("migracion fallida")
		}
	}

	log.Info().Int("count", len(files)).Str("direction", direction).Msg("migraciones aplicadas")
}

// archivos lists the scripts for one direction: ascending for up, descending for down.
func archivos(dir, direction string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	suffix := fmt.Sprintf(".%s.sql", direction)
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), suffix) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	if direction == "down" {
		sort.Sort(sort.Reverse(sort.StringSlice(out)))
	}
	return out, nil
}
