// cmd/seeduser/main.go: Crea/actualiza el usuario administrador.
// Uso: go run ./cmd/seeduser -username admin -password secreto
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/JoaquinAb/web-alquiler/internal/config"
	"github.com/JoaquinAb/web-alquiler/internal/infra"
	"github.com/JoaquinAb/web-alquiler/internal/model"
	"github.com/JoaquinAb/web-alquiler/internal/repository"
	"github.com/JoaquinAb/web-alquiler/internal/service"

	"gorm.io/gorm"
)

func main() {
	username := flag.String("username", envOr("SEED_USERNAME", "admin"), "usuario")
	password := flag.String("password", os.Getenv("SEED_PASSWORD"), "contraseña (o SEED_PASSWORD)")
	email := flag.String("email", "", "correo")
	nombre := flag.String("nombre", "Admin", "nombre")
	flag.Parse()

	if *password == "" {
		log.Fatal("se requiere -password o SEED_PASSWORD")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	hash, err := service.HashPassword(*password)
	if err != nil {
		log.Fatalf("bcrypt error: %v", err)
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	usuarios := repository.NewUsuarioRepository(db)
	ctx := context.Background()

	u, err := usuarios.FindByUsername(ctx, *username)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		u = &model.Usuario{Username: *username}
	case err != nil:
		log.Fatalf("lookup error: %v", err)
	}
	u.Email = *email
	u.Nombre = *nombre
	u.PasswordHash = hash
	u.Activo = true
	u.EsStaff = true

	if u.ID == 0 {
		err = usuarios.Create(ctx, u)
	} else {
		err = usuarios.Update(ctx, u)
	}
	if err != nil {
		log.Fatalf("save error: %v", err)
	}
	fmt.Printf("Usuario '%s' creado/actualizado (id %d)\n", u.Username, u.ID)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
