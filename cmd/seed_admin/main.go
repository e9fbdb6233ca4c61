// seed_admin crea el primer usuario administrador. Los cajeros se registran por la API
// y un admin los aprueba; el admin inicial no tiene otra forma de existir.
//
// Uso: go run ./cmd/seed_admin -email admin@tienda.com -password 'secreto123' -firstname Ana -lastname Pérez
// Lee la conexión de la misma configuración que la API (DATABASE_URL / DB_*).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sjpos/pos-api/internal/domain"
	"github.com/sjpos/pos-api/internal/domain/entity"
	"github.com/sjpos/pos-api/internal/infrastructure/postgres"
	"github.com/sjpos/pos-api/pkg/config"
	"github.com/sjpos/pos-api/pkg/normalize"
)

func main() {
	email := flag.String("email", "", "email del administrador")
	password := flag.String("password", "", "contraseña (mínimo 8 caracteres)")
	firstname := flag.String("firstname", "Admin", "nombre")
	lastname := flag.String("lastname", "SJPOS", "apellido")
	flag.Parse()

	if err := run(*email, *password, *firstname, *lastname); err != nil {
		fmt.Fprintf(os.Stderr, "seed_admin: %v\n", err)
		os.Exit(1)
	}
}

func run(email, password, firstname, lastname string) error {
	email = normalize.Email(email)
	if !normalize.ValidEmail(email) {
		return fmt.Errorf("email inválido: %q", email)
	}
	if !normalize.LenBetween(password, 8, 100) {
		return fmt.Errorf("la contraseña debe tener entre 8 y 100 caracteres")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("cargar configuración: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	now := time.Now()
	admin := &entity.User{
		ID:              uuid.New().String(),
		Firstname:       normalize.Name(firstname),
		Lastname:        normalize.Name(lastname),
		Email:           email,
		PasswordHash:    string(hash),
		ThemePreference: entity.ThemeLight,
		Role:            entity.RoleAdmin,
		IsEmailVerified: true,
		IsApproved:      true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := postgres.NewUserRepository(pool).Create(ctx, admin); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return fmt.Errorf("ya existe un usuario con el email %s", email)
		}
		return err
	}
	fmt.Printf("Administrador creado: %s (%s)\n", admin.Email, admin.ID)
	return nil
}
