// seed crea los usuarios iniciales y un stock de ejemplo para desarrollo local.
//
// Uso: go run ./cmd/seed
// Lee la configuración de las mismas variables de entorno que cmd/api.
// No es idempotente para el stock: ejecutarlo dos veces duplica los movimientos INITIAL.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/infrastructure/postgres"
	"github.com/jhoicas/almacen-api/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conectar a Postgres: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	adminID, err := seedUser(userRepo, "admin@almacen.local", "admin123", "Administrador", entity.RoleAdmin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear admin: %v\n", err)
		os.Exit(1)
	}
	if _, err := seedUser(userRepo, "bodega@almacen.local", "bodega123", "Bodeguero", entity.RoleBodeguero); err != nil {
		fmt.Fprintf(os.Stderr, "Crear bodeguero: %v\n", err)
		os.Exit(1)
	}

	uc := ledger.NewLedgerUseCase(
		postgres.NewTxRunner(pool),
		postgres.NewStockRecordRepository(pool),
		postgres.NewStockTransactionRepository(pool),
	)

	samples := []struct {
		ref entity.ItemRef
		qty string
	}{
		{entity.ItemRef{Type: entity.ItemTypeMaterial, ID: "MAT-TORN-M6"}, "500"},
		{entity.ItemRef{Type: entity.ItemTypeMaterial, ID: "MAT-LAM-2MM"}, "40"},
		{entity.ItemRef{Type: entity.ItemTypeTool, ID: "HER-TALAD-01"}, "3"},
	}
	for _, s := range samples {
		qty, err := decimal.NewFromString(s.qty)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cantidad inválida %q: %v\n", s.qty, err)
			os.Exit(1)
		}
		_, err = uc.Adjust(ctx, ledger.AdjustInput{
			ItemRef: s.ref,
			Type:    entity.TransactionINITIAL,
			Delta:   qty,
			Reason:  "carga inicial de desarrollo",
			UserID:  adminID,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Stock inicial %s: %v\n", s.ref, err)
			os.Exit(1)
		}
		fmt.Printf("Stock inicial %s = %s\n", s.ref, s.qty)
	}

	fmt.Println("Seed completado.")
}

// seedUser crea el usuario si no existe y devuelve su ID en ambos casos.
func seedUser(repo repository.UserRepository, email, password, name, role string) (string, error) {
	if existing, err := repo.FindByEmail(email); err == nil && existing != nil {
		fmt.Printf("Usuario %s ya existe, se omite\n", email)
		return existing.ID, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	now := time.Now()
	u := &entity.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(u); err != nil {
		return "", err
	}
	fmt.Printf("Usuario %s creado (%s)\n", email, role)
	return u.ID, nil
}
