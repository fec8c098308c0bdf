package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/pawlog/internal/models"
)

// CreatePet сохраняет питомца.
func (s *Storage) CreatePet(ctx context.Context, pet models.Pet) error {
	const op = "storage.CreatePet"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO pets (id, owner_id, name, breed, birth_date, weight_kg,
			      daily_calorie_target, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.DB.ExecContext(ctx, query, pet.ID, pet.OwnerID, pet.Name, pet.Breed,
		pet.BirthDate, pet.WeightKg, pet.DailyCalorieTarget, pet.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CreatePetWithinLimit сохраняет питомца, только если у владельца их меньше limit.
// Проверка и вставка идут в одной транзакции под advisory-блокировкой владельца,
// поэтому параллельные вставки не превысят лимит. Иначе возвращает ErrLimitReached.
func (s *Storage) CreatePetWithinLimit(ctx context.Context, pet models.Pet, limit int) error {
	const op = "storage.CreatePetWithinLimit"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, pet.OwnerID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	var count int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM pets WHERE owner_id = $1`, pet.OwnerID).Scan(&count); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count >= limit {
		return fmt.Errorf("%s: %w", op, ErrLimitReached)
	}

	query := `INSERT INTO pets (id, owner_id, name, breed, birth_date, weight_kg,
			      daily_calorie_target, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err = tx.ExecContext(ctx, query, pet.ID, pet.OwnerID, pet.Name, pet.Breed,
		pet.BirthDate, pet.WeightKg, pet.DailyCalorieTarget, pet.CreatedAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CountPets возвращает число питомцев владельца.
func (s *Storage) CountPets(ctx context.Context, ownerID string) (int, error) {
	const op = "storage.CountPets"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM pets WHERE owner_id = $1`, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// GetPet возвращает питомца по ID или ErrNotFound.
func (s *Storage) GetPet(ctx context.Context, id string) (*models.Pet, error) {
	const op = "storage.GetPet"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, owner_id, name, breed, birth_date, weight_kg, daily_calorie_target, created_at
			  FROM pets WHERE id = $1`
	pet, err := scanPet(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapNoRows(op, err)
	}
	return pet, nil
}

// ListPets возвращает питомцев владельца в порядке создания.
func (s *Storage) ListPets(ctx context.Context, ownerID string) ([]*models.Pet, error) {
	const op = "storage.ListPets"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, owner_id, name, breed, birth_date, weight_kg, daily_calorie_target, created_at
			  FROM pets WHERE owner_id = $1
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Pet
	for rows.Next() {
		pet, err := scanPet(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, pet)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (*models.Pet, error) {
	var (
		p         models.Pet
		birthDate sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Breed, &birthDate, &p.WeightKg,
		&p.DailyCalorieTarget, &p.CreatedAt); err != nil {
		return nil, err
	}
	if birthDate.Valid {
		p.BirthDate = &birthDate.Time
	}
	return &p, nil
}
