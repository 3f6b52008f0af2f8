package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-brevo/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ParameterStore keeps connector parameters in brevo_connector_parameters,
// one row per connector and parameter name.
type ParameterStore struct {
	db        *bun.DB
	repo      repository.Repository[*parameterRecord]
	connector string
}

func NewParameterStore(db *bun.DB, connector string) (*ParameterStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	connector = strings.TrimSpace(connector)
	if connector == "" {
		return nil, fmt.Errorf("sqlstore: connector name is required")
	}
	repo := repository.NewRepository[*parameterRecord](db, parameterHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid parameter repository wiring: %w", err)
		}
	}
	return &ParameterStore{db: db, repo: repo, connector: connector}, nil
}

func (s *ParameterStore) Connector() string {
	if s == nil {
		return ""
	}
	return s.connector
}

func (s *ParameterStore) GetParameter(ctx context.Context, key string) ([]byte, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: parameter store is not configured")
	}
	record, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, core.ErrParameterNotFound
	}
	return []byte(record.Value), nil
}

func (s *ParameterStore) SetParameter(ctx context.Context, key string, value []byte) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: parameter store is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("sqlstore: parameter key is required")
	}
	now := time.Now().UTC()

	record, err := s.find(ctx, key)
	if err != nil {
		return err
	}
	if record == nil {
		record = &parameterRecord{
			ID:        uuid.NewString(),
			Connector: s.connector,
			Name:      key,
			Value:     string(value),
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, createErr := s.repo.Create(ctx, record)
		if createErr == nil {
			return nil
		}
		if !isUniqueViolation(createErr) {
			return createErr
		}
		record, err = s.find(ctx, key)
		if err != nil {
			return err
		}
		if record == nil {
			return createErr
		}
	}

	record.Value = string(value)
	record.UpdatedAt = now
	_, err = s.repo.Update(ctx, record, repository.UpdateByID(record.ID))
	return err
}

func (s *ParameterStore) DeleteParameter(ctx context.Context, key string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: parameter store is not configured")
	}
	_, err := s.db.NewDelete().
		Model((*parameterRecord)(nil)).
		Where("connector = ?", s.connector).
		Where("name = ?", strings.TrimSpace(key)).
		Exec(ctx)
	return err
}

// Names lists the stored parameter names of the connector.
func (s *ParameterStore) Names(ctx context.Context) ([]string, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: parameter store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("connector", "=", s.connector),
		repository.OrderBy("name ASC"),
	)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(records))
	for _, record := range records {
		names = append(names, record.Name)
	}
	return names, nil
}

func (s *ParameterStore) find(ctx context.Context, key string) (*parameterRecord, error) {
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("connector", "=", s.connector),
		repository.SelectBy("name", "=", strings.TrimSpace(key)),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func isUniqueViolation(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}
