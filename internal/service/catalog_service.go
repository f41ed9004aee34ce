package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/avoronova/salon_bot/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService справочные данные: каталог услуг, чёрный список, шаблоны
// регулярных окон. Ядро бронирования читает отсюда, но ничего не пишет.
type CatalogService struct {
	procedures ProcedureCatalog
	blacklist  BlacklistAdmin
	logger     *zap.Logger
}

// BlacklistAdmin полный доступ к чёрному списку
type BlacklistAdmin interface {
	BlacklistGate
	Add(ctx context.Context, username string) error
	Remove(ctx context.Context, username string) error
	List(ctx context.Context) ([]*model.BlacklistEntry, error)
}

func NewCatalogService(procedures ProcedureCatalog, blacklist BlacklistAdmin, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		procedures: procedures,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// CreateProcedure создаёт услугу. Машинный ключ выводится из названия чистой
// функцией; при коллизии добавляется суффикс от uuid.
func (s *CatalogService) CreateProcedure(ctx context.Context, name string) (*model.Procedure, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty procedure name", ErrProcedureNotFound)
	}

	key := MakeProcedureKey(name)
	taken, err := s.procedures.KeyExists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check procedure key: %w", err)
	}
	if taken {
		key = key + "_" + uuid.NewString()[:8]
	}

	procedure := &model.Procedure{
		Key:      key,
		Name:     name,
		IsActive: true,
	}
	if err := s.procedures.Create(ctx, procedure); err != nil {
		return nil, err
	}

	s.logger.Info("Procedure created",
		zap.Int64("procedure_id", procedure.ID),
		zap.String("key", procedure.Key),
	)

	return procedure, nil
}

// GetActiveProcedures получает все активные услуги
func (s *CatalogService) GetActiveProcedures(ctx context.Context) ([]*model.Procedure, error) {
	return s.procedures.GetActive(ctx)
}

// ProcedureByKey получает услугу по машинному ключу
func (s *CatalogService) ProcedureByKey(ctx context.Context, key string) (*model.Procedure, error) {
	procedure, err := s.procedures.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if procedure == nil {
		return nil, ErrProcedureNotFound
	}
	return procedure, nil
}

// BlockClient добавляет ник в чёрный список
func (s *CatalogService) BlockClient(ctx context.Context, username string) error {
	username = NormalizeUsername(username)
	if username == "" {
		return fmt.Errorf("empty username")
	}

	if err := s.blacklist.Add(ctx, username); err != nil {
		return err
	}

	s.logger.Info("Client blacklisted", zap.String("username", username))
	return nil
}

// UnblockClient убирает ник из чёрного списка
func (s *CatalogService) UnblockClient(ctx context.Context, username string) error {
	return s.blacklist.Remove(ctx, NormalizeUsername(username))
}

// Blacklist получает весь чёрный список
func (s *CatalogService) Blacklist(ctx context.Context) ([]*model.BlacklistEntry, error) {
	return s.blacklist.List(ctx)
}

// MakeProcedureKey выводит машинный ключ из названия услуги: нижний регистр,
// пробелы в подчёркивания, остальное отбрасывается. Чистая функция; если от
// названия ничего не осталось, ключ строится от uuid.
func MakeProcedureKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			b.WriteRune('_')
		}
	}

	key := strings.Trim(b.String(), "_")
	for strings.Contains(key, "__") {
		key = strings.ReplaceAll(key, "__", "_")
	}

	if key == "" {
		return "proc_" + uuid.NewString()[:8]
	}
	return key
}
