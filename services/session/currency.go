package session

import (
	"context"

	"ayurbook/database/repository/localstore"
	"ayurbook/models"
	"ayurbook/utils"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Currency is the display currency preference.
func (s *Store) Currency() models.Currency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currency
}

// SetCurrency changes and persists the display currency.
func (s *Store) SetCurrency(ctx context.Context, cur models.Currency) error {
	parsed, err := models.ParseCurrency(string(cur))
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.currency = parsed
	s.mu.Unlock()

	if s.Local != nil {
		if err := s.Local.Set(ctx, utils.CurrencyKey, string(parsed)); err != nil {
			return errors.Wrap(err, "persist currency")
		}
	}
	s.Events.Publish(utils.TopicSession, s.IsAuthenticated())
	return nil
}

func (s *Store) restoreCurrency(ctx context.Context) error {
	raw, err := s.Local.Get(ctx, utils.CurrencyKey)
	if errors.Is(err, localstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "load currency")
	}
	cur, err := models.ParseCurrency(raw)
	if err != nil {
		s.Logger.Warn("[Session] ignoring stored currency", zap.String("value", raw), zap.Error(err))
		return nil
	}
	s.mu.Lock()
	s.currency = cur
	s.mu.Unlock()
	return nil
}
