package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"storefront-service/models"

	"go.uber.org/zap"
)

// CartNotifier receives a notification after every successful cart write.
type CartNotifier interface {
	NotifyCartChanged(ctx context.Context, change models.CartChanged)
}

type CartRepository struct {
	store    KVStore
	ttl      time.Duration
	notifier CartNotifier
	log      *zap.Logger
}

func NewCartRepository(store KVStore, ttl time.Duration, notifier CartNotifier, log *zap.Logger) *CartRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartRepository{
		store:    store,
		ttl:      ttl,
		notifier: notifier,
		log:      log,
	}
}

func (r *CartRepository) getKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

// storedLine tolerates the loose shapes older clients wrote (numeric strings,
// missing fields) so a stored cart can be repaired instead of discarded.
type storedLine struct {
	ID    models.ProductID  `json:"id"`
	Qty   models.FlexNumber `json:"qty"`
	Title string            `json:"title"`
	Price models.FlexNumber `json:"price"`
	Image string            `json:"image"`
}

// ReadCart returns the stored cart lines, normalized. Missing, unreadable or
// malformed data yields an empty cart; it never fails and never writes.
func (r *CartRepository) ReadCart(ctx context.Context, sessionID string) []models.CartLine {
	raw, found, err := r.store.Get(ctx, r.getKey(sessionID))
	if err != nil {
		r.log.Warn("cart read failed, using empty cart", zap.String("session_id", sessionID), zap.Error(err))
		return []models.CartLine{}
	}
	if !found {
		return []models.CartLine{}
	}

	lines, ok := decodeLines(raw)
	if !ok {
		r.log.Debug("malformed stored cart ignored", zap.String("session_id", sessionID))
		return []models.CartLine{}
	}
	return lines
}

// hasCart reports whether a cart entry exists for the session.
func (r *CartRepository) hasCart(ctx context.Context, sessionID string) bool {
	_, found, err := r.store.Get(ctx, r.getKey(sessionID))
	return err == nil && found
}

func decodeLines(raw string) ([]models.CartLine, bool) {
	var stored []storedLine
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, false
	}
	lines := make([]models.CartLine, 0, len(stored))
	for _, s := range stored {
		lines = append(lines, models.CartLine{
			ID:    s.ID,
			Qty:   int(s.Qty),
			Title: s.Title,
			Price: float64(s.Price),
			Image: s.Image,
		})
	}
	return Normalize(lines), true
}

// WriteCart normalizes lines, persists them and notifies subscribers. It returns
// the normalized cart as stored.
func (r *CartRepository) WriteCart(ctx context.Context, sessionID string, lines []models.CartLine) ([]models.CartLine, error) {
	normalized := Normalize(lines)

	data, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	if err := r.store.Set(ctx, r.getKey(sessionID), string(data), r.ttl); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}

	if r.notifier != nil {
		r.notifier.NotifyCartChanged(ctx, models.CartChanged{
			SessionID: sessionID,
			Lines:     len(normalized),
			Count:     models.TotalQty(normalized),
		})
	}
	return normalized, nil
}

// InitCart starts a clean cart when none is stored or reset is requested, and
// otherwise re-normalizes whatever is stored.
func (r *CartRepository) InitCart(ctx context.Context, sessionID string, reset bool) ([]models.CartLine, error) {
	if reset || !r.hasCart(ctx, sessionID) {
		return r.WriteCart(ctx, sessionID, nil)
	}
	return r.WriteCart(ctx, sessionID, r.ReadCart(ctx, sessionID))
}

// Normalize merges duplicate ids by summing quantities and drops lines with an
// empty id or a non-positive quantity. Output keeps first-seen id order.
// Normalize is idempotent.
func Normalize(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, 0, len(lines))
	index := make(map[models.ProductID]int, len(lines))

	for _, l := range lines {
		id := models.ProductID(strings.TrimSpace(string(l.ID)))
		if id == "" {
			continue
		}
		if i, ok := index[id]; ok {
			merged := &out[i]
			merged.Qty += l.Qty
			if merged.Title == "" {
				merged.Title = l.Title
			}
			if merged.Price == 0 {
				merged.Price = l.Price
			}
			if merged.Image == "" {
				merged.Image = l.Image
			}
			continue
		}
		l.ID = id
		index[id] = len(out)
		out = append(out, l)
	}

	kept := out[:0]
	for _, l := range out {
		if l.Qty > 0 {
			kept = append(kept, l)
		}
	}
	return kept
}
