package wishlist

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/appnity-softwares/digitalEcom-sub000/internal/domain"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/liststore"
	"github.com/appnity-softwares/digitalEcom-sub000/internal/optimistic"
)

// Remote is the server-backed wishlist collaborator. Add returns the stored
// entity carrying the server-assigned wishlist-item ID; the server owns
// identity for creates.
type Remote interface {
	Fetch(ctx context.Context) ([]domain.WishlistItem, error)
	Add(ctx context.Context, item domain.WishlistItem) (domain.WishlistItem, error)
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Mode says which backend currently holds the wishlist.
type Mode string

const (
	ModeGuest         Mode = "GUEST"
	ModeAuthenticated Mode = "AUTHENTICATED"
)

// Synchronizer owns the wishlist for one browser session. Guests live
// entirely on the durable local mirror; after login the server becomes the
// backend and the local mirror is only a staging area for the merge.
type Synchronizer struct {
	mu      sync.Mutex
	mode    Mode
	items   []domain.WishlistItem
	guest   *liststore.Store[domain.WishlistItem]
	remote  Remote
	session domain.Session
	sfg     singleflight.Group // dedupes concurrent remote fetches
	logger  *zap.Logger
}

func NewSynchronizer(ctx context.Context, guest *liststore.Store[domain.WishlistItem], logger *zap.Logger) *Synchronizer {
	return &Synchronizer{
		mode:   ModeGuest,
		items:  guest.Load(ctx),
		guest:  guest,
		logger: logger,
	}
}

func (s *Synchronizer) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Login switches to the authenticated backend and merges the guest wishlist
// into it. Items are submitted one at a time, in order; parallel submission
// would race duplicate-key checks server-side. When every item merged, the
// guest staging copy is cleared and the in-memory list is replaced by the
// server's view.
func (s *Synchronizer) Login(ctx context.Context, session domain.Session, remote Remote) error {
	if !session.Authenticated() {
		return fmt.Errorf("login requires an authenticated session")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = ModeAuthenticated
	s.session = session
	s.remote = remote

	merged := true
	for _, item := range s.items {
		if item.RemoteID != "" {
			continue // already server-backed
		}
		if _, err := remote.Add(ctx, item); err != nil {
			merged = false
			s.logger.Warn("wishlist merge: item not migrated",
				zap.String("item_id", item.ID),
				zap.Error(err))
		}
	}

	if merged {
		if err := s.guest.Clear(ctx); err != nil {
			s.logger.Warn("wishlist merge: staging copy not cleared", zap.Error(err))
		}
	}

	return s.refreshLocked(ctx)
}

// Logout returns to guest mode. Server state stays where it is; the next
// guest session starts from whatever the local mirror holds.
func (s *Synchronizer) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = ModeGuest
	s.session = domain.Guest
	s.remote = nil
	s.items = s.guest.Load(ctx)
}

// Add saves an item. Adding an ID that is already present is a no-op:
// wishlist entries are never replaced in place. In authenticated mode the
// insert is optimistic; a failed remote create removes the entry again and
// the error is returned after the rollback took effect.
func (s *Synchronizer) Add(ctx context.Context, item domain.WishlistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(item.ID) >= 0 {
		return nil
	}

	if s.mode == ModeGuest {
		s.items = append(s.items, item)
		return s.persistGuest(ctx)
	}

	_, err := optimistic.AddToList(ctx, &s.items, item, remoteKey, withRemoteKey, s.remote.Add)
	if err != nil {
		s.resyncLocked(ctx)
		return fmt.Errorf("wishlist add %q: %w", item.ID, err)
	}
	return nil
}

// Remove drops the item with the given product ID. In authenticated mode the
// removal is optimistic; the remote delete is keyed by the server-assigned
// wishlist-item ID when known, else by the product ID, and a failure
// re-inserts the removed value.
func (s *Synchronizer) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}

	if s.mode == ModeGuest {
		s.items = append(s.items[:idx], s.items[idx+1:]...)
		return s.persistGuest(ctx)
	}

	item := s.items[idx]
	key := item.RemoteID
	if key == "" {
		key = item.ID
	}

	err := optimistic.RemoveFromList(ctx, &s.items, id, productKey,
		func(ctx context.Context, _ domain.WishlistItem) error {
			return s.remote.Remove(ctx, key)
		})
	if err != nil {
		return fmt.Errorf("wishlist remove %q: %w", id, err)
	}
	return nil
}

// Contains is a pure membership query.
func (s *Synchronizer) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0
}

// Items returns a copy of the current wishlist.
func (s *Synchronizer) Items() []domain.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]domain.WishlistItem, len(s.items))
	copy(cp, s.items)
	return cp
}

// Clear empties the wishlist immediately. The remote clear-all is not rolled
// back on failure (clearing is a destructive user action), but the error is
// still returned so the caller can surface it.
func (s *Synchronizer) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = []domain.WishlistItem{}

	if s.mode == ModeGuest {
		return s.persistGuest(ctx)
	}
	if err := s.remote.Clear(ctx); err != nil {
		return fmt.Errorf("wishlist clear: %w", err)
	}
	return nil
}

// Refresh replaces the in-memory list with the server's view. The fetch runs
// without the state lock held, so concurrent refreshes for one user overlap
// and collapse into a single remote call.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.mode != ModeAuthenticated {
		s.mu.Unlock()
		return nil
	}
	userID := s.session.UserID
	remote := s.remote
	s.mu.Unlock()

	items, err := s.fetchShared(ctx, userID, remote)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The session may have changed while the fetch was in flight; a stale
	// result must not overwrite another user's list.
	if s.mode != ModeAuthenticated || s.session.UserID != userID {
		return nil
	}
	s.items = items
	return nil
}

// refreshLocked is the lock-held variant used by Login and resync, where the
// caller already owns the state transition.
func (s *Synchronizer) refreshLocked(ctx context.Context) error {
	items, err := s.fetchShared(ctx, s.session.UserID, s.remote)
	if err != nil {
		return err
	}
	s.items = items
	return nil
}

// fetchShared dedupes concurrent fetches for one user through singleflight.
// Must be called without s.mu when a concurrent caller may also fetch.
func (s *Synchronizer) fetchShared(ctx context.Context, userID string, remote Remote) ([]domain.WishlistItem, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		return remote.Fetch(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("wishlist fetch: %w", err)
	}
	items := v.([]domain.WishlistItem)
	if items == nil {
		items = []domain.WishlistItem{}
	}
	return items, nil
}

// resyncLocked restores the in-memory list from the authoritative backend
// after a failed optimistic mutation. Best effort; the rollback already ran.
func (s *Synchronizer) resyncLocked(ctx context.Context) {
	if err := s.refreshLocked(ctx); err != nil {
		s.logger.Warn("wishlist resync failed", zap.Error(err))
	}
}

func (s *Synchronizer) persistGuest(ctx context.Context) error {
	if err := s.guest.Save(ctx, s.items); err != nil {
		s.logger.Error("wishlist persist failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *Synchronizer) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func productKey(i domain.WishlistItem) string { return i.ID }
func remoteKey(i domain.WishlistItem) string  { return i.RemoteID }

func withRemoteKey(i domain.WishlistItem, key string) domain.WishlistItem {
	i.RemoteID = key
	return i
}
