package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/iliyamo/kiosk-table-reservation/internal/model"
	"github.com/iliyamo/kiosk-table-reservation/internal/utils"
)

// MemoryStoreRepo holds stores and menus for the memory storage driver.
type MemoryStoreRepo struct {
	mu     sync.RWMutex
	stores map[int64]model.Store
	menus  map[int64][]model.StoreMenu
	nextID int64
}

func NewMemoryStoreRepo() *MemoryStoreRepo {
	return &MemoryStoreRepo{stores: map[int64]model.Store{}, menus: map[int64][]model.StoreMenu{}}
}

// PutStore inserts or replaces a store.
func (m *MemoryStoreRepo) PutStore(s model.Store) {
	if s.TableCount <= 0 {
		s.TableCount = model.DefaultTableCount
	}
	m.mu.Lock()
	m.stores[s.ID] = s
	m.mu.Unlock()
}

// AddMenu appends a menu to its store and assigns an id.
func (m *MemoryStoreRepo) AddMenu(menu model.StoreMenu) model.StoreMenu {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	menu.ID = m.nextID
	m.menus[menu.StoreID] = append(m.menus[menu.StoreID], menu)
	return menu
}

func (m *MemoryStoreRepo) GetByID(_ context.Context, id int64) (model.Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stores[id]
	if !ok {
		return model.Store{}, ErrNotFound
	}
	return s, nil
}

// ListMenus mirrors StoreRepo.ListMenus ordering.
func (m *MemoryStoreRepo) ListMenus(_ context.Context, storeID int64) ([]model.StoreMenu, error) {
	m.mu.RLock()
	out := append([]model.StoreMenu{}, m.menus[storeID]...)
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes < out[j].Minutes
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// MemoryUserRepo holds staff accounts for the memory storage driver.
type MemoryUserRepo struct {
	mu     sync.RWMutex
	users  map[string]model.User
	nextID int64
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: map[string]model.User{}}
}

// Add stores an account with a bcrypt hash of password on storeID.
func (m *MemoryUserRepo) Add(username, name, password string, storeID int64, cost int) (model.User, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	username = strings.TrimSpace(username)
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	m.nextID++
	store := storeID
	u := model.User{ID: m.nextID, Username: username, Name: name, PasswordHash: hash, StoreID: &store}
	m.users[username] = u
	return u, nil
}

func (m *MemoryUserRepo) GetByUsername(_ context.Context, username string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[strings.TrimSpace(username)]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

// EnsureAdmin mirrors UserRepo.EnsureAdmin.
func (m *MemoryUserRepo) EnsureAdmin(_ context.Context, username, name, password string, cost int) error {
	_, err := m.Add(username, name, password, model.AdminStoreID, cost)
	return err
}
