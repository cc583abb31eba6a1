package storefront

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Store serializes every state change through reduce and writes the changed
// slices to Storage before notifying subscribers. It is safe for concurrent
// use.
type Store struct {
	mu      sync.Mutex
	state   State
	storage Storage
	logger  *logrus.Logger

	subMu  sync.Mutex
	subs   map[int]func(State)
	nextID int
}

// NewStore hydrates the persisted slices from storage. Unreadable entries
// are logged and start empty.
func NewStore(storage Storage, logger *logrus.Logger) *Store {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	if logger == nil {
		logger = logrus.New()
	}
	s := &Store{storage: storage, logger: logger, subs: map[int]func(State){}}

	var user UserInfo
	load := func(key string, dest any) bool {
		ok, err := storage.Load(key, dest)
		if err != nil {
			logger.WithError(err).WithField("key", key).Warn("storefront: discarding unreadable state")
			return false
		}
		return ok
	}
	load(KeyCartItems, &s.state.CartItems)
	load(KeyWishlist, &s.state.Wishlist)
	if load(KeyUserInfo, &user) && user.Token != "" {
		s.state.UserInfo = &user
	}
	load(KeyShippingAddress, &s.state.ShippingAddress)
	load(KeyPaymentMethod, &s.state.PaymentMethod)
	return s
}

// State returns a snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn for every new state and returns the function that
// removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// Dispatch applies a. A rejected action leaves the state as it was apart
// from a warning alert, and its error is returned.
func (s *Store) Dispatch(a Action) error {
	s.mu.Lock()
	next, err := reduce(s.state.clone(), a)
	if err != nil {
		s.state.Alert = &Alert{Kind: AlertWarning, Message: err.Error()}
	} else {
		s.state = next
		for _, key := range persisted(a) {
			s.save(key)
		}
	}
	snap := s.state.clone()
	s.mu.Unlock()

	s.notify(snap)
	return err
}

// save must be called with mu held.
func (s *Store) save(key string) {
	var err error
	switch key {
	case KeyCartItems:
		err = s.storage.Save(key, s.state.CartItems)
	case KeyWishlist:
		err = s.storage.Save(key, s.state.Wishlist)
	case KeyUserInfo:
		if s.state.UserInfo == nil {
			err = s.storage.Delete(key)
		} else {
			err = s.storage.Save(key, s.state.UserInfo)
		}
	case KeyShippingAddress:
		err = s.storage.Save(key, s.state.ShippingAddress)
	case KeyPaymentMethod:
		err = s.storage.Save(key, s.state.PaymentMethod)
	}
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("storefront: persist failed")
	}
}

func (s *Store) notify(st State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(st.clone())
	}
}

func (s *Store) AddToCart(p Product, qty int) error {
	return s.Dispatch(AddToCart{Product: p, Qty: qty})
}

func (s *Store) UpdateQty(productID string, qty int) error {
	return s.Dispatch(UpdateQty{ProductID: productID, Qty: qty})
}

func (s *Store) RemoveFromCart(productID string) error {
	return s.Dispatch(RemoveFromCart{ProductID: productID})
}

func (s *Store) ClearCart() error { return s.Dispatch(ClearCart{}) }

func (s *Store) AddToWishlist(productID string) error {
	return s.Dispatch(AddToWishlist{ProductID: productID})
}

func (s *Store) RemoveFromWishlist(productID string) error {
	return s.Dispatch(RemoveFromWishlist{ProductID: productID})
}

func (s *Store) ToggleWishlist(productID string) error {
	return s.Dispatch(ToggleWishlist{ProductID: productID})
}

// Logout forgets the session. Cart and wishlist stay.
func (s *Store) Logout() error { return s.Dispatch(Logout{}) }

func (s *Store) SaveShippingAddress(a ShippingAddress) error {
	return s.Dispatch(SaveShippingAddress{Address: a})
}

func (s *Store) SavePaymentMethod(method string) error {
	return s.Dispatch(SavePaymentMethod{Method: method})
}

func (s *Store) DismissAlert() error { return s.Dispatch(DismissAlert{}) }
