package gate

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxAge is how long a device identity lives before it is replaced
const MaxAge = 24 * time.Hour

// DeviceIdentity is the locally generated identifier standing in for a
// browser/device pairing.
type DeviceIdentity struct {
	ID        string
	CreatedAt time.Time
}

// NewDeviceID returns a random version-4 UUID string
// (xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx, y in 8..b).
func NewDeviceID() string {
	return uuid.NewString()
}

// IdentityManager owns creation, aging and invalidation of the device
// identity kept in a Store.
type IdentityManager struct {
	store  Store
	maxAge time.Duration
	now    func() time.Time
	newID  func() string
	log    *zap.Logger
}

// NewIdentityManager creates a manager over store with the default MaxAge
func NewIdentityManager(store Store) *IdentityManager {
	return &IdentityManager{
		store:  store,
		maxAge: MaxAge,
		now:    time.Now,
		newID:  NewDeviceID,
		log:    zap.NewNop(),
	}
}

func (m *IdentityManager) SetClock(now func() time.Time)   { m.now = now }
func (m *IdentityManager) SetIDGenerator(gen func() string) { m.newID = gen }
func (m *IdentityManager) SetMaxAge(d time.Duration)        { m.maxAge = d }
func (m *IdentityManager) SetLogger(l *zap.Logger)          { m.log = l }

// EnsureDeviceIdentity returns the stored identity, replacing it when it is
// older than the max age or only partially stored. A replacement always
// clears the whole store first.
func (m *IdentityManager) EnsureDeviceIdentity() DeviceIdentity {
	now := m.now()

	id, hasID := m.store.Get(KeyUserID)
	rawCreatedAt, hasCreatedAt := m.store.Get(KeyCreatedAt)
	hasID = hasID && id != ""

	switch {
	case hasID && hasCreatedAt:
		createdAt, err := parseMillis(rawCreatedAt)
		if err != nil {
			m.log.Warn("device identity has unreadable createdAt, resetting",
				zap.String("user_id", id), zap.String("created_at", rawCreatedAt))
			m.store.Clear()
			break
		}
		// Negative age (clock skew) never expires.
		if now.Sub(createdAt) > m.maxAge {
			m.log.Info("device identity expired, resetting",
				zap.String("user_id", id), zap.Time("created_at", createdAt))
			m.store.Clear()
			break
		}
		return DeviceIdentity{ID: id, CreatedAt: createdAt}

	case hasID || hasCreatedAt:
		m.log.Warn("partial device identity, resetting",
			zap.Bool("has_user_id", hasID), zap.Bool("has_created_at", hasCreatedAt))
		m.store.Clear()
	}

	identity := DeviceIdentity{ID: m.newID(), CreatedAt: now}
	m.store.Set(KeyUserID, identity.ID)
	m.store.Set(KeyCreatedAt, formatMillis(now))
	m.log.Info("issued device identity", zap.String("user_id", identity.ID))
	return identity
}

func formatMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseMillis(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}
