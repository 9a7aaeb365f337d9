package store

import (
	"context"
	"encoding/json"
	"errors"

	redis "github.com/redis/go-redis/v9"
)

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is a JSON document store over Redis. Site configuration, products,
// coupons and orders are small documents written whole by the admin surface
// and read whole by the pricing core.
type Store struct {
	R *redis.Client
}

// GetJSON unmarshals the document at key into dst. It reports whether the key existed.
func (s *Store) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if s == nil || s.R == nil || key == "" {
		return false, errors.New("store: not configured")
	}
	data, err := s.R.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serialises v and stores it at key without expiry.
func (s *Store) SetJSON(ctx context.Context, key string, v any) error {
	if s == nil || s.R == nil || key == "" {
		return errors.New("store: not configured")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.R.Set(ctx, key, data, 0).Err()
}

// Delete removes the document at key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if s == nil || s.R == nil {
		return errors.New("store: not configured")
	}
	return s.R.Del(ctx, key).Err()
}

// Keys scans for keys matching the provided pattern.
func (s *Store) Keys(ctx context.Context, pattern string) ([]string, error) {
	if s == nil || s.R == nil {
		return nil, errors.New("store: not configured")
	}
	var (
		cursor uint64
		out    []string
	)
	for {
		keys, next, err := s.R.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		out = append(out, keys...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return out, nil
}

// incrCappedScript increments a counter only while it stays at or below the
// cap. cap <= 0 means unlimited. Returns the new value, or -1 when the cap
// would be exceeded.
const incrCappedScript = `local current = tonumber(redis.call("get", KEYS[1]) or "0")
local cap = tonumber(ARGV[1])
if cap > 0 and current >= cap then
  return -1
end
return redis.call("incr", KEYS[1])`

// IncrCapped atomically increments the counter at key unless it has reached
// cap. The returned value is the counter after the increment; ok reports
// whether the increment happened.
func (s *Store) IncrCapped(ctx context.Context, key string, cap int64) (value int64, ok bool, err error) {
	if s == nil || s.R == nil {
		return 0, false, errors.New("store: not configured")
	}
	res, err := s.R.Eval(ctx, incrCappedScript, []string{key}, cap).Int64()
	if err != nil {
		return 0, false, err
	}
	if res < 0 {
		return 0, false, nil
	}
	return res, true, nil
}

// decrAvailableScript decrements a counter by n only when at least n remains.
// A missing key is reported distinctly so callers can treat it as unmanaged.
const decrAvailableScript = `if redis.call("exists", KEYS[1]) == 0 then
  return -2
end
local current = tonumber(redis.call("get", KEYS[1]))
local n = tonumber(ARGV[1])
if current < n then
  return -1
end
return redis.call("decrby", KEYS[1], n)`

// Decrement outcomes for DecrAvailable.
const (
	// DecrUnmanaged means no counter exists at the key.
	DecrUnmanaged = -2
	// DecrInsufficient means the counter holds less than the requested amount.
	DecrInsufficient = -1
)

// DecrAvailable atomically decrements the counter at key by n when at least n
// remains. It returns the remaining value, DecrInsufficient, or DecrUnmanaged.
func (s *Store) DecrAvailable(ctx context.Context, key string, n int64) (int64, error) {
	if s == nil || s.R == nil {
		return 0, errors.New("store: not configured")
	}
	return s.R.Eval(ctx, decrAvailableScript, []string{key}, n).Int64()
}

// GetCounter reads an integer counter, returning 0 when absent.
func (s *Store) GetCounter(ctx context.Context, key string) (int64, error) {
	if s == nil || s.R == nil {
		return 0, errors.New("store: not configured")
	}
	v, err := s.R.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return v, nil
}

// SetCounter overwrites an integer counter.
func (s *Store) SetCounter(ctx context.Context, key string, v int64) error {
	if s == nil || s.R == nil {
		return errors.New("store: not configured")
	}
	return s.R.Set(ctx, key, v, 0).Err()
}

// Incr increments an integer counter without a cap.
func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	if s == nil || s.R == nil {
		return 0, errors.New("store: not configured")
	}
	return s.R.Incr(ctx, key).Result()
}

// IncrBy adds n to an integer counter. Used to restore stock after a failed
// checkout.
func (s *Store) IncrBy(ctx context.Context, key string, n int64) error {
	if s == nil || s.R == nil {
		return errors.New("store: not configured")
	}
	return s.R.IncrBy(ctx, key, n).Err()
}
