package hybridcache

import (
	"errors"
	"fmt"
)

var (
	// ErrTierRequired is returned by New when the resolver yields no tier for a kind.
	ErrTierRequired = errors.New("hybridcache: local and distributed tiers are required")
	// ErrProviderRequired is returned by NewTier without a Provider.
	ErrProviderRequired = errors.New("hybridcache: provider is required")
	// ErrCodecRequired is returned by NewTier without a Codec.
	ErrCodecRequired = errors.New("hybridcache: codec is required")
)

// TierError is returned when both tiers fail the same operation. When only one
// tier fails, its error is returned as is.
type TierError struct {
	Op          string
	Key         string
	Local       error
	Distributed error
}

func (e *TierError) Error() string {
	switch {
	case e.Local != nil && e.Distributed != nil:
		return fmt.Sprintf("%s %q failed on both tiers: local=%v; distributed=%v",
			e.Op, e.Key, e.Local, e.Distributed)
	case e.Local != nil:
		return fmt.Sprintf("%s %q: local tier: %v", e.Op, e.Key, e.Local)
	case e.Distributed != nil:
		return fmt.Sprintf("%s %q: distributed tier: %v", e.Op, e.Key, e.Distributed)
	default:
		return fmt.Sprintf("%s %q: unknown error", e.Op, e.Key)
	}
}

func (e *TierError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Local != nil {
		errs = append(errs, e.Local)
	}
	if e.Distributed != nil {
		errs = append(errs, e.Distributed)
	}
	return errs
}

// tierErr collapses the per-tier results of one operation.
func tierErr(op, key string, local, distributed error) error {
	switch {
	case local == nil && distributed == nil:
		return nil
	case local == nil:
		return distributed
	case distributed == nil:
		return local
	default:
		return &TierError{Op: op, Key: key, Local: local, Distributed: distributed}
	}
}
