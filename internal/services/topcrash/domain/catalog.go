package domain

import (
	"github.com/go-playground/validator/v10"

	perr "topcrash/internal/platform/errors"
)

// DefaultBlockPatterns are the exclusion rules for known noise signatures:
// out-of-memory buckets, the generic shutdown kill, and empty signatures.
// Matching roles (`!=`, `!^`) follow the SuperSearch operator syntax
func DefaultBlockPatterns() []string {
	return []string{
		"!^EMPTY: ",
		"!^OOM | large | EMPTY: ",
		"!=OOM | small",
		"!=IPCError-browser | ShutDownKill",
		"!^java.lang.OutOfMemoryError",
	}
}

var validate = func() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}()

// Catalog is an immutable ordered list of criteria, validated on construction
type Catalog struct {
	criteria []Criterion
}

// NewCatalog validates every criterion and returns the catalog.
// The startup-limit invariant (TCStartupLimit > TCLimit) is enforced here so
// a bad criterion can never reach query dispatch
func NewCatalog(cs []Criterion) (Catalog, error) {
	if len(cs) == 0 {
		return Catalog{}, perr.Configf("catalog requires at least one criterion")
	}
	for i, c := range cs {
		if err := validate.Struct(c); err != nil {
			return Catalog{}, perr.Wrapf(err, perr.ErrorCodeConfig,
				"invalid criterion %d (%s/%v)", i, c.Product, c.Channels)
		}
	}
	out := make([]Criterion, len(cs))
	copy(out, cs)
	return Catalog{criteria: out}, nil
}

// MustCatalog panics on an invalid catalog; use for compiled-in policy lists
func MustCatalog(cs []Criterion) Catalog {
	cat, err := NewCatalog(cs)
	if err != nil {
		panic(err)
	}
	return cat
}

// Criteria returns a copy of the ordered criteria list
func (c Catalog) Criteria() []Criterion {
	out := make([]Criterion, len(c.criteria))
	copy(out, c.criteria)
	return out
}

// Len returns the number of criteria
func (c Catalog) Len() int { return len(c.criteria) }

// DefaultCatalog is the Firefox top-crash identification policy: per-channel
// top lists for the desktop browser plus smaller per-process and per-OS lists
// on the post-nightly channels. The two channels with startup limits keep a
// wider scan so rare startup crashes can be rescued
func DefaultCatalog() Catalog {
	return MustCatalog([]Criterion{
		// Top 20 desktop browser crashes on Release, scanning to 30 for startup
		{
			Product:        "Firefox",
			Channels:       []string{"release"},
			TCLimit:        20,
			TCStartupLimit: 30,
		},
		// Top 20 desktop browser crashes on Beta, scanning to 30 for startup
		{
			Product:        "Firefox",
			Channels:       []string{"beta"},
			TCLimit:        20,
			TCStartupLimit: 30,
		},
		// Top 10 desktop browser crashes on Nightly
		{
			Product:  "Firefox",
			Channels: []string{"nightly"},
			TCLimit:  10,
		},
		// Top 10 content process crashes on Beta and Release
		{
			Product:      "Firefox",
			Channels:     []string{"beta", "release"},
			ProcessTypes: []string{"content"},
			TCLimit:      10,
		},
		// Top 5 gpu process crashes on Beta and Release
		{
			Product:      "Firefox",
			Channels:     []string{"beta", "release"},
			ProcessTypes: []string{"gpu"},
			TCLimit:      5,
		},
		// Top 5 rdd process crashes on Beta and Release
		{
			Product:      "Firefox",
			Channels:     []string{"beta", "release"},
			ProcessTypes: []string{"rdd"},
			TCLimit:      5,
		},
		// Top 5 socket and utility process crashes on Beta and Release
		{
			Product:      "Firefox",
			Channels:     []string{"beta", "release"},
			ProcessTypes: []string{"socket", "utility"},
			TCLimit:      5,
		},
		// Top 5 OS-specific desktop browser crashes on Beta and Release
		{
			Product:  "Firefox",
			Channels: []string{"beta", "release"},
			Platform: "Linux",
			TCLimit:  5,
		},
		{
			Product:  "Firefox",
			Channels: []string{"beta", "release"},
			Platform: "Mac OS X",
			TCLimit:  5,
		},
		{
			Product:  "Firefox",
			Channels: []string{"beta", "release"},
			Platform: "Windows",
			TCLimit:  5,
		},
	})
}
