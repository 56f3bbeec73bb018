package domain

import (
	"encoding/json"
	"time"
)

// VendorStatus is the lifecycle state of a vendor record.
type VendorStatus string

const (
	VendorStatusActive    VendorStatus = "active"
	VendorStatusInactive  VendorStatus = "inactive"
	VendorStatusSuspended VendorStatus = "suspended"
)

// Valid reports whether s is one of the known statuses.
func (s VendorStatus) Valid() bool {
	switch s {
	case VendorStatusActive, VendorStatusInactive, VendorStatusSuspended:
		return true
	}
	return false
}

// Vendor (tenant) is a single merchant storefront.
type Vendor struct {
	ID        string
	Name      string
	Domain    string // custom domain, empty when the vendor only has a subdomain
	Slug      string
	LogoURL   string
	Theme     *ThemeConfig
	Status    VendorStatus
	CreatedAt time.Time
}

// Resolvable reports whether the vendor may be returned by any lookup.
func (v *Vendor) Resolvable() bool {
	return v != nil && v.Status == VendorStatusActive
}

// Clone returns a deep copy so cached values are never shared with callers.
func (v *Vendor) Clone() *Vendor {
	if v == nil {
		return nil
	}
	c := *v
	c.Theme = v.Theme.Clone()
	return &c
}

// ThemeConfig holds per-vendor display overrides. Unknown keys are kept in Extra.
type ThemeConfig struct {
	PrimaryColor   string         `json:"primary_color,omitempty" validate:"omitempty,hexcolor"`
	SecondaryColor string         `json:"secondary_color,omitempty" validate:"omitempty,hexcolor"`
	FontFamily     string         `json:"font_family,omitempty" validate:"omitempty,max=128"`
	Extra          map[string]any `json:"-"`
}

var themeKnownKeys = []string{"primary_color", "secondary_color", "font_family"}

// Clone returns a deep copy of the theme, including nested maps and slices in Extra.
func (t *ThemeConfig) Clone() *ThemeConfig {
	if t == nil {
		return nil
	}
	c := *t
	if t.Extra != nil {
		c.Extra = cloneObject(t.Extra)
	}
	return &c
}

func cloneObject(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue copies the containers encoding/json decodes into; scalars are immutable.
func cloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		if x == nil {
			return x
		}
		return cloneObject(x)
	case []any:
		if x == nil {
			return x
		}
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]string:
		if x == nil {
			return x
		}
		out := make(map[string]string, len(x))
		for k, e := range x {
			out[k] = e
		}
		return out
	case []string:
		if x == nil {
			return x
		}
		return append([]string(nil), x...)
	}
	return v
}

// MarshalJSON writes the typed fields merged with Extra. Typed fields win on conflict.
func (t ThemeConfig) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t.Extra)+len(themeKnownKeys))
	for k, v := range t.Extra {
		out[k] = v
	}
	if t.PrimaryColor != "" {
		out["primary_color"] = t.PrimaryColor
	}
	if t.SecondaryColor != "" {
		out["secondary_color"] = t.SecondaryColor
	}
	if t.FontFamily != "" {
		out["font_family"] = t.FontFamily
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits the raw object into known fields and Extra.
// A known key holding a non-string value stays in Extra so it survives a round trip.
func (t *ThemeConfig) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = ThemeConfig{}
	fields := [...]*string{&t.PrimaryColor, &t.SecondaryColor, &t.FontFamily}
	for i, k := range themeKnownKeys {
		if s, ok := raw[k].(string); ok {
			*fields[i] = s
			delete(raw, k)
		}
	}
	if len(raw) > 0 {
		t.Extra = raw
	}
	return nil
}
