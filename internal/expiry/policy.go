package expiry

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Policy holds every threshold the engine uses. The zero value is not useful; start from DefaultPolicy.
type Policy struct {
	CriticalDays     int             `yaml:"critical_days" json:"criticalDays"`
	WarningDays      int             `yaml:"warning_days" json:"warningDays"`
	AttentionDays    int             `yaml:"attention_days" json:"attentionDays"`
	DefaultLowStock  decimal.Decimal `yaml:"-" json:"defaultLowStock"`
	NotifyWindowDays int             `yaml:"notify_window_days" json:"notifyWindowDays"`
	SoonWindowDays   int             `yaml:"soon_window_days" json:"soonWindowDays"`
	RetentionDays    int             `yaml:"retention_days" json:"retentionDays"`
}

// Default thresholds.
const (
	DefaultCriticalDays     = 2
	DefaultWarningDays      = 5
	DefaultAttentionDays    = 10
	DefaultLowStockQty      = 5
	DefaultNotifyWindowDays = 3
	DefaultSoonWindowDays   = 7
	DefaultRetentionDays    = 30
)

func DefaultPolicy() Policy {
	return Policy{
		CriticalDays:     DefaultCriticalDays,
		WarningDays:      DefaultWarningDays,
		AttentionDays:    DefaultAttentionDays,
		DefaultLowStock:  decimal.NewFromInt(DefaultLowStockQty),
		NotifyWindowDays: DefaultNotifyWindowDays,
		SoonWindowDays:   DefaultSoonWindowDays,
		RetentionDays:    DefaultRetentionDays,
	}
}

var ErrInvalidPolicy = errors.New("invalid expiry policy")

// Validate requires non-negative values and strictly increasing day thresholds.
func (p Policy) Validate() error {
	switch {
	case p.CriticalDays < 0 || p.WarningDays < 0 || p.AttentionDays < 0:
		return fmt.Errorf("%w: day thresholds must be >= 0", ErrInvalidPolicy)
	case p.CriticalDays >= p.WarningDays || p.WarningDays >= p.AttentionDays:
		return fmt.Errorf("%w: want critical < warning < attention, got %d/%d/%d",
			ErrInvalidPolicy, p.CriticalDays, p.WarningDays, p.AttentionDays)
	case p.DefaultLowStock.IsNegative():
		return fmt.Errorf("%w: default low-stock threshold must be >= 0", ErrInvalidPolicy)
	case p.NotifyWindowDays < 0 || p.SoonWindowDays < 0:
		return fmt.Errorf("%w: windows must be >= 0", ErrInvalidPolicy)
	case p.RetentionDays <= 0:
		return fmt.Errorf("%w: retention must be > 0", ErrInvalidPolicy)
	}
	return nil
}
