package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserSettings holds one subscriber's alert preferences. The record is
// created on first interaction and updated by partial merge; the alert
// engine only ever reads it.
type UserSettings struct {
	UserID      int64
	ChatID      int64
	Alerts      bool
	Threshold   decimal.NullDecimal
	ThresholdOp string
	Wallets     []string
	UpdatedAt   time.Time
}

// DefaultUserSettings returns the settings created on first contact:
// alerts on, no threshold, no wallets.
func DefaultUserSettings(userID, chatID int64) UserSettings {
	return UserSettings{
		UserID: userID,
		ChatID: chatID,
		Alerts: true,
	}
}

// SettingsPatch is a partial update; nil fields are left untouched.
type SettingsPatch struct {
	Alerts      *bool
	Threshold   *decimal.Decimal
	ThresholdOp *string
	AddWallet   *string
	ChatID      *int64
}

// Apply merges the patch into the settings in place.
func (s *UserSettings) Apply(p SettingsPatch) {
	if p.Alerts != nil {
		s.Alerts = *p.Alerts
	}
	if p.Threshold != nil {
		s.Threshold = decimal.NewNullDecimal(*p.Threshold)
	}
	if p.ThresholdOp != nil {
		s.ThresholdOp = *p.ThresholdOp
	}
	if p.AddWallet != nil {
		s.Wallets = append(s.Wallets, *p.AddWallet)
	}
	if p.ChatID != nil {
		s.ChatID = *p.ChatID
	}
}
