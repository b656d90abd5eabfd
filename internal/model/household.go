package model

import "time"

// DefaultHouseholdName is used when a household is created without a name.
const DefaultHouseholdName = "Us"

type Household struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	InviteCode  *string   `json:"invite_code"`
	UserAID     string    `json:"user_a_id"`
	UserBID     *string   `json:"user_b_id"`
	Anniversary *Date     `json:"anniversary"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasMember reports whether userID occupies either seat.
func (h *Household) HasMember(userID string) bool {
	if h.UserAID == userID {
		return true
	}
	return h.UserBID != nil && *h.UserBID == userID
}

// Full reports whether both seats are taken.
func (h *Household) Full() bool {
	return h.UserBID != nil
}

type HouseholdCreate struct {
	Name        string `json:"name"`
	Anniversary *Date  `json:"anniversary"`
}

type HouseholdJoin struct {
	InviteCode string `json:"invite_code"`
}

type HouseholdPatch struct {
	Name        Optional[string] `json:"name"`
	Anniversary Optional[Date]   `json:"anniversary"`
}
