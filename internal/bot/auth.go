package bot

import (
	"fmt"
	"strings"

	"cryptobot/internal/domain"
)

// AllowList is the fixed set of authorized sender IDs, built once at startup
// and read-only afterwards. Membership is exact: no partial matches, no case
// folding. An empty list authorizes nobody.
type AllowList struct {
	ids map[string]struct{}
}

// NewAllowList builds the set, dropping empty entries so a trailing comma in
// the environment variable cannot authorize the empty ID.
func NewAllowList(ids []string) *AllowList {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return &AllowList{ids: set}
}

// Allowed reports whether senderID is on the list.
func (a *AllowList) Allowed(senderID string) bool {
	_, ok := a.ids[senderID]
	return ok
}

// Check is the error form of Allowed: nil for members, a wrapped
// domain.ErrAuthDenied otherwise, so callers can match with errors.Is.
func (a *AllowList) Check(senderID string) error {
	if a.Allowed(senderID) {
		return nil
	}
	return fmt.Errorf("%w: sender %s", domain.ErrAuthDenied, shortID(senderID))
}

// Size returns the number of authorized senders.
func (a *AllowList) Size() int { return len(a.ids) }
