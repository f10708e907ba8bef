package models

import "fmt"

// Scope is the visibility window of a request. Privileged scopes see every
// row; all others only see rows whose owner is AccountID.
type Scope struct {
	AccountID  int64
	Privileged bool
}

// ScopeFor derives the scope of an authenticated principal.
func ScopeFor(p *Principal) Scope {
	if p == nil {
		return Scope{}
	}
	return Scope{AccountID: p.ID, Privileged: p.IsSuperuser}
}

// SystemScope sees every row. It is reserved for whole-roster exports.
func SystemScope() Scope {
	return Scope{Privileged: true}
}

// Visible reports whether a row owned by ownerID falls inside the scope.
func (s Scope) Visible(ownerID int64) bool {
	return s.Privileged || ownerID == s.AccountID
}

// Key identifies the scope in cache keys.
func (s Scope) Key() string {
	if s.Privileged {
		return "all"
	}
	return fmt.Sprintf("user:%d", s.AccountID)
}
