package auth

// Allowlist is the static set of admin identities (UIDs or emails)
// configured at process start.
type Allowlist struct {
	entries map[string]struct{}
}

func NewAllowlist(entries []string) *Allowlist {
	m := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		m[e] = struct{}{}
	}
	return &Allowlist{entries: m}
}

// IsAdmin reports whether the user's UID or email is allow-listed. An empty
// list means nobody is an admin.
func (a *Allowlist) IsAdmin(u *User) bool {
	if u == nil || len(a.entries) == 0 {
		return false
	}
	if _, ok := a.entries[u.UID]; ok {
		return true
	}
	if u.Email != "" {
		if _, ok := a.entries[u.Email]; ok {
			return true
		}
	}
	return false
}
