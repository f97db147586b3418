package model

// Owner is the single administrative user of the workflow service. The
// service creates an empty placeholder row on first boot; the record is
// populated either by a successful login or by completing the one-time
// owner setup. Once populated it is only ever looked up, never mutated.
type Owner struct {
	ID    string
	Email string
}

// IsProvisioned reports whether the owner record has completed setup.
// A placeholder row created by the service on first boot has no email.
func (o Owner) IsProvisioned() bool {
	return o.Email != ""
}
