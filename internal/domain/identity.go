package domain

// Identity ties a matched reference label to a student. Resolution
// from label to student id happens once, at the boundary between the
// matcher and persistence; an unresolved identity is queued with its
// raw label for manual reconciliation instead of being discarded.
type Identity struct {
	StudentID *int64 `json:"student_id,omitempty"`
	Label     string `json:"label"`
}

// ResolvedIdentity builds an identity with a known student id.
func ResolvedIdentity(studentID int64, label string) Identity {
	return Identity{StudentID: &studentID, Label: label}
}

// UnresolvedIdentity builds an identity carrying only the raw label.
func UnresolvedIdentity(label string) Identity {
	return Identity{Label: label}
}

// Resolved reports whether the identity maps to a student id.
func (i Identity) Resolved() bool {
	return i.StudentID != nil
}
