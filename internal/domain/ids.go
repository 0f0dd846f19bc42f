package domain

// SubjectID is the authenticated subject carried by the session token.
// For this portal it is the coach's email address, but callers treat it
// as an opaque identifier.
type SubjectID string

// ProfileID is an internal identifier for a coach profile record.
type ProfileID string
