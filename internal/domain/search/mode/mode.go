package mode

// Mode is the search strategy selected by the request field in use.
type Mode string

// Search mode constants.
const (
	// Generic fuses name search with both reference lookups (the q field).
	Generic Mode = "generic"
	Name    Mode = "name"
	Ref     Mode = "ref"
	UICRef  Mode = "uic_ref"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Generic || m == Name || m == Ref || m == UICRef
}

// UsesNameSearch reports whether the mode runs the ranked full-text strategy.
func (m Mode) UsesNameSearch() bool {
	return m == Generic || m == Name
}
