package roster

// EmployeeIdentity is the slice of an employee record used for punch matching.
type EmployeeIdentity struct {
	ID             string
	EmployeeID     string
	AlternateIDs   []string
	EmployeeNo     string
	FullName       string
	NormalizedName string
	Active         bool
}

// Key is the grouping key of the identity: the roster primary key when known,
// otherwise the organization-issued employee ID.
func (e EmployeeIdentity) Key() string {
	if e.ID != "" {
		return e.ID
	}
	return e.EmployeeID
}

// Codes returns every raw identifier the employee can be punched under, in a stable order.
func (e EmployeeIdentity) Codes() []string {
	codes := make([]string, 0, len(e.AlternateIDs)+2)
	if e.EmployeeID != "" {
		codes = append(codes, e.EmployeeID)
	}
	for _, alt := range e.AlternateIDs {
		if alt != "" {
			codes = append(codes, alt)
		}
	}
	if e.EmployeeNo != "" {
		codes = append(codes, e.EmployeeNo)
	}
	return codes
}
