package notify

import "context"

// StaticDirectory resolves in-app recipients from a fixed company -> users
// mapping supplied by configuration. Deployments embedded in the full
// product replace this with a client for the user service.
type StaticDirectory struct {
	companies map[string][]string
}

// NewStaticDirectory builds a directory from the configured mapping.
func NewStaticDirectory(companies map[string][]string) *StaticDirectory {
	if companies == nil {
		companies = make(map[string][]string)
	}
	return &StaticDirectory{companies: companies}
}

// ListActiveUserIDs returns the user ids configured for the company. An
// unknown company simply has no recipients.
func (d *StaticDirectory) ListActiveUserIDs(_ context.Context, companyID string) ([]string, error) {
	users := d.companies[companyID]
	out := make([]string, len(users))
	copy(out, users)
	return out, nil
}
