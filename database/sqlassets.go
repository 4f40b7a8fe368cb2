package sqlassets

import _ "embed"

//go:embed schema/slug_assignments.sql
var SlugAssignmentsSQL string

//go:embed schema/owner_profiles.sql
var OwnerProfilesSQL string
