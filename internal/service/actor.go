package service

// Actor is the identity context every operation runs under. It is produced
// by the authentication layer in front of this service; the services only
// use it for school-boundary checks and audit fields, never for
// authentication.
type Actor struct {
	ID int64

	// SchoolID is the actor's assigned school. Zero means the actor is not
	// bound to a single school (platform-level roles) and passes every
	// school-boundary check.
	SchoolID int64
}

// canAccessSchool reports whether the actor may touch resources owned by
// the given school.
func (a Actor) canAccessSchool(schoolID int64) bool {
	return a.SchoolID == 0 || a.SchoolID == schoolID
}

// guardSchool returns ErrCrossSchool when the actor's assigned school
// conflicts with the resource's school.
func guardSchool(actor Actor, schoolID int64) error {
	if !actor.canAccessSchool(schoolID) {
		return ErrCrossSchool
	}
	return nil
}
