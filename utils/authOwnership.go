package utils

import (
	"PulmoScan/models"
)

// AuthorizeOwns fails unless the calling doctor owns the resource. Every
// retrieval or mutation on an analysis must pass through this check at the
// data-access boundary, not just the route layer, so an internal caller
// cannot bypass it.
func AuthorizeOwns(doctorID, resourceDoctorID int64) error {
	if doctorID != resourceDoctorID {
		return models.ErrForbidden
	}
	return nil
}
