package service

import (
	"github.com/noah-isme/hall-booking-api/internal/models"
	appErrors "github.com/noah-isme/hall-booking-api/pkg/errors"
)

// scopeBookingFilter restricts a booking filter to what the actor may see.
// Department users see their own bookings, principals their institution,
// work teams approved bookings everywhere and super admins everything.
func scopeBookingFilter(actor models.Actor, filter models.BookingFilter) (models.BookingFilter, error) {
	switch actor.Role {
	case models.RoleSuperAdmin:
		return filter, nil
	case models.RolePrincipal:
		if actor.InstitutionID == "" {
			return filter, appErrors.Clone(appErrors.ErrForbidden, "principal is not assigned to an institution")
		}
		filter.InstitutionID = actor.InstitutionID
		return filter, nil
	case models.RoleDepartmentUser:
		filter.UserID = actor.UserID
		return filter, nil
	case models.RoleDesigningTeam, models.RolePhotographyTeam, models.RolePressReleaseTeam:
		filter.Statuses = []models.BookingStatus{models.BookingStatusApproved}
		return filter, nil
	}
	return filter, appErrors.Clone(appErrors.ErrForbidden, "role cannot view bookings")
}

func canViewBooking(actor models.Actor, b *models.Booking) bool {
	switch actor.Role {
	case models.RoleSuperAdmin:
		return true
	case models.RolePrincipal:
		return actor.InstitutionID != "" && b.InstitutionID == actor.InstitutionID
	case models.RoleDepartmentUser:
		return b.UserID == actor.UserID
	case models.RoleDesigningTeam, models.RolePhotographyTeam, models.RolePressReleaseTeam:
		return b.Status == models.BookingStatusApproved
	}
	return false
}

// canAdminister reports whether the actor administers the given institution.
func canAdminister(actor models.Actor, institutionID string) bool {
	switch actor.Role {
	case models.RoleSuperAdmin:
		return true
	case models.RolePrincipal:
		return actor.InstitutionID != "" && actor.InstitutionID == institutionID
	}
	return false
}

// canViewInstitution reports whether actor may read data owned by an
// institution. Super admins and the service teams work across institutions.
func canViewInstitution(actor models.Actor, institutionID string) bool {
	if actor.Role == models.RoleSuperAdmin || actor.Role.IsTeam() {
		return true
	}
	return actor.InstitutionID != "" && actor.InstitutionID == institutionID
}

// institutionFor resolves the institution an admin write targets. Principals
// are pinned to their own; super admins must name one.
func institutionFor(actor models.Actor, requested string) (string, error) {
	if actor.Role == models.RolePrincipal {
		if requested != "" && requested != actor.InstitutionID {
			return "", appErrors.Clone(appErrors.ErrForbidden, "cannot manage another institution")
		}
		return actor.InstitutionID, nil
	}
	if requested == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "institution_id is required")
	}
	return requested, nil
}
