package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
)

// travelerID extracts the authenticated traveler identity set by the API
// gateway. Handlers that act on the caller's own record require it.
func travelerID(c *fiber.Ctx) string {
	return c.Get("X-Traveler-ID")
}

// locationRequest is the body of POST /v1/safety/location.
type locationRequest struct {
	Lat      float64    `json:"latitude"`
	Lon      float64    `json:"longitude"`
	Accuracy *float64   `json:"accuracy,omitempty"`
	SpeedMPS *float64   `json:"speed_mps,omitempty"`
	Battery  *float64   `json:"battery,omitempty"`
	Time     *time.Time `json:"time,omitempty"`
}

// ReportLocationHandler ingests one location sample for the caller.
func ReportLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tid := travelerID(c)
		if tid == "" {
			return errUnauthorized(c, "X-Traveler-ID header is required")
		}

		var req locationRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		sample := &domain.LocationSample{
			Point:    domain.GeoPoint{Lat: req.Lat, Lon: req.Lon},
			Accuracy: req.Accuracy,
			SpeedMPS: req.SpeedMPS,
			Battery:  req.Battery,
		}
		if req.Time != nil {
			sample.Time = req.Time.UTC()
		}

		if err := deps.Safety.ReportLocation(c.UserContext(), tid, sample); err != nil {
			return mapDomainError(c, err)
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Location updated",
		})
	}
}

// panicRequest is the body of POST /v1/safety/panic. Coordinates are
// optional; a device that cannot get a fix still gets its SOS through.
type panicRequest struct {
	Lat *float64 `json:"latitude,omitempty"`
	Lon *float64 `json:"longitude,omitempty"`
}

// TriggerPanicHandler raises a manual SOS for the caller.
func TriggerPanicHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tid := travelerID(c)
		if tid == "" {
			return errUnauthorized(c, "X-Traveler-ID header is required")
		}

		var req panicRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		if (req.Lat == nil) != (req.Lon == nil) {
			return errBadRequest(c, "latitude and longitude must be sent together")
		}

		var point *domain.GeoPoint
		if req.Lat != nil {
			point = &domain.GeoPoint{Lat: *req.Lat, Lon: *req.Lon}
		}

		res, err := deps.Safety.TriggerPanic(c.UserContext(), tid, point)
		if err != nil {
			return mapDomainError(c, err)
		}

		warnings := make([]string, 0, len(res.Warnings))
		for _, w := range res.Warnings {
			warnings = append(warnings, w.Error())
		}

		body := fiber.Map{
			"success":  true,
			"message":  "SOS alert activated. Emergency contacts notified.",
			"alert_id": res.AlertID,
			"status":   res.Status,
		}
		if res.Nearest != nil {
			body["nearest_responder"] = res.Nearest
		}
		if len(warnings) > 0 {
			body["warnings"] = warnings
		}
		return c.Status(201).JSON(body)
	}
}

// CheckinHandler records a manual check-in for the caller.
func CheckinHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tid := travelerID(c)
		if tid == "" {
			return errUnauthorized(c, "X-Traveler-ID header is required")
		}

		status, err := deps.Safety.Checkin(c.UserContext(), tid)
		if err != nil {
			return mapDomainError(c, err)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Check-in recorded",
			"status":  status,
		})
	}
}

// GetStatusHandler returns the caller's safety dashboard.
func GetStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tid := travelerID(c)
		if tid == "" {
			return errUnauthorized(c, "X-Traveler-ID header is required")
		}

		dash, err := deps.Safety.GetDashboard(c.UserContext(), tid)
		if err != nil {
			return mapDomainError(c, err)
		}
		return c.JSON(dash)
	}
}

// ListLocationsHandler returns the caller's most recent location samples.
func ListLocationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tid := travelerID(c)
		if tid == "" {
			return errUnauthorized(c, "X-Traveler-ID header is required")
		}

		limit := c.QueryInt("limit", 50)
		samples, err := deps.Safety.ListLocations(c.UserContext(), tid, limit)
		if err != nil {
			return mapDomainError(c, err)
		}
		return c.JSON(fiber.Map{"locations": samples, "count": len(samples)})
	}
}

// ListAlertsHandler returns the caller's alerts, newest first. since_hours
// bounds how far back the listing goes (default: all).
func ListAlertsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tid := travelerID(c)
		if tid == "" {
			return errUnauthorized(c, "X-Traveler-ID header is required")
		}

		var since time.Time
		if hours := c.QueryInt("since_hours", 0); hours > 0 {
			since = time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
		}

		alerts, err := deps.Safety.ListAlerts(c.UserContext(), tid, since)
		if err != nil {
			return mapDomainError(c, err)
		}
		return c.JSON(fiber.Map{"alerts": alerts, "count": len(alerts)})
	}
}

// acknowledgeRequest is the body of POST /v1/alerts/:id/acknowledge.
type acknowledgeRequest struct {
	ResponderID string `json:"responder_id"`
}

// AcknowledgeAlertHandler assigns a responder to a pending alert.
func AcknowledgeAlertHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		alertID := c.Params("id")
		if alertID == "" {
			return errBadRequest(c, "alert id is required")
		}

		var req acknowledgeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.ResponderID == "" {
			return errBadRequest(c, "responder_id is required")
		}

		if err := deps.Safety.AcknowledgeAlert(c.UserContext(), alertID, req.ResponderID); err != nil {
			return mapDomainError(c, err)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Alert acknowledged",
		})
	}
}

// resolveRequest is the body of POST /v1/alerts/:id/resolve.
type resolveRequest struct {
	Notes string `json:"notes"`
}

// ResolveAlertHandler closes out an alert with resolution notes.
func ResolveAlertHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		alertID := c.Params("id")
		if alertID == "" {
			return errBadRequest(c, "alert id is required")
		}

		var req resolveRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}

		if err := deps.Safety.ResolveAlert(c.UserContext(), alertID, req.Notes); err != nil {
			return mapDomainError(c, err)
		}
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Alert resolved",
		})
	}
}

// NearestResponderHandler finds the closest active responder to a point.
func NearestResponderHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 91)
		lon := c.QueryFloat("lon", 181)
		if lat > 90 || lon > 180 {
			return errBadRequest(c, "lat and lon are required")
		}

		match, err := deps.Responders.Nearest(c.UserContext(), domain.GeoPoint{Lat: lat, Lon: lon})
		if err != nil {
			return mapDomainError(c, err)
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(match)
	}
}
