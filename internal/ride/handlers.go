package ride

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		riderID, _ := c.Locals("rider_id").(string)
		if riderID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "rider identity required")
		}
		snap, err := svc.StartRide(c.Context(), riderID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(snap)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		riderID, _ := c.Locals("rider_id").(string)
		if riderID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "rider identity required")
		}
		rides, err := svc.ListRides(c.Context(), riderID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(rides)
	})

	r.Post("/:id/fixes", authMiddleware, func(c *fiber.Ctx) error {
		var fix LocationFix
		if err := c.BodyParser(&fix); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		snap, err := svc.SubmitFix(c.Context(), c.Params("id"), fix)
		if err != nil {
			if errors.Is(err, ErrRideNotFound) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(snap)
	})

	r.Post("/:id/pause", authMiddleware, func(c *fiber.Ctx) error {
		return applyEvent(c, func(id string) (Snapshot, bool, error) { return svc.Pause(id) })
	})

	r.Post("/:id/resume", authMiddleware, func(c *fiber.Ctx) error {
		return applyEvent(c, func(id string) (Snapshot, bool, error) { return svc.Resume(id) })
	})

	r.Post("/:id/stop", authMiddleware, func(c *fiber.Ctx) error {
		return applyEvent(c, func(id string) (Snapshot, bool, error) {
			return svc.StopRide(c.Context(), id)
		})
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		snap, err := svc.GetSnapshot(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.JSON(snap)
	})

	r.Get("/:id/route", func(c *fiber.Ctx) error {
		tolerance := DefaultToleranceM
		if raw := c.Query("tolerance_m"); raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid tolerance_m")
			}
			tolerance = parsed
		}
		route, err := svc.GetRoute(c.Context(), c.Params("id"), tolerance)
		if err != nil {
			if errors.Is(err, ErrRideNotFound) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(route)
	})
}

func applyEvent(c *fiber.Ctx, apply func(string) (Snapshot, bool, error)) error {
	snap, applied, err := apply(c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrRideNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !applied {
		return c.Status(fiber.StatusConflict).JSON(snap)
	}
	return c.JSON(snap)
}
