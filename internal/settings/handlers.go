package settings

import "github.com/gofiber/fiber/v2"

type autoPauseResponse struct {
	ThresholdSeconds int `json:"threshold_seconds"`
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/auto-pause", authMiddleware, func(c *fiber.Ctx) error {
		riderID, _ := c.Locals("rider_id").(string)
		if riderID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "rider identity required")
		}
		return c.JSON(autoPauseResponse{ThresholdSeconds: svc.AutoPauseThreshold(c.Context(), riderID)})
	})

	r.Put("/auto-pause", authMiddleware, func(c *fiber.Ctx) error {
		riderID, _ := c.Locals("rider_id").(string)
		if riderID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "rider identity required")
		}
		var req autoPauseResponse
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := svc.SetAutoPauseThreshold(c.Context(), riderID, req.ThresholdSeconds); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(autoPauseResponse{ThresholdSeconds: req.ThresholdSeconds})
	})
}
