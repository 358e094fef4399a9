// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes registers the reward service routes on router.
func SetupRoutes(router *gin.Engine, svc *Service) {
	h := NewHandlers(svc)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1/reward")
	{
		v1.POST("/score", h.HandleScore)
		v1.POST("/score/batch", h.HandleScoreBatch)
		v1.GET("/config", h.HandleConfig)
		v1.GET("/health", h.HandleHealth)
		v1.GET("/ready", h.HandleReady)
		v1.GET("/events", h.HandleEvents)
		v1.GET("/rollouts/:id/steps/:step", h.HandleRolloutStep)
		v1.DELETE("/rollouts/:id", h.HandleDropRollout)
	}
}
