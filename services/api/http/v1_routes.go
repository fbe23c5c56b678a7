package http

// registerV1Routes sets up the v1 API structure
// Groups: /api/v1/sessions, /api/v1/archive, /api/v1/demo
func (s *Server) registerV1Routes() {
	v1 := s.engine.Group("/api/v1")
	v1.Use(apiVersionMiddleware()) // Add X-API-Version: v1 header

	v1.GET("/meta", s.handleV1Meta)

	// Session lifecycle and simulation commands
	sessions := v1.Group("/sessions")
	{
		sessions.GET("", s.handleV1ListSessions)
		sessions.POST("", s.handleV1CreateSession)
		sessions.GET("/:id", s.handleV1GetSession)
		sessions.DELETE("/:id", s.handleV1DeleteSession)
		sessions.POST("/:id/tick", s.handleV1Tick)
		sessions.GET("/:id/series", s.handleV1Series)

		// Dashboard views - window slice and alert evaluation
		sessions.GET("/:id/window", s.handleV1Window)
		sessions.GET("/:id/alerts", s.handleV1Alerts)
	}

	// Archive endpoints - only served when DATABASE_URL is set
	archive := v1.Group("/archive")
	{
		archive.GET("/readings", s.handleV1ArchiveReadings)
	}

	demo := v1.Group("/demo")
	{
		demo.GET("/live", s.handleV1LiveChart)
	}
}
