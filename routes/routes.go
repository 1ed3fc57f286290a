package routes

import (
	"net/http"

	"sofa/auth"
	"sofa/events"
	"sofa/insights"
	"sofa/middleware"
	"sofa/profile"
	"sofa/ratelim"
	"sofa/tickets"
	"sofa/userdata"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/eventpic/*filepath", http.Dir("static/eventpic"))
	router.ServeFiles("/static/userpic/*filepath", http.Dir("static/userpic"))
}

func AddAuthRoutes(router *httprouter.Router) {
	router.POST("/api/auth/register", ratelim.RateLimit(auth.Register))
	router.POST("/api/auth/login", ratelim.RateLimit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.LogoutUser))
	router.POST("/api/auth/token/refresh", ratelim.RateLimit(middleware.Authenticate(auth.RefreshToken)))
}

func AddEventsRoutes(router *httprouter.Router) {
	router.GET("/api/events/events", ratelim.RateLimit(events.GetEvents))
	router.GET("/api/events/events/count", ratelim.RateLimit(events.GetEventsCount))
	router.POST("/api/events/event", middleware.Authenticate(events.CreateEvent))
	router.GET("/api/events/event/:eventid", events.GetEvent)
	router.PUT("/api/events/event/:eventid", middleware.Authenticate(events.EditEvent))
	router.POST("/api/events/event/:eventid/cancel", middleware.Authenticate(events.CancelEvent))
}

func AddTicketRoutes(router *httprouter.Router) {
	router.POST("/api/ticket/event/:eventid", middleware.Authenticate(tickets.CreateTicket))
	router.GET("/api/ticket/event/:eventid", tickets.GetTickets)
	router.GET("/api/ticket/event/:eventid/:ticketid", tickets.GetTicket)
	router.PUT("/api/ticket/event/:eventid/:ticketid", middleware.Authenticate(tickets.EditTicket))
	router.DELETE("/api/ticket/event/:eventid/:ticketid", middleware.Authenticate(tickets.DeleteTicket))
	router.POST("/api/ticket/event/:eventid/:ticketid/register", middleware.Authenticate(tickets.RegisterTicket))
}

func AddInsightsRoutes(router *httprouter.Router) {
	router.GET("/api/users/:userid/insights", middleware.Authenticate(insights.GetInsights))
}

func AddProfileRoutes(router *httprouter.Router) {
	router.GET("/api/profile/profile", middleware.Authenticate(profile.GetProfile))
	router.PUT("/api/profile/edit", middleware.Authenticate(profile.EditProfile))
	router.PUT("/api/profile/avatar", middleware.Authenticate(profile.EditProfilePic))

	router.GET("/api/user/:username", ratelim.RateLimit(profile.GetUserProfile))
	router.GET("/api/userdata/:userid", ratelim.RateLimit(middleware.Authenticate(userdata.GetUserProfileData)))
}
