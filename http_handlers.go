package main

// this file contains implementation of HTTP handlers - REST API

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	"github.com/rs/zerolog"

	"github.com/himanshub16/vibezone/models"
)

type httpServer struct {
	service  Service
	stations *StationCatalogue
	sessions *Sessions
	login    *SpotifyLogin
	log      zerolog.Logger
}

// RouterOptions carries what the router needs besides the service.
type RouterOptions struct {
	Stations  *StationCatalogue
	Sessions  *Sessions
	Login     *SpotifyLogin
	Metrics   *Metrics
	StaticDir string
	DevLogin  bool
	Log       zerolog.Logger
}

func NewHTTPRouter(service Service, opts RouterOptions) *echo.Echo {
	s := &httpServer{
		service:  service,
		stations: opts.Stations,
		sessions: opts.Sessions,
		login:    opts.Login,
		log:      opts.Log,
	}

	r := echo.New()
	r.HideBanner = true
	r.HTTPErrorHandler = newHTTPErrorHandler(opts.Log)
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "method=${method}, uri=${uri}, status=${status}\n",
		Output: opts.Log.With().Str("component", "http").Logger(),
	}))
	r.Use(middleware.Recover())
	r.Use(opts.Metrics.Middleware())

	r.GET("/health", healthCheckHandler)
	r.GET("/metrics", echo.WrapHandler(opts.Metrics.Handler()))
	r.GET("/static/data/stations.json", s.stationsHandler)
	if opts.StaticDir != "" {
		r.Static("/static", opts.StaticDir)
	}

	if s.login != nil {
		r.GET("/login", s.login.loginHandler)
		r.GET("/callback", s.login.callbackHandler)
	}
	r.GET("/logout", logoutHandler)

	router := r.Group("/api")
	router.GET("/health", healthCheckHandler)
	router.GET("/stations", s.stationsHandler)
	router.GET("/moods", moodsHandler)
	router.POST("/recommend", s.recommendHandler)
	if opts.DevLogin {
		router.POST("/login", s.devLoginHandler)
	}

	// attached per route: a session group on /api would also catch unknown paths
	auth := s.sessions.Middleware()
	router.GET("/profile", s.profileHandler, auth...)
	router.POST("/favorite", s.favoriteHandler, auth...)
	router.POST("/favorite/delete/:id", s.deleteFavoriteHandler, auth...)
	router.POST("/delete_profile", s.deleteProfileHandler, auth...)
	router.POST("/create_collection", s.createCollectionHandler, auth...)
	router.POST("/add_to_collection", s.addToCollectionHandler, auth...)
	router.POST("/remove_from_collection", s.removeFromCollectionHandler, auth...)
	router.POST("/delete_collection/:id", s.deleteCollectionHandler, auth...)

	return r
}

func healthCheckHandler(c echo.Context) error {
	return c.String(http.StatusOK, "I am up and running!")
}

func (s *httpServer) stationsHandler(c echo.Context) error {
	cat, err := s.stations.Get()
	if err != nil {
		return newAPIError(http.StatusInternalServerError, "Stations are unavailable")
	}
	return c.JSON(http.StatusOK, cat)
}

func moodsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"moods": Moods(),
	})
}

func (s *httpServer) recommendHandler(c echo.Context) error {
	form := struct {
		Mood string `json:"mood" form:"mood"`
	}{}
	if err := c.Bind(&form); err != nil {
		return newAPIError(http.StatusBadRequest, "Please select a valid mood")
	}
	recs, err := s.service.Recommend(c.Request().Context(), form.Mood)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recs)
}

func (s *httpServer) devLoginHandler(c echo.Context) error {
	u := models.User{}
	if err := c.Bind(&u); err != nil {
		return newAPIError(http.StatusBadRequest, "Missing user data")
	}
	user, err := s.service.LoginUser(c.Request().Context(), u)
	if err != nil {
		return err
	}
	token, err := s.sessions.Issue(user.ID)
	if err != nil {
		return err
	}
	s.sessions.setCookie(c, token)

	return c.JSON(http.StatusOK, echo.Map{
		"status": models.StatusSuccess,
		"token":  token,
		"user":   user,
	})
}

func (s *httpServer) profileHandler(c echo.Context) error {
	p, err := s.service.Profile(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		if err == errLoginRequired {
			clearCookie(c, sessionCookie)
		}
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *httpServer) favoriteHandler(c echo.Context) error {
	form := models.FavoriteRequest{}
	if err := c.Bind(&form); err != nil {
		return newAPIError(http.StatusBadRequest, "Missing track data")
	}
	reply, err := s.service.AddFavorite(c.Request().Context(), getUserIDFromContext(c), form)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reply)
}

func (s *httpServer) deleteFavoriteHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	reply, err := s.service.DeleteFavorite(c.Request().Context(), getUserIDFromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reply)
}

func (s *httpServer) deleteProfileHandler(c echo.Context) error {
	reply, err := s.service.DeleteProfile(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	clearCookie(c, sessionCookie)
	return c.JSON(http.StatusOK, reply)
}

func (s *httpServer) createCollectionHandler(c echo.Context) error {
	form := struct {
		Name string `json:"name" form:"name"`
	}{}
	if err := c.Bind(&form); err != nil {
		return newAPIError(http.StatusBadRequest, "The collection name is required")
	}
	reply, err := s.service.CreateCollection(c.Request().Context(), getUserIDFromContext(c), form.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reply)
}

func bindCollectionItem(c echo.Context) (models.CollectionItemRequest, error) {
	form := models.CollectionItemRequest{}
	if err := c.Bind(&form); err != nil {
		return form, newAPIError(http.StatusBadRequest, "Collection ID and track ID are required")
	}
	return form, nil
}

func (s *httpServer) addToCollectionHandler(c echo.Context) error {
	form, err := bindCollectionItem(c)
	if err != nil {
		return err
	}
	reply, err := s.service.AddToCollection(c.Request().Context(), getUserIDFromContext(c),
		int64(form.CollectionID), int64(form.FavoriteID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reply)
}

func (s *httpServer) removeFromCollectionHandler(c echo.Context) error {
	form, err := bindCollectionItem(c)
	if err != nil {
		return err
	}
	reply, err := s.service.RemoveFromCollection(c.Request().Context(), getUserIDFromContext(c),
		int64(form.CollectionID), int64(form.FavoriteID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reply)
}

func (s *httpServer) deleteCollectionHandler(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	reply, err := s.service.DeleteCollection(c.Request().Context(), getUserIDFromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reply)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	return id, nil
}
