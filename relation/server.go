package relation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/certkit/Legra/orchestrator"
	"github.com/certkit/Legra/utils"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RequestSink accepts inbound creation requests.
type RequestSink interface {
	SaveRequest(ctx context.Context, req orchestrator.CreationRequest) error
}

// PublicationSource serves outbound publications.
type PublicationSource interface {
	GetPublication(ctx context.Context, correlationID string) (orchestrator.Publication, error)
}

// Server is the HTTP face of the relation: requesters post CSRs and poll for
// their issued chains.
type Server struct {
	Echo         *echo.Echo
	Requests     RequestSink
	Publications PublicationSource
	Status       *StatusHolder
}

func NewServer(requests RequestSink, publications PublicationSource, status *StatusHolder) *Server {
	server := echo.New()
	server.HideBanner = true
	server.HidePort = true
	server.HTTPErrorHandler = httpErrorHandler

	logConfig := middleware.LoggerConfig{
		Format: `{"time":"${time_rfc3339_nano}","id":"${id}","remote_ip":"${remote_ip}",` +
			`"host":"${host}","method":"${method}","uri":"${uri}","user_agent":"${user_agent}",` +
			`"status":${status},"error":"${error}","latency":${latency},"latency_human":"${latency_human}",` +
			`"bytes_in":${bytes_in},"bytes_out":${bytes_out},"proto":"${protocol}"}` + "\n",
		CustomTimeFormat: "2006-01-02 15:04:05.00000",
		Output:           os.Stdout,
	}
	server.Use(middleware.LoggerWithConfig(logConfig))

	s := &Server{
		Echo:         server,
		Requests:     requests,
		Publications: publications,
		Status:       status,
	}
	server.POST("/v1/requests", s.createRequest)
	server.GET("/v1/requests/:id/certificate", s.getCertificate)
	server.GET("/v1/status", s.getStatus)
	server.GET("/v1/healthz", s.healthz)
	return s
}

func (s *Server) Start() error {
	logger.Info().Msgf("starting relation server on :%s", Env_Port)
	err := s.Echo.Start(fmt.Sprintf(":%s", Env_Port))
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("error in Echo.Start: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	logger.Debug().Msg("shutting down relation server")
	return s.Echo.Shutdown(ctx)
}

func httpErrorHandler(err error, c echo.Context) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		c.Echo().DefaultHTTPErrorHandler(err, c)
		return
	}
	logger.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("error handling request")
	if err := c.String(http.StatusInternalServerError, err.Error()); err != nil {
		c.Logger().Error(err)
	}
}

func (s *Server) createRequest(c echo.Context) error {
	var req orchestrator.CreationRequest
	err := c.Bind(&req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.CSR == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "csr is required")
	}
	if req.CorrelationID == "" {
		req.CorrelationID = utils.GenKSortedID("req_")
	}

	err = s.Requests.SaveRequest(c.Request().Context(), req)
	if err != nil {
		return fmt.Errorf("error in SaveRequest: %w", err)
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"correlation_id": req.CorrelationID,
	})
}

func (s *Server) getCertificate(c echo.Context) error {
	pub, err := s.Publications.GetPublication(c.Request().Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "no certificate published for this request")
	}
	if err != nil {
		return fmt.Errorf("error in GetPublication: %w", err)
	}
	return c.JSON(http.StatusOK, pub)
}

func (s *Server) getStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Status.Current())
}

func (s *Server) healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
