package bot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
)

const shutdownTimeout = 10 * time.Second

// HTTPServer はSlackからのスラッシュコマンドをHTTPで受け付ける
type HTTPServer struct {
	echo          *echo.Echo
	handler       *Handler
	signingSecret string
	logger        zerolog.Logger

	// コマンド処理に渡す長寿命のコンテキスト。リクエストのコンテキストは応答後に切れる
	baseCtx context.Context
}

// NewHTTPServer は新しいHTTPServerを作成する
func NewHTTPServer(handler *Handler, signingSecret string, logger zerolog.Logger) *HTTPServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &HTTPServer{
		echo:          e,
		handler:       handler,
		signingSecret: signingSecret,
		logger:        logger.With().Str("transport", "http").Logger(),
		baseCtx:       context.Background(),
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Msg("request")
			return nil
		},
	}))

	s.setupRoutes()
	return s
}

func (s *HTTPServer) setupRoutes() {
	s.echo.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	s.echo.POST("/slack/commands", s.handleCommand)
}

// ServeHTTP はテストから直接リクエストを流せるようにする
func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Run はctxがキャンセルされるまでaddrで待ち受ける。終了時は処理中のコマンドを待つ
func (s *HTTPServer) Run(ctx context.Context, addr string) error {
	s.baseCtx = ctx

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("http server listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.echo.Shutdown(shutdownCtx)
	s.handler.Wait()
	return err
}

// handleCommand は署名を検証してからすぐに200を返し、コマンドは非同期に処理する
func (s *HTTPServer) handleCommand(c echo.Context) error {
	req := c.Request()

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	if err := s.verify(req.Header, body); err != nil {
		s.logger.Warn().Err(err).Msg("slack signature verification failed")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid signature")
	}

	req.Body = io.NopCloser(bytes.NewReader(body))
	cmd, err := slack.SlashCommandParse(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid slash command")
	}

	s.handler.Dispatch(s.baseCtx, cmd)
	return c.NoContent(http.StatusOK)
}

func (s *HTTPServer) verify(header http.Header, body []byte) error {
	verifier, err := slack.NewSecretsVerifier(header, s.signingSecret)
	if err != nil {
		return err
	}
	if _, err := verifier.Write(body); err != nil {
		return err
	}
	return verifier.Ensure()
}
