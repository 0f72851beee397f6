package chat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ServerOpts holds configuration for the webhook server.
type ServerOpts struct {
	Handler *Handler
	Port    int
	Out     io.Writer
}

// StartServer launches the Twilio webhook HTTP server. It blocks until ctx
// is cancelled, then shuts down gracefully.
func StartServer(ctx context.Context, opts ServerOpts) error {
	if opts.Handler == nil {
		return fmt.Errorf("chat: server: handler is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.POST("/webhook/sms", func(c *gin.Context) {
		msg := parseTwilioForm(c)
		reply := opts.Handler.Handle(c.Request.Context(), msg)
		c.Data(http.StatusOK, "text/xml; charset=utf-8", []byte(TwiML(reply)))
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Webhook server listening on :%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("chat: server: %w", err)
	}
	return nil
}

// parseTwilioForm reads the form-encoded fields of a Twilio inbound SMS
// webhook: From, Body, NumMedia, and MediaUrl0..N.
func parseTwilioForm(c *gin.Context) InboundMessage {
	msg := InboundMessage{
		From: c.PostForm("From"),
		Body: c.PostForm("Body"),
	}
	numMedia, _ := strconv.Atoi(c.PostForm("NumMedia"))
	for i := 0; i < numMedia; i++ {
		if url := c.PostForm(fmt.Sprintf("MediaUrl%d", i)); url != "" {
			msg.MediaURLs = append(msg.MediaURLs, url)
		}
	}
	return msg
}
