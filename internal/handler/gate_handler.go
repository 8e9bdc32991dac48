package handler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/cinematalkiez/blackhole/internal/gate"
	"github.com/cinematalkiez/blackhole/internal/model"
	"github.com/cinematalkiez/blackhole/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"go.uber.org/zap"
)

// BrowserStorage loads and saves a browser's storage cookie
type BrowserStorage struct {
	Codec   gate.Codec
	Options gate.CookieOptions
	Log     *zap.Logger
}

func (b BrowserStorage) load(c *gin.Context) *gate.CookieStore {
	return gate.LoadCookieStore(c.Request, b.Codec, b.Options)
}

func (b BrowserStorage) save(c *gin.Context, store *gate.CookieStore) {
	if err := store.Flush(c.Writer); err != nil && b.Log != nil {
		b.Log.Error("failed to write storage cookie", zap.Error(err))
	}
}

// GateOptions tunes the landing flow
type GateOptions struct {
	ValidTokenTTL time.Duration
	RenderTimeout time.Duration // 0 waits for the lookup
	RedirectURL   string
}

// GateHandler serves the landing gate and the verification pages
type GateHandler struct {
	gate          *gate.Gate
	lookup        gate.Lookup
	verifications *service.VerificationService
	browser       BrowserStorage
	opts          GateOptions
	log           *zap.Logger
}

func NewGateHandler(
	g *gate.Gate,
	lookup gate.Lookup,
	verifications *service.VerificationService,
	browser BrowserStorage,
	opts GateOptions,
	log *zap.Logger,
) *GateHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &GateHandler{
		gate:          g,
		lookup:        lookup,
		verifications: verifications,
		browser:       browser,
		opts:          opts,
		log:           log,
	}
}

// mount runs the gate for this request and waits for its decision
func (h *GateHandler) mount(c *gin.Context) (*gate.Flow, gate.Decision, *gate.CookieStore) {
	store := h.browser.load(c)
	flow := h.gate.Mount(c.Request.Context(), store)

	ctx := c.Request.Context()
	if h.opts.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.RenderTimeout)
		defer cancel()
	}
	decision, _ := flow.Wait(ctx)
	return flow, decision, store
}

// Landing godoc
// @Summary Landing gate
// @Description Ensures the device identity, checks verification and renders the next step.
// @Tags Gate
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router / [get]
func (h *GateHandler) Landing(c *gin.Context) {
	flow, decision, store := h.mount(c)
	defer flow.Unmount()

	h.browser.save(c, store)
	c.Header("Cache-Control", "no-store")
	c.Render(http.StatusOK, render.HTML{
		Template: pages,
		Name:     pageLanding,
		Data:     gin.H{"State": decision.String(), "UserID": flow.Identity().ID},
	})
}

// GateStatus godoc
// @Summary Landing gate as JSON
// @Tags Gate
// @Produce json
// @Success 200 {object} model.GateResponse
// @Router /api/gate [get]
func (h *GateHandler) GateStatus(c *gin.Context) {
	flow, decision, store := h.mount(c)
	defer flow.Unmount()

	state, _ := flow.State()
	h.browser.save(c, store)
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, model.GateResponse{
		State:          decision.String(),
		UserID:         flow.Identity().ID,
		RemoteVerified: state.RemoteVerified,
		LocalValid:     state.LocalValid,
	})
}

// VerifyPage godoc
// @Summary Start verification
// @Description Registers the device as awaiting verification and links to the external verification flow.
// @Tags Gate
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router /Verifypage.html [get]
func (h *GateHandler) VerifyPage(c *gin.Context) {
	store := h.browser.load(c)
	identity := h.gate.Identities(store).EnsureDeviceIdentity()

	if err := h.verifications.Register(c.Request.Context(), identity.ID); err != nil {
		h.log.Error("failed to register device", zap.String("device_id", identity.ID), zap.Error(err))
	}

	h.browser.save(c, store)
	c.Header("Cache-Control", "no-store")
	c.Render(http.StatusOK, render.HTML{
		Template: pages,
		Name:     pageVerify,
		Data: gin.H{
			"DeviceID":    identity.ID,
			"RedirectURL": verificationURL(h.opts.RedirectURL, identity.ID),
		},
	})
}

// VerificationSuccess godoc
// @Summary Finalize verification
// @Description Grants the short-lived local token when the device is verified remotely.
// @Tags Gate
// @Success 302
// @Router /verification-success [get]
func (h *GateHandler) VerificationSuccess(c *gin.Context) {
	store := h.browser.load(c)
	identity := h.gate.Identities(store).EnsureDeviceIdentity()

	target := "/"
	record, err := h.lookup.Check(c.Request.Context(), identity.ID)
	switch {
	case err != nil:
		h.log.Warn("verification lookup failed", zap.String("user_id", identity.ID), zap.Error(err))
	case record.Exists && record.TokenVerified:
		expiresAt := gate.GrantLocalToken(store, h.gate.Now(), h.opts.ValidTokenTTL)
		h.log.Info("local token granted", zap.String("user_id", identity.ID), zap.Time("expires_at", expiresAt))
		target = "/index2"
	}

	h.browser.save(c, store)
	c.Redirect(http.StatusFound, target)
}

// verificationURL appends the device id to the external verification link
func verificationURL(base, deviceID string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("device", deviceID)
	u.RawQuery = q.Encode()
	return u.String()
}
