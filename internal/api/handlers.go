package api

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/axellelanca/shorturls/internal/auth"
	customerrors "github.com/axellelanca/shorturls/internal/errors"
	"github.com/axellelanca/shorturls/internal/models"
	"github.com/axellelanca/shorturls/internal/services"
)

// Dependencies are the services the routes are wired to.
type Dependencies struct {
	Links    *services.LinkService
	Resolver *services.Resolver
	QR       services.QRService
	Verifier *auth.Verifier
	BaseURL  string
}

// SetupRoutes configures all routes on router.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	baseURL := strings.TrimRight(deps.BaseURL, "/")

	router.GET("/health", HealthCheckHandler)

	api := router.Group("/api/v1")
	api.Use(OptionalAuth(deps.Verifier))
	{
		api.POST("/links", CreateShortLinkHandler(deps.Links, deps.QR, baseURL))
		api.GET("/links", HistoryHandler(deps.Links, baseURL))
		api.DELETE("/links/:code", DeleteLinkHandler(deps.Links))
		api.GET("/links/:code/stats", GetLinkStatsHandler(deps.Links, baseURL))
		api.GET("/links/:code/qr", QRCodeHandler(deps.Links, deps.QR, baseURL))
		api.DELETE("/account/links", PurgeAccountHandler(deps.Links))
	}

	// Short links live at the root, e.g. localhost:8080/abc123
	router.GET("/:code", RedirectHandler(deps.Resolver))
}

// HealthCheckHandler reports that the service is up.
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateLinkRequest is the JSON body of a creation request. Validity is in
// seconds and left nil when omitted so that the default applies.
type CreateLinkRequest struct {
	OriginalURL string `json:"originalUrl" binding:"required"`
	Validity    *int64 `json:"validity"`
	CustomID    string `json:"customId" binding:"omitempty,max=30"`
	IsPermanent bool   `json:"isPermanent"`
	WantQR      bool   `json:"wantQr"`
}

// LinkResponse describes one link.
type LinkResponse struct {
	Code        string     `json:"code"`
	ShortURL    string     `json:"shortUrl"`
	TargetURL   string     `json:"targetUrl"`
	Clicks      int64      `json:"clicks"`
	IsPermanent bool       `json:"isPermanent"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	QRCode      string     `json:"qrCode,omitempty"`
}

// StatsResponse describes a link with its recorded events.
type StatsResponse struct {
	LinkResponse
	Events int64 `json:"events"`
}

func toLinkResponse(link *models.Link, baseURL string) LinkResponse {
	return LinkResponse{
		Code:        link.ShortCode,
		ShortURL:    baseURL + "/" + link.ShortCode,
		TargetURL:   link.LongURL,
		Clicks:      link.ClickCount,
		IsPermanent: link.IsPermanent,
		ExpiresAt:   link.ExpiresAt,
		CreatedAt:   link.CreatedAt,
	}
}

// CreateShortLinkHandler creates a short link for the caller.
func CreateShortLinkHandler(linkService *services.LinkService, qr services.QRService, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateLinkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error(), Code: customerrors.CodeInvalidInput})
			return
		}

		link, err := linkService.CreateLink(c.Request.Context(), services.CreateLinkInput{
			OriginalURL:     strings.TrimSpace(req.OriginalURL),
			ValiditySeconds: req.Validity,
			CustomCode:      strings.TrimSpace(req.CustomID),
			IsPermanent:     req.IsPermanent,
		}, IdentityFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}

		resp := toLinkResponse(link, baseURL)
		if req.WantQR {
			// The link exists either way; a failed QR only drops the image
			if png, err := qr.MakeBase64(resp.ShortURL, services.DefaultQRSize); err != nil {
				log.Printf("Error generating QR code for %s: %v", link.ShortCode, err)
			} else {
				resp.QRCode = png
			}
		}
		c.JSON(http.StatusCreated, resp)
	}
}

// RedirectHandler sends the caller to the target of a live code.
func RedirectHandler(resolver *services.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("code")

		link, err := resolver.Resolve(c.Request.Context(), code, services.RequestMeta{
			UserAgent: c.GetHeader("User-Agent"),
			Referrer:  c.GetHeader("Referer"),
			IPAddress: c.ClientIP(),
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.Redirect(http.StatusFound, link.LongURL)
	}
}

// HistoryHandler lists the caller's live links.
func HistoryHandler(linkService *services.LinkService, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		links, err := linkService.History(c.Request.Context(), IdentityFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}

		out := make([]LinkResponse, 0, len(links))
		for i := range links {
			out = append(out, toLinkResponse(&links[i], baseURL))
		}
		c.JSON(http.StatusOK, out)
	}
}

// DeleteLinkHandler removes one of the caller's links.
func DeleteLinkHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := linkService.RemoveLink(c.Request.Context(), c.Param("code"), IdentityFrom(c)); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// PurgeAccountHandler removes every link of the caller.
func PurgeAccountHandler(linkService *services.LinkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := linkService.PurgeAccount(c.Request.Context(), IdentityFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": n})
	}
}

// GetLinkStatsHandler returns the counters of a live link.
func GetLinkStatsHandler(linkService *services.LinkService, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := linkService.GetLinkStats(c.Request.Context(), c.Param("code"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, StatsResponse{
			LinkResponse: toLinkResponse(stats.Link, baseURL),
			Events:       stats.Events,
		})
	}
}

// QRCodeHandler renders the short URL of a live link as a PNG.
func QRCodeHandler(linkService *services.LinkService, qr services.QRService, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := linkService.GetLinkStats(c.Request.Context(), c.Param("code"))
		if err != nil {
			respondError(c, err)
			return
		}
		png, err := qr.PNG(baseURL+"/"+stats.Link.ShortCode, services.DefaultQRSize)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	}
}
