package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	"teamdraw/internal/models"
	"teamdraw/internal/services"
)

const (
	tenantKey       = "tenantID"
	maxRollingNames = 100
	maxUploadBytes  = 1 << 20
)

// HTTPHandler holds the dependencies for the HTTP handlers, like the session service.
type HTTPHandler struct {
	service    *services.SessionService
	templates  *template.Template
	cookieName string
	now        func() time.Time
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(service *services.SessionService, templates *template.Template, cookieName string) *HTTPHandler {
	return &HTTPHandler{
		service:    service,
		templates:  templates,
		cookieName: cookieName,
		now:        time.Now,
	}
}

// participantView decorates a participant with its duplicate flag.
type participantView struct {
	models.Participant
	Duplicate bool
	Initial   string
}

func (h *HTTPHandler) tenantID(c *gin.Context) string {
	return c.GetString(tenantKey)
}

// renderPage is a helper to perform a two-step template rendering.
// It first executes the content template into a buffer, then executes the main
// layout template, passing the rendered content as a variable.
func (h *HTTPHandler) renderPage(c *gin.Context, pageData gin.H, contentTmpl string) {
	buf := new(bytes.Buffer)
	if err := h.templates.ExecuteTemplate(buf, contentTmpl, pageData); err != nil {
		logger.Errorf("Error executing content template %s: %v", contentTmpl, err)
		c.String(http.StatusInternalServerError, "Template rendering error")
		return
	}

	pageData["PageContent"] = template.HTML(buf.String())
	pageData["MemberCount"] = h.service.DrawState(h.tenantID(c)).RosterSize

	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(c.Writer, "layout.html", pageData); err != nil {
		logger.Errorf("Error executing layout template: %v", err)
		c.String(http.StatusInternalServerError, "Template rendering error")
	}
}

// renderPartial renders a single HTMX fragment.
func (h *HTTPHandler) renderPartial(c *gin.Context, name string, data any) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(c.Writer, name, data); err != nil {
		logger.Errorf("Error executing template %s: %v", name, err)
		c.String(http.StatusInternalServerError, "Template error")
	}
}

// RegisterPublicRoutes registers routes that need no session.
func (h *HTTPHandler) RegisterPublicRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Healthz)
}

// RegisterTenantRoutes registers all session-scoped routes.
func (h *HTTPHandler) RegisterTenantRoutes(r gin.IRoutes) {
	r.GET("/", h.ShowRosterPage)
	r.POST("/roster", h.ApplyRoster)
	r.POST("/roster/upload", h.UploadRoster)
	r.POST("/roster/mock", h.LoadMockRoster)
	r.POST("/roster/clear", h.ClearRoster)
	r.POST("/roster/dedupe", h.RemoveDuplicates)

	r.GET("/draw", h.ShowDrawPage)
	r.POST("/draw", h.PerformDraw)
	r.POST("/draw/reset", h.ResetDraw)
	r.GET("/draw/announcement", h.GetAnnouncement)
	r.GET("/draw/rolling", h.GetRollingNames)
	r.GET("/draw/export-csv", h.ExportHistoryCSV)

	r.GET("/groups", h.ShowGroupsPage)
	r.POST("/groups", h.GenerateGroups)
	r.GET("/groups/export-csv", h.ExportGroupsCSV)

	r.POST("/session/clear", h.StartOver)
}

func (h *HTTPHandler) Healthz(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (h *HTTPHandler) rosterData(tenantID string) gin.H {
	view := h.service.Roster(tenantID)
	list := make([]participantView, len(view.Participants))
	for i, p := range view.Participants {
		initial := ""
		if r := []rune(p.Name); len(r) > 0 {
			initial = string(r[0])
		}
		list[i] = participantView{
			Participant: p,
			Duplicate:   view.Duplicates[services.NormalizeName(p.Name)] > 1,
			Initial:     initial,
		}
	}
	return gin.H{
		"Participants":  list,
		"Count":         len(list),
		"Text":          view.Text,
		"HasDuplicates": view.HasDuplicates,
	}
}

// ShowRosterPage handles the request for the roster management page.
func (h *HTTPHandler) ShowRosterPage(c *gin.Context) {
	data := h.rosterData(h.tenantID(c))
	data["title"] = "Roster Management"
	h.renderPage(c, data, "roster.html")
}

func (h *HTTPHandler) renderRosterPanel(c *gin.Context, notice string) {
	data := h.rosterData(h.tenantID(c))
	data["Notice"] = notice
	h.renderPartial(c, "roster_panel.html", data)
}

// ApplyRoster replaces the roster with the names typed into the editor.
func (h *HTTPHandler) ApplyRoster(c *gin.Context) {
	n := h.service.ApplyRoster(h.tenantID(c), c.PostForm("names"))
	h.renderRosterPanel(c, strconv.Itoa(n)+" names loaded.")
}

// UploadRoster handles a .csv or .txt roster upload.
func (h *HTTPHandler) UploadRoster(c *gin.Context) {
	file, _, err := c.Request.FormFile("rosterFile")
	if err != nil {
		c.String(http.StatusBadRequest, "Error retrieving file: %v", err)
		return
	}
	defer file.Close()

	n, err := h.service.ImportRoster(h.tenantID(c), http.MaxBytesReader(c.Writer, file, maxUploadBytes))
	if err != nil {
		logger.Warningf("roster upload failed: %v", err)
		c.String(http.StatusBadRequest, "Error reading file: %v", err)
		return
	}
	h.renderRosterPanel(c, strconv.Itoa(n)+" names imported.")
}

// LoadMockRoster fills the roster with demo names.
func (h *HTTPHandler) LoadMockRoster(c *gin.Context) {
	h.service.LoadMockRoster(h.tenantID(c))
	h.renderRosterPanel(c, "Demo roster loaded.")
}

// ClearRoster empties the roster.
func (h *HTTPHandler) ClearRoster(c *gin.Context) {
	h.service.ClearRoster(h.tenantID(c))
	h.renderRosterPanel(c, "Roster cleared.")
}

// RemoveDuplicates drops repeated names, keeping the first occurrence.
func (h *HTTPHandler) RemoveDuplicates(c *gin.Context) {
	n := h.service.RemoveDuplicates(h.tenantID(c))
	h.renderRosterPanel(c, strconv.Itoa(n)+" duplicates removed.")
}

// StartOver drops everything stored for the tenant and expires its cookie, so
// the next request starts a fresh session.
func (h *HTTPHandler) StartOver(c *gin.Context) {
	h.service.ClearSession(h.tenantID(c))
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if c.GetHeader("HX-Request") == "true" {
		c.Header("HX-Redirect", "/")
		c.Status(http.StatusOK)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// ShowDrawPage handles the request for the lucky draw page.
func (h *HTTPHandler) ShowDrawPage(c *gin.Context) {
	h.renderPage(c, gin.H{
		"title": "Lucky Draw",
		"Draw":  h.service.DrawState(h.tenantID(c)),
	}, "lucky_draw.html")
}

// PerformDraw draws one winner with the submitted prize label and repeat policy.
func (h *HTTPHandler) PerformDraw(c *gin.Context) {
	allowRepeat := c.PostForm("allowRepeat") == "true" || c.PostForm("allowRepeat") == "on"

	_, view, err := h.service.Draw(c.Request.Context(), h.tenantID(c), c.PostForm("prizeName"), allowRepeat)
	if err != nil {
		h.renderNotice(c, err)
		return
	}
	h.renderPartial(c, "draw_response.html", gin.H{"Draw": view})
}

// ResetDraw clears the history and refills the pool.
func (h *HTTPHandler) ResetDraw(c *gin.Context) {
	h.service.ResetDraw(h.tenantID(c))
	h.renderPartial(c, "draw_response.html", gin.H{"Draw": h.service.DrawState(h.tenantID(c))})
}

// GetAnnouncement returns the decorative message slot. The fragment keeps
// polling until the collaborator has answered.
func (h *HTTPHandler) GetAnnouncement(c *gin.Context) {
	h.renderPartial(c, "announcement.html", h.service.Announcement(h.tenantID(c)))
}

// GetRollingNames returns names for the client-side rolling animation.
func (h *HTTPHandler) GetRollingNames(c *gin.Context) {
	n := 40
	if raw := c.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxRollingNames {
			c.JSON(http.StatusBadRequest, gin.H{"error": "n must be an integer between 1 and 100"})
			return
		}
		n = parsed
	}
	names := h.service.RollingNames(h.tenantID(c), n)
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"names": names})
}

// ShowGroupsPage handles the request for the auto grouping page.
func (h *HTTPHandler) ShowGroupsPage(c *gin.Context) {
	h.renderPage(c, gin.H{
		"title": "Auto Grouping",
		"Group": h.service.GroupState(h.tenantID(c)),
	}, "grouping.html")
}

// GenerateGroups partitions the roster into teams.
func (h *HTTPHandler) GenerateGroups(c *gin.Context) {
	size, err := strconv.Atoi(c.PostForm("groupSize"))
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid group size")
		return
	}
	mode := models.ParseNamingMode(c.PostForm("namingMode"))

	if _, err := h.service.Group(c.Request.Context(), h.tenantID(c), size, mode); err != nil {
		h.renderNotice(c, err)
		return
	}
	h.renderPartial(c, "group_results.html", gin.H{"Group": h.service.GroupState(h.tenantID(c))})
}

// renderNotice reports a primary-path error as a blocking notice. The HTMX
// client swaps it in place, so the status stays 200 as in the result partials.
func (h *HTTPHandler) renderNotice(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyPool), errors.Is(err, services.ErrEmptyRoster):
		h.renderPartial(c, "notice.html", gin.H{"Notice": err.Error()})
	default:
		logger.Errorf("internal error for tenant %s: %v", h.tenantID(c), err)
		c.String(http.StatusInternalServerError, "internal error")
	}
}

// ExportGroupsCSV handles the request to download the grouping result as a CSV file.
func (h *HTTPHandler) ExportGroupsCSV(c *gin.Context) {
	groups := h.service.Groups(h.tenantID(c))
	if len(groups) == 0 {
		c.String(http.StatusNotFound, "No groups to export")
		return
	}

	filename := "group_results_" + h.now().Format("2006-01-02") + ".csv"
	h.writeCSV(c, filename, func(buf *bytes.Buffer) error {
		return services.WriteGroupsCSV(buf, groups)
	})
}

// ExportHistoryCSV handles the request to download the draw history as a CSV file.
func (h *HTTPHandler) ExportHistoryCSV(c *gin.Context) {
	history := h.service.History(h.tenantID(c))
	h.writeCSV(c, "draw_history.csv", func(buf *bytes.Buffer) error {
		return services.WriteHistoryCSV(buf, history)
	})
}

func (h *HTTPHandler) writeCSV(c *gin.Context, filename string, write func(*bytes.Buffer) error) {
	buf := new(bytes.Buffer)
	// Add BOM to ensure UTF-8 compatibility in Excel
	buf.WriteString("\xef\xbb\xbf")
	if err := write(buf); err != nil {
		logger.Errorf("Error writing CSV %s: %v", filename, err)
		c.String(http.StatusInternalServerError, "Error writing CSV")
		return
	}

	c.Header("Content-Disposition", "attachment;filename="+filename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
