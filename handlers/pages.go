package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"prompt-cms/logger"
	"prompt-cms/middleware"
	"prompt-cms/models"
	"prompt-cms/services"
	"prompt-cms/views"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
)

// PageHandler serves the server-rendered pages and their form actions.
// Form actions always answer with a redirect carrying ?notice= or ?error=.
type PageHandler struct {
	auth       services.AuthService
	profiles   services.ProfileService
	prompts    services.PromptService
	categories services.CategoryService
	tags       services.TagService
	public     services.PublicService
	dashboard  services.DashboardService
	policy     *services.AccessPolicy
	cookie     middleware.SessionCookie
}

type PageServices struct {
	Auth       services.AuthService
	Profiles   services.ProfileService
	Prompts    services.PromptService
	Categories services.CategoryService
	Tags       services.TagService
	Public     services.PublicService
	Dashboard  services.DashboardService
	Policy     *services.AccessPolicy
	Cookie     middleware.SessionCookie
}

func NewPageHandler(s PageServices) *PageHandler {
	return &PageHandler{
		auth:       s.Auth,
		profiles:   s.Profiles,
		prompts:    s.Prompts,
		categories: s.Categories,
		tags:       s.Tags,
		public:     s.Public,
		dashboard:  s.Dashboard,
		policy:     s.Policy,
		cookie:     s.Cookie,
	}
}

func (h *PageHandler) page(c *gin.Context) views.Page {
	principal := middleware.CurrentPrincipal(c)
	page := views.Page{
		Principal: principal,
		Notice:    c.Query("notice"),
		Error:     c.Query("error"),
	}
	if principal != nil {
		page.IsAdmin = h.policy.IsAdmin(principal.Email)
	}
	return page
}

func render(c *gin.Context, status int, component templ.Component) {
	templ.Handler(component, templ.WithStatus(status)).ServeHTTP(c.Writer, c.Request)
}

// redirectWith sends the browser to target with a flash message.
func redirectWith(c *gin.Context, target, key, message string) {
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	c.Redirect(http.StatusSeeOther, target+sep+key+"="+url.QueryEscape(message))
}

// flash picks the message shown for a failed form action. Store and
// unexpected failures are logged and shown generically.
func flash(c *gin.Context, err error) string {
	var (
		validation   models.ErrorValidation
		unauthorized models.ErrorUnauthorized
		notFound     models.ErrorNotFound
		conflict     models.ErrorConflict
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &unauthorized),
		errors.As(err, &notFound), errors.As(err, &conflict):
		return err.Error()
	default:
		logger.Log.Errorw("form action failed", "path", c.Request.URL.Path, "error", err)
		return models.ErrInternal.Message
	}
}

func (h *PageHandler) Home(c *gin.Context) {
	c.Redirect(http.StatusFound, "/public")
}

func (h *PageHandler) PublicList(c *gin.Context) {
	var filter models.PromptFilter
	filterErr := bindFilter(c, &filter)

	ctx := c.Request.Context()
	page := h.page(c)
	if filterErr != "" {
		page.Error = filterErr
	}
	data := views.PublicListData{Page: page}

	prompts, err := h.public.ListPublished(ctx, filter)
	if err != nil {
		data.Page.Error = flash(c, err)
	} else {
		data.Prompts = prompts
		filter.Normalize()
	}
	data.Filter = filter
	if data.Categories, err = h.public.Categories(ctx); err != nil {
		logger.Log.Warnw("public categories unavailable", "error", err)
	}
	if data.Tags, err = h.public.Tags(ctx); err != nil {
		logger.Log.Warnw("public tags unavailable", "error", err)
	}

	render(c, http.StatusOK, views.PublicList(data))
}

func (h *PageHandler) PromptDetail(c *gin.Context) {
	page := h.page(c)
	prompt, err := h.public.GetPublished(c.Request.Context(), c.Param("id"))
	if err != nil {
		var notFound models.ErrorNotFound
		if errors.As(err, &notFound) {
			render(c, http.StatusNotFound, views.NotFound(page))
			return
		}
		page.Error = flash(c, err)
		render(c, http.StatusInternalServerError, views.NotFound(page))
		return
	}

	render(c, http.StatusOK, views.PromptDetail(page, *prompt))
}

func (h *PageHandler) SignInPage(c *gin.Context) {
	page := h.page(c)
	page.Error = views.SignInError(page.Error)
	render(c, http.StatusOK, views.SignIn(views.SignInData{Page: page, Email: c.Query("email")}))
}

func (h *PageHandler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := bindForm(c, &req); err != nil {
		redirectWith(c, middleware.SignInPath, "error", flash(c, err))
		return
	}

	session, err := h.auth.SignIn(c.Request.Context(), req)
	if err != nil {
		redirectWith(c, middleware.SignInPath+"?email="+url.QueryEscape(req.Email), "error", flash(c, err))
		return
	}

	h.cookie.Set(c, session.Token, session.ExpiresAt)
	c.Redirect(http.StatusSeeOther, h.landing(session.User.Email))
}

func (h *PageHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := bindForm(c, &req); err != nil {
		redirectWith(c, middleware.SignInPath, "error", flash(c, err))
		return
	}

	result, err := h.auth.SignUp(c.Request.Context(), req)
	if err != nil {
		redirectWith(c, middleware.SignInPath, "error", flash(c, err))
		return
	}

	if result.Session == nil {
		redirectWith(c, middleware.SignInPath, "notice", result.Message)
		return
	}
	h.cookie.Set(c, result.Session.Token, result.Session.ExpiresAt)
	redirectWith(c, h.landing(result.Session.User.Email), "notice", result.Message)
}

func (h *PageHandler) landing(email string) string {
	if h.policy.IsAdmin(email) {
		return "/admin"
	}
	return "/dashboard"
}

func (h *PageHandler) SignOut(c *gin.Context) {
	if err := h.auth.SignOut(c.Request.Context(), middleware.CurrentPrincipal(c)); err != nil {
		logger.Log.Errorw("sign out failed", "error", err)
	}
	h.cookie.Clear(c)
	redirectWith(c, middleware.SignInPath, "notice", "Signed out")
}

func (h *PageHandler) Dashboard(c *gin.Context) {
	page := h.page(c)
	profile, err := h.profiles.Get(c.Request.Context(), page.Principal)
	if err != nil {
		page.Error = flash(c, err)
	}

	render(c, http.StatusOK, views.Dashboard(views.DashboardData{Page: page, Profile: profile}))
}

func (h *PageHandler) UpdateProfile(c *gin.Context) {
	var req models.ProfileUpdateRequest
	if err := bindForm(c, &req); err != nil {
		redirectWith(c, "/dashboard", "error", flash(c, err))
		return
	}

	if _, err := h.profiles.Update(c.Request.Context(), middleware.CurrentPrincipal(c), req); err != nil {
		redirectWith(c, "/dashboard", "error", flash(c, err))
		return
	}
	redirectWith(c, "/dashboard", "notice", "Profile updated")
}

func (h *PageHandler) Admin(c *gin.Context) {
	var filter models.PromptFilter
	filterErr := bindFilter(c, &filter)

	ctx := c.Request.Context()
	actor := middleware.CurrentPrincipal(c)
	data := views.AdminData{Page: h.page(c)}
	if filterErr != "" {
		data.Page.Error = filterErr
	}

	var errs []error
	var err error
	if data.Stats, err = h.dashboard.Stats(ctx, actor); err != nil {
		errs = append(errs, err)
	}
	if data.Prompts, err = h.prompts.ListPrompts(ctx, actor, filter); err != nil {
		errs = append(errs, err)
	}
	filter.Normalize()
	data.Filter = filter
	if data.Categories, err = h.categories.ListCategories(ctx, actor); err != nil {
		errs = append(errs, err)
	}
	if data.Tags, err = h.tags.ListTags(ctx, actor); err != nil {
		errs = append(errs, err)
	}
	if id := c.Query("edit"); id != "" {
		prompt, err := h.prompts.GetPrompt(ctx, actor, id)
		if err != nil {
			errs = append(errs, err)
		} else {
			view := prompt.View()
			data.Editing = &view
		}
	}
	if len(errs) > 0 && data.Page.Error == "" {
		data.Page.Error = flash(c, errs[0])
	}

	render(c, http.StatusOK, views.Admin(data))
}

// errInvalidForm is flashed when a submitted form cannot be decoded.
var errInvalidForm = models.NewValidationError("Invalid form data")

// bindForm decodes the submitted form into req. The decode error is logged
// and replaced by errInvalidForm.
func bindForm(c *gin.Context, req interface{}) error {
	if err := c.ShouldBind(req); err != nil {
		logger.Log.Debugw("form decode failed", "path", c.Request.URL.Path, "error", err)
		return errInvalidForm
	}
	return nil
}

// bindFilter decodes the listing query. An undecodable query falls back to
// the default listing and reports why.
func bindFilter(c *gin.Context, filter *models.PromptFilter) string {
	if err := c.ShouldBindQuery(filter); err != nil {
		logger.Log.Debugw("filter decode failed", "path", c.Request.URL.Path, "error", err)
		*filter = models.PromptFilter{}
		return "Invalid filter, showing all prompts"
	}
	return ""
}

// adminResult finishes an admin form action.
func adminResult(c *gin.Context, err error, notice string) {
	if err != nil {
		redirectWith(c, "/admin", "error", flash(c, err))
		return
	}
	redirectWith(c, "/admin", "notice", notice)
}

func (h *PageHandler) CreatePrompt(c *gin.Context) {
	var req models.PromptRequest
	if err := bindForm(c, &req); err != nil {
		adminResult(c, err, "")
		return
	}

	_, err := h.prompts.CreatePrompt(c.Request.Context(), middleware.CurrentPrincipal(c), req)
	adminResult(c, err, "Prompt created successfully")
}

func (h *PageHandler) UpdatePrompt(c *gin.Context) {
	var req models.PromptRequest
	if err := bindForm(c, &req); err != nil {
		adminResult(c, err, "")
		return
	}

	_, err := h.prompts.UpdatePrompt(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("id"), req)
	adminResult(c, err, "Prompt updated successfully")
}

func (h *PageHandler) DeletePrompt(c *gin.Context) {
	err := h.prompts.DeletePrompt(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("id"))
	adminResult(c, err, "Prompt deleted successfully")
}

// BulkPrompts applies the selected action to the checked prompts.
func (h *PageHandler) BulkPrompts(c *gin.Context) {
	ctx := c.Request.Context()
	actor := middleware.CurrentPrincipal(c)
	ids := c.PostFormArray("ids")

	var err error
	var notice string
	switch action := c.PostForm("action"); action {
	case "publish", "unpublish":
		public := action == "publish"
		var result *models.MutationResult
		result, err = h.prompts.BulkUpdatePrompts(ctx, actor, models.BulkUpdateRequest{IDs: ids, IsPublic: &public})
		if err == nil {
			notice = pluralPrompts(result.Updated) + " updated"
		}
	case "delete":
		var result *models.MutationResult
		result, err = h.prompts.BulkDeletePrompts(ctx, actor, models.BulkDeleteRequest{IDs: ids})
		if err == nil {
			notice = pluralPrompts(result.Deleted) + " deleted"
		}
	default:
		err = models.NewValidationError("Unknown bulk action")
	}
	adminResult(c, err, notice)
}

func pluralPrompts(n int64) string {
	if n == 1 {
		return "1 prompt"
	}
	return strconv.FormatInt(n, 10) + " prompts"
}

func (h *PageHandler) CreateCategory(c *gin.Context) {
	var req models.CategoryRequest
	if err := bindForm(c, &req); err != nil {
		adminResult(c, err, "")
		return
	}

	_, err := h.categories.CreateCategory(c.Request.Context(), middleware.CurrentPrincipal(c), req)
	adminResult(c, err, "Category created successfully")
}

func (h *PageHandler) UpdateCategory(c *gin.Context) {
	var req models.CategoryRenameRequest
	if err := bindForm(c, &req); err != nil {
		adminResult(c, err, "")
		return
	}

	_, err := h.categories.UpdateCategory(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("name"), req)
	adminResult(c, err, "Category updated successfully")
}

func (h *PageHandler) DeleteCategory(c *gin.Context) {
	_, err := h.categories.DeleteCategory(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("name"))
	adminResult(c, err, "Category deleted successfully")
}

func (h *PageHandler) CreateTag(c *gin.Context) {
	var req models.TagRequest
	if err := bindForm(c, &req); err != nil {
		adminResult(c, err, "")
		return
	}

	_, err := h.tags.CreateTag(c.Request.Context(), middleware.CurrentPrincipal(c), req)
	adminResult(c, err, "Tag created successfully")
}

func (h *PageHandler) UpdateTag(c *gin.Context) {
	var req models.TagUpdateRequest
	if err := bindForm(c, &req); err != nil {
		adminResult(c, err, "")
		return
	}

	_, err := h.tags.UpdateTag(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("name"), req)
	adminResult(c, err, "Tag updated successfully")
}

func (h *PageHandler) DeleteTag(c *gin.Context) {
	_, err := h.tags.DeleteTag(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("name"))
	adminResult(c, err, "Tag deleted successfully")
}
