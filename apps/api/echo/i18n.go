package echoapi

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/i18n"
)

const (
	languageCookieMaxAge  = 365 * 24 * time.Hour
	headerContentLanguage = "Content-Language"
	headerAcceptLanguage  = "Accept-Language"
)

type i18nApi struct {
	mgr        *i18n.Manager
	cookieName string
	pages      *pageCache
}

func registerI18nAPI(g *echo.Group, jwt echo.MiddlewareFunc, mgr *i18n.Manager, cookieName string, pages *pageCache) {
	api := i18nApi{mgr: mgr, cookieName: cookieName, pages: pages}

	g.GET("/language", api.language)
	g.PUT("/language", api.setLanguage)
	g.GET("/translations/:lang", api.translations)

	ag := g.Group("/admin", jwt, adminMiddleware())
	ag.PUT("/language", api.setSiteLanguage)
	ag.PUT("/translations/:lang", api.updateTranslations)
}

// Handlers

func (api *i18nApi) language(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, LanguageResponse{Language: getContextLanguage(ctx), Supported: i18n.Supported})
}

// setLanguage remembers the language of the visitor in a cookie.
func (api *i18nApi) setLanguage(ctx echo.Context) error {
	lang, err := api.bindLanguage(ctx)
	if err != nil {
		return err
	}

	ctx.SetCookie(&http.Cookie{
		Name:     api.cookieName,
		Value:    lang,
		Path:     "/",
		Expires:  time.Now().Add(languageCookieMaxAge),
		SameSite: http.SameSiteLaxMode,
	})
	return ctx.JSON(http.StatusOK, LanguageResponse{Language: lang, Supported: i18n.Supported})
}

func (api *i18nApi) translations(ctx echo.Context) error {
	dict, err := api.mgr.Catalog().Dictionary(i18n.Normalize(ctx.Param("lang")))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return ctx.JSON(http.StatusOK, dict)
}

// setSiteLanguage changes the language served to visitors who did not pick one.
func (api *i18nApi) setSiteLanguage(ctx echo.Context) error {
	lang, err := api.bindLanguage(ctx)
	if err != nil {
		return err
	}
	if err := api.mgr.SetLanguage(lang); err != nil {
		return errors.Wrap(err, "setting site language")
	}
	return ctx.JSON(http.StatusOK, LanguageResponse{Language: api.mgr.Language(), Supported: i18n.Supported})
}

// updateTranslations overrides existing translations of a language.
// A request holding any unknown key is refused as a whole.
func (api *i18nApi) updateTranslations(ctx echo.Context) error {
	lang := i18n.Normalize(ctx.Param("lang"))
	if !i18n.IsSupported(lang) {
		return echo.NewHTTPError(http.StatusNotFound, i18n.ErrUnsupportedLanguage.Error())
	}

	var data map[string]string
	if err := json.NewDecoder(ctx.Request().Body).Decode(&data); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}

	known := make(map[string]bool)
	for _, key := range api.mgr.Catalog().Keys(lang) {
		known[key] = true
	}
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var fldErrs []core.FieldError
	for _, key := range keys {
		if !known[key] {
			fldErrs = append(fldErrs, core.FieldError{Field: key, Error: "unknown translation key"})
		}
	}
	if len(fldErrs) > 0 {
		return core.NewValidationError(nil, fldErrs...)
	}

	for _, key := range keys {
		if _, err := api.mgr.UpdateTranslation(lang, key, data[key]); err != nil {
			return errors.Wrap(err, "updating translation")
		}
	}
	// the manager only notifies for the current language
	api.pages.purge()

	dict, err := api.mgr.Catalog().Dictionary(lang)
	if err != nil {
		return errors.Wrap(err, "getting dictionary")
	}
	return ctx.JSON(http.StatusOK, dict)
}

func (api *i18nApi) bindLanguage(ctx echo.Context) (string, error) {
	var data LanguageRequest
	if err := ctx.Bind(&data); err != nil {
		return "", errors.Wrap(err, "binding to LanguageRequest")
	}
	lang := i18n.Normalize(data.Language)
	if !i18n.IsSupported(lang) {
		return "", core.NewValidationError(nil, core.FieldError{Field: "language", Error: i18n.ErrUnsupportedLanguage.Error()})
	}
	return lang, nil
}

// pageCache keeps the translated static pages, per language and path.
type pageCache struct {
	fsys    fs.FS
	catalog *i18n.Catalog

	mu    sync.RWMutex
	pages map[string][]byte // {lang + ":" + path: html}
}

func newPageCache(fsys fs.FS, catalog *i18n.Catalog) *pageCache {
	return &pageCache{fsys: fsys, catalog: catalog, pages: make(map[string][]byte)}
}

func (pc *pageCache) get(fp, lang string) ([]byte, error) {
	key := lang + ":" + fp

	pc.mu.RLock()
	page, ok := pc.pages[key]
	pc.mu.RUnlock()
	if ok {
		return page, nil
	}

	src, err := fs.ReadFile(pc.fsys, fp)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := i18n.Apply(&buf, bytes.NewReader(src), pc.catalog, lang); err != nil {
		return nil, errors.Wrapf(err, "translating %s", fp)
	}

	pc.mu.Lock()
	pc.pages[key] = buf.Bytes()
	pc.mu.Unlock()
	return buf.Bytes(), nil
}

func (pc *pageCache) purge() {
	pc.mu.Lock()
	pc.pages = make(map[string][]byte)
	pc.mu.Unlock()
}

// page serves a static HTML page of the site, translated in the language of the request.
func (s *Server) page(ctx echo.Context) error {
	fp := path.Clean(strings.TrimPrefix(ctx.Param("*"), "/"))
	if fp == "." || !fs.ValidPath(fp) || path.Ext(fp) != ".html" {
		return echo.ErrNotFound
	}

	page, err := s.pages.get(fp, getContextLanguage(ctx))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return echo.ErrNotFound
		}
		return err
	}
	ctx.Response().Header().Set(headerContentLanguage, getContextLanguage(ctx))
	return ctx.HTMLBlob(http.StatusOK, page)
}
