package echoapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/form"
)

const (
	orderingParam = "ordering"
	pageParam     = "page"
	filesField    = "files"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field != "" {
			ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
		}
	}
}

// bindPage returns the `page` query param, 1 when absent or invalid.
func bindPage(ctx echo.Context) int {
	page, err := strconv.Atoi(ctx.QueryParam(pageParam))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// bindFormValues reads a submitted form, sent url-encoded, as multipart/form-data or as a JSON object.
// The names of uploaded files are added to the `files` field.
func bindFormValues(ctx echo.Context) (form.Values, error) {
	req := ctx.Request()
	ctype := req.Header.Get(echo.HeaderContentType)

	switch {
	case strings.HasPrefix(ctype, echo.MIMEApplicationJSON):
		var data map[string]interface{}
		if err := json.NewDecoder(req.Body).Decode(&data); err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
		}
		return form.FromMap(data), nil

	case strings.HasPrefix(ctype, echo.MIMEMultipartForm):
		mf, err := ctx.MultipartForm()
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart body").SetInternal(err)
		}
		values := form.Values(mf.Value)
		for _, fh := range mf.File[filesField] {
			values[filesField] = append(values[filesField], fh.Filename)
		}
		return values, nil

	default:
		params, err := ctx.FormParams()
		if err != nil {
			return nil, errors.Wrap(err, "parsing form")
		}
		return form.Values(params), nil
	}
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token         string    `json:"token"`
		AuthTime      time.Time `json:"auth_time"`
		SessionExpiry time.Time `json:"session_expiry"`
	}

	LanguageRequest struct {
		Language string `json:"language"`
	}

	LanguageResponse struct {
		Language  string   `json:"language"`
		Supported []string `json:"supported"`
	}

	SubmissionResponse struct {
		ID       string `json:"id"`
		Success  string `json:"success"`
		Redirect string `json:"redirect,omitempty"`
		Reset    bool   `json:"reset"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}
