package echoapi

import (
	"sort"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
)

const (
	contextTokenKey   = "adminToken"
	contextAccountKey = "account"
	jwtAudience       = "Dashboard"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64    `json:"oriat,omitempty"`
	Name         string   `json:"name,omitempty"`
	Email        string   `json:"email,omitempty"`
	IsAdmin      bool     `json:"is_admin,omitempty"` // -> DASHBOARD
	Roles        []string `json:"roles,omitempty"`
}

type authenticator struct {
	conf      *core.Config
	jwtConfig middleware.JWTConfig
}

func newAuthenticator(conf *core.Config) *authenticator {
	return &authenticator{
		conf: conf,
		jwtConfig: middleware.JWTConfig{
			SigningKey:    []byte(conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    contextTokenKey,
			Claims:        new(Claims),
		},
	}
}

// GetAccountClaims returns the claims of `acc`. The session expires Server.JWTExpirationDelta from now.
// origIat is the time of the original login when refreshing.
func GetAccountClaims(acc account.Account, conf *core.Config, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   acc.ID,
			Audience:  jwtAudience,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Name:         acc.Name,
		Email:        acc.Email,
		IsAdmin:      acc.IsAdmin(),
		Roles:        acc.Roles,
	}
}

// GenerateToken generates a signed JWT token string representing the account Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextAccount(ctx echo.Context, svc account.Service, clms ...Claims) (account.Account, error) {
	if acc, ok := ctx.Get(contextAccountKey).(account.Account); ok {
		return acc, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return account.Account{}, errors.Wrap(err, "getting context claims")
		}
	}

	acc, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == account.ErrNotFound {
			return account.Account{}, errUnauthorized
		}
		return account.Account{}, errors.Wrap(err, "finding account by ID")
	}
	ctx.Set(contextAccountKey, acc)
	return acc, nil
}

func contextHasAnyRole(ctx echo.Context, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	if claims, err := getContextClaims(ctx); err == nil {
		sort.Strings(claims.Roles)
		for _, role := range roles {
			if i := sort.SearchStrings(claims.Roles, role); i < len(claims.Roles) {
				if match := claims.Roles[i]; role == match {
					return true
				}
			}
		}
	}
	return false
}

// login checks the credentials of an admin and opens a session.
func (a *authenticator) login(ctx echo.Context, svc account.Service, email, pwd string) (LoginResponse, error) {
	acc, err := svc.Authenticate(ctx.Request().Context(), email, pwd, account.RoleAdmin)
	if err != nil {
		return LoginResponse{}, err
	}
	return a.newSession(acc)
}

func (a *authenticator) refreshToken(ctx echo.Context, svc account.Service) (LoginResponse, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return LoginResponse{}, errors.Wrap(err, "getting context claims")
	}

	acc, err := getContextAccount(ctx, svc, claims)
	if err != nil {
		return LoginResponse{}, errors.Wrap(err, "getting context account")
	}

	// check if the account is still active
	if !acc.IsActive {
		return LoginResponse{}, errAccountDeactivated
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(a.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return LoginResponse{}, errRefreshExpired
	}

	return a.newSession(acc, claims.OrigIssuedAt)
}

func (a *authenticator) newSession(acc account.Account, origIat ...int64) (LoginResponse, error) {
	claims := GetAccountClaims(acc, a.conf, origIat...)
	token, err := GenerateToken(claims, a.conf)
	if err != nil {
		return LoginResponse{}, errors.Wrap(err, "generating token")
	}
	return LoginResponse{
		Token:         token,
		AuthTime:      time.Unix(claims.IssuedAt, 0).UTC(),
		SessionExpiry: time.Unix(claims.ExpiresAt, 0).UTC(),
	}, nil
}
