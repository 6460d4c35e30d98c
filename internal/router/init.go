package router

import (
	"github.com/oksasatya/local-business-directory/internal/application"
	"github.com/oksasatya/local-business-directory/internal/container"
	handlers "github.com/oksasatya/local-business-directory/internal/interface/http"
	"github.com/oksasatya/local-business-directory/internal/router/modules"
	"github.com/oksasatya/local-business-directory/pkg/helpers"
)

type BusinessModuleDeps struct {
	Service *application.BusinessService
	Handler *handlers.BusinessHandler
}

func buildBusinessDeps() BusinessModuleDeps {
	cfg := container.GetConfig()
	svc := application.NewBusinessService(
		container.GetBusinessRepo(),
		container.GetUserRepo(),
		container.GetPublisher(),
		application.NotifyConfig{
			Enabled:       cfg.MailSendEnabled,
			CompanyName:   cfg.CompanyName,
			SupportURL:    cfg.SupportURL,
			ListingURLFmt: cfg.ListingURLFmt,
		},
		container.GetLogger(),
	)
	return BusinessModuleDeps{
		Service: svc,
		Handler: handlers.NewBusinessHandler(svc, container.GetLogger()),
	}
}

type AuthModuleDeps struct {
	Service *application.AuthService
	Handler *handlers.AuthHandler
}

func buildAuthDeps() AuthModuleDeps {
	cfg := container.GetConfig()
	svc := application.NewAuthService(
		container.GetUserRepo(),
		container.GetIdentityProvider(),
		container.GetJWT(),
		container.GetRedis(),
		cfg.SessionTTL,
		container.GetLogger(),
	)
	handler := handlers.NewAuthHandler(
		svc,
		container.GetJWT(),
		helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),
		cfg.PostLoginRedirect,
		container.GetLogger(),
	)
	return AuthModuleDeps{Service: svc, Handler: handler}
}

// InitModules builds every feature module from the container and registers
// it with the registry. Call once during start-up.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	rdb := container.GetRedis()
	jwt := container.GetJWT()

	biz := buildBusinessDeps()
	auth := buildAuthDeps()
	health := handlers.NewHealthHandler(biz.Service, rdb, container.GetLogger())

	r.Add(modules.NewDebugModule(health, rdb, cfg.DebugMetricsEnabled))
	r.Add(modules.NewAuthModule(auth.Handler, rdb, jwt))
	r.Add(modules.NewBusinessModule(biz.Handler, rdb, jwt))
}
