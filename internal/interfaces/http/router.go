// Package http wires the two HTTP surfaces: the certificate-scoped
// IEEE 2030.5 device surface and the loopback JSON admin surface. Both
// share the repository and manager graph built here.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"enverge/internal/application/manager"
	"enverge/internal/domain/ident"
	"enverge/internal/infrastructure/config"
	"enverge/internal/infrastructure/repository"
	"enverge/internal/infrastructure/tasks"
	"enverge/internal/interfaces/http/handlers"
	adminhandlers "enverge/internal/interfaces/http/handlers/admin"
	"enverge/internal/interfaces/http/middleware"
	"enverge/internal/shared/logger"
)

// Router owns the device and admin gin engines.
type Router struct {
	device *gin.Engine
	admin  *gin.Engine
}

// NewRouter builds the full dependency graph: repositories over the
// shared gorm handle, managers over the repositories, and handlers over
// the managers. The redis client feeds the change-check task broker.
func NewRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config, log logger.Interface) *Router {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	adminhandlers.RegisterValidations()

	aggregators := repository.NewAggregatorRepository(db, log)
	sites := repository.NewSiteRepository(db, log)
	ders := repository.NewDERRepository(db, log)
	does := repository.NewDoeRepository(db, log)
	groups := repository.NewSiteControlGroupRepository(db, log)
	tariffs := repository.NewTariffRepository(db, log)
	rates := repository.NewRateRepository(db, log)
	readings := repository.NewReadingRepository(db, log)
	subs := repository.NewSubscriptionRepository(db, log)
	responses := repository.NewResponseRepository(db, log)
	runtime := repository.NewRuntimeConfigRepository(db, log)

	hrefs := ident.NewHrefBuilder(cfg.Sep2.HrefPrefix)
	broker := tasks.NewBroker(rdb, log)

	configMgr := manager.NewConfigManager(runtime, hrefs, cfg.Sep2.IanaPEN, broker, log)
	edevMgr := manager.NewEndDeviceManager(sites, tariffs, configMgr, broker, cfg.Sep2.DefaultTimezone, log)
	derMgr := manager.NewDERManager(sites, ders, configMgr, broker, log)
	derpMgr := manager.NewDerProgramManager(sites, groups, does, configMgr, log)
	pricingMgr := manager.NewPricingManager(sites, tariffs, rates, configMgr, log)
	mupMgr := manager.NewMUPManager(sites, readings, configMgr, hrefs, broker, log)
	subMgr := manager.NewSubscriptionManager(subs, aggregators, configMgr, hrefs, log)
	responseMgr := manager.NewResponseManager(sites, responses, configMgr, log)
	adminMgr := manager.NewAdminManager(aggregators, sites, groups, does, tariffs, rates, responses, broker, log)

	certAuth := middleware.NewCertAuth(aggregators, sites, cfg.Sep2.CertPEMHeader, cfg.Sep2.IanaPEN, cfg.Sep2.HrefPrefix, log)
	adminAuth := middleware.NewAdminAuth(cfg.AdminServer.JWTSecret, log)

	edevHandler := handlers.NewEndDeviceHandler(edevMgr, hrefs)
	derHandler := handlers.NewDERHandler(derMgr)
	derpHandler := handlers.NewDerProgramHandler(derpMgr)
	pricingHandler := handlers.NewPricingHandler(pricingMgr)
	subHandler := handlers.NewSubscriptionHandler(subMgr)
	mupHandler := handlers.NewMUPHandler(mupMgr)
	responseHandler := handlers.NewResponseHandler(responseMgr)
	adminHandler := adminhandlers.NewHandler(adminMgr, configMgr, log)

	r := &Router{
		device: gin.New(),
		admin:  gin.New(),
	}
	r.setupDeviceRoutes(cfg, certAuth, edevHandler, derHandler, derpHandler, pricingHandler, subHandler, mupHandler, responseHandler, log)
	r.setupAdminRoutes(adminAuth, adminHandler, log)
	return r
}

func (r *Router) setupDeviceRoutes(
	cfg *config.Config,
	certAuth *middleware.CertAuth,
	edev *handlers.EndDeviceHandler,
	der *handlers.DERHandler,
	derp *handlers.DerProgramHandler,
	pricing *handlers.PricingHandler,
	sub *handlers.SubscriptionHandler,
	mup *handlers.MUPHandler,
	response *handlers.ResponseHandler,
	log logger.Interface,
) {
	r.device.Use(middleware.Logger(log))
	r.device.Use(middleware.Recovery(log))

	root := r.device.Group(cfg.Sep2.HrefPrefix)
	root.Use(certAuth.Require())

	root.GET("/dcap", edev.DeviceCapability)
	root.GET("/tm", edev.Time)

	root.GET("/edev", edev.List)
	root.POST("/edev", edev.Register)

	site := root.Group("/edev/:site_id")
	{
		site.GET("", edev.Get)
		site.DELETE("", edev.Delete)
		site.GET("/reg", edev.Registration)
		site.GET("/cp", edev.GetConnectionPoint)
		site.PUT("/cp", edev.PutConnectionPoint)

		site.GET("/fsa", edev.ListFsa)
		site.GET("/fsa/:fsa_id", edev.GetFsa)

		site.GET("/der", der.List)
		site.GET("/der/:der_id", der.Get)
		site.GET("/der/:der_id/dercap", der.GetCapability)
		site.PUT("/der/:der_id/dercap", der.PutCapability)
		site.GET("/der/:der_id/derg", der.GetSettings)
		site.PUT("/der/:der_id/derg", der.PutSettings)
		site.GET("/der/:der_id/dera", der.GetAvailability)
		site.PUT("/der/:der_id/dera", der.PutAvailability)
		site.GET("/der/:der_id/ders", der.GetStatus)
		site.PUT("/der/:der_id/ders", der.PutStatus)

		site.GET("/derp", derp.List)
		site.GET("/derp/:derp_id", derp.Get)
		site.GET("/derp/:derp_id/derc", derp.ListControls)
		site.GET("/derp/:derp_id/actderc", derp.ListActiveControls)
		site.GET("/derp/:derp_id/dderc", derp.GetDefaultControl)
		site.GET("/derp/:derp_id/derc/:derc_id", derp.GetControl)

		site.GET("/tp", pricing.ListSiteTariffs)
		site.GET("/tp/:tariff_id", pricing.GetSiteTariff)
		site.GET("/tp/:tariff_id/rc", pricing.ListRateComponents)
		site.GET("/tp/:tariff_id/rc/:day/:prt", pricing.GetRateComponent)
		site.GET("/tp/:tariff_id/rc/:day/:prt/tti", pricing.ListTimeTariffIntervals)
		site.GET("/tp/:tariff_id/rc/:day/:prt/tti/:tod", pricing.GetTimeTariffInterval)
		site.GET("/tp/:tariff_id/rc/:day/:prt/tti/:tod/cti/:price", pricing.ListConsumptionTariffIntervals)
		site.GET("/tp/:tariff_id/rc/:day/:prt/tti/:tod/cti/:price/1", pricing.GetConsumptionTariffInterval)

		site.GET("/sub", sub.List)
		site.POST("/sub", sub.Create)
		site.GET("/sub/:sub_id", sub.Get)
		site.DELETE("/sub/:sub_id", sub.Delete)

		site.GET("/rsps", response.ListSets)
		site.GET("/rsps/:set_type", response.GetSet)
		site.GET("/rsps/:set_type/rsp", response.ListResponses)
		site.POST("/rsps/:set_type/rsp", response.CreateResponse)
	}

	root.GET("/tp", pricing.ListTariffs)
	root.GET("/tp/:tariff_id", pricing.GetTariff)

	root.GET("/mup", mup.List)
	root.POST("/mup", mup.Create)
	root.GET("/mup/:mup_id", mup.Get)
	root.PUT("/mup/:mup_id", mup.Replace)
	root.DELETE("/mup/:mup_id", mup.Delete)
	root.POST("/mup/:mup_id", mup.PostReadings)
}

func (r *Router) setupAdminRoutes(auth *middleware.AdminAuth, h *adminhandlers.Handler, log logger.Interface) {
	r.admin.Use(middleware.Logger(log))
	r.admin.Use(middleware.Recovery(log))

	r.admin.GET("/health", h.Health)

	api := r.admin.Group("/")
	api.Use(auth.Require())
	{
		api.POST("/aggregator", h.CreateAggregator)
		api.GET("/aggregator", h.ListAggregators)
		api.GET("/aggregator/:aggregator_id", h.GetAggregator)
		api.PUT("/aggregator/:aggregator_id/domains", h.UpdateAggregatorDomains)
		api.GET("/aggregator/:aggregator_id/site", h.ListSites)
		api.DELETE("/aggregator/:aggregator_id/site/:site_id", h.DeleteSite)

		api.POST("/certificate", h.RegisterCertificate)

		api.POST("/site", h.UpsertSite)
		api.POST("/site/:site_id/default-control", h.SetDefaultSiteControl)

		api.POST("/site-control-group", h.CreateGroup)
		api.GET("/site-control-group", h.ListGroups)
		api.PUT("/site-control-group/:group_id/primacy", h.UpdateGroupPrimacy)
		api.POST("/site-control-group/:group_id/default-control", h.SetGroupDefault)
		api.POST("/site-control-group/:group_id/control", h.UpsertControls)
		api.DELETE("/site-control-group/:group_id/control", h.DeleteControlsInRange)

		api.POST("/tariff", h.CreateTariff)
		api.GET("/tariff", h.ListTariffs)
		api.PUT("/tariff/:tariff_id", h.UpdateTariff)
		api.POST("/tariff/:tariff_id/rate", h.UpsertRates)
		api.DELETE("/tariff/:tariff_id/rate", h.DeleteRatesInRange)

		api.POST("/calculation-log", h.CreateCalculationLog)
		api.GET("/calculation-log/:external_id", h.GetCalculationLog)

		api.GET("/archive/control", h.ArchivedControls)
		api.GET("/archive/rate", h.ArchivedRates)
		api.GET("/archive/site", h.ArchivedSites)

		api.GET("/config", h.GetRuntimeConfig)
		api.PATCH("/config", h.UpdateRuntimeConfig)
	}
}

// Device returns the 2030.5 engine.
func (r *Router) Device() *gin.Engine {
	return r.device
}

// Admin returns the operator engine.
func (r *Router) Admin() *gin.Engine {
	return r.admin
}
